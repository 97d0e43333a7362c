package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

type Area string

const (
	Raw       Area = "raw"
	Processed Area = "processed"
)

// Layout names the directories persisted artifacts live in.
type Layout struct {
	Root      string
	Raw       string
	Processed string
	Charts    string
}

func NewLayout(root string) *Layout {
	return &Layout{
		Root:      root,
		Raw:       filepath.Join(root, "data", "raw"),
		Processed: filepath.Join(root, "data", "processed"),
		Charts:    filepath.Join(root, "charts"),
	}
}

func (l *Layout) Ensure() error {
	for _, dir := range []string{l.Raw, l.Processed, l.Charts} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure %s: %w", dir, err)
		}
	}
	return nil
}

func (l *Layout) Dir(area Area) string {
	if area == Raw {
		return l.Raw
	}
	return l.Processed
}

// ArtifactName is the {date}_{name}.{ext} file name of one persisted output.
func ArtifactName(date, name, ext string) string {
	return date + "_" + name + "." + ext
}
