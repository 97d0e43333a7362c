// Package mirror moves the local cache tree into the cloud-mounted tree.
package mirror

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"findash/src/common"
)

type Mover struct {
	Local string
	Cloud string
}

// Sync moves every file below Local to the same relative path below Cloud,
// replacing existing files, then removes the directories it emptied. It returns
// the number of files moved and the number that could not be moved.
func (m *Mover) Sync() (moved, failed int) {
	if m.Cloud == "" {
		common.Logger.Sugar().Info("[sync] no cloud storage root resolved  skip")
		return 0, 0
	}
	if filepath.Clean(m.Cloud) == filepath.Clean(m.Local) {
		common.Logger.Sugar().Info("[sync] cloud root is the local root  skip")
		return 0, 0
	}

	files, dirs := walk(m.Local)
	for _, src := range files {
		rel, err := filepath.Rel(m.Local, src)
		if err != nil {
			common.Logger.Sugar().Errorf("[sync] failed %s: %v", src, err)
			failed++
			continue
		}
		dst := filepath.Join(m.Cloud, rel)
		if err := move(src, dst); err != nil {
			common.Logger.Sugar().Errorf("[sync] failed %s -> %s  %v", src, dst, err)
			failed++
			continue
		}
		moved++
	}

	prune(dirs)
	common.Logger.Sugar().Infof("[sync] moved %d  failed %d", moved, failed)
	return moved, failed
}

// walk lists the files and the directories below root, root excluded.
func walk(root string) (files, dirs []string) {
	if _, err := os.Stat(root); err != nil {
		return nil, nil
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			common.Logger.Sugar().Warnf("[sync] walk %s: %v", path, err)
			return nil
		}
		if path == root {
			return nil
		}
		if d.IsDir() {
			dirs = append(dirs, path)
		} else if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	return files, dirs
}

// prune removes dirs deepest first. Directories that are not empty stay.
func prune(dirs []string) {
	sort.Sort(sort.Reverse(sort.StringSlice(dirs)))
	for _, d := range dirs {
		_ = os.Remove(d)
	}
}

func move(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	// rename cannot cross devices; a mounted cloud folder often is one
	if err := copyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}
	return nil
}
