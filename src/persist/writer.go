// Package persist writes each table as a Parquet file and a CSV file side by side.
package persist

import (
	"fmt"
	"os"
	"path/filepath"

	"findash/src/common"
	"findash/src/storage"
	"findash/src/table"
)

type Writer struct {
	layout *storage.Layout
	date   string
}

// NewWriter names every artifact after date, the day of the run.
func NewWriter(layout *storage.Layout, date string) *Writer {
	return &Writer{layout: layout, date: date}
}

func (w *Writer) Date() string { return w.date }

// Save writes {date}_{name}.parquet then {date}_{name}.csv into the area's
// directory, replacing files of the same name. A failure can leave the first
// file written without the second.
func (w *Writer) Save(t *table.Table, name string, area storage.Area) error {
	dir := w.layout.Dir(area)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	parquetPath := filepath.Join(dir, storage.ArtifactName(w.date, name, "parquet"))
	if err := writeFile(parquetPath, func(f *os.File) error { return WriteParquet(f, t) }); err != nil {
		return fmt.Errorf("save %s parquet: %w", name, err)
	}
	csvPath := filepath.Join(dir, storage.ArtifactName(w.date, name, "csv"))
	if err := writeFile(csvPath, func(f *os.File) error { return t.WriteCSV(f) }); err != nil {
		return fmt.Errorf("save %s csv: %w", name, err)
	}
	common.Logger.Sugar().Infof("[save] %s rows=%d cols=%d -> %s", name, t.Len(), len(t.Columns), dir)
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
