package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"
)

const IndexLayout = "2006-01-02 15:04:05.999"

// WriteCSV writes the index as the first column followed by every column.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := append([]string{t.IndexName}, t.ColumnNames()...)
	if err := cw.Write(header); err != nil {
		return err
	}
	record := make([]string, len(header))
	for i, ts := range t.Index {
		record[0] = ts.UTC().Format(IndexLayout)
		for j, c := range t.Columns {
			record[j+1] = formatCell(c, i)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatCell(c *Column, i int) string {
	if c.Missing(i) {
		return ""
	}
	if c.Kind == Text {
		return c.Strings[i]
	}
	return strconv.FormatFloat(c.Floats[i], 'g', -1, 64)
}

// ReadCSV loads a table written by WriteCSV. Columns whose non-empty cells all
// parse as numbers are numeric, the others textual.
func ReadCSV(r io.Reader) (*Table, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, fmt.Errorf("csv has no header")
	}
	header := records[0]
	rows := records[1:]
	index := make([]time.Time, len(rows))
	for i, rec := range rows {
		ts, err := time.ParseInLocation("2006-01-02 15:04:05", rec[0], time.UTC)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		index[i] = ts
	}
	cols := make([]*Column, 0, len(header)-1)
	for j := 1; j < len(header); j++ {
		cells := make([]string, len(rows))
		for i, rec := range rows {
			cells[i] = rec[j]
		}
		cols = append(cols, parseColumn(header[j], cells))
	}
	return New(header[0], index, cols...)
}

func ReadCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

func parseColumn(name string, cells []string) *Column {
	floats := make([]float64, len(cells))
	for i, cell := range cells {
		if cell == "" {
			floats[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return NewTextColumn(name, cells)
		}
		floats[i] = v
	}
	return NewFloatColumn(name, floats)
}
