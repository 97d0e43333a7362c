package persist

import (
	"fmt"
	"io"

	"findash/src/table"

	"github.com/parquet-go/parquet-go"
)

// IndexColumnsKey is the key value metadata naming the index column.
const IndexColumnsKey = "index_columns"

// Schema maps the index to a millisecond timestamp column and every column to an
// optional DOUBLE or STRING leaf.
func Schema(t *table.Table) *parquet.Schema {
	group := parquet.Group{
		t.IndexName: parquet.Timestamp(parquet.Millisecond),
	}
	for _, c := range t.Columns {
		if c.Kind == table.Text {
			group[c.Name] = parquet.Optional(parquet.String())
		} else {
			group[c.Name] = parquet.Optional(parquet.Leaf(parquet.DoubleType))
		}
	}
	return parquet.NewSchema("table", group)
}

func WriteParquet(w io.Writer, t *table.Table) error {
	schema := Schema(t)
	// a group orders its fields by name, so look each one up
	position := make(map[string]int, len(t.Columns)+1)
	for i, path := range schema.Columns() {
		position[path[0]] = i
	}
	indexPos, ok := position[t.IndexName]
	if !ok {
		return fmt.Errorf("index column %q missing from schema", t.IndexName)
	}

	pw := parquet.NewWriter(w, schema, parquet.KeyValueMetadata(IndexColumnsKey, t.IndexName))
	rows := make([]parquet.Row, t.Len())
	for i, ts := range t.Index {
		row := make(parquet.Row, len(position))
		row[indexPos] = parquet.Int64Value(ts.UnixMilli()).Level(0, 0, indexPos)
		for _, c := range t.Columns {
			pos := position[c.Name]
			switch {
			case c.Missing(i):
				row[pos] = parquet.NullValue().Level(0, 0, pos)
			case c.Kind == table.Text:
				row[pos] = parquet.ByteArrayValue([]byte(c.Strings[i])).Level(0, 1, pos)
			default:
				row[pos] = parquet.DoubleValue(c.Floats[i]).Level(0, 1, pos)
			}
		}
		rows[i] = row
	}
	if _, err := pw.WriteRows(rows); err != nil {
		pw.Close()
		return err
	}
	return pw.Close()
}
