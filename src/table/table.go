// Package table holds the timestamp indexed tables fetched in a run.
package table

import (
	"fmt"
	"math"
	"sort"
	"time"
)

type Kind int

const (
	Float Kind = iota
	Text
)

// Column is either numeric (NaN marks a missing cell) or textual ("" marks one).
type Column struct {
	Name    string
	Kind    Kind
	Floats  []float64
	Strings []string
}

func NewFloatColumn(name string, values []float64) *Column {
	return &Column{Name: name, Kind: Float, Floats: values}
}

func NewTextColumn(name string, values []string) *Column {
	return &Column{Name: name, Kind: Text, Strings: values}
}

func (c *Column) Len() int {
	if c.Kind == Text {
		return len(c.Strings)
	}
	return len(c.Floats)
}

// Missing reports whether row i has no value.
func (c *Column) Missing(i int) bool {
	if c.Kind == Text {
		return c.Strings[i] == ""
	}
	return math.IsNaN(c.Floats[i])
}

func (c *Column) clone(rows []int) *Column {
	out := &Column{Name: c.Name, Kind: c.Kind}
	if c.Kind == Text {
		out.Strings = make([]string, len(rows))
		for i, r := range rows {
			if r >= 0 {
				out.Strings[i] = c.Strings[r]
			}
		}
		return out
	}
	out.Floats = make([]float64, len(rows))
	for i, r := range rows {
		if r >= 0 {
			out.Floats[i] = c.Floats[r]
		} else {
			out.Floats[i] = math.NaN()
		}
	}
	return out
}

type Table struct {
	IndexName string
	Index     []time.Time
	Columns   []*Column
}

func New(indexName string, index []time.Time, columns ...*Column) (*Table, error) {
	t := &Table{IndexName: indexName, Index: index, Columns: columns}
	seen := map[string]bool{indexName: true}
	for _, c := range columns {
		if c.Len() != len(index) {
			return nil, fmt.Errorf("column %s has %d rows, index has %d", c.Name, c.Len(), len(index))
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("duplicate column %s", c.Name)
		}
		seen[c.Name] = true
	}
	return t, nil
}

func (t *Table) Len() int { return len(t.Index) }

func (t *Table) Empty() bool { return t == nil || len(t.Index) == 0 || len(t.Columns) == 0 }

func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Sorted returns a copy ordered by index. Rows with equal timestamps keep their order.
func (t *Table) Sorted() *Table {
	rows := make([]int, len(t.Index))
	for i := range rows {
		rows[i] = i
	}
	sort.SliceStable(rows, func(a, b int) bool { return t.Index[rows[a]].Before(t.Index[rows[b]]) })
	return t.take(rows)
}

func (t *Table) take(rows []int) *Table {
	out := &Table{IndexName: t.IndexName, Index: make([]time.Time, len(rows))}
	for i, r := range rows {
		out.Index[i] = t.Index[r]
	}
	for _, c := range t.Columns {
		out.Columns = append(out.Columns, c.clone(rows))
	}
	return out
}

// Select keeps the columns accepted by keep, in their current order.
func (t *Table) Select(keep func(name string) bool) *Table {
	out := &Table{IndexName: t.IndexName, Index: t.Index}
	for _, c := range t.Columns {
		if keep(c.Name) {
			out.Columns = append(out.Columns, c)
		}
	}
	return out
}

// Rename returns a table sharing the data with every column renamed by fn.
func (t *Table) Rename(fn func(name string) string) (*Table, error) {
	cols := make([]*Column, len(t.Columns))
	for i, c := range t.Columns {
		cp := *c
		cp.Name = fn(c.Name)
		cols[i] = &cp
	}
	return New(t.IndexName, t.Index, cols...)
}

// Join outer joins tables on their index. The result is sorted by index and
// carries the index name of the first table.
func Join(tables ...*Table) (*Table, error) {
	var (
		indexName string
		keys      []int64
		seen      = map[int64]bool{}
	)
	for _, t := range tables {
		if t == nil {
			continue
		}
		if indexName == "" {
			indexName = t.IndexName
		}
		for _, ts := range t.Index {
			k := ts.UnixNano()
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Slice(keys, func(a, b int) bool { return keys[a] < keys[b] })
	pos := make(map[int64]int, len(keys))
	index := make([]time.Time, len(keys))
	for i, k := range keys {
		pos[k] = i
		index[i] = time.Unix(0, k).UTC()
	}

	var cols []*Column
	for _, t := range tables {
		if t == nil {
			continue
		}
		rows := make([]int, len(keys))
		for i := range rows {
			rows[i] = -1
		}
		for r, ts := range t.Index {
			// a duplicated timestamp keeps its last row
			rows[pos[ts.UnixNano()]] = r
		}
		for _, c := range t.Columns {
			cols = append(cols, c.clone(rows))
		}
	}
	return New(indexName, index, cols...)
}
