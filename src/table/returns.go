package table

import (
	"math"

	"github.com/shopspring/decimal"
)

// CumulativeReturns computes (1 + pct_change).cumprod() - 1 for every numeric
// column. A missing cell repeats the previous cumulative value; text columns are
// dropped.
func (t *Table) CumulativeReturns() *Table {
	out := &Table{IndexName: t.IndexName, Index: t.Index}
	one := decimal.NewFromInt(1)
	for _, c := range t.Columns {
		if c.Kind != Float {
			continue
		}
		values := make([]float64, len(c.Floats))
		growth := one
		var prev decimal.Decimal
		havePrev := false
		for i, v := range c.Floats {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				values[i] = growth.Sub(one).InexactFloat64()
				continue
			}
			cur := decimal.NewFromFloat(v)
			if havePrev && !prev.IsZero() {
				growth = growth.Mul(cur.Div(prev))
			}
			prev, havePrev = cur, true
			values[i] = growth.Sub(one).InexactFloat64()
		}
		out.Columns = append(out.Columns, NewFloatColumn(c.Name, values))
	}
	return out
}
