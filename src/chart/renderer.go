// Package chart draws line charts of table columns.
package chart

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"

	"findash/src/common"
	"findash/src/storage"
	"findash/src/table"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

type Options struct {
	DPI    float64
	Width  float64 // inches
	Height float64 // inches
	HTML   bool
}

// Renderer writes {date}_{name}.png, and the HTML companion when enabled, into dir.
type Renderer struct {
	dir  string
	date string
	opts Options
}

func NewRenderer(dir, date string, opts Options) *Renderer {
	if opts.DPI == 0 {
		opts.DPI = 150
	}
	if opts.Width == 0 {
		opts.Width = 11
	}
	if opts.Height == 0 {
		opts.Height = 6
	}
	return &Renderer{dir: dir, date: date, opts: opts}
}

// Spec describes one chart.
type Spec struct {
	Name    string
	Title   string
	YLabel  string
	Columns []string // empty means every numeric column
	Height  float64  // overrides Options.Height when set
}

func (r *Renderer) Render(t *table.Table, spec Spec) error {
	series := collect(t, spec.Columns)
	if len(series) == 0 {
		return fmt.Errorf("chart %s: no numeric data", spec.Name)
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return err
	}
	pngPath := filepath.Join(r.dir, storage.ArtifactName(r.date, spec.Name, "png"))
	if err := r.renderPNG(pngPath, series, spec); err != nil {
		return fmt.Errorf("chart %s: %w", spec.Name, err)
	}
	common.Logger.Sugar().Infof("[chart] %s", pngPath)
	if !r.opts.HTML {
		return nil
	}
	htmlPath := filepath.Join(r.dir, storage.ArtifactName(r.date, spec.Name, "html"))
	if err := renderHTML(htmlPath, series, spec); err != nil {
		return fmt.Errorf("chart %s html: %w", spec.Name, err)
	}
	return nil
}

type series struct {
	name   string
	points plotter.XYs
}

// collect drops missing cells; a column without any value is left out.
func collect(t *table.Table, columns []string) []series {
	var out []series
	for _, c := range t.Columns {
		if c.Kind != table.Float || (len(columns) > 0 && !slices.Contains(columns, c.Name)) {
			continue
		}
		pts := make(plotter.XYs, 0, len(c.Floats))
		for i, v := range c.Floats {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			pts = append(pts, plotter.XY{X: float64(t.Index[i].Unix()), Y: v})
		}
		if len(pts) > 0 {
			out = append(out, series{name: c.Name, points: pts})
		}
	}
	return out
}

func (r *Renderer) renderPNG(path string, all []series, spec Spec) error {
	p := plot.New()
	p.Title.Text = spec.Title
	p.Y.Label.Text = spec.YLabel
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	for i, s := range all {
		line, err := plotter.NewLine(s.points)
		if err != nil {
			return err
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		if len(all) > 1 {
			p.Legend.Add(s.name, line)
		}
	}

	height := r.opts.Height
	if spec.Height > 0 {
		height = spec.Height
	}
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(r.opts.Width)*vg.Inch, vg.Length(height)*vg.Inch),
		vgimg.UseDPI(int(r.opts.DPI)),
	)
	p.Draw(draw.New(c))

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
