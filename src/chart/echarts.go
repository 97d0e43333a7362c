package chart

import (
	"os"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

func renderHTML(path string, all []series, spec Spec) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: spec.Title,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: spec.YLabel,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "time",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithDataZoomOpts(
			opts.DataZoom{
				Type:  "slider",
				Start: 0,
				End:   100,
			},
			opts.DataZoom{
				Type:  "inside",
				Start: 0,
				End:   100,
			},
		),
	)
	for _, s := range all {
		data := make([]opts.LineData, 0, len(s.points))
		for _, pt := range s.points {
			data = append(data, opts.LineData{Value: []interface{}{time.Unix(int64(pt.X), 0).UTC(), pt.Y}})
		}
		line.AddSeries(s.name, data)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return line.Render(f)
}
