package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/irdump/internal/irdump"
)

// timelineLineData traces the outline of every bar so that a plain line
// series on a value axis reproduces the PNG timeline.
func timelineLineData(spans []Span) []opts.LineData {
	data := make([]opts.LineData, 0, 4*len(spans))
	for _, s := range spans {
		h := s.Height()
		data = append(data,
			opts.LineData{Value: []interface{}{s.Start, 0}},
			opts.LineData{Value: []interface{}{s.Start, h}},
			opts.LineData{Value: []interface{}{s.End, h}},
			opts.LineData{Value: []interface{}{s.End, 0}},
		)
	}
	return data
}

// NewTimelineChart builds the interactive timeline of one raw signal.
func NewTimelineChart(sig irdump.RawSignal) *charts.Line {
	spans := Timeline(sig.Data)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "IR signals", Theme: "dark", Width: "1512px", Height: "800px"}),
		charts.WithTitleOpts(opts.Title{Title: sig.Name, Subtitle: fmt.Sprintf("frequency=%dHz durations=%d", sig.Frequency, sig.Len())}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Min: 0, Max: XLimit(spans), Name: "Time (µs)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Min: 0, Max: TimelineYMax}),
	)
	line.AddSeries("timeline", timelineLineData(spans),
		charts.WithLineStyleOpts(opts.LineStyle{Color: "#1B5E20"}),
	)
	return line
}

// RenderTimelinePage writes one HTML page holding a timeline chart per
// signal, in dump order.
func RenderTimelinePage(w io.Writer, signals []irdump.RawSignal) error {
	page := components.NewPage()
	page.SetPageTitle("IR signals")
	for _, sig := range signals {
		page.AddCharts(NewTimelineChart(sig))
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render timeline page: %w", err)
	}
	return nil
}
