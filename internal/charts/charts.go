// Package charts renders view results as interactive HTML bar charts.
package charts

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/shardsquad/shardstats/schema"
)

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title    string
	Subtitle string
	Width    string // e.g. "900px"
	Height   string
	Theme    string
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig(title string) ChartConfig {
	return ChartConfig{
		Title:  title,
		Width:  "900px",
		Height: "500px",
		Theme:  "light",
	}
}

// SeriesData is one named series of values aligned with the x-axis labels.
type SeriesData struct {
	Name   string
	Values []float64
}

// NewBarChart builds a bar chart. With stacked set, all series share one stack.
func NewBarChart(labels []string, series []SeriesData, stacked bool, config ChartConfig) (*charts.Bar, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("no data series provided")
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(len(series) > 1),
		}),
	)

	bar.SetXAxis(labels)
	for _, s := range series {
		if len(s.Values) != len(labels) {
			return nil, fmt.Errorf("series %q has %d values for %d labels", s.Name, len(s.Values), len(labels))
		}
		data := make([]opts.BarData, len(s.Values))
		for i, v := range s.Values {
			data[i] = opts.BarData{Value: v}
		}
		bar.AddSeries(s.Name, data)
	}
	if stacked {
		bar.SetSeriesOptions(charts.WithBarChartOpts(opts.BarChart{Stack: "total"}))
	}
	return bar, nil
}

// DefeatsChart plots the number of defeats at each wave.
func DefeatsChart(waves []schema.WaveCount) (*charts.Bar, error) {
	labels := make([]string, len(waves))
	values := make([]float64, len(waves))
	for i, w := range waves {
		labels[i] = strconv.Itoa(w.Wave)
		values[i] = float64(w.Defeats)
	}
	return NewBarChart(labels, []SeriesData{{Name: "Defeats", Values: values}}, false, DefaultChartConfig("Defeats per wave"))
}

// PlayersChart plots stacked wins and losses per player.
func PlayersChart(players []schema.PlayerRecord) (*charts.Bar, error) {
	labels := make([]string, len(players))
	wins := make([]float64, len(players))
	losses := make([]float64, len(players))
	for i, p := range players {
		labels[i] = p.Name
		wins[i] = float64(p.Wins)
		losses[i] = float64(p.Losses)
	}
	series := []SeriesData{{Name: "Wins", Values: wins}, {Name: "Losses", Values: losses}}
	return NewBarChart(labels, series, true, DefaultChartConfig("Wins and losses per player"))
}

// CharacterChart plots mean DPS and mean boss damage of one role's detail table.
func CharacterChart(summary schema.RoleSummary) (*charts.Bar, error) {
	labels := make([]string, len(summary.Table))
	dps := make([]float64, len(summary.Table))
	boss := make([]float64, len(summary.Table))
	for i, row := range summary.Table {
		labels[i] = row.Name
		dps[i] = row.MeanDPS
		boss[i] = row.MeanBossDamage
	}
	cfg := DefaultChartConfig(fmt.Sprintf("%s characters among wins", summary.Role))
	return NewBarChart(labels, []SeriesData{{Name: "Mean DPS", Values: dps}, {Name: "Mean boss damage", Values: boss}}, false, cfg)
}

// RenderPage writes all charts into a single HTML page.
func RenderPage(w io.Writer, bars ...*charts.Bar) error {
	page := components.NewPage()
	page.SetPageTitle("shardstats")
	for _, b := range bars {
		page.AddCharts(b)
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// WriteChartFile renders the charts into an HTML file at path.
func WriteChartFile(path string, bars ...*charts.Bar) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return RenderPage(f, bars...)
}
