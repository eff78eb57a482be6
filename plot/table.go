package plot

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/pivolan/dashboardr/domain/models"
	"github.com/pivolan/dashboardr/pipeline"
)

var tableStyles = map[string]table.Style{
	"default": table.StyleDefault,
	"light":   table.StyleLight,
	"rounded": table.StyleRounded,
	"bold":    table.StyleBold,
	"double":  table.StyleDouble,
	"colored": table.StyleColoredBright,
}

var tableFormats = map[string]string{
	"text":     "txt",
	"markdown": "md",
	"csv":      "csv",
	"html":     "html",
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// renderTable табличное представление любого результата агрегации
func renderTable(cfg models.ChartConfig) (models.ChartObject, error) {
	opt := cfg.Display.Table
	format := opt.Format
	if format == "" {
		format = "text"
	}
	ext, ok := tableFormats[format]
	if !ok {
		valid := sortedKeys(tableFormats)
		return nil, &pipeline.InvalidOptionError{Param: "table.format", Value: format, Valid: valid}
	}
	styleName := opt.Style
	if styleName == "" {
		styleName = "default"
	}
	style, ok := tableStyles[styleName]
	if !ok {
		valid := sortedKeys(tableStyles)
		return nil, &pipeline.InvalidOptionError{Param: "table.style", Value: styleName, Valid: valid}
	}

	t := table.NewWriter()
	if cfg.Display.Title != "" {
		t.SetTitle(cfg.Display.Title)
	}
	switch cfg.Result.Mode {
	case models.ModeSummary:
		summaryRows(t, cfg)
	case models.ModePoints:
		pointRows(t, cfg)
	default:
		cellRows(t, cfg)
	}
	t.SetStyle(style)

	var text string
	switch format {
	case "markdown":
		text = t.RenderMarkdown()
	case "csv":
		text = t.RenderCSV()
	case "html":
		text = t.RenderHTML()
	default:
		text = t.Render()
	}
	return &TextChart{meta: newMeta(cfg), text: text + "\n", ext: ext}, nil
}

func formatCell(v float64, decimals int) string {
	if math.IsNaN(v) {
		return ""
	}
	return fmt.Sprintf("%.*f", decimals, v)
}

func headerName(cfg models.ChartConfig) string {
	if cfg.XVar != "" {
		return cfg.XVar
	}
	return "category"
}

func cellRows(t table.Writer, cfg models.ChartConfig) {
	res := cfg.Result
	prec := cfg.Display.Precision()
	names := res.SeriesNames()
	header := table.Row{headerName(cfg)}
	for _, n := range names {
		header = append(header, seriesName(cfg, n))
	}
	t.AppendHeader(header)
	for _, c := range res.Categories {
		row := table.Row{c}
		for _, n := range names {
			row = append(row, formatCell(res.Get(c, n).Display, prec))
		}
		t.AppendRow(row)
	}
	switch res.Mode {
	case models.ModeCount, models.ModeWeighted:
		footer := table.Row{"Total"}
		for _, n := range names {
			sum := 0.0
			for _, v := range res.Series(n) {
				if !math.IsNaN(v) {
					sum += v
				}
			}
			footer = append(footer, formatCell(sum, prec))
		}
		t.AppendFooter(footer)
	}
}

func summaryRows(t table.Writer, cfg models.ChartConfig) {
	res := cfg.Result
	prec := cfg.Display.Precision()
	t.AppendHeader(table.Row{headerName(cfg), "n", "low", "q1", "median", "q3", "high", "outliers"})
	for _, c := range res.Categories {
		s, ok := res.Summaries[c]
		if !ok {
			s = models.EmptyFiveNumber()
		}
		outliers := make([]string, len(s.Outliers))
		for i, o := range s.Outliers {
			outliers[i] = formatCell(o, prec)
		}
		t.AppendRow(table.Row{c, s.N,
			formatCell(s.Low, prec), formatCell(s.Q1, prec), formatCell(s.Median, prec),
			formatCell(s.Q3, prec), formatCell(s.High, prec), strings.Join(outliers, " ")})
	}
}

func pointRows(t table.Writer, cfg models.ChartConfig) {
	res := cfg.Result
	prec := cfg.Display.Precision()
	header := table.Row{cfg.XVar, cfg.YVar}
	if len(res.Groups) > 0 {
		header = append(header, cfg.GroupVar)
	}
	t.AppendHeader(header)
	for _, p := range res.Points {
		row := table.Row{formatCell(p.X, prec), formatCell(p.Y, prec)}
		if len(res.Groups) > 0 {
			row = append(row, p.Group)
		}
		t.AppendRow(row)
	}
}
