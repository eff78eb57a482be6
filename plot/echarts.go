package plot

import (
	"fmt"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/pivolan/dashboardr/domain/models"
)

const (
	defaultWidth  = 900
	defaultHeight = 500
	defaultMap    = "world"
)

// missingValue пустая точка в нотации ECharts
const missingValue = "-"

func size(d models.DisplayOptions) (int, int) {
	w, h := d.Width, d.Height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return w, h
}

func echartsValue(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return missingValue
	}
	return v
}

// seriesName имя ряда для легенды. У негруппированных графиков это имя колонки.
func seriesName(cfg models.ChartConfig, group string) string {
	if group != "" {
		return group
	}
	if cfg.YVar != "" {
		return cfg.YVar
	}
	if cfg.XVar != "" {
		return cfg.XVar
	}
	return string(cfg.Type)
}

func globalOptions(cfg models.ChartConfig, series int) []charts.GlobalOpts {
	d := cfg.Display
	w, h := size(d)
	theme := d.ECharts.Theme
	if theme == "" {
		theme = types.ThemeWesteros
	}
	tooltip := opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}
	if d.TooltipTemplate != "" {
		tooltip.Formatter = types.FuncStr(echartsTemplate(d.TooltipTemplate))
	}
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			ChartID:   cfg.ID,
			Width:     fmt.Sprintf("%dpx", w),
			Height:    fmt.Sprintf("%dpx", h),
			Theme:     theme,
			PageTitle: d.Title,
		}),
		charts.WithTitleOpts(opts.Title{Title: d.Title, Subtitle: d.Subtitle}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(d.ShowLegend(series))}),
		charts.WithTooltipOpts(tooltip),
		charts.WithColorsOpts(opts.Colors(palette(d))),
	}
}

func axisOptions(cfg models.ChartConfig, xType string) []charts.GlobalOpts {
	xLabel, yLabel := cfg.Display.XLabel, cfg.Display.YLabel
	if xLabel == "" {
		xLabel = cfg.XVar
	}
	if yLabel == "" {
		yLabel = string(cfg.Result.Mode)
	}
	return []charts.GlobalOpts{
		charts.WithXAxisOpts(opts.XAxis{Name: xLabel, Type: xType}),
		charts.WithYAxisOpts(opts.YAxis{Name: yLabel, Type: "value"}),
	}
}

func echartsBar(cfg models.ChartConfig) (models.ChartObject, error) {
	res := cfg.Result
	names := res.SeriesNames()
	bar := charts.NewBar()
	bar.SetGlobalOptions(append(globalOptions(cfg, len(names)), axisOptions(cfg, "category")...)...)
	bar.SetXAxis([]string(res.Categories))
	for _, name := range names {
		var so []charts.SeriesOpts
		if cfg.Type == models.ChartStackedBar {
			so = append(so, charts.WithBarChartOpts(opts.BarChart{Stack: "total"}))
		}
		if cfg.Type == models.ChartHistogram {
			so = append(so, charts.WithBarChartOpts(opts.BarChart{BarCategoryGap: "2%"}))
		}
		bar.AddSeries(seriesName(cfg, name), barData(res.Series(name)), so...)
	}
	if cfg.Display.Horizontal {
		bar.XYReversal()
	}
	return &EChart{meta: newMeta(cfg), chart: bar}, nil
}

func barData(values []float64) []opts.BarData {
	data := make([]opts.BarData, len(values))
	for i, v := range values {
		data[i] = opts.BarData{Value: echartsValue(v)}
	}
	return data
}

func echartsBoxplot(cfg models.ChartConfig) (models.ChartObject, error) {
	res := cfg.Result
	box := charts.NewBoxPlot()
	box.SetGlobalOptions(append(globalOptions(cfg, 1), axisOptions(cfg, "category")...)...)
	box.SetXAxis([]string(res.Categories))

	data := make([]opts.BoxPlotData, len(res.Categories))
	outliers := charts.NewScatter()
	var points []opts.ScatterData
	for i, c := range res.Categories {
		s, ok := res.Summaries[c]
		data[i] = opts.BoxPlotData{Name: c}
		if !ok || s.N == 0 {
			data[i].Value = []float64{}
			continue
		}
		data[i].Value = s.Box()
		for _, o := range s.Outliers {
			points = append(points, opts.ScatterData{Value: []interface{}{c, o}, SymbolSize: 8})
		}
	}
	box.AddSeries(seriesName(cfg, ""), data)
	if len(points) > 0 {
		outliers.AddSeries("outliers", points)
		box.Overlap(outliers)
	}
	return &EChart{meta: newMeta(cfg), chart: box}, nil
}

func echartsScatter(cfg models.ChartConfig) (models.ChartObject, error) {
	res := cfg.Result
	names := res.SeriesNames()
	sc := charts.NewScatter()
	sc.SetGlobalOptions(append(globalOptions(cfg, len(names)), axisOptions(cfg, "value")...)...)
	byGroup := make(map[string][]opts.ScatterData, len(names))
	for _, p := range res.Points {
		byGroup[p.Group] = append(byGroup[p.Group], opts.ScatterData{Value: []float64{p.X, p.Y}, SymbolSize: 8})
	}
	for _, name := range names {
		sc.AddSeries(seriesName(cfg, name), byGroup[name])
	}
	return &EChart{meta: newMeta(cfg), chart: sc}, nil
}

// echartsLollipop тонкий столбик с точкой на конце
func echartsLollipop(cfg models.ChartConfig) (models.ChartObject, error) {
	res := cfg.Result
	name := seriesName(cfg, "")
	values := res.Series("")

	bar := charts.NewBar()
	bar.SetGlobalOptions(append(globalOptions(cfg, 1), axisOptions(cfg, "category")...)...)
	bar.SetXAxis([]string(res.Categories))
	bar.AddSeries(name, barData(values), charts.WithBarChartOpts(opts.BarChart{BarWidth: "3"}))

	dots := charts.NewScatter()
	dots.SetXAxis([]string(res.Categories))
	points := make([]opts.ScatterData, len(values))
	for i, v := range values {
		points[i] = opts.ScatterData{Value: echartsValue(v), SymbolSize: 14}
	}
	dots.AddSeries(name, points)
	bar.Overlap(dots)
	if cfg.Display.Horizontal {
		bar.XYReversal()
	}
	return &EChart{meta: newMeta(cfg), chart: bar}, nil
}

// echartsDumbbell две точки на категорию, начало и конец
func echartsDumbbell(cfg models.ChartConfig) (models.ChartObject, error) {
	res := cfg.Result
	sc := charts.NewScatter()
	sc.SetGlobalOptions(append(globalOptions(cfg, len(res.Groups)), axisOptions(cfg, "category")...)...)
	sc.SetXAxis([]string(res.Categories))
	for _, g := range res.Groups {
		values := res.Series(g)
		points := make([]opts.ScatterData, len(values))
		for i, v := range values {
			points[i] = opts.ScatterData{Value: echartsValue(v), SymbolSize: 12}
		}
		sc.AddSeries(g, points)
	}
	return &EChart{meta: newMeta(cfg), chart: sc}, nil
}

func echartsFunnel(cfg models.ChartConfig) (models.ChartObject, error) {
	res := cfg.Result
	f := charts.NewFunnel()
	f.SetGlobalOptions(globalOptions(cfg, len(res.Categories))...)
	data := make([]opts.FunnelData, 0, len(res.Categories))
	for _, c := range res.Categories {
		data = append(data, opts.FunnelData{Name: c, Value: echartsValue(res.Get(c, "").Display)})
	}
	f.AddSeries(seriesName(cfg, ""), data)
	return &EChart{meta: newMeta(cfg), chart: f}, nil
}

// gaugePercent положение значения на шкале min..max в процентах
func gaugePercent(v float64, g models.GaugeOptions) float64 {
	if g.Max <= g.Min {
		return v
	}
	return (v - g.Min) / (g.Max - g.Min) * 100
}

func echartsGauge(cfg models.ChartConfig) (models.ChartObject, error) {
	res := cfg.Result
	g := charts.NewGauge()
	g.SetGlobalOptions(globalOptions(cfg, 1)...)
	data := make([]opts.GaugeData, 0, len(res.Categories))
	for _, c := range res.Categories {
		v := roundDisplay(gaugePercent(res.Get(c, "").Value, cfg.Display.Gauge), cfg.Display.Precision())
		data = append(data, opts.GaugeData{Name: c, Value: echartsValue(v)})
	}
	g.AddSeries(seriesName(cfg, ""), data)
	return &EChart{meta: newMeta(cfg), chart: g}, nil
}

// echartsTreemap категории верхнего уровня, группы вложены в них
func echartsTreemap(cfg models.ChartConfig) (models.ChartObject, error) {
	res := cfg.Result
	tm := charts.NewTreeMap()
	tm.SetGlobalOptions(globalOptions(cfg, 1)...)
	nodes := make([]opts.TreeMapNode, 0, len(res.Categories))
	for _, c := range res.Categories {
		node := opts.TreeMapNode{Name: c}
		if len(res.Groups) == 0 {
			node.Value = treemapValue(res.Get(c, "").Display)
		}
		for _, g := range res.Groups {
			v := treemapValue(res.Get(c, g).Display)
			if v == 0 {
				continue
			}
			node.Children = append(node.Children, opts.TreeMapNode{Name: g, Value: v})
			node.Value += v
		}
		nodes = append(nodes, node)
	}
	tm.AddSeries(seriesName(cfg, ""), nodes, charts.WithTreeMapOpts(opts.TreeMapChart{Roam: opts.Bool(false)}))
	return &EChart{meta: newMeta(cfg), chart: tm}, nil
}

func treemapValue(v float64) int {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return int(math.Round(v))
}

func echartsMap(cfg models.ChartConfig) (models.ChartObject, error) {
	res := cfg.Result
	mapType := cfg.Display.Map.MapType
	if mapType == "" {
		mapType = defaultMap
	}
	m := charts.NewMap()
	m.RegisterMapType(mapType)

	data := make([]opts.MapData, 0, len(res.Categories))
	maxValue := 0.0
	for _, c := range res.Categories {
		v := res.Get(c, "").Display
		if !math.IsNaN(v) && v > maxValue {
			maxValue = v
		}
		data = append(data, opts.MapData{Name: c, Value: echartsValue(v)})
	}
	m.SetGlobalOptions(append(globalOptions(cfg, 1),
		charts.WithVisualMapOpts(opts.VisualMap{Calculable: opts.Bool(true), Max: float32(maxValue)}))...)
	m.AddSeries(seriesName(cfg, ""), data)
	return &EChart{meta: newMeta(cfg), chart: m}, nil
}

func roundDisplay(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
