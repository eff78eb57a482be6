package plot

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/pivolan/dashboardr/domain/models"
)

const minBarWidth = 100

func calculateGridStep(maxValue float64) float64 {
	// Проверка на корректность входного значения
	if maxValue <= 0 {
		return 0
	}

	// Обработка очень маленьких чисел
	if maxValue < 1e-10 {
		return 1e-10
	}

	// Находим порядок величины максимального значения
	magnitude := math.Pow(10, math.Floor(math.Log10(maxValue)))

	// Нормализуем значение к диапазону [1, 10)
	normalized := maxValue / magnitude

	var step float64
	switch {
	case normalized <= 1:
		step = 0.2
	case normalized <= 2:
		step = 0.5
	case normalized <= 5:
		step = 1.0
	default:
		step = 2.0
	}

	finalStep := step * magnitude

	// Округляем большие шаги до "красивых" чисел
	if finalStep >= 1000 {
		return math.Round(finalStep/100) * 100
	}
	if finalStep >= 100 {
		return math.Round(finalStep/10) * 10
	}

	return finalStep
}

// gridTicks деления оси Y от нуля до максимума
func gridTicks(maxValue float64, decimals int) []chart.Tick {
	step := calculateGridStep(maxValue)
	if step <= 0 {
		return nil
	}
	format := fmt.Sprintf("%%.%df", decimals)
	var ticks []chart.Tick
	for i := 0.0; i <= maxValue+step/2; i += step {
		ticks = append(ticks, chart.Tick{
			Value: i,
			Label: fmt.Sprintf(format, i),
		})
	}
	return ticks
}

func findMaxValue(y []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	max := y[0]
	for _, v := range y {
		if v > max {
			max = v
		}
	}
	return max
}

func customizePaddingXBottom(values []chart.Value) int {
	count := 0
	for _, v := range values {
		if len(v.Label) > count {
			count = len(v.Label)
		}
	}
	return int(count * 8)
}

// valueRange диапазон оси значений с запасом. go-chart не рисует нулевой диапазон.
func valueRange(values ...[]float64) *chart.ContinuousRange {
	lo, hi := 0.0, 0.0
	for _, vs := range values {
		for _, v := range vs {
			if math.IsNaN(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if hi-lo == 0 {
		hi = lo + 1
	}
	pad := (hi - lo) * 0.05
	if lo < 0 {
		lo -= pad
	}
	return &chart.ContinuousRange{Min: lo, Max: hi + pad}
}

func numberFormatter(decimals int) chart.ValueFormatter {
	format := fmt.Sprintf("%%.%df", decimals)
	return func(v interface{}) string {
		if vf, isFloat := v.(float64); isFloat {
			return fmt.Sprintf(format, vf)
		}
		return ""
	}
}

func background(paddingBottom int) chart.Style {
	return chart.Style{
		Padding: chart.Box{
			Top:    50,
			Left:   20,
			Right:  20,
			Bottom: paddingBottom,
		},
		FillColor:   drawing.ColorWhite,
		StrokeWidth: 1,
		StrokeColor: drawing.ColorFromHex("efefef"),
	}
}

// dimensions явный размер из настроек либо расчёт по числу столбцов
func dimensions(d models.DisplayOptions, n int) (int, int) {
	if d.Width > 0 && d.Height > 0 {
		return d.Width, d.Height
	}
	w, h := chartDimensions(n, minBarWidth)
	if w == 0 {
		return size(d)
	}
	return w, h
}

func DrawPlotBar(data dataForGraph, d models.DisplayOptions) ([]byte, error) {
	barValues := data.generateBarValues()
	if len(barValues) == 0 {
		return nil, fmt.Errorf("error rendering chart: no categories")
	}
	paddingX := customizePaddingXBottom(barValues)
	width, height := dimensions(d, len(barValues))
	barWidth := d.GoChart.BarWidth
	if barWidth <= 0 {
		barWidth = 60
	}
	bar := chart.BarChart{
		Title:      data.GetNameGraph(),
		Background: background(paddingX),
		Height:     height + 50,
		Width:      width + paddingX + 50,
		BarWidth:   barWidth,
		Bars:       barValues,
	}
	bar.YAxis = chart.YAxis{
		Name:           data.getNameYAxis(),
		Range:          valueRange(data.getYValues()),
		ValueFormatter: numberFormatter(d.Precision()),
		Style: chart.Style{
			StrokeWidth: 2, // Толщина линии
			StrokeColor: chart.ColorBlack,
			FontSize:    17,
		},
		Ticks: data.generateGrid(),
		GridMajorStyle: chart.Style{
			StrokeColor:     chart.ColorBlack,
			StrokeWidth:     1,
			DotWidth:        1,
			StrokeDashArray: []float64{5.0, 5.0}, // Пунктирная линия
		},
	}
	bar.XAxis = chart.Style{
		StrokeWidth:         2,
		StrokeColor:         chart.ColorBlack,
		TextRotationDegrees: 88,
		FontSize:            17,
	}
	return renderPNG(bar.Render)
}

// DrawStackedBar столбец на категорию, сегмент на группу
func DrawStackedBar(cfg models.ChartConfig) ([]byte, error) {
	res := cfg.Result
	if len(res.Categories) == 0 {
		return nil, fmt.Errorf("error rendering chart: no categories")
	}
	var bars []chart.StackedBar
	for _, c := range res.Categories {
		sb := chart.StackedBar{Name: c}
		for gi, g := range res.SeriesNames() {
			v := res.Get(c, g).Display
			if math.IsNaN(v) || v <= 0 {
				continue
			}
			sb.Values = append(sb.Values, chart.Value{
				Label: seriesName(cfg, g),
				Value: v,
				Style: chart.Style{
					FillColor:   drawingColor(paletteColor(cfg.Display, gi)),
					StrokeColor: drawing.ColorWhite,
					StrokeWidth: 1,
				},
			})
		}
		bars = append(bars, sb)
	}
	width, height := dimensions(cfg.Display, len(bars))
	stacked := chart.StackedBarChart{
		Title:        cfg.Display.Title,
		Width:        width,
		Height:       height,
		Background:   background(40),
		IsHorizontal: cfg.Display.Horizontal,
		XAxis:        chart.Style{FontSize: 12},
		YAxis:        chart.Style{FontSize: 12},
		Bars:         bars,
	}
	return renderPNG(stacked.Render)
}

// DrawScatter точки по группам, каждая группа своим цветом
func DrawScatter(cfg models.ChartConfig) ([]byte, error) {
	res := cfg.Result
	if len(res.Points) == 0 {
		return nil, fmt.Errorf("error rendering chart: no points")
	}
	var xs, ys []float64
	var series []chart.Series
	for gi, g := range res.SeriesNames() {
		s := &chart.ContinuousSeries{
			Name:  seriesName(cfg, g),
			Style: dotStyle(paletteColor(cfg.Display, gi), 5),
		}
		for _, p := range res.Points {
			if p.Group != g {
				continue
			}
			s.XValues = append(s.XValues, p.X)
			s.YValues = append(s.YValues, p.Y)
		}
		if len(s.XValues) == 0 {
			continue
		}
		xs = append(xs, s.XValues...)
		ys = append(ys, s.YValues...)
		series = append(series, s)
	}
	xr := spanRange(xs)
	yr := spanRange(ys)

	graph := chart.Chart{
		Title:      cfg.Display.Title,
		Background: background(40),
		XAxis: chart.XAxis{
			Name:           xAxisName(cfg),
			Range:          xr,
			ValueFormatter: numberFormatter(cfg.Display.Precision()),
		},
		YAxis: chart.YAxis{
			Name:           yAxisName(cfg),
			Range:          yr,
			ValueFormatter: numberFormatter(cfg.Display.Precision()),
		},
		Series: series,
	}
	graph.Width, graph.Height = size(cfg.Display)
	if cfg.Display.ShowLegend(len(series)) {
		graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	}
	return renderPNG(graph.Render)
}

// DrawLollipop палочка от нуля до значения и точка на конце
func DrawLollipop(cfg models.ChartConfig) ([]byte, error) {
	res := cfg.Result
	values := cleanValues(res.Series(""))
	color := paletteColor(cfg.Display, 0)
	var series []chart.Series
	for i, v := range values {
		series = append(series, stickSeries(float64(i+1), 0, v, color))
	}
	dots := &chart.ContinuousSeries{
		Name:  seriesName(cfg, ""),
		Style: dotStyle(color, 8),
	}
	for i, v := range values {
		dots.XValues = append(dots.XValues, float64(i+1))
		dots.YValues = append(dots.YValues, v)
	}
	series = append(series, dots)
	return drawCategoryChart(cfg, series, []chart.Series{dots}, values)
}

// DrawDumbbell отрезок от начала до конца и точка на каждом краю
func DrawDumbbell(cfg models.ChartConfig) ([]byte, error) {
	res := cfg.Result
	if len(res.Groups) != 2 {
		return nil, fmt.Errorf("error rendering chart: dumbbell needs start and end series")
	}
	start := res.Series(res.Groups[0])
	end := res.Series(res.Groups[1])
	var series, named []chart.Series
	for i := range res.Categories {
		if math.IsNaN(start[i]) || math.IsNaN(end[i]) {
			continue
		}
		series = append(series, stickSeries(float64(i+1), start[i], end[i], "#999999"))
	}
	for gi, values := range [][]float64{start, end} {
		dots := &chart.ContinuousSeries{
			Name:  res.Groups[gi],
			Style: dotStyle(paletteColor(cfg.Display, gi), 8),
		}
		for i, v := range values {
			if math.IsNaN(v) {
				continue
			}
			dots.XValues = append(dots.XValues, float64(i+1))
			dots.YValues = append(dots.YValues, v)
		}
		if len(dots.XValues) == 0 {
			continue
		}
		series = append(series, dots)
		named = append(named, dots)
	}
	return drawCategoryChart(cfg, series, named, start, end)
}

// drawCategoryChart категории по оси X на позициях 1..n
func drawCategoryChart(cfg models.ChartConfig, series, named []chart.Series, values ...[]float64) ([]byte, error) {
	res := cfg.Result
	if len(res.Categories) == 0 {
		return nil, fmt.Errorf("error rendering chart: no categories")
	}
	ticks := make([]chart.Tick, len(res.Categories))
	labels := make([]chart.Value, len(res.Categories))
	for i, c := range res.Categories {
		ticks[i] = chart.Tick{Value: float64(i + 1), Label: c}
		labels[i] = chart.Value{Label: c}
	}
	graph := chart.Chart{
		Title:      cfg.Display.Title,
		Background: background(customizePaddingXBottom(labels) + 40),
		XAxis: chart.XAxis{
			Name:  xAxisName(cfg),
			Style: chart.Style{TextRotationDegrees: 45},
			Range: &chart.ContinuousRange{Min: 0.5, Max: float64(len(res.Categories)) + 0.5},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:           yAxisName(cfg),
			Range:          valueRange(values...),
			ValueFormatter: numberFormatter(cfg.Display.Precision()),
		},
		Series: series,
	}
	graph.Width, graph.Height = size(cfg.Display)
	if cfg.Display.ShowLegend(len(named)) {
		// в легенде только именованные ряды, без соединительных отрезков
		legend := chart.Chart{Series: named}
		graph.Elements = []chart.Renderable{chart.Legend(&legend)}
	}
	return renderPNG(graph.Render)
}

func stickSeries(x, from, to float64, color string) chart.Series {
	return &chart.ContinuousSeries{
		XValues: []float64{x, x},
		YValues: []float64{from, to},
		Style: chart.Style{
			StrokeColor: drawingColor(color),
			StrokeWidth: 3,
		},
	}
}

func dotStyle(color string, width float64) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    width,
		DotColor:    drawingColor(color),
	}
}

// spanRange непрерывный диапазон по данным, вырожденный расширяется на единицу
func spanRange(values []float64) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 0) {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}
	if hi == lo {
		return &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}
	pad := (hi - lo) * 0.05
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func xAxisName(cfg models.ChartConfig) string {
	if cfg.Display.XLabel != "" {
		return cfg.Display.XLabel
	}
	return cfg.XVar
}

func renderPNG(render func(chart.RendererProvider, io.Writer) error) ([]byte, error) {
	buffer := bytes.NewBuffer([]byte{})
	if err := render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("error rendering chart: %v", err)
	}
	return buffer.Bytes(), nil
}

func imageChart(cfg models.ChartConfig, data []byte, err error) (models.ChartObject, error) {
	if err != nil {
		return nil, err
	}
	return &ImageChart{meta: newMeta(cfg), data: data}, nil
}

func gochartBar(cfg models.ChartConfig) (models.ChartObject, error) {
	if len(cfg.Result.Groups) > 0 {
		data, err := DrawStackedBar(cfg)
		return imageChart(cfg, data, err)
	}
	data, err := DrawPlotBar(NewDataCategoriesForGraph(cfg, ""), cfg.Display)
	return imageChart(cfg, data, err)
}

func gochartHistogram(cfg models.ChartConfig) (models.ChartObject, error) {
	data, err := DrawPlotBar(NewDataBinsForGraph(cfg), cfg.Display)
	return imageChart(cfg, data, err)
}

func gochartScatter(cfg models.ChartConfig) (models.ChartObject, error) {
	data, err := DrawScatter(cfg)
	return imageChart(cfg, data, err)
}

func gochartLollipop(cfg models.ChartConfig) (models.ChartObject, error) {
	data, err := DrawLollipop(cfg)
	return imageChart(cfg, data, err)
}

func gochartDumbbell(cfg models.ChartConfig) (models.ChartObject, error) {
	data, err := DrawDumbbell(cfg)
	return imageChart(cfg, data, err)
}
