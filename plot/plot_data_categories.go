package plot

import (
	"math"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/pivolan/dashboardr/domain/models"
)

type dataCategoriesForGraph struct {
	xValues   []string
	yValues   []float64
	nameYAxis string
	nameGraph string
	display   models.DisplayOptions
}

// NewDataCategoriesForGraph один ряд результата агрегации по категориям x
func NewDataCategoriesForGraph(cfg models.ChartConfig, group string) dataCategoriesForGraph {
	return dataCategoriesForGraph{
		xValues:   cfg.Result.Categories,
		yValues:   cleanValues(cfg.Result.Series(group)),
		nameYAxis: yAxisName(cfg),
		nameGraph: cfg.Display.Title,
		display:   cfg.Display,
	}
}

func (d dataCategoriesForGraph) GetNameGraph() string {
	return d.nameGraph
}
func (d dataCategoriesForGraph) getNameYAxis() string {
	return d.nameYAxis
}
func (d dataCategoriesForGraph) getYValues() []float64 {
	return d.yValues
}
func (d dataCategoriesForGraph) getXValues() []string {
	return d.xValues
}

func (d dataCategoriesForGraph) calculateChartDimensions(minBarWidth float64) (width, height int) {
	return chartDimensions(len(d.xValues), minBarWidth)
}

func (d dataCategoriesForGraph) generateBarValues() []chart.Value {
	var bars []chart.Value
	for i, x := range d.xValues {
		bars = append(bars, chart.Value{
			Value: d.yValues[i],
			Label: x,
			Style: chart.Style{
				FillColor: drawingColor(paletteColor(d.display, 0)).WithAlpha(200),
			},
		})
	}
	return bars
}

func (d dataCategoriesForGraph) generateGrid() []chart.Tick {
	return gridTicks(findMaxValue(d.yValues), d.display.Precision())
}

// cleanValues пустые ячейки рисуются нулём
func cleanValues(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[i] = v
		}
	}
	return out
}

func yAxisName(cfg models.ChartConfig) string {
	if cfg.Display.YLabel != "" {
		return cfg.Display.YLabel
	}
	if cfg.YVar != "" && cfg.Result.Mode != models.ModeCount && cfg.Result.Mode != models.ModePercent {
		return cfg.YVar
	}
	return string(cfg.Result.Mode)
}

// chartDimensions размер картинки по числу столбцов
func chartDimensions(n int, minBarWidth float64) (width, height int) {
	if n <= 0 || minBarWidth <= 0 {
		return 0, 0
	}
	x := 1.1
	if n < 2 {
		x = 10.0
	} else if n < 10 {
		x = 3.0
	}

	// Константы для отступов и пропорций
	const (
		paddingY     = 100        // отступ для оси Y и подписей
		spacingRatio = 0.2        // соотношение отступа между столбцами к ширине столбца
		aspectRatio  = 9.0 / 16.0 // соотношение сторон по умолчанию
	)

	barSpacing := minBarWidth * spacingRatio
	totalWidth := (minBarWidth+barSpacing)*float64(n) + paddingY
	width = int(totalWidth*x) + paddingY
	height = int(float64(width) * aspectRatio)
	return width, height
}
