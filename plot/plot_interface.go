package plot

import "github.com/wcharczuk/go-chart/v2"

// dataForGraph один ряд столбцов для go-chart
type dataForGraph interface {
	GetNameGraph() string
	getNameYAxis() string
	getYValues() []float64
	calculateChartDimensions(float64) (int, int)
	generateBarValues() []chart.Value
	generateGrid() []chart.Tick
}
