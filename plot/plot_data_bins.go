package plot

import (
	"github.com/wcharczuk/go-chart/v2"

	"github.com/pivolan/dashboardr/domain/models"
)

// dataBinsForGraph гистограмма: столбец на интервал [xStart, xEnd)
type dataBinsForGraph struct {
	xStart, xEnd []float64
	labels       []string
	yValues      []float64
	nameYAxis    string
	nameGraph    string
	display      models.DisplayOptions
}

// NewDataBinsForGraph строит интервалы по границам биннинга. Категории сверх
// интервалов (например, пропуски) идут без границ.
func NewDataBinsForGraph(cfg models.ChartConfig) dataBinsForGraph {
	d := dataBinsForGraph{
		labels:    cfg.Result.Categories,
		yValues:   cleanValues(cfg.Result.Series("")),
		nameYAxis: yAxisName(cfg),
		nameGraph: cfg.Display.Title,
		display:   cfg.Display,
	}
	for i := 0; i+1 < len(cfg.Breaks); i++ {
		d.xStart = append(d.xStart, cfg.Breaks[i])
		d.xEnd = append(d.xEnd, cfg.Breaks[i+1])
	}
	return d
}

// GetNameGraph без заголовка показываем охват интервалов
func (d dataBinsForGraph) GetNameGraph() string {
	xStart, xEnd := d.getXValues()
	if d.nameGraph != "" || len(xStart) == 0 {
		return d.nameGraph
	}
	return models.FormatNumber(xStart[0]) + " .. " + models.FormatNumber(xEnd[len(xEnd)-1])
}
func (d dataBinsForGraph) getNameYAxis() string {
	return d.nameYAxis
}
func (d dataBinsForGraph) getYValues() []float64 {
	return d.yValues
}
func (d dataBinsForGraph) getXValues() ([]float64, []float64) {
	return d.xStart, d.xEnd
}

func (d dataBinsForGraph) calculateChartDimensions(minBarWidth float64) (width, height int) {
	return chartDimensions(len(d.labels), minBarWidth)
}

func (d dataBinsForGraph) generateBarValues() []chart.Value {
	var bars []chart.Value
	for i, label := range d.labels {
		bars = append(bars, chart.Value{
			Value: d.yValues[i],
			Label: label,
			Style: chart.Style{
				FillColor: drawingColor(paletteColor(d.display, 0)).WithAlpha(200),
			},
		})
	}
	return bars
}

func (d dataBinsForGraph) generateGrid() []chart.Tick {
	return gridTicks(findMaxValue(d.yValues), d.display.Precision())
}
