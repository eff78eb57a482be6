package plot

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pivolan/dashboardr/domain/models"
)

var pngMagic = []byte("\x89PNG")

func barConfig() models.ChartConfig {
	return models.ChartConfig{
		ID:   "bar_1",
		Type: models.ChartBar,
		XVar: "region",
		Result: models.AggregationResult{
			Mode:       models.ModeCount,
			Categories: models.CategorySeries{"north", "south", "east"},
			Cells: map[models.CellKey]models.Cell{
				{Category: "north"}: {Value: 3, Display: 3},
				{Category: "south"}: {Value: 2, Display: 2},
				{Category: "east"}:  {Value: 1, Display: 1},
			},
		},
	}
}

func TestCalculateGridStep(t *testing.T) {
	assert.Equal(t, 0.0, calculateGridStep(0))
	assert.Equal(t, 1.0, calculateGridStep(3))
	assert.Equal(t, 20.0, calculateGridStep(100))
	assert.Equal(t, 2000.0, calculateGridStep(9000))
}

func TestGridTicks(t *testing.T) {
	ticks := gridTicks(3, 1)
	require.Len(t, ticks, 4)
	assert.Equal(t, "3.0", ticks[3].Label)
	assert.Nil(t, gridTicks(0, 1))
}

func TestValueRangeNeverEmpty(t *testing.T) {
	r := valueRange([]float64{0, 0})
	assert.Greater(t, r.Max, r.Min)

	r = valueRange([]float64{-2, 4, math.NaN()})
	assert.Less(t, r.Min, -2.0)
	assert.Greater(t, r.Max, 4.0)
}

func TestSpanRange(t *testing.T) {
	r := spanRange([]float64{5, 5})
	assert.Equal(t, 4.0, r.Min)
	assert.Equal(t, 6.0, r.Max)
	r = spanRange(nil)
	assert.Equal(t, 1.0, r.Max)
}

func TestDrawPlotBar(t *testing.T) {
	cfg := barConfig()
	data := NewDataCategoriesForGraph(cfg, "")
	assert.Equal(t, []string{"north", "south", "east"}, data.getXValues())
	assert.Equal(t, "count", data.getNameYAxis())

	png, err := DrawPlotBar(data, cfg.Display)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
}

func TestDrawPlotBarAllZero(t *testing.T) {
	cfg := barConfig()
	for k := range cfg.Result.Cells {
		cfg.Result.Cells[k] = models.Cell{}
	}
	png, err := DrawPlotBar(NewDataCategoriesForGraph(cfg, ""), cfg.Display)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
}

func TestDataBinsForGraph(t *testing.T) {
	cfg := barConfig()
	cfg.Type = models.ChartHistogram
	cfg.Result.Categories = models.CategorySeries{"[0,10)", "[10,20)", "[20,30)"}
	cfg.Breaks = []float64{0, 10, 20, 30}

	data := NewDataBinsForGraph(cfg)
	start, end := data.getXValues()
	assert.Equal(t, []float64{0, 10, 20}, start)
	assert.Equal(t, []float64{10, 20, 30}, end)
	assert.Equal(t, "0 .. 30", data.GetNameGraph())
	bars := data.generateBarValues()
	require.Len(t, bars, 3)
	assert.Equal(t, "[10,20)", bars[1].Label)
}

func TestDrawScatterSkipsEmptyGroups(t *testing.T) {
	cfg := models.ChartConfig{
		Type: models.ChartScatter,
		XVar: "x",
		YVar: "y",
		Result: models.AggregationResult{
			Mode:   models.ModePoints,
			Groups: models.CategorySeries{"a", "b"},
			Points: []models.Point{{X: 1, Y: 2, Group: "a"}, {X: 2, Y: 3, Group: "a"}},
		},
	}
	png, err := DrawScatter(cfg)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))

	cfg.Result.Points = nil
	_, err = DrawScatter(cfg)
	assert.Error(t, err)
}

func TestDrawDumbbellNeedsTwoSeries(t *testing.T) {
	_, err := DrawDumbbell(barConfig())
	assert.Error(t, err)
}
