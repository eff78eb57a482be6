package pipeline

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pivolan/dashboardr/domain/models"
)

type fakeChart struct {
	cfg models.ChartConfig
}

func (f fakeChart) ID() string               { return f.cfg.ID }
func (f fakeChart) Type() models.ChartType   { return f.cfg.Type }
func (f fakeChart) Backend() models.Backend  { return f.cfg.Backend }
func (f fakeChart) Ext() string              { return "txt" }
func (f fakeChart) Render(w io.Writer) error { _, err := io.WriteString(w, f.cfg.ID); return err }

func fakeRenderer() Renderer {
	return RendererFunc(func(cfg models.ChartConfig) (models.ChartObject, error) {
		return fakeChart{cfg: cfg}, nil
	})
}

func fakeRegistry(t *testing.T) *Registry {
	var entries []Entry
	for _, ct := range models.AllChartTypes {
		entries = append(entries, Entry{Backend: models.BackendECharts, ChartType: ct, Renderer: fakeRenderer()})
		entries = append(entries, Entry{Backend: models.BackendTable, ChartType: ct, Renderer: fakeRenderer()})
	}
	entries = append(entries, Entry{Backend: models.BackendSVG, ChartType: models.ChartScatter, Renderer: fakeRenderer()})
	reg, err := NewRegistry(entries...)
	require.NoError(t, err)
	return reg
}

func surveyTable(t *testing.T) *models.DataTable {
	tbl, err := models.NewDataTable(
		models.NewLabelledColumn("sex", map[float64]string{1: "Male", 2: "Female"}, 1, 2, 2, 1, math.NaN(), 2),
		models.NewStringColumn("region", "north", "south", "north", "", "south", "east"),
		models.NewNumericColumn("age", 25, 35, 45, 55, 65, 15),
		models.NewNumericColumn("income", 10, 20, 30, 40, math.NaN(), 60),
		models.NewNumericColumn("w", 1, 2, 1, 1, 1, 3),
	)
	require.NoError(t, err)
	return tbl
}

func TestPrepareCountCompletion(t *testing.T) {
	tbl := surveyTable(t)
	cfg, err := Prepare(tbl, Request{Type: models.ChartBar, XVar: "region", GroupVar: "sex"})
	require.NoError(t, err)

	res := cfg.Result
	assert.Equal(t, models.ModeCount, res.Mode)
	assert.Equal(t, models.CategorySeries{"north", "south", "east"}, res.Categories)
	assert.Equal(t, models.CategorySeries{"Male", "Female"}, res.Groups)
	assert.Len(t, res.Cells, 6)
	assert.Equal(t, 1.0, res.Get("north", "Male").Value)
	assert.Equal(t, 1.0, res.Get("north", "Female").Value)
	assert.Equal(t, 0.0, res.Get("east", "Male").Value)
	assert.Equal(t, 0, res.Get("east", "Male").N)
}

func TestPrepareIncludeMissing(t *testing.T) {
	tbl := surveyTable(t)
	cfg, err := Prepare(tbl, Request{Type: models.ChartBar, XVar: "region", IncludeMissing: true})
	require.NoError(t, err)
	assert.Equal(t, models.CategorySeries{"north", "south", DefaultMissingLabel, "east"}, cfg.Result.Categories)
	assert.Equal(t, 1.0, cfg.Result.Get(DefaultMissingLabel, "").Value)

	cfg, err = Prepare(tbl, Request{Type: models.ChartBar, XVar: "region"})
	require.NoError(t, err)
	assert.Equal(t, models.CategorySeries{"north", "south", "east"}, cfg.Result.Categories)
	assert.Equal(t, 5.0, cfg.Result.Total)
}

func TestPrepareIncludeMissingBinned(t *testing.T) {
	tbl, err := models.NewDataTable(models.NewNumericColumn("age", 5, 15, 25, math.NaN()))
	require.NoError(t, err)
	bins := &models.BinSpec{Breaks: []float64{0, 10, 20}}

	cfg, err := Prepare(tbl, Request{Type: models.ChartBar, XVar: "age", Bins: bins, IncludeMissing: true})
	require.NoError(t, err)
	assert.Equal(t, models.CategorySeries{"[0,10)", "[10,20)", DefaultMissingLabel}, cfg.Result.Categories)
	assert.Equal(t, []float64{1, 1, 2}, cfg.Result.Series(""))

	cfg, err = Prepare(tbl, Request{Type: models.ChartBar, XVar: "age", Bins: bins})
	require.NoError(t, err)
	assert.Equal(t, models.CategorySeries{"[0,10)", "[10,20)"}, cfg.Result.Categories)
	assert.Equal(t, []float64{1, 1}, cfg.Result.Series(""))
}

func TestPreparePercentSumsTo100(t *testing.T) {
	tbl := surveyTable(t)
	cfg, err := Prepare(tbl, Request{Type: models.ChartBar, XVar: "region", Mode: models.ModePercent})
	require.NoError(t, err)
	sum := 0.0
	for _, v := range cfg.Result.Series("") {
		sum += v
	}
	assert.InDelta(t, 100, sum, 0.1)
	assert.Equal(t, 40.0, cfg.Result.Get("north", "").Display)

	cfg, err = Prepare(tbl, Request{Type: models.ChartStackedBar, XVar: "region", GroupVar: "sex", WeightVar: "w"})
	require.NoError(t, err)
	for _, c := range cfg.Result.Categories {
		total := 0.0
		for _, g := range cfg.Result.Groups {
			total += cfg.Result.Get(c, g).Value
		}
		assert.InDelta(t, 100, total, 1e-9, c)
	}
	// north: Male вес 1, Female вес 1
	assert.Equal(t, 50.0, cfg.Result.Get("north", "Male").Display)
}

func TestPreparePercentWithinGroup(t *testing.T) {
	tbl := surveyTable(t)
	cfg, err := Prepare(tbl, Request{Type: models.ChartStackedBar, XVar: "region", GroupVar: "sex", PercentWithin: PercentWithinGroup})
	require.NoError(t, err)
	for _, g := range cfg.Result.Groups {
		total := 0.0
		for _, c := range cfg.Result.Categories {
			total += cfg.Result.Get(c, g).Value
		}
		assert.InDelta(t, 100, total, 1e-9, g)
	}
}

func TestPrepareWeightedAndMean(t *testing.T) {
	tbl := surveyTable(t)
	cfg, err := Prepare(tbl, Request{Type: models.ChartBar, XVar: "sex", WeightVar: "w", Mode: models.ModeWeighted})
	require.NoError(t, err)
	assert.Equal(t, 2.0, cfg.Result.Get("Male", "").Value)
	assert.Equal(t, 6.0, cfg.Result.Get("Female", "").Value)

	cfg, err = Prepare(tbl, Request{Type: models.ChartLollipop, XVar: "sex", YVar: "income", WeightVar: "w"})
	require.NoError(t, err)
	assert.Equal(t, models.ModeMean, cfg.Result.Mode)
	// Female: 20*2 + 30*1 + 60*3 = 250 / 6
	assert.InDelta(t, 250.0/6, cfg.Result.Get("Female", "").Value, 1e-9)
	assert.Equal(t, 41.7, cfg.Result.Get("Female", "").Display)
	assert.Equal(t, 25.0, cfg.Result.Get("Male", "").Value)
}

func TestPrepareHistogramAutoBins(t *testing.T) {
	tbl := surveyTable(t)
	cfg, err := Prepare(tbl, Request{Type: models.ChartHistogram, XVar: "age", Bins: &models.BinSpec{Breaks: []float64{0, 30, 60, 90}}})
	require.NoError(t, err)
	assert.Equal(t, models.CategorySeries{"[0,30)", "[30,60)", "[60,90)"}, cfg.Result.Categories)
	assert.Equal(t, []float64{2, 3, 1}, cfg.Result.Series(""))
	assert.Equal(t, []float64{0, 30, 60, 90}, cfg.Breaks)

	cfg, err = Prepare(tbl, Request{Type: models.ChartHistogram, XVar: "age"})
	require.NoError(t, err)
	assert.Len(t, cfg.Result.Categories, DefaultBinCount)
	assert.Len(t, cfg.Breaks, DefaultBinCount+1)
}

func TestPrepareOrder(t *testing.T) {
	tbl := surveyTable(t)
	cfg, err := Prepare(tbl, Request{Type: models.ChartFunnel, XVar: "region", Order: []string{"east", "west", "north"}})
	require.NoError(t, err)
	assert.Equal(t, models.CategorySeries{"east", "north", "south"}, cfg.Result.Categories)
}

func TestPrepareBoxplot(t *testing.T) {
	tbl, err := models.NewDataTable(models.NewNumericColumn("v", 1, 2, 3, 4, 100))
	require.NoError(t, err)
	cfg, err := Prepare(tbl, Request{Type: models.ChartBoxplot, YVar: "v"})
	require.NoError(t, err)

	s := cfg.Result.Summaries["v"]
	assert.Equal(t, []float64{1, 2, 3, 4, 4}, s.Box())
	assert.Equal(t, []float64{100}, s.Outliers)

	tbl = surveyTable(t)
	cfg, err = Prepare(tbl, Request{Type: models.ChartBoxplot, XVar: "region", YVar: "income", Order: []string{"east"}})
	require.NoError(t, err)
	assert.Equal(t, models.CategorySeries{"east", "north", "south"}, cfg.Result.Categories)
	assert.Equal(t, 1, cfg.Result.Summaries["south"].N)
	assert.Equal(t, 20.0, cfg.Result.Summaries["north"].Median)
}

func TestPrepareAllMissingLabelled(t *testing.T) {
	tbl, err := models.NewDataTable(
		models.NewLabelledColumn("y", map[float64]string{1: "One"}, math.NaN(), math.NaN()),
		models.NewNumericColumn("w", 1, 1),
	)
	require.NoError(t, err)

	_, err = Prepare(tbl, Request{Type: models.ChartBoxplot, YVar: "y"})
	var typeErr *TypeMismatchError
	require.True(t, errors.As(err, &typeErr), "got %v", err)
	assert.Equal(t, "y", typeErr.Column)
	assert.Equal(t, models.ColumnLabelled, typeErr.Actual)

	_, err = Prepare(tbl, Request{Type: models.ChartBoxplot, YVar: "w", WeightVar: "y"})
	require.True(t, errors.As(err, &typeErr), "got %v", err)
	assert.Equal(t, "weight", typeErr.Param)
}

func TestPrepareScatter(t *testing.T) {
	tbl := surveyTable(t)
	cfg, err := Prepare(tbl, Request{Type: models.ChartScatter, XVar: "age", YVar: "income", GroupVar: "sex"})
	require.NoError(t, err)
	// строка с пропуском income и строка с пропуском sex отброшены
	assert.Len(t, cfg.Result.Points, 5)
	assert.Equal(t, models.CategorySeries{"Male", "Female"}, cfg.Result.Groups)
	assert.Equal(t, models.Point{X: 25, Y: 10, Group: "Male"}, cfg.Result.Points[0])
}

func TestPrepareDumbbellAndGauge(t *testing.T) {
	tbl := surveyTable(t)
	cfg, err := Prepare(tbl, Request{Type: models.ChartDumbbell, XVar: "sex", YVar: "age", YEndVar: "income"})
	require.NoError(t, err)
	assert.Equal(t, models.CategorySeries{"age", "income"}, cfg.Result.Groups)
	assert.Equal(t, 40.0, cfg.Result.Get("Male", "age").Value)
	assert.Equal(t, 25.0, cfg.Result.Get("Male", "income").Value)

	cfg, err = Prepare(tbl, Request{Type: models.ChartGauge, YVar: "income"})
	require.NoError(t, err)
	assert.Equal(t, 32.0, cfg.Result.Get("income", "").Value)
}

func TestPrepareDoesNotMutateInput(t *testing.T) {
	tbl := surveyTable(t)
	_, err := Prepare(tbl, Request{
		Type:           models.ChartBar,
		XVar:           "sex",
		ValueMaps:      map[string]models.ValueMap{"sex": {"1": "M"}},
		IncludeMissing: true,
	})
	require.NoError(t, err)
	sex, _ := tbl.Column("sex")
	assert.Equal(t, "Male", sex.Values[0].Display())
	assert.True(t, sex.Values[4].IsMissing())
}

func TestPrepareErrors(t *testing.T) {
	tbl := surveyTable(t)

	_, err := Prepare(tbl, Request{Type: models.ChartBar, XVar: "regoin"})
	var missing *MissingColumnError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "x", missing.Param)
	assert.Equal(t, "region", missing.Suggestion)

	_, err = Prepare(tbl, Request{Type: models.ChartStackedBar, XVar: "region"})
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "group", missing.Param)

	_, err = Prepare(tbl, Request{Type: models.ChartBar, XVar: "region", YVar: "region", Mode: models.ModeMean})
	var typeErr *TypeMismatchError
	assert.True(t, errors.As(err, &typeErr))

	_, err = Prepare(tbl, Request{Type: models.ChartBar, XVar: "region", Bins: &models.BinSpec{Count: 3}})
	assert.True(t, errors.As(err, &typeErr))

	_, err = Prepare(tbl, Request{Type: models.ChartBar, XVar: "region", Mode: "avg"})
	var optErr *InvalidOptionError
	require.True(t, errors.As(err, &optErr))
	assert.Equal(t, "mode", optErr.Param)

	_, err = Prepare(tbl, Request{Type: "bars", XVar: "region"})
	require.True(t, errors.As(err, &optErr))
	assert.Equal(t, "bar", optErr.Suggestion)

	_, err = Prepare(tbl, Request{Type: models.ChartBar, XVar: "region", Order: []string{"a", "a"}})
	var orderErr *InvalidOrderError
	assert.True(t, errors.As(err, &orderErr))
}

func TestRunDispatch(t *testing.T) {
	tbl := surveyTable(t)
	reg := fakeRegistry(t)
	ids := NewIDCounter("page")

	obj, err := Run(tbl, Request{Type: models.ChartBar, XVar: "region"}, ids, reg)
	require.NoError(t, err)
	assert.Equal(t, models.BackendECharts, obj.Backend())
	assert.Equal(t, "page_bar_1", obj.ID())

	obj, err = Run(tbl, Request{Type: models.ChartBar, XVar: "region", Backend: "table"}, ids, reg)
	require.NoError(t, err)
	assert.Equal(t, "page_bar_2", obj.ID())
}

func TestRunUnsupportedBackend(t *testing.T) {
	tbl := surveyTable(t)
	reg := fakeRegistry(t)

	_, err := Run(tbl, Request{Type: models.ChartBar, XVar: "region", Backend: "nonexistent"}, NewIDCounter(""), reg)
	var backendErr *UnsupportedBackendError
	require.True(t, errors.As(err, &backendErr))
	assert.Equal(t, []string{"echarts", "svg", "table"}, backendErr.Valid)
	assert.Contains(t, err.Error(), "echarts, svg, table")

	_, err = Run(tbl, Request{Type: models.ChartBar, XVar: "region", Backend: "svg"}, NewIDCounter(""), reg)
	require.True(t, errors.As(err, &backendErr))
	assert.Equal(t, models.ChartBar, backendErr.ChartType)
	assert.Equal(t, []string{"echarts", "table"}, backendErr.Valid)

	_, err = Run(tbl, Request{Type: models.ChartBar, XVar: "region", Backend: "tabel"}, NewIDCounter(""), reg)
	require.True(t, errors.As(err, &backendErr))
	assert.Equal(t, "table", backendErr.Suggestion)
}

func TestNewRegistryValidation(t *testing.T) {
	_, err := NewRegistry(Entry{Backend: "plotly", ChartType: models.ChartBar, Renderer: fakeRenderer()})
	assert.Error(t, err)
	_, err = NewRegistry(Entry{Backend: models.BackendSVG, ChartType: "pie", Renderer: fakeRenderer()})
	assert.Error(t, err)
	_, err = NewRegistry(Entry{Backend: models.BackendSVG, ChartType: models.ChartScatter})
	assert.Error(t, err)
	_, err = NewRegistry(
		Entry{Backend: models.BackendSVG, ChartType: models.ChartScatter, Renderer: fakeRenderer()},
		Entry{Backend: models.BackendSVG, ChartType: models.ChartScatter, Renderer: fakeRenderer()},
	)
	assert.Error(t, err)
	assert.Panics(t, func() { MustNewRegistry(Entry{Backend: "x"}) })
}

func TestParseValueMaps(t *testing.T) {
	maps, err := ParseValueMaps(map[string]interface{}{
		"sex": map[string]interface{}{"1": "Male", "2": "Female"},
		"yes": map[interface{}]interface{}{1: true, 2.5: "half"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ValueMap{"1": "Male", "2": "Female"}, maps["sex"])
	assert.Equal(t, models.ValueMap{"1": "true", "2.5": "half"}, maps["yes"])

	_, err = ParseValueMaps(map[string]interface{}{"sex": []string{"Male"}})
	var mapErr *InvalidMapError
	assert.True(t, errors.As(err, &mapErr))

	_, err = ParseValueMaps(map[string]interface{}{"sex": map[string]interface{}{"1": map[string]interface{}{"a": "b"}}})
	assert.True(t, errors.As(err, &mapErr))
}
