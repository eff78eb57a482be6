package pipeline

import (
	"math"

	"github.com/pivolan/go_utils"

	"github.com/pivolan/dashboardr/domain/models"
)

// Request параметры построения одного графика
type Request struct {
	Type      models.ChartType
	XVar      string
	YVar      string
	YEndVar   string
	GroupVar  string
	WeightVar string

	ValueMaps      map[string]models.ValueMap
	Bins           *models.BinSpec
	IncludeMissing bool
	MissingLabel   string
	Order          []string
	GroupOrder     []string
	Mode           models.AggregationMode
	PercentWithin  PercentBase

	Backend string
	Display models.DisplayOptions
}

var allowedModes = map[models.ChartType][]models.AggregationMode{
	models.ChartBar:        {models.ModeCount, models.ModeWeighted, models.ModePercent, models.ModeSum, models.ModeMean},
	models.ChartStackedBar: {models.ModeCount, models.ModeWeighted, models.ModePercent, models.ModeSum, models.ModeMean},
	models.ChartHistogram:  {models.ModeCount, models.ModeWeighted, models.ModePercent},
	models.ChartBoxplot:    {models.ModeSummary},
	models.ChartScatter:    {models.ModePoints},
	models.ChartLollipop:   {models.ModeCount, models.ModeWeighted, models.ModePercent, models.ModeSum, models.ModeMean},
	models.ChartDumbbell:   {models.ModeMean, models.ModeSum},
	models.ChartFunnel:     {models.ModeCount, models.ModeWeighted, models.ModePercent, models.ModeSum, models.ModeMean},
	models.ChartMap:        {models.ModeCount, models.ModeWeighted, models.ModePercent, models.ModeSum, models.ModeMean},
	models.ChartTreemap:    {models.ModeCount, models.ModeWeighted, models.ModePercent, models.ModeSum, models.ModeMean},
	models.ChartGauge:      {models.ModeMean, models.ModeSum, models.ModeCount},
}

func defaultMode(req Request) models.AggregationMode {
	switch req.Type {
	case models.ChartStackedBar:
		return models.ModePercent
	case models.ChartBoxplot:
		return models.ModeSummary
	case models.ChartScatter:
		return models.ModePoints
	case models.ChartDumbbell, models.ChartGauge:
		return models.ModeMean
	case models.ChartLollipop:
		if req.YVar != "" {
			return models.ModeMean
		}
	case models.ChartFunnel, models.ChartMap, models.ChartTreemap:
		if req.YVar != "" {
			return models.ModeSum
		}
	}
	return models.ModeCount
}

func resolveMode(req Request) (models.AggregationMode, error) {
	if !isChartType(req.Type) {
		names := chartTypeNames()
		return "", &InvalidOptionError{Param: "type", Value: string(req.Type), Valid: names, Suggestion: suggest(string(req.Type), names)}
	}
	if req.Mode == "" {
		return defaultMode(req), nil
	}
	allowed := allowedModes[req.Type]
	names := make([]string, len(allowed))
	for i, m := range allowed {
		names[i] = string(m)
	}
	if !go_utils.InArray(string(req.Mode), names) {
		return "", &InvalidOptionError{Param: "mode", Value: string(req.Mode), Valid: names, Suggestion: suggest(string(req.Mode), names)}
	}
	return req.Mode, nil
}

// Run полный путь от таблицы до готового графика
func Run(t *models.DataTable, req Request, ids *IDCounter, reg *Registry) (models.ChartObject, error) {
	cfg, err := Prepare(t, req)
	if err != nil {
		return nil, err
	}
	return Dispatch(reg, req.Backend, cfg, ids)
}

// Prepare стадии от валидации до агрегации. Исходная таблица не меняется.
func Prepare(t *models.DataTable, req Request) (models.ChartConfig, error) {
	mode, err := resolveMode(req)
	if err != nil {
		return models.ChartConfig{}, err
	}
	switch req.PercentWithin {
	case "", PercentWithinX, PercentWithinGroup:
	default:
		valid := []string{string(PercentWithinX), string(PercentWithinGroup)}
		return models.ChartConfig{}, &InvalidOptionError{Param: "percent_within", Value: string(req.PercentWithin), Valid: valid, Suggestion: suggest(string(req.PercentWithin), valid)}
	}
	for column, vm := range req.ValueMaps {
		if err := validateValueMap(column, vm); err != nil {
			return models.ChartConfig{}, err
		}
	}
	work, err := t.Clone()
	if err != nil {
		return models.ChartConfig{}, err
	}

	cfg := models.ChartConfig{
		Type:     req.Type,
		XVar:     req.XVar,
		YVar:     req.YVar,
		YEndVar:  req.YEndVar,
		GroupVar: req.GroupVar,
		Display:  req.Display,
	}
	s := stage{table: work, req: req, mode: mode}
	switch req.Type {
	case models.ChartScatter:
		err = s.scatter(&cfg)
	case models.ChartBoxplot:
		err = s.boxplot(&cfg)
	case models.ChartGauge:
		err = s.gauge(&cfg)
	case models.ChartDumbbell:
		err = s.dumbbell(&cfg)
	default:
		err = s.categorical(&cfg)
	}
	if err != nil {
		return models.ChartConfig{}, err
	}
	return cfg, nil
}

type stage struct {
	table *models.DataTable
	req   Request
	mode  models.AggregationMode
}

// categorize перекодировка, биннинг, политика пропусков и порядок для одной колонки
func (s stage) categorize(param, name string, bins *models.BinSpec, order []string) (categorical, error) {
	col, err := requireColumn(s.table, param, name)
	if err != nil {
		return categorical{}, err
	}
	col, err = Recode(col, s.req.ValueMaps[name])
	if err != nil {
		return categorical{}, err
	}
	var levels []string
	var breaks []float64
	if bins != nil {
		col, levels, breaks, err = Bin(col, param, *bins)
		if err != nil {
			return categorical{}, err
		}
	}
	c := newNAPolicy(s.req.IncludeMissing, s.req.MissingLabel).resolve(col, levels)
	c.breaks = breaks
	orderParam := "order"
	if param == "group" {
		orderParam = "group_order"
	}
	c.levels, err = Order(orderParam, order, c.levels)
	if err != nil {
		return categorical{}, err
	}
	return c, nil
}

func (s stage) numeric(param, name string) ([]float64, error) {
	col, err := requireColumn(s.table, param, name)
	if err != nil {
		return nil, err
	}
	return numericValues(col, param)
}

func (s stage) weights() ([]float64, error) {
	col, err := optionalColumn(s.table, "weight", s.req.WeightVar)
	if err != nil || col == nil {
		return nil, err
	}
	return numericValues(*col, "weight")
}

func (s stage) needsY() bool {
	return s.mode == models.ModeSum || s.mode == models.ModeMean || s.mode == models.ModeSummary
}

func (s stage) group() (*categorical, error) {
	if s.req.GroupVar == "" && s.req.Type != models.ChartStackedBar {
		return nil, nil
	}
	g, err := s.categorize("group", s.req.GroupVar, nil, s.req.GroupOrder)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (s stage) categorical(cfg *models.ChartConfig) error {
	bins := s.req.Bins
	if s.req.Type == models.ChartHistogram && bins == nil {
		bins = &models.BinSpec{Count: DefaultBinCount}
	}
	x, err := s.categorize("x", s.req.XVar, bins, s.req.Order)
	if err != nil {
		return err
	}
	var g *categorical
	switch s.req.Type {
	case models.ChartBar, models.ChartStackedBar, models.ChartTreemap:
		if g, err = s.group(); err != nil {
			return err
		}
	}
	var y []float64
	if s.needsY() {
		if y, err = s.numeric("y", s.req.YVar); err != nil {
			return err
		}
	}
	w, err := s.weights()
	if err != nil {
		return err
	}

	in := aggregateInput{
		mode:       s.mode,
		categories: x.levels,
		rowCat:     x.labels,
		keep:       make([]bool, len(x.labels)),
		y:          y,
		weights:    w,
		within:     s.req.PercentWithin,
		decimals:   s.req.Display.Precision(),
	}
	for i := range in.keep {
		in.keep[i] = !x.drop[i] && (g == nil || !g.drop[i])
	}
	if g != nil {
		in.groups = g.levels
		in.rowGroup = g.labels
	}
	cfg.Result = aggregate(in)
	cfg.Breaks = x.breaks
	return nil
}

func (s stage) dumbbell(cfg *models.ChartConfig) error {
	x, err := s.categorize("x", s.req.XVar, s.req.Bins, s.req.Order)
	if err != nil {
		return err
	}
	start, err := s.numeric("y", s.req.YVar)
	if err != nil {
		return err
	}
	end, err := s.numeric("y_end", s.req.YEndVar)
	if err != nil {
		return err
	}
	w, err := s.weights()
	if err != nil {
		return err
	}
	keep := make([]bool, len(x.labels))
	for i := range keep {
		keep[i] = !x.drop[i]
	}

	res := models.AggregationResult{
		Mode:       s.mode,
		Categories: x.levels,
		Groups:     models.CategorySeries{s.req.YVar, s.req.YEndVar},
		Cells:      make(map[models.CellKey]models.Cell),
	}
	for _, part := range []struct {
		name string
		y    []float64
	}{{s.req.YVar, start}, {s.req.YEndVar, end}} {
		r := aggregate(aggregateInput{
			mode:       s.mode,
			categories: x.levels,
			rowCat:     x.labels,
			keep:       keep,
			y:          part.y,
			weights:    w,
			decimals:   s.req.Display.Precision(),
		})
		for k, c := range r.Cells {
			res.Cells[models.CellKey{Category: k.Category, Group: part.name}] = c
		}
		res.Total += r.Total
	}
	cfg.Result = res
	cfg.Breaks = x.breaks
	return nil
}

// single все строки в одной категории с именем колонки y
func (s stage) single(y []float64, w []float64) models.AggregationResult {
	labels := make([]string, len(y))
	keep := make([]bool, len(y))
	for i := range labels {
		labels[i] = s.req.YVar
		keep[i] = true
	}
	return aggregate(aggregateInput{
		mode:       s.mode,
		categories: []string{s.req.YVar},
		rowCat:     labels,
		keep:       keep,
		y:          y,
		weights:    w,
		decimals:   s.req.Display.Precision(),
	})
}

func (s stage) boxplot(cfg *models.ChartConfig) error {
	y, err := s.numeric("y", s.req.YVar)
	if err != nil {
		return err
	}
	w, err := s.weights()
	if err != nil {
		return err
	}
	if s.req.XVar == "" {
		cfg.Result = s.single(y, w)
		return nil
	}
	x, err := s.categorize("x", s.req.XVar, s.req.Bins, s.req.Order)
	if err != nil {
		return err
	}
	keep := make([]bool, len(x.labels))
	for i := range keep {
		keep[i] = !x.drop[i]
	}
	cfg.Result = aggregate(aggregateInput{
		mode:       s.mode,
		categories: x.levels,
		rowCat:     x.labels,
		keep:       keep,
		y:          y,
		weights:    w,
		decimals:   s.req.Display.Precision(),
	})
	cfg.Breaks = x.breaks
	return nil
}

func (s stage) gauge(cfg *models.ChartConfig) error {
	y, err := s.numeric("y", s.req.YVar)
	if err != nil {
		return err
	}
	w, err := s.weights()
	if err != nil {
		return err
	}
	cfg.Result = s.single(y, w)
	return nil
}

func (s stage) scatter(cfg *models.ChartConfig) error {
	xs, err := s.numeric("x", s.req.XVar)
	if err != nil {
		return err
	}
	ys, err := s.numeric("y", s.req.YVar)
	if err != nil {
		return err
	}
	g, err := s.group()
	if err != nil {
		return err
	}
	res := models.AggregationResult{Mode: models.ModePoints}
	if g != nil {
		res.Groups = g.levels
	}
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) || (g != nil && g.drop[i]) {
			continue
		}
		p := models.Point{X: xs[i], Y: ys[i]}
		if g != nil {
			p.Group = g.labels[i]
		}
		res.Points = append(res.Points, p)
	}
	res.Total = float64(len(res.Points))
	cfg.Result = res
	return nil
}
