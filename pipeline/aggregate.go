package pipeline

import (
	"math"

	"github.com/aclements/go-moremath/stats"

	"github.com/pivolan/dashboardr/domain/models"
)

// PercentBase от чего считаются проценты в группированном графике
type PercentBase string

const (
	PercentWithinX     PercentBase = "x"
	PercentWithinGroup PercentBase = "group"
)

type aggregateInput struct {
	mode       models.AggregationMode
	categories []string
	groups     []string
	rowCat     []string
	rowGroup   []string
	keep       []bool
	y          []float64
	weights    []float64
	within     PercentBase
	decimals   int
}

type accumulator struct {
	n       int
	weight  float64
	ys      []float64
	ws      []float64
	weighed float64
}

func roundTo(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(x*p) / p
}

// aggregate считает значение для каждой пары категория x группа.
// Сетка полная: ненаблюдавшиеся пары получают нулевые ячейки.
func aggregate(in aggregateInput) models.AggregationResult {
	groups := in.groups
	if len(groups) == 0 {
		groups = []string{""}
	}
	acc := make(map[models.CellKey]*accumulator, len(in.categories)*len(groups))
	for _, c := range in.categories {
		for _, g := range groups {
			acc[models.CellKey{Category: c, Group: g}] = &accumulator{}
		}
	}

	needY := in.mode == models.ModeSum || in.mode == models.ModeMean || in.mode == models.ModeSummary
	for i := range in.rowCat {
		if !in.keep[i] {
			continue
		}
		key := models.CellKey{Category: in.rowCat[i]}
		if in.rowGroup != nil {
			key.Group = in.rowGroup[i]
		}
		a, ok := acc[key]
		if !ok {
			continue
		}
		w := 1.0
		if in.weights != nil {
			w = in.weights[i]
			if math.IsNaN(w) {
				continue
			}
		}
		if needY {
			if math.IsNaN(in.y[i]) {
				continue
			}
			a.ys = append(a.ys, in.y[i])
			a.ws = append(a.ws, w)
			a.weighed += in.y[i] * w
		}
		a.n++
		a.weight += w
	}

	res := models.AggregationResult{
		Mode:       in.mode,
		Categories: models.CategorySeries(in.categories),
		Groups:     models.CategorySeries(in.groups),
		Cells:      make(map[models.CellKey]models.Cell, len(acc)),
	}
	for _, a := range acc {
		res.Total += a.weight
	}

	catTotals := make(map[string]float64)
	groupTotals := make(map[string]float64)
	for k, a := range acc {
		catTotals[k.Category] += a.weight
		groupTotals[k.Group] += a.weight
	}

	if in.mode == models.ModeSummary {
		res.Summaries = make(map[string]models.FiveNumber, len(in.categories))
	}

	for k, a := range acc {
		cell := models.Cell{N: a.n, Weight: a.weight}
		switch in.mode {
		case models.ModeCount:
			cell.Value = float64(a.n)
			cell.Display = cell.Value
		case models.ModeWeighted:
			cell.Value = a.weight
			cell.Display = math.Round(a.weight)
		case models.ModePercent:
			base := res.Total
			if len(in.groups) > 0 {
				base = catTotals[k.Category]
				if in.within == PercentWithinGroup {
					base = groupTotals[k.Group]
				}
			}
			if base > 0 {
				cell.Value = a.weight / base * 100
			}
			cell.Display = roundTo(cell.Value, in.decimals)
		case models.ModeSum:
			cell.Value = a.weighed
			cell.Display = roundTo(cell.Value, in.decimals)
		case models.ModeMean:
			if sample := meanSample(a, in.weights != nil); len(sample.Xs) > 0 {
				cell.Value = sample.Mean()
			}
			cell.Display = roundTo(cell.Value, in.decimals)
		case models.ModeSummary:
			var ws []float64
			if in.weights != nil {
				ws = a.ws
			}
			summary := FiveNumberSummary(a.ys, ws)
			res.Summaries[k.Category] = summary
			cell.Value = summary.Median
			cell.Display = summary.Median
		}
		res.Cells[k] = cell
	}
	return res
}

// meanSample выборка для среднего, строки с нулевым весом отбрасываются
func meanSample(a *accumulator, weighted bool) stats.Sample {
	if !weighted {
		return stats.Sample{Xs: a.ys}
	}
	s := stats.Sample{Xs: make([]float64, 0, len(a.ys)), Weights: make([]float64, 0, len(a.ws))}
	for i, w := range a.ws {
		if w > 0 {
			s.Xs = append(s.Xs, a.ys[i])
			s.Weights = append(s.Weights, w)
		}
	}
	return s
}
