package pipeline

import (
	"math"
	"sort"

	"github.com/aclements/go-moremath/stats"

	"github.com/pivolan/dashboardr/domain/models"
)

const fenceFactor = 1.5

// calculateQuantile квантиль с линейной интерполяцией по отсортированной выборке
func calculateQuantile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}

	pos := p * float64(len(sorted)-1)
	floor := math.Floor(pos)
	ceil := math.Ceil(pos)

	if floor == ceil {
		return sorted[int(pos)]
	}

	// интерполяция между двумя ближайшими значениями
	lower := sorted[int(floor)]
	upper := sorted[int(ceil)]
	fraction := pos - floor

	return lower + fraction*(upper-lower)
}

type weighted struct {
	x float64
	w float64
}

// weightedQuantile первое значение, накопленная доля веса которого достигает p
func weightedQuantile(sorted []weighted, total float64, p float64) float64 {
	if len(sorted) == 0 || total <= 0 {
		return math.NaN()
	}
	target := p * total
	cum := 0.0
	for _, s := range sorted {
		cum += s.w
		if cum >= target-1e-9*total {
			return s.x
		}
	}
	return sorted[len(sorted)-1].x
}

// findOutliers значения за пределами заборов
func findOutliers(sorted []float64, lower, upper float64) []float64 {
	outliers := make([]float64, 0)
	for _, num := range sorted {
		if num < lower || num > upper {
			outliers = append(outliers, num)
		}
	}
	return outliers
}

// FiveNumberSummary сводка для boxplot. weights может быть nil.
// Строки с NaN или неположительным весом не участвуют.
func FiveNumberSummary(values, weights []float64) models.FiveNumber {
	xs := make([]float64, 0, len(values))
	pairs := make([]weighted, 0, len(values))
	total := 0.0
	for i, x := range values {
		if math.IsNaN(x) {
			continue
		}
		if weights != nil {
			w := weights[i]
			if math.IsNaN(w) || w <= 0 {
				continue
			}
			pairs = append(pairs, weighted{x: x, w: w})
			total += w
		}
		xs = append(xs, x)
	}
	if len(xs) == 0 {
		return models.EmptyFiveNumber()
	}
	sort.Float64s(xs)

	var q1, med, q3 float64
	if weights == nil {
		q1 = calculateQuantile(xs, 0.25)
		med = calculateQuantile(xs, 0.5)
		q3 = calculateQuantile(xs, 0.75)
	} else {
		sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].x < pairs[j].x })
		q1 = weightedQuantile(pairs, total, 0.25)
		med = weightedQuantile(pairs, total, 0.5)
		q3 = weightedQuantile(pairs, total, 0.75)
	}

	iqr := q3 - q1
	lower, upper := q1-fenceFactor*iqr, q3+fenceFactor*iqr

	low, high := math.NaN(), math.NaN()
	for _, x := range xs {
		if x >= lower {
			low = x
			break
		}
	}
	for i := len(xs) - 1; i >= 0; i-- {
		if xs[i] <= upper {
			high = xs[i]
			break
		}
	}

	return models.FiveNumber{
		Low:      low,
		Q1:       q1,
		Median:   med,
		Q3:       q3,
		High:     high,
		Outliers: findOutliers(xs, lower, upper),
		N:        len(xs),
	}
}

// NumberStats описательная статистика одной числовой колонки
type NumberStats struct {
	Average   float64
	Median    float64
	Min       float64
	Max       float64
	Count     int
	Missing   int
	Quantiles map[float64]float64
	IQR       float64
	Outliers  []float64
}

var DescribeQuantiles = []float64{0.01, 0.025, 0.1, 0.25, 0.75, 0.9, 0.975, 0.99}

// AnalyzeNumbers считает метрики по выборке, NaN считаются пропусками
func AnalyzeNumbers(numbers []float64) *NumberStats {
	sorted := make([]float64, 0, len(numbers))
	missing := 0
	for _, x := range numbers {
		if math.IsNaN(x) {
			missing++
			continue
		}
		sorted = append(sorted, x)
	}
	if len(sorted) == 0 {
		return nil
	}
	sort.Float64s(sorted)

	quantiles := make(map[float64]float64, len(DescribeQuantiles))
	for _, p := range DescribeQuantiles {
		quantiles[p] = roundToTwo(calculateQuantile(sorted, p))
	}
	iqr := quantiles[0.75] - quantiles[0.25]
	lo, hi := stats.Bounds(sorted)

	return &NumberStats{
		Average:   roundToTwo(stats.Mean(sorted)),
		Median:    roundToTwo(calculateQuantile(sorted, 0.5)),
		Min:       roundToTwo(lo),
		Max:       roundToTwo(hi),
		Count:     len(sorted),
		Missing:   missing,
		Quantiles: quantiles,
		IQR:       roundToTwo(iqr),
		Outliers:  findOutliers(sorted, quantiles[0.25]-fenceFactor*iqr, quantiles[0.75]+fenceFactor*iqr),
	}
}

// DescribeColumn статистика колонки, nil если колонка не числовая или пустая
func DescribeColumn(col models.Column) *NumberStats {
	nums, err := numericValues(col, col.Name)
	if err != nil {
		return nil
	}
	return AnalyzeNumbers(nums)
}

func roundToTwo(num float64) float64 {
	return math.Round(num*100) / 100
}
