package pipeline

import (
	"fmt"
	"math"
	"sort"

	"github.com/aclements/go-moremath/stats"

	"github.com/pivolan/dashboardr/domain/models"
)

const DefaultBinCount = 10

var nan = math.NaN()

func validateBinSpec(column string, spec models.BinSpec) error {
	if len(spec.Breaks) == 0 {
		if spec.Count < 1 {
			return &InvalidBinSpecError{Column: column, Reason: fmt.Sprintf("bin count must be at least 1, got %d", spec.Count)}
		}
		if len(spec.Labels) > 0 && len(spec.Labels) != spec.Count {
			return &InvalidBinSpecError{Column: column, Reason: fmt.Sprintf("%d labels for %d bins", len(spec.Labels), spec.Count)}
		}
		return uniqueLabels(column, spec.Labels)
	}
	if spec.Count != 0 {
		return &InvalidBinSpecError{Column: column, Reason: "breaks and count are mutually exclusive"}
	}
	if len(spec.Breaks) < 2 {
		return &InvalidBinSpecError{Column: column, Reason: "at least 2 breakpoints required"}
	}
	for i, b := range spec.Breaks {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return &InvalidBinSpecError{Column: column, Reason: "breakpoints must be finite"}
		}
		if i > 0 && b <= spec.Breaks[i-1] {
			return &InvalidBinSpecError{Column: column, Reason: "breakpoints must be strictly increasing"}
		}
	}
	if len(spec.Labels) > 0 && len(spec.Labels) != len(spec.Breaks)-1 {
		return &InvalidBinSpecError{Column: column, Reason: fmt.Sprintf("%d labels for %d breakpoints", len(spec.Labels), len(spec.Breaks))}
	}
	return uniqueLabels(column, spec.Labels)
}

// uniqueLabels одинаковые подписи слили бы интервалы в одну категорию
func uniqueLabels(column string, labels []string) error {
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		if seen[l] {
			return &InvalidBinSpecError{Column: column, Reason: fmt.Sprintf("duplicate bin label %q", l)}
		}
		seen[l] = true
	}
	return nil
}

// autoBreaks n интервалов одинаковой ширины по размаху конечных значений
func autoBreaks(column string, nums []float64, n int) ([]float64, error) {
	xs := make([]float64, 0, len(nums))
	for _, x := range nums {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			xs = append(xs, x)
		}
	}
	lo, hi := 0.0, 1.0
	if len(xs) > 0 {
		lo, hi = stats.Bounds(xs)
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	step := (hi - lo) / float64(n)
	breaks := make([]float64, n+1)
	for i := range breaks {
		breaks[i] = lo + float64(i)*step
	}
	breaks[n] = hi
	for i := 1; i < len(breaks); i++ {
		if !(breaks[i] > breaks[i-1]) {
			return nil, &InvalidBinSpecError{Column: column, Reason: fmt.Sprintf("range %s..%s is too narrow for %d bins", formatBreak(lo), formatBreak(hi), n)}
		}
	}
	return breaks, nil
}

func formatBreak(b float64) string {
	return models.FormatNumber(math.Round(b*1e4) / 1e4)
}

// binLabels подписи интервалов, по умолчанию в нотации [a,b)
func binLabels(breaks []float64, labels []string) []string {
	if len(labels) > 0 {
		return append([]string(nil), labels...)
	}
	out := make([]string, len(breaks)-1)
	for i := range out {
		out[i] = fmt.Sprintf("[%s,%s)", formatBreak(breaks[i]), formatBreak(breaks[i+1]))
	}
	return out
}

// binIndex номер интервала или -1, если значение вне диапазона.
// Правая граница последнего интервала входит в него.
func binIndex(breaks []float64, x float64) int {
	last := len(breaks) - 1
	if math.IsNaN(x) || x < breaks[0] || x > breaks[last] {
		return -1
	}
	if x == breaks[last] {
		return last - 1
	}
	return sort.Search(len(breaks), func(i int) bool { return breaks[i] > x }) - 1
}

// Bin раскладывает числовую колонку по интервалам. Возвращает колонку подписей
// (вне диапазона и пропуски становятся пропусками), уровни и итоговые границы.
func Bin(col models.Column, param string, spec models.BinSpec) (models.Column, []string, []float64, error) {
	if err := validateBinSpec(col.Name, spec); err != nil {
		return col, nil, nil, err
	}
	nums, err := numericValues(col, param)
	if err != nil {
		return col, nil, nil, err
	}
	breaks := spec.Breaks
	if len(breaks) == 0 {
		if breaks, err = autoBreaks(col.Name, nums, spec.Count); err != nil {
			return col, nil, nil, err
		}
	}
	levels := binLabels(breaks, spec.Labels)
	// подписи по умолчанию округлены, близкие границы дают одинаковые
	if err := uniqueLabels(col.Name, levels); err != nil {
		return col, nil, nil, err
	}
	out := models.Column{Name: col.Name, Type: models.ColumnString, Values: make([]models.Value, len(nums))}
	for i, x := range nums {
		idx := binIndex(breaks, x)
		if idx < 0 {
			out.Values[i] = models.Missing()
			continue
		}
		out.Values[i] = models.String(levels[idx])
	}
	return out, levels, breaks, nil
}
