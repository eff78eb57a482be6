package datasource

import (
	"math"
	"strconv"
	"strings"

	"github.com/pivolan/go_utils"
	"github.com/pkg/errors"

	"github.com/pivolan/dashboardr/domain/models"
)

// naTokens значения, которые читаются как пропуск
var naTokens = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL"}

func isNA(value string) bool {
	return go_utils.InArray(strings.TrimSpace(value), naTokens)
}

// parseNumber число либо пропуск; ok false если значение не число
func parseNumber(value string) (float64, bool) {
	if isNA(value) {
		return math.NaN(), true
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// FromRecords строит таблицу из строк файла. Первая строка считается заголовком,
// если похожа на него. Колонка числовая, когда все непустые значения числа.
func FromRecords(records [][]string, labels map[string]models.ValueMap) (*models.DataTable, error) {
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, errors.New("no data")
	}
	h := AnalyzeHeaders(records[0])
	rows := records[1:]
	if h.FirstRowIsData {
		rows = records
	}

	columns := make([]models.Column, len(h.Headers))
	for i, name := range h.Headers {
		raw := make([]string, len(rows))
		for r, row := range rows {
			if i < len(row) {
				raw[r] = row[i]
			}
		}
		col, err := buildColumn(name, raw, labels[name])
		if err != nil {
			return nil, err
		}
		columns[i] = col
	}
	return models.NewDataTable(columns...)
}

func buildColumn(name string, raw []string, labels models.ValueMap) (models.Column, error) {
	nums := make([]float64, len(raw))
	numeric := false
	for i, v := range raw {
		f, ok := parseNumber(v)
		if !ok {
			numeric = false
			break
		}
		nums[i] = f
		if !math.IsNaN(f) {
			numeric = true
		}
	}

	if numeric {
		if len(labels) == 0 {
			return models.NewNumericColumn(name, nums...), nil
		}
		codes := make(map[float64]string, len(labels))
		for k, label := range labels {
			code, err := strconv.ParseFloat(k, 64)
			if err != nil {
				return models.Column{}, errors.Errorf("labels for %q: code %q is not a number", name, k)
			}
			codes[code] = label
		}
		return models.NewLabelledColumn(name, codes, nums...), nil
	}

	values := make([]string, len(raw))
	for i, v := range raw {
		if isNA(v) {
			continue
		}
		v = strings.TrimSpace(v)
		// у строковых колонок подписи сразу заменяют значения
		if label, ok := labels[v]; ok {
			v = label
		}
		values[i] = v
	}
	return models.NewStringColumn(name, values...), nil
}
