package pipeline

import (
	"github.com/pivolan/dashboardr/domain/models"
)

// requireColumn проверяет наличие колонки и возвращает её
func requireColumn(t *models.DataTable, param, name string) (models.Column, error) {
	if name == "" {
		return models.Column{}, &MissingColumnError{Param: param}
	}
	col, ok := t.Column(name)
	if !ok {
		names := t.ColumnNames()
		return models.Column{}, &MissingColumnError{
			Param:      param,
			Column:     name,
			Available:  names,
			Suggestion: suggest(name, names),
		}
	}
	return col, nil
}

// optionalColumn пустое имя означает отсутствие параметра
func optionalColumn(t *models.DataTable, param, name string) (*models.Column, error) {
	if name == "" {
		return nil, nil
	}
	col, err := requireColumn(t, param, name)
	if err != nil {
		return nil, err
	}
	return &col, nil
}

// numericValues приводит колонку к числам, пропуски становятся NaN.
// Строковая колонка допустима, только если все непустые значения парсятся.
// Строковая или labelled колонка без единого числа считается несовместимой.
func numericValues(col models.Column, param string) ([]float64, error) {
	out := make([]float64, len(col.Values))
	seen := 0
	for i, v := range col.Values {
		if v.IsMissing() {
			out[i] = nan
			continue
		}
		f, ok := v.Float()
		if !ok {
			return nil, &TypeMismatchError{Param: param, Column: col.Name, Expected: "numeric", Actual: col.Type}
		}
		out[i] = f
		seen++
	}
	if seen == 0 && (col.Type == models.ColumnString || col.Type == models.ColumnLabelled) {
		return nil, &TypeMismatchError{Param: param, Column: col.Name, Expected: "numeric", Actual: col.Type}
	}
	return out, nil
}
