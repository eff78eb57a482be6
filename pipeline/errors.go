package pipeline

import (
	"fmt"
	"strings"

	"github.com/pivolan/dashboardr/domain/models"
)

// MissingColumnError параметр ссылается на колонку, которой нет в таблице
type MissingColumnError struct {
	Param      string
	Column     string
	Available  []string
	Suggestion string
}

func (e *MissingColumnError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("%s: column is required", e.Param)
	}
	msg := fmt.Sprintf("%s: column %q not found", e.Param, e.Column)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

// TypeMismatchError колонка не подходит по типу для операции
type TypeMismatchError struct {
	Param    string
	Column   string
	Expected string
	Actual   models.ColumnType
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: column %q is %s, expected %s", e.Param, e.Column, e.Actual, e.Expected)
}

// InvalidMapError некорректная перекодировка значений
type InvalidMapError struct {
	Column string
	Reason string
}

func (e *InvalidMapError) Error() string {
	return fmt.Sprintf("value map for %q: %s", e.Column, e.Reason)
}

// InvalidBinSpecError некорректные границы или подписи интервалов
type InvalidBinSpecError struct {
	Column string
	Reason string
}

func (e *InvalidBinSpecError) Error() string {
	return fmt.Sprintf("bins for %q: %s", e.Column, e.Reason)
}

// UnsupportedBackendError неизвестный бэкенд либо бэкенд не умеет этот тип графика
type UnsupportedBackendError struct {
	Backend    string
	ChartType  models.ChartType
	Valid      []string
	Suggestion string
}

func (e *UnsupportedBackendError) Error() string {
	var msg string
	if e.ChartType != "" {
		msg = fmt.Sprintf("backend %q does not support %s charts; valid backends: %s", e.Backend, e.ChartType, strings.Join(e.Valid, ", "))
	} else {
		msg = fmt.Sprintf("unknown backend %q; valid backends: %s", e.Backend, strings.Join(e.Valid, ", "))
	}
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

// InvalidOrderError некорректный желаемый порядок категорий
type InvalidOrderError struct {
	Param  string
	Reason string
}

func (e *InvalidOrderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Param, e.Reason)
}

// InvalidOptionError значение перечисления не из допустимого набора
type InvalidOptionError struct {
	Param      string
	Value      string
	Valid      []string
	Suggestion string
}

func (e *InvalidOptionError) Error() string {
	msg := fmt.Sprintf("%s: invalid value %q; valid values: %s", e.Param, e.Value, strings.Join(e.Valid, ", "))
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}
