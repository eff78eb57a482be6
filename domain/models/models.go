package models

import (
	"fmt"
	"math"
	"strconv"

	"github.com/jinzhu/copier"
)

type Kind uint8

const (
	KindMissing Kind = iota
	KindNumber
	KindString
)

// Value одна ячейка таблицы. Для labelled значений Num хранит код, Label подпись.
type Value struct {
	Kind  Kind
	Num   float64
	Str   string
	Label string
}

func Missing() Value { return Value{Kind: KindMissing} }
func Number(f float64) Value { return Value{Kind: KindNumber, Num: f} }
func String(s string) Value { return Value{Kind: KindString, Str: s} }
func Labelled(code float64, label string) Value {
	return Value{Kind: KindNumber, Num: code, Label: label}
}

// IsMissing true для пустой ячейки и для NaN
func (v Value) IsMissing() bool {
	return v.Kind == KindMissing || (v.Kind == KindNumber && math.IsNaN(v.Num))
}

// Key строковое представление исходного значения, используется как ключ в ValueMap
func (v Value) Key() string {
	switch v.Kind {
	case KindNumber:
		return FormatNumber(v.Num)
	case KindString:
		return v.Str
	}
	return ""
}

// Display то, что попадает в подписи категорий
func (v Value) Display() string {
	if v.Label != "" {
		return v.Label
	}
	return v.Key()
}

// Float пытается получить число из значения
func (v Value) Float() (float64, bool) {
	switch v.Kind {
	case KindNumber:
		return v.Num, !math.IsNaN(v.Num)
	case KindString:
		f, err := strconv.ParseFloat(v.Str, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

type ColumnType string

const (
	ColumnNumeric  ColumnType = "numeric"
	ColumnString   ColumnType = "string"
	ColumnLabelled ColumnType = "labelled"
)

type Column struct {
	Name   string
	Type   ColumnType
	Values []Value
}

func NewNumericColumn(name string, values ...float64) Column {
	col := Column{Name: name, Type: ColumnNumeric, Values: make([]Value, len(values))}
	for i, v := range values {
		if math.IsNaN(v) {
			col.Values[i] = Missing()
			continue
		}
		col.Values[i] = Number(v)
	}
	return col
}

// NewStringColumn пустая строка считается пропуском
func NewStringColumn(name string, values ...string) Column {
	col := Column{Name: name, Type: ColumnString, Values: make([]Value, len(values))}
	for i, v := range values {
		if v == "" {
			col.Values[i] = Missing()
			continue
		}
		col.Values[i] = String(v)
	}
	return col
}

// NewLabelledColumn коды без подписи в labels остаются числами
func NewLabelledColumn(name string, labels map[float64]string, codes ...float64) Column {
	col := Column{Name: name, Type: ColumnLabelled, Values: make([]Value, len(codes))}
	for i, c := range codes {
		if math.IsNaN(c) {
			col.Values[i] = Missing()
			continue
		}
		col.Values[i] = Labelled(c, labels[c])
	}
	return col
}

// DataTable набор именованных колонок одинаковой длины. Пайплайн работает только с копией.
type DataTable struct {
	Columns []Column
	index   map[string]int
}

func NewDataTable(columns ...Column) (*DataTable, error) {
	t := &DataTable{Columns: columns, index: make(map[string]int, len(columns))}
	for i, c := range columns {
		if _, ok := t.index[c.Name]; ok {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		if i > 0 && len(c.Values) != len(columns[0].Values) {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", c.Name, len(c.Values), len(columns[0].Values))
		}
		t.index[c.Name] = i
	}
	return t, nil
}

func (t *DataTable) Len() int {
	if t == nil || len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

func (t *DataTable) Column(name string) (Column, bool) {
	if t == nil {
		return Column{}, false
	}
	if t.index == nil {
		t.reindex()
	}
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.Columns[i], true
}

func (t *DataTable) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Clone глубокая копия, исходная таблица пайплайном не меняется
func (t *DataTable) Clone() (*DataTable, error) {
	out := &DataTable{}
	if err := copier.CopyWithOption(&out.Columns, &t.Columns, copier.Option{DeepCopy: true}); err != nil {
		return nil, err
	}
	out.reindex()
	return out, nil
}

func (t *DataTable) reindex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		t.index[c.Name] = i
	}
}
