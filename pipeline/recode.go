package pipeline

import (
	"strings"

	"github.com/pivolan/dashboardr/domain/models"
)

func validateValueMap(column string, vm models.ValueMap) error {
	for k, v := range vm {
		if strings.TrimSpace(k) == "" {
			return &InvalidMapError{Column: column, Reason: "empty source value"}
		}
		if strings.TrimSpace(v) == "" {
			return &InvalidMapError{Column: column, Reason: "empty label for " + k}
		}
	}
	return nil
}

// Recode заменяет значения по карте. Незамапленные значения проходят как есть,
// у labelled колонок сначала ищется код, потом подпись.
func Recode(col models.Column, vm models.ValueMap) (models.Column, error) {
	if len(vm) == 0 {
		return col, nil
	}
	if err := validateValueMap(col.Name, vm); err != nil {
		return col, err
	}
	out := models.Column{Name: col.Name, Type: col.Type, Values: make([]models.Value, len(col.Values))}
	mapped := false
	for i, v := range col.Values {
		out.Values[i] = v
		if v.IsMissing() {
			continue
		}
		label, ok := vm[v.Key()]
		if !ok && v.Label != "" {
			label, ok = vm[v.Label]
		}
		if ok {
			out.Values[i] = models.String(label)
			mapped = true
		}
	}
	if mapped {
		out.Type = models.ColumnString
	}
	return out, nil
}
