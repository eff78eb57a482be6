package pipeline

import (
	"fmt"
	"strconv"

	"github.com/pivolan/dashboardr/domain/models"
)

// ParseValueMaps разбирает перекодировки из конфигурации: колонка -> {значение: подпись}.
// Допускаются только плоские словари скалярных значений.
func ParseValueMaps(raw map[string]interface{}) (map[string]models.ValueMap, error) {
	out := make(map[string]models.ValueMap, len(raw))
	for column, v := range raw {
		entries, err := flatEntries(column, v)
		if err != nil {
			return nil, err
		}
		vm := make(models.ValueMap, len(entries))
		for k, label := range entries {
			vm[k] = label
		}
		if err := validateValueMap(column, vm); err != nil {
			return nil, err
		}
		out[column] = vm
	}
	return out, nil
}

func flatEntries(column string, v interface{}) (map[string]string, error) {
	out := make(map[string]string)
	switch m := v.(type) {
	case map[string]interface{}:
		for k, val := range m {
			s, err := scalarString(column, val)
			if err != nil {
				return nil, err
			}
			out[k] = s
		}
	case map[interface{}]interface{}:
		for k, val := range m {
			key, err := scalarString(column, k)
			if err != nil {
				return nil, err
			}
			s, err := scalarString(column, val)
			if err != nil {
				return nil, err
			}
			out[key] = s
		}
	case map[string]string:
		for k, val := range m {
			out[k] = val
		}
	default:
		return nil, &InvalidMapError{Column: column, Reason: fmt.Sprintf("expected a dictionary, got %T", v)}
	}
	return out, nil
}

func scalarString(column string, v interface{}) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case int:
		return strconv.Itoa(s), nil
	case int64:
		return strconv.FormatInt(s, 10), nil
	case float64:
		return models.FormatNumber(s), nil
	case bool:
		return strconv.FormatBool(s), nil
	}
	return "", &InvalidMapError{Column: column, Reason: fmt.Sprintf("not a flat dictionary: value of type %T", v)}
}
