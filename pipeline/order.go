package pipeline

import (
	"strings"

	"github.com/pivolan/go_utils"
)

// Order желаемые категории, которые есть в данных, идут первыми в заданном
// порядке, остальные следом в порядке появления. Ничего не теряется.
func Order(param string, desired, observed []string) ([]string, error) {
	if err := validateOrder(param, desired); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(observed))
	for _, d := range desired {
		if go_utils.InArray(d, observed) {
			out = append(out, d)
		}
	}
	for _, o := range observed {
		if !go_utils.InArray(o, out) {
			out = append(out, o)
		}
	}
	return out, nil
}

func validateOrder(param string, desired []string) error {
	seen := make(map[string]struct{}, len(desired))
	for _, d := range desired {
		if strings.TrimSpace(d) == "" {
			return &InvalidOrderError{Param: param, Reason: "empty label in order"}
		}
		if _, ok := seen[d]; ok {
			return &InvalidOrderError{Param: param, Reason: "duplicate label " + d + " in order"}
		}
		seen[d] = struct{}{}
	}
	return nil
}
