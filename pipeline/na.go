package pipeline

import (
	"github.com/pivolan/dashboardr/domain/models"
)

const DefaultMissingLabel = "(Missing)"

type naPolicy struct {
	include bool
	label   string
}

func newNAPolicy(include bool, label string) naPolicy {
	if label == "" {
		label = DefaultMissingLabel
	}
	return naPolicy{include: include, label: label}
}

// categorical колонка после перекодировки, биннинга и политики пропусков
type categorical struct {
	labels []string // подпись для каждой строки
	drop   []bool   // строка исключена из агрегации
	levels []string // наблюдаемые уровни: интервалы по порядку либо порядок появления
	breaks []float64
}

// resolve подменяет пропуски подписью или помечает строки к удалению
func (p naPolicy) resolve(col models.Column, levels []string) categorical {
	c := categorical{
		labels: make([]string, len(col.Values)),
		drop:   make([]bool, len(col.Values)),
	}
	seen := make(map[string]struct{})
	fixed := levels != nil
	if fixed {
		c.levels = append(c.levels, levels...)
		for _, l := range levels {
			seen[l] = struct{}{}
		}
	}
	sawMissing := false
	for i, v := range col.Values {
		if v.IsMissing() {
			if !p.include {
				c.drop[i] = true
				continue
			}
			c.labels[i] = p.label
			sawMissing = true
			if fixed {
				continue
			}
		} else {
			c.labels[i] = v.Display()
		}
		if _, ok := seen[c.labels[i]]; !ok {
			seen[c.labels[i]] = struct{}{}
			c.levels = append(c.levels, c.labels[i])
		}
	}
	// у интервалов подпись пропуска идёт после всех интервалов
	if fixed && sawMissing {
		if _, ok := seen[p.label]; !ok {
			c.levels = append(c.levels, p.label)
		}
	}
	return c
}
