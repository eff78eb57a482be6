package pipeline

import (
	"fmt"

	"github.com/pivolan/dashboardr/domain/models"
)

// IDCounter выдаёт уникальные id для DOM в пределах одной сборки.
// Принадлежит вызывающему, глобального состояния нет. Id годится
// и как имя переменной JS, поэтому разделитель подчёркивание.
type IDCounter struct {
	prefix string
	n      int
}

func NewIDCounter(prefix string) *IDCounter {
	return &IDCounter{prefix: prefix}
}

func (c *IDCounter) Next(kind models.ChartType) string {
	c.n++
	if c.prefix == "" {
		return fmt.Sprintf("%s_%d", kind, c.n)
	}
	return fmt.Sprintf("%s_%s_%d", c.prefix, kind, c.n)
}

// Dispatch передаёт конфигурацию ровно одному рендереру
func Dispatch(reg *Registry, backend string, cfg models.ChartConfig, ids *IDCounter) (models.ChartObject, error) {
	b, renderer, err := reg.Resolve(backend, cfg.Type)
	if err != nil {
		return nil, err
	}
	cfg.Backend = b
	if ids != nil {
		cfg.ID = ids.Next(cfg.Type)
	}
	return renderer.Render(cfg)
}
