package pipeline

import (
	"fmt"

	"github.com/pivolan/go_utils"

	"github.com/pivolan/dashboardr/domain/models"
)

// Renderer превращает готовую конфигурацию в график конкретного бэкенда
type Renderer interface {
	Render(cfg models.ChartConfig) (models.ChartObject, error)
}

type RendererFunc func(cfg models.ChartConfig) (models.ChartObject, error)

func (f RendererFunc) Render(cfg models.ChartConfig) (models.ChartObject, error) {
	return f(cfg)
}

type Entry struct {
	Backend   models.Backend
	ChartType models.ChartType
	Renderer  Renderer
}

// Registry закрытая таблица бэкенд x тип графика
type Registry struct {
	renderers map[models.Backend]map[models.ChartType]Renderer
}

// NewRegistry проверяет таблицу один раз при старте
func NewRegistry(entries ...Entry) (*Registry, error) {
	r := &Registry{renderers: make(map[models.Backend]map[models.ChartType]Renderer)}
	for _, e := range entries {
		if !go_utils.InArray(string(e.Backend), backendNames(models.AllBackends)) {
			return nil, fmt.Errorf("registry: unknown backend %q", e.Backend)
		}
		if !isChartType(e.ChartType) {
			return nil, fmt.Errorf("registry: unknown chart type %q", e.ChartType)
		}
		if e.Renderer == nil {
			return nil, fmt.Errorf("registry: nil renderer for %s/%s", e.Backend, e.ChartType)
		}
		byType, ok := r.renderers[e.Backend]
		if !ok {
			byType = make(map[models.ChartType]Renderer)
			r.renderers[e.Backend] = byType
		}
		if _, dup := byType[e.ChartType]; dup {
			return nil, fmt.Errorf("registry: duplicate renderer for %s/%s", e.Backend, e.ChartType)
		}
		byType[e.ChartType] = e.Renderer
	}
	return r, nil
}

func MustNewRegistry(entries ...Entry) *Registry {
	r, err := NewRegistry(entries...)
	if err != nil {
		panic(err)
	}
	return r
}

// Backends зарегистрированные бэкенды в каноническом порядке
func (r *Registry) Backends() []models.Backend {
	out := make([]models.Backend, 0, len(r.renderers))
	for _, b := range models.AllBackends {
		if _, ok := r.renderers[b]; ok {
			out = append(out, b)
		}
	}
	return out
}

// Supporting бэкенды, умеющие рисовать данный тип
func (r *Registry) Supporting(t models.ChartType) []models.Backend {
	out := make([]models.Backend, 0)
	for _, b := range r.Backends() {
		if _, ok := r.renderers[b][t]; ok {
			out = append(out, b)
		}
	}
	return out
}

func (r *Registry) Supports(b models.Backend, t models.ChartType) bool {
	_, ok := r.renderers[b][t]
	return ok
}

// Resolve находит рендерер; пустое имя означает бэкенд по умолчанию
func (r *Registry) Resolve(name string, t models.ChartType) (models.Backend, Renderer, error) {
	if name == "" {
		name = string(models.DefaultBackend)
	}
	b := models.Backend(name)
	byType, ok := r.renderers[b]
	if !ok {
		valid := backendNames(r.Backends())
		return "", nil, &UnsupportedBackendError{Backend: name, Valid: valid, Suggestion: suggest(name, valid)}
	}
	renderer, ok := byType[t]
	if !ok {
		return "", nil, &UnsupportedBackendError{Backend: name, ChartType: t, Valid: backendNames(r.Supporting(t))}
	}
	return b, renderer, nil
}

func backendNames(bs []models.Backend) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = string(b)
	}
	return out
}

func chartTypeNames() []string {
	out := make([]string, len(models.AllChartTypes))
	for i, t := range models.AllChartTypes {
		out[i] = string(t)
	}
	return out
}

func isChartType(t models.ChartType) bool {
	return go_utils.InArray(string(t), chartTypeNames())
}
