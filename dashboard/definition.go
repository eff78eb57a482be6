package dashboard

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/pivolan/dashboardr/datasource"
	"github.com/pivolan/dashboardr/domain/models"
	"github.com/pivolan/dashboardr/pipeline"
)

// ErrorPolicy что делать, если график не построился
type ErrorPolicy string

const (
	ErrorHalt ErrorPolicy = "halt"
	ErrorSkip ErrorPolicy = "skip"
)

const defaultOutput = "_site"

// Source файл или SQL-запрос, из которого строятся графики
type Source struct {
	Path      string                 `yaml:"path" json:"path,omitempty"`
	Sheet     string                 `yaml:"sheet" json:"sheet,omitempty"`
	Delimiter string                 `yaml:"delimiter" json:"delimiter,omitempty"`
	Query     string                 `yaml:"query" json:"query,omitempty"`
	RawLabels map[string]interface{} `yaml:"labels" json:"-"`

	Labels map[string]models.ValueMap `yaml:"-" json:"labels,omitempty"`
}

func (s Source) Options() datasource.Options {
	return datasource.Options{Sheet: s.Sheet, Delimiter: s.Delimiter, Labels: s.Labels}
}

// Chart описание одного графика страницы
type Chart struct {
	Type          string                 `yaml:"type" json:"type"`
	Data          string                 `yaml:"data" json:"data"`
	X             string                 `yaml:"x" json:"x,omitempty"`
	Y             string                 `yaml:"y" json:"y,omitempty"`
	YEnd          string                 `yaml:"y_end" json:"y_end,omitempty"`
	Group         string                 `yaml:"group" json:"group,omitempty"`
	Weight        string                 `yaml:"weight" json:"weight,omitempty"`
	RawValueMaps  map[string]interface{} `yaml:"value_maps" json:"-"`
	Bins          *models.BinSpec        `yaml:"bins" json:"bins,omitempty"`
	IncludeNA     bool                   `yaml:"include_na" json:"include_na,omitempty"`
	NALabel       string                 `yaml:"na_label" json:"na_label,omitempty"`
	Order         []string               `yaml:"order" json:"order,omitempty"`
	GroupOrder    []string               `yaml:"group_order" json:"group_order,omitempty"`
	Mode          string                 `yaml:"mode" json:"mode,omitempty"`
	PercentWithin string                 `yaml:"percent_within" json:"percent_within,omitempty"`
	Backend       string                 `yaml:"backend" json:"backend,omitempty"`
	Display       models.DisplayOptions  `yaml:"display" json:"display"`

	ValueMaps map[string]models.ValueMap `yaml:"-" json:"value_maps,omitempty"`
}

// Request параметры пайплайна; пустой бэкенд графика берётся со страницы
func (c Chart) Request(defaultBackend string) pipeline.Request {
	backend := c.Backend
	if backend == "" {
		backend = defaultBackend
	}
	return pipeline.Request{
		Type:           models.ChartType(c.Type),
		XVar:           c.X,
		YVar:           c.Y,
		YEndVar:        c.YEnd,
		GroupVar:       c.Group,
		WeightVar:      c.Weight,
		ValueMaps:      c.ValueMaps,
		Bins:           c.Bins,
		IncludeMissing: c.IncludeNA,
		MissingLabel:   c.NALabel,
		Order:          c.Order,
		GroupOrder:     c.GroupOrder,
		Mode:           models.AggregationMode(c.Mode),
		PercentWithin:  pipeline.PercentBase(c.PercentWithin),
		Backend:        backend,
		Display:        c.Display,
	}
}

type Page struct {
	Name   string  `yaml:"name" json:"name"`
	Charts []Chart `yaml:"charts" json:"charts"`
}

// Sources имена источников, которые использует страница, по алфавиту
func (p Page) Sources() []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range p.Charts {
		if !seen[c.Data] {
			seen[c.Data] = true
			out = append(out, c.Data)
		}
	}
	sort.Strings(out)
	return out
}

// Definition описание дашборда целиком
type Definition struct {
	Title        string            `yaml:"title"`
	Output       string            `yaml:"output"`
	Backend      string            `yaml:"backend"`
	OnChartError ErrorPolicy       `yaml:"on_chart_error"`
	Data         map[string]Source `yaml:"data"`
	Pages        []Page            `yaml:"pages"`

	slugs []string
}

// Load читает YAML; относительные пути считаются от каталога файла
func Load(path string) (*Definition, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read dashboard definition")
	}
	d, err := Parse(b)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	d.resolvePaths(filepath.Dir(path))
	return d, nil
}

// Parse разбирает и проверяет описание
func Parse(b []byte) (*Definition, error) {
	d := &Definition{}
	if err := yaml.Unmarshal(b, d); err != nil {
		return nil, errors.Wrap(err, "yaml")
	}
	if err := d.normalize(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Definition) normalize() error {
	if d.Output == "" {
		d.Output = defaultOutput
	}
	switch d.OnChartError {
	case "":
		d.OnChartError = ErrorHalt
	case ErrorHalt, ErrorSkip:
	default:
		return &pipeline.InvalidOptionError{Param: "on_chart_error", Value: string(d.OnChartError), Valid: []string{string(ErrorHalt), string(ErrorSkip)}}
	}

	names := make([]string, 0, len(d.Data))
	for name, src := range d.Data {
		if (src.Path == "") == (src.Query == "") {
			return errors.Errorf("data %q: exactly one of path and query is required", name)
		}
		labels, err := pipeline.ParseValueMaps(src.RawLabels)
		if err != nil {
			return errors.Wrapf(err, "data %q", name)
		}
		src.Labels = labels
		d.Data[name] = src
		names = append(names, name)
	}
	sort.Strings(names)

	if len(d.Pages) == 0 {
		return errors.New("no pages defined")
	}
	d.slugs = make([]string, len(d.Pages))
	used := make(map[string]bool)
	for i := range d.Pages {
		p := &d.Pages[i]
		if p.Name == "" {
			return errors.Errorf("page %d: name is required", i+1)
		}
		d.slugs[i] = uniqueSlug(Slugify(p.Name), used)
		for j := range p.Charts {
			c := &p.Charts[j]
			if _, ok := d.Data[c.Data]; !ok {
				return errors.Wrapf(&pipeline.InvalidOptionError{Param: "data", Value: c.Data, Valid: names},
					"page %q chart %d", p.Name, j+1)
			}
			vms, err := pipeline.ParseValueMaps(c.RawValueMaps)
			if err != nil {
				return errors.Wrapf(err, "page %q chart %d", p.Name, j+1)
			}
			c.ValueMaps = vms
		}
	}
	return nil
}

func (d *Definition) resolvePaths(base string) {
	if !filepath.IsAbs(d.Output) {
		d.Output = filepath.Join(base, d.Output)
	}
	for name, src := range d.Data {
		if src.Path != "" && !filepath.IsAbs(src.Path) {
			src.Path = filepath.Join(base, src.Path)
			d.Data[name] = src
		}
	}
}

// Slug имя файла страницы
func (d *Definition) Slug(i int) string {
	return d.slugs[i]
}
