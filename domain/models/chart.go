package models

import (
	"io"
	"math"
)

type ChartType string

const (
	ChartBar        ChartType = "bar"
	ChartStackedBar ChartType = "stackedbar"
	ChartHistogram  ChartType = "histogram"
	ChartBoxplot    ChartType = "boxplot"
	ChartScatter    ChartType = "scatter"
	ChartLollipop   ChartType = "lollipop"
	ChartDumbbell   ChartType = "dumbbell"
	ChartFunnel     ChartType = "funnel"
	ChartMap        ChartType = "map"
	ChartTreemap    ChartType = "treemap"
	ChartGauge      ChartType = "gauge"
)

var AllChartTypes = []ChartType{
	ChartBar, ChartStackedBar, ChartHistogram, ChartBoxplot, ChartScatter, ChartLollipop,
	ChartDumbbell, ChartFunnel, ChartMap, ChartTreemap, ChartGauge,
}

type Backend string

const (
	BackendECharts Backend = "echarts"
	BackendGoChart Backend = "gochart"
	BackendSVG     Backend = "svg"
	BackendTable   Backend = "table"
)

const DefaultBackend = BackendECharts

var AllBackends = []Backend{BackendECharts, BackendGoChart, BackendSVG, BackendTable}

type AggregationMode string

const (
	ModeCount    AggregationMode = "count"
	ModeWeighted AggregationMode = "weighted"
	ModePercent  AggregationMode = "percent"
	ModeSum      AggregationMode = "sum"
	ModeMean     AggregationMode = "mean"
	ModeSummary  AggregationMode = "summary"
	ModePoints   AggregationMode = "points"
)

// ValueMap перекодировка исходных значений в подписи. Ключи числовых значений
// пишутся в кратчайшей форме: "1", "2.5".
type ValueMap map[string]string

// BinSpec либо явные границы Breaks, либо число интервалов Count
type BinSpec struct {
	Breaks []float64 `yaml:"breaks" json:"breaks,omitempty"`
	Labels []string  `yaml:"labels" json:"labels,omitempty"`
	Count  int       `yaml:"count" json:"count,omitempty"`
}

// CategorySeries упорядоченный список подписей оси
type CategorySeries []string

func (s CategorySeries) Index(label string) int {
	for i, l := range s {
		if l == label {
			return i
		}
	}
	return -1
}

type CellKey struct {
	Category string
	Group    string
}

type Cell struct {
	Value   float64 // точное значение
	Display float64 // значение после округления для отображения
	N       int     // число строк
	Weight  float64 // сумма весов
}

// FiveNumber пятичисловая сводка для boxplot
type FiveNumber struct {
	Low      float64
	Q1       float64
	Median   float64
	Q3       float64
	High     float64
	Outliers []float64
	N        int
}

func EmptyFiveNumber() FiveNumber {
	nan := math.NaN()
	return FiveNumber{Low: nan, Q1: nan, Median: nan, Q3: nan, High: nan}
}

func (f FiveNumber) Box() []float64 {
	return []float64{f.Low, f.Q1, f.Median, f.Q3, f.High}
}

type Point struct {
	X     float64
	Y     float64
	Group string
}

// AggregationResult полная сетка категории x группы после агрегации.
// Для негруппированных графиков Groups пуст, а ячейки лежат под пустой группой.
type AggregationResult struct {
	Mode       AggregationMode
	Categories CategorySeries
	Groups     CategorySeries
	Cells      map[CellKey]Cell
	Summaries  map[string]FiveNumber
	Points     []Point
	Total      float64
}

func (r AggregationResult) Get(category, group string) Cell {
	return r.Cells[CellKey{Category: category, Group: group}]
}

// Series значения для отображения в порядке категорий
func (r AggregationResult) Series(group string) []float64 {
	out := make([]float64, len(r.Categories))
	for i, c := range r.Categories {
		out[i] = r.Get(c, group).Display
	}
	return out
}

// SeriesNames имена рядов: группы, либо один ряд с пустым именем
func (r AggregationResult) SeriesNames() []string {
	if len(r.Groups) == 0 {
		return []string{""}
	}
	return r.Groups
}

type LegendPolicy string

const (
	LegendAuto LegendPolicy = "auto"
	LegendShow LegendPolicy = "show"
	LegendHide LegendPolicy = "hide"
)

type GaugeOptions struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

type MapOptions struct {
	MapType string `yaml:"map_type"`
}

type EChartsOptions struct {
	Theme string `yaml:"theme"`
}

type GoChartOptions struct {
	BarWidth int `yaml:"bar_width"`
}

type TableOptions struct {
	Style  string `yaml:"style"`
	Format string `yaml:"format"`
}

// DisplayOptions всё, что не влияет на данные
type DisplayOptions struct {
	Title           string       `yaml:"title"`
	Subtitle        string       `yaml:"subtitle"`
	XLabel          string       `yaml:"x_label"`
	YLabel          string       `yaml:"y_label"`
	Palette         []string     `yaml:"palette"`
	TooltipTemplate string       `yaml:"tooltip"`
	Legend          LegendPolicy `yaml:"legend"`
	Decimals        *int         `yaml:"decimals"`
	Width           int          `yaml:"width"`
	Height          int          `yaml:"height"`
	Horizontal      bool         `yaml:"horizontal"`

	Gauge   GaugeOptions   `yaml:"gauge"`
	Map     MapOptions     `yaml:"map"`
	ECharts EChartsOptions `yaml:"echarts"`
	GoChart GoChartOptions `yaml:"gochart"`
	Table   TableOptions   `yaml:"table"`
}

// Precision число знаков после запятой, по умолчанию один
func (d DisplayOptions) Precision() int {
	if d.Decimals == nil || *d.Decimals < 0 {
		return 1
	}
	return *d.Decimals
}

// ShowLegend легенда нужна только когда рядов больше одного, если не задано явно
func (d DisplayOptions) ShowLegend(series int) bool {
	switch d.Legend {
	case LegendShow:
		return true
	case LegendHide:
		return false
	}
	return series > 1
}

// ChartConfig результат пайплайна, вход для бэкенда
type ChartConfig struct {
	ID       string
	Type     ChartType
	Backend  Backend
	XVar     string
	YVar     string
	YEndVar  string
	GroupVar string
	Breaks   []float64
	Result   AggregationResult
	Display  DisplayOptions
}

// ChartObject готовый к выводу график
type ChartObject interface {
	ID() string
	Type() ChartType
	Backend() Backend
	Ext() string
	Render(w io.Writer) error
}
