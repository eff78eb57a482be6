package plot

import (
	"github.com/pivolan/dashboardr/domain/models"
	"github.com/pivolan/dashboardr/pipeline"
)

type renderFunc = pipeline.RendererFunc

// NewRegistry все встроенные бэкенды. Таблица проверяется один раз, ошибка в ней паника.
func NewRegistry() *pipeline.Registry {
	var entries []pipeline.Entry
	add := func(b models.Backend, f renderFunc, types ...models.ChartType) {
		for _, t := range types {
			entries = append(entries, pipeline.Entry{Backend: b, ChartType: t, Renderer: f})
		}
	}

	add(models.BackendECharts, echartsBar, models.ChartBar, models.ChartStackedBar, models.ChartHistogram)
	add(models.BackendECharts, echartsBoxplot, models.ChartBoxplot)
	add(models.BackendECharts, echartsScatter, models.ChartScatter)
	add(models.BackendECharts, echartsLollipop, models.ChartLollipop)
	add(models.BackendECharts, echartsDumbbell, models.ChartDumbbell)
	add(models.BackendECharts, echartsFunnel, models.ChartFunnel)
	add(models.BackendECharts, echartsGauge, models.ChartGauge)
	add(models.BackendECharts, echartsTreemap, models.ChartTreemap)
	add(models.BackendECharts, echartsMap, models.ChartMap)

	add(models.BackendGoChart, gochartBar, models.ChartBar, models.ChartStackedBar)
	add(models.BackendGoChart, gochartHistogram, models.ChartHistogram)
	add(models.BackendGoChart, gochartScatter, models.ChartScatter)
	add(models.BackendGoChart, gochartLollipop, models.ChartLollipop)
	add(models.BackendGoChart, gochartDumbbell, models.ChartDumbbell)

	add(models.BackendSVG, svgHistogram, models.ChartHistogram)
	add(models.BackendSVG, svgScatter, models.ChartScatter)
	add(models.BackendSVG, svgLollipop, models.ChartLollipop)
	add(models.BackendSVG, svgDumbbell, models.ChartDumbbell)

	add(models.BackendTable, renderTable, models.AllChartTypes...)

	return pipeline.MustNewRegistry(entries...)
}
