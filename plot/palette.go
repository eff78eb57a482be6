package plot

import (
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/pivolan/dashboardr/domain/models"
)

var DefaultPalette = []string{
	"#5470c6", "#91cc75", "#fac858", "#ee6666", "#73c0de",
	"#3ba272", "#fc8452", "#9a60b4", "#ea7ccc",
}

func palette(d models.DisplayOptions) []string {
	if len(d.Palette) > 0 {
		return d.Palette
	}
	return DefaultPalette
}

func paletteColor(d models.DisplayOptions, i int) string {
	p := palette(d)
	return p[i%len(p)]
}

func drawingColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

// tooltipText подставляет значения в шаблон подсказки
func tooltipText(template, category, series, value string) string {
	if template == "" {
		if series != "" {
			return series + " / " + category + ": " + value
		}
		return category + ": " + value
	}
	return strings.NewReplacer("{category}", category, "{series}", series, "{value}", value).Replace(template)
}

// echartsTemplate переводит наш шаблон в нотацию ECharts
func echartsTemplate(template string) string {
	return strings.NewReplacer("{category}", "{b}", "{series}", "{a}", "{value}", "{c}").Replace(template)
}
