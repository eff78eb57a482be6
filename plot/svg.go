package plot

import (
	"errors"
	"math"

	"github.com/aclements/go-gg/gg"
	"github.com/aclements/go-gg/table"

	"github.com/pivolan/dashboardr/domain/models"
)

var errNoData = errors.New("nothing to plot")

func svgChart(cfg models.ChartConfig, p *gg.Plot) (models.ChartObject, error) {
	if cfg.Display.Title != "" {
		p.Add(gg.Title(cfg.Display.Title))
	}
	p.Add(gg.AxisLabel("x", xAxisName(cfg)), gg.AxisLabel("y", yAxisName(cfg)))
	w, h := size(cfg.Display)
	return &SVGChart{meta: newMeta(cfg), plot: p, width: w, height: h}, nil
}

// categoryScale ось X с категориями на позициях 0..n-1
func categoryScale(categories []string) gg.ContinuousScaler {
	s := gg.NewLinearScaler().SetMin(-0.5).SetMax(float64(len(categories)) - 0.5)
	s.SetFormatter(func(x float64) string {
		i := int(math.Round(x))
		if math.Abs(x-float64(i)) > 1e-9 || i < 0 || i >= len(categories) {
			return ""
		}
		return categories[i]
	})
	return s
}

func svgScatter(cfg models.ChartConfig) (models.ChartObject, error) {
	res := cfg.Result
	if len(res.Points) == 0 {
		return nil, errNoData
	}
	xs := make([]float64, len(res.Points))
	ys := make([]float64, len(res.Points))
	groups := make([]string, len(res.Points))
	tips := make([]string, len(res.Points))
	prec := cfg.Display.Precision()
	for i, pt := range res.Points {
		xs[i], ys[i], groups[i] = pt.X, pt.Y, pt.Group
		tips[i] = tooltipText(cfg.Display.TooltipTemplate, models.FormatNumber(roundDisplay(pt.X, prec)), pt.Group, models.FormatNumber(roundDisplay(pt.Y, prec)))
	}
	b := new(table.Builder).Add("x", xs).Add("y", ys).Add("tooltip", tips)
	layer := gg.LayerPoints{X: "x", Y: "y"}
	if len(res.Groups) > 0 {
		b.Add("group", groups)
		layer.Color = "group"
	}
	p := gg.NewPlot(b.Done())
	p.Add(layer)
	p.Add(gg.LayerTooltips{X: "x", Y: "y", Label: "tooltip"})
	return svgChart(cfg, p)
}

// svgLollipop отрезок от нуля до значения и точка на конце
func svgLollipop(cfg models.ChartConfig) (models.ChartObject, error) {
	res := cfg.Result
	if len(res.Categories) == 0 {
		return nil, errNoData
	}
	values := cleanValues(res.Series(""))
	var sx, sy []float64
	var stick []int
	for i, v := range values {
		sx = append(sx, float64(i), float64(i))
		sy = append(sy, 0, v)
		stick = append(stick, i, i)
	}
	idx := make([]float64, len(values))
	tips := make([]string, len(values))
	for i, v := range values {
		idx[i] = float64(i)
		tips[i] = tooltipText(cfg.Display.TooltipTemplate, res.Categories[i], "", models.FormatNumber(v))
	}

	p := gg.NewPlot(new(table.Builder).Add("x", idx).Add("y", values).Add("tooltip", tips).Done())
	p.SetScale("x", categoryScale(res.Categories))
	p.SetScale("y", gg.NewLinearScaler().Include(0))

	p.Save()
	p.SetData(new(table.Builder).Add("x", sx).Add("y", sy).Add("stick", stick).Done())
	p.GroupBy("stick")
	p.Add(gg.LayerPaths{X: "x", Y: "y"})
	p.Restore()

	p.Add(gg.LayerPoints{X: "x", Y: "y"})
	p.Add(gg.LayerTooltips{X: "x", Y: "y", Label: "tooltip"})
	return svgChart(cfg, p)
}

// svgDumbbell отрезок между началом и концом, цвет точки по ряду
func svgDumbbell(cfg models.ChartConfig) (models.ChartObject, error) {
	res := cfg.Result
	if len(res.Categories) == 0 || len(res.Groups) != 2 {
		return nil, errNoData
	}
	var sx, sy []float64
	var stick []int
	var px, py []float64
	var series, tips []string
	for i, c := range res.Categories {
		start := res.Get(c, res.Groups[0]).Display
		end := res.Get(c, res.Groups[1]).Display
		if !math.IsNaN(start) && !math.IsNaN(end) {
			sx = append(sx, float64(i), float64(i))
			sy = append(sy, start, end)
			stick = append(stick, i, i)
		}
		for gi, v := range []float64{start, end} {
			if math.IsNaN(v) {
				continue
			}
			px = append(px, float64(i))
			py = append(py, v)
			series = append(series, res.Groups[gi])
			tips = append(tips, tooltipText(cfg.Display.TooltipTemplate, c, res.Groups[gi], models.FormatNumber(v)))
		}
	}
	if len(px) == 0 {
		return nil, errNoData
	}

	p := gg.NewPlot(new(table.Builder).Add("x", px).Add("y", py).Add("series", series).Add("tooltip", tips).Done())
	p.SetScale("x", categoryScale(res.Categories))
	if len(sx) > 0 {
		p.Save()
		p.SetData(new(table.Builder).Add("x", sx).Add("y", sy).Add("stick", stick).Done())
		p.GroupBy("stick")
		p.Add(gg.LayerPaths{X: "x", Y: "y"})
		p.Restore()
	}
	p.Add(gg.LayerPoints{X: "x", Y: "y", Color: "series"})
	p.Add(gg.LayerTooltips{X: "x", Y: "y", Label: "tooltip"})
	return svgChart(cfg, p)
}

// svgHistogram ступенчатая линия по границам интервалов
func svgHistogram(cfg models.ChartConfig) (models.ChartObject, error) {
	res := cfg.Result
	n := len(cfg.Breaks) - 1
	if n < 1 || len(res.Categories) < n {
		return nil, errNoData
	}
	values := cleanValues(res.Series(""))
	xs := make([]float64, 0, n+1)
	ys := make([]float64, 0, n+1)
	for i := 0; i < n; i++ {
		xs = append(xs, cfg.Breaks[i])
		ys = append(ys, values[i])
	}
	// последняя ступень закрывается на правой границе
	xs = append(xs, cfg.Breaks[n])
	ys = append(ys, values[n-1])

	p := gg.NewPlot(new(table.Builder).Add("x", xs).Add("y", ys).Done())
	p.SetScale("y", gg.NewLinearScaler().Include(0))
	p.Add(gg.LayerSteps{LayerPaths: gg.LayerPaths{X: "x", Y: "y"}, Step: gg.StepHV})
	return svgChart(cfg, p)
}
