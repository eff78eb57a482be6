package plot

import (
	"io"

	"github.com/aclements/go-gg/gg"
	"github.com/go-echarts/go-echarts/v2/components"

	"github.com/pivolan/dashboardr/domain/models"
)

type meta struct {
	id      string
	typ     models.ChartType
	backend models.Backend
}

func newMeta(cfg models.ChartConfig) meta {
	return meta{id: cfg.ID, typ: cfg.Type, backend: cfg.Backend}
}

func (m meta) ID() string { return m.id }
func (m meta) Type() models.ChartType { return m.typ }
func (m meta) Backend() models.Backend { return m.backend }

// echartsChart общий интерфейс графиков go-echarts
type echartsChart interface {
	components.Charter
	Render(w io.Writer) error
}

// EChart интерактивный график, может рендериться отдельно или в составе страницы
type EChart struct {
	meta
	chart echartsChart
}

func (c *EChart) Ext() string { return "html" }
func (c *EChart) Render(w io.Writer) error { return c.chart.Render(w) }
func (c *EChart) Charter() components.Charter { return c.chart }

// ImageChart статичная картинка, отрисованная заранее
type ImageChart struct {
	meta
	data []byte
}

func (c *ImageChart) Ext() string { return "png" }
func (c *ImageChart) Bytes() []byte { return c.data }
func (c *ImageChart) Render(w io.Writer) error {
	_, err := w.Write(c.data)
	return err
}

// SVGChart график go-gg, отрисовывается при вызове Render
type SVGChart struct {
	meta
	plot   *gg.Plot
	width  int
	height int
}

func (c *SVGChart) Ext() string { return "svg" }
func (c *SVGChart) Render(w io.Writer) error {
	return c.plot.WriteSVG(w, c.width, c.height)
}

// TextChart текстовая таблица
type TextChart struct {
	meta
	text string
	ext  string
}

func (c *TextChart) Ext() string { return c.ext }
func (c *TextChart) String() string { return c.text }
func (c *TextChart) Render(w io.Writer) error {
	_, err := io.WriteString(w, c.text)
	return err
}
