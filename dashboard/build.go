package dashboard

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	"gorm.io/gorm"

	"github.com/pivolan/dashboardr/buildcache"
	"github.com/pivolan/dashboardr/datasource"
	"github.com/pivolan/dashboardr/domain/models"
	"github.com/pivolan/dashboardr/notify"
	"github.com/pivolan/dashboardr/pipeline"
	"github.com/pivolan/dashboardr/plot"
)

// Notifier получает итог сборки
type Notifier interface {
	Notify(r notify.Report) error
}

// ChartFailure график, пропущенный при on_chart_error: skip
type ChartFailure struct {
	Page  string
	Chart int
	Err   error
}

func (f ChartFailure) String() string {
	return fmt.Sprintf("%s #%d: %v", f.Page, f.Chart, f.Err)
}

// Result что сделала сборка
type Result struct {
	Session string
	Built   []string
	Skipped []string
	Failed  []ChartFailure
	Files   []string
}

// Builder собирает страницы дашборда. Один Builder на одну сборку.
type Builder struct {
	Def      *Definition
	Registry *pipeline.Registry
	Logger   *log.Logger
	Notifier Notifier
	Force    bool
	DSN      string

	db      *gorm.DB
	tables  map[string]*models.DataTable
	hashes  map[string]string
	session string
	images  []notify.Attachment
}

func NewBuilder(def *Definition) *Builder {
	return &Builder{
		Def:      def,
		Registry: plot.NewRegistry(),
		Logger:   log.New(os.Stderr, "dashboardr: ", log.LstdFlags),
	}
}

// pageFingerprint всё, от чего зависит содержимое страницы
type pageFingerprint struct {
	Page    Page              `json:"page"`
	Backend string            `json:"backend"`
	Sources map[string]string `json:"sources"`
}

type renderedAsset struct {
	name string
	data []byte
	obj  models.ChartObject
}

// Build пересобирает изменившиеся страницы и сохраняет манифест
func (b *Builder) Build() (*Result, error) {
	start := time.Now()
	b.session = uuid.NewV4().String()
	b.tables = make(map[string]*models.DataTable)
	b.hashes = make(map[string]string)
	b.images = nil
	defer b.closeDB()
	res := &Result{Session: b.session}
	out := b.Def.Output

	if err := os.MkdirAll(out, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating %s", out)
	}
	manifest, err := buildcache.LoadManifest(out)
	if err != nil {
		return nil, err
	}
	b.Logger.Printf("build %s started, %d pages", b.session, len(b.Def.Pages))

	next := buildcache.NewManifest()
	for i, page := range b.Def.Pages {
		slug := b.Def.Slug(i)
		fp, err := b.fingerprint(page)
		if err != nil {
			return res, errors.Wrapf(err, "page %q", page.Name)
		}
		hash, err := buildcache.ComputeHash(fp)
		if err != nil {
			return res, errors.Wrapf(err, "page %q", page.Name)
		}
		if !b.Force && !buildcache.NeedsRebuild(slug, fp, manifest) {
			next.Set(slug, hash)
			res.Skipped = append(res.Skipped, slug)
			b.Logger.Printf("page %s unchanged", slug)
			continue
		}

		files, failures, err := b.buildPage(slug, page)
		if err != nil {
			if serr := buildcache.SaveManifest(next, out); serr != nil {
				b.Logger.Printf("saving manifest: %v", serr)
			}
			return res, errors.Wrapf(err, "page %q", page.Name)
		}
		res.Files = append(res.Files, files...)
		res.Built = append(res.Built, slug)
		res.Failed = append(res.Failed, failures...)
		// страницу с пропущенными графиками пересобираем в следующий раз
		if len(failures) == 0 {
			next.Set(slug, hash)
		}
		b.Logger.Printf("page %s built, %d files", slug, len(files))
	}

	if err := buildcache.SaveManifest(next, out); err != nil {
		return res, err
	}
	if err := writeIndex(b.Def, out); err != nil {
		return res, err
	}
	took := time.Since(start)
	b.Logger.Printf("build %s done in %s: %d built, %d unchanged, %d charts failed",
		b.session, took, len(res.Built), len(res.Skipped), len(res.Failed))

	if b.Notifier != nil {
		if err := b.Notifier.Notify(b.report(res, took)); err != nil {
			b.Logger.Printf("notify: %v", err)
		}
	}
	return res, nil
}

func (b *Builder) report(res *Result, took time.Duration) notify.Report {
	failed := make([]string, len(res.Failed))
	for i, f := range res.Failed {
		failed[i] = f.String()
	}
	return notify.Report{
		Title:    b.Def.Title,
		Session:  res.Session,
		Built:    res.Built,
		Skipped:  res.Skipped,
		Failed:   failed,
		Duration: took,
		Images:   b.images,
	}
}

func (b *Builder) fingerprint(page Page) (pageFingerprint, error) {
	fp := pageFingerprint{Page: page, Backend: b.Def.Backend, Sources: make(map[string]string)}
	for _, name := range page.Sources() {
		h, err := b.sourceHash(name)
		if err != nil {
			return fp, err
		}
		fp.Sources[name] = h
	}
	return fp, nil
}

// sourceHash хеш настроек источника вместе с содержимым файла
func (b *Builder) sourceHash(name string) (string, error) {
	if h, ok := b.hashes[name]; ok {
		return h, nil
	}
	src := b.Def.Data[name]
	content := ""
	if src.Path != "" {
		h, err := buildcache.HashFile(src.Path)
		if err != nil {
			return "", errors.Wrapf(err, "data %q", name)
		}
		content = h
	}
	h, err := buildcache.ComputeHash(struct {
		Source  Source `json:"source"`
		Content string `json:"content"`
	}{src, content})
	if err != nil {
		return "", err
	}
	b.hashes[name] = h
	return h, nil
}

// table загружает источник один раз за сборку
func (b *Builder) table(name string) (*models.DataTable, error) {
	if t, ok := b.tables[name]; ok {
		return t, nil
	}
	src := b.Def.Data[name]
	var (
		t   *models.DataTable
		err error
	)
	if src.Query != "" {
		db, derr := b.database()
		if derr != nil {
			return nil, derr
		}
		t, err = datasource.ReadSQL(db, src.Query, src.Labels)
	} else {
		t, err = datasource.LoadFile(src.Path, src.Options())
	}
	if err != nil {
		return nil, errors.Wrapf(err, "data %q", name)
	}
	b.Logger.Printf("data %s loaded: %d rows, columns %v", name, t.Len(), t.ColumnNames())
	b.tables[name] = t
	return t, nil
}

func (b *Builder) database() (*gorm.DB, error) {
	if b.db != nil {
		return b.db, nil
	}
	if b.DSN == "" {
		return nil, errors.New("query data sources need a database DSN")
	}
	db, err := datasource.OpenDB(b.DSN)
	if err != nil {
		return nil, err
	}
	b.db = db
	return db, nil
}

func (b *Builder) closeDB() {
	if b.db == nil {
		return
	}
	if sqlDB, err := b.db.DB(); err == nil {
		sqlDB.Close()
	}
	b.db = nil
}

// buildPage ничего не пишет на диск, пока все графики страницы не построены
func (b *Builder) buildPage(slug string, page Page) ([]string, []ChartFailure, error) {
	ids := pipeline.NewIDCounter("")
	html := components.NewPage().SetPageTitle(pageTitle(b.Def.Title, page.Name))
	html.SetLayout(components.PageFlexLayout)

	var (
		assets   []renderedAsset
		failures []ChartFailure
	)
	for j, chart := range page.Charts {
		obj, err := b.renderChart(chart, ids)
		if err != nil {
			if b.Def.OnChartError == ErrorSkip {
				b.Logger.Printf("page %s chart %d (%s) skipped: %v", slug, j+1, chart.Type, err)
				failures = append(failures, ChartFailure{Page: slug, Chart: j + 1, Err: err})
				continue
			}
			return nil, nil, errors.Wrapf(err, "chart %d (%s)", j+1, chart.Type)
		}

		if ec, ok := obj.(*plot.EChart); ok {
			html.AddCharts(ec.Charter())
			continue
		}
		var buf bytes.Buffer
		if err := obj.Render(&buf); err != nil {
			if b.Def.OnChartError == ErrorSkip {
				b.Logger.Printf("page %s chart %d (%s) skipped: %v", slug, j+1, chart.Type, err)
				failures = append(failures, ChartFailure{Page: slug, Chart: j + 1, Err: err})
				continue
			}
			return nil, nil, errors.Wrapf(err, "render chart %d (%s)", j+1, chart.Type)
		}
		name := fmt.Sprintf("%s-%s.%s", slug, obj.ID(), obj.Ext())
		assets = append(assets, renderedAsset{name: name, data: buf.Bytes(), obj: obj})
	}

	var pageHTML bytes.Buffer
	if err := html.Render(&pageHTML); err != nil {
		return nil, nil, errors.Wrap(err, "render page")
	}
	assets = append(assets, renderedAsset{name: slug + ".html", data: pageHTML.Bytes()})

	files := make([]string, 0, len(assets))
	for _, a := range assets {
		path := filepath.Join(b.Def.Output, a.name)
		if err := os.WriteFile(path, a.data, 0644); err != nil {
			return nil, nil, errors.Wrapf(err, "write %s", a.name)
		}
		files = append(files, a.name)
		if _, ok := a.obj.(*plot.ImageChart); ok {
			b.images = append(b.images, notify.Attachment{Name: a.name, Caption: pageTitle(page.Name, a.obj.ID()), Bytes: a.data})
		}
	}
	return files, failures, nil
}

func (b *Builder) renderChart(chart Chart, ids *pipeline.IDCounter) (models.ChartObject, error) {
	t, err := b.table(chart.Data)
	if err != nil {
		return nil, err
	}
	return pipeline.Run(t, chart.Request(b.Def.Backend), ids, b.Registry)
}

func pageTitle(title, name string) string {
	if title == "" {
		return name
	}
	return title + " / " + name
}
