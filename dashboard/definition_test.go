package dashboard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pivolan/dashboardr/domain/models"
	"github.com/pivolan/dashboardr/pipeline"
)

const surveyYAML = `
title: Survey 2024
backend: echarts
data:
  survey:
    path: data/survey.csv
    labels:
      gender: {1: Male, 2: Female}
  orders:
    query: "SELECT region, amount FROM orders"
pages:
  - name: Обзор
    charts:
      - {type: histogram, data: survey, x: age, bins: {count: 8}}
      - type: bar
        data: survey
        x: region
        value_maps:
          region: {n: North, s: South}
        order: [South, North]
        backend: table
        display: {title: Regions, decimals: 0, table: {format: markdown}}
  - name: Orders
    charts:
      - {type: bar, data: orders, x: region, y: amount, mode: sum}
`

func TestParse(t *testing.T) {
	d, err := Parse([]byte(surveyYAML))
	require.NoError(t, err)

	assert.Equal(t, "Survey 2024", d.Title)
	assert.Equal(t, defaultOutput, d.Output)
	assert.Equal(t, ErrorHalt, d.OnChartError)
	assert.Equal(t, "obzor", d.Slug(0))
	assert.Equal(t, "orders", d.Slug(1))
	assert.Equal(t, models.ValueMap{"1": "Male", "2": "Female"}, d.Data["survey"].Labels["gender"])

	bar := d.Pages[0].Charts[1]
	req := bar.Request(d.Backend)
	assert.Equal(t, models.ChartBar, req.Type)
	assert.Equal(t, "table", req.Backend)
	assert.Equal(t, []string{"South", "North"}, req.Order)
	assert.Equal(t, models.ValueMap{"n": "North", "s": "South"}, req.ValueMaps["region"])
	assert.Equal(t, "Regions", req.Display.Title)
	assert.Equal(t, 0, req.Display.Precision())
	assert.Equal(t, "markdown", req.Display.Table.Format)

	hist := d.Pages[0].Charts[0].Request(d.Backend)
	assert.Equal(t, "echarts", hist.Backend)
	require.NotNil(t, hist.Bins)
	assert.Equal(t, 8, hist.Bins.Count)

	assert.Equal(t, []string{"survey"}, d.Pages[0].Sources())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"no pages", "data: {a: {path: a.csv}}", "no pages"},
		{"path and query", "data: {a: {path: a.csv, query: select 1}}\npages: [{name: x}]", "exactly one"},
		{"neither path nor query", "data: {a: {sheet: Q1}}\npages: [{name: x}]", "exactly one"},
		{"unnamed page", "data: {a: {path: a.csv}}\npages: [{charts: []}]", "name is required"},
		{"nested labels", "data: {a: {path: a.csv, labels: {g: {x: {y: z}}}}}\npages: [{name: x}]", "not a flat dictionary"},
		{"bad yaml", "pages: [", "yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseTypedErrors(t *testing.T) {
	_, err := Parse([]byte("on_chart_error: ignore\ndata: {a: {path: a.csv}}\npages: [{name: x}]"))
	var optErr *pipeline.InvalidOptionError
	require.True(t, errors.As(err, &optErr))
	assert.Equal(t, "on_chart_error", optErr.Param)

	_, err = Parse([]byte("data: {survey: {path: a.csv}}\npages: [{name: x, charts: [{type: bar, data: survey2, x: a}]}]"))
	require.True(t, errors.As(err, &optErr))
	assert.Equal(t, "data", optErr.Param)
	assert.Equal(t, []string{"survey"}, optErr.Valid)

	_, err = Parse([]byte("data: {a: {path: a.csv}}\npages: [{name: x, charts: [{type: bar, data: a, value_maps: {g: [1, 2]}}]}]"))
	var mapErr *pipeline.InvalidMapError
	require.True(t, errors.As(err, &mapErr))
	assert.Equal(t, "g", mapErr.Column)
}

func TestLoadResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dashboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(surveyYAML), 0644))

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "_site"), d.Output)
	assert.Equal(t, filepath.Join(dir, "data", "survey.csv"), d.Data["survey"].Path)
	assert.Equal(t, "", d.Data["orders"].Path)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Overview", "overview"},
		{"Обзор 2024", "obzor-2024"},
		{"Sales & Marketing!", "sales-marketing"},
		{"  --  ", "page"},
		{"", "page"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}

	used := map[string]bool{}
	assert.Equal(t, "sales", uniqueSlug("sales", used))
	assert.Equal(t, "sales-2", uniqueSlug("sales", used))
	assert.Equal(t, "sales-3", uniqueSlug("sales", used))
}
