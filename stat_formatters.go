package main

import (
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/pivolan/dashboardr/dashboard"
	"github.com/pivolan/dashboardr/domain/models"
	"github.com/pivolan/dashboardr/pipeline"
)

// GenerateTable статистика числовых колонок, по строке на колонку
func GenerateTable(stats map[string]*pipeline.NumberStats) string {
	t := table.NewWriter()
	header := table.Row{"Column", "Count", "NA", "Avg", "Min", "Median", "Max", "IQR"}
	for _, q := range pipeline.DescribeQuantiles {
		header = append(header, "q"+models.FormatNumber(q*100))
	}
	header = append(header, "Outliers")
	t.AppendHeader(header)

	names := make([]string, 0, len(stats))
	for k := range stats {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		s := stats[k]
		if s == nil {
			t.AppendRow(table.Row{k, 0})
			continue
		}
		row := table.Row{k, s.Count, s.Missing, s.Average, s.Min, s.Median, s.Max, s.IQR}
		for _, q := range pipeline.DescribeQuantiles {
			row = append(row, s.Quantiles[q])
		}
		row = append(row, len(s.Outliers))
		t.AppendRow(row)
	}
	t.SetStyle(table.StyleLight)
	return t.Render() + "\n"
}

// FormatResult итог сборки для консоли
func FormatResult(res *dashboard.Result) string {
	t := table.NewWriter()
	t.SetTitle("build " + res.Session)
	t.AppendHeader(table.Row{"Page", "Status"})
	for _, p := range res.Built {
		t.AppendRow(table.Row{p, "built"})
	}
	for _, p := range res.Skipped {
		t.AppendRow(table.Row{p, "unchanged"})
	}
	for _, f := range res.Failed {
		t.AppendRow(table.Row{f.Page, "chart skipped: " + f.String()})
	}
	t.AppendFooter(table.Row{"files", strings.Join(res.Files, ", ")})
	t.SetStyle(table.StyleDefault)
	return t.Render() + "\n"
}
