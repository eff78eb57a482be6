package datasource

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pierrec/lz4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pivolan/dashboardr/domain/models"
)

const surveyCSV = "gender;age;city\n1;25;Moscow\n2;NA;Paris\n1;40;\n"

func TestReadCSVSniffsDelimiterAndTypes(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader(surveyCSV), 0, map[string]models.ValueMap{
		"gender": {"1": "Male", "2": "Female"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"gender", "age", "city"}, tbl.ColumnNames())
	assert.Equal(t, 3, tbl.Len())

	gender, _ := tbl.Column("gender")
	assert.Equal(t, models.ColumnLabelled, gender.Type)
	assert.Equal(t, "Female", gender.Values[1].Display())

	age, _ := tbl.Column("age")
	assert.Equal(t, models.ColumnNumeric, age.Type)
	assert.True(t, age.Values[1].IsMissing())

	city, _ := tbl.Column("city")
	assert.Equal(t, models.ColumnString, city.Type)
	assert.True(t, city.Values[2].IsMissing())
}

func TestReadCSVWithoutHeader(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("1,2\n3,4\n"), 0, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"column_1", "column_2"}, tbl.ColumnNames())
	assert.Equal(t, 2, tbl.Len())
}

func TestReadCSVBadLabels(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(surveyCSV), ';', map[string]models.ValueMap{"age": {"young": "x"}})
	assert.Error(t, err)
}

func TestStringLabelsReplaceValues(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("code\nM\nF\n"), 0, map[string]models.ValueMap{"code": {"M": "Male"}})
	require.NoError(t, err)
	col, _ := tbl.Column("code")
	assert.Equal(t, "Male", col.Values[0].Display())
	assert.Equal(t, "F", col.Values[1].Display())
}

func TestSniffDelimiter(t *testing.T) {
	assert.Equal(t, ';', sniffDelimiter("a;b;c"))
	assert.Equal(t, '\t', sniffDelimiter("a\tb"))
	assert.Equal(t, ',', sniffDelimiter(`"a;b",c`))
	assert.Equal(t, ',', sniffDelimiter("single"))
}

func TestParseNumber(t *testing.T) {
	f, ok := parseNumber(" 2.5 ")
	assert.True(t, ok)
	assert.Equal(t, 2.5, f)
	f, ok = parseNumber("NULL")
	assert.True(t, ok)
	assert.True(t, math.IsNaN(f))
	_, ok = parseNumber("abc")
	assert.False(t, ok)
}

func writeFile(t *testing.T, name string, data []byte) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestLoadFileArchives(t *testing.T) {
	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	_, err := gw.Write([]byte(surveyCSV))
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	var lz bytes.Buffer
	lw := lz4.NewWriter(&lz)
	_, err = lw.Write([]byte(surveyCSV))
	require.NoError(t, err)
	require.NoError(t, lw.Close())

	var zb bytes.Buffer
	zw := zip.NewWriter(&zb)
	small, err := zw.Create("readme.txt")
	require.NoError(t, err)
	_, err = small.Write([]byte("x"))
	require.NoError(t, err)
	big, err := zw.Create("data/survey.csv")
	require.NoError(t, err)
	_, err = big.Write([]byte(surveyCSV))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	for name, data := range map[string][]byte{
		"survey.csv.gz":  gz.Bytes(),
		"survey.csv.lz4": lz.Bytes(),
		"survey.zip":     zb.Bytes(),
		"survey.csv":     []byte(surveyCSV),
	} {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, name, data)
			tbl, err := LoadFile(path, Options{})
			require.NoError(t, err)
			assert.Equal(t, []string{"gender", "age", "city"}, tbl.ColumnNames())
			assert.Equal(t, 3, tbl.Len())

			// архив остаётся на месте
			_, err = os.Stat(path)
			assert.NoError(t, err)
		})
	}
}

func TestLoadFileTSV(t *testing.T) {
	path := writeFile(t, "data.tsv", []byte("a\tb\n1\tx;y\n"))
	tbl, err := LoadFile(path, Options{})
	require.NoError(t, err)
	b, _ := tbl.Column("b")
	assert.Equal(t, "x;y", b.Values[0].Display())
}

func TestDelimiterFor(t *testing.T) {
	d, err := delimiterFor("x.csv", `\t`)
	require.NoError(t, err)
	assert.Equal(t, '\t', d)
	d, err = delimiterFor("x.csv", "")
	require.NoError(t, err)
	assert.Equal(t, rune(0), d)
	_, err = delimiterFor("x.csv", ";;")
	assert.Error(t, err)
}

func TestLoadFileXLSX(t *testing.T) {
	f := excelize.NewFile()
	_, err := f.NewSheet("Q1")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Q1", "A1", &[]interface{}{"region", "amount"}))
	require.NoError(t, f.SetSheetRow("Q1", "A2", &[]interface{}{"north", 10}))
	require.NoError(t, f.SetSheetRow("Q1", "A3", &[]interface{}{"south", 12.5}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())
	path := writeFile(t, "sales.xlsx", buf.Bytes())

	tbl, err := LoadFile(path, Options{Sheet: "Q1"})
	require.NoError(t, err)
	amount, ok := tbl.Column("amount")
	require.True(t, ok)
	assert.Equal(t, models.ColumnNumeric, amount.Type)
	assert.Equal(t, 12.5, amount.Values[1].Num)

	_, err = LoadFile(path, Options{Sheet: "Q9"})
	assert.Error(t, err)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "none.csv"), Options{})
	assert.Error(t, err)
}

func TestTableFromValues(t *testing.T) {
	tbl, err := tableFromValues(
		[]string{"region", "amount", "amount"},
		[][]interface{}{
			{[]byte("north"), int64(3), 1.5},
			{"south", nil, float32(2)},
		},
		nil,
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"region", "amount", "amount_1"}, tbl.ColumnNames())
	amount, _ := tbl.Column("amount")
	assert.Equal(t, models.ColumnNumeric, amount.Type)
	assert.True(t, amount.Values[1].IsMissing())
	region, _ := tbl.Column("region")
	assert.Equal(t, "north", region.Values[0].Display())
}
