package datasource

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/pivolan/dashboardr/domain/models"
)

// Options как читать файл данных
type Options struct {
	Sheet     string                     `yaml:"sheet"`
	Delimiter string                     `yaml:"delimiter"`
	Labels    map[string]models.ValueMap `yaml:"labels"`
}

// LoadFile читает CSV/TSV или XLSX, в том числе из архива
func LoadFile(path string, opts Options) (*models.DataTable, error) {
	rc, name, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var t *models.DataTable
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		t, err = ReadXLSX(rc, opts.Sheet, opts.Labels)
	default:
		delimiter, derr := delimiterFor(name, opts.Delimiter)
		if derr != nil {
			return nil, derr
		}
		t, err = ReadCSV(rc, delimiter, opts.Labels)
	}
	return t, errors.Wrapf(err, "load %s", path)
}

func delimiterFor(name, option string) (rune, error) {
	switch option {
	case "":
		if strings.EqualFold(filepath.Ext(name), ".tsv") {
			return '\t', nil
		}
		return 0, nil
	case `\t`, "tab":
		return '\t', nil
	}
	if utf8.RuneCountInString(option) != 1 {
		return 0, errors.Errorf("delimiter must be a single character, got %q", option)
	}
	r, _ := utf8.DecodeRuneInString(option)
	return r, nil
}
