package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/pivolan/dashboardr/datasource"
	"github.com/pivolan/dashboardr/domain/models"
)

// dataFlags откуда читать таблицу для inspect и describe
type dataFlags struct {
	file      string
	sheet     string
	delimiter string
}

func (d *dataFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&d.file, "file", "", "Data file: csv, tsv, xlsx, optionally zip, gz or lz4 compressed.")
	flags.StringVar(&d.sheet, "sheet", "", "XLSX sheet, the first one by default.")
	flags.StringVar(&d.delimiter, "delimiter", "", "CSV delimiter, detected from the first line by default.")
}

// handleFile распаковывает архив при необходимости и читает таблицу
func (d *dataFlags) handleFile() (*models.DataTable, error) {
	if d.file == "" {
		return nil, errors.New("--file is required")
	}
	return datasource.LoadFile(d.file, datasource.Options{Sheet: d.sheet, Delimiter: d.delimiter})
}
