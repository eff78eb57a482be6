package datasource

import (
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/pivolan/dashboardr/domain/models"
)

// ReadXLSX читает лист книги; пустое имя листа означает первый лист
func ReadXLSX(r io.Reader, sheet string, labels map[string]models.ValueMap) (*models.DataTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "open xlsx")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if sheet == "" {
		if len(sheets) == 0 {
			return nil, errors.New("xlsx: workbook has no sheets")
		}
		sheet = sheets[0]
	}
	found := false
	for _, s := range sheets {
		if s == sheet {
			found = true
			break
		}
	}
	if !found {
		return nil, errors.Errorf("xlsx: sheet %q not found, available: %v", sheet, sheets)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "xlsx: read sheet %q", sheet)
	}
	return FromRecords(rows, labels)
}
