package datasource

import (
	"bufio"
	"encoding/csv"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/pivolan/dashboardr/domain/models"
)

const SEPARATOR = ','

var delimiters = []rune{',', ';', '\t', '|'}

// sniffDelimiter разделитель, который чаще всего встречается в первой строке вне кавычек
func sniffDelimiter(line string) rune {
	counts := make(map[rune]int, len(delimiters))
	quoted := false
	for _, r := range line {
		if r == '"' {
			quoted = !quoted
			continue
		}
		if !quoted {
			counts[r]++
		}
	}
	best := rune(SEPARATOR)
	for _, d := range delimiters {
		if counts[d] > counts[best] {
			best = d
		}
	}
	return best
}

// ReadCSV читает CSV целиком. Нулевой delimiter означает автоопределение.
func ReadCSV(r io.Reader, delimiter rune, labels map[string]models.ValueMap) (*models.DataTable, error) {
	br := bufio.NewReader(r)
	first, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "read csv")
	}
	first = strings.TrimPrefix(first, "\ufeff")
	if delimiter == 0 {
		delimiter = sniffDelimiter(first)
	}

	reader := csv.NewReader(io.MultiReader(strings.NewReader(first), br))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "parse csv")
	}
	return FromRecords(records, labels)
}
