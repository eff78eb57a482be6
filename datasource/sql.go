package datasource

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pivolan/dashboardr/domain/models"
)

// OpenDB подключение по DSN в формате MySQL-драйвера
func OpenDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, errors.Wrap(err, "cannot connect to database")
	}
	return db, nil
}

// ReadSQL выполняет запрос и собирает таблицу из результата
func ReadSQL(db *gorm.DB, query string, labels map[string]models.ValueMap) (*models.DataTable, error) {
	rows, err := db.Raw(query).Rows()
	if err != nil {
		return nil, errors.Wrap(err, "query")
	}
	defer rows.Close()

	names, values, err := scanRows(rows)
	if err != nil {
		return nil, err
	}
	return tableFromValues(names, values, labels)
}

func scanRows(rows *sql.Rows) ([]string, [][]interface{}, error) {
	names, err := rows.Columns()
	if err != nil {
		return nil, nil, errors.Wrap(err, "columns")
	}
	var out [][]interface{}
	for rows.Next() {
		row := make([]interface{}, len(names))
		ptrs := make([]interface{}, len(names))
		for i := range row {
			ptrs[i] = &row[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, errors.Wrap(err, "scan")
		}
		out = append(out, row)
	}
	return names, out, errors.Wrap(rows.Err(), "rows")
}

// tableFromValues приводит значения драйвера к строкам и дальше как CSV с заголовком
func tableFromValues(names []string, values [][]interface{}, labels map[string]models.ValueMap) (*models.DataTable, error) {
	if len(names) == 0 {
		return nil, errors.New("query returned no columns")
	}
	headers := make([]string, len(names))
	for i, n := range names {
		headers[i] = cleanHeaderName(n, i)
	}
	headers = ValidateHeaders(headers)

	columns := make([]models.Column, len(headers))
	for i, name := range headers {
		raw := make([]string, len(values))
		for r, row := range values {
			raw[r] = driverString(row[i])
		}
		col, err := buildColumn(name, raw, labels[name])
		if err != nil {
			return nil, err
		}
		columns[i] = col
	}
	return models.NewDataTable(columns...)
}

func driverString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		if x {
			return "1"
		}
		return "0"
	case time.Time:
		return x.Format("2006-01-02 15:04:05")
	}
	return fmt.Sprint(v)
}
