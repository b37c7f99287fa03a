// Package spreadsheet turns order and parts workbooks into import records.
package spreadsheet

import (
	"io"
	"strconv"
	"strings"

	"github.com/ikkim/lego-inventory-backend/pkg/util"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

var ErrEmptyWorkbook = errors.New("no data found in the file")

// ConvertSerialDate renders a numeric serial date as YYYY-MM-DD. Other text is
// returned unchanged and blank cells yield "".
func ConvertSerialDate(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	serial, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return v
	}
	return util.SerialToDate(serial)
}

func CleanCurrency(v string) float64 {
	if strings.TrimSpace(v) == "" {
		return 0
	}
	return util.CleanCurrency(v)
}

func CleanQuantity(v string) int {
	if strings.TrimSpace(v) == "" {
		return 0
	}
	return util.CleanQuantity(v)
}

// header resolves column names of the first row to cell indexes
type header map[string]int

func newHeader(row []string) header {
	h := make(header, len(row))
	for i, name := range row {
		name = strings.TrimSpace(name)
		if _, dup := h[name]; name != "" && !dup {
			h[name] = i
		}
	}
	return h
}

func (h header) has(name string) bool {
	_, ok := h[name]
	return ok
}

// cell returns the trimmed value of column name in row, or "" when absent
func (h header) cell(row []string, name string) string {
	i, ok := h[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// readRows loads the first sheet of a workbook with unformatted cell values
func readRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "open workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.Wrapf(err, "read sheet %q", sheets[0])
	}
	if len(rows) == 0 {
		return nil, ErrEmptyWorkbook
	}
	return rows, nil
}
