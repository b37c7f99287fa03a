package spreadsheet

import (
	"io"
	"regexp"
	"strconv"

	"github.com/ikkim/lego-inventory-backend/pkg/util"
)

var nonPriceChar = regexp.MustCompile(`[^0-9.]+`)

// PartRow is one line of a set's parts workbook. Blank cells stay blank so the
// importer can apply its own defaults.
type PartRow struct {
	ItemID          int64
	PartID          string
	Name            string
	ItemDescription string
	PaB             string
	Color           string
	Weight          string
	US              float64
	Quantity        string
	Ordered         string
	Inventory       string
	BsStandard      string
}

// ReadParts parses the first sheet of a parts workbook
func ReadParts(r io.Reader) ([]PartRow, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}
	return ParsePartRows(rows)
}

// ParsePartRows maps data rows by header name. Blank rows are skipped and a
// missing item_id falls back to the row's 1-based position.
func ParsePartRows(rows [][]string) ([]PartRow, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyWorkbook
	}

	h := newHeader(rows[0])
	parts := []PartRow{}

	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}

		itemID, ok := util.ToInt64(h.cell(row, "item_id"))
		if !ok || itemID == 0 {
			itemID = int64(len(parts) + 1)
		}

		parts = append(parts, PartRow{
			ItemID:          itemID,
			PartID:          h.cell(row, "part_id"),
			Name:            h.cell(row, "name"),
			ItemDescription: h.cell(row, "item_description"),
			PaB:             h.cell(row, "PaB"),
			Color:           h.cell(row, "Color"),
			Weight:          h.cell(row, "Weight"),
			US:              parsePrice(h.cell(row, "US Price")),
			Quantity:        h.cell(row, "Quantity"),
			Ordered:         h.cell(row, "Ordered"),
			Inventory:       h.cell(row, "Inventory"),
			BsStandard:      h.cell(row, "BS/Standard"),
		})
	}
	return parts, nil
}

// parsePrice keeps digits and dots only, so "US $3.50" is 3.5
func parsePrice(v string) float64 {
	f, err := strconv.ParseFloat(nonPriceChar.ReplaceAllString(v, ""), 64)
	if err != nil {
		return 0
	}
	return f
}
