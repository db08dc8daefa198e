package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Bills"

// XLSXRenderer lays a Document out as a single-sheet workbook: title row,
// header row, one row per bill, a totals row, and the watermark in the
// printed page header.
type XLSXRenderer struct{}

func (XLSXRenderer) Extension() string { return ".xlsx" }

func (XLSXRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

var headers = []string{"Name", "Bill No", "Billed Amount", "Paid Amount", "Paid", "Billed Date", "Paid Date"}

func (XLSXRenderer) Render(doc *Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	write := func(col, row int, v any) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(sheetName, cell, v)
	}

	if err := write(1, 1, doc.Title); err != nil {
		return nil, err
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.MergeCell(sheetName, "A1", last); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	_ = f.SetCellStyle(sheetName, "A1", last, bold)

	for i, h := range headers {
		if err := write(i+1, 2, h); err != nil {
			return nil, err
		}
	}
	hdrEnd, _ := excelize.CoordinatesToCellName(len(headers), 2)
	_ = f.SetCellStyle(sheetName, "A2", hdrEnd, bold)

	row := 3
	for _, r := range doc.Rows {
		for i, v := range r.DisplayFields() {
			if err := write(i+1, row, v); err != nil {
				return nil, err
			}
		}
		row++
	}

	totals := []any{"Total Paid", doc.TotalPaid.StringFixed(2), "Total Unpaid", doc.TotalUnpaid.StringFixed(2)}
	for i, v := range totals {
		if err := write(i+1, row, v); err != nil {
			return nil, err
		}
	}
	totEnd, _ := excelize.CoordinatesToCellName(len(totals), row)
	totStart, _ := excelize.CoordinatesToCellName(1, row)
	_ = f.SetCellStyle(sheetName, totStart, totEnd, bold)

	if doc.Watermark != "" {
		err := f.SetHeaderFooter(sheetName, &excelize.HeaderFooterOptions{
			OddHeader: "&C&\"-,Bold\"&14" + doc.Watermark,
			OddFooter: "&L" + doc.GeneratedAt.Format("2006-01-02 15:04") + "&RPage &P of &N",
		})
		if err != nil {
			return nil, fmt.Errorf("header: %w", err)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 28)
	_ = f.SetColWidth(sheetName, "B", "B", 14)
	_ = f.SetColWidth(sheetName, "C", "D", 14)
	_ = f.SetColWidth(sheetName, "E", "E", 8)
	_ = f.SetColWidth(sheetName, "F", "G", 12)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
