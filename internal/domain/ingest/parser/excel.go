package parser

import (
	"bytes"
	"fmt"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
)

// parseXLSX reads the first sheet of an XLSX workbook. Cells are read raw so
// date serials reach the normalizer as plain numbers instead of whatever
// display format the sheet carries.
func parseXLSX(data []byte) ([]Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data), excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &ParseError{Format: FormatXLSX, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Format: FormatXLSX, Err: fmt.Errorf("workbook has no sheets")}
	}

	matrix, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &ParseError{Format: FormatXLSX, Err: err}
	}

	return rowsFromMatrix(matrix), nil
}

// parseXLS reads the first sheet of a legacy OLE workbook.
func parseXLS(data []byte) ([]Row, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Format: FormatXLS, Err: err}
	}

	sheet, err := workbook.GetSheet(0)
	if err != nil {
		return nil, &ParseError{Format: FormatXLS, Err: err}
	}

	var matrix [][]string
	for _, row := range sheet.GetRows() {
		var cells []string
		for _, cell := range row.GetCols() {
			cells = append(cells, cell.GetString())
		}
		matrix = append(matrix, cells)
	}

	return rowsFromMatrix(matrix), nil
}
