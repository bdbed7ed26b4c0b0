package reports

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"eggstore-system/internal/services/ledger"
)

const sheetName = "Sheet1"

// XLSXContentType is the MIME type handlers set when streaming a workbook.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func writeRow(f *excelize.File, rowNo int, values ...interface{}) {
	col := 'A'
	for _, value := range values {
		f.SetCellValue(sheetName, fmt.Sprintf("%c%d", col, rowNo), value)
		col++
	}
}

// DailySalesWorkbook renders today's line items with a grand-total summary
// row.
func DailySalesWorkbook(rows []SaleItemRow, total decimal.Decimal) (*excelize.File, error) {
	f := excelize.NewFile()
	if _, err := f.NewSheet(sheetName); err != nil {
		return nil, err
	}

	writeRow(f, 1, "Time", "Customer", "Product", "Qty", "Unit Price", "Line Total", "Payment")
	for i, r := range rows {
		writeRow(f, i+2, r.Date.Format("15:04:05"), r.Customer, r.Product, r.Qty, r.UnitPrice, r.LineTotal, r.PaymentType)
	}
	writeRow(f, len(rows)+2, "", "", "", "", "Grand Total", total, "")
	return f, nil
}

// RangedSalesWorkbook renders line items over a date range with a grand-total
// summary row.
func RangedSalesWorkbook(rows []SaleItemRow, total decimal.Decimal) (*excelize.File, error) {
	f := excelize.NewFile()
	if _, err := f.NewSheet(sheetName); err != nil {
		return nil, err
	}

	writeRow(f, 1, "Date", "Customer", "Product", "Qty", "Unit Price", "Line Total")
	for i, r := range rows {
		writeRow(f, i+2, r.Date.Format("2006-01-02"), r.Customer, r.Product, r.Qty, r.UnitPrice, r.LineTotal)
	}
	writeRow(f, len(rows)+2, "", "", "", "", "Grand Total", total)
	return f, nil
}

// DebtsWorkbook renders the full debtor list with the total owed.
func DebtsWorkbook(debtors []ledger.Debtor, total decimal.Decimal) (*excelize.File, error) {
	f := excelize.NewFile()
	if _, err := f.NewSheet(sheetName); err != nil {
		return nil, err
	}

	writeRow(f, 1, "Customer", "Phone", "Amount Due")
	for i, d := range debtors {
		writeRow(f, i+2, d.Customer.Name, d.Customer.Phone, d.Balance)
	}
	writeRow(f, len(debtors)+2, "Total Debts", "", total)
	return f, nil
}

// DamagedWorkbook renders write-offs over a date range with the total damaged
// quantity.
func DamagedWorkbook(rows []DamagedRow, totalQty int64) (*excelize.File, error) {
	f := excelize.NewFile()
	if _, err := f.NewSheet(sheetName); err != nil {
		return nil, err
	}

	writeRow(f, 1, "Date", "Product", "Damaged Qty", "Notes")
	for i, r := range rows {
		writeRow(f, i+2, r.Date.Format("2006-01-02"), r.Product, r.Quantity, r.Notes)
	}
	writeRow(f, len(rows)+2, "", "Grand Total", totalQty, "")
	return f, nil
}
