package reports

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"eggstore-system/internal/database/models"
	"eggstore-system/internal/services/ledger"
)

func TestDailySalesWorkbook(t *testing.T) {
	when := time.Date(2025, 3, 14, 9, 30, 0, 0, time.Local)
	rows := []SaleItemRow{
		{
			Date:        when,
			Customer:    "Walk-in",
			Product:     "egg",
			Qty:         12,
			UnitPrice:   decimal.NewFromInt(5),
			LineTotal:   decimal.NewFromInt(60),
			PaymentType: models.PaymentCash,
		},
	}

	f, err := DailySalesWorkbook(rows, decimal.NewFromInt(60))
	if err != nil {
		t.Fatalf("build workbook: %v", err)
	}

	check := func(cell, want string) {
		t.Helper()
		got, err := f.GetCellValue(sheetName, cell)
		if err != nil {
			t.Fatalf("read %s: %v", cell, err)
		}
		if got != want {
			t.Errorf("%s = %q, want %q", cell, got, want)
		}
	}

	check("A1", "Time")
	check("G1", "Payment")
	check("A2", "09:30:00")
	check("C2", "egg")
	check("D2", "12")
	check("F2", "60")
	check("E3", "Grand Total")
	check("F3", "60")
}

func TestDebtsWorkbook(t *testing.T) {
	debtors := []ledger.Debtor{
		{Customer: models.Customer{Name: "Yusuf", Phone: "0911"}, Balance: decimal.NewFromInt(45)},
		{Customer: models.Customer{Name: "Layla"}, Balance: decimal.NewFromInt(20)},
	}

	f, err := DebtsWorkbook(debtors, decimal.NewFromInt(65))
	if err != nil {
		t.Fatalf("build workbook: %v", err)
	}

	check := func(cell, want string) {
		t.Helper()
		got, err := f.GetCellValue(sheetName, cell)
		if err != nil {
			t.Fatalf("read %s: %v", cell, err)
		}
		if got != want {
			t.Errorf("%s = %q, want %q", cell, got, want)
		}
	}

	check("A1", "Customer")
	check("A2", "Yusuf")
	check("B2", "0911")
	check("C2", "45")
	check("A3", "Layla")
	check("A4", "Total Debts")
	check("C4", "65")
}

func TestDamagedWorkbook(t *testing.T) {
	rows := []DamagedRow{
		{Date: time.Date(2025, 3, 14, 0, 0, 0, 0, time.Local), Product: "egg", Quantity: 7, Notes: "dropped"},
	}

	f, err := DamagedWorkbook(rows, 7)
	if err != nil {
		t.Fatalf("build workbook: %v", err)
	}

	got, err := f.GetCellValue(sheetName, "A2")
	if err != nil {
		t.Fatalf("read A2: %v", err)
	}
	if got != "2025-03-14" {
		t.Errorf("A2 = %q, want date", got)
	}
	got, err = f.GetCellValue(sheetName, "C3")
	if err != nil {
		t.Fatalf("read C3: %v", err)
	}
	if got != "7" {
		t.Errorf("C3 = %q, want total 7", got)
	}
}
