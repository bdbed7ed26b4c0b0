package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"eggstore-system/internal/apperr"
	"eggstore-system/internal/database/models"
)

func TestCustomerCRUD(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateCustomer(ctx, CustomerInput{Name: " "}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("blank name: got %v, want validation error", err)
	}

	customer, err := svc.CreateCustomer(ctx, CustomerInput{Name: " Layla ", Phone: "0912"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if customer.Name != "Layla" {
		t.Errorf("name = %q, want trimmed", customer.Name)
	}

	updated, err := svc.UpdateCustomer(ctx, customer.ID, CustomerInput{Name: "Layla H", Phone: "0913"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Layla H" || updated.Phone != "0913" {
		t.Errorf("update not applied: %+v", updated)
	}

	if _, err := svc.UpdateCustomer(ctx, 9999, CustomerInput{Name: "x"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("update missing: got %v, want not found", err)
	}
}

func TestDeleteCustomerRefusesWhileOwing(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	customer, err := svc.CreateCustomer(ctx, CustomerInput{Name: "Sami"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := db.Create(&models.DebtTransaction{
		CustomerID: customer.ID,
		Date:       time.Now(),
		Type:       models.TransactionDebt,
		Amount:     decimal.NewFromInt(90),
	}).Error; err != nil {
		t.Fatalf("seed debt: %v", err)
	}

	if err := svc.DeleteCustomer(ctx, customer.ID); !errors.Is(err, apperr.ErrConstraint) {
		t.Fatalf("got %v, want constraint error", err)
	}

	var count int64
	if err := db.Model(&models.Customer{}).Count(&count).Error; err != nil {
		t.Fatalf("count customers: %v", err)
	}
	if count != 1 {
		t.Errorf("customer was deleted despite open debt")
	}
}

func TestDeleteCustomerDetachesSalesAndDropsLedger(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	customer, err := svc.CreateCustomer(ctx, CustomerInput{Name: "Dina"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	sale := models.Sale{
		CustomerID: &customer.ID,
		SaleDate:   time.Now(),
		Total:      decimal.NewFromInt(40),
		PaidAmount: decimal.NewFromInt(40),
		DueAmount:  decimal.Zero,
	}
	if err := db.Create(&sale).Error; err != nil {
		t.Fatalf("seed sale: %v", err)
	}
	for _, typ := range []string{models.TransactionDebt, models.TransactionPayment} {
		if err := db.Create(&models.DebtTransaction{
			CustomerID: customer.ID,
			Date:       time.Now(),
			Type:       typ,
			Amount:     decimal.NewFromInt(40),
		}).Error; err != nil {
			t.Fatalf("seed ledger: %v", err)
		}
	}

	if err := svc.DeleteCustomer(ctx, customer.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var txnCount int64
	if err := db.Model(&models.DebtTransaction{}).Count(&txnCount).Error; err != nil {
		t.Fatalf("count ledger: %v", err)
	}
	if txnCount != 0 {
		t.Errorf("ledger rows = %d, want 0", txnCount)
	}

	var reloaded models.Sale
	if err := db.First(&reloaded, sale.ID).Error; err != nil {
		t.Fatalf("reload sale: %v", err)
	}
	if reloaded.CustomerID != nil {
		t.Errorf("sale still attached to customer %d", *reloaded.CustomerID)
	}

	if err := svc.DeleteCustomer(ctx, customer.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("double delete: got %v, want not found", err)
	}
}
