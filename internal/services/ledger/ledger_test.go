package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"eggstore-system/internal/apperr"
	"eggstore-system/internal/database"
	"eggstore-system/internal/database/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func mustCreate(t *testing.T, db *gorm.DB, value interface{}) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("create fixture: %v", err)
	}
}

func TestBalanceOf(t *testing.T) {
	txns := []models.DebtTransaction{
		{Type: models.TransactionDebt, Amount: decimal.NewFromInt(100)},
		{Type: models.TransactionDebt, Amount: decimal.NewFromInt(50)},
		{Type: models.TransactionPayment, Amount: decimal.NewFromInt(30)},
	}
	if got := BalanceOf(txns); !got.Equal(decimal.NewFromInt(120)) {
		t.Errorf("balance = %s, want 120", got)
	}
	if got := BalanceOf(nil); !got.IsZero() {
		t.Errorf("empty balance = %s, want 0", got)
	}
}

func TestRecordTransactionAndBalance(t *testing.T) {
	db := newTestDB(t)
	svc := New(db, nil, newTestLogger())
	ctx := context.Background()

	customer := models.Customer{Name: "Mariam"}
	mustCreate(t, db, &customer)

	if _, err := svc.RecordTransaction(ctx, RecordInput{
		CustomerID: customer.ID,
		Type:       models.TransactionDebt,
		Amount:     decimal.NewFromInt(200),
	}); err != nil {
		t.Fatalf("record debt: %v", err)
	}
	if _, err := svc.RecordTransaction(ctx, RecordInput{
		CustomerID: customer.ID,
		Type:       models.TransactionPayment,
		Amount:     decimal.NewFromInt(75),
	}); err != nil {
		t.Fatalf("record payment: %v", err)
	}

	balance, err := svc.Balance(ctx, customer.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(125)) {
		t.Errorf("balance = %s, want 125", balance)
	}
}

func TestRecordTransactionRejectsBadInput(t *testing.T) {
	db := newTestDB(t)
	svc := New(db, nil, newTestLogger())
	ctx := context.Background()

	customer := models.Customer{Name: "Omar"}
	mustCreate(t, db, &customer)

	_, err := svc.RecordTransaction(ctx, RecordInput{
		CustomerID: customer.ID,
		Type:       "refund",
		Amount:     decimal.NewFromInt(10),
	})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("unknown type: got %v, want validation error", err)
	}

	_, err = svc.RecordTransaction(ctx, RecordInput{
		CustomerID: customer.ID,
		Type:       models.TransactionDebt,
		Amount:     decimal.Zero,
	})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("zero amount: got %v, want validation error", err)
	}

	_, err = svc.RecordTransaction(ctx, RecordInput{
		CustomerID: 9999,
		Type:       models.TransactionDebt,
		Amount:     decimal.NewFromInt(10),
	})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing customer: got %v, want not found", err)
	}
}

func TestListDebtors(t *testing.T) {
	db := newTestDB(t)
	svc := New(db, nil, newTestLogger())
	ctx := context.Background()

	small := models.Customer{Name: "Small"}
	big := models.Customer{Name: "Big"}
	tied := models.Customer{Name: "Tied"}
	settled := models.Customer{Name: "Settled"}
	for _, c := range []*models.Customer{&small, &big, &tied, &settled} {
		mustCreate(t, db, c)
	}

	add := func(customerID uint, typ string, amount int64) {
		mustCreate(t, db, &models.DebtTransaction{
			CustomerID: customerID,
			Date:       time.Now(),
			Type:       typ,
			Amount:     decimal.NewFromInt(amount),
		})
	}
	add(small.ID, models.TransactionDebt, 40)
	add(big.ID, models.TransactionDebt, 500)
	add(tied.ID, models.TransactionDebt, 500)
	add(settled.ID, models.TransactionDebt, 80)
	add(settled.ID, models.TransactionPayment, 80)

	debtors, err := svc.ListDebtors(ctx, 0)
	if err != nil {
		t.Fatalf("list debtors: %v", err)
	}
	if len(debtors) != 3 {
		t.Fatalf("got %d debtors, want 3 (settled customer excluded)", len(debtors))
	}

	// Equal balances fall back to customer ID order.
	if debtors[0].Customer.ID != big.ID || debtors[1].Customer.ID != tied.ID {
		t.Errorf("top debtors = %s, %s; want Big then Tied", debtors[0].Customer.Name, debtors[1].Customer.Name)
	}
	if debtors[2].Customer.ID != small.ID {
		t.Errorf("last debtor = %s, want Small", debtors[2].Customer.Name)
	}

	limited, err := svc.ListDebtors(ctx, 2)
	if err != nil {
		t.Fatalf("list debtors limited: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("got %d debtors with limit 2", len(limited))
	}
}

func TestCustomerLedger(t *testing.T) {
	db := newTestDB(t)
	svc := New(db, nil, newTestLogger())
	ctx := context.Background()

	customer := models.Customer{Name: "Hassan"}
	mustCreate(t, db, &customer)

	old := time.Now().Add(-time.Hour)
	mustCreate(t, db, &models.DebtTransaction{
		CustomerID: customer.ID, Date: old,
		Type: models.TransactionDebt, Amount: decimal.NewFromInt(60),
	})
	mustCreate(t, db, &models.DebtTransaction{
		CustomerID: customer.ID, Date: time.Now(),
		Type: models.TransactionPayment, Amount: decimal.NewFromInt(25),
	})

	view, err := svc.CustomerLedger(ctx, customer.ID)
	if err != nil {
		t.Fatalf("customer ledger: %v", err)
	}
	if !view.Balance.Equal(decimal.NewFromInt(35)) {
		t.Errorf("balance = %s, want 35", view.Balance)
	}
	if len(view.Transactions) != 2 {
		t.Fatalf("got %d transactions, want 2", len(view.Transactions))
	}
	if view.Transactions[0].Type != models.TransactionPayment {
		t.Errorf("expected newest transaction first, got %s", view.Transactions[0].Type)
	}

	if _, err := svc.CustomerLedger(ctx, 9999); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing customer: got %v, want not found", err)
	}
}
