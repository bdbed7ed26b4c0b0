// Package ledger implements the customer debt ledger. Balances are never
// stored: every read folds over the append-only transaction log.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"eggstore-system/internal/apperr"
	"eggstore-system/internal/database/models"
)

const dashboardCacheKey = "reports:dashboard"

type Service struct {
	db  *gorm.DB
	rdb *redis.Client
	log *logrus.Logger
}

func New(db *gorm.DB, rdb *redis.Client, log *logrus.Logger) *Service {
	return &Service{db: db, rdb: rdb, log: log}
}

// Balance returns sum(debt) - sum(payment) over the customer's transactions,
// recomputed from current rows on every call.
func (s *Service) Balance(ctx context.Context, customerID uint) (decimal.Decimal, error) {
	var txns []models.DebtTransaction
	if err := s.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Find(&txns).Error; err != nil {
		return decimal.Zero, err
	}
	return BalanceOf(txns), nil
}

// BalanceOf folds a transaction slice into an outstanding balance.
func BalanceOf(txns []models.DebtTransaction) decimal.Decimal {
	balance := decimal.Zero
	for _, t := range txns {
		switch t.Type {
		case models.TransactionDebt:
			balance = balance.Add(t.Amount)
		case models.TransactionPayment:
			balance = balance.Sub(t.Amount)
		}
	}
	return balance
}

type RecordInput struct {
	CustomerID  uint
	SaleID      *uint
	Type        string
	Amount      decimal.Decimal
	Description string
}

func (s *Service) RecordTransaction(ctx context.Context, in RecordInput) (*models.DebtTransaction, error) {
	if in.Type != models.TransactionDebt && in.Type != models.TransactionPayment {
		return nil, apperr.Validation("unknown transaction type %q", in.Type)
	}
	if !in.Amount.IsPositive() {
		return nil, apperr.Validation("amount must be greater than zero")
	}

	txn := models.DebtTransaction{
		CustomerID:  in.CustomerID,
		SaleID:      in.SaleID,
		Date:        time.Now(),
		Type:        in.Type,
		Amount:      in.Amount,
		Description: in.Description,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		if err := tx.First(&customer, in.CustomerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("customer", in.CustomerID)
			}
			return err
		}
		return tx.Create(&txn).Error
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}

	s.invalidateDashboard(ctx)
	return &txn, nil
}

type Debtor struct {
	Customer models.Customer `json:"customer"`
	Balance  decimal.Decimal `json:"balance"`
}

// ListDebtors groups the whole ledger by customer and returns everyone with a
// positive balance, highest first. Equal balances are ordered by customer ID
// so the listing is stable. A limit of 0 means no limit.
func (s *Service) ListDebtors(ctx context.Context, limit int) ([]Debtor, error) {
	var txns []models.DebtTransaction
	if err := s.db.WithContext(ctx).Find(&txns).Error; err != nil {
		return nil, err
	}

	byCustomer := make(map[uint][]models.DebtTransaction)
	for _, t := range txns {
		byCustomer[t.CustomerID] = append(byCustomer[t.CustomerID], t)
	}

	ids := make([]uint, 0, len(byCustomer))
	for id := range byCustomer {
		if BalanceOf(byCustomer[id]).IsPositive() {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return []Debtor{}, nil
	}

	var customers []models.Customer
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&customers).Error; err != nil {
		return nil, err
	}

	debtors := make([]Debtor, 0, len(customers))
	for _, c := range customers {
		debtors = append(debtors, Debtor{Customer: c, Balance: BalanceOf(byCustomer[c.ID])})
	}
	sort.Slice(debtors, func(i, j int) bool {
		if !debtors[i].Balance.Equal(debtors[j].Balance) {
			return debtors[i].Balance.GreaterThan(debtors[j].Balance)
		}
		return debtors[i].Customer.ID < debtors[j].Customer.ID
	})

	if limit > 0 && len(debtors) > limit {
		debtors = debtors[:limit]
	}
	return debtors, nil
}

type LedgerView struct {
	Customer     models.Customer          `json:"customer"`
	Balance      decimal.Decimal          `json:"balance"`
	Transactions []models.DebtTransaction `json:"transactions"`
}

// CustomerLedger returns a customer's transactions newest-first together with
// the derived balance.
func (s *Service) CustomerLedger(ctx context.Context, customerID uint) (*LedgerView, error) {
	var customer models.Customer
	if err := s.db.WithContext(ctx).First(&customer, customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("customer", customerID)
		}
		return nil, err
	}

	var txns []models.DebtTransaction
	if err := s.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("date DESC, id DESC").
		Find(&txns).Error; err != nil {
		return nil, err
	}

	return &LedgerView{
		Customer:     customer,
		Balance:      BalanceOf(txns),
		Transactions: txns,
	}, nil
}

func (s *Service) invalidateDashboard(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, dashboardCacheKey).Err(); err != nil {
		s.log.WithFields(logrus.Fields{"key": dashboardCacheKey}).Warnf("cache invalidation failed: %v", err)
	}
}
