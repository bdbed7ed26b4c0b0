// Package sales implements sale settlement: stock decrement, cost snapshot,
// payment classification and the ledger hand-off for unpaid remainders.
package sales

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"eggstore-system/internal/apperr"
	"eggstore-system/internal/database/models"
	"eggstore-system/internal/services/ledger"
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

type Line struct {
	ProductID uint
	Qty       int
	UnitPrice decimal.Decimal
}

type SettleInput struct {
	CustomerID *uint
	PaidAmount decimal.Decimal
	Notes      string
	Lines      []Line
}

// Settle finalizes a sale as one serializable transaction. Lines with a zero
// product ID or non-positive quantity are skipped, mirroring blank rows on
// the entry form. Any insufficient stock aborts the whole sale. The computed
// payment classification overrides whatever the client suggested.
func (s *Service) Settle(ctx context.Context, in SettleInput) (*models.Sale, error) {
	var sale models.Sale

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.CustomerID != nil {
			var customer models.Customer
			if err := tx.First(&customer, *in.CustomerID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFound("customer", *in.CustomerID)
				}
				return err
			}
		}

		total := decimal.Zero
		var items []models.SaleItem
		for _, line := range in.Lines {
			if line.ProductID == 0 || line.Qty <= 0 {
				continue
			}

			var product models.Product
			if err := tx.First(&product, line.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFound("product", line.ProductID)
				}
				return err
			}
			if product.Stock < line.Qty {
				return apperr.InsufficientStock(product.Name, product.Stock, line.Qty)
			}

			if err := tx.Model(&models.Product{}).
				Where("id = ?", product.ID).
				Update("stock", gorm.Expr("stock - ?", line.Qty)).Error; err != nil {
				return err
			}

			items = append(items, models.SaleItem{
				ProductID: product.ID,
				Qty:       line.Qty,
				UnitPrice: line.UnitPrice,
				CostPrice: product.PriceWholesale,
			})
			total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Qty))))
		}
		if len(items) == 0 {
			return apperr.Validation("sale requires at least one line with a product and a positive quantity")
		}

		paid := in.PaidAmount
		due := total.Sub(paid)
		paymentType := models.PaymentCredit
		switch {
		case paid.GreaterThanOrEqual(total):
			paymentType = models.PaymentCash
			paid = total
			due = decimal.Zero
		case paid.IsPositive():
			paymentType = models.PaymentPartial
		}

		sale = models.Sale{
			CustomerID:  in.CustomerID,
			SaleDate:    time.Now(),
			Total:       total,
			PaidAmount:  paid,
			DueAmount:   due,
			PaymentType: paymentType,
			Notes:       in.Notes,
			Items:       items,
		}
		if err := tx.Create(&sale).Error; err != nil {
			return err
		}

		if due.IsPositive() && in.CustomerID != nil {
			entry := models.DebtTransaction{
				CustomerID:  *in.CustomerID,
				SaleID:      &sale.ID,
				Date:        time.Now(),
				Type:        models.TransactionDebt,
				Amount:      due,
				Description: fmt.Sprintf("Debt from invoice #%d", sale.ID),
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		}
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}

	s.invalidateDashboard(ctx)
	return &sale, nil
}

// FastSell is the seller workflow: one product, quantity only, charged at the
// retail price and treated as paid in full. No customer, no ledger entry.
func (s *Service) FastSell(ctx context.Context, productID uint, qty int) (*models.Sale, error) {
	if qty <= 0 {
		return nil, apperr.Validation("quantity must be greater than zero")
	}

	var sale models.Sale
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("product", productID)
			}
			return err
		}
		if product.Stock < qty {
			return apperr.InsufficientStock(product.Name, product.Stock, qty)
		}

		if err := tx.Model(&models.Product{}).
			Where("id = ?", product.ID).
			Update("stock", gorm.Expr("stock - ?", qty)).Error; err != nil {
			return err
		}

		total := product.PriceRetail.Mul(decimal.NewFromInt(int64(qty)))
		sale = models.Sale{
			SaleDate:    time.Now(),
			Total:       total,
			PaidAmount:  total,
			DueAmount:   decimal.Zero,
			PaymentType: models.PaymentCash,
			Notes:       "Fast sale",
			Items: []models.SaleItem{{
				ProductID: product.ID,
				Qty:       qty,
				UnitPrice: product.PriceRetail,
				CostPrice: product.PriceWholesale,
			}},
		}
		return tx.Create(&sale).Error
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}

	s.invalidateDashboard(ctx)
	return &sale, nil
}

type SaleView struct {
	Sale models.Sale `json:"sale"`
	// PreviousDebt is the customer's balance before this sale, shown on the
	// printed invoice. Zero for walk-in sales.
	PreviousDebt decimal.Decimal `json:"previous_debt"`
}

func (s *Service) Get(ctx context.Context, saleID uint) (*SaleView, error) {
	var sale models.Sale
	err := s.db.WithContext(ctx).
		Preload("Items.Product").
		Preload("Customer").
		First(&sale, saleID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("sale", saleID)
		}
		return nil, err
	}

	view := SaleView{Sale: sale, PreviousDebt: decimal.Zero}
	if sale.CustomerID != nil {
		var txns []models.DebtTransaction
		if err := s.db.WithContext(ctx).
			Where("customer_id = ?", *sale.CustomerID).
			Find(&txns).Error; err != nil {
			return nil, err
		}
		view.PreviousDebt = ledger.BalanceOf(txns).Sub(sale.DueAmount)
	}
	return &view, nil
}

func (s *Service) invalidateDashboard(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, dashboardCacheKey).Err(); err != nil {
		s.log.WithFields(logrus.Fields{"key": dashboardCacheKey}).Warnf("cache invalidation failed: %v", err)
	}
}
