package inventory

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"gorm.io/gorm"

	"eggstore-system/internal/apperr"
	"eggstore-system/internal/database/models"
	"eggstore-system/internal/services/ledger"
)

type CustomerInput struct {
	Name  string
	Phone string
	Notes string
}

func (s *Service) CreateCustomer(ctx context.Context, in CustomerInput) (*models.Customer, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validation("customer name is required")
	}

	customer := models.Customer{
		Name:  strings.TrimSpace(in.Name),
		Phone: in.Phone,
		Notes: in.Notes,
	}
	if err := s.db.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (s *Service) UpdateCustomer(ctx context.Context, id uint, in CustomerInput) (*models.Customer, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validation("customer name is required")
	}

	var customer models.Customer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&customer, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("customer", id)
			}
			return err
		}
		customer.Name = strings.TrimSpace(in.Name)
		customer.Phone = in.Phone
		customer.Notes = in.Notes
		return tx.Save(&customer).Error
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (s *Service) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	if err := s.db.WithContext(ctx).Order("name").Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// DeleteCustomer refuses while the derived balance is positive. On success
// the customer's ledger rows go with them and their sales are kept but
// detached, so historical totals survive.
func (s *Service) DeleteCustomer(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		if err := tx.First(&customer, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("customer", id)
			}
			return err
		}

		var txns []models.DebtTransaction
		if err := tx.Where("customer_id = ?", id).Find(&txns).Error; err != nil {
			return err
		}
		if balance := ledger.BalanceOf(txns); balance.IsPositive() {
			return apperr.Constraint("customer %q still owes %s", customer.Name, balance.StringFixed(2))
		}

		if err := tx.Where("customer_id = ?", id).Delete(&models.DebtTransaction{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Sale{}).
			Where("customer_id = ?", id).
			Update("customer_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&customer).Error
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
}
