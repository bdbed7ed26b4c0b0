// Package inventory owns products and customers: CRUD, damaged-stock
// write-offs and the tray-unpack operation.
package inventory

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"eggstore-system/config"
	"eggstore-system/internal/apperr"
	"eggstore-system/internal/database/models"
)

const dashboardCacheKey = "reports:dashboard"

type Service struct {
	db  *gorm.DB
	rdb *redis.Client
	log *logrus.Logger
	cfg config.StoreConfig
}

func New(db *gorm.DB, rdb *redis.Client, log *logrus.Logger, cfg config.StoreConfig) *Service {
	return &Service{db: db, rdb: rdb, log: log, cfg: cfg}
}

type ProductInput struct {
	Name           string
	Stock          int
	PriceWholesale decimal.Decimal
	PriceRetail    decimal.Decimal
	Notes          string
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validation("product name is required")
	}
	if in.Stock < 0 {
		return nil, apperr.Validation("stock cannot be negative")
	}

	product := models.Product{
		Name:           strings.TrimSpace(in.Name),
		Stock:          in.Stock,
		PriceWholesale: in.PriceWholesale,
		PriceRetail:    in.PriceRetail,
		Notes:          in.Notes,
	}
	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateProduct overwrites descriptive fields and prices. Stock may be
// corrected here too (the edit form exposes it), but sales never go through
// this path.
func (s *Service) UpdateProduct(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validation("product name is required")
	}
	if in.Stock < 0 {
		return nil, apperr.Validation("stock cannot be negative")
	}

	var product models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("product", id)
			}
			return err
		}
		product.Name = strings.TrimSpace(in.Name)
		product.Stock = in.Stock
		product.PriceWholesale = in.PriceWholesale
		product.PriceRetail = in.PriceRetail
		product.Notes = in.Notes
		return tx.Save(&product).Error
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("product", id)
	}
	return nil
}

func (s *Service) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).Order("name").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ListInventory orders by stock ascending so the emptiest shelves lead.
func (s *Service) ListInventory(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).Order("stock ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// WriteOff atomically decrements stock and appends an immutable damaged
// record. It is a pure loss log: no ledger entry, no sale totals.
func (s *Service) WriteOff(ctx context.Context, productID uint, quantity int, notes string) (*models.DamagedProduct, error) {
	if quantity <= 0 {
		return nil, apperr.Validation("quantity must be greater than zero")
	}

	var record models.DamagedProduct
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("product", productID)
			}
			return err
		}
		if product.Stock < quantity {
			return apperr.InsufficientStock(product.Name, product.Stock, quantity)
		}

		if err := tx.Model(&models.Product{}).
			Where("id = ?", product.ID).
			Update("stock", gorm.Expr("stock - ?", quantity)).Error; err != nil {
			return err
		}

		record = models.DamagedProduct{
			ProductID: product.ID,
			Quantity:  quantity,
			Date:      time.Now(),
			Notes:     notes,
		}
		return tx.Create(&record).Error
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}

	s.invalidateDashboard(ctx)
	return &record, nil
}

type UnpackResult struct {
	Source        models.Product `json:"source"`
	Target        models.Product `json:"target"`
	UnpackedQty   int            `json:"unpacked_qty"`
	TargetCreated bool           `json:"target_created"`
}

// Unpack converts packaged stock into loose-piece stock at a fixed
// multiplier. The target product is matched by name: the configured marker
// token stripped from the source name, or the configured base name when the
// source carries no marker. An existing target keeps its stock but takes the
// supplied prices; a missing one is created empty.
func (s *Service) Unpack(ctx context.Context, sourceID uint, quantity, piecesPerUnit int, wholesale, retail decimal.Decimal) (*UnpackResult, error) {
	if quantity <= 0 {
		return nil, apperr.Validation("quantity must be greater than zero")
	}
	if piecesPerUnit <= 0 {
		return nil, apperr.Validation("pieces per unit must be greater than zero")
	}

	var result UnpackResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var source models.Product
		if err := tx.First(&source, sourceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("product", sourceID)
			}
			return err
		}
		if source.Stock < quantity {
			return apperr.InsufficientStock(source.Name, source.Stock, quantity)
		}

		targetName := s.targetNameFor(source.Name)
		if targetName == source.Name {
			return apperr.Constraint("product %q would unpack onto itself", source.Name)
		}

		var target models.Product
		err := tx.Where("name = ?", targetName).First(&target).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			target = models.Product{
				Name:           targetName,
				Stock:          0,
				PriceWholesale: wholesale,
				PriceRetail:    retail,
				Notes:          "Created automatically by an unpack operation",
			}
			if err := tx.Create(&target).Error; err != nil {
				return err
			}
			result.TargetCreated = true
		case err != nil:
			return err
		default:
			target.PriceWholesale = wholesale
			target.PriceRetail = retail
			if err := tx.Save(&target).Error; err != nil {
				return err
			}
		}

		unpacked := quantity * piecesPerUnit
		if err := tx.Model(&models.Product{}).
			Where("id = ?", source.ID).
			Update("stock", gorm.Expr("stock - ?", quantity)).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Product{}).
			Where("id = ?", target.ID).
			Update("stock", gorm.Expr("stock + ?", unpacked)).Error; err != nil {
			return err
		}

		if err := tx.First(&source, source.ID).Error; err != nil {
			return err
		}
		if err := tx.First(&target, target.ID).Error; err != nil {
			return err
		}
		result.Source = source
		result.Target = target
		result.UnpackedQty = unpacked
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"source":   result.Source.Name,
		"target":   result.Target.Name,
		"quantity": quantity,
		"unpacked": result.UnpackedQty,
	}).Info("unpacked product stock")

	return &result, nil
}

func (s *Service) targetNameFor(sourceName string) string {
	if s.cfg.UnpackMarker != "" && strings.Contains(sourceName, s.cfg.UnpackMarker) {
		return strings.TrimSpace(strings.ReplaceAll(sourceName, s.cfg.UnpackMarker, ""))
	}
	return s.cfg.UnpackBaseName
}

func (s *Service) invalidateDashboard(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, dashboardCacheKey).Err(); err != nil {
		s.log.WithFields(logrus.Fields{"key": dashboardCacheKey}).Warnf("cache invalidation failed: %v", err)
	}
}
