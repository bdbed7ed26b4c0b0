// Package reports holds the read-only aggregations behind the dashboard and
// the spreadsheet exports. Reports are advisory: they read committed rows and
// never feed back into settlement.
package reports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"eggstore-system/internal/database/models"
	"eggstore-system/internal/services/ledger"
)

const (
	dashboardCacheKey = "reports:dashboard"
	dashboardCacheTTL = time.Minute
)

type Service struct {
	db       *gorm.DB
	rdb      *redis.Client
	ledger   *ledger.Service
	log      *logrus.Logger
	lowStock int
}

func New(db *gorm.DB, rdb *redis.Client, ledgerSvc *ledger.Service, log *logrus.Logger, lowStockThreshold int) *Service {
	return &Service{db: db, rdb: rdb, ledger: ledgerSvc, log: log, lowStock: lowStockThreshold}
}

type SaleItemRow struct {
	Date        time.Time       `json:"date"`
	Customer    string          `json:"customer"`
	Product     string          `json:"product"`
	Qty         int             `json:"qty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	PaymentType string          `json:"payment_type"`
}

type DamagedRow struct {
	Date     time.Time `json:"date"`
	Product  string    `json:"product"`
	Quantity int       `json:"quantity"`
	Notes    string    `json:"notes"`
}

type Dashboard struct {
	TotalSalesToday  decimal.Decimal  `json:"total_sales_today"`
	CashSalesToday   decimal.Decimal  `json:"cash_sales_today"`
	CreditSalesToday decimal.Decimal  `json:"credit_sales_today"`
	ProfitToday      decimal.Decimal  `json:"profit_today"`
	TotalUnpaidDebt  decimal.Decimal  `json:"total_unpaid_debt"`
	LowStockCount    int              `json:"low_stock_count"`
	DamagedToday     int64            `json:"damaged_today"`
	TopDebtors       []ledger.Debtor  `json:"top_debtors"`
	LowStockProducts []models.Product `json:"low_stock_products"`
	TodayItems       []SaleItemRow    `json:"today_items"`
}

// Dashboard serves the admin landing page. The result is cached briefly in
// redis; every settlement, write-off and ledger mutation drops the cache.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, dashboardCacheKey).Result(); err == nil {
			var cached Dashboard
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return &cached, nil
			}
		}
	}

	dash, err := s.computeDashboard(ctx)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if raw, err := json.Marshal(dash); err == nil {
			if err := s.rdb.Set(ctx, dashboardCacheKey, raw, dashboardCacheTTL).Err(); err != nil {
				s.log.Warnf("dashboard cache write failed: %v", err)
			}
		}
	}
	return dash, nil
}

func (s *Service) computeDashboard(ctx context.Context) (*Dashboard, error) {
	from, to := dayRange(time.Now())

	var sales []models.Sale
	if err := s.db.WithContext(ctx).
		Preload("Items").
		Where("sale_date >= ? AND sale_date < ?", from, to).
		Find(&sales).Error; err != nil {
		return nil, err
	}

	dash := Dashboard{
		TotalSalesToday:  decimal.Zero,
		CashSalesToday:   decimal.Zero,
		CreditSalesToday: decimal.Zero,
		ProfitToday:      decimal.Zero,
	}
	for _, sale := range sales {
		dash.TotalSalesToday = dash.TotalSalesToday.Add(sale.Total)
		switch sale.PaymentType {
		case models.PaymentCash:
			dash.CashSalesToday = dash.CashSalesToday.Add(sale.Total)
		case models.PaymentCredit:
			dash.CreditSalesToday = dash.CreditSalesToday.Add(sale.Total)
		}
		for _, item := range sale.Items {
			margin := item.UnitPrice.Sub(item.CostPrice).Mul(decimal.NewFromInt(int64(item.Qty)))
			dash.ProfitToday = dash.ProfitToday.Add(margin)
		}
	}

	var txns []models.DebtTransaction
	if err := s.db.WithContext(ctx).Find(&txns).Error; err != nil {
		return nil, err
	}
	dash.TotalUnpaidDebt = ledger.BalanceOf(txns)

	lowStock, err := s.LowStock(ctx)
	if err != nil {
		return nil, err
	}
	dash.LowStockProducts = lowStock
	dash.LowStockCount = len(lowStock)

	if err := s.db.WithContext(ctx).Model(&models.DamagedProduct{}).
		Where("date >= ? AND date < ?", from, to).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&dash.DamagedToday).Error; err != nil {
		return nil, err
	}

	dash.TopDebtors, err = s.ledger.ListDebtors(ctx, 5)
	if err != nil {
		return nil, err
	}

	dash.TodayItems, _, err = s.saleItemsBetween(ctx, from, to, "sale_date DESC")
	if err != nil {
		return nil, err
	}

	return &dash, nil
}

func (s *Service) LowStock(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).
		Where("stock <= ?", s.lowStock).
		Order("stock").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// TodaySaleItems lists today's sold line items, newest first, with the grand
// total.
func (s *Service) TodaySaleItems(ctx context.Context) ([]SaleItemRow, decimal.Decimal, error) {
	from, to := dayRange(time.Now())
	return s.saleItemsBetween(ctx, from, to, "sale_date DESC")
}

// SaleItemsByRange lists sold line items over an inclusive date range, oldest
// first, with the grand total.
func (s *Service) SaleItemsByRange(ctx context.Context, from, to time.Time) ([]SaleItemRow, decimal.Decimal, error) {
	start, _ := dayRange(from)
	_, end := dayRange(to)
	return s.saleItemsBetween(ctx, start, end, "sale_date ASC")
}

func (s *Service) saleItemsBetween(ctx context.Context, from, to time.Time, order string) ([]SaleItemRow, decimal.Decimal, error) {
	var sales []models.Sale
	if err := s.db.WithContext(ctx).
		Preload("Items.Product").
		Preload("Customer").
		Where("sale_date >= ? AND sale_date < ?", from, to).
		Order(order).
		Find(&sales).Error; err != nil {
		return nil, decimal.Zero, err
	}

	rows := []SaleItemRow{}
	total := decimal.Zero
	for _, sale := range sales {
		customer := "Walk-in"
		if sale.Customer != nil {
			customer = sale.Customer.Name
		}
		for _, item := range sale.Items {
			product := ""
			if item.Product != nil {
				product = item.Product.Name
			}
			lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Qty)))
			rows = append(rows, SaleItemRow{
				Date:        sale.SaleDate,
				Customer:    customer,
				Product:     product,
				Qty:         item.Qty,
				UnitPrice:   item.UnitPrice,
				LineTotal:   lineTotal,
				PaymentType: sale.PaymentType,
			})
			total = total.Add(lineTotal)
		}
	}
	return rows, total, nil
}

// Debtors returns the full debtor list with the outstanding grand total.
func (s *Service) Debtors(ctx context.Context) ([]ledger.Debtor, decimal.Decimal, error) {
	debtors, err := s.ledger.ListDebtors(ctx, 0)
	if err != nil {
		return nil, decimal.Zero, err
	}
	total := decimal.Zero
	for _, d := range debtors {
		total = total.Add(d.Balance)
	}
	return debtors, total, nil
}

// DamagedByRange lists write-offs over an inclusive date range, oldest first,
// with the total damaged quantity.
func (s *Service) DamagedByRange(ctx context.Context, from, to time.Time) ([]DamagedRow, int64, error) {
	start, _ := dayRange(from)
	_, end := dayRange(to)

	var records []models.DamagedProduct
	if err := s.db.WithContext(ctx).
		Preload("Product").
		Where("date >= ? AND date < ?", start, end).
		Order("date ASC").
		Find(&records).Error; err != nil {
		return nil, 0, err
	}

	rows := []DamagedRow{}
	var total int64
	for _, r := range records {
		product := ""
		if r.Product != nil {
			product = r.Product.Name
		}
		rows = append(rows, DamagedRow{
			Date:     r.Date,
			Product:  product,
			Quantity: r.Quantity,
			Notes:    r.Notes,
		})
		total += int64(r.Quantity)
	}
	return rows, total, nil
}

func dayRange(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
