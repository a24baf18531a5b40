package availability

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
)

// Availability texts shown to customers.
const (
	TextInStock    = "В наличии"
	TextFewLeft    = "Осталось %d шт."
	TextOnOrder    = "Под заказ"
	fewLeftCeiling = 10
)

// Provider implements catalog.DynamicDataProvider against the relational
// store: stock balances per warehouse, delivery schedules per route and the
// price table.
type Provider struct {
	db     *gorm.DB
	cfg    *config.AvailabilityConfig
	logger *zap.Logger
	nowFn  func() time.Time
}

// NewProvider creates a new Provider
func NewProvider(db *gorm.DB, cfg *config.AvailabilityConfig, logger *zap.Logger) *Provider {
	return &Provider{db: db, cfg: cfg, logger: logger.Named("availability"), nowFn: time.Now}
}

// Resolve returns dynamic data for up to catalog.MaxDynamicBatch products in
// one city. Products without stock rows are omitted from the result; the
// caller substitutes defaults.
func (p *Provider) Resolve(ctx context.Context, productIDs []int64, cityID int64, userID string) (map[int64]catalog.DynamicData, error) {
	if len(productIDs) == 0 {
		return map[int64]catalog.DynamicData{}, nil
	}
	if len(productIDs) > catalog.MaxDynamicBatch {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code,
			fmt.Sprintf("cannot resolve more than %d products at once", catalog.MaxDynamicBatch))
	}

	warehouses, err := p.activeWarehouses(ctx, cityID)
	if err != nil {
		return nil, err
	}

	stocks, err := p.stockByProduct(ctx, productIDs, warehouses)
	if err != nil {
		return nil, err
	}

	prices, err := p.pricesByProduct(ctx, productIDs, cityID)
	if err != nil {
		return nil, err
	}

	result := make(map[int64]catalog.DynamicData, len(productIDs))
	for _, productID := range productIDs {
		stock, hasStock := stocks[productID]
		price, hasPrice := prices[productID]
		if !hasStock && !hasPrice {
			continue
		}

		data := catalog.DefaultDynamicData(productID)
		if hasPrice {
			data.Price = &price
		}
		if hasStock {
			quantity := 0
			for _, s := range stock {
				quantity += s.available()
			}
			data.Stock = catalog.Stock{Quantity: quantity}
			data.Available = quantity > 0
			data.Delivery = p.delivery(ctx, cityID, stock, quantity)
		}
		result[productID] = data
	}
	return result, nil
}

type warehouseStock struct {
	warehouse models.WarehouseModel
	quantity  int
	reserved  int
}

func (ws warehouseStock) available() int {
	avail := ws.quantity - ws.reserved
	if avail < 0 {
		return 0
	}
	return avail
}

func (p *Provider) activeWarehouses(ctx context.Context, cityID int64) ([]models.WarehouseModel, error) {
	var warehouses []models.WarehouseModel
	err := p.db.WithContext(ctx).
		Joins("JOIN city_warehouses ON city_warehouses.warehouse_id = warehouses.id").
		Where("city_warehouses.city_id = ? AND warehouses.active = ?", cityID, true).
		Order("city_warehouses.priority").
		Find(&warehouses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load warehouses for city %d: %w", cityID, err)
	}
	return warehouses, nil
}

func (p *Provider) stockByProduct(ctx context.Context, productIDs []int64, warehouses []models.WarehouseModel) (map[int64][]warehouseStock, error) {
	if len(warehouses) == 0 {
		return map[int64][]warehouseStock{}, nil
	}
	byID := make(map[int64]models.WarehouseModel, len(warehouses))
	warehouseIDs := make([]int64, 0, len(warehouses))
	for _, w := range warehouses {
		byID[w.ID] = w
		warehouseIDs = append(warehouseIDs, w.ID)
	}

	var balances []models.StockBalanceModel
	err := p.db.WithContext(ctx).
		Where("product_id IN ? AND warehouse_id IN ?", productIDs, warehouseIDs).
		Find(&balances).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load stock balances: %w", err)
	}

	stocks := make(map[int64][]warehouseStock)
	for _, b := range balances {
		stocks[b.ProductID] = append(stocks[b.ProductID], warehouseStock{
			warehouse: byID[b.WarehouseID],
			quantity:  b.Quantity,
			reserved:  b.Reserved,
		})
	}
	return stocks, nil
}

func (p *Provider) pricesByProduct(ctx context.Context, productIDs []int64, cityID int64) (map[int64]catalog.Price, error) {
	var rows []models.PriceModel
	err := p.db.WithContext(ctx).
		Where("product_id IN ? AND city_id IN ?", productIDs, []int64{0, cityID}).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load prices: %w", err)
	}

	now := p.nowFn()
	prices := make(map[int64]catalog.Price)
	for _, row := range rows {
		// city-specific rows win over the city-wide row
		if _, ok := prices[row.ProductID]; ok && row.CityID == 0 {
			continue
		}
		price := catalog.Price{Base: row.Base, Final: row.Base}
		if row.Special != nil && (row.SpecialUntil == nil || row.SpecialUntil.After(now)) {
			if row.Special.LessThan(row.Base) {
				price.Final = *row.Special
				price.HasSpecial = true
			}
		}
		prices[row.ProductID] = price
	}
	return prices, nil
}

// delivery computes the nearest delivery date across the warehouses that
// hold stock. Warehouses without schedules fall back to their base delivery
// days, or the configured default.
func (p *Provider) delivery(ctx context.Context, cityID int64, stock []warehouseStock, quantity int) catalog.Delivery {
	if quantity <= 0 {
		return catalog.Delivery{Text: TextOnOrder}
	}

	var best *time.Time
	for _, ws := range stock {
		if ws.available() == 0 {
			continue
		}
		date := p.nearestDeliveryDate(ctx, ws.warehouse, cityID)
		if best == nil || date.Before(*best) {
			d := date
			best = &d
		}
	}
	if best == nil {
		return catalog.Delivery{Text: TextOnOrder}
	}

	text := TextInStock
	if quantity <= fewLeftCeiling {
		text = fmt.Sprintf(TextFewLeft, quantity)
	}
	return catalog.Delivery{
		Date: best.Format("2006-01-02"),
		Text: text,
	}
}

func (p *Provider) nearestDeliveryDate(ctx context.Context, warehouse models.WarehouseModel, cityID int64) time.Time {
	var schedules []models.DeliveryScheduleModel
	err := p.db.WithContext(ctx).
		Where("warehouse_id = ? AND city_id = ? AND active = ?", warehouse.ID, cityID, true).
		Find(&schedules).Error
	if err != nil {
		p.logger.Warn("failed to load delivery schedules",
			zap.Int64("warehouse_id", warehouse.ID),
			zap.Int64("city_id", cityID),
			zap.Error(err),
		)
		schedules = nil
	}

	now := p.nowFn()
	if len(schedules) == 0 {
		return p.baseDate(warehouse, now)
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var best *time.Time
	for offset := 0; offset < p.cfg.ScanDays; offset++ {
		day := today.AddDate(0, 0, offset)
		for _, sched := range schedules {
			if !scheduleMatchesDay(sched, day) {
				continue
			}
			// same-day shipment only before the cutoff
			if offset == 0 && !beforeCutoff(now, sched.CutoffTime) {
				continue
			}
			arrival := day.AddDate(0, 0, sched.TransitDays)
			if best == nil || arrival.Before(*best) {
				a := arrival
				best = &a
			}
		}
		if best != nil {
			break
		}
	}
	if best == nil {
		return p.baseDate(warehouse, now)
	}
	return *best
}

func (p *Provider) baseDate(warehouse models.WarehouseModel, now time.Time) time.Time {
	days := warehouse.BaseDeliveryDays
	if days <= 0 {
		days = p.cfg.BaseDeliveryDays
	}
	return now.AddDate(0, 0, days)
}

func scheduleMatchesDay(sched models.DeliveryScheduleModel, day time.Time) bool {
	if sched.SpecificDate != nil {
		sd := *sched.SpecificDate
		return sd.Year() == day.Year() && sd.YearDay() == day.YearDay()
	}
	if sched.Weekday != nil {
		return int(day.Weekday()) == *sched.Weekday
	}
	return false
}

func beforeCutoff(now time.Time, cutoff string) bool {
	var hour, minute int
	if _, err := fmt.Sscanf(cutoff, "%d:%d", &hour, &minute); err != nil {
		return true
	}
	cutoffAt := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	return now.Before(cutoffAt)
}
