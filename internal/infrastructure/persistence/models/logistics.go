package models

import "time"

// CityModel is a deliverable city.
type CityModel struct {
	ID     int64  `gorm:"primaryKey"`
	Name   string `gorm:"type:varchar(200);not null"`
	Active bool   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CityModel) TableName() string {
	return "cities"
}

// WarehouseModel is a stock-keeping location.
type WarehouseModel struct {
	ID               int64  `gorm:"primaryKey"`
	Name             string `gorm:"type:varchar(200);not null"`
	Active           bool   `gorm:"not null"`
	BaseDeliveryDays int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (WarehouseModel) TableName() string {
	return "warehouses"
}

// CityWarehouseModel links cities to the warehouses that serve them.
type CityWarehouseModel struct {
	CityID      int64 `gorm:"primaryKey"`
	WarehouseID int64 `gorm:"primaryKey"`
	Priority    int   `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (CityWarehouseModel) TableName() string {
	return "city_warehouses"
}

// StockBalanceModel is the on-hand balance of one product in one warehouse.
// Available quantity is Quantity minus Reserved.
type StockBalanceModel struct {
	WarehouseID int64     `gorm:"primaryKey"`
	ProductID   int64     `gorm:"primaryKey"`
	Quantity    int       `gorm:"not null;default:0"`
	Reserved    int       `gorm:"not null;default:0"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockBalanceModel) TableName() string {
	return "stock_balances"
}

// DeliveryScheduleModel is one shipping slot of a warehouse to a city.
// Either Weekday (0=Sunday..6=Saturday) for weekly slots or SpecificDate
// for one-off slots is set, never both.
type DeliveryScheduleModel struct {
	ID           int64      `gorm:"primaryKey;autoIncrement"`
	WarehouseID  int64      `gorm:"not null;index:idx_schedule_route"`
	CityID       int64      `gorm:"not null;index:idx_schedule_route"`
	Weekday      *int       `gorm:"check:weekday >= 0 AND weekday <= 6"`
	SpecificDate *time.Time `gorm:"type:date"`
	CutoffTime   string     `gorm:"type:varchar(5);not null;default:'14:00'"` // HH:MM local
	TransitDays  int        `gorm:"not null;default:1"`
	Active       bool       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DeliveryScheduleModel) TableName() string {
	return "delivery_schedules"
}
