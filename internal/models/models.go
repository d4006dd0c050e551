package models

import (
	"time"
)

// The four base relations are owned by the external database; this service
// only reads them. AutoMigrate is used by the test harness to shape an
// in-memory database, never against the production store.

type Customer struct {
	ID          string `gorm:"primaryKey;size:5"  json:"id"`
	CompanyName string `gorm:"not null"           json:"company_name"`
	ContactName string `json:"contact_name"`
	Country     string `json:"country"`
}

type Product struct {
	ID          int    `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductName string `gorm:"not null"                 json:"product_name"`
}

type Order struct {
	ID         int       `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID string    `gorm:"size:5;index;not null"    json:"customer_id"`
	OrderDate  time.Time `gorm:"index;not null"           json:"order_date"`
}

type OrderDetail struct {
	OrderID   int     `gorm:"primaryKey"         json:"order_id"`
	ProductID int     `gorm:"primaryKey"         json:"product_id"`
	UnitPrice float64 `gorm:"not null"           json:"unit_price"`
	Quantity  int     `gorm:"not null"           json:"quantity"`
	Discount  float64 `gorm:"not null;default:0" json:"discount"`
}

// Revenue is the single derived-value formula every report is built from.
// The SQL side of the same formula lives in repo.LineRevenue; tests assert
// the two agree.
func (d OrderDetail) Revenue() float64 {
	return d.UnitPrice * float64(d.Quantity) * (1 - d.Discount)
}
