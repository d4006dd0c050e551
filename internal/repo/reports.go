package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/sales_reports/internal/models"
	"gorm.io/gorm"
)

type GormRepo struct {
	DB *gorm.DB
}

// LineRevenue returns the shared line-revenue SQL expression for the
// order_details table under the given alias. Every monetary aggregate in
// this package is built from it, mirroring models.OrderDetail.Revenue.
func LineRevenue(alias string) string {
	return alias + ".unit_price * " + alias + ".quantity * (1 - " + alias + ".discount)"
}

type RevenueLine struct {
	OrderDate time.Time `json:"order_date"`
	Revenue   float64   `json:"revenue"`
}

type CustomerSpend struct {
	CustomerID  string  `json:"customer_id"`
	CompanyName string  `json:"company_name"`
	Total       float64 `json:"total"`
}

type CustomerSegment struct {
	CustomerID  string  `json:"customer_id"`
	CompanyName string  `json:"company_name"`
	Total       float64 `json:"total"`
	GroupNo     int     `json:"group_no"`
}

type ProductRevenue struct {
	ProductID   int     `json:"product_id"`
	ProductName string  `json:"product_name"`
	Total       float64 `json:"total"`
}

type ContactSpend struct {
	ContactName string  `json:"contact_name"`
	Total       float64 `json:"total"`
}

type IntegrityCounts struct {
	BadQuantity   int64 `json:"bad_quantity"`
	BadUnitPrice  int64 `json:"bad_unit_price"`
	BadDiscount   int64 `json:"bad_discount"`
	OrphanDetails int64 `json:"orphan_details"`
	OrphanOrders  int64 `json:"orphan_orders"`
}

// PeriodRevenue sums line revenue over orders dated in [from, to).
// The date predicate sits in the join condition so unrelated periods are
// filtered before order details are matched.
func (r *GormRepo) PeriodRevenue(ctx context.Context, from, to time.Time) (float64, error) {
	var total float64
	err := r.DB.WithContext(ctx).
		Model(&models.OrderDetail{}).
		Select("COALESCE(SUM(" + LineRevenue("order_details") + "), 0)").
		Joins("JOIN orders ON orders.id = order_details.order_id AND orders.order_date >= ? AND orders.order_date < ?", from, to).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

// RevenueLines returns one (order date, revenue) row per order detail.
// Month bucketing happens in the service layer so the statement stays
// dialect-neutral between Postgres and the SQLite test database.
func (r *GormRepo) RevenueLines(ctx context.Context) ([]RevenueLine, error) {
	lines := make([]RevenueLine, 0)
	err := r.DB.WithContext(ctx).
		Model(&models.OrderDetail{}).
		Select("orders.order_date AS order_date, " + LineRevenue("order_details") + " AS revenue").
		Joins("JOIN orders ON orders.id = order_details.order_id").
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *GormRepo) CustomerSpend(ctx context.Context) ([]CustomerSpend, error) {
	rows := make([]CustomerSpend, 0)
	err := r.DB.WithContext(ctx).
		Model(&models.OrderDetail{}).
		Select("customers.id AS customer_id, customers.company_name AS company_name, SUM(" + LineRevenue("order_details") + ") AS total").
		Joins("JOIN orders ON orders.id = order_details.order_id").
		Joins("JOIN customers ON customers.id = orders.customer_id").
		Group("customers.id, customers.company_name").
		Order("total DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CustomerSegments ranks customers by total revenue and splits them into 5
// groups with NTILE, group 1 being the top spenders. NTILE hands any size
// remainder to the earliest groups, which is exactly the bucketing the
// marketing reports depend on.
func (r *GormRepo) CustomerSegments(ctx context.Context) ([]CustomerSegment, error) {
	rows := make([]CustomerSegment, 0)
	err := r.DB.WithContext(ctx).Raw(`
		SELECT t.customer_id, t.company_name, t.total,
		       NTILE(5) OVER (ORDER BY t.total DESC) AS group_no
		FROM (
			SELECT c.id AS customer_id, c.company_name AS company_name,
			       SUM(` + LineRevenue("od") + `) AS total
			FROM order_details od
			JOIN orders o ON o.id = od.order_id
			JOIN customers c ON c.id = o.customer_id
			GROUP BY c.id, c.company_name
		) t
		ORDER BY t.total DESC`).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *GormRepo) TopProducts(ctx context.Context, limit int) ([]ProductRevenue, error) {
	rows := make([]ProductRevenue, 0, limit)
	err := r.DB.WithContext(ctx).
		Model(&models.OrderDetail{}).
		Select("products.id AS product_id, products.product_name AS product_name, SUM(" + LineRevenue("order_details") + ") AS total").
		Joins("JOIN products ON products.id = order_details.product_id").
		Group("products.id, products.product_name").
		Order("total DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UKHighValue keeps contact name as the grouping key. Two UK customers
// sharing a contact name merge into one row; that matches the source data
// model and is pinned by a test rather than silently changed.
func (r *GormRepo) UKHighValue(ctx context.Context, threshold float64) ([]ContactSpend, error) {
	expr := LineRevenue("order_details")
	rows := make([]ContactSpend, 0)
	err := r.DB.WithContext(ctx).
		Model(&models.OrderDetail{}).
		Select("customers.contact_name AS contact_name, SUM(" + expr + ") AS total").
		Joins("JOIN orders ON orders.id = order_details.order_id").
		Joins("JOIN customers ON customers.id = orders.customer_id").
		Where("LOWER(customers.country) = ?", "uk").
		Group("customers.contact_name").
		Having("SUM("+expr+") > ?", threshold).
		Order("total DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// IntegrityCounts reports rows violating the base-relation invariants.
// Nothing is repaired or dropped; the counts make bad rows visible.
func (r *GormRepo) IntegrityCounts(ctx context.Context) (*IntegrityCounts, error) {
	db := r.DB.WithContext(ctx)
	out := &IntegrityCounts{}

	if err := db.Model(&models.OrderDetail{}).Where("quantity <= 0").Count(&out.BadQuantity).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.OrderDetail{}).Where("unit_price < 0").Count(&out.BadUnitPrice).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.OrderDetail{}).Where("discount < 0 OR discount >= 1").Count(&out.BadDiscount).Error; err != nil {
		return nil, err
	}
	if err := db.Raw(`
		SELECT COUNT(*)
		FROM order_details od
		LEFT JOIN orders o ON o.id = od.order_id
		LEFT JOIN products p ON p.id = od.product_id
		WHERE o.id IS NULL OR p.id IS NULL`).
		Scan(&out.OrphanDetails).Error; err != nil {
		return nil, err
	}
	if err := db.Raw(`
		SELECT COUNT(*)
		FROM orders o
		LEFT JOIN customers c ON c.id = o.customer_id
		WHERE c.id IS NULL`).
		Scan(&out.OrphanOrders).Error; err != nil {
		return nil, err
	}

	return out, nil
}
