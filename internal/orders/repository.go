package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/oakmarket/storefront-backend/pkg/db/models"
	"github.com/oakmarket/storefront-backend/pkg/enums"
	"github.com/oakmarket/storefront-backend/pkg/pagination"
)

// SummaryRow is one order joined with the buyer's display name.
type SummaryRow struct {
	ID            uuid.UUID         `gorm:"column:id"`
	UserID        uuid.UUID         `gorm:"column:user_id"`
	UserFirstName string            `gorm:"column:user_first_name"`
	UserLastName  string            `gorm:"column:user_last_name"`
	TotalAmount   decimal.Decimal   `gorm:"column:total_amount"`
	Status        enums.OrderStatus `gorm:"column:status"`
	DeliveryDate  *time.Time        `gorm:"column:delivery_date"`
	CreatedAt     time.Time         `gorm:"column:created_at"`
}

// ItemRow is one order line joined with the product's current display name.
// UnitPrice stays the historical snapshot.
type ItemRow struct {
	ProductID   uuid.UUID       `gorm:"column:product_id"`
	ProductName string          `gorm:"column:product_name"`
	Quantity    int             `gorm:"column:quantity"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price"`
}

// ListResult is a page of orders plus the cursor for the next page.
type ListResult struct {
	Orders     []SummaryRow
	NextCursor string
}

// Repository wires together order persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// List returns orders newest first with cursor pagination. A nil userID
// returns every user's orders.
func (r *Repository) List(ctx context.Context, userID *uuid.UUID, params pagination.Params) (*ListResult, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Table("orders").
		Select("orders.id, orders.user_id, users.first_name AS user_first_name, users.last_name AS user_last_name, orders.total_amount, orders.status, orders.delivery_date, orders.created_at").
		Joins("JOIN users ON users.id = orders.user_id").
		Order("orders.created_at DESC, orders.id DESC").
		Limit(limit + 1)

	if userID != nil {
		query = query.Where("orders.user_id = ?", *userID)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"orders.created_at < ? OR (orders.created_at = ? AND orders.id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []SummaryRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	result := &ListResult{Orders: rows}
	if len(rows) > limit {
		result.Orders = rows[:limit]
		last := result.Orders[limit-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return result, nil
}

// FindByID loads the order row.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// ListItems returns the order's lines joined with current product names.
func (r *Repository) ListItems(ctx context.Context, orderID uuid.UUID) ([]ItemRow, error) {
	var rows []ItemRow
	if err := r.db.WithContext(ctx).
		Table("order_items").
		Select("order_items.product_id, products.name AS product_name, order_items.quantity, order_items.unit_price").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("order_items.order_id = ?", orderID).
		Order("order_items.created_at ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateStatus overwrites the order status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// UpdateDeliveryDate overwrites the delivery date, including to null.
func (r *Repository) UpdateDeliveryDate(ctx context.Context, id uuid.UUID, date *time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("delivery_date", date).Error
}
