package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oakmarket/storefront-backend/internal/images"
	"github.com/oakmarket/storefront-backend/pkg/db/models"
)

// OrderSummaryDTO is one row of an order listing.
type OrderSummaryDTO struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	UserName     string          `json:"user_name"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Status       string          `json:"status"`
	DeliveryDate *time.Time      `json:"delivery_date,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// OrderItemDTO is one order line. ProductName and Image reflect the product's
// current state while UnitPrice is the checkout-time snapshot.
type OrderItemDTO struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Image       string          `json:"image"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// OrderDTO is the full order payload.
type OrderDTO struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Status       string          `json:"status"`
	DeliveryDate *time.Time      `json:"delivery_date,omitempty"`
	Items        []OrderItemDTO  `json:"items"`
	CreatedAt    time.Time       `json:"created_at"`
}

// OrderListDTO is a page of order summaries.
type OrderListDTO struct {
	Orders     []OrderSummaryDTO `json:"orders"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

func newOrderListDTO(result *ListResult) *OrderListDTO {
	dto := &OrderListDTO{
		Orders:     make([]OrderSummaryDTO, 0, len(result.Orders)),
		NextCursor: result.NextCursor,
	}
	for _, row := range result.Orders {
		dto.Orders = append(dto.Orders, OrderSummaryDTO{
			ID:           row.ID,
			UserID:       row.UserID,
			UserName:     row.UserFirstName + " " + row.UserLastName,
			TotalAmount:  row.TotalAmount,
			Status:       string(row.Status),
			DeliveryDate: row.DeliveryDate,
			CreatedAt:    row.CreatedAt,
		})
	}
	return dto
}

func newOrderDTO(order *models.Order, items []ItemRow) *OrderDTO {
	dto := &OrderDTO{
		ID:           order.ID,
		UserID:       order.UserID,
		TotalAmount:  order.TotalAmount,
		Status:       string(order.Status),
		DeliveryDate: order.DeliveryDate,
		Items:        make([]OrderItemDTO, 0, len(items)),
		CreatedAt:    order.CreatedAt,
	}
	for _, row := range items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			Image:       images.ProductImageFilename(row.ProductID),
			Quantity:    row.Quantity,
			UnitPrice:   row.UnitPrice,
			LineTotal:   row.UnitPrice.Mul(decimal.NewFromInt(int64(row.Quantity))),
		})
	}
	return dto
}
