package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItemDTO is one cart line with the product's current price.
type CartItemDTO struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// CartDTO is the cart payload. Total is always derived from the lines.
type CartDTO struct {
	ID    uuid.UUID       `json:"id"`
	Items []CartItemDTO   `json:"items"`
	Total decimal.Decimal `json:"total"`
}

func newCartDTO(cartID uuid.UUID, rows []ItemRow) *CartDTO {
	dto := &CartDTO{
		ID:    cartID,
		Items: make([]CartItemDTO, 0, len(rows)),
		Total: decimal.Zero,
	}
	for _, row := range rows {
		lineTotal := row.UnitPrice.Mul(decimal.NewFromInt(int64(row.Quantity)))
		dto.Items = append(dto.Items, CartItemDTO{
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			UnitPrice:   row.UnitPrice,
			Quantity:    row.Quantity,
			LineTotal:   lineTotal,
		})
		dto.Total = dto.Total.Add(lineTotal)
	}
	return dto
}
