package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	cartpkg "github.com/oakmarket/storefront-backend/internal/cart"
	"github.com/oakmarket/storefront-backend/pkg/db"
	"github.com/oakmarket/storefront-backend/pkg/db/models"
	"github.com/oakmarket/storefront-backend/pkg/enums"
	pkgerrors "github.com/oakmarket/storefront-backend/pkg/errors"
	"github.com/oakmarket/storefront-backend/pkg/logger"
)

// Service converts a cart into an order.
type Service interface {
	Checkout(ctx context.Context, userID uuid.UUID, deliveryDate *time.Time) (*ResultDTO, error)
}

// ResultDTO carries the identifier of the newly created order.
type ResultDTO struct {
	OrderID uuid.UUID `json:"order_id"`
}

type service struct {
	cartRepo *cartpkg.Repository
	dbClient *db.Client
	logg     *logger.Logger
}

// NewService constructs a checkout service instance.
func NewService(cartRepo *cartpkg.Repository, dbClient *db.Client, logg *logger.Logger) (Service, error) {
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{cartRepo: cartRepo, dbClient: dbClient, logg: logg}, nil
}

// Checkout snapshots the cart's current prices into an order inside one
// transaction, then clears the cart. The clear runs after commit: a failure
// there is logged and never undoes the order.
func (s *service) Checkout(ctx context.Context, userID uuid.UUID, deliveryDate *time.Time) (*ResultDTO, error) {
	cart, err := s.cartRepo.FindOrCreate(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}

	rows, err := s.cartRepo.ListItems(ctx, cart.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cart items")
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	order := &models.Order{
		ID:           uuid.New(),
		UserID:       userID,
		Status:       enums.OrderStatusPending,
		DeliveryDate: deliveryDate,
	}

	total := decimal.Zero
	items := make([]models.OrderItem, 0, len(rows))
	for _, row := range rows {
		total = total.Add(row.UnitPrice.Mul(decimal.NewFromInt(int64(row.Quantity))))
		items = append(items, models.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: row.ProductID,
			Quantity:  row.Quantity,
			UnitPrice: row.UnitPrice,
		})
	}
	order.TotalAmount = total

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("insert order items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
	}

	if err := s.cartRepo.ClearItems(ctx, cart.ID); err != nil && s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id": order.ID.String(),
			"cart_id":  cart.ID.String(),
		})
		s.logg.Error(logCtx, "checkout.cart_clear_failed", err)
	}

	return &ResultDTO{OrderID: order.ID}, nil
}
