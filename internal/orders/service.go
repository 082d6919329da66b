package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oakmarket/storefront-backend/pkg/db/models"
	"github.com/oakmarket/storefront-backend/pkg/enums"
	pkgerrors "github.com/oakmarket/storefront-backend/pkg/errors"
	"github.com/oakmarket/storefront-backend/pkg/pagination"
)

// Actor identifies the caller for ownership checks.
type Actor struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// Service exposes order reads and admin lifecycle updates.
type Service interface {
	List(ctx context.Context, actor Actor, params pagination.Params) (*OrderListDTO, error)
	Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*OrderDTO, error)
	UpdateDeliveryDate(ctx context.Context, orderID uuid.UUID, date *time.Time) (*OrderDTO, error)
}

type service struct {
	repo *Repository
}

// NewService constructs an order service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	return &service{repo: repo}, nil
}

// List returns the actor's own orders, or all orders for admins.
func (s *service) List(ctx context.Context, actor Actor, params pagination.Params) (*OrderListDTO, error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	var userID *uuid.UUID
	if !actor.IsAdmin {
		userID = &actor.UserID
	}

	result, err := s.repo.List(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return newOrderListDTO(result), nil
}

// Get returns the order with its items. Non-admin callers may only read
// their own orders.
func (s *service) Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin && order.UserID != actor.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another user")
	}
	return s.buildDTO(ctx, order)
}

// UpdateStatus sets the order status after membership-only validation. Any of
// the four statuses can follow any other.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*OrderDTO, error) {
	parsed, err := enums.ParseOrderStatus(status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status").
			WithDetails(map[string]any{"status": status})
	}

	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, order.ID, parsed); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
	}
	order.Status = parsed
	return s.buildDTO(ctx, order)
}

// UpdateDeliveryDate sets or clears the delivery date without validation
// against the current time.
func (s *service) UpdateDeliveryDate(ctx context.Context, orderID uuid.UUID, date *time.Time) (*OrderDTO, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateDeliveryDate(ctx, order.ID, date); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update delivery date")
	}
	order.DeliveryDate = date
	return s.buildDTO(ctx, order)
}

func (s *service) findOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return order, nil
}

func (s *service) buildDTO(ctx context.Context, order *models.Order) (*OrderDTO, error) {
	items, err := s.repo.ListItems(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list order items")
	}
	return newOrderDTO(order, items), nil
}
