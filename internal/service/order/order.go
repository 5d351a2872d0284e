// Package order implements the order lifecycle: stock-guarded creation,
// status transitions with buyer notifications, and deletion with inventory
// restoration for unconfirmed reservations.
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/isdamarket/fish_market/internal/graph"
	"github.com/isdamarket/fish_market/internal/models"
)

var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("not found")
	// ErrNoSeller marks a product with no SOLD_BY edge; orders against it
	// cannot be fulfilled.
	ErrNoSeller = errors.New("product has no seller")
)

// InsufficientStockError carries the quantity still on the shelf.
type InsufficientStockError struct {
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient quantity. Available: %d", e.Available)
}

type BuyerStore interface {
	GetByUID(ctx context.Context, uid string) (*models.Buyer, error)
}

type ProductStore interface {
	GetByUID(ctx context.Context, uid string) (*models.FishProduct, error)
	SellerOf(ctx context.Context, productUID string) (*models.Seller, error)
	RestoreStock(ctx context.Context, uid string, amount int) error
}

type OrderStore interface {
	CreateWithRelations(ctx context.Context, o *models.Order, buyerUID, productUID string) (bool, error)
	GetByUID(ctx context.Context, uid string) (*models.Order, error)
	Detail(ctx context.Context, uid string) (*models.OrderDetail, error)
	ListAll(ctx context.Context) ([]models.OrderDetail, error)
	ListByBuyer(ctx context.Context, buyerUID string) ([]models.OrderDetail, error)
	ListBySeller(ctx context.Context, sellerUID string) ([]models.OrderDetail, error)
	UpdateStatus(ctx context.Context, uid, status string, now time.Time) error
	Delete(ctx context.Context, uid string) error
	ProductOf(ctx context.Context, orderUID string) (*models.FishProduct, error)
}

type ReviewStore interface {
	ExistsForOrder(ctx context.Context, orderUID string) (bool, error)
}

// Notifier accepts fire-and-forget notifications; it must never block or
// fail the calling operation.
type Notifier interface {
	Enqueue(n models.Notification)
}

type CreateRequest struct {
	BuyerUID       string `json:"buyer_uid"`
	FishProductUID string `json:"fish_product_uid"`
	Quantity       int    `json:"quantity"`
}

type Service struct {
	Buyers   BuyerStore
	Products ProductStore
	Orders   OrderStore
	Reviews  ReviewStore
	Notify   Notifier
}

// Create places a new order. Stock validation, the order node, its three
// edges and the inventory decrement commit as one store operation; the
// pre-checks exist only to report which entity is missing.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.OrderDetail, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be > 0", ErrValidation)
	}

	buyer, err := s.Buyers.GetByUID(ctx, req.BuyerUID)
	if err != nil {
		if errors.Is(err, graph.ErrNotFound) {
			return nil, fmt.Errorf("%w: buyer", ErrNotFound)
		}
		return nil, err
	}

	product, err := s.Products.GetByUID(ctx, req.FishProductUID)
	if err != nil {
		if errors.Is(err, graph.ErrNotFound) {
			return nil, fmt.Errorf("%w: product", ErrNotFound)
		}
		return nil, err
	}
	if product.Quantity < req.Quantity {
		return nil, &InsufficientStockError{Available: product.Quantity}
	}

	seller, err := s.Products.SellerOf(ctx, req.FishProductUID)
	if err != nil {
		if errors.Is(err, graph.ErrNotFound) {
			return nil, ErrNoSeller
		}
		return nil, err
	}

	now := time.Now().UTC()
	order := &models.Order{
		UID:        uuid.NewString(),
		Quantity:   req.Quantity,
		TotalPrice: product.Price * float64(req.Quantity),
		Status:     models.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	ok, err := s.Orders.CreateWithRelations(ctx, order, buyer.UID, product.UID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race: re-read the shelf for an accurate count.
		available := 0
		if current, err := s.Products.GetByUID(ctx, req.FishProductUID); err == nil {
			available = current.Quantity
		}
		return nil, &InsufficientStockError{Available: available}
	}

	s.Notify.Enqueue(models.Notification{
		UID:           uuid.NewString(),
		RecipientUID:  seller.UID,
		RecipientType: models.RecipientSeller,
		Type:          "new_order",
		Message:       fmt.Sprintf("%s ordered %dx %s", buyer.Name, req.Quantity, product.Name),
		CreatedAt:     now,
	})

	return &models.OrderDetail{
		UID:             order.UID,
		BuyerUID:        buyer.UID,
		BuyerName:       buyer.Name,
		BuyerContact:    buyer.ContactNumber,
		SellerUID:       seller.UID,
		SellerName:      seller.Name,
		SellerContact:   seller.ContactNumber,
		FishProductUID:  product.UID,
		FishProductName: product.Name,
		Quantity:        order.Quantity,
		TotalPrice:      order.TotalPrice,
		Status:          order.Status,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}, nil
}

// UpdateStatus applies any status in the accepted set, regardless of the
// current one, and notifies the buyer when the status actually changed.
func (s *Service) UpdateStatus(ctx context.Context, orderUID, status string) (*models.OrderDetail, error) {
	if !models.ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	current, err := s.Orders.GetByUID(ctx, orderUID)
	if err != nil {
		if errors.Is(err, graph.ErrNotFound) {
			return nil, fmt.Errorf("%w: order", ErrNotFound)
		}
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.Orders.UpdateStatus(ctx, orderUID, status, now); err != nil {
		if errors.Is(err, graph.ErrNotFound) {
			return nil, fmt.Errorf("%w: order", ErrNotFound)
		}
		return nil, err
	}

	detail, err := s.Orders.Detail(ctx, orderUID)
	if err != nil {
		return nil, err
	}

	if status != current.Status && detail.BuyerUID != "" {
		if notifType, message := statusNotification(status, detail.FishProductName); notifType != "" {
			s.Notify.Enqueue(models.Notification{
				UID:           uuid.NewString(),
				RecipientUID:  detail.BuyerUID,
				RecipientType: models.RecipientBuyer,
				Type:          notifType,
				Message:       message,
				CreatedAt:     now,
			})
		}
	}

	detail.Reviewed, _ = s.Reviews.ExistsForOrder(ctx, orderUID)
	return detail, nil
}

func statusNotification(status, productName string) (string, string) {
	name := productName
	if name == "" {
		name = "your item"
	}
	switch status {
	case models.StatusConfirmed, models.StatusProcessing:
		return "order_approved", fmt.Sprintf("Your order for %s has been approved!", name)
	case models.StatusDelivered:
		return "order_delivered", fmt.Sprintf("Your order for %s has been delivered!", name)
	case models.StatusCancelled:
		return "order_cancelled", fmt.Sprintf("Your order for %s has been cancelled.", name)
	}
	return "", ""
}

// Delete removes the order. Only a still-pending order returns its quantity
// to the shelf: confirmed stock movements are never compensated here.
func (s *Service) Delete(ctx context.Context, orderUID string) error {
	current, err := s.Orders.GetByUID(ctx, orderUID)
	if err != nil {
		if errors.Is(err, graph.ErrNotFound) {
			return fmt.Errorf("%w: order", ErrNotFound)
		}
		return err
	}

	if current.Status == models.StatusPending {
		product, err := s.Orders.ProductOf(ctx, orderUID)
		switch {
		case err == nil:
			if err := s.Products.RestoreStock(ctx, product.UID, current.Quantity); err != nil {
				return err
			}
		case errors.Is(err, graph.ErrNotFound):
			// No CONTAINS edge left, nothing to return to the shelf.
		default:
			return err
		}
	}

	return s.Orders.Delete(ctx, orderUID)
}

func (s *Service) Get(ctx context.Context, orderUID string) (*models.OrderDetail, error) {
	detail, err := s.Orders.Detail(ctx, orderUID)
	if err != nil {
		if errors.Is(err, graph.ErrNotFound) {
			return nil, fmt.Errorf("%w: order", ErrNotFound)
		}
		return nil, err
	}
	detail.Reviewed, _ = s.Reviews.ExistsForOrder(ctx, orderUID)
	return detail, nil
}

func (s *Service) ListAll(ctx context.Context) ([]models.OrderDetail, error) {
	details, err := s.Orders.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.markReviewed(ctx, details), nil
}

func (s *Service) ListByBuyer(ctx context.Context, buyerUID string) ([]models.OrderDetail, error) {
	details, err := s.Orders.ListByBuyer(ctx, buyerUID)
	if err != nil {
		return nil, err
	}
	return s.markReviewed(ctx, details), nil
}

func (s *Service) ListBySeller(ctx context.Context, sellerUID string) ([]models.OrderDetail, error) {
	details, err := s.Orders.ListBySeller(ctx, sellerUID)
	if err != nil {
		return nil, err
	}
	return s.markReviewed(ctx, details), nil
}

// markReviewed computes the reviewed flag per listed order, one lookup each.
func (s *Service) markReviewed(ctx context.Context, details []models.OrderDetail) []models.OrderDetail {
	for i := range details {
		details[i].Reviewed, _ = s.Reviews.ExistsForOrder(ctx, details[i].UID)
	}
	return details
}
