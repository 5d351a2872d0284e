package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/isdamarket/fish_market/internal/middleware/auth"
	"github.com/isdamarket/fish_market/internal/models"
	"github.com/isdamarket/fish_market/internal/mykafka"
	"github.com/isdamarket/fish_market/internal/service/order"
)

type OrderService interface {
	Create(ctx context.Context, req order.CreateRequest) (*models.OrderDetail, error)
	UpdateStatus(ctx context.Context, orderUID, status string) (*models.OrderDetail, error)
	Delete(ctx context.Context, orderUID string) error
	Get(ctx context.Context, orderUID string) (*models.OrderDetail, error)
	ListAll(ctx context.Context) ([]models.OrderDetail, error)
	ListByBuyer(ctx context.Context, buyerUID string) ([]models.OrderDetail, error)
	ListBySeller(ctx context.Context, sellerUID string) ([]models.OrderDetail, error)
}

type OrderHandler struct {
	Orders   OrderService
	Producer *mykafka.Producer
}

func orderError(c echo.Context, err error) error {
	var stock *order.InsufficientStockError
	switch {
	case errors.As(err, &stock):
		return errorResponse(c, http.StatusBadRequest, stock.Error())
	case errors.Is(err, order.ErrValidation):
		return errorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrNoSeller):
		return errorResponse(c, http.StatusBadRequest, "product has no seller")
	case errors.Is(err, order.ErrNotFound):
		return errorResponse(c, http.StatusNotFound, "not found")
	default:
		return graphError(c, err)
	}
}

func (h *OrderHandler) Create(c echo.Context) error {
	buyer := auth.BuyerFrom(c)
	if buyer == nil {
		return errorResponse(c, http.StatusUnauthorized, "buyer token required")
	}

	var req struct {
		FishProductUID string `json:"fish_product_uid"`
		Quantity       int    `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	detail, err := h.Orders.Create(c.Request().Context(), order.CreateRequest{
		BuyerUID:       buyer.UID,
		FishProductUID: req.FishProductUID,
		Quantity:       req.Quantity,
	})
	if err != nil {
		return orderError(c, err)
	}

	publish(c, h.Producer, "order_events", detail.UID, map[string]any{
		"event":     "created",
		"uid":       detail.UID,
		"buyer_uid": detail.BuyerUID,
		"status":    detail.Status,
	})

	return c.JSON(http.StatusCreated, detail)
}

func (h *OrderHandler) List(c echo.Context) error {
	details, err := h.Orders.ListAll(c.Request().Context())
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(http.StatusOK, details)
}

func (h *OrderHandler) ListMineBuyer(c echo.Context) error {
	buyer := auth.BuyerFrom(c)
	if buyer == nil {
		return errorResponse(c, http.StatusUnauthorized, "buyer token required")
	}
	details, err := h.Orders.ListByBuyer(c.Request().Context(), buyer.UID)
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(http.StatusOK, details)
}

func (h *OrderHandler) ListMineSeller(c echo.Context) error {
	seller := auth.SellerFrom(c)
	if seller == nil {
		return errorResponse(c, http.StatusUnauthorized, "seller token required")
	}
	details, err := h.Orders.ListBySeller(c.Request().Context(), seller.UID)
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(http.StatusOK, details)
}

func (h *OrderHandler) Get(c echo.Context) error {
	detail, err := h.Orders.Get(c.Request().Context(), c.Param("uid"))
	if err != nil {
		return orderError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	uid := c.Param("uid")
	detail, err := h.Orders.UpdateStatus(c.Request().Context(), uid, req.Status)
	if err != nil {
		return orderError(c, err)
	}

	publish(c, h.Producer, "order_events", uid, map[string]any{
		"event":  "status_changed",
		"uid":    uid,
		"status": detail.Status,
	})

	return c.JSON(http.StatusOK, detail)
}

func (h *OrderHandler) Delete(c echo.Context) error {
	uid := c.Param("uid")
	if err := h.Orders.Delete(c.Request().Context(), uid); err != nil {
		return orderError(c, err)
	}

	publish(c, h.Producer, "order_events", uid, map[string]any{
		"event": "deleted",
		"uid":   uid,
	})

	return c.JSON(http.StatusOK, Response{Status: "ok", Message: "order deleted"})
}
