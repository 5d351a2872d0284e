package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/isdamarket/fish_market/internal/middleware/auth"
	"github.com/isdamarket/fish_market/internal/models"
	"github.com/isdamarket/fish_market/internal/service/review"
)

type ReviewService interface {
	Submit(ctx context.Context, req review.SubmitRequest) (*models.Review, error)
	ListBySeller(ctx context.Context, sellerUID string) ([]models.Review, error)
	SellerSummary(ctx context.Context, sellerUID string) (*review.Summary, error)
}

type ReviewHandler struct {
	Reviews ReviewService
}

func reviewError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, review.ErrConflict):
		return errorResponse(c, http.StatusConflict, "review already submitted for this order")
	case errors.Is(err, review.ErrRating):
		return errorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, review.ErrNotFound):
		return errorResponse(c, http.StatusNotFound, "not found")
	default:
		return graphError(c, err)
	}
}

func (h *ReviewHandler) Submit(c echo.Context) error {
	buyer := auth.BuyerFrom(c)
	if buyer == nil {
		return errorResponse(c, http.StatusUnauthorized, "buyer token required")
	}

	var req struct {
		SellerUID string `json:"seller_uid"`
		OrderUID  string `json:"order_uid"`
		Rating    int    `json:"rating"`
		Comment   string `json:"comment"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.SellerUID == "" || req.OrderUID == "" {
		return errorResponse(c, http.StatusBadRequest, "seller_uid and order_uid are required")
	}

	rv, err := h.Reviews.Submit(c.Request().Context(), review.SubmitRequest{
		BuyerUID:  buyer.UID,
		BuyerName: buyer.Name,
		SellerUID: req.SellerUID,
		OrderUID:  req.OrderUID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		return reviewError(c, err)
	}
	return c.JSON(http.StatusCreated, rv)
}

func (h *ReviewHandler) ListBySeller(c echo.Context) error {
	reviews, err := h.Reviews.ListBySeller(c.Request().Context(), c.Param("uid"))
	if err != nil {
		return reviewError(c, err)
	}
	return c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHandler) Summary(c echo.Context) error {
	summary, err := h.Reviews.SellerSummary(c.Request().Context(), c.Param("uid"))
	if err != nil {
		return reviewError(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}
