package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/isdamarket/fish_market/internal/es"
	"github.com/isdamarket/fish_market/internal/logging"
	"github.com/isdamarket/fish_market/internal/middleware/auth"
	"github.com/isdamarket/fish_market/internal/models"
	"github.com/isdamarket/fish_market/internal/mykafka"
	"github.com/isdamarket/fish_market/internal/repo"
	"github.com/isdamarket/fish_market/internal/service/search"
)

type ProductStore interface {
	Create(ctx context.Context, p *models.FishProduct, sellerUID string) error
	GetByUID(ctx context.Context, uid string) (*models.FishProduct, error)
	List(ctx context.Context, filter repo.ProductFilter) ([]models.FishProduct, error)
	SellerOf(ctx context.Context, productUID string) (*models.Seller, error)
	Update(ctx context.Context, uid string, fields map[string]any) (*models.FishProduct, error)
	Delete(ctx context.Context, uid string) error
}

type ProductHandler struct {
	Products ProductStore
	ES       *elasticsearch.Client
	Producer *mykafka.Producer
}

func (h *ProductHandler) index(c echo.Context, p models.FishProduct) {
	if h.ES == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := search.IndexProduct(ctx, h.ES, es.ProductIndex, p); err != nil {
		logging.FromContext(c.Request().Context()).Error("es index failed", "uid", p.UID, "error", err)
	}
}

func (h *ProductHandler) unindex(c echo.Context, uid string) {
	if h.ES == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := search.DeleteProduct(ctx, h.ES, es.ProductIndex, uid); err != nil {
		logging.FromContext(c.Request().Context()).Error("es delete failed", "uid", uid, "error", err)
	}
}

func (h *ProductHandler) Create(c echo.Context) error {
	seller := auth.SellerFrom(c)
	if seller == nil {
		return errorResponse(c, http.StatusUnauthorized, "seller token required")
	}

	var req struct {
		Name        string  `json:"name"`
		Type        string  `json:"type"`
		Price       float64 `json:"price"`
		Quantity    int     `json:"quantity"`
		Description string  `json:"description"`
		Image       string  `json:"image"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" || req.Price <= 0 || req.Quantity < 0 {
		return errorResponse(c, http.StatusBadRequest, "name is required, price must be positive and quantity must not be negative")
	}

	now := time.Now().UTC()
	product := &models.FishProduct{
		UID:         uuid.NewString(),
		Name:        req.Name,
		Type:        req.Type,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Description: req.Description,
		Image:       req.Image,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.Products.Create(c.Request().Context(), product, seller.UID); err != nil {
		return graphError(c, err)
	}
	product.SellerUID = seller.UID
	product.SellerName = seller.Name

	h.index(c, *product)
	publish(c, h.Producer, "product_events", product.UID, map[string]any{
		"event":      "created",
		"uid":        product.UID,
		"seller_uid": seller.UID,
	})

	return c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) List(c echo.Context) error {
	filter := repo.ProductFilter{
		Name:      c.QueryParam("name"),
		Type:      c.QueryParam("type"),
		SellerUID: c.QueryParam("seller_uid"),
	}
	if v := c.QueryParam("min_price"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MinPrice = &f
		}
	}
	if v := c.QueryParam("max_price"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MaxPrice = &f
		}
	}

	products, err := h.Products.List(c.Request().Context(), filter)
	if err != nil {
		return graphError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) Get(c echo.Context) error {
	product, err := h.Products.GetByUID(c.Request().Context(), c.Param("uid"))
	if err != nil {
		return graphError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Update(c echo.Context) error {
	seller := auth.SellerFrom(c)
	if seller == nil {
		return errorResponse(c, http.StatusUnauthorized, "seller token required")
	}
	uid := c.Param("uid")

	owner, err := h.Products.SellerOf(c.Request().Context(), uid)
	if err != nil {
		return graphError(c, err)
	}
	if owner.UID != seller.UID {
		return errorResponse(c, http.StatusForbidden, "you can only modify your own products")
	}

	var req struct {
		Name        *string  `json:"name"`
		Type        *string  `json:"type"`
		Price       *float64 `json:"price"`
		Quantity    *int     `json:"quantity"`
		Description *string  `json:"description"`
		Image       *string  `json:"image"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Type != nil {
		fields["type"] = *req.Type
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return errorResponse(c, http.StatusBadRequest, "price must be positive")
		}
		fields["price"] = *req.Price
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return errorResponse(c, http.StatusBadRequest, "quantity must not be negative")
		}
		fields["quantity"] = *req.Quantity
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Image != nil {
		fields["image"] = *req.Image
	}
	if len(fields) == 0 {
		return errorResponse(c, http.StatusBadRequest, "no fields to update")
	}

	product, err := h.Products.Update(c.Request().Context(), uid, fields)
	if err != nil {
		return graphError(c, err)
	}
	product.SellerUID = owner.UID
	product.SellerName = owner.Name

	h.index(c, *product)
	publish(c, h.Producer, "product_events", uid, map[string]any{
		"event":      "updated",
		"uid":        uid,
		"seller_uid": seller.UID,
	})

	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Delete(c echo.Context) error {
	seller := auth.SellerFrom(c)
	if seller == nil {
		return errorResponse(c, http.StatusUnauthorized, "seller token required")
	}
	uid := c.Param("uid")

	owner, err := h.Products.SellerOf(c.Request().Context(), uid)
	if err != nil {
		return graphError(c, err)
	}
	if owner.UID != seller.UID {
		return errorResponse(c, http.StatusForbidden, "you can only modify your own products")
	}

	if err := h.Products.Delete(c.Request().Context(), uid); err != nil {
		return graphError(c, err)
	}

	h.unindex(c, uid)
	publish(c, h.Producer, "product_events", uid, map[string]any{
		"event":      "deleted",
		"uid":        uid,
		"seller_uid": seller.UID,
	})

	return c.JSON(http.StatusOK, Response{Status: "ok", Message: "product deleted"})
}
