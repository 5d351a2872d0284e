package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/isdamarket/fish_market/internal/handlers"
	"github.com/isdamarket/fish_market/internal/middleware/auth"
)

type Deps struct {
	Guard               *auth.Guard
	AuthHandler         *handlers.AuthHandler
	BuyerHandler        *handlers.BuyerHandler
	SellerHandler       *handlers.SellerHandler
	ProductHandler      *handlers.ProductHandler
	OrderHandler        *handlers.OrderHandler
	MessageHandler      *handlers.MessageHandler
	NotificationHandler *handlers.NotificationHandler
	ReviewHandler       *handlers.ReviewHandler
	SearchHandler       *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "Welcome to IsdaMarket API"})
	})
	e.GET("/health", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	v1 := e.Group("/api/v1")

	v1.POST("/auth/buyer/login", d.AuthHandler.BuyerLogin)
	v1.POST("/auth/seller/login", d.AuthHandler.SellerLogin)

	buyers := v1.Group("/buyers")
	buyers.POST("", d.BuyerHandler.Register)
	buyers.GET("", d.BuyerHandler.List)
	buyers.GET("/me", d.BuyerHandler.Me, d.Guard.RequireBuyer)
	buyers.GET("/:uid", d.BuyerHandler.Get)
	buyers.PATCH("/:uid", d.BuyerHandler.Update)
	buyers.DELETE("/:uid", d.BuyerHandler.Delete)

	sellers := v1.Group("/sellers")
	sellers.POST("", d.SellerHandler.Register)
	sellers.GET("", d.SellerHandler.List)
	sellers.GET("/me", d.SellerHandler.Me, d.Guard.RequireSeller)
	sellers.GET("/:uid", d.SellerHandler.Get)
	sellers.PATCH("/:uid", d.SellerHandler.Update)
	sellers.DELETE("/:uid", d.SellerHandler.Delete)

	products := v1.Group("/fish_products")
	products.POST("", d.ProductHandler.Create, d.Guard.RequireSeller)
	products.GET("", d.ProductHandler.List)
	products.GET("/:uid", d.ProductHandler.Get)
	products.PATCH("/:uid", d.ProductHandler.Update, d.Guard.RequireSeller)
	products.DELETE("/:uid", d.ProductHandler.Delete, d.Guard.RequireSeller)

	orders := v1.Group("/orders")
	orders.POST("", d.OrderHandler.Create, d.Guard.RequireBuyer)
	orders.GET("", d.OrderHandler.List)
	orders.GET("/buyer/me", d.OrderHandler.ListMineBuyer, d.Guard.RequireBuyer)
	orders.GET("/seller/me", d.OrderHandler.ListMineSeller, d.Guard.RequireSeller)
	orders.GET("/:uid", d.OrderHandler.Get)
	orders.PATCH("/:uid/status", d.OrderHandler.UpdateStatus)
	orders.DELETE("/:uid", d.OrderHandler.Delete)

	messages := v1.Group("/messages")
	messages.POST("", d.MessageHandler.Send)
	messages.GET("/conversation/:user1_uid/:user2_uid", d.MessageHandler.Between)
	messages.GET("/conversations/:user_uid", d.MessageHandler.Conversations)

	notifications := v1.Group("/notifications")
	notifications.POST("", d.NotificationHandler.Create)
	notifications.GET("/buyer/:uid", d.NotificationHandler.ListBuyer)
	notifications.GET("/seller/:uid", d.NotificationHandler.ListSeller)
	notifications.PATCH("/:uid/read", d.NotificationHandler.MarkRead)
	notifications.PATCH("/recipient/:uid/read_all", d.NotificationHandler.MarkAllRead)
	notifications.DELETE("/:uid", d.NotificationHandler.Delete)

	reviews := v1.Group("/reviews")
	reviews.POST("", d.ReviewHandler.Submit, d.Guard.RequireBuyer)
	reviews.GET("/seller/:uid", d.ReviewHandler.ListBySeller)
	reviews.GET("/seller/:uid/summary", d.ReviewHandler.Summary)

	if d.SearchHandler != nil {
		v1.GET("/search", d.SearchHandler.Search)
	}
}
