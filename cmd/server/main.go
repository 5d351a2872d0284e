package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/isdamarket/fish_market/internal/config"
	"github.com/isdamarket/fish_market/internal/es"
	"github.com/isdamarket/fish_market/internal/graph"
	"github.com/isdamarket/fish_market/internal/handlers"
	"github.com/isdamarket/fish_market/internal/logging"
	"github.com/isdamarket/fish_market/internal/middleware/auth"
	"github.com/isdamarket/fish_market/internal/mykafka"
	"github.com/isdamarket/fish_market/internal/notify"
	"github.com/isdamarket/fish_market/internal/repo"
	"github.com/isdamarket/fish_market/internal/service/order"
	"github.com/isdamarket/fish_market/internal/service/review"
	httpserver "github.com/isdamarket/fish_market/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	store, err := graph.New(configuration)
	if err != nil {
		log.Fatalf("neo4j init error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := store.Verify(ctx); err != nil {
		cancel()
		log.Fatalf("neo4j connectivity error: %v", err)
	}
	cancel()

	var prod *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		prod = mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
	} else {
		logger.Warn("KAFKA_ADDRESS is empty, event publishing disabled")
	}

	jwtSecret := []byte(configuration.JWT_SECRET)
	tokenTTL := time.Duration(configuration.TOKEN_MINUTES) * time.Minute

	buyers := &repo.Buyers{DB: store}
	sellers := &repo.Sellers{DB: store}
	products := &repo.Products{DB: store}
	orders := &repo.Orders{DB: store}
	messages := &repo.Messages{DB: store}
	notifications := &repo.Notifications{DB: store}
	reviews := &repo.Reviews{DB: store}

	notifier := notify.New(notifications, logger)

	orderService := &order.Service{
		Buyers:   buyers,
		Products: products,
		Orders:   orders,
		Reviews:  reviews,
		Notify:   notifier,
	}
	reviewService := &review.Service{
		Store:  reviews,
		Notify: notifier,
	}

	guard := &auth.Guard{Secret: jwtSecret, Buyers: buyers, Sellers: sellers}

	deps := httpserver.Deps{
		Guard:               guard,
		AuthHandler:         &handlers.AuthHandler{Buyers: buyers, Sellers: sellers, JWTSecret: jwtSecret, TokenTTL: tokenTTL, Producer: prod},
		BuyerHandler:        &handlers.BuyerHandler{Buyers: buyers, Producer: prod},
		SellerHandler:       &handlers.SellerHandler{Sellers: sellers, Producer: prod},
		OrderHandler:        &handlers.OrderHandler{Orders: orderService, Producer: prod},
		MessageHandler:      &handlers.MessageHandler{Messages: messages, Buyers: buyers, Sellers: sellers, Notify: notifier},
		NotificationHandler: &handlers.NotificationHandler{Notifications: notifications},
		ReviewHandler:       &handlers.ReviewHandler{Reviews: reviewService},
	}

	productHandler := &handlers.ProductHandler{Products: products, Producer: prod}
	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			logger.Warn("elasticsearch unavailable, search disabled", "error", err)
		} else {
			productHandler.ES = esClient
			deps.SearchHandler = &handlers.SearchHandler{ES: esClient}
		}
	} else {
		logger.Warn("ES_URL is empty, search disabled")
	}
	deps.ProductHandler = productHandler

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), logger)))
			return next(c)
		}
	})

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	notifier.Close()

	if prod != nil {
		if err := prod.Close(); err != nil {
			logger.Error("kafka close error", "error", err)
		}
	}

	if err := store.Close(shutdownCtx); err != nil {
		logger.Error("neo4j close error", "error", err)
	}

	logger.Info("shutdown complete")
}
