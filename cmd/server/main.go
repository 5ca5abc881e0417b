package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"ticket-storefront/internal/config"
	"ticket-storefront/internal/handlers"
	"ticket-storefront/internal/middleware"
	"ticket-storefront/internal/models"
	"ticket-storefront/internal/services"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Create session store
	sessionStore := sessions.NewCookieStore([]byte(cfg.Session.Secret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30, // 30 days
		HttpOnly: true,
		Secure:   cfg.Server.Env == "production",
		SameSite: http.SameSiteLaxMode,
	}

	// Backend API client and checkout services
	backend := services.NewBackendClient(cfg.Backend, logger)
	broker := services.NewClientTokenBroker(backend, cfg.Checkout.ClientTokenTTL, logger)
	calculator := services.NewDeliveryCalculator(backend, logger)
	cardGateway := services.NewProcessorCardGateway(cfg.Processor)
	dropinGateway := services.NewHostedDropinGateway(cfg.Processor)

	variant := services.PaymentVariant(cfg.Checkout.PaymentVariant)
	if variant != services.VariantCard && variant != services.VariantDropin {
		log.Fatalf("Unknown payment variant: %q", cfg.Checkout.PaymentVariant)
	}

	checkoutFactory := func(cart models.Cart) *services.CheckoutSession {
		return services.NewCheckoutSession(backend, broker, cardGateway, dropinGateway, calculator, variant, cart, logger)
	}

	// Handlers
	cartHandler := handlers.NewCartHandler(sessionStore)
	checkoutHandler := handlers.NewCheckoutHandler(sessionStore, checkoutFactory)

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.LoggingMiddleware(logger))

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", cartHandler.ViewCart)
		r.Post("/add", cartHandler.AddToCart)
		r.Post("/update", cartHandler.UpdateCartItem)
		r.Post("/remove", cartHandler.RemoveCartItem)
		r.Post("/clear", cartHandler.ClearCart)
	})

	r.Route("/checkout", func(r chi.Router) {
		r.Post("/start", checkoutHandler.StartCheckout)
		r.Post("/buyer", checkoutHandler.UpdateBuyer)
		r.Post("/shipping", checkoutHandler.UpdateShipping)
		r.Post("/delivery", checkoutHandler.SelectDelivery)
		r.Post("/submit", checkoutHandler.Submit)
		r.Get("/result", checkoutHandler.Result)
	})

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Info("storefront checkout listening",
		"addr", addr,
		"backend", cfg.Backend.BaseURL,
		"variant", string(variant),
	)

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal("Server failed:", err)
	}
}
