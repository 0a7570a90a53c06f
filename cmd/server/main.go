package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"farmshop/internal/admin"
	adminadapters "farmshop/internal/admin/adapters"
	"farmshop/internal/cart"
	carthandler "farmshop/internal/cart/handler"
	cartstore "farmshop/internal/cart/store"
	cataloghandler "farmshop/internal/catalog/handler"
	catalogservice "farmshop/internal/catalog/service"
	catalogstore "farmshop/internal/catalog/store"
	"farmshop/internal/checkout"
	checkouthandler "farmshop/internal/checkout/handler"
	checkoutstore "farmshop/internal/checkout/store"
	contacthandler "farmshop/internal/contact/handler"
	contactservice "farmshop/internal/contact/service"
	contactstore "farmshop/internal/contact/store"
	galleryhandler "farmshop/internal/gallery/handler"
	galleryservice "farmshop/internal/gallery/service"
	gallerystore "farmshop/internal/gallery/store"
	httpapi "farmshop/internal/http"
	identityhandler "farmshop/internal/identity/handler"
	identityservice "farmshop/internal/identity/service"
	identitystore "farmshop/internal/identity/store"
	"farmshop/internal/identity/token"
	"farmshop/internal/notify"
	"farmshop/internal/orders/export"
	ordershandler "farmshop/internal/orders/handler"
	ordersservice "farmshop/internal/orders/service"
	ordersstore "farmshop/internal/orders/store"
	"farmshop/internal/platform/config"
	"farmshop/internal/platform/httpserver"
	"farmshop/internal/platform/logger"
	"farmshop/internal/platform/metrics"
	rlmetrics "farmshop/internal/ratelimit/metrics"
	rlmiddleware "farmshop/internal/ratelimit/middleware"
	"farmshop/internal/ratelimit/store/bucket"
	"farmshop/pkg/platform/circuit"
	adminmw "farmshop/pkg/platform/middleware/admin"
	authmw "farmshop/pkg/platform/middleware/auth"
	"farmshop/pkg/platform/tx"
)

const shopName = "Farma"

// main wires the dependencies and runs the HTTP server until SIGINT or
// SIGTERM. Business logic lives in the internal service packages.
func main() {
	if err := run(); err != nil {
		slog.Error("farmshop stopped", "error", err)
		os.Exit(1)
	}
}

type stores struct {
	products   catalogservice.ProductStore
	categories catalogservice.CategoryStore
	tx         tx.Runner
	users      identityservice.UserStore
	orders     ordersservice.Store
	messages   messageStore
	gallery    galleryservice.Store
}

type messageStore interface {
	contactservice.Store
	admin.MessageReader
}

func openStores(in *infra) stores {
	if in.db == nil {
		catalog := catalogstore.NewInMemory()
		return stores{
			products:   catalog,
			categories: catalog,
			tx:         tx.NewMemoryRunner(),
			users:      identitystore.NewInMemory(),
			orders:     ordersstore.NewInMemory(),
			messages:   contactstore.NewInMemory(),
			gallery:    gallerystore.NewInMemory(),
		}
	}
	catalog := catalogstore.NewPostgres(in.db)
	return stores{
		products:   catalog,
		categories: catalog,
		tx:         tx.NewSQLRunner(in.db),
		users:      identitystore.NewPostgres(in.db),
		orders:     ordersstore.NewPostgres(in.db),
		messages:   contactstore.NewPostgres(in.db),
		gallery:    gallerystore.NewPostgres(in.db),
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	in, err := openInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer in.Close()

	st := openStores(in)
	orderStore := st.orders
	m := metrics.New()

	notifier := notify.New(in.sender, cfg.Mail.From, cfg.Mail.AdminTo,
		notify.WithLogger(log),
		notify.WithMetrics(m),
	)

	// identity
	jwt := token.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer)
	var revocations interface {
		identityservice.RevocationList
		authmw.TokenRevocationChecker
	}
	if in.redis != nil {
		revocations = identitystore.NewRedisTRL(in.redis.Client)
	} else {
		revocations = identitystore.NewInMemoryTRL()
	}
	identitySvc := identityservice.New(st.users, jwt, revocations,
		identityservice.WithOrderCounter(orderStore),
		identityservice.WithTokenTTL(cfg.Auth.AccessTokenTTL),
		identityservice.WithAuditPublisher(in.audit),
		identityservice.WithMetrics(m),
		identityservice.WithLogger(log),
	)

	// catalog and cart
	catalogSvc := catalogservice.New(st.products, st.categories, in.objects,
		catalogservice.WithTx(st.tx),
		catalogservice.WithAuditPublisher(in.audit),
		catalogservice.WithLogger(log),
	)
	var snapshots cart.SnapshotStore
	if in.redis != nil {
		snapshots = cartstore.NewRedis(in.redis.Client)
	} else {
		snapshots = cartstore.NewInMemory()
	}
	cartSvc := cart.NewService(snapshots, catalogSvc, cfg.Shop.CartNamespace,
		cart.WithMetrics(m),
		cart.WithLogger(log),
	)

	// orders and checkout
	ordersSvc := ordersservice.New(orderStore, notifier, identitySvc, export.NewPDF(shopName),
		ordersservice.WithAuditPublisher(in.audit),
		ordersservice.WithMetrics(m),
		ordersservice.WithLogger(log),
	)
	var sessions checkout.SessionStore
	if in.redis != nil {
		sessions = checkoutstore.NewRedis(in.redis.Client).WithTTL(cfg.Shop.CheckoutSession)
	} else {
		sessions = checkoutstore.NewInMemory().WithTTL(cfg.Shop.CheckoutSession)
	}
	checkoutSvc, err := checkout.New(sessions, cartSvc, orderStore, catalogSvc, catalogSvc,
		checkout.WithProfiles(identitySvc),
		checkout.WithNotifier(notifier),
		checkout.WithDeliveryCost(cfg.Shop.DeliveryCost),
		checkout.WithAuditPublisher(in.audit),
		checkout.WithMetrics(m),
		checkout.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("build checkout: %w", err)
	}

	// contact, gallery, dashboard
	contactSvc := contactservice.New(st.messages, notifier,
		contactservice.WithAuditPublisher(in.audit),
		contactservice.WithLogger(log),
	)
	gallerySvc := galleryservice.New(st.gallery, in.objects, galleryservice.WithLogger(log))
	dashboard := admin.NewService(ordersSvc, catalogSvc, adminadapters.NewUserStoreAdapter(identitySvc), st.messages, log)
	if in.activity != nil {
		dashboard.WithActivity(in.activity)
	}

	limiter := rateLimiter(cfg.RateLimit, in, log)

	identityH := identityhandler.New(identitySvc, log)
	catalogH := cataloghandler.New(catalogSvc, log)
	cartH := carthandler.New(cartSvc, log)
	ordersH := ordershandler.New(ordersSvc, log)
	checkoutH := checkouthandler.New(checkoutSvc, log)
	contactH := contacthandler.New(contactSvc, log)
	galleryH := galleryhandler.New(gallerySvc, log)
	dashboardH := admin.NewHandler(dashboard, log)

	public := []httpapi.RouteFunc{
		identityH.RegisterPublic,
		catalogH.Register,
		cartH.Register,
		galleryH.Register,
		func(r chi.Router) {
			contactH.Register(r, limiter.RateLimit("contact", cfg.RateLimit.ContactLimit, cfg.RateLimit.Window))
		},
	}
	if in.media != nil {
		public = append(public, in.media.Register)
	}

	router := httpapi.NewRouter(httpapi.Config{
		Logger:       log,
		RequireAuth:  authmw.RequireAuth(jwt, revocations, log),
		RequireAdmin: adminmw.RequireAdmin(identitySvc, log),
		Public:       public,
		Authenticated: []httpapi.RouteFunc{
			identityH.Register,
			ordersH.Register,
			checkoutH.Register,
		},
		Admin: []httpapi.RouteFunc{
			dashboardH.RegisterAdmin,
			identityH.RegisterAdmin,
			catalogH.RegisterAdmin,
			ordersH.RegisterAdmin,
			contactH.RegisterAdmin,
			galleryH.RegisterAdmin,
		},
		HealthChecks: in.checks,
	})

	srv := httpserver.New(cfg.Server.Addr, router)
	log.Info("starting farmshop", "addr", cfg.Server.Addr)
	return httpserver.Run(ctx, srv, cfg.Server.ShutdownTimeout, log)
}

// rateLimiter counts in Redis when available and falls back to process
// memory while Redis is unreachable.
func rateLimiter(cfg config.RateLimit, in *infra, log *slog.Logger) *rlmiddleware.Middleware {
	var store bucket.Store = bucket.New()
	rlm := rlmetrics.New()
	if in.redis != nil {
		breaker := circuit.New("ratelimit-redis", circuit.WithFailureThreshold(3), circuit.WithSuccessThreshold(2))
		store = bucket.NewFallback(bucket.NewRedis(in.redis.Client), store, breaker, log)
	}
	return rlmiddleware.New(store, log,
		rlmiddleware.WithDisabled(cfg.Disabled),
		rlmiddleware.WithMetrics(rlm),
	)
}
