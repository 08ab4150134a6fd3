package app

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"bx-pool/internal/assets"
	"bx-pool/internal/audit"
	"bx-pool/internal/cache"
	"bx-pool/internal/config"
	"bx-pool/internal/db"
	"bx-pool/internal/event"
	"bx-pool/internal/jobs"
	"bx-pool/internal/ledger"
	"bx-pool/internal/monitoring"
	"bx-pool/internal/pool"
	"bx-pool/internal/security"
	"bx-pool/internal/token"
	"bx-pool/internal/ws"
)

type Server struct {
	app   *fiber.App
	cfg   *config.Config
	db    *sql.DB
	bus   *event.Bus
	cache *cache.Cache
	jobs  *jobs.Manager
	log   *zap.Logger
}

func NewServer(cfg *config.Config, log *zap.Logger) (*Server, error) {
	database, err := db.Init(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	monitoring.Init()

	bus := event.NewBus()
	ledger.NewJournal(database).Subscribe(bus, log.Named("journal"))
	auditService := audit.New(database)

	hub := ws.NewHub(log)
	hub.Subscribe(bus)

	var priceCache *cache.Cache
	if cfg.RedisAddr != "" {
		priceCache = cache.New(cfg.RedisAddr, log)
		priceCache.Subscribe(bus)
	}

	engine := pool.New(pool.Config{
		Address: common.HexToAddress(cfg.Pool.Address),
		Owner:   common.HexToAddress(cfg.Pool.Owner),
		House:   common.HexToAddress(cfg.Pool.House),
	}, token.ShareTokenFactory, bus, log)

	coins := token.NewService()
	newCoin := func(symbol string) (assets.Stablecoin, error) {
		return coins.Create(symbol)
	}
	for _, symbol := range cfg.Assets {
		coin, err := newCoin(symbol)
		if err != nil {
			return nil, fmt.Errorf("create stablecoin %s: %w", symbol, err)
		}
		if _, err := engine.Register(context.Background(), coin); err != nil {
			return nil, fmt.Errorf("register asset %s: %w", symbol, err)
		}
	}

	solvency, err := jobs.NewSolvency(cfg.SolvencyCron, engine, log)
	if err != nil {
		return nil, err
	}
	manager := jobs.New()
	manager.Register(solvency)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(requestMetrics)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "ws_clients": hub.Clients()})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(hub.Handler))

	api := app.Group("/api", security.APIKeyGuard(cfg.Security.APIKey), security.CallerIdentity())
	pool.RegisterRoutes(api, engine)
	token.RegisterRoutes(api, coins)
	if priceCache != nil {
		cache.RegisterRoutes(api, priceCache)
	}

	game := app.Group("/game", security.GameGuard(cfg.Security.GameToken, engine.Owner()))
	pool.RegisterGameRoutes(game, engine)

	admin := app.Group("/admin", security.AdminGuard(cfg.Security.AdminToken))
	pool.RegisterAdminRoutes(admin, engine, newCoin, auditService)
	token.RegisterAdminRoutes(admin, coins, auditService)

	return &Server{
		app:   app,
		cfg:   cfg,
		db:    database,
		bus:   bus,
		cache: priceCache,
		jobs:  manager,
		log:   log,
	}, nil
}

func requestMetrics(c *fiber.Ctx) error {
	err := c.Next()
	status := c.Response().StatusCode()
	if e, ok := err.(*fiber.Error); ok {
		status = e.Code
	}
	monitoring.HttpRequests.WithLabelValues(c.Method(), c.Route().Path, strconv.Itoa(status)).Inc()
	return err
}

// Run serves HTTP and runs background jobs until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	go s.jobs.Start(ctx)

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("port", s.cfg.Port))
		errc <- s.app.Listen(":" + s.cfg.Port)
	}()

	select {
	case err := <-errc:
		s.close()
		return err
	case <-ctx.Done():
		err := s.app.Shutdown()
		s.close()
		return err
	}
}

func (s *Server) close() {
	s.bus.Close()
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			s.log.Warn("close cache", zap.Error(err))
		}
	}
	if err := s.db.Close(); err != nil {
		s.log.Warn("close database", zap.Error(err))
	}
}
