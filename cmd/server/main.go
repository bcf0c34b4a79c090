package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-box-office/internal/booking"
	"github.com/iliyamo/venue-box-office/internal/config"
	"github.com/iliyamo/venue-box-office/internal/database"
	"github.com/iliyamo/venue-box-office/internal/discount"
	"github.com/iliyamo/venue-box-office/internal/handler"
	"github.com/iliyamo/venue-box-office/internal/inventory"
	"github.com/iliyamo/venue-box-office/internal/logging"
	"github.com/iliyamo/venue-box-office/internal/memstore"
	"github.com/iliyamo/venue-box-office/internal/model"
	"github.com/iliyamo/venue-box-office/internal/queue"
	"github.com/iliyamo/venue-box-office/internal/refund"
	"github.com/iliyamo/venue-box-office/internal/repository"
	"github.com/iliyamo/venue-box-office/internal/router"
	"github.com/iliyamo/venue-box-office/internal/service"
	"github.com/iliyamo/venue-box-office/internal/session"
	"github.com/iliyamo/venue-box-office/internal/utils"
)

// ticketStore is what the ticket endpoints and refunds need from storage.
type ticketStore interface {
	handler.TicketLookup
	refund.Store
}

// stores bundles one storage backend behind the interfaces of the
// layers above it.
type stores struct {
	events    handler.EventSource
	booked    inventory.BookedSeatLookup
	discounts discount.Store
	bookings  booking.Store
	tickets   ticketStore
	users     handler.UserStore
	friends   handler.FriendSource
	db        *sql.DB // nil in memory mode
}

func openMySQL(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (stores, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return stores{}, err
	}
	if err := database.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return stores{}, err
	}
	events := repository.NewEventRepo(db)
	if n, err := events.SeedDefaults(ctx, time.Now().UTC()); err != nil {
		_ = db.Close()
		return stores{}, err
	} else if n > 0 {
		log.WithField("events", n).Info("seeded default programme")
	}
	users := repository.NewUserRepo(db)
	if cfg.SeedUser != "" && cfg.SeedPassword != "" {
		_, err := users.Create(ctx, cfg.SeedUser, cfg.SeedPassword, model.RoleManager, cfg.BcryptCost)
		switch {
		case err == nil:
			log.WithField("username", cfg.SeedUser).Info("seeded manager account")
		case !errors.Is(err, repository.ErrUsernameExists):
			return stores{}, err
		}
	}
	return stores{
		events:    events,
		booked:    repository.NewBookedSeatRepo(db),
		discounts: repository.NewDiscountRepo(db),
		bookings:  repository.NewBookingStore(db),
		tickets:   repository.NewTicketRepo(db),
		users:     users,
		friends:   repository.NewFriendRepo(db),
		db:        db,
	}, nil
}

func openMemory(cfg config.Config, log logrus.FieldLogger) (stores, error) {
	m := memstore.New()
	if cfg.SeedUser != "" && cfg.SeedPassword != "" {
		hash, err := utils.HashPassword(cfg.SeedPassword, cfg.BcryptCost)
		if err != nil {
			return stores{}, err
		}
		m.AddUser(model.User{Username: cfg.SeedUser, PasswordHash: hash, Role: model.RoleManager, IsActive: true})
		log.WithField("username", cfg.SeedUser).Info("seeded manager account")
	}
	return stores{events: m, booked: m, discounts: m, bookings: m, tickets: m, users: m, friends: m}, nil
}

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		st  stores
		err error
	)
	if cfg.Storage == config.StorageMemory {
		st, err = openMemory(cfg, log)
	} else {
		st, err = openMySQL(ctx, cfg, log)
	}
	if err != nil {
		log.WithError(err).WithField("storage", cfg.Storage).Fatal("storage init failed")
	}
	if st.db != nil {
		defer st.db.Close()
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable; availability cache and rate limiting disabled")
	} else {
		defer rdb.Close()
	}
	cache := inventory.NewRedisCache(st.booked, rdb, config.LoadAvailabilityCacheConfig(), log)
	inv := inventory.New(cache, log)

	resolver := discount.NewResolver(st.discounts, log)
	sessions := session.NewManager(resolver, log,
		session.WithHold(time.Duration(cfg.HoldSeconds)*time.Second),
		session.WithMaxQuantity(cfg.MaxQuantity))
	defer sessions.Shutdown()

	opts := []booking.Option{booking.WithInvalidator(cache)}
	if cfg.AMQPURL != "" {
		opts = append(opts, booking.WithNotifier(service.NewPublisher(cfg.AMQPURL, log)))
		if cfg.ConsumerEnabled {
			go func() {
				if err := queue.StartBookingConsumer(ctx, cfg.AMQPURL, cfg.BookingLogPath, log); err != nil && !errors.Is(err, context.Canceled) {
					log.WithError(err).Error("booking consumer stopped")
				}
			}()
		}
	}
	committer := booking.NewCommitter(st.bookings, log, opts...)
	refunds := refund.NewService(st.tickets, cache, log)

	go sweep(ctx, sessions, time.Minute)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	ready := map[string]handler.Pinger{}
	if st.db != nil {
		ready["mysql"] = st.db
	}
	if rdb != nil {
		ready["redis"] = handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}
	router.RegisterRoutes(e, router.Deps{
		Auth:      handler.NewAuthHandler(cfg, st.users, log),
		Events:    handler.NewEventHandler(st.events, inv, log),
		Sessions:  handler.NewSessionHandler(sessions, st.events, inv, committer, log),
		Discounts: handler.NewDiscountHandler(resolver, log),
		Tickets:   handler.NewTicketHandler(st.tickets, refunds, log),
		Friends:   handler.NewFriendHandler(st.friends, log),
		Ready:     ready,
		JWTSecret: cfg.JWTSecret,
		RateLimit: config.LoadRateLimitConfig(),
		Redis:     rdb,
		Log:       log,
	})

	addr := ":" + cfg.Port
	log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env, "storage": cfg.Storage}).Info("listening")
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

// sweep drops finished sessions every interval until ctx is done.
func sweep(ctx context.Context, m *session.Manager, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Sweep()
		}
	}
}
