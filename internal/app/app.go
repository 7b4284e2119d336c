// Package app assembles the stores, collaborators and services shared by the
// API server and the operator CLI.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Helmus101/confluence/internal/ai"
	"github.com/Helmus101/confluence/internal/auth"
	"github.com/Helmus101/confluence/internal/config"
	"github.com/Helmus101/confluence/internal/database"
	"github.com/Helmus101/confluence/internal/notify"
	"github.com/Helmus101/confluence/internal/quota"
	"github.com/Helmus101/confluence/internal/repository"
	"github.com/Helmus101/confluence/internal/repository/memstore"
	"github.com/Helmus101/confluence/internal/service"
)

// Repositories is one complete storage backend.
type Repositories struct {
	Users         repository.UsersRepository
	Contacts      repository.ContactsRepository
	Intros        repository.IntroRequestsRepository
	Stats         repository.ConnectorStatsRepository
	Quota         repository.WeeklyQuota
	Notifications repository.NotificationsRepository
}

// MemoryRepositories backs every repository with one in-memory store.
func MemoryRepositories(store *memstore.Store) Repositories {
	return Repositories{
		Users:         store.Users,
		Contacts:      store.Contacts,
		Intros:        store.Intros,
		Stats:         store.Stats,
		Quota:         store.RateLimits,
		Notifications: store.Notifications,
	}
}

// App holds the wired services.
type App struct {
	Config *config.Config
	Logger *zap.Logger
	JWT    *auth.JWTManager
	Repos  Repositories

	Auth          *service.AuthService
	Users         *service.UserService
	Contacts      *service.ContactService
	Search        *service.SearchService
	Intros        *service.IntroService
	Notifications *service.NotificationService
	Reports       *service.ReportService

	closers []func()
}

// New opens the configured backends and wires every service. Close releases them.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger, JWT: auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)}

	repos, err := a.openRepositories(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Repos = repos

	completer, err := ai.NewCompleter(ctx, cfg.AI, logger.Named("ai"))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("configure ai provider: %w", err)
	}

	emitter, err := a.emitter(repos.Notifications)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Wire(repos, completer, emitter)
	return a, nil
}

// Wire builds the services over the given backends. A nil completer makes
// every AI collaborator use its local fallback.
func (a *App) Wire(repos Repositories, completer ai.Completer, emitter notify.Emitter) {
	cfg, logger := a.Config, a.Logger
	a.Repos = repos

	enricher := ai.NewContactEnricher(completer, logger)

	a.Auth = service.NewAuthService(repos.Users, a.JWT)
	a.Users = service.NewUserService(repos.Users)
	a.Contacts = service.NewContactService(service.ContactDeps{
		Contacts:   repos.Contacts,
		Enricher:   enricher,
		Classifier: enricher,
		Cleaner:    service.NewContactCleaner(cfg.PhoneRegion),
		Emitter:    emitter,
	}, cfg.EnrichConcurrency, logger)
	a.Search = service.NewSearchService(
		repos.Contacts, repos.Users, repos.Stats,
		ai.NewIntentParser(completer, logger),
		cfg.Intro.MaxIndirectResults, logger)
	a.Intros = service.NewIntroService(service.IntroDeps{
		Intros:   repos.Intros,
		Contacts: repos.Contacts,
		Users:    repos.Users,
		Stats:    repos.Stats,
		Quota:    repos.Quota,
		Messages: ai.NewMessageWriter(completer, logger),
		Emitter:  emitter,
	}, service.IntroPolicy{
		MinContacts: cfg.Intro.MinContacts,
		WeeklyLimit: cfg.Intro.WeeklyLimit,
	}, logger)
	a.Notifications = service.NewNotificationService(repos.Notifications)
	a.Reports = service.NewReportService(repos.Users, repos.Contacts, repos.Intros, repos.Stats)
}

func (a *App) openRepositories(ctx context.Context) (Repositories, error) {
	cfg, logger := a.Config, a.Logger

	var repos Repositories
	if cfg.Store == "memory" {
		logger.Warn("using in-memory store, data is lost on restart")
		repos = MemoryRepositories(memstore.New())
	} else {
		pool, err := database.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxConns, logger)
		if err != nil {
			return Repositories{}, fmt.Errorf("connect database: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		repos = Repositories{
			Users:         repository.NewPGXUsersRepository(pool),
			Contacts:      repository.NewPGXContactsRepository(pool),
			Intros:        repository.NewPGXIntroRequestsRepository(pool),
			Stats:         repository.NewPGXConnectorStatsRepository(pool),
			Quota:         repository.NewPGXRateLimitsRepository(pool),
			Notifications: repository.NewPGXNotificationsRepository(pool),
		}
	}

	client, err := database.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return Repositories{}, fmt.Errorf("connect redis: %w", err)
	}
	if client != nil {
		a.closers = append(a.closers, func() { _ = client.Close() })
		repos.Quota = quota.NewRedisQuota(client, "")
		logger.Info("weekly intro quota backed by redis", zap.String("addr", cfg.Redis.Addr))
	}
	return repos, nil
}

// emitter fans events out to the notification store and the optional NATS
// and webhook sinks.
func (a *App) emitter(store repository.NotificationsRepository) (notify.Emitter, error) {
	cfg, logger := a.Config, a.Logger
	sinks := notify.Multi{notify.NewStoreEmitter(store)}

	if cfg.Notify.NATSURL != "" {
		conn, err := notify.ConnectNATS(cfg.Notify.NATSURL, logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = conn.Drain() })
		sinks = append(sinks, notify.NewNATSEmitter(conn, cfg.Notify.SubjectPrefix))
		logger.Info("publishing events to nats", zap.String("url", cfg.Notify.NATSURL))
	}

	if cfg.Notify.WebhookURL != "" {
		hook, err := notify.NewWebhookEmitter(nil, cfg.Notify.WebhookURL)
		if err != nil {
			return nil, fmt.Errorf("configure webhook: %w", err)
		}
		sinks = append(sinks, hook)
		logger.Info("posting events to webhook", zap.String("url", cfg.Notify.WebhookURL))
	}
	return sinks, nil
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
