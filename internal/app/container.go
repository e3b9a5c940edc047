package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/acme/lead-outreach/internal/api/handlers"
	"github.com/acme/lead-outreach/internal/config"
	"github.com/acme/lead-outreach/internal/correlation"
	"github.com/acme/lead-outreach/internal/infra/db"
	"github.com/acme/lead-outreach/internal/infra/redis"
	"github.com/acme/lead-outreach/internal/queue"
	"github.com/acme/lead-outreach/internal/repository"
	pgrepo "github.com/acme/lead-outreach/internal/repository/postgres"
	scyllarepo "github.com/acme/lead-outreach/internal/repository/scylla"
	dashboardsvc "github.com/acme/lead-outreach/internal/service/dashboard"
	dispatchsvc "github.com/acme/lead-outreach/internal/service/dispatch"
	ingestsvc "github.com/acme/lead-outreach/internal/service/ingest"
	leadsvc "github.com/acme/lead-outreach/internal/service/lead"
	teamsvc "github.com/acme/lead-outreach/internal/service/team"
	"github.com/acme/lead-outreach/internal/telephony"
	telephonymock "github.com/acme/lead-outreach/internal/telephony/mock"
	telephonytwilio "github.com/acme/lead-outreach/internal/telephony/twilio"
	"github.com/acme/lead-outreach/pkg/logger"
)

// Container wires together shared infrastructure dependencies.
type Container struct {
	Config *config.Config
	Logger *logger.Logger

	Postgres *db.Postgres
	Scylla   *db.Scylla
	Redis    *redis.Client
	Kafka    *queue.Kafka

	components struct {
		once         sync.Once
		repositories *repositories
		services     *services
		provider     telephony.Provider
		events       *queue.EventPublisher
		correlations *correlation.Store
	}
}

type repositories struct {
	Leads        repository.LeadRepository
	Team         repository.TeamMemberRepository
	Interactions repository.InteractionRepository
	Stats        repository.StatsRepository
	EventLog     repository.InteractionEventLog
}

type services struct {
	Dispatch  *dispatchsvc.Service
	Ingest    *ingestsvc.Service
	Leads     *leadsvc.Service
	Team      *teamsvc.Service
	Dashboard *dashboardsvc.Service
}

// Build constructs a container for the given configuration path.
func Build(ctx context.Context, configPath string) (*Container, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	lg, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, err
	}

	pg, err := db.NewPostgres(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("bootstrap postgres: %w", err)
	}

	scylla, err := db.NewScylla(cfg.Scylla)
	if err != nil {
		return nil, fmt.Errorf("bootstrap scylla: %w", err)
	}

	redisClient, err := redis.NewClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("bootstrap redis: %w", err)
	}

	kafka, err := queue.NewKafka(cfg.Kafka)
	if err != nil {
		return nil, fmt.Errorf("bootstrap kafka: %w", err)
	}

	return &Container{
		Config:   cfg,
		Logger:   lg,
		Postgres: pg,
		Scylla:   scylla,
		Redis:    redisClient,
		Kafka:    kafka,
	}, nil
}

func (c *Container) initComponents() {
	c.components.once.Do(func() {
		repos := &repositories{
			Leads:        pgrepo.NewLeadRepository(c.Postgres.DB()),
			Team:         pgrepo.NewTeamMemberRepository(c.Postgres.DB()),
			Interactions: pgrepo.NewInteractionRepository(c.Postgres.DB()),
			Stats:        pgrepo.NewStatsRepository(c.Postgres.DB()),
			EventLog:     scyllarepo.NewEventLog(c.Scylla.Session()),
		}

		correlations := correlation.NewStore(repos.Interactions, c.Redis.Inner(), c.Config.Redis.CorrelationTTL)
		events := queue.NewEventPublisher(c.Kafka, c.Config.Kafka.EventTopic)

		var provider telephony.Provider
		switch c.Config.Telephony.ProviderName {
		case "twilio":
			provider = telephonytwilio.NewProvider(c.Config.Telephony)
		default:
			provider = telephonymock.NewProvider(c.Config.Telephony)
		}

		svcs := &services{
			Dispatch: dispatchsvc.NewService(
				repos.Leads,
				repos.Team,
				repos.Interactions,
				correlations,
				provider,
				events,
				repos.EventLog,
				dispatchsvc.Options{
					CallbackBaseURL: c.Config.Telephony.CallbackBaseURL,
					RequestTimeout:  c.Config.Telephony.RequestTimeout,
					StatusEvents:    c.Config.Telephony.StatusEvents,
				},
				c.Logger.Named("dispatch"),
			),
			Ingest: ingestsvc.NewService(
				correlations,
				repos.Interactions,
				repos.Leads,
				events,
				repos.EventLog,
				c.Logger.Named("ingest"),
			),
			Leads:     leadsvc.NewService(repos.Leads, repos.Interactions),
			Team:      teamsvc.NewService(repos.Team),
			Dashboard: dashboardsvc.NewService(repos.Stats),
		}

		c.components.repositories = repos
		c.components.services = svcs
		c.components.provider = provider
		c.components.events = events
		c.components.correlations = correlations
	})
}

// HandlerSet builds HTTP handlers with dependencies.
func (c *Container) HandlerSet() *handlers.HandlerSet {
	c.initComponents()
	svcs := c.components.services
	return handlers.NewHandlerSet(c.Logger, handlers.Services{
		Dispatch:     svcs.Dispatch,
		Ingest:       svcs.Ingest,
		Leads:        svcs.Leads,
		Team:         svcs.Team,
		Dashboard:    svcs.Dashboard,
		Provider:     c.components.provider,
		Interactions: c.components.repositories.Interactions,
		EventLog:     c.components.repositories.EventLog,
	}, c.healthCheck)
}

func (c *Container) healthCheck(ctx context.Context) map[string]string {
	errs := make(map[string]string)

	if err := c.Postgres.DB().PingContext(ctx); err != nil {
		errs["postgres"] = err.Error()
	}
	if err := c.Redis.Inner().Ping(ctx).Err(); err != nil {
		errs["redis"] = err.Error()
	}
	if err := c.Scylla.Session().Query("SELECT now() FROM system.local").WithContext(ctx).Exec(); err != nil {
		errs["scylla"] = err.Error()
	}

	return errs
}

// EnsureTopics ensures the event topic exists.
func (c *Container) EnsureTopics(ctx context.Context) error {
	return c.Kafka.EnsureTopics(ctx, []string{c.Config.Kafka.EventTopic}, 12, 1)
}

// Close releases all held resources.
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	if c.components.events != nil {
		if err := c.components.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("event publisher close: %w", err))
		}
	}
	if c.Kafka != nil {
		if err := c.Kafka.Close(); err != nil {
			errs = append(errs, fmt.Errorf("kafka close: %w", err))
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	if c.Scylla != nil {
		if err := c.Scylla.Close(); err != nil {
			errs = append(errs, fmt.Errorf("scylla close: %w", err))
		}
	}
	if c.Postgres != nil {
		if err := c.Postgres.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("postgres close: %w", err))
		}
	}
	if c.Logger != nil {
		c.Logger.Sync()
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
