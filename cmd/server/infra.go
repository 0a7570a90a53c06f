package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"farmshop/internal/admin"
	"farmshop/internal/audit"
	httpapi "farmshop/internal/http"
	"farmshop/internal/notify"
	"farmshop/internal/platform/config"
	"farmshop/internal/platform/objectstore"
	"farmshop/internal/platform/postgres"
	fsredis "farmshop/internal/platform/redis"
	"farmshop/pkg/platform/circuit"
)

const (
	auditBufferSize = 1024
	mediaPrefix     = "/media"
)

// infra holds the process-wide backends. Every field except the publisher,
// objects and sender may be nil when the backend is not configured.
type infra struct {
	db    *sql.DB
	redis *fsredis.Client
	kafka *audit.KafkaStore
	audit *audit.Publisher
	// activity is the local audit store, set only when it holds every event.
	activity admin.ActivityReader
	objects  objectstore.Store
	media    *objectstore.MemoryStore
	sender   notify.Sender
	checks   map[string]httpapi.HealthCheck
	logger   *slog.Logger
}

func openInfra(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *infra, err error) {
	in := &infra{checks: make(map[string]httpapi.HealthCheck), logger: logger}
	defer func() {
		if err != nil {
			in.Close()
		}
	}()

	if cfg.Database.URL != "" {
		in.db, err = postgres.Open(ctx, postgres.Config{URL: cfg.Database.URL, MaxOpenConns: cfg.Database.MaxOpenConns})
		if err != nil {
			return nil, err
		}
		if err = postgres.Migrate(ctx, in.db); err != nil {
			return nil, err
		}
		in.checks["postgres"] = in.db.PingContext
		logger.Info("postgres connected")
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory stores")
	}

	in.redis, err = fsredis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if in.redis != nil {
		in.checks["redis"] = in.redis.Health
		logger.Info("redis connected")
	} else {
		logger.Warn("REDIS_URL not set, carts and sessions are kept in memory")
	}

	var local interface {
		audit.Store
		admin.ActivityReader
	} = audit.NewInMemoryStore()
	if in.db != nil {
		local = audit.NewPostgresStore(in.db)
	}
	var sink audit.Store = local
	if len(cfg.Kafka.Brokers) > 0 {
		in.kafka, err = audit.NewKafkaStore(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return nil, err
		}
		breaker := circuit.New("audit-kafka", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(2))
		sink = audit.NewFallbackStore(in.kafka, sink, breaker, logger)
		in.checks["kafka"] = in.kafka.Health
		logger.Info("audit events go to kafka", "topic", cfg.Kafka.Topic)
	} else {
		in.activity = local
	}
	in.audit = audit.NewPublisher(sink, audit.WithAsyncBuffer(auditBufferSize), audit.WithLogger(logger))

	if cfg.Storage.Endpoint != "" {
		store, minioErr := objectstore.NewMinio(cfg.Storage)
		if minioErr != nil {
			return nil, minioErr
		}
		if err = store.EnsureBuckets(ctx, objectstore.BucketProductImages, objectstore.BucketGalleryImages); err != nil {
			return nil, err
		}
		in.objects = store
	} else {
		in.media = objectstore.NewMemory(mediaPrefix)
		in.objects = in.media
		logger.Warn("STORAGE_ENDPOINT not set, images are kept in memory")
	}

	if cfg.Mail.ResendAPIKey != "" {
		in.sender = notify.NewResendSender(cfg.Mail.ResendAPIKey)
	} else {
		in.sender = notify.NewLogSender(logger)
		logger.Warn("RESEND_API_KEY not set, e-mails are only logged")
	}

	return in, nil
}

// Close releases backends in reverse dependency order: the audit buffer is
// drained before its sink goes away.
func (in *infra) Close() {
	if in.audit != nil {
		in.audit.Close()
	}
	if in.kafka != nil {
		in.kafka.Close()
	}
	var errs []error
	if in.redis != nil {
		if err := in.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if in.db != nil {
		if err := in.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close postgres: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		in.logger.Error("shutdown", "error", err)
	}
}
