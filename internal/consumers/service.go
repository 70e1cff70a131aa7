package consumers

import (
	"context"
	"fmt"

	"salonbook/internal/cache"
	"salonbook/internal/config"
	"salonbook/internal/database"
	"salonbook/internal/external"
	"salonbook/internal/logger"
	"salonbook/internal/messaging"
	"salonbook/internal/models"
	"salonbook/internal/notify"
	"salonbook/internal/repository"
	"salonbook/internal/repository/memory"
	"salonbook/internal/service"

	"github.com/nats-io/stan.go"
)

const notifyQueue = "notifiers"

// ConsumerService drains the notification queue and runs background jobs
// against the same store as the API.
type ConsumerService struct {
	db       *database.DB
	nats     *messaging.NATSClient
	redis    *cache.RedisClient
	services *service.Services
	handlers *Handlers
	subs     []stan.Subscription
}

func NewConsumerService(cfg *config.Config) (*ConsumerService, error) {
	cs := &ConsumerService{}

	var repos *repository.Repositories
	if cfg.Store == config.StoreMemory {
		logger.Get().Warn("Consumers running on the in-memory store; reminders see no API bookings")
		repos = memory.New().Repositories()
	} else {
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return nil, err
		}
		cs.db = db
		repos = repository.NewRepositories(db)
	}

	if cfg.NATS.Enabled {
		natsClient, err := messaging.NewNATSClient(cfg.NATS)
		if err != nil {
			cs.close()
			return nil, err
		}
		cs.nats = natsClient
	}

	deps := service.Deps{}

	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Get().Warn("Redis unavailable, reminders are deduplicated in memory only", "error", err)
		} else {
			cs.redis = redisClient
			deps.Reminders = redisClient
		}
	}

	var pusher notify.Pusher
	if cfg.Line.AccessToken != "" {
		pusher = notify.NewDirect(external.NewLineClient(cfg.Line))
		deps.Notifier = pusher
	} else {
		logger.Get().Warn("LINE access token not set; notifications cannot be delivered")
	}

	cs.services = service.NewServices(repos, deps, service.Options{
		AdmissionRule: cfg.AdmissionRule,
		BaseURL:       cfg.BaseURL,
		LiffID:        cfg.LiffID,
	})
	cs.handlers = NewHandlers(pusher)

	return cs, nil
}

// Services exposes the domain services to background jobs
func (cs *ConsumerService) Services() *service.Services {
	return cs.services
}

func (cs *ConsumerService) Start() error {
	if cs.nats == nil {
		logger.Get().Warn("NATS disabled, no subscriptions started")
		return nil
	}

	logger.Get().Info("Starting NATS consumers...")

	sub, err := cs.nats.SubscribeQueue(models.SubjectNotifyPush, notifyQueue, cs.handlers.HandleNotifyPush)
	if err != nil {
		return fmt.Errorf("notify consumer: %w", err)
	}
	cs.subs = append(cs.subs, sub)

	for _, subject := range []string{
		models.EventBookingCreated,
		models.EventBookingSlipAttached,
		models.EventBookingApproved,
		models.EventBookingRejected,
		models.EventBookingQRConfirmed,
	} {
		sub, err := cs.nats.SubscribeQueue(subject, "audit", cs.handlers.HandleBookingEvent(subject))
		if err != nil {
			return fmt.Errorf("audit consumer for %s: %w", subject, err)
		}
		cs.subs = append(cs.subs, sub)
	}

	logger.Get().Info("All consumers started successfully", "subscriptions", len(cs.subs))
	return nil
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	logger.WithContext(ctx).Info("Shutting down consumer service...")

	for _, sub := range cs.subs {
		// Close keeps the durable subscription so pending messages survive restarts
		if err := sub.Close(); err != nil {
			logger.Get().Error("Error closing subscription", "error", err)
		}
	}
	cs.subs = nil

	return cs.close()
}

func (cs *ConsumerService) close() error {
	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			logger.Get().Error("Error closing NATS connection", "error", err)
		}
	}

	if cs.redis != nil {
		if err := cs.redis.Close(); err != nil {
			logger.Get().Error("Error closing Redis connection", "error", err)
		}
	}

	if cs.db != nil {
		if err := cs.db.Close(); err != nil {
			logger.Get().Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
