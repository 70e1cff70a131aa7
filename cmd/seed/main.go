package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"salonbook/internal/auth"
	"salonbook/internal/config"
	"salonbook/internal/database"
	"salonbook/internal/logger"
	"salonbook/internal/models"
	"salonbook/internal/repository"
	"salonbook/internal/search"
	"salonbook/internal/service"

	"github.com/shopspring/decimal"
)

var (
	clearExisting = flag.Bool("clear", false, "Deactivate existing services before seeding")
	dryRun        = flag.Bool("dry-run", false, "Show what would be seeded without making changes")
	promptPayID   = flag.String("promptpay", "", "PromptPay phone number to save as the receiving account")
)

// demoCatalog is a typical small salon menu
var demoCatalog = []struct {
	name     string
	price    int64
	deposit  int64
	duration int
}{
	{"ตัดผมหญิง", 350, 100, 60},
	{"ตัดผมชาย", 200, 50, 30},
	{"สระไดร์", 250, 50, 45},
	{"ทำสีผม", 1500, 500, 120},
	{"ดัดวอลลุ่ม", 2200, 500, 150},
	{"ทำเล็บเจล", 450, 100, 60},
	{"ต่อขนตา", 800, 200, 90},
}

type Seeder struct {
	catalog    *service.CatalogService
	promptPay  *service.PromptPayService
	capability auth.Capability
	dryRun     bool
}

func main() {
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	logger.Get().Info("Starting catalog seeder...")

	capability, err := auth.NewGuard(cfg.AdminToken).Authorize(cfg.AdminToken)
	if err != nil {
		logger.Fatal("ADMIN_TOKEN must be set to seed the catalog", "error", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	deps := service.Deps{}
	if cfg.Elasticsearch.Enabled {
		es, err := search.NewElasticsearchClient(cfg.Elasticsearch)
		if err != nil {
			logger.Get().Warn("Elasticsearch unavailable, skipping reindex", "error", err)
		} else {
			deps.Index = es
		}
	}

	services := service.NewServices(repository.NewRepositories(db), deps, service.Options{BaseURL: cfg.BaseURL})
	seeder := &Seeder{
		catalog:    services.Catalog,
		promptPay:  services.PromptPay,
		capability: capability,
		dryRun:     *dryRun,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := seeder.Run(ctx, *clearExisting, *promptPayID); err != nil {
		logger.Fatal("Seeding failed", "error", err)
	}

	logger.Get().Info("Catalog seeding completed successfully!")
}

// Run seeds the demo catalog. Services that already exist by name are left alone.
func (s *Seeder) Run(ctx context.Context, clearFirst bool, promptPayID string) error {
	log := logger.WithContext(ctx)

	existing, err := s.catalog.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list services: %w", err)
	}

	if clearFirst {
		for _, svc := range existing {
			if s.dryRun {
				log.Info("Would deactivate service", "service_id", svc.ID, "name", svc.Name)
				continue
			}
			if err := s.catalog.Deactivate(ctx, s.capability, svc.ID); err != nil {
				return fmt.Errorf("failed to deactivate %s: %w", svc.Name, err)
			}
		}
		log.Info("Cleared existing services", "count", len(existing))
		existing = nil
	}

	have := make(map[string]bool, len(existing))
	for _, svc := range existing {
		have[svc.Name] = true
	}

	created := 0
	for _, item := range demoCatalog {
		if have[item.name] {
			log.Debug("Service already exists", "name", item.name)
			continue
		}
		if s.dryRun {
			log.Info("Would create service", "name", item.name, "price", item.price, "deposit", item.deposit)
			continue
		}

		svc, err := s.catalog.Create(ctx, s.capability, &models.CreateServiceRequest{
			Name:         item.name,
			Price:        decimal.NewFromInt(item.price),
			Deposit:      decimal.NewFromInt(item.deposit),
			DurationMins: item.duration,
		})
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", item.name, err)
		}
		created++
		log.Info("Created service", "service_id", svc.ID, "name", svc.Name)
	}

	if promptPayID != "" && !s.dryRun {
		_, err := s.promptPay.SaveSettings(ctx, s.capability, &models.SavePromptPaySettingsRequest{
			PromptPayID:   promptPayID,
			PromptPayType: models.PromptPayPhone,
		})
		if err != nil {
			return fmt.Errorf("failed to save PromptPay settings: %w", err)
		}
		log.Info("Saved PromptPay settings")
	}

	if s.dryRun {
		return nil
	}

	indexed, err := s.catalog.Reindex(ctx, s.capability)
	if err != nil {
		log.Warn("Reindex failed", "error", err)
	}

	log.Info("Seed summary", "created", created, "indexed", indexed)
	return nil
}
