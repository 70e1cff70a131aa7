package service

import (
	"context"
	"fmt"
	"strings"

	"salonbook/internal/auth"
	apperrors "salonbook/internal/errors"
	"salonbook/internal/logger"
	"salonbook/internal/models"
	"salonbook/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const searchLimit = 20

type CatalogService struct {
	serviceRepo repository.ServiceStore
	index       ServiceIndex
	cache       ServiceCache
}

func NewCatalogService(serviceRepo repository.ServiceStore, index ServiceIndex, cache ServiceCache) *CatalogService {
	return &CatalogService{
		serviceRepo: serviceRepo,
		index:       index,
		cache:       cache,
	}
}

// List returns active services ordered by name
func (s *CatalogService) List(ctx context.Context) ([]models.Service, error) {
	if s.cache != nil {
		services, ok, err := s.cache.GetServices(ctx)
		if err != nil {
			logger.WithContext(ctx).Warn("Services cache lookup failed", "error", err)
		} else if ok {
			return services, nil
		}
	}

	services, err := s.serviceRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetServices(ctx, services); err != nil {
			logger.WithContext(ctx).Warn("Failed to cache services", "error", err)
		}
	}

	return services, nil
}

// Search finds active services by name, preferring the search index
func (s *CatalogService) Search(ctx context.Context, query string) ([]models.Service, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List(ctx)
	}

	if s.index != nil {
		services, err := s.index.SearchServices(ctx, query, searchLimit)
		if err == nil {
			return services, nil
		}
		logger.WithContext(ctx).Warn("Search index unavailable, falling back to database", "error", err)
	}

	services, err := s.serviceRepo.SearchByName(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search services: %w", err)
	}
	return services, nil
}

func (s *CatalogService) Create(ctx context.Context, capability auth.Capability, req *models.CreateServiceRequest) (*models.Service, error) {
	if err := capability.Check(); err != nil {
		return nil, err
	}

	service := &models.Service{
		Name:         strings.TrimSpace(req.Name),
		Price:        req.Price,
		Deposit:      req.Deposit,
		DurationMins: req.DurationMins,
		ImageURL:     nonEmpty(req.ImageURL),
		IsActive:     true,
	}
	if req.IsActive != nil {
		service.IsActive = *req.IsActive
	}

	if err := validateService(service); err != nil {
		return nil, err
	}

	if err := s.serviceRepo.Create(ctx, service); err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	s.changed(ctx, service)
	logger.WithContext(ctx).Info("Service created", "service_id", service.ID, "name", service.Name)
	return service, nil
}

// Update changes the given fields of one service
func (s *CatalogService) Update(ctx context.Context, capability auth.Capability, id uuid.UUID, req *models.UpdateServiceRequest) (*models.Service, error) {
	if err := capability.Check(); err != nil {
		return nil, err
	}

	service, err := s.serviceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	if service == nil {
		return nil, fmt.Errorf("service %s: %w", id, apperrors.ErrNotFound)
	}

	if req.Name != nil {
		service.Name = strings.TrimSpace(*req.Name)
	}
	if req.Price != nil {
		service.Price = *req.Price
	}
	if req.Deposit != nil {
		service.Deposit = *req.Deposit
	}
	if req.DurationMins != nil {
		service.DurationMins = *req.DurationMins
	}
	if req.ImageURL != nil {
		service.ImageURL = nonEmpty(req.ImageURL)
	}
	if req.IsActive != nil {
		service.IsActive = *req.IsActive
	}

	if err := validateService(service); err != nil {
		return nil, err
	}

	if err := s.serviceRepo.Update(ctx, service); err != nil {
		return nil, fmt.Errorf("failed to update service: %w", err)
	}

	s.changed(ctx, service)
	return service, nil
}

// UpdateDeposits sets the deposit of several services at once. Existing
// bookings keep the deposit they were created with.
func (s *CatalogService) UpdateDeposits(ctx context.Context, capability auth.Capability, req *models.UpdateDepositsRequest) error {
	if err := capability.Check(); err != nil {
		return err
	}
	if len(req.Services) == 0 {
		return fmt.Errorf("services array is required: %w", apperrors.ErrValidation)
	}

	deposits := make(map[uuid.UUID]decimal.Decimal, len(req.Services))
	for _, item := range req.Services {
		id, err := uuid.Parse(item.ID)
		if err != nil {
			return fmt.Errorf("invalid service id %q: %w", item.ID, apperrors.ErrValidation)
		}
		if item.Deposit.IsNegative() {
			return fmt.Errorf("deposit of %s must not be negative: %w", item.ID, apperrors.ErrValidation)
		}
		deposits[id] = item.Deposit
	}

	if err := s.serviceRepo.UpdateDeposits(ctx, deposits); err != nil {
		return fmt.Errorf("failed to update deposits: %w", err)
	}

	for id := range deposits {
		if service, err := s.serviceRepo.GetByID(ctx, id); err == nil && service != nil {
			s.changed(ctx, service)
		}
	}
	return nil
}

// Deactivate hides a service from customers; it is never hard deleted
func (s *CatalogService) Deactivate(ctx context.Context, capability auth.Capability, id uuid.UUID) error {
	if err := capability.Check(); err != nil {
		return err
	}

	found, err := s.serviceRepo.Deactivate(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate service: %w", err)
	}
	if !found {
		return fmt.Errorf("service %s: %w", id, apperrors.ErrNotFound)
	}

	if service, err := s.serviceRepo.GetByID(ctx, id); err == nil && service != nil {
		s.changed(ctx, service)
	}
	return nil
}

type bulkIndexer interface {
	BulkIndex(ctx context.Context, services []models.Service) error
}

// Reindex pushes the whole active catalog to the search index
func (s *CatalogService) Reindex(ctx context.Context, capability auth.Capability) (int, error) {
	if err := capability.Check(); err != nil {
		return 0, err
	}
	if s.index == nil {
		return 0, nil
	}
	services, err := s.serviceRepo.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list services: %w", err)
	}
	if bulk, ok := s.index.(bulkIndexer); ok {
		if err := bulk.BulkIndex(ctx, services); err != nil {
			return 0, fmt.Errorf("failed to reindex services: %w", err)
		}
		return len(services), nil
	}
	for i := range services {
		if err := s.index.IndexService(ctx, &services[i]); err != nil {
			return i, fmt.Errorf("failed to index service %s: %w", services[i].ID, err)
		}
	}
	return len(services), nil
}

// changed refreshes derived copies of the catalog
func (s *CatalogService) changed(ctx context.Context, service *models.Service) {
	if s.cache != nil {
		if err := s.cache.InvalidateServices(ctx); err != nil {
			logger.WithContext(ctx).Warn("Failed to invalidate services cache", "error", err)
		}
	}
	if s.index != nil {
		if err := s.index.IndexService(ctx, service); err != nil {
			logger.WithContext(ctx).Warn("Failed to index service", "error", err, "service_id", service.ID)
		}
	}
}

func validateService(s *models.Service) error {
	switch {
	case s.Name == "":
		return fmt.Errorf("service name is required: %w", apperrors.ErrValidation)
	case s.Price.IsNegative():
		return fmt.Errorf("price must not be negative: %w", apperrors.ErrValidation)
	case s.Deposit.IsNegative():
		return fmt.Errorf("deposit must not be negative: %w", apperrors.ErrValidation)
	case s.DurationMins <= 0:
		return fmt.Errorf("duration must be positive: %w", apperrors.ErrValidation)
	}
	return nil
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
