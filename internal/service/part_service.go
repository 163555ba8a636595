package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"dealership-service/internal/metrics"
	"dealership-service/internal/models"
	"dealership-service/internal/repository"
)

// PartSvc is an implementation of the service.PartService interface
type PartSvc struct {
	repos        *repository.Repository
	logger       *logrus.Logger
	clock        func() time.Time
	email        EmailService
	tasks        *backgroundTasks
	leadTimeDays int
}

// NewPartService creates a new PartSvc
func NewPartService(deps Dependencies) *PartSvc {
	deps = deps.withRuntime()
	email := deps.Email
	if email == nil {
		email = NewEmailService(deps)
	}
	return &PartSvc{
		repos:        deps.Repos,
		logger:       deps.Logger,
		clock:        deps.Clock,
		email:        email,
		tasks:        deps.tasks,
		leadTimeDays: deps.Config.Inventory.DefaultLeadTimeDays,
	}
}

// Create adds a part to inventory
func (s *PartSvc) Create(ctx context.Context, partCreate *models.PartCreate) (*models.Part, error) {
	if err := partCreate.Validate(); err != nil {
		return nil, validationError(err)
	}

	part := partCreate.ToPart()
	now := s.clock()
	part.RefreshReorderDate(now, s.leadTimeDays)
	part.CreatedAt = now
	part.UpdatedAt = now

	id, err := s.repos.Part.Create(ctx, part)
	if err != nil {
		return nil, writeError("create", "part", err)
	}
	part.ID = id

	s.logger.Infof("Part created: %d (%s)", id, part.PartNumber)

	return part, nil
}

// GetByID gets a part by ID
func (s *PartSvc) GetByID(ctx context.Context, id int) (*models.Part, error) {
	part, err := s.repos.Part.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("part", err)
	}
	return part, nil
}

// List returns parts matching the filter, sorted by name
func (s *PartSvc) List(ctx context.Context, filter models.PartFilter) ([]*models.Part, error) {
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, validationError(fmt.Errorf("unknown category %q", filter.Category))
	}

	parts, err := s.repos.Part.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list parts: %w", err)
	}
	return parts, nil
}

// GetLowStock returns parts below their minimum stock level
func (s *PartSvc) GetLowStock(ctx context.Context) ([]*models.Part, error) {
	parts, err := s.repos.Part.GetLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get low stock parts: %w", err)
	}
	return parts, nil
}

// Update applies a partial update to a part
func (s *PartSvc) Update(ctx context.Context, id int, update *models.PartUpdate) (*models.Part, error) {
	part, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := update.Apply(part); err != nil {
		return nil, validationError(err)
	}

	now := s.clock()
	part.RefreshReorderDate(now, s.leadTimeDays)
	part.UpdatedAt = now

	if err := s.repos.Part.Update(ctx, part); err != nil {
		return nil, writeError("update", "part", err)
	}

	s.logger.Infof("Part updated: %d", id)

	return part, nil
}

// AdjustStock adds or removes stock. A part that drops below its minimum level
// with this adjustment triggers a reorder alert.
func (s *PartSvc) AdjustStock(ctx context.Context, id int, adj *models.StockAdjustment) (*models.Part, error) {
	if err := adj.Validate(); err != nil {
		return nil, validationError(err)
	}

	now := s.clock()
	var wasLow bool

	part, err := s.repos.Part.AdjustStock(ctx, id, func(part *models.Part) {
		wasLow = part.IsLowStock()
		part.ApplyStock(*adj, now)
		part.RefreshReorderDate(now, s.leadTimeDays)
	})
	if err != nil {
		return nil, writeError("adjust stock of", "part", err)
	}
	part.UpdatedAt = now

	s.logger.Infof("Part %d stock %s %d, now %d", id, adj.Action, adj.Quantity, part.Stock)

	if !wasLow && part.IsLowStock() {
		alert := *part
		s.tasks.Go(func() {
			if err := s.email.SendReorderAlert(context.Background(), &alert); err != nil {
				s.logger.Warnf("Failed to send reorder alert for part %d: %v", alert.ID, err)
			}
		})
	}

	return part, nil
}

// Delete removes a part
func (s *PartSvc) Delete(ctx context.Context, id int) error {
	if err := s.repos.Part.Delete(ctx, id); err != nil {
		return writeError("delete", "part", err)
	}

	s.logger.Infof("Part deleted: %d", id)

	return nil
}

// SendReorderDigest emails the list of low-stock parts and reports how many there were
func (s *PartSvc) SendReorderDigest(ctx context.Context) (int, error) {
	parts, err := s.GetLowStock(ctx)
	if err != nil {
		return 0, err
	}

	metrics.LowStockParts.Set(float64(len(parts)))

	if len(parts) == 0 {
		return 0, nil
	}

	if err := s.email.SendReorderDigest(ctx, parts); err != nil {
		return len(parts), fmt.Errorf("failed to send reorder digest: %w", err)
	}

	return len(parts), nil
}
