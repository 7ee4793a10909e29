package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/ricemill-ledger/internal/application/dto"
	"github.com/jhoicas/ricemill-ledger/internal/domain"
	"github.com/jhoicas/ricemill-ledger/internal/domain/entity"
	"github.com/jhoicas/ricemill-ledger/internal/domain/repository"
)

// WarehouseUseCase manages the warehouse directory. Warehouses are never hard
// deleted because movements reference them; Deactivate hides them from the ledger.
type WarehouseUseCase struct {
	repo repository.WarehouseRepository
	now  func() time.Time
}

// NewWarehouseUseCase builds the use case.
func NewWarehouseUseCase(repo repository.WarehouseRepository) *WarehouseUseCase {
	return &WarehouseUseCase{repo: repo, now: time.Now}
}

// Create registers an active warehouse.
func (uc *WarehouseUseCase) Create(ctx context.Context, in dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.InvalidInput("name is required")
	}
	if in.Capacity.IsNegative() {
		return nil, domain.InvalidInput("capacity cannot be negative")
	}
	now := uc.now()
	warehouse := &entity.Warehouse{
		ID:        uuid.New().String(),
		Name:      name,
		Location:  in.Location,
		Capacity:  in.Capacity,
		Notes:     in.Notes,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, warehouse); err != nil {
		return nil, err
	}
	return dto.FromWarehouse(warehouse), nil
}

// GetByID returns a warehouse, active or not.
func (uc *WarehouseUseCase) GetByID(ctx context.Context, id string) (*dto.WarehouseResponse, error) {
	warehouse, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.FromWarehouse(warehouse), nil
}

// Update changes the fields present in the request.
func (uc *WarehouseUseCase) Update(ctx context.Context, id string, in dto.UpdateWarehouseRequest) (*dto.WarehouseResponse, error) {
	warehouse, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.InvalidInput("name cannot be empty")
		}
		warehouse.Name = name
	}
	if in.Location != nil {
		warehouse.Location = *in.Location
	}
	if in.Capacity != nil {
		if in.Capacity.IsNegative() {
			return nil, domain.InvalidInput("capacity cannot be negative")
		}
		warehouse.Capacity = *in.Capacity
	}
	if in.Notes != nil {
		warehouse.Notes = *in.Notes
	}
	if in.Active != nil {
		warehouse.Active = *in.Active
	}
	warehouse.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, warehouse); err != nil {
		return nil, err
	}
	return dto.FromWarehouse(warehouse), nil
}

// List pages through warehouses ordered by name.
func (uc *WarehouseUseCase) List(ctx context.Context, activeOnly bool, page dto.PageRequest) (*dto.WarehouseListResponse, error) {
	page.Normalize()
	list, err := uc.repo.List(ctx, activeOnly, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.WarehouseResponse, 0, len(list))
	for _, w := range list {
		items = append(items, *dto.FromWarehouse(w))
	}
	return &dto.WarehouseListResponse{
		Items: items,
		Page:  page.Of(len(items)),
	}, nil
}

// Deactivate marks a warehouse inactive. Ledger operations then treat it as missing.
func (uc *WarehouseUseCase) Deactivate(ctx context.Context, id string) error {
	warehouse, err := uc.get(ctx, id)
	if err != nil {
		return err
	}
	if !warehouse.Active {
		return nil
	}
	warehouse.Active = false
	warehouse.UpdatedAt = uc.now()
	return uc.repo.Update(ctx, warehouse)
}

func (uc *WarehouseUseCase) get(ctx context.Context, id string) (*entity.Warehouse, error) {
	warehouse, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, domain.NotFound("warehouse %s not found", id)
	}
	return warehouse, nil
}
