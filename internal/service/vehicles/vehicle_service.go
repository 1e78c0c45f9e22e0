package vehicles

import (
	"context"
	"sort"
	"strings"

	"github.com/easyrent/vehiclerental/internal/domain"
	"github.com/easyrent/vehiclerental/internal/logger"
	"github.com/easyrent/vehiclerental/internal/repository"
)

const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

// Filter narrows the catalog. Zero values match everything.
type Filter struct {
	Type   string
	Fuel   string
	Seats  int
	Search string
	Sort   string
}

type VehicleUseCase interface {
	List(ctx context.Context, filter Filter) ([]domain.Vehicle, error)
	GetByID(ctx context.Context, id int64) (*domain.Vehicle, error)
}

type VehicleCache interface {
	GetVehicles(ctx context.Context) ([]domain.Vehicle, error)
	SetVehicles(ctx context.Context, vehicles []domain.Vehicle) error
}

type VehicleService struct {
	repo  repository.VehicleRepository
	cache VehicleCache
	log   logger.Logger
}

func NewVehicleService(repo repository.VehicleRepository, cache VehicleCache, log logger.Logger) *VehicleService {
	return &VehicleService{repo: repo, cache: cache, log: log.Action("vehicles")}
}

func (s *VehicleService) List(ctx context.Context, filter Filter) ([]domain.Vehicle, error) {
	all, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}
	return apply(all, filter), nil
}

func (s *VehicleService) GetByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *VehicleService) catalog(ctx context.Context) ([]domain.Vehicle, error) {
	if s.cache != nil {
		cached, err := s.cache.GetVehicles(ctx)
		if err != nil {
			s.log.Warn("vehicle cache read failed", "error", err.Error())
		} else if cached != nil {
			return cached, nil
		}
	}

	vehicles, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetVehicles(ctx, vehicles); err != nil {
			s.log.Warn("vehicle cache write failed", "error", err.Error())
		}
	}
	return vehicles, nil
}

func apply(all []domain.Vehicle, f Filter) []domain.Vehicle {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]domain.Vehicle, 0, len(all))
	for _, v := range all {
		if f.Type != "" && !strings.EqualFold(v.Type, f.Type) {
			continue
		}
		if f.Fuel != "" && !strings.EqualFold(v.FuelType, f.Fuel) {
			continue
		}
		if f.Seats > 0 && v.SeatingCapacity != f.Seats {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(v.Name), search) &&
			!strings.Contains(strings.ToLower(v.Brand), search) {
			continue
		}
		out = append(out, v)
	}

	switch f.Sort {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].PricePerDay < out[j].PricePerDay })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].PricePerDay > out[j].PricePerDay })
	}
	return out
}

var _ VehicleUseCase = (*VehicleService)(nil)
