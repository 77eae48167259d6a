package service

import (
	"context"

	"go-cinema-booking/internal/model"
	"go-cinema-booking/internal/repository"
	apperrors "go-cinema-booking/pkg/app_errors"
)

type HallService interface {
	CreateHall(ctx context.Context, req *model.CreateHallRequest) (*model.Hall, error)
	ListHalls(ctx context.Context) ([]*model.Hall, error)
	GetHall(ctx context.Context, id int) (*model.Hall, error)
	UpdateHall(ctx context.Context, id int, params *model.UpdateHallParams) (*model.Hall, error)
	DeleteHall(ctx context.Context, id int) error
}

type HallServiceImpl struct {
	hallRepo repository.HallRepository
	audit    *AuditRecorder
}

func NewHallService(hallRepo repository.HallRepository, audit *AuditRecorder) HallService {
	return &HallServiceImpl{
		hallRepo: hallRepo,
		audit:    audit,
	}
}

func (s *HallServiceImpl) CreateHall(ctx context.Context, req *model.CreateHallRequest) (*model.Hall, error) {
	hall := &model.Hall{
		Name:        req.Name,
		TotalRows:   req.TotalRows,
		SeatsPerRow: req.SeatsPerRow,
	}

	created, err := s.hallRepo.Create(ctx, hall)
	if err != nil {
		return nil, err
	}

	s.audit.Record("admin", "Create", "Hall", &created.ID, created.Name)
	return created, nil
}

func (s *HallServiceImpl) ListHalls(ctx context.Context) ([]*model.Hall, error) {
	return s.hallRepo.List(ctx)
}

func (s *HallServiceImpl) GetHall(ctx context.Context, id int) (*model.Hall, error) {
	return s.hallRepo.FindByID(ctx, id)
}

// UpdateHall 只允許改名。座位幾何在場次建立時已固定，改了會
// 讓既有場次的座位圖跟影廳定義對不上。
func (s *HallServiceImpl) UpdateHall(ctx context.Context, id int, params *model.UpdateHallParams) (*model.Hall, error) {
	if params.Name == nil || *params.Name == "" {
		return nil, apperrors.ErrInvalidInput
	}

	updated, err := s.hallRepo.Rename(ctx, id, *params.Name)
	if err != nil {
		return nil, err
	}

	s.audit.Record("admin", "Update", "Hall", &id, updated.Name)
	return updated, nil
}

func (s *HallServiceImpl) DeleteHall(ctx context.Context, id int) error {
	if err := s.hallRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.Record("admin", "Delete", "Hall", &id, "")
	return nil
}
