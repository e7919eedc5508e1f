package services

import (
	"context"

	"complaintdesk/internal/apperrors"
	"complaintdesk/internal/models"
	"complaintdesk/internal/repositories"
)

type ComplaintService interface {
	Add(ctx context.Context, c *models.Complaint, userID int) error
	ListByUser(ctx context.Context, userID, page, pageSize int) ([]*models.Complaint, error)
	GetForUser(ctx context.Context, userID, id int) (*models.Complaint, error)

	// admin
	Get(ctx context.Context, id int) (*models.Complaint, error)
	List(ctx context.Context, status string, userID, page, pageSize int) ([]*models.Complaint, error)
	UpdateStatus(ctx context.Context, id int, status string) (*models.Complaint, error)
}

type complaintService struct {
	repo   repositories.ComplaintRepository
	alerts AlertService
}

func NewComplaintService(repo repositories.ComplaintRepository, alerts AlertService) ComplaintService {
	return &complaintService{repo: repo, alerts: alerts}
}

func (s *complaintService) Add(ctx context.Context, c *models.Complaint, userID int) error {
	ctx, cancel := storeCtx(ctx)
	defer cancel()

	// автора проставляем из токена, входящий created_by игнорируем
	c.CreatedBy = userID
	if c.Status == "" {
		c.Status = models.ComplaintStatusPending
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return err
	}

	if s.alerts != nil {
		go s.alerts.ComplaintFiled(c)
	}
	return nil
}

func (s *complaintService) ListByUser(ctx context.Context, userID, page, pageSize int) ([]*models.Complaint, error) {
	ctx, cancel := storeCtx(ctx)
	defer cancel()

	limit, offset := pageWindow(page, pageSize)
	out, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, apperrors.E(apperrors.KindNotFound, "no complaints found")
	}
	return out, nil
}

func (s *complaintService) GetForUser(ctx context.Context, userID, id int) (*models.Complaint, error) {
	ctx, cancel := storeCtx(ctx)
	defer cancel()
	return s.repo.GetByIDForUser(ctx, userID, id)
}

func (s *complaintService) Get(ctx context.Context, id int) (*models.Complaint, error) {
	ctx, cancel := storeCtx(ctx)
	defer cancel()
	return s.repo.GetByID(ctx, id)
}

func (s *complaintService) List(ctx context.Context, status string, userID, page, pageSize int) ([]*models.Complaint, error) {
	ctx, cancel := storeCtx(ctx)
	defer cancel()

	limit, offset := pageWindow(page, pageSize)
	out, err := s.repo.List(ctx, status, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, apperrors.E(apperrors.KindNotFound, "no complaints found")
	}
	return out, nil
}

func (s *complaintService) UpdateStatus(ctx context.Context, id int, status string) (*models.Complaint, error) {
	ctx, cancel := storeCtx(ctx)
	defer cancel()

	return s.repo.UpdateStatus(ctx, id, status)
}

func pageWindow(page, pageSize int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	return pageSize, (page - 1) * pageSize
}
