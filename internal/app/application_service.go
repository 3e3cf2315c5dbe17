package app

import (
	"context"
	"fmt"
	"strings"

	"ceoacademy/internal/common"
	"ceoacademy/internal/domain/application"
)

type Logger interface {
	Info(msg string)
	Error(msg string)
}

// Page-size bounds shared with the HTTP layer so the pagination envelope
// always reflects the page actually served.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type ApplicationService struct {
	repo      application.Repository
	reviewers application.ReviewerRepository
	logger    Logger
}

func NewApplicationService(repo application.Repository, reviewers application.ReviewerRepository, logger Logger) *ApplicationService {
	return &ApplicationService{repo: repo, reviewers: reviewers, logger: logger}
}

// Submit runs the intake pipeline: validation, duplicate guard, create.
// The repository's unique constraint on (phone, generation) is the
// authoritative guard; the lookup here only gives concurrent duplicates a
// faster answer.
func (s *ApplicationService) Submit(ctx context.Context, sub Submission) (*application.Application, error) {
	record, err := ValidateSubmission(sub)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByPhoneAndGeneration(ctx, record.Phone, record.Generation); err == nil {
		return nil, common.NewError(common.CodeConflict, "phone has already applied for this generation", nil)
	} else if !common.Is(err, common.CodeNotFound) {
		return nil, err
	}
	record.Status = application.StatusPending
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	s.logInfo(fmt.Sprintf("application %s submitted for generation %d", created.ID, created.Generation))
	return created, nil
}

func (s *ApplicationService) Get(ctx context.Context, id common.UUID) (*application.Application, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns the requested page ordered most-recent-submission-first plus
// the total match count. Page is 1-based; out-of-range inputs are clamped.
func (s *ApplicationService) List(ctx context.Context, filter application.ListFilter, page, pageSize int) ([]application.Application, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return s.repo.List(ctx, filter, pageSize, (page-1)*pageSize)
}

// UpdateStatus performs a review transition. Any known status may follow any
// other; the repository stamps reviewed_at together with the new status.
func (s *ApplicationService) UpdateStatus(ctx context.Context, id common.UUID, status application.Status, notes *string, reviewerID *common.UUID) (*application.Application, error) {
	next := application.NormalizeStatus(status)
	if !application.IsKnownStatus(next) {
		return nil, common.NewValidationError("invalid status", map[string]string{
			"status": "status must be " + knownStatusList(),
		})
	}
	if reviewerID != nil {
		if _, err := s.reviewers.GetByID(ctx, *reviewerID); err != nil {
			if common.Is(err, common.CodeNotFound) {
				return nil, common.NewValidationError("invalid reviewer", map[string]string{"reviewedBy": "unknown reviewer"})
			}
			return nil, err
		}
	}
	updated, err := s.repo.UpdateStatus(ctx, id, application.StatusUpdate{
		Status:     next,
		AdminNotes: notes,
		ReviewedBy: reviewerID,
	})
	if err != nil {
		return nil, err
	}
	s.logInfo(fmt.Sprintf("application %s moved to %s", updated.ID, updated.Status))
	return updated, nil
}

func (s *ApplicationService) Delete(ctx context.Context, id common.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logInfo(fmt.Sprintf("application %s deleted", id))
	return nil
}

func knownStatusList() string {
	parts := make([]string, 0, len(application.Statuses))
	for _, status := range application.Statuses {
		parts = append(parts, string(status))
	}
	return strings.Join(parts, ", ")
}

func (s *ApplicationService) logInfo(msg string) {
	if s.logger != nil {
		s.logger.Info(msg)
	}
}
