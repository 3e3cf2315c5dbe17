package application

import (
	"context"
	"time"

	"ceoacademy/internal/common"
)

// ListFilter narrows List and the statistics queries. A nil field means "all".
type ListFilter struct {
	Status     *Status
	Generation *int
}

// StatusUpdate is applied atomically: the repository stamps reviewed_at
// together with the new status in a single write.
type StatusUpdate struct {
	Status     Status
	AdminNotes *string
	ReviewedBy *common.UUID
}

type GenerationCount struct {
	Generation int `json:"generation"`
	Count      int `json:"count"`
}

type MonthCount struct {
	Month time.Time `json:"month"`
	Count int       `json:"count"`
}

type Repository interface {
	Create(ctx context.Context, app Application) (*Application, error)
	GetByID(ctx context.Context, id common.UUID) (*Application, error)
	FindByPhoneAndGeneration(ctx context.Context, phone string, generation int) (*Application, error)
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]Application, int, error)
	UpdateStatus(ctx context.Context, id common.UUID, update StatusUpdate) (*Application, error)
	Delete(ctx context.Context, id common.UUID) error

	CountByStatus(ctx context.Context, generation *int) (map[Status]int, error)
	CountByGeneration(ctx context.Context, generation *int) ([]GenerationCount, error)
	MonthlyCounts(ctx context.Context, since time.Time, generation *int) ([]MonthCount, error)
	RecentStatuses(ctx context.Context, limit int, generation *int) ([]Status, error)
}

// ReviewerRepository resolves reviewer identities. Applications reference
// reviewers by id only; this lookup never implies ownership.
type ReviewerRepository interface {
	GetByID(ctx context.Context, id common.UUID) (*Reviewer, error)
}
