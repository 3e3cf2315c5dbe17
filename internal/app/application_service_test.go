package app

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"ceoacademy/internal/common"
	"ceoacademy/internal/domain/application"
)

type fakeApplicationRepo struct {
	mu    sync.Mutex
	seq   int
	items map[common.UUID]*application.Application
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{items: make(map[common.UUID]*application.Application)}
}

var fakeEpoch = time.Date(2025, time.September, 1, 12, 0, 0, 0, time.UTC)

func (r *fakeApplicationRepo) Create(ctx context.Context, app application.Application) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.Phone == app.Phone && existing.Generation == app.Generation {
			return nil, common.NewError(common.CodeConflict, "phone has already applied for this generation", nil)
		}
	}
	app.ID = common.NewUUID()
	app.SubmittedAt = fakeEpoch.Add(time.Duration(r.seq) * time.Minute)
	r.seq++
	stored := app
	r.items[app.ID] = &stored
	return cloneApplication(&stored), nil
}

func (r *fakeApplicationRepo) GetByID(ctx context.Context, id common.UUID) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := r.items[id]
	if stored == nil {
		return nil, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	return cloneApplication(stored), nil
}

func (r *fakeApplicationRepo) FindByPhoneAndGeneration(ctx context.Context, phone string, generation int) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.items {
		if stored.Phone == phone && stored.Generation == generation {
			return cloneApplication(stored), nil
		}
	}
	return nil, common.NewError(common.CodeNotFound, "application not found", nil)
}

func (r *fakeApplicationRepo) List(ctx context.Context, filter application.ListFilter, limit, offset int) ([]application.Application, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := r.matchLocked(filter)
	total := len(matched)
	if offset >= len(matched) {
		return []application.Application{}, total, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	items := make([]application.Application, 0, len(matched))
	for _, stored := range matched {
		items = append(items, *cloneApplication(stored))
	}
	return items, total, nil
}

func (r *fakeApplicationRepo) UpdateStatus(ctx context.Context, id common.UUID, update application.StatusUpdate) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := r.items[id]
	if stored == nil {
		return nil, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	now := time.Now().UTC()
	stored.Status = update.Status
	stored.ReviewedAt = &now
	if update.AdminNotes != nil {
		stored.AdminNotes = update.AdminNotes
	}
	if update.ReviewedBy != nil {
		stored.ReviewedBy = update.ReviewedBy
	}
	return cloneApplication(stored), nil
}

func (r *fakeApplicationRepo) Delete(ctx context.Context, id common.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.items[id] == nil {
		return common.NewError(common.CodeNotFound, "application not found", nil)
	}
	delete(r.items, id)
	return nil
}

func (r *fakeApplicationRepo) CountByStatus(ctx context.Context, generation *int) (map[application.Status]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[application.Status]int)
	for _, stored := range r.matchLocked(application.ListFilter{Generation: generation}) {
		counts[stored.Status]++
	}
	return counts, nil
}

func (r *fakeApplicationRepo) CountByGeneration(ctx context.Context, generation *int) ([]application.GenerationCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byGeneration := make(map[int]int)
	for _, stored := range r.matchLocked(application.ListFilter{Generation: generation}) {
		byGeneration[stored.Generation]++
	}
	counts := make([]application.GenerationCount, 0, len(byGeneration))
	for gen, count := range byGeneration {
		counts = append(counts, application.GenerationCount{Generation: gen, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Generation > counts[j].Generation })
	return counts, nil
}

func (r *fakeApplicationRepo) MonthlyCounts(ctx context.Context, since time.Time, generation *int) ([]application.MonthCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byMonth := make(map[time.Time]int)
	for _, stored := range r.matchLocked(application.ListFilter{Generation: generation}) {
		if stored.SubmittedAt.Before(since) {
			continue
		}
		month := time.Date(stored.SubmittedAt.Year(), stored.SubmittedAt.Month(), 1, 0, 0, 0, 0, time.UTC)
		byMonth[month]++
	}
	counts := make([]application.MonthCount, 0, len(byMonth))
	for month, count := range byMonth {
		counts = append(counts, application.MonthCount{Month: month, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Month.After(counts[j].Month) })
	return counts, nil
}

func (r *fakeApplicationRepo) RecentStatuses(ctx context.Context, limit int, generation *int) ([]application.Status, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := r.matchLocked(application.ListFilter{Generation: generation})
	if limit < len(matched) {
		matched = matched[:limit]
	}
	statuses := make([]application.Status, 0, len(matched))
	for _, stored := range matched {
		statuses = append(statuses, stored.Status)
	}
	return statuses, nil
}

// matchLocked returns matching records ordered most-recent-first.
func (r *fakeApplicationRepo) matchLocked(filter application.ListFilter) []*application.Application {
	var matched []*application.Application
	for _, stored := range r.items {
		if filter.Status != nil && stored.Status != *filter.Status {
			continue
		}
		if filter.Generation != nil && stored.Generation != *filter.Generation {
			continue
		}
		matched = append(matched, stored)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].SubmittedAt.After(matched[j].SubmittedAt) })
	return matched
}

func cloneApplication(app *application.Application) *application.Application {
	clone := *app
	clone.Interests = append([]string(nil), app.Interests...)
	return &clone
}

type fakeReviewerRepo struct {
	reviewers map[common.UUID]*application.Reviewer
}

func newFakeReviewerRepo(reviewers ...application.Reviewer) *fakeReviewerRepo {
	repo := &fakeReviewerRepo{reviewers: make(map[common.UUID]*application.Reviewer)}
	for i := range reviewers {
		repo.reviewers[reviewers[i].ID] = &reviewers[i]
	}
	return repo
}

func (r *fakeReviewerRepo) GetByID(ctx context.Context, id common.UUID) (*application.Reviewer, error) {
	reviewer := r.reviewers[id]
	if reviewer == nil {
		return nil, common.NewError(common.CodeNotFound, "reviewer not found", nil)
	}
	return reviewer, nil
}

func validSubmission() Submission {
	return Submission{
		Name:            "홍길동",
		Phone:           "010-1234-5678",
		CompanyPosition: "Acme / CEO",
		Interests:       []string{"인문학"},
		Golf:            application.GolfYes,
		TaxInvoice:      application.TaxInvoiceIssue,
		Generation:      3,
	}
}

func newService(repo *fakeApplicationRepo, reviewers *fakeReviewerRepo) *ApplicationService {
	if reviewers == nil {
		reviewers = newFakeReviewerRepo()
	}
	return NewApplicationService(repo, reviewers, nil)
}

func TestSubmit_CreatesPendingApplication(t *testing.T) {
	repo := newFakeApplicationRepo()
	service := newService(repo, nil)

	created, err := service.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected id to be assigned")
	}
	if created.Status != application.StatusPending {
		t.Fatalf("expected status PENDING, got %s", created.Status)
	}
	if created.SubmittedAt.IsZero() {
		t.Fatal("expected submittedAt to be set")
	}

	stored, err := service.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("expected stored application, got %v", err)
	}
	if stored.ReviewedAt != nil || stored.ReviewedBy != nil {
		t.Fatal("expected review fields to be null before the first transition")
	}
}

func TestSubmit_ReportsAllInvalidFieldsAtOnce(t *testing.T) {
	repo := newFakeApplicationRepo()
	service := newService(repo, nil)

	_, err := service.Submit(context.Background(), Submission{})
	if !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields := common.FieldsOf(err)
	for _, field := range []string{"name", "phone", "companyPosition", "interests", "golf", "taxInvoice", "generation"} {
		if fields[field] == "" {
			t.Fatalf("expected violation for field %q, got %v", field, fields)
		}
	}
	if len(repo.items) != 0 {
		t.Fatalf("expected no record persisted, got %d", len(repo.items))
	}
}

func TestSubmit_RejectsMalformedPhone(t *testing.T) {
	repo := newFakeApplicationRepo()
	service := newService(repo, nil)

	for _, phone := range []string{"011-1234-5678", "010-123-5678", "010-12345678", "01012345678", "010-1234-567a"} {
		sub := validSubmission()
		sub.Phone = phone
		_, err := service.Submit(context.Background(), sub)
		if !common.Is(err, common.CodeValidation) {
			t.Fatalf("phone %q: expected validation error, got %v", phone, err)
		}
		if common.FieldsOf(err)["phone"] == "" {
			t.Fatalf("phone %q: expected phone field violation", phone)
		}
	}
	if len(repo.items) != 0 {
		t.Fatalf("expected no record persisted, got %d", len(repo.items))
	}
}

func TestSubmit_RejectsUnknownChoices(t *testing.T) {
	repo := newFakeApplicationRepo()
	service := newService(repo, nil)

	sub := validSubmission()
	sub.Interests = []string{"낚시"}
	sub.Golf = "maybe"
	sub.TaxInvoice = "unknown"
	_, err := service.Submit(context.Background(), sub)
	fields := common.FieldsOf(err)
	if fields["interests"] == "" || fields["golf"] == "" || fields["taxInvoice"] == "" {
		t.Fatalf("expected interests, golf and taxInvoice violations, got %v", fields)
	}
}

func TestSubmit_DuplicatePhoneAndGeneration(t *testing.T) {
	repo := newFakeApplicationRepo()
	service := newService(repo, nil)

	if _, err := service.Submit(context.Background(), validSubmission()); err != nil {
		t.Fatalf("expected first submission to succeed, got %v", err)
	}
	_, err := service.Submit(context.Background(), validSubmission())
	if !common.Is(err, common.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(repo.items) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(repo.items))
	}

	other := validSubmission()
	other.Generation = 4
	if _, err := service.Submit(context.Background(), other); err != nil {
		t.Fatalf("expected same phone in another generation to succeed, got %v", err)
	}
}

func TestUpdateStatus_StampsReviewFields(t *testing.T) {
	repo := newFakeApplicationRepo()
	reviewerID := common.NewUUID()
	reviewers := newFakeReviewerRepo(application.Reviewer{ID: reviewerID, Name: "Admin", Email: "admin@example.com"})
	service := newService(repo, reviewers)

	created, err := service.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("expected submission to succeed, got %v", err)
	}

	notes := "ok"
	updated, err := service.UpdateStatus(context.Background(), created.ID, application.StatusApproved, &notes, &reviewerID)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if updated.Status != application.StatusApproved {
		t.Fatalf("expected APPROVED, got %s", updated.Status)
	}
	if updated.AdminNotes == nil || *updated.AdminNotes != "ok" {
		t.Fatalf("expected admin notes %q, got %v", "ok", updated.AdminNotes)
	}
	if updated.ReviewedAt == nil {
		t.Fatal("expected reviewedAt to be stamped")
	}
	if updated.ReviewedBy == nil || *updated.ReviewedBy != reviewerID {
		t.Fatalf("expected reviewer %s, got %v", reviewerID, updated.ReviewedBy)
	}
}

func TestUpdateStatus_LowercaseInputIsNormalized(t *testing.T) {
	repo := newFakeApplicationRepo()
	service := newService(repo, nil)

	created, err := service.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("expected submission to succeed, got %v", err)
	}
	updated, err := service.UpdateStatus(context.Background(), created.ID, application.Status("reviewing"), nil, nil)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if updated.Status != application.StatusReviewing {
		t.Fatalf("expected REVIEWING, got %s", updated.Status)
	}
}

func TestUpdateStatus_UnknownStatusFailsBeforeStore(t *testing.T) {
	repo := newFakeApplicationRepo()
	service := newService(repo, nil)

	_, err := service.UpdateStatus(context.Background(), common.NewUUID(), application.Status("SHIPPED"), nil, nil)
	if !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateStatus_NotFound(t *testing.T) {
	repo := newFakeApplicationRepo()
	service := newService(repo, nil)

	_, err := service.UpdateStatus(context.Background(), common.NewUUID(), application.StatusApproved, nil, nil)
	if !common.Is(err, common.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(repo.items) != 0 {
		t.Fatal("expected no record created as a side effect")
	}
}

func TestUpdateStatus_UnknownReviewer(t *testing.T) {
	repo := newFakeApplicationRepo()
	service := newService(repo, nil)

	created, err := service.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("expected submission to succeed, got %v", err)
	}
	unknown := common.NewUUID()
	_, err = service.UpdateStatus(context.Background(), created.ID, application.StatusApproved, nil, &unknown)
	if !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateStatus_AnyTransitionAllowed(t *testing.T) {
	repo := newFakeApplicationRepo()
	service := newService(repo, nil)

	created, err := service.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("expected submission to succeed, got %v", err)
	}
	sequence := []application.Status{
		application.StatusApproved,
		application.StatusPending,
		application.StatusRejected,
		application.StatusWaitlist,
		application.StatusReviewing,
	}
	for _, status := range sequence {
		updated, err := service.UpdateStatus(context.Background(), created.ID, status, nil, nil)
		if err != nil {
			t.Fatalf("transition to %s: expected nil error, got %v", status, err)
		}
		if updated.Status != status {
			t.Fatalf("expected %s, got %s", status, updated.Status)
		}
	}
}

func TestDelete_RemovesRecord(t *testing.T) {
	repo := newFakeApplicationRepo()
	service := newService(repo, nil)

	created, err := service.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("expected submission to succeed, got %v", err)
	}
	if err := service.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if _, err := service.Get(context.Background(), created.ID); !common.Is(err, common.CodeNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := service.Delete(context.Background(), created.ID); !common.Is(err, common.CodeNotFound) {
		t.Fatalf("expected not found for repeated delete, got %v", err)
	}
}

func TestList_EmptyStore(t *testing.T) {
	service := newService(newFakeApplicationRepo(), nil)

	items, total, err := service.List(context.Background(), application.ListFilter{}, 1, 10)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if total != 0 || len(items) != 0 {
		t.Fatalf("expected empty page and zero total, got %d items, total %d", len(items), total)
	}
}

func TestList_OrderAndPagination(t *testing.T) {
	repo := newFakeApplicationRepo()
	service := newService(repo, nil)

	generations := []int{2, 3, 4}
	for i := 0; i < 12; i++ {
		sub := validSubmission()
		sub.Phone = "010-1234-" + string(rune('0'+i/10)) + string(rune('0'+i%10)) + "00"
		sub.Generation = generations[i%len(generations)]
		if _, err := service.Submit(context.Background(), sub); err != nil {
			t.Fatalf("submission %d: expected nil error, got %v", i, err)
		}
	}

	pageOne, total, err := service.List(context.Background(), application.ListFilter{}, 1, 5)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if total != 12 {
		t.Fatalf("expected total 12, got %d", total)
	}
	if len(pageOne) != 5 {
		t.Fatalf("expected 5 items, got %d", len(pageOne))
	}
	for i := 1; i < len(pageOne); i++ {
		if pageOne[i].SubmittedAt.After(pageOne[i-1].SubmittedAt) {
			t.Fatal("expected most-recent-first ordering")
		}
	}

	pageTwo, _, err := service.List(context.Background(), application.ListFilter{}, 2, 5)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(pageTwo) != 5 {
		t.Fatalf("expected 5 items on page 2, got %d", len(pageTwo))
	}
	if !pageTwo[0].SubmittedAt.Before(pageOne[len(pageOne)-1].SubmittedAt) {
		t.Fatal("expected page 2 to continue after page 1")
	}

	lastPage, _, err := service.List(context.Background(), application.ListFilter{}, 3, 5)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(lastPage) != 2 {
		t.Fatalf("expected 2 items on the last page, got %d", len(lastPage))
	}
}

func TestList_Filters(t *testing.T) {
	repo := newFakeApplicationRepo()
	service := newService(repo, nil)

	first, err := service.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("expected submission to succeed, got %v", err)
	}
	other := validSubmission()
	other.Phone = "010-9999-0000"
	other.Generation = 4
	if _, err := service.Submit(context.Background(), other); err != nil {
		t.Fatalf("expected submission to succeed, got %v", err)
	}
	if _, err := service.UpdateStatus(context.Background(), first.ID, application.StatusApproved, nil, nil); err != nil {
		t.Fatalf("expected transition to succeed, got %v", err)
	}

	approved := application.StatusApproved
	items, total, err := service.List(context.Background(), application.ListFilter{Status: &approved}, 1, 10)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].ID != first.ID {
		t.Fatalf("expected only the approved application, got %d items, total %d", len(items), total)
	}

	generation := 4
	items, total, err = service.List(context.Background(), application.ListFilter{Generation: &generation}, 1, 10)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].Generation != 4 {
		t.Fatalf("expected only the generation 4 application, got %d items, total %d", len(items), total)
	}
}
