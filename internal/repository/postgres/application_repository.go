package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"ceoacademy/internal/common"
	"ceoacademy/internal/domain/application"
)

type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

const applicationColumns = `a.id, a.name, a.phone, a.birth_date, a.gender, a.company_position, a.address,
	a.interests, a.golf, a.referrer, a.tax_invoice, a.generation, a.status, a.admin_notes,
	a.submitted_at, a.reviewed_at, a.reviewed_by, r.id, r.name, r.email`

const applicationFrom = ` FROM applications a LEFT JOIN reviewers r ON r.id = a.reviewed_by`

func (r *ApplicationRepository) Create(ctx context.Context, app application.Application) (*application.Application, error) {
	app.ID = common.NewUUID()
	app.SubmittedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `INSERT INTO applications (id, name, phone, birth_date, gender, company_position, address, interests, golf, referrer, tax_invoice, generation, status, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		app.ID, app.Name, app.Phone, nullString(app.BirthDate), nullString(app.Gender), app.CompanyPosition,
		nullString(app.Address), pq.Array(app.Interests), app.Golf, nullString(app.Referrer), app.TaxInvoice,
		app.Generation, app.Status, app.SubmittedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.NewError(common.CodeConflict, "phone has already applied for this generation", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to create application", err)
	}
	return &app, nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id common.UUID) (*application.Application, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+applicationColumns+applicationFrom+` WHERE a.id = $1`, id)
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "application not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load application", err)
	}
	return app, nil
}

func (r *ApplicationRepository) FindByPhoneAndGeneration(ctx context.Context, phone string, generation int) (*application.Application, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+applicationColumns+applicationFrom+` WHERE a.phone = $1 AND a.generation = $2`, phone, generation)
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "application not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load application", err)
	}
	return app, nil
}

func (r *ApplicationRepository) List(ctx context.Context, filter application.ListFilter, limit, offset int) ([]application.Application, int, error) {
	where, args := filterWhere(filter)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM applications a`+where, args...).Scan(&total); err != nil {
		return nil, 0, common.NewError(common.CodeInternal, "failed to count applications", err)
	}

	query := `SELECT ` + applicationColumns + applicationFrom + where +
		fmt.Sprintf(` ORDER BY a.submitted_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, common.NewError(common.CodeInternal, "failed to list applications", err)
	}
	defer rows.Close()

	items := make([]application.Application, 0, limit)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, 0, common.NewError(common.CodeInternal, "failed to scan application", err)
		}
		items = append(items, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, common.NewError(common.CodeInternal, "failed to list applications", err)
	}
	return items, total, nil
}

// UpdateStatus writes the transition in a single statement so concurrent
// readers never observe a status without its reviewed_at stamp. Notes and
// reviewer are only overwritten when provided.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id common.UUID, update application.StatusUpdate) (*application.Application, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE applications
		SET status = $1, reviewed_at = $2, admin_notes = COALESCE($3, admin_notes), reviewed_by = COALESCE($4, reviewed_by)
		WHERE id = $5`,
		update.Status, time.Now().UTC(), update.AdminNotes, update.ReviewedBy, id)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to update application", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err == nil && rowsAffected == 0 {
		return nil, common.NewError(common.CodeNotFound, "application not found", sql.ErrNoRows)
	}
	return r.GetByID(ctx, id)
}

func (r *ApplicationRepository) Delete(ctx context.Context, id common.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to delete application", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err == nil && rowsAffected == 0 {
		return common.NewError(common.CodeNotFound, "application not found", sql.ErrNoRows)
	}
	return nil
}

func (r *ApplicationRepository) CountByStatus(ctx context.Context, generation *int) (map[application.Status]int, error) {
	where, args := filterWhere(application.ListFilter{Generation: generation})
	rows, err := r.db.QueryContext(ctx, `SELECT a.status, COUNT(*) FROM applications a`+where+` GROUP BY a.status`, args...)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to count by status", err)
	}
	defer rows.Close()

	counts := make(map[application.Status]int)
	for rows.Next() {
		var status application.Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan status count", err)
		}
		counts[application.NormalizeStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to count by status", err)
	}
	return counts, nil
}

func (r *ApplicationRepository) CountByGeneration(ctx context.Context, generation *int) ([]application.GenerationCount, error) {
	where, args := filterWhere(application.ListFilter{Generation: generation})
	rows, err := r.db.QueryContext(ctx, `SELECT a.generation, COUNT(*) FROM applications a`+where+` GROUP BY a.generation ORDER BY a.generation DESC`, args...)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to count by generation", err)
	}
	defer rows.Close()

	var counts []application.GenerationCount
	for rows.Next() {
		var entry application.GenerationCount
		if err := rows.Scan(&entry.Generation, &entry.Count); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan generation count", err)
		}
		counts = append(counts, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to count by generation", err)
	}
	return counts, nil
}

func (r *ApplicationRepository) MonthlyCounts(ctx context.Context, since time.Time, generation *int) ([]application.MonthCount, error) {
	args := []any{since}
	query := `SELECT date_trunc('month', a.submitted_at) AS month, COUNT(*) FROM applications a WHERE a.submitted_at >= $1`
	if generation != nil {
		args = append(args, *generation)
		query += fmt.Sprintf(` AND a.generation = $%d`, len(args))
	}
	query += ` GROUP BY 1 ORDER BY 1 DESC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to load monthly trend", err)
	}
	defer rows.Close()

	var counts []application.MonthCount
	for rows.Next() {
		var entry application.MonthCount
		if err := rows.Scan(&entry.Month, &entry.Count); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan monthly trend", err)
		}
		counts = append(counts, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to load monthly trend", err)
	}
	return counts, nil
}

func (r *ApplicationRepository) RecentStatuses(ctx context.Context, limit int, generation *int) ([]application.Status, error) {
	where, args := filterWhere(application.ListFilter{Generation: generation})
	query := `SELECT a.status FROM applications a` + where +
		fmt.Sprintf(` ORDER BY a.submitted_at DESC LIMIT $%d`, len(args)+1)
	rows, err := r.db.QueryContext(ctx, query, append(args, limit)...)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to load recent statuses", err)
	}
	defer rows.Close()

	var statuses []application.Status
	for rows.Next() {
		var status application.Status
		if err := rows.Scan(&status); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan status", err)
		}
		statuses = append(statuses, application.NormalizeStatus(status))
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to load recent statuses", err)
	}
	return statuses, nil
}

func filterWhere(filter application.ListFilter) (string, []any) {
	var clauses []string
	var args []any
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("a.status = $%d", len(args)))
	}
	if filter.Generation != nil {
		args = append(args, *filter.Generation)
		clauses = append(clauses, fmt.Sprintf("a.generation = $%d", len(args)))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*application.Application, error) {
	var app application.Application
	var birthDate, gender, address, referrer, adminNotes sql.NullString
	var reviewedAt sql.NullTime
	var reviewedBy, reviewerID, reviewerName, reviewerEmail sql.NullString
	if err := row.Scan(&app.ID, &app.Name, &app.Phone, &birthDate, &gender, &app.CompanyPosition, &address,
		pq.Array(&app.Interests), &app.Golf, &referrer, &app.TaxInvoice, &app.Generation, &app.Status, &adminNotes,
		&app.SubmittedAt, &reviewedAt, &reviewedBy, &reviewerID, &reviewerName, &reviewerEmail); err != nil {
		return nil, err
	}
	app.BirthDate = birthDate.String
	app.Gender = gender.String
	app.Address = address.String
	app.Referrer = referrer.String
	if adminNotes.Valid {
		app.AdminNotes = &adminNotes.String
	}
	if reviewedAt.Valid {
		at := reviewedAt.Time
		app.ReviewedAt = &at
	}
	if reviewedBy.Valid {
		id := common.UUID(reviewedBy.String)
		app.ReviewedBy = &id
	}
	if reviewerID.Valid {
		app.Reviewer = &application.Reviewer{
			ID:    common.UUID(reviewerID.String),
			Name:  reviewerName.String,
			Email: reviewerEmail.String,
		}
	}
	app.Status = application.NormalizeStatus(app.Status)
	return &app, nil
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

// isUniqueViolation matches SQLSTATE 23505 from either postgres driver: the
// pool runs on pgx, but lib/pq remains in play for array handling.
func isUniqueViolation(err error) bool {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == "23505"
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
