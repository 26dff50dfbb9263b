package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"gearbook-backend/internal/domain"
	"gearbook-backend/internal/repository"
)

type sectionRepository struct {
	q DBTX
}

func NewSectionRepository(q DBTX) repository.SectionRepository {
	return &sectionRepository{q: q}
}

const sectionColumns = `id, name, description, parent_id, allowed_days_out, allowed_days_in,
	refund_deadline_hours, is_system, created_on, updated_on`

func scanSection(row interface{ Scan(...any) error }) (*domain.Section, error) {
	s := &domain.Section{}
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.ParentID,
		(*pq.Int32Array)(&s.AllowedDaysOut), (*pq.Int32Array)(&s.AllowedDaysIn),
		&s.RefundDeadlineHours, &s.IsSystem, &s.CreatedOn, &s.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *sectionRepository) Create(ctx context.Context, s *domain.Section) error {
	query := `INSERT INTO sections (name, description, parent_id, allowed_days_out, allowed_days_in, refund_deadline_hours, is_system)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_on, updated_on`
	return r.q.QueryRowContext(ctx, query, s.Name, s.Description, s.ParentID,
		pq.Int32Array(s.AllowedDaysOut), pq.Int32Array(s.AllowedDaysIn), s.RefundDeadlineHours, s.IsSystem).
		Scan(&s.ID, &s.CreatedOn, &s.UpdatedOn)
}

func (r *sectionRepository) GetByID(ctx context.Context, id int32) (*domain.Section, error) {
	query := `SELECT ` + sectionColumns + ` FROM sections WHERE id = $1`
	s, err := scanSection(r.q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundError("section %d not found", id)
	}
	return s, err
}

func (r *sectionRepository) List(ctx context.Context) ([]domain.Section, error) {
	query := `SELECT ` + sectionColumns + ` FROM sections ORDER BY name`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []domain.Section
	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		sections = append(sections, *s)
	}
	return sections, rows.Err()
}

func (r *sectionRepository) Update(ctx context.Context, s *domain.Section) error {
	query := `UPDATE sections SET name = $1, description = $2, allowed_days_out = $3, allowed_days_in = $4,
	          refund_deadline_hours = $5, updated_on = NOW() WHERE id = $6`
	_, err := r.q.ExecContext(ctx, query, s.Name, s.Description,
		pq.Int32Array(s.AllowedDaysOut), pq.Int32Array(s.AllowedDaysIn), s.RefundDeadlineHours, s.ID)
	return err
}

func (r *sectionRepository) Delete(ctx context.Context, id int32) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM sections WHERE id = $1`, id)
	return err
}

func (r *sectionRepository) CreateClosure(ctx context.Context, c *domain.SectionClosure) error {
	query := `INSERT INTO section_closures (section_id, start_date, end_date, reason)
	          VALUES ($1, $2, $3, $4) RETURNING id, created_on`
	return r.q.QueryRowContext(ctx, query, c.SectionID, c.StartDate, c.EndDate, c.Reason).
		Scan(&c.ID, &c.CreatedOn)
}

func (r *sectionRepository) DeleteClosure(ctx context.Context, id int32) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM section_closures WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.NotFoundError("closure %d not found", id)
	}
	return nil
}

func (r *sectionRepository) ClosuresInRange(ctx context.Context, sectionID int32, start, end time.Time) ([]domain.SectionClosure, error) {
	query := `SELECT id, section_id, start_date, end_date, COALESCE(reason, ''), created_on
	          FROM section_closures
	          WHERE section_id = $1 AND start_date <= $3 AND end_date >= $2
	          ORDER BY start_date`
	rows, err := r.q.QueryContext(ctx, query, sectionID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var closures []domain.SectionClosure
	for rows.Next() {
		var c domain.SectionClosure
		if err := rows.Scan(&c.ID, &c.SectionID, &c.StartDate, &c.EndDate, &c.Reason, &c.CreatedOn); err != nil {
			return nil, err
		}
		closures = append(closures, c)
	}
	return closures, rows.Err()
}

func (r *sectionRepository) DeleteClosuresEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.q.ExecContext(ctx, `DELETE FROM section_closures WHERE end_date < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
