package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"gearbook-backend/internal/domain"
	"gearbook-backend/internal/repository"
)

type reservationRepository struct {
	q DBTX
}

func NewReservationRepository(q DBTX) repository.ReservationRepository {
	return &reservationRepository{q: q}
}

const reservationColumns = `id, user_id, product_id, start_date, end_date, status, credits_charged,
	extension_count, total_extension_cost, refunded, refunded_amount, notes, admin_notes, created_on, updated_on`

func scanReservation(row interface{ Scan(...any) error }) (*domain.Reservation, error) {
	r := &domain.Reservation{}
	err := row.Scan(&r.ID, &r.UserID, &r.ProductID, &r.StartDate, &r.EndDate, &r.Status,
		&r.CreditsCharged, &r.ExtensionCount, &r.TotalExtensionCost, &r.Refunded, &r.RefundedAmount,
		&r.Notes, &r.AdminNotes, &r.CreatedOn, &r.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *reservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	query := `INSERT INTO reservations (user_id, product_id, start_date, end_date, status, credits_charged, notes)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_on, updated_on`
	err := r.q.QueryRowContext(ctx, query, res.UserID, res.ProductID, res.StartDate, res.EndDate,
		res.Status, res.CreditsCharged, res.Notes).Scan(&res.ID, &res.CreatedOn, &res.UpdatedOn)
	if err != nil {
		if isExclusionViolation(err) {
			return domain.ConflictError("reservation dates conflict with a concurrent booking")
		}
		return err
	}
	return nil
}

// isExclusionViolation detects the reservations_no_overlap constraint firing,
// which means a concurrent overlapping create won the race.
func isExclusionViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23P01"
}

func (r *reservationRepository) GetByID(ctx context.Context, id int32) (*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	res, err := scanReservation(r.q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundError("reservation %d not found", id)
	}
	return res, err
}

func (r *reservationRepository) FindOverlapping(ctx context.Context, productID int32, start, end time.Time, excludeID *int32) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
	          WHERE product_id = $1 AND status IN ('CONFIRMED', 'CHECKED_OUT')
	            AND start_date <= $3 AND end_date >= $2`
	args := []any{productID, start, end}
	if excludeID != nil {
		query += ` AND id <> $4`
		args = append(args, *excludeID)
	}
	query += ` ORDER BY start_date`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

func (r *reservationRepository) FindBlockingInMonth(ctx context.Context, productID int32, monthStart, monthEnd time.Time) ([]domain.Reservation, error) {
	return r.FindOverlapping(ctx, productID, monthStart, monthEnd, nil)
}

func (r *reservationRepository) UpdateStatus(ctx context.Context, id int32, from, to domain.ReservationStatus) (bool, error) {
	query := `UPDATE reservations SET status = $1, updated_on = NOW() WHERE id = $2 AND status = $3`
	result, err := r.q.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *reservationRepository) MarkRefunded(ctx context.Context, id int32, amount int32) error {
	query := `UPDATE reservations SET refunded = TRUE, refunded_amount = refunded_amount + $1, updated_on = NOW() WHERE id = $2`
	_, err := r.q.ExecContext(ctx, query, amount, id)
	return err
}

func (r *reservationRepository) ApplyExtension(ctx context.Context, id int32, newEnd time.Time, addedCost int32) error {
	query := `UPDATE reservations
	          SET end_date = $1, extension_count = extension_count + 1,
	              total_extension_cost = total_extension_cost + $2, updated_on = NOW()
	          WHERE id = $3`
	_, err := r.q.ExecContext(ctx, query, newEnd, addedCost, id)
	if err != nil && isExclusionViolation(err) {
		return domain.ConflictError("extension dates conflict with a concurrent booking")
	}
	return err
}

func (r *reservationRepository) UpdateAdminNotes(ctx context.Context, id int32, notes string) error {
	query := `UPDATE reservations SET admin_notes = $1, updated_on = NOW() WHERE id = $2`
	_, err := r.q.ExecContext(ctx, query, notes, id)
	return err
}

func (r *reservationRepository) ListByUser(ctx context.Context, userID int32, status string, page, pageSize int32) ([]domain.Reservation, int32, error) {
	return r.list(ctx, "user_id", userID, status, page, pageSize)
}

func (r *reservationRepository) ListByProduct(ctx context.Context, productID int32, status string, page, pageSize int32) ([]domain.Reservation, int32, error) {
	return r.list(ctx, "product_id", productID, status, page, pageSize)
}

func (r *reservationRepository) list(ctx context.Context, field string, id int32, status string, page, pageSize int32) ([]domain.Reservation, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE ` + field + ` = $1`
	args := []any{id}
	argIdx := 2
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") AS sub"
	if err := r.q.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY start_date DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *res)
	}
	return out, count, rows.Err()
}

func (r *reservationRepository) ListEndingOn(ctx context.Context, date time.Time) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
	          WHERE end_date = $1 AND status IN ('CONFIRMED', 'CHECKED_OUT') ORDER BY id`
	rows, err := r.q.QueryContext(ctx, query, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}
