package postgres

import (
	"context"
	"database/sql"
	"errors"

	"gearbook-backend/internal/domain"
	"gearbook-backend/internal/repository"
)

type movementRepository struct {
	q DBTX
}

func NewMovementRepository(q DBTX) repository.MovementRepository {
	return &movementRepository{q: q}
}

// Create writes the movement and its photo rows. Callers run it inside
// ExecTx so the movement, its photos and the product condition update
// commit together.
func (r *movementRepository) Create(ctx context.Context, m *domain.ProductMovement) error {
	query := `INSERT INTO product_movements (product_id, reservation_id, type, condition, notes, performed_by)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, performed_at`
	err := r.q.QueryRowContext(ctx, query, m.ProductID, m.ReservationID, m.Type, m.Condition,
		m.Notes, m.PerformedBy).Scan(&m.ID, &m.PerformedAt)
	if err != nil {
		return err
	}

	photoQuery := `INSERT INTO movement_photos (movement_id, key, filename, mime_type, size, sort_order)
	               VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	for i := range m.Photos {
		p := &m.Photos[i]
		p.MovementID = m.ID
		p.SortOrder = int32(i)
		if err := r.q.QueryRowContext(ctx, photoQuery, m.ID, p.Key, p.Filename, p.MimeType, p.Size, p.SortOrder).
			Scan(&p.ID); err != nil {
			return err
		}
	}
	return nil
}

const movementColumns = `id, product_id, reservation_id, type, condition, COALESCE(notes, ''), performed_by, performed_at`

func scanMovement(row interface{ Scan(...any) error }) (*domain.ProductMovement, error) {
	m := &domain.ProductMovement{}
	err := row.Scan(&m.ID, &m.ProductID, &m.ReservationID, &m.Type, &m.Condition,
		&m.Notes, &m.PerformedBy, &m.PerformedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *movementRepository) GetByID(ctx context.Context, id int32) (*domain.ProductMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM product_movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundError("movement %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadPhotos(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *movementRepository) loadPhotos(ctx context.Context, m *domain.ProductMovement) error {
	query := `SELECT id, movement_id, key, filename, mime_type, size, sort_order
	          FROM movement_photos WHERE movement_id = $1 ORDER BY sort_order`
	rows, err := r.q.QueryContext(ctx, query, m.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.MovementPhoto
		if err := rows.Scan(&p.ID, &p.MovementID, &p.Key, &p.Filename, &p.MimeType, &p.Size, &p.SortOrder); err != nil {
			return err
		}
		m.Photos = append(m.Photos, p)
	}
	return rows.Err()
}

func (r *movementRepository) ListByReservation(ctx context.Context, reservationID int32) ([]domain.ProductMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM product_movements WHERE reservation_id = $1 ORDER BY performed_at`
	rows, err := r.q.QueryContext(ctx, query, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []domain.ProductMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		movements = append(movements, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range movements {
		if err := r.loadPhotos(ctx, &movements[i]); err != nil {
			return nil, err
		}
	}
	return movements, nil
}

func (r *movementRepository) ListByProduct(ctx context.Context, productID int32, page, pageSize int32) ([]domain.ProductMovement, int32, error) {
	var count int32
	countQuery := `SELECT count(*) FROM product_movements WHERE product_id = $1`
	if err := r.q.QueryRowContext(ctx, countQuery, productID).Scan(&count); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	query := `SELECT ` + movementColumns + ` FROM product_movements
	          WHERE product_id = $1 ORDER BY performed_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.QueryContext(ctx, query, productID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var movements []domain.ProductMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, 0, err
		}
		movements = append(movements, *m)
	}
	return movements, count, rows.Err()
}

func (r *movementRepository) CountByReservationAndType(ctx context.Context, reservationID int32, movementType domain.MovementType) (int32, error) {
	var count int32
	query := `SELECT count(*) FROM product_movements WHERE reservation_id = $1 AND type = $2`
	err := r.q.QueryRowContext(ctx, query, reservationID, movementType).Scan(&count)
	return count, err
}
