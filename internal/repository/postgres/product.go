package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gearbook-backend/internal/domain"
	"gearbook-backend/internal/repository"
)

// productLockClass namespaces the advisory locks used to serialize
// availability-check-then-insert sequences per product.
const productLockClass = 4201

type productRepository struct {
	q DBTX
}

func NewProductRepository(q DBTX) repository.ProductRepository {
	return &productRepository{q: q}
}

const productColumns = `id, name, reference, description, section_id, subsection_id, price_per_period,
	credit_period, min_duration, max_duration, status, last_condition, last_movement_at, created_on, updated_on`

func scanProduct(row interface{ Scan(...any) error }) (*domain.Product, error) {
	p := &domain.Product{}
	err := row.Scan(&p.ID, &p.Name, &p.Reference, &p.Description, &p.SectionID, &p.SubsectionID,
		&p.PricePerPeriod, &p.CreditPeriod, &p.MinDuration, &p.MaxDuration, &p.Status,
		&p.LastCondition, &p.LastMovementAt, &p.CreatedOn, &p.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *productRepository) Create(ctx context.Context, p *domain.Product) error {
	query := `INSERT INTO products (name, reference, description, section_id, subsection_id, price_per_period,
	          credit_period, min_duration, max_duration, status, last_condition)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id, created_on, updated_on`
	return r.q.QueryRowContext(ctx, query, p.Name, p.Reference, p.Description, p.SectionID, p.SubsectionID,
		p.PricePerPeriod, p.CreditPeriod, p.MinDuration, p.MaxDuration, p.Status, p.LastCondition).
		Scan(&p.ID, &p.CreatedOn, &p.UpdatedOn)
}

func (r *productRepository) GetByID(ctx context.Context, id int32) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundError("product %d not found", id)
	}
	return p, err
}

func (r *productRepository) Update(ctx context.Context, p *domain.Product) error {
	query := `UPDATE products SET name = $1, reference = $2, description = $3, section_id = $4,
	          subsection_id = $5, price_per_period = $6, credit_period = $7, min_duration = $8,
	          max_duration = $9, status = $10, updated_on = NOW() WHERE id = $11`
	_, err := r.q.ExecContext(ctx, query, p.Name, p.Reference, p.Description, p.SectionID, p.SubsectionID,
		p.PricePerPeriod, p.CreditPeriod, p.MinDuration, p.MaxDuration, p.Status, p.ID)
	return err
}

func (r *productRepository) UpdateStatus(ctx context.Context, id int32, status domain.ProductStatus) error {
	query := `UPDATE products SET status = $1, updated_on = NOW() WHERE id = $2`
	_, err := r.q.ExecContext(ctx, query, status, id)
	return err
}

func (r *productRepository) ListBySection(ctx context.Context, sectionID int32, page, pageSize int32) ([]domain.Product, int32, error) {
	var count int32
	countQuery := `SELECT count(*) FROM products WHERE section_id = $1 AND status <> 'ARCHIVED'`
	if err := r.q.QueryRowContext(ctx, countQuery, sectionID).Scan(&count); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	query := `SELECT ` + productColumns + ` FROM products
	          WHERE section_id = $1 AND status <> 'ARCHIVED' ORDER BY name LIMIT $2 OFFSET $3`
	rows, err := r.q.QueryContext(ctx, query, sectionID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, *p)
	}
	return products, count, rows.Err()
}

func (r *productRepository) SetLastMovement(ctx context.Context, id int32, condition domain.ProductCondition, at time.Time) error {
	query := `UPDATE products SET last_condition = $1, last_movement_at = $2, updated_on = NOW() WHERE id = $3`
	_, err := r.q.ExecContext(ctx, query, condition, at, id)
	return err
}

func (r *productRepository) Lock(ctx context.Context, id int32) error {
	_, err := r.q.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, productLockClass, id)
	return err
}
