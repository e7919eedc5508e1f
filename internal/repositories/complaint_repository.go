package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"complaintdesk/internal/apperrors"
	"complaintdesk/internal/models"
)

type ComplaintRepository interface {
	Create(ctx context.Context, c *models.Complaint) error
	GetByID(ctx context.Context, id int) (*models.Complaint, error)
	GetByIDForUser(ctx context.Context, userID, id int) (*models.Complaint, error)
	ListByUser(ctx context.Context, userID, limit, offset int) ([]*models.Complaint, error)
	List(ctx context.Context, status string, userID, limit, offset int) ([]*models.Complaint, error)
	UpdateStatus(ctx context.Context, id int, status string) (*models.Complaint, error)
}

type complaintRepository struct {
	DB *sql.DB
}

func NewComplaintRepository(db *sql.DB) ComplaintRepository {
	return &complaintRepository{DB: db}
}

const complaintColumns = `id, title, description, categories, created_by, status, created_at, updated_at`

func (r *complaintRepository) Create(ctx context.Context, c *models.Complaint) error {
	const q = `
		INSERT INTO complaints (title, description, categories, created_by, status)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at, updated_at
	`
	err := r.DB.QueryRowContext(ctx, q,
		c.Title, c.Description, pq.Array(c.Categories), c.CreatedBy, c.Status,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return apperrors.E(apperrors.KindConflict, "complaint title already exists")
		}
		return apperrors.Wrap(apperrors.KindInternal, "complaint create", err)
	}
	return nil
}

func (r *complaintRepository) GetByID(ctx context.Context, id int) (*models.Complaint, error) {
	const q = `SELECT ` + complaintColumns + ` FROM complaints WHERE id = $1`
	return scanComplaint(r.DB.QueryRowContext(ctx, q, id))
}

func (r *complaintRepository) GetByIDForUser(ctx context.Context, userID, id int) (*models.Complaint, error) {
	const q = `SELECT ` + complaintColumns + ` FROM complaints WHERE created_by = $1 AND id = $2`
	return scanComplaint(r.DB.QueryRowContext(ctx, q, userID, id))
}

func (r *complaintRepository) ListByUser(ctx context.Context, userID, limit, offset int) ([]*models.Complaint, error) {
	const q = `
		SELECT ` + complaintColumns + `
		FROM complaints
		WHERE created_by = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, q, userID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "complaint list by user", err)
	}
	return collectComplaints(rows)
}

func (r *complaintRepository) List(ctx context.Context, status string, userID, limit, offset int) ([]*models.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE 1=1`
	args := []interface{}{}
	i := 1

	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", i)
		args = append(args, status)
		i++
	}
	if userID > 0 {
		query += fmt.Sprintf(" AND created_by = $%d", i)
		args = append(args, userID)
		i++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", i, i+1)
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "complaint list", err)
	}
	return collectComplaints(rows)
}

func (r *complaintRepository) UpdateStatus(ctx context.Context, id int, status string) (*models.Complaint, error) {
	const q = `
		UPDATE complaints
		SET status=$1, updated_at=NOW()
		WHERE id=$2
		RETURNING ` + complaintColumns
	return scanComplaint(r.DB.QueryRowContext(ctx, q, status, id))
}

func scanComplaint(row *sql.Row) (*models.Complaint, error) {
	c := &models.Complaint{}
	err := row.Scan(
		&c.ID, &c.Title, &c.Description, pq.Array(&c.Categories),
		&c.CreatedBy, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.E(apperrors.KindNotFound, "complaint not found")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "complaint scan", err)
	}
	return c, nil
}

func collectComplaints(rows *sql.Rows) ([]*models.Complaint, error) {
	defer rows.Close()

	var out []*models.Complaint
	for rows.Next() {
		c := &models.Complaint{}
		if err := rows.Scan(
			&c.ID, &c.Title, &c.Description, pq.Array(&c.Categories),
			&c.CreatedBy, &c.Status, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, apperrors.Wrap(apperrors.KindInternal, "complaint scan", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "complaint rows", err)
	}
	return out, nil
}
