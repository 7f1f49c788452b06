package notebook

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"notely/pkg/logger"
)

type Repository struct {
	DB *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{DB: db}
}

func (r *Repository) FindAll(ctx context.Context) ([]Notebook, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, title, created_at, updated_at FROM notebooks ORDER BY created_at DESC`)
	if err != nil {
		logger.Sugar.Errorf("Failed to list notebooks: %v", err)
		return nil, err
	}
	defer rows.Close()

	notebooks := []Notebook{}
	for rows.Next() {
		var n Notebook
		if err := rows.Scan(&n.ID, &n.Title, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		notebooks = append(notebooks, n)
	}
	return notebooks, rows.Err()
}

func (r *Repository) FindByID(ctx context.Context, id string) (*Notebook, error) {
	var n Notebook
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, title, created_at, updated_at FROM notebooks WHERE id = $1`, id).
		Scan(&n.ID, &n.Title, &n.CreatedAt, &n.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to get notebook %s: %v", id, err)
		return nil, err
	}
	return &n, nil
}

func (r *Repository) Create(ctx context.Context, title string) (*Notebook, error) {
	n := Notebook{ID: uuid.NewString(), Title: title}
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO notebooks (id, title, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING created_at, updated_at`,
		n.ID, n.Title,
	).Scan(&n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		logger.Sugar.Errorf("Failed to create notebook: %v", err)
		return nil, err
	}
	return &n, nil
}

func (r *Repository) UpdateTitle(ctx context.Context, id, title string) (*Notebook, error) {
	var n Notebook
	err := r.DB.QueryRowContext(ctx, `
		UPDATE notebooks SET title = $1, updated_at = NOW() WHERE id = $2
		RETURNING id, title, created_at, updated_at`,
		title, id,
	).Scan(&n.ID, &n.Title, &n.CreatedAt, &n.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to update notebook %s: %v", id, err)
		return nil, err
	}
	return &n, nil
}

// Delete removes a notebook together with its notes. Returns false when
// the notebook does not exist.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.DB.ExecContext(ctx, `
		WITH deleted_notes AS (
			DELETE FROM notes WHERE notebook_id = $1
		)
		DELETE FROM notebooks WHERE id = $1`, id)
	if err != nil {
		logger.Sugar.Errorf("Failed to delete notebook %s: %v", id, err)
		return false, err
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}
