package note

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"notely/pkg/logger"
)

const noteColumns = "id, notebook_id, title, content, created_at, updated_at"

type Repository struct {
	DB *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{DB: db}
}

func (r *Repository) FindAll(ctx context.Context, notebookID *string) ([]Note, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if notebookID == nil {
		rows, err = r.DB.QueryContext(ctx,
			`SELECT `+noteColumns+` FROM notes ORDER BY created_at DESC`)
	} else {
		rows, err = r.DB.QueryContext(ctx,
			`SELECT `+noteColumns+` FROM notes WHERE notebook_id = $1 ORDER BY created_at DESC`, *notebookID)
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to list notes: %v", err)
		return nil, err
	}
	defer rows.Close()

	notes := []Note{}
	for rows.Next() {
		var n Note
		if err := scanNote(rows, &n); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (r *Repository) FindByID(ctx context.Context, id string) (*Note, error) {
	var n Note
	err := scanNote(r.DB.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = $1`, id), &n)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to get note %s: %v", id, err)
		return nil, err
	}
	return &n, nil
}

func (r *Repository) NotebookExists(ctx context.Context, notebookID string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM notebooks WHERE id = $1)`, notebookID).Scan(&exists)
	if err != nil {
		logger.Sugar.Errorf("Failed to check notebook %s exists: %v", notebookID, err)
	}
	return exists, err
}

func (r *Repository) Create(ctx context.Context, req CreateRequest) (*Note, error) {
	n := Note{ID: uuid.NewString(), NotebookID: req.NotebookID, Title: req.Title, Content: req.Content}
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO notes (id, notebook_id, title, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING created_at, updated_at`,
		n.ID, n.NotebookID, n.Title, contentArg(n.Content),
	).Scan(&n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		logger.Sugar.Errorf("Failed to create note: %v", err)
		return nil, err
	}
	return &n, nil
}

func (r *Repository) Update(ctx context.Context, id string, req UpdateRequest) (*Note, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{}
	add := func(col string, val interface{}) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if req.Title != nil {
		add("title", *req.Title)
	}
	if req.NotebookID != nil {
		add("notebook_id", *req.NotebookID)
	}
	if req.Content != nil {
		add("content", contentArg(req.Content))
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE notes SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), noteColumns)

	var n Note
	err := scanNote(r.DB.QueryRowContext(ctx, query, args...), &n)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to update note %s: %v", id, err)
		return nil, err
	}
	return &n, nil
}

func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		logger.Sugar.Errorf("Failed to delete note %s: %v", id, err)
		return false, err
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNote(row rowScanner, n *Note) error {
	var content []byte
	err := row.Scan(&n.ID, &n.NotebookID, &n.Title, &content, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return err
	}
	n.Content = content
	return nil
}

func contentArg(content []byte) interface{} {
	if len(content) == 0 {
		return nil
	}
	return content
}
