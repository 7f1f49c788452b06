package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"notely/internal/document/model"
	"notely/pkg/logger"
)

const docColumns = "id, title, content, cover_image, cover_image_public_id, icon, icon_public_id, parent_id, created_at, updated_at"

type DocumentRepository struct {
	DB *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{DB: db}
}

func (r *DocumentRepository) FindByParent(ctx context.Context, parentID *string) ([]model.Document, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if parentID == nil {
		rows, err = r.DB.QueryContext(ctx,
			`SELECT `+docColumns+` FROM documents WHERE parent_id IS NULL ORDER BY created_at DESC`)
	} else {
		rows, err = r.DB.QueryContext(ctx,
			`SELECT `+docColumns+` FROM documents WHERE parent_id = $1 ORDER BY created_at DESC`, *parentID)
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to list documents: %v", err)
		return nil, err
	}
	defer rows.Close()

	docs := []model.Document{}
	for rows.Next() {
		var doc model.Document
		if err := scanDocument(rows, &doc); err != nil {
			logger.Sugar.Errorf("Failed to scan document row: %v", err)
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*model.Document, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+docColumns+` FROM documents WHERE id = $1`, id)
	var doc model.Document
	err := scanDocument(row, &doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to get document %s: %v", id, err)
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM documents WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		logger.Sugar.Errorf("Failed to check document %s exists: %v", id, err)
	}
	return exists, err
}

func (r *DocumentRepository) Create(ctx context.Context, doc *model.Document) error {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO documents (id, title, content, cover_image, cover_image_public_id, icon, icon_public_id, parent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at`,
		doc.ID, doc.Title, contentArg(doc.Content), doc.CoverImage, doc.CoverImagePublicID,
		doc.Icon, doc.IconPublicID, doc.ParentID,
	).Scan(&doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		logger.Sugar.Errorf("Failed to create document: %v", err)
	}
	return err
}

// Update sets only the columns present in u and returns the updated row,
// or nil when the id does not exist.
func (r *DocumentRepository) Update(ctx context.Context, id string, u model.DocumentUpdate) (*model.Document, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{}
	add := func(col string, val interface{}) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	addOpt := func(col string, o model.OptionalString) {
		if !o.Set {
			return
		}
		if o.Value == nil {
			add(col, nil)
		} else {
			add(col, *o.Value)
		}
	}
	if u.Title != nil {
		add("title", *u.Title)
	}
	if u.Content != nil {
		add("content", contentArg(*u.Content))
	}
	addOpt("cover_image", u.CoverImage)
	addOpt("cover_image_public_id", u.CoverImagePublicID)
	addOpt("icon", u.Icon)
	addOpt("icon_public_id", u.IconPublicID)
	addOpt("parent_id", u.ParentID)

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE documents SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), docColumns)

	var doc model.Document
	err := scanDocument(r.DB.QueryRowContext(ctx, query, args...), &doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to update document %s: %v", id, err)
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepository) FindChildRefs(ctx context.Context, parentID string) ([]model.ChildRef, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, cover_image_public_id, icon_public_id FROM documents WHERE parent_id = $1`, parentID)
	if err != nil {
		logger.Sugar.Errorf("Failed to list children of %s: %v", parentID, err)
		return nil, err
	}
	defer rows.Close()

	var refs []model.ChildRef
	for rows.Next() {
		var ref model.ChildRef
		if err := rows.Scan(&ref.ID, &ref.CoverImagePublicID, &ref.IconPublicID); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func (r *DocumentRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM documents WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		logger.Sugar.Errorf("Failed to delete %d documents: %v", len(ids), err)
		return 0, err
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner, doc *model.Document) error {
	var content []byte
	err := row.Scan(&doc.ID, &doc.Title, &content, &doc.CoverImage, &doc.CoverImagePublicID,
		&doc.Icon, &doc.IconPublicID, &doc.ParentID, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return err
	}
	doc.Content = content
	return nil
}

// contentArg maps empty content to SQL NULL so the jsonb column never
// stores an empty string.
func contentArg(content []byte) interface{} {
	if len(content) == 0 {
		return nil
	}
	return content
}
