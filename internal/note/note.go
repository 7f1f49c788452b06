package note

import (
	"encoding/json"
	"time"
)

type Note struct {
	ID         string          `json:"id"`
	NotebookID string          `json:"notebookId"`
	Title      string          `json:"title"`
	Content    json.RawMessage `json:"content"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

type ListResponse struct {
	Items []Note `json:"items"`
}

type CreateRequest struct {
	NotebookID string          `json:"notebookId"`
	Title      string          `json:"title"`
	Content    json.RawMessage `json:"content"`
}

// UpdateRequest is a partial update; nil fields are left untouched.
type UpdateRequest struct {
	NotebookID *string         `json:"notebookId"`
	Title      *string         `json:"title"`
	Content    json.RawMessage `json:"content"`
}
