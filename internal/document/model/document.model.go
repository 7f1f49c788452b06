package model

import (
	"encoding/json"
	"time"
)

// Document is one node of the doc tree. ParentID is a plain adjacency-list
// reference; nil means root level. Content is opaque BlockNote JSON except
// for the asset annotations the scanner maintains.
type Document struct {
	ID                 string
	Title              string
	Content            json.RawMessage
	CoverImage         *string
	CoverImagePublicID *string
	Icon               *string
	IconPublicID       *string
	ParentID           *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ChildRef is the slim row subtree traversal works with: just enough to
// keep walking and to delete the node's cover/icon assets afterwards.
type ChildRef struct {
	ID                 string
	CoverImagePublicID *string
	IconPublicID       *string
}

// OptionalString distinguishes an absent JSON field from an explicit null,
// so partial updates can clear a field without touching its siblings.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

// String constructs a set OptionalString holding v.
func String(v string) OptionalString {
	return OptionalString{Set: true, Value: &v}
}

// Null constructs a set OptionalString holding an explicit null.
func Null() OptionalString {
	return OptionalString{Set: true}
}

type CreateDocRequest struct {
	Title      string          `json:"title"`
	Content    json.RawMessage `json:"content"`
	CoverImage *string         `json:"coverImage"`
	Icon       *string         `json:"icon"`
	ParentID   *string         `json:"parentId"`
}

type UpdateDocRequest struct {
	Title      *string         `json:"title"`
	Content    json.RawMessage `json:"content"`
	CoverImage OptionalString  `json:"coverImage"`
	Icon       OptionalString  `json:"icon"`
	ParentID   OptionalString  `json:"parentId"`
}

// DocumentUpdate carries the columns an update actually sets. Nil pointers
// and unset optionals leave the column untouched. A non-nil Content
// pointing at an empty RawMessage clears the content to NULL.
type DocumentUpdate struct {
	Title              *string
	Content            *json.RawMessage
	CoverImage         OptionalString
	CoverImagePublicID OptionalString
	Icon               OptionalString
	IconPublicID       OptionalString
	ParentID           OptionalString
}

// DocResponse is the wire shape of a document. Timestamps marshal as
// RFC 3339 (ISO-8601); nil content marshals as null.
type DocResponse struct {
	ID                 string          `json:"id"`
	Title              string          `json:"title"`
	Content            json.RawMessage `json:"content"`
	CoverImage         *string         `json:"coverImage"`
	CoverImagePublicID *string         `json:"coverImagePublicId"`
	Icon               *string         `json:"icon"`
	IconPublicID       *string         `json:"iconPublicId"`
	ParentID           *string         `json:"parentId"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

type DocListResponse struct {
	Items []DocResponse `json:"items"`
}

func NewDocResponse(d *Document) DocResponse {
	return DocResponse{
		ID:                 d.ID,
		Title:              d.Title,
		Content:            d.Content,
		CoverImage:         d.CoverImage,
		CoverImagePublicID: d.CoverImagePublicID,
		Icon:               d.Icon,
		IconPublicID:       d.IconPublicID,
		ParentID:           d.ParentID,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}
