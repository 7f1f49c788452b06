package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"notely/internal/asset"
	"notely/internal/document/model"
	"notely/pkg/logger"
)

// DefaultTitle is used when a document is created without one.
const DefaultTitle = "New Doc"

var (
	ErrNotFound      = errors.New("document not found")
	ErrInvalidParent = errors.New("parent document does not exist")
	ErrSelfParent    = errors.New("document cannot be its own parent")
	ErrCyclicParent  = errors.New("parent is a descendant of the document")
	ErrAssetUpload   = errors.New("asset upload failed")
)

// DocumentStore is the persistence port. The Postgres repository satisfies
// it; tests use an in-memory fake.
type DocumentStore interface {
	FindByParent(ctx context.Context, parentID *string) ([]model.Document, error)
	FindByID(ctx context.Context, id string) (*model.Document, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, doc *model.Document) error
	Update(ctx context.Context, id string, u model.DocumentUpdate) (*model.Document, error)
	FindChildRefs(ctx context.Context, parentID string) ([]model.ChildRef, error)
	DeleteMany(ctx context.Context, ids []string) (int64, error)
}

// AssetJanitor receives best-effort deletions after a write has succeeded.
type AssetJanitor interface {
	Schedule(asset.Deletion)
}

type DocumentService struct {
	Store   DocumentStore
	Assets  asset.Store
	Scanner *asset.Scanner
	Janitor AssetJanitor
}

func NewDocumentService(store DocumentStore, assets asset.Store, scanner *asset.Scanner, janitor AssetJanitor) *DocumentService {
	return &DocumentService{Store: store, Assets: assets, Scanner: scanner, Janitor: janitor}
}

// List returns the direct children of parentID, or the root-level
// documents when parentID is nil, newest first.
func (s *DocumentService) List(ctx context.Context, parentID *string) ([]model.Document, error) {
	return s.Store.FindByParent(ctx, parentID)
}

func (s *DocumentService) Get(ctx context.Context, id string) (*model.Document, error) {
	doc, err := s.Store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNotFound
	}
	return doc, nil
}

func (s *DocumentService) Create(ctx context.Context, req model.CreateDocRequest) (*model.Document, error) {
	if req.ParentID != nil {
		exists, err := s.Store.Exists(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrInvalidParent
		}
	}

	doc := &model.Document{
		ID:       uuid.NewString(),
		Title:    req.Title,
		ParentID: req.ParentID,
	}
	if doc.Title == "" {
		doc.Title = DefaultTitle
	}

	var err error
	doc.CoverImage, doc.CoverImagePublicID, err = s.uploadField(ctx, req.CoverImage, "cover")
	if err != nil {
		return nil, err
	}
	doc.Icon, doc.IconPublicID, err = s.uploadField(ctx, req.Icon, "icon")
	if err != nil {
		return nil, err
	}

	if len(req.Content) > 0 {
		annotated, _, err := s.annotateContent(ctx, req.Content)
		if err != nil {
			return nil, err
		}
		doc.Content = annotated
	}

	if err := s.Store.Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *DocumentService) Update(ctx context.Context, id string, req model.UpdateDocRequest) (*model.Document, error) {
	prev, err := s.Store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if prev == nil {
		return nil, ErrNotFound
	}

	// Reparenting is validated before anything is uploaded or written.
	if req.ParentID.Set && req.ParentID.Value != nil {
		newParent := *req.ParentID.Value
		if newParent == id {
			return nil, ErrSelfParent
		}
		cyclic, err := s.isDescendant(ctx, id, newParent)
		if err != nil {
			return nil, err
		}
		if cyclic {
			return nil, ErrCyclicParent
		}
		exists, err := s.Store.Exists(ctx, newParent)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrInvalidParent
		}
	}

	update := model.DocumentUpdate{Title: req.Title, ParentID: req.ParentID}
	var cleanup []asset.Deletion

	if req.CoverImage.Set {
		url, publicID, err := s.uploadField(ctx, req.CoverImage.Value, "cover")
		if err != nil {
			return nil, err
		}
		update.CoverImage = model.OptionalString{Set: true, Value: url}
		update.CoverImagePublicID = model.OptionalString{Set: true, Value: publicID}
		cleanup = appendReplaced(cleanup, prev.CoverImagePublicID, publicID)
	}
	if req.Icon.Set {
		url, publicID, err := s.uploadField(ctx, req.Icon.Value, "icon")
		if err != nil {
			return nil, err
		}
		update.Icon = model.OptionalString{Set: true, Value: url}
		update.IconPublicID = model.OptionalString{Set: true, Value: publicID}
		cleanup = appendReplaced(cleanup, prev.IconPublicID, publicID)
	}

	if req.Content != nil {
		annotated, newAssets, err := s.annotateContent(ctx, req.Content)
		if err != nil {
			return nil, err
		}
		update.Content = &annotated
		cleanup = append(cleanup, abandonedAssets(extractRaw(prev.Content), newAssets)...)
	}

	doc, err := s.Store.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNotFound
	}

	// Only after the write succeeded: a failed cleanup must never fail the
	// update, and a failed update must not orphan live assets.
	for _, d := range cleanup {
		s.Janitor.Schedule(d)
	}
	return doc, nil
}

// DeleteCascade removes id and every document reachable through parent
// links, returning the number of rows deleted. Cover and icon assets of
// every removed document are scheduled for deletion. Inline content assets
// are left behind: collecting them would mean loading every node's content
// during traversal.
func (s *DocumentService) DeleteCascade(ctx context.Context, id string) (int64, error) {
	root, err := s.Store.FindByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if root == nil {
		return 0, ErrNotFound
	}

	doomed := []model.ChildRef{{
		ID:                 root.ID,
		CoverImagePublicID: root.CoverImagePublicID,
		IconPublicID:       root.IconPublicID,
	}}
	seen := map[string]bool{root.ID: true}
	work := []string{root.ID}
	for len(work) > 0 {
		cur := work[len(work)-1]
		work = work[:len(work)-1]
		children, err := s.Store.FindChildRefs(ctx, cur)
		if err != nil {
			return 0, err
		}
		for _, child := range children {
			// seen guards against malformed duplicate parent links
			if seen[child.ID] {
				continue
			}
			seen[child.ID] = true
			doomed = append(doomed, child)
			work = append(work, child.ID)
		}
	}

	ids := make([]string, len(doomed))
	for i, ref := range doomed {
		ids[i] = ref.ID
	}
	count, err := s.Store.DeleteMany(ctx, ids)
	if err != nil {
		return 0, err
	}

	for _, ref := range doomed {
		if ref.CoverImagePublicID != nil {
			s.Janitor.Schedule(asset.Deletion{PublicID: *ref.CoverImagePublicID, ResourceType: asset.ResourceImage})
		}
		if ref.IconPublicID != nil {
			s.Janitor.Schedule(asset.Deletion{PublicID: *ref.IconPublicID, ResourceType: asset.ResourceImage})
		}
	}
	logger.Sugar.Infof("Cascade deleted %d documents under %s", count, id)
	return count, nil
}

// isDescendant walks the subtree under rootID looking for candidate, one
// child query per node, early exit on a hit.
func (s *DocumentService) isDescendant(ctx context.Context, rootID, candidate string) (bool, error) {
	seen := map[string]bool{rootID: true}
	work := []string{rootID}
	for len(work) > 0 {
		cur := work[len(work)-1]
		work = work[:len(work)-1]
		children, err := s.Store.FindChildRefs(ctx, cur)
		if err != nil {
			return false, err
		}
		for _, child := range children {
			if child.ID == candidate {
				return true, nil
			}
			if !seen[child.ID] {
				seen[child.ID] = true
				work = append(work, child.ID)
			}
		}
	}
	return false, nil
}

// uploadField handles a single cover/icon input: data URLs are uploaded
// and become a store URL plus public id, anything else (plain URL, emoji,
// nil) passes through with no public id.
func (s *DocumentService) uploadField(ctx context.Context, value *string, prefix string) (*string, *string, error) {
	if value == nil || !strings.HasPrefix(*value, "data:") {
		return value, nil, nil
	}
	res, err := s.Assets.Upload(ctx, *value, asset.ResourceImage, prefix)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrAssetUpload, err)
	}
	return &res.URL, &res.PublicID, nil
}

// annotateContent decodes raw JSON, runs the scanner pass and re-encodes.
// Explicit null content comes back as empty RawMessage with no assets.
func (s *DocumentService) annotateContent(ctx context.Context, raw json.RawMessage) (json.RawMessage, []asset.ContentAsset, error) {
	var content any
	if err := json.Unmarshal(raw, &content); err != nil {
		return nil, nil, err
	}
	annotated, assets, err := s.Scanner.AnnotateAndUpload(ctx, content)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrAssetUpload, err)
	}
	if annotated == nil {
		return nil, assets, nil
	}
	encoded, err := json.Marshal(annotated)
	if err != nil {
		return nil, nil, err
	}
	return encoded, assets, nil
}

func extractRaw(raw json.RawMessage) []asset.ContentAsset {
	if len(raw) == 0 {
		return nil
	}
	var content any
	if err := json.Unmarshal(raw, &content); err != nil {
		return nil
	}
	return asset.ExtractAssets(content)
}

// abandonedAssets returns the old references no longer present in new,
// deduplicated by public id.
func abandonedAssets(old, new []asset.ContentAsset) []asset.Deletion {
	kept := make(map[string]bool, len(new))
	for _, a := range new {
		kept[a.PublicID] = true
	}
	var gone []asset.Deletion
	for _, a := range old {
		if kept[a.PublicID] {
			continue
		}
		kept[a.PublicID] = true // dedup repeats in old
		gone = append(gone, asset.Deletion{PublicID: a.PublicID, ResourceType: a.ResourceType})
	}
	return gone
}

// appendReplaced schedules the previous cover/icon public id when the
// update replaces or clears it.
func appendReplaced(cleanup []asset.Deletion, oldID, newID *string) []asset.Deletion {
	if oldID == nil {
		return cleanup
	}
	if newID != nil && *newID == *oldID {
		return cleanup
	}
	return append(cleanup, asset.Deletion{PublicID: *oldID, ResourceType: asset.ResourceImage})
}
