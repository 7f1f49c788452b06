package asset

import (
	"context"
	"encoding/json"
	"strings"
)

// Document content is an opaque JSON tree (BlockNote blocks), except for
// two annotation fields the scanner maintains next to "url"/"src" links.
const (
	publicIDField     = "assetPublicId"
	resourceTypeField = "assetResourceType"
)

var linkFields = [...]string{"url", "src"}

// ContentAsset is one stored asset referenced by a content tree.
type ContentAsset struct {
	PublicID     string
	ResourceType ResourceType
}

// Scanner uploads inline data URLs found in content trees and keeps track
// of which stored assets a tree references.
type Scanner struct {
	store Store
}

func NewScanner(store Store) *Scanner {
	return &Scanner{store: store}
}

// AnnotateAndUpload returns a rewritten copy of content in which every
// "url"/"src" data URL has been uploaded and replaced by the store URL,
// with assetPublicId/assetResourceType annotations attached beside it,
// plus every asset the resulting tree references. The input is never
// mutated. A failed upload aborts the whole pass.
func (s *Scanner) AnnotateAndUpload(ctx context.Context, content any) (any, []ContentAsset, error) {
	if content == nil {
		return nil, []ContentAsset{}, nil
	}
	clone, err := deepClone(content)
	if err != nil {
		return nil, nil, err
	}

	assets := []ContentAsset{}
	// Explicit stack: content depth is caller-controlled, so the walk must
	// not grow the call stack.
	stack := []any{clone}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch v := node.(type) {
		case []any:
			for _, item := range v {
				stack = append(stack, item)
			}
		case map[string]any:
			uploaded := false
			for _, field := range linkFields {
				raw, ok := v[field].(string)
				if !ok || !strings.HasPrefix(raw, "data:") {
					continue
				}
				rt := detectResourceType(raw)
				res, err := s.store.Upload(ctx, raw, rt, publicIDPrefix(rt))
				if err != nil {
					return nil, nil, err
				}
				v[field] = res.URL
				v[publicIDField] = res.PublicID
				v[resourceTypeField] = string(rt)
				assets = append(assets, ContentAsset{PublicID: res.PublicID, ResourceType: rt})
				uploaded = true
			}
			// Nodes annotated on a previous pass still count as referenced.
			if !uploaded {
				if a, ok := annotationOf(v); ok {
					assets = append(assets, a)
				}
			}
			for _, child := range v {
				stack = append(stack, child)
			}
		}
	}
	return clone, assets, nil
}

// ExtractAssets collects every asset annotation in a content tree without
// uploading or mutating anything.
func ExtractAssets(content any) []ContentAsset {
	if content == nil {
		return []ContentAsset{}
	}
	assets := []ContentAsset{}
	stack := []any{content}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch v := node.(type) {
		case []any:
			for _, item := range v {
				stack = append(stack, item)
			}
		case map[string]any:
			if a, ok := annotationOf(v); ok {
				assets = append(assets, a)
			}
			for _, child := range v {
				stack = append(stack, child)
			}
		}
	}
	return assets
}

func annotationOf(node map[string]any) (ContentAsset, bool) {
	id, ok := node[publicIDField].(string)
	if !ok || id == "" {
		return ContentAsset{}, false
	}
	rt, ok := node[resourceTypeField].(string)
	if !ok {
		return ContentAsset{}, false
	}
	switch ResourceType(rt) {
	case ResourceImage, ResourceVideo, ResourceRaw:
		return ContentAsset{PublicID: id, ResourceType: ResourceType(rt)}, true
	}
	return ContentAsset{}, false
}

// detectResourceType reads the declared media type of a data URL
// ("data:image/png;base64,..." -> image).
func detectResourceType(dataURL string) ResourceType {
	mime := strings.TrimPrefix(dataURL, "data:")
	if i := strings.IndexAny(mime, ";,"); i >= 0 {
		mime = mime[:i]
	}
	switch {
	case strings.HasPrefix(mime, "image/"):
		return ResourceImage
	case strings.HasPrefix(mime, "video/"), strings.HasPrefix(mime, "audio/"):
		return ResourceVideo
	default:
		return ResourceRaw
	}
}

func publicIDPrefix(rt ResourceType) string {
	switch rt {
	case ResourceImage:
		return "image"
	case ResourceVideo:
		return "video"
	default:
		return "file"
	}
}

func deepClone(content any) (any, error) {
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}
	var clone any
	if err := json.Unmarshal(raw, &clone); err != nil {
		return nil, err
	}
	return clone, nil
}
