package asset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore hands out sequential public ids and records every call.
type fakeStore struct {
	mu       sync.Mutex
	seq      int
	failUp   bool
	failDel  bool
	uploads  []string
	deletes  []Deletion
}

func (f *fakeStore) Upload(_ context.Context, payload string, rt ResourceType, prefix string) (UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUp {
		return UploadResult{}, errors.New("upload refused")
	}
	f.seq++
	id := fmt.Sprintf("%s_%d", prefix, f.seq)
	f.uploads = append(f.uploads, payload)
	return UploadResult{URL: "https://cdn.example.com/" + id, PublicID: id}, nil
}

func (f *fakeStore) Delete(_ context.Context, publicID string, rt ResourceType) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDel {
		return errors.New("delete refused")
	}
	f.deletes = append(f.deletes, Deletion{PublicID: publicID, ResourceType: rt})
	return nil
}

func (f *fakeStore) deleted() []Deletion {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Deletion(nil), f.deletes...)
}

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestAnnotateAndUploadNilContent(t *testing.T) {
	s := NewScanner(&fakeStore{})
	content, assets, err := s.AnnotateAndUpload(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, content)
	assert.Empty(t, assets)
}

func TestAnnotateAndUploadRewritesDataURL(t *testing.T) {
	store := &fakeStore{}
	s := NewScanner(store)

	content := decode(t, `{"blocks":[{"type":"image","url":"data:image/png;base64,AAAA"}]}`)
	annotated, assets, err := s.AnnotateAndUpload(context.Background(), content)
	require.NoError(t, err)

	require.Len(t, assets, 1)
	assert.Equal(t, "image_1", assets[0].PublicID)
	assert.Equal(t, ResourceImage, assets[0].ResourceType)

	block := annotated.(map[string]any)["blocks"].([]any)[0].(map[string]any)
	assert.Equal(t, "https://cdn.example.com/image_1", block["url"])
	assert.Equal(t, "image_1", block["assetPublicId"])
	assert.Equal(t, "image", block["assetResourceType"])

	// the input tree is untouched
	origBlock := content.(map[string]any)["blocks"].([]any)[0].(map[string]any)
	assert.Equal(t, "data:image/png;base64,AAAA", origBlock["url"])
	assert.NotContains(t, origBlock, "assetPublicId")
}

func TestAnnotateAndUploadResourceTypes(t *testing.T) {
	cases := []struct {
		dataURL string
		want    ResourceType
		prefix  string
	}{
		{"data:image/jpeg;base64,AA", ResourceImage, "image"},
		{"data:video/mp4;base64,AA", ResourceVideo, "video"},
		{"data:audio/mpeg;base64,AA", ResourceVideo, "video"},
		{"data:application/pdf;base64,AA", ResourceRaw, "file"},
	}
	for _, tc := range cases {
		store := &fakeStore{}
		s := NewScanner(store)
		content := decode(t, fmt.Sprintf(`{"src":%q}`, tc.dataURL))

		_, assets, err := s.AnnotateAndUpload(context.Background(), content)
		require.NoError(t, err)
		require.Len(t, assets, 1)
		assert.Equal(t, tc.want, assets[0].ResourceType)
		assert.Equal(t, tc.prefix+"_1", assets[0].PublicID)
	}
}

func TestAnnotateAndUploadCollectsExistingAnnotations(t *testing.T) {
	store := &fakeStore{}
	s := NewScanner(store)

	content := decode(t, `[
		{"url":"https://cdn.example.com/old","assetPublicId":"old","assetResourceType":"image"},
		{"src":"data:image/png;base64,AA"}
	]`)
	_, assets, err := s.AnnotateAndUpload(context.Background(), content)
	require.NoError(t, err)

	ids := make([]string, len(assets))
	for i, a := range assets {
		ids[i] = a.PublicID
	}
	assert.ElementsMatch(t, []string{"old", "image_1"}, ids)
	assert.Len(t, store.uploads, 1)
}

func TestAnnotateAndUploadPropagatesUploadFailure(t *testing.T) {
	s := NewScanner(&fakeStore{failUp: true})
	content := decode(t, `{"url":"data:image/png;base64,AA"}`)
	_, _, err := s.AnnotateAndUpload(context.Background(), content)
	assert.Error(t, err)
}

func TestAnnotateAndUploadDeepNesting(t *testing.T) {
	// a 2000-level tree must not blow the call stack
	leaf := map[string]any{"url": "data:image/png;base64,AA"}
	root := any(leaf)
	for i := 0; i < 2000; i++ {
		root = map[string]any{"child": root}
	}

	store := &fakeStore{}
	s := NewScanner(store)
	_, assets, err := s.AnnotateAndUpload(context.Background(), root)
	require.NoError(t, err)
	assert.Len(t, assets, 1)
}

func TestExtractAssets(t *testing.T) {
	content := decode(t, `{"blocks":[
		{"url":"https://cdn.example.com/x","assetPublicId":"x","assetResourceType":"image"},
		{"nested":{"src":"https://cdn.example.com/y","assetPublicId":"y","assetResourceType":"video"}},
		{"url":"https://example.com/plain"},
		{"assetPublicId":"bad","assetResourceType":"huge"}
	]}`)

	assets := ExtractAssets(content)
	ids := map[string]ResourceType{}
	for _, a := range assets {
		ids[a.PublicID] = a.ResourceType
	}
	assert.Equal(t, map[string]ResourceType{"x": ResourceImage, "y": ResourceVideo}, ids)
}

func TestExtractAssetsNil(t *testing.T) {
	assert.Empty(t, ExtractAssets(nil))
}
