package asset

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"notely/pkg/logger"
)

// ResourceType tags an asset for upload and later deletion. Cloudinary
// treats audio as "video", so there is no separate audio type.
type ResourceType string

const (
	ResourceImage ResourceType = "image"
	ResourceVideo ResourceType = "video"
	ResourceRaw   ResourceType = "raw"
)

type UploadResult struct {
	URL      string
	PublicID string
}

// Store is the media-hosting port. Upload accepts a data URL (or any
// source Cloudinary understands); Delete is a no-op for an empty public id.
type Store interface {
	Upload(ctx context.Context, payload string, resourceType ResourceType, publicIDPrefix string) (UploadResult, error)
	Delete(ctx context.Context, publicID string, resourceType ResourceType) error
}

type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinary(cloudName, apiKey, apiSecret, folder string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	return &Cloudinary{cld: cld, folder: folder}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, payload string, resourceType ResourceType, publicIDPrefix string) (UploadResult, error) {
	params := uploader.UploadParams{
		Folder:       c.folder,
		Overwrite:    api.Bool(true),
		ResourceType: string(resourceType),
	}
	if publicIDPrefix != "" {
		params.PublicID = fmt.Sprintf("%s_%d", publicIDPrefix, time.Now().UnixMilli())
	}
	res, err := c.cld.Upload.Upload(ctx, payload, params)
	if err != nil {
		logger.Sugar.Errorf("Failed to upload %s asset: %v", resourceType, err)
		return UploadResult{}, err
	}
	if res.Error.Message != "" {
		logger.Sugar.Errorf("Cloudinary rejected %s upload: %s", resourceType, res.Error.Message)
		return UploadResult{}, fmt.Errorf("cloudinary upload: %s", res.Error.Message)
	}
	return UploadResult{URL: res.SecureURL, PublicID: res.PublicID}, nil
}

func (c *Cloudinary) Delete(ctx context.Context, publicID string, resourceType ResourceType) error {
	if publicID == "" {
		return nil
	}
	res, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: string(resourceType),
	})
	if err != nil {
		return err
	}
	if res.Result != "ok" && res.Result != "not found" {
		return fmt.Errorf("cloudinary destroy %s: %s", publicID, res.Result)
	}
	return nil
}
