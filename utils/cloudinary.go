package utils

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryUploader forwards locally stored images to Cloudinary. A nil
// uploader means the CDN is not configured and uploads stay on local disk.
type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryUploader builds an uploader from CLOUDINARY_* environment
// variables, or returns nil when they are absent.
func NewCloudinaryUploader() *CloudinaryUploader {
	cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME")
	apiKey := os.Getenv("CLOUDINARY_API_KEY")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		log.Println("Cloudinary credentials not set, uploads will stay on local disk")
		return nil
	}

	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		log.Printf("Cloudinary init failed, uploads will stay on local disk: %v", err)
		return nil
	}

	folder := os.Getenv("CLOUDINARY_FOLDER")
	if folder == "" {
		folder = "medtrap"
	}
	return &CloudinaryUploader{cld: cld, folder: folder}
}

// Upload pushes a local file to the CDN and returns its secure URL and
// public id.
func (cu *CloudinaryUploader) Upload(ctx context.Context, filePath string) (url, publicID string, err error) {
	resp, err := cu.cld.Upload.Upload(ctx, filePath, uploader.UploadParams{Folder: cu.folder})
	if err != nil {
		return "", "", err
	}
	if resp.Error.Message != "" {
		return "", "", fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	return resp.SecureURL, resp.PublicID, nil
}
