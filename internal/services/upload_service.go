package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Upload destinations on the asset host
const (
	AdminProductFolder      = "admin-products"
	VariantImageFolder      = "products/variants"
	AdminProductTransform   = "c_limit,h_800,w_800/q_auto"
	variantImageTransform   = "c_limit,h_800,w_800/q_auto"
	errUploaderUnconfigured = "image uploads are not configured"
)

// UploadedImage is a stored asset reference
type UploadedImage struct {
	URL      string
	PublicID string
}

// ImageUploader stores images on an external asset host
type ImageUploader interface {
	Upload(ctx context.Context, file io.Reader, folder, transformation string) (*UploadedImage, error)
	Destroy(ctx context.Context, publicID string) error
}

// CloudinaryUploader is the Cloudinary-backed ImageUploader
type CloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryUploader creates an uploader from a cloudinary:// URL
func NewCloudinaryUploader(cloudinaryURL string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}
	return &CloudinaryUploader{cld: cld}, nil
}

// Upload sends one image to the given folder
func (u *CloudinaryUploader) Upload(ctx context.Context, file io.Reader, folder, transformation string) (*UploadedImage, error) {
	result, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:         folder,
		Transformation: transformation,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("failed to upload image: %s", result.Error.Message)
	}
	return &UploadedImage{URL: result.SecureURL, PublicID: result.PublicID}, nil
}

// Destroy removes a previously uploaded image
func (u *CloudinaryUploader) Destroy(ctx context.Context, publicID string) error {
	result, err := u.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("failed to destroy image: %w", err)
	}
	if result.Error.Message != "" {
		return fmt.Errorf("failed to destroy image: %s", result.Error.Message)
	}
	return nil
}

// unconfiguredUploader rejects every upload when no asset host is set up
type unconfiguredUploader struct{}

func (unconfiguredUploader) Upload(context.Context, io.Reader, string, string) (*UploadedImage, error) {
	return nil, errors.New(errUploaderUnconfigured)
}

func (unconfiguredUploader) Destroy(context.Context, string) error {
	return errors.New(errUploaderUnconfigured)
}

// NewImageUploader returns a Cloudinary uploader, or one that fails every upload
// when no URL is configured so the service can still start.
func NewImageUploader(cloudinaryURL string) (ImageUploader, error) {
	if cloudinaryURL == "" {
		log.Println("⚠️ CLOUDINARY_URL not set, image uploads will fail")
		return unconfiguredUploader{}, nil
	}
	return NewCloudinaryUploader(cloudinaryURL)
}

// uploadAll uploads every file in order. On the first failure the images already
// stored are destroyed (best effort) and nothing is returned.
func uploadAll(ctx context.Context, up ImageUploader, files []io.Reader, folder, transformation string) ([]*UploadedImage, error) {
	uploaded := make([]*UploadedImage, 0, len(files))
	for i, f := range files {
		img, err := up.Upload(ctx, f, folder, transformation)
		if err != nil {
			log.Printf("❌ Image %d/%d upload failed: %v", i+1, len(files), err)
			discardUploads(up, uploaded)
			return nil, Upstream(MsgImageUploadFailed, err)
		}
		uploaded = append(uploaded, img)
	}
	return uploaded, nil
}

// discardUploads removes orphaned assets. It runs detached from the request
// context so a cancelled request still cleans up.
func discardUploads(up ImageUploader, images []*UploadedImage) {
	for _, img := range images {
		if img.PublicID == "" {
			continue
		}
		if err := up.Destroy(context.Background(), img.PublicID); err != nil {
			log.Printf("⚠️ Failed to remove orphaned image %s: %v", img.PublicID, err)
		}
	}
}
