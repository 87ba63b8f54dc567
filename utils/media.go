// utils/media.go
package utils

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

var r2Client *s3.Client
var r2Bucket string
var cdnBaseURL string

func InitMediaStore() error {
	accountID := os.Getenv("CLOUDFLARE_ACCOUNT_ID")
	accessKeyID := os.Getenv("R2_ACCESS_KEY_ID")
	accessKeySecret := os.Getenv("R2_ACCESS_KEY_SECRET")
	r2Bucket = os.Getenv("R2_BUCKET_NAME")
	cdnBaseURL = os.Getenv("CDN_BASE_URL")
	if cdnBaseURL == "" {
		cdnBaseURL = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion("auto"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID, accessKeySecret, "",
		)),
		config.WithEndpointResolver(aws.EndpointResolverFunc(
			func(service, region string) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL: fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID),
				}, nil
			}),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to load R2 config: %w", err)
	}

	r2Client = s3.NewFromConfig(cfg)
	return nil
}

// mediaExt maps a resource kind to the stored object extension. Battle
// audio arrives as webm opus from the browser recorder.
func mediaExt(resourceKind string) (ext, contentType string) {
	if resourceKind == "audio" {
		return ".webm", "audio/webm"
	}
	return ".jpg", "image/jpeg"
}

// R2MediaStore uploads blobs to R2 and hands back public CDN URLs. It
// satisfies the services.MediaUploader seam.
type R2MediaStore struct{}

// Upload stores one blob under <subfolder>/<owner>/<uuid><ext> and returns
// its public URL.
func (R2MediaStore) Upload(ownerID string, blob []byte, resourceKind, subfolder string) (string, error) {
	if len(blob) == 0 {
		return "", fmt.Errorf("empty media blob")
	}
	ext, contentType := mediaExt(resourceKind)
	key := fmt.Sprintf("%s/%s/%s%s", slug.Make(subfolder), ownerID, uuid.NewString(), ext)

	_, err := r2Client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(r2Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(blob),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to R2: %w", err)
	}

	return fmt.Sprintf("%s/%s", cdnBaseURL, key), nil
}
