package s3

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/platform/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const DefaultURLExpiry = 15 * time.Minute

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	URLExpiry time.Duration
}

// ImageURLResolver turns stored image object keys into time-limited download
// URLs. Values that already are http(s) URLs are returned unchanged.
type ImageURLResolver struct {
	client *minio.Client
	bucket string
	expiry time.Duration
	logger *logger.Logger
}

func NewImageURLResolver(cfg Config, log *logger.Logger) (*ImageURLResolver, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	// a fixed region keeps presigning local; otherwise minio looks the region up over the network
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", cfg.Endpoint, err)
	}

	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = DefaultURLExpiry
	}
	log.Info("ImageURLResolver: initialized", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket, "url_expiry", expiry.String())
	return &ImageURLResolver{
		client: client,
		bucket: cfg.Bucket,
		expiry: expiry,
		logger: log.Named("ImageURLResolver"),
	}, nil
}

// CheckBucket reports whether the bucket is reachable. Used at startup only.
func (r *ImageURLResolver) CheckBucket(ctx context.Context) error {
	exists, err := r.client.BucketExists(ctx, r.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", r.bucket, err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", r.bucket)
	}
	return nil
}

// ResolveImages maps every image reference to a URL a client can fetch. A key
// that cannot be signed is logged and left out.
func (r *ImageURLResolver) ResolveImages(ctx context.Context, images []string) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		if isAbsoluteURL(img) {
			out = append(out, img)
			continue
		}
		key := strings.TrimPrefix(img, "/")
		if key == "" {
			continue
		}
		u, err := r.client.PresignedGetObject(ctx, r.bucket, key, r.expiry, url.Values{})
		if err != nil {
			r.logger.Warn("failed to presign image", "bucket", r.bucket, "key", key, "error", err.Error())
			continue
		}
		out = append(out, u.String())
	}
	return out
}

func isAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
