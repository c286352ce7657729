package s3

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/catalog-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T) *ImageURLResolver {
	t.Helper()
	r, err := NewImageURLResolver(Config{
		Endpoint:  "localhost:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Bucket:    "listing-images",
		URLExpiry: 10 * time.Minute,
	}, logger.NewNop())
	require.NoError(t, err)
	return r
}

func TestResolveImages(t *testing.T) {
	r := newTestResolver(t)

	got := r.ResolveImages(context.Background(), []string{
		"https://cdn.example.com/a.jpg",
		"photos/b.jpg",
		"/photos/c.png",
		"",
	})
	require.Len(t, got, 3)
	assert.Equal(t, "https://cdn.example.com/a.jpg", got[0])

	u, err := url.Parse(got[1])
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/listing-images/photos/b.jpg", u.Path)
	assert.Equal(t, "600", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))

	u, err = url.Parse(got[2])
	require.NoError(t, err)
	assert.Equal(t, "/listing-images/photos/c.png", u.Path)
}

func TestResolveImages_Empty(t *testing.T) {
	got := newTestResolver(t).ResolveImages(context.Background(), nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestNewImageURLResolver_DefaultExpiry(t *testing.T) {
	r, err := NewImageURLResolver(Config{Endpoint: "localhost:9000", Bucket: "b"}, logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, DefaultURLExpiry, r.expiry)
}

func TestIsAbsoluteURL(t *testing.T) {
	assert.True(t, isAbsoluteURL("http://x/y"))
	assert.True(t, isAbsoluteURL("https://x/y"))
	assert.False(t, isAbsoluteURL("photos/x.jpg"))
	assert.False(t, isAbsoluteURL("ftp://x"))
}
