package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	minioLib "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMinio implements minioAPI for testing without network.
type fakeMinio struct {
	bucketExists    bool
	bucketExistsErr error
	makeBucketErr   error

	putInfo minioLib.UploadInfo
	putErr  error

	removeErr error
}

func (f *fakeMinio) BucketExists(_ context.Context, _ string) (bool, error) {
	return f.bucketExists, f.bucketExistsErr
}
func (f *fakeMinio) MakeBucket(_ context.Context, _ string, _ minioLib.MakeBucketOptions) error {
	return f.makeBucketErr
}
func (f *fakeMinio) PutObject(_ context.Context, _ string, _ string, _ io.Reader, _ int64, _ minioLib.PutObjectOptions) (minioLib.UploadInfo, error) {
	return f.putInfo, f.putErr
}
func (f *fakeMinio) RemoveObject(_ context.Context, _ string, _ string, _ minioLib.RemoveObjectOptions) error {
	return f.removeErr
}
func (f *fakeMinio) EndpointURL() string { return "https://minio.example.net" }

func TestNewClientWithAPI_BucketExists(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{bucketExists: true}
	c, err := NewClientWithAPI(ctx, api, "b")
	require.NoError(t, err)
	assert.NotNil(t, c)
	assert.Equal(t, "b", c.bucket)
}

func TestNewClientWithAPI_CreateBucket(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{bucketExists: false}
	c, err := NewClientWithAPI(ctx, api, "avatars")
	require.NoError(t, err)
	assert.Equal(t, "avatars", c.bucket)
}

func TestNewClientWithAPI_BucketExistsError(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{bucketExistsErr: errors.New("boom")}
	c, err := NewClientWithAPI(ctx, api, "avatars")
	assert.Nil(t, c)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ensure bucket exists")
}

func TestClient_Upload(t *testing.T) {
	ctx := context.Background()

	t.Run("success returns url", func(t *testing.T) {
		api := &fakeMinio{}
		c := &Client{api: api, bucket: "avatars"}
		url, err := c.Upload(ctx, "user-1.jpg", bytes.NewReader([]byte("data")), 4, "image/jpeg")
		require.NoError(t, err)
		assert.Equal(t, "https://minio.example.net/avatars/user-1.jpg", url)
	})

	t.Run("error", func(t *testing.T) {
		api := &fakeMinio{putErr: errors.New("put-fail")}
		c := &Client{api: api, bucket: "avatars"}
		_, err := c.Upload(ctx, "k", bytes.NewReader([]byte("data")), 4, "image/jpeg")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to upload avatar")
	})
}

func TestClient_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		c := &Client{api: &fakeMinio{}, bucket: "avatars"}
		assert.NoError(t, c.Delete(ctx, "k"))
	})

	t.Run("error", func(t *testing.T) {
		c := &Client{api: &fakeMinio{removeErr: errors.New("remove-fail")}, bucket: "avatars"}
		err := c.Delete(ctx, "k")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to delete avatar")
	})
}
