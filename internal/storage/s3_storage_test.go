package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	key := ObjectKey("/bangles/", "Kada-Front.JPG")
	assert.True(t, strings.HasPrefix(key, "bangles/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.NotEqual(t, key, ObjectKey("bangles", "Kada-Front.JPG"))
}

func TestValidateContentType(t *testing.T) {
	assert.NoError(t, ValidateContentType("image/png", AllowedImageTypes))
	assert.Error(t, ValidateContentType("application/pdf", AllowedImageTypes))
}

func TestS3Storage_PresignImageUpload(t *testing.T) {
	s := NewS3Storage(context.Background(), "ap-south-1", "bangles-test", "AKIDEXAMPLE", "secret", "https://cdn.example.com/")

	resp, err := s.PresignImageUpload(context.Background(), "kada.png", "image/png", "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.Key, DefaultImageFolder+"/"))
	assert.Equal(t, "https://cdn.example.com/"+resp.Key, resp.FileURL)
	assert.Contains(t, resp.UploadURL, "X-Amz-Signature")

	_, err = s.PresignImageUpload(context.Background(), "notes.txt", "text/plain", "")
	assert.Error(t, err)
}
