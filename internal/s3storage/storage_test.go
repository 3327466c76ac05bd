package s3storage

import (
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharsanguruparan/coedash/internal/config"
)

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(minio.ErrorResponse{Code: "NoSuchKey"}))
	assert.False(t, isNotFound(minio.ErrorResponse{Code: "AccessDenied"}))
	assert.False(t, isNotFound(errors.New("dial tcp: refused")))
}

func TestNewDoesNotDial(t *testing.T) {
	s, err := New(config.S3{Endpoint: "localhost:9000", Bucket: "coedash", Region: "us-east-1"})
	require.NoError(t, err)
	assert.Equal(t, "coedash", s.bucket)

	_, err = New(config.S3{Endpoint: "http://bad endpoint"})
	assert.Error(t, err)
}
