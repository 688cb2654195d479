package s3

import (
	"testing"

	"blop-post/pkg/config"

	"github.com/stretchr/testify/assert"
)

func TestObjectBaseURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{
			name: "aws",
			cfg:  config.Config{S3BucketName: "media", AWSRegion: "eu-west-1"},
			want: "https://media.s3.eu-west-1.amazonaws.com",
		},
		{
			name: "aws default region",
			cfg:  config.Config{S3BucketName: "media"},
			want: "https://media.s3.us-east-1.amazonaws.com",
		},
		{
			name: "minio without ssl",
			cfg:  config.Config{S3BucketName: "media", AWSEndpoint: "http://localhost:9000/", S3UseSSL: "false"},
			want: "http://localhost:9000/media",
		},
		{
			name: "minio with ssl",
			cfg:  config.Config{S3BucketName: "media", AWSEndpoint: "minio.internal:9000", S3UseSSL: "true"},
			want: "https://minio.internal:9000/media",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, objectBaseURL(&tt.cfg))
		})
	}
}

func TestClient_KeyFromURL(t *testing.T) {
	client := &Client{bucket: "media", baseURL: "http://localhost:9000/media"}

	url := client.ObjectURL("post/1700000000000-42.png")
	assert.Equal(t, "http://localhost:9000/media/post/1700000000000-42.png", url)

	key, ok := client.KeyFromURL(url)
	assert.True(t, ok)
	assert.Equal(t, "post/1700000000000-42.png", key)

	_, ok = client.KeyFromURL("https://images.unsplash.com/photo-1")
	assert.False(t, ok)

	_, ok = client.KeyFromURL("http://localhost:9000/media/")
	assert.False(t, ok)
}
