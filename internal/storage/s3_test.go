package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMediaKeyFromURL(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		expectedKey string
	}{
		{
			name:        "Public bucket URL",
			url:         "https://my-bucket.s3.eu-west-3.amazonaws.com/posts/post_abc.jpg",
			expectedKey: "posts/post_abc.jpg",
		},
		{
			name:        "Foreign URL",
			url:         "https://example.com/posts/post_abc.jpg",
			expectedKey: "",
		},
		{
			name:        "Empty URL",
			url:         "",
			expectedKey: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedKey, MediaKeyFromURL(tt.url))
		})
	}
}
