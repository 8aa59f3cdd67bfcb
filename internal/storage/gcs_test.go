package storage

import (
	"context"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGCSObjectName(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"", "GameInfo.xml"},
		{"cpc", "cpc/GameInfo.xml"},
		{"/cpc/exports/", "cpc/exports/GameInfo.xml"},
	}

	for _, tt := range tests {
		p := &GCSPublisher{bucket: "roms", objectPrefix: tt.prefix}
		assert.Equal(t, tt.want, p.objectName("GameInfo.xml"), tt.prefix)
	}
}

func TestGCSPublishMissingFile(t *testing.T) {
	// No client: the local file is opened before anything is sent.
	p := &GCSPublisher{bucket: "roms", objectPrefix: "cpc"}
	missing := filepath.Join(t.TempDir(), "GameInfo.xml")

	location, err := p.Publish(context.Background(), missing, "GameInfo.xml")

	assert.Empty(t, location)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.ErrorContains(t, err, "failed to open file")
}
