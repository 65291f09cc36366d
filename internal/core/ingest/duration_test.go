package ingest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linkstash-app/linkstash/internal/core/ingest"
)

func TestExtractDuration(t *testing.T) {
	tests := []struct {
		name   string
		html   string
		want   int
		wantOK bool
	}{
		{
			name:   "video duration rounds up",
			html:   `<html><head><meta property="og:video:duration" content="610"></head></html>`,
			want:   11,
			wantOK: true,
		},
		{
			name:   "exact minutes",
			html:   `<html><head><meta property="og:video:duration" content="600"></head></html>`,
			want:   10,
			wantOK: true,
		},
		{
			name:   "audio duration",
			html:   `<html><head><meta property="og:audio:duration" content="59"></head></html>`,
			want:   1,
			wantOK: true,
		},
		{
			name:   "no duration tag",
			html:   `<html><head></head></html>`,
			wantOK: false,
		},
		{
			name:   "non-numeric duration",
			html:   `<html><head><meta property="og:video:duration" content="PT10M"></head></html>`,
			wantOK: false,
		},
		{
			name:   "zero duration",
			html:   `<html><head><meta property="og:video:duration" content="0"></head></html>`,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ingest.ExtractDuration(tt.html)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
