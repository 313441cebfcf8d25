package lesson

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateVideoURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "youtube watch link", url: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		{name: "bare youtube host", url: "https://youtube.com/watch?v=abc"},
		{name: "short link", url: "https://youtu.be/dQw4w9WgXcQ"},
		{name: "host with port", url: "https://www.youtube.com:443/watch?v=abc"},
		{name: "uppercase host", url: "https://WWW.YOUTUBE.COM/watch?v=abc"},
		{name: "empty is allowed", url: ""},
		{name: "whitespace only is allowed", url: "   "},
		{name: "other video host", url: "https://vimeo.com/12345", wantErr: true},
		{name: "lookalike host", url: "https://youtube.com.evil.io/watch", wantErr: true},
		{name: "subdomain trick", url: "https://my.youtube.com/watch", wantErr: true},
		{name: "no host", url: "/watch?v=abc", wantErr: true},
		{name: "plain text", url: "not a url", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVideoURL(tt.url)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidVideoURL)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
