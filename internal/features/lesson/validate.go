package lesson

import (
	"net/url"
	"strings"
)

// Hosts accepted for lesson videos. Links to any other site are rejected
// so lessons cannot smuggle in third-party material.
var allowedVideoHosts = []string{
	"youtube.com",
	"www.youtube.com",
	"youtu.be",
}

// ValidateVideoURL checks that a lesson video link points at YouTube.
// Empty links are allowed; a lesson may have no video yet.
func ValidateVideoURL(raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return ErrInvalidVideoURL
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return ErrInvalidVideoURL
	}

	for _, allowed := range allowedVideoHosts {
		if host == allowed {
			return nil
		}
	}

	return ErrInvalidVideoURL
}
