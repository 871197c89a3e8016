package services_test

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"moviepicker/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrTranscode, "transcode", "audio", "ffmpeg failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrTranscode) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"transcode", "audio", "ffmpeg failed", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutMarkerDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected default detail, got %q", err.Error())
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"invalid input", services.Wrap(services.ErrInvalidInput, "reel", "validate", "bad url", nil), http.StatusBadRequest},
		{"missing credentials", services.Wrap(services.ErrMissingCredentials, "speech", "transcribe", "no key", nil), http.StatusBadRequest},
		{"fetch", services.Wrap(services.ErrFetch, "reel", "download", "", errors.New("exit 1")), http.StatusBadRequest},
		{"transcode", services.Wrap(services.ErrTranscode, "transcode", "frames", "", nil), http.StatusBadRequest},
		{"transcription", services.Wrap(services.ErrTranscription, "speech", "", "", nil), http.StatusBadRequest},
		{"conflict", services.Wrap(services.ErrConflict, "catalog", "add", "", nil), http.StatusBadRequest},
		{"not found", services.Wrap(services.ErrNotFound, "catalog", "get", "", nil), http.StatusNotFound},
		{"unavailable", services.Wrap(services.ErrUnavailable, "omdb", "search", "", nil), http.StatusServiceUnavailable},
		{"unexpected", errors.New("disk full"), http.StatusInternalServerError},
		{"wrapped unexpected", fmt.Errorf("store: %w", errors.New("locked")), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.HTTPStatus(tc.err); got != tc.want {
				t.Fatalf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}

func TestIsDomainRejectsPlainErrors(t *testing.T) {
	if services.IsDomain(errors.New("boom")) {
		t.Fatal("plain error should not be a domain failure")
	}
	if services.IsDomain(services.Wrap(services.ErrNotFound, "", "", "", nil)) {
		t.Fatal("not found is not a pipeline domain failure")
	}
}
