package logging

import (
	"context"
	"log/slog"
	"testing"

	"github.com/proofpost-systems/proofpost/internal/middleware"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewFormats(t *testing.T) {
	if l := New(slog.LevelInfo, "json"); l == nil || l.Logger == nil {
		t.Error("New(json) returned nil logger")
	}
	if l := New(slog.LevelDebug, "text"); l == nil || l.Logger == nil {
		t.Error("New(text) returned nil logger")
	}
}

func TestWithContextRequestID(t *testing.T) {
	l := New(slog.LevelInfo, "json")

	plain := l.WithContext(context.Background())
	if plain != l.Logger {
		t.Error("context without request ID should return the base logger")
	}

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-123")
	enriched := l.WithContext(ctx)
	if enriched == l.Logger {
		t.Error("context with request ID should return an enriched logger")
	}
}
