package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/DjordjeVuckovic/searchbench/internal/apperr"
)

func TestNewConfig(t *testing.T) {
	err := apperr.NewConfig("BRAVE_API_KEY is not set")

	if err.Error() != "BRAVE_API_KEY is not set" {
		t.Errorf("expected 'BRAVE_API_KEY is not set', got %q", err.Error())
	}
	if err.Unwrap() != nil {
		t.Errorf("expected nil unwrap, got %v", err.Unwrap())
	}
}

func TestNewConfigWrap(t *testing.T) {
	inner := fmt.Errorf("no such file")
	err := apperr.NewConfigWrap("open queries file", inner)

	if err.Error() != "open queries file: no such file" {
		t.Errorf("expected 'open queries file: no such file', got %q", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("expected Unwrap to return inner error")
	}
}

func TestConfigError_SurvivesFmtWrapping(t *testing.T) {
	original := apperr.NewConfig("unknown engine")

	wrapped := fmt.Errorf("build executor: %w", original)
	doubleWrapped := fmt.Errorf("engine brave: %w", wrapped)

	var ce *apperr.ConfigError
	if !errors.As(doubleWrapped, &ce) {
		t.Fatal("errors.As should find ConfigError through double wrapping")
	}
	if ce.Message != "unknown engine" {
		t.Errorf("expected 'unknown engine', got %q", ce.Message)
	}
	if !apperr.IsConfig(doubleWrapped) {
		t.Error("IsConfig should report true for wrapped ConfigError")
	}
}

func TestConfigError_NotFoundForPlainErrors(t *testing.T) {
	plain := fmt.Errorf("connection reset by peer")
	wrapped := fmt.Errorf("write report: %w", plain)

	if apperr.IsConfig(wrapped) {
		t.Fatal("IsConfig should be false for a plain error chain")
	}
}
