package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestGetCodeUnwrapsChain(t *testing.T) {
	base := New(CodeQuotaExceeded, "limit reached")
	wrapped := fmt.Errorf("submit action: %w", base)

	if got := GetCode(wrapped); got != CodeQuotaExceeded {
		t.Fatalf("GetCode = %q, want %q", got, CodeQuotaExceeded)
	}
	if !IsCode(wrapped, CodeQuotaExceeded) {
		t.Fatal("IsCode should match through wrapping")
	}
}

func TestGetCodeUnknownForPlainErrors(t *testing.T) {
	if got := GetCode(errors.New("plain")); got != CodeUnknown {
		t.Fatalf("GetCode = %q, want %q", got, CodeUnknown)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(CodePersistenceFailure, "persist session", cause)

	if !errors.Is(err, cause) {
		t.Fatal("wrapped error should match its cause")
	}
	if err.Error() != "persist session" {
		t.Fatalf("Error() = %q, want %q", err.Error(), "persist session")
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	err := WithMetadata(CodeInvalidDifficulty, "unknown tier", map[string]string{"difficulty": "nightmare"})

	meta := GetMetadata(err)
	if meta["difficulty"] != "nightmare" {
		t.Fatalf("metadata = %v, want difficulty=nightmare", meta)
	}
	if GetMetadata(errors.New("plain")) != nil {
		t.Fatal("plain errors should have nil metadata")
	}
}

func TestIsMatchesByCode(t *testing.T) {
	a := New(CodeNotFound, "record not found")
	b := New(CodeNotFound, "different message")

	if !errors.Is(a, b) {
		t.Fatal("errors with the same code should match")
	}
	if errors.Is(a, New(CodeUnknown, "record not found")) {
		t.Fatal("errors with different codes should not match")
	}
}
