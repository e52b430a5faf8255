package logging

import (
	"context"
	"testing"
)

func TestWithRunID(t *testing.T) {
	ctx := WithRunID(context.Background(), "run-123")

	if got := GetRunID(ctx); got != "run-123" {
		t.Errorf("GetRunID() = %q, want %q", got, "run-123")
	}
}

func TestWithCommentID(t *testing.T) {
	ctx := WithCommentID(context.Background(), "UgxAbc")

	if got := GetCommentID(ctx); got != "UgxAbc" {
		t.Errorf("GetCommentID() = %q, want %q", got, "UgxAbc")
	}
}

func TestGetters_NotPresent(t *testing.T) {
	ctx := context.Background()

	if got := GetRunID(ctx); got != "" {
		t.Errorf("GetRunID() = %q, want empty string", got)
	}
	if got := GetCommentID(ctx); got != "" {
		t.Errorf("GetCommentID() = %q, want empty string", got)
	}
}
