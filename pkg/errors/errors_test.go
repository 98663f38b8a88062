package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppErrorFormat(t *testing.T) {
	err := New(ErrCodeRunNotFound, "research run not found")
	want := "[RUN_001] research run not found"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}

	withDetail := err.WithDetail("id=abc")
	want = "[RUN_001] research run not found: id=abc"
	if withDetail.Error() != want {
		t.Fatalf("Error() = %q, want %q", withDetail.Error(), want)
	}
	// WithDetail must not mutate the receiver.
	if err.Detail != "" {
		t.Fatalf("WithDetail mutated original: %q", err.Detail)
	}
}

func TestAppErrorFormatIncludesCause(t *testing.T) {
	root := stderrors.New("scraper crashed")
	wrapped := Wrap(root, ErrCodeRunPipelineFailed, "competitor mining for rival.com")
	want := "[RUN_005] competitor mining for rival.com: scraper crashed"
	if wrapped.Error() != want {
		t.Fatalf("Error() = %q, want %q", wrapped.Error(), want)
	}

	detailed := wrapped.WithDetail("domain=rival.com")
	want = "[RUN_005] competitor mining for rival.com: domain=rival.com: scraper crashed"
	if detailed.Error() != want {
		t.Fatalf("Error() = %q, want %q", detailed.Error(), want)
	}
}

func TestWrapNil(t *testing.T) {
	if got := Wrap(nil, ErrCodeDatabaseError, "query failed"); got != nil {
		t.Fatalf("Wrap(nil) = %v, want nil", got)
	}
}

func TestWrapPreservesChain(t *testing.T) {
	root := stderrors.New("connection refused")
	wrapped := Wrap(root, ErrCodeDatabaseError, "failed to load run")
	doubly := fmt.Errorf("stage metrics: %w", wrapped)

	if !stderrors.Is(doubly, root) {
		t.Fatal("errors.Is should reach the root cause through the chain")
	}
	if !IsCode(doubly, ErrCodeDatabaseError) {
		t.Fatal("IsCode should find ErrCodeDatabaseError in the chain")
	}
	if IsCode(doubly, ErrCodeRunTimeout) {
		t.Fatal("IsCode matched an absent code")
	}
}

func TestGetCode(t *testing.T) {
	if GetCode(nil) != CodeOK {
		t.Fatal("GetCode(nil) should be CodeOK")
	}
	if GetCode(stderrors.New("plain")) != CodeUnknown {
		t.Fatal("GetCode(plain error) should be CodeUnknown")
	}
	if GetCode(New(ErrCodeEmbeddingFailed, "x")) != ErrCodeEmbeddingFailed {
		t.Fatal("GetCode should return the AppError code")
	}
}

func TestIsNotFound(t *testing.T) {
	for _, code := range []ErrorCode{ErrCodeNotFound, ErrCodeRunNotFound, ErrCodeKeywordNotFound} {
		if !IsNotFound(New(code, "missing")) {
			t.Fatalf("IsNotFound(%s) = false", code)
		}
	}
	if IsNotFound(New(ErrCodeTimeout, "slow")) {
		t.Fatal("IsNotFound(timeout) = true")
	}
}

func TestHTTPStatusForCode(t *testing.T) {
	if got := HTTPStatusForCode(ErrCodeRunNotFound); got != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", got)
	}
	if got := HTTPStatusForCode(ErrorCode("BOGUS_999")); got != http.StatusInternalServerError {
		t.Fatalf("unknown code status = %d, want 500", got)
	}
}

func TestModuleForCode(t *testing.T) {
	if ModuleForCode(ErrCodeClusteringFailed) != "KW" {
		t.Fatal("module prefix for KW_004 should be KW")
	}
	if ModuleForCode(ErrorCode("")) != "UNKNOWN" {
		t.Fatal("empty code should map to UNKNOWN")
	}
}
