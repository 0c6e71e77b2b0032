package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(CodeDependency, cause, "gateway call")

	if err.Code() != CodeDependency {
		t.Fatalf("unexpected code: %s", err.Code())
	}
	if err.Unwrap() != cause {
		t.Fatalf("expected cause to round-trip")
	}
	if got := err.Error(); got != "DEPENDENCY_ERROR: gateway call" {
		t.Fatalf("unexpected error string: %q", got)
	}
}

func TestAsFindsTypedError(t *testing.T) {
	inner := New(CodeStateConflict, "pet already adopted")
	wrapped := fmt.Errorf("handling notification: %w", inner)

	typed := As(wrapped)
	if typed == nil {
		t.Fatal("expected typed error")
	}
	if typed.Code() != CodeStateConflict {
		t.Fatalf("unexpected code: %s", typed.Code())
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("BOGUS"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestMetadataStatuses(t *testing.T) {
	cases := map[Code]int{
		CodeValidation:    http.StatusBadRequest,
		CodeUnauthorized:  http.StatusUnauthorized,
		CodeNotFound:      http.StatusNotFound,
		CodeConflict:      http.StatusConflict,
		CodeStateConflict: http.StatusUnprocessableEntity,
		CodeDependency:    http.StatusServiceUnavailable,
	}
	for code, status := range cases {
		if got := MetadataFor(code).HTTPStatus; got != status {
			t.Fatalf("code %s: expected %d, got %d", code, status, got)
		}
	}
}
