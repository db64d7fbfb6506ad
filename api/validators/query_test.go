package validators

import (
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/freightport/terminal-backend/pkg/errors"
)

func TestParseQueryInt(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/?limit=30", nil)
	got, err := ParseQueryInt(r, "limit", 25, 0, 100)
	if err != nil || got != 30 {
		t.Fatalf("ParseQueryInt = %d, %v", got, err)
	}

	r = httptest.NewRequest("GET", "/", nil)
	got, err = ParseQueryInt(r, "limit", 25, 0, 100)
	if err != nil || got != 25 {
		t.Fatalf("expected default 25, got %d, %v", got, err)
	}

	r = httptest.NewRequest("GET", "/?limit=abc", nil)
	if _, err = ParseQueryInt(r, "limit", 25, 0, 100); err == nil {
		t.Fatal("expected error for non-numeric value")
	} else if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	r = httptest.NewRequest("GET", "/?limit=101", nil)
	if _, err = ParseQueryInt(r, "limit", 25, 0, 100); err == nil {
		t.Fatal("expected error for out-of-range value")
	}
}

func TestParseQueryBool(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/?is_urgent=true", nil)
	got, err := ParseQueryBool(r, "is_urgent")
	if err != nil || got == nil || !*got {
		t.Fatalf("ParseQueryBool = %v, %v", got, err)
	}

	r = httptest.NewRequest("GET", "/", nil)
	got, err = ParseQueryBool(r, "is_urgent")
	if err != nil || got != nil {
		t.Fatalf("absent param should be nil, got %v, %v", got, err)
	}

	r = httptest.NewRequest("GET", "/?is_urgent=maybe", nil)
	if _, err = ParseQueryBool(r, "is_urgent"); err == nil {
		t.Fatal("expected error for invalid boolean")
	}
}
