package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"reelchain/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrConfiguration, "store", "open", "failed", base)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"store", "open", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestKindOfClassifiesTaggedErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want services.Kind
	}{
		{"external", services.External("provider down", nil), services.KindExternalService},
		{"wrapped external", fmt.Errorf("outer: %w", services.ExternalStatus("not found", 404, nil)), services.KindExternalService},
		{"internal", services.Internal("corrupt row", nil), services.KindInternal},
		{"untagged", errors.New("plain"), services.KindInternal},
		{"zero kind", &services.ExternalServiceError{Message: "legacy"}, services.KindExternalService},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.KindOf(tc.err); got != tc.want {
				t.Fatalf("KindOf = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAsExternalServiceErrorPassesTaggedThrough(t *testing.T) {
	tagged := services.ExternalStatus("resource not found", 404, nil)
	if got := services.AsExternalServiceError("generation failed", tagged); got != tagged {
		t.Fatalf("expected tagged error to pass through, got %v", got)
	}

	plain := errors.New("decode failure")
	got := services.AsExternalServiceError("generation failed", plain)
	ext, ok := services.AsExternal(got)
	if !ok {
		t.Fatalf("expected ExternalServiceError, got %T", got)
	}
	if ext.Kind != services.KindExternalService || !errors.Is(got, plain) {
		t.Fatalf("unexpected wrap: %#v", ext)
	}
	if services.AsExternalServiceError("x", nil) != nil {
		t.Fatal("expected nil for nil error")
	}
}

func TestExternalServiceErrorMessage(t *testing.T) {
	err := services.ExternalStatus("Failed to fetch credits", 503, errors.New("http 503"))
	want := "Failed to fetch credits (status 503): http 503"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}
