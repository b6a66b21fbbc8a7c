package services_test

import (
	"errors"
	"testing"

	"seminar/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	cause := errors.New("connection refused")
	err := services.Wrap(services.ErrExternalTool, "transcription", "submit audio", "whisperx call failed", cause)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to remain unwrappable, got %v", err)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "ingest", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestDetailsClassifiesMarkers(t *testing.T) {
	cases := []struct {
		marker error
		kind   services.Kind
	}{
		{services.ErrValidation, services.KindValidation},
		{services.ErrConfiguration, services.KindConfiguration},
		{services.ErrNotFound, services.KindNotFound},
		{services.ErrTimeout, services.KindTimeout},
		{services.ErrExternalTool, services.KindExternalTool},
		{errors.New("untagged"), services.KindTransient},
	}
	for _, tc := range cases {
		details := services.Details(services.Wrap(tc.marker, "step", "op", "msg", nil))
		if tc.kind != services.KindTransient && details.Kind != tc.kind {
			t.Fatalf("marker %v: expected kind %s, got %s", tc.marker, tc.kind, details.Kind)
		}
	}
	if services.Details(nil).Kind != services.KindTransient {
		t.Fatal("nil error should classify as transient")
	}
}
