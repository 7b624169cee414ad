package dispatch

import (
	"errors"
	"testing"

	"github.com/zapflow/zapflow/internal/models"
)

func TestApplyGatedRuns(t *testing.T) {
	client := &models.Client{Name: "Padaria"}
	ran := false

	result, err := ApplyGated(client, func() error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ran {
		t.Error("expected fn to run")
	}
	if result.Skipped {
		t.Errorf("expected not skipped, got %+v", result)
	}
}

func TestApplyGatedSkipsManualOverride(t *testing.T) {
	client := &models.Client{Name: "Padaria", ManualOverride: true}
	ran := false

	result, err := ApplyGated(client, func() error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ran {
		t.Error("expected fn not to run under manual override")
	}
	if !result.Skipped {
		t.Error("expected skipped:true")
	}
	if result.Reason == "" {
		t.Error("expected a skip reason")
	}
}

func TestApplyGatedPropagatesError(t *testing.T) {
	client := &models.Client{Name: "Padaria"}
	wantErr := errors.New("relay down")

	_, err := ApplyGated(client, func() error { return wantErr })
	if !errors.Is(err, wantErr) {
		t.Errorf("expected error propagated, got %v", err)
	}
}
