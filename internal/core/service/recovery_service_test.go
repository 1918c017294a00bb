package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/dygon/bus-tracking/internal/core/domain"
	"github.com/dygon/bus-tracking/internal/core/registry"
)

func running(id string, lat, lng float64) domain.VehicleState {
	return domain.VehicleState{VehicleNumber: id, Status: domain.StatusRunning, Latitude: lat, Longitude: lng}
}

func stopped(id string) domain.VehicleState {
	return domain.VehicleState{VehicleNumber: id, Status: domain.StatusStopped}
}

func TestRecovery_RestoresOnlyRunning(t *testing.T) {
	repo := newStubVehicleRepo(
		running("V1", 13.05, 80.25), running("V2", 0, 0), running("V3", 12.9, 80.1),
		stopped("V4"), stopped("V5"),
	)
	reg := registry.New()
	reg.Upsert("STALE", domain.VehicleState{VehicleNumber: "STALE"})

	report, err := NewRecoveryService(reg, repo, zerolog.Nop()).Restore(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if reg.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", reg.Len())
	}
	if _, ok := reg.Get("STALE"); ok {
		t.Error("registry must be cleared before recovery")
	}
	if report.Found != 3 || report.Restored != 3 || report.Skipped != 0 {
		t.Errorf("unexpected report: %+v", report)
	}
	v1, _ := reg.Get("V1")
	if v1.Latitude != 13.05 || v1.Longitude != 80.25 {
		t.Errorf("coordinates must be restored verbatim, got (%v, %v)", v1.Latitude, v1.Longitude)
	}
}

func TestRecovery_SkipsBadEntriesAndContinues(t *testing.T) {
	repo := newStubVehicleRepo(
		running("V1", 13.05, 80.25),
		running("BAD", math.NaN(), 80.0),
		running("V3", 12.9, 80.1),
	)
	repo.vehicles["   "] = running("   ", 1, 1)

	reg := registry.New()
	report, err := NewRecoveryService(reg, repo, zerolog.Nop()).Restore(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reg.Len() != 2 {
		t.Errorf("expected 2 restored entries, got %d", reg.Len())
	}
	if report.Skipped != 2 || report.Restored != 2 {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestRecovery_StoreFailure(t *testing.T) {
	repo := newStubVehicleRepo()
	repo.findErr = errors.New("mongo unavailable")
	reg := registry.New()
	reg.Upsert("V1", domain.VehicleState{VehicleNumber: "V1"})

	_, err := NewRecoveryService(reg, repo, zerolog.Nop()).Restore(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if reg.Len() != 0 {
		t.Errorf("expected empty registry after failed recovery, got %d", reg.Len())
	}
}
