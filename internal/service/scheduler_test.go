package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/albarakah/umrah-backoffice/internal/domain"
)

func seedPackageWithDates(store *mockPackageStore, id, status, departure, ret string) {
	store.packages[id] = &domain.Package{
		ID:            id,
		Code:          id,
		Name:          "Paket " + id,
		Type:          "umroh",
		Status:        status,
		DepartureDate: departure,
		ReturnDate:    ret,
	}
}

func TestUpdatePackageStatusesSweep(t *testing.T) {
	store := newMockPackageStore()
	svc := NewSchedulerService(store, zap.NewNop(), time.Hour)
	svc.now = func() time.Time {
		return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	}

	// Departs within a week: must stop taking bookings.
	seedPackageWithDates(store, "pkg-soon", domain.PackageStatusOpen, "2024-06-05", "")
	// Departs next month: stays open.
	seedPackageWithDates(store, "pkg-later", domain.PackageStatusOpen, "2024-07-01", "2024-07-12")
	// Already back: both closed and ongoing groups complete.
	seedPackageWithDates(store, "pkg-back", domain.PackageStatusClosed, "2024-05-01", "2024-05-20")
	seedPackageWithDates(store, "pkg-landed", domain.PackageStatusOngoing, "2024-05-10", "2024-05-30")
	// Still abroad: return date has not passed.
	seedPackageWithDates(store, "pkg-abroad", domain.PackageStatusOngoing, "2024-05-25", "2024-06-10")

	closed, completed, err := svc.UpdatePackageStatuses(context.Background())
	if err != nil {
		t.Fatalf("UpdatePackageStatuses() error = %v", err)
	}
	if closed != 1 || completed != 2 {
		t.Errorf("sweep = %d closed, %d completed; want 1, 2", closed, completed)
	}

	want := map[string]string{
		"pkg-soon":   domain.PackageStatusClosed,
		"pkg-later":  domain.PackageStatusOpen,
		"pkg-back":   domain.PackageStatusCompleted,
		"pkg-landed": domain.PackageStatusCompleted,
		"pkg-abroad": domain.PackageStatusOngoing,
	}
	for id, status := range want {
		if got := store.packages[id].Status; got != status {
			t.Errorf("%s status = %q, want %q", id, got, status)
		}
	}

	// A second sweep on the same day finds nothing left to move.
	closed, completed, err = svc.UpdatePackageStatuses(context.Background())
	if err != nil {
		t.Fatalf("second UpdatePackageStatuses() error = %v", err)
	}
	if closed != 0 || completed != 0 {
		t.Errorf("second sweep = %d closed, %d completed; want 0, 0", closed, completed)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	store := newMockPackageStore()
	svc := NewSchedulerService(store, zap.NewNop(), time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
