package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/parksphere/portal/internal/core/domain"
	"github.com/parksphere/portal/internal/core/ports"
)

func sessionFor(role domain.Role) domain.Session {
	return domain.Session{Token: "tok", Identity: &domain.Identity{UserID: 1, Username: "u", Role: role}}
}

func TestFederatedSearch_EmptyQueryReturnsQuickActions(t *testing.T) {
	backend := &stubBackend{}
	search := NewFederatedSearch(backend, zerolog.Nop())

	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleStaff, domain.RoleUser} {
		got := search.Search(context.Background(), sessionFor(role), "  ")
		want := domain.QuickActionsFor(role)
		if len(got) != len(want) || got[0].ID != want[0].ID {
			t.Fatalf("%s: expected quick actions, got %+v", role, got)
		}
	}
	if backend.calls != 0 {
		t.Fatalf("expected no backend calls, got %d", backend.calls)
	}
}

func TestFederatedSearch_UnknownRoleNeverQueries(t *testing.T) {
	backend := &stubBackend{}
	search := NewFederatedSearch(backend, zerolog.Nop())

	got := search.Search(context.Background(), sessionFor("AUDITOR"), "spot")
	if len(got) != 0 {
		t.Fatalf("expected no results, got %+v", got)
	}
	if backend.calls != 0 {
		t.Fatalf("expected no backend calls, got %d", backend.calls)
	}
}

func TestFederatedSearch_AdminFlattensInCategoryOrder(t *testing.T) {
	backend := &stubBackend{searchGlobal: func(string) (*ports.GlobalSearchResponse, error) {
		return &ports.GlobalSearchResponse{
			Users:        []ports.UserItem{{UserID: 3, Username: "carol", Email: "c@x.io", Role: "STAFF"}},
			Spots:        []ports.SpotItem{{SpotID: 7, SpotNumber: "A1", SpotType: "COMPACT", Status: "OCCUPIED"}},
			Reservations: []ports.ReservationItem{{ReservationID: 9, ParkingSpot: ports.SpotRef{SpotNumber: "A1"}, Status: "ACTIVE"}},
		}, nil
	}}
	search := NewFederatedSearch(backend, zerolog.Nop())

	got := search.Search(context.Background(), sessionFor(domain.RoleAdmin), "a")
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}

	want := []domain.SearchResult{
		{ID: "user-3", Title: "carol", Subtitle: "c@x.io • STAFF", Category: domain.CategoryUsers, Target: "/admin/users", ClosesPanel: true},
		{ID: "spot-7", Title: "Spot A1", Subtitle: "COMPACT • OCCUPIED", Category: domain.CategorySpots, Target: "/admin/spots", ClosesPanel: true},
		{ID: "reservation-9", Title: "Reservation #9", Subtitle: "Spot A1 • ACTIVE", Category: domain.CategoryReservations, Target: "/admin/dashboard", ClosesPanel: true},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("result %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestFederatedSearch_StaffIsCapped(t *testing.T) {
	backend := &stubBackend{searchSpots: func(string) ([]ports.SpotItem, error) {
		spots := make([]ports.SpotItem, 12)
		for i := range spots {
			spots[i] = ports.SpotItem{SpotID: int64(i + 1), SpotNumber: "B", SpotType: "EV", Status: "AVAILABLE"}
		}
		return spots, nil
	}}
	search := NewFederatedSearch(backend, zerolog.Nop())

	got := search.Search(context.Background(), sessionFor(domain.RoleStaff), "b")
	if len(got) != StaffSearchLimit {
		t.Fatalf("expected %d results, got %d", StaffSearchLimit, len(got))
	}
	if got[0].Subtitle != "AVAILABLE • EV" || got[0].Target != "/staff/spots" {
		t.Fatalf("unexpected staff entry: %+v", got[0])
	}
}

func TestFederatedSearch_UserFlattensInCategoryOrder(t *testing.T) {
	start := time.Date(2025, time.March, 4, 9, 0, 0, 0, time.UTC)
	backend := &stubBackend{searchAccount: func(string) (*ports.AccountSearchResponse, error) {
		return &ports.AccountSearchResponse{
			Vehicles:      []ports.VehicleItem{{VehicleID: 2, LicensePlate: "ABC-123", VehicleType: "CAR", Brand: "Mazda", Model: "3"}},
			Reservations:  []ports.ReservationItem{{ReservationID: 5, ParkingSpot: ports.SpotRef{SpotNumber: "C4"}, StartTime: start, Status: "PENDING"}},
			FavoriteSpots: []ports.SpotItem{{SpotID: 8, SpotNumber: "D2", Status: "AVAILABLE"}},
		}, nil
	}}
	search := NewFederatedSearch(backend, zerolog.Nop())

	got := search.Search(context.Background(), sessionFor(domain.RoleUser), "c")
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	if got[0].ID != "vehicle-2" || got[0].Subtitle != "Mazda 3 • CAR" {
		t.Fatalf("unexpected vehicle entry: %+v", got[0])
	}
	if got[1].ID != "reservation-5" || got[1].Subtitle != "Mar 4, 2025 • PENDING" || got[1].Target != "/user/reservations" {
		t.Fatalf("unexpected reservation entry: %+v", got[1])
	}
	if got[2].ID != "fav-spot-8" || got[2].Subtitle != "Favorite • AVAILABLE" || got[2].Category != domain.CategorySpots {
		t.Fatalf("unexpected favorite entry: %+v", got[2])
	}
}

func TestFederatedSearch_FallsBackOnErrorAndEmpty(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) ([]ports.SpotItem, error)
	}{
		{"error", func(string) ([]ports.SpotItem, error) { return nil, errors.New("boom") }},
		{"empty", func(string) ([]ports.SpotItem, error) { return nil, nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			search := NewFederatedSearch(&stubBackend{searchSpots: tt.fn}, zerolog.Nop())
			got := search.Search(context.Background(), sessionFor(domain.RoleStaff), "x")
			want := domain.QuickActionsFor(domain.RoleStaff)
			if len(got) != len(want) || got[0].Category != domain.CategoryActions {
				t.Fatalf("expected quick actions, got %+v", got)
			}
		})
	}
}
