package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/parksphere/portal/internal/api/metrics"
	"github.com/parksphere/portal/internal/core/domain"
	"github.com/parksphere/portal/internal/core/ports"
)

// StaffSearchLimit caps the spot list shown to staff.
const StaffSearchLimit = 8

// FederatedSearch turns a free-text query into panel entries by calling the
// search endpoint that the session's role is allowed to use.
type FederatedSearch struct {
	backend ports.Backend
	log     zerolog.Logger
}

func NewFederatedSearch(backend ports.Backend, log zerolog.Logger) *FederatedSearch {
	return &FederatedSearch{
		backend: backend,
		log:     log.With().Str("component", "federated_search").Logger(),
	}
}

// QuickActions is the static shortcut list shown for an empty query.
func (f *FederatedSearch) QuickActions(role domain.Role) []domain.SearchResult {
	return domain.QuickActionsFor(role)
}

// Search never fails: an empty query, an unsearchable role, a backend error
// or an empty response all yield the role's quick actions.
func (f *FederatedSearch) Search(ctx context.Context, s domain.Session, query string) []domain.SearchResult {
	role := s.Role()
	query = strings.TrimSpace(query)
	if query == "" {
		return f.QuickActions(role)
	}

	capability, ok := domain.CapabilityFor(role)
	if !ok || capability.Search == domain.SearchNone || !s.Authenticated() {
		return f.QuickActions(role)
	}

	results, err := f.query(ctx, capability.Search, s.Token, query)
	if err != nil {
		if ctx.Err() != nil {
			metrics.SearchQueriesTotal.WithLabelValues(string(role), "cancelled").Inc()
			return nil
		}
		f.log.Error().Err(err).
			Str("role", string(role)).
			Str("scope", string(capability.Search)).
			Msg("search request failed")
		metrics.SearchQueriesTotal.WithLabelValues(string(role), "error").Inc()
		return f.QuickActions(role)
	}
	if len(results) == 0 {
		metrics.SearchQueriesTotal.WithLabelValues(string(role), "empty").Inc()
		return f.QuickActions(role)
	}

	metrics.SearchQueriesTotal.WithLabelValues(string(role), "hit").Inc()
	return results
}

func (f *FederatedSearch) query(ctx context.Context, scope domain.SearchScope, token, q string) ([]domain.SearchResult, error) {
	switch scope {
	case domain.SearchGlobal:
		resp, err := f.backend.SearchGlobal(ctx, token, q)
		if err != nil {
			return nil, err
		}
		return globalResults(resp), nil
	case domain.SearchSpots:
		spots, err := f.backend.SearchSpots(ctx, token, q)
		if err != nil {
			return nil, err
		}
		return staffResults(spots), nil
	case domain.SearchAccount:
		resp, err := f.backend.SearchAccount(ctx, token, q)
		if err != nil {
			return nil, err
		}
		return accountResults(resp), nil
	default:
		return nil, fmt.Errorf("unknown search scope %q", scope)
	}
}

func globalResults(resp *ports.GlobalSearchResponse) []domain.SearchResult {
	if resp == nil {
		return nil
	}
	out := make([]domain.SearchResult, 0, len(resp.Users)+len(resp.Spots)+len(resp.Reservations))
	for _, u := range resp.Users {
		out = append(out, domain.SearchResult{
			ID:          fmt.Sprintf("user-%d", u.UserID),
			Title:       u.Username,
			Subtitle:    u.Email + " • " + u.Role,
			Category:    domain.CategoryUsers,
			Target:      "/admin/users",
			ClosesPanel: true,
		})
	}
	for _, sp := range resp.Spots {
		out = append(out, domain.SearchResult{
			ID:          fmt.Sprintf("spot-%d", sp.SpotID),
			Title:       "Spot " + sp.SpotNumber,
			Subtitle:    sp.SpotType + " • " + sp.Status,
			Category:    domain.CategorySpots,
			Target:      "/admin/spots",
			ClosesPanel: true,
		})
	}
	for _, r := range resp.Reservations {
		out = append(out, domain.SearchResult{
			ID:          fmt.Sprintf("reservation-%d", r.ReservationID),
			Title:       fmt.Sprintf("Reservation #%d", r.ReservationID),
			Subtitle:    "Spot " + r.ParkingSpot.SpotNumber + " • " + r.Status,
			Category:    domain.CategoryReservations,
			Target:      "/admin/dashboard",
			ClosesPanel: true,
		})
	}
	return out
}

func staffResults(spots []ports.SpotItem) []domain.SearchResult {
	if len(spots) > StaffSearchLimit {
		spots = spots[:StaffSearchLimit]
	}
	out := make([]domain.SearchResult, 0, len(spots))
	for _, sp := range spots {
		out = append(out, domain.SearchResult{
			ID:          fmt.Sprintf("spot-%d", sp.SpotID),
			Title:       "Spot " + sp.SpotNumber,
			Subtitle:    sp.Status + " • " + sp.SpotType,
			Category:    domain.CategorySpots,
			Target:      "/staff/spots",
			ClosesPanel: true,
		})
	}
	return out
}

func accountResults(resp *ports.AccountSearchResponse) []domain.SearchResult {
	if resp == nil {
		return nil
	}
	out := make([]domain.SearchResult, 0, len(resp.Vehicles)+len(resp.Reservations)+len(resp.FavoriteSpots))
	for _, v := range resp.Vehicles {
		out = append(out, domain.SearchResult{
			ID:          fmt.Sprintf("vehicle-%d", v.VehicleID),
			Title:       v.LicensePlate,
			Subtitle:    v.Brand + " " + v.Model + " • " + v.VehicleType,
			Category:    domain.CategoryVehicles,
			Target:      "/user/vehicles",
			ClosesPanel: true,
		})
	}
	for _, r := range resp.Reservations {
		out = append(out, domain.SearchResult{
			ID:          fmt.Sprintf("reservation-%d", r.ReservationID),
			Title:       "Spot " + r.ParkingSpot.SpotNumber,
			Subtitle:    r.StartTime.Format("Jan 2, 2006") + " • " + r.Status,
			Category:    domain.CategoryReservations,
			Target:      "/user/reservations",
			ClosesPanel: true,
		})
	}
	for _, sp := range resp.FavoriteSpots {
		out = append(out, domain.SearchResult{
			ID:          fmt.Sprintf("fav-spot-%d", sp.SpotID),
			Title:       "Spot " + sp.SpotNumber,
			Subtitle:    "Favorite • " + sp.Status,
			Category:    domain.CategorySpots,
			Target:      "/user/spots",
			ClosesPanel: true,
		})
	}
	return out
}
