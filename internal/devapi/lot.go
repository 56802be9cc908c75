package devapi

import (
	"strings"
	"sync"
	"time"

	"github.com/parksphere/portal/internal/core/domain"
	"github.com/parksphere/portal/internal/core/ports"
)

type vehicle struct {
	ports.VehicleItem
	OwnerID int64
}

type reservation struct {
	ID        int64
	OwnerID   int64
	SpotID    int64
	VehicleID int64
	StartTime time.Time
	Status    string
}

// Lot is the parking data behind the search endpoints. Spot status changes
// are reported to onChange.
type Lot struct {
	mu           sync.RWMutex
	spots        []ports.SpotItem
	vehicles     []vehicle
	reservations []reservation
	favorites    map[int64][]int64
	onChange     func(domain.SpotUpdate)
}

func newLot() *Lot {
	return &Lot{favorites: make(map[int64][]int64)}
}

// SetStatus changes a spot's status. Unknown spots and unchanged statuses are
// ignored.
func (l *Lot) SetStatus(spotID int64, status domain.SpotStatus) bool {
	l.mu.Lock()
	var update *domain.SpotUpdate
	for i := range l.spots {
		s := &l.spots[i]
		if s.SpotID != spotID || s.Status == string(status) {
			continue
		}
		s.Status = string(status)
		update = &domain.SpotUpdate{SpotID: s.SpotID, SpotNumber: s.SpotNumber, Status: status}
		break
	}
	notify := l.onChange
	l.mu.Unlock()

	if update == nil {
		return false
	}
	if notify != nil {
		notify(*update)
	}
	return true
}

func (l *Lot) spotIDs() []int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]int64, len(l.spots))
	for i, s := range l.spots {
		ids[i] = s.SpotID
	}
	return ids
}

// SearchSpots matches number, type or status.
func (l *Lot) SearchSpots(q string) []ports.SpotItem {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := []ports.SpotItem{}
	for _, s := range l.spots {
		if contains(q, s.SpotNumber, s.SpotType, s.Status) {
			out = append(out, s)
		}
	}
	return out
}

// SearchReservations matches spot number or plate. ownerID 0 searches everyone.
func (l *Lot) SearchReservations(q string, ownerID int64) []ports.ReservationItem {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := []ports.ReservationItem{}
	for _, r := range l.reservations {
		if ownerID != 0 && r.OwnerID != ownerID {
			continue
		}
		item := l.reservationItemLocked(r)
		plate := ""
		if item.Vehicle != nil {
			plate = item.Vehicle.LicensePlate
		}
		if contains(q, item.ParkingSpot.SpotNumber, plate, r.Status) {
			out = append(out, item)
		}
	}
	return out
}

// SearchVehicles matches plate, brand or model among the owner's vehicles.
func (l *Lot) SearchVehicles(q string, ownerID int64) []ports.VehicleItem {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := []ports.VehicleItem{}
	for _, v := range l.vehicles {
		if v.OwnerID == ownerID && contains(q, v.LicensePlate, v.Brand, v.Model, v.VehicleType) {
			out = append(out, v.VehicleItem)
		}
	}
	return out
}

// SearchFavorites matches the owner's favourite spots.
func (l *Lot) SearchFavorites(q string, ownerID int64) []ports.SpotItem {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := []ports.SpotItem{}
	for _, id := range l.favorites[ownerID] {
		if s, ok := l.spotLocked(id); ok && contains(q, s.SpotNumber, s.SpotType) {
			out = append(out, s)
		}
	}
	return out
}

func (l *Lot) reservationItemLocked(r reservation) ports.ReservationItem {
	item := ports.ReservationItem{
		ReservationID: r.ID,
		StartTime:     r.StartTime,
		Status:        r.Status,
	}
	if s, ok := l.spotLocked(r.SpotID); ok {
		item.ParkingSpot.SpotNumber = s.SpotNumber
	}
	for _, v := range l.vehicles {
		if v.VehicleID == r.VehicleID {
			item.Vehicle = &ports.VehicleRef{LicensePlate: v.LicensePlate}
			break
		}
	}
	return item
}

func (l *Lot) spotLocked(id int64) (ports.SpotItem, bool) {
	for _, s := range l.spots {
		if s.SpotID == id {
			return s, true
		}
	}
	return ports.SpotItem{}, false
}

func contains(q string, fields ...string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
