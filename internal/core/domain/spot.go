package domain

// SpotStatus is the occupancy state of a parking spot.
type SpotStatus string

const (
	SpotAvailable SpotStatus = "AVAILABLE"
	SpotOccupied  SpotStatus = "OCCUPIED"
	SpotReserved  SpotStatus = "RESERVED"
)

// EventSpotUpdate is the only push frame type the portal acts on.
const EventSpotUpdate = "spot_update"

// SpotUpdate is one "spot status changed" event received on the push channel.
type SpotUpdate struct {
	SpotID     int64      `json:"spotId"`
	SpotNumber string     `json:"spotNumber"`
	Status     SpotStatus `json:"status"`
}
