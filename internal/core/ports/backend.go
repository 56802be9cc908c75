package ports

import (
	"context"
	"time"

	"github.com/parksphere/portal/internal/core/domain"
)

// UserItem is a user row returned by the admin global search.
type UserItem struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// SpotItem is a parking spot row.
type SpotItem struct {
	SpotID     int64  `json:"spotId"`
	SpotNumber string `json:"spotNumber"`
	SpotType   string `json:"spotType"`
	Status     string `json:"status"`
}

// SpotRef is the spot embedded in a reservation.
type SpotRef struct {
	SpotNumber string `json:"spotNumber"`
}

// VehicleRef is the vehicle embedded in a reservation.
type VehicleRef struct {
	LicensePlate string `json:"licensePlate"`
}

// ReservationItem is a reservation row.
type ReservationItem struct {
	ReservationID int64       `json:"reservationId"`
	ParkingSpot   SpotRef     `json:"parkingSpot"`
	Vehicle       *VehicleRef `json:"vehicle,omitempty"`
	StartTime     time.Time   `json:"startTime"`
	Status        string      `json:"status"`
}

// VehicleItem is a vehicle row.
type VehicleItem struct {
	VehicleID    int64  `json:"vehicleId"`
	LicensePlate string `json:"licensePlate"`
	VehicleType  string `json:"vehicleType"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
}

// GlobalSearchResponse is the body of GET /admin/search/global.
type GlobalSearchResponse struct {
	Users        []UserItem        `json:"users"`
	Spots        []SpotItem        `json:"spots"`
	Reservations []ReservationItem `json:"reservations"`
}

// AccountSearchResponse is the body of GET /users/search.
type AccountSearchResponse struct {
	Vehicles      []VehicleItem     `json:"vehicles"`
	Reservations  []ReservationItem `json:"reservations"`
	FavoriteSpots []SpotItem        `json:"favoriteSpots"`
}

// SignupRequest is the body of POST /auth/signup.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role"`
}

// Backend is the remote ParkSphere REST API. Expected negative outcomes
// (bad password, wrong code) come back as result values; the error return is
// reserved for transport and decoding failures.
type Backend interface {
	Login(ctx context.Context, username, password string) (domain.LoginResult, error)
	VerifyTwoFactor(ctx context.Context, userID int64, code string) (domain.LoginResult, error)
	ResendTwoFactor(ctx context.Context, userID int64) (domain.ActionResult, error)
	ForgotPassword(ctx context.Context, email string) (domain.ActionResult, error)
	ResetPassword(ctx context.Context, email, otp, newPassword string) (domain.ActionResult, error)
	Signup(ctx context.Context, req SignupRequest) (domain.ActionResult, error)

	SearchGlobal(ctx context.Context, token, query string) (*GlobalSearchResponse, error)
	SearchSpots(ctx context.Context, token, query string) ([]SpotItem, error)
	SearchAccount(ctx context.Context, token, query string) (*AccountSearchResponse, error)
}
