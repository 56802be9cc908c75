package devapi

import (
	"fmt"
	"time"

	"github.com/parksphere/portal/internal/core/domain"
	"github.com/parksphere/portal/internal/core/ports"
)

// Seeded logins. The admin account has 2-step verification enabled.
const (
	SeedAdminUsername = "admin"
	SeedAdminPassword = "admin123"
	SeedStaffUsername = "staff"
	SeedStaffPassword = "staff123"
	SeedUserUsername  = "driver"
	SeedUserPassword  = "driver123"
)

func seed(dir *Directory, lot *Lot) error {
	accounts := []struct {
		username, email, password string
		role                      domain.Role
		twoFactor                 bool
	}{
		{SeedAdminUsername, "admin@parksphere.local", SeedAdminPassword, domain.RoleAdmin, true},
		{SeedStaffUsername, "staff@parksphere.local", SeedStaffPassword, domain.RoleStaff, false},
		{SeedUserUsername, "driver@parksphere.local", SeedUserPassword, domain.RoleUser, false},
	}
	var driverID int64
	for _, a := range accounts {
		acc, err := dir.Register(a.username, a.email, "", a.password, a.role, a.twoFactor)
		if err != nil {
			return fmt.Errorf("seed %s: %w", a.username, err)
		}
		if a.role == domain.RoleUser {
			driverID = acc.ID
		}
	}

	types := []string{"STANDARD", "STANDARD", "EV", "COMPACT", "HANDICAP"}
	var id int64 = 1
	for _, row := range []string{"A", "B", "C"} {
		for n := 1; n <= 5; n++ {
			lot.spots = append(lot.spots, ports.SpotItem{
				SpotID:     id,
				SpotNumber: fmt.Sprintf("%s%d", row, n),
				SpotType:   types[n-1],
				Status:     string(domain.SpotAvailable),
			})
			id++
		}
	}
	lot.spots[1].Status = string(domain.SpotOccupied)
	lot.spots[7].Status = string(domain.SpotReserved)

	lot.vehicles = []vehicle{
		{OwnerID: driverID, VehicleItem: ports.VehicleItem{VehicleID: 1, LicensePlate: "PKS-1024", VehicleType: "CAR", Brand: "Toyota", Model: "Corolla"}},
		{OwnerID: driverID, VehicleItem: ports.VehicleItem{VehicleID: 2, LicensePlate: "EVX-7781", VehicleType: "CAR", Brand: "Tesla", Model: "Model 3"}},
	}

	start := time.Date(2024, time.March, 15, 9, 30, 0, 0, time.UTC)
	lot.reservations = []reservation{
		{ID: 1, OwnerID: driverID, SpotID: 8, VehicleID: 1, StartTime: start, Status: "ACTIVE"},
		{ID: 2, OwnerID: driverID, SpotID: 3, VehicleID: 2, StartTime: start.AddDate(0, 0, -7), Status: "COMPLETED"},
	}
	lot.favorites[driverID] = []int64{3, 8}
	return nil
}
