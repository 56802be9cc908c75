package domain

// Category groups federated search results.
type Category string

const (
	CategoryUsers        Category = "users"
	CategorySpots        Category = "spots"
	CategoryReservations Category = "reservations"
	CategoryVehicles     Category = "vehicles"
	CategoryActions      Category = "actions"
)

// SearchResult is a single selectable entry in the search panel. Activating
// it navigates to Target; results that came from the server also close the
// panel, shortcut actions only navigate.
type SearchResult struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle"`
	Category    Category `json:"category"`
	Target      string   `json:"target"`
	ClosesPanel bool     `json:"closes_panel"`
}

// PanelState is a snapshot of the quick-search overlay.
type PanelState struct {
	Open     bool           `json:"open"`
	Query    string         `json:"query"`
	Loading  bool           `json:"loading"`
	Results  []SearchResult `json:"results"`
	Selected int            `json:"selected"`
}
