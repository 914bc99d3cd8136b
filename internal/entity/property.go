package entity

// PropertyInput is the canonical property record judged by the service.
// Optional fields are pointers so "not provided" is distinguishable from zero.
type PropertyInput struct {
	PostalCode          string  `json:"postal_code,omitempty"`
	Prefecture          string  `json:"prefecture"`
	City                string  `json:"city"`
	Address             string  `json:"address,omitempty"`
	NearestStation      string  `json:"nearest_station"` // station name only, no 駅 suffix
	DistanceFromStation int     `json:"distance_from_station"`
	Area                float64 `json:"area"` // m²
	Age                 int     `json:"age"`  // years
	Structure           int     `json:"structure"`
	Layout              int     `json:"layout"`
	Rent                int     `json:"rent"` // yen
	ManagementFee       *int    `json:"management_fee,omitempty"`
	TotalUnits          *int    `json:"total_units,omitempty"`
}
