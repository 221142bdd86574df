package domain

// Location is a WGS84 coordinate.
type Location struct {
	Lat float64 `json:"lat" query:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" query:"lng" validate:"gte=-180,lte=180"`
}

// Candidate is a place returned by the nearby search. Only ID is used
// when scoring; the rest is carried through to the client.
type Candidate struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Address          string   `json:"address,omitempty"`
	Location         Location `json:"location"`
	Rating           float64  `json:"rating,omitempty"`
	UserRatingsTotal int      `json:"user_ratings_total,omitempty"`
	PriceLevel       int      `json:"price_level,omitempty"`
	OpenNow          *bool    `json:"open_now,omitempty"`
	BusinessStatus   string   `json:"business_status,omitempty"`
}
