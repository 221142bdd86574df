package places

import "myFoodFinder/domain"

type nearbySearchResponse struct {
	Results       []placeResult `json:"results"`
	Status        string        `json:"status"`
	ErrorMessage  string        `json:"error_message,omitempty"`
	NextPageToken string        `json:"next_page_token,omitempty"`
}

type placeResult struct {
	PlaceID  string `json:"place_id"`
	Name     string `json:"name"`
	Vicinity string `json:"vicinity"`
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
	Rating           float64 `json:"rating"`
	UserRatingsTotal int     `json:"user_ratings_total"`
	PriceLevel       int     `json:"price_level"`
	BusinessStatus   string  `json:"business_status"`
	OpeningHours     *struct {
		OpenNow *bool `json:"open_now"`
	} `json:"opening_hours,omitempty"`
}

func (p placeResult) toCandidate() domain.Candidate {
	c := domain.Candidate{
		ID:      p.PlaceID,
		Name:    p.Name,
		Address: p.Vicinity,
		Location: domain.Location{
			Lat: p.Geometry.Location.Lat,
			Lng: p.Geometry.Location.Lng,
		},
		Rating:           p.Rating,
		UserRatingsTotal: p.UserRatingsTotal,
		PriceLevel:       p.PriceLevel,
		BusinessStatus:   p.BusinessStatus,
	}
	if p.OpeningHours != nil {
		c.OpenNow = p.OpeningHours.OpenNow
	}
	return c
}
