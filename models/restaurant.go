package models

// Restaurant is one candidate returned by the scraping agent. Only entries
// with a callable phone number make it into search results.
type Restaurant struct {
	Name       string  `bson:"name" json:"name"`
	Address    string  `bson:"address,omitempty" json:"address,omitempty"`
	Phone      string  `bson:"phone" json:"phone"` // E.164 where the agent could resolve it
	Rating     float64 `bson:"rating,omitempty" json:"rating,omitempty"`
	Hours      string  `bson:"hours,omitempty" json:"hours,omitempty"`
	MapsURL    string  `bson:"maps_url,omitempty" json:"google_maps_url,omitempty"`
	DistanceKm float64 `bson:"distance_km,omitempty" json:"distance_km,omitempty"`
}
