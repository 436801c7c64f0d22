package domain

type Shop struct {
	ID           int64
	Name         string
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	PostalCode   string
	Country      string
	PhoneNumber  string
	Email        string
	Website      string
	Description  string
	Latitude     float64
	Longitude    float64
	OpeningHours string
}
