package dto

// ClientRequest : création ou modification d'un client.
type ClientRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Street     string `json:"street,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	City       string `json:"city,omitempty"`
}
