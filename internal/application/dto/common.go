package dto

// ErrorResponse : corps JSON d'erreur renvoyé par l'API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
