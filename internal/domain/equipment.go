package domain

// Equipment is gear that ships with a studio. Only Name is required.
type Equipment struct {
	Name  string `json:"name"`
	Brand string `json:"brand,omitempty"`
	Model string `json:"model,omitempty"`
}
