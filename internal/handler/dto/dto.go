// Package dto provides Data Transfer Objects for API requests and responses.
package dto

// CredentialsRequest is the body of POST /login and POST /register.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SaveUserRequest is the body of POST /api/save-user.
type SaveUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// SuccessResponse acknowledges a completed write.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// ErrorResponse carries a client-safe failure message.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// GenerateKeyResponse carries a preview key. It is not stored anywhere.
type GenerateKeyResponse struct {
	APIKey string `json:"apiKey"`
}
