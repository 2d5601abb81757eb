package api

// RegisterRequest is the JSON body for POST /users.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the JSON body for POST /sessions.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ResetTokenRequest is the JSON body for POST /reset_password.
type ResetTokenRequest struct {
	Email string `json:"email"`
}

// ResetTokenResponse is returned from POST /reset_password.
type ResetTokenResponse struct {
	Email      string `json:"email"`
	ResetToken string `json:"reset_token"`
}

// UpdatePasswordRequest is the JSON body for PUT /reset_password.
type UpdatePasswordRequest struct {
	Email       string `json:"email,omitempty"`
	ResetToken  string `json:"reset_token"`
	NewPassword string `json:"new_password"`
}

// MessageResponse is the generic confirmation body.
type MessageResponse struct {
	Email   string `json:"email,omitempty"`
	Message string `json:"message"`
}

// ProfileResponse is returned from GET /profile.
type ProfileResponse struct {
	Email string `json:"email"`
}

// ErrorResponse is the JSON body for all error statuses.
type ErrorResponse struct {
	Error string `json:"error"`
}
