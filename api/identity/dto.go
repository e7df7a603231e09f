package identity

// TokenRequest is an operator sign in.
type TokenRequest struct {
	Name string `json:"name" binding:"required"`
	Key  string `json:"key" binding:"required"`
}

// TokenResponse carries the issued operator token.
type TokenResponse struct {
	Token string `json:"token"`
}
