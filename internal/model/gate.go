package model

// VerifyGateRequest is the payload for the shared-password gate check.
type VerifyGateRequest struct {
	Password string `json:"password" binding:"required,min=1,max=128"`
}

// VerifyGateResponse is returned after a successful gate check. The token
// is a short-lived session credential for mutating endpoints; it carries
// no identity and no confidentiality guarantee beyond the shared secret.
type VerifyGateResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}
