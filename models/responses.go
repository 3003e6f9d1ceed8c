package models

// RevokeRequest is the optional body of a self revocation.
type RevokeRequest struct {
	DeviceID *string `json:"deviceId,omitempty"`
}

// RevokeResponse reports how many sessions a revocation expired.
type RevokeResponse struct {
	Revoked int64 `json:"revoked"`
}
