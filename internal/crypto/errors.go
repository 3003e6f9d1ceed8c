package crypto

import "errors"

var (
	ErrHashingPassword = errors.New("error hashing password")
	ErrGeneratingToken = errors.New("error generating token")
)
