package utils

import "github.com/google/uuid"

// UUIDGenerator produces client event ids. Version 7 ids sort by creation
// time, which keeps the device outbox and server rows roughly ordered.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
