package uuid

import "github.com/google/uuid"

type UUID interface {
	NewUUID() string
}

// DefaultUUID implements UUID using the google/uuid package
type DefaultUUID struct{}

func New() *DefaultUUID {
	return &DefaultUUID{}
}

func (d *DefaultUUID) NewUUID() string {
	return uuid.New().String()
}
