package utils

import "github.com/google/uuid"

// NewID returns an opaque unique id for new entities.
func NewID() string { return uuid.NewString() }
