package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a unique constraint was hit.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInsufficientStock is returned when a stock decrement would go below zero.
	ErrInsufficientStock = errors.New("insufficient stock")
)
