package services

import "errors"

// Business errors returned by the services layer. Controllers map these to
// HTTP statuses with errors.Is; anything else is treated as a transaction
// failure, rolled back in full and safe to retry.
var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrAlreadyPosted       = errors.New("order already posted")
	ErrInsufficientPayment = errors.New("insufficient payment")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrTransaction         = errors.New("transaction failed")
)
