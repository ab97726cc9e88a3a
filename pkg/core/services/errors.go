package services

import "errors"

var (
	ErrVolunteerNotFound = errors.New("volunteer not found")
	ErrSignupNotFound    = errors.New("signup not found")
	ErrClientNotFound    = errors.New("client not found")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidSlot       = errors.New("invalid slot")
)
