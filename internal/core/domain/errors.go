package domain

import "errors"

// Common domain errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternalServer = errors.New("internal server error")
	ErrDuplicateEntry = errors.New("duplicate entry")
	ErrConflict       = errors.New("concurrent modification detected")
)

// Account errors
var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrPumpNotFound     = errors.New("pump not found")
	ErrAccountExists    = errors.New("account with the same email or phone number already exists")
)

// Value movement errors
var (
	ErrInsufficientFunds  = errors.New("insufficient balance")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrSelfTransfer       = errors.New("cannot transfer to yourself")
)

// Auth and verification errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountNotVerified = errors.New("account is not verified")
	ErrAlreadyVerified    = errors.New("account is already verified")
	ErrChallengeNotFound  = errors.New("no active verification code, request a new one")
	ErrChallengeExpired   = errors.New("verification code has expired, request a new one")
	ErrCodeMismatch       = errors.New("verification code is incorrect")
	ErrChallengeStillLive = errors.New("a verification code is still active")
	ErrNotEmployed        = errors.New("employee is not currently employed")
	ErrNoPumpAssigned     = errors.New("employee has no pump assignment")
)
