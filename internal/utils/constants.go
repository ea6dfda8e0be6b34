package utils

import "time"

const (
	AppName = "GB Travel Agency"

	DefaultCurrency = "USD"

	// Pagination
	DefaultPageSize = 10
	MaxPageSize     = 100
	MinPageSize     = 1

	// Booking pricing
	TaxRate    = 0.10
	ServiceFee = 25.0

	ConfirmationCodePrefix = "GB-"

	StaleClaimTimeout = 5 * time.Minute
)

// Context keys set by the auth middleware.
const (
	ContextUserKey   = "user"
	ContextUserIDKey = "user_id"
	ContextRoleKey   = "user_role"
)

const (
	MsgValidationFailed = "Validation failed"
	MsgInternalServer   = "Internal server error"
	MsgSomethingWrong   = "Something went wrong!"
	MsgNoToken          = "Access denied. No token provided."
	MsgAdminRequired    = "Admin access required."
	MsgNoPermission     = "You do not have permission to perform this action."
	MsgAuthRequired     = "Authentication required."
	MsgRateLimited      = "Too many requests, please try again later."
)
