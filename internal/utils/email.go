package utils

import (
	"fmt"
	"net/url"
	"strings"
)

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func MaskEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}

	localPart := parts[0]
	if len(localPart) <= 2 {
		return email
	}

	return string(localPart[0]) + strings.Repeat("*", len(localPart)-2) + string(localPart[len(localPart)-1]) + "@" + parts[1]
}

func CreateVerificationLink(frontendURL, token, email string) string {
	return fmt.Sprintf("%s/verify-email?token=%s&email=%s", frontendURL, url.QueryEscape(token), url.QueryEscape(email))
}

func CreatePasswordResetLink(frontendURL, token, email string) string {
	return fmt.Sprintf("%s/reset-password?token=%s&email=%s", frontendURL, url.QueryEscape(token), url.QueryEscape(email))
}

func CreatePaymentSuccessURL(frontendURL string) string {
	return frontendURL + "/booking/success?session_id={CHECKOUT_SESSION_ID}"
}

func CreatePaymentCancelURL(frontendURL, bookingID string) string {
	return fmt.Sprintf("%s/booking/cancel?booking_id=%s", frontendURL, url.QueryEscape(bookingID))
}

func CreateBookingLookupURL(frontendURL, confirmationCode string) string {
	return fmt.Sprintf("%s/booking/confirmation/%s", frontendURL, url.PathEscape(confirmationCode))
}
