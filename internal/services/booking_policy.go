package services

import (
	"math"
	"time"

	"gbtravel/internal/models"
	"gbtravel/internal/utils"
)

// CalculatePricing prices a booking from the trip's base price and the
// selected departure's modifier. Add-ons without a quantity count once.
func CalculatePricing(trip *models.Trip, date *models.AvailableDate, travelers int, addOns []models.AddOn) models.Pricing {
	pricePerPerson := trip.Price.Amount
	if date != nil {
		pricePerPerson += date.PriceModifier
	}

	subtotal := pricePerPerson * float64(travelers)
	taxes := subtotal * utils.TaxRate

	var addOnsTotal float64
	for _, addOn := range addOns {
		quantity := addOn.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		addOnsTotal += addOn.Price * float64(quantity)
	}

	currency := trip.Price.Currency
	if currency == "" {
		currency = utils.DefaultCurrency
	}

	pricing := models.Pricing{
		PricePerPerson: models.RoundMoney(pricePerPerson),
		Subtotal:       models.RoundMoney(subtotal),
		Taxes:          models.RoundMoney(taxes),
		Fees:           utils.ServiceFee,
		AddOns:         models.RoundMoney(addOnsTotal),
		Currency:       currency,
	}
	pricing.TotalPrice = models.RoundMoney(pricing.Subtotal + pricing.Taxes + pricing.Fees + pricing.AddOns - pricing.Discount)
	return pricing
}

// DaysUntilDeparture counts started days, so 25 hours out is 2 days.
func DaysUntilDeparture(departure, now time.Time) int {
	return int(math.Ceil(departure.Sub(now).Hours() / 24))
}

// CanCancel reports whether a booking may still be cancelled at now.
func CanCancel(booking *models.Booking, now time.Time) bool {
	if booking.Cancellation != nil && booking.Cancellation.IsCancelled {
		return false
	}
	if booking.BookingStatus == models.BookingStatusCancelled || booking.BookingStatus == models.BookingStatusCompleted {
		return false
	}
	if !booking.SelectedDate.DepartureDate.IsZero() && !booking.SelectedDate.DepartureDate.After(now) {
		return false
	}
	return true
}

// CalculateRefund applies the cancellation policy table. Unknown policies
// are treated as moderate.
func CalculateRefund(daysUntilDeparture int, total float64, policy models.CancellationPolicy) float64 {
	var full, half int
	switch policy {
	case models.PolicyFlexible:
		full, half = 1, 1
	case models.PolicyStrict:
		full, half = 14, 7
	case models.PolicyNonRefundable:
		return 0
	default:
		full, half = 7, 3
	}

	switch {
	case daysUntilDeparture >= full:
		return models.RoundMoney(total)
	case daysUntilDeparture >= half:
		return models.RoundMoney(total * 0.5)
	default:
		return 0
	}
}

// checkAvailability explains why n travelers cannot book the departure, or
// returns nil when they can.
func checkAvailability(trip *models.Trip, departure time.Time, n int) error {
	if trip.Status != models.TripStatusActive {
		return utils.NewBadRequestError("This trip is not available for booking")
	}
	if remaining := trip.SpotsRemaining(); n > remaining {
		return utils.NewBadRequestError("Only %d spots available", remaining)
	}
	date, _ := trip.FindDate(departure)
	if date == nil {
		return utils.NewBadRequestError("Selected date is not available")
	}
	if date.SpotsAvailable < n {
		return utils.NewBadRequestError("Only %d spots available for this date", date.SpotsAvailable)
	}
	return nil
}
