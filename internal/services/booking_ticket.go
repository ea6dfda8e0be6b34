package services

import (
	"bytes"
	"context"
	"fmt"

	"gbtravel/internal/models"
	"gbtravel/internal/utils"

	"github.com/yeqown/go-qrcode"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ticket is a scannable e-ticket for a confirmed booking. Image is a JPEG QR
// code pointing at the public confirmation lookup.
type Ticket struct {
	ConfirmationCode string
	Image            []byte
}

func (s *bookingService) GetTicket(ctx context.Context, actor Actor, id primitive.ObjectID) (*Ticket, error) {
	booking, err := s.GetBooking(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if booking.BookingStatus != models.BookingStatusConfirmed && booking.BookingStatus != models.BookingStatusCompleted {
		return nil, utils.NewBadRequestError("Tickets are only available for confirmed bookings")
	}

	image, err := renderQRCode(utils.CreateBookingLookupURL(s.checkout.frontendURL, booking.ConfirmationCode))
	if err != nil {
		return nil, err
	}
	return &Ticket{ConfirmationCode: booking.ConfirmationCode, Image: image}, nil
}

func renderQRCode(content string) ([]byte, error) {
	qrc, err := qrcode.New(content)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}

	var buf bytes.Buffer
	if err := qrc.SaveTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to render qr code: %w", err)
	}
	return buf.Bytes(), nil
}
