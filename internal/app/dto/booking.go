package dto

import (
	"time"

	domainbooking "campusx/internal/domain/booking"
	domainoffering "campusx/internal/domain/offering"
	domainuser "campusx/internal/domain/user"
)

// BookingView is a booking enriched with its referenced identity and
// offering summaries for display.
type BookingView struct {
	ID                 string            `json:"id"`
	Requester          *UserSummary      `json:"requester,omitempty"`
	RequesterID        string            `json:"requester_id"`
	Owner              *UserSummary      `json:"owner,omitempty"`
	OwnerID            string            `json:"owner_id"`
	Offering           *OfferingSnapshot `json:"offering,omitempty"`
	OfferingID         string            `json:"offering_id"`
	Slot               string            `json:"slot"`
	Date               string            `json:"date"`
	Status             string            `json:"status"`
	CancelledBy        *UserSummary      `json:"cancelled_by,omitempty"`
	CancellationReason string            `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

type BookingCollection struct {
	Items []BookingView `json:"items"`
	Count int           `json:"count"`
}

func MapBookingView(b *domainbooking.Booking, requester, owner, cancelledBy *domainuser.User, off *domainoffering.Offering) BookingView {
	if b == nil {
		return BookingView{}
	}
	return BookingView{
		ID:                 string(b.ID),
		Requester:          MapUserSummary(requester),
		RequesterID:        string(b.RequesterID),
		Owner:              MapUserSummary(owner),
		OwnerID:            string(b.OwnerID),
		Offering:           MapOfferingSnapshot(off),
		OfferingID:         string(b.OfferingID),
		Slot:               b.Slot,
		Date:               b.Day.String(),
		Status:             string(b.Status),
		CancelledBy:        MapUserSummary(cancelledBy),
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}
