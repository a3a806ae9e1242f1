package dto

import (
	"time"

	domainoffering "campusx/internal/domain/offering"
)

type Occurrence struct {
	Slot string `json:"slot"`
	Date string `json:"date"`
}

type OfferingView struct {
	ID             string       `json:"id"`
	Owner          *UserSummary `json:"owner,omitempty"`
	OwnerID        string       `json:"owner_id"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Tags           []string     `json:"tags,omitempty"`
	Slots          []string     `json:"slots"`
	Duration       string       `json:"duration"`
	Image          string       `json:"image,omitempty"`
	CompletedCount int          `json:"completed_count"`
	BookedSlots    []Occurrence `json:"booked_slots"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// OfferingSnapshot is the short join shape embedded in booking views.
type OfferingSnapshot struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Duration string `json:"duration"`
	Image    string `json:"image,omitempty"`
}

func MapOfferingView(o *domainoffering.Offering, owner *UserSummary) OfferingView {
	if o == nil {
		return OfferingView{}
	}
	booked := make([]Occurrence, 0, len(o.Booked))
	for _, occ := range o.Booked {
		booked = append(booked, Occurrence{Slot: occ.Slot, Date: occ.Day.String()})
	}
	return OfferingView{
		ID:             string(o.ID),
		Owner:          owner,
		OwnerID:        string(o.OwnerID),
		Title:          o.Title,
		Description:    o.Description,
		Tags:           o.Tags,
		Slots:          o.Slots,
		Duration:       o.Duration,
		Image:          o.Image,
		CompletedCount: o.CompletedCount,
		BookedSlots:    booked,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

func MapOfferingSnapshot(o *domainoffering.Offering) *OfferingSnapshot {
	if o == nil {
		return nil
	}
	return &OfferingSnapshot{
		ID:       string(o.ID),
		Title:    o.Title,
		Duration: o.Duration,
		Image:    o.Image,
	}
}
