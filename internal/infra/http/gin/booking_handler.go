package ginserver

import (
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"campusx/internal/app/dto"
	bookingsvc "campusx/internal/app/services/booking"
	domainbooking "campusx/internal/domain/booking"
	domainoffering "campusx/internal/domain/offering"
	domainuser "campusx/internal/domain/user"
)

type BookingHandler struct {
	Bookings *bookingsvc.Service
}

type createBookingRequest struct {
	OfferingID string `json:"offering_id"`
	Slot       string `json:"slot"`
	Date       string `json:"date"`
}

func (h BookingHandler) Create(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	b, err := h.Bookings.Create(c.Request.Context(), bookingsvc.CreateParams{
		RequesterID: domainuser.ID(p.ID),
		OfferingID:  domainoffering.ID(req.OfferingID),
		Slot:        req.Slot,
		Date:        req.Date,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	view, err := h.Bookings.Get(c.Request.Context(), b.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, view)
}

func (h BookingHandler) Get(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	view, err := h.Bookings.GetFor(c.Request.Context(), domainbooking.ID(c.Param("id")), domainuser.ID(p.ID))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, view)
}

type changeStatusRequest struct {
	Status string `json:"status"`
}

func (h BookingHandler) ChangeStatus(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	status, err := domainbooking.ParseStatus(req.Status)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	b, err := h.Bookings.ChangeStatus(c.Request.Context(), domainbooking.ID(c.Param("id")), domainuser.ID(p.ID), status)
	if err != nil {
		respondError(c, err)
		return
	}
	view, err := h.Bookings.Get(c.Request.Context(), b.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, view)
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

func (h BookingHandler) Cancel(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req cancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	b, err := h.Bookings.Cancel(c.Request.Context(), domainbooking.ID(c.Param("id")), domainuser.ID(p.ID), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	view, err := h.Bookings.Get(c.Request.Context(), b.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, view)
}

func (h BookingHandler) Delete(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if err := h.Bookings.Delete(c.Request.Context(), domainbooking.ID(c.Param("id")), domainuser.ID(p.ID)); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "booking deleted")
}

// ListMine returns the caller's outgoing bookings, newest first.
func (h BookingHandler) ListMine(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	h.list(c, domainbooking.Query{RequesterID: domainuser.ID(p.ID)})
}

// ListRequests returns incoming bookings against the caller's offerings.
func (h BookingHandler) ListRequests(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	h.list(c, domainbooking.Query{OwnerID: domainuser.ID(p.ID)})
}

func (h BookingHandler) list(c *gin.Context, query domainbooking.Query) {
	statuses, err := parseStatuses(c.Query("status"))
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	query.Statuses = statuses
	query.Limit = queryInt(c, "limit", 0)
	query.Offset = queryInt(c, "offset", 0)

	items, err := h.Bookings.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, dto.BookingCollection{Items: items, Count: len(items)})
}

func parseStatuses(raw string) ([]domainbooking.Status, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]domainbooking.Status, 0, len(parts))
	for _, p := range parts {
		s, err := domainbooking.ParseStatus(p)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
