package ginserver

import (
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"campusx/internal/app/dto"
	offeringsvc "campusx/internal/app/services/offering"
	domainoffering "campusx/internal/domain/offering"
	domainuser "campusx/internal/domain/user"
)

type OfferingHandler struct {
	Offerings *offeringsvc.Service
	Users     domainuser.Repository
}

type createOfferingRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Slots       []string `json:"slots"`
	Duration    string   `json:"duration"`
	Image       string   `json:"image"`
}

func (h OfferingHandler) Create(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req createOfferingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	off, err := h.Offerings.Create(c.Request.Context(), offeringsvc.CreateParams{
		OwnerID:     domainuser.ID(p.ID),
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		Slots:       req.Slots,
		Duration:    req.Duration,
		Image:       req.Image,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, h.view(c, off))
}

func (h OfferingHandler) Get(c *gin.Context) {
	off, err := h.Offerings.Get(c.Request.Context(), domainoffering.ID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, h.view(c, off))
}

func (h OfferingHandler) List(c *gin.Context) {
	filter := domainoffering.Filter{
		Duration: c.Query("duration"),
		Tags:     splitCSV(c.Query("tags")),
		Slots:    splitCSV(c.Query("slots")),
		SortBy:   domainoffering.SortBy(c.Query("sort_by")),
		Limit:    queryInt(c, "limit", 0),
		Offset:   queryInt(c, "offset", 0),
	}
	if c.Query("order") == "asc" {
		filter.Ascending = true
	}
	items, err := h.Offerings.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, h.views(c, items))
}

func (h OfferingHandler) ListMine(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	items, err := h.Offerings.ListByOwner(c.Request.Context(), domainuser.ID(p.ID), queryInt(c, "limit", 0), queryInt(c, "offset", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, h.views(c, items))
}

type updateOfferingRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Tags        *[]string `json:"tags"`
	Slots       *[]string `json:"slots"`
	Duration    *string   `json:"duration"`
	Image       *string   `json:"image"`
}

func (h OfferingHandler) Update(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req updateOfferingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	off, err := h.Offerings.Update(c.Request.Context(), domainoffering.ID(c.Param("id")), domainuser.ID(p.ID), domainoffering.Update{
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		Slots:       req.Slots,
		Duration:    req.Duration,
		Image:       req.Image,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, h.view(c, off))
}

func (h OfferingHandler) Delete(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if err := h.Offerings.Delete(c.Request.Context(), domainoffering.ID(c.Param("id")), domainuser.ID(p.ID)); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "offering deleted")
}

func (h OfferingHandler) view(c *gin.Context, off *domainoffering.Offering) dto.OfferingView {
	var owner *dto.UserSummary
	if h.Users != nil {
		if u, err := h.Users.ByID(c.Request.Context(), off.OwnerID); err == nil {
			owner = dto.MapUserSummary(u)
		}
	}
	return dto.MapOfferingView(off, owner)
}

func (h OfferingHandler) views(c *gin.Context, items []*domainoffering.Offering) []dto.OfferingView {
	out := make([]dto.OfferingView, 0, len(items))
	for _, off := range items {
		out = append(out, h.view(c, off))
	}
	return out
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
