package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"campusx/internal/app/dto"
	reviewsvc "campusx/internal/app/services/review"
	domainreview "campusx/internal/domain/review"
	domainuser "campusx/internal/domain/user"
)

type ReviewHandler struct {
	Reviews *reviewsvc.Service
}

type createReviewRequest struct {
	ProfileID string `json:"profile_id"`
	Rating    int    `json:"rating"`
	Message   string `json:"message"`
}

func (h ReviewHandler) Create(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	created, err := h.Reviews.Create(c.Request.Context(), reviewsvc.CreateParams{
		ProfileID: domainuser.ID(req.ProfileID),
		AuthorID:  domainuser.ID(p.ID),
		Rating:    req.Rating,
		Message:   req.Message,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	view, err := h.Reviews.Get(c.Request.Context(), created.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, view)
}

func (h ReviewHandler) Get(c *gin.Context) {
	view, err := h.Reviews.Get(c.Request.Context(), domainreview.ID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, view)
}

// ListForProfile returns reviews written about one profile, newest first.
func (h ReviewHandler) ListForProfile(c *gin.Context) {
	items, err := h.Reviews.List(c.Request.Context(), domainreview.Filter{
		ProfileID: domainuser.ID(c.Param("id")),
		Rating:    queryInt(c, "rating", 0),
		Limit:     queryInt(c, "limit", 0),
		Offset:    queryInt(c, "offset", 0),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, dto.ReviewCollection{Items: items, Count: len(items)})
}

type updateReviewRequest struct {
	Rating  int    `json:"rating"`
	Message string `json:"message"`
}

func (h ReviewHandler) Update(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req updateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	updated, err := h.Reviews.Update(c.Request.Context(), domainreview.ID(c.Param("id")), domainuser.ID(p.ID), req.Rating, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	view, err := h.Reviews.Get(c.Request.Context(), updated.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, view)
}

func (h ReviewHandler) Delete(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if err := h.Reviews.Delete(c.Request.Context(), domainreview.ID(c.Param("id")), domainuser.ID(p.ID)); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "review deleted")
}
