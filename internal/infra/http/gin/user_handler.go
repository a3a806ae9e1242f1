package ginserver

import (
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"campusx/internal/app/dto"
	usersvc "campusx/internal/app/services/user"
	domainuser "campusx/internal/domain/user"
)

type UserHandler struct {
	Users *usersvc.Service
}

func (h UserHandler) List(c *gin.Context) {
	filter := domainuser.Filter{
		Role:   domainuser.Role(c.Query("role")),
		City:   c.Query("city"),
		Limit:  queryInt(c, "limit", 0),
		Offset: queryInt(c, "offset", 0),
	}
	active := true
	filter.Active = &active

	items, err := h.Users.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	profiles := make([]dto.UserProfile, 0, len(items))
	for _, u := range items {
		profiles = append(profiles, dto.MapUserProfile(u))
	}
	respondData(c, http.StatusOK, profiles)
}

func (h UserHandler) Get(c *gin.Context) {
	account, err := h.Users.Get(c.Request.Context(), domainuser.ID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, dto.MapUserProfile(account))
}

func (h UserHandler) GetByUsername(c *gin.Context) {
	account, err := h.Users.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, dto.MapUserProfile(account))
}

type updateProfileRequest struct {
	FullName       *string `json:"full_name"`
	City           *string `json:"city"`
	Bio            *string `json:"bio"`
	ProfilePicture *string `json:"profile_picture"`
}

func (h UserHandler) UpdateMe(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	account, err := h.Users.UpdateProfile(c.Request.Context(), domainuser.ID(p.ID), domainuser.ProfileUpdate{
		FullName:       req.FullName,
		City:           req.City,
		Bio:            req.Bio,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, dto.MapUserProfile(account))
}

func (h UserHandler) DeactivateMe(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if err := h.Users.Deactivate(c.Request.Context(), domainuser.ID(p.ID)); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "account deactivated")
}

func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
