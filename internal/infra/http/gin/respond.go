package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	authsvc "campusx/internal/app/services/auth"
	bookingsvc "campusx/internal/app/services/booking"
	offeringsvc "campusx/internal/app/services/offering"
	reviewsvc "campusx/internal/app/services/review"
	uploadsvc "campusx/internal/app/services/upload"
	domainbooking "campusx/internal/domain/booking"
	domainoffering "campusx/internal/domain/offering"
	domainreview "campusx/internal/domain/review"
	"campusx/internal/domain/shared/day"
	domainuser "campusx/internal/domain/user"
)

// All endpoints answer with the same envelope: {"success": bool,
// "message": string, "data": any}. Message is set on failures and on
// mutations without a body.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, envelope{Success: true, Data: data})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, envelope{Success: true, Message: message})
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusForError(err), envelope{Success: false, Message: err.Error()})
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, envelope{Success: false, Message: err.Error()})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domainuser.ErrNotFound),
		errors.Is(err, domainoffering.ErrNotFound),
		errors.Is(err, domainbooking.ErrNotFound),
		errors.Is(err, domainreview.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, authsvc.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, authsvc.ErrAccountInactive),
		errors.Is(err, bookingsvc.ErrForbidden),
		errors.Is(err, offeringsvc.ErrForbidden),
		errors.Is(err, reviewsvc.ErrForbidden):
		return http.StatusForbidden

	case errors.Is(err, domainoffering.ErrOccurrenceTaken),
		errors.Is(err, bookingsvc.ErrDuplicateRequest),
		errors.Is(err, bookingsvc.ErrBookingActive),
		errors.Is(err, domainbooking.ErrInvalidTransition),
		errors.Is(err, domainuser.ErrEmailAlreadyUsed),
		errors.Is(err, domainuser.ErrUsernameAlreadyUsed),
		errors.Is(err, reviewsvc.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, uploadsvc.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType

	case errors.Is(err, bookingsvc.ErrOwnBooking),
		errors.Is(err, bookingsvc.ErrUnknownSlot),
		errors.Is(err, bookingsvc.ErrPastDate),
		errors.Is(err, reviewsvc.ErrSelfReview),
		errors.Is(err, reviewsvc.ErrNotReviewable),
		errors.Is(err, domainbooking.ErrReasonRequired),
		errors.Is(err, domainbooking.ErrReasonTooLong),
		errors.Is(err, domainreview.ErrInvalidRating),
		errors.Is(err, authsvc.ErrPasswordTooShort),
		errors.Is(err, authsvc.ErrResetTokenInvalid),
		errors.Is(err, day.ErrInvalid),
		errors.Is(err, domainuser.ErrEmailRequired),
		errors.Is(err, domainuser.ErrUsernameRequired),
		errors.Is(err, domainuser.ErrFullNameRequired),
		errors.Is(err, domainuser.ErrInvalidRole),
		errors.Is(err, domainoffering.ErrTitleRequired),
		errors.Is(err, domainoffering.ErrDescriptionRequired),
		errors.Is(err, domainoffering.ErrDurationRequired),
		errors.Is(err, domainoffering.ErrSlotsRequired):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}
