package ginserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authsvc "campusx/internal/app/services/auth"
	bookingsvc "campusx/internal/app/services/booking"
	offeringsvc "campusx/internal/app/services/offering"
	usersvc "campusx/internal/app/services/user"
	domainoffering "campusx/internal/domain/offering"
	domainuser "campusx/internal/domain/user"
	"campusx/internal/infra/config"
	"campusx/internal/infra/obs"
	"campusx/internal/infra/security"
	"campusx/internal/infra/storage/memory"
)

type testEnv struct {
	server    *http.Server
	users     *memory.UserRepository
	offerings *memory.OfferingRepository
	tokens    security.JWTManager
}

var testNow = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	users := memory.NewUserRepository()
	offerings := memory.NewOfferingRepository()
	bookings := memory.NewBookingRepository()
	// Tokens are issued at the fixed testNow but Verify checks expiry against
	// the real clock, so the TTL must outlive the gap between the two.
	tokens := security.JWTManager{Secret: []byte("test-secret"), TTL: 20 * 365 * 24 * time.Hour}

	bookingService := &bookingsvc.Service{
		Bookings:  bookings,
		Offerings: offerings,
		Users:     users,
		Now:       func() time.Time { return testNow },
	}
	authService := &authsvc.Service{
		Users:       users,
		Passwords:   security.BcryptHasher{Cost: 4},
		Tokens:      tokens,
		ResetTokens: security.ResetTokenGenerator{},
	}

	handlers := Handlers{
		Auth:           AuthHandler{Auth: authService, Users: users},
		User:           UserHandler{Users: &usersvc.Service{Users: users}},
		Offering:       OfferingHandler{Offerings: &offeringsvc.Service{Offerings: offerings}, Users: users},
		Booking:        BookingHandler{Bookings: bookingService},
		AuthMiddleware: AuthMiddleware{Tokens: tokens}.Handle,
	}
	server := NewServer(config.Config{Env: "test", HTTPAddr: ":0"}, obs.Middleware{}, obs.HealthHandlers{}, handlers)
	return &testEnv{server: server, users: users, offerings: offerings, tokens: tokens}
}

func (e *testEnv) seedUser(t *testing.T, name string, role domainuser.Role) (*domainuser.User, string) {
	t.Helper()
	u, err := domainuser.New(domainuser.CreateParams{
		ID:           domainuser.ID("user-" + name),
		Email:        name + "@example.com",
		Username:     name,
		FullName:     name,
		PasswordHash: "x",
		Role:         role,
	})
	require.NoError(t, err)
	require.NoError(t, e.users.Save(context.Background(), u))
	token, err := e.tokens.Issue(string(u.ID), string(u.Role), testNow)
	require.NoError(t, err)
	return u, token
}

func (e *testEnv) seedOffering(t *testing.T, ownerID domainuser.ID) *domainoffering.Offering {
	t.Helper()
	off, err := domainoffering.New(domainoffering.CreateParams{
		ID:          "off-1",
		OwnerID:     ownerID,
		Title:       "Yoga class",
		Description: "Morning flow",
		Slots:       []string{"morning"},
		Duration:    "1h",
	})
	require.NoError(t, err)
	require.NoError(t, e.offerings.Save(context.Background(), off))
	return off
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestCreateBookingRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/v1/bookings", "", map[string]string{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	body := decodeEnvelope(t, rec)
	assert.False(t, body.Success)
	assert.NotEmpty(t, body.Message)
}

func TestCreateBookingHappyPath(t *testing.T) {
	env := newTestEnv(t)
	owner, _ := env.seedUser(t, "owner", domainuser.RoleMentor)
	_, requesterToken := env.seedUser(t, "requester", domainuser.RoleStudent)
	off := env.seedOffering(t, owner.ID)

	rec := env.do(t, http.MethodPost, "/api/v1/bookings", requesterToken, map[string]string{
		"offering_id": string(off.ID),
		"slot":        "morning",
		"date":        "2026-05-02",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decodeEnvelope(t, rec)
	assert.True(t, body.Success)
	data, ok := body.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "requested", data["status"])
	assert.Equal(t, "2026-05-02", data["date"])
	assert.NotEmpty(t, data["id"])
}

func TestCreateBookingErrorMapping(t *testing.T) {
	env := newTestEnv(t)
	owner, ownerToken := env.seedUser(t, "owner", domainuser.RoleMentor)
	_, requesterToken := env.seedUser(t, "requester", domainuser.RoleStudent)
	off := env.seedOffering(t, owner.ID)

	cases := []struct {
		name   string
		token  string
		body   map[string]string
		status int
	}{
		{
			name:   "own offering",
			token:  ownerToken,
			body:   map[string]string{"offering_id": string(off.ID), "slot": "morning", "date": "2026-05-02"},
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown slot",
			token:  requesterToken,
			body:   map[string]string{"offering_id": string(off.ID), "slot": "midnight", "date": "2026-05-02"},
			status: http.StatusBadRequest,
		},
		{
			name:   "past date",
			token:  requesterToken,
			body:   map[string]string{"offering_id": string(off.ID), "slot": "morning", "date": "2026-04-30"},
			status: http.StatusBadRequest,
		},
		{
			name:   "malformed date",
			token:  requesterToken,
			body:   map[string]string{"offering_id": string(off.ID), "slot": "morning", "date": "02-05-2026"},
			status: http.StatusBadRequest,
		},
		{
			name:   "missing offering",
			token:  requesterToken,
			body:   map[string]string{"offering_id": "nope", "slot": "morning", "date": "2026-05-02"},
			status: http.StatusNotFound,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/v1/bookings", tc.token, tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			body := decodeEnvelope(t, rec)
			assert.False(t, body.Success)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestBookingLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	owner, ownerToken := env.seedUser(t, "owner", domainuser.RoleMentor)
	_, requesterToken := env.seedUser(t, "requester", domainuser.RoleStudent)
	_, otherToken := env.seedUser(t, "other", domainuser.RoleStudent)
	off := env.seedOffering(t, owner.ID)

	rec := env.do(t, http.MethodPost, "/api/v1/bookings", requesterToken, map[string]string{
		"offering_id": string(off.ID),
		"slot":        "morning",
		"date":        "2026-05-02",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	bookingID := decodeEnvelope(t, rec).Data.(map[string]any)["id"].(string)

	// The requester cannot approve.
	rec = env.do(t, http.MethodPatch, "/api/v1/bookings/"+bookingID+"/status", requesterToken, map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/v1/bookings/"+bookingID+"/status", ownerToken, map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "approved", decodeEnvelope(t, rec).Data.(map[string]any)["status"])

	// A second claimant hits the taken pair.
	rec = env.do(t, http.MethodPost, "/api/v1/bookings", otherToken, map[string]string{
		"offering_id": string(off.ID),
		"slot":        "morning",
		"date":        "2026-05-02",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Strangers cannot read the booking.
	rec = env.do(t, http.MethodGet, "/api/v1/bookings/"+bookingID, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/bookings/"+bookingID, requesterToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Deleting an approved booking is refused.
	rec = env.do(t, http.MethodDelete, "/api/v1/bookings/"+bookingID, requesterToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/v1/bookings/"+bookingID+"/status", ownerToken, map[string]string{"status": "completed"})
	require.Equal(t, http.StatusOK, rec.Code)

	// Terminal status refuses further transitions.
	rec = env.do(t, http.MethodPatch, "/api/v1/bookings/"+bookingID+"/status", ownerToken, map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCancelBookingOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	owner, _ := env.seedUser(t, "owner", domainuser.RoleMentor)
	_, requesterToken := env.seedUser(t, "requester", domainuser.RoleStudent)
	off := env.seedOffering(t, owner.ID)

	rec := env.do(t, http.MethodPost, "/api/v1/bookings", requesterToken, map[string]string{
		"offering_id": string(off.ID),
		"slot":        "morning",
		"date":        "2026-05-02",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	bookingID := decodeEnvelope(t, rec).Data.(map[string]any)["id"].(string)

	rec = env.do(t, http.MethodPost, "/api/v1/bookings/"+bookingID+"/cancel", requesterToken, map[string]string{"reason": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/bookings/"+bookingID+"/cancel", requesterToken, map[string]string{"reason": "plans changed"})
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(t, rec).Data.(map[string]any)
	assert.Equal(t, "cancelled", data["status"])
	assert.Equal(t, "plans changed", data["cancellation_reason"])
}

func TestMyBookingsAndRequestsBuckets(t *testing.T) {
	env := newTestEnv(t)
	owner, ownerToken := env.seedUser(t, "owner", domainuser.RoleMentor)
	_, requesterToken := env.seedUser(t, "requester", domainuser.RoleStudent)
	off := env.seedOffering(t, owner.ID)

	rec := env.do(t, http.MethodPost, "/api/v1/bookings", requesterToken, map[string]string{
		"offering_id": string(off.ID),
		"slot":        "morning",
		"date":        "2026-05-02",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/me/bookings", requesterToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(t, rec).Data.(map[string]any)
	assert.EqualValues(t, 1, data["count"])

	rec = env.do(t, http.MethodGet, "/api/v1/me/requests", ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data = decodeEnvelope(t, rec).Data.(map[string]any)
	assert.EqualValues(t, 1, data["count"])

	rec = env.do(t, http.MethodGet, "/api/v1/me/requests?status=completed", ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data = decodeEnvelope(t, rec).Data.(map[string]any)
	assert.EqualValues(t, 0, data["count"])

	rec = env.do(t, http.MethodGet, "/api/v1/me/requests?status=bogus", ownerToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
