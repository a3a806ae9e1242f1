package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainbooking "campusx/internal/domain/booking"
	domainoffering "campusx/internal/domain/offering"
	domainuser "campusx/internal/domain/user"
	"campusx/internal/infra/storage/memory"
)

type fixture struct {
	svc       *Service
	users     *memory.UserRepository
	offerings *memory.OfferingRepository
	bookings  *memory.BookingRepository

	owner     *domainuser.User
	requester *domainuser.User
	offering  *domainoffering.Offering
}

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:     memory.NewUserRepository(),
		offerings: memory.NewOfferingRepository(),
		bookings:  memory.NewBookingRepository(),
	}
	f.svc = &Service{
		Bookings:  f.bookings,
		Offerings: f.offerings,
		Users:     f.users,
		Now:       func() time.Time { return fixedNow },
	}

	ctx := context.Background()
	f.owner = f.seedUser(t, ctx, "owner", domainuser.RoleMentor, 0)
	f.requester = f.seedUser(t, ctx, "requester", domainuser.RoleStudent, 0)

	off, err := domainoffering.New(domainoffering.CreateParams{
		ID:          "off-1",
		OwnerID:     f.owner.ID,
		Title:       "Guitar lessons",
		Description: "One hour of acoustic guitar",
		Slots:       []string{"morning", "evening"},
		Duration:    "1h",
		CreatedAt:   fixedNow,
	})
	require.NoError(t, err)
	require.NoError(t, f.offerings.Save(ctx, off))
	f.offering = off
	return f
}

func (f *fixture) seedUser(t *testing.T, ctx context.Context, name string, role domainuser.Role, coins int64) *domainuser.User {
	t.Helper()
	u, err := domainuser.New(domainuser.CreateParams{
		ID:           domainuser.ID("user-" + name),
		Email:        name + "@example.com",
		Username:     name,
		FullName:     name,
		PasswordHash: "x",
		Role:         role,
		CreatedAt:    fixedNow,
	})
	require.NoError(t, err)
	u.Coins = coins
	require.NoError(t, f.users.Save(ctx, u))
	return u
}

func (f *fixture) coins(t *testing.T, id domainuser.ID) int64 {
	t.Helper()
	u, err := f.users.ByID(context.Background(), id)
	require.NoError(t, err)
	return u.Coins
}

func (f *fixture) request(t *testing.T, date string) *domainbooking.Booking {
	t.Helper()
	b, err := f.svc.Create(context.Background(), CreateParams{
		RequesterID: f.requester.ID,
		OfferingID:  f.offering.ID,
		Slot:        "morning",
		Date:        date,
	})
	require.NoError(t, err)
	return b
}

func TestCreateRejectsOwnOffering(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), CreateParams{
		RequesterID: f.owner.ID,
		OfferingID:  f.offering.ID,
		Slot:        "morning",
		Date:        "2026-03-12",
	})
	assert.ErrorIs(t, err, ErrOwnBooking)
}

func TestCreateRejectsUnknownSlot(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), CreateParams{
		RequesterID: f.requester.ID,
		OfferingID:  f.offering.ID,
		Slot:        "midnight",
		Date:        "2026-03-12",
	})
	assert.ErrorIs(t, err, ErrUnknownSlot)
}

func TestCreateRejectsPastDateButAcceptsToday(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), CreateParams{
		RequesterID: f.requester.ID,
		OfferingID:  f.offering.ID,
		Slot:        "morning",
		Date:        "2026-03-09",
	})
	assert.ErrorIs(t, err, ErrPastDate)

	b := f.request(t, "2026-03-10")
	assert.Equal(t, domainbooking.StatusRequested, b.Status)
}

func TestCreateRejectsDuplicateActiveRequest(t *testing.T) {
	f := newFixture(t)
	f.request(t, "2026-03-12")

	_, err := f.svc.Create(context.Background(), CreateParams{
		RequesterID: f.requester.ID,
		OfferingID:  f.offering.ID,
		Slot:        "morning",
		Date:        "2026-03-12",
	})
	assert.ErrorIs(t, err, ErrDuplicateRequest)
}

func TestCreateAllowsNewRequestAfterRejection(t *testing.T) {
	f := newFixture(t)
	b := f.request(t, "2026-03-12")
	_, err := f.svc.ChangeStatus(context.Background(), b.ID, f.owner.ID, domainbooking.StatusRejected)
	require.NoError(t, err)

	again := f.request(t, "2026-03-12")
	assert.NotEqual(t, b.ID, again.ID)
}

func TestCreateRejectsTakenOccurrence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.request(t, "2026-03-12")
	_, err := f.svc.ChangeStatus(ctx, b.ID, f.owner.ID, domainbooking.StatusApproved)
	require.NoError(t, err)

	other := f.seedUser(t, ctx, "other", domainuser.RoleStudent, 0)
	_, err = f.svc.Create(ctx, CreateParams{
		RequesterID: other.ID,
		OfferingID:  f.offering.ID,
		Slot:        "morning",
		Date:        "2026-03-12",
	})
	assert.ErrorIs(t, err, domainoffering.ErrOccurrenceTaken)

	// A different day on the same slot is still free.
	_, err = f.svc.Create(ctx, CreateParams{
		RequesterID: other.ID,
		OfferingID:  f.offering.ID,
		Slot:        "morning",
		Date:        "2026-03-13",
	})
	assert.NoError(t, err)
}

func TestApproveCommitsOccurrence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.request(t, "2026-03-12")

	updated, err := f.svc.ChangeStatus(ctx, b.ID, f.owner.ID, domainbooking.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusApproved, updated.Status)

	off, err := f.offerings.ByID(ctx, f.offering.ID)
	require.NoError(t, err)
	assert.True(t, off.IsBooked(updated.Occurrence()))
}

func TestChangeStatusRequiresOwner(t *testing.T) {
	f := newFixture(t)
	b := f.request(t, "2026-03-12")
	_, err := f.svc.ChangeStatus(context.Background(), b.ID, f.requester.ID, domainbooking.StatusApproved)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRejectAfterApprovalFreesSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.request(t, "2026-03-12")
	_, err := f.svc.ChangeStatus(ctx, b.ID, f.owner.ID, domainbooking.StatusApproved)
	require.NoError(t, err)

	updated, err := f.svc.ChangeStatus(ctx, b.ID, f.owner.ID, domainbooking.StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusRejected, updated.Status)

	off, err := f.offerings.ByID(ctx, f.offering.ID)
	require.NoError(t, err)
	assert.False(t, off.IsBooked(updated.Occurrence()))

	// No coins move on rejection.
	assert.Zero(t, f.coins(t, f.owner.ID))
	assert.Zero(t, f.coins(t, f.requester.ID))
}

func TestCompleteCreditsBothParties(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.request(t, "2026-03-12")
	_, err := f.svc.ChangeStatus(ctx, b.ID, f.owner.ID, domainbooking.StatusApproved)
	require.NoError(t, err)

	updated, err := f.svc.ChangeStatus(ctx, b.ID, f.owner.ID, domainbooking.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusCompleted, updated.Status)

	assert.Equal(t, OwnerCompletionReward, f.coins(t, f.owner.ID))
	assert.Equal(t, RequesterCompletionReward, f.coins(t, f.requester.ID))

	off, err := f.offerings.ByID(ctx, f.offering.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, off.CompletedCount)
	// Completion keeps the occurrence held.
	assert.True(t, off.IsBooked(updated.Occurrence()))
}

func TestCompleteRequiresApproval(t *testing.T) {
	f := newFixture(t)
	b := f.request(t, "2026-03-12")
	_, err := f.svc.ChangeStatus(context.Background(), b.ID, f.owner.ID, domainbooking.StatusCompleted)
	assert.ErrorIs(t, err, domainbooking.ErrInvalidTransition)
}

func TestDoubleCompleteIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.request(t, "2026-03-12")
	_, err := f.svc.ChangeStatus(ctx, b.ID, f.owner.ID, domainbooking.StatusApproved)
	require.NoError(t, err)
	_, err = f.svc.ChangeStatus(ctx, b.ID, f.owner.ID, domainbooking.StatusCompleted)
	require.NoError(t, err)

	_, err = f.svc.ChangeStatus(ctx, b.ID, f.owner.ID, domainbooking.StatusCompleted)
	assert.ErrorIs(t, err, domainbooking.ErrInvalidTransition)

	// Rewards were not paid twice.
	assert.Equal(t, OwnerCompletionReward, f.coins(t, f.owner.ID))
	assert.Equal(t, RequesterCompletionReward, f.coins(t, f.requester.ID))
}

func TestTerminalStatusesRefuseTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.request(t, "2026-03-12")
	_, err := f.svc.ChangeStatus(ctx, b.ID, f.owner.ID, domainbooking.StatusRejected)
	require.NoError(t, err)

	for _, target := range []domainbooking.Status{
		domainbooking.StatusApproved,
		domainbooking.StatusCompleted,
		domainbooking.StatusRejected,
	} {
		_, err := f.svc.ChangeStatus(ctx, b.ID, f.owner.ID, target)
		assert.ErrorIs(t, err, domainbooking.ErrInvalidTransition, "target %s", target)
	}
}

func TestCancelBeforeApprovalHasNoSideEffects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.request(t, "2026-03-12")

	updated, err := f.svc.Cancel(ctx, b.ID, f.requester.ID, "schedule conflict")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusCancelled, updated.Status)
	assert.Equal(t, f.requester.ID, updated.CancelledBy)
	assert.Equal(t, "schedule conflict", updated.CancellationReason)

	assert.Zero(t, f.coins(t, f.requester.ID))
	off, err := f.offerings.ByID(ctx, f.offering.ID)
	require.NoError(t, err)
	assert.Empty(t, off.Booked)
}

func TestCancelAfterApprovalFreesSlotAndDebitsCanceller(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.users.CreditCoins(ctx, f.requester.ID, 250))

	b := f.request(t, "2026-03-12")
	_, err := f.svc.ChangeStatus(ctx, b.ID, f.owner.ID, domainbooking.StatusApproved)
	require.NoError(t, err)

	updated, err := f.svc.Cancel(ctx, b.ID, f.requester.ID, "cannot make it")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusCancelled, updated.Status)

	assert.Equal(t, int64(150), f.coins(t, f.requester.ID))
	off, err := f.offerings.ByID(ctx, f.offering.ID)
	require.NoError(t, err)
	assert.False(t, off.IsBooked(updated.Occurrence()))
}

func TestCancelPenaltyIsClampedAtZero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.users.CreditCoins(ctx, f.requester.ID, 40))

	b := f.request(t, "2026-03-12")
	_, err := f.svc.ChangeStatus(ctx, b.ID, f.owner.ID, domainbooking.StatusApproved)
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, b.ID, f.requester.ID, "sorry")
	require.NoError(t, err)

	assert.Zero(t, f.coins(t, f.requester.ID))
}

func TestOwnerCancelDebitsOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.users.CreditCoins(ctx, f.owner.ID, 500))

	b := f.request(t, "2026-03-12")
	_, err := f.svc.ChangeStatus(ctx, b.ID, f.owner.ID, domainbooking.StatusApproved)
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, b.ID, f.owner.ID, "double booked myself")
	require.NoError(t, err)

	assert.Equal(t, int64(400), f.coins(t, f.owner.ID))
	assert.Zero(t, f.coins(t, f.requester.ID))
}

func TestCancelRequiresReason(t *testing.T) {
	f := newFixture(t)
	b := f.request(t, "2026-03-12")
	_, err := f.svc.Cancel(context.Background(), b.ID, f.requester.ID, "  ")
	assert.ErrorIs(t, err, domainbooking.ErrReasonRequired)
}

func TestCancelRejectsStrangers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stranger := f.seedUser(t, ctx, "stranger", domainuser.RoleStudent, 0)
	b := f.request(t, "2026-03-12")
	_, err := f.svc.Cancel(ctx, b.ID, stranger.ID, "not mine")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGetForDerivesOwnerFromOffering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stranger := f.seedUser(t, ctx, "stranger", domainuser.RoleStudent, 0)
	b := f.request(t, "2026-03-12")

	_, err := f.svc.GetFor(ctx, b.ID, f.requester.ID)
	require.NoError(t, err)
	_, err = f.svc.GetFor(ctx, b.ID, f.owner.ID)
	require.NoError(t, err)
	_, err = f.svc.GetFor(ctx, b.ID, stranger.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	// The stored owner copy is a query bucket, not an authorization source.
	// A corrupted copy must not widen visibility.
	b.OwnerID = stranger.ID
	require.NoError(t, f.bookings.Save(ctx, b))
	_, err = f.svc.GetFor(ctx, b.ID, stranger.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDeleteOnlyForInertBookings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.request(t, "2026-03-12")
	_, err := f.svc.ChangeStatus(ctx, b.ID, f.owner.ID, domainbooking.StatusApproved)
	require.NoError(t, err)

	err = f.svc.Delete(ctx, b.ID, f.requester.ID)
	assert.ErrorIs(t, err, ErrBookingActive)

	_, err = f.svc.ChangeStatus(ctx, b.ID, f.owner.ID, domainbooking.StatusCompleted)
	require.NoError(t, err)
	err = f.svc.Delete(ctx, b.ID, f.requester.ID)
	assert.ErrorIs(t, err, ErrBookingActive)
}

func TestDeleteRemovesRequestedBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.request(t, "2026-03-12")

	err := f.svc.Delete(ctx, b.ID, f.owner.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, f.svc.Delete(ctx, b.ID, f.requester.ID))
	_, err = f.bookings.ByID(ctx, b.ID)
	assert.ErrorIs(t, err, domainbooking.ErrNotFound)
}

func TestListFiltersByOwnerAndStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b1 := f.request(t, "2026-03-12")
	f.request(t, "2026-03-13")
	_, err := f.svc.ChangeStatus(ctx, b1.ID, f.owner.ID, domainbooking.StatusApproved)
	require.NoError(t, err)

	approved, err := f.svc.List(ctx, domainbooking.Query{
		OwnerID:  f.owner.ID,
		Statuses: []domainbooking.Status{domainbooking.StatusApproved},
	})
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, string(b1.ID), approved[0].ID)
	require.NotNil(t, approved[0].Requester)
	assert.Equal(t, f.requester.Username, approved[0].Requester.Username)
	require.NotNil(t, approved[0].Offering)
	assert.Equal(t, f.offering.Title, approved[0].Offering.Title)

	all, err := f.svc.List(ctx, domainbooking.Query{OwnerID: f.owner.ID})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

// Exercises the whole lifecycle the way two users would: request, approve,
// contention on the taken pair, completion rewards, then a penalized
// cancellation of a second approved booking.
func TestFullLifecycleScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := f.seedUser(t, ctx, "other", domainuser.RoleStudent, 0)

	first := f.request(t, "2026-03-20")
	_, err := f.svc.ChangeStatus(ctx, first.ID, f.owner.ID, domainbooking.StatusApproved)
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, CreateParams{
		RequesterID: other.ID,
		OfferingID:  f.offering.ID,
		Slot:        "morning",
		Date:        "2026-03-20",
	})
	require.ErrorIs(t, err, domainoffering.ErrOccurrenceTaken)

	_, err = f.svc.ChangeStatus(ctx, first.ID, f.owner.ID, domainbooking.StatusCompleted)
	require.NoError(t, err)
	require.Equal(t, OwnerCompletionReward, f.coins(t, f.owner.ID))
	require.Equal(t, RequesterCompletionReward, f.coins(t, f.requester.ID))

	second, err := f.svc.Create(ctx, CreateParams{
		RequesterID: other.ID,
		OfferingID:  f.offering.ID,
		Slot:        "evening",
		Date:        "2026-03-20",
	})
	require.NoError(t, err)
	_, err = f.svc.ChangeStatus(ctx, second.ID, f.owner.ID, domainbooking.StatusApproved)
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, second.ID, other.ID, "found another mentor")
	require.NoError(t, err)

	assert.Zero(t, f.coins(t, other.ID))
	off, err := f.offerings.ByID(ctx, f.offering.ID)
	require.NoError(t, err)
	assert.False(t, off.IsBooked(domainoffering.Occurrence{Slot: "evening", Day: "2026-03-20"}))
	assert.True(t, off.IsBooked(domainoffering.Occurrence{Slot: "morning", Day: "2026-03-20"}))
	assert.Equal(t, 1, off.CompletedCount)
}
