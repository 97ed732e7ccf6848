package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"career-coach/internal/domain"
	"career-coach/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const ttl = 7 * 24 * time.Hour

var (
	owner  = domain.Identity{ID: "owner", Email: "owner@example.com"}
	friend = domain.Identity{ID: "friend", Email: "Friend@Example.com"}
	other  = domain.Identity{ID: "other", Email: "other@example.com"}
)

type invitationHarness struct {
	svc      *Invitations
	store    *fakeInvitations
	notifier *fakeNotifier
	planID   uuid.UUID
	clock    time.Time
}

func newInvitationHarness(t *testing.T) *invitationHarness {
	t.Helper()
	hasher, err := NewTokenHasher("hash-secret")
	require.NoError(t, err)

	h := &invitationHarness{store: newFakeInvitations(), notifier: &fakeNotifier{}, planID: uuid.New(), clock: fixedNow}
	plans := &fakePlans{owners: map[uuid.UUID]string{h.planID: owner.ID}}
	h.svc = NewInvitations(h.store, plans, h.notifier, hasher, ttl, "https://app.example.com/accept", zap.NewNop())
	h.svc.now = func() time.Time { return h.clock }
	return h
}

// invite creates a pending invitation for friend and returns the raw token
// taken from the emailed link.
func (h *invitationHarness) invite(t *testing.T) string {
	t.Helper()
	_, err := h.svc.InviteCollaborator(context.Background(), owner, h.planID.String(), "friend@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, h.notifier.sent)
	body := h.notifier.sent[len(h.notifier.sent)-1].HTML
	i := strings.Index(body, "token=")
	require.NotEqual(t, -1, i)
	return body[i+len("token=") : i+len("token=")+2*tokenBytes]
}

func TestTokenHashRoundTrip(t *testing.T) {
	hasher, err := NewTokenHasher("hash-secret")
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		token, err := NewToken()
		require.NoError(t, err)
		assert.Len(t, token, 64)

		hash := hasher.Hash(token)
		assert.True(t, hasher.Matches(token, hash))
		assert.False(t, hasher.Matches(hash, hash), "the hash itself must not verify")
		assert.False(t, hasher.Matches(token+"0", hash))
		assert.False(t, hasher.Matches(strings.ToUpper(token), hash))
	}

	otherKey, _ := NewTokenHasher("another-secret")
	assert.NotEqual(t, hasher.Hash("abc"), otherKey.Hash("abc"))

	_, err = NewTokenHasher("")
	assert.Error(t, err)
	_, err = NewTokenHasher(strings.Repeat("k", 65))
	assert.Error(t, err)
}

func TestInviteCollaborator(t *testing.T) {
	h := newInvitationHarness(t)
	token := h.invite(t)

	require.Len(t, h.store.rows, 1)
	for hash, inv := range h.store.rows {
		assert.NotEqual(t, token, hash, "raw token must not be stored")
		assert.Equal(t, domain.InvitationPending, inv.Status)
		assert.Equal(t, h.planID.String(), inv.ResourceID)
	}
	msg := h.notifier.sent[0]
	assert.Equal(t, "friend@example.com", msg.To)
	assert.Contains(t, msg.HTML, "https://app.example.com/accept?token=")
	assert.Contains(t, msg.HTML, "7 days")
}

func TestInviteCollaborator_Rejections(t *testing.T) {
	h := newInvitationHarness(t)
	h.invite(t)
	ctx := context.Background()

	_, err := h.svc.InviteCollaborator(ctx, owner, h.planID.String(), "FRIEND@example.com")
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err), "duplicate, case-insensitive")

	_, err = h.svc.InviteCollaborator(ctx, owner, h.planID.String(), "Owner@Example.com")
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err), "self invite")

	_, err = h.svc.InviteCollaborator(ctx, owner, h.planID.String(), "not-an-email")
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))

	_, err = h.svc.InviteCollaborator(ctx, other, h.planID.String(), "x@example.com")
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	_, err = h.svc.InviteCollaborator(ctx, owner, uuid.NewString(), "x@example.com")
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	h.store.createErr = errors.New("connection reset")
	_, err = h.svc.InviteCollaborator(ctx, owner, h.planID.String(), "y@example.com")
	assert.Equal(t, apperr.ServiceUnavailable, apperr.KindOf(err))

	assert.Len(t, h.notifier.sent, 1)
}

func TestInviteMentor(t *testing.T) {
	h := newInvitationHarness(t)

	inv, err := h.svc.InviteMentor(context.Background(), owner, "mentor@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.InviteMentor, inv.Kind)
	assert.Equal(t, owner.ID, inv.ResourceID)
	assert.Contains(t, h.notifier.sent[0].HTML, "mentor")

	_, err = h.svc.InviteMentor(context.Background(), owner, "mentor@example.com")
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestAccept_StateMachine(t *testing.T) {
	h := newInvitationHarness(t)
	token := h.invite(t)
	ctx := context.Background()

	inv, err := h.svc.Accept(ctx, friend, token)
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationAccepted, inv.Status)

	inv, err = h.svc.Accept(ctx, friend, token)
	require.NoError(t, err, "same identity accepting again")
	assert.Equal(t, friend.ID, inv.RespondedBy)

	_, err = h.svc.Accept(ctx, domain.Identity{ID: "impostor", Email: "friend@example.com"}, token)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))

	_, err = h.svc.Decline(ctx, friend, token)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestAccept_Expired(t *testing.T) {
	h := newInvitationHarness(t)
	token := h.invite(t)

	h.clock = fixedNow.Add(ttl + time.Second)
	_, err := h.svc.Accept(context.Background(), friend, token)
	assert.Equal(t, apperr.Expired, apperr.KindOf(err))

	h.clock = fixedNow.Add(ttl)
	_, err = h.svc.Accept(context.Background(), friend, token)
	assert.NoError(t, err, "exactly at the boundary is still valid")
}

func TestAccept_Rejections(t *testing.T) {
	h := newInvitationHarness(t)
	token := h.invite(t)
	ctx := context.Background()

	_, err := h.svc.Accept(ctx, other, token)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	_, err = h.svc.Accept(ctx, friend, strings.Repeat("0", 64))
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	for hash := range h.store.rows {
		_, err = h.svc.Accept(ctx, friend, hash)
		assert.Equal(t, apperr.NotFound, apperr.KindOf(err), "presenting the stored hash")
	}

	_, err = h.svc.Accept(ctx, friend, "")
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
}

func TestAccept_LostRace(t *testing.T) {
	h := newInvitationHarness(t)
	token := h.invite(t)
	h.store.beforeAccept = func(inv *domain.Invitation) {
		at := fixedNow
		inv.Status, inv.RespondedBy, inv.RespondedAt = domain.InvitationAccepted, "someone", &at
	}

	_, err := h.svc.Accept(context.Background(), friend, token)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestDecline(t *testing.T) {
	h := newInvitationHarness(t)
	token := h.invite(t)
	ctx := context.Background()

	_, err := h.svc.Decline(ctx, other, token)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	inv, err := h.svc.Decline(ctx, friend, token)
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationDeclined, inv.Status)

	_, err = h.svc.Decline(ctx, friend, token)
	assert.NoError(t, err, "declining twice")

	_, err = h.svc.Accept(ctx, friend, token)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
}
