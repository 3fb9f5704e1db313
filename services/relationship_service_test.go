package services

import (
	"context"
	"testing"
	"townsquare-api/events"
	"townsquare-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedEvents struct {
	accepted  []events.FriendRequestAccepted
	rejected  []events.FriendRequestRejected
	removed   []events.FriendRemoved
	blocked   []events.UserBlocked
	unblocked []events.UserUnblocked
}

func recordEvents(bus *events.Bus) *recordedEvents {
	rec := &recordedEvents{}
	bus.Subscribe(events.TopicFriendRequestAccepted, func(payload interface{}) {
		rec.accepted = append(rec.accepted, payload.(events.FriendRequestAccepted))
	})
	bus.Subscribe(events.TopicFriendRequestRejected, func(payload interface{}) {
		rec.rejected = append(rec.rejected, payload.(events.FriendRequestRejected))
	})
	bus.Subscribe(events.TopicFriendRemoved, func(payload interface{}) {
		rec.removed = append(rec.removed, payload.(events.FriendRemoved))
	})
	bus.Subscribe(events.TopicUserBlocked, func(payload interface{}) {
		rec.blocked = append(rec.blocked, payload.(events.UserBlocked))
	})
	bus.Subscribe(events.TopicUserUnblocked, func(payload interface{}) {
		rec.unblocked = append(rec.unblocked, payload.(events.UserUnblocked))
	})
	return rec
}

func newTestService() (*RelationshipService, *fakeRelationshipStore, *recordedEvents) {
	store := newFakeRelationshipStore()
	store.addUser("alice", "alice")
	store.addUser("bob", "bob")
	store.addUser("carol", "carol")
	bus := events.NewBus()
	rec := recordEvents(bus)
	return NewRelationshipService(store, bus), store, rec
}

func assertAtMostOneRelation(t *testing.T, store *fakeRelationshipStore, userA, userB string) {
	t.Helper()
	pending, friends, aBlocksB, bBlocksA := store.pairState(userA, userB)
	count := 0
	for _, held := range []bool{pending, friends, aBlocksB, bBlocksA} {
		if held {
			count++
		}
	}
	// A reverse-direction block pair is the one allowed double.
	if count > 1 && !(count == 2 && aBlocksB && bBlocksA) {
		t.Fatalf("pair (%s,%s) holds %d relationship records: pending=%v friends=%v aBlocksB=%v bBlocksA=%v",
			userA, userB, count, pending, friends, aBlocksB, bBlocksA)
	}
}

func TestSendFriendRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects self target", func(t *testing.T) {
		service, _, _ := newTestService()
		_, err := service.SendFriendRequest(ctx, "alice", "alice")
		assert.ErrorIs(t, err, ErrInvalidTarget)
	})

	t.Run("creates pending request without publishing", func(t *testing.T) {
		service, store, rec := newTestService()
		request, err := service.SendFriendRequest(ctx, "alice", "bob")
		require.NoError(t, err)
		assert.Equal(t, models.FriendRequestStatusPending, request.Status)
		assert.Equal(t, "alice", request.SenderID)
		assert.Equal(t, "bob", request.ReceiverID)
		assert.Empty(t, rec.accepted)
		assert.Empty(t, rec.rejected)
		assertAtMostOneRelation(t, store, "alice", "bob")
	})

	t.Run("rejects duplicate pending request in either direction", func(t *testing.T) {
		service, _, _ := newTestService()
		_, err := service.SendFriendRequest(ctx, "alice", "bob")
		require.NoError(t, err)

		_, err = service.SendFriendRequest(ctx, "alice", "bob")
		assert.ErrorIs(t, err, ErrDuplicateRequest)

		_, err = service.SendFriendRequest(ctx, "bob", "alice")
		assert.ErrorIs(t, err, ErrDuplicateRequest)
	})

	t.Run("rejects existing friends", func(t *testing.T) {
		service, store, _ := newTestService()
		store.friendships[pairKey("alice", "bob")] = true

		_, err := service.SendFriendRequest(ctx, "alice", "bob")
		assert.ErrorIs(t, err, ErrAlreadyFriends)
	})

	t.Run("block outranks other checks", func(t *testing.T) {
		service, store, _ := newTestService()
		store.blocks[[2]string{"bob", "alice"}] = true
		store.friendships[pairKey("alice", "bob")] = true

		_, err := service.SendFriendRequest(ctx, "alice", "bob")
		assert.ErrorIs(t, err, ErrAlreadyBlocked)
	})
}

func TestAcceptFriendRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("accepts and links friendship", func(t *testing.T) {
		service, store, rec := newTestService()
		request, err := service.SendFriendRequest(ctx, "alice", "bob")
		require.NoError(t, err)

		require.NoError(t, service.AcceptFriendRequest(ctx, "bob", request.ID))

		stored := store.requests[request.ID]
		assert.Equal(t, models.FriendRequestStatusAccepted, stored.Status)
		assert.True(t, store.friendships[pairKey("alice", "bob")])

		require.Len(t, rec.accepted, 1)
		assert.Equal(t, request.ID, rec.accepted[0].RequestID)
		assert.Equal(t, [2]string{"alice", "bob"}, rec.accepted[0].Users)
		assertAtMostOneRelation(t, store, "alice", "bob")
	})

	t.Run("second accept observes NotFound and leaves one edge", func(t *testing.T) {
		service, store, rec := newTestService()
		request, err := service.SendFriendRequest(ctx, "alice", "bob")
		require.NoError(t, err)

		require.NoError(t, service.AcceptFriendRequest(ctx, "bob", request.ID))
		err = service.AcceptFriendRequest(ctx, "bob", request.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		assert.Len(t, store.friendships, 1)
		assert.Len(t, rec.accepted, 1)
	})

	t.Run("missing request yields NotFound", func(t *testing.T) {
		service, _, _ := newTestService()
		err := service.AcceptFriendRequest(ctx, "bob", "no-such-request")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("only the receiver may accept", func(t *testing.T) {
		service, store, rec := newTestService()
		request, err := service.SendFriendRequest(ctx, "alice", "bob")
		require.NoError(t, err)

		err = service.AcceptFriendRequest(ctx, "carol", request.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		err = service.AcceptFriendRequest(ctx, "alice", request.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		assert.Equal(t, models.FriendRequestStatusPending, store.requests[request.ID].Status)
		assert.Empty(t, store.friendships)
		assert.Empty(t, rec.accepted)
	})

	t.Run("retries edge creation once before surfacing", func(t *testing.T) {
		service, store, rec := newTestService()
		request, err := service.SendFriendRequest(ctx, "alice", "bob")
		require.NoError(t, err)

		store.failCreateFriendship = 1
		require.NoError(t, service.AcceptFriendRequest(ctx, "bob", request.ID))
		assert.True(t, store.friendships[pairKey("alice", "bob")])
		assert.Len(t, rec.accepted, 1)
	})

	t.Run("surfaces error when retry also fails", func(t *testing.T) {
		service, store, rec := newTestService()
		request, err := service.SendFriendRequest(ctx, "alice", "bob")
		require.NoError(t, err)

		store.failCreateFriendship = 2
		err = service.AcceptFriendRequest(ctx, "bob", request.ID)
		assert.ErrorIs(t, err, ErrStoreUnavailable)
		assert.Equal(t, 2, store.createFriendshipCalls)
		assert.Empty(t, rec.accepted)
	})
}

func TestAcceptNotifiesSubscribersUntilCancelled(t *testing.T) {
	ctx := context.Background()
	store := newFakeRelationshipStore()
	store.addUser("alice", "alice")
	store.addUser("bob", "bob")
	store.addUser("carol", "carol")
	bus := events.NewBus()
	service := NewRelationshipService(store, bus)

	var got []events.FriendRequestAccepted
	sub := bus.Subscribe(events.TopicFriendRequestAccepted, func(payload interface{}) {
		got = append(got, payload.(events.FriendRequestAccepted))
	})

	first, err := service.SendFriendRequest(ctx, "alice", "bob")
	require.NoError(t, err)
	require.NoError(t, service.AcceptFriendRequest(ctx, "bob", first.ID))

	require.Len(t, got, 1)
	assert.Equal(t, first.ID, got[0].RequestID)
	assert.Equal(t, [2]string{"alice", "bob"}, got[0].Users)

	// After cancellation an unrelated accept must not reach the handler.
	sub.Cancel()
	second, err := service.SendFriendRequest(ctx, "carol", "bob")
	require.NoError(t, err)
	require.NoError(t, service.AcceptFriendRequest(ctx, "bob", second.ID))
	assert.Len(t, got, 1)
}

func TestRejectFriendRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("marks rejected and publishes", func(t *testing.T) {
		service, store, rec := newTestService()
		request, err := service.SendFriendRequest(ctx, "alice", "bob")
		require.NoError(t, err)

		require.NoError(t, service.RejectFriendRequest(ctx, "bob", request.ID))
		assert.Equal(t, models.FriendRequestStatusRejected, store.requests[request.ID].Status)
		require.Len(t, rec.rejected, 1)
		assert.Equal(t, request.ID, rec.rejected[0].RequestID)
	})

	t.Run("only the receiver may reject", func(t *testing.T) {
		service, store, rec := newTestService()
		request, err := service.SendFriendRequest(ctx, "alice", "bob")
		require.NoError(t, err)

		err = service.RejectFriendRequest(ctx, "carol", request.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		err = service.RejectFriendRequest(ctx, "alice", request.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		assert.Equal(t, models.FriendRequestStatusPending, store.requests[request.ID].Status)
		assert.Empty(t, rec.rejected)
	})

	t.Run("terminal request yields NotFound", func(t *testing.T) {
		service, _, rec := newTestService()
		request, err := service.SendFriendRequest(ctx, "alice", "bob")
		require.NoError(t, err)

		require.NoError(t, service.RejectFriendRequest(ctx, "bob", request.ID))
		err = service.RejectFriendRequest(ctx, "bob", request.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Len(t, rec.rejected, 1)
	})
}

func TestRemoveFriend(t *testing.T) {
	ctx := context.Background()

	t.Run("removes edge and publishes", func(t *testing.T) {
		service, store, rec := newTestService()
		store.friendships[pairKey("alice", "bob")] = true

		require.NoError(t, service.RemoveFriend(ctx, "alice", "bob"))
		assert.Empty(t, store.friendships)
		require.Len(t, rec.removed, 1)
		assert.Equal(t, [2]string{"alice", "bob"}, rec.removed[0].Users)
	})

	t.Run("second removal from the other side yields NotFound", func(t *testing.T) {
		service, store, _ := newTestService()
		store.friendships[pairKey("alice", "bob")] = true

		require.NoError(t, service.RemoveFriend(ctx, "alice", "bob"))
		err := service.RemoveFriend(ctx, "bob", "alice")
		assert.ErrorIs(t, err, ErrNotFound)

		friendsOfAlice, err := service.GetFriends(ctx, "alice")
		require.NoError(t, err)
		assert.Empty(t, friendsOfAlice)
		friendsOfBob, err := service.GetFriends(ctx, "bob")
		require.NoError(t, err)
		assert.Empty(t, friendsOfBob)
	})
}

func TestBlockUser(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects self target", func(t *testing.T) {
		service, _, _ := newTestService()
		assert.ErrorIs(t, service.BlockUser(ctx, "alice", "alice"), ErrInvalidTarget)
	})

	t.Run("clears friendship before blocking", func(t *testing.T) {
		service, store, rec := newTestService()
		store.friendships[pairKey("alice", "bob")] = true

		require.NoError(t, service.BlockUser(ctx, "alice", "bob"))
		assert.Empty(t, store.friendships)
		assert.True(t, store.blocks[[2]string{"alice", "bob"}])
		require.Len(t, rec.blocked, 1)

		friends, err := service.GetFriends(ctx, "alice")
		require.NoError(t, err)
		assert.Empty(t, friends)
		assertAtMostOneRelation(t, store, "alice", "bob")
	})

	t.Run("supersedes pending request", func(t *testing.T) {
		service, store, rec := newTestService()
		request, err := service.SendFriendRequest(ctx, "alice", "bob")
		require.NoError(t, err)

		// B blocks A while A's request is in flight.
		require.NoError(t, service.BlockUser(ctx, "bob", "alice"))
		assert.Equal(t, models.FriendRequestStatusRejected, store.requests[request.ID].Status)

		inbox, err := service.GetFriendRequests(ctx, "bob")
		require.NoError(t, err)
		assert.Empty(t, inbox)

		_, err = service.SendFriendRequest(ctx, "alice", "bob")
		assert.ErrorIs(t, err, ErrAlreadyBlocked)

		require.Len(t, rec.blocked, 1)
		assertAtMostOneRelation(t, store, "alice", "bob")
	})

	t.Run("repeat block is a no-op success", func(t *testing.T) {
		service, store, rec := newTestService()
		require.NoError(t, service.BlockUser(ctx, "alice", "bob"))
		require.NoError(t, service.BlockUser(ctx, "alice", "bob"))
		assert.Len(t, rec.blocked, 1)
		assert.True(t, store.blocks[[2]string{"alice", "bob"}])
	})

	t.Run("reverse-direction blocks may coexist", func(t *testing.T) {
		service, store, _ := newTestService()
		require.NoError(t, service.BlockUser(ctx, "alice", "bob"))
		require.NoError(t, service.BlockUser(ctx, "bob", "alice"))
		assert.True(t, store.blocks[[2]string{"alice", "bob"}])
		assert.True(t, store.blocks[[2]string{"bob", "alice"}])
		assertAtMostOneRelation(t, store, "alice", "bob")
	})

	t.Run("clears a friendship re-linked by a racing accept", func(t *testing.T) {
		service, store, rec := newTestService()

		// An accept wins between the block saga's friendship delete and
		// its block write, re-linking the pair.
		store.beforeCreateBlock = func() {
			store.friendships[pairKey("alice", "bob")] = true
		}

		require.NoError(t, service.BlockUser(ctx, "alice", "bob"))
		assert.True(t, store.blocks[[2]string{"alice", "bob"}])
		assert.Empty(t, store.friendships)
		require.Len(t, rec.blocked, 1)
		assertAtMostOneRelation(t, store, "alice", "bob")
	})

	t.Run("aborts when friendship removal fails", func(t *testing.T) {
		service, store, rec := newTestService()
		store.friendships[pairKey("alice", "bob")] = true
		store.fail["DeleteFriendship"] = ErrStoreUnavailable

		err := service.BlockUser(ctx, "alice", "bob")
		assert.ErrorIs(t, err, ErrStoreUnavailable)
		assert.False(t, store.blocks[[2]string{"alice", "bob"}])
		assert.Empty(t, rec.blocked)
	})
}

func TestUnblockUser(t *testing.T) {
	ctx := context.Background()

	t.Run("returns pair to none, not friends", func(t *testing.T) {
		service, store, rec := newTestService()
		store.friendships[pairKey("alice", "bob")] = true

		require.NoError(t, service.BlockUser(ctx, "alice", "bob"))
		require.NoError(t, service.UnblockUser(ctx, "alice", "bob"))

		pending, friends, aBlocksB, bBlocksA := store.pairState("alice", "bob")
		assert.False(t, pending)
		assert.False(t, friends)
		assert.False(t, aBlocksB)
		assert.False(t, bBlocksA)
		require.Len(t, rec.unblocked, 1)
	})

	t.Run("absent block is a no-op without publishing", func(t *testing.T) {
		service, _, rec := newTestService()
		require.NoError(t, service.UnblockUser(ctx, "alice", "bob"))
		assert.Empty(t, rec.unblocked)
	})
}

func TestIsBlocked(t *testing.T) {
	ctx := context.Background()
	service, store, _ := newTestService()

	blocked, err := service.IsBlocked(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.False(t, blocked)

	store.blocks[[2]string{"bob", "alice"}] = true

	// Either direction gates contact for both sides.
	blocked, err = service.IsBlocked(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, blocked)
	blocked, err = service.IsBlocked(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.True(t, blocked)

	// HasBlocked is directional: only the edge holder reads true.
	holding, err := service.HasBlocked(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.True(t, holding)
	holding, err = service.HasBlocked(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.False(t, holding)
}

func TestQueries(t *testing.T) {
	ctx := context.Background()

	t.Run("friends list joins profiles from either side", func(t *testing.T) {
		service, store, _ := newTestService()
		store.friendships[pairKey("alice", "bob")] = true
		store.friendships[pairKey("carol", "alice")] = true

		friends, err := service.GetFriends(ctx, "alice")
		require.NoError(t, err)
		ids := []string{}
		for _, friend := range friends {
			ids = append(ids, friend.ID)
		}
		assert.ElementsMatch(t, []string{"bob", "carol"}, ids)
	})

	t.Run("inbox lists incoming pending with requester joined", func(t *testing.T) {
		service, _, _ := newTestService()
		_, err := service.SendFriendRequest(ctx, "alice", "bob")
		require.NoError(t, err)
		_, err = service.SendFriendRequest(ctx, "bob", "carol")
		require.NoError(t, err)

		inbox, err := service.GetFriendRequests(ctx, "bob")
		require.NoError(t, err)
		require.Len(t, inbox, 1)
		assert.Equal(t, "alice", inbox[0].SenderID)
		assert.Equal(t, "alice", inbox[0].Sender.ID)
		assert.Empty(t, inbox[0].Sender.Password)
	})

	t.Run("blocked list", func(t *testing.T) {
		service, _, _ := newTestService()
		require.NoError(t, service.BlockUser(ctx, "alice", "bob"))

		blocked, err := service.GetBlockedUsers(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, blocked, 1)
		assert.Equal(t, "bob", blocked[0].ID)
	})
}

// Full lifecycle: request, accept, remove, block, unblock — the invariant
// that at most one relationship kind holds must survive every step.
func TestRelationshipLifecycle(t *testing.T) {
	ctx := context.Background()
	service, store, _ := newTestService()

	request, err := service.SendFriendRequest(ctx, "alice", "bob")
	require.NoError(t, err)
	assertAtMostOneRelation(t, store, "alice", "bob")

	require.NoError(t, service.AcceptFriendRequest(ctx, "bob", request.ID))
	assertAtMostOneRelation(t, store, "alice", "bob")

	require.NoError(t, service.RemoveFriend(ctx, "alice", "bob"))
	assertAtMostOneRelation(t, store, "alice", "bob")

	require.NoError(t, service.BlockUser(ctx, "bob", "alice"))
	assertAtMostOneRelation(t, store, "alice", "bob")

	require.NoError(t, service.UnblockUser(ctx, "bob", "alice"))
	pending, friends, aBlocksB, bBlocksA := store.pairState("alice", "bob")
	assert.False(t, pending || friends || aBlocksB || bBlocksA)
}
