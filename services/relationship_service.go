package services

import (
	"context"
	"errors"
	"fmt"
	"townsquare-api/events"
	"townsquare-api/models"
	"townsquare-api/repositories"

	"github.com/google/uuid"
)

// RelationshipService owns the pairwise relationship state machine. It is
// the sole writer path for friend requests, friendship edges and block
// edges, sequences multi-record mutations against a store that offers no
// cross-record transaction, and publishes outcomes on the event bus.
type RelationshipService struct {
	store repositories.RelationshipStore
	bus   *events.Bus
}

func NewRelationshipService(store repositories.RelationshipStore, bus *events.Bus) *RelationshipService {
	return &RelationshipService{store: store, bus: bus}
}

// SendFriendRequest creates a pending request from one user to another.
// Checks run in severity order: block, duplicate pending request,
// existing friendship. No event is published; the recipient discovers
// the request through the inbox fetch.
func (s *RelationshipService) SendFriendRequest(ctx context.Context, from, to string) (*models.FriendRequest, error) {
	if from == to {
		return nil, ErrInvalidTarget
	}

	blocked, err := s.store.BlockExistsBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, ErrAlreadyBlocked
	}

	_, err = s.store.FindPendingRequestBetween(ctx, from, to)
	if err == nil {
		return nil, ErrDuplicateRequest
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	friends, err := s.store.FriendshipExists(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if friends {
		return nil, ErrAlreadyFriends
	}

	request := &models.FriendRequest{
		ID:         uuid.New().String(),
		SenderID:   from,
		ReceiverID: to,
		Status:     models.FriendRequestStatusPending,
	}
	if err := s.store.CreateRequest(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

// AcceptFriendRequest marks a pending request accepted and creates the
// friendship edge. Only the request's receiver may accept; anyone else
// observes ErrNotFound, the same as for a request that does not exist.
// The two writes are not atomic: the status update is a compare-and-set
// on the pending state, so of two concurrent accepts exactly one wins
// and the other observes ErrNotFound. If the edge write fails after the
// status flip, it is retried once before the error is surfaced. An
// accepted request without an edge must not be the outcome of a
// completed call.
func (s *RelationshipService) AcceptFriendRequest(ctx context.Context, callerID, requestID string) error {
	request, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if request.ReceiverID != callerID {
		return ErrNotFound
	}
	if request.Status != models.FriendRequestStatusPending {
		return ErrNotFound
	}

	err = s.store.UpdateRequestStatus(ctx, requestID,
		models.FriendRequestStatusPending, models.FriendRequestStatusAccepted)
	if err != nil {
		return err
	}

	if err := s.store.CreateFriendship(ctx, request.SenderID, request.ReceiverID); err != nil {
		if retryErr := s.store.CreateFriendship(ctx, request.SenderID, request.ReceiverID); retryErr != nil {
			return fmt.Errorf("request %s accepted but friendship not linked: %w", requestID, retryErr)
		}
	}

	user1, user2 := models.CanonicalPair(request.SenderID, request.ReceiverID)
	s.bus.Publish(events.TopicFriendRequestAccepted, events.FriendRequestAccepted{
		RequestID: requestID,
		Users:     [2]string{user1, user2},
	})
	return nil
}

// RejectFriendRequest marks a pending request rejected. Only the
// receiver may reject. A request that is missing, addressed to someone
// else, or already terminal yields ErrNotFound, which callers treat as
// already satisfied.
func (s *RelationshipService) RejectFriendRequest(ctx context.Context, callerID, requestID string) error {
	request, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if request.ReceiverID != callerID {
		return ErrNotFound
	}

	err = s.store.UpdateRequestStatus(ctx, requestID,
		models.FriendRequestStatusPending, models.FriendRequestStatusRejected)
	if err != nil {
		return err
	}

	s.bus.Publish(events.TopicFriendRequestRejected, events.FriendRequestRejected{
		RequestID: requestID,
	})
	return nil
}

// RemoveFriend deletes the friendship edge between two users. A second
// call for the same pair yields ErrNotFound.
func (s *RelationshipService) RemoveFriend(ctx context.Context, userA, userB string) error {
	if userA == userB {
		return ErrInvalidTarget
	}

	if err := s.store.DeleteFriendship(ctx, userA, userB); err != nil {
		return err
	}

	user1, user2 := models.CanonicalPair(userA, userB)
	s.bus.Publish(events.TopicFriendRemoved, events.FriendRemoved{
		Users: [2]string{user1, user2},
	})
	return nil
}

// BlockUser creates a directed block edge, clearing any friendship first
// and superseding any pending request between the pair. The friendship is
// removed before the block is written: if the sequence is interrupted in
// between, the pair is transiently unrelated, which is always a valid
// state, whereas a block alongside a live friendship edge is not. Blocking
// a user who is already blocked is a no-op success.
func (s *RelationshipService) BlockUser(ctx context.Context, blocker, blocked string) error {
	if blocker == blocked {
		return ErrInvalidTarget
	}

	exists, err := s.store.BlockExists(ctx, blocker, blocked)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if err := s.store.DeleteFriendship(ctx, blocker, blocked); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	request, err := s.store.FindPendingRequestBetween(ctx, blocker, blocked)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if request != nil {
		err = s.store.UpdateRequestStatus(ctx, request.ID,
			models.FriendRequestStatusPending, models.FriendRequestStatusRejected)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}

	if err := s.store.CreateBlock(ctx, blocker, blocked); err != nil {
		return err
	}

	// A concurrently winning accept may have re-linked the pair between
	// the delete above and the block write. Clear it again now that the
	// block edge is visible; best effort, a survivor falls to the next
	// block or remove call.
	_ = s.store.DeleteFriendship(ctx, blocker, blocked)

	s.bus.Publish(events.TopicUserBlocked, events.UserBlocked{
		Blocker: blocker,
		Blocked: blocked,
	})
	return nil
}

// UnblockUser removes the directed block edge if present. It never
// restores a prior friendship or request; those must be re-initiated.
func (s *RelationshipService) UnblockUser(ctx context.Context, blocker, blocked string) error {
	err := s.store.DeleteBlock(ctx, blocker, blocked)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	s.bus.Publish(events.TopicUserUnblocked, events.UserUnblocked{
		Blocker: blocker,
		Blocked: blocked,
	})
	return nil
}

// IsBlocked reports whether a block exists in either direction. Messaging
// and contact surfaces call this as a guard before allowing contact.
func (s *RelationshipService) IsBlocked(ctx context.Context, userA, userB string) (bool, error) {
	return s.store.BlockExistsBetween(ctx, userA, userB)
}

// HasBlocked reports whether blocker holds a block edge against blocked,
// in that direction only. Profile surfaces use it to tell "you blocked
// them" apart from "they blocked you".
func (s *RelationshipService) HasBlocked(ctx context.Context, blocker, blocked string) (bool, error) {
	return s.store.BlockExists(ctx, blocker, blocked)
}

// PendingRequestBetween returns the pending request between two users in
// either direction, or ErrNotFound.
func (s *RelationshipService) PendingRequestBetween(ctx context.Context, userA, userB string) (*models.FriendRequest, error) {
	return s.store.FindPendingRequestBetween(ctx, userA, userB)
}

// AreFriends reports whether a friendship edge exists for the pair.
func (s *RelationshipService) AreFriends(ctx context.Context, userA, userB string) (bool, error) {
	return s.store.FriendshipExists(ctx, userA, userB)
}

// GetFriends returns the profiles of the user's current friends.
func (s *RelationshipService) GetFriends(ctx context.Context, userID string) ([]models.PublicProfile, error) {
	friendships, err := s.store.ListFriendships(ctx, userID)
	if err != nil {
		return nil, err
	}

	friendIDs := make([]string, 0, len(friendships))
	for _, friendship := range friendships {
		if friendship.User1ID == userID {
			friendIDs = append(friendIDs, friendship.User2ID)
		} else {
			friendIDs = append(friendIDs, friendship.User1ID)
		}
	}

	users, err := s.store.GetUsersByID(ctx, friendIDs)
	if err != nil {
		return nil, err
	}

	profiles := make([]models.PublicProfile, 0, len(users))
	for _, user := range users {
		profiles = append(profiles, user.PublicProfile())
	}
	return profiles, nil
}

// GetFriendRequests returns the user's incoming pending requests with the
// requester profile joined.
func (s *RelationshipService) GetFriendRequests(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	requests, err := s.store.ListIncomingPendingRequests(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range requests {
		requests[i].Sender.Password = ""
	}
	return requests, nil
}

// GetBlockedUsers returns the profiles of users this user has blocked.
func (s *RelationshipService) GetBlockedUsers(ctx context.Context, userID string) ([]models.PublicProfile, error) {
	blocks, err := s.store.ListBlocks(ctx, userID)
	if err != nil {
		return nil, err
	}

	profiles := make([]models.PublicProfile, 0, len(blocks))
	for _, block := range blocks {
		profiles = append(profiles, block.Blocked.PublicProfile())
	}
	return profiles, nil
}
