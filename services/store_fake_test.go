package services

import (
	"context"
	"sync"
	"townsquare-api/models"
	"townsquare-api/repositories"
)

// fakeRelationshipStore is an in-memory RelationshipStore for service
// tests. Named errors can be injected per method via fail, and friendship
// creation can be made to fail a set number of times to exercise the
// accept saga's retry.
type fakeRelationshipStore struct {
	mu sync.Mutex

	requests    map[string]*models.FriendRequest
	friendships map[[2]string]bool
	blocks      map[[2]string]bool
	users       map[string]models.User

	fail                  map[string]error
	failCreateFriendship  int
	createFriendshipCalls int

	// beforeCreateBlock runs inside CreateBlock before the edge is
	// written, for interleaving concurrent writes into a saga.
	beforeCreateBlock func()
}

func newFakeRelationshipStore() *fakeRelationshipStore {
	return &fakeRelationshipStore{
		requests:    make(map[string]*models.FriendRequest),
		friendships: make(map[[2]string]bool),
		blocks:      make(map[[2]string]bool),
		users:       make(map[string]models.User),
		fail:        make(map[string]error),
	}
}

func (s *fakeRelationshipStore) addUser(id, name string) {
	s.users[id] = models.User{ID: id, Name: name, Handle: name, Email: name + "@example.com"}
}

func pairKey(a, b string) [2]string {
	user1, user2 := models.CanonicalPair(a, b)
	return [2]string{user1, user2}
}

func (s *fakeRelationshipStore) CreateRequest(_ context.Context, request *models.FriendRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail["CreateRequest"]; err != nil {
		return err
	}
	stored := *request
	s.requests[request.ID] = &stored
	return nil
}

func (s *fakeRelationshipStore) GetRequest(_ context.Context, requestID string) (*models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail["GetRequest"]; err != nil {
		return nil, err
	}
	request, ok := s.requests[requestID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *request
	return &copied, nil
}

func (s *fakeRelationshipStore) UpdateRequestStatus(_ context.Context, requestID string, from, to models.FriendRequestStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail["UpdateRequestStatus"]; err != nil {
		return err
	}
	request, ok := s.requests[requestID]
	if !ok || request.Status != from {
		return repositories.ErrNotFound
	}
	request.Status = to
	return nil
}

func (s *fakeRelationshipStore) FindPendingRequestBetween(_ context.Context, userA, userB string) (*models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail["FindPendingRequestBetween"]; err != nil {
		return nil, err
	}
	for _, request := range s.requests {
		if request.Status != models.FriendRequestStatusPending {
			continue
		}
		if (request.SenderID == userA && request.ReceiverID == userB) ||
			(request.SenderID == userB && request.ReceiverID == userA) {
			copied := *request
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *fakeRelationshipStore) ListIncomingPendingRequests(_ context.Context, userID string) ([]models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail["ListIncomingPendingRequests"]; err != nil {
		return nil, err
	}
	out := []models.FriendRequest{}
	for _, request := range s.requests {
		if request.ReceiverID == userID && request.Status == models.FriendRequestStatusPending {
			copied := *request
			copied.Sender = s.users[request.SenderID]
			out = append(out, copied)
		}
	}
	return out, nil
}

func (s *fakeRelationshipStore) CreateFriendship(_ context.Context, userA, userB string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createFriendshipCalls++
	if s.failCreateFriendship > 0 {
		s.failCreateFriendship--
		return repositories.ErrStoreUnavailable
	}
	if err := s.fail["CreateFriendship"]; err != nil {
		return err
	}
	s.friendships[pairKey(userA, userB)] = true
	return nil
}

func (s *fakeRelationshipStore) DeleteFriendship(_ context.Context, userA, userB string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail["DeleteFriendship"]; err != nil {
		return err
	}
	key := pairKey(userA, userB)
	if !s.friendships[key] {
		return repositories.ErrNotFound
	}
	delete(s.friendships, key)
	return nil
}

func (s *fakeRelationshipStore) FriendshipExists(_ context.Context, userA, userB string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail["FriendshipExists"]; err != nil {
		return false, err
	}
	return s.friendships[pairKey(userA, userB)], nil
}

func (s *fakeRelationshipStore) ListFriendships(_ context.Context, userID string) ([]models.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail["ListFriendships"]; err != nil {
		return nil, err
	}
	out := []models.Friendship{}
	for key := range s.friendships {
		if key[0] == userID || key[1] == userID {
			out = append(out, models.Friendship{User1ID: key[0], User2ID: key[1]})
		}
	}
	return out, nil
}

func (s *fakeRelationshipStore) CreateBlock(_ context.Context, blocker, blocked string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail["CreateBlock"]; err != nil {
		return err
	}
	if s.beforeCreateBlock != nil {
		s.beforeCreateBlock()
	}
	s.blocks[[2]string{blocker, blocked}] = true
	return nil
}

func (s *fakeRelationshipStore) DeleteBlock(_ context.Context, blocker, blocked string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail["DeleteBlock"]; err != nil {
		return err
	}
	key := [2]string{blocker, blocked}
	if !s.blocks[key] {
		return repositories.ErrNotFound
	}
	delete(s.blocks, key)
	return nil
}

func (s *fakeRelationshipStore) BlockExists(_ context.Context, blocker, blocked string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail["BlockExists"]; err != nil {
		return false, err
	}
	return s.blocks[[2]string{blocker, blocked}], nil
}

func (s *fakeRelationshipStore) BlockExistsBetween(_ context.Context, userA, userB string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail["BlockExistsBetween"]; err != nil {
		return false, err
	}
	return s.blocks[[2]string{userA, userB}] || s.blocks[[2]string{userB, userA}], nil
}

func (s *fakeRelationshipStore) ListBlocks(_ context.Context, blocker string) ([]models.BlockEdge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail["ListBlocks"]; err != nil {
		return nil, err
	}
	out := []models.BlockEdge{}
	for key := range s.blocks {
		if key[0] == blocker {
			out = append(out, models.BlockEdge{
				BlockerID: key[0],
				BlockedID: key[1],
				Blocked:   s.users[key[1]],
			})
		}
	}
	return out, nil
}

func (s *fakeRelationshipStore) GetUsersByID(_ context.Context, ids []string) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail["GetUsersByID"]; err != nil {
		return nil, err
	}
	out := []models.User{}
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

// pairState reports which relationship records exist for a pair, for
// asserting that at most one kind holds after any operation sequence.
func (s *fakeRelationshipStore) pairState(userA, userB string) (pending, friends, aBlocksB, bBlocksA bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, request := range s.requests {
		if request.Status != models.FriendRequestStatusPending {
			continue
		}
		if (request.SenderID == userA && request.ReceiverID == userB) ||
			(request.SenderID == userB && request.ReceiverID == userA) {
			pending = true
		}
	}
	friends = s.friendships[pairKey(userA, userB)]
	aBlocksB = s.blocks[[2]string{userA, userB}]
	bBlocksA = s.blocks[[2]string{userB, userA}]
	return
}
