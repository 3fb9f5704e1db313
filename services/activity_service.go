package services

import (
	"context"
	"townsquare-api/models"
	"townsquare-api/repositories"
)

// ActivitySnapshot is the derived view of a user's social and content
// activity. Field groups that could not be computed are listed in Errors
// by group name; the remaining fields are still populated.
type ActivitySnapshot struct {
	Friends         []models.PublicProfile `json:"friends"`
	PendingRequests []models.FriendRequest `json:"pending_requests"`
	BlockedUsers    []models.PublicProfile `json:"blocked_users"`
	PostCount       int64                  `json:"post_count"`
	ReplyCount      int64                  `json:"reply_count"`
	JobCount        int64                  `json:"job_count"`
	HousingCount    int64                  `json:"housing_count"`
	ServiceCount    int64                  `json:"service_count"`
	LikesReceived   int64                  `json:"likes_received"`
	Errors          map[string]string      `json:"errors,omitempty"`
}

// ActivityAggregator recomputes the snapshot on demand by pulling from the
// relationship and content stores. It holds no cache: consumers call it
// again after a relevant bus event or when the UI regains focus, which is
// the explicit reconciliation path for changes made on another device.
type ActivityAggregator struct {
	relationships *RelationshipService
	content       repositories.ContentStore
}

func NewActivityAggregator(relationships *RelationshipService, content repositories.ContentStore) *ActivityAggregator {
	return &ActivityAggregator{relationships: relationships, content: content}
}

// Snapshot computes the current activity view for a user. Each field group
// fails independently: a blocked-list fetch error does not prevent friends
// or content counts from being returned.
func (a *ActivityAggregator) Snapshot(ctx context.Context, userID string) ActivitySnapshot {
	snapshot := ActivitySnapshot{
		Friends:         []models.PublicProfile{},
		PendingRequests: []models.FriendRequest{},
		BlockedUsers:    []models.PublicProfile{},
		Errors:          map[string]string{},
	}

	if friends, err := a.relationships.GetFriends(ctx, userID); err != nil {
		snapshot.Errors["friends"] = err.Error()
	} else {
		snapshot.Friends = friends
	}

	if requests, err := a.relationships.GetFriendRequests(ctx, userID); err != nil {
		snapshot.Errors["requests"] = err.Error()
	} else {
		snapshot.PendingRequests = requests
	}

	if blocked, err := a.relationships.GetBlockedUsers(ctx, userID); err != nil {
		snapshot.Errors["blocked"] = err.Error()
	} else {
		snapshot.BlockedUsers = blocked
	}

	if count, err := a.content.CountPostsByAuthor(ctx, userID); err != nil {
		snapshot.Errors["posts"] = err.Error()
	} else {
		snapshot.PostCount = count
	}

	if count, err := a.content.CountRepliesByAuthor(ctx, userID); err != nil {
		snapshot.Errors["replies"] = err.Error()
	} else {
		snapshot.ReplyCount = count
	}

	if err := a.countListings(ctx, userID, &snapshot); err != nil {
		snapshot.Errors["listings"] = err.Error()
	}

	if count, err := a.content.CountLikesReceived(ctx, userID); err != nil {
		snapshot.Errors["likes"] = err.Error()
	} else {
		snapshot.LikesReceived = count
	}

	if len(snapshot.Errors) == 0 {
		snapshot.Errors = nil
	}
	return snapshot
}

func (a *ActivityAggregator) countListings(ctx context.Context, userID string, snapshot *ActivitySnapshot) error {
	jobs, err := a.content.CountListingsByCategory(ctx, userID, models.ListingCategoryJob)
	if err != nil {
		return err
	}
	housing, err := a.content.CountListingsByCategory(ctx, userID, models.ListingCategoryHousing)
	if err != nil {
		return err
	}
	services, err := a.content.CountListingsByCategory(ctx, userID, models.ListingCategoryService)
	if err != nil {
		return err
	}

	snapshot.JobCount = jobs
	snapshot.HousingCount = housing
	snapshot.ServiceCount = services
	return nil
}
