package events

// Topic names for the relationship subsystem and the content surfaces
// the activity aggregator listens to.
type Topic string

const (
	TopicFriendRequestAccepted Topic = "friendRequestAccepted"
	TopicFriendRequestRejected Topic = "friendRequestRejected"
	TopicFriendRemoved         Topic = "friendRemoved"
	TopicUserBlocked           Topic = "userBlocked"
	TopicUserUnblocked         Topic = "userUnblocked"
	TopicPostAdded             Topic = "postAdded"
	TopicPostDeleted           Topic = "postDeleted"
)

// One payload type per topic. Handlers type-assert on the variant for
// their topic, so dispatch stays statically checkable.

type FriendRequestAccepted struct {
	RequestID string
	Users     [2]string
}

type FriendRequestRejected struct {
	RequestID string
}

type FriendRemoved struct {
	Users [2]string
}

type UserBlocked struct {
	Blocker string
	Blocked string
}

type UserUnblocked struct {
	Blocker string
	Blocked string
}

type PostAdded struct {
	PostID   string
	AuthorID string
}

type PostDeleted struct {
	PostID   string
	AuthorID string
}
