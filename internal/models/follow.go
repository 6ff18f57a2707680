package models

import "time"

// Follow is an established directed follow edge: the follower sees the
// followee's private posts. At most one edge exists per ordered pair;
// the composite unique index doubles as the concurrency guard for
// racing follow calls.
type Follow struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FollowerID  uint      `gorm:"not null;uniqueIndex:idx_follows_pair;index" json:"follower_id"`
	FollowingID uint      `gorm:"not null;uniqueIndex:idx_follows_pair;index" json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`

	Follower  User `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	Following User `gorm:"foreignKey:FollowingID" json:"following,omitempty"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}

// FollowRequestStatus is the lifecycle status of a follow request.
type FollowRequestStatus string

const (
	// FollowRequestStatusPending is the only status ever persisted.
	// Accept converts the row into a Follow edge and deletes it; decline
	// and cancel delete it outright.
	FollowRequestStatusPending FollowRequestStatus = "pending"
)

// FollowRequest is an outstanding ask to follow a private account.
// Resolution (accept/decline/cancel) always removes the row, so the
// unique index on the pair holds for pending requests by construction
// and an edge and a pending request can never coexist.
type FollowRequest struct {
	ID          uint                `gorm:"primaryKey" json:"id"`
	RequesterID uint                `gorm:"not null;uniqueIndex:idx_follow_requests_pair;index" json:"requester_id"`
	TargetID    uint                `gorm:"not null;uniqueIndex:idx_follow_requests_pair;index" json:"target_id"`
	Status      FollowRequestStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`
	CreatedAt   time.Time           `json:"created_at"`

	Requester User `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Target    User `gorm:"foreignKey:TargetID" json:"target,omitempty"`
}

// TableName specifies the table name for GORM
func (FollowRequest) TableName() string {
	return "follow_requests"
}

// FollowStatus is the externally visible relationship state for an
// ordered (viewer, target) pair.
type FollowStatus struct {
	IsFollowing bool `json:"isFollowing"`
	IsPending   bool `json:"isPending"`
}
