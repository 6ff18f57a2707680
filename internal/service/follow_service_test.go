package service

import (
	"context"
	"testing"

	"ripple/internal/database"
	"ripple/internal/models"
	"ripple/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newFollowFixture wires a FollowService to real repositories over an
// in-memory database so transitions run through the same transactional
// paths as production.
func newFollowFixture(t *testing.T) (*gorm.DB, *FollowService) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(database.Models()...); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	svc := NewFollowService(repository.NewFollowRepository(db), repository.NewUserRepository(db))
	return db, svc
}

func createUser(t *testing.T, db *gorm.DB, username string, private bool) *models.User {
	t.Helper()
	user := &models.User{
		Username:       username,
		Email:          username + "@e.com",
		PrivateProfile: private,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func countRows(t *testing.T, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(model).Where(query, args...).Count(&count).Error)
	return count
}

func TestFollowService_SelfFollowRejected(t *testing.T) {
	db, svc := newFollowFixture(t)
	alice := createUser(t, db, "alice", false)

	_, err := svc.Follow(context.Background(), alice.ID, alice.ID)
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestFollowService_UnknownTarget(t *testing.T) {
	db, svc := newFollowFixture(t)
	alice := createUser(t, db, "alice", false)

	_, err := svc.Follow(context.Background(), alice.ID, 999)
	assert.True(t, models.IsNotFound(err))
}

func TestFollowService_FollowPublicTarget(t *testing.T) {
	db, svc := newFollowFixture(t)
	ctx := context.Background()
	alice := createUser(t, db, "alice", false)
	bob := createUser(t, db, "bob", false)

	status, err := svc.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, status.IsFollowing)
	assert.False(t, status.IsPending)

	// Following a public account produces neither request nor notification.
	assert.Zero(t, countRows(t, db, &models.FollowRequest{}, "requester_id = ?", alice.ID))
	assert.Zero(t, countRows(t, db, &models.Notification{}, "user_id = ?", bob.ID))

	// Repeat is a no-op success.
	status, err = svc.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, status.IsFollowing)
	assert.Equal(t, int64(1), countRows(t, db, &models.Follow{},
		"follower_id = ? AND following_id = ?", alice.ID, bob.ID))
}

func TestFollowService_FollowPrivateTarget(t *testing.T) {
	db, svc := newFollowFixture(t)
	ctx := context.Background()
	alice := createUser(t, db, "alice", false)
	carol := createUser(t, db, "carol", true)

	status, err := svc.Follow(ctx, alice.ID, carol.ID)
	require.NoError(t, err)
	assert.False(t, status.IsFollowing)
	assert.True(t, status.IsPending)

	// No edge yet, but a pending request and its inbox notification.
	assert.Zero(t, countRows(t, db, &models.Follow{}, "follower_id = ?", alice.ID))
	assert.Equal(t, int64(1), countRows(t, db, &models.FollowRequest{},
		"requester_id = ? AND target_id = ?", alice.ID, carol.ID))
	assert.Equal(t, int64(1), countRows(t, db, &models.Notification{},
		"user_id = ? AND type = ?", carol.ID, models.NotificationTypeFollowRequest))

	// Repeat stays pending without duplicating anything.
	status, err = svc.Follow(ctx, alice.ID, carol.ID)
	require.NoError(t, err)
	assert.True(t, status.IsPending)
	assert.Equal(t, int64(1), countRows(t, db, &models.FollowRequest{},
		"requester_id = ? AND target_id = ?", alice.ID, carol.ID))
	assert.Equal(t, int64(1), countRows(t, db, &models.Notification{},
		"user_id = ?", carol.ID))
}

func TestFollowService_AcceptFlow(t *testing.T) {
	db, svc := newFollowFixture(t)
	ctx := context.Background()
	alice := createUser(t, db, "alice", false)
	carol := createUser(t, db, "carol", true)

	_, err := svc.Follow(ctx, alice.ID, carol.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Accept(ctx, carol.ID, alice.ID))

	// Request resolved into an edge.
	assert.Zero(t, countRows(t, db, &models.FollowRequest{}, "requester_id = ?", alice.ID))
	assert.Equal(t, int64(1), countRows(t, db, &models.Follow{},
		"follower_id = ? AND following_id = ?", alice.ID, carol.ID))

	// The request notification is gone; the requester learned of the accept.
	assert.Zero(t, countRows(t, db, &models.Notification{},
		"user_id = ? AND type = ?", carol.ID, models.NotificationTypeFollowRequest))
	assert.Equal(t, int64(1), countRows(t, db, &models.Notification{},
		"user_id = ? AND type = ?", alice.ID, models.NotificationTypeFollowAccepted))

	var accepted models.Notification
	require.NoError(t, db.Where("user_id = ?", alice.ID).First(&accepted).Error)
	assert.Equal(t, "carol accepted your follow request", accepted.Message)

	// Accepting again reports not found.
	err = svc.Accept(ctx, carol.ID, alice.ID)
	assert.True(t, models.IsNotFound(err))
}

func TestFollowService_AcceptOnlyByAddressee(t *testing.T) {
	db, svc := newFollowFixture(t)
	ctx := context.Background()
	alice := createUser(t, db, "alice", false)
	carol := createUser(t, db, "carol", true)
	mallory := createUser(t, db, "mallory", false)

	_, err := svc.Follow(ctx, alice.ID, carol.ID)
	require.NoError(t, err)

	// A request addressed to carol does not exist from mallory's view.
	err = svc.Accept(ctx, mallory.ID, alice.ID)
	assert.True(t, models.IsNotFound(err))
	err = svc.Decline(ctx, mallory.ID, alice.ID)
	assert.True(t, models.IsNotFound(err))

	// The real request is untouched.
	assert.Equal(t, int64(1), countRows(t, db, &models.FollowRequest{},
		"requester_id = ? AND target_id = ?", alice.ID, carol.ID))
}

func TestFollowService_DeclineFlow(t *testing.T) {
	db, svc := newFollowFixture(t)
	ctx := context.Background()
	alice := createUser(t, db, "alice", false)
	carol := createUser(t, db, "carol", true)

	_, err := svc.Follow(ctx, alice.ID, carol.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Decline(ctx, carol.ID, alice.ID))

	// No edge, no request, no notifications on either side.
	assert.Zero(t, countRows(t, db, &models.Follow{}, "follower_id = ?", alice.ID))
	assert.Zero(t, countRows(t, db, &models.FollowRequest{}, "requester_id = ?", alice.ID))
	assert.Zero(t, countRows(t, db, &models.Notification{}, "user_id = ?", carol.ID))
	assert.Zero(t, countRows(t, db, &models.Notification{}, "user_id = ?", alice.ID))

	// The requester may ask again after a decline.
	status, err := svc.Follow(ctx, alice.ID, carol.ID)
	require.NoError(t, err)
	assert.True(t, status.IsPending)
}

func TestFollowService_CancelFlow(t *testing.T) {
	db, svc := newFollowFixture(t)
	ctx := context.Background()
	alice := createUser(t, db, "alice", false)
	carol := createUser(t, db, "carol", true)

	_, err := svc.Follow(ctx, alice.ID, carol.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(ctx, alice.ID, carol.ID))

	assert.Zero(t, countRows(t, db, &models.FollowRequest{}, "requester_id = ?", alice.ID))
	assert.Zero(t, countRows(t, db, &models.Notification{}, "user_id = ?", carol.ID))

	// Cancelling a request that no longer exists reports not found.
	err = svc.Cancel(ctx, alice.ID, carol.ID)
	assert.True(t, models.IsNotFound(err))
}

func TestFollowService_Unfollow(t *testing.T) {
	db, svc := newFollowFixture(t)
	ctx := context.Background()
	alice := createUser(t, db, "alice", false)
	bob := createUser(t, db, "bob", false)

	_, err := svc.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Unfollow(ctx, alice.ID, bob.ID))
	assert.Zero(t, countRows(t, db, &models.Follow{}, "follower_id = ?", alice.ID))

	// Unfollow without an edge reports not found.
	err = svc.Unfollow(ctx, alice.ID, bob.ID)
	assert.True(t, models.IsNotFound(err))
}

func TestFollowService_UnfollowLeavesPendingRequest(t *testing.T) {
	db, svc := newFollowFixture(t)
	ctx := context.Background()
	alice := createUser(t, db, "alice", false)
	carol := createUser(t, db, "carol", true)

	_, err := svc.Follow(ctx, alice.ID, carol.ID)
	require.NoError(t, err)

	// There is no edge to remove; the pending request must survive.
	err = svc.Unfollow(ctx, alice.ID, carol.ID)
	assert.True(t, models.IsNotFound(err))
	assert.Equal(t, int64(1), countRows(t, db, &models.FollowRequest{},
		"requester_id = ? AND target_id = ?", alice.ID, carol.ID))
}

func TestFollowService_AutoConvertOnFollow(t *testing.T) {
	db, svc := newFollowFixture(t)
	ctx := context.Background()
	alice := createUser(t, db, "alice", false)
	carol := createUser(t, db, "carol", true)

	_, err := svc.Follow(ctx, alice.ID, carol.ID)
	require.NoError(t, err)

	// Carol opens up her profile while the request is outstanding.
	require.NoError(t, db.Model(carol).Update("private_profile", false).Error)

	status, err := svc.Follow(ctx, alice.ID, carol.ID)
	require.NoError(t, err)
	assert.True(t, status.IsFollowing)
	assert.False(t, status.IsPending)

	// Request and its notification resolved away, edge in place.
	assert.Zero(t, countRows(t, db, &models.FollowRequest{}, "requester_id = ?", alice.ID))
	assert.Zero(t, countRows(t, db, &models.Notification{}, "user_id = ?", carol.ID))
	assert.Equal(t, int64(1), countRows(t, db, &models.Follow{},
		"follower_id = ? AND following_id = ?", alice.ID, carol.ID))
}

func TestFollowService_StatusAutoConverts(t *testing.T) {
	db, svc := newFollowFixture(t)
	ctx := context.Background()
	alice := createUser(t, db, "alice", false)
	carol := createUser(t, db, "carol", true)

	_, err := svc.Follow(ctx, alice.ID, carol.ID)
	require.NoError(t, err)

	// While carol is private, Status reports pending and changes nothing.
	status, err := svc.Status(ctx, alice.ID, carol.ID)
	require.NoError(t, err)
	assert.True(t, status.IsPending)
	assert.Equal(t, int64(1), countRows(t, db, &models.FollowRequest{},
		"requester_id = ?", alice.ID))

	require.NoError(t, db.Model(carol).Update("private_profile", false).Error)

	// Now the same read resolves the stale request into an edge.
	status, err = svc.Status(ctx, alice.ID, carol.ID)
	require.NoError(t, err)
	assert.True(t, status.IsFollowing)
	assert.Zero(t, countRows(t, db, &models.FollowRequest{}, "requester_id = ?", alice.ID))
	assert.Equal(t, int64(1), countRows(t, db, &models.Follow{},
		"follower_id = ? AND following_id = ?", alice.ID, carol.ID))
}

func TestFollowService_StatusNoRelationship(t *testing.T) {
	db, svc := newFollowFixture(t)
	alice := createUser(t, db, "alice", false)
	bob := createUser(t, db, "bob", false)

	status, err := svc.Status(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, status.IsFollowing)
	assert.False(t, status.IsPending)
}

func TestFollowService_FollowersAndFollowing(t *testing.T) {
	db, svc := newFollowFixture(t)
	ctx := context.Background()
	alice := createUser(t, db, "alice", false)
	bob := createUser(t, db, "bob", false)
	carol := createUser(t, db, "carol", false)

	_, err := svc.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.Follow(ctx, carol.ID, bob.ID)
	require.NoError(t, err)

	followers, err := svc.Followers(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, followers, 2)

	following, err := svc.Following(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "bob", following[0].Username)
}
