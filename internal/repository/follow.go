// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ripple/internal/models"

	"gorm.io/gorm"
)

// FollowRepository defines data operations for follow edges, follow
// requests and their paired notifications. Every state transition that
// touches more than one table runs inside a single transaction so a
// reader never observes an edge coexisting with a pending request, or a
// request notification without its backing request.
type FollowRepository interface {
	GetEdge(ctx context.Context, followerID, followingID uint) (*models.Follow, error)
	// CreateEdge inserts the edge. A duplicate insert (lost race or
	// repeated call) reports created=false with no error.
	CreateEdge(ctx context.Context, followerID, followingID uint) (created bool, err error)
	DeleteEdge(ctx context.Context, followerID, followingID uint) error
	GetFollowers(ctx context.Context, userID uint) ([]models.UserSummary, error)
	GetFollowing(ctx context.Context, userID uint) ([]models.UserSummary, error)
	GetFollowingIDs(ctx context.Context, userID uint) ([]uint, error)
	IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error)

	GetPendingRequest(ctx context.Context, requesterID, targetID uint) (*models.FollowRequest, error)
	// CreateRequest inserts the pending request together with the
	// FollowRequest notification addressed to the target. A duplicate
	// pending request reports created=false with no error.
	CreateRequest(ctx context.Context, requester *models.User, targetID uint) (created bool, err error)
	// ConvertRequestToEdge resolves a stale pending request whose target
	// has become public: deletes the request and its notification and
	// creates the edge.
	ConvertRequestToEdge(ctx context.Context, request *models.FollowRequest) error
	// AcceptRequest converts the pending request into an edge, removes
	// the FollowRequest notification addressed to the target and creates
	// a FollowAccepted notification addressed to the requester.
	AcceptRequest(ctx context.Context, request *models.FollowRequest, accepter *models.User) error
	// DeleteRequest removes the pending request and its notification.
	// Used by both decline (target) and cancel (requester).
	DeleteRequest(ctx context.Context, request *models.FollowRequest) error
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) GetEdge(ctx context.Context, followerID, followingID uint) (*models.Follow, error) {
	var edge models.Follow
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		First(&edge).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // no edge
		}
		return nil, models.NewInternalError(err)
	}
	return &edge, nil
}

func (r *followRepository) CreateEdge(ctx context.Context, followerID, followingID uint) (bool, error) {
	edge := &models.Follow{FollowerID: followerID, FollowingID: followingID}
	if err := r.db.WithContext(ctx).Create(edge).Error; err != nil {
		if isDuplicateKey(err) {
			return false, nil
		}
		return false, models.NewInternalError(err)
	}
	return true, nil
}

func (r *followRepository) DeleteEdge(ctx context.Context, followerID, followingID uint) error {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Follow", followingID)
	}
	return nil
}

func (r *followRepository) GetFollowers(ctx context.Context, userID uint) ([]models.UserSummary, error) {
	var followers []models.UserSummary
	// created_at is the edge creation time, not the account creation time.
	if err := r.db.WithContext(ctx).
		Table("users").
		Select("users.id, users.username, users.avatar, follows.created_at").
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.following_id = ?", userID).
		Scan(&followers).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return followers, nil
}

func (r *followRepository) GetFollowing(ctx context.Context, userID uint) ([]models.UserSummary, error) {
	var following []models.UserSummary
	if err := r.db.WithContext(ctx).
		Table("users").
		Select("users.id, users.username, users.avatar, follows.created_at").
		Joins("JOIN follows ON follows.following_id = users.id").
		Where("follows.follower_id = ?", userID).
		Scan(&following).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return following, nil
}

func (r *followRepository) GetFollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("following_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *followRepository) GetPendingRequest(ctx context.Context, requesterID, targetID uint) (*models.FollowRequest, error) {
	var request models.FollowRequest
	err := r.db.WithContext(ctx).
		Where("requester_id = ? AND target_id = ? AND status = ?",
			requesterID, targetID, models.FollowRequestStatusPending).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // no pending request
		}
		return nil, models.NewInternalError(err)
	}
	return &request, nil
}

func (r *followRepository) CreateRequest(ctx context.Context, requester *models.User, targetID uint) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		request := &models.FollowRequest{
			RequesterID: requester.ID,
			TargetID:    targetID,
			Status:      models.FollowRequestStatusPending,
		}
		if err := tx.Create(request).Error; err != nil {
			if isDuplicateKey(err) {
				return nil // request already pending; keep created=false
			}
			return err
		}
		created = true

		notification := &models.Notification{
			UserID:    targetID,
			Type:      models.NotificationTypeFollowRequest,
			RelatedID: requester.ID,
			Message:   fmt.Sprintf("%s sent you a follow request", requester.Username),
		}
		return tx.Create(notification).Error
	})
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return created, nil
}

func (r *followRepository) ConvertRequestToEdge(ctx context.Context, request *models.FollowRequest) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteRequestRow(tx, request); err != nil {
			return err
		}
		if err := deleteRequestNotification(tx, request); err != nil {
			return err
		}
		edge := &models.Follow{FollowerID: request.RequesterID, FollowingID: request.TargetID}
		if err := tx.Create(edge).Error; err != nil && !isDuplicateKey(err) {
			return err
		}
		return nil
	})
	return requestTxError(err)
}

func (r *followRepository) AcceptRequest(ctx context.Context, request *models.FollowRequest, accepter *models.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteRequestRow(tx, request); err != nil {
			return err
		}
		edge := &models.Follow{FollowerID: request.RequesterID, FollowingID: request.TargetID}
		if err := tx.Create(edge).Error; err != nil && !isDuplicateKey(err) {
			return err
		}
		if err := deleteRequestNotification(tx, request); err != nil {
			return err
		}
		notification := &models.Notification{
			UserID:    request.RequesterID,
			Type:      models.NotificationTypeFollowAccepted,
			RelatedID: accepter.ID,
			Message:   fmt.Sprintf("%s accepted your follow request", accepter.Username),
		}
		return tx.Create(notification).Error
	})
	return requestTxError(err)
}

func (r *followRepository) DeleteRequest(ctx context.Context, request *models.FollowRequest) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteRequestRow(tx, request); err != nil {
			return err
		}
		return deleteRequestNotification(tx, request)
	})
	return requestTxError(err)
}

// deleteRequestRow removes the pending request row, reporting NotFound
// when a concurrent cancel or decline already resolved it. Callers roll
// the whole transition back in that case.
func deleteRequestRow(tx *gorm.DB, request *models.FollowRequest) error {
	res := tx.Delete(&models.FollowRequest{}, request.ID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("FollowRequest", request.ID)
	}
	return nil
}

// requestTxError keeps NotFound from deleteRequestRow intact and wraps
// everything else as a persistence failure.
func requestTxError(err error) error {
	if err == nil {
		return nil
	}
	if models.IsNotFound(err) {
		return err
	}
	return models.NewInternalError(err)
}

// deleteRequestNotification removes the FollowRequest notification that
// was addressed to the target when the request was created.
func deleteRequestNotification(tx *gorm.DB, request *models.FollowRequest) error {
	return tx.
		Where("type = ? AND user_id = ? AND related_id = ?",
			models.NotificationTypeFollowRequest, request.TargetID, request.RequesterID).
		Delete(&models.Notification{}).Error
}

// isDuplicateKey reports whether err is a unique constraint violation.
// GORM's TranslateError covers postgres; the message check covers the
// sqlite driver used in tests.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
