// Package service contains the business logic layers of the application.
package service

import (
	"context"

	"ripple/internal/middleware"
	"ripple/internal/models"
	"ripple/internal/repository"
)

// FollowService is the relationship engine: the state machine per
// ordered (follower, target) pair with states none, pending and
// following. Every transition keeps follow edges, pending requests and
// their notifications consistent by delegating the multi-row writes to
// single FollowRepository transactions.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

// NewFollowService returns a new FollowService.
func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
	}
}

// Follow asks to follow the target account. Public targets are followed
// directly; private targets get a pending request plus a notification.
// A pending request whose target has become public since is converted
// into an edge. Repeated calls are idempotent and report the current
// state rather than an error.
func (s *FollowService) Follow(ctx context.Context, userID, targetID uint) (models.FollowStatus, error) {
	if userID == targetID {
		return models.FollowStatus{}, models.NewValidationError("You cannot follow yourself")
	}

	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return models.FollowStatus{}, err
	}

	// Edge existence is checked before request existence; an edge always
	// wins over a stale pending request.
	following, err := s.followRepo.IsFollowing(ctx, userID, targetID)
	if err != nil {
		return models.FollowStatus{}, err
	}
	if following {
		middleware.FollowTransitions.WithLabelValues("noop").Inc()
		return models.FollowStatus{IsFollowing: true}, nil
	}

	pending, err := s.followRepo.GetPendingRequest(ctx, userID, targetID)
	if err != nil {
		return models.FollowStatus{}, err
	}

	// The profile flipped to public while a request was outstanding:
	// resolve the request into an edge. A concurrent cancel may have
	// removed the request already; the direct path below still applies.
	if pending != nil && !target.PrivateProfile {
		err := s.followRepo.ConvertRequestToEdge(ctx, pending)
		if err == nil {
			middleware.FollowTransitions.WithLabelValues("auto_converted").Inc()
			return models.FollowStatus{IsFollowing: true}, nil
		}
		if !models.IsNotFound(err) {
			return models.FollowStatus{}, err
		}
	}

	if target.PrivateProfile {
		if pending != nil {
			middleware.FollowTransitions.WithLabelValues("noop").Inc()
			return models.FollowStatus{IsPending: true}, nil
		}

		requester, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return models.FollowStatus{}, err
		}
		created, err := s.followRepo.CreateRequest(ctx, requester, targetID)
		if err != nil {
			return models.FollowStatus{}, err
		}
		if created {
			middleware.FollowTransitions.WithLabelValues("requested").Inc()
			middleware.NotificationsCreated.WithLabelValues(string(models.NotificationTypeFollowRequest)).Inc()
		}
		return models.FollowStatus{IsPending: true}, nil
	}

	// Public target: create the edge directly. A racing duplicate insert
	// resolves to the same final state.
	if _, err := s.followRepo.CreateEdge(ctx, userID, targetID); err != nil {
		return models.FollowStatus{}, err
	}
	middleware.FollowTransitions.WithLabelValues("followed").Inc()
	return models.FollowStatus{IsFollowing: true}, nil
}

// Unfollow removes the follow edge. Pending requests are untouched.
func (s *FollowService) Unfollow(ctx context.Context, userID, targetID uint) error {
	if err := s.followRepo.DeleteEdge(ctx, userID, targetID); err != nil {
		return err
	}
	middleware.FollowTransitions.WithLabelValues("unfollowed").Inc()
	return nil
}

// Accept resolves a pending request addressed to the caller: the request
// becomes an edge, the request notification disappears and the requester
// is notified of the acceptance. A request not addressed to the caller
// is reported as not found, never as a permission error.
func (s *FollowService) Accept(ctx context.Context, targetID, requesterID uint) error {
	request, err := s.followRepo.GetPendingRequest(ctx, requesterID, targetID)
	if err != nil {
		return err
	}
	if request == nil {
		return models.NewNotFoundError("Follow request", requesterID)
	}

	accepter, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}

	if err := s.followRepo.AcceptRequest(ctx, request, accepter); err != nil {
		return err
	}
	middleware.FollowTransitions.WithLabelValues("accepted").Inc()
	middleware.NotificationsCreated.WithLabelValues(string(models.NotificationTypeFollowAccepted)).Inc()
	return nil
}

// Decline removes a pending request addressed to the caller along with
// its notification. No edge is created.
func (s *FollowService) Decline(ctx context.Context, targetID, requesterID uint) error {
	request, err := s.followRepo.GetPendingRequest(ctx, requesterID, targetID)
	if err != nil {
		return err
	}
	if request == nil {
		return models.NewNotFoundError("Follow request", requesterID)
	}

	if err := s.followRepo.DeleteRequest(ctx, request); err != nil {
		return err
	}
	middleware.FollowTransitions.WithLabelValues("declined").Inc()
	return nil
}

// Cancel removes a pending request the caller sent, along with the
// notification it placed on the target. Symmetric to Decline but invoked
// by the requester.
func (s *FollowService) Cancel(ctx context.Context, requesterID, targetID uint) error {
	request, err := s.followRepo.GetPendingRequest(ctx, requesterID, targetID)
	if err != nil {
		return err
	}
	if request == nil {
		return models.NewNotFoundError("Follow request", targetID)
	}

	if err := s.followRepo.DeleteRequest(ctx, request); err != nil {
		return err
	}
	middleware.FollowTransitions.WithLabelValues("cancelled").Inc()
	return nil
}

// Status reports the relationship state for the (caller, target) pair.
//
// NOTE: this is a deliberately side-effecting query. If a pending
// request exists and the target's profile has since become public, the
// request is resolved into an edge right here, exactly as Follow would
// do. Callers must not assume Status is pure.
func (s *FollowService) Status(ctx context.Context, userID, targetID uint) (models.FollowStatus, error) {
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return models.FollowStatus{}, err
	}

	following, err := s.followRepo.IsFollowing(ctx, userID, targetID)
	if err != nil {
		return models.FollowStatus{}, err
	}
	if following {
		return models.FollowStatus{IsFollowing: true}, nil
	}

	pending, err := s.followRepo.GetPendingRequest(ctx, userID, targetID)
	if err != nil {
		return models.FollowStatus{}, err
	}
	if pending == nil {
		return models.FollowStatus{}, nil
	}

	if !target.PrivateProfile {
		err := s.followRepo.ConvertRequestToEdge(ctx, pending)
		if models.IsNotFound(err) {
			// A concurrent cancel resolved the request first.
			return models.FollowStatus{}, nil
		}
		if err != nil {
			return models.FollowStatus{}, err
		}
		middleware.FollowTransitions.WithLabelValues("auto_converted").Inc()
		return models.FollowStatus{IsFollowing: true}, nil
	}

	return models.FollowStatus{IsPending: true}, nil
}

// Followers lists the accounts following the user.
func (s *FollowService) Followers(ctx context.Context, userID uint) ([]models.UserSummary, error) {
	return s.followRepo.GetFollowers(ctx, userID)
}

// Following lists the accounts the user follows.
func (s *FollowService) Following(ctx context.Context, userID uint) ([]models.UserSummary, error) {
	return s.followRepo.GetFollowing(ctx, userID)
}
