package server

import (
	"github.com/gofiber/fiber/v2"
)

// FollowUser handles POST /api/follow/:targetId
//
// Follows a public account outright or files a pending request against a
// private one. Repeats report the current relationship state with 200
// instead of failing.
func (s *Server) FollowUser(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	targetID, err := s.parseID(c, "targetId")
	if err != nil {
		return nil
	}

	status, err := s.followService.Follow(ctx, userID, targetID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(status)
}

// UnfollowUser handles DELETE /api/follow/:targetId
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	targetID, err := s.parseID(c, "targetId")
	if err != nil {
		return nil
	}

	if err := s.followService.Unfollow(ctx, userID, targetID); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Unfollowed"})
}

// AcceptFollowRequest handles POST /api/follow/accept/:requesterId
func (s *Server) AcceptFollowRequest(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	requesterID, err := s.parseID(c, "requesterId")
	if err != nil {
		return nil
	}

	if err := s.followService.Accept(ctx, userID, requesterID); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Follow request accepted"})
}

// DeclineFollowRequest handles DELETE /api/follow/decline/:requesterId
func (s *Server) DeclineFollowRequest(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	requesterID, err := s.parseID(c, "requesterId")
	if err != nil {
		return nil
	}

	if err := s.followService.Decline(ctx, userID, requesterID); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Follow request declined"})
}

// CancelFollowRequest handles DELETE /api/follow/request/:targetId
func (s *Server) CancelFollowRequest(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	targetID, err := s.parseID(c, "targetId")
	if err != nil {
		return nil
	}

	if err := s.followService.Cancel(ctx, userID, targetID); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Follow request cancelled"})
}

// GetFollowStatus handles GET /api/follow/status/:targetId
func (s *Server) GetFollowStatus(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	targetID, err := s.parseID(c, "targetId")
	if err != nil {
		return nil
	}

	status, err := s.followService.Status(ctx, userID, targetID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(status)
}

// GetFollowers handles GET /api/follow/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	followers, err := s.followService.Followers(ctx, userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(followers)
}

// GetFollowing handles GET /api/follow/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	following, err := s.followService.Following(ctx, userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(following)
}
