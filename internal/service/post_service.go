package service

import (
	"context"
	"strings"

	"ripple/internal/models"
	"ripple/internal/repository"
)

type PostService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	followRepo  repository.FollowRepository
	userRepo    repository.UserRepository
}

type CreatePostInput struct {
	UserID   uint
	Content  string
	ImageURL string
	IsPublic bool
}

type UpdatePostInput struct {
	UserID   uint
	PostID   uint
	Content  string
	ImageURL string
	IsPublic bool
}

func NewPostService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		followRepo:  followRepo,
		userRepo:    userRepo,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	const maxContentLen = 5000

	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 5000 characters)")
	}

	post := &models.Post{
		UserID:   in.UserID,
		Content:  in.Content,
		ImageURL: in.ImageURL,
		IsPublic: in.IsPublic,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

// GetPost returns a single post if the viewer may see it. Hidden posts
// are reported as not found so their existence does not leak.
func (s *PostService) GetPost(ctx context.Context, postID uint, viewerID *uint) (*models.Post, error) {
	var currentUserID uint
	if viewerID != nil {
		currentUserID = *viewerID
	}
	post, err := s.postRepo.GetByID(ctx, postID, currentUserID)
	if err != nil {
		return nil, err
	}

	viewerFollows := false
	if viewerID != nil && *viewerID != post.UserID {
		viewerFollows, err = s.followRepo.IsFollowing(ctx, *viewerID, post.UserID)
		if err != nil {
			return nil, err
		}
	}
	if !CanView(viewerID, post.UserID, post.IsPublic, viewerFollows) {
		return nil, models.NewNotFoundError("Post", postID)
	}
	return post, nil
}

// Feed returns the viewer's home timeline: all public posts plus the
// private posts of followed authors and the viewer's own. Visibility is
// enforced inside the query, not by post-filtering a page.
func (s *PostService) Feed(ctx context.Context, viewerID uint, limit, offset int) ([]*models.Post, error) {
	followingIDs, err := s.followRepo.GetFollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	return s.postRepo.Feed(ctx, viewerID, followingIDs, limit, offset)
}

// PostsByUser lists one author's posts, filtered down to public ones
// unless the viewer is the author or follows them.
func (s *PostService) PostsByUser(ctx context.Context, authorID uint, viewerID *uint, limit, offset int) ([]*models.Post, error) {
	if _, err := s.userRepo.GetByID(ctx, authorID); err != nil {
		return nil, err
	}

	var currentUserID uint
	viewerFollows := false
	if viewerID != nil {
		currentUserID = *viewerID
		if *viewerID != authorID {
			var err error
			viewerFollows, err = s.followRepo.IsFollowing(ctx, *viewerID, authorID)
			if err != nil {
				return nil, err
			}
		}
	}
	return s.postRepo.GetByUserID(ctx, authorID, currentUserID, viewerID != nil && (currentUserID == authorID || viewerFollows), limit, offset)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}
	if post.UserID != in.UserID {
		return nil, models.NewUnauthorizedError("You can only edit your own posts")
	}

	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}

	post.Content = in.Content
	post.ImageURL = in.ImageURL
	post.IsPublic = in.IsPublic
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewUnauthorizedError("You can only delete your own posts")
	}
	return s.postRepo.Delete(ctx, postID)
}

// LikePost records a like. Liking an already liked post is a no-op.
// The post must be visible to the liker.
func (s *PostService) LikePost(ctx context.Context, userID, postID uint) error {
	viewer := userID
	if _, err := s.GetPost(ctx, postID, &viewer); err != nil {
		return err
	}
	return s.postRepo.Like(ctx, userID, postID)
}

func (s *PostService) UnlikePost(ctx context.Context, userID, postID uint) error {
	return s.postRepo.Unlike(ctx, userID, postID)
}

func (s *PostService) AddComment(ctx context.Context, userID, postID uint, content string) (*models.Comment, error) {
	const maxCommentLen = 2000

	if strings.TrimSpace(content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 2000 characters)")
	}

	viewer := userID
	if _, err := s.GetPost(ctx, postID, &viewer); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		UserID:  userID,
		PostID:  postID,
		Content: content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *PostService) Comments(ctx context.Context, postID uint, viewerID *uint, limit, offset int) ([]models.Comment, error) {
	if _, err := s.GetPost(ctx, postID, viewerID); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByPostID(ctx, postID, limit, offset)
}
