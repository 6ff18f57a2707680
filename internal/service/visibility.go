package service

// CanView is the single post visibility rule used across feed, profile
// and post detail: a post is visible when it is public, when the viewer
// is its author, or when the viewer follows the author. A nil viewerID
// means an unauthenticated request, which sees only public posts.
// Pending follow requests grant nothing.
func CanView(viewerID *uint, authorID uint, isPublic, viewerFollowsAuthor bool) bool {
	if isPublic {
		return true
	}
	if viewerID == nil {
		return false
	}
	if *viewerID == authorID {
		return true
	}
	return viewerFollowsAuthor
}
