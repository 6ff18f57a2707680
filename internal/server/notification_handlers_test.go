package server

import (
	"fmt"
	"net/http"
	"testing"

	"ripple/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationEndpoints(t *testing.T) {
	_, app, db := newTestServer(t)
	alice := createTestUser(t, db, "alice", false)
	bob := createTestUser(t, db, "bob", false)
	carol := createTestUser(t, db, "carol", true)
	carolToken := tokenFor(t, carol.ID)

	// Two pending requests land in carol's inbox.
	for _, requester := range []*models.User{alice, bob} {
		resp := doRequest(t, app, http.MethodPost,
			fmt.Sprintf("/api/follow/%d", carol.ID), tokenFor(t, requester.ID))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	}

	t.Run("list", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodGet, "/api/notifications/", carolToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		notifications := decodeBody[[]models.Notification](t, resp)
		assert.Len(t, notifications, 2)
	})

	t.Run("unread count", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodGet, "/api/notifications/unread-count", carolToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody[map[string]int64](t, resp)
		assert.Equal(t, int64(2), body["count"])
	})

	t.Run("mark all read", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodPut, "/api/notifications/mark-all-read", carolToken)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()

		resp = doRequest(t, app, http.MethodGet, "/api/notifications/unread-count", carolToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody[map[string]int64](t, resp)
		assert.Equal(t, int64(0), body["count"])
	})

	t.Run("read state does not resolve the request", func(t *testing.T) {
		// The requests are still pending; marking notifications read is
		// presentation only.
		resp := doRequest(t, app, http.MethodGet,
			fmt.Sprintf("/api/follow/status/%d", carol.ID), tokenFor(t, alice.ID))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		status := decodeBody[models.FollowStatus](t, resp)
		assert.True(t, status.IsPending)
	})

	t.Run("other users see an empty inbox", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodGet, "/api/notifications/", tokenFor(t, alice.ID))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		notifications := decodeBody[[]models.Notification](t, resp)
		assert.Empty(t, notifications)
	})
}
