package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"forumyzer-go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&config.YouTubeConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(&config.YouTubeConfig{})
	require.Error(t, err)
}

func TestFetchCommentThreads(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/commentThreads", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "vid-1", r.URL.Query().Get("videoId"))
		assert.Equal(t, "25", r.URL.Query().Get("maxResults"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"items": [
				{
					"snippet": {
						"topLevelComment": {
							"id": "c1",
							"snippet": {
								"authorDisplayName": "alice",
								"textOriginal": "great video",
								"publishedAt": "2024-05-01T10:00:00Z",
								"likeCount": 12
							}
						}
					},
					"replies": {
						"comments": [
							{
								"id": "c1r1",
								"snippet": {
									"authorDisplayName": "bob",
									"textOriginal": "agreed",
									"publishedAt": "2024-05-01T10:05:00Z",
									"likeCount": 2
								}
							}
						]
					}
				}
			]
		}`))
	})

	threads, err := client.FetchCommentThreads(context.Background(), "vid-1", 25)
	require.NoError(t, err)

	require.Len(t, threads, 1)
	assert.Equal(t, "c1", threads[0].ID)
	assert.Equal(t, "alice", threads[0].Author)
	assert.Equal(t, int64(12), threads[0].LikeCount)
	require.Len(t, threads[0].Replies, 1)
	assert.Equal(t, "c1r1", threads[0].Replies[0].ID)
	assert.Equal(t, "agreed", threads[0].Replies[0].Text)
}

func TestFetchCommentThreadsAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": {"code": 403, "message": "comments are disabled"}}`))
	})

	_, err := client.FetchCommentThreads(context.Background(), "vid-1", 25)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "comments are disabled")
}

func TestCheckLive(t *testing.T) {
	t.Run("live video with chat", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/videos", r.URL.Path)
			_, _ = w.Write([]byte(`{
				"items": [
					{
						"snippet": {
							"title": "Launch Stream",
							"channelTitle": "Some Channel",
							"liveBroadcastContent": "live"
						},
						"liveStreamingDetails": {"activeLiveChatId": "chat-1"}
					}
				]
			}`))
		})

		status, err := client.CheckLive(context.Background(), "vid-1")
		require.NoError(t, err)

		assert.True(t, status.IsLive)
		assert.False(t, status.IsUpcoming)
		assert.Equal(t, "Launch Stream", status.VideoTitle)
		require.NotNil(t, status.LiveChatID)
		assert.Equal(t, "chat-1", *status.LiveChatID)
	})

	t.Run("upcoming stream", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{
				"items": [
					{
						"snippet": {"liveBroadcastContent": "upcoming"},
						"liveStreamingDetails": {"scheduledStartTime": "2026-09-01T18:00:00Z"}
					}
				]
			}`))
		})

		status, err := client.CheckLive(context.Background(), "vid-2")
		require.NoError(t, err)

		assert.False(t, status.IsLive)
		assert.True(t, status.IsUpcoming)
		require.NotNil(t, status.ScheduledStartTime)
		assert.Equal(t, "2026-09-01T18:00:00Z", *status.ScheduledStartTime)
	})

	t.Run("unknown video", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"items": []}`))
		})

		status, err := client.CheckLive(context.Background(), "vid-3")
		require.NoError(t, err)
		assert.False(t, status.IsLive)
		assert.Nil(t, status.LiveChatID)
	})
}

func TestFetchChatPage(t *testing.T) {
	t.Run("maps messages and cursor", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/liveChat/messages", r.URL.Path)
			assert.Equal(t, "chat-1", r.URL.Query().Get("liveChatId"))
			assert.Equal(t, "tok-0", r.URL.Query().Get("pageToken"))

			_, _ = w.Write([]byte(`{
				"items": [
					{
						"id": "m1",
						"snippet": {
							"displayMessage": "hello",
							"publishedAt": "2024-05-01T10:00:00Z",
							"type": "textMessageEvent"
						},
						"authorDetails": {
							"displayName": "alice",
							"isChatModerator": true
						}
					}
				],
				"nextPageToken": "tok-1",
				"pollingIntervalMillis": 7000
			}`))
		})

		token := "tok-0"
		page, err := client.FetchChatPage(context.Background(), "chat-1", &token)
		require.NoError(t, err)

		require.Len(t, page.Messages, 1)
		assert.Equal(t, "m1", page.Messages[0].ID)
		assert.Equal(t, "alice", page.Messages[0].Author)
		assert.True(t, page.Messages[0].IsChatModerator)
		assert.Equal(t, "tok-1", page.NextPageToken)
		assert.Equal(t, 7000, page.PollingIntervalMillis)
		assert.Nil(t, page.OfflineAt)
	})

	t.Run("defaults polling interval", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.URL.Query().Get("pageToken"))
			_, _ = w.Write([]byte(`{"items": []}`))
		})

		page, err := client.FetchChatPage(context.Background(), "chat-1", nil)
		require.NoError(t, err)
		assert.Equal(t, 5000, page.PollingIntervalMillis)
	})

	t.Run("reports offline stream", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"items": [], "offlineAt": "2024-05-01T12:00:00Z"}`))
		})

		page, err := client.FetchChatPage(context.Background(), "chat-1", nil)
		require.NoError(t, err)
		require.NotNil(t, page.OfflineAt)
		assert.Equal(t, "2024-05-01T12:00:00Z", *page.OfflineAt)
	})
}
