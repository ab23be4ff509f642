package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"forumyzer-go/internal/config"
	"forumyzer-go/internal/model"
	"forumyzer-go/pkg/logger"

	"go.uber.org/zap"
)

const defaultBaseURL = "https://www.googleapis.com/youtube/v3"

// chatPageSize 单次拉取的直播聊天消息上限
const chatPageSize = 200

// Client YouTube Data API v3 客户端
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient 创建 YouTube 客户端
// 评论抓取没有备用数据源，缺少 API Key 视为致命配置错误
func NewClient(cfg *config.YouTubeConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("youtube api key is not configured")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: cfg.TimeoutDuration(),
		},
	}, nil
}

// LiveStatus 视频直播状态
type LiveStatus struct {
	IsLive             bool    `json:"isLive"`
	LiveChatID         *string `json:"liveChatId"`
	VideoTitle         string  `json:"videoTitle"`
	ChannelTitle       string  `json:"channelTitle"`
	IsUpcoming         bool    `json:"isUpcoming"`
	ScheduledStartTime *string `json:"scheduledStartTime"`
}

// ChatMessage 一条直播聊天消息
type ChatMessage struct {
	ID              string `json:"id"`
	Author          string `json:"author"`
	Text            string `json:"text"`
	PublishedAt     string `json:"publishedAt"`
	Type            string `json:"type"`
	IsChatOwner     bool   `json:"isChatOwner"`
	IsChatModerator bool   `json:"isChatModerator"`
	IsChatSponsor   bool   `json:"isChatSponsor"`
	ProfileImageURL string `json:"profileImageUrl"`
}

// ChatPage 一页直播聊天消息
type ChatPage struct {
	Messages              []ChatMessage `json:"messages"`
	NextPageToken         string        `json:"nextPageToken"`
	PollingIntervalMillis int           `json:"pollingIntervalMillis"`
	OfflineAt             *string       `json:"offlineAt"`
}

// commentThreadsResponse commentThreads 接口响应
type commentThreadsResponse struct {
	Items []struct {
		Snippet struct {
			TopLevelComment struct {
				ID      string         `json:"id"`
				Snippet commentSnippet `json:"snippet"`
			} `json:"topLevelComment"`
		} `json:"snippet"`
		Replies struct {
			Comments []struct {
				ID      string         `json:"id"`
				Snippet commentSnippet `json:"snippet"`
			} `json:"comments"`
		} `json:"replies"`
	} `json:"items"`
}

type commentSnippet struct {
	AuthorDisplayName string `json:"authorDisplayName"`
	TextOriginal      string `json:"textOriginal"`
	PublishedAt       string `json:"publishedAt"`
	LikeCount         int64  `json:"likeCount"`
}

// FetchCommentThreads 拉取视频的顶层评论及其回复
func (c *Client) FetchCommentThreads(ctx context.Context, videoID string, maxResults int) ([]model.Comment, error) {
	params := url.Values{}
	params.Set("part", "snippet,replies")
	params.Set("videoId", videoID)
	params.Set("maxResults", strconv.Itoa(maxResults))

	var resp commentThreadsResponse
	if err := c.get(ctx, "/commentThreads", params, &resp); err != nil {
		return nil, fmt.Errorf("fetch comment threads: %w", err)
	}

	threads := make([]model.Comment, 0, len(resp.Items))
	for _, item := range resp.Items {
		top := item.Snippet.TopLevelComment
		comment := model.Comment{
			ID:          top.ID,
			Author:      top.Snippet.AuthorDisplayName,
			Text:        top.Snippet.TextOriginal,
			PublishedAt: top.Snippet.PublishedAt,
			LikeCount:   top.Snippet.LikeCount,
			Replies:     []model.Comment{},
		}
		for _, reply := range item.Replies.Comments {
			comment.Replies = append(comment.Replies, model.Comment{
				ID:          reply.ID,
				Author:      reply.Snippet.AuthorDisplayName,
				Text:        reply.Snippet.TextOriginal,
				PublishedAt: reply.Snippet.PublishedAt,
				LikeCount:   reply.Snippet.LikeCount,
				Replies:     []model.Comment{},
			})
		}
		threads = append(threads, comment)
	}

	logger.Debug("Fetched comment threads",
		zap.String("video_id", videoID),
		zap.Int("count", len(threads)),
	)

	return threads, nil
}

// videosResponse videos 接口响应（liveStreamingDetails 部分）
type videosResponse struct {
	Items []struct {
		Snippet struct {
			Title                string `json:"title"`
			ChannelTitle         string `json:"channelTitle"`
			LiveBroadcastContent string `json:"liveBroadcastContent"`
		} `json:"snippet"`
		LiveStreamingDetails struct {
			ActiveLiveChatID   string `json:"activeLiveChatId"`
			ScheduledStartTime string `json:"scheduledStartTime"`
		} `json:"liveStreamingDetails"`
	} `json:"items"`
}

// CheckLive 查询视频当前是否在直播
func (c *Client) CheckLive(ctx context.Context, videoID string) (*LiveStatus, error) {
	params := url.Values{}
	params.Set("part", "liveStreamingDetails,snippet")
	params.Set("id", videoID)

	var resp videosResponse
	if err := c.get(ctx, "/videos", params, &resp); err != nil {
		return nil, fmt.Errorf("check live status: %w", err)
	}

	if len(resp.Items) == 0 {
		return &LiveStatus{IsLive: false}, nil
	}

	video := resp.Items[0]
	status := &LiveStatus{
		IsLive:       video.Snippet.LiveBroadcastContent == "live",
		VideoTitle:   video.Snippet.Title,
		ChannelTitle: video.Snippet.ChannelTitle,
		IsUpcoming:   video.Snippet.LiveBroadcastContent == "upcoming",
	}
	if video.LiveStreamingDetails.ActiveLiveChatID != "" {
		chatID := video.LiveStreamingDetails.ActiveLiveChatID
		status.LiveChatID = &chatID
	}
	if video.LiveStreamingDetails.ScheduledStartTime != "" {
		start := video.LiveStreamingDetails.ScheduledStartTime
		status.ScheduledStartTime = &start
	}

	return status, nil
}

// liveChatResponse liveChat/messages 接口响应
type liveChatResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			DisplayMessage     string `json:"displayMessage"`
			PublishedAt        string `json:"publishedAt"`
			Type               string `json:"type"`
			TextMessageDetails struct {
				MessageText string `json:"messageText"`
			} `json:"textMessageDetails"`
		} `json:"snippet"`
		AuthorDetails struct {
			DisplayName     string `json:"displayName"`
			IsChatOwner     bool   `json:"isChatOwner"`
			IsChatModerator bool   `json:"isChatModerator"`
			IsChatSponsor   bool   `json:"isChatSponsor"`
			ProfileImageURL string `json:"profileImageUrl"`
		} `json:"authorDetails"`
	} `json:"items"`
	NextPageToken         string `json:"nextPageToken"`
	PollingIntervalMillis int    `json:"pollingIntervalMillis"`
	OfflineAt             string `json:"offlineAt"`
}

// FetchChatPage 拉取一页直播聊天消息，pageToken 为 nil 时从最新位置开始
func (c *Client) FetchChatPage(ctx context.Context, liveChatID string, pageToken *string) (*ChatPage, error) {
	params := url.Values{}
	params.Set("liveChatId", liveChatID)
	params.Set("part", "snippet,authorDetails")
	params.Set("maxResults", strconv.Itoa(chatPageSize))
	if pageToken != nil && *pageToken != "" {
		params.Set("pageToken", *pageToken)
	}

	var resp liveChatResponse
	if err := c.get(ctx, "/liveChat/messages", params, &resp); err != nil {
		return nil, fmt.Errorf("fetch live chat messages: %w", err)
	}

	page := &ChatPage{
		Messages:              make([]ChatMessage, 0, len(resp.Items)),
		NextPageToken:         resp.NextPageToken,
		PollingIntervalMillis: resp.PollingIntervalMillis,
	}
	if page.PollingIntervalMillis <= 0 {
		page.PollingIntervalMillis = 5000
	}
	if resp.OfflineAt != "" {
		offline := resp.OfflineAt
		page.OfflineAt = &offline
	}

	for _, item := range resp.Items {
		text := item.Snippet.DisplayMessage
		if text == "" {
			text = item.Snippet.TextMessageDetails.MessageText
		}
		page.Messages = append(page.Messages, ChatMessage{
			ID:              item.ID,
			Author:          item.AuthorDetails.DisplayName,
			Text:            text,
			PublishedAt:     item.Snippet.PublishedAt,
			Type:            item.Snippet.Type,
			IsChatOwner:     item.AuthorDetails.IsChatOwner,
			IsChatModerator: item.AuthorDetails.IsChatModerator,
			IsChatSponsor:   item.AuthorDetails.IsChatSponsor,
			ProfileImageURL: item.AuthorDetails.ProfileImageURL,
		})
	}

	return page, nil
}

// get 发起 GET 请求并解析 JSON 响应
func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	params.Set("key", c.apiKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("youtube api error %d: %s", apiErr.Error.Code, apiErr.Error.Message)
		}
		return fmt.Errorf("youtube api returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
