package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"forumyzer-go/internal/model"
	"forumyzer-go/pkg/logger"

	"go.uber.org/zap"
)

// ESBoardDoc ES 留言板文档结构
// 只存可检索的元数据，评论树本体留在 Postgres
type ESBoardDoc struct {
	ID              string  `json:"id"`
	VideoID         string  `json:"video_id"`
	VideoTitle      string  `json:"video_title"`
	VideoChannel    string  `json:"video_channel"`
	IsLive          bool    `json:"is_live"`
	IsPublic        bool    `json:"is_public"`
	UserID          string  `json:"user_id,omitempty"`
	MessageCount    int     `json:"message_count"`
	TotalComments   int     `json:"total_comments"`
	RemovedComments int     `json:"removed_comments"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
	EndedAt         *string `json:"ended_at,omitempty"`
}

func boardToESDoc(b *model.MessageBoard) *ESBoardDoc {
	doc := &ESBoardDoc{
		ID:              b.ID,
		VideoID:         b.VideoID,
		VideoTitle:      b.VideoTitle,
		VideoChannel:    b.VideoChannel,
		IsLive:          b.IsLive,
		IsPublic:        b.IsPublic,
		MessageCount:    b.MessageCount,
		TotalComments:   b.Stats.TotalComments,
		RemovedComments: b.Stats.RemovedComments,
		CreatedAt:       b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       b.UpdatedAt.Format(time.RFC3339),
	}
	if b.UserID != nil {
		doc.UserID = *b.UserID
	}
	if b.EndedAt != nil {
		ended := b.EndedAt.Format(time.RFC3339)
		doc.EndedAt = &ended
	}
	return doc
}

// SyncBoard 同步单个留言板到 ES
func SyncBoard(ctx context.Context, b *model.MessageBoard) error {
	doc := boardToESDoc(b)
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	resp, err := Index(ctx, boardsIndexName(), b.ID, bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return fmt.Errorf("index document failed: %s", resp.String())
	}

	logger.Debug("Board synced to ES", zap.String("board_id", b.ID))
	return nil
}

// DeleteBoard 从 ES 删除留言板
func DeleteBoard(ctx context.Context, boardID string) error {
	resp, err := Delete(ctx, boardsIndexName(), boardID)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.IsError() && resp.StatusCode != 404 {
		return fmt.Errorf("delete document failed: %s", resp.String())
	}
	return nil
}

// BulkSyncBoards 批量同步留言板到 ES
func BulkSyncBoards(ctx context.Context, boards []model.MessageBoard) (success, failed int, err error) {
	indexName := boardsIndexName()

	var buf strings.Builder
	for i := range boards {
		doc := boardToESDoc(&boards[i])
		docBody, _ := json.Marshal(doc)

		buf.WriteString(fmt.Sprintf(`{"index":{"_index":"%s","_id":"%s"}}`, indexName, doc.ID))
		buf.WriteString("\n")
		buf.Write(docBody)
		buf.WriteString("\n")
	}

	if buf.Len() == 0 {
		return 0, 0, nil
	}

	resp, err := Bulk(ctx, strings.NewReader(buf.String()))
	if err != nil {
		return 0, len(boards), err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return 0, len(boards), fmt.Errorf("bulk failed: %s", resp.String())
	}

	var bulkResp struct {
		Errors bool `json:"errors"`
		Items  []struct {
			Index struct {
				Status int `json:"status"`
			} `json:"index"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&bulkResp); err != nil {
		return len(boards), 0, nil
	}

	for _, item := range bulkResp.Items {
		if item.Index.Status >= 200 && item.Index.Status < 300 {
			success++
		} else {
			failed++
		}
	}

	logger.Info("Bulk sync to ES completed", zap.Int("success", success), zap.Int("failed", failed))
	return success, failed, nil
}
