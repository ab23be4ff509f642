package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"forumyzer-go/internal/api/dto"
	"forumyzer-go/internal/config"
	infraES "forumyzer-go/internal/infra/elasticsearch"
	"forumyzer-go/internal/model"
	"forumyzer-go/internal/repository"
	"forumyzer-go/pkg/logger"

	"go.uber.org/zap"
)

type SearchService struct {
	boardRepo *repository.BoardRepository
}

func NewSearchService(boardRepo *repository.BoardRepository) *SearchService {
	return &SearchService{boardRepo: boardRepo}
}

// SearchBoards 搜索留言板（ES 优先，失败则降级到 DB）
func (s *SearchService) SearchBoards(req *dto.SearchBoardRequest) (*dto.SearchBoardData, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 20
	}

	data, err := s.searchFromES(req)
	if err != nil {
		logger.Warn("ES search failed, fallback to DB", zap.Error(err))
		return s.searchFromDB(req)
	}
	return data, nil
}

func (s *SearchService) searchFromES(req *dto.SearchBoardRequest) (*dto.SearchBoardData, error) {
	cfg := config.GetElasticsearch()
	indexName := cfg.Index["boards"]
	if indexName == "" {
		indexName = "boards"
	}

	query := s.buildESQuery(req)
	queryJSON, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := infraES.Search(ctx, indexName, bytes.NewReader(queryJSON))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return nil, fmt.Errorf("ES search error: %s", resp.String())
	}

	var esResp struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source struct {
					ID string `json:"id"`
				} `json:"_source"`
				Highlight map[string][]string `json:"highlight"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&esResp); err != nil {
		return nil, err
	}

	boardIDs := make([]string, 0, len(esResp.Hits.Hits))
	highlights := make(map[string]map[string][]string)
	for _, h := range esResp.Hits.Hits {
		boardIDs = append(boardIDs, h.Source.ID)
		if len(h.Highlight) > 0 {
			highlights[h.Source.ID] = h.Highlight
		}
	}

	total := esResp.Hits.Total.Value
	if len(boardIDs) == 0 {
		return s.buildSearchData(nil, highlights, total, req.Page, req.PageSize), nil
	}

	boards, err := s.boardRepo.GetByIDs(boardIDs)
	if err != nil {
		return nil, err
	}

	boardMap := make(map[string]*model.MessageBoard)
	for i := range boards {
		boardMap[boards[i].ID] = &boards[i]
	}

	// 保持 ES 的相关度排序
	ordered := make([]model.MessageBoard, 0, len(boardIDs))
	for _, id := range boardIDs {
		if b, ok := boardMap[id]; ok {
			ordered = append(ordered, *b)
		}
	}

	return s.buildSearchData(ordered, highlights, total, req.Page, req.PageSize), nil
}

func (s *SearchService) buildESQuery(req *dto.SearchBoardRequest) map[string]interface{} {
	boolQ := map[string]interface{}{
		"filter": []interface{}{
			map[string]interface{}{"term": map[string]interface{}{"is_public": true}},
		},
		"must": []interface{}{},
	}

	if strings.TrimSpace(req.Q) != "" {
		q := strings.TrimSpace(req.Q)
		boolQ["must"] = append(boolQ["must"].([]interface{}),
			map[string]interface{}{
				"multi_match": map[string]interface{}{
					"query":    q,
					"fields":   []string{"video_title^3", "video_channel^1"},
					"type":     "best_fields",
					"operator": "or",
				},
			},
		)
	}

	if req.IsLive != nil {
		boolQ["filter"] = append(boolQ["filter"].([]interface{}),
			map[string]interface{}{"term": map[string]interface{}{"is_live": *req.IsLive}})
	}

	sortConfig := []interface{}{}
	switch req.Sort {
	case "time":
		sortConfig = append(sortConfig, map[string]interface{}{"updated_at": map[string]string{"order": "desc"}})
	case "size":
		sortConfig = append(sortConfig, map[string]interface{}{"message_count": map[string]string{"order": "desc"}})
	default:
		sortConfig = append(sortConfig, map[string]interface{}{"_score": map[string]string{"order": "desc"}})
		sortConfig = append(sortConfig, map[string]interface{}{"updated_at": map[string]string{"order": "desc"}})
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": boolQ,
		},
		"_source": []string{"id"},
		"from":    (req.Page - 1) * req.PageSize,
		"size":    req.PageSize,
		"sort":    sortConfig,
	}

	if strings.TrimSpace(req.Q) != "" {
		query["highlight"] = map[string]interface{}{
			"fields": map[string]interface{}{
				"video_title":   map[string]interface{}{},
				"video_channel": map[string]interface{}{},
			},
			"pre_tags":  []string{"<em>"},
			"post_tags": []string{"</em>"},
		}
	}

	return query
}

func (s *SearchService) buildSearchData(boards []model.MessageBoard, highlights map[string]map[string][]string, total int64, page, pageSize int) *dto.SearchBoardData {
	items := make([]dto.SearchBoardInfo, 0, len(boards))
	for i := range boards {
		b := &boards[i]
		items = append(items, dto.SearchBoardInfo{
			ID:            b.ID,
			VideoID:       b.VideoID,
			VideoTitle:    b.VideoTitle,
			VideoChannel:  b.VideoChannel,
			IsLive:        b.IsLive,
			ShareToken:    b.ShareToken,
			MessageCount:  b.MessageCount,
			TotalComments: b.Stats.TotalComments,
			UpdatedAt:     b.UpdatedAt,
			Highlight:     highlights[b.ID],
		})
	}

	totalPages := (total + int64(pageSize) - 1) / int64(pageSize)
	return &dto.SearchBoardData{
		Boards:     items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

func (s *SearchService) searchFromDB(req *dto.SearchBoardRequest) (*dto.SearchBoardData, error) {
	offset := (req.Page - 1) * req.PageSize
	q := strings.TrimSpace(req.Q)

	boards, total, err := s.boardRepo.SearchBoards(q, req.IsLive, offset, req.PageSize)
	if err != nil {
		return nil, err
	}

	return s.buildSearchData(boards, nil, total, req.Page, req.PageSize), nil
}

// SyncBoardToES 同步单个留言板到 ES（留言板更新事件触发）
func (s *SearchService) SyncBoardToES(boardID string) error {
	board, err := s.boardRepo.GetByID(boardID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return infraES.SyncBoard(ctx, board)
}

// SyncBoardsToES 同步所有留言板到 ES（worker 启动时全量重建）
func (s *SearchService) SyncBoardsToES() (success, failed int, err error) {
	boards, err := s.boardRepo.ListByUser(nil)
	if err != nil {
		return 0, 0, err
	}

	if len(boards) == 0 {
		return 0, 0, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	return infraES.BulkSyncBoards(ctx, boards)
}
