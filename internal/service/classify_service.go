package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"forumyzer-go/internal/model"
	"forumyzer-go/pkg/logger"

	"go.uber.org/zap"
)

// AIBackend 外部 AI 分类后端契约
// 输入一段提示词，返回模型原始文本；解析失败由本层按批降级
type AIBackend interface {
	ClassifyBatch(ctx context.Context, prompt string) (string, error)
}

const (
	// aiBatchSize 每个 AI 请求携带的评论数，避免超出 token 上限
	aiBatchSize = 20

	keywordReason = "Keyword-based classification"
)

// 关键词规则，按优先级排列，命中即停
// 规则顺序是分类契约的一部分：spam > bot > toxic > question > feedback > discussion > genuine
var (
	spamPattern       = regexp.MustCompile(`(?i)http|www\.|\.com|\.net|t\.me|discord\.gg|subscribe|check.*(channel|out)|click.*link|free.*money|make.*\$|buy.*now`)
	botPattern        = regexp.MustCompile(`(?i)bot|automated|robot|i['’]?m a bot|generated|auto.?reply`)
	botShortPattern   = regexp.MustCompile(`(?i)^(first|nice|cool|good|thanks)!*$`)
	toxicPattern      = regexp.MustCompile(`(?i)\b(hate|kill|die|kys|stupid|idiot|racist|f[*u]ck|sh[*i]t|b[*i]tch|a[*s]shole|retard|cancer)\b`)
	feedbackPattern   = regexp.MustCompile(`(?i)suggest|recommend|improve|better|should|could|feedback|critique`)
	discussionPattern = regexp.MustCompile(`(?i)because|however|therefore|interesting|analysis|perspective`)
)

// ClassifyService 评论分类服务
// backend 为 nil 时恒定使用关键词规则
type ClassifyService struct {
	backend   AIBackend
	batchSize int
}

func NewClassifyService(backend AIBackend) *ClassifyService {
	return &ClassifyService{backend: backend, batchSize: aiBatchSize}
}

// Classify 为每条评论标注分类、置信度与移除建议
// 不会丢弃或重排输入，过滤是独立的显式步骤（见 RemoveSpam）
func (s *ClassifyService) Classify(ctx context.Context, comments []model.Comment, useAI bool) []model.Comment {
	if len(comments) == 0 {
		return []model.Comment{}
	}

	if !useAI || s.backend == nil {
		return classifyKeyword(comments)
	}

	// 分批并发请求，单批失败只降级该批
	batches := splitBatches(comments, s.batchSize)
	results := make([][]model.Comment, len(batches))

	var wg sync.WaitGroup
	for i := range batches {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.classifyBatchAI(ctx, batches[i])
		}(i)
	}
	wg.Wait()

	classified := make([]model.Comment, 0, len(comments))
	for _, batch := range results {
		classified = append(classified, batch...)
	}
	return classified
}

// ClassifyThreads 分类顶层评论并逐条分类其回复
func (s *ClassifyService) ClassifyThreads(ctx context.Context, threads []model.Comment, useAI bool) []model.Comment {
	classified := s.Classify(ctx, threads, useAI)
	for i := range classified {
		if len(classified[i].Replies) > 0 {
			classified[i].Replies = s.Classify(ctx, classified[i].Replies, useAI)
		}
	}
	return classified
}

// RemoveSpam 过滤所有 shouldRemove 的评论，递归处理回复
func RemoveSpam(comments []model.Comment) []model.Comment {
	kept := make([]model.Comment, 0, len(comments))
	for _, comment := range comments {
		if comment.ShouldRemove {
			continue
		}
		if len(comment.Replies) > 0 {
			comment.Replies = RemoveSpam(comment.Replies)
		}
		kept = append(kept, comment)
	}
	return kept
}

func (s *ClassifyService) classifyBatchAI(ctx context.Context, batch []model.Comment) []model.Comment {
	prompt := buildClassificationPrompt(batch)

	raw, err := s.backend.ClassifyBatch(ctx, prompt)
	if err != nil {
		logger.Warn("AI classification request failed, falling back to keyword rules",
			zap.Int("batch_size", len(batch)),
			zap.Error(err),
		)
		return classifyKeyword(batch)
	}

	classified, err := parseClassification(raw, batch)
	if err != nil {
		logger.Warn("Failed to parse AI classification response, falling back to keyword rules",
			zap.Int("batch_size", len(batch)),
			zap.Error(err),
		)
		return classifyKeyword(batch)
	}
	return classified
}

func splitBatches(comments []model.Comment, size int) [][]model.Comment {
	var batches [][]model.Comment
	for start := 0; start < len(comments); start += size {
		end := start + size
		if end > len(comments) {
			end = len(comments)
		}
		batches = append(batches, comments[start:end])
	}
	return batches
}

// buildClassificationPrompt 构造分批分类提示词，序号从 1 开始
func buildClassificationPrompt(comments []model.Comment) string {
	var list strings.Builder
	for i, c := range comments {
		if i > 0 {
			list.WriteString("\n\n")
		}
		fmt.Fprintf(&list, "%d. Author: %s\n   Text: %s", i+1, c.Author, c.Text)
	}

	return fmt.Sprintf(`You are a YouTube comment analyzer. Classify each comment into ONE of these categories:
- spam: Promotional content, links, "check out my channel", scams
- bot: Automated messages, repetitive generic comments
- toxic: Hate speech, harassment, offensive language, personal attacks
- question: Questions about the video or topic
- feedback: Constructive criticism or suggestions
- discussion: Thoughtful discussion or analysis
- genuine: Positive reactions, appreciation, simple comments

For each comment, also detect if it should be REMOVED (spam, severe toxicity, or clear bot).

Comments to classify:
%s

Respond ONLY with JSON array format (no markdown):
[
  {"index": 1, "category": "spam", "confidence": 0.95, "remove": true, "reason": "Contains promotional link"},
  {"index": 2, "category": "genuine", "confidence": 0.85, "remove": false, "reason": "Positive reaction"}
]`, list.String())
}

// batchResult AI 响应中的单条分类结果
type batchResult struct {
	Index      int     `json:"index"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Remove     bool    `json:"remove"`
	Reason     string  `json:"reason"`
}

// parseClassification 解析 AI 响应并映射回输入评论
// 响应中缺席的评论默认 genuine/0.5/不移除
func parseClassification(raw string, comments []model.Comment) ([]model.Comment, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var results []batchResult
	if err := json.Unmarshal([]byte(cleaned), &results); err != nil {
		return nil, fmt.Errorf("unmarshal classification response: %w", err)
	}

	byIndex := make(map[int]batchResult, len(results))
	for _, r := range results {
		byIndex[r.Index] = r
	}

	classified := make([]model.Comment, len(comments))
	for i, comment := range comments {
		result, ok := byIndex[i+1]
		if !ok {
			comment.Category = model.CategoryGenuine
			comment.Confidence = 0.5
			comment.ShouldRemove = false
			classified[i] = comment
			continue
		}

		category := model.Category(result.Category)
		if !category.Valid() {
			category = model.CategoryGenuine
		}
		confidence := result.Confidence
		if confidence == 0 {
			confidence = 0.8
		}

		comment.Category = category
		comment.Confidence = confidence
		comment.ShouldRemove = result.Remove
		comment.ClassificationReason = result.Reason
		classified[i] = comment
	}

	return classified, nil
}

// classifyKeyword 关键词规则分类，确定性且无外部调用
func classifyKeyword(comments []model.Comment) []model.Comment {
	classified := make([]model.Comment, len(comments))
	for i, comment := range comments {
		category, confidence, shouldRemove := classifyText(comment.Text)
		comment.Category = category
		comment.Confidence = confidence
		comment.ShouldRemove = shouldRemove
		comment.ClassificationReason = keywordReason
		classified[i] = comment
	}
	return classified
}

func classifyText(text string) (model.Category, float64, bool) {
	length := utf8.RuneCountInString(text)

	switch {
	case spamPattern.MatchString(text):
		return model.CategorySpam, 0.85, true
	case botPattern.MatchString(text) ||
		(length < 20 && botShortPattern.MatchString(strings.TrimSpace(text))):
		return model.CategoryBot, 0.75, false
	case toxicPattern.MatchString(text):
		return model.CategoryToxic, 0.9, true
	case strings.Contains(text, "?") && length > 10:
		return model.CategoryQuestion, 0.8, false
	case feedbackPattern.MatchString(text) && length > 30:
		return model.CategoryFeedback, 0.75, false
	case length > 100 && discussionPattern.MatchString(text):
		return model.CategoryDiscussion, 0.8, false
	default:
		return model.CategoryGenuine, 0.7, false
	}
}
