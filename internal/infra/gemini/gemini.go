package gemini

import (
	"context"
	"fmt"

	"forumyzer-go/internal/config"
	"forumyzer-go/pkg/logger"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash"

// Client Gemini 分类后端
type Client struct {
	client *genai.Client
	model  string
}

// NewClient 创建 Gemini 客户端
// API Key 为空时返回错误，调用方据此降级到关键词分类
func NewClient(ctx context.Context, cfg *config.GeminiConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	logger.Info("Gemini classification backend initialized", zap.String("model", model))

	return &Client{client: client, model: model}, nil
}

// ClassifyBatch 发送一批评论的分类提示词，返回模型原始文本
// 响应解析与降级由调用方负责
func (c *Client) ClassifyBatch(ctx context.Context, prompt string) (string, error) {
	temperature := float32(0.2)
	topP := float32(0.95)
	topK := float32(40)
	maxTokens := int32(2048)

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     &temperature,
		TopP:            &topP,
		TopK:            &topK,
		MaxOutputTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	if result == nil || len(result.Candidates) == 0 ||
		result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned empty response")
	}

	return result.Candidates[0].Content.Parts[0].Text, nil
}
