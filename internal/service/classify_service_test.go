package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"forumyzer-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend 可编程的 AI 后端
type fakeBackend struct {
	mu       sync.Mutex
	response string
	err      error
	calls    int
}

func (f *fakeBackend) ClassifyBatch(_ context.Context, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.response, f.err
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func textComment(text string) model.Comment {
	return model.Comment{ID: "c", Author: "someone", Text: text}
}

func TestClassifyKeywordRules(t *testing.T) {
	svc := NewClassifyService(nil)
	ctx := context.Background()

	cases := []struct {
		name       string
		text       string
		category   model.Category
		confidence float64
		remove     bool
	}{
		{"link is spam", "Check out https://example.com for free stuff", model.CategorySpam, 0.85, true},
		{"channel promo is spam", "please subscribe to my channel", model.CategorySpam, 0.85, true},
		{"bot keyword", "this is an automated message", model.CategoryBot, 0.75, false},
		{"short first is bot", "First!", model.CategoryBot, 0.75, false},
		{"insult is toxic", "you are a stupid idiot", model.CategoryToxic, 0.9, true},
		{"question mark with length", "What camera did you use for this?", model.CategoryQuestion, 0.8, false},
		{"suggestion is feedback", "I would suggest adding chapters, it would improve navigation", model.CategoryFeedback, 0.75, false},
		{
			"long analysis is discussion",
			"This is interesting because the argument only holds in the early game. However once the economy scales the same strategy stops working entirely, which the video never addresses.",
			model.CategoryDiscussion, 0.8, false,
		},
		{"default is genuine", "Love this video", model.CategoryGenuine, 0.7, false},
		{"nice inside a sentence is genuine", "Nice editing as always, keep it up", model.CategoryGenuine, 0.7, false},
		{"spam outranks question", "What do you think? Check out www.promo.com", model.CategorySpam, 0.85, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := svc.Classify(ctx, []model.Comment{textComment(tc.text)}, false)

			require.Len(t, out, 1)
			assert.Equal(t, tc.category, out[0].Category)
			assert.InDelta(t, tc.confidence, out[0].Confidence, 1e-9)
			assert.Equal(t, tc.remove, out[0].ShouldRemove)
			assert.Equal(t, "Keyword-based classification", out[0].ClassificationReason)
		})
	}
}

func TestClassifyEmptyInput(t *testing.T) {
	svc := NewClassifyService(nil)
	out := svc.Classify(context.Background(), nil, true)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestClassifyPreservesOrderAndCount(t *testing.T) {
	svc := NewClassifyService(nil)
	comments := []model.Comment{
		{ID: "1", Text: "Love it"},
		{ID: "2", Text: "you stupid idiot"},
		{ID: "3", Text: "buy now at www.scam.com"},
	}

	out := svc.Classify(context.Background(), comments, false)

	require.Len(t, out, 3)
	assert.Equal(t, "1", out[0].ID)
	assert.Equal(t, "2", out[1].ID)
	assert.Equal(t, "3", out[2].ID)
}

func TestClassifyAI(t *testing.T) {
	ctx := context.Background()

	t.Run("applies parsed results", func(t *testing.T) {
		backend := &fakeBackend{response: "```json\n[\n" +
			`{"index": 1, "category": "spam", "confidence": 0.95, "remove": true, "reason": "Contains promotional link"},` +
			`{"index": 2, "category": "question", "confidence": 0.9, "remove": false, "reason": "Asks about the video"}` +
			"\n]\n```"}
		svc := NewClassifyService(backend)

		out := svc.Classify(ctx, []model.Comment{
			textComment("visit my site"),
			textComment("what is this about?"),
		}, true)

		require.Len(t, out, 2)
		assert.Equal(t, model.CategorySpam, out[0].Category)
		assert.True(t, out[0].ShouldRemove)
		assert.Equal(t, "Contains promotional link", out[0].ClassificationReason)
		assert.Equal(t, model.CategoryQuestion, out[1].Category)
		assert.InDelta(t, 0.9, out[1].Confidence, 1e-9)
	})

	t.Run("missing index defaults to genuine", func(t *testing.T) {
		backend := &fakeBackend{response: `[{"index": 1, "category": "spam", "confidence": 0.95, "remove": true, "reason": "x"}]`}
		svc := NewClassifyService(backend)

		out := svc.Classify(ctx, []model.Comment{
			textComment("first"),
			textComment("second comment the model skipped"),
		}, true)

		require.Len(t, out, 2)
		assert.Equal(t, model.CategoryGenuine, out[1].Category)
		assert.InDelta(t, 0.5, out[1].Confidence, 1e-9)
		assert.False(t, out[1].ShouldRemove)
	})

	t.Run("invalid category defaults to genuine", func(t *testing.T) {
		backend := &fakeBackend{response: `[{"index": 1, "category": "weird", "confidence": 0.9, "remove": false, "reason": "x"}]`}
		svc := NewClassifyService(backend)

		out := svc.Classify(ctx, []model.Comment{textComment("hello")}, true)

		require.Len(t, out, 1)
		assert.Equal(t, model.CategoryGenuine, out[0].Category)
	})

	t.Run("zero confidence defaults to 0.8", func(t *testing.T) {
		backend := &fakeBackend{response: `[{"index": 1, "category": "genuine", "remove": false, "reason": "x"}]`}
		svc := NewClassifyService(backend)

		out := svc.Classify(ctx, []model.Comment{textComment("hello")}, true)

		require.Len(t, out, 1)
		assert.InDelta(t, 0.8, out[0].Confidence, 1e-9)
	})

	t.Run("backend error falls back to keyword rules", func(t *testing.T) {
		backend := &fakeBackend{err: errors.New("quota exceeded")}
		svc := NewClassifyService(backend)

		out := svc.Classify(ctx, []model.Comment{textComment("check out www.spam.com")}, true)

		require.Len(t, out, 1)
		assert.Equal(t, model.CategorySpam, out[0].Category)
		assert.Equal(t, "Keyword-based classification", out[0].ClassificationReason)
	})

	t.Run("malformed response falls back to keyword rules", func(t *testing.T) {
		backend := &fakeBackend{response: "sorry, I cannot help with that"}
		svc := NewClassifyService(backend)

		out := svc.Classify(ctx, []model.Comment{textComment("Love this video")}, true)

		require.Len(t, out, 1)
		assert.Equal(t, model.CategoryGenuine, out[0].Category)
		assert.Equal(t, "Keyword-based classification", out[0].ClassificationReason)
	})

	t.Run("splits large input into batches", func(t *testing.T) {
		backend := &fakeBackend{err: errors.New("force fallback")}
		svc := NewClassifyService(backend)

		comments := make([]model.Comment, 45)
		for i := range comments {
			comments[i] = textComment("a comment")
		}

		out := svc.Classify(ctx, comments, true)

		assert.Len(t, out, 45)
		assert.Equal(t, 3, backend.callCount())
	})
}

func TestClassifyThreads(t *testing.T) {
	svc := NewClassifyService(nil)

	top := textComment("What editing software is this?")
	top.Replies = []model.Comment{textComment("buy followers at www.spam.com")}

	out := svc.ClassifyThreads(context.Background(), []model.Comment{top}, false)

	require.Len(t, out, 1)
	assert.Equal(t, model.CategoryQuestion, out[0].Category)
	require.Len(t, out[0].Replies, 1)
	assert.Equal(t, model.CategorySpam, out[0].Replies[0].Category)
	assert.True(t, out[0].Replies[0].ShouldRemove)
}

func TestRemoveSpam(t *testing.T) {
	keep := textComment("great video")
	keep.Category = model.CategoryGenuine

	spamReply := textComment("www.spam.com")
	spamReply.ShouldRemove = true
	keep.Replies = []model.Comment{spamReply, {Text: "legit reply"}}

	toxic := textComment("you idiot")
	toxic.ShouldRemove = true

	out := RemoveSpam([]model.Comment{keep, toxic})

	require.Len(t, out, 1)
	assert.Equal(t, "great video", out[0].Text)
	require.Len(t, out[0].Replies, 1)
	assert.Equal(t, "legit reply", out[0].Replies[0].Text)
}
