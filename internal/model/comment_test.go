package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryValid(t *testing.T) {
	for _, category := range AllCategories {
		assert.True(t, category.Valid(), string(category))
	}
	assert.False(t, Category("").Valid())
	assert.False(t, Category("nonsense").Valid())
}

func TestPublishedTime(t *testing.T) {
	t.Run("parses RFC3339", func(t *testing.T) {
		c := Comment{PublishedAt: "2024-05-01T10:30:00Z"}
		got := c.PublishedTime()
		assert.Equal(t, time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC), got)
	})

	t.Run("empty and invalid values collapse to zero", func(t *testing.T) {
		assert.True(t, (&Comment{}).PublishedTime().IsZero())
		assert.True(t, (&Comment{PublishedAt: "yesterday"}).PublishedTime().IsZero())
	})
}

func TestCommentThreadsScanRoundTrip(t *testing.T) {
	threads := CommentThreads{
		{
			ID:       "c1",
			Author:   "alice",
			Text:     "hello",
			Category: CategoryGenuine,
			Replies: []Comment{
				{ID: "c1r1", Text: "reply", Category: CategorySpam, ShouldRemove: true},
			},
			Metadata: &CommentMetadata{IsChatOwner: true},
		},
	}

	raw, err := threads.Value()
	require.NoError(t, err)

	var decoded CommentThreads
	require.NoError(t, decoded.Scan(raw))

	require.Len(t, decoded, 1)
	assert.Equal(t, "c1", decoded[0].ID)
	require.Len(t, decoded[0].Replies, 1)
	assert.True(t, decoded[0].Replies[0].ShouldRemove)
	require.NotNil(t, decoded[0].Metadata)
	assert.True(t, decoded[0].Metadata.IsChatOwner)
}

func TestCommentThreadsScanNil(t *testing.T) {
	var threads CommentThreads
	require.NoError(t, threads.Scan(nil))
	assert.NotNil(t, threads)
	assert.Empty(t, threads)
}
