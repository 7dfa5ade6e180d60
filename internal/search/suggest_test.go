package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestFindsNearMiss(t *testing.T) {
	root := writeTree(t, "holiday_2019.mp4", "b.mkv")
	s := NewSearcher(testOptions(), testLogger())

	_, err := s.Search(context.Background(), root, []string{"holiday_2020.mp4"})
	require.NoError(t, err)

	name, score, ok := s.Suggest("holiday_2020.mp4")
	require.True(t, ok)
	assert.Equal(t, "holiday_2019.mp4", name)
	assert.Greater(t, score, 0.9)
}

func TestSuggestNormalizesUnicode(t *testing.T) {
	// On-disk name is precomposed; the query spells é as e + combining acute.
	root := writeTree(t, "café_tour.mp4", "b.mkv")
	s := NewSearcher(testOptions(), testLogger())

	_, err := s.Search(context.Background(), root, []string{"zzzz.mp4"})
	require.NoError(t, err)

	name, score, ok := s.Suggest("CAFÉ_TOUR.mp4")
	require.True(t, ok)
	assert.Equal(t, "café_tour.mp4", name)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestSuggestNothingAboveFloor(t *testing.T) {
	root := writeTree(t, "qqqqqqqq.mkv")
	s := NewSearcher(testOptions(), testLogger())

	_, err := s.Search(context.Background(), root, []string{"a.mp4"})
	require.NoError(t, err)

	_, _, ok := s.Suggest("zzzz_0000.webm")
	assert.False(t, ok)
}

func TestSuggestEmptyWalk(t *testing.T) {
	root := writeTree(t, "notes.txt")
	s := NewSearcher(testOptions(), testLogger())

	_, err := s.Search(context.Background(), root, []string{"a.mp4"})
	require.NoError(t, err)

	_, _, ok := s.Suggest("a.mp4")
	assert.False(t, ok)
}
