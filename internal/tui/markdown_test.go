package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMarkdown(t *testing.T) {
	r, err := NewMarkdownRenderer(80)
	require.NoError(t, err)
	result, err := r.Render("Freeman matched **Ralph Freeman**")
	require.NoError(t, err)
	assert.Contains(t, result, "Ralph Freeman")
}

func TestRenderMarkdownEmpty(t *testing.T) {
	r, err := NewMarkdownRenderer(80)
	require.NoError(t, err)
	result, err := r.Render("")
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestRenderMarkdownNilRenderer(t *testing.T) {
	var r *MarkdownRenderer
	result, err := r.Render("plain *text*")
	require.NoError(t, err)
	assert.Equal(t, "plain *text*", result)
}
