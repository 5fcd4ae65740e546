package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render("# Week 3\n\nCovers **scheduling**.")
	require.NoError(t, err)
	require.Contains(t, out, "<h1>Week 3</h1>")
	require.Contains(t, out, "<strong>scheduling</strong>")
}

func TestRenderTable(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render("| a | b |\n|---|---|\n| 1 | 2 |")
	require.NoError(t, err)
	require.Contains(t, out, "<table>")
}

func TestRenderEscapesRawHTML(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render("<script>alert(1)</script>")
	require.NoError(t, err)
	require.NotContains(t, out, "<script>")
}
