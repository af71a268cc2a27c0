package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_Render(t *testing.T) {
	r := NewRenderer()

	t.Run("empty description", func(t *testing.T) {
		out, err := r.Render("   ")
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("emphasis and strikethrough", func(t *testing.T) {
		out, err := r.Render("**Final** highlights ~~draft~~")
		require.NoError(t, err)
		assert.Contains(t, out, "<strong>Final</strong>")
		assert.Contains(t, out, "<del>draft</del>")
	})

	t.Run("scripts are stripped", func(t *testing.T) {
		out, err := r.Render("match <script>alert(1)</script> recap")
		require.NoError(t, err)
		assert.NotContains(t, out, "<script>")
		assert.Contains(t, out, "recap")
	})

	t.Run("links are nofollow", func(t *testing.T) {
		out, err := r.Render("[club](https://example.com/club)")
		require.NoError(t, err)
		assert.Contains(t, out, "nofollow")
		assert.Contains(t, out, `target="_blank"`)
	})
}
