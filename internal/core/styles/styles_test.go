package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemeNames(t *testing.T) {
	assert.Equal(t, []string{"gruvbox", "tokyo-night"}, ThemeNames())
}

func TestSetTheme(t *testing.T) {
	t.Cleanup(func() { SetTheme(themes[DefaultTheme]) })

	p, ok := GetPalette("gruvbox")
	require.True(t, ok)

	SetTheme(p)
	assert.Equal(t, p, CurrentPalette)

	_, ok = GetPalette("nope")
	assert.False(t, ok)
}

func TestTable(t *testing.T) {
	out := Table([]string{"KEY", "NAME"}, [][]string{
		{"u1", "Setup"},
		{"u2", "Deploy"},
	})

	for _, want := range []string{"KEY", "NAME", "u1", "Setup", "u2", "Deploy"} {
		assert.Contains(t, out, want)
	}
}
