package voucherpdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRenderPolicy(t *testing.T) {
	p := DefaultRenderPolicy()
	assert.True(t, p.Flatten)
	assert.Equal(t, FontEmbedCustom, p.FontStrategy)
	assert.Equal(t, LogoPageDrawFallback, p.LogoPlacement)
	assert.False(t, p.IncludeQR)
	assert.NoError(t, p.Validate())
}

func TestRenderPolicy_Validate(t *testing.T) {
	tests := []struct {
		name    string
		policy  RenderPolicy
		wantErr bool
	}{
		{"flattened with embedded font", RenderPolicy{Flatten: true, FontStrategy: FontEmbedCustom}, false},
		{"interactive with template font", RenderPolicy{FontStrategy: FontPreserveTemplate}, false},
		{"interactive with embedded font", RenderPolicy{FontStrategy: FontEmbedCustom}, false},
		{"flattened with template font", RenderPolicy{Flatten: true, FontStrategy: FontPreserveTemplate}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "flattening requires the embed_custom_font font strategy")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestParseFontStrategy(t *testing.T) {
	s, err := ParseFontStrategy("embed_custom_font")
	require.NoError(t, err)
	assert.Equal(t, FontEmbedCustom, s)
	assert.Equal(t, "embed_custom_font", s.String())

	s, err = ParseFontStrategy("")
	require.NoError(t, err)
	assert.Equal(t, FontPreserveTemplate, s)

	_, err = ParseFontStrategy("comic_sans")
	assert.Error(t, err)
}

func TestParseLogoPlacement(t *testing.T) {
	tests := map[string]LogoPlacement{
		"form_field_only":    LogoFormFieldOnly,
		"page_draw_fallback": LogoPageDrawFallback,
		"BOTH":               LogoBoth,
		"":                   LogoPageDrawFallback,
	}
	for in, want := range tests {
		got, err := ParseLogoPlacement(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLogoPlacement("header")
	assert.Error(t, err)
}
