package voucherpdf

import (
	"fmt"
	"strings"
)

// FontStrategy selects how field text is drawn when appearances are generated
type FontStrategy int

const (
	// FontPreserveTemplate keeps the template fonts and leaves appearances to
	// the viewer. Only valid for interactive output.
	FontPreserveTemplate FontStrategy = iota
	// FontEmbedCustom embeds the configured TrueType font (or the built-in
	// one) and draws with it.
	FontEmbedCustom
)

// String returns the config spelling of the strategy
func (s FontStrategy) String() string {
	if s == FontEmbedCustom {
		return "embed_custom_font"
	}
	return "preserve_template"
}

// LogoPlacement selects where organization images are placed
type LogoPlacement int

const (
	// LogoFormFieldOnly binds images to their template fields and never draws on the page.
	LogoFormFieldOnly LogoPlacement = iota
	// LogoPageDrawFallback binds to the field when present, otherwise draws on the first page.
	LogoPageDrawFallback
	// LogoBoth binds to the field and also draws on the first page.
	LogoBoth
)

// String returns the config spelling of the placement
func (p LogoPlacement) String() string {
	switch p {
	case LogoPageDrawFallback:
		return "page_draw_fallback"
	case LogoBoth:
		return "both"
	default:
		return "form_field_only"
	}
}

// RenderPolicy is the explicit per-call rendering configuration
type RenderPolicy struct {
	Flatten       bool
	FontStrategy  FontStrategy
	LogoPlacement LogoPlacement
	IncludeQR     bool
}

// DefaultRenderPolicy flattens with the embedded font and falls back to page drawing for images
func DefaultRenderPolicy() RenderPolicy {
	return RenderPolicy{
		Flatten:       true,
		FontStrategy:  FontEmbedCustom,
		LogoPlacement: LogoPageDrawFallback,
	}
}

// Validate rejects combinations the compositor cannot honor. Flattened text
// is drawn by the compositor itself, which needs a Unicode font.
func (p RenderPolicy) Validate() error {
	if p.Flatten && p.FontStrategy != FontEmbedCustom {
		return fmt.Errorf("flattening requires the %s font strategy, got %s", FontEmbedCustom, p.FontStrategy)
	}
	return nil
}

// ParseFontStrategy parses a config value
func ParseFontStrategy(s string) (FontStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "preserve_template", "preserve":
		return FontPreserveTemplate, nil
	case "embed_custom_font", "custom":
		return FontEmbedCustom, nil
	}
	return FontPreserveTemplate, fmt.Errorf("unknown font strategy: %s", s)
}

// ParseLogoPlacement parses a config value
func ParseLogoPlacement(s string) (LogoPlacement, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "form_field_only", "field":
		return LogoFormFieldOnly, nil
	case "", "page_draw_fallback", "fallback":
		return LogoPageDrawFallback, nil
	case "both":
		return LogoBoth, nil
	}
	return LogoPageDrawFallback, fmt.Errorf("unknown logo placement: %s", s)
}
