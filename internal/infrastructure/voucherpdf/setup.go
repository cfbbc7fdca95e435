package voucherpdf

import (
	"fmt"
	"time"

	"github.com/sanad/backend/internal/infrastructure/config"
	"github.com/sanad/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PolicyFromConfig builds the default render policy from settings
func PolicyFromConfig(cfg config.RenderConfig) (RenderPolicy, error) {
	fonts, err := ParseFontStrategy(cfg.FontStrategy)
	if err != nil {
		return RenderPolicy{}, err
	}
	placement, err := ParseLogoPlacement(cfg.LogoPlacement)
	if err != nil {
		return RenderPolicy{}, err
	}
	p := RenderPolicy{
		Flatten:       cfg.Flatten,
		FontStrategy:  fonts,
		LogoPlacement: placement,
		IncludeQR:     cfg.IncludeQR,
	}
	if err := p.Validate(); err != nil {
		return RenderPolicy{}, err
	}
	return p, nil
}

// NewCompositorFromConfig loads the template and font named in cfg and
// returns a ready compositor. An empty template path selects the built-in
// development template. metrics may be nil.
func NewCompositorFromConfig(cfg config.RenderConfig, metrics *telemetry.RenderMetrics, logger *zap.Logger) (*Compositor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	policy, err := PolicyFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	loc := time.UTC
	if cfg.Timezone != "" {
		if loc, err = time.LoadLocation(cfg.Timezone); err != nil {
			return nil, fmt.Errorf("invalid render timezone %q: %w", cfg.Timezone, err)
		}
	}

	var tpl *Template
	if cfg.TemplatePath == "" {
		logger.Warn("No voucher template configured, using the development template")
		tpl, err = NewTemplate(DevTemplate())
	} else {
		tpl, err = LoadTemplate(cfg.TemplatePath)
	}
	if err != nil {
		return nil, err
	}
	if missing := tpl.MissingFields(); len(missing) > 0 {
		logger.Warn("Voucher template lacks fields, they will stay empty",
			zap.Strings("fields", missing),
		)
	}

	opts := []Option{
		WithLogger(logger),
		WithDefaultPolicy(policy),
		WithBinder(NewBinder(loc)),
		WithMetrics(metrics),
		WithImageFetcher(SchemeFetcher{
			Remote: NewHTTPImageFetcher(
				WithFetchTimeout(cfg.FetchTimeout),
				WithMaxImageBytes(cfg.MaxImageBytes),
			),
			Local: NewFileImageFetcher(cfg.AssetDir),
		}),
	}
	if cfg.FontPath != "" {
		font, err := LoadFontFile(cfg.FontPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithFont(font))
	} else if policy.FontStrategy == FontEmbedCustom {
		logger.Warn("No voucher font configured, Arabic text will print without glyphs")
	}

	c, err := NewCompositor(tpl, opts...)
	if err != nil {
		return nil, err
	}
	logger.Info("Voucher compositor ready",
		zap.String("template_digest", tpl.Digest()),
		zap.String("font_strategy", policy.FontStrategy.String()),
		zap.String("logo_placement", policy.LogoPlacement.String()),
		zap.Bool("flatten", policy.Flatten),
	)
	return c, nil
}
