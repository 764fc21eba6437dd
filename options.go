package anvil

import (
	"log/slog"

	"github.com/danpasecinic/anvil/config"
)

type Option func(*containerConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *containerConfig) {
		cfg.logger = logger
	}
}

// WithSettings applies loaded settings: the logger they describe and whether
// graph output is coloured.
func WithSettings(settings *config.Settings) Option {
	return func(cfg *containerConfig) {
		if settings == nil {
			return
		}
		cfg.logger = settings.Logger()
		cfg.color = settings.Color
	}
}

// WithColor toggles coloured status markers in FprintGraph.
func WithColor(enabled bool) Option {
	return func(cfg *containerConfig) {
		cfg.color = enabled
	}
}

func WithSetObserver(hook SetHook) Option {
	return func(cfg *containerConfig) {
		cfg.onSet = append(cfg.onSet, hook)
	}
}

func WithProviderObserver(hook ProviderHook) Option {
	return func(cfg *containerConfig) {
		cfg.onProvider = append(cfg.onProvider, hook)
	}
}

func WithRemoveObserver(hook RemoveHook) Option {
	return func(cfg *containerConfig) {
		cfg.onRemove = append(cfg.onRemove, hook)
	}
}
