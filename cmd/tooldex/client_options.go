package main

import (
	"log/slog"

	"github.com/tooldex/tooldex"
	"github.com/tooldex/tooldex/infrastructure/provider"
	"github.com/tooldex/tooldex/internal/config"
)

// buildClientOptions translates loaded configuration into client options.
func buildClientOptions(cfg config.AppConfig, logger *slog.Logger) []tooldex.Option {
	opts := []tooldex.Option{
		tooldex.WithDataDir(cfg.DataDir()),
		tooldex.WithLogger(logger),
	}

	if cfg.UseDatabase() && cfg.DBURL() != "" {
		opts = append(opts, tooldex.WithDatabaseURL(cfg.DBURL()))
	}

	emb := cfg.Embedding()
	if emb.APIKey() != "" || emb.BaseURL() != "" {
		opts = append(opts, tooldex.WithOpenAIConfig(provider.OpenAIConfig{
			APIKey:        emb.APIKey(),
			BaseURL:       emb.BaseURL(),
			Model:         emb.Model(),
			Timeout:       emb.Timeout(),
			MaxRetries:    emb.MaxRetries(),
			MaxInputChars: emb.MaxChars(),
		}))
	}

	return opts
}
