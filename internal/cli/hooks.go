package cli

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lineageview/pkg/observability"
)

// cacheLogHooks reports cache traffic at debug level.
type cacheLogHooks struct {
	logger *log.Logger
}

func (h cacheLogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "key", keyType)
}

func (h cacheLogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "key", keyType)
}

func (h cacheLogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "key", keyType, "bytes", size)
}

// RegisterHooks routes cache observability events to the CLI logger.
func (c *CLI) RegisterHooks() {
	observability.SetCacheHooks(cacheLogHooks{logger: c.Logger})
}
