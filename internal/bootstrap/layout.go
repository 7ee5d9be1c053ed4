package bootstrap

import (
	"github.com/GoSim-25-26J-441/tagnet-backend/config"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/layout"
)

func NewLayoutEngine(cfg config.LayoutConfig) layout.Engine {
	if cfg.Engine == config.LayoutEngineHTTP {
		return layout.NewHTTPEngine(cfg.URL, cfg.Timeout)
	}
	return layout.NewForceEngine(cfg.Iterations)
}
