package provisioner

import (
	"context"

	"github.com/crafted-tech/provisioner/logging"
)

// Provisioner downloads and installs artifacts and controls OS services.
// Operations are synchronous and a Provisioner is not safe for concurrent use.
type Provisioner struct {
	cfg Config
	log *logging.Logger
}

// New creates a Provisioner.
func New(opts ...Option) *Provisioner {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = defaultConfig().WorkDir
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	return &Provisioner{cfg: cfg, log: cfg.Logger}
}

// Config returns the effective configuration.
func (p *Provisioner) Config() Config {
	return p.cfg
}

// Logger returns the logger operations write to.
func (p *Provisioner) Logger() *logging.Logger {
	return p.log
}

func (p *Provisioner) context() context.Context {
	if p.cfg.Context == nil {
		return context.Background()
	}
	return p.cfg.Context
}
