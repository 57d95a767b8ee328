// Package server exposes the collection pipeline over HTTP: run trigger,
// published results, quota state, credential store, translation preview,
// spreadsheet export and transcript downloads, plus the result table page.
package server

import (
	"sync"

	"github.com/boss9293-ops/Youtube-hot-finder/internal/config"
	"github.com/boss9293-ops/Youtube-hot-finder/internal/engine"
)

type Server struct {
	runner  *engine.Runner
	gw      *engine.Gateway
	ledger  *engine.Ledger
	cfgPath string

	mu     sync.RWMutex
	appCfg config.Config
}

func New(runner *engine.Runner, gw *engine.Gateway, ledger *engine.Ledger, cfgPath string, initial config.Config) *Server {
	return &Server{
		runner:  runner,
		gw:      gw,
		ledger:  ledger,
		cfgPath: cfgPath,
		appCfg:  initial,
	}
}

// SetConfig swaps in a new settings snapshot. Called by the file watcher and
// by the credential handlers.
func (s *Server) SetConfig(c config.Config) {
	s.mu.Lock()
	s.appCfg = c
	s.mu.Unlock()
}

func (s *Server) configSnapshot() config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.appCfg
}
