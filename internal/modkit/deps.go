// Package modkit provides module wiring and core deps
package modkit

import (
	"cinegram/internal/adapters/archive"
	"cinegram/internal/platform/config"
	"cinegram/internal/platform/logger"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log     logger.Logger
	Cfg     config.Conf
	Archive archive.Client
	Docs    *archive.DocumentCache
}

// ZeroOK returns true when deps are safe to use with zero values in tests
// consumers should still nil check for optional collaborators
func (d Deps) ZeroOK() bool { return true }
