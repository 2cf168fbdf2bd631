package httpapi

import (
	"database/sql"
	"sync/atomic"

	"recruitsync-engine/internal/config"
	"recruitsync-engine/internal/events"
	"recruitsync-engine/internal/poll"
)

type Deps struct {
	DB *sql.DB

	Hub *events.Hub

	// Runner owns the overlap guard; handlers trigger runs through it.
	Runner *poll.Runner

	// Atomic store for config.Config
	CfgVal *atomic.Value

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
}
