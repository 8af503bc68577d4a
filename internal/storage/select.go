package storage

import (
	"fmt"
	"path/filepath"

	"github.com/hammamikhairi/focustrack/internal/domain"
	"github.com/hammamikhairi/focustrack/internal/logger"
)

// GuestDBName is the SQLite file created under the data directory.
const GuestDBName = "guest.db"

// Config says where completed sessions should go.
type Config struct {
	APIURL   string
	APIToken string
	DataDir  string
	Guest    bool // force local storage even with credentials
}

// Authenticated reports whether sessions go to the account backend.
func (c Config) Authenticated() bool {
	return !c.Guest && c.APIURL != "" && c.APIToken != ""
}

// GuestPath is the guest database location.
func (c Config) GuestPath() string {
	return filepath.Join(c.DataDir, GuestDBName)
}

// Select picks the sink for cfg. The returned close func releases whatever
// the sink holds open and is always safe to call.
func Select(cfg Config, log *logger.Logger) (domain.SessionSink, func() error, error) {
	if cfg.Authenticated() {
		log.Info("recording sessions to %s", cfg.APIURL)
		return NewRemoteSink(cfg.APIURL, cfg.APIToken, log.Named("remote")), func() error { return nil }, nil
	}

	store, err := OpenGuestStore(cfg.GuestPath(), log.Named("guest"))
	if err != nil {
		return nil, nil, fmt.Errorf("select guest store: %w", err)
	}
	log.Info("guest mode: recording sessions to %s", cfg.GuestPath())
	return store, store.Close, nil
}
