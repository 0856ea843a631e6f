// Package settings holds the ledger-wide configuration record: the admin
// identity and the metadata base URI.
package settings

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Settings is the single configuration record of a ledger.
type Settings struct {
	Admin     common.Address `json:"admin"`
	BaseURI   string         `json:"base_uri"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Store persists the settings record. GetSettings returns
// scarcity.ErrSettingsNotFound before the first SaveSettings.
type Store interface {
	GetSettings(ctx context.Context) (*Settings, error)
	SaveSettings(ctx context.Context, s *Settings) error
}
