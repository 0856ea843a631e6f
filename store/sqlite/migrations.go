package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Scarcity store (SQLite).
var Migrations = migrate.NewGroup("scarcity")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_scarcity_summoners",
			Version: "20250301000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS scarcity_summoners (
    id          INTEGER PRIMARY KEY,
    kind        INTEGER NOT NULL DEFAULT 0,
    xp          TEXT NOT NULL DEFAULT '0',
    owner       TEXT NOT NULL,
    minter      TEXT NOT NULL,
    approved    TEXT NOT NULL DEFAULT '',
    created_at  TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_scarcity_summoners_owner ON scarcity_summoners (owner);
CREATE INDEX IF NOT EXISTS idx_scarcity_summoners_minter ON scarcity_summoners (minter);
CREATE INDEX IF NOT EXISTS idx_scarcity_summoners_kind ON scarcity_summoners (kind);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS scarcity_summoners`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_scarcity_operators",
			Version: "20250301000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS scarcity_operators (
    owner       TEXT NOT NULL,
    operator    TEXT NOT NULL,
    created_at  TEXT NOT NULL DEFAULT (datetime('now')),
    PRIMARY KEY (owner, operator)
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS scarcity_operators`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_scarcity_settings",
			Version: "20250301000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS scarcity_settings (
    name        TEXT PRIMARY KEY,
    admin       TEXT NOT NULL DEFAULT '',
    base_uri    TEXT NOT NULL DEFAULT '',
    updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS scarcity_settings`)
				return err
			},
		},
	)
}
