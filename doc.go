// Package scarcity provides a ledger of non-fungible "summoner" assets for
// summon-and-level-up games.
//
// Scarcity is designed as a library, not a service. Import it directly into
// your Go application and host it behind whatever transport you like. It
// provides:
//
//   - Sequential minting of summoners with an immutable minter record
//   - Owner, single-token and operator authorization for transfers
//   - A pure, overflow-checked XP curve (1000 * level^2 whole XP)
//   - Admin-controlled metadata URIs
//   - Pluggable storage: memory, bbolt, SQLite, PostgreSQL and MongoDB
//   - Plugin hooks for audit trails and metrics
//
// # Quick Start
//
//	import (
//	    "github.com/xraph/scarcity"
//	    "github.com/xraph/scarcity/store/memory"
//	)
//
//	admin := scarcity.HexToAddress("0x...")
//	l := scarcity.New(memory.New(), scarcity.WithAdmin(admin))
//	if err := l.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer l.Stop()
//
// # Callers
//
// Every operation acting on behalf of someone reads the caller from the
// context:
//
//	ctx = scarcity.WithCaller(ctx, player)
//	id, err := l.Summon(ctx, 1)
//	err = l.Transfer(ctx, id, player, friend)
//
// Authorization failures wrap ErrUnauthorized and leave state unchanged.
//
// # Experience
//
// XP is an 18-decimal fixed-point amount backed by a 256-bit integer:
//
//	need := scarcity.XPRequired(10)   // 100000 whole XP
//	lvl, _ := scarcity.LevelFor(need) // 10
//
// # Events
//
// Every committed change is emitted to plugins as an event.Event with a
// TypeID such as evt_01h2xcejqtf2nbrexx3vqjhp41. Plugins cannot veto or
// roll back an operation.
package scarcity
