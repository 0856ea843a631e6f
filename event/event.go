// Package event defines the typed notifications the ledger emits after a
// mutation commits. Plugins receive them through the plugin registry.
package event

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/scarcity/id"
)

// Type names a ledger event.
type Type string

const (
	// TypeTransfer is emitted on summon (From is the zero address) and on
	// every ownership change.
	TypeTransfer Type = "transfer"
	// TypeApproval is emitted when a single-summoner delegate is set.
	TypeApproval Type = "approval"
	// TypeApprovalForAll is emitted when an operator is granted or revoked.
	TypeApprovalForAll Type = "approval_for_all"
	// TypeBaseURIUpdated is emitted when the admin changes the base URI.
	TypeBaseURIUpdated Type = "base_uri_updated"
	// TypeAdminTransferred is emitted when the admin role changes hands.
	TypeAdminTransferred Type = "admin_transferred"
)

// Event is a committed ledger state change.
//
// From and To carry the two addresses relevant to each type:
//   - transfer: previous owner, new owner
//   - approval: owner, approved delegate
//   - approval_for_all: owner, operator
//   - admin_transferred: previous admin, new admin
//
// Plugins may receive events out of commit order. Seq is assigned in commit
// order and restarts at 1 with each ledger instance.
type Event struct {
	ID        id.EventID     `json:"id"`
	Seq       uint64         `json:"seq"`
	Type      Type           `json:"type"`
	TokenID   uint64         `json:"token_id"`
	Kind      uint64         `json:"kind,omitempty"`
	From      common.Address `json:"from"`
	To        common.Address `json:"to"`
	Caller    common.Address `json:"caller"`
	Approved  bool           `json:"approved,omitempty"`
	BaseURI   string         `json:"base_uri,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

func newEvent(t Type, caller common.Address) *Event {
	return &Event{
		ID:        id.NewEventID(),
		Type:      t,
		Caller:    caller,
		Timestamp: time.Now().UTC(),
	}
}

// NewSummoned builds the transfer-from-zero event of a freshly minted summoner.
func NewSummoned(tokenID, kind uint64, minter common.Address) *Event {
	e := newEvent(TypeTransfer, minter)
	e.TokenID = tokenID
	e.Kind = kind
	e.To = minter
	return e
}

// NewTransfer builds an ownership change event.
func NewTransfer(tokenID uint64, from, to, caller common.Address) *Event {
	e := newEvent(TypeTransfer, caller)
	e.TokenID = tokenID
	e.From = from
	e.To = to
	return e
}

// NewApproval builds a single-summoner approval event.
func NewApproval(tokenID uint64, owner, approved, caller common.Address) *Event {
	e := newEvent(TypeApproval, caller)
	e.TokenID = tokenID
	e.From = owner
	e.To = approved
	return e
}

// NewApprovalForAll builds an operator grant or revocation event.
func NewApprovalForAll(owner, operator common.Address, approved bool) *Event {
	e := newEvent(TypeApprovalForAll, owner)
	e.From = owner
	e.To = operator
	e.Approved = approved
	return e
}

// NewBaseURIUpdated builds a base URI change event.
func NewBaseURIUpdated(uri string, admin common.Address) *Event {
	e := newEvent(TypeBaseURIUpdated, admin)
	e.BaseURI = uri
	return e
}

// NewAdminTransferred builds an admin change event.
func NewAdminTransferred(previous, next common.Address) *Event {
	e := newEvent(TypeAdminTransferred, previous)
	e.From = previous
	e.To = next
	return e
}

// IsMint reports whether e records the creation of a summoner.
func (e *Event) IsMint() bool {
	return e.Type == TypeTransfer && e.From == (common.Address{})
}
