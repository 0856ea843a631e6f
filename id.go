package scarcity

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/scarcity/id"
)

// ID is the TypeID used for events and audit records.
type ID = id.ID

// Address is the identity type of callers, owners, minters and the admin.
type Address = common.Address

// HexToAddress converts a hex string such as "0xabc..." into an Address.
var HexToAddress = common.HexToAddress
