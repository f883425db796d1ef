// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package block

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Fantom-foundation/Cellar/cell"
	"github.com/Fantom-foundation/Cellar/common"
	"github.com/Fantom-foundation/Cellar/tlb"
)

const (
	ErrInvalidAnycast = common.ConstError("invalid anycast")
	ErrInvalidAddress = common.ConstError("invalid address")
)

const (
	maxAnycastDepth = 30
	anycastLenBits  = 5
	varAddrLenBits  = 9
)

// MsgAddress is any of the four address kinds.
type MsgAddress interface {
	tlb.Variant
	msgAddress()
}

// MsgAddressInt is an address of an account inside the network.
type MsgAddressInt interface {
	MsgAddress
	Workchain() int32
}

// MsgAddressExt is an address outside of the network, or no address at all.
type MsgAddressExt interface {
	MsgAddress
	external()
}

func newNone() *AddressNone     { return &AddressNone{} }
func newExtern() *AddressExtern { return &AddressExtern{} }
func newStd() *AddressStd       { return &AddressStd{} }
func newVar() *AddressVar       { return &AddressVar{} }

var (
	msgAddress = tlb.NewUnion("MsgAddress",
		func() MsgAddress { return newNone() },
		func() MsgAddress { return newExtern() },
		func() MsgAddress { return newStd() },
		func() MsgAddress { return newVar() },
	)
	msgAddressInt = tlb.NewUnion("MsgAddressInt",
		func() MsgAddressInt { return newStd() },
		func() MsgAddressInt { return newVar() },
	)
	msgAddressExt = tlb.NewUnion("MsgAddressExt",
		func() MsgAddressExt { return newNone() },
		func() MsgAddressExt { return newExtern() },
	)
)

// Address is a record field holding any message address.
func Address(v *MsgAddress) tlb.Type { return msgAddress.Field(v) }

// IntAddress is a record field holding an internal address.
func IntAddress(v *MsgAddressInt) tlb.Type { return msgAddressInt.Field(v) }

// ExtAddress is a record field holding an external address or none.
func ExtAddress(v *MsgAddressExt) tlb.Type { return msgAddressExt.Field(v) }

// LoadAddress decodes any message address.
func LoadAddress(p *cell.Parser) (MsgAddress, error) {
	return msgAddress.Load(p)
}

// AddressNone is addr_none$00.
type AddressNone struct{}

func (*AddressNone) Prefix() tlb.Prefix            { return tlb.Prefix{Value: 0b00, Bits: 2} }
func (*AddressNone) LoadFrom(p *cell.Parser) error { return nil }
func (*AddressNone) StoreTo(b *cell.Builder) error { return nil }
func (*AddressNone) String() string                { return "none" }
func (*AddressNone) msgAddress()                   {}
func (*AddressNone) external()                     {}

// AddressExtern is addr_extern$01 len:(## 9) external_address:(bits len).
type AddressExtern struct {
	Address tlb.BitString
}

func (*AddressExtern) Prefix() tlb.Prefix { return tlb.Prefix{Value: 0b01, Bits: 2} }
func (*AddressExtern) msgAddress()        {}
func (*AddressExtern) external()          {}

func (a *AddressExtern) LoadFrom(p *cell.Parser) error {
	return tlb.VarBits(&a.Address, varAddrLenBits).LoadFrom(p)
}

func (a *AddressExtern) StoreTo(b *cell.Builder) error {
	return tlb.VarBits(&a.Address, varAddrLenBits).StoreTo(b)
}

func (a *AddressExtern) String() string {
	return "ext:" + a.Address.String()
}

// Anycast is anycast_info$_ depth:(#<= 30) { depth >= 1 }
// rewrite_pfx:(bits depth).
type Anycast struct {
	RewritePrefix tlb.BitString
}

// Depth is the number of leading address bits replaced by the prefix.
func (a *Anycast) Depth() int {
	return a.RewritePrefix.Len
}

func (a *Anycast) check() error {
	if depth := a.Depth(); depth < 1 || depth > maxAnycastDepth {
		return fmt.Errorf("%w: depth %d not in [1, %d]", ErrInvalidAnycast, depth, maxAnycastDepth)
	}
	return nil
}

func (a *Anycast) LoadFrom(p *cell.Parser) error {
	if err := tlb.VarBits(&a.RewritePrefix, anycastLenBits).LoadFrom(p); err != nil {
		return err
	}
	return a.check()
}

func (a *Anycast) StoreTo(b *cell.Builder) error {
	if err := a.check(); err != nil {
		return err
	}
	return tlb.VarBits(&a.RewritePrefix, anycastLenBits).StoreTo(b)
}

// AddressStd is addr_std$10 anycast:(Maybe Anycast) workchain_id:int8
// address:bits256.
type AddressStd struct {
	Anycast     *Anycast
	WorkchainID int8
	AccountID   common.Hash
}

func (*AddressStd) Prefix() tlb.Prefix { return tlb.Prefix{Value: 0b10, Bits: 2} }
func (*AddressStd) msgAddress()        {}

func (a *AddressStd) Workchain() int32 { return int32(a.WorkchainID) }

func (a *AddressStd) fields() tlb.Type {
	return tlb.Record(
		tlb.Maybe[Anycast](&a.Anycast),
		tlb.Int(&a.WorkchainID, 8),
		tlb.Hash(&a.AccountID),
	)
}

func (a *AddressStd) LoadFrom(p *cell.Parser) error { return a.fields().LoadFrom(p) }
func (a *AddressStd) StoreTo(b *cell.Builder) error { return a.fields().StoreTo(b) }

// String returns the raw form workchain:account.
func (a *AddressStd) String() string {
	return fmt.Sprintf("%d:%s", a.WorkchainID, a.AccountID.Hex())
}

// ParseRawAddress parses the raw form workchain:account of a standard
// address.
func ParseRawAddress(s string) (*AddressStd, error) {
	wc, account, found := strings.Cut(s, ":")
	if !found {
		return nil, fmt.Errorf("%w: missing workchain in %q", ErrInvalidAddress, s)
	}
	workchain, err := strconv.ParseInt(wc, 10, 8)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	id, err := common.HashFromHex(account)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return &AddressStd{WorkchainID: int8(workchain), AccountID: id}, nil
}

// AddressVar is addr_var$11 anycast:(Maybe Anycast) addr_len:(## 9)
// workchain_id:int32 address:(bits addr_len). The length precedes the
// workchain, so the address cannot be a single VarBits field.
type AddressVar struct {
	Anycast     *Anycast
	WorkchainID int32
	Address     tlb.BitString
}

func (*AddressVar) Prefix() tlb.Prefix { return tlb.Prefix{Value: 0b11, Bits: 2} }
func (*AddressVar) msgAddress()        {}

func (a *AddressVar) Workchain() int32 { return a.WorkchainID }

func (a *AddressVar) LoadFrom(p *cell.Parser) error {
	if err := tlb.Maybe[Anycast](&a.Anycast).LoadFrom(p); err != nil {
		return err
	}
	length, err := p.ReadUint(varAddrLenBits)
	if err != nil {
		return err
	}
	if err := tlb.Int(&a.WorkchainID, 32).LoadFrom(p); err != nil {
		return err
	}
	data, err := p.ReadBits(int(length))
	if err != nil {
		return err
	}
	a.Address = tlb.BitString{Data: data, Len: int(length)}
	return nil
}

func (a *AddressVar) StoreTo(b *cell.Builder) error {
	if err := tlb.Maybe[Anycast](&a.Anycast).StoreTo(b); err != nil {
		return err
	}
	if a.Address.Len < 0 {
		return fmt.Errorf("%w: negative length %d", ErrInvalidAddress, a.Address.Len)
	}
	if err := b.WriteUint(uint64(a.Address.Len), varAddrLenBits); err != nil {
		return err
	}
	if err := tlb.Int(&a.WorkchainID, 32).StoreTo(b); err != nil {
		return err
	}
	return b.WriteBits(a.Address.Data, a.Address.Len)
}

func (a *AddressVar) String() string {
	return fmt.Sprintf("%d:%s", a.WorkchainID, a.Address)
}
