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
	"math/big"
	"strings"
	"testing"

	"github.com/Fantom-foundation/Cellar/cell"
	"github.com/Fantom-foundation/Cellar/common"
	"github.com/Fantom-foundation/Cellar/tlb"
	"github.com/stretchr/testify/require"
)

const (
	currencyBOC       = "b5ee9c720101010100070000094c143b1d14"
	anycastAddressBOC = "b5ee9c7201010101002800004bbe031053100134ea6c68e2f2cee9619bdd2732493f3a1361eccd7c5267a9eb3c5dcebc533bb6"
	masterAddressBOC  = "b5ee9c720101010100240000439fe00000000000000000000000000000000000000000000000000000000000000010"
)

func TestCurrencyCollection_DecodesNetworkValue(t *testing.T) {
	var c CurrencyCollection
	require.NoError(t, tlb.FromBOCHex(currencyBOC, &c))
	require.Equal(t, 0, c.Grams.Cmp(GramsFromUint64(3242439121)))
	require.Empty(t, c.Other)
	require.Equal(t, "3.242439121", c.Grams.String())

	encoded, err := tlb.ToBOCHex(&c, false)
	require.NoError(t, err)
	require.Equal(t, currencyBOC, encoded)
}

func TestCurrencyCollection_ZeroAmountRoundTrip(t *testing.T) {
	var zero CurrencyCollection
	c, err := tlb.ToCell(&zero)
	require.NoError(t, err)
	// 4-bit length 0 and an empty dictionary bit
	require.Equal(t, 5, c.BitsLen())

	var decoded CurrencyCollection
	require.NoError(t, tlb.FromCell(c, &decoded))
	require.Equal(t, 0, decoded.Grams.Nano().Sign())

	again, err := tlb.ToCell(&decoded)
	require.NoError(t, err)
	require.True(t, c.Equal(again))
}

func TestCurrencyCollection_ExtraCurrenciesRoundTrip(t *testing.T) {
	huge, ok := new(big.Int).SetString("123456789012345678901234567890", 10)
	require.True(t, ok)
	in := CurrencyCollection{
		Grams: GramsFromUint64(1_500_000_000),
		Other: map[uint32]*big.Int{
			1:          big.NewInt(100),
			239:        huge,
			0xffffffff: big.NewInt(0),
		},
	}
	c, err := tlb.ToCell(&in)
	require.NoError(t, err)
	require.Equal(t, 1, c.RefsCount())

	var out CurrencyCollection
	require.NoError(t, tlb.FromCell(c, &out))
	require.Equal(t, "1.5", out.Grams.String())
	require.Len(t, out.Other, len(in.Other))
	for id, amount := range in.Other {
		require.Zero(t, amount.Cmp(out.Other[id]), "currency %d", id)
	}
}

func TestCurrencyCollection_RejectsNegativeAmounts(t *testing.T) {
	tests := map[string]CurrencyCollection{
		"grams": {Grams: NewGrams(big.NewInt(-1))},
		"extra": {Other: map[uint32]*big.Int{7: big.NewInt(-5)}},
		"nil":   {Other: map[uint32]*big.Int{7: nil}},
	}
	for name, c := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := tlb.ToCell(&c)
			require.ErrorIs(t, err, ErrNegativeAmount)
		})
	}
}

func TestGrams_LimitedToFifteenBytes(t *testing.T) {
	limit := new(big.Int).Lsh(big.NewInt(1), 120)
	largest := NewGrams(new(big.Int).Sub(limit, big.NewInt(1)))
	_, err := tlb.ToCell(&largest)
	require.NoError(t, err)

	tooLarge := NewGrams(limit)
	_, err = tlb.ToCell(&tooLarge)
	require.ErrorIs(t, err, cell.ErrNumberTooWide)
}

func TestGrams_String(t *testing.T) {
	tests := map[uint64]string{
		0:             "0",
		1:             "0.000000001",
		1_000_000_000: "1",
		1_230_000_000: "1.23",
		3242439121:    "3.242439121",
	}
	for nano, want := range tests {
		require.Equal(t, want, GramsFromUint64(nano).String())
	}
}

func TestAddress_DecodesAnycastAddress(t *testing.T) {
	var addr MsgAddress
	require.NoError(t, tlb.FromBOCHex(anycastAddressBOC, Address(&addr)))

	account, err := common.HashFromHex("4d3a9b1a38bcb3ba5866f749cc924fce84d87b335f1499ea7acf1773af14ceed")
	require.NoError(t, err)
	want := &AddressStd{
		Anycast:     &Anycast{RewritePrefix: tlb.BitString{Data: []byte{3, 16, 83, 16}, Len: 30}},
		WorkchainID: 0,
		AccountID:   account,
	}
	require.Equal(t, want, addr)
	require.Equal(t, 30, want.Anycast.Depth())

	encoded, err := tlb.ToBOCHex(Address(&addr), false)
	require.NoError(t, err)
	require.Equal(t, anycastAddressBOC, encoded)
}

func TestAddress_DecodesMasterchainAddress(t *testing.T) {
	var addr MsgAddress
	require.NoError(t, tlb.FromBOCHex(masterAddressBOC, Address(&addr)))
	require.Equal(t, &AddressStd{WorkchainID: -1}, addr)
	require.Equal(t, "-1:"+strings.Repeat("0", 64), addr.(*AddressStd).String())

	var internal MsgAddressInt
	require.NoError(t, tlb.FromBOCHex(masterAddressBOC, IntAddress(&internal)))
	require.Equal(t, int32(-1), internal.Workchain())

	encoded, err := tlb.ToBOCHex(IntAddress(&internal), false)
	require.NoError(t, err)
	require.Equal(t, masterAddressBOC, encoded)
}

func TestAddress_AllKindsRoundTrip(t *testing.T) {
	tests := map[string]MsgAddress{
		"none":   &AddressNone{},
		"extern": &AddressExtern{Address: tlb.BitString{Data: []byte{0xab, 0xc0}, Len: 12}},
		"std":    &AddressStd{WorkchainID: 0, AccountID: common.Sha256([]byte("account"))},
		"var": &AddressVar{
			Anycast:     &Anycast{RewritePrefix: tlb.BitString{Data: []byte{0x80}, Len: 1}},
			WorkchainID: 1 << 20,
			Address:     tlb.BitString{Data: []byte{0xde, 0xad, 0xbe, 0xef, 0xf0}, Len: 36},
		},
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			c, err := tlb.ToCell(Address(&in))
			require.NoError(t, err)

			var out MsgAddress
			require.NoError(t, tlb.FromCell(c, Address(&out)))
			require.Equal(t, in, out)
		})
	}
}

func TestAddress_KindsAreRestrictedByField(t *testing.T) {
	var none MsgAddress = &AddressNone{}
	c, err := tlb.ToCell(Address(&none))
	require.NoError(t, err)

	var internal MsgAddressInt
	require.ErrorIs(t, tlb.FromCell(c, IntAddress(&internal)), tlb.ErrOutOfOptions)

	var external MsgAddressExt
	require.NoError(t, tlb.FromCell(c, ExtAddress(&external)))
	require.IsType(t, &AddressNone{}, external)
}

func TestAddress_UnionsHaveDistinctPrefixes(t *testing.T) {
	require.NoError(t, msgAddress.Check())
	require.NoError(t, msgAddressInt.Check())
	require.NoError(t, msgAddressExt.Check())
}

func TestAnycast_DepthIsValidated(t *testing.T) {
	for _, depth := range []int{0, 31} {
		var addr MsgAddress = &AddressStd{
			Anycast: &Anycast{RewritePrefix: tlb.BitString{Data: make([]byte, 4), Len: depth}},
		}
		_, err := tlb.ToCell(Address(&addr))
		require.ErrorIs(t, err, ErrInvalidAnycast, "depth %d", depth)
	}

	// addr_std with anycast of depth 0
	b := cell.NewBuilder()
	require.NoError(t, b.WriteUint(0b10_1_00000, 8))
	c, err := b.Build()
	require.NoError(t, err)
	var addr MsgAddress
	require.ErrorIs(t, tlb.FromCell(c, Address(&addr)), ErrInvalidAnycast)
}

func TestParseRawAddress(t *testing.T) {
	want := &AddressStd{WorkchainID: -1, AccountID: common.Sha256([]byte("wallet"))}
	got, err := ParseRawAddress(want.String())
	require.NoError(t, err)
	require.Equal(t, want, got)

	for _, invalid := range []string{"", "0", "x:00", "300:" + strings.Repeat("0", 64), "0:abc"} {
		_, err := ParseRawAddress(invalid)
		require.ErrorIs(t, err, ErrInvalidAddress, invalid)
	}
}
