// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package cell

import (
	"encoding/hex"
	"strings"
)

// String prints the cell tree in fift notation. Each line lists the data
// bits of one cell in hex, a trailing '_' marks a completion tag terminating
// data that is not a multiple of 4 bits. Children are indented by one space.
func (c *Cell) String() string {
	var builder strings.Builder
	c.dump(&builder, "")
	return builder.String()
}

func (c *Cell) dump(out *strings.Builder, indent string) {
	out.WriteString(indent)
	if c.IsExotic() {
		out.WriteByte('p')
	} else {
		out.WriteByte('x')
	}
	out.WriteByte('{')
	out.WriteString(c.BitsHex())
	out.WriteByte('}')
	for _, ref := range c.refs {
		out.WriteByte('\n')
		ref.dump(out, indent+" ")
	}
}

// BitsHex returns the data bits of the cell as upper case hex digits.
func (c *Cell) BitsHex() string {
	if c.bitsLen%4 == 0 {
		return strings.ToUpper(hex.EncodeToString(c.data))[:c.bitsLen/4]
	}
	str := strings.ToUpper(hex.EncodeToString(c.paddedData()))
	if c.bitsLen%8 <= 3 {
		str = str[:len(str)-1]
	}
	return str + "_"
}
