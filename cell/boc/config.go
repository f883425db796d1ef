// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package boc

// Config defines the optional sections written when serializing a bag of
// cells. Decoding accepts any combination of them.
type Config struct {
	// A descriptive name for this configuration. It has no effect except for
	// logging and debugging purposes.
	Name string

	// If set, an index of cell end offsets is written after the root list,
	// allowing random access to cells without parsing their predecessors.
	HasIndex bool

	// If set, a CRC32C checksum of all preceding bytes is appended.
	HasCRC32C bool

	// If set, the index entries carry a cache flag in their lowest bit.
	// Requires HasIndex. No cell is ever marked as cacheable by the encoder.
	HasCacheBits bool
}

var DefaultConfig = Config{
	Name: "Default",
}

var CRC32CConfig = Config{
	Name:      "CRC32C",
	HasCRC32C: true,
}

var IndexedConfig = Config{
	Name:      "Indexed",
	HasIndex:  true,
	HasCRC32C: true,
}

var allConfigs = []Config{DefaultConfig, CRC32CConfig, IndexedConfig}

// GetConfigByName returns the predefined configuration with the given name.
func GetConfigByName(name string) (Config, bool) {
	for _, config := range allConfigs {
		if config.Name == name {
			return config, true
		}
	}
	return Config{}, false
}

// ConfigNames lists the names of all predefined configurations.
func ConfigNames() []string {
	res := make([]string, 0, len(allConfigs))
	for _, config := range allConfigs {
		res = append(res, config.Name)
	}
	return res
}

func (c Config) String() string {
	return c.Name
}
