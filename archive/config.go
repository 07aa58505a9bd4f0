// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package archive

// default thresholds
const (
	DefaultMaxActiveRecords    = 2000
	DefaultSettleToRecords     = 1000
	DefaultMaxRecordsInArchive = 10000000
	DefaultMaxRecordsToArchive = 10000
	DefaultMaxArchivePages     = 62500
)

// Configuration - archival thresholds
type Configuration struct {
	MaxActiveRecords    uint64   `gluamapper:"max_active_records" json:"max_active_records"`
	SettleToRecords     uint64   `gluamapper:"settle_to_records" json:"settle_to_records"`
	MaxRecordsInArchive uint64   `gluamapper:"max_records_in_archive_instance" json:"max_records_in_archive_instance"`
	MaxRecordsToArchive uint64   `gluamapper:"max_records_to_archive" json:"max_records_to_archive"`
	MaxArchivePages     uint64   `gluamapper:"max_archive_pages" json:"max_archive_pages"`
	ArchiveCycles       uint64   `gluamapper:"archive_cycles" json:"archive_cycles"`
	ArchiveControllers  []string `gluamapper:"archive_controllers" json:"archive_controllers"`
	HardCapacity        uint64   `gluamapper:"hard_capacity" json:"hard_capacity"`
	Directory           string   `gluamapper:"directory" json:"directory"`
}

// DefaultConfiguration - thresholds used when none are configured
func DefaultConfiguration() Configuration {
	return Configuration{
		MaxActiveRecords:    DefaultMaxActiveRecords,
		SettleToRecords:     DefaultSettleToRecords,
		MaxRecordsInArchive: DefaultMaxRecordsInArchive,
		MaxRecordsToArchive: DefaultMaxRecordsToArchive,
		MaxArchivePages:     DefaultMaxArchivePages,
	}
}

// Normalise - fill zero values with defaults and keep the thresholds ordered
func (c *Configuration) Normalise() {
	if 0 == c.MaxActiveRecords {
		c.MaxActiveRecords = DefaultMaxActiveRecords
	}
	if 0 == c.SettleToRecords {
		c.SettleToRecords = DefaultSettleToRecords
	}
	if c.SettleToRecords > c.MaxActiveRecords {
		c.SettleToRecords = c.MaxActiveRecords
	}
	if 0 == c.MaxRecordsInArchive {
		c.MaxRecordsInArchive = DefaultMaxRecordsInArchive
	}
	if 0 == c.MaxRecordsToArchive {
		c.MaxRecordsToArchive = DefaultMaxRecordsToArchive
	}
	if 0 == c.HardCapacity {
		c.HardCapacity = 4 * c.MaxActiveRecords
	}
	if c.HardCapacity <= c.MaxActiveRecords {
		c.HardCapacity = c.MaxActiveRecords + 1
	}
}
