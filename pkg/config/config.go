// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

// Package config loads node configuration once at startup and exposes it as
// a package-level snapshot, mirroring the teacher's config.Get() idiom
// (see pkg/core/mempool/mempool.go's config.Get().Mempool.PoolType).
//
// TOML (github.com/BurntSushi/toml) is the structured primary format; an
// optional node.properties file (github.com/magiconair/properties) is
// merged on top for flat ops-style overrides.
package config

import (
	"os"
	"sync/atomic"

	"github.com/BurntSushi/toml"
	"github.com/magiconair/properties"
)

// Heights is the set of protocol-fixed activation heights the validator
// consults.
type Heights struct {
	MonetarySystemBlock    uint64 `toml:"monetary_system_block"`
	DigitalGoodsStoreBlock uint64 `toml:"digital_goods_store_block"`
}

// Naming carries the currency-name/code shape constants.
type Naming struct {
	MinNameLength   int    `toml:"min_name_length"`
	MaxNameLength   int    `toml:"max_name_length"`
	CodeLength      int    `toml:"code_length"`
	MaxDescLength   int    `toml:"max_description_length"`
	Alphabet        string `toml:"alphabet"`
	AllowedCodeLets string `toml:"allowed_code_letters"`
}

// Drift carries the hard-coded clock-tolerance and deadline constants.
type Drift struct {
	TimestampToleranceSeconds int64 `toml:"timestamp_tolerance_seconds"`
	MaxDeadlineMinutes        int64 `toml:"max_deadline_minutes"`
	RebroadcastStalenessSecs  int64 `toml:"rebroadcast_staleness_seconds"`
}

// WorkerPeriods carries the three worker tick periods.
type WorkerPeriods struct {
	SweepSeconds       int `toml:"sweep_seconds"`
	RebroadcastSeconds int `toml:"rebroadcast_seconds"`
	PeerPullSeconds    int `toml:"peer_pull_seconds"`
}

// Storage carries on-disk paths for the mempool and confirmed-ledger index.
type Storage struct {
	MempoolDBPath     string `toml:"mempool_db_path"`
	LedgerIndexDBPath string `toml:"ledger_index_db_path"`
}

// Mempool carries pool sizing knobs, named after the teacher's
// config.Get().Mempool section.
type Mempool struct {
	PoolType     string `toml:"pool_type"`
	PreallocTxs  int    `toml:"prealloc_txs"`
	MaxPendingLen int   `toml:"max_pending_len"`
}

// Logging carries logger setup knobs.
type Logging struct {
	Level      string `toml:"level"`
	FilePath   string `toml:"file_path"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// Config is the full node configuration snapshot.
type Config struct {
	Heights Heights       `toml:"heights"`
	Naming  Naming        `toml:"naming"`
	Drift   Drift         `toml:"drift"`
	Workers WorkerPeriods `toml:"workers"`
	Storage Storage       `toml:"storage"`
	Mempool Mempool       `toml:"mempool"`
	Logging Logging       `toml:"logging"`
}

// Default returns the built-in defaults: named activation heights and
// hard-coded drift tolerances.
func Default() Config {
	return Config{
		Heights: Heights{
			MonetarySystemBlock:    0,
			DigitalGoodsStoreBlock: 0,
		},
		Naming: Naming{
			MinNameLength:   3,
			MaxNameLength:   10,
			CodeLength:      3,
			MaxDescLength:   1000,
			Alphabet:        "abcdefghijklmnopqrstuvwxyz0123456789",
			AllowedCodeLets: "ABCDEFGHIJKLMNOPQRSTUVWXYZ",
		},
		Drift: Drift{
			TimestampToleranceSeconds: 15,
			MaxDeadlineMinutes:        1440,
			RebroadcastStalenessSecs:  30,
		},
		Workers: WorkerPeriods{
			SweepSeconds:       1,
			RebroadcastSeconds: 60,
			PeerPullSeconds:    5,
		},
		Storage: Storage{
			MempoolDBPath:     "mempool.db",
			LedgerIndexDBPath: "ledgerindex.db",
		},
		Mempool: Mempool{
			PoolType:      "sqlite",
			PreallocTxs:   100,
			MaxPendingLen: 1000,
		},
		Logging: Logging{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

var current atomic.Value

func init() {
	current.Store(Default())
}

// Get returns the current configuration snapshot. Safe for concurrent use.
func Get() Config {
	return current.Load().(Config)
}

// Load reads a TOML config file into the default configuration and, if
// propertiesPath names an existing file, merges its flat key=value
// overrides on top before installing the result as the process-wide
// snapshot returned by Get.
func Load(tomlPath, propertiesPath string) error {
	cfg := Default()

	if tomlPath != "" {
		if _, err := toml.DecodeFile(tomlPath, &cfg); err != nil {
			return err
		}
	}

	if propertiesPath != "" {
		if _, err := os.Stat(propertiesPath); err == nil {
			p, err := properties.LoadFile(propertiesPath, properties.UTF8)
			if err != nil {
				return err
			}
			applyPropertyOverrides(&cfg, p)
		}
	}

	current.Store(cfg)
	return nil
}

// applyPropertyOverrides merges the handful of knobs ops teams typically
// flip per-environment without touching the checked-in TOML file.
func applyPropertyOverrides(cfg *Config, p *properties.Properties) {
	if v, ok := p.Get("mempool.pool_type"); ok {
		cfg.Mempool.PoolType = v
	}
	if v, ok := p.Get("storage.mempool_db_path"); ok {
		cfg.Storage.MempoolDBPath = v
	}
	if v, ok := p.Get("logging.level"); ok {
		cfg.Logging.Level = v
	}
	if v, ok := p.Get("logging.file_path"); ok {
		cfg.Logging.FilePath = v
	}
}

// Set installs cfg as the current snapshot. Used by tests.
func Set(cfg Config) {
	current.Store(cfg)
}
