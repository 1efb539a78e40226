// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

// Package log wires up the process-wide logrus root logger: a prefixed,
// color-aware formatter on the terminal and, when configured, a
// lumberjack-rotated file sink. Components derive their own *logrus.Entry
// via WithPrefix, matching the teacher's
// logger.WithFields(logger.Fields{"prefix": "mempool"}) idiom.
package log

import (
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	logrus "github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/monetary-system/msnode/pkg/config"
)

var root = logrus.New()

func init() {
	configureOutput(os.Stdout, "")
}

// Setup applies the logging section of cfg to the root logger: level, and
// (if FilePath is set) a lumberjack-rotated file writer in addition to the
// terminal.
func Setup(cfg config.Logging) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	root.SetLevel(level)

	configureOutput(os.Stdout, cfg.FilePath)

	if cfg.FilePath != "" {
		root.SetOutput(io.MultiWriter(root.Out, &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}))
	}
}

func configureOutput(stdout *os.File, filePath string) {
	root.Formatter = &prefixed.TextFormatter{
		FullTimestamp: true,
	}

	if isatty.IsTerminal(stdout.Fd()) {
		root.Out = colorable.NewColorable(stdout)
	} else {
		root.Out = stdout
	}
}

// WithPrefix returns a derived logger entry tagged with the given component
// prefix, e.g. WithPrefix("mempool"), WithPrefix("worker.sweeper").
func WithPrefix(prefix string) *logrus.Entry {
	return root.WithFields(logrus.Fields{"prefix": prefix})
}
