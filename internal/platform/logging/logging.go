// Package logging は zerolog のロガーを設定から組み立てます。
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/ogurasousui/hr-lifecycle-engine/internal/platform/config"
)

// New は設定に従ったロガーを返します。w が nil の場合は標準出力に書き込みます。
func New(cfg config.LoggingConfig, w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("logging: parse level %q: %w", cfg.Level, err)
	}
	if w == nil {
		w = os.Stdout
	}
	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Str("service", "hr-lifecycle").Logger(), nil
}
