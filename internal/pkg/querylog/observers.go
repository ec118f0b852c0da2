package querylog

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// LogObserver writes every statement to the logger attached to the context
// (zerolog.Ctx), falling back to fallback when none is attached.
func LogObserver(fallback zerolog.Logger) Observer {
	return func(ctx context.Context, entry Entry, elapsed time.Duration, err error) {
		lgr := zerolog.Ctx(ctx)
		if lgr.GetLevel() == zerolog.Disabled {
			lgr = &fallback
		}

		if err != nil {
			lgr.Warn().Err(err).
				Str("operation", Operation(entry.SQL)).
				Str("sql", entry.SQL).
				Dur("elapsed", elapsed).
				Msg("Statement failed")
			return
		}
		lgr.Debug().
			Str("operation", Operation(entry.SQL)).
			Str("sql", entry.SQL).
			Int("params", len(entry.Params)).
			Float64("durationMs", entry.Duration).
			Msg("Statement executed")
	}
}
