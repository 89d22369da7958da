package intel

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/marthaea/link-guardian-safecheck/internal/target"
)

// DefaultTimeout bounds every external lookup. After it expires the
// source is treated as unavailable; the scan continues heuristic-only.
const DefaultTimeout = 15 * time.Second

// Source is one external reputation provider. Lookup must honor the
// context deadline and return an error for any failure mode (timeout,
// non-2xx, malformed payload) — the caller turns errors into absence.
type Source interface {
	Name() string
	Lookup(ctx context.Context, tgt target.Parsed) (Signal, error)
}

// Gather queries all sources concurrently and returns the signals from
// the ones that succeeded, in the order the sources were given. A slow
// or failing source never cancels or poisons the others; its signal is
// simply absent from the result.
func Gather(ctx context.Context, sources []Source, tgt target.Parsed, timeout time.Duration, logger zerolog.Logger) []Signal {
	if len(sources) == 0 {
		return nil
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	results := make([]*Signal, len(sources))
	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			sig, err := src.Lookup(callCtx, tgt)
			if err != nil {
				logger.Warn().
					Str("source", src.Name()).
					Str("domain", tgt.Domain).
					Err(err).
					Msg("external signal unavailable")
				return
			}
			results[i] = &sig
		}(i, src)
	}
	wg.Wait()

	signals := make([]Signal, 0, len(sources))
	for _, r := range results {
		if r != nil {
			signals = append(signals, *r)
		}
	}
	return signals
}
