// README: Extractor turns a chat message plus stored trip context into segment requests.
package extract

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

type Extractor struct {
	strategies []Strategy
	logger     *zap.Logger
}

// NewExtractor creates an Extractor trying strategies in the given order.
// With no strategies, DefaultStrategies(nil, logger) is used.
func NewExtractor(logger *zap.Logger, strategies ...Strategy) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(strategies) == 0 {
		strategies = DefaultStrategies(nil, logger)
	}
	return &Extractor{strategies: strategies, logger: logger}
}

// Extract returns the route requested by msg. The first strategy that names
// at least two locations wins. ok is false when nothing actionable was found
// and the caller should ask the user to clarify.
func (e *Extractor) Extract(ctx context.Context, msg string, prior Prior) (*Extraction, bool) {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return nil, false
	}

	prefs, hasPrefs := ParsePreferences(msg)
	in := Input{Message: msg, Prior: prior, Preferences: prefs, HasPrefs: hasPrefs}

	for _, s := range e.strategies {
		chain, ok := s.Match(ctx, in)
		if !ok || len(chain) < 2 {
			continue
		}
		e.logger.Debug("extract: matched",
			zap.String("strategy", s.Name()),
			zap.Strings("chain", chain),
			zap.Bool("preferences", hasPrefs))
		return &Extraction{
			Requests:     Pairs(chain),
			Origin:       chain[0],
			Destinations: append([]string(nil), chain[1:]...),
			Preferences:  prefs,
			HasPrefs:     hasPrefs,
			Strategy:     s.Name(),
		}, true
	}

	e.logger.Debug("extract: no route found", zap.Int("strategies", len(e.strategies)))
	return nil, false
}
