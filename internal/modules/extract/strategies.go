package extract

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

const (
	monthAlt  = `january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept?|oct|nov|dec`
	periodAlt = `monday|tuesday|wednesday|thursday|friday|saturday|sunday|weekend|week|month|year|spring|summer|autumn|fall|winter|holidays?|christmas|easter`
)

var (
	clauseRe = regexp.MustCompile(`[.;!?\n]+(?:\s+|$)|[;!?\n]+`)
	abbrevRe = regexp.MustCompile(`(?i)\b(st|mt|ft)\.\s*`)

	fromRe   = regexp.MustCompile(`(?i)\bfrom\s+`)
	toRe     = regexp.MustCompile(`(?i)\s+to\s+`)
	verbRe   = regexp.MustCompile(`(?i)^(?:visit|see|explore|tour|go|drive|do|be|stay|spend|have|get|make|take|plan|travel|check|hike|camp|meet|try|find|know|help|break|split|reach|arrive|head|end|finish|return|come|continue|keep|leave|start)\b`)
	thenToRe = regexp.MustCompile(`(?i)\s*,?\s*\b(?:and\s+)?(?:then|after\s+that|continuing|continue)\s+(?:on\s+)?(?:to|towards)\s+`)
	viaRe    = regexp.MustCompile(`(?i)\s+(?:via|through|with\s+(?:a\s+)?stop(?:over)?s?\s+(?:in|at))\s+`)

	cutRe     = regexp.MustCompile(`(?i)\s*(?:,|\b(?:and|then|but|because|so|where|which|for|with|by|using|via|through|to\s+(?:see|visit|explore))\b)`)
	listCutRe = regexp.MustCompile(`(?i)\s+(?:but|because|so|where|which|for|with|by|using|starting|departing|leaving|from|then\s+(?:back|home|return))\b`)
	listSepRe = regexp.MustCompile(`(?i)\s*,\s*(?:and\s+|&\s*|then\s+)?|\s+(?:and|then)\s+|\s*&\s*`)

	temporalRe = regexp.MustCompile(`(?i)\s+(?:(?:in|on|during|for|by|around|before|after|over|starting|until|till|next|this|early|late|mid|the)\s+)+(?:\d|(?:` + monthAlt + `|` + periodAlt + `)\b).*$|\s+(?:today|tomorrow|tonight|soon)\b.*$`)

	visitRe  = regexp.MustCompile(`(?i)\b(?:visit(?:ing)?|see(?:ing)?|tour(?:ing)?|explor(?:e|ing)|go(?:ing)?\s+to|stops?\s+(?:in|at))\s+(.+)$`)
	departRe = regexp.MustCompile(`(?i)\b(?:depart(?:ing|s)?|leav(?:e|ing)|start(?:ing)?|set(?:ting)?\s+off|head(?:ing)?\s+out|begin(?:ning)?)\s+(?:out\s+)?(?:from|in|at)\s+([^,.;!?\n]+)`)
	capitalRe = regexp.MustCompile(`\p{Lu}[\p{L}'’-]+(?:\s+(?:(?:de|del|la|le|di|da|do|dos|das|von|van|of|upon)\s+)?\p{Lu}[\p{L}'’-]+)*`)

	intentRe = regexp.MustCompile(`(?i)\b(?:split|break\s+(?:it\s+|this\s+|that\s+|the\s+(?:route|trip)\s+|(?:the\s+)?segments?\s+)?(?:down|up)|breakdown|optimi[sz]e|re-?calculate|re-?plan|re-?route|recompute|update\s+(?:the\s+|my\s+)?route|shorter\s+(?:days|legs|segments|drives))\b`)
)

// DefaultStrategies returns the extraction strategies in priority order.
// The language-model strategy is included only when parser is non-nil.
func DefaultStrategies(parser IntentParser, logger *zap.Logger) []Strategy {
	strategies := []Strategy{explicitFromTo{}, enumeratedList{}, namedOrigin{}}
	if parser != nil {
		strategies = append(strategies, llmIntent{parser: parser, logger: logger})
	}
	return append(strategies, priorState{})
}

func clauses(msg string) []string {
	msg = abbrevRe.ReplaceAllString(msg, "$1 ")
	var out []string
	for _, c := range clauseRe.Split(msg, -1) {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// trimPlace cuts a phrase down to the place name it starts with.
func trimPlace(s string) string {
	if loc := cutRe.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	s = temporalRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// splitList splits an enumeration such as "A, B and C" into its items.
func splitList(s string) []string {
	if loc := listCutRe.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	s = temporalRe.ReplaceAllString(s, "")
	var out []string
	for _, item := range listSepRe.Split(s, -1) {
		if item = strings.TrimSpace(temporalRe.ReplaceAllString(item, "")); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// explicitFromTo handles "from A to B", optionally "via C" or "with a stop
// in C", and "then to D" continuations. Several clauses chain in order.
type explicitFromTo struct{}

func (explicitFromTo) Name() string { return "explicit_from_to" }

func (explicitFromTo) Match(_ context.Context, in Input) ([]string, bool) {
	var chain []string
	for _, clause := range clauses(in.Message) {
		starts := fromRe.FindAllStringIndex(clause, -1)
		for i, loc := range starts {
			end := len(clause)
			if i+1 < len(starts) {
				end = starts[i+1][0]
			}
			if stops := parseFromTo(clause[loc[1]:end]); len(stops) >= 2 {
				chain = appendChain(chain, stops)
			}
		}
	}
	return chain, len(chain) >= 2
}

func parseFromTo(piece string) []string {
	var loc []int
	for _, l := range toRe.FindAllStringIndex(piece, -1) {
		// "to visit", "to see": an infinitive, not a destination.
		if !verbRe.MatchString(piece[l[1]:]) {
			loc = l
			break
		}
	}
	if loc == nil {
		return nil
	}
	origin, viaBefore := splitVia(piece[:loc[0]])
	parts := thenToRe.Split(piece[loc[1]:], -1)
	dest, viaAfter := splitVia(parts[0])

	stops := []string{trimPlace(origin)}
	stops = append(stops, viaBefore...)
	stops = append(stops, viaAfter...)
	stops = append(stops, trimPlace(dest))
	for _, p := range parts[1:] {
		stops = append(stops, trimPlace(p))
	}
	return cleanChain(stops)
}

// splitVia separates "B via C and D" into "B" and its intermediate stops.
func splitVia(s string) (string, []string) {
	loc := viaRe.FindStringIndex(s)
	if loc == nil {
		return s, nil
	}
	return s[:loc[0]], splitList(s[loc[1]:])
}

func appendChain(chain, stops []string) []string {
	if len(chain) > 0 && strings.EqualFold(chain[len(chain)-1], stops[0]) {
		return append(chain, stops[1:]...)
	}
	return append(chain, stops...)
}

// enumeratedList handles "visit A, B and C". A departure point named
// elsewhere in the message leads the chain.
type enumeratedList struct{}

func (enumeratedList) Name() string { return "enumerated_list" }

func (enumeratedList) Match(_ context.Context, in Input) ([]string, bool) {
	for _, clause := range clauses(in.Message) {
		m := visitRe.FindStringSubmatch(clause)
		if m == nil {
			continue
		}
		places := CleanLocations(splitList(m[1]))
		if len(places) < 2 {
			continue
		}
		if origin, _, _ := departure(in.Message); origin != "" && !containsFold(places, origin) {
			places = append([]string{origin}, places...)
		}
		return places, true
	}
	return nil, false
}

// namedOrigin handles "departing from X" with destinations named elsewhere
// in the message, or stored from earlier turns.
type namedOrigin struct{}

func (namedOrigin) Name() string { return "named_origin" }

func (namedOrigin) Match(_ context.Context, in Input) ([]string, bool) {
	origin, start, end := departure(in.Message)
	if origin == "" {
		return nil, false
	}

	rest := in.Message[:start] + " , " + in.Message[end:]
	var dests []string
	for _, c := range CleanLocations(capitalRe.FindAllString(rest, -1)) {
		if !strings.EqualFold(c, origin) {
			dests = append(dests, c)
		}
	}
	if len(dests) == 0 {
		for _, d := range in.Prior.Destinations {
			if !strings.EqualFold(d, origin) {
				dests = append(dests, d)
			}
		}
	}
	if len(dests) == 0 {
		return nil, false
	}
	return append([]string{origin}, dests...), true
}

// departure returns the first usable "departing from X" origin and the
// bounds of the phrase naming it.
func departure(msg string) (origin string, start, end int) {
	for _, loc := range departRe.FindAllStringSubmatchIndex(msg, -1) {
		if origin = cleanToken(trimPlace(msg[loc[2]:loc[3]])); origin != "" {
			return origin, loc[0], loc[1]
		}
	}
	return "", 0, 0
}

// llmIntent asks a language model when no pattern matched.
type llmIntent struct {
	parser IntentParser
	logger *zap.Logger
}

func (llmIntent) Name() string { return "llm_intent" }

func (s llmIntent) Match(ctx context.Context, in Input) ([]string, bool) {
	origin, dests, err := s.parser.ParseRouteIntent(ctx, in.Message)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("extract: llm intent", zap.Error(err))
		}
		return nil, false
	}
	chain := cleanChain(append([]string{origin}, dests...))
	return chain, len(chain) >= 2
}

// priorState reuses the stored route when the message asks to optimise or
// only changes preferences.
type priorState struct{}

func (priorState) Name() string { return "prior_state" }

func (priorState) Match(_ context.Context, in Input) ([]string, bool) {
	if !intentRe.MatchString(in.Message) && !in.HasPrefs {
		return nil, false
	}
	if in.Prior.Origin != "" && len(in.Prior.Destinations) > 0 {
		return append([]string{in.Prior.Origin}, in.Prior.Destinations...), true
	}
	if len(in.Prior.Destinations) >= 2 {
		return append([]string(nil), in.Prior.Destinations...), true
	}
	return nil, false
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
