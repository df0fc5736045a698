package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var months = []string{
	"january", "february", "march", "april", "may", "june", "july",
	"august", "september", "october", "november", "december",
	"jan", "feb", "mar", "apr", "jun", "jul", "aug", "sep", "sept", "oct", "nov", "dec",
}

var weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

var stopwords = []string{
	"the", "and", "a", "an", "or", "but", "to", "from", "via", "with", "for", "in", "on", "at", "of", "by",
	"i", "i'm", "im", "i'd", "i'll", "we", "we're", "we'd", "we'll", "my", "our", "me", "us", "you", "your",
	"it", "this", "that", "there", "here", "then", "also", "first", "next", "finally", "after", "before",
	"hi", "hello", "hey", "please", "thanks", "thank", "can", "could", "would", "will", "should", "let's",
	"want", "plan", "planning", "trip", "road", "route", "drive", "driving", "travel",
	"visit", "visiting", "stop", "stops", "day", "days", "week", "weeks", "night", "nights", "hours", "km",
	"miles", "max", "maximum", "today", "tomorrow", "weekend", "summer", "winter", "spring", "autumn", "fall",
	"somewhere", "anywhere", "everywhere", "place", "places", "city", "cities", "town", "towns",
	"what", "how", "where", "when", "why", "which", "who", "maybe", "ideally", "probably", "just", "so", "if",
	"is", "are", "do", "does", "did", "let", "lets",
	"going", "heading", "leaving", "departing", "starting", "flying", "make", "need", "help", "show", "give",
	"tell", "add", "include", "around", "along", "back", "return", "again", "all", "some", "any", "each",
}

// fillers are conversational words that are also place names ("Nice",
// "Cool", "Home"). They are noise only when written in lowercase.
var fillers = []string{
	"nice", "great", "cool", "sure", "ok", "okay", "yes", "no", "home", "car", "like", "love",
}

var (
	monthSet   = lo.SliceToMap(months, func(s string) (string, bool) { return s, true })
	weekdaySet = lo.SliceToMap(weekdays, func(s string) (string, bool) { return s, true })
	stopSet    = lo.SliceToMap(stopwords, func(s string) (string, bool) { return s, true })
	fillerSet  = lo.SliceToMap(fillers, func(s string) (string, bool) { return s, true })

	numericRe = regexp.MustCompile(`^[\d\s.,:/'-]+$`)
	articleRe = regexp.MustCompile(`(?i)^(?:the|a|an)\s+`)
)

// cleanToken normalises one candidate location. It returns "" for tokens
// that cannot be a place: numbers, months, weekdays, stopwords and
// fragments shorter than three characters.
func cleanToken(tok string) string {
	tok = strings.TrimFunc(tok, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(`"'()[]{}.,;:!?*`, r)
	})
	tok = strings.Join(strings.Fields(tok), " ")
	tok = articleRe.ReplaceAllString(tok, "")
	if tok == "" || numericRe.MatchString(tok) {
		return ""
	}

	lower := strings.ToLower(tok)
	if lo.EveryBy(strings.Fields(tok), isNoise) {
		return ""
	}
	if utf8.RuneCountInString(tok) < 3 {
		return ""
	}
	if tok == lower {
		// A Caser is stateful, so one is built per call.
		tok = cases.Title(language.Und).String(tok)
	}
	return tok
}

func isNoise(word string) bool {
	lw := strings.ToLower(word)
	if fillerSet[lw] {
		return word == lw
	}
	return monthSet[lw] || weekdaySet[lw] || stopSet[lw] || numericRe.MatchString(lw)
}

// CleanLocations filters a set of candidate locations: unusable tokens are
// dropped, duplicates are removed case-insensitively keeping the first, and
// a token contained in a longer retained token is dropped.
func CleanLocations(tokens []string) []string {
	cleaned := lo.Filter(lo.Map(tokens, func(t string, _ int) string { return cleanToken(t) }),
		func(t string, _ int) bool { return t != "" })
	uniq := lo.UniqBy(cleaned, strings.ToLower)

	return lo.Filter(uniq, func(t string, i int) bool {
		lt := strings.ToLower(t)
		return !lo.ContainsBy(uniq, func(other string) bool {
			lother := strings.ToLower(other)
			return lother != lt && strings.Contains(lother, lt)
		})
	})
}

// cleanChain cleans each stop of an explicit route, keeping repeated stops
// (round trips) but collapsing immediate repeats.
func cleanChain(tokens []string) []string {
	var out []string
	for _, t := range tokens {
		t = cleanToken(t)
		if t == "" {
			continue
		}
		if len(out) > 0 && strings.EqualFold(out[len(out)-1], t) {
			continue
		}
		out = append(out, t)
	}
	return out
}
