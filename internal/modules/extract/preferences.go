package extract

import (
	"regexp"
	"strconv"
	"strings"

	"roadtrip/internal/modules/routeplan"
)

const kmPerMile = 1.609344

const (
	limitWords = `(?:no\s+more\s+than|not\s+more\s+than|at\s+most|max(?:imum)?(?:\s+of)?|up\s+to|under|less\s+than|limit(?:ed)?(?:\s+(?:of|to))?|cap(?:ped)?(?:\s+at)?)`
	number     = `(\d+(?:\.\d+)?)`
	perDay     = `(?:a|per|each|every)\s+day|daily|/\s*day`
	hourUnit   = `(?:h|hrs?|hours?)\b`
	distUnit   = `(km|kms|kilomet(?:er|re)s?|mi|miles?)\b`
)

var (
	hourPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)` + limitWords + `\s+` + number + `\s*` + hourUnit),
		regexp.MustCompile(`(?i)` + number + `\s*` + hourUnit + `\s*(?:of\s+driving\s+|driving\s+)?(?:` + perDay + `)`),
		regexp.MustCompile(`(?i)` + number + `\s*` + hourUnit + `\s+(?:max(?:imum)?|tops|at\s+most)`),
		regexp.MustCompile(`(?i)drive\s+(?:only\s+)?` + number + `\s*` + hourUnit),
	}
	distancePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)` + limitWords + `\s+` + number + `\s*` + distUnit),
		regexp.MustCompile(`(?i)` + number + `\s*` + distUnit + `\s*(?:` + perDay + `)`),
		regexp.MustCompile(`(?i)` + number + `\s*` + distUnit + `\s+(?:max(?:imum)?|tops|at\s+most)`),
	}
	daytimePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:daytime|daylight)\s+(?:driving\s+)?only\b`),
		regexp.MustCompile(`(?i)\bonly\s+(?:drive\s+|driving\s+)?(?:during\s+)?(?:the\s+)?(?:day|daytime|daylight)\b`),
		regexp.MustCompile(`(?i)\bno\s+(?:night|nighttime|night-time|after[-\s]dark)\s+driving\b`),
		regexp.MustCompile(`(?i)\b(?:don'?t|do\s+not|never|avoid|won'?t)\s+(?:want\s+to\s+)?driv(?:e|ing)\s+(?:at\s+night|after\s+dark|in\s+the\s+dark)\b`),
		regexp.MustCompile(`(?i)\bdriv(?:e|ing)\s+(?:only\s+)?during\s+(?:the\s+)?(?:day|daytime|daylight)\b`),
		regexp.MustCompile(`(?i)\barrive\s+before\s+dark\b`),
	}

	avoidTriggerRe = regexp.MustCompile(`(?i)\b(?:avoid(?:ing)?|no|without|skip(?:ping)?|stay(?:ing)?\s+off|keep\s+off|hate|don'?t\s+like|not\s+on)\b([^.;!?\n]*)`)
	avoidStopRe    = regexp.MustCompile(`(?i)\b(?:but|though|however|although|except|because|while)\b`)
	avoidTerms     = []struct {
		term string
		re   *regexp.Regexp
	}{
		{"tolls", regexp.MustCompile(`(?i)\b(?:tolls?|toll\s+roads?|turnpikes?)\b`)},
		{"highways", regexp.MustCompile(`(?i)\b(?:highways?|motorways?|freeways?|interstates?|expressways?|autobahns?)\b`)},
		{"ferries", regexp.MustCompile(`(?i)\b(?:ferry|ferries|boats?)\b`)},
		{"unpaved", regexp.MustCompile(`(?i)\b(?:unpaved(?:\s+roads?)?|dirt(?:\s+roads?)?|gravel(?:\s+roads?)?)\b`)},
	}
)

// ParsePreferences reads daily limits, a daytime-only marker and avoidance
// terms from a message. Each is matched independently; ok reports whether
// anything was found.
func ParsePreferences(msg string) (prefs routeplan.Preferences, ok bool) {
	if h, found := firstNumber(hourPatterns, msg); found {
		prefs.MaxDailyDriveHours = h
		ok = true
	}
	if km, found := firstDistance(msg); found {
		prefs.MaxDailyDistanceKm = km
		ok = true
	}
	for _, re := range daytimePatterns {
		if re.MatchString(msg) {
			prefs.DaytimeOnly = true
			ok = true
			break
		}
	}
	if avoid := parseAvoid(msg); len(avoid) > 0 {
		prefs.Avoid = avoid
		ok = true
	}
	return prefs, ok
}

func firstNumber(patterns []*regexp.Regexp, msg string) (float64, bool) {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(msg); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > 0 {
				return v, true
			}
		}
	}
	return 0, false
}

func firstDistance(msg string) (float64, bool) {
	for _, re := range distancePatterns {
		m := re.FindStringSubmatch(msg)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil || v <= 0 {
			continue
		}
		if strings.HasPrefix(strings.ToLower(m[2]), "mi") {
			v *= kmPerMile
		}
		return v, true
	}
	return 0, false
}

func parseAvoid(msg string) []string {
	var out []string
	for _, m := range avoidTriggerRe.FindAllStringSubmatch(msg, -1) {
		scope := m[1]
		if loc := avoidStopRe.FindStringIndex(scope); loc != nil {
			scope = scope[:loc[0]]
		}
		for _, t := range avoidTerms {
			if t.re.MatchString(scope) && !containsFold(out, t.term) {
				out = append(out, t.term)
			}
		}
	}
	return out
}
