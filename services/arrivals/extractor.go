package arrivals

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// The widget text runs its entries together with no delimiter, i.e.
//   107 – ТК Центральный: 3 мин, 11 мин220 – Профилакторий Радугакаждые: 8мин
// so entries are found by scanning for a short route number followed by a separator,
// and everything up to the next such anchor belongs to the previous entry.

const (
	maxRouteNumberDigits = 3
	clockMinuteDigits    = 2
)

var (
	// routeSeparators follow the route number of an entry. The word forms must be followed by a space.
	routeSeparators = []string{"–", "to ", "до "}
	// noiseTokens ("every") are glued to the route name by the upstream markup and are never part of it.
	noiseTokens = []string{"каждые", "Каждые"}
	// nameStopTokens end a route name when nothing else does.
	nameStopTokens = []string{"каждые", "Каждые", "завтра", "Завтра", ":"}

	timeTokenRegex  = regexp.MustCompile(`\d+[\s\p{Zs}]*(?:мин|min)`)
	timeTokenPrefix = regexp.MustCompile(`^\d+[\s\p{Zs}]*(?:мин|min)`)
)

// entry is the raw text of a single route line, split at its name boundary.
type entry struct {
	number string
	name   string
	times  string
}

type anchor struct {
	start  int
	body   int
	number string
}

// ExtractAll parses every entry of the arrival block text.
// Entries are returned in source order; an entry without any time labels is still returned,
// unless it has no route name either.
func ExtractAll(text string) []ArrivalRecord {
	var records []ArrivalRecord
	for _, e := range scanEntries(text) {
		record := e.record()
		if len(record.RouteName()) < 1 && !record.HasTimes() {
			continue
		}
		records = append(records, record)
	}
	return records
}

// ExtractOne finds the first entry for routeNumber that has at least one arrival time.
// If the text has no separator-delimited entries at all, the simpler layout of a bare route number
// followed by its name and times is tried instead.
func ExtractOne(text string, routeNumber string) (ArrivalRecord, bool) {
	routeNumber = strings.TrimSpace(routeNumber)
	if len(routeNumber) < 1 {
		return ArrivalRecord{}, false
	}

	entries := scanEntries(text)
	if len(entries) < 1 {
		return extractBareRoute(text, routeNumber)
	}

	for _, e := range entries {
		if e.number != routeNumber {
			continue
		}
		if record := e.record(); record.HasTimes() {
			return record, true
		}
	}
	return ArrivalRecord{}, false
}

func (e entry) record() ArrivalRecord {
	return NewArrivalRecord(e.number, cleanRouteName(e.name), timeTokenRegex.FindAllString(e.times, -1))
}

func scanEntries(text string) []entry {
	var anchors []anchor
	for i := 0; i < len(text); i++ {
		if a, ok := anchorAt(text, i); ok {
			anchors = append(anchors, a)
			i = a.body - 1
		}
	}

	var entries []entry
	for idx, a := range anchors {
		end := len(text)
		if idx+1 < len(anchors) {
			end = anchors[idx+1].start
		}

		body := text[a.body:end]
		nameEnd := nameBoundary(body)
		entries = append(entries, entry{
			number: a.number,
			name:   body[:nameEnd],
			times:  body[nameEnd:],
		})
	}
	return entries
}

// anchorAt checks if an entry starts at offset i: a 1-3 digit route number followed by a separator.
// Longer digit runs are not route numbers, except where a clock time such as "06:15" is glued to
// the following route number; then the digits after the minutes are used.
func anchorAt(text string, i int) (anchor, bool) {
	if !isDigit(text[i]) || (i > 0 && isDigit(text[i-1])) {
		return anchor{}, false
	}

	j := digitsEnd(text, i)
	if j-i > clockMinuteDigits && followsClockHour(text, i) {
		i += clockMinuteDigits
	}
	if j-i > maxRouteNumberDigits {
		return anchor{}, false
	}

	k := skipSpaces(text, j)
	for _, sep := range routeSeparators {
		if strings.HasPrefix(text[k:], sep) {
			return anchor{
				start:  i,
				body:   k + len(sep),
				number: text[i:j],
			}, true
		}
	}
	return anchor{}, false
}

// nameBoundary returns the offset in body where the route name stops and the time list starts.
func nameBoundary(body string) int {
	for j := 0; j < len(body); {
		for _, token := range nameStopTokens {
			if strings.HasPrefix(body[j:], token) {
				return j
			}
		}
		if isDigit(body[j]) && (j == 0 || !isDigit(body[j-1])) && timeTokenPrefix.MatchString(body[j:]) {
			return j
		}

		_, size := utf8.DecodeRuneInString(body[j:])
		j += size
	}
	return len(body)
}

func extractBareRoute(text string, routeNumber string) (ArrivalRecord, bool) {
	for i := 0; i < len(text); i++ {
		if !isDigit(text[i]) || (i > 0 && isDigit(text[i-1])) {
			continue
		}

		j := digitsEnd(text, i)
		if text[i:j] != routeNumber || timeTokenPrefix.MatchString(text[i:]) {
			i = j - 1
			continue
		}

		rest := text[j:]
		rest = rest[:nextBareRoute(rest)]
		nameEnd := nameBoundary(rest)

		record := entry{
			number: routeNumber,
			name:   rest[:nameEnd],
			times:  rest[nameEnd:],
		}.record()
		if record.HasTimes() {
			return record, true
		}
		return ArrivalRecord{}, false
	}
	return ArrivalRecord{}, false
}

// nextBareRoute finds the next standalone number which is not a time label.
func nextBareRoute(text string) int {
	for i := 0; i < len(text); i++ {
		if !isDigit(text[i]) || (i > 0 && isDigit(text[i-1])) {
			continue
		}
		if !timeTokenPrefix.MatchString(text[i:]) {
			return i
		}
		i = digitsEnd(text, i) - 1
	}
	return len(text)
}

func cleanRouteName(name string) string {
	for _, token := range noiseTokens {
		name = strings.Replace(name, token, "", -1)
	}
	name = strings.Join(strings.Fields(name), " ")
	return strings.TrimFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune("–-:,", r)
	})
}

// followsClockHour reports whether the digit run at i is preceded by "H:" or "HH:".
func followsClockHour(text string, i int) bool {
	return i > 1 && text[i-1] == ':' && isDigit(text[i-2])
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func digitsEnd(text string, i int) int {
	for i < len(text) && isDigit(text[i]) {
		i++
	}
	return i
}

func skipSpaces(text string, i int) int {
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += size
	}
	return i
}
