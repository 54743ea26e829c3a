package judgment

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	scorePrefixes  = []string{"SCORE:", "PUNTAJE:"}
	reasonPrefixes = []string{"REASON:", "RAZON:", "RAZÓN:"}
	numberRegex    = regexp.MustCompile(`-?\d+(?:[.,]\d+)?`)
)

// ParseVerdict reads the score and reason lines of a judge reply. Without a
// reason line the whole reply is the rationale. Without a readable score the
// grade is Failed and Parsed is false.
func ParseVerdict(raw string) *Verdict {
	content := strings.TrimSpace(raw)
	v := &Verdict{Grade: Failed, Rationale: content, Raw: raw}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(strings.Trim(strings.TrimSpace(line), "*"))
		upper := strings.ToUpper(line)

		if rest, ok := cutAnyPrefix(line, upper, scorePrefixes); ok && !v.Parsed {
			if num := numberRegex.FindString(rest); num != "" {
				if f, err := strconv.ParseFloat(strings.Replace(num, ",", ".", 1), 64); err == nil {
					v.Grade = Snap(f)
					v.Parsed = true
				}
			}
			continue
		}
		if rest, ok := cutAnyPrefix(line, upper, reasonPrefixes); ok {
			v.Rationale = strings.TrimSpace(strings.TrimLeft(rest, "* "))
		}
	}

	if !v.Parsed {
		v.Rationale = "unparseable judge response: " + content
	}
	return v
}

func cutAnyPrefix(line, upper string, prefixes []string) (string, bool) {
	for _, p := range prefixes {
		if strings.HasPrefix(upper, p) {
			return line[len(p):], true
		}
	}
	return "", false
}
