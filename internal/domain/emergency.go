package domain

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultLightDevice names lights listed by circuit only.
const DefaultLightDevice = "Emergency Light"

var (
	// emergencyLightRe matches a fixture designator ("EM-3", "EM12",
	// "EXIT LITES"), an optional circuit and the remaining location text:
	// "EM-3   B-11   Gym Over Basketball Hoop".
	emergencyLightRe = regexp.MustCompile(`(?i)(EM-?\d+|EXIT\s*LI[TG]E?S?)\s+([A-Z]-\d+)?\s*(.+)?`)

	// circuitRowRe matches rows that start with a bare panel circuit: "B-11 Gym".
	circuitRowRe = regexp.MustCompile(`^[A-Z]-\d+`)
)

// statusWords are the test-result columns that precede the location text.
var statusWords = []string{"yes", "no", "good"}

// parseEmergencyLightLine extracts one light from a row in the emergency
// lighting section. Designator rows take precedence; a row that matches the
// designator pattern but carries no circuit or location is dropped without
// falling through to the circuit-row form.
func parseEmergencyLightLine(line string) (EmergencyLight, bool) {
	if m := emergencyLightRe.FindStringSubmatch(line); m != nil {
		device := strings.TrimSpace(m[1])
		circuit := strings.TrimSpace(m[2])
		location := stripStatusWords(m[3])
		if device == "" || (circuit == "" && location == "") {
			return EmergencyLight{}, false
		}
		if location == "" {
			location = DefaultLightLocation
		}
		return EmergencyLight{
			Device:   device,
			Circuit:  circuit,
			Location: location,
			Status:   StatusPass,
		}, true
	}

	if !circuitRowRe.MatchString(line) {
		return EmergencyLight{}, false
	}
	parts := strings.Fields(line)
	if len(parts) < 2 {
		return EmergencyLight{}, false
	}
	location := stripStatusWords(strings.Join(parts[1:], " "))
	if utf8.RuneCountInString(location) <= 2 {
		return EmergencyLight{}, false
	}
	return EmergencyLight{
		Device:   DefaultLightDevice,
		Circuit:  parts[0],
		Location: location,
		Status:   StatusPass,
	}, true
}

// stripStatusWords drops any leading run of whole-word Yes/No/Good columns,
// case-insensitively. "Yes Good Gym" becomes "Gym"; "North Hall" is kept.
func stripStatusWords(s string) string {
	s = strings.TrimSpace(s)
	for {
		stripped := false
		for _, w := range statusWords {
			if len(s) < len(w) || !strings.EqualFold(s[:len(w)], w) {
				continue
			}
			if len(s) > len(w) && isWordByte(s[len(w)]) {
				continue
			}
			s = strings.TrimSpace(s[len(w):])
			stripped = true
			break
		}
		if !stripped {
			return s
		}
	}
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
