package domain

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minLocationLen = 2
	maxLocationLen = 149
)

// zoneRe matches the zone column that follows the device code.
var zoneRe = regexp.MustCompile(`^(\d+|N/A|Local Only)`)

var digitRe = regexp.MustCompile(`\d`)

// deviceNoiseFragments mark table headers and legend text. Any line
// containing one of these is not a device row.
var deviceNoiseFragments = []string{
	"---",
	"Manual Pull",
	"Heat Detector",
	"Model#",
	"Correctly Installed",
	"Missing",
	"Requires Service",
	"Alarm Operation",
	"Device Testing – Legend",
}

// isDeviceNoise reports whether a trimmed line inside the device section is a
// header, legend row, rule or blank.
func isDeviceNoise(line string) bool {
	if line == "" {
		return true
	}
	for _, frag := range deviceNoiseFragments {
		if strings.Contains(line, frag) {
			return true
		}
	}
	switch {
	case strings.Contains(line, "Location") && strings.Contains(line, "Device"):
		return true
	case strings.Contains(line, "Description") && strings.Contains(line, "Type"):
		return true
	case strings.Contains(line, "ZONE") && !digitRe.MatchString(line):
		return true
	}
	return false
}

// parseDeviceLine extracts a device from one table row. Rows are free-form:
// "<location>  <code>  <zone>", where location may carry a leading item
// number or bullet.
func parseDeviceLine(line string) (Device, bool) {
	if isDeviceNoise(line) {
		return Device{}, false
	}

	code, idx, ok := findDeviceCode(line)
	if !ok {
		return Device{}, false
	}
	typeName, ok := DeviceTypeName(code)
	if !ok {
		return Device{}, false
	}

	location := strings.TrimSpace(line[:idx])
	location = strings.TrimSpace(stripLeadingMarkers(location))
	if !validDeviceLocation(location) {
		return Device{}, false
	}

	rest := strings.TrimSpace(line[idx+len(code):])
	var zone string
	if m := zoneRe.FindStringSubmatch(rest); m != nil {
		zone = m[1]
	}

	return Device{
		Location: location,
		Type:     code,
		TypeName: typeName,
		Zone:     zone,
		Status:   StatusPass,
	}, true
}

// stripLeadingMarkers removes a leading run of whitespace, bullets, dashes,
// asterisks and digits when that run is directly followed by an ASCII letter.
// "3. Lobby" is left alone; "• 12 Lobby" becomes "Lobby".
func stripLeadingMarkers(s string) string {
	end := 0
	for end < len(s) {
		r, size := utf8.DecodeRuneInString(s[end:])
		if !isLeadMarker(r) {
			break
		}
		end += size
	}
	if end == 0 || end == len(s) {
		return s
	}
	r, _ := utf8.DecodeRuneInString(s[end:])
	if !isASCIILetter(r) {
		return s
	}
	return s[end:]
}

func isLeadMarker(r rune) bool {
	return unicode.IsSpace(r) || r == '•' || r == '-' || r == '*' || (r >= '0' && r <= '9')
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func validDeviceLocation(location string) bool {
	n := utf8.RuneCountInString(location)
	if n < minLocationLen || n > maxLocationLen {
		return false
	}
	if location == "X" {
		return false
	}
	return !strings.Contains(location, "Legend") && !strings.Contains(location, "Installed")
}
