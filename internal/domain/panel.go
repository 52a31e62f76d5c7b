package domain

import (
	"regexp"
	"strings"
)

// Panel fields are located anywhere in the report, so these patterns run over
// the whole text rather than line by line.
var (
	// panelModelRe pairs manufacturer and model printed on one line:
	// "Fire Alarm panel Manufacturer: Edwards Model #: 2280".
	panelModelRe = regexp.MustCompile(`(?i)Fire Alarm panel Manufacturer:\s*([^\n]+?)Model #:\s*([^\n]+)`)

	// acPowerRe captures the breaker description up to the panel location
	// label on the same line, or to the end of the text.
	acPowerRe = regexp.MustCompile(`(?i)AC Pwr[^:]*:\s*([^\n]+?)(?:Panel Location|Located|$)`)

	panelLocationRe = regexp.MustCompile(`(?i)Panel (?:Located|Location)[^:]*:\s*([^\n]+)`)
	keyLocationRe   = regexp.MustCompile(`(?i)Key[^:]*:\s*([^\n]+)`)
	customerIDRe    = regexp.MustCompile(`(?i)Customer ID:\s*(\d+)`)
)

// extractPanelInfo pulls the optional panel attributes out of the report.
// Missing fields stay empty.
func extractPanelInfo(content string) PanelInfo {
	var info PanelInfo
	if m := panelModelRe.FindStringSubmatch(content); m != nil {
		info.Manufacturer = strings.TrimSpace(m[1])
		info.Model = strings.TrimSpace(m[2])
	}
	info.ACPower = firstGroup(acPowerRe, content)
	info.Location = firstGroup(panelLocationRe, content)
	info.KeyLocation = firstGroup(keyLocationRe, content)
	return info
}

func extractTestInfo(content string) TestInfo {
	return TestInfo{CustomerID: firstGroup(customerIDRe, content)}
}

func firstGroup(re *regexp.Regexp, content string) string {
	m := re.FindStringSubmatch(content)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}
