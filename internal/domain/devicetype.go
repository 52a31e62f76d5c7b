package domain

import (
	"regexp"
	"sort"
)

// DeviceTypeCode is the legend abbreviation printed in the device table.
type DeviceTypeCode string

// Device type codes from the report legend.
const (
	DeviceManualPull      DeviceTypeCode = "H"
	DeviceHeatFixed       DeviceTypeCode = "HT"
	DeviceHeatRateOfRise  DeviceTypeCode = "RHT"
	DeviceSmokeDetector   DeviceTypeCode = "S"
	DeviceDuctSmoke       DeviceTypeCode = "DS"
	DeviceBell            DeviceTypeCode = "B"
	DeviceHorn            DeviceTypeCode = "K"
	DeviceChime           DeviceTypeCode = "C"
	DeviceVisual          DeviceTypeCode = "V"
	DeviceVisualBell      DeviceTypeCode = "V/B"
	DeviceSpeaker         DeviceTypeCode = "SP"
	DeviceHornSpeaker     DeviceTypeCode = "HSP"
	DeviceHornStrobe      DeviceTypeCode = "H/S"
	DeviceFlowSwitch      DeviceTypeCode = "FS"
	DeviceTamperSwitch    DeviceTypeCode = "TS"
	DeviceEmergencyPhone  DeviceTypeCode = "ET"
	DeviceSmokeAlarm      DeviceTypeCode = "SA"
	DeviceAncillaryDevice DeviceTypeCode = "AD"
)

var deviceTypeNames = map[DeviceTypeCode]string{
	DeviceManualPull:      "Manual Pull Station",
	DeviceHeatFixed:       "Heat Detector (Fixed Temp)",
	DeviceHeatRateOfRise:  "Heat Detector (Rate of Rise)",
	DeviceSmokeDetector:   "Smoke Detector",
	DeviceDuctSmoke:       "Duct Smoke Detector",
	DeviceBell:            "Bell",
	DeviceHorn:            "Horn",
	DeviceChime:           "Chime",
	DeviceVisual:          "Visual Alarm Appliance",
	DeviceVisualBell:      "Visual/Bell",
	DeviceSpeaker:         "Loud Speaker",
	DeviceHornSpeaker:     "Horn/Loud Speaker",
	DeviceHornStrobe:      "Horn/Strobe",
	DeviceFlowSwitch:      "Sprinkler Flow Switch",
	DeviceTamperSwitch:    "Sprinkler Tamper Switch",
	DeviceEmergencyPhone:  "Emergency Telephone",
	DeviceSmokeAlarm:      "Smoke Alarm",
	DeviceAncillaryDevice: "Ancillary Device",
}

// DeviceTypeName returns the legend description for a code.
func DeviceTypeName(code DeviceTypeCode) (string, bool) {
	name, ok := deviceTypeNames[code]
	return name, ok
}

// DeviceTypeCodes returns every known code in lexical order.
func DeviceTypeCodes() []DeviceTypeCode {
	codes := make([]DeviceTypeCode, 0, len(deviceTypeNames))
	for code := range deviceTypeNames {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// deviceMatchPriority is the order in which codes are searched for on a
// device line. A code that can appear as a token inside another code must
// come after it, e.g. "H/S" contains the standalone tokens "H" and "S".
var deviceMatchPriority = []DeviceTypeCode{
	DeviceHornStrobe,
	DeviceVisualBell,
	DeviceHeatRateOfRise,
	DeviceHornSpeaker,
	DeviceHeatFixed,
	DeviceDuctSmoke,
	DeviceSmokeAlarm,
	DeviceAncillaryDevice,
	DeviceFlowSwitch,
	DeviceTamperSwitch,
	DeviceEmergencyPhone,
	DeviceSpeaker,
	DeviceManualPull,
	DeviceSmokeDetector,
	DeviceBell,
	DeviceHorn,
	DeviceChime,
	DeviceVisual,
}

type deviceMatcher struct {
	code DeviceTypeCode
	re   *regexp.Regexp
}

// deviceMatchers holds one standalone-token pattern per code, in priority order.
var deviceMatchers = buildDeviceMatchers(deviceMatchPriority)

func buildDeviceMatchers(priority []DeviceTypeCode) []deviceMatcher {
	out := make([]deviceMatcher, 0, len(priority))
	for _, code := range priority {
		out = append(out, deviceMatcher{
			code: code,
			re:   regexp.MustCompile(`\b` + regexp.QuoteMeta(string(code)) + `\b`),
		})
	}
	return out
}

// DeviceMatchPriority returns a copy of the code search order.
func DeviceMatchPriority() []DeviceTypeCode {
	out := make([]DeviceTypeCode, len(deviceMatchPriority))
	copy(out, deviceMatchPriority)
	return out
}

// findDeviceCode returns the highest-priority code present in line as a
// standalone token and the byte offset of its first occurrence.
func findDeviceCode(line string) (DeviceTypeCode, int, bool) {
	for _, m := range deviceMatchers {
		if loc := m.re.FindStringIndex(line); loc != nil {
			return m.code, loc[0], true
		}
	}
	return "", -1, false
}
