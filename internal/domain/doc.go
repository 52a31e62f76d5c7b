// Package domain models annual fire alarm inspection reports and the building
// documents they are merged into.
//
// # Data Source
//
// Reports are plain-text exports of the contractor's annual inspection forms,
// one file per building per year. File names carry a numeric prefix and a
// building fragment, e.g. "5034876_2025_Cardston Temple_Fire Alarm System.txt".
// There is no formal grammar; field order, spacing and whole sections vary
// between reports, so extraction is heuristic and tolerant.
//
// # Report Conventions
//
// Header fields (anywhere in the text):
//
//	Fire Alarm panel Manufacturer: Edwards   Model #: 2280
//	AC Pwr Circuit: Panel A #12   Panel Location: Main Electrical Room
//	Key Location: Lock box at main entrance
//	Customer ID: 5034876
//
// Device table: starts at the "ANNUAL TEST AND INSPECTION RECORD" heading.
// Each row is "<location> <code> <zone>", for example
//
//	SE Bishop Exit (14)    H    2
//	Gym B-6 Rm (39)        RHT  1
//	Bell 1                 B
//
// Codes come from the printed legend (H pull station, HT fixed heat, RHT rate
// of rise heat, S smoke, B bell, H/S horn/strobe, ...). Zones are a number,
// "N/A" or "Local Only", or absent. Legend rows, column headings and rules are
// interleaved with data and are filtered out.
//
// Emergency lighting table: starts at "Annual Emergency Lights Test",
// "Lamp Test Pass", "Exit Lights" or "Fixture #". Rows carry a fixture
// designator ("EM-3", "EXIT LITES"), an optional panel circuit ("B-11"),
// Yes/No/Good test columns and a location:
//
//	EM-3   B-11   Gym Over Basketball Hoop
//	B-19   Yes Yes   Chapel West Front
//
// Once the lighting table starts the device table never resumes.
//
// Deficiencies: any line mentioning a repair keyword (replace, broken, fix,
// repair, not working, deficiencies) or a "Note:" label is a note. Up to two
// short follow-on lines are folded in.
//
// # Building Names
//
// Reports are attributed to buildings by matching alias keys against the file
// name (see [BuildingNameMap]). Reports that match no alias are skipped with
// [ErrUnresolvedBuildingName]; callers count them and carry on.
package domain
