package domain

import "encoding/json"

// Building documents are shared with the app, which stores keys this package
// does not know about. The JSON methods below keep those keys in Extra so a
// find, merge, save cycle does not drop them.

var (
	buildingKeys        = []string{"id", "name", "year", "buildingDetails", "sections", "data", "lastModified"}
	buildingDetailKeys  = []string{"id", "label", "value"}
	buildingSectionKeys = []string{"id", "name", "icon"}
	buildingDataKeys    = []string{SectionIDFireAlarmDevices, SectionIDEmergencyLights, SectionIDAdditionalNotes}
)

type (
	buildingFields        Building
	buildingDetailFields  BuildingDetail
	buildingSectionFields BuildingSection
	buildingDataFields    BuildingData
)

func (b Building) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(buildingFields(b), b.Extra)
}

func (b *Building) UnmarshalJSON(data []byte) error {
	var f buildingFields
	extra, err := unmarshalWithExtra(data, &f, buildingKeys)
	if err != nil {
		return err
	}
	*b = Building(f)
	b.Extra = extra
	return nil
}

func (d BuildingDetail) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(buildingDetailFields(d), d.Extra)
}

func (d *BuildingDetail) UnmarshalJSON(data []byte) error {
	var f buildingDetailFields
	extra, err := unmarshalWithExtra(data, &f, buildingDetailKeys)
	if err != nil {
		return err
	}
	*d = BuildingDetail(f)
	d.Extra = extra
	return nil
}

func (s BuildingSection) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(buildingSectionFields(s), s.Extra)
}

func (s *BuildingSection) UnmarshalJSON(data []byte) error {
	var f buildingSectionFields
	extra, err := unmarshalWithExtra(data, &f, buildingSectionKeys)
	if err != nil {
		return err
	}
	*s = BuildingSection(f)
	s.Extra = extra
	return nil
}

func (d BuildingData) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(buildingDataFields(d), d.Extra)
}

func (d *BuildingData) UnmarshalJSON(data []byte) error {
	var f buildingDataFields
	extra, err := unmarshalWithExtra(data, &f, buildingDataKeys)
	if err != nil {
		return err
	}
	*d = BuildingData(f)
	d.Extra = extra
	return nil
}

// marshalWithExtra encodes known and adds every extra key it does not set.
func marshalWithExtra(known any, extra map[string]json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(known)
	if err != nil || len(extra) == 0 {
		return data, err
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, ok := obj[k]; !ok {
			obj[k] = v
		}
	}
	return json.Marshal(obj)
}

// unmarshalWithExtra decodes data into dst and returns the keys not listed in
// known, or nil when there are none.
func unmarshalWithExtra(data []byte, dst any, known []string) (map[string]json.RawMessage, error) {
	if err := json.Unmarshal(data, dst); err != nil {
		return nil, err
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(obj, k)
	}
	if len(obj) == 0 {
		return nil, nil
	}
	return obj, nil
}
