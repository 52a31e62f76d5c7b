package firestore

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// value is a Firestore REST typed value. Exactly one field is set.
type value struct {
	NullValue      *string     `json:"nullValue,omitempty"`
	BooleanValue   *bool       `json:"booleanValue,omitempty"`
	IntegerValue   *string     `json:"integerValue,omitempty"`
	DoubleValue    *float64    `json:"doubleValue,omitempty"`
	StringValue    *string     `json:"stringValue,omitempty"`
	TimestampValue *string     `json:"timestampValue,omitempty"`
	ArrayValue     *arrayValue `json:"arrayValue,omitempty"`
	MapValue       *mapValue   `json:"mapValue,omitempty"`
}

type arrayValue struct {
	Values []value `json:"values,omitempty"`
}

type mapValue struct {
	Fields map[string]value `json:"fields,omitempty"`
}

func stringValue(s string) value {
	return value{StringValue: &s}
}

// encodeFields converts a JSON-serializable struct into Firestore fields.
func encodeFields(v any) (map[string]value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic map[string]any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, err
	}
	fields := make(map[string]value, len(generic))
	for k, raw := range generic {
		fields[k] = encodeValue(raw)
	}
	return fields, nil
}

func encodeValue(v any) value {
	switch t := v.(type) {
	case nil:
		null := "NULL_VALUE"
		return value{NullValue: &null}
	case bool:
		return value{BooleanValue: &t}
	case float64:
		if t == float64(int64(t)) {
			s := strconv.FormatInt(int64(t), 10)
			return value{IntegerValue: &s}
		}
		return value{DoubleValue: &t}
	case string:
		return stringValue(t)
	case []any:
		values := make([]value, len(t))
		for i, e := range t {
			values[i] = encodeValue(e)
		}
		return value{ArrayValue: &arrayValue{Values: values}}
	case map[string]any:
		fields := make(map[string]value, len(t))
		for k, e := range t {
			fields[k] = encodeValue(e)
		}
		return value{MapValue: &mapValue{Fields: fields}}
	default:
		return stringValue(fmt.Sprint(t))
	}
}

// decodeFields converts Firestore fields into dst via its JSON form.
func decodeFields(fields map[string]value, dst any) error {
	generic := make(map[string]any, len(fields))
	for k, v := range fields {
		d, err := decodeValue(v)
		if err != nil {
			return fmt.Errorf("field %s: %w", k, err)
		}
		generic[k] = d
	}
	data, err := json.Marshal(generic)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

func decodeValue(v value) (any, error) {
	switch {
	case v.StringValue != nil:
		return *v.StringValue, nil
	case v.TimestampValue != nil:
		return *v.TimestampValue, nil
	case v.BooleanValue != nil:
		return *v.BooleanValue, nil
	case v.IntegerValue != nil:
		n, err := strconv.ParseInt(*v.IntegerValue, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integerValue %q", *v.IntegerValue)
		}
		return n, nil
	case v.DoubleValue != nil:
		return *v.DoubleValue, nil
	case v.ArrayValue != nil:
		out := make([]any, len(v.ArrayValue.Values))
		for i, e := range v.ArrayValue.Values {
			d, err := decodeValue(e)
			if err != nil {
				return nil, err
			}
			out[i] = d
		}
		return out, nil
	case v.MapValue != nil:
		out := make(map[string]any, len(v.MapValue.Fields))
		for k, e := range v.MapValue.Fields {
			d, err := decodeValue(e)
			if err != nil {
				return nil, err
			}
			out[k] = d
		}
		return out, nil
	default:
		return nil, nil
	}
}

func fieldPaths(fields map[string]value) []string {
	paths := make([]string, 0, len(fields))
	for k := range fields {
		paths = append(paths, k)
	}
	sort.Strings(paths)
	return paths
}
