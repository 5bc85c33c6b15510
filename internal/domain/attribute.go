package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Attribute is a custom field on a product card.
type Attribute struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Type  string          `json:"type,omitempty"`
	Value *AttributeValue `json:"value,omitempty"`
}

// AttributeValue holds a custom field value. MoySklad serializes it as a
// bare string, number, or boolean, or as an object for dictionary fields.
type AttributeValue struct {
	Str    *string
	Num    *float64
	Bool   *bool
	Entity *EntityRef
}

func (v *AttributeValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v.Str = &s
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		v.Bool = &b
	case '{':
		var ref EntityRef
		if err := json.Unmarshal(data, &ref); err != nil {
			return err
		}
		v.Entity = &ref
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		v.Num = &n
	}
	return nil
}

func (v AttributeValue) MarshalJSON() ([]byte, error) {
	switch {
	case v.Str != nil:
		return json.Marshal(*v.Str)
	case v.Num != nil:
		return json.Marshal(*v.Num)
	case v.Bool != nil:
		return json.Marshal(*v.Bool)
	case v.Entity != nil:
		return json.Marshal(v.Entity)
	}
	return []byte("null"), nil
}

// AsString renders the attribute value as a string. Dictionary values
// render as the referenced entity's name. A nil value renders empty.
func (a Attribute) AsString() string {
	if a.Value == nil {
		return ""
	}
	switch {
	case a.Value.Str != nil:
		return *a.Value.Str
	case a.Value.Num != nil:
		return strconv.FormatFloat(*a.Value.Num, 'f', -1, 64)
	case a.Value.Bool != nil:
		return strconv.FormatBool(*a.Value.Bool)
	case a.Value.Entity != nil:
		return a.Value.Entity.Name
	}
	return ""
}
