package custom

import (
	"bytes"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Datetime is a UTC timestamp that encodes as RFC3339 in JSON and as a native datetime in BSON.
type Datetime time.Time

// Now returns the current time as a Datetime.
func Now() Datetime {
	return Datetime(time.Now().UTC())
}

// Time returns the underlying time.
func (d Datetime) Time() time.Time {
	return time.Time(d)
}

// IsZero reports whether d is the zero time.
func (d Datetime) IsZero() bool {
	return time.Time(d).IsZero()
}

// MarshalJSON implements the json.Marshaler interface.
func (d Datetime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf(`%q`, time.Time(d).UTC().Format(time.RFC3339Nano))), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (d *Datetime) UnmarshalJSON(text []byte) error {
	text = bytes.TrimSpace(text)
	if len(text) == 0 || bytes.Equal(text, []byte("null")) {
		*d = Datetime{}
		return nil
	}

	t, err := time.Parse(time.RFC3339Nano, string(bytes.Trim(text, `"`)))
	if err != nil {
		return fmt.Errorf("invalid datetime: %w", err)
	}
	*d = Datetime(t.UTC())
	return nil
}

// MarshalBSONValue implements the bson.ValueMarshaler interface.
func (d Datetime) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if d.IsZero() {
		return bson.TypeNull, nil, nil
	}
	return bson.MarshalValue(time.Time(d).UTC())
}

// UnmarshalBSONValue implements the bson.ValueUnmarshaler interface. Both native datetimes and RFC3339
// strings are accepted.
func (d *Datetime) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeNull, bson.TypeUndefined:
		*d = Datetime{}
		return nil
	case bson.TypeDateTime:
		tm, ok := rv.TimeOK()
		if !ok {
			return fmt.Errorf("invalid bson datetime")
		}
		*d = Datetime(tm.UTC())
		return nil
	case bson.TypeString:
		s, ok := rv.StringValueOK()
		if !ok {
			return fmt.Errorf("invalid bson string")
		}
		tm, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("invalid datetime: %s", s)
		}
		*d = Datetime(tm.UTC())
		return nil
	}
	return fmt.Errorf("invalid bson type %s for datetime", t)
}

// String implements the fmt.Stringer interface.
func (d Datetime) String() string {
	return time.Time(d).UTC().Format(time.RFC3339)
}
