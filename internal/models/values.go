package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Price keeps a cart price exactly as the client sent it: a number, a numeric string,
// or (for legacy documents) anything else.
type Price struct {
	v any
}

func NumberPrice(f float64) Price { return Price{v: f} }
func TextPrice(s string) Price    { return Price{v: s} }

func (p Price) Value() any { return p.v }

// Truthy follows the storefront's rule for a usable price: non-zero numbers,
// non-empty strings, true, or any non-null composite value.
func (p Price) Truthy() bool {
	switch v := p.v.(type) {
	case nil:
		return false
	case float64:
		return v != 0 && !math.IsNaN(v)
	case string:
		return v != ""
	case bool:
		return v
	default:
		return true
	}
}

func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.v)
}

func (p *Price) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	p.v = v
	return nil
}

func (p Price) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if p.v == nil {
		return bsontype.Null, nil, nil
	}
	return bson.MarshalValue(p.v)
}

func (p *Price) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Null, bsontype.Undefined:
		p.v = nil
	case bsontype.Double:
		p.v = rv.Double()
	case bsontype.Int32:
		p.v = float64(rv.Int32())
	case bsontype.Int64:
		p.v = float64(rv.Int64())
	case bsontype.String:
		p.v = rv.StringValue()
	case bsontype.Boolean:
		p.v = rv.Boolean()
	default:
		var v any
		if err := rv.Unmarshal(&v); err != nil {
			return err
		}
		p.v = v
	}
	return nil
}

// Text is a string field that also accepts JSON numbers and booleans, stored in their
// string form.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case nil:
		*t = ""
	case string:
		*t = Text(x)
	case float64:
		*t = Text(strconv.FormatFloat(x, 'f', -1, 64))
	case bool:
		*t = Text(strconv.FormatBool(x))
	default:
		return fmt.Errorf("models: cannot use %T as text", v)
	}
	return nil
}

// UnmarshalBSONValue reads documents written before the fields were normalized to strings.
func (t *Text) UnmarshalBSONValue(bt bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: bt, Value: data}
	switch bt {
	case bsontype.Null, bsontype.Undefined:
		*t = ""
	case bsontype.String:
		*t = Text(rv.StringValue())
	case bsontype.Double:
		*t = Text(strconv.FormatFloat(rv.Double(), 'f', -1, 64))
	case bsontype.Int32:
		*t = Text(strconv.FormatInt(int64(rv.Int32()), 10))
	case bsontype.Int64:
		*t = Text(strconv.FormatInt(rv.Int64(), 10))
	case bsontype.Boolean:
		*t = Text(strconv.FormatBool(rv.Boolean()))
	default:
		return fmt.Errorf("models: cannot use bson %s as text", bt)
	}
	return nil
}
