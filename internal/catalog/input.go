package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ProductInput is the body of a create or update request. Absent fields are
// nil, except Status which tracks presence itself. An id in the body is not decoded, so it can never reach a record.
type ProductInput struct {
	Title       *string      `json:"title"       validate:"omitnil,min=1"`
	Description *string      `json:"description" validate:"omitnil,min=1"`
	Code        *string      `json:"code"        validate:"omitnil,min=1"`
	Price       *Number      `json:"price"`
	Stock       *Number      `json:"stock"`
	Category    *string      `json:"category"    validate:"omitnil,min=1"`
	Status      OptionalFlag `json:"status"`
	Thumbnails  *Thumbnails  `json:"thumbnails"`
}

// Number accepts a JSON number or a numeric string. Anything else decodes
// without error but is not Valid. Blank reports a falsy raw value (0, false
// or ""); a string such as "0" is not blank even though its Value is zero.
type Number struct {
	Value float64
	Valid bool
	Blank bool
}

func (n *Number) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	*n = Number{}
	switch x := v.(type) {
	case float64:
		n.Value, n.Valid, n.Blank = x, true, x == 0
	case string:
		n.Blank = x == ""
		s := strings.TrimSpace(x)
		if s == "" {
			n.Valid = true
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			n.Value, n.Valid = f, true
		}
	case bool:
		if x {
			n.Value = 1
		}
		n.Valid, n.Blank = true, !x
	}
	return nil
}

// Flag is a boolean decoded by truthiness: false, 0, "" and null are false,
// every other value is true.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch x := v.(type) {
	case nil:
		*f = false
	case bool:
		*f = Flag(x)
	case float64:
		*f = Flag(x != 0)
	case string:
		*f = Flag(x != "")
	default:
		*f = true
	}
	return nil
}

// OptionalFlag is a Flag that remembers whether the field was sent at all.
// An explicit null is sent and decodes to false.
type OptionalFlag struct {
	Set  bool
	Flag Flag
}

func (o *OptionalFlag) UnmarshalJSON(b []byte) error {
	o.Set = true
	return o.Flag.UnmarshalJSON(b)
}

// Thumbnails is a list of image references. A value that is not an array
// decodes to an empty list.
type Thumbnails []string

func (t *Thumbnails) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	arr, ok := v.([]any)
	if !ok {
		*t = Thumbnails{}
		return nil
	}

	out := make(Thumbnails, 0, len(arr))
	for i, e := range arr {
		s, ok := e.(string)
		if !ok {
			return fmt.Errorf("thumbnails[%d]: want string, got %T", i, e)
		}
		out = append(out, s)
	}
	*t = out
	return nil
}

func (t *Thumbnails) list() []string {
	if t == nil || *t == nil {
		return []string{}
	}
	return append([]string{}, (*t)...)
}
