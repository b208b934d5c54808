package record

import (
	"encoding/json"
	"strings"
)

// Flag is a boolean persisted as the string "1" (true) or "" (false).
//
// The string form is what the tabular files and older JSON collections use.
// When decoding, the three truthy encodings "1", 1 and true are accepted;
// every other value is false.
type Flag bool

// String returns "1" or "".
func (f Flag) String() string {
	if f {
		return "1"
	}
	return ""
}

func (f Flag) MarshalJSON() ([]byte, error) {
	if f {
		return []byte(`"1"`), nil
	}
	return []byte(`""`), nil
}

func (f *Flag) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Flag(Truthy(v))
	return nil
}

// Truthy reports whether a decoded JSON value is one of the truthy flag
// encodings: the string "1", the number 1 or the boolean true.
func Truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t == 1
	case int:
		return t == 1
	case int64:
		return t == 1
	case string:
		return strings.TrimSpace(t) == "1"
	case Flag:
		return bool(t)
	}
	return false
}

// ParseFlag reads a flag from its string form as sent by callers editing a
// record ("1" or "true"). Spreadsheet cells go through the wider
// interpretation in the import pipeline instead.
func ParseFlag(s string) Flag {
	s = strings.TrimSpace(s)
	return Flag(s == "1" || strings.EqualFold(s, "true"))
}
