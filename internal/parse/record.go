package parse

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// RawRecord is one decoded line of a session file. Fields stay undecoded
// until asked for so that a record with one oddly shaped field is still
// usable.
type RawRecord struct {
	Line   int
	fields map[string]json.RawMessage
}

// DecodeRecord decodes a single JSON object. Anything else is an error.
func DecodeRecord(line []byte, lineNum int) (RawRecord, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(line, &fields); err != nil {
		return RawRecord{}, err
	}
	if fields == nil {
		return RawRecord{}, errNotObject
	}
	return RawRecord{Line: lineNum, fields: fields}, nil
}

var errNotObject = errors.New("record is not a json object")

// Has reports whether key is present, even if its value is null.
func (r RawRecord) Has(key string) bool {
	_, ok := r.fields[key]
	return ok
}

// Raw returns the undecoded value of key, or nil.
func (r RawRecord) Raw(key string) json.RawMessage {
	v, ok := r.fields[key]
	if !ok || isNull(v) {
		return nil
	}
	return v
}

// String returns key as a string. Non-string values yield "".
func (r RawRecord) String(key string) string {
	return rawString(r.fields[key])
}

// Truthy follows JSON truthiness: true, non-zero numbers and non-empty
// strings, arrays and objects.
func (r RawRecord) Truthy(key string) bool {
	return truthy(r.fields[key])
}

// Object decodes key as a JSON object. ok is false when the key is present
// but holds something else.
func (r RawRecord) Object(key string) (obj map[string]json.RawMessage, ok bool) {
	v, present := r.fields[key]
	if !present || isNull(v) {
		return nil, true
	}
	if err := json.Unmarshal(v, &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

func isNull(v json.RawMessage) bool {
	return len(v) == 0 || bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

func rawString(v json.RawMessage) string {
	if len(v) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return ""
	}
	return s
}

func rawInt(v json.RawMessage) int64 {
	if len(v) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(v, &f); err != nil {
		var s string
		if json.Unmarshal(v, &s) == nil {
			n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
			return n
		}
		return 0
	}
	return int64(f)
}

func truthy(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return false
	}
	switch v[0] {
	case 't':
		return true
	case 'f', 'n':
		return false
	case '"':
		return rawString(v) != ""
	case '[':
		var arr []json.RawMessage
		return json.Unmarshal(v, &arr) == nil && len(arr) > 0
	case '{':
		var obj map[string]json.RawMessage
		return json.Unmarshal(v, &obj) == nil && len(obj) > 0
	default:
		var f float64
		return json.Unmarshal(v, &f) == nil && f != 0
	}
}
