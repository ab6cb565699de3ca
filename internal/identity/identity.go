// Package identity resolves record identifiers of unknown shape into a
// single canonical string form, so "same entity" is a named operation
// instead of regex logic repeated at every call site.
//
// Backends in this domain expose the identifier under several field names
// (_id, id, userId), sometimes as a nested object, and sometimes embed the
// real 24-hex database key inside a longer decorated string. Resolve
// absorbs all of that.
package identity

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// objectIDPattern matches a 24-hex-character content-derived database key.
var objectIDPattern = regexp.MustCompile(`[0-9a-fA-F]{24}`)

// UserIDFields is the candidate field order for user records. "identity"
// is the name serialized records carry, so re-normalizing one resolves too.
var UserIDFields = []string{"_id", "id", "userId", "identity"}

// LocaleIDFields is the candidate field order for locale records.
var LocaleIDFields = []string{"_id", "id", "identity"}

// ResolutionError reports that no candidate identifier field was present
// and non-null on a record. Callers must treat it as unrecoverable for
// that record: skip it and log, never fabricate an identity.
type ResolutionError struct {
	// Fields is the candidate field order that was searched.
	Fields []string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("identity: no identifier in any of %v", e.Fields)
}

// Resolve returns the canonical identity of a raw record.
//
// It takes the first candidate field that is present and non-null, coerces
// it to a string and trims whitespace. If the trimmed string is longer
// than a 24-hex key and contains one, that embedded key is the identity.
func Resolve(raw map[string]any, fields ...string) (string, error) {
	if len(fields) == 0 {
		fields = UserIDFields
	}
	for _, f := range fields {
		v, ok := raw[f]
		if !ok || v == nil {
			continue
		}
		if s := fromValue(v); s != "" {
			return Canonical(s), nil
		}
	}
	return "", &ResolutionError{Fields: fields}
}

// Canonical normalizes a bare identifier string: trim, then extract the
// embedded 24-hex key when the string is longer than one and contains one.
// Hex keys are lowercased, so canonical equality and Equal's case-blind
// embedded-key comparison always agree.
func Canonical(s string) string {
	s = strings.TrimSpace(s)
	if m := objectIDPattern.FindString(s); m != "" && (len(s) > 24 || m == s) {
		return strings.ToLower(m)
	}
	return s
}

// Equal reports whether two raw identifiers denote the same entity.
// Each side may be a string, a record, or any scalar the backend used as
// an id. Besides comparing canonical forms, it compares embedded 24-hex
// keys when both sides contain one, which handles two different
// decorations around the same key.
func Equal(a, b any) bool {
	sa, okA := asString(a)
	sb, okB := asString(b)
	if !okA || !okB || sa == "" || sb == "" {
		return false
	}
	ca, cb := Canonical(sa), Canonical(sb)
	if ca == cb {
		return true
	}
	ha := objectIDPattern.FindString(sa)
	hb := objectIDPattern.FindString(sb)
	return ha != "" && hb != "" && strings.EqualFold(ha, hb)
}

// asString coerces one comparison side to its raw string form. Records
// are resolved first; resolution failure makes the comparison false.
func asString(v any) (string, bool) {
	if m, ok := v.(map[string]any); ok {
		id, err := Resolve(m)
		if err != nil {
			return "", false
		}
		return id, true
	}
	if s := fromValue(v); s != "" {
		return s, true
	}
	return "", false
}

// fromValue coerces a candidate field value to a string. Nested objects
// are searched one level deep for an identifier of their own ($oid covers
// extended-JSON encodings of database keys).
func fromValue(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		for _, f := range []string{"$oid", "_id", "id"} {
			if inner, ok := t[f]; ok && inner != nil {
				if s := fromValue(inner); s != "" {
					return s
				}
			}
		}
		return ""
	case float64:
		// JSON numbers decode as float64; ids are whole numbers.
		return strconv.FormatInt(int64(t), 10)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return ""
	}
}
