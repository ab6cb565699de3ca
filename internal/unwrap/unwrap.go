// Package unwrap locates the list of records inside an API response body
// of unknown nesting. The backend answers the same request with
// {success,data:{users:[...]}}, {data:[...]}, a bare array, or a single
// object depending on the endpoint and version; ExtractRecordList replaces
// the conditional chains that used to absorb that with one total function.
package unwrap

import (
	"fmt"
	"sort"

	"github.com/evolution-crm/evoadmin/internal/models"
)

// ExtractRecordList returns the first recognizable list of records in
// body, searching one level of nesting if necessary.
//
// Recognized shapes, in priority order:
//  1. body itself is an array
//  2. success == true and data is an array
//  3. success == true and data is an object holding a hinted array
//  4. body directly holds a hinted array
//  5. any own key of body (or of one nested object) holding an array
//
// A single object carrying an identity field is wrapped into a one-element
// list. Nothing recognizable yields an empty list plus a diagnostic
// reason; absence of data is a normal outcome, never an error, and no
// input shape panics.
func ExtractRecordList(body any, hints []string) ([]models.RawRecord, string) {
	if body == nil {
		return []models.RawRecord{}, "body is null"
	}

	if arr, ok := body.([]any); ok {
		return toRecords(arr), ""
	}

	obj, ok := body.(map[string]any)
	if !ok {
		return []models.RawRecord{}, fmt.Sprintf("body is %T, not an object or array", body)
	}

	if success, _ := obj["success"].(bool); success {
		switch data := obj["data"].(type) {
		case []any:
			return toRecords(data), ""
		case map[string]any:
			if recs, ok := hinted(data, hints); ok {
				return recs, ""
			}
		}
	}

	if recs, ok := hinted(obj, hints); ok {
		return recs, ""
	}

	// Last resort: scan own keys, then one level of nested objects, for
	// the first array anywhere. Keys are visited in sorted order so the
	// result is deterministic.
	for _, k := range sortedKeys(obj) {
		if arr, ok := obj[k].([]any); ok {
			return toRecords(arr), ""
		}
	}
	for _, k := range sortedKeys(obj) {
		if nested, ok := obj[k].(map[string]any); ok {
			for _, nk := range sortedKeys(nested) {
				if arr, ok := nested[nk].([]any); ok {
					return toRecords(arr), ""
				}
			}
		}
	}

	if hasIdentity(obj) {
		return []models.RawRecord{obj}, ""
	}
	if nested, ok := obj["data"].(map[string]any); ok && hasIdentity(nested) {
		return []models.RawRecord{nested}, ""
	}

	return []models.RawRecord{}, "no record list found in body"
}

// hinted returns the array stored under the first matching hint key.
func hinted(obj map[string]any, hints []string) ([]models.RawRecord, bool) {
	for _, h := range hints {
		if arr, ok := obj[h].([]any); ok {
			return toRecords(arr), true
		}
	}
	return nil, false
}

// toRecords keeps the object elements of an array. Scalar elements are
// not records and are skipped.
func toRecords(arr []any) []models.RawRecord {
	recs := make([]models.RawRecord, 0, len(arr))
	for _, v := range arr {
		if m, ok := v.(map[string]any); ok {
			recs = append(recs, m)
		}
	}
	return recs
}

func sortedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func hasIdentity(obj map[string]any) bool {
	for _, f := range []string{"_id", "id", "userId"} {
		if v, ok := obj[f]; ok && v != nil {
			return true
		}
	}
	return false
}
