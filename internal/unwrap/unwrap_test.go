package unwrap

import (
	"encoding/json"
	"testing"
)

// decode builds the any-typed tree ExtractRecordList sees in production.
func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return v
}

func TestExtract_BareArray(t *testing.T) {
	recs, reason := ExtractRecordList(decode(t, `[{"_id":"1"},{"_id":"2"}]`), nil)
	if reason != "" {
		t.Errorf("reason = %q; want empty", reason)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records; want 2", len(recs))
	}
}

func TestExtract_SuccessDataArray(t *testing.T) {
	recs, _ := ExtractRecordList(decode(t, `{"success":true,"data":[{"_id":"1"}]}`), nil)
	if len(recs) != 1 || recs[0]["_id"] != "1" {
		t.Errorf("unexpected records: %v", recs)
	}
}

func TestExtract_SuccessNestedHint(t *testing.T) {
	body := decode(t, `{"success":true,"data":{"users":[{"_id":"1"}]}}`)
	recs, _ := ExtractRecordList(body, []string{"users"})
	if len(recs) != 1 || recs[0]["_id"] != "1" {
		t.Errorf("unexpected records: %v", recs)
	}
}

func TestExtract_DirectHint(t *testing.T) {
	body := decode(t, `{"usuarios":[{"_id":"1"}],"total":1}`)
	recs, _ := ExtractRecordList(body, []string{"users", "usuarios"})
	if len(recs) != 1 {
		t.Errorf("unexpected records: %v", recs)
	}
}

func TestExtract_ScanFallback(t *testing.T) {
	body := decode(t, `{"meta":{"page":1},"payload":{"items":[{"_id":"1"}]}}`)
	recs, _ := ExtractRecordList(body, []string{"users"})
	if len(recs) != 1 {
		t.Errorf("one-level nested scan missed the array: %v", recs)
	}
}

func TestExtract_SingleRecordWrapped(t *testing.T) {
	recs, _ := ExtractRecordList(decode(t, `{"_id":"1","nombre":"Ana"}`), nil)
	if len(recs) != 1 || recs[0]["nombre"] != "Ana" {
		t.Errorf("single record should be wrapped: %v", recs)
	}

	recs, _ = ExtractRecordList(decode(t, `{"success":true,"data":{"_id":"1"}}`), []string{"users"})
	if len(recs) != 1 {
		t.Errorf("single record under data should be wrapped: %v", recs)
	}
}

func TestExtract_NeverThrows(t *testing.T) {
	for _, body := range []any{nil, map[string]any{}, 42, "string", 3.14, true, []any{1, 2, "x"}} {
		recs, _ := ExtractRecordList(body, []string{"users"})
		if recs == nil {
			t.Errorf("ExtractRecordList(%v) returned nil; must always return a list", body)
		}
	}
}

func TestExtract_MalformedYieldsReason(t *testing.T) {
	recs, reason := ExtractRecordList(42, nil)
	if len(recs) != 0 {
		t.Errorf("got %d records; want 0", len(recs))
	}
	if reason == "" {
		t.Error("malformed body must yield a diagnostic reason")
	}

	recs, reason = ExtractRecordList(map[string]any{"message": "ok"}, []string{"users"})
	if len(recs) != 0 || reason == "" {
		t.Errorf("empty object must yield 0 records and a reason, got %v %q", recs, reason)
	}
}

func TestExtract_ScalarElementsSkipped(t *testing.T) {
	recs, _ := ExtractRecordList(decode(t, `[{"_id":"1"},"junk",2]`), nil)
	if len(recs) != 1 {
		t.Errorf("scalar elements must be skipped, got %v", recs)
	}
}
