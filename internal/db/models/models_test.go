package models

import (
	"testing"
)

// ---------------------------------------------------------------------------
// JSONMap
// ---------------------------------------------------------------------------

func TestJSONMap_Scan(t *testing.T) {
	var m JSONMap
	if err := m.Scan([]byte(`{"bucket":3,"apiKey":"k"}`)); err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if m["apiKey"] != "k" {
		t.Errorf("apiKey = %v, want k", m["apiKey"])
	}
	if m["bucket"] != float64(3) {
		t.Errorf("bucket = %v, want 3", m["bucket"])
	}
}

func TestJSONMap_ScanNull(t *testing.T) {
	m := JSONMap{"stale": true}
	if err := m.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) error: %v", err)
	}
	if m != nil {
		t.Errorf("Scan(nil) = %v, want nil", m)
	}
}

func TestJSONMap_ScanUnsupported(t *testing.T) {
	var m JSONMap
	if err := m.Scan(42); err == nil {
		t.Error("Scan(int) should fail")
	}
}

func TestJSONMap_ValueNil(t *testing.T) {
	v, err := JSONMap(nil).Value()
	if err != nil {
		t.Fatalf("Value() error: %v", err)
	}
	if v != "{}" {
		t.Errorf("Value() = %v, want {}", v)
	}
}

func TestJSONMap_Clone(t *testing.T) {
	m := JSONMap{"a": "1"}
	c := m.Clone()
	c["a"] = "2"
	if m["a"] != "1" {
		t.Error("Clone() shares storage with the original")
	}
	if JSONMap(nil).Clone() != nil {
		t.Error("Clone() of nil should be nil")
	}
}

// ---------------------------------------------------------------------------
// List columns
// ---------------------------------------------------------------------------

func TestStringList_RoundTrip(t *testing.T) {
	v, err := StringList{".pdf", ".docx"}.Value()
	if err != nil {
		t.Fatalf("Value() error: %v", err)
	}
	var l StringList
	if err := l.Scan(v); err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if len(l) != 2 || l[1] != ".docx" {
		t.Errorf("Scan() = %v", l)
	}
	if v, _ := StringList(nil).Value(); v != "[]" {
		t.Errorf("nil Value() = %v, want []", v)
	}
}

func TestChatSuggestions_Scan(t *testing.T) {
	var s ChatSuggestions
	if err := s.Scan(`[{"title":"Hi","subtitle":"there","text":"Hello"}]`); err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if len(s) != 1 || s[0].Text != "Hello" {
		t.Errorf("Scan() = %+v", s)
	}
}

func TestFileSizeLimits_Scan(t *testing.T) {
	var f FileSizeLimits
	if err := f.Scan([]byte(`{"general":1,".pdf":10}`)); err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if f[".pdf"] != 10 {
		t.Errorf(".pdf = %v, want 10", f[".pdf"])
	}
}

func TestRawJSON(t *testing.T) {
	var r RawJSON
	if err := r.Scan([]byte(`{"type":"object"}`)); err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	b, _ := r.MarshalJSON()
	if string(b) != `{"type":"object"}` {
		t.Errorf("MarshalJSON() = %s", b)
	}
	if v, _ := RawJSON(nil).Value(); v != nil {
		t.Errorf("empty Value() = %v, want nil", v)
	}
	if b, _ := RawJSON(nil).MarshalJSON(); string(b) != "null" {
		t.Errorf("empty MarshalJSON() = %s, want null", b)
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func TestFileObjectKey(t *testing.T) {
	f := &File{ID: 9, BucketID: 2}
	if got := f.ObjectKey(); got != "buckets/2/files/9" {
		t.Errorf("ObjectKey() = %q", got)
	}
}

func TestIsValidEntityType(t *testing.T) {
	for _, et := range []string{"extension", "bucket", "configuration", "settings", "userGroup", "user"} {
		if !IsValidEntityType(et) {
			t.Errorf("IsValidEntityType(%q) = false", et)
		}
	}
	if IsValidEntityType("conversation") {
		t.Error("IsValidEntityType(conversation) = true")
	}
}

func TestIsBuiltInGroup(t *testing.T) {
	if !IsBuiltInGroup("admin") || !IsBuiltInGroup("default") {
		t.Error("seeded groups should be builtin")
	}
	if IsBuiltInGroup("team-a") {
		t.Error("team-a should not be builtin")
	}
}

func TestConfigurationEnabled(t *testing.T) {
	c := &Configuration{Status: ConfigurationStatusDisabled}
	if c.Enabled() {
		t.Error("disabled configuration reported enabled")
	}
	c.Status = ConfigurationStatusEnabled
	if !c.Enabled() {
		t.Error("enabled configuration reported disabled")
	}
}
