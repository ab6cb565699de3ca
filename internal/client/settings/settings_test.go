package settings

import (
	"path/filepath"
	"testing"
)

func TestOpen_MissingFileUsesDefaults(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "settings.json"))
	got := s.Get()
	if got != Defaults {
		t.Errorf("settings = %+v; want defaults", got)
	}
}

func TestUpdate_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	s := Open(path)
	err := s.Update(func(cur *Settings) {
		cur.DarkMode = true
		cur.Language = "en"
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	reloaded := Open(path).Get()
	if !reloaded.DarkMode || reloaded.Language != "en" {
		t.Errorf("reloaded = %+v", reloaded)
	}
	if !reloaded.AutoLogout {
		t.Error("untouched fields must survive the update")
	}
}
