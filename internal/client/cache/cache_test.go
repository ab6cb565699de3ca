package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/evolution-crm/evoadmin/internal/models"
)

func TestOpen_FileNotExist(t *testing.T) {
	f, err := Open(filepath.Join(t.TempDir(), "cache.json"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	var users []models.User
	ok, err := f.Get(models.KindUsers, &users)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("empty cache should report no slot")
	}
}

func TestPutGet_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	in := []models.User{{Identity: "u1", Email: "a@b.com", Active: true}}
	if err := f.Put(models.KindUsers, in); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Reload from disk to prove persistence.
	reloaded, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	var out []models.User
	ok, err := reloaded.Get(models.KindUsers, &out)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok || len(out) != 1 || out[0].Identity != "u1" {
		t.Errorf("unexpected cached users: %+v", out)
	}
}

func TestSlots_Independent(t *testing.T) {
	f, err := Open(filepath.Join(t.TempDir(), "cache.json"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := f.Put(models.KindUsers, []models.User{{Identity: "u1", Email: "e"}}); err != nil {
		t.Fatalf("Put users failed: %v", err)
	}
	if err := f.Put(models.KindLocales, []models.Locale{{Identity: "l1", Name: "Centro"}}); err != nil {
		t.Fatalf("Put locales failed: %v", err)
	}

	var users []models.User
	var locales []models.Locale
	if ok, _ := f.Get(models.KindUsers, &users); !ok || len(users) != 1 {
		t.Errorf("users slot = %+v", users)
	}
	if ok, _ := f.Get(models.KindLocales, &locales); !ok || len(locales) != 1 {
		t.Errorf("locales slot = %+v", locales)
	}
}

func TestOpen_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	var users []models.User
	if ok, _ := f.Get(models.KindUsers, &users); ok {
		t.Error("corrupt cache must start empty")
	}
}
