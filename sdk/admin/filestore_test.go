package admin

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestFileCredentialStoreRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "credentials.json")
	store := NewFileCredentialStore(path)

	want := Credentials{
		AccessToken:  "tok-1",
		RefreshToken: "ref-1",
		ExpiresAt:    time.Now().Add(15 * time.Minute).UTC().Truncate(time.Second),
	}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.AccessToken != want.AccessToken || got.RefreshToken != want.RefreshToken {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
	if !got.ExpiresAt.Equal(want.ExpiresAt) {
		t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, want.ExpiresAt)
	}
}

func TestFileCredentialStoreMissingFile(t *testing.T) {
	t.Parallel()

	store := NewFileCredentialStore(filepath.Join(t.TempDir(), "missing.json"))
	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Valid() {
		t.Errorf("Load() = %+v, want zero pair", got)
	}
}

func TestFileCredentialStoreClear(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "credentials.json")
	store := NewFileCredentialStore(path)
	if err := store.Save(Credentials{AccessToken: "tok", RefreshToken: "ref"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Stat() error = %v, want not-exist", err)
	}
	// Clearing an already empty store is a no-op.
	if err := store.Clear(); err != nil {
		t.Fatalf("second Clear() error = %v", err)
	}
}

func TestFileCredentialStorePermissions(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not enforced on windows")
	}

	path := filepath.Join(t.TempDir(), "credentials.json")
	store := NewFileCredentialStore(path)
	if err := store.Save(Credentials{AccessToken: "tok", RefreshToken: "ref"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("file mode = %o, want 600", perm)
	}
}
