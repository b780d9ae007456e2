package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/TheRibeiro/ApiWp/internal/domain"
)

func newTestSQLite(t *testing.T) SessionStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteLoadMissing(t *testing.T) {
	s := newTestSQLite(t)

	creds, err := s.Load(context.Background(), "default")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !creds.Empty() {
		t.Errorf("expected empty credentials for unknown session, got %+v", creds)
	}
}

func TestSQLiteSaveLoadRoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	creds := domain.SessionCredentials{
		Creds: []byte(`{"registered":true,"me":{"id":"5511999999999:1"}}`),
		Keys:  []byte(`{"preKeys":{"1":"AAAA"}}`),
	}
	if err := s.Save(ctx, "default", creds); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := s.Load(ctx, "default")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(got.Creds) != string(creds.Creds) || string(got.Keys) != string(creds.Keys) {
		t.Errorf("credentials did not round-trip unchanged: %+v", got)
	}
}

func TestSQLiteSaveOverwritesFullState(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	first := domain.SessionCredentials{Creds: []byte(`{"v":1}`), Keys: []byte(`{"k":1}`)}
	second := domain.SessionCredentials{Creds: []byte(`{"v":2}`)}

	if err := s.Save(ctx, "default", first); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}
	if err := s.Save(ctx, "default", second); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	got, err := s.Load(ctx, "default")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(got.Creds) != `{"v":2}` || len(got.Keys) != 0 {
		t.Errorf("expected the second snapshot to fully replace the first, got %+v", got)
	}
}
