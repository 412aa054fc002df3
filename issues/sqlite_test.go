package issues_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/tailored-agentic-units/voicedesk/issues"
)

func newStore(t *testing.T) issues.Store {
	t.Helper()
	store, err := issues.NewSQLiteStore(&issues.Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("NewSQLiteStore() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCreate(t *testing.T) {
	store := newStore(t)

	issue, err := store.Create(context.Background(), "Ada", "billing shows a double charge")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if issue.ID == 0 {
		t.Error("Create() did not assign an id")
	}
	if issue.CustomerName != "Ada" {
		t.Errorf("CustomerName = %q, want %q", issue.CustomerName, "Ada")
	}
	if issue.CreatedAt.IsZero() {
		t.Error("Create() did not stamp CreatedAt")
	}
}

func TestCreate_TrimsWhitespace(t *testing.T) {
	store := newStore(t)

	issue, err := store.Create(context.Background(), "  Ada  ", "  delayed shipment  ")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if issue.CustomerName != "Ada" || issue.Description != "delayed shipment" {
		t.Errorf("Create() did not trim fields: %+v", issue)
	}
}

func TestCreate_Validation(t *testing.T) {
	store := newStore(t)

	tests := []struct {
		name        string
		customer    string
		description string
		wantErr     error
	}{
		{"empty name", "", "something broke", issues.ErrEmptyName},
		{"blank name", "   ", "something broke", issues.ErrEmptyName},
		{"empty description", "Ada", "", issues.ErrEmptyDescription},
		{"blank description", "Ada", "   ", issues.ErrEmptyDescription},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Create(context.Background(), tt.customer, tt.description)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestList_FilterByCustomer(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	store.Create(ctx, "Ada Lovelace", "first issue")
	store.Create(ctx, "Grace Hopper", "unrelated issue")
	store.Create(ctx, "Ada Lovelace", "second issue")

	found, err := store.List(ctx, "Ada", 0)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("List() returned %d issues, want 2", len(found))
	}
	// Substring match on the recorded name, newest first.
	for _, issue := range found {
		if issue.CustomerName != "Ada Lovelace" {
			t.Errorf("List(\"Ada\") returned issue for %q", issue.CustomerName)
		}
	}
	if found[0].Description != "second issue" {
		t.Errorf("List() order: first = %q, want %q", found[0].Description, "second issue")
	}
}

func TestList_AllCustomers(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	store.Create(ctx, "Ada", "first issue")
	store.Create(ctx, "Grace", "second issue")

	found, err := store.List(ctx, "", 0)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(found) != 2 {
		t.Errorf("List() returned %d issues, want 2", len(found))
	}
}

func TestList_Limit(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	for _, desc := range []string{"one", "two", "three", "four"} {
		if _, err := store.Create(ctx, "Ada", desc); err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
	}

	found, err := store.List(ctx, "", 3)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(found) != 3 {
		t.Fatalf("List() returned %d issues, want 3", len(found))
	}
	if found[0].Description != "four" {
		t.Errorf("List() first = %q, want the newest issue", found[0].Description)
	}
}

func TestList_Empty(t *testing.T) {
	store := newStore(t)

	found, err := store.List(context.Background(), "Nobody", 0)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(found) != 0 {
		t.Errorf("List() returned %d issues, want 0", len(found))
	}
}

func TestSQLiteStore_FileBacked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "issues.db")

	store, err := issues.NewSQLiteStore(&issues.Config{Path: path})
	if err != nil {
		t.Fatalf("NewSQLiteStore() failed: %v", err)
	}

	if _, err := store.Create(context.Background(), "Ada", "persisted"); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	store.Close()

	// Reopen and confirm the row survived.
	store, err = issues.NewSQLiteStore(&issues.Config{Path: path})
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer store.Close()

	found, err := store.List(context.Background(), "Ada", 0)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(found) != 1 || found[0].Description != "persisted" {
		t.Errorf("reopened store List() = %+v", found)
	}
}
