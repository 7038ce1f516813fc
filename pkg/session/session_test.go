package session

import (
	"context"
	"path/filepath"
	"testing"
)

func testStores(t *testing.T) map[string]Store {
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "sessions"))
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	return map[string]Store{"file": fs, "memory": NewMemoryStore()}
}

func TestStores(t *testing.T) {
	ctx := context.Background()
	for name, st := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			sel, err := st.Get(ctx, DefaultName)
			if err != nil || sel != nil {
				t.Fatalf("Get(empty) = %v, %v, want nil, nil", sel, err)
			}

			want := Select("g1").WithNode("n1")
			if err := st.Set(ctx, DefaultName, want); err != nil {
				t.Fatalf("Set() error: %v", err)
			}
			got, err := st.Get(ctx, DefaultName)
			if err != nil {
				t.Fatalf("Get() error: %v", err)
			}
			if got.GraphID != "g1" || got.NodeID != "n1" {
				t.Errorf("Get() = %+v, want graph g1 node n1", got)
			}

			if err := st.Delete(ctx, DefaultName); err != nil {
				t.Fatalf("Delete() error: %v", err)
			}
			if err := st.Delete(ctx, DefaultName); err != nil {
				t.Errorf("Delete(missing) error: %v", err)
			}
			if got, _ := st.Get(ctx, DefaultName); got != nil {
				t.Errorf("Get() after Delete = %+v, want nil", got)
			}
		})
	}
}

func TestFileStoreRejectsBadNames(t *testing.T) {
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Set(context.Background(), "../escape", Select("g")); err == nil {
		t.Error("Set() with traversal name should fail")
	}
}

func TestWithNodeCopies(t *testing.T) {
	sel := Select("g")
	_ = sel.WithNode("n")
	if sel.NodeID != "" {
		t.Errorf("WithNode() modified the receiver")
	}
}
