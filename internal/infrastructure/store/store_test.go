package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

type profile struct {
	Height int `json:"height"`
	Age    int `json:"age"`
}

func backends(t *testing.T) map[string]KV {
	t.Helper()

	sqlite, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]KV{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestKVRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := kv.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get missing: want ErrNotFound, got %v", err)
			}

			if err := kv.Set(ctx, "fittrack_profile", []byte(`{"height":180}`)); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if err := kv.Set(ctx, "fittrack_profile", []byte(`{"height":181}`)); err != nil {
				t.Fatalf("Set overwrite: %v", err)
			}
			got, err := kv.Get(ctx, "fittrack_profile")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if string(got) != `{"height":181}` {
				t.Errorf("Get = %s", got)
			}

			if err := kv.Delete(ctx, "fittrack_profile"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := kv.Get(ctx, "fittrack_profile"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get after delete: want ErrNotFound, got %v", err)
			}
		})
	}
}

func TestKeysAndDeletePrefix(t *testing.T) {
	ctx := context.Background()
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, k := range []string{"food_cache:elma", "food_cache:muz", "fittrack_meals"} {
				if err := kv.Set(ctx, k, []byte(`{}`)); err != nil {
					t.Fatalf("Set %s: %v", k, err)
				}
			}

			keys, err := kv.Keys(ctx, "food_cache:")
			if err != nil {
				t.Fatalf("Keys: %v", err)
			}
			if len(keys) != 2 {
				t.Fatalf("Keys = %v, want 2 entries", keys)
			}

			n, err := DeletePrefix(ctx, kv, "food_cache:")
			if err != nil {
				t.Fatalf("DeletePrefix: %v", err)
			}
			if n != 2 {
				t.Errorf("deleted %d, want 2", n)
			}
			if _, err := kv.Get(ctx, "fittrack_meals"); err != nil {
				t.Errorf("unrelated key removed: %v", err)
			}
		})
	}
}

func TestKeysWithNonASCIIPrefix(t *testing.T) {
	ctx := context.Background()
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, k := range []string{"öğün:elma", "öğün:muz", "öğünler", "x_öğün:elma"} {
				if err := kv.Set(ctx, k, []byte(`{}`)); err != nil {
					t.Fatalf("Set %s: %v", k, err)
				}
			}

			keys, err := kv.Keys(ctx, "öğün:")
			if err != nil {
				t.Fatalf("Keys: %v", err)
			}
			if len(keys) != 2 || keys[0] != "öğün:elma" || keys[1] != "öğün:muz" {
				t.Errorf("Keys = %v, want [öğün:elma öğün:muz]", keys)
			}
		})
	}
}

func TestLoadFallsBackOnCorruptValue(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryStore()
	def := profile{Height: 175, Age: 25}

	if got := Load(ctx, kv, "fittrack_profile", def); got != def {
		t.Errorf("missing key: got %+v, want default", got)
	}

	kv.Set(ctx, "fittrack_profile", []byte(`{not json`))
	if got := Load(ctx, kv, "fittrack_profile", def); got != def {
		t.Errorf("corrupt value: got %+v, want default", got)
	}

	if err := Save(ctx, kv, "fittrack_profile", profile{Height: 190, Age: 30}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := Load(ctx, kv, "fittrack_profile", def); got.Height != 190 || got.Age != 30 {
		t.Errorf("after save: got %+v", got)
	}
}
