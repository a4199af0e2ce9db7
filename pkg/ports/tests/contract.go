package tests

import (
	"context"
	"sort"
	"testing"

	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/ports"
)

// StateStoreContractTest is a reusable test suite that verifies if an adapter complies with ports.StateStore.
func StateStoreContractTest(t *testing.T, store ports.StateStore) {
	t.Helper()
	ctx := context.Background()

	// 1. Load non-existent session
	t.Run("Load_NotFound", func(t *testing.T) {
		_, err := store.Load(ctx, "missing")
		if err != domain.ErrSessionNotFound {
			t.Errorf("expected ErrSessionNotFound, got %v", err)
		}
	})

	// 2. Save and Load round trip, including variables and history
	t.Run("Save_Load", func(t *testing.T) {
		state := domain.NewState()
		state.SessionID = "contract-1"
		state.Buffer = "2+3*4"
		state.Mode = domain.ModeShowingResult
		state.Result = "14"
		state.Vars.Set(domain.VarAns, 14)
		state.Vars.Set(domain.VarM, -2.5)
		state.Format = domain.DisplayFormat{Mode: domain.FormatFixed, Places: 4}
		state.History = []domain.HistoryEntry{{Expression: "2+3*4", Value: 14, Display: "14"}}

		if err := store.Save(ctx, "contract-1", state); err != nil {
			t.Fatalf("failed to save state: %v", err)
		}

		loaded, err := store.Load(ctx, "contract-1")
		if err != nil {
			t.Fatalf("failed to load state: %v", err)
		}
		if loaded.Buffer != state.Buffer || loaded.Result != state.Result || loaded.Mode != state.Mode {
			t.Errorf("display mismatch: got %+v", loaded)
		}
		if loaded.Vars != state.Vars {
			t.Errorf("variables mismatch: got %+v, want %+v", loaded.Vars, state.Vars)
		}
		if loaded.Format != state.Format {
			t.Errorf("format mismatch: got %+v", loaded.Format)
		}
		if len(loaded.History) != 1 || loaded.History[0].Expression != "2+3*4" {
			t.Errorf("history mismatch: got %+v", loaded.History)
		}
	})

	// 3. Mutating a loaded state must not leak into the store
	t.Run("Load_ReturnsCopy", func(t *testing.T) {
		loaded, err := store.Load(ctx, "contract-1")
		if err != nil {
			t.Fatalf("failed to load state: %v", err)
		}
		loaded.Buffer = "mutated"

		again, err := store.Load(ctx, "contract-1")
		if err != nil {
			t.Fatalf("failed to load state: %v", err)
		}
		if again.Buffer == "mutated" {
			t.Error("store returned a shared reference")
		}
	})

	// 4. List
	t.Run("List", func(t *testing.T) {
		if err := store.Save(ctx, "contract-2", domain.NewState()); err != nil {
			t.Fatalf("failed to save state: %v", err)
		}
		ids, err := store.List(ctx)
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		sort.Strings(ids)
		if len(ids) != 2 || ids[0] != "contract-1" || ids[1] != "contract-2" {
			t.Errorf("expected [contract-1 contract-2], got %v", ids)
		}
	})

	// 5. Delete
	t.Run("Delete", func(t *testing.T) {
		for _, id := range []string{"contract-1", "contract-2"} {
			if err := store.Delete(ctx, id); err != nil {
				t.Fatalf("failed to delete %s: %v", id, err)
			}
			if _, err := store.Load(ctx, id); err != domain.ErrSessionNotFound {
				t.Errorf("expected ErrSessionNotFound after delete, got %v", err)
			}
		}
		if err := store.Delete(ctx, "never-existed"); err != nil {
			t.Errorf("deleting a missing session should succeed, got %v", err)
		}
	})
}
