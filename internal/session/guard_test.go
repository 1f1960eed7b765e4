package session

import (
	"testing"

	"github.com/taskdeck/taskdeck/internal/api"
)

func TestGuardWaitsForHydration(t *testing.T) {
	db := openTestDB(t)
	mirror := NewMirror(t.TempDir())
	store := &Store{db: db, mirror: mirror, logger: testLogger()}
	guard := NewGuard(store, mirror)

	if got := guard.Advance(); got != Hydrating {
		t.Errorf("state = %v before hydration, want Hydrating", got)
	}

	store.hydrate()
	if got := guard.Advance(); got != Denied {
		t.Errorf("state = %v with no credential anywhere, want Denied", got)
	}
}

func TestGuardAllowsOnStoreCredential(t *testing.T) {
	db := openTestDB(t)
	mirror := NewMirror(t.TempDir())
	store := NewStore(db, mirror, testLogger())
	waitHydrated(t, store)
	store.SetSession("tok", &api.User{ID: "u1"})

	guard := NewGuard(store, mirror)
	if got := guard.Advance(); got != Allowed {
		t.Errorf("state = %v, want Allowed", got)
	}
}

func TestGuardAllowsOnMirrorAlone(t *testing.T) {
	db := openTestDB(t)
	stateDir := t.TempDir()
	mirror := NewMirror(stateDir)
	mirror.Set("mirrored-tok")

	// Store hydrates to empty; the mirror still carries a credential.
	store := NewStore(db, mirror, testLogger())
	waitHydrated(t, store)

	guard := NewGuard(store, mirror)
	if got := guard.Advance(); got != Allowed {
		t.Errorf("state = %v with mirror credential, want Allowed", got)
	}
}

func TestGuardStatesAreTerminal(t *testing.T) {
	db := openTestDB(t)
	mirror := NewMirror(t.TempDir())
	store := NewStore(db, mirror, testLogger())
	waitHydrated(t, store)

	guard := NewGuard(store, mirror)
	if got := guard.Advance(); got != Denied {
		t.Fatalf("state = %v, want Denied", got)
	}

	// Acquiring a credential later does not flip a settled guard.
	store.SetSession("tok", &api.User{ID: "u1"})
	if got := guard.Advance(); got != Denied {
		t.Errorf("state = %v after late credential, want still Denied", got)
	}
}
