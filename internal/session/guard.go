package session

// GuardState is the hydration guard's position in its lifecycle.
type GuardState int

const (
	// Hydrating: the persisted store has not finished restoring.
	Hydrating GuardState = iota
	// Checking: hydration finished, credentials not yet re-validated.
	Checking
	// Allowed: a credential exists in the store or the mirror.
	Allowed
	// Denied: neither source has a credential; redirect to login.
	Denied
)

func (s GuardState) String() string {
	switch s {
	case Hydrating:
		return "hydrating"
	case Checking:
		return "checking"
	case Allowed:
		return "allowed"
	case Denied:
		return "denied"
	}
	return "unknown"
}

// Guard defers protected content until the store has hydrated, then
// re-validates against both the store and the mirror. The mirror alone
// let the route gate make its pre-render decision; the guard closes
// the window where only a stale mirror was valid.
type Guard struct {
	state  GuardState
	store  *Store
	mirror *Mirror
}

// NewGuard creates a guard in the Hydrating state.
func NewGuard(store *Store, mirror *Mirror) *Guard {
	return &Guard{state: Hydrating, store: store, mirror: mirror}
}

// State returns the current guard state without advancing it.
func (g *Guard) State() GuardState { return g.state }

// Advance moves the guard forward as far as current facts allow and
// returns the resulting state. It is safe to call repeatedly; Allowed
// and Denied are terminal.
func (g *Guard) Advance() GuardState {
	if g.state == Hydrating && g.store.HasHydrated() {
		g.state = Checking
	}
	if g.state == Checking {
		if g.store.Session().AccessToken != "" || g.mirror.Read() != "" {
			g.state = Allowed
		} else {
			g.state = Denied
		}
	}
	return g.state
}
