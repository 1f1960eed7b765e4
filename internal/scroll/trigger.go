// Package scroll implements the sentinel-visibility trigger that
// drives incremental loading. A sentinel sits just below the last
// rendered item; when it comes within a lookahead margin of the
// visible region the trigger fires once, and re-arms only after the
// sentinel leaves view again (as happens when an appended page pushes
// it down).
package scroll

// Trigger observes one sentinel. It decides only visibility
// transitions; whether a fetch actually happens is the engine's call.
type Trigger struct {
	margin  int
	visible bool
}

// NewTrigger creates a trigger with the given lookahead margin in
// content rows. The margin starts the next fetch before the user
// reaches the true end.
func NewTrigger(margin int) *Trigger {
	return &Trigger{margin: margin}
}

// Observe updates visibility from the sentinel's content offset and
// the bottom edge of the visible region. It returns true exactly when
// the sentinel transitions into view; remaining visible does not
// re-fire.
func (t *Trigger) Observe(sentinel, viewBottom int) bool {
	nowVisible := sentinel <= viewBottom+t.margin
	fired := nowVisible && !t.visible
	t.visible = nowVisible
	return fired
}

// Visible reports whether the sentinel was in view at last Observe.
func (t *Trigger) Visible() bool { return t.visible }

// Reset forgets the current visibility so the next Observe may fire
// again. Used when the list is discarded and rebuilt.
func (t *Trigger) Reset() { t.visible = false }
