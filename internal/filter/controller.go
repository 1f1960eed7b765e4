// Package filter owns user-entered list filter criteria: a debounced
// free-text search plus categorical selections. It derives a stable
// filter key used to detect when accumulated pages must be discarded,
// and the query parameters actually sent to the service.
package filter

import (
	"net/url"
	"sort"
	"strings"
)

// DebounceState tracks where the text input is in its settling cycle.
type DebounceState int

const (
	// Idle: no unsettled input.
	Idle DebounceState = iota
	// Pending: input arrived, quiet-period timer armed.
	Pending
	// Settled: the timer fired and the text was applied.
	Settled
)

// Controller holds raw filter input and exposes settled values. Each
// keystroke re-arms the debounce by invalidating the previous timer's
// token; only the latest timer settles the text.
type Controller struct {
	raw     string
	settled string // trimmed; "" means absent
	state   DebounceState
	seq     int // token of the currently armed timer

	selections map[string]string
	fields     []string // stable iteration order for the key

	key      string
	keyValid bool
}

// New creates a controller with the given categorical defaults. A
// selection valued "all" stays in the filter key but is omitted from
// derived query parameters.
func New(defaults map[string]string) *Controller {
	c := &Controller{
		selections: make(map[string]string, len(defaults)),
	}
	for field, value := range defaults {
		c.selections[field] = value
		c.fields = append(c.fields, field)
	}
	sort.Strings(c.fields)
	return c
}

// SetText records raw input and arms the debounce. The returned token
// identifies the timer that may settle this input; earlier tokens are
// stale.
func (c *Controller) SetText(text string) int {
	c.raw = text
	c.state = Pending
	c.seq++
	return c.seq
}

// Settle applies the pending text if token is still current. It
// reports whether the settled value actually changed, which is what
// should reset the list. Whitespace-only input settles to absent.
func (c *Controller) Settle(token int) bool {
	if c.state != Pending || token != c.seq {
		return false
	}
	c.state = Settled
	next := strings.TrimSpace(c.raw)
	if next == c.settled {
		return false
	}
	c.settled = next
	c.keyValid = false
	return true
}

// Flush settles the current raw text immediately, bypassing the timer.
func (c *Controller) Flush() bool {
	c.seq++
	c.state = Pending
	return c.Settle(c.seq)
}

// Select sets a categorical field and reports whether it changed.
func (c *Controller) Select(field, value string) bool {
	if _, ok := c.selections[field]; !ok {
		return false
	}
	if c.selections[field] == value {
		return false
	}
	c.selections[field] = value
	c.keyValid = false
	return true
}

// Selection returns the current value for a categorical field.
func (c *Controller) Selection(field string) string {
	return c.selections[field]
}

// Text returns the settled search text, "" when absent.
func (c *Controller) Text() string { return c.settled }

// Raw returns the text as typed, before debouncing.
func (c *Controller) Raw() string { return c.raw }

// State returns the debounce state.
func (c *Controller) State() DebounceState { return c.state }

// Key returns an equality-comparable identity of the active filter
// values. It is memoized and recomputed only when a constituent value
// changes. Values are escaped so free text containing '&' or '=' cannot
// collide with another filter combination.
func (c *Controller) Key() string {
	if c.keyValid {
		return c.key
	}
	var b strings.Builder
	b.WriteString("name=")
	b.WriteString(url.QueryEscape(c.settled))
	for _, field := range c.fields {
		b.WriteByte('&')
		b.WriteString(field)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(c.selections[field]))
	}
	c.key = b.String()
	c.keyValid = true
	return c.key
}

// Params returns the values to send with a list request. Absent text
// and "all" selections are omitted entirely, never sent as literals.
func (c *Controller) Params() map[string]string {
	params := make(map[string]string, len(c.fields)+1)
	if c.settled != "" {
		params["name"] = c.settled
	}
	for field, value := range c.selections {
		if value != "" && value != "all" {
			params[field] = value
		}
	}
	return params
}
