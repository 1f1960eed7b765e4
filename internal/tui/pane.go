package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/taskdeck/taskdeck/internal/api"
	"github.com/taskdeck/taskdeck/internal/filter"
	"github.com/taskdeck/taskdeck/internal/list"
	"github.com/taskdeck/taskdeck/internal/scroll"
)

// rowHeight is the rendered height of one list item.
const rowHeight = 3

// pane wires one list tab: filter controller, paginated engine,
// scroll trigger and the viewport that renders the accumulation.
type pane[T any] struct {
	ctrl    *filter.Controller
	engine  *list.Engine[T]
	trigger *scroll.Trigger
	search  textinput.Model
	vp      viewport.Model

	selected      int
	debounceToken int
	contentLines  int

	render func(item T, selected bool, width int) string
}

func newPane[T any](margin int, defaults map[string]string, render func(T, bool, int) string) *pane[T] {
	search := textinput.New()
	search.Placeholder = "Search..."
	search.Prompt = "/ "
	search.PromptStyle = InputPromptStyle
	search.CharLimit = 80

	return &pane[T]{
		ctrl:    filter.New(defaults),
		engine:  list.NewEngine[T](),
		trigger: scroll.NewTrigger(margin),
		search:  search,
		render:  render,
	}
}

// resetIfStale issues a page-1 request when the controller's filter
// key no longer matches the engine's. The trigger re-arms because the
// list is rebuilt from scratch.
func (p *pane[T]) resetIfStale() (list.Request, bool) {
	if p.ctrl.Key() == p.engine.Key() && p.engine.Started() {
		return list.Request{}, false
	}
	p.selected = 0
	p.trigger.Reset()
	return p.engine.Reset(p.ctrl.Key()), true
}

// invalidate discards and refetches under the active key. Used after
// mutations and for manual refresh.
func (p *pane[T]) invalidate() list.Request {
	p.selected = 0
	p.trigger.Reset()
	return p.engine.Invalidate()
}

// complete applies a fetch outcome and re-renders. A successful append
// re-arms the trigger: appended pages can be smaller than the lookahead
// margin, so the sentinel may never leave the margin region on its own
// and the next page must still be loadable.
func (p *pane[T]) complete(req list.Request, page list.Page[T], err error) {
	if p.engine.Complete(req, page, err) && err == nil {
		p.trigger.Reset()
	}
	p.sync()
}

// sync re-renders the accumulated items into the viewport and keeps
// the selection visible.
func (p *pane[T]) sync() {
	items := p.engine.Items()
	if p.selected >= len(items) {
		p.selected = len(items) - 1
	}
	if p.selected < 0 {
		p.selected = 0
	}

	var b strings.Builder
	for i, item := range items {
		b.WriteString(p.render(item, i == p.selected, p.vp.Width))
		b.WriteByte('\n')
	}
	p.contentLines = len(items) * rowHeight

	switch {
	case p.engine.Err() != nil:
		b.WriteString(ErrorStyle.Render("Unable to load right now."))
		b.WriteString(DimStyle.Render("  press r to retry"))
	case p.engine.InFlight():
		b.WriteString(DimStyle.Render("Loading..."))
	case len(items) == 0:
		b.WriteString(DimStyle.Render("Nothing matches your filters."))
	case !p.engine.HasNext():
		b.WriteString(DimStyle.Render(fmt.Sprintf("All %d items loaded.", p.engine.TotalItems())))
	}

	p.vp.SetContent(b.String())
	p.scrollToSelection()
}

func (p *pane[T]) scrollToSelection() {
	top := p.selected * rowHeight
	bottom := top + rowHeight
	if top < p.vp.YOffset {
		p.vp.SetYOffset(top)
	} else if bottom > p.vp.YOffset+p.vp.Height {
		p.vp.SetYOffset(bottom - p.vp.Height)
	}
}

// observe feeds the sentinel position to the trigger and, on a
// transition into view, asks the engine for the next page. The engine
// still applies its own in-flight and exhaustion guards.
func (p *pane[T]) observe() (list.Request, bool) {
	fired := p.trigger.Observe(p.contentLines, p.vp.YOffset+p.vp.Height)
	if !fired {
		return list.Request{}, false
	}
	return p.engine.BeginNext()
}

func (p *pane[T]) moveSelection(delta int) {
	count := len(p.engine.Items())
	if count == 0 {
		return
	}
	p.selected += delta
	if p.selected < 0 {
		p.selected = 0
	}
	if p.selected >= count {
		p.selected = count - 1
	}
}

func (p *pane[T]) selectedItem() (T, bool) {
	items := p.engine.Items()
	if p.selected < 0 || p.selected >= len(items) {
		var zero T
		return zero, false
	}
	return items[p.selected], true
}

// renderProject draws one project row: name + status badge, then a
// meta line with timeline, owner and overdue state.
func renderProject(p api.Project, selected bool, width int) string {
	title := p.Name
	if selected {
		title = ItemSelectedStyle.Render("▸ " + title)
	} else {
		title = ItemTitleStyle.Render("  " + title)
	}

	badge := statusBadge(p.Status)
	meta := fmt.Sprintf("  %s → %s · %s", shortDate(p.StartDate), shortDate(p.EndDate), p.CreatedBy.Name)
	line2 := ItemMetaStyle.Render(meta)
	if p.IsOverdue {
		line2 += " " + OverdueStyle.Render(fmt.Sprintf("overdue %dd", p.OverdueDays))
	}

	return title + " " + badge + "\n" + line2 + "\n"
}

// renderTask draws one task row: name, priority and status, then the
// owning project and dates.
func renderTask(t api.Task, selected bool, width int) string {
	title := t.Name
	if selected {
		title = ItemSelectedStyle.Render("▸ " + title)
	} else {
		title = ItemTitleStyle.Render("  " + title)
	}

	line1 := title + " " + priorityBadge(t.Priority) + " " + statusBadge(t.Status)
	meta := fmt.Sprintf("  %s · due %s", t.Project.Name, shortDate(t.EndDate))
	line2 := ItemMetaStyle.Render(meta)
	if t.IsOverdue {
		line2 += " " + OverdueStyle.Render(fmt.Sprintf("overdue %dd", t.OverdueDays))
	}

	return line1 + "\n" + line2 + "\n"
}

func statusBadge(status string) string {
	switch status {
	case api.ProjectActive, api.TaskInProgress, "in-progress":
		return BadgeActiveStyle.Render("[" + status + "]")
	case api.ProjectCompleted, api.TaskDone:
		return BadgeDoneStyle.Render("[" + status + "]")
	default:
		return BadgeMutedStyle.Render("[" + status + "]")
	}
}

func priorityBadge(priority string) string {
	switch priority {
	case api.PriorityCritical:
		return PriorityCriticalStyle.Render("!!" + priority)
	case api.PriorityHigh:
		return PriorityHighStyle.Render("!" + priority)
	default:
		return BadgeMutedStyle.Render(priority)
	}
}

// shortDate trims an RFC3339 timestamp to its date part.
func shortDate(ts string) string {
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}
