// Package todo is the demo application used by the reactron CLI. It touches
// every prop and listener kind the DOM host supports.
package todo

import (
	"strconv"
	"strings"

	"github.com/go-drift/reactron/pkg/core"
)

// Filter selects which items the list shows.
type Filter string

const (
	FilterAll    Filter = "all"
	FilterActive Filter = "active"
	FilterDone   Filter = "done"
)

// Filters in display order.
var Filters = []Filter{FilterAll, FilterActive, FilterDone}

// Placeholder is the new-item input's placeholder text.
const Placeholder = "What needs to be done?"

// Item is one todo entry.
type Item struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// Props configures App.
type Props struct {
	Title   string
	Initial []Item
}

// App is the root component.
func App(s *core.Scope, p Props) *core.Element {
	items, setItems := core.UseState(s, p.Initial)
	draft, setDraft := core.UseState(s, "")
	filter, setFilter := core.UseState(s, FilterAll)
	nextID, setNextID := core.UseState(s, len(p.Initial)+1)

	add := func() {
		text := strings.TrimSpace(draft)
		if text == "" {
			return
		}
		setItems(append(append([]Item(nil), items...), Item{ID: nextID, Text: text}))
		setNextID(nextID + 1)
		setDraft("")
	}
	toggle := func(id int) {
		next := append([]Item(nil), items...)
		for i := range next {
			if next[i].ID == id {
				next[i].Done = !next[i].Done
			}
		}
		setItems(next)
	}
	remove := func(id int) {
		next := make([]Item, 0, len(items))
		for _, it := range items {
			if it.ID != id {
				next = append(next, it)
			}
		}
		setItems(next)
	}

	var rows []*core.Element
	for _, it := range visible(items, filter) {
		rows = append(rows, core.FuncOf(row, rowProps{Item: it, OnToggle: toggle, OnRemove: remove}))
	}

	title := p.Title
	if title == "" {
		title = "todos"
	}

	return core.El("section", &core.Props{ClassName: "todoapp"},
		core.El("h1", nil, core.Text(title)),
		core.El("input", &core.Props{
			ClassName:   "new-todo",
			InputType:   "text",
			Placeholder: Placeholder,
			Value:       draft,
			OnChange:    core.On(func(e core.Event) { setDraft(e.Value) }),
			OnKeyDown: core.On(func(e core.Event) {
				switch e.Key {
				case "Enter":
					add()
				case "Escape":
					setDraft("")
				}
			}),
			OnBlur: core.On(func(core.Event) { setDraft(strings.TrimSpace(draft)) }),
		}),
		core.El("ul", &core.Props{ClassName: "todo-list"}, rows...),
		core.FuncOf(footer, footerProps{Items: items, Filter: filter, OnFilter: setFilter}),
	)
}

func visible(items []Item, f Filter) []Item {
	if f == FilterAll {
		return items
	}
	var out []Item
	for _, it := range items {
		if it.Done == (f == FilterDone) {
			out = append(out, it)
		}
	}
	return out
}

type rowProps struct {
	Item     Item
	OnToggle func(id int)
	OnRemove func(id int)
}

func row(_ *core.Scope, p rowProps) *core.Element {
	class := "todo"
	if p.Item.Done {
		class += " completed"
	}
	id := p.Item.ID
	return core.El("li", &core.Props{ClassName: class},
		core.El("input", &core.Props{
			ClassName: "toggle",
			InputType: "checkbox",
			Checked:   core.Bool(p.Item.Done),
			OnChange:  core.On(func(core.Event) { p.OnToggle(id) }),
		}),
		core.El("label", nil, core.Text(p.Item.Text)),
		core.El("button", &core.Props{
			ClassName: "destroy",
			OnClick:   core.On(func(core.Event) { p.OnRemove(id) }),
		}, core.Text("×")),
	)
}

type footerProps struct {
	Items    []Item
	Filter   Filter
	OnFilter func(Filter)
}

func footer(_ *core.Scope, p footerProps) *core.Element {
	left := 0
	for _, it := range p.Items {
		if !it.Done {
			left++
		}
	}
	noun := "items"
	if left == 1 {
		noun = "item"
	}

	buttons := make([]*core.Element, 0, len(Filters))
	for _, f := range Filters {
		class := "filter"
		if f == p.Filter {
			class += " selected"
		}
		buttons = append(buttons, core.El("button", &core.Props{
			ClassName: class,
			OnClick:   core.On(func(core.Event) { p.OnFilter(f) }),
		}, core.Text(string(f))))
	}

	return core.El("footer", &core.Props{ClassName: "footer"},
		core.El("span", &core.Props{ClassName: "todo-count"}, core.Text(strconv.Itoa(left)+" "+noun+" left")),
		core.El("div", &core.Props{ClassName: "filters"}, buttons...),
	)
}
