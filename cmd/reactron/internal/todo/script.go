package todo

import (
	"fmt"

	"github.com/go-drift/reactron/pkg/core"
	"github.com/go-drift/reactron/pkg/host/dom"
	"github.com/go-drift/reactron/pkg/scheduler"
)

// Step is one scripted interaction: an event fired at the Index-th element
// carrying class Target.
type Step struct {
	Desc   string
	Target string
	Index  int
	Event  core.Event
}

// Script is the interaction sequence played by "reactron run".
func Script() []Step {
	typeText := func(text string) Step {
		return Step{Desc: "type " + text, Target: "new-todo", Event: core.Event{Type: core.EventChange, Value: text}}
	}
	enter := Step{Desc: "press Enter", Target: "new-todo", Event: core.Event{Type: core.EventKeyDown, Key: "Enter"}}

	return []Step{
		typeText("milk"), enter,
		typeText("bread"), enter,
		typeText("eggs"), enter,
		{Desc: "complete milk", Target: "toggle", Index: 0, Event: core.Event{Type: core.EventChange, Checked: true}},
		{Desc: "show active", Target: "filter", Index: 1, Event: core.Event{Type: core.EventClick}},
		{Desc: "remove bread", Target: "destroy", Index: 0, Event: core.Event{Type: core.EventClick}},
		{Desc: "show all", Target: "filter", Index: 0, Event: core.Event{Type: core.EventClick}},
		typeText("  jam  "),
		{Desc: "leave input", Target: "new-todo", Event: core.Event{Type: core.EventBlur}},
	}
}

// Play fires each step at doc and runs sched until idle before the next.
// after, if non-nil, is called once a step has settled.
func Play(doc *dom.Document, sched *scheduler.Scheduler, steps []Step, after func(Step) error) error {
	for _, step := range steps {
		nodes := doc.FindAll(dom.ByClass(step.Target))
		if step.Index >= len(nodes) {
			return fmt.Errorf("%s: no element %d with class %q (found %d)", step.Desc, step.Index, step.Target, len(nodes))
		}
		if _, err := doc.DispatchTo(nodes[step.Index], step.Event); err != nil {
			return fmt.Errorf("%s: %w", step.Desc, err)
		}
		if _, err := sched.RunUntilIdle(0); err != nil {
			return fmt.Errorf("%s: %w", step.Desc, err)
		}
		if after != nil {
			if err := after(step); err != nil {
				return err
			}
		}
	}
	return nil
}
