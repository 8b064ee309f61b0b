package cmd

import (
	"fmt"

	"github.com/go-drift/reactron/cmd/reactron/internal/todo"
	"github.com/go-drift/reactron/pkg/core"
	"github.com/go-drift/reactron/pkg/host/dom"
	"github.com/go-drift/reactron/pkg/scheduler"
)

// demo is one engine instance rendering the todo app.
type demo struct {
	doc   *dom.Document
	sched *scheduler.Scheduler
	root  *core.Element
}

func (c *cli) newDemo(opts ...dom.Option) (*demo, error) {
	doc, err := dom.NewDocument(opts...)
	if err != nil {
		return nil, err
	}
	s := c.settings
	sched := scheduler.New(core.NewContext(doc), scheduler.Config{
		Budget:       s.Budget,
		MaxSteps:     s.MaxSteps,
		TraceSamples: s.TraceSamples,
		SlowFrame:    s.SlowFrame,
		Logger:       c.logger,
	})
	return &demo{
		doc:   doc,
		sched: sched,
		root:  core.FuncOf(todo.App, todo.Props{Title: s.AppName}),
	}, nil
}

// renderSync renders the app and runs frames until idle. It must not be used
// once a frame loop owns the scheduler.
func (d *demo) renderSync() error {
	if err := d.sched.Context().Render(d.root, d.doc.Container()); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if _, err := d.sched.RunUntilIdle(0); err != nil {
		return fmt.Errorf("initial render: %w", err)
	}
	return nil
}
