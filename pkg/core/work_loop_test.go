package core

import (
	"testing"

	"github.com/go-drift/reactron/pkg/errors"
)

func silenceErrors(t *testing.T) {
	t.Helper()
	errors.SetHandler(&discardHandler{})
	t.Cleanup(func() { errors.SetHandler(nil) })
}

type discardHandler struct {
	hostErrors      int
	componentErrors int
}

func (h *discardHandler) HandleError(*errors.EngineError)              { h.hostErrors++ }
func (h *discardHandler) HandlePanic(*errors.PanicError)               {}
func (h *discardHandler) HandleComponentError(*errors.ComponentError) { h.componentErrors++ }

func TestWorkLoop_StatesAcrossYields(t *testing.T) {
	ctx, _, container := newTestContext(t)

	if ctx.State() != Idle {
		t.Fatalf("fresh context state = %s, want idle", ctx.State())
	}
	if err := ctx.Render(El("div", nil, Text("a"), Text("b")), container); err != nil {
		t.Fatal(err)
	}
	if ctx.State() != Running {
		t.Fatalf("state after Render = %s, want running", ctx.State())
	}

	// One unit per call: root, div, "a", "b".
	for i := 0; i < 4; i++ {
		budget := 1
		err := ctx.RunWorkLoop(func() bool {
			budget--
			return budget < 0
		})
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if i < 3 && ctx.State() != Running {
			t.Fatalf("step %d: state = %s, want running", i, ctx.State())
		}
		if i < 3 && len(container.children) != 0 {
			t.Fatalf("step %d: host mutated before commit", i)
		}
	}

	if ctx.State() != Idle {
		t.Fatalf("final state = %s, want idle", ctx.State())
	}
	if got := ctx.Stats().Units; got != 4 {
		t.Errorf("units = %d, want 4", got)
	}
	if got, want := container.String(), `<root><div>"a""b"</div></root>`; got != want {
		t.Errorf("host tree = %s, want %s", got, want)
	}
}

func TestWorkLoop_ImmediateYieldMakesNoProgress(t *testing.T) {
	ctx, host, container := newTestContext(t)

	if err := ctx.Render(El("div", nil), container); err != nil {
		t.Fatal(err)
	}
	next := ctx.NextUnit()
	if err := ctx.RunWorkLoop(func() bool { return true }); err != nil {
		t.Fatal(err)
	}
	if ctx.NextUnit() != next {
		t.Error("next unit should be unchanged")
	}
	if host.creates != 0 || ctx.CurrentRoot() != NoFiber {
		t.Error("no work should have been performed")
	}
}

func TestWorkLoop_IdleRunIsNoOp(t *testing.T) {
	ctx, _, _ := newTestContext(t)
	if err := ctx.RunWorkLoop(nil); err != nil {
		t.Fatal(err)
	}
	if ctx.Stats().Commits != 0 {
		t.Error("idle run should not commit")
	}
}

func TestWorkLoop_CreateFailureIsRetryable(t *testing.T) {
	silenceErrors(t)
	ctx, host, container := newTestContext(t)
	host.failCreate = 2

	if err := ctx.Render(El("div", nil, Text("a")), container); err != nil {
		t.Fatal(err)
	}
	err := ctx.RunWorkLoop(nil)
	var engineErr *errors.EngineError
	if !errors.As(err, &engineErr) || engineErr.Kind != errors.KindHost {
		t.Fatalf("expected host EngineError, got %v", err)
	}
	if !errors.Is(err, errHostRefused) {
		t.Errorf("error should wrap the host error, got %v", err)
	}
	if engineErr.Fiber != TextType {
		t.Errorf("failed fiber = %q, want %q", engineErr.Fiber, TextType)
	}
	if ctx.State() != Running {
		t.Fatalf("state = %s, want running", ctx.State())
	}
	if ctx.CurrentRoot() != NoFiber {
		t.Error("nothing should be committed")
	}

	host.failCreate = 0
	runSync(t, ctx)
	if got, want := container.String(), `<root><div>"a"</div></root>`; got != want {
		t.Errorf("host tree = %s, want %s", got, want)
	}
}

func TestWorkLoop_CommitFailureDoesNotPromote(t *testing.T) {
	silenceErrors(t)
	ctx, host, container := newTestContext(t)

	renderSync(t, ctx, El("div", &Props{ClassName: "v1"}), container)
	committed := ctx.CurrentRoot()

	host.failAppend = 2
	if err := ctx.Render(El("span", nil, Text("a"), Text("b")), container); err != nil {
		t.Fatal(err)
	}
	err := ctx.RunWorkLoop(nil)
	if !errors.Is(err, errHostRefused) {
		t.Fatalf("expected host refusal, got %v", err)
	}
	if ctx.CurrentRoot() != committed {
		t.Error("current root must not advance after a failed commit")
	}
	if ctx.State() != Committing {
		t.Fatalf("state = %s, want committing", ctx.State())
	}

	host.failAppend = 0
	runSync(t, ctx)
	if ctx.CurrentRoot() == committed {
		t.Error("current root should advance after the commit completes")
	}
	// Every effect applied exactly once: remove div, append span, "a", "b".
	if got, want := container.String(), `<root><span>"a""b"</span></root>`; got != want {
		t.Errorf("host tree = %s, want %s", got, want)
	}
	if host.removes != 1 {
		t.Errorf("removes = %d, want 1", host.removes)
	}
}

func TestWorkLoop_ComponentPanicAbortsRender(t *testing.T) {
	silenceErrors(t)
	ctx, _, container := newTestContext(t)

	renderSync(t, ctx, El("p", &Props{ClassName: "ok"}), container)
	committed := ctx.CurrentRoot()

	broken := func(*Scope, any) *Element { panic("broken component") }
	if err := ctx.Render(El("div", nil, Func(broken, nil)), container); err != nil {
		t.Fatal(err)
	}
	err := ctx.RunWorkLoop(nil)
	var compErr *errors.ComponentError
	if !errors.As(err, &compErr) {
		t.Fatalf("expected ComponentError, got %v", err)
	}
	if compErr.Recovered != "broken component" {
		t.Errorf("recovered = %v", compErr.Recovered)
	}
	if ctx.State() != Idle {
		t.Errorf("state = %s, want idle", ctx.State())
	}
	if ctx.CurrentRoot() != committed {
		t.Error("current root must be untouched")
	}
	if got, want := container.String(), `<root><p class=ok></p></root>`; got != want {
		t.Errorf("host tree = %s, want %s", got, want)
	}
}

func TestWorkLoop_RenderFromComponentIsRejected(t *testing.T) {
	ctx, _, container := newTestContext(t)

	var renderErr, loopErr error
	sneaky := func(*Scope, any) *Element {
		renderErr = ctx.Render(Text("nested"), container)
		loopErr = ctx.RunWorkLoop(nil)
		return Text("ok")
	}
	renderSync(t, ctx, Func(sneaky, nil), container)

	if !errors.Is(renderErr, errors.ErrReentrantRender) {
		t.Errorf("Render from component = %v, want ErrReentrantRender", renderErr)
	}
	if !errors.Is(loopErr, errors.ErrReentrantRender) {
		t.Errorf("RunWorkLoop from component = %v, want ErrReentrantRender", loopErr)
	}
}

func TestRender_NilContainer(t *testing.T) {
	ctx, _, _ := newTestContext(t)
	err := ctx.Render(Text("x"), nil)
	var engineErr *errors.EngineError
	if !errors.As(err, &engineErr) || engineErr.Kind != errors.KindInvariant {
		t.Fatalf("expected invariant EngineError, got %v", err)
	}
}

func TestRender_DiscardsUnfinishedWork(t *testing.T) {
	ctx, _, container := newTestContext(t)

	if err := ctx.Render(El("div", nil, Text("old")), container); err != nil {
		t.Fatal(err)
	}
	steps := 0
	if err := ctx.RunWorkLoop(func() bool { steps++; return steps > 2 }); err != nil {
		t.Fatal(err)
	}
	if ctx.PendingEffects() == 0 {
		t.Fatal("expected pending effects from the first pass")
	}

	renderSync(t, ctx, El("section", nil), container)

	if got, want := container.String(), `<root><section></section></root>`; got != want {
		t.Errorf("host tree = %s, want %s", got, want)
	}
}

func TestWorkLoop_TraversalIsDepthFirstPreOrder(t *testing.T) {
	ctx, _, container := newTestContext(t)

	var order []string
	probe := func(name string) *Element {
		return Func(func(*Scope, any) *Element {
			order = append(order, name)
			return nil
		}, nil)
	}
	tree := El("div", nil,
		El("div", nil, probe("a"), El("div", nil, probe("b"))),
		probe("c"),
		El("div", nil, probe("d")),
	)
	renderSync(t, ctx, tree, container)

	want := []string{"a", "b", "c", "d"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestArena_SweepReleasesPreviousTrees(t *testing.T) {
	ctx, _, container := newTestContext(t)

	build := func(n int) *Element {
		return El("ul", nil, textList(make([]string, n)...)...)
	}
	renderSync(t, ctx, build(10), container)
	live := ctx.Stats().LiveFiber

	for i := 0; i < 20; i++ {
		renderSync(t, ctx, build(10), container)
	}

	stats := ctx.Stats()
	if stats.LiveFiber != live {
		t.Errorf("live fibers = %d, want %d", stats.LiveFiber, live)
	}
	if stats.ArenaSize > 2*live+1 {
		t.Errorf("arena grew to %d slots for %d live fibers", stats.ArenaSize, live)
	}
	if stats.Freed == 0 {
		t.Error("expected sweeps to free fibers")
	}
}

func TestArena_DanglingHandlePanics(t *testing.T) {
	a := newFiberArena()
	defer func() {
		if _, ok := recover().(*errors.InvariantError); !ok {
			t.Error("expected InvariantError panic")
		}
	}()
	a.get(FiberID(5))
}
