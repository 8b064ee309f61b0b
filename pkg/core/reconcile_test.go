package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func textList(values ...string) []*Element {
	out := make([]*Element, len(values))
	for i, v := range values {
		out[i] = Text(v)
	}
	return out
}

func TestReconcile_FirstRenderPlacesEveryNodeInPreOrder(t *testing.T) {
	ctx, _, container := newTestContext(t)

	tree := El("div", nil,
		El("span", nil, Text("a")),
		Text("b"),
	)
	renderSync(t, ctx, tree, container)

	want := []string{`placement div`, `placement span`, `placement "a"`, `placement "b"`}
	if diff := cmp.Diff(want, effectSummary(ctx.LastCommit())); diff != "" {
		t.Errorf("effects mismatch (-want +got):\n%s", diff)
	}
	if got, want := container.String(), `<root><div><span>"a"</span>"b"</div></root>`; got != want {
		t.Errorf("host tree = %s, want %s", got, want)
	}
}

func TestReconcile_IdenticalPropsProduceNoUpdate(t *testing.T) {
	ctx, host, container := newTestContext(t)

	build := func() *Element {
		return El("div", &Props{ClassName: "a"}, Text("hello"))
	}
	renderSync(t, ctx, build(), container)
	host.calls = nil

	renderSync(t, ctx, build(), container)

	if got := ctx.LastCommit(); len(got) != 0 {
		t.Errorf("expected no effects, got %v", effectSummary(got))
	}
	if len(host.calls) != 0 {
		t.Errorf("expected no host calls, got %v", host.calls)
	}
}

func TestReconcile_ChangedClassUpdatesInPlace(t *testing.T) {
	ctx, host, container := newTestContext(t)

	renderSync(t, ctx, El("div", &Props{ClassName: "a"}), container)
	before := container.children[0]

	renderSync(t, ctx, El("div", &Props{ClassName: "b"}), container)

	if diff := cmp.Diff([]string{"update div"}, effectSummary(ctx.LastCommit())); diff != "" {
		t.Errorf("effects mismatch (-want +got):\n%s", diff)
	}
	if len(container.children) != 1 {
		t.Fatalf("container has %d children, want 1", len(container.children))
	}
	after := container.children[0]
	if after != before {
		t.Error("expected the same host node to be reused")
	}
	if after.props.ClassName != "b" {
		t.Errorf("class = %q, want %q", after.props.ClassName, "b")
	}
	if host.creates != 1 {
		t.Errorf("creates = %d, want 1", host.creates)
	}
}

func TestReconcile_TypeChangeDeletesAndPlaces(t *testing.T) {
	ctx, _, container := newTestContext(t)

	renderSync(t, ctx, El("div", nil), container)
	renderSync(t, ctx, El("span", nil), container)

	want := []string{"deletion div", "placement span"}
	if diff := cmp.Diff(want, effectSummary(ctx.LastCommit())); diff != "" {
		t.Errorf("effects mismatch (-want +got):\n%s", diff)
	}
	if got, want := container.String(), `<root><span></span></root>`; got != want {
		t.Errorf("host tree = %s, want %s", got, want)
	}
}

func TestReconcile_ShrinkingListUpdatesByPosition(t *testing.T) {
	ctx, host, container := newTestContext(t)

	renderSync(t, ctx, El("ul", nil, textList("x", "y", "z")...), container)
	list := container.children[0]
	y := list.children[1]
	host.calls = nil

	renderSync(t, ctx, El("ul", nil, textList("x", "z")...), container)

	want := []string{`deletion "z"`, `update "z"`}
	if diff := cmp.Diff(want, effectSummary(ctx.LastCommit())); diff != "" {
		t.Errorf("effects mismatch (-want +got):\n%s", diff)
	}
	wantCalls := []string{`remove "z"`, `update "y" -> "z"`}
	if diff := cmp.Diff(wantCalls, host.calls); diff != "" {
		t.Errorf("host calls mismatch (-want +got):\n%s", diff)
	}
	if list.children[1] != y {
		t.Error("position 1 should keep its host node")
	}
	if got, want := list.String(), `<ul>"x""z"</ul>`; got != want {
		t.Errorf("list = %s, want %s", got, want)
	}
}

func TestReconcile_GrowingListAppendsTrailingPlacements(t *testing.T) {
	ctx, _, container := newTestContext(t)

	renderSync(t, ctx, El("ul", nil, textList("a")...), container)
	renderSync(t, ctx, El("ul", nil, textList("a", "b", "c")...), container)

	want := []string{`placement "b"`, `placement "c"`}
	if diff := cmp.Diff(want, effectSummary(ctx.LastCommit())); diff != "" {
		t.Errorf("effects mismatch (-want +got):\n%s", diff)
	}
	if got, want := container.String(), `<root><ul>"a""b""c"</ul></root>`; got != want {
		t.Errorf("host tree = %s, want %s", got, want)
	}
}

func TestReconcile_MidListTypeChangeIsPositional(t *testing.T) {
	ctx, _, container := newTestContext(t)

	renderSync(t, ctx, El("div", nil, El("p", nil), El("span", nil), El("p", nil)), container)
	renderSync(t, ctx, El("div", nil, El("p", nil), El("b", nil), El("p", nil)), container)

	want := []string{"deletion span", "placement b"}
	if diff := cmp.Diff(want, effectSummary(ctx.LastCommit())); diff != "" {
		t.Errorf("effects mismatch (-want +got):\n%s", diff)
	}
	// Placement appends, so the replacement lands after the untouched sibling.
	if got, want := container.String(), `<root><div><p></p><p></p><b></b></div></root>`; got != want {
		t.Errorf("host tree = %s, want %s", got, want)
	}
}

func TestReconcile_LinksAlternatesAndSiblings(t *testing.T) {
	ctx, _, container := newTestContext(t)

	renderSync(t, ctx, El("ul", nil, textList("a", "b")...), container)
	firstUL := ctx.arena.get(ctx.arena.get(ctx.CurrentRoot()).child)
	firstHost := firstUL.host

	if err := ctx.Render(El("ul", nil, textList("a", "c")...), container); err != nil {
		t.Fatal(err)
	}
	// Perform the root and the list only.
	steps := 0
	if err := ctx.RunWorkLoop(func() bool { steps++; return steps > 2 }); err != nil {
		t.Fatal(err)
	}

	wipUL := ctx.arena.get(ctx.arena.get(ctx.WorkInProgressRoot()).child)
	if wipUL.host != firstHost {
		t.Error("list fiber should reuse its alternate's host node")
	}
	if wipUL.alternate == NoFiber {
		t.Fatal("list fiber should link its alternate")
	}
	a := ctx.arena.get(wipUL.child)
	b := ctx.arena.get(a.sibling)
	if a.parent != ctx.arena.get(ctx.WorkInProgressRoot()).child || b.parent != a.parent {
		t.Error("children should point back at the list fiber")
	}
	if a.effect != EffectNone || b.effect != Update {
		t.Errorf("effects = %s, %s; want none, update", a.effect, b.effect)
	}
	if b.sibling != NoFiber {
		t.Error("last child should have no sibling")
	}
	runSync(t, ctx)
}

func TestReconcile_FunctionalFibersAreNeverUpdated(t *testing.T) {
	ctx, _, container := newTestContext(t)

	view := func(s *Scope, props any) *Element {
		return El("p", &Props{ClassName: props.(string)})
	}
	renderSync(t, ctx, Func(view, "one"), container)
	renderSync(t, ctx, Func(view, "two"), container)

	if diff := cmp.Diff([]string{"update p"}, effectSummary(ctx.LastCommit())); diff != "" {
		t.Errorf("effects mismatch (-want +got):\n%s", diff)
	}
}

func TestReconcile_ListenerHandleChangeIsAnUpdate(t *testing.T) {
	ctx, _, container := newTestContext(t)

	l1 := On(func(Event) {})
	renderSync(t, ctx, El("button", &Props{OnClick: l1}), container)
	renderSync(t, ctx, El("button", &Props{OnClick: l1}), container)
	if got := ctx.LastCommit(); len(got) != 0 {
		t.Errorf("same handle: expected no effects, got %v", effectSummary(got))
	}

	renderSync(t, ctx, El("button", &Props{OnClick: On(func(Event) {})}), container)
	if diff := cmp.Diff([]string{"update button"}, effectSummary(ctx.LastCommit())); diff != "" {
		t.Errorf("effects mismatch (-want +got):\n%s", diff)
	}
}

func TestPropsEqual(t *testing.T) {
	l := On(func(Event) {})
	tests := []struct {
		name string
		a, b *Props
		want bool
	}{
		{"both nil", nil, nil, true},
		{"nil and empty", nil, &Props{}, true},
		{"class differs", &Props{ClassName: "a"}, &Props{ClassName: "b"}, false},
		{"checked same value", &Props{Checked: Bool(true)}, &Props{Checked: Bool(true)}, true},
		{"checked nil vs false", &Props{}, &Props{Checked: Bool(false)}, false},
		{"same listener", &Props{OnBlur: l}, &Props{OnBlur: l}, true},
		{"different listener", &Props{OnBlur: l}, &Props{OnBlur: On(func(Event) {})}, false},
		{"placeholder differs", &Props{Placeholder: "x"}, &Props{Placeholder: "y"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEl_SkipsNilChildren(t *testing.T) {
	el := El("div", nil, nil, Text("a"), nil)
	if len(el.Children) != 1 {
		t.Fatalf("children = %d, want 1", len(el.Children))
	}
	if el.Props == nil {
		t.Error("El should default props")
	}
}
