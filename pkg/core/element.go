package core

import (
	"reflect"
	"runtime"
	"strings"
)

const (
	// TextType marks text elements. Their NodeValue prop is the text content.
	TextType = "__TEXT"
	// FunctionalType marks function-component elements.
	FunctionalType = "__FUNCTIONAL"
	// RootType is the type of the synthetic fiber at the top of every render.
	RootType = "__ROOT"
)

// Component is a function component. It is invoked once per render of its
// fiber and returns at most one child element.
type Component func(s *Scope, props any) *Element

// Element is an immutable description of one desired UI node.
// Elements must not be modified after they are handed to the engine.
type Element struct {
	// Type is a host tag name, TextType or FunctionalType.
	Type string
	// Props configures host and text elements.
	Props *Props
	// Children are the nested elements of a host element.
	Children []*Element

	// Component and ComponentProps are set for FunctionalType elements.
	Component      Component
	ComponentProps any
	// Name identifies the component in diagnostics.
	Name string
}

// El creates a host element. Nil children are skipped.
func El(tag string, props *Props, children ...*Element) *Element {
	if props == nil {
		props = &Props{}
	}
	kept := children[:0:0]
	for _, child := range children {
		if child != nil {
			kept = append(kept, child)
		}
	}
	return &Element{Type: tag, Props: props, Children: kept}
}

// Text creates a text element.
func Text(value string) *Element {
	return &Element{Type: TextType, Props: &Props{NodeValue: value}}
}

// Func creates a function-component element.
func Func(fn Component, props any) *Element {
	return &Element{
		Type:           FunctionalType,
		Component:      fn,
		ComponentProps: props,
		Name:           funcName(fn),
	}
}

// FuncOf creates a function-component element from a component with typed props.
func FuncOf[P any](fn func(s *Scope, props P) *Element, props P) *Element {
	return &Element{
		Type: FunctionalType,
		Component: func(s *Scope, raw any) *Element {
			typed, _ := raw.(P)
			return fn(s, typed)
		},
		ComponentProps: props,
		Name:           funcName(fn),
	}
}

// IsText reports whether the element is a text element.
func (e *Element) IsText() bool {
	return e.Type == TextType
}

// IsFunctional reports whether the element is a function component.
func (e *Element) IsFunctional() bool {
	return e.Type == FunctionalType
}

func funcName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	name := runtime.FuncForPC(v.Pointer()).Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
