package core

// reconcileChildren diffs the pending element children of wipID against the
// child list of its alternate, position by position, and links the resulting
// fibers under wipID. Old fibers without a same-typed successor are tagged
// Deletion and go straight onto the effect list, since the new tree never
// visits them.
func (c *Context) reconcileChildren(wipID FiberID) {
	wip := c.arena.get(wipID)
	elements := wip.elementChildren

	oldID := NoFiber
	if wip.alternate != NoFiber {
		oldID = c.arena.get(wip.alternate).child
	}

	first, prev := NoFiber, NoFiber
	for i := 0; i < len(elements) || oldID != NoFiber; i++ {
		var el *Element
		if i < len(elements) {
			el = elements[i]
		}
		var old *fiber
		if oldID != NoFiber {
			old = c.arena.get(oldID)
		}
		sameType := old != nil && el != nil && old.typ == el.Type

		newID := NoFiber
		switch {
		case sameType:
			newID = c.fiberFromElement(el, wipID)
			nf := c.arena.get(newID)
			nf.alternate = oldID
			nf.host = old.host
			if !nf.isFunctional() && !old.props.Equal(nf.props) {
				nf.effect = Update
			}
		case el != nil:
			newID = c.fiberFromElement(el, wipID)
			c.arena.get(newID).effect = Placement
		}

		if old != nil {
			if !sameType {
				old.effect = Deletion
				c.effects = append(c.effects, oldID)
			}
			oldID = old.sibling
		}

		if newID == NoFiber {
			continue
		}
		if first == NoFiber {
			first = newID
		} else {
			c.arena.get(prev).sibling = newID
		}
		prev = newID
	}

	wip.child = first
}

// fiberFromElement allocates a fiber seeded from el. The element's props and
// children are referenced, not copied; elements are immutable.
func (c *Context) fiberFromElement(el *Element, parent FiberID) FiberID {
	id := c.arena.alloc(el.Type)
	f := c.arena.get(id)
	f.props = el.Props
	f.elementChildren = el.Children
	f.parent = parent
	if el.IsFunctional() {
		f.component = el.Component
		f.componentProps = el.ComponentProps
		f.name = el.Name
		f.hooks = []*hookCell{}
	}
	return id
}
