// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package builtin

import (
	"fmt"

	"github.com/wavetermdev/facetengine/pkg/comp"
	"github.com/wavetermdev/facetengine/pkg/rendersvc"
)

type Item struct {
	Key   string `json:"key" yaml:"key"`
	Value any    `json:"value" yaml:"value"`
}

// TemplateFn builds the component for one item
type TemplateFn func(it *Iteration, item Item, idx int) (comp.Component, error)

// UpdateFn pushes a changed item value into the component built for it earlier
type UpdateFn func(c comp.Component, item Item)

// Iteration renders one component per item. Components are cached by item key so a
// reordered item list moves the existing components instead of rebuilding them.
type Iteration struct {
	Common
	Items    []Item
	Template TemplateFn
	Update   UpdateFn
	cache    map[string]comp.Component
}

func MakeIteration(svc *rendersvc.Service, owner comp.Component, template TemplateFn, items ...Item) *Iteration {
	return &Iteration{
		Common:   makeCommon(svc, Type_Iteration, owner),
		Items:    items,
		Template: template,
		cache:    make(map[string]comp.Component),
	}
}

// Child returns the component currently built for key
func (it *Iteration) Child(key string) comp.Component {
	return it.cache[key]
}

// buildFacet returns the facet for the current items plus the cached components no
// longer used by any item
func (it *Iteration) buildFacet() ([]comp.Entry, []comp.Component, error) {
	if it.Template == nil {
		return nil, nil, fmt.Errorf("iteration %s has no template", it.GetId())
	}
	newCache := make(map[string]comp.Component, len(it.Items))
	facet := make([]comp.Entry, 0, len(it.Items))
	for idx, item := range it.Items {
		if _, dup := newCache[item.Key]; dup {
			return nil, nil, fmt.Errorf("iteration %s: duplicate item key %q", it.GetId(), item.Key)
		}
		c := it.cache[item.Key]
		if c != nil && c.IsValid() {
			if it.Update != nil {
				it.Update(c, item)
			}
		} else {
			var err error
			c, err = it.Template(it, item, idx)
			if err != nil {
				return nil, nil, fmt.Errorf("iteration %s: item %q: %w", it.GetId(), item.Key, err)
			}
			if ads, ok := c.(autoDestroySetter); ok {
				ads.SetAutoDestroy(true)
			}
		}
		newCache[item.Key] = c
		facet = append(facet, comp.Ref(c))
	}
	var dropped []comp.Component
	for key, c := range it.cache {
		if newCache[key] != c {
			dropped = append(dropped, c)
		}
	}
	it.cache = newCache
	return facet, dropped, nil
}

func (it *Iteration) Render() (any, error) {
	facet, _, err := it.buildFacet()
	if err != nil {
		return nil, err
	}
	return it.Svc.RenderFacet(it, facet, nil)
}

func (it *Iteration) Rerender() (any, error) {
	facet, dropped, err := it.buildFacet()
	if err != nil {
		return nil, err
	}
	rtn, err := it.Svc.RerenderFacet(it, facet, nil)
	if err != nil {
		return nil, err
	}
	// auto-destroy children were destroyed by the reconcile, this catches the others
	for _, c := range dropped {
		if err := it.Svc.Destroy(c); err != nil {
			return nil, err
		}
	}
	return rtn, nil
}

func (it *Iteration) Unrender() error {
	return it.Svc.UnrenderFacet(it, nil)
}

func (it *Iteration) AfterRender() error {
	return it.afterRenderFacet()
}

func (it *Iteration) SetItems(items ...Item) {
	it.Items = items
	it.markDirty(it, "v.items")
}
