// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package builtin

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/wavetermdev/facetengine/pkg/comp"
	"github.com/wavetermdev/facetengine/pkg/rendersvc"
	"github.com/wavetermdev/facetengine/pkg/utilds"
)

const DefaultItemTag = "li"

// DescAttrs are the descriptor attributes understood by the built-in kinds
type DescAttrs struct {
	Id          string            `json:"id,omitempty" jsonschema:"description=explicit component id (defaults to a uuid)"`
	Class       string            `json:"class,omitempty" jsonschema:"description=style class added to every rendered element"`
	Flavor      string            `json:"flavor,omitempty" jsonschema:"description=comma separated flavors of class"`
	AutoDestroy bool              `json:"autodestroy,omitempty"`
	Tag         string            `json:"tag,omitempty" jsonschema:"description=element tag (html)"`
	Attrs       map[string]string `json:"attrs,omitempty" jsonschema:"description=element attributes (html)"`
	Body        []comp.Descriptor `json:"body,omitempty" jsonschema:"description=body facet (html)"`
	Text        string            `json:"text,omitempty" jsonschema:"description=value of text and markup components"`
	Value       []comp.Descriptor `json:"value,omitempty" jsonschema:"description=facet value (expr)"`
	Items       []Item            `json:"items,omitempty" jsonschema:"description=keyed items (iteration)"`
	ItemTag     string            `json:"itemtag,omitempty" jsonschema:"description=element wrapping each item (iteration)"`
}

// Factory instantiates built-in components from descriptors
type Factory struct {
	Svc *rendersvc.Service
}

// MakeFactory creates a factory and installs it on svc
func MakeFactory(svc *rendersvc.Service) *Factory {
	f := &Factory{Svc: svc}
	svc.SetFactory(f)
	return f
}

func DecodeAttrs(attrs map[string]any) (*DescAttrs, error) {
	var rtn DescAttrs
	dconfig := &mapstructure.DecoderConfig{
		Result:           &rtn,
		TagName:          "json",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	}
	decoder, err := mapstructure.NewDecoder(dconfig)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attrs); err != nil {
		return nil, err
	}
	return &rtn, nil
}

// createAll instantiates nested descriptors up front so a facet keeps the same components
// across rerenders
func (f *Factory) createAll(descs []comp.Descriptor, owner comp.Component) ([]comp.Entry, error) {
	rtn := make([]comp.Entry, 0, len(descs))
	for idx, d := range descs {
		d.Owner = owner
		c, err := f.Create(d)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", idx, err)
		}
		rtn = append(rtn, comp.Ref(c))
	}
	return rtn, nil
}

func (f *Factory) Create(desc comp.Descriptor) (comp.Component, error) {
	attrs, err := DecodeAttrs(desc.Attrs)
	if err != nil {
		return nil, utilds.MakeCodedError(utilds.ErrCode_Precondition, fmt.Errorf("bad attributes for %q: %w", desc.Type, err))
	}
	var c comp.Component
	var common *Common
	switch desc.Type {
	case Type_Html:
		if attrs.Tag == "" {
			return nil, utilds.Errorf(utilds.ErrCode_Precondition, "html component needs a tag")
		}
		h := MakeHtml(f.Svc, desc.Owner, attrs.Tag, attrs.Attrs)
		if h.Body, err = f.createAll(attrs.Body, h); err != nil {
			return nil, err
		}
		c, common = h, &h.Common
	case Type_Text:
		t := MakeText(f.Svc, desc.Owner, attrs.Text)
		c, common = t, &t.Common
	case Type_Markup:
		m := MakeMarkup(f.Svc, desc.Owner, attrs.Text)
		c, common = m, &m.Common
	case Type_Expression:
		e := MakeExpression(f.Svc, desc.Owner)
		if e.Value, err = f.createAll(attrs.Value, desc.Owner); err != nil {
			return nil, err
		}
		c, common = e, &e.Common
	case Type_Iteration:
		itemTag := attrs.ItemTag
		if itemTag == "" {
			itemTag = DefaultItemTag
		}
		it := MakeIteration(f.Svc, desc.Owner, f.itemTemplate(itemTag), attrs.Items...)
		it.Update = updateItem
		c, common = it, &it.Common
	default:
		return nil, utilds.Errorf(utilds.ErrCode_Precondition, "unknown component type %q", desc.Type)
	}
	if attrs.Id != "" {
		common.Id = attrs.Id
	}
	common.StyleClass = attrs.Class
	common.FlavorName = attrs.Flavor
	common.Auto = attrs.AutoDestroy
	return c, nil
}

// ItemId is the id of the element built for key by a descriptor iteration
func ItemId(iterationId string, key string) string {
	return iterationId + "." + key
}

func (f *Factory) itemTemplate(itemTag string) TemplateFn {
	return func(it *Iteration, item Item, idx int) (comp.Component, error) {
		h := MakeHtml(f.Svc, it, itemTag, nil)
		h.Id = ItemId(it.GetId(), item.Key)
		t := MakeText(f.Svc, h, fmt.Sprint(item.Value))
		t.Id = h.Id + ".text"
		t.Auto = true
		h.Body = []comp.Entry{comp.Ref(t)}
		return h, nil
	}
}

func updateItem(c comp.Component, item Item) {
	h, ok := c.(*Html)
	if !ok {
		return
	}
	for _, entry := range h.Body {
		if t, ok := entry.Comp.(*Text); ok {
			t.SetValue(fmt.Sprint(item.Value))
		}
	}
}
