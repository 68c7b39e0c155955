// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package wps

const (
	Event_Render        = "render"        // type: RenderEventData, scope = component id
	Event_DoneRendering = "doneRendering" // type: DoneRenderingEventData
)

var AllEvents []string = []string{
	Event_Render,
	Event_DoneRendering,
}

type WaveEvent struct {
	Event  string   `json:"event"`
	Scopes []string `json:"scopes,omitempty"`
	Sender string   `json:"sender,omitempty"`
	Data   any      `json:"data,omitempty"`
}

type SubscriptionRequest struct {
	Event     string   `json:"event"`
	Scopes    []string `json:"scopes,omitempty"`
	AllScopes bool     `json:"allscopes,omitempty"`
}

type RenderEventData struct {
	ComponentId   string `json:"componentid"`
	ComponentType string `json:"componenttype"`
}

type DoneRenderingEventData struct {
	Iterations int `json:"iterations"`
	Rerendered int `json:"rerendered"`
}
