// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package wps

import (
	"fmt"
	"strings"
	"sync"
)

// EventLog is a Client that records every event it receives
type EventLog struct {
	Id     string
	lock   sync.Mutex
	events []WaveEvent
}

func MakeEventLog(id string) *EventLog {
	return &EventLog{Id: id}
}

func (l *EventLog) ClientId() string {
	return l.Id
}

func (l *EventLog) SendEvent(event WaveEvent) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.events = append(l.events, event)
}

func (l *EventLog) Events() []WaveEvent {
	l.lock.Lock()
	defer l.lock.Unlock()
	return append([]WaveEvent(nil), l.events...)
}

func (l *EventLog) Count(eventName string) int {
	l.lock.Lock()
	defer l.lock.Unlock()
	var count int
	for _, e := range l.events {
		if e.Event == eventName {
			count++
		}
	}
	return count
}

func (l *EventLog) Reset() {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.events = nil
}

// Lines formats the log one event per line ("render comp-1"), for snapshots
func (l *EventLog) Lines() []string {
	var rtn []string
	for _, e := range l.Events() {
		if len(e.Scopes) == 0 {
			rtn = append(rtn, e.Event)
			continue
		}
		rtn = append(rtn, fmt.Sprintf("%s %s", e.Event, strings.Join(e.Scopes, ",")))
	}
	return rtn
}

// SubscribeAll subscribes the log to every engine event
func (l *EventLog) SubscribeAll(b *Broker) {
	for _, event := range AllEvents {
		b.Subscribe(l, SubscriptionRequest{Event: event, AllScopes: true})
	}
}
