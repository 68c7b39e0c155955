// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// render notification pubsub
package wps

import (
	"slices"
	"sync"
)

// this broker interface is mostly generic
// strong typing and event types are defined in wpstypes.go

type Client interface {
	ClientId() string
	SendEvent(event WaveEvent)
}

// Publisher is the sink the rendering engine pushes its notifications to
type Publisher interface {
	Publish(event WaveEvent)
}

type BrokerSubscription struct {
	AllSubs   []string            // clientids of client subscribed to "all" events
	ScopeSubs map[string][]string // clientids of client subscribed to specific scopes
}

type Broker struct {
	Lock      *sync.Mutex
	ClientMap map[string]Client
	SubMap    map[string]*BrokerSubscription
}

func MakeBroker() *Broker {
	return &Broker{
		Lock:      &sync.Mutex{},
		ClientMap: make(map[string]Client),
		SubMap:    make(map[string]*BrokerSubscription),
	}
}

func addUniq(arr []string, elem string) []string {
	if slices.Contains(arr, elem) {
		return arr
	}
	return append(arr, elem)
}

func removeElem(arr []string, elem string) []string {
	return slices.DeleteFunc(arr, func(s string) bool { return s == elem })
}

func (b *Broker) Subscribe(subscriber Client, sub SubscriptionRequest) {
	b.Lock.Lock()
	defer b.Lock.Unlock()
	clientId := subscriber.ClientId()
	b.ClientMap[clientId] = subscriber
	bs := b.SubMap[sub.Event]
	if bs == nil {
		bs = &BrokerSubscription{
			AllSubs:   []string{},
			ScopeSubs: make(map[string][]string),
		}
		b.SubMap[sub.Event] = bs
	}
	if sub.AllScopes {
		bs.AllSubs = addUniq(bs.AllSubs, clientId)
	}
	for _, scope := range sub.Scopes {
		bs.ScopeSubs[scope] = addUniq(bs.ScopeSubs[scope], clientId)
	}
}

func (bs *BrokerSubscription) IsEmpty() bool {
	return len(bs.AllSubs) == 0 && len(bs.ScopeSubs) == 0
}

func (b *Broker) Unsubscribe(subscriber Client, sub SubscriptionRequest) {
	b.Lock.Lock()
	defer b.Lock.Unlock()
	clientId := subscriber.ClientId()
	bs := b.SubMap[sub.Event]
	if bs == nil {
		return
	}
	if sub.AllScopes {
		bs.AllSubs = removeElem(bs.AllSubs, clientId)
	}
	for _, scope := range sub.Scopes {
		scopeSubs := removeElem(bs.ScopeSubs[scope], clientId)
		if len(scopeSubs) == 0 {
			delete(bs.ScopeSubs, scope)
		} else {
			bs.ScopeSubs[scope] = scopeSubs
		}
	}
	if bs.IsEmpty() {
		delete(b.SubMap, sub.Event)
	}
}

func (b *Broker) UnsubscribeAll(subscriber Client) {
	b.Lock.Lock()
	defer b.Lock.Unlock()
	clientId := subscriber.ClientId()
	delete(b.ClientMap, clientId)
	for eventType, bs := range b.SubMap {
		bs.AllSubs = removeElem(bs.AllSubs, clientId)
		for scope, scopeSubs := range bs.ScopeSubs {
			scopeSubs = removeElem(scopeSubs, clientId)
			if len(scopeSubs) == 0 {
				delete(bs.ScopeSubs, scope)
			} else {
				bs.ScopeSubs[scope] = scopeSubs
			}
		}
		if bs.IsEmpty() {
			delete(b.SubMap, eventType)
		}
	}
}

// Publish delivers event synchronously, "all" subscribers first, then scope subscribers
// in subscription order. each client gets an event at most once.
func (b *Broker) Publish(event WaveEvent) {
	for _, client := range b.getMatchingClients(event) {
		client.SendEvent(event)
	}
}

func (b *Broker) getMatchingClients(event WaveEvent) []Client {
	b.Lock.Lock()
	defer b.Lock.Unlock()
	bs := b.SubMap[event.Event]
	if bs == nil {
		return nil
	}
	var clientIds []string
	clientIds = append(clientIds, bs.AllSubs...)
	for _, scope := range event.Scopes {
		for _, clientId := range bs.ScopeSubs[scope] {
			clientIds = addUniq(clientIds, clientId)
		}
	}
	var rtn []Client
	for _, clientId := range clientIds {
		if client := b.ClientMap[clientId]; client != nil {
			rtn = append(rtn, client)
		}
	}
	return rtn
}
