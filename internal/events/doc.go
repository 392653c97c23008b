// Package events provides a small in-process publish/subscribe mechanism for
// changes to stored decisions and groups.
//
// Services emit a DecisionEvent after every successful mutation. Handlers,
// such as the analytics snapshot cache, subscribe without the emitting
// service knowing about them.
package events
