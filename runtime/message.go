// Copyright 2026 The tinycart Authors
// SPDX-License-Identifier: BSD-3-Clause

package runtime

// MessageKind identifies a lifecycle message between the orchestrator and
// the hosted script context.
type MessageKind uint8

const (
	// MsgInit asks the script context to load a script.
	MsgInit MessageKind = iota
	// MsgStart begins the frame-driven tick loop.
	MsgStart
	// MsgStop requests a graceful shutdown.
	MsgStop
	// MsgReady reports that initialization finished.
	MsgReady
	// MsgError reports a script failure with a descriptive text.
	MsgError
	// MsgStateChanged reports an orchestrator state transition.
	MsgStateChanged
	// MsgOutput carries a line of script or runtime output.
	MsgOutput
)

var messageKindNames = [...]string{
	MsgInit:         "init",
	MsgStart:        "start",
	MsgStop:         "stop",
	MsgReady:        "ready",
	MsgError:        "error",
	MsgStateChanged: "stateChanged",
	MsgOutput:       "output",
}

func (k MessageKind) String() string {
	if int(k) < len(messageKindNames) {
		return messageKindNames[k]
	}
	return "unknown"
}

// Message is one lifecycle message. Text carries the error description
// for MsgError and the line for MsgOutput; State is set for
// MsgStateChanged.
type Message struct {
	Kind  MessageKind
	Text  string
	State State
}

// State is the orchestrator lifecycle state.
type State uint8

const (
	StateIdle State = iota
	StateInitializing
	StateRunning
	StateStopped
	StateError
)

var stateNames = [...]string{
	StateIdle:         "idle",
	StateInitializing: "initializing",
	StateRunning:      "running",
	StateStopped:      "stopped",
	StateError:        "error",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}
