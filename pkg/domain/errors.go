package domain

import "errors"

// ErrMalformedEdge is returned when an edge update lacks a frame name, translation or rotation.
var ErrMalformedEdge = errors.New("malformed edge")

// ErrUnknownFrame is returned when a query references a frame that was never seen.
var ErrUnknownFrame = errors.New("unknown frame")

// ErrNoPath is returned when two known frames are in disconnected components.
var ErrNoPath = errors.New("no path between frames")

// ErrInconsistentPath is returned when a path no longer matches the edges it is composed from.
var ErrInconsistentPath = errors.New("path inconsistent with graph")

// ErrInactive is returned when an edge arrives while the feed is marked inactive.
var ErrInactive = errors.New("graph inactive")
