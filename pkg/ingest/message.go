// Package ingest is the boundary between transports and the graph: it decodes
// inbound edge messages, rejects malformed shapes, and applies the rest to an
// EdgeSink with the classification of the channel they arrived on.
package ingest

import (
	"time"

	"github.com/aretw0/framegraph/pkg/domain"
	"github.com/aretw0/framegraph/pkg/geom"
)

// Stamp is a message timestamp. Both the ROS 2 (sec/nanosec) and the ROS 1
// (secs/nsecs) field names are accepted.
type Stamp struct {
	Sec     int64 `json:"sec,omitempty" yaml:"sec,omitempty"`
	Nanosec int64 `json:"nanosec,omitempty" yaml:"nanosec,omitempty"`
	Secs    int64 `json:"secs,omitempty" yaml:"secs,omitempty"`
	Nsecs   int64 `json:"nsecs,omitempty" yaml:"nsecs,omitempty"`
}

// Time converts the stamp, returning the zero time for an all-zero stamp.
func (s *Stamp) Time() time.Time {
	if s == nil {
		return time.Time{}
	}
	sec, nsec := s.Sec, s.Nanosec
	if sec == 0 && nsec == 0 {
		sec, nsec = s.Secs, s.Nsecs
	}
	if sec == 0 && nsec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, nsec).UTC()
}

// Header carries the parent frame.
type Header struct {
	FrameID string `json:"frame_id" yaml:"frame_id" validate:"required"`
	Stamp   *Stamp `json:"stamp,omitempty" yaml:"stamp,omitempty"`
}

// Vector3 is a translation as sent on the wire.
type Vector3 struct {
	X *float64 `json:"x" yaml:"x" validate:"required"`
	Y *float64 `json:"y" yaml:"y" validate:"required"`
	Z *float64 `json:"z" yaml:"z" validate:"required"`
}

// Quaternion is a rotation as sent on the wire.
type Quaternion struct {
	X *float64 `json:"x" yaml:"x" validate:"required"`
	Y *float64 `json:"y" yaml:"y" validate:"required"`
	Z *float64 `json:"z" yaml:"z" validate:"required"`
	W *float64 `json:"w" yaml:"w" validate:"required"`
}

// Transform is the translation+rotation payload.
type Transform struct {
	Translation *Vector3    `json:"translation" yaml:"translation" validate:"required"`
	Rotation    *Quaternion `json:"rotation" yaml:"rotation" validate:"required"`
}

// EdgeMessage is one inbound edge: header.frame_id is the parent, child_frame_id the child.
type EdgeMessage struct {
	Header       Header     `json:"header" yaml:"header"`
	ChildFrameID string     `json:"child_frame_id" yaml:"child_frame_id" validate:"required"`
	Transform    *Transform `json:"transform" yaml:"transform" validate:"required"`
}

// Batch is the tf2 TFMessage shape: several edges in one message.
type Batch struct {
	Transforms []EdgeMessage `json:"transforms" yaml:"transforms"`
}

// NewEdgeMessage builds a well-formed message from geometry values.
func NewEdgeMessage(parent, child string, t geom.Transform) EdgeMessage {
	tx, ty, tz := t.Translation.X, t.Translation.Y, t.Translation.Z
	qx, qy, qz, qw := t.Rotation.X, t.Rotation.Y, t.Rotation.Z, t.Rotation.W
	return EdgeMessage{
		Header:       Header{FrameID: parent},
		ChildFrameID: child,
		Transform: &Transform{
			Translation: &Vector3{X: &tx, Y: &ty, Z: &tz},
			Rotation:    &Quaternion{X: &qx, Y: &qy, Z: &qz, W: &qw},
		},
	}
}

// Update converts the message into an EdgeUpdate. Absent translation or rotation
// stay nil so the sink can reject them.
func (m EdgeMessage) Update(class domain.Classification) domain.EdgeUpdate {
	u := domain.EdgeUpdate{
		Parent:          m.Header.FrameID,
		Child:           m.ChildFrameID,
		Classification:  class,
		SourceTimestamp: m.Header.Stamp.Time(),
	}
	if m.Transform == nil {
		return u
	}
	if v := m.Transform.Translation; v != nil && v.X != nil && v.Y != nil && v.Z != nil {
		u.Translation = &geom.Vec3{X: *v.X, Y: *v.Y, Z: *v.Z}
	}
	if q := m.Transform.Rotation; q != nil && q.X != nil && q.Y != nil && q.Z != nil && q.W != nil {
		u.Rotation = &geom.Quat{X: *q.X, Y: *q.Y, Z: *q.Z, W: *q.W}
	}
	return u
}
