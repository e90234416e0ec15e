package validator

import (
	"testing"

	"github.com/aretw0/framegraph/pkg/adapters/file"
	"github.com/aretw0/framegraph/pkg/geom"
	"github.com/aretw0/framegraph/pkg/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func edge(parent, child string) ingest.EdgeMessage {
	return ingest.NewEdgeMessage(parent, child, geom.Transform{Rotation: geom.IdentityQuat()})
}

func codes(r Report) []string {
	var out []string
	for _, is := range r.Issues {
		out = append(out, is.Code)
	}
	return out
}

func TestValidateFixture_Valid(t *testing.T) {
	fx := file.Fixture{
		Static:  []ingest.EdgeMessage{edge("map", "odom"), edge("base_link", "laser")},
		Dynamic: []ingest.EdgeMessage{edge("odom", "base_link")},
	}
	r := ValidateFixture(fx, "map")
	assert.Empty(t, r.Issues)
	assert.NoError(t, r.Err())
	assert.Equal(t, 4, r.Frames)
	assert.Equal(t, 3, r.Edges)
}

func TestValidateFixture_TestdataRobot(t *testing.T) {
	fx, err := file.Load("../../pkg/adapters/file/testdata/robot.yaml")
	require.NoError(t, err)
	assert.NoError(t, ValidateFixture(fx, "map").Err())
}

func TestValidateFixture_Malformed(t *testing.T) {
	broken := edge("map", "odom")
	broken.Transform.Rotation = nil
	zero := ingest.NewEdgeMessage("map", "base", geom.Transform{})

	fx := file.Fixture{Static: []ingest.EdgeMessage{broken, edge("map", "map"), zero}}
	r := ValidateFixture(fx, "map")

	assert.Equal(t, []string{"malformed", "malformed", "malformed", "empty"}, codes(r))
	assert.Len(t, r.Errors(), 3)
}

func TestValidateFixture_TreeViolations(t *testing.T) {
	fx := file.Fixture{
		Static: []ingest.EdgeMessage{
			edge("map", "odom"),
			edge("odom", "base_link"),
			edge("map", "base_link"), // second parent, closes a loop
			edge("world", "beacon"),
		},
	}
	r := ValidateFixture(fx, "map")

	assert.Equal(t, []string{"multiple_parents", "cycle", "disconnected"}, codes(r))
	err := r.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "found 3 errors")
	assert.Contains(t, err.Error(), "beacon, world")
}

func TestValidateFixture_Warnings(t *testing.T) {
	fx := file.Fixture{
		Static:  []ingest.EdgeMessage{edge("map", "odom"), edge("map", "odom")},
		Dynamic: []ingest.EdgeMessage{edge("map", "odom")},
	}
	r := ValidateFixture(fx, "world")

	assert.Equal(t, []string{"duplicate", "shadowed", "no_world"}, codes(r))
	assert.NoError(t, r.Err())
}
