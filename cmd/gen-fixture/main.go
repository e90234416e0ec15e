// Command gen-fixture writes a sample robot rig fixture, in YAML and JSON,
// for the framegraph CLI and examples.
package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/aretw0/framegraph/pkg/adapters/file"
	"github.com/aretw0/framegraph/pkg/geom"
	"github.com/aretw0/framegraph/pkg/ingest"
)

func main() {
	targetDir := "examples/rig"
	if len(os.Args) > 1 {
		targetDir = os.Args[1]
	}

	// Ensure dir exists
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		panic(err)
	}

	fmt.Printf("Generating rig fixture in: %s\n", targetDir)

	fx := rig()
	check(file.Save(filepath.Join(targetDir, "tf.yaml"), fx))
	check(file.Save(filepath.Join(targetDir, "tf.json"), fx))

	fmt.Printf("Done. %d edges written to %s\n", fx.Len(), targetDir)
}

// rig is a wheeled base with a lidar, a camera and two wheels. The odometry
// link is dynamic; every mounting is static.
func rig() file.Fixture {
	yaw := func(rad float64) geom.Quat { return geom.AxisAngle(geom.Vec3{Z: 1}, rad) }
	at := func(x, y, z float64, q geom.Quat) geom.Transform {
		return geom.Transform{Translation: geom.Vec3{X: x, Y: y, Z: z}, Rotation: q}
	}
	id := geom.IdentityQuat()

	// Optical frames are Z-forward, X-right, Y-down.
	optical := geom.AxisAngle(geom.Vec3{Z: 1}, -math.Pi/2).Mul(geom.AxisAngle(geom.Vec3{X: 1}, -math.Pi/2))

	return file.Fixture{
		Static: []ingest.EdgeMessage{
			ingest.NewEdgeMessage("map", "odom", at(0, 0, 0, id)),
			ingest.NewEdgeMessage("base_link", "laser", at(0.2, 0, 0.3, id)),
			ingest.NewEdgeMessage("base_link", "camera_link", at(0.25, 0, 0.5, id)),
			ingest.NewEdgeMessage("camera_link", "camera_optical", at(0, 0, 0, optical)),
			ingest.NewEdgeMessage("base_link", "wheel_left", at(0, 0.2, 0.05, id)),
			ingest.NewEdgeMessage("base_link", "wheel_right", at(0, -0.2, 0.05, id)),
		},
		Dynamic: []ingest.EdgeMessage{
			ingest.NewEdgeMessage("odom", "base_link", at(1.5, 0.5, 0, yaw(math.Pi/4))),
		},
	}
}

func check(err error) {
	if err != nil {
		panic(err)
	}
}
