// Package file feeds a frame graph from a fixture file on disk.
//
// A fixture lists durable edges under "static" and expiring edges under "dynamic",
// each entry shaped like a geometry_msgs/TransformStamped. Files ending in .json
// are parsed as JSON, everything else as YAML.
package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/framegraph/pkg/domain"
	"github.com/aretw0/framegraph/pkg/ingest"
	"gopkg.in/yaml.v3"
)

// Fixture is the on-disk edge set.
type Fixture struct {
	Static  []ingest.EdgeMessage `yaml:"static" json:"static"`
	Dynamic []ingest.EdgeMessage `yaml:"dynamic" json:"dynamic"`
}

// Len returns the total number of edges in the fixture.
func (f Fixture) Len() int {
	return len(f.Static) + len(f.Dynamic)
}

// Apply upserts every fixture edge into a with its section's classification.
func (f Fixture) Apply(a *ingest.Applier) ingest.Result {
	static := a.Apply(f.Static, domain.Durable)
	dynamic := a.Apply(f.Dynamic, domain.Expiring)
	return ingest.Result{
		Accepted: static.Accepted + dynamic.Accepted,
		Rejected: static.Rejected + dynamic.Rejected,
		Errors:   append(static.Errors, dynamic.Errors...),
	}
}

// Load reads and parses the fixture at path.
func Load(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("failed to read fixture: %w", err)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes fixture data; ext selects the format (".json" or YAML otherwise).
func Parse(data []byte, ext string) (Fixture, error) {
	var fx Fixture
	if strings.ToLower(ext) == ".json" {
		if err := json.Unmarshal(data, &fx); err != nil {
			return Fixture{}, fmt.Errorf("failed to parse fixture json: %w", err)
		}
		return fx, nil
	}
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return Fixture{}, fmt.Errorf("failed to parse fixture yaml: %w", err)
	}
	return fx, nil
}

// Save writes fx to path, choosing the format from the extension.
func Save(path string, fx Fixture) error {
	var (
		data []byte
		err  error
	)
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		data, err = json.MarshalIndent(fx, "", "  ")
	} else {
		data, err = yaml.Marshal(fx)
	}
	if err != nil {
		return fmt.Errorf("failed to encode fixture: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write fixture: %w", err)
	}
	return nil
}
