package tree

import (
	"testing"
	"time"

	"github.com/aretw0/framegraph/pkg/domain"
	"github.com/muesli/termenv"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seenAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func robotTree() []domain.TreeNode {
	return []domain.TreeNode{
		{
			Name: "map", IsValid: true, IsStatic: true,
			Children: []domain.TreeNode{
				{
					Name: "odom", Parent: "map", IsValid: true, IsStatic: true,
					Children: []domain.TreeNode{
						{
							Name: "base_link", Parent: "odom", IsValid: true, LastSeenAt: seenAt,
							Children: []domain.TreeNode{
								{Name: "laser", Parent: "base_link", IsValid: true, IsStatic: true},
							},
						},
					},
				},
				{Name: "gps", Parent: "map", LastSeenAt: seenAt},
			},
		},
		{Name: "beacon", IsValid: true, IsStatic: true},
	}
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
}

func TestText_Golden(t *testing.T) {
	newGoldie(t).Assert(t, "text", []byte(Text(robotTree(), termenv.Ascii)))
}

func TestMermaid_Golden(t *testing.T) {
	newGoldie(t).Assert(t, "mermaid", []byte(Mermaid(robotTree())))
}

func TestMarkdown_Golden(t *testing.T) {
	newGoldie(t).Assert(t, "markdown", []byte(Markdown(robotTree())))
}

func TestText_ColorsBadges(t *testing.T) {
	out := Text(robotTree(), termenv.TrueColor)
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "base_link")
}

func TestEmptyTree(t *testing.T) {
	assert.Equal(t, "(no frames)\n", Text(nil, termenv.Ascii))
	assert.Equal(t, "graph TD\n", Mermaid(nil))
	assert.Equal(t, "# Frame tree\n\n0 frames, 0 roots.\n", Markdown(nil))
}

func TestSanitizeMermaidID(t *testing.T) {
	assert.Equal(t, "robot1_base_link", sanitizeMermaidID("robot1/base-link"))
	assert.Equal(t, "cam_0_optical", sanitizeMermaidID("cam.0 optical"))
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"":         FormatText,
		"TEXT":     FormatText,
		"mermaid":  FormatMermaid,
		"markdown": FormatMarkdown,
		" json ":   FormatJSON,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("svg")
	assert.Error(t, err)
}

func TestProfileFor_NonTerminal(t *testing.T) {
	assert.Equal(t, termenv.Ascii, ProfileFor(&testWriter{}))
	assert.False(t, IsTerminal(&testWriter{}))
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }
