package bt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const patrolYAML = `
root: root
nodes:
  root:
    type: selector
    children: [guard, wander]
  guard:
    type: sequence
    children: [see, not_tired]
  see:
    type: leaf
    leaf: constant
    params: {status: success}
  not_tired:
    type: invert
    child: tired
  tired:
    type: leaf
    leaf: constant
    params: {status: failure}
  wander:
    type: repeat
    child: step
    params: {times: 2, mode: blocking}
  step:
    type: leaf
    leaf: constant
    params: {status: success}
`

func testRegistry() *Registry[*env] {
	reg := NewRegistry[*env]()
	reg.RegisterLeaf("constant", func(p Params) (Behavior[*env], error) {
		s, err := p.String("status", "success")
		if err != nil {
			return nil, err
		}
		st := StatusSuccess
		if s == "failure" {
			st = StatusFailure
		}
		return newProbe("constant", st), nil
	})
	reg.RegisterDecorator("flip", func(Params) (Behavior[*env], error) {
		return Invert[*env]{}, nil
	})
	return reg
}

func TestLoadYAMLAndBuild(t *testing.T) {
	def, err := LoadYAML(strings.NewReader(patrolYAML))
	require.NoError(t, err)

	tree, err := Build(def, testRegistry())
	require.NoError(t, err)
	assert.Equal(t, 7, tree.Len())

	st, err := tree.Tick(&env{})
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, st)

	wander, ok := tree.Find("wander")
	require.True(t, ok)
	assert.Equal(t, StatusInvalid, tree.Status(wander), "selector stopped at the first branch")
	assert.Contains(t, tree.String(), "    see [constant]\n")
}

func TestLoadJSONWithRegisteredDecorator(t *testing.T) {
	def, err := LoadJSON(strings.NewReader(`{
		"root": "root",
		"nodes": {
			"root": {"type": "decorator", "decorator": "flip", "child": "leaf"},
			"leaf": {"type": "leaf", "leaf": "constant", "params": {"status": "failure"}}
		}
	}`))
	require.NoError(t, err)
	tree, err := Build(def, testRegistry())
	require.NoError(t, err)
	st, _ := tree.Tick(&env{})
	assert.Equal(t, StatusSuccess, st)
}

func TestLoaderParallelParamsFromJSON(t *testing.T) {
	def, err := LoadJSON(strings.NewReader(`{
		"root": "p",
		"nodes": {
			"p": {"type": "parallel", "children": ["a", "b"], "params": {"success": 1, "failure": 2}},
			"a": {"type": "leaf", "leaf": "constant"},
			"b": {"type": "leaf", "leaf": "constant", "params": {"status": "failure"}}
		}
	}`))
	require.NoError(t, err)
	tree, err := Build(def, testRegistry())
	require.NoError(t, err)
	st, _ := tree.Tick(&env{})
	assert.Equal(t, StatusSuccess, st)
}

func TestLoaderRejectsBadDefinitions(t *testing.T) {
	cases := []struct {
		name string
		def  Definition
		want error
	}{
		{"no root", Definition{}, ErrUnknownNode},
		{"missing node", Definition{Root: "r", Nodes: map[string]NodeDef{
			"r": {Type: "sequence", Children: []string{"ghost"}},
		}}, ErrUnknownNode},
		{"shared child", Definition{Root: "r", Nodes: map[string]NodeDef{
			"r": {Type: "sequence", Children: []string{"a", "a"}},
			"a": {Type: "leaf", Leaf: "constant"},
		}}, ErrSharedChild},
		{"cycle", Definition{Root: "r", Nodes: map[string]NodeDef{
			"r": {Type: "invert", Child: "r"},
		}}, ErrSharedChild},
		{"decorator without child", Definition{Root: "r", Nodes: map[string]NodeDef{
			"r": {Type: "always_fail"},
		}}, ErrInvalidArity},
		{"leaf with children", Definition{Root: "r", Nodes: map[string]NodeDef{
			"r": {Type: "leaf", Leaf: "constant", Child: "x"},
		}}, ErrInvalidArity},
		{"unknown type", Definition{Root: "r", Nodes: map[string]NodeDef{
			"r": {Type: "random"},
		}}, ErrUnknownNode},
		{"unknown leaf", Definition{Root: "r", Nodes: map[string]NodeDef{
			"r": {Type: "leaf", Leaf: "teleport"},
		}}, ErrUnknownNode},
		{"unused node", Definition{Root: "r", Nodes: map[string]NodeDef{
			"r": {Type: "leaf", Leaf: "constant"},
			"x": {Type: "leaf", Leaf: "constant"},
		}}, ErrUnreachable},
		{"bad repeat param", Definition{Root: "r", Nodes: map[string]NodeDef{
			"r": {Type: "repeat", Child: "a", Params: Params{"times": "twice"}},
			"a": {Type: "leaf", Leaf: "constant"},
		}}, ErrInvalidParam},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Build(&tc.def, testRegistry())
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestLoadYAMLRejectsUnknownFields(t *testing.T) {
	_, err := LoadYAML(strings.NewReader("root: r\nnodes: {}\nsensors: []\n"))
	assert.Error(t, err)
}

func TestParamsNumericTypes(t *testing.T) {
	p := Params{"i": 3, "f": 4.0, "frac": 1.5, "s": "x"}
	n, err := p.Int("i", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	n, err = p.Int("f", 0)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	_, err = p.Int("frac", 0)
	assert.ErrorIs(t, err, ErrInvalidParam)
	n, err = p.Int("missing", 9)
	require.NoError(t, err)
	assert.Equal(t, 9, n)
	f, err := p.Float("i", 0)
	require.NoError(t, err)
	assert.Equal(t, 3.0, f)
	_, err = p.Bool("s", false)
	assert.ErrorIs(t, err, ErrInvalidParam)
}

func TestLoadFilePicksDecoderByExtension(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "patrol.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(patrolYAML), 0o600))
	jsonPath := filepath.Join(dir, "single.JSON")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"root": "r", "nodes": {"r": {"type": "leaf", "leaf": "constant"}}}`), 0o600))

	def, err := LoadFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "root", def.Root)
	assert.Len(t, def.Nodes, 7)

	def, err = LoadFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "r", def.Root)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
