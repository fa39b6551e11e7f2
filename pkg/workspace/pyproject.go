package workspace

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// ManifestName is the project manifest file name.
const ManifestName = "pyproject.toml"

// PyProjectToml is the subset of a pyproject.toml that workspace
// resolution cares about: the project identity and pyscout's own tool
// table. Everything else in the file is ignored.
type PyProjectToml struct {
	Project *Project `toml:"project"`
	Tool    *Tool    `toml:"tool"`
}

// Project is the standard [project] table.
type Project struct {
	Name           string   `toml:"name"`
	Version        string   `toml:"version"`
	RequiresPython string   `toml:"requires-python"`
	Dependencies   []string `toml:"dependencies"`
}

// Tool is the [tool] table, holding per-tool configuration.
type Tool struct {
	Pyscout *ToolPyscout `toml:"pyscout"`
}

// ToolPyscout is the [tool.pyscout] table.
type ToolPyscout struct {
	Workspace *ToolWorkspace    `toml:"workspace"`
	Sources   map[string]Source `toml:"sources"`
}

// ToolWorkspace is the [tool.pyscout.workspace] table declaring a
// workspace: member globs and exclude globs, both relative to the
// declaring directory.
type ToolWorkspace struct {
	Members []string `toml:"members"`
	Exclude []string `toml:"exclude"`
}

// Source is one entry of [tool.pyscout.sources], overriding where a
// dependency is fetched from.
type Source struct {
	Path      string `toml:"path"`
	Git       string `toml:"git"`
	Index     string `toml:"index"`
	Workspace bool   `toml:"workspace"`
}

// workspace returns the manifest's workspace declaration, or nil.
func (p PyProjectToml) workspace() *ToolWorkspace {
	if p.Tool == nil || p.Tool.Pyscout == nil {
		return nil
	}
	return p.Tool.Pyscout.Workspace
}

// sources returns the manifest's source overrides, never nil.
func (p PyProjectToml) sources() map[string]Source {
	if p.Tool == nil || p.Tool.Pyscout == nil || p.Tool.Pyscout.Sources == nil {
		return map[string]Source{}
	}
	return p.Tool.Pyscout.Sources
}

// readManifest reads and decodes the pyproject.toml at path.
func readManifest(path string) (PyProjectToml, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PyProjectToml{}, err
	}

	var manifest PyProjectToml
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return PyProjectToml{}, fmt.Errorf("could not parse %s: %w", path, err)
	}
	return manifest, nil
}
