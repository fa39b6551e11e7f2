// Package workspace locates the project enclosing a directory and resolves
// the multi-package workspace it belongs to, if any.
//
// A workspace is flat: one root manifest declares member globs, members are
// plain projects. A member that itself declares a workspace is not expanded
// further.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/FollowTheProcess/pyscout/internal"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/gobwas/glob"
)

// Member is one package of a workspace.
type Member struct {
	// Root is the member's directory.
	Root string
	// PyProject is the member's parsed manifest.
	PyProject PyProjectToml
}

// ProjectWorkspace is the normalized workspace view around one project.
//
// The project's own package is always present in Members, and
// WorkspaceRoot is either ProjectRoot itself or an ancestor of it.
type ProjectWorkspace struct {
	// Members maps package names to workspace members.
	Members map[string]Member
	// Sources maps package names to the workspace's source overrides.
	Sources map[string]Source
	// ProjectRoot is the directory of the project under discovery.
	ProjectRoot string
	// ProjectName is that project's package name.
	ProjectName string
	// WorkspaceRoot is the directory whose manifest declares the workspace.
	WorkspaceRoot string
}

// Discover finds the project at dir and resolves its workspace.
//
// The directory must hold a pyproject.toml with a named [project] table.
// If that manifest declares a workspace, dir is both project and workspace
// root. Otherwise ancestors are searched for a workspace that does not
// exclude this project, and failing that the project is its own single-member
// workspace.
func Discover(dir string) (*ProjectWorkspace, error) {
	projectRoot, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("could not resolve %s to an absolute path: %w", dir, err)
	}

	log.WithField("root", projectRoot).Debugln("Discovering project")

	manifestPath := filepath.Join(projectRoot, ManifestName)
	if !internal.Exists(manifestPath) {
		return nil, &MissingPyProjectError{Dir: projectRoot}
	}
	manifest, err := readManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	if manifest.Project == nil || manifest.Project.Name == "" {
		return nil, &MissingProjectError{Path: manifestPath}
	}

	return fromProject(projectRoot, manifest)
}

// fromProject builds the workspace view for a known project root and its
// parsed manifest.
func fromProject(projectRoot string, manifest PyProjectToml) (*ProjectWorkspace, error) {
	projectName := manifest.Project.Name

	root := &foundWorkspace{root: projectRoot, definition: manifest.workspace(), manifest: manifest}
	if root.definition == nil {
		found, err := findWorkspace(projectRoot)
		if err != nil {
			return nil, err
		}
		root = found
	}

	members := map[string]Member{
		projectName: {Root: projectRoot, PyProject: manifest},
	}

	if root == nil {
		// The project and the workspace root are identical
		log.Debugln("No explicit workspace root found")
		return &ProjectWorkspace{
			ProjectRoot:   projectRoot,
			ProjectName:   projectName,
			WorkspaceRoot: projectRoot,
			Members:       members,
			Sources:       map[string]Source{},
		}, nil
	}

	log.WithField("root", root.root).Debugln("Found workspace root")

	// The workspace root's own project belongs to the workspace too
	if root.root != projectRoot && root.manifest.Project != nil {
		members[root.manifest.Project.Name] = Member{Root: root.root, PyProject: root.manifest}
	}

	for _, pattern := range root.definition.Members {
		matches, err := doublestar.FilepathGlob(filepath.Join(root.root, pattern))
		if err != nil {
			return nil, &PatternError{Pattern: pattern, Err: err}
		}
		for _, memberRoot := range matches {
			info, err := os.Stat(memberRoot)
			if err != nil || !info.IsDir() {
				continue
			}
			memberManifest, err := readManifest(filepath.Join(memberRoot, ManifestName))
			if err != nil {
				return nil, err
			}
			if memberManifest.Project == nil || memberManifest.Project.Name == "" {
				return nil, &MissingProjectError{Path: filepath.Join(memberRoot, ManifestName)}
			}
			members[memberManifest.Project.Name] = Member{Root: memberRoot, PyProject: memberManifest}
		}
	}

	return &ProjectWorkspace{
		ProjectRoot:   projectRoot,
		ProjectName:   projectName,
		WorkspaceRoot: root.root,
		Members:       members,
		Sources:       root.manifest.sources(),
	}, nil
}

// foundWorkspace is a workspace-declaring manifest and where it lives.
type foundWorkspace struct {
	definition *ToolWorkspace
	root       string
	manifest   PyProjectToml
}

// findWorkspace walks the ancestors of projectRoot looking for a manifest
// that declares a workspace whose exclude globs do not match the project
// (its member globs are not checked). Returns nil when there
// is no such workspace, which includes the case of an enclosing plain
// project (e.g. the project is an example inside another project, and must
// not be absorbed into whatever that project belongs to).
func findWorkspace(projectRoot string) (*foundWorkspace, error) {
	for dir := filepath.Dir(projectRoot); ; dir = filepath.Dir(dir) {
		manifestPath := filepath.Join(dir, ManifestName)
		if internal.Exists(manifestPath) {
			manifest, err := readManifest(manifestPath)
			if err != nil {
				return nil, err
			}

			if definition := manifest.workspace(); definition != nil {
				excluded, err := matchesExclude(definition, dir, projectRoot)
				if err != nil {
					return nil, err
				}
				if excluded {
					log.WithField("root", dir).Debugln("Found workspace root, but the project is excluded")
					return nil, nil
				}
				return &foundWorkspace{root: dir, definition: definition, manifest: manifest}, nil
			}

			if manifest.Project != nil {
				log.WithField("root", dir).Debugln("Project is contained in a non-workspace project")
				return nil, nil
			}

			// A manifest above us must declare a workspace or a project
			return nil, &MissingProjectError{Path: manifestPath}
		}

		if filepath.Dir(dir) == dir {
			return nil, nil
		}
	}
}

// matchesExclude reports whether the project at projectRoot is named by
// one of the workspace's exclude globs, which are relative to the
// workspace root.
func matchesExclude(definition *ToolWorkspace, workspaceRoot, projectRoot string) (bool, error) {
	relative, err := filepath.Rel(workspaceRoot, projectRoot)
	if err != nil {
		return false, nil
	}
	relative = filepath.ToSlash(relative)

	for _, pattern := range definition.Exclude {
		matcher, err := glob.Compile(pattern, '/')
		if err != nil {
			return false, &PatternError{Pattern: pattern, Err: err}
		}
		if matcher.Match(relative) {
			return true, nil
		}
	}
	return false, nil
}
