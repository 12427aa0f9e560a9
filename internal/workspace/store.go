// Package workspace owns the on-disk metadata of a ckx workspace: locating
// the workspace root, the profile tree, verb documents, and migration of
// metadata written by older versions.
//
// The store assumes a single writer. Nothing is locked: two invocations
// against the same workspace can interleave their document writes, and the
// last write wins.
package workspace

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/ckx/pkg/types"
)

// On-disk names inside a workspace.
const (
	MetadataDirName       = ".ckx_tools"
	ProfilesDirName       = "profiles"
	ProfilesIndexFileName = "profiles.yaml"
	VersionFileName       = "VERSION"
	ReadmeFileName        = "README"
	IgnoreMarkerFileName  = "CATKIN_IGNORE"
)

// DefaultProfileName is used when no profile is selected.
const DefaultProfileName = "default"

// Verbs whose documents are migrated.
const (
	VerbConfig = "config"
	VerbBuild  = "build"
)

const metadataReadme = `# ckx Metadata

This directory was generated by ckx and it contains persistent
configuration information used by the ckx command and its sub-commands.

Each subdirectory of the profiles directory contains a set of persistent
configuration options for separate profiles. The default profile is called
"default". The active profile is recorded in profiles/profiles.yaml.

Please see the ckx documentation before editing any files in this
directory. Most actions can be performed with the ckx command-line
program.
`

// Store reads and writes workspace metadata through an afero filesystem.
type Store struct {
	fs       afero.Fs
	settings types.Settings
	logger   *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for reset, removal and migration events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore returns a Store over fs. settings.Version is the version recorded
// in new metadata and the target of migration.
func NewStore(fs afero.Fs, settings types.Settings, opts ...Option) *Store {
	s := &Store{
		fs:       fs,
		settings: settings,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MetadataRoot returns the marker directory of a workspace.
func MetadataRoot(workspace string) string {
	return filepath.Join(workspace, MetadataDirName)
}

// ProfilesPath returns the directory holding one subdirectory per profile.
func ProfilesPath(workspace string) string {
	return filepath.Join(workspace, MetadataDirName, ProfilesDirName)
}

// ProfilePath returns the metadata directory of a profile.
func ProfilePath(workspace, profile string) string {
	return filepath.Join(ProfilesPath(workspace), profile)
}

// MetadataFile returns the document path for a profile and verb.
func MetadataFile(workspace, profile, verb string) string {
	return filepath.Join(ProfilePath(workspace, profile), verb+".yaml")
}

// BuildRoot returns the directory generated build files for a profile go
// into: the workspace itself for the default profile, and the parallel build
// directory named after the profile otherwise.
func BuildRoot(workspace, profile string) string {
	if profile == "" || profile == DefaultProfileName {
		return workspace
	}
	return filepath.Join(workspace, profile)
}

// validName rejects names that would escape their parent directory.
func validName(kind, name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return fmt.Errorf("%w: %s %q", types.ErrInvalidName, kind, name)
	}
	return nil
}

func validProfileName(name string) error {
	if err := validName("profile", name); err != nil {
		return err
	}
	if name == ProfilesIndexFileName {
		return fmt.Errorf("%w: profile %q is reserved", types.ErrInvalidName, name)
	}
	return nil
}

// absClean returns the absolute, cleaned form of path.
func absClean(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// readDocument loads a YAML mapping. found is false when the file does not
// exist. An empty or null file yields an empty Document.
func (s *Store) readDocument(path string) (doc Document, found bool, err error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err = decodeDocument(data)
	if err != nil {
		return nil, true, fmt.Errorf("%s: %w", path, err)
	}
	return doc, true, nil
}

// decodeDocument validates that data holds a mapping and decodes it.
func decodeDocument(data []byte) (Document, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrUnexpectedShape, err)
	}
	if node.Kind == 0 {
		return Document{}, nil
	}
	content := &node
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		content = node.Content[0]
	}
	if content.Kind == yaml.ScalarNode && content.ShortTag() == "!!null" {
		return Document{}, nil
	}
	if content.Kind != yaml.MappingNode {
		return nil, types.ErrNotMapping
	}
	doc := Document{}
	if err := content.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrUnexpectedShape, err)
	}
	return doc, nil
}

// writeYAML overwrites path with the YAML encoding of v.
func (s *Store) writeYAML(path string, v any) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := afero.WriteFile(s.fs, path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// writeFileIfMissing creates path with content unless it already exists.
func (s *Store) writeFileIfMissing(path string, content []byte) error {
	exists, err := afero.Exists(s.fs, path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if exists {
		return nil
	}
	return afero.WriteFile(s.fs, path, content, 0o644)
}

// moveTree moves src to dst, merging into dst when it already exists.
// Files are copied then the source is removed, so the move works on any
// afero backend. Symlinks are recreated, not followed.
func (s *Store) moveTree(src, dst string) error {
	err := afero.Walk(s.fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		switch {
		case info.Mode()&os.ModeSymlink != 0:
			return s.copySymlink(path, target)
		case info.IsDir():
			return s.fs.MkdirAll(target, info.Mode().Perm()|0o700)
		}
		data, err := afero.ReadFile(s.fs, path)
		if err != nil {
			return err
		}
		return afero.WriteFile(s.fs, target, data, info.Mode().Perm())
	})
	if err != nil {
		return fmt.Errorf("move %s to %s: %w", src, dst, err)
	}
	return s.fs.RemoveAll(src)
}

// copySymlink creates at target a link with the same destination as the
// link at path, replacing whatever target held.
func (s *Store) copySymlink(path, target string) error {
	reader, ok := s.fs.(afero.LinkReader)
	if !ok {
		return &os.LinkError{Op: "readlink", Old: path, New: target, Err: afero.ErrNoReadlink}
	}
	linker, ok := s.fs.(afero.Linker)
	if !ok {
		return &os.LinkError{Op: "symlink", Old: path, New: target, Err: afero.ErrNoSymlink}
	}
	dest, err := reader.ReadlinkIfPossible(path)
	if err != nil {
		return err
	}
	if err := s.fs.RemoveAll(target); err != nil {
		return err
	}
	return linker.SymlinkIfPossible(dest, target)
}
