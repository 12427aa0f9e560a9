package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/afero"

	"github.com/mesh-intelligence/ckx/pkg/types"
)

// preVersioningVersion is assumed for metadata with no VERSION file.
// VERSION was introduced in 0.4.0; the release before it was 0.3.1.
const preVersioningVersion = "0.3.1"

// migration is one step of the metadata schema history. A step runs when the
// recorded version is below Version. Every step must be safe to run again on
// metadata it has already rewritten.
type migration struct {
	Version string
	Name    string
	Apply   func(s *Store, workspace string) error
}

// migrations lists every step in the order they are applied. Adding a schema
// version means appending to this list.
var migrations = []migration{
	{
		Version: "0.4.0",
		Name:    "relocate-profiles",
		Apply:   (*Store).relocateProfiles,
	},
	{
		Version: "0.4.0",
		Name:    "devel-layout",
		Apply:   (*Store).rewriteDevelLayout,
	},
}

// MigrationReport describes one Migrate call.
type MigrationReport struct {
	// From is the recorded version; empty when none was recorded.
	From string
	// To is the version written on success.
	To string
	// Applied names the steps that ran, in order.
	Applied []string
}

// Migrated reports whether the recorded version was rewritten.
func (r MigrationReport) Migrated() bool {
	return r.To != "" && r.From != r.To
}

// Migrate brings the metadata of workspace up to the running version. It is
// a no-op when the workspace has no metadata root or when VERSION already
// matches. VERSION is written only after every applicable step succeeded, and
// steps already applied are not rolled back when a later one fails.
func (s *Store) Migrate(workspace string) (MigrationReport, error) {
	root := MetadataRoot(workspace)
	exists, err := afero.DirExists(s.fs, root)
	if err != nil {
		return MigrationReport{}, fmt.Errorf("stat metadata root: %w", err)
	}
	if !exists {
		return MigrationReport{}, nil
	}

	recorded, err := s.recordedVersion(root)
	if err != nil {
		return MigrationReport{}, err
	}
	report := MigrationReport{From: recorded}
	if recorded == s.settings.Version {
		return report, nil
	}
	if _, err := semver.NewVersion(s.settings.Version); err != nil {
		return report, fmt.Errorf("invalid tool version %q: %w", s.settings.Version, err)
	}

	from := recorded
	if from == "" {
		from = preVersioningVersion
	}
	fromVersion, err := semver.NewVersion(from)
	if err != nil {
		return report, fmt.Errorf("%w: %s holds %q: %v",
			types.ErrUnexpectedShape, VersionFileName, recorded, err)
	}

	for _, m := range migrations {
		if !fromVersion.LessThan(semver.MustParse(m.Version)) {
			continue
		}
		s.logger.Info("migrating metadata", "workspace", workspace, "step", m.Name, "from", from, "to", m.Version)
		if err := m.Apply(s, workspace); err != nil {
			return report, fmt.Errorf("migration %s: %w", m.Name, err)
		}
		report.Applied = append(report.Applied, m.Name)
	}

	versionFile := filepath.Join(root, VersionFileName)
	if err := afero.WriteFile(s.fs, versionFile, []byte(s.settings.Version), 0o644); err != nil {
		return report, fmt.Errorf("write version: %w", err)
	}
	report.To = s.settings.Version
	return report, nil
}

// recordedVersion returns the trimmed VERSION content, or "" when the file is
// missing or empty.
func (s *Store) recordedVersion(root string) (string, error) {
	data, err := afero.ReadFile(s.fs, filepath.Join(root, VersionFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read version: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// relocateProfiles moves profile directories that sat directly in the
// metadata root into profiles/.
func (s *Store) relocateProfiles(workspace string) error {
	root := MetadataRoot(workspace)
	entries, err := afero.ReadDir(s.fs, root)
	if err != nil {
		return fmt.Errorf("list metadata root: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == ProfilesDirName {
			continue
		}
		src := filepath.Join(root, entry.Name())
		dst := ProfilePath(workspace, entry.Name())
		s.logger.Debug("relocating profile", "from", src, "to", dst)
		if err := s.moveTree(src, dst); err != nil {
			return err
		}
	}
	return nil
}

// rewriteDevelLayout replaces the boolean isolate_devel option with the
// devel_layout string in config and build documents.
func (s *Store) rewriteDevelLayout(workspace string) error {
	profiles, err := s.listProfiles(workspace)
	if err != nil {
		return err
	}
	for _, profile := range profiles {
		for _, verb := range []string{VerbConfig, VerbBuild} {
			path := MetadataFile(workspace, profile, verb)
			doc, found, err := s.readDocument(path)
			if err != nil {
				return err
			}
			if !found {
				continue
			}
			value, ok := doc[keyIsolateDevel]
			if !ok {
				continue
			}
			isolate := false
			if value != nil {
				if isolate, ok = value.(bool); !ok {
					return fmt.Errorf("%w: %s: %s is %T, want bool",
						types.ErrUnexpectedShape, path, keyIsolateDevel, value)
				}
			}
			delete(doc, keyIsolateDevel)
			doc[KeyDevelLayout] = DevelLayoutMerged
			if isolate {
				doc[KeyDevelLayout] = DevelLayoutIsolated
			}
			if err := s.writeYAML(path, doc); err != nil {
				return err
			}
		}
	}
	return nil
}
