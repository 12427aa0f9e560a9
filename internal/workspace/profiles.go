package workspace

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/spf13/afero"

	"github.com/mesh-intelligence/ckx/pkg/types"
)

const activeKey = "active"

// InitMetadataRoot creates the metadata marker of workspace, or wipes and
// recreates it when reset is set. The workspace directory must exist and must
// not lie inside another workspace. Migration runs afterwards.
func (s *Store) InitMetadataRoot(workspace string, reset bool) error {
	workspace = absClean(workspace)
	exists, err := afero.DirExists(s.fs, workspace)
	if err != nil {
		return fmt.Errorf("stat workspace %s: %w", workspace, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", types.ErrWorkspaceNotFound, workspace)
	}
	if enclosing, ok := s.FindEnclosingWorkspace(workspace); ok && enclosing != workspace {
		return fmt.Errorf("%w: %s is inside %s", types.ErrNestedWorkspace, workspace, enclosing)
	}

	root := MetadataRoot(workspace)
	present, err := afero.DirExists(s.fs, root)
	if err != nil {
		return fmt.Errorf("stat metadata root: %w", err)
	}
	if present && reset {
		s.logger.Info("deleting existing metadata", "path", root)
		if err := s.fs.RemoveAll(root); err != nil {
			return fmt.Errorf("reset metadata root: %w", err)
		}
		present = false
	}
	if !present {
		if err := s.fs.Mkdir(root, 0o755); err != nil {
			return fmt.Errorf("create metadata root: %w", err)
		}
		versionFile := filepath.Join(root, VersionFileName)
		if err := afero.WriteFile(s.fs, versionFile, []byte(s.settings.Version), 0o644); err != nil {
			return fmt.Errorf("write version: %w", err)
		}
		s.logger.Debug("created metadata root", "path", root, "version", s.settings.Version)
	}

	if err := s.writeFileIfMissing(filepath.Join(root, ReadmeFileName), []byte(metadataReadme)); err != nil {
		return fmt.Errorf("write readme: %w", err)
	}
	if err := s.writeFileIfMissing(filepath.Join(root, IgnoreMarkerFileName), nil); err != nil {
		return fmt.Errorf("write ignore marker: %w", err)
	}

	_, err = s.Migrate(workspace)
	return err
}

// InitProfile ensures the metadata root and the named profile directory
// exist. reset empties an existing profile directory.
func (s *Store) InitProfile(workspace, profile string, reset bool) error {
	if err := validProfileName(profile); err != nil {
		return err
	}
	workspace = absClean(workspace)
	if err := s.InitMetadataRoot(workspace, false); err != nil {
		return err
	}

	path := ProfilePath(workspace, profile)
	exists, err := afero.DirExists(s.fs, path)
	if err != nil {
		return fmt.Errorf("stat profile %s: %w", profile, err)
	}
	if exists && reset {
		s.logger.Info("deleting existing profile", "profile", profile, "path", path)
		if err := s.fs.RemoveAll(path); err != nil {
			return fmt.Errorf("reset profile %s: %w", profile, err)
		}
	}
	if err := s.fs.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create profile %s: %w", profile, err)
	}
	return nil
}

// ProfileNames returns the sorted names of the profiles in workspace.
func (s *Store) ProfileNames(workspace string) ([]string, error) {
	workspace = absClean(workspace)
	if _, err := s.Migrate(workspace); err != nil {
		return nil, err
	}
	return s.listProfiles(workspace)
}

// ProfileExists reports whether profile is registered in workspace.
func (s *Store) ProfileExists(workspace, profile string) (bool, error) {
	names, err := s.ProfileNames(workspace)
	if err != nil {
		return false, err
	}
	return slices.Contains(names, profile), nil
}

// listProfiles lists profile directories without running migration.
func (s *Store) listProfiles(workspace string) ([]string, error) {
	path := ProfilesPath(workspace)
	exists, err := afero.DirExists(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("stat profiles: %w", err)
	}
	if !exists {
		return nil, nil
	}
	entries, err := afero.ReadDir(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// RemoveProfile deletes a profile's metadata. Removing the default profile
// also clears the generated files and build spaces at the workspace root;
// missing entries are skipped and other failures are reported together once
// every entry has been tried. Removing any other profile also deletes its
// parallel build directory, and a failure there is returned immediately.
func (s *Store) RemoveProfile(workspace, profile string) error {
	if err := validProfileName(profile); err != nil {
		return err
	}
	workspace = absClean(workspace)
	if _, err := s.Migrate(workspace); err != nil {
		return err
	}

	s.logger.Info("removing profile", "workspace", workspace, "profile", profile)
	if err := s.fs.RemoveAll(ProfilePath(workspace, profile)); err != nil {
		return fmt.Errorf("remove profile metadata %s: %w", profile, err)
	}

	if profile == DefaultProfileName {
		if err := s.removeDefaultArtifacts(workspace); err != nil {
			return err
		}
	} else {
		buildRoot := BuildRoot(workspace, profile)
		if err := s.fs.RemoveAll(buildRoot); err != nil {
			return fmt.Errorf("remove parallel build directory %s: %w", buildRoot, err)
		}
	}

	return s.clearActiveIf(workspace, profile)
}

func (s *Store) removeDefaultArtifacts(workspace string) error {
	entries := []string{types.ConfigCacheFileName, types.ToolchainFileName}
	entries = append(entries, types.SessionScripts...)
	entries = append(entries, types.BuildSpaces...)

	var errs []error
	for _, name := range entries {
		path := filepath.Join(workspace, name)
		if err := s.fs.RemoveAll(path); err != nil {
			s.logger.Warn("could not remove generated artifact", "path", path, "err", err)
			errs = append(errs, fmt.Errorf("remove %s: %w", path, err))
		}
	}
	return errors.Join(errs...)
}

// ActiveProfile returns the profile recorded as active, or the default
// profile when none is recorded.
func (s *Store) ActiveProfile(workspace string) (string, error) {
	workspace = absClean(workspace)
	if _, err := s.Migrate(workspace); err != nil {
		return "", err
	}
	index, _, err := s.readDocument(s.indexPath(workspace))
	if err != nil {
		return "", err
	}
	value, ok := index[activeKey]
	if !ok || value == nil {
		return DefaultProfileName, nil
	}
	name, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s: %q is %T, want string",
			types.ErrUnexpectedShape, ProfilesIndexFileName, activeKey, value)
	}
	if name == "" {
		return DefaultProfileName, nil
	}
	return name, nil
}

// SetActiveProfile records profile as active. Other keys of the index are
// preserved.
func (s *Store) SetActiveProfile(workspace, profile string) error {
	if err := validProfileName(profile); err != nil {
		return err
	}
	workspace = absClean(workspace)
	exists, err := afero.DirExists(s.fs, MetadataRoot(workspace))
	if err != nil {
		return fmt.Errorf("stat metadata root: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: no metadata in %s", types.ErrWorkspaceNotFound, workspace)
	}
	if _, err := s.Migrate(workspace); err != nil {
		return err
	}

	index, _, err := s.readDocument(s.indexPath(workspace))
	if err != nil {
		return err
	}
	if index == nil {
		index = Document{}
	}
	index[activeKey] = profile
	if err := s.fs.MkdirAll(ProfilesPath(workspace), 0o755); err != nil {
		return fmt.Errorf("create profiles directory: %w", err)
	}
	return s.writeYAML(s.indexPath(workspace), index)
}

// clearActiveIf drops the active key when it names profile.
func (s *Store) clearActiveIf(workspace, profile string) error {
	path := s.indexPath(workspace)
	index, found, err := s.readDocument(path)
	if err != nil || !found {
		return err
	}
	if active, ok := index[activeKey].(string); !ok || active != profile {
		return nil
	}
	delete(index, activeKey)
	s.logger.Debug("cleared active profile", "profile", profile)
	return s.writeYAML(path, index)
}

func (s *Store) indexPath(workspace string) string {
	return filepath.Join(ProfilesPath(workspace), ProfilesIndexFileName)
}
