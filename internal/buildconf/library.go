// Package buildconf resolves toolchain and platform identifiers against the
// official and custom libraries and generates the build-configuration
// artifacts of a build root: config.cmake, toolchain.cmake and the session
// launcher scripts.
//
// Like the workspace store, the generator assumes a single writer. The
// existence check and the write of config.cmake are not atomic.
package buildconf

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"

	"github.com/mesh-intelligence/ckx/pkg/types"
)

// Tier names.
const (
	TierOfficial = "official"
	TierCustom   = "custom"
)

const libraryFileExt = ".cmake"

// Tier is one root of a library: a directory whose subdirectories are
// families and whose files are identifiers.
type Tier struct {
	Name string
	Fs   afero.Fs
	Root string
}

// Library is a toolchain or platform library. Custom definitions take
// precedence over official ones per identifier.
type Library struct {
	Official Tier
	Custom   Tier
	// DefaultFile, when set, is resolved from the official root for an
	// empty identifier.
	DefaultFile string
}

// Resolved is a library file selected for an identifier.
type Resolved struct {
	Family     string
	Identifier string
	Tier       string
	Path       string

	fs afero.Fs
}

// Content reads the resolved file.
func (r Resolved) Content() ([]byte, error) {
	data, err := afero.ReadFile(r.fs, r.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", r.Tier, r.Path, err)
	}
	return data, nil
}

// ToolchainLibrary returns the bundled toolchains with the custom tier under
// settings.CustomToolchains() on fs.
func ToolchainLibrary(fs afero.Fs, settings types.Settings) Library {
	return Library{
		Official: Tier{Name: TierOfficial, Fs: bundled(), Root: types.ToolchainsDirName},
		Custom:   Tier{Name: TierCustom, Fs: fs, Root: settings.CustomToolchains()},
	}
}

// PlatformLibrary returns the bundled platforms with the custom tier under
// settings.CustomPlatforms() on fs.
func PlatformLibrary(fs afero.Fs, settings types.Settings) Library {
	return Library{
		Official:    Tier{Name: TierOfficial, Fs: bundled(), Root: types.PlatformsDirName},
		Custom:      Tier{Name: TierCustom, Fs: fs, Root: settings.CustomPlatforms()},
		DefaultFile: DefaultPlatformFile,
	}
}

// ListFamilies maps each family directory directly under the tier root to the
// sorted identifiers it defines. Files at the root are ignored and a missing
// root yields an empty map.
func ListFamilies(tier Tier) (map[string][]string, error) {
	families := map[string][]string{}
	exists, err := afero.DirExists(tier.Fs, tier.Root)
	if err != nil {
		return nil, fmt.Errorf("stat %s library: %w", tier.Name, err)
	}
	if !exists {
		return families, nil
	}
	entries, err := afero.ReadDir(tier.Fs, tier.Root)
	if err != nil {
		return nil, fmt.Errorf("list %s library: %w", tier.Name, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		files, err := afero.ReadDir(tier.Fs, filepath.Join(tier.Root, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("list %s family %s: %w", tier.Name, entry.Name(), err)
		}
		ids := []string{}
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			ids = append(ids, strings.TrimSuffix(f.Name(), path.Ext(f.Name())))
		}
		slices.Sort(ids)
		families[entry.Name()] = ids
	}
	return families, nil
}

// Resolve finds the file for a family/identifier key. The custom tier wins
// when it defines the identifier; otherwise the official tier is used.
func (l Library) Resolve(key string) (Resolved, error) {
	if key == "" && l.DefaultFile != "" {
		return l.existing(Resolved{
			Tier: l.Official.Name,
			Path: filepath.Join(l.Official.Root, l.DefaultFile),
			fs:   l.Official.Fs,
		})
	}
	family, id, ok := strings.Cut(key, "/")
	if !ok || family == "" || id == "" || strings.Contains(id, "/") {
		return Resolved{}, fmt.Errorf("%w: %q", types.ErrMalformedSpec, key)
	}

	official, err := ListFamilies(l.Official)
	if err != nil {
		return Resolved{}, err
	}
	custom, err := ListFamilies(l.Custom)
	if err != nil {
		return Resolved{}, err
	}
	customIDs, inCustom := custom[family]
	officialIDs, inOfficial := official[family]
	if !inCustom && !inOfficial {
		return Resolved{}, fmt.Errorf("%w: %s", types.ErrFamilyNotFound, family)
	}

	var tier Tier
	switch {
	case slices.Contains(customIDs, id):
		tier = l.Custom
	case slices.Contains(officialIDs, id):
		tier = l.Official
	default:
		return Resolved{}, fmt.Errorf("%w: %s in family %s", types.ErrSpecNotFound, id, family)
	}
	return l.existing(Resolved{
		Family:     family,
		Identifier: id,
		Tier:       tier.Name,
		Path:       filepath.Join(tier.Root, family, id+libraryFileExt),
		fs:         tier.Fs,
	})
}

func (l Library) existing(r Resolved) (Resolved, error) {
	info, err := r.fs.Stat(r.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Resolved{}, fmt.Errorf("%w: %s", types.ErrLibraryFileMissing, r.Path)
		}
		return Resolved{}, fmt.Errorf("stat %s: %w", r.Path, err)
	}
	if info.IsDir() {
		return Resolved{}, fmt.Errorf("%w: %s is a directory", types.ErrLibraryFileMissing, r.Path)
	}
	return r, nil
}
