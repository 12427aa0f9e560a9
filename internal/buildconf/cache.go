package buildconf

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"

	"github.com/mesh-intelligence/ckx/pkg/types"
)

var cacheSetting = regexp.MustCompile(`^set\(([A-Z_]+) "(.*?)"`)

// CacheSettings are the values a build reads back from config.cmake.
type CacheSettings struct {
	Underlays     []string
	DocPrefix     string
	InstallPrefix string
}

// SourceUnderlays returns the source directory of every underlay whose root
// is a devel space, by replacing the trailing devel with src.
func (c CacheSettings) SourceUnderlays() []string {
	var sources []string
	for _, u := range c.Underlays {
		if base, ok := strings.CutSuffix(u, "devel"); ok {
			sources = append(sources, base+"src")
		}
	}
	return sources
}

// IsolatedInstallPrefix is the install prefix used by isolated installs.
func (c CacheSettings) IsolatedInstallPrefix() string {
	if c.InstallPrefix == "" {
		return ""
	}
	return c.InstallPrefix + "_isolated"
}

// ParseConfigCache reads <buildRoot>/config.cmake. A cache written before
// YUJIN_DOC_PREFIX existed gets <buildRoot>/doc as its doc prefix.
func ParseConfigCache(fs afero.Fs, buildRoot string) (CacheSettings, error) {
	path := filepath.Join(buildRoot, types.ConfigCacheFileName)
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return CacheSettings{}, fmt.Errorf("config cache %s: %w", path, types.ErrNotFound)
		}
		return CacheSettings{}, fmt.Errorf("read %s: %w", path, err)
	}

	var (
		settings  CacheSettings
		docPrefix *string
	)
	seen := map[string]bool{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		m := cacheSetting.FindStringSubmatch(scanner.Text())
		if m == nil || seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		switch m[1] {
		case "UNDERLAY_ROOTS":
			if m[2] != "" {
				settings.Underlays = strings.Split(m[2], ";")
			}
		case "YUJIN_DOC_PREFIX":
			docPrefix = &m[2]
		case "CMAKE_INSTALL_PREFIX":
			settings.InstallPrefix = m[2]
		}
	}
	if err := scanner.Err(); err != nil {
		return CacheSettings{}, fmt.Errorf("scan %s: %w", path, err)
	}
	settings.DocPrefix = filepath.Join(buildRoot, "doc")
	if docPrefix != nil {
		settings.DocPrefix = *docPrefix
	}
	return settings, nil
}
