package buildconf

import (
	"embed"
	"io/fs"

	"github.com/spf13/afero"
)

// resources holds the official toolchain and platform library, the
// config.cmake template with its overrides module, and the session script
// templates.
//
//go:embed resources
var resources embed.FS

// Paths inside the bundled resources.
const (
	configTemplatePath = "cmake/config.cmake.tmpl"
	overridesPath      = "cmake/overrides.cmake"
	templatesDir       = "templates"
)

// DefaultPlatformFile is resolved for an empty platform identifier.
const DefaultPlatformFile = "default.cmake"

// bundled returns the resources as a read-only afero filesystem rooted at the
// resources directory.
func bundled() afero.Fs {
	sub, err := fs.Sub(resources, "resources")
	if err != nil {
		panic(err)
	}
	return afero.NewReadOnlyFs(afero.FromIOFS{FS: sub})
}
