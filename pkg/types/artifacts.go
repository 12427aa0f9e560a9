package types

// Generated build-configuration artifacts written into a build root.
const (
	ConfigCacheFileName = "config.cmake"
	ToolchainFileName   = "toolchain.cmake"
)

// SessionScripts lists the launcher scripts generated into a build root.
var SessionScripts = []string{
	"eclipse",
	"setup.bash",
	"konsole",
	"gnome-terminal",
}

// BuildSpaces lists the directories a build creates inside a build root.
var BuildSpaces = []string{
	"build",
	"devel",
	"logs",
	"install",
	"docs",
}
