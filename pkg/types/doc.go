// Package types defines the settings value shared by the ckx packages and the
// error taxonomy returned by the workspace store and the build-configuration
// resolver.
package types
