//go:build mage

// Package main provides build targets for the ckx project using Mage.
//
// Usage:
//
//	mage build      Compile the ckx binary to bin/
//	mage test       Run all tests
//	mage testUnit   Run tests with the race detector, skipping magefiles
//	mage lint       Run golangci-lint
//	mage clean      Remove build artifacts
//	mage install    Install ckx to GOPATH/bin
//	mage stats      Print Go lines of code and bundled library sizes
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binLint    = "golangci-lint"
	binaryName = "ckx"
	binaryDir  = "bin"
	cmdDir     = "./cmd/ckx"

	versionPkg   = "github.com/mesh-intelligence/ckx/internal/version"
	resourcesDir = "internal/buildconf/resources"
)

// ldflags stamps the git commit into the binary when one is available.
func ldflags() string {
	commit, err := sh.Output("git", "rev-parse", "HEAD")
	if err != nil || commit == "" {
		return ""
	}
	return "-X " + versionPkg + ".Commit=" + commit
}

// Build compiles the ckx binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-ldflags", ldflags(), "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Test runs all tests.
func Test() error {
	return sh.RunV(binGo, "test", "./...")
}

// TestUnit runs the package tests with the race detector.
func TestUnit() error {
	pkgs, err := sh.Output(binGo, "list", "./...")
	if err != nil {
		return err
	}
	var unitPkgs []string
	for _, pkg := range strings.Split(pkgs, "\n") {
		if pkg != "" && !strings.HasSuffix(pkg, "/magefiles") {
			unitPkgs = append(unitPkgs, pkg)
		}
	}
	args := append([]string{"test", "-race"}, unitPkgs...)
	return sh.RunV(binGo, args...)
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV(binLint, "run", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}

// Stats prints Go lines of code per package and the number of bundled
// toolchain and platform modules.
func Stats() error {
	prod := map[string]int{}
	var testLines int

	err := filepath.Walk(".", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			switch path {
			case "vendor", ".git", binaryDir, "magefiles", "_examples":
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		count, err := countLines(path)
		if err != nil {
			return nil
		}
		if strings.HasSuffix(path, "_test.go") {
			testLines += count
		} else {
			prod[filepath.Dir(path)] += count
		}
		return nil
	})
	if err != nil {
		return err
	}

	dirs := make([]string, 0, len(prod))
	total := 0
	for dir, n := range prod {
		dirs = append(dirs, dir)
		total += n
	}
	sort.Strings(dirs)
	for _, dir := range dirs {
		fmt.Printf("%-32s %6d\n", dir, prod[dir])
	}
	fmt.Printf("Lines of code (Go, production): %d\n", total)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)

	for _, lib := range []string{"toolchains", "platforms"} {
		matches, err := filepath.Glob(filepath.Join(resourcesDir, lib, "*", "*.cmake"))
		if err != nil {
			return err
		}
		fmt.Printf("Bundled %-10s              %d\n", lib+":", len(matches))
	}
	return nil
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		count++
	}
	return count, scanner.Err()
}
