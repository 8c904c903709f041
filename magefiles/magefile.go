//go:build mage

// Package main provides build targets for the catalog project using Mage.
//
// Usage:
//
//	mage build           Compile catalog binary to bin/
//	mage test            Run all tests
//	mage testUnit        Run only package tests (exclude the binary tests)
//	mage testIntegration Run only the binary tests in cmd/catalog
//	mage lint            Run golangci-lint
//	mage clean           Remove build artifacts
//	mage install         Install catalog to GOPATH/bin
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName = "catalog"
	binaryDir  = "bin"
	cmdDir     = "./cmd/catalog"
	cmdPkg     = "github.com/mesh-intelligence/catalog/cmd/catalog"
	versionVar = "github.com/mesh-intelligence/catalog/internal/cli.Version"
)

// ldflags stamps the version from CATALOG_VERSION when it is set.
func ldflags() string {
	v := os.Getenv("CATALOG_VERSION")
	if v == "" {
		return ""
	}
	return fmt.Sprintf("-X %s=%s", versionVar, strings.TrimPrefix(v, "v"))
}

// Build compiles the catalog binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV("go", "build", "-v", "-ldflags", ldflags(), "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Test runs all tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// TestUnit runs package tests, skipping cmd/catalog, which builds the binary.
func TestUnit() error {
	pkgs, err := sh.Output("go", "list", "./...")
	if err != nil {
		return err
	}
	var unitPkgs []string
	for _, pkg := range strings.Split(pkgs, "\n") {
		if pkg != "" && pkg != cmdPkg {
			unitPkgs = append(unitPkgs, pkg)
		}
	}
	if len(unitPkgs) == 0 {
		fmt.Println("No unit test packages found.")
		return nil
	}
	args := append([]string{"test"}, unitPkgs...)
	return sh.RunV("go", args...)
}

// TestIntegration runs the binary tests in cmd/catalog.
func TestIntegration() error {
	return sh.RunV("go", "test", cmdDir)
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV("go", "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output("go", "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}
