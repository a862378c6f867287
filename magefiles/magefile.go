// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for the kladia project using Mage.
//
// Usage:
//
//	mage build          Compile kladia binary to bin/
//	mage test           Run all tests
//	mage testShort      Run tests with fewer property-test iterations
//	mage selftest       Build, then run the built-in scenario on both backends
//	mage lint           Run golangci-lint
//	mage clean          Remove build artifacts
//	mage install        Install kladia to GOPATH/bin
//	mage stats          Print Go LOC and documentation word counts
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binLint    = "golangci-lint"
	binaryName = "kladia"
	binaryDir  = "bin"
	cmdDir     = "./cmd/kladia"
	versionVar = "github.com/mesh-intelligence/kladia/internal/cli.Version"
)

// ldflags stamps the version from KLADIA_VERSION when it is set.
func ldflags() string {
	if v := os.Getenv("KLADIA_VERSION"); v != "" {
		return "-X " + versionVar + "=" + v
	}
	return ""
}

// Build compiles the kladia binary to bin/.
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

// TestShort runs all tests with a reduced number of property-test checks.
func TestShort() error {
	return sh.RunV(binGo, "test", "./...", "-args", "-rapid.checks=20")
}

// Selftest builds the binary and runs its built-in scenario on every backend.
func Selftest() error {
	mg.Deps(Build)
	bin := filepath.Join(binaryDir, binaryName)
	for _, backend := range []string{"memory", "sqlite"} {
		if err := sh.RunV(bin, "selftest", "--backend", backend); err != nil {
			return err
		}
	}
	return nil
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
