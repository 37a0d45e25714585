//go:build mage

package main

import (
	"fmt"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "bin/flowlint"

// Default target - build the binary
var Default = Build

// Build builds the flowlint binary with version metadata stamped in.
func Build() error {
	return sh.RunV("go", "build", "-ldflags", ldflags(), "-o", binary, "./cmd/flowlint")
}

// Test runs the full test suite.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Lint runs static analysis.
func Lint() error {
	return sh.RunV("go", "vet", "./...")
}

// Check runs lint and tests.
func Check() {
	mg.SerialDeps(Lint, Test)
}

// Clean removes build artifacts.
func Clean() error {
	return sh.Rm("bin")
}

func ldflags() string {
	pkg := "github.com/dkoosis/flowlint/internal/version"

	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil {
		version = "dev"
	}
	commit, err := sh.Output("git", "rev-parse", "--short", "HEAD")
	if err != nil {
		commit = "unknown"
	}
	date := time.Now().UTC().Format(time.RFC3339)

	return fmt.Sprintf("-X %s.Version=%s -X %s.CommitHash=%s -X %s.BuildDate=%s",
		pkg, version, pkg, commit, pkg, date)
}
