//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"

	"github.com/dkoosis/loopcheck/internal/magetasks"
)

// Default target - build the binary
var Default = Build

func init() {
	if err := magetasks.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal: %v\n", err)
		os.Exit(1)
	}
}

// Build builds the loopcheck binary
func Build() error {
	return magetasks.BuildAll()
}

// Clean removes build artifacts
func Clean() error {
	return magetasks.Clean()
}

// QA runs all quality assurance checks
func QA() error {
	magetasks.PrintH1Header("loopcheck Quality Assurance")

	if err := magetasks.LintAll(); err != nil {
		return fmt.Errorf("lint failed: %w", err)
	}
	if err := magetasks.TestAll(); err != nil {
		return fmt.Errorf("tests failed: %w", err)
	}
	if err := magetasks.BuildAll(); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	magetasks.PrintSuccess("QA complete!")
	return nil
}

// Lint namespace for linting commands
type Lint mg.Namespace

// All runs all linters
func (Lint) All() error {
	return magetasks.LintAll()
}

// Format checks code formatting
func (Lint) Format() error {
	return magetasks.LintFormat()
}

// Vet runs go vet
func (Lint) Vet() error {
	return magetasks.LintVet()
}

// Staticcheck runs staticcheck
func (Lint) Staticcheck() error {
	return magetasks.LintStaticcheck()
}

// Golangci runs golangci-lint
func (Lint) Golangci() error {
	return magetasks.LintGolangci()
}

// Fix runs golangci-lint with auto-fixes
func (Lint) Fix() error {
	return magetasks.LintGolangciFix()
}

// Test namespace for testing commands
type Test mg.Namespace

// All runs all tests
func (Test) All() error {
	return magetasks.TestAll()
}

// Coverage runs tests with coverage
func (Test) Coverage() error {
	return magetasks.TestCoverage()
}

// Race runs tests with race detector
func (Test) Race() error {
	return magetasks.TestRace()
}

// Quality namespace for quality check commands
type Quality mg.Namespace

// Check runs the quality validation suite
func (Quality) Check() error {
	return magetasks.QualityCheck()
}

// Report generates the quality report
func (Quality) Report() error {
	return magetasks.QualityReport()
}
