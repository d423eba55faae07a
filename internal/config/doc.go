// Package config handles configuration loading and merging for loopcheck.
//
// # Configuration Precedence
//
// Values are resolved in the following order (highest to lowest priority):
//
//  1. CLI flags (--device, --format, --theme, --settle, ...)
//  2. Environment variables (LOOPCHECK_DEVICE, LOOPCHECK_NO_COLOR, NO_COLOR, CI)
//  3. YAML config file (.loopcheck.yaml locally or ~/.config/loopcheck/)
//  4. Hardcoded defaults
//
// # Environment Variables
//
//   - LOOPCHECK_DEVICE: default device name
//   - LOOPCHECK_NO_COLOR or NO_COLOR: non-empty disables colors
//   - LOOPCHECK_CI or CI: "true"/"1" enables CI mode (monochrome, no footer)
package config
