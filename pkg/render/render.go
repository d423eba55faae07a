// Package render provides output renderers for loopcheck's visualization
// patterns.
package render

import "github.com/dkoosis/loopcheck/pkg/pattern"

// Renderer converts patterns to formatted output.
type Renderer interface {
	Render(patterns []pattern.Pattern) string
}
