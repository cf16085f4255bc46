// Package textutil provides the small text helpers shared by the pipeline:
// case-folded substring masks for filename and command filtering, and token
// sanitizing for names derived from user paths.
package textutil
