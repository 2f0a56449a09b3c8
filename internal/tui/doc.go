// Package tui implements the gtoken scenes.
//
// Component architecture:
//
//	progress.go   progress scene: resolve a page token, retry tip on failure
//	detail.go     gallery detail scene, destination of a resolved token
//	transition.go two-view switcher with a short fade
//	header.go     frame: top bar, body, footer with key hints
//	theme.go      centralized color + style definitions
//	helpers.go    truncation and small math helpers
package tui

import "github.com/Mr-Dark-debug/gtoken/internal/stage"

// Register adds every scene in this package to reg.
func Register(reg *stage.Registry) *stage.Registry {
	return reg.
		Register(KindProgress, NewProgressScene).
		Register(KindGalleryDetail, NewDetailScene)
}
