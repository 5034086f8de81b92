package web

import "embed"

// Content holds the orrery page: index.html draws the scene from the frame
// stream, or falls back to /orbit.svg when animation is disabled.
//
//go:embed index.html app.js styles.css
var Content embed.FS
