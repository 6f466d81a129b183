// Package web embeds the page templates and the browser assets.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates static
var assets embed.FS

func sub(dir string) fs.FS {
	s, err := fs.Sub(assets, dir)
	if err != nil {
		// dir is one of the embedded directories above
		panic(err)
	}
	return s
}

// GetTemplatesFS returns the page templates (layout, login, index, partials)
func GetTemplatesFS() fs.FS {
	return sub("templates")
}

// GetStaticFS returns the css and js served under /static
func GetStaticFS() fs.FS {
	return sub("static")
}
