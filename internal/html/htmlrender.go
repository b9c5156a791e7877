// Package html builds the fiber template engine used by the admin screens.
package html

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

// NewEngine creates the template engine. In production the templates come
// from the embedded filesystem; with templateDebug they are loaded from
// extDir and reloaded at runtime, to allow dynamic changes.
func NewEngine(templateDebug bool, viewsfs embed.FS, extDir string) (*html.Engine, error) {
	if templateDebug {
		engine := html.New(extDir, ".html")
		engine.Reload(true)
		return engine, nil
	}

	sub, err := fs.Sub(viewsfs, "views")
	if err != nil {
		return nil, err
	}
	return html.NewFileSystem(http.FS(sub), ".html"), nil
}
