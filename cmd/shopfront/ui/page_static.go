package ui

import (
	"github.com/charmbracelet/glamour"
)

const homeMarkdown = `
# Welcome to Shopfront

Your one-stop terminal storefront.

- Browse and manage the **product catalog**
- Create an account to unlock catalog changes
- Reach us any time through the **contact** form

Use the function keys shown in the navigation bar to move between pages.
`

const aboutMarkdown = `
# About Shopfront

Shopfront is a lightweight client for a product catalog service. The catalog
itself lives on a backend API; this application is a thin screen over it:
forms are validated locally before anything is sent, and the product list is
fetched fresh each time you open it.

## What you can do

1. Register an account
2. Add, edit, and remove products
3. Search and sort the catalog without extra requests
`

const notFoundMarkdown = `
# 404

The page you are looking for does not exist.

Press **F1** to return home.
`

// staticPage renders fixed markdown content. The rendered output is cached
// per width, since glamour wraps to the given width.
type staticPage struct {
	markdown string
	rendered string
	width    int
}

func newStaticPage(markdown string) staticPage {
	return staticPage{markdown: markdown}
}

// View renders the page at the given content width.
func (p *staticPage) View(width int, dark bool) string {
	if width <= 0 {
		width = 72
	}
	if p.rendered != "" && p.width == width {
		return p.rendered
	}

	style := glamour.WithStandardStyle("light")
	if dark {
		style = glamour.WithStandardStyle("dark")
	}
	renderer, err := glamour.NewTermRenderer(
		style,
		glamour.WithWordWrap(min(width, 80)),
	)
	if err != nil {
		return p.markdown
	}
	out, err := renderer.Render(p.markdown)
	if err != nil {
		return p.markdown
	}
	p.rendered = out
	p.width = width
	return out
}
