// Package templates renders the configuration builder pages as templ
// components.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// AppName is the product name shown in the page chrome.
const AppName = "Cirro Workflow Configuration"

// NavItem is one entry of the top navigation.
type NavItem struct {
	Label string
	URL   string
}

// navItems lists the editing pages in display order.
var navItems = []NavItem{
	{Label: "Workflow", URL: "/"},
	{Label: "Parameters", URL: "/params"},
	{Label: "Outputs", URL: "/outputs"},
	{Label: "Artifacts", URL: "/artifacts"},
}

// PageState carries the layout context shared by every page.
type PageState struct {
	Title       string
	CurrentPath string
	CanUndo     bool
	CanRedo     bool
	Notice      string
}

// ComposePageTitle appends the product name to a page title.
func ComposePageTitle(title string) string {
	if title == "" {
		return AppName
	}
	return title + " | " + AppName
}

func esc(value string) string { return templ.EscapeString(value) }

// Layout wraps a page body in the shared chrome: navigation, undo/redo
// controls, and flash notice.
func Layout(state PageState, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
<link rel="icon" href="https://cirro.bio/favicon-32x32.png">
<link rel="stylesheet" href="/static/app.css">
</head>
<body>
<header>
<h1>%s</h1>
<nav>`, esc(ComposePageTitle(state.Title)), esc(AppName)); err != nil {
			return err
		}
		for _, item := range navItems {
			class := ""
			if item.URL == state.CurrentPath {
				class = ` class="active"`
			}
			if _, err := fmt.Fprintf(w, `<a href="%s"%s>%s</a>`, esc(item.URL), class, esc(item.Label)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</nav>
<div class="history">`); err != nil {
			return err
		}
		if err := historyButton(w, "/undo", "Undo", state.CanUndo); err != nil {
			return err
		}
		if err := historyButton(w, "/redo", "Redo", state.CanRedo); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<form method="post" action="/refresh"><button type="submit">Refresh</button></form>
<form method="post" action="/logout"><button type="submit">Start Over</button></form>
</div>
</header>
<main>`); err != nil {
			return err
		}
		if state.Notice != "" {
			if _, err := fmt.Fprintf(w, `<p class="notice">%s</p>`, esc(state.Notice)); err != nil {
				return err
			}
		}
		if body != nil {
			if err := body.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</main>
</body>
</html>`)
		return err
	})
}

func historyButton(w io.Writer, action, label string, enabled bool) error {
	disabled := ""
	if !enabled {
		disabled = " disabled"
	}
	_, err := fmt.Fprintf(w, `<form method="post" action="%s"><button type="submit"%s>%s</button></form>`,
		esc(action), disabled, esc(label))
	return err
}

// fieldError writes the inline error paragraph for a form field when one is
// present.
func fieldError(w io.Writer, errs map[string]string, field string) error {
	message, ok := errs[field]
	if !ok {
		return nil
	}
	_, err := fmt.Fprintf(w, `<p class="field-error">%s</p>`, esc(message))
	return err
}
