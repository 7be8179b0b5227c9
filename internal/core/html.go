package core

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
)

type RootView struct {
	Title    string
	Page     any
	Script   string
	CSS      []string
	Preloads []string
	HeadHTML string
	BodyHTML string
}

// RenderRootView renders the document that boots the client app. The page
// object travels HTML-escaped in the data-page attribute of the mount node.
func RenderRootView(view RootView) (string, error) {
	if view.Script == "" {
		return "", fmt.Errorf("missing script src")
	}

	title := view.Title
	if title == "" {
		title = "Travel Recommendation"
	}

	pageJSON, err := json.Marshal(view.Page)
	if err != nil {
		return "", err
	}

	var head strings.Builder
	head.WriteString(`<meta charset="UTF-8" /><meta name="viewport" content="width=device-width, initial-scale=1.0" />`)
	if !strings.Contains(strings.ToLower(view.HeadHTML), "<title") {
		fmt.Fprintf(&head, "<title>%s</title>", html.EscapeString(title))
	}
	head.WriteString(view.HeadHTML)
	for _, href := range view.CSS {
		fmt.Fprintf(&head, `<link rel="stylesheet" href="%s" />`, html.EscapeString(href))
	}
	for _, href := range view.Preloads {
		fmt.Fprintf(&head, `<link rel="modulepreload" href="%s" />`, html.EscapeString(href))
	}

	doc := fmt.Sprintf(`<!doctype html>
<html lang="en">
  <head>
    %s
  </head>
  <body>
    <div id="app" data-page="%s"></div>
    <script type="module" src="%s"></script>
%s  </body>
</html>
`, head.String(), html.EscapeString(string(pageJSON)), html.EscapeString(view.Script), view.BodyHTML)

	return doc, nil
}
