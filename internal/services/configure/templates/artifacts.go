package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// ArtifactView is one generated file shown on the preview page.
type ArtifactView struct {
	Name    string
	Content string
}

// ArtifactsView is the artifact preview page state.
type ArtifactsView struct {
	Artifacts []ArtifactView
	Problems  []string
}

// ArtifactsPage renders the artifact preview with download links, or the
// list of validation problems blocking export.
func ArtifactsPage(view ArtifactsView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(view.Problems) > 0 {
			if _, err := io.WriteString(w, `<section class="problems">
<h2>The configuration cannot be exported yet</h2>
<ul>`); err != nil {
				return err
			}
			for _, problem := range view.Problems {
				if _, err := fmt.Fprintf(w, `<li>%s</li>`, esc(problem)); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, `</ul>
</section>`); err != nil {
				return err
			}
			return nil
		}

		if _, err := io.WriteString(w, `<p><a href="/download/all" class="download-all">Download all files (zip)</a></p>`); err != nil {
			return err
		}
		for _, artifact := range view.Artifacts {
			if _, err := fmt.Fprintf(w, `<section class="artifact">
<h2>%s</h2>
<p><a href="/download/%s">Download</a></p>
<pre><code>%s</code></pre>
</section>`, esc(artifact.Name), esc(artifact.Name), esc(artifact.Content)); err != nil {
				return err
			}
		}

		_, err := io.WriteString(w, `<section class="upload">
<h2>Load an existing configuration</h2>
<form method="post" action="/upload" enctype="multipart/form-data">
<input type="file" name="files" multiple>
<button type="submit">Upload</button>
</form>
</section>`)
		return err
	})
}
