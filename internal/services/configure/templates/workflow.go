package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// ProcessOption is one selectable pipeline process.
type ProcessOption struct {
	Display  string
	ID       string
	Selected bool
}

// WorkflowView is the dynamo editing form state.
type WorkflowView struct {
	ID               string
	Name             string
	Desc             string
	DocumentationURL string
	Executor         string
	Repository       string
	URI              string
	Script           string
	Version          string
	Parents          []ProcessOption
	Children         []ProcessOption
	Errors           map[string]string
}

// executors lists the supported workflow engines.
var executors = []string{"NEXTFLOW", "CROMWELL"}

// repositories lists the supported source repository kinds.
var repositories = []struct {
	Value string
	Label string
}{
	{Value: "GITHUBPUBLIC", Label: "Public GitHub Repository"},
	{Value: "GITHUBPRIVATE", Label: "Private GitHub Repository"},
}

// WorkflowPage renders the dynamo editing form.
func WorkflowPage(view WorkflowView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<form method="post" action="/workflow" class="workflow-form">`); err != nil {
			return err
		}

		if err := textInput(w, view.Errors, "id", "Workflow ID", view.ID,
			"Must be all lowercase alphanumeric with dashes"); err != nil {
			return err
		}
		if err := textInput(w, view.Errors, "name", "Workflow Name", view.Name,
			"Short name used to display the workflow in a list"); err != nil {
			return err
		}
		if err := textInput(w, view.Errors, "desc", "Workflow Description", view.Desc,
			"Longer description providing more details on the workflow"); err != nil {
			return err
		}
		if err := textInput(w, view.Errors, "documentation_url", "Documentation URL", view.DocumentationURL,
			"Optional link to workflow documentation"); err != nil {
			return err
		}

		if _, err := fmt.Fprintf(w, `<label for="executor">Workflow Executor</label>
<select id="executor" name="executor">`); err != nil {
			return err
		}
		for _, executor := range executors {
			if err := option(w, executor, executor, executor == view.Executor); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</select>`); err != nil {
			return err
		}
		if err := fieldError(w, view.Errors, "executor"); err != nil {
			return err
		}

		if _, err := io.WriteString(w, `<label for="repository">Repository Type</label>
<select id="repository" name="repository">`); err != nil {
			return err
		}
		for _, repo := range repositories {
			if err := option(w, repo.Value, repo.Label, repo.Value == view.Repository); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</select>`); err != nil {
			return err
		}
		if err := fieldError(w, view.Errors, "repository"); err != nil {
			return err
		}

		if err := textInput(w, view.Errors, "uri", "Workflow Repository (GitHub)", view.URI,
			"For example: organization/repository_name"); err != nil {
			return err
		}
		if err := textInput(w, view.Errors, "script", "Workflow Entrypoint", view.Script,
			"Script within the repository used to launch the workflow"); err != nil {
			return err
		}
		if err := textInput(w, view.Errors, "version", "Repository Version", view.Version,
			"Branch, tag, or release of the repository"); err != nil {
			return err
		}

		if err := processSelect(w, "parent_process_ids",
			"Processes with outputs that can be used as inputs to this workflow", view.Parents); err != nil {
			return err
		}
		if err := processSelect(w, "child_process_ids",
			"Processes that can use the outputs of this workflow as inputs", view.Children); err != nil {
			return err
		}

		_, err := io.WriteString(w, `<button type="submit">Save</button>
</form>`)
		return err
	})
}

func textInput(w io.Writer, errs map[string]string, name, label, value, help string) error {
	if _, err := fmt.Fprintf(w, `<label for="%s">%s</label>
<input type="text" id="%s" name="%s" value="%s" title="%s">`,
		esc(name), esc(label), esc(name), esc(name), esc(value), esc(help)); err != nil {
		return err
	}
	return fieldError(w, errs, name)
}

func option(w io.Writer, value, label string, selected bool) error {
	attr := ""
	if selected {
		attr = " selected"
	}
	_, err := fmt.Fprintf(w, `<option value="%s"%s>%s</option>`, esc(value), attr, esc(label))
	return err
}

func processSelect(w io.Writer, name, label string, options []ProcessOption) error {
	if _, err := fmt.Fprintf(w, `<label for="%s">%s</label>
<select id="%s" name="%s" multiple>`, esc(name), esc(label), esc(name), esc(name)); err != nil {
		return err
	}
	for _, opt := range options {
		if err := option(w, opt.ID, opt.Display, opt.Selected); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `</select>`)
	return err
}
