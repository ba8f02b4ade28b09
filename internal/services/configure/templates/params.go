package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// SourceOption is one selectable value source for a parameter.
type SourceOption struct {
	Value string
	Label string
}

// SourceOptions lists the supported parameter value sources.
var SourceOptions = []SourceOption{
	{Value: "form_entry", Label: "Form Entry"},
	{Value: "output_directory", Label: "Output Directory"},
	{Value: "input_directory", Label: "Input Directory"},
	{Value: "dataset_name", Label: "Dataset Name"},
	{Value: "hardcoded", Label: "Hardcoded Value"},
}

// WidgetOption is one selectable form widget kind.
type WidgetOption struct {
	Value string
	Label string
}

// WidgetOptions lists the supported form entry widgets.
var WidgetOptions = []WidgetOption{
	{Value: "user_value", Label: "User Provided Value"},
	{Value: "dataset", Label: "Dataset"},
	{Value: "input_file", Label: "Input File"},
	{Value: "reference", Label: "Reference"},
}

// valueTypes lists the supported form value types.
var valueTypes = []string{"string", "integer", "number", "boolean", "array"}

// ParamView is the editing state of one input parameter.
type ParamView struct {
	ID          string
	Source      string
	Value       string
	Title       string
	Description string
	Type        string
	Default     string
	Widget      string
	Process     string
	Reference   string
}

// ParamsView is the parameter editing page state.
type ParamsView struct {
	Params     []ParamView
	Processes  []string
	References []string
	Errors     map[string]string
}

// ParamsPage renders the input parameter editing form.
func ParamsPage(view ParamsView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(view.Params) == 0 {
			if _, err := io.WriteString(w, `<p>No input parameters defined yet.</p>`); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `<form method="post" action="/params" class="params-form">`); err != nil {
			return err
		}
		for _, param := range view.Params {
			if err := paramSection(w, view, param); err != nil {
				return err
			}
		}
		if len(view.Params) > 0 {
			if _, err := io.WriteString(w, `<button type="submit">Save</button>`); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</form>
<form method="post" action="/params/add"><button type="submit">Add Parameter</button></form>`); err != nil {
			return err
		}
		return nil
	})
}

func paramSection(w io.Writer, view ParamsView, param ParamView) error {
	if _, err := fmt.Fprintf(w, `<fieldset class="param" id="param-%s">
<legend>%s</legend>`, esc(param.ID), esc(param.ID)); err != nil {
		return err
	}
	if err := textInput(w, view.Errors, "id_"+param.ID, "Parameter ID", param.ID,
		"Keyword used for this parameter in the workflow"); err != nil {
		return err
	}

	field := func(name string) string { return name + "_" + param.ID }
	if _, err := fmt.Fprintf(w, `<label for="%s">Value Source</label>
<select id="%s" name="%s">`, esc(field("source")), esc(field("source")), esc(field("source"))); err != nil {
		return err
	}
	for _, source := range SourceOptions {
		if err := option(w, source.Value, source.Label, source.Value == param.Source); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, `</select>`); err != nil {
		return err
	}
	if err := fieldError(w, view.Errors, "input."+param.ID); err != nil {
		return err
	}

	switch param.Source {
	case "hardcoded":
		if err := textInput(w, view.Errors, field("value"), "Value", param.Value,
			"Fixed value supplied to the workflow"); err != nil {
			return err
		}
	case "form_entry":
		if err := formEntryFields(w, view, param, field); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, `<button type="submit" formaction="/params/remove" name="remove" value="%s">Remove</button>
</fieldset>`, esc(param.ID))
	return err
}

func formEntryFields(w io.Writer, view ParamsView, param ParamView, field func(string) string) error {
	if err := textInput(w, view.Errors, field("title"), "Display Title", param.Title,
		"Label shown to the user above the form input"); err != nil {
		return err
	}
	if err := textInput(w, view.Errors, field("description"), "Description", param.Description,
		"Help text shown next to the form input"); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, `<label for="%s">Widget</label>
<select id="%s" name="%s">`, esc(field("widget")), esc(field("widget")), esc(field("widget"))); err != nil {
		return err
	}
	for _, widget := range WidgetOptions {
		if err := option(w, widget.Value, widget.Label, widget.Value == param.Widget); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, `</select>`); err != nil {
		return err
	}

	switch param.Widget {
	case "dataset":
		if _, err := fmt.Fprintf(w, `<label for="%s">Dataset Type</label>
<select id="%s" name="%s">`, esc(field("process")), esc(field("process")), esc(field("process"))); err != nil {
			return err
		}
		for _, display := range view.Processes {
			if err := option(w, display, display, display == param.Process); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</select>`); err != nil {
			return err
		}
	case "reference":
		if _, err := fmt.Fprintf(w, `<label for="%s">Reference Type</label>
<select id="%s" name="%s">`, esc(field("reference")), esc(field("reference")), esc(field("reference"))); err != nil {
			return err
		}
		for _, name := range view.References {
			if err := option(w, name, name, name == param.Reference); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</select>`); err != nil {
			return err
		}
	case "user_value":
		if _, err := fmt.Fprintf(w, `<label for="%s">Value Type</label>
<select id="%s" name="%s">`, esc(field("type")), esc(field("type")), esc(field("type"))); err != nil {
			return err
		}
		for _, typeName := range valueTypes {
			if err := option(w, typeName, typeName, typeName == param.Type); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</select>`); err != nil {
			return err
		}
		if err := textInput(w, view.Errors, field("default"), "Default Value", param.Default,
			"Starting value shown in the form"); err != nil {
			return err
		}
	}
	return nil
}
