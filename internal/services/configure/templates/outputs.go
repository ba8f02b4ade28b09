package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// ColumnView is the editing state of one output column.
type ColumnView struct {
	Col  string
	Name string
	Desc string
}

// ConcatView is the editing state of one path token.
type ConcatView struct {
	Token string
	Name  string
	Desc  string
}

// OutputView is the editing state of one output file.
type OutputView struct {
	Index     int
	Name      string
	Desc      string
	Source    string
	Target    string
	URL       string
	Delimiter string
	Columns   []ColumnView
	Concat    []ConcatView
	Melt      bool
	MeltKey   ConcatView
	MeltValue ConcatView
}

// OutputsView is the output editing page state.
type OutputsView struct {
	Outputs []OutputView
	Errors  map[string]string
}

// delimiters lists the supported field separators.
var delimiters = []struct {
	Value string
	Label string
}{
	{Value: ",", Label: "Comma"},
	{Value: "\t", Label: "Tab"},
}

// OutputsPage renders the output file editing form.
func OutputsPage(view OutputsView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(view.Outputs) == 0 {
			if _, err := io.WriteString(w, `<p>No output files defined yet.</p>`); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `<form method="post" action="/outputs" class="outputs-form">`); err != nil {
			return err
		}
		for _, output := range view.Outputs {
			if err := outputSection(w, view, output); err != nil {
				return err
			}
		}
		if len(view.Outputs) > 0 {
			if _, err := io.WriteString(w, `<button type="submit">Save</button>`); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</form>
<form method="post" action="/outputs/add"><button type="submit">Add Output File</button></form>`); err != nil {
			return err
		}
		return nil
	})
}

func outputSection(w io.Writer, view OutputsView, output OutputView) error {
	prefix := fmt.Sprintf("output.commands[%d]", output.Index)
	field := func(name string) string { return fmt.Sprintf("%s_%d", name, output.Index) }

	if _, err := fmt.Fprintf(w, `<fieldset class="output" id="output-%d">
<legend>%s</legend>`, output.Index, esc(output.Name)); err != nil {
		return err
	}
	if err := labeledInput(w, view.Errors, prefix+".name", field("name"), "Display Name", output.Name,
		"Name presented for this file in the dataset"); err != nil {
		return err
	}
	if err := labeledInput(w, view.Errors, prefix+".desc", field("desc"), "Description", output.Desc,
		"Longer description of the file contents"); err != nil {
		return err
	}
	if err := labeledInput(w, view.Errors, prefix+".source", field("source"), "File Path", output.Source,
		"Path of the file within the output directory; bracketed tokens like [sample] match file families"); err != nil {
		return err
	}
	if output.Target != "" {
		if _, err := fmt.Fprintf(w, `<p class="derived">Imported as <code>%s</code></p>`, esc(output.Target)); err != nil {
			return err
		}
	}
	if err := labeledInput(w, view.Errors, prefix+".url", field("url"), "Documentation URL", output.URL,
		"Optional link describing how the file was generated"); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, `<label for="%s">Delimiter</label>
<select id="%s" name="%s">`, esc(field("delimiter")), esc(field("delimiter")), esc(field("delimiter"))); err != nil {
		return err
	}
	for _, delim := range delimiters {
		if err := option(w, delim.Value, delim.Label, delim.Value == output.Delimiter); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, `</select>`); err != nil {
		return err
	}

	for cx, col := range output.Columns {
		colField := func(name string) string { return fmt.Sprintf("%s_%d_%d", name, output.Index, cx) }
		colPrefix := fmt.Sprintf("%s.cols[%d]", prefix, cx)
		if _, err := fmt.Fprintf(w, `<fieldset class="column"><legend>Column %d</legend>`, cx+1); err != nil {
			return err
		}
		if err := labeledInput(w, view.Errors, colPrefix+".col", colField("col"), "Header", col.Col,
			"Column header as it appears in the file"); err != nil {
			return err
		}
		if err := labeledInput(w, view.Errors, colPrefix+".name", colField("colname"), "Display Name", col.Name,
			"Name shown for this column"); err != nil {
			return err
		}
		if err := labeledInput(w, view.Errors, colPrefix+".desc", colField("coldesc"), "Description", col.Desc,
			"Description of the column contents"); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, `<button type="submit" formaction="/outputs/columns/remove" name="remove" value="%d.%d">Remove Column</button>
</fieldset>`, output.Index, cx); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, `<button type="submit" formaction="/outputs/columns/add" name="add" value="%d">Add Column</button>`, output.Index); err != nil {
		return err
	}
	if err := fieldError(w, view.Errors, prefix+".cols"); err != nil {
		return err
	}

	for _, entry := range output.Concat {
		tokenField := func(name string) string {
			return fmt.Sprintf("%s_%d_%s", name, output.Index, entry.Token)
		}
		if _, err := fmt.Fprintf(w, `<fieldset class="token"><legend>Token [%s]</legend>`, esc(entry.Token)); err != nil {
			return err
		}
		if err := labeledInput(w, view.Errors, "", tokenField("tokenname"), "Display Name", entry.Name,
			"Name shown for the column holding this token"); err != nil {
			return err
		}
		if err := labeledInput(w, view.Errors, "", tokenField("tokendesc"), "Description", entry.Desc,
			"Description of the token value"); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `</fieldset>`); err != nil {
			return err
		}
	}

	checked := ""
	if output.Melt {
		checked = " checked"
	}
	if _, err := fmt.Fprintf(w, `<label for="%s">Melt remaining columns into key/value rows</label>
<input type="checkbox" id="%s" name="%s" value="on"%s>`,
		esc(field("melt")), esc(field("melt")), esc(field("melt")), checked); err != nil {
		return err
	}
	if output.Melt {
		if err := labeledInput(w, view.Errors, "", field("melt_key_name"), "Key Name", output.MeltKey.Name,
			"Name of the melted key column"); err != nil {
			return err
		}
		if err := labeledInput(w, view.Errors, "", field("melt_key_desc"), "Key Description", output.MeltKey.Desc,
			"Description of the melted key column"); err != nil {
			return err
		}
		if err := labeledInput(w, view.Errors, "", field("melt_value_name"), "Value Name", output.MeltValue.Name,
			"Name of the melted value column"); err != nil {
			return err
		}
		if err := labeledInput(w, view.Errors, "", field("melt_value_desc"), "Value Description", output.MeltValue.Desc,
			"Description of the melted value column"); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, `<button type="submit" formaction="/outputs/remove" name="remove" value="%d">Remove Output</button>
</fieldset>`, output.Index)
	return err
}

// labeledInput writes a text input with an optional error keyed separately
// from the input name.
func labeledInput(w io.Writer, errs map[string]string, errKey, name, label, value, help string) error {
	if _, err := fmt.Fprintf(w, `<label for="%s">%s</label>
<input type="text" id="%s" name="%s" value="%s" title="%s">`,
		esc(name), esc(label), esc(name), esc(name), esc(value), esc(help)); err != nil {
		return err
	}
	if errKey == "" {
		return nil
	}
	return fieldError(w, errs, errKey)
}
