package configure

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/CirroBioApps/cirro-configure-workflow/internal/catalog"
	"github.com/CirroBioApps/cirro-configure-workflow/internal/services/configure/templates"
	"github.com/CirroBioApps/cirro-configure-workflow/internal/session"
	"github.com/CirroBioApps/cirro-configure-workflow/internal/workflow"
	"github.com/a-h/templ"
)

// renderPage writes a full page wrapped in the shared layout.
func renderPage(w http.ResponseWriter, r *http.Request, status int, sess *session.Session, title string, body templ.Component) {
	state := templates.PageState{
		Title:       title,
		CurrentPath: r.URL.Path,
		CanUndo:     sess.CanUndo(),
		CanRedo:     sess.CanRedo(),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.Layout(state, body).Render(r.Context(), w); err != nil {
		// Headers are already out; all we can do is log.
		log.Printf("render %s: %v", r.URL.Path, err)
	}
}

// fieldErrorMap converts a validation error into per-field messages for
// inline display.
func fieldErrorMap(err error) map[string]string {
	var verr *workflow.ValidationError
	if !errors.As(err, &verr) {
		return nil
	}
	errs := make(map[string]string, len(verr.Fields))
	for _, field := range verr.Fields {
		if _, ok := errs[field.Field]; !ok {
			errs[field.Field] = field.Message
		}
	}
	return errs
}

// scopedErrors filters a validation error down to the fields under prefix.
func scopedErrors(err error, prefix string) map[string]string {
	scoped := map[string]string{}
	for field, message := range fieldErrorMap(err) {
		if strings.HasPrefix(field, prefix) {
			scoped[field] = message
		}
	}
	if len(scoped) == 0 {
		return nil
	}
	return scoped
}

// cachedProcesses lists the selectable processes through the session cache.
func cachedProcesses(sess *session.Session) []string {
	value, err := sess.Memoize(session.CacheKey("list_processes"), func() (any, error) {
		return catalog.Processes(), nil
	})
	if err != nil {
		return nil
	}
	processes, _ := value.([]string)
	return processes
}

// cachedReferences lists the reference type names through the session cache.
func cachedReferences(sess *session.Session) []string {
	value, err := sess.Memoize(session.CacheKey("list_references"), func() (any, error) {
		return catalog.ReferenceNames(), nil
	})
	if err != nil {
		return nil
	}
	names, _ := value.([]string)
	return names
}

// cachedReferenceGlob resolves a reference file glob through the session
// cache.
func cachedReferenceGlob(sess *session.Session, name string) (string, bool) {
	value, err := sess.Memoize(session.CacheKey("get_reference_str", name), func() (any, error) {
		glob, ok := catalog.ReferenceGlob(name)
		if !ok {
			return "", fmt.Errorf("unknown reference type %q", name)
		}
		return glob, nil
	})
	if err != nil {
		return "", false
	}
	glob, _ := value.(string)
	return glob, true
}

// workflowView builds the dynamo form state.
func workflowView(cfg *workflow.Config, processes []string, errs map[string]string) templates.WorkflowView {
	selected := func(ids []string) map[string]bool {
		set := make(map[string]bool, len(ids))
		for _, id := range ids {
			set[id] = true
		}
		return set
	}
	parents := selected(cfg.Dynamo.ParentProcessIDs)
	children := selected(cfg.Dynamo.ChildProcessIDs)

	view := templates.WorkflowView{
		ID:               cfg.Dynamo.ID,
		Name:             cfg.Dynamo.Name,
		Desc:             cfg.Dynamo.Desc,
		DocumentationURL: cfg.Dynamo.DocumentationURL,
		Executor:         cfg.Dynamo.Executor,
		Repository:       cfg.Dynamo.Code.Repository,
		URI:              cfg.Dynamo.Code.URI,
		Script:           cfg.Dynamo.Code.Script,
		Version:          cfg.Dynamo.Code.Version,
		Errors:           errs,
	}
	for _, display := range processes {
		id := catalog.ProcessID(display)
		view.Parents = append(view.Parents, templates.ProcessOption{
			Display: display, ID: id, Selected: parents[id],
		})
		view.Children = append(view.Children, templates.ProcessOption{
			Display: display, ID: id, Selected: children[id],
		})
	}
	return view
}

// paramsView builds the parameter form state, resolving catalog data through
// the session cache.
func paramsView(sess *session.Session, cfg *workflow.Config, errs map[string]string) templates.ParamsView {
	view := templates.ParamsView{
		Processes:  cachedProcesses(sess),
		References: cachedReferences(sess),
		Errors:     errs,
	}
	for _, param := range cfg.Params() {
		pv := templates.ParamView{
			ID:     param.ID,
			Source: string(param.Source),
		}
		switch param.Source {
		case workflow.SourceHardcoded:
			pv.Value = param.Value
		case workflow.SourceFormEntry:
			pv.Title = stringAttr(param.Element, "title")
			pv.Description = stringAttr(param.Element, "description")
			pv.Type = stringAttr(param.Element, "type")
			pv.Default = formatFormValue(param.Element["default"])
			pv.Widget = string(param.FormType())
			if pv.Widget == string(workflow.FormTypeDataset) {
				pv.Process = processDisplay(view.Processes, stringAttr(param.Element, "process"))
			}
			if pv.Widget == string(workflow.FormTypeReference) {
				pv.Reference = referenceDisplay(sess, stringAttr(param.Element, "file"))
			}
		}
		view.Params = append(view.Params, pv)
	}
	return view
}

// processDisplay maps a process id back to its display name.
func processDisplay(processes []string, id string) string {
	for _, display := range processes {
		if catalog.ProcessID(display) == id {
			return display
		}
	}
	return id
}

// referenceDisplay maps a stored file glob back to its reference type name.
func referenceDisplay(sess *session.Session, glob string) string {
	for _, name := range cachedReferences(sess) {
		if candidate, ok := cachedReferenceGlob(sess, name); ok && candidate == glob {
			return name
		}
	}
	return ""
}

// outputsView builds the output form state.
func outputsView(cfg *workflow.Config, errs map[string]string) templates.OutputsView {
	view := templates.OutputsView{Errors: errs}
	for ix := range cfg.Output.Commands {
		command := cfg.Output.Commands[ix]
		command.SyncDerived()
		ov := templates.OutputView{
			Index:     ix,
			Name:      command.Params.Name,
			Desc:      command.Params.Desc,
			Source:    command.SourcePath(),
			Target:    command.Params.Target,
			URL:       command.Params.URL,
			Delimiter: command.Params.ReadCSV.Parse.Delimiter,
		}
		for _, col := range command.Params.Cols {
			ov.Columns = append(ov.Columns, templates.ColumnView{
				Col: col.Col, Name: col.Name, Desc: col.Desc,
			})
		}
		for _, entry := range command.Concat {
			ov.Concat = append(ov.Concat, templates.ConcatView{
				Token: entry.Token, Name: entry.Name, Desc: entry.Desc,
			})
		}
		if command.Melt != nil {
			ov.Melt = true
			ov.MeltKey = templates.ConcatView{Name: command.Melt.Key.Name, Desc: command.Melt.Key.Desc}
			ov.MeltValue = templates.ConcatView{Name: command.Melt.Value.Name, Desc: command.Melt.Value.Desc}
		}
		view.Outputs = append(view.Outputs, ov)
	}
	return view
}

func stringAttr(element map[string]any, key string) string {
	value, _ := element[key].(string)
	return value
}

// formatFormValue renders a form default for display in a text input.
func formatFormValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}

// parseFormValue converts a submitted default back into the form value type.
func parseFormValue(typeName, raw string) any {
	switch typeName {
	case "integer":
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0
		}
		return n
	case "number":
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0.0
		}
		return f
	case "boolean":
		return raw == "true" || raw == "on"
	case "array":
		var values []any
		if err := json.Unmarshal([]byte(raw), &values); err != nil {
			return []any{}
		}
		return values
	default:
		return raw
	}
}
