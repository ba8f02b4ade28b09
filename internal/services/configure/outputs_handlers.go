package configure

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/CirroBioApps/cirro-configure-workflow/internal/catalog"
	"github.com/CirroBioApps/cirro-configure-workflow/internal/services/configure/templates"
	"github.com/CirroBioApps/cirro-configure-workflow/internal/workflow"
)

// handleOutputs serves and saves the output file form.
func (h *handler) handleOutputs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		sess := h.session(w, r)
		cfg := sess.Config()
		renderPage(w, r, http.StatusOK, sess, "Outputs",
			templates.OutputsPage(outputsView(cfg, nil)))
	case http.MethodPost:
		h.handleOutputsSave(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *handler) handleOutputsSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "failed to parse form", http.StatusBadRequest)
		return
	}
	sess := h.session(w, r)

	next := sess.Config()
	for ix := range next.Output.Commands {
		applyOutputForm(&next.Output.Commands[ix], ix, r)
	}

	if errs := scopedErrors(workflow.Validate(next, h.strictness), "output."); len(errs) > 0 {
		renderPage(w, r, http.StatusBadRequest, sess, "Outputs",
			templates.OutputsPage(outputsView(next, errs)))
		return
	}

	if err := sess.Replace(next); err != nil {
		writeError(w, err)
		return
	}
	h.autosave(r, sess)
	http.Redirect(w, r, "/outputs", http.StatusSeeOther)
}

// applyOutputForm applies the submitted fields of one output command and
// recomputes its derived fields.
func applyOutputForm(command *workflow.OutputCommand, ix int, r *http.Request) {
	field := func(name string) string { return name + "_" + strconv.Itoa(ix) }

	if value, ok := formValue(r, field("name")); ok {
		command.Params.Name = strings.TrimSpace(value)
	}
	if value, ok := formValue(r, field("desc")); ok {
		command.Params.Desc = strings.TrimSpace(value)
	}
	if value, ok := formValue(r, field("url")); ok {
		command.Params.URL = strings.TrimSpace(value)
	}
	if value, ok := formValue(r, field("source")); ok {
		command.SetSourcePath(value)
	}
	if value, ok := formValue(r, field("delimiter")); ok && value != "" {
		command.Params.ReadCSV = &workflow.ReadCSVSpec{
			Parse: workflow.ReadCSVParse{Delimiter: value},
		}
	}

	for cx := range command.Params.Cols {
		colField := func(name string) string {
			return name + "_" + strconv.Itoa(ix) + "_" + strconv.Itoa(cx)
		}
		col := &command.Params.Cols[cx]
		if value, ok := formValue(r, colField("col")); ok {
			header := strings.TrimSpace(value)
			if header != col.Col {
				col.Col = header
				// Refresh the inferred name and description for the new
				// header unless the user already overrode them.
				name, desc := catalog.InferColumn(header, command.SourcePath())
				if col.Name == "" {
					col.Name = name
				}
				if col.Desc == "" {
					col.Desc = desc
				}
			}
		}
		if value, ok := formValue(r, colField("colname")); ok {
			col.Name = strings.TrimSpace(value)
		}
		if value, ok := formValue(r, colField("coldesc")); ok {
			col.Desc = strings.TrimSpace(value)
		}
	}

	command.SyncDerived()
	for tx := range command.Concat {
		entry := &command.Concat[tx]
		tokenField := func(name string) string {
			return name + "_" + strconv.Itoa(ix) + "_" + entry.Token
		}
		if value, ok := formValue(r, tokenField("tokenname")); ok {
			entry.Name = strings.TrimSpace(value)
		}
		if value, ok := formValue(r, tokenField("tokendesc")); ok {
			entry.Desc = strings.TrimSpace(value)
		}
	}

	if r.FormValue(field("melt")) == "on" {
		melt := command.Melt
		if melt == nil {
			melt = &workflow.MeltSpec{}
		}
		if value, ok := formValue(r, field("melt_key_name")); ok {
			melt.Key.Name = strings.TrimSpace(value)
		}
		if value, ok := formValue(r, field("melt_key_desc")); ok {
			melt.Key.Desc = strings.TrimSpace(value)
		}
		if value, ok := formValue(r, field("melt_value_name")); ok {
			melt.Value.Name = strings.TrimSpace(value)
		}
		if value, ok := formValue(r, field("melt_value_desc")); ok {
			melt.Value.Desc = strings.TrimSpace(value)
		}
		command.Melt = melt
	} else if _, submitted := r.Form[field("name")]; submitted {
		// The checkbox is absent from the form body when unchecked.
		command.Melt = nil
	}
}

// handleOutputAdd appends a new output file.
func (h *handler) handleOutputAdd(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	sess := h.session(w, r)
	if err := sess.Update(func(cfg *workflow.Config) error {
		cfg.Output.AddOutput()
		return nil
	}); err != nil {
		writeError(w, err)
		return
	}
	h.autosave(r, sess)
	http.Redirect(w, r, "/outputs", http.StatusSeeOther)
}

// handleOutputRemove deletes the output at the submitted index.
func (h *handler) handleOutputRemove(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "failed to parse form", http.StatusBadRequest)
		return
	}
	ix, err := strconv.Atoi(r.FormValue("remove"))
	if err != nil {
		http.Error(w, "output index is required", http.StatusBadRequest)
		return
	}
	sess := h.session(w, r)
	if err := sess.Update(func(cfg *workflow.Config) error {
		cfg.Output.RemoveOutput(ix)
		return nil
	}); err != nil {
		writeError(w, err)
		return
	}
	h.autosave(r, sess)
	http.Redirect(w, r, "/outputs", http.StatusSeeOther)
}

// handleColumnAdd appends a column to the output at the submitted index.
func (h *handler) handleColumnAdd(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "failed to parse form", http.StatusBadRequest)
		return
	}
	ix, err := strconv.Atoi(r.FormValue("add"))
	if err != nil {
		http.Error(w, "output index is required", http.StatusBadRequest)
		return
	}
	sess := h.session(w, r)
	if err := sess.Update(func(cfg *workflow.Config) error {
		if ix < 0 || ix >= len(cfg.Output.Commands) {
			return nil
		}
		command := &cfg.Output.Commands[ix]
		command.Params.Cols = append(command.Params.Cols, workflow.ColumnSpec{})
		return nil
	}); err != nil {
		writeError(w, err)
		return
	}
	h.autosave(r, sess)
	http.Redirect(w, r, "/outputs", http.StatusSeeOther)
}

// handleColumnRemove deletes the column addressed as "<output>.<column>".
func (h *handler) handleColumnRemove(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "failed to parse form", http.StatusBadRequest)
		return
	}
	parts := strings.SplitN(r.FormValue("remove"), ".", 2)
	if len(parts) != 2 {
		http.Error(w, "column address is required", http.StatusBadRequest)
		return
	}
	ix, ixErr := strconv.Atoi(parts[0])
	cx, cxErr := strconv.Atoi(parts[1])
	if ixErr != nil || cxErr != nil {
		http.Error(w, "column address is required", http.StatusBadRequest)
		return
	}
	sess := h.session(w, r)
	if err := sess.Update(func(cfg *workflow.Config) error {
		if ix < 0 || ix >= len(cfg.Output.Commands) {
			return nil
		}
		command := &cfg.Output.Commands[ix]
		if cx < 0 || cx >= len(command.Params.Cols) {
			return nil
		}
		command.Params.Cols = append(command.Params.Cols[:cx], command.Params.Cols[cx+1:]...)
		return nil
	}); err != nil {
		writeError(w, err)
		return
	}
	h.autosave(r, sess)
	http.Redirect(w, r, "/outputs", http.StatusSeeOther)
}
