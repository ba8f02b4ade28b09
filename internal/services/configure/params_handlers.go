package configure

import (
	"net/http"
	"strings"

	"github.com/CirroBioApps/cirro-configure-workflow/internal/catalog"
	"github.com/CirroBioApps/cirro-configure-workflow/internal/services/configure/templates"
	"github.com/CirroBioApps/cirro-configure-workflow/internal/session"
	"github.com/CirroBioApps/cirro-configure-workflow/internal/workflow"
)

// handleParams serves and saves the input parameter form.
func (h *handler) handleParams(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		sess := h.session(w, r)
		cfg := sess.Config()
		renderPage(w, r, http.StatusOK, sess, "Parameters",
			templates.ParamsPage(paramsView(sess, cfg, nil)))
	case http.MethodPost:
		h.handleParamsSave(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *handler) handleParamsSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "failed to parse form", http.StatusBadRequest)
		return
	}
	sess := h.session(w, r)

	next := sess.Config()
	errs := map[string]string{}
	for _, param := range next.Params() {
		applyParamForm(sess, next, param.ID, r, errs)
	}

	for field, message := range scopedErrors(workflow.Validate(next, workflow.Lenient), "input.") {
		if _, ok := errs[field]; !ok {
			errs[field] = message
		}
	}
	if len(errs) > 0 {
		renderPage(w, r, http.StatusBadRequest, sess, "Parameters",
			templates.ParamsPage(paramsView(sess, next, errs)))
		return
	}

	if err := sess.Replace(next); err != nil {
		writeError(w, err)
		return
	}
	h.autosave(r, sess)
	http.Redirect(w, r, "/params", http.StatusSeeOther)
}

// applyParamForm applies the submitted fields of one parameter, renaming
// last so the other fields resolve under the original id.
func applyParamForm(sess *session.Session, cfg *workflow.Config, id string, r *http.Request, errs map[string]string) {
	field := func(name string) string { return name + "_" + id }

	if kind := workflow.SourceKind(r.FormValue(field("source"))); kind != "" {
		if param, ok := cfg.Param(id); ok && param.Source != kind {
			cfg.SetParamSource(id, kind)
		}
	}

	param, ok := cfg.Param(id)
	if !ok {
		return
	}
	switch param.Source {
	case workflow.SourceHardcoded:
		cfg.SetParamValue(id, r.FormValue(field("value")))
	case workflow.SourceFormEntry:
		applyFormEntry(sess, cfg, id, param, r, field)
	}

	if newID := strings.TrimSpace(r.FormValue(field("id"))); newID != "" && newID != id {
		if err := cfg.RenameParam(id, newID); err != nil {
			errs["input."+id] = err.Error()
		}
	}
}

func applyFormEntry(sess *session.Session, cfg *workflow.Config, id string, param workflow.Param, r *http.Request, field func(string) string) {
	if widget := workflow.FormType(r.FormValue(field("widget"))); widget != "" && widget != param.FormType() {
		cfg.SetFormWidget(id, widget)
		param, _ = cfg.Param(id)
	}

	if title, ok := formValue(r, field("title")); ok {
		cfg.SetFormAttribute(id, "title", title)
	}
	if description, ok := formValue(r, field("description")); ok {
		cfg.SetFormAttribute(id, "description", description)
	}

	switch param.FormType() {
	case workflow.FormTypeUserValue:
		typeName := r.FormValue(field("type"))
		if typeName != "" && typeName != stringAttr(param.Element, "type") {
			cfg.SetFormAttribute(id, "type", typeName)
			param, _ = cfg.Param(id)
		}
		if raw, ok := formValue(r, field("default")); ok {
			cfg.SetFormAttribute(id, "default", parseFormValue(stringAttr(param.Element, "type"), raw))
		}
	case workflow.FormTypeDataset:
		if display := r.FormValue(field("process")); display != "" {
			cfg.SetFormAttribute(id, "process", catalog.ProcessID(display))
		}
	case workflow.FormTypeReference:
		if name := r.FormValue(field("reference")); name != "" {
			if glob, ok := cachedReferenceGlob(sess, name); ok {
				cfg.SetFormAttribute(id, "file", glob)
			}
		}
	}
}

// formValue distinguishes an absent form field from an empty one.
func formValue(r *http.Request, name string) (string, bool) {
	values, ok := r.Form[name]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// handleParamAdd appends a new parameter.
func (h *handler) handleParamAdd(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	sess := h.session(w, r)
	if err := sess.Update(func(cfg *workflow.Config) error {
		cfg.AddParam()
		return nil
	}); err != nil {
		writeError(w, err)
		return
	}
	h.autosave(r, sess)
	http.Redirect(w, r, "/params", http.StatusSeeOther)
}

// handleParamRemove deletes the named parameter.
func (h *handler) handleParamRemove(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "failed to parse form", http.StatusBadRequest)
		return
	}
	id := r.FormValue("remove")
	if id == "" {
		http.Error(w, "parameter id is required", http.StatusBadRequest)
		return
	}
	sess := h.session(w, r)
	if err := sess.Update(func(cfg *workflow.Config) error {
		cfg.RemoveParam(id)
		return nil
	}); err != nil {
		writeError(w, err)
		return
	}
	h.autosave(r, sess)
	http.Redirect(w, r, "/params", http.StatusSeeOther)
}
