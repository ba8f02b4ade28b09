package configure

import (
	"net/http"
	"sort"
	"strings"

	"github.com/CirroBioApps/cirro-configure-workflow/internal/services/configure/templates"
	"github.com/CirroBioApps/cirro-configure-workflow/internal/workflow"
)

// handleWorkflowPage serves the dynamo editing form.
func (h *handler) handleWorkflowPage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	sess := h.session(w, r)
	cfg := sess.Config()
	view := workflowView(cfg, cachedProcesses(sess), nil)
	renderPage(w, r, http.StatusOK, sess, "Workflow", templates.WorkflowPage(view))
}

// handleWorkflowSave applies the submitted dynamo fields. Invalid input
// re-renders the form with inline errors; nothing is saved.
func (h *handler) handleWorkflowSave(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "failed to parse form", http.StatusBadRequest)
		return
	}
	sess := h.session(w, r)

	next := sess.Config()
	next.Dynamo.ID = strings.TrimSpace(r.FormValue("id"))
	next.Dynamo.Name = strings.TrimSpace(r.FormValue("name"))
	next.Dynamo.Desc = strings.TrimSpace(r.FormValue("desc"))
	next.Dynamo.DocumentationURL = strings.TrimSpace(r.FormValue("documentation_url"))
	next.Dynamo.Executor = strings.TrimSpace(r.FormValue("executor"))
	next.Dynamo.Code.Repository = strings.TrimSpace(r.FormValue("repository"))
	next.Dynamo.Code.URI = strings.TrimSpace(r.FormValue("uri"))
	next.Dynamo.Code.Script = strings.TrimSpace(r.FormValue("script"))
	next.Dynamo.Code.Version = strings.TrimSpace(r.FormValue("version"))
	next.Dynamo.ParentProcessIDs = normalizeIDs(r.Form["parent_process_ids"])
	next.Dynamo.ChildProcessIDs = normalizeIDs(r.Form["child_process_ids"])

	// Only this page's fields block saving; problems elsewhere surface on
	// their own pages and on the artifact preview.
	if errs := dynamoErrors(workflow.Validate(next, workflow.Lenient)); len(errs) > 0 {
		view := workflowView(next, cachedProcesses(sess), errs)
		renderPage(w, r, http.StatusBadRequest, sess, "Workflow", templates.WorkflowPage(view))
		return
	}

	if err := sess.Replace(next); err != nil {
		writeError(w, err)
		return
	}
	h.autosave(r, sess)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// dynamoErrors filters a validation error down to this form's fields,
// rekeyed by input name.
func dynamoErrors(err error) map[string]string {
	errs := map[string]string{}
	for field, message := range fieldErrorMap(err) {
		if !strings.HasPrefix(field, "dynamo.") {
			continue
		}
		name := strings.TrimPrefix(field, "dynamo.")
		name = strings.TrimPrefix(name, "code.")
		errs[name] = message
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// normalizeIDs trims, deduplicates, and sorts a submitted id list so the
// emitted registry entry is stable.
func normalizeIDs(values []string) []string {
	seen := map[string]bool{}
	ids := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" || seen[value] {
			continue
		}
		seen[value] = true
		ids = append(ids, value)
	}
	sort.Strings(ids)
	return ids
}
