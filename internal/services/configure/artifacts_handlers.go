package configure

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"slices"
	"strings"

	apperrors "github.com/CirroBioApps/cirro-configure-workflow/internal/platform/errors"
	"github.com/CirroBioApps/cirro-configure-workflow/internal/services/configure/templates"
	"github.com/CirroBioApps/cirro-configure-workflow/internal/workflow"
)

// maxUploadBytes bounds a configuration upload. Generated artifacts are a few
// kilobytes each; anything bigger is not a configuration file.
const maxUploadBytes = 4 << 20

// handleArtifactsPage previews the generated configuration files, or lists
// the validation problems blocking export.
func (h *handler) handleArtifactsPage(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	sess := h.session(w, r)
	cfg := sess.Config()

	bundle, err := workflow.Assemble(cfg, h.strictness)
	if err != nil {
		var verr *workflow.ValidationError
		if !errors.As(err, &verr) {
			writeError(w, err)
			return
		}
		problems := make([]string, 0, len(verr.Fields))
		for _, field := range verr.Fields {
			problems = append(problems, field.Field+": "+field.Message)
		}
		renderPage(w, r, http.StatusOK, sess, "Artifacts",
			templates.ArtifactsPage(templates.ArtifactsView{Problems: problems}))
		return
	}

	view := templates.ArtifactsView{}
	for _, artifact := range bundle.Artifacts {
		view.Artifacts = append(view.Artifacts, templates.ArtifactView{
			Name:    artifact.Name,
			Content: string(artifact.Content),
		})
	}
	renderPage(w, r, http.StatusOK, sess, "Artifacts", templates.ArtifactsPage(view))
}

// handleDownload serves one named artifact as an attachment.
func (h *handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/download/")
	if !slices.Contains(workflow.ArtifactNames, name) {
		writeError(w, apperrors.E(apperrors.KindNotFound, fmt.Sprintf("unknown artifact %q", name)))
		return
	}
	sess := h.session(w, r)

	bundle, err := workflow.Assemble(sess.Config(), h.strictness)
	if err != nil {
		writeError(w, err)
		return
	}
	artifact, ok := bundle.Artifact(name)
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Name))
	if _, err := w.Write(artifact.Content); err != nil {
		log.Printf("write artifact %s: %v", artifact.Name, err)
	}
}

// handleDownloadAll serves the zipped artifact bundle.
func (h *handler) handleDownloadAll(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	sess := h.session(w, r)

	bundle, err := workflow.Assemble(sess.Config(), h.strictness)
	if err != nil {
		writeError(w, err)
		return
	}
	archive, err := bundle.Zip()
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", workflow.BundleName))
	if _, err := w.Write(archive); err != nil {
		log.Printf("write bundle: %v", err)
	}
}

// handleUpload merges uploaded configuration files into the working
// configuration. Each file replaces the section it describes; sections
// without a matching upload keep their current values.
func (h *handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "failed to parse upload", http.StatusBadRequest)
		return
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File["files"]) == 0 {
		http.Error(w, "no files uploaded", http.StatusBadRequest)
		return
	}
	sess := h.session(w, r)

	next := sess.Config()
	for _, header := range r.MultipartForm.File["files"] {
		file, err := header.Open()
		if err != nil {
			http.Error(w, "failed to read upload", http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		file.Close()
		if err != nil {
			http.Error(w, "failed to read upload", http.StatusBadRequest)
			return
		}
		if err := next.MergeArtifactFile(header.Filename, data); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	if err := sess.Replace(next); err != nil {
		writeError(w, err)
		return
	}
	h.autosave(r, sess)
	http.Redirect(w, r, "/artifacts", http.StatusSeeOther)
}
