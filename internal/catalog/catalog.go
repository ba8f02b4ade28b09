// Package catalog provides the fixed lookup data used while editing a
// workflow configuration: the known pipeline processes, the reference
// genome types, and the dictionary of recognized column terms.
package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

//go:embed data/processes.json data/references.json data/terms.json
var dataFS embed.FS

// process is one pipeline entry of the hosting platform.
type process struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ReferenceValidation describes one accepted file of a reference type.
type ReferenceValidation struct {
	FileType string `json:"fileType"`
	SaveAs   string `json:"saveAs"`
}

// Reference is one reference data type available to workflows.
type Reference struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Directory   string                `json:"directory"`
	Validation  []ReferenceValidation `json:"validation"`
}

// termMeta is one file-scoped name/description override for a column term.
type termMeta struct {
	File string `json:"file"`
	Name string `json:"name"`
	Desc string `json:"desc"`
}

// term is the dictionary entry for a recognized column name.
type term struct {
	Metadata []termMeta `json:"metadata"`
}

var loadOnce = sync.OnceValue(load)

type data struct {
	processes  []process
	references []Reference
	terms      map[string]term
}

func load() data {
	var d data
	mustDecode("data/processes.json", &d.processes)
	mustDecode("data/references.json", &d.references)
	mustDecode("data/terms.json", &d.terms)
	return d
}

func mustDecode(name string, into any) {
	raw, err := dataFS.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("catalog: read %s: %v", name, err))
	}
	if err := json.Unmarshal(raw, into); err != nil {
		panic(fmt.Sprintf("catalog: parse %s: %v", name, err))
	}
}

// Processes returns the display names of the known pipeline processes in
// the form "Name (id)", sorted and deduplicated.
func Processes() []string {
	seen := map[string]bool{}
	var names []string
	for _, proc := range loadOnce().processes {
		display := fmt.Sprintf("%s (%s)", proc.Name, proc.ID)
		if seen[display] {
			continue
		}
		seen[display] = true
		names = append(names, display)
	}
	sort.Strings(names)
	return names
}

// ProcessID extracts the process id from a "Name (id)" display string.
func ProcessID(display string) string {
	open := strings.LastIndex(display, "(")
	if open < 0 || !strings.HasSuffix(display, ")") {
		return display
	}
	return display[open+1 : len(display)-1]
}

// References returns the available reference types.
func References() []Reference {
	return loadOnce().references
}

// ReferenceNames returns the reference display names in catalog order.
func ReferenceNames() []string {
	refs := loadOnce().references
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		names = append(names, ref.Name)
	}
	return names
}

// ReferenceGlob returns the file glob selecting the stored file of the
// named reference type. A reference without validation entries matches any
// file in its directory.
func ReferenceGlob(name string) (string, bool) {
	for _, ref := range loadOnce().references {
		if ref.Name != name {
			continue
		}
		filename := "*"
		if len(ref.Validation) > 0 {
			filename = ref.Validation[0].SaveAs
		}
		return fmt.Sprintf("**/%s/**/%s", ref.Directory, filename), true
	}
	return "", false
}

var nonAlnumPattern = regexp.MustCompile(`[^0-9a-zA-Z]+`)

// SanitizeColumn normalizes a raw column header to snake_case for term
// lookup.
func SanitizeColumn(cname string) string {
	cname = nonAlnumPattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(cname)), "_")
	cname = strings.Trim(cname, "_")
	for strings.Contains(cname, "__") {
		cname = strings.ReplaceAll(cname, "__", "_")
	}
	return cname
}

// InferColumn returns the display name and description for a column header
// found in an output file. Terms carry per-file overrides checked from most
// to least specific, with "*" as the wildcard; an unrecognized header falls
// back to its sanitized form with no description.
func InferColumn(cname, fileName string) (name, desc string) {
	key := SanitizeColumn(cname)
	entry, ok := loadOnce().terms[key]
	if !ok {
		return key, ""
	}
	fileName = strings.TrimPrefix(fileName, "data/")
	metadata := entry.Metadata
	for ix := len(metadata) - 1; ix >= 0; ix-- {
		meta := metadata[ix]
		if strings.TrimPrefix(meta.File, "data/") == fileName || meta.File == "*" {
			return meta.Name, meta.Desc
		}
	}
	return key, ""
}
