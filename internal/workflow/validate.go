package workflow

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

// Strictness selects how much referential checking is applied at assembly.
//
// Lenient enforces the per-artifact required fields and that every
// form-entry binding resolves inside the form tree. Strict additionally
// requires every form leaf to be bound by an input parameter and output
// source paths to be unique. Whether the pipeline host re-validates the
// cross references on import is its own concern.
type Strictness int

const (
	Lenient Strictness = iota
	Strict
)

// workflowIDPattern constrains the registry id: lowercase alphanumeric
// segments joined by single dashes.
var workflowIDPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// FieldError names one missing or invalid field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError aggregates every field failure found in one pass so the
// form can flag all of them at once.
type ValidationError struct {
	Fields []FieldError
}

// Error lists the offending fields.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "configuration is invalid"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field.Field, field.Message))
	}
	return "invalid configuration: " + strings.Join(parts, "; ")
}

// Has reports whether the error names the given field.
func (e *ValidationError) Has(field string) bool {
	for _, fe := range e.Fields {
		if fe.Field == field {
			return true
		}
	}
	return false
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Validate checks the configuration against the pipeline host's schema
// requirements. All failures are collected; a nil return means the
// configuration can be assembled.
func Validate(cfg *Config, strictness Strictness) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	verr := &ValidationError{}

	validateDynamo(cfg, verr)
	validateParams(cfg, verr)
	validateOutputs(cfg, strictness, verr)

	return verr.orNil()
}

func validateDynamo(cfg *Config, verr *ValidationError) {
	dynamo := cfg.Dynamo
	if strings.TrimSpace(dynamo.ID) == "" {
		verr.add("dynamo.id", "workflow id is required")
	} else if !workflowIDPattern.MatchString(dynamo.ID) {
		verr.add("dynamo.id", "workflow id must be lowercase alphanumeric with dashes")
	}
	if strings.TrimSpace(dynamo.Name) == "" {
		verr.add("dynamo.name", "workflow name is required")
	}
	if strings.TrimSpace(dynamo.Desc) == "" {
		verr.add("dynamo.desc", "workflow description is required")
	}
	switch dynamo.Executor {
	case ExecutorNextflow, ExecutorCromwell:
	default:
		verr.add("dynamo.executor", fmt.Sprintf("executor must be %s or %s", ExecutorNextflow, ExecutorCromwell))
	}
	switch dynamo.Code.Repository {
	case RepositoryGitHubPublic, RepositoryGitHubPrivate:
	default:
		verr.add("dynamo.code.repository", fmt.Sprintf("repository must be %s or %s", RepositoryGitHubPublic, RepositoryGitHubPrivate))
	}
	if strings.TrimSpace(dynamo.Code.URI) == "" {
		verr.add("dynamo.code.uri", "repository path is required")
	}
	if strings.TrimSpace(dynamo.Code.Script) == "" {
		verr.add("dynamo.code.script", "entrypoint script is required")
	}
	if strings.TrimSpace(dynamo.Code.Version) == "" {
		verr.add("dynamo.code.version", "repository version is required")
	}
}

func validateParams(cfg *Config, verr *ValidationError) {
	// Reads cfg.Input directly: the Params view backfills missing form
	// elements, which would hide exactly the failure checked here.
	ids := make([]string, 0, len(cfg.Input))
	for id := range cfg.Input {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			verr.add("input", "parameter id is required")
			continue
		}
		if strings.ContainsAny(id, " \t.") {
			verr.add("input."+id, "parameter id must not contain spaces or dots")
		}
		if path := FormKey(cfg.Input[id]); path != nil && !cfg.formElementExists(path) {
			verr.add("input."+id, "form entry has no matching form element")
		}
	}
}

func validateOutputs(cfg *Config, strictness Strictness, verr *ValidationError) {
	seenSources := map[string][]int{}
	for ix, command := range cfg.Output.Commands {
		field := func(name string) string { return fmt.Sprintf("output.commands[%d].%s", ix, name) }
		if command.Command != CommandParquet {
			verr.add(field("command"), fmt.Sprintf("unrecognized command %q", command.Command))
			continue
		}
		if strings.TrimSpace(command.Params.Name) == "" {
			verr.add(field("name"), "display name is required")
		}
		if strings.TrimSpace(command.Params.Desc) == "" {
			verr.add(field("desc"), "description is required")
		}
		source := command.SourcePath()
		if strings.TrimSpace(source) == "" {
			verr.add(field("source"), "file path is required")
		} else {
			seenSources[source] = append(seenSources[source], ix)
		}
		if len(command.Params.Cols) == 0 {
			verr.add(field("cols"), "at least one column is required")
		}
		for cx, col := range command.Params.Cols {
			if strings.TrimSpace(col.Col) == "" {
				verr.add(field(fmt.Sprintf("cols[%d].col", cx)), "column header is required")
			}
		}
	}

	if strictness == Strict {
		for source, indexes := range seenSources {
			if len(indexes) > 1 {
				verr.add(fmt.Sprintf("output.commands[%d].source", indexes[1]), fmt.Sprintf("duplicate source path %q", source))
			}
		}
	}
}

// crossCheck verifies referential consistency between the serialized
// artifacts. Checking the emitted documents rather than the in-memory
// Config means the verification covers exactly what downstream imports.
func crossCheck(strictness Strictness, formJSON, inputJSON, outputJSON []byte) error {
	verr := &ValidationError{}

	inputs := gjson.ParseBytes(inputJSON).Map()
	boundValues := map[string]string{}
	for id, value := range inputs {
		boundValues[value.String()] = id
	}

	// Every form-entry binding in the input manifest must resolve to an
	// element of the form layout document.
	for id, value := range inputs {
		path := FormKey(value.String())
		if path == nil {
			continue
		}
		lookup := "form.properties." + strings.Join(path, ".properties.")
		if !gjson.GetBytes(formJSON, lookup).Exists() {
			verr.add("input."+id, fmt.Sprintf("binding %q has no element in %s", value.String(), ArtifactForm))
		}
	}

	if strictness == Strict {
		// Every leaf of the form layout must be consumed by a binding.
		walkFormLeaves(gjson.GetBytes(formJSON, "form"), nil, func(path []string) {
			binding := FormEntryBinding(path)
			if _, ok := boundValues[binding]; !ok {
				verr.add("form."+strings.Join(path, "."), fmt.Sprintf("form element is not referenced by %s", ArtifactInput))
			}
		})

		sources := map[string]bool{}
		for _, source := range gjson.GetBytes(outputJSON, "commands.#.params.source").Array() {
			if source.String() == "" {
				continue
			}
			if sources[source.String()] {
				verr.add("output", fmt.Sprintf("duplicate source path %q", source.String()))
			}
			sources[source.String()] = true
		}
	}

	return verr.orNil()
}

// walkFormLeaves visits every non-object element of the serialized form
// tree in document order.
func walkFormLeaves(node gjson.Result, path []string, visit func(path []string)) {
	props := node.Get("properties")
	if !props.Exists() || len(props.Map()) == 0 {
		if len(path) > 0 {
			visit(append([]string{}, path...))
		}
		return
	}
	props.ForEach(func(key, child gjson.Result) bool {
		walkFormLeaves(child, append(path, key.String()), visit)
		return true
	})
}
