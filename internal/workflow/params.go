package workflow

import (
	"fmt"
	"sort"
	"strings"
)

// SourceKind identifies how a parameter value is resolved at launch time.
type SourceKind string

const (
	// SourceOutputDirectory binds the base URL of the dataset created for
	// the workflow's outputs.
	SourceOutputDirectory SourceKind = "output_directory"
	// SourceInputDirectory binds the base URL of the input dataset files.
	SourceInputDirectory SourceKind = "input_directory"
	// SourceDatasetName binds the user-provided name of the new dataset.
	SourceDatasetName SourceKind = "dataset_name"
	// SourceFormEntry binds a value collected from the user-facing form.
	SourceFormEntry SourceKind = "form_entry"
	// SourceHardcoded binds a literal value.
	SourceHardcoded SourceKind = "hardcoded"
)

// formEntryPrefix is the launch-time JSONPath prefix for form-bound values.
const formEntryPrefix = "$.params.dataset.paramJson."

// sourceBindings maps the fixed source kinds to their launch-time bindings.
var sourceBindings = map[SourceKind]string{
	SourceOutputDirectory: "$.params.dataset.s3|/data/",
	SourceInputDirectory:  "$.params.inputs[0].s3|/data/",
	SourceDatasetName:     "$.params.dataset.name",
}

// SourceBinding returns the fixed binding for kinds that have one.
func SourceBinding(kind SourceKind) (string, bool) {
	value, ok := sourceBindings[kind]
	return value, ok
}

// ClassifySource maps a stored input binding back to its source kind.
func ClassifySource(value string) SourceKind {
	for kind, binding := range sourceBindings {
		if value == binding {
			return kind
		}
	}
	if strings.HasPrefix(value, formEntryPrefix) {
		return SourceFormEntry
	}
	return SourceHardcoded
}

// FormKey splits a form-entry binding into its form tree path.
func FormKey(value string) []string {
	if !strings.HasPrefix(value, formEntryPrefix) {
		return nil
	}
	return strings.Split(strings.TrimPrefix(value, formEntryPrefix), ".")
}

// FormEntryBinding builds the launch-time binding for a form tree path.
func FormEntryBinding(path []string) string {
	return formEntryPrefix + strings.Join(path, ".")
}

// FormType identifies the widget presented for a form-entry parameter.
type FormType string

const (
	FormTypeDataset   FormType = "dataset"
	FormTypeInputFile FormType = "input_file"
	FormTypeReference FormType = "reference"
	FormTypeUserValue FormType = "user_value"
)

// Param is the editable view of one input parameter.
type Param struct {
	ID       string
	Value    string
	Source   SourceKind
	FormPath []string
	// Element holds the resolved form element attributes for form-entry
	// parameters (type, title, description, default, pathType, ...).
	Element map[string]any
}

// FormType classifies the widget for a form-entry parameter.
func (p Param) FormType() FormType {
	if p.Source != SourceFormEntry {
		return ""
	}
	switch p.Element["pathType"] {
	case "dataset":
		if _, ok := p.Element["process"]; ok {
			return FormTypeDataset
		}
		return FormTypeInputFile
	case "references":
		return FormTypeReference
	default:
		return FormTypeUserValue
	}
}

// Params returns the editable parameter views in stable id order.
// Form-entry parameters missing from the form tree are backfilled there,
// mirroring how uploaded partial configurations are repaired.
func (c *Config) Params() []Param {
	ids := make([]string, 0, len(c.Input))
	for id := range c.Input {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	params := make([]Param, 0, len(ids))
	for _, id := range ids {
		value := c.Input[id]
		param := Param{ID: id, Value: value, Source: ClassifySource(value)}
		if param.Source == SourceFormEntry {
			param.FormPath = FormKey(value)
			param.Element = c.ensureFormElement(param.FormPath)
		}
		params = append(params, param)
	}
	return params
}

// Param returns the editable view of a single parameter.
func (c *Config) Param(id string) (Param, bool) {
	value, ok := c.Input[id]
	if !ok {
		return Param{}, false
	}
	param := Param{ID: id, Value: value, Source: ClassifySource(value)}
	if param.Source == SourceFormEntry {
		param.FormPath = FormKey(value)
		param.Element = c.ensureFormElement(param.FormPath)
	}
	return param, true
}

// AddParam appends a new hardcoded parameter with a unique generated id.
func (c *Config) AddParam() string {
	ix := 1
	for {
		id := fmt.Sprintf("param_%d", ix)
		if _, exists := c.Input[id]; !exists {
			c.Input[id] = ""
			return id
		}
		ix++
	}
}

// RemoveParam deletes a parameter and, for form entries, its form element.
func (c *Config) RemoveParam(id string) {
	value, ok := c.Input[id]
	if !ok {
		return
	}
	if ClassifySource(value) == SourceFormEntry {
		c.removeFormElement(FormKey(value))
	}
	delete(c.Input, id)
}

// SetParamSource rebinds a parameter to a new source kind.
// Switching to a form entry seeds a string element at the root of the form
// tree; switching away removes the element the binding pointed at.
func (c *Config) SetParamSource(id string, kind SourceKind) {
	value, ok := c.Input[id]
	if !ok {
		return
	}
	if ClassifySource(value) == SourceFormEntry && kind != SourceFormEntry {
		c.removeFormElement(FormKey(value))
	}

	switch kind {
	case SourceFormEntry:
		path := []string{id}
		c.setFormElement(path, map[string]any{
			"type":        "string",
			"default":     "",
			"title":       id,
			"description": "Description of " + id,
		})
		c.Input[id] = FormEntryBinding(path)
	case SourceHardcoded:
		c.Input[id] = ""
	default:
		if binding, ok := SourceBinding(kind); ok {
			c.Input[id] = binding
		}
	}
}

// SetParamValue stores a literal value for a hardcoded parameter.
func (c *Config) SetParamValue(id string, value string) {
	if _, ok := c.Input[id]; !ok {
		return
	}
	c.Input[id] = value
}

// RenameParam changes a parameter id, carrying any form element with it.
func (c *Config) RenameParam(oldID, newID string) error {
	newID = strings.TrimSpace(newID)
	if newID == "" {
		return fmt.Errorf("parameter id is required")
	}
	if strings.ContainsAny(newID, " \t") {
		return fmt.Errorf("parameter id must not contain spaces")
	}
	if oldID == newID {
		return nil
	}
	value, ok := c.Input[oldID]
	if !ok {
		return fmt.Errorf("unknown parameter %q", oldID)
	}
	if _, exists := c.Input[newID]; exists {
		return fmt.Errorf("parameter %q already exists", newID)
	}

	if ClassifySource(value) == SourceFormEntry {
		path := FormKey(value)
		element := c.ensureFormElement(path)
		c.removeFormElement(path)
		newPath := append(append([]string{}, path[:len(path)-1]...), newID)
		c.setFormElement(newPath, element)
		value = FormEntryBinding(newPath)
	}
	delete(c.Input, oldID)
	c.Input[newID] = value
	return nil
}

// SetFormAttribute updates one attribute of a form-entry element.
// Changing the value type also resets the default to the type's zero value.
func (c *Config) SetFormAttribute(id string, attr string, value any) {
	param, ok := c.Param(id)
	if !ok || param.Source != SourceFormEntry {
		return
	}
	element := c.ensureFormElement(param.FormPath)
	element[attr] = value
	if attr == "type" {
		if typeName, ok := value.(string); ok {
			element["default"] = zeroFormValue(typeName)
		}
	}
	c.setFormElement(param.FormPath, element)
}

// SetFormWidget switches the widget for a form-entry element.
func (c *Config) SetFormWidget(id string, widget FormType) {
	param, ok := c.Param(id)
	if !ok || param.Source != SourceFormEntry {
		return
	}
	element := c.ensureFormElement(param.FormPath)
	element["type"] = "string"
	switch widget {
	case FormTypeDataset:
		element["pathType"] = "dataset"
		element["process"] = "paired_dnaseq"
		delete(element, "file")
	case FormTypeInputFile:
		element["pathType"] = "dataset"
		element["file"] = "**/*"
		delete(element, "process")
	case FormTypeReference:
		element["pathType"] = "references"
		element["file"] = "**/genome_fasta/**/genome.fasta"
		delete(element, "process")
	default:
		delete(element, "pathType")
		delete(element, "process")
		delete(element, "file")
	}
	c.setFormElement(param.FormPath, element)
}

// zeroFormValue returns the starting default for a form value type.
func zeroFormValue(typeName string) any {
	switch typeName {
	case "integer":
		return 0
	case "number":
		return 0.0
	case "boolean":
		return false
	case "array":
		return []any{}
	default:
		return ""
	}
}

// ensureFormElement resolves (creating as needed) the element at path and
// returns its attributes without the nested properties.
func (c *Config) ensureFormElement(path []string) map[string]any {
	node := c.Form.Form
	for ix, key := range path {
		props, ok := node["properties"].(map[string]any)
		if !ok {
			props = map[string]any{}
			node["properties"] = props
		}
		child, ok := props[key].(map[string]any)
		if !ok {
			if ix == len(path)-1 {
				child = map[string]any{
					"type":    "string",
					"default": key,
					"title":   key,
				}
			} else {
				child = map[string]any{
					"type":       "object",
					"properties": map[string]any{},
				}
			}
			props[key] = child
		}
		node = child
	}

	element := map[string]any{}
	for key, value := range node {
		if key != "properties" {
			element[key] = value
		}
	}
	return element
}

// setFormElement writes element attributes at path, creating parents.
func (c *Config) setFormElement(path []string, element map[string]any) {
	if len(path) == 0 {
		return
	}
	node := c.Form.Form
	for _, key := range path[:len(path)-1] {
		props, ok := node["properties"].(map[string]any)
		if !ok {
			props = map[string]any{}
			node["properties"] = props
		}
		child, ok := props[key].(map[string]any)
		if !ok {
			child = map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			}
			props[key] = child
		}
		node = child
	}

	props, ok := node["properties"].(map[string]any)
	if !ok {
		props = map[string]any{}
		node["properties"] = props
	}
	leaf := path[len(path)-1]
	existing, _ := props[leaf].(map[string]any)
	merged := map[string]any{}
	if nested, ok := existing["properties"]; ok {
		merged["properties"] = nested
	}
	for key, value := range element {
		if key != "properties" {
			merged[key] = value
		}
	}
	props[leaf] = merged
}

// removeFormElement deletes the element at path when present.
func (c *Config) removeFormElement(path []string) {
	if len(path) == 0 {
		return
	}
	node := c.Form.Form
	for _, key := range path[:len(path)-1] {
		props, ok := node["properties"].(map[string]any)
		if !ok {
			return
		}
		child, ok := props[key].(map[string]any)
		if !ok {
			return
		}
		node = child
	}
	props, ok := node["properties"].(map[string]any)
	if !ok {
		return
	}
	delete(props, path[len(path)-1])
}

// formElementExists reports whether a form element exists at path.
func (c *Config) formElementExists(path []string) bool {
	node := c.Form.Form
	for _, key := range path {
		props, ok := node["properties"].(map[string]any)
		if !ok {
			return false
		}
		child, ok := props[key].(map[string]any)
		if !ok {
			return false
		}
		node = child
	}
	return true
}

// formLeafPaths collects the paths of all non-object elements in the form
// tree, in sorted order.
func (c *Config) formLeafPaths() [][]string {
	var leaves [][]string
	var walk func(node map[string]any, path []string)
	walk = func(node map[string]any, path []string) {
		props, ok := node["properties"].(map[string]any)
		if !ok || len(props) == 0 {
			if len(path) > 0 {
				leaves = append(leaves, append([]string{}, path...))
			}
			return
		}
		keys := make([]string, 0, len(props))
		for key := range props {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			child, ok := props[key].(map[string]any)
			if !ok {
				continue
			}
			walk(child, append(path, key))
		}
	}
	walk(c.Form.Form, nil)
	return leaves
}
