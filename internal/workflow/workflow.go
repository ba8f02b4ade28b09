// Package workflow models the Cirro analysis workflow configuration document
// and its serialization into the importable artifact bundle.
//
// A Config is the single source of truth for one workflow definition. The
// artifact files are always regenerated from it in full; nothing is patched
// in place.
package workflow

import (
	"encoding/json"
	"fmt"
)

// Executor values accepted by the registry entry.
const (
	ExecutorNextflow = "NEXTFLOW"
	ExecutorCromwell = "CROMWELL"
)

// Repository visibility values accepted by the registry entry.
const (
	RepositoryGitHubPublic  = "GITHUBPUBLIC"
	RepositoryGitHubPrivate = "GITHUBPRIVATE"
)

// CodeSpec locates the workflow source repository.
type CodeSpec struct {
	Repository string `json:"repository"`
	Script     string `json:"script"`
	URI        string `json:"uri"`
	Version    string `json:"version"`
}

// Dynamo is the registry entry describing the workflow to the hosting
// platform. Field order follows the sorted-key layout of the emitted JSON.
type Dynamo struct {
	ChildProcessIDs  []string `json:"childProcessIds"`
	Code             CodeSpec `json:"code"`
	Desc             string   `json:"desc"`
	DocumentationURL string   `json:"documentationUrl"`
	Executor         string   `json:"executor"`
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	ParentProcessIDs []string `json:"parentProcessIds"`
}

// FormSpec carries the user-facing form schema and its UI hints.
// The form tree is a JSON-schema-style object graph keyed by "properties".
type FormSpec struct {
	Form map[string]any `json:"form"`
	UI   map[string]any `json:"ui"`
}

// Config is the complete in-memory workflow configuration.
type Config struct {
	Dynamo     Dynamo
	Form       FormSpec
	Input      map[string]string
	Output     OutputSpec
	Compute    string
	Preprocess string
}

// NewConfig returns a Config populated with the standard defaults for a
// fresh workflow definition.
func NewConfig() *Config {
	return &Config{
		Dynamo: Dynamo{
			ChildProcessIDs: []string{},
			Code: CodeSpec{
				Repository: RepositoryGitHubPublic,
				Script:     "main.nf",
				URI:        "organization/repository_name",
				Version:    "main",
			},
			Desc:             "Description of my workflow",
			DocumentationURL: "",
			Executor:         ExecutorNextflow,
			ID:               "unique-workflow-id",
			Name:             "My Workflow Name",
			ParentProcessIDs: []string{},
		},
		Form: FormSpec{
			Form: map[string]any{},
			UI:   map[string]any{},
		},
		Input:      map[string]string{},
		Output:     OutputSpec{Commands: []OutputCommand{}},
		Compute:    "",
		Preprocess: DefaultPreprocess,
	}
}

// Clone returns a deep copy of the configuration.
// History snapshots and autosave rely on copies never aliasing live state.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	raw, err := json.Marshal(c.snapshot())
	if err != nil {
		// All Config contents originate from JSON; marshal cannot fail.
		panic(fmt.Sprintf("clone workflow config: %v", err))
	}
	clone, err := ParseSnapshot(raw)
	if err != nil {
		panic(fmt.Sprintf("clone workflow config: %v", err))
	}
	return clone
}

// snapshot is the JSON shape used for cloning and draft persistence.
type snapshot struct {
	Dynamo     Dynamo            `json:"dynamo"`
	Form       FormSpec          `json:"form"`
	Input      map[string]string `json:"input"`
	Output     OutputSpec        `json:"output"`
	Compute    string            `json:"compute"`
	Preprocess string            `json:"preprocess"`
}

func (c *Config) snapshot() snapshot {
	return snapshot{
		Dynamo:     c.Dynamo,
		Form:       c.Form,
		Input:      c.Input,
		Output:     c.Output,
		Compute:    c.Compute,
		Preprocess: c.Preprocess,
	}
}

// MarshalSnapshot serializes the config for draft persistence.
func (c *Config) MarshalSnapshot() ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("config is required")
	}
	raw, err := json.Marshal(c.snapshot())
	if err != nil {
		return nil, fmt.Errorf("marshal workflow config: %w", err)
	}
	return raw, nil
}

// ParseSnapshot restores a config from its persisted snapshot form.
func ParseSnapshot(raw []byte) (*Config, error) {
	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("parse workflow config: %w", err)
	}
	cfg := &Config{
		Dynamo:     snap.Dynamo,
		Form:       snap.Form,
		Input:      snap.Input,
		Output:     snap.Output,
		Compute:    snap.Compute,
		Preprocess: snap.Preprocess,
	}
	cfg.normalize()
	return cfg, nil
}

// normalize fills nil containers so serialization stays deterministic and
// emitted JSON uses empty collections instead of null.
func (c *Config) normalize() {
	if c.Dynamo.ChildProcessIDs == nil {
		c.Dynamo.ChildProcessIDs = []string{}
	}
	if c.Dynamo.ParentProcessIDs == nil {
		c.Dynamo.ParentProcessIDs = []string{}
	}
	if c.Form.Form == nil {
		c.Form.Form = map[string]any{}
	}
	if c.Form.UI == nil {
		c.Form.UI = map[string]any{}
	}
	if c.Input == nil {
		c.Input = map[string]string{}
	}
	if c.Output.Commands == nil {
		c.Output.Commands = []OutputCommand{}
	}
}
