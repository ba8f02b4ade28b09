package workflow

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Artifact file names imported by the pipeline host. These are exact;
// downstream import breaks on any rename.
const (
	ArtifactDynamo     = "process-dynamo.json"
	ArtifactForm       = "process-form.json"
	ArtifactInput      = "process-input.json"
	ArtifactOutput     = "process-output.json"
	ArtifactCompute    = "process-compute.config"
	ArtifactPreprocess = "preprocess.py"
)

// BundleName is the file name of the zipped artifact bundle.
const BundleName = "cirro-configuration.zip"

// ArtifactNames lists the artifact files in bundle order.
var ArtifactNames = []string{
	ArtifactDynamo,
	ArtifactForm,
	ArtifactInput,
	ArtifactOutput,
	ArtifactCompute,
	ArtifactPreprocess,
}

// Artifact is one generated configuration file.
type Artifact struct {
	Name    string
	Content []byte
}

// Bundle is the full set of generated configuration files for one workflow.
type Bundle struct {
	Artifacts []Artifact
}

// Artifact returns the named artifact when present.
func (b Bundle) Artifact(name string) (Artifact, bool) {
	for _, artifact := range b.Artifacts {
		if artifact.Name == name {
			return artifact, true
		}
	}
	return Artifact{}, false
}

// Zip packs all artifacts into a single archive.
func (b Bundle) Zip() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, artifact := range b.Artifacts {
		fw, err := zw.Create(artifact.Name)
		if err != nil {
			return nil, fmt.Errorf("add %s to bundle: %w", artifact.Name, err)
		}
		if _, err := fw.Write(artifact.Content); err != nil {
			return nil, fmt.Errorf("write %s to bundle: %w", artifact.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close bundle: %w", err)
	}
	return buf.Bytes(), nil
}

// Assemble validates the configuration and serializes it into the artifact
// bundle. On validation failure no artifacts are produced. Serialization is
// deterministic: an unchanged Config always yields byte-identical artifacts.
func Assemble(cfg *Config, strictness Strictness) (Bundle, error) {
	if cfg == nil {
		return Bundle{}, fmt.Errorf("config is required")
	}
	if err := Validate(cfg, strictness); err != nil {
		return Bundle{}, err
	}

	// Work on a copy so derived output fields never leak into live state.
	clone := cfg.Clone()
	for ix := range clone.Output.Commands {
		clone.Output.Commands[ix].SyncDerived()
	}

	dynamoJSON, err := marshalArtifact(clone.Dynamo)
	if err != nil {
		return Bundle{}, fmt.Errorf("serialize %s: %w", ArtifactDynamo, err)
	}
	formJSON, err := marshalArtifact(clone.Form)
	if err != nil {
		return Bundle{}, fmt.Errorf("serialize %s: %w", ArtifactForm, err)
	}
	inputJSON, err := marshalArtifact(clone.Input)
	if err != nil {
		return Bundle{}, fmt.Errorf("serialize %s: %w", ArtifactInput, err)
	}
	outputJSON, err := marshalArtifact(outputManifest(clone.Output))
	if err != nil {
		return Bundle{}, fmt.Errorf("serialize %s: %w", ArtifactOutput, err)
	}

	if err := crossCheck(strictness, formJSON, inputJSON, outputJSON); err != nil {
		return Bundle{}, err
	}

	return Bundle{Artifacts: []Artifact{
		{Name: ArtifactDynamo, Content: dynamoJSON},
		{Name: ArtifactForm, Content: formJSON},
		{Name: ArtifactInput, Content: inputJSON},
		{Name: ArtifactOutput, Content: outputJSON},
		{Name: ArtifactCompute, Content: []byte(clone.Compute)},
		{Name: ArtifactPreprocess, Content: []byte(clone.Preprocess)},
	}}, nil
}

// outputManifest appends the terminal manifest command to the user-defined
// output commands.
func outputManifest(spec OutputSpec) OutputSpec {
	commands := make([]OutputCommand, 0, len(spec.Commands)+1)
	commands = append(commands, spec.Commands...)
	commands = append(commands, OutputCommand{Command: CommandManifest, Params: OutputParams{}})
	return OutputSpec{Commands: commands}
}

// marshalArtifact renders an artifact document with the canonical layout:
// four-space indentation and sorted object keys (Go maps marshal sorted;
// struct fields are declared in sorted tag order).
func marshalArtifact(doc any) ([]byte, error) {
	raw, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return nil, err
	}
	return append(raw, '\n'), nil
}

// MergeArtifactFile loads an uploaded artifact file into the configuration,
// mirroring the import behavior of the download side.
func (c *Config) MergeArtifactFile(name string, data []byte) error {
	switch name {
	case ArtifactPreprocess:
		c.Preprocess = string(data)
	case ArtifactCompute:
		c.Compute = string(data)
	case ArtifactDynamo:
		var dynamo Dynamo
		if err := json.Unmarshal(data, &dynamo); err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		c.Dynamo = dynamo
	case ArtifactForm:
		var form FormSpec
		if err := json.Unmarshal(data, &form); err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		c.Form = form
	case ArtifactInput:
		var input map[string]string
		if err := json.Unmarshal(data, &input); err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		c.Input = input
	case ArtifactOutput:
		var output OutputSpec
		if err := json.Unmarshal(data, &output); err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		// Only the user-editable commands are held in memory; the terminal
		// manifest is re-appended at serialization time.
		kept := make([]OutputCommand, 0, len(output.Commands))
		for _, command := range output.Commands {
			if command.Command == CommandParquet {
				kept = append(kept, command)
			}
		}
		c.Output = OutputSpec{Commands: kept}
		c.Output.FilterShadowed()
	default:
		if strings.HasPrefix(name, "process-") {
			return fmt.Errorf("unrecognized configuration file %q", name)
		}
		return fmt.Errorf("did not expect input %q", name)
	}
	c.normalize()
	return nil
}
