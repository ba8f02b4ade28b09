package workflow

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

func assembledConfig(t *testing.T) *Config {
	t.Helper()
	cfg := NewConfig()
	cfg.Dynamo.ID = "process-test"
	cfg.Dynamo.Name = "Test Process"
	cfg.Dynamo.Desc = "A process used in tests"

	id := cfg.AddParam()
	cfg.SetParamSource(id, SourceFormEntry)
	data := cfg.AddParam()
	cfg.SetParamSource(data, SourceOutputDirectory)

	ix := cfg.Output.AddOutput()
	cfg.Output.Commands[ix].SetSourcePath("results/table.csv")
	cfg.Output.Commands[ix].Params.Desc = "Main results table"
	cfg.Output.Commands[ix].Params.Cols = []ColumnSpec{
		{Col: "gene", Name: "Gene", Desc: "Gene symbol"},
	}
	return cfg
}

func TestAssembleProducesAllArtifacts(t *testing.T) {
	t.Parallel()

	bundle, err := Assemble(assembledConfig(t), Lenient)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if got, want := len(bundle.Artifacts), len(ArtifactNames); got != want {
		t.Fatalf("artifacts = %d, want %d", got, want)
	}
	for _, name := range ArtifactNames {
		if _, ok := bundle.Artifact(name); !ok {
			t.Fatalf("missing artifact %q", name)
		}
	}
}

func TestAssembleFormEntriesSpanArtifacts(t *testing.T) {
	t.Parallel()

	cfg := assembledConfig(t)
	cfg.SetFormAttribute("param_1", "type", "integer")
	bundle, err := Assemble(cfg, Lenient)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	form, _ := bundle.Artifact(ArtifactForm)
	if got := gjson.GetBytes(form.Content, "form.properties.param_1.type").String(); got != "integer" {
		t.Fatalf("form element type = %q, want %q", got, "integer")
	}

	input, _ := bundle.Artifact(ArtifactInput)
	if got := gjson.GetBytes(input.Content, "param_1").String(); got != FormEntryBinding([]string{"param_1"}) {
		t.Fatalf("input binding = %q, want %q", got, FormEntryBinding([]string{"param_1"}))
	}
}

func TestAssembleIsDeterministic(t *testing.T) {
	t.Parallel()

	cfg := assembledConfig(t)
	first, err := Assemble(cfg, Lenient)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	second, err := Assemble(cfg, Lenient)
	if err != nil {
		t.Fatalf("assemble again: %v", err)
	}
	for ix, artifact := range first.Artifacts {
		if !bytes.Equal(artifact.Content, second.Artifacts[ix].Content) {
			t.Fatalf("artifact %s differs between identical assemblies", artifact.Name)
		}
	}
}

func TestAssembleLayout(t *testing.T) {
	t.Parallel()

	bundle, err := Assemble(assembledConfig(t), Lenient)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	dynamo, _ := bundle.Artifact(ArtifactDynamo)

	content := string(dynamo.Content)
	if !strings.HasSuffix(content, "\n") {
		t.Fatal("artifact must end with a newline")
	}
	if !strings.Contains(content, "\n    \"code\"") {
		t.Fatal("artifact must be indented with four spaces")
	}
	var doc map[string]any
	if err := json.Unmarshal(dynamo.Content, &doc); err != nil {
		t.Fatalf("dynamo artifact is not valid JSON: %v", err)
	}
}

func TestAssembleAppendsManifestCommand(t *testing.T) {
	t.Parallel()

	cfg := assembledConfig(t)
	bundle, err := Assemble(cfg, Lenient)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	output, _ := bundle.Artifact(ArtifactOutput)

	commands := gjson.GetBytes(output.Content, "commands.#.command").Array()
	if len(commands) != 2 {
		t.Fatalf("commands = %d, want 2", len(commands))
	}
	if got, want := commands[len(commands)-1].String(), CommandManifest; got != want {
		t.Fatalf("last command = %q, want %q", got, want)
	}
	// The in-memory configuration never holds the terminal command.
	for _, command := range cfg.Output.Commands {
		if command.Command == CommandManifest {
			t.Fatal("manifest command leaked into live config")
		}
	}
}

func TestAssembleDoesNotMutateConfig(t *testing.T) {
	t.Parallel()

	cfg := assembledConfig(t)
	cfg.Output.Commands[0].Params.Target = ""
	if _, err := Assemble(cfg, Lenient); err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if got := cfg.Output.Commands[0].Params.Target; got != "" {
		t.Fatalf("derived target leaked into live config: %q", got)
	}
}

func TestAssembleRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := assembledConfig(t)
	cfg.Dynamo.ID = "Not Valid"
	if _, err := Assemble(cfg, Lenient); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestZipContainsAllArtifacts(t *testing.T) {
	t.Parallel()

	bundle, err := Assemble(assembledConfig(t), Lenient)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	raw, err := bundle.Zip()
	if err != nil {
		t.Fatalf("zip: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	if got, want := len(zr.File), len(ArtifactNames); got != want {
		t.Fatalf("zip entries = %d, want %d", got, want)
	}
	for ix, file := range zr.File {
		if got, want := file.Name, ArtifactNames[ix]; got != want {
			t.Fatalf("zip entry %d = %q, want %q", ix, got, want)
		}
	}
}

func TestMergeArtifactFileRoundTrip(t *testing.T) {
	t.Parallel()

	source := assembledConfig(t)
	bundle, err := Assemble(source, Lenient)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	restored := NewConfig()
	for _, artifact := range bundle.Artifacts {
		if err := restored.MergeArtifactFile(artifact.Name, artifact.Content); err != nil {
			t.Fatalf("merge %s: %v", artifact.Name, err)
		}
	}

	again, err := Assemble(restored, Lenient)
	if err != nil {
		t.Fatalf("assemble restored: %v", err)
	}
	for ix, artifact := range bundle.Artifacts {
		if !bytes.Equal(artifact.Content, again.Artifacts[ix].Content) {
			t.Fatalf("artifact %s changed across upload round trip", artifact.Name)
		}
	}
}

func TestMergeArtifactFileDropsManifestCommand(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"commands":[
		{"command":"hot.Parquet","params":{"source":"$data_directory/t.csv"}},
		{"command":"hot.Manifest","params":{}}
	]}`)
	cfg := NewConfig()
	if err := cfg.MergeArtifactFile(ArtifactOutput, raw); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if got, want := len(cfg.Output.Commands), 1; got != want {
		t.Fatalf("commands = %d, want %d", got, want)
	}
	if got, want := cfg.Output.Commands[0].Command, CommandParquet; got != want {
		t.Fatalf("command = %q, want %q", got, want)
	}
}

func TestMergeArtifactFileRejectsUnknownNames(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	err := cfg.MergeArtifactFile("notes.txt", []byte("hi"))
	if err == nil {
		t.Fatal("expected error for unknown file")
	}
	if got, want := err.Error(), `did not expect input "notes.txt"`; got != want {
		t.Fatalf("error = %q, want %q", got, want)
	}
	if err := cfg.MergeArtifactFile("process-unknown.json", []byte("{}")); err == nil {
		t.Fatal("expected error for unrecognized process file")
	}
}

func TestMergeArtifactFileRejectsBadJSON(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	if err := cfg.MergeArtifactFile(ArtifactDynamo, []byte("not json")); err == nil {
		t.Fatal("expected parse error")
	}
}
