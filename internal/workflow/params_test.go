package workflow

import (
	"reflect"
	"testing"
)

func TestClassifySource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value string
		want  SourceKind
	}{
		{"$.params.dataset.s3|/data/", SourceOutputDirectory},
		{"$.params.inputs[0].s3|/data/", SourceInputDirectory},
		{"$.params.dataset.name", SourceDatasetName},
		{"$.params.dataset.paramJson.genome", SourceFormEntry},
		{"$.params.dataset.paramJson.section.depth", SourceFormEntry},
		{"literal", SourceHardcoded},
		{"", SourceHardcoded},
	}
	for _, tc := range tests {
		if got := ClassifySource(tc.value); got != tc.want {
			t.Fatalf("ClassifySource(%q) = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestFormKeyRoundTrip(t *testing.T) {
	t.Parallel()

	path := []string{"section", "depth"}
	binding := FormEntryBinding(path)
	if got, want := binding, "$.params.dataset.paramJson.section.depth"; got != want {
		t.Fatalf("binding = %q, want %q", got, want)
	}
	if got := FormKey(binding); !reflect.DeepEqual(got, path) {
		t.Fatalf("FormKey(%q) = %v, want %v", binding, got, path)
	}
	if got := FormKey("$.params.dataset.name"); got != nil {
		t.Fatalf("FormKey on fixed binding = %v, want nil", got)
	}
}

func TestAddParamGeneratesUniqueIDs(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	first := cfg.AddParam()
	second := cfg.AddParam()
	if first == second {
		t.Fatalf("ids must differ, both %q", first)
	}
	if got, want := first, "param_1"; got != want {
		t.Fatalf("first id = %q, want %q", got, want)
	}
	if got, want := second, "param_2"; got != want {
		t.Fatalf("second id = %q, want %q", got, want)
	}
}

func TestSetParamSourceSeedsFormElement(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	id := cfg.AddParam()
	cfg.SetParamSource(id, SourceFormEntry)

	if got, want := cfg.Input[id], FormEntryBinding([]string{id}); got != want {
		t.Fatalf("binding = %q, want %q", got, want)
	}
	param, ok := cfg.Param(id)
	if !ok {
		t.Fatalf("param %q missing", id)
	}
	if got, want := param.Element["type"], "string"; got != want {
		t.Fatalf("element type = %v, want %v", got, want)
	}
	if got, want := param.Element["title"], id; got != want {
		t.Fatalf("element title = %v, want %v", got, want)
	}
}

func TestSetParamSourceAwayRemovesFormElement(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	id := cfg.AddParam()
	cfg.SetParamSource(id, SourceFormEntry)
	cfg.SetParamSource(id, SourceDatasetName)

	if got, want := cfg.Input[id], "$.params.dataset.name"; got != want {
		t.Fatalf("binding = %q, want %q", got, want)
	}
	if cfg.formElementExists([]string{id}) {
		t.Fatal("form element must be removed when rebinding away")
	}
}

func TestRemoveParamCleansFormTree(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	id := cfg.AddParam()
	cfg.SetParamSource(id, SourceFormEntry)
	cfg.RemoveParam(id)

	if _, ok := cfg.Input[id]; ok {
		t.Fatal("parameter must be removed")
	}
	if cfg.formElementExists([]string{id}) {
		t.Fatal("form element must be removed with the parameter")
	}
}

func TestRenameParamCarriesFormElement(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	id := cfg.AddParam()
	cfg.SetParamSource(id, SourceFormEntry)
	cfg.SetFormAttribute(id, "title", "Reference genome")

	if err := cfg.RenameParam(id, "genome"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if _, ok := cfg.Input[id]; ok {
		t.Fatal("old id must be removed")
	}
	param, ok := cfg.Param("genome")
	if !ok {
		t.Fatal("renamed param missing")
	}
	if got, want := param.Value, FormEntryBinding([]string{"genome"}); got != want {
		t.Fatalf("binding = %q, want %q", got, want)
	}
	if got, want := param.Element["title"], "Reference genome"; got != want {
		t.Fatalf("element title = %v, want %v", got, want)
	}
	if cfg.formElementExists([]string{id}) {
		t.Fatal("old form element must be removed")
	}
}

func TestRenameParamRejectsInvalidIDs(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	id := cfg.AddParam()
	other := cfg.AddParam()

	if err := cfg.RenameParam(id, ""); err == nil {
		t.Fatal("expected error for empty id")
	}
	if err := cfg.RenameParam(id, "has space"); err == nil {
		t.Fatal("expected error for id with spaces")
	}
	if err := cfg.RenameParam(id, other); err == nil {
		t.Fatal("expected error for duplicate id")
	}
	if err := cfg.RenameParam("missing", "whatever"); err == nil {
		t.Fatal("expected error for unknown id")
	}
	if err := cfg.RenameParam(id, id); err != nil {
		t.Fatalf("rename to self: %v", err)
	}
}

func TestSetFormAttributeTypeResetsDefault(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	id := cfg.AddParam()
	cfg.SetParamSource(id, SourceFormEntry)
	cfg.SetFormAttribute(id, "default", "custom")
	cfg.SetFormAttribute(id, "type", "integer")

	param, _ := cfg.Param(id)
	if got, want := param.Element["type"], "integer"; got != want {
		t.Fatalf("element type = %v, want %v", got, want)
	}
	if got, want := param.Element["default"], 0; got != want {
		t.Fatalf("element default = %v, want %v", got, want)
	}
}

func TestSetFormWidget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		widget      FormType
		wantPath    any
		wantProcess bool
		wantFile    string
	}{
		{FormTypeDataset, "dataset", true, ""},
		{FormTypeInputFile, "dataset", false, "**/*"},
		{FormTypeReference, "references", false, "**/genome_fasta/**/genome.fasta"},
		{FormTypeUserValue, nil, false, ""},
	}
	for _, tc := range tests {
		cfg := NewConfig()
		id := cfg.AddParam()
		cfg.SetParamSource(id, SourceFormEntry)
		cfg.SetFormWidget(id, tc.widget)

		param, _ := cfg.Param(id)
		if got := param.Element["pathType"]; got != tc.wantPath {
			t.Fatalf("%s: pathType = %v, want %v", tc.widget, got, tc.wantPath)
		}
		_, hasProcess := param.Element["process"]
		if hasProcess != tc.wantProcess {
			t.Fatalf("%s: process present = %v, want %v", tc.widget, hasProcess, tc.wantProcess)
		}
		if tc.wantFile != "" {
			if got := param.Element["file"]; got != tc.wantFile {
				t.Fatalf("%s: file = %v, want %v", tc.widget, got, tc.wantFile)
			}
		}
		if got, want := param.FormType(), tc.widget; got != want {
			t.Fatalf("%s: FormType = %q, want %q", tc.widget, got, want)
		}
	}
}

func TestParamsSortedByID(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cfg.Input["zeta"] = "1"
	cfg.Input["alpha"] = "2"
	cfg.Input["mid"] = "3"

	params := cfg.Params()
	want := []string{"alpha", "mid", "zeta"}
	if len(params) != len(want) {
		t.Fatalf("len = %d, want %d", len(params), len(want))
	}
	for ix, id := range want {
		if params[ix].ID != id {
			t.Fatalf("params[%d].ID = %q, want %q", ix, params[ix].ID, id)
		}
	}
}
