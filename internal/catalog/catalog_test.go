package catalog

import (
	"sort"
	"strings"
	"testing"
)

func TestProcessesSortedAndDisplayForm(t *testing.T) {
	t.Parallel()

	processes := Processes()
	if len(processes) == 0 {
		t.Fatal("process catalog must not be empty")
	}
	if !sort.StringsAreSorted(processes) {
		t.Fatal("processes must be sorted")
	}
	for _, display := range processes {
		if !strings.HasSuffix(display, ")") || !strings.Contains(display, " (") {
			t.Fatalf("display %q is not in Name (id) form", display)
		}
	}
}

func TestProcessID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		display string
		want    string
	}{
		{"Paired DNAseq (FASTQ) (paired_dnaseq)", "paired_dnaseq"},
		{"MAGeCK Test (process-hutch-magecktest-1_0)", "process-hutch-magecktest-1_0"},
		{"no-parens", "no-parens"},
	}
	for _, tc := range tests {
		if got := ProcessID(tc.display); got != tc.want {
			t.Fatalf("ProcessID(%q) = %q, want %q", tc.display, got, tc.want)
		}
	}
}

func TestReferenceGlob(t *testing.T) {
	t.Parallel()

	glob, ok := ReferenceGlob("Reference Genome (FASTA)")
	if !ok {
		t.Fatal("known reference must resolve")
	}
	if got, want := glob, "**/genome_fasta/**/genome.fasta"; got != want {
		t.Fatalf("glob = %q, want %q", got, want)
	}

	// Reference type without validation entries falls back to a wildcard.
	glob, ok = ReferenceGlob("Reference Genome (Index)")
	if !ok {
		t.Fatal("known reference must resolve")
	}
	if got, want := glob, "**/genome_index/**/*"; got != want {
		t.Fatalf("glob = %q, want %q", got, want)
	}

	if _, ok := ReferenceGlob("No Such Reference"); ok {
		t.Fatal("unknown reference must not resolve")
	}
}

func TestReferenceNames(t *testing.T) {
	t.Parallel()

	names := ReferenceNames()
	if len(names) != len(References()) {
		t.Fatalf("names = %d, references = %d", len(names), len(References()))
	}
}

func TestSanitizeColumn(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Sample", "sample"},
		{"  P-Value  ", "p_value"},
		{"log2(Fold Change)", "log2_fold_change"},
		{"%-Aligned!!", "aligned"},
		{"a__b___c", "a_b_c"},
	}
	for _, tc := range tests {
		if got := SanitizeColumn(tc.in); got != tc.want {
			t.Fatalf("SanitizeColumn(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestInferColumn(t *testing.T) {
	t.Parallel()

	name, desc := InferColumn("Sample", "results/table.csv")
	if name != "Sample" || desc == "" {
		t.Fatalf("wildcard term = (%q, %q), want named entry", name, desc)
	}

	// File-specific entries win over the wildcard.
	name, _ = InferColumn("gene", "counts/gene_counts.csv")
	if got, want := name, "Gene ID"; got != want {
		t.Fatalf("file-specific name = %q, want %q", got, want)
	}
	name, _ = InferColumn("gene", "data/counts/gene_counts.csv")
	if got, want := name, "Gene ID"; got != want {
		t.Fatalf("data-prefixed name = %q, want %q", got, want)
	}
	name, _ = InferColumn("gene", "other.csv")
	if got, want := name, "Gene"; got != want {
		t.Fatalf("wildcard fallback = %q, want %q", got, want)
	}

	// Unknown headers fall back to the sanitized form.
	name, desc = InferColumn("Total.Counts", "other.csv")
	if name != "total_counts" || desc != "" {
		t.Fatalf("unknown term = (%q, %q), want sanitized fallback", name, desc)
	}
}
