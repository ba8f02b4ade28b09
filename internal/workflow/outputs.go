package workflow

import (
	"fmt"
	"regexp"
	"strings"
)

// Output command kinds understood by the pipeline host.
const (
	CommandParquet  = "hot.Parquet"
	CommandManifest = "hot.Manifest"
)

// sourcePrefix anchors output file paths inside the workflow output directory.
const sourcePrefix = "$data_directory/"

// tokenPattern matches bracketed path tokens such as [sample] in a source
// path; each token expands to a concat entry in the manifest.
var tokenPattern = regexp.MustCompile(`\[([A-Za-z]+)\]`)

// ColumnSpec documents one column of a delimited output table.
type ColumnSpec struct {
	Col  string `json:"col"`
	Desc string `json:"desc"`
	Name string `json:"name"`
}

// MeltAxis names one axis of a melt transformation.
type MeltAxis struct {
	Desc string `json:"desc"`
	Name string `json:"name"`
}

// MeltSpec describes melting the remaining columns into key/value rows.
type MeltSpec struct {
	Key   MeltAxis `json:"key"`
	Value MeltAxis `json:"value"`
}

// ConcatToken documents one path token of a concatenated output family.
type ConcatToken struct {
	Desc  string `json:"desc"`
	Name  string `json:"name"`
	Token string `json:"token"`
}

// ReadCSVParse holds delimiter settings for parsing the source table.
type ReadCSVParse struct {
	Delimiter string `json:"delimiter"`
}

// ReadCSVSpec wraps the table parsing options.
type ReadCSVSpec struct {
	Parse ReadCSVParse `json:"parse"`
}

// OutputParams carries the per-file settings of an output command.
type OutputParams struct {
	Cols    []ColumnSpec `json:"cols,omitempty"`
	Desc    string       `json:"desc,omitempty"`
	Name    string       `json:"name,omitempty"`
	ReadCSV *ReadCSVSpec `json:"read_csv,omitempty"`
	Source  string       `json:"source,omitempty"`
	Target  string       `json:"target,omitempty"`
	URL     string       `json:"url,omitempty"`
}

// OutputCommand is one post-processing command in the output manifest.
type OutputCommand struct {
	Command string        `json:"command"`
	Concat  []ConcatToken `json:"concat,omitempty"`
	Melt    *MeltSpec     `json:"melt,omitempty"`
	Params  OutputParams  `json:"params"`
}

// OutputSpec is the output section of the configuration. Only user-editable
// commands are held here; the terminal manifest command is appended at
// serialization time.
type OutputSpec struct {
	Commands []OutputCommand `json:"commands"`
}

// NewParquetOutput returns a fresh delimited-table output command.
func NewParquetOutput(name string) OutputCommand {
	return OutputCommand{
		Command: CommandParquet,
		Params: OutputParams{
			Name:    name,
			Cols:    []ColumnSpec{},
			ReadCSV: &ReadCSVSpec{Parse: ReadCSVParse{Delimiter: ","}},
		},
	}
}

// SourcePath returns the source path relative to the output directory.
func (o OutputCommand) SourcePath() string {
	return strings.TrimPrefix(o.Params.Source, sourcePrefix)
}

// SetSourcePath stores a relative source path, anchoring it to the output
// directory and refreshing the derived target name.
func (o *OutputCommand) SetSourcePath(rel string) {
	rel = strings.Trim(strings.TrimSpace(rel), "/")
	o.Params.Source = sourcePrefix + rel
	o.Params.Target = TargetFor(rel)
}

// TargetFor derives the parquet target name from a relative source path.
func TargetFor(rel string) string {
	if rel == "" {
		return ""
	}
	return strings.ReplaceAll(rel, "/", "_") + ".parquet"
}

// Tokens returns the bracketed path tokens present in the source path.
func (o OutputCommand) Tokens() []string {
	matches := tokenPattern.FindAllStringSubmatch(o.SourcePath(), -1)
	tokens := make([]string, 0, len(matches))
	for _, match := range matches {
		tokens = append(tokens, match[1])
	}
	return tokens
}

// MatchedBy reports whether this output's source path is matched by the
// token pattern of another output's source path.
func (o OutputCommand) MatchedBy(pattern string) bool {
	// QuoteMeta escapes the token brackets; restore them so the token
	// pattern can be rewritten into a wildcard group.
	expr := tokenPattern.ReplaceAllString(strings.NewReplacer(`\[`, "[", `\]`, "]").Replace(regexp.QuoteMeta(pattern)), "(.*)")
	re, err := regexp.Compile(expr)
	if err != nil {
		return false
	}
	return re.FindStringIndex(o.SourcePath()) != nil
}

// SyncDerived refreshes the fields computed from the source path: the
// parquet target, the delimiter defaults, and the concat entries for any
// path tokens, preserving user-entered token names and descriptions.
func (o *OutputCommand) SyncDerived() {
	if o.Command != CommandParquet {
		return
	}
	if o.Params.Cols == nil {
		o.Params.Cols = []ColumnSpec{}
	}
	if o.Params.Name == "" {
		o.Params.Name = "Output File"
	}
	if o.Params.ReadCSV == nil || o.Params.ReadCSV.Parse.Delimiter == "" {
		o.Params.ReadCSV = &ReadCSVSpec{Parse: ReadCSVParse{Delimiter: ","}}
	}
	o.Params.Target = TargetFor(o.SourcePath())

	tokens := o.Tokens()
	if len(tokens) == 0 {
		o.Concat = nil
		return
	}
	existing := map[string]ConcatToken{}
	for _, entry := range o.Concat {
		existing[entry.Token] = entry
	}
	concat := make([]ConcatToken, 0, len(tokens))
	for _, token := range tokens {
		entry, ok := existing[token]
		if !ok {
			entry = ConcatToken{Token: token, Name: token, Desc: token}
		}
		concat = append(concat, entry)
	}
	o.Concat = concat
}

// AddOutput appends a fresh output command and returns its index.
func (s *OutputSpec) AddOutput() int {
	name := fmt.Sprintf("Output File %d", len(s.Commands)+1)
	s.Commands = append(s.Commands, NewParquetOutput(name))
	return len(s.Commands) - 1
}

// RemoveOutput deletes the output command at the given index.
func (s *OutputSpec) RemoveOutput(ix int) {
	if ix < 0 || ix >= len(s.Commands) {
		return
	}
	s.Commands = append(s.Commands[:ix], s.Commands[ix+1:]...)
}

// FilterShadowed drops outputs whose source path is matched by another
// output's token pattern; the tokenized family subsumes them.
func (s *OutputSpec) FilterShadowed() {
	for {
		shadowed := s.shadowedIndexes()
		if len(shadowed) == 0 {
			return
		}
		kept := make([]OutputCommand, 0, len(s.Commands))
		for ix, command := range s.Commands {
			if !shadowed[ix] {
				kept = append(kept, command)
			}
		}
		s.Commands = kept
	}
}

func (s *OutputSpec) shadowedIndexes() map[int]bool {
	for ix, command := range s.Commands {
		if len(command.Tokens()) == 0 {
			continue
		}
		matching := map[int]bool{}
		for jx, other := range s.Commands {
			if ix != jx && other.MatchedBy(command.SourcePath()) {
				matching[jx] = true
			}
		}
		if len(matching) > 0 {
			return matching
		}
	}
	return nil
}
