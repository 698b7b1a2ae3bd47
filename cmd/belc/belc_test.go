package main

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/graphbio/bel/pkg/common"
	"github.com/graphbio/bel/pkg/compile"
	"github.com/graphbio/bel/pkg/lang"
	"github.com/graphbio/bel/pkg/normalize"
)

func TestParseS3(t *testing.T) {
	tests := []struct {
		location string
		bucket   string
		key      string
		wantErr  bool
	}{
		{location: "s3://corpus/docs/aging.bel", bucket: "corpus", key: "docs/aging.bel"},
		{location: "s3://corpus/docs/", bucket: "corpus", key: "docs/"},
		{location: "s3://corpus/", bucket: "corpus", key: ""},
		{location: "s3://corpus", bucket: "corpus", key: ""},
		{location: "s3:///docs/aging.bel", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			bucket, key, err := parseS3(tt.location)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseS3() error = %v, wantErr %v", err, tt.wantErr)
			}
			if bucket != tt.bucket || key != tt.key {
				t.Errorf("parseS3() = %q, %q, want %q, %q", bucket, key, tt.bucket, tt.key)
			}
		})
	}
}

func TestLoadDirDocuments(t *testing.T) {
	root := t.TempDir()
	write := func(name, text string) {
		t.Helper()
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("a.bel", "first")
	write("notes.txt", "ignored")
	write("nested/b.BEL", "second")

	documents, err := loadDirDocuments(root)
	if err != nil {
		t.Fatalf("loadDirDocuments() error = %v", err)
	}
	want := []compile.Document{
		{Name: "a.bel", Text: "first"},
		{Name: filepath.Join("nested", "b.BEL"), Text: "second"},
	}
	if !reflect.DeepEqual(documents, want) {
		t.Errorf("loadDirDocuments() = %+v, want %+v", documents, want)
	}

	if _, err := loadDirDocuments(t.TempDir()); err == nil {
		t.Error("empty directory did not error")
	}
}

func TestLoadDocumentsSingleFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "statements.bel")
	if err := os.WriteFile(path, []byte("p(HGNC:AKT1)"), 0o644); err != nil {
		t.Fatal(err)
	}

	documents, err := loadDocuments(t.Context(), path)
	if err != nil {
		t.Fatalf("loadDocuments() error = %v", err)
	}
	want := []compile.Document{{Name: "statements.bel", Text: "p(HGNC:AKT1)"}}
	if !reflect.DeepEqual(documents, want) {
		t.Errorf("loadDocuments() = %+v, want %+v", documents, want)
	}
}

func TestLoadFileConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "belc.yaml")
	content := "format: graphml\nparallel: 8\nallow_nested: true\nrelaxed_header: true\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadFileConfig(path)
	if err != nil {
		t.Fatalf("loadFileConfig() error = %v", err)
	}
	want := &fileConfig{Format: "graphml", Parallel: 8, AllowNested: true, RelaxedHeader: true}
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("loadFileConfig() = %+v, want %+v", cfg, want)
	}

	if _, err := loadFileConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("explicit missing path did not error")
	}

	// Without an explicit path a missing belc.yaml is not an error.
	t.Chdir(t.TempDir())
	cfg, err = loadFileConfig("")
	if err != nil {
		t.Fatalf("loadFileConfig(\"\") error = %v", err)
	}
	if !reflect.DeepEqual(cfg, &fileConfig{}) {
		t.Errorf("loadFileConfig(\"\") = %+v, want zero config", cfg)
	}
}

func TestCompileFlagsMerge(t *testing.T) {
	tests := []struct {
		name string
		set  map[string]string
		cfg  fileConfig
		want compile.Options
	}{
		{
			name: "config fills unset flags",
			cfg:  fileConfig{AllowNested: true, StrictLegacy: true},
			want: compile.Options{AllowNested: true, Policy: normalize.Policy{StrictLegacy: true}},
		},
		{
			name: "explicit flag wins over config",
			set:  map[string]string{"allow-nested": "false", "lenient-pmod": "true"},
			cfg:  fileConfig{AllowNested: true},
			want: compile.Options{Policy: normalize.Policy{LenientPmod: true}},
		},
		{
			name: "relaxation knobs pass through",
			set:  map[string]string{"skip-annotations": "true"},
			cfg:  fileConfig{RelaxedHeader: true},
			want: compile.Options{RelaxedHeader: true, SkipAnnotations: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := &compileFlags{}
			cmd := &cobra.Command{Use: "test"}
			flags.register(cmd)
			for name, value := range tt.set {
				if err := cmd.Flags().Set(name, value); err != nil {
					t.Fatalf("Set(%s) error = %v", name, err)
				}
			}
			if got := flags.options(cmd, &tt.cfg); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("options() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPickFormat(t *testing.T) {
	newCmd := func() *cobra.Command {
		cmd := &cobra.Command{Use: "test"}
		cmd.Flags().String("format", "", "")
		return cmd
	}

	format, err := pickFormat(newCmd(), &fileConfig{}, "")
	if err != nil || format.Name != "nodelink" {
		t.Errorf("default format = %q, %v, want nodelink", format.Name, err)
	}

	format, err = pickFormat(newCmd(), &fileConfig{Format: "graphml"}, "")
	if err != nil || format.Name != "graphml" {
		t.Errorf("config format = %q, %v, want graphml", format.Name, err)
	}

	cmd := newCmd()
	if err := cmd.Flags().Set("format", "csv"); err != nil {
		t.Fatal(err)
	}
	format, err = pickFormat(cmd, &fileConfig{Format: "graphml"}, "csv")
	if err != nil || format.Name != "csv" {
		t.Errorf("flag format = %q, %v, want csv", format.Name, err)
	}

	_, err = pickFormat(newCmd(), &fileConfig{Format: "gpickle"}, "")
	if err == nil || !strings.Contains(err.Error(), "nodelink") {
		t.Errorf("unknown format error = %v, want the choices listed", err)
	}
}

func TestPrintDiagnostics(t *testing.T) {
	report := &common.Report{}
	report.Addf(lang.CodeLegacyPmod, 4, "text", "rewrote legacy pmod")
	report.Addf(lang.CodeUndefinedNamespace, 9, "text", `namespace "X" is not defined`)

	var buf bytes.Buffer
	problems := printDiagnostics(&buf, "doc.bel", report)
	if problems != 1 {
		t.Errorf("problems = %d, want 1", problems)
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("printed %d lines, want 2: %q", len(lines), buf.String())
	}
	if lines[0] != "doc.bel:4: warning 105: rewrote legacy pmod" {
		t.Errorf("first line = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "doc.bel:9: error 203:") {
		t.Errorf("second line = %q", lines[1])
	}
}
