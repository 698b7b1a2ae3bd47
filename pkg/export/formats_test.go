package export

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestByName(t *testing.T) {
	g := buildFixture(t)

	tests := []struct {
		name        string
		contentType string
		ext         string
		sniff       string
	}{
		{name: "nodelink", contentType: "application/json", ext: "json", sniff: `"directed": true`},
		{name: "graphml", contentType: "application/xml", ext: "graphml", sniff: "<graphml"},
		{name: "tsv", contentType: "text/tab-separated-values", ext: "tsv", sniff: "\t"},
		{name: "csv", contentType: "text/csv", ext: "csv", sniff: ","},
		{name: "gsea", contentType: "text/plain", ext: "grp", sniff: "AKT1"},
		{name: "bel", contentType: "text/plain", ext: "bel", sniff: "SET DOCUMENT"},
		{name: "snapshot", contentType: "application/octet-stream", ext: "snapshot", sniff: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format, ok := ByName(tt.name)
			if !ok {
				t.Fatalf("ByName(%q) not found", tt.name)
			}
			if format.ContentType != tt.contentType {
				t.Errorf("ContentType = %q, want %q", format.ContentType, tt.contentType)
			}
			if format.Ext != tt.ext {
				t.Errorf("Ext = %q, want %q", format.Ext, tt.ext)
			}

			var buf bytes.Buffer
			if err := format.Write(&buf, g); err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			if buf.Len() == 0 {
				t.Fatal("Write() produced no output")
			}
			if tt.sniff != "" && !strings.Contains(buf.String(), tt.sniff) {
				t.Errorf("output does not contain %q", tt.sniff)
			}
		})
	}

	if _, ok := ByName("gpickle"); ok {
		t.Error(`ByName("gpickle") = true, want unknown`)
	}
}

func TestFormatNames(t *testing.T) {
	want := []string{"bel", "csv", "graphml", "gsea", "nodelink", "snapshot", "tsv"}
	if got := FormatNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("FormatNames() = %v, want %v", got, want)
	}
}
