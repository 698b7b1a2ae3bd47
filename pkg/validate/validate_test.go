package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/graphbio/bel/pkg/common"
	"github.com/graphbio/bel/pkg/lang"
	"github.com/graphbio/bel/pkg/parser"
)

func testDocument() *common.Document {
	document := common.NewDocument()
	document.Namespaces["HGNC"] = &common.Definition{
		Keyword: "HGNC",
		Kind:    common.DefinitionNamespace,
		Values:  map[string]string{"AKT1": "GRP", "MDM2": "GRP", "MYC": "GRP", "FOS": "GRP", "JUN": "GRP"},
	}
	document.Namespaces["CHEBI"] = &common.Definition{Keyword: "CHEBI", Kind: common.DefinitionNamespace}
	document.Namespaces["GO"] = &common.Definition{Keyword: "GO", Kind: common.DefinitionNamespace}
	document.Namespaces["MESH"] = &common.Definition{Keyword: "MESH", Kind: common.DefinitionNamespace}
	document.Namespaces["SCOMP"] = &common.Definition{Keyword: "SCOMP", Kind: common.DefinitionNamespace}
	return document
}

func mustParseStatement(t *testing.T, text string) *common.Statement {
	t.Helper()
	parsed, err := parser.Parse(text)
	if err != nil {
		t.Fatalf("Parse(%q) returned error %v", text, err)
	}
	if parsed.Statement == nil {
		t.Fatalf("Parse(%q) returned no statement", text)
	}
	return parsed.Statement
}

func TestValidator_AcceptsCompatibleStatements(t *testing.T) {
	texts := []string{
		"p(HGNC:AKT1) increases p(HGNC:MDM2)",
		"g(HGNC:MYC) transcribedTo r(HGNC:MYC)",
		"r(HGNC:MYC) translatedTo p(HGNC:MYC)",
		"g(HGNC:MYC) orthologous g(HGNC:MYC)",
		"p(HGNC:AKT1) hasVariant p(HGNC:AKT1, pmod(Ph))",
		"p(HGNC:AKT1) hasMembers list(p(HGNC:MDM2), p(HGNC:FOS))",
		`complex(SCOMP:"AP-1 Complex") hasComponents list(p(HGNC:FOS), p(HGNC:JUN))`,
		"complex(p(HGNC:FOS), p(HGNC:JUN)) hasComponent p(HGNC:FOS)",
		`p(HGNC:AKT1) biomarkerFor path(MESH:Neoplasms)`,
		`act(p(HGNC:AKT1), ma(kin)) rateLimitingStepOf bp(GO:"protein phosphorylation")`,
		`bp(GO:"cell cycle arrest") subProcessOf bp(GO:"cell death")`,
		`tloc(p(HGNC:AKT1), fromLoc(GO:intracellular), toLoc(GO:"cell surface")) subProcessOf bp(GO:secretion)`,
		"a(CHEBI:anything) -- path(MESH:Neoplasms)",
		"p(HGNC:AKT1)",
	}
	for _, text := range texts {
		t.Run(text, func(t *testing.T) {
			statement := mustParseStatement(t, text)
			if err := New(testDocument()).Statement(statement); err != nil {
				t.Errorf("Statement(%q) rejected a valid statement: %v", text, err)
			}
		})
	}
}

func TestValidator_RejectsIncompatibleStatements(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "transcription of a protein",
			text: "p(HGNC:AKT1) transcribedTo r(HGNC:MYC)",
			want: "transcribedTo requires a gene subject",
		},
		{
			name: "transcription to a protein",
			text: "g(HGNC:MYC) transcribedTo p(HGNC:MYC)",
			want: "transcribedTo requires an RNA or miRNA object",
		},
		{
			name: "translation from a gene",
			text: "g(HGNC:MYC) translatedTo p(HGNC:MYC)",
			want: "translatedTo requires an RNA subject",
		},
		{
			name: "orthology across kinds",
			text: "g(HGNC:MYC) orthologous p(HGNC:MYC)",
			want: "orthologous requires two abundances of the same kind",
		},
		{
			name: "variant of a different kind",
			text: "g(HGNC:AKT1) hasVariant p(HGNC:AKT1, pmod(Ph))",
			want: "hasVariant requires subject and object of the same kind",
		},
		{
			name: "component of a plain protein",
			text: "p(HGNC:AKT1) hasComponent p(HGNC:MDM2)",
			want: "hasComponent requires a complex or composite subject",
		},
		{
			name: "biomarker for an abundance",
			text: "p(HGNC:AKT1) biomarkerFor p(HGNC:MDM2)",
			want: "biomarkerFor requires a process object",
		},
		{
			name: "rate limiting step of a pathology",
			text: "act(p(HGNC:AKT1)) rateLimitingStepOf path(MESH:Neoplasms)",
			want: "rateLimitingStepOf requires a biological process object",
		},
		{
			name: "subprocess with an abundance subject",
			text: "p(HGNC:AKT1) subProcessOf bp(GO:apoptosis)",
			want: "subProcessOf requires a process",
		},
		{
			name: "member list without hasMembers",
			text: "p(HGNC:AKT1) increases list(p(HGNC:MDM2))",
			want: "list() can only be the object",
		},
		{
			name: "hasMembers without a list",
			text: "p(HGNC:AKT1) hasMembers p(HGNC:MDM2)",
			want: "hasMembers requires a list(...) object",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			statement := mustParseStatement(t, tt.text)
			err := New(testDocument()).Statement(statement)
			if err == nil {
				t.Fatalf("Statement(%q) expected an error containing %q, got none", tt.text, tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Statement(%q) error = %q, want it to contain %q", tt.text, err.Error(), tt.want)
			}
			var semErr *Error
			if !errors.As(err, &semErr) || semErr.Code != lang.CodeSemanticMismatch {
				t.Errorf("Statement(%q) expected a semantic mismatch code, got %#v", tt.text, err)
			}
		})
	}
}

func TestValidator_NamespaceMembership(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantCode lang.Code
		want     string
	}{
		{
			name:     "undefined namespace",
			text:     "p(UNIPROT:P31749)",
			wantCode: lang.CodeUndefinedNamespace,
			want:     `namespace "UNIPROT" is not defined`,
		},
		{
			name:     "unknown value in resolved namespace",
			text:     "p(HGNC:AKT9)",
			wantCode: lang.CodeUnknownValue,
			want:     `"AKT9" is not a member`,
		},
		{
			name:     "undefined namespace inside a nested member",
			text:     "complex(p(HGNC:FOS), p(BAD:JUN))",
			wantCode: lang.CodeUndefinedNamespace,
			want:     `namespace "BAD" is not defined`,
		},
		{
			name:     "undefined namespace in a translocation endpoint",
			text:     "tloc(p(HGNC:AKT1), fromLoc(NOWHERE:inside), toLoc(GO:outside))",
			wantCode: lang.CodeUndefinedNamespace,
			want:     `namespace "NOWHERE" is not defined`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term, err := parser.ParseTerm(tt.text)
			if err != nil {
				t.Fatalf("ParseTerm(%q) returned error %v", tt.text, err)
			}
			err = New(testDocument()).Term(term)
			if err == nil {
				t.Fatalf("Term(%q) expected an error containing %q, got none", tt.text, tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Term(%q) error = %q, want it to contain %q", tt.text, err.Error(), tt.want)
			}
			var semErr *Error
			if !errors.As(err, &semErr) || semErr.Code != tt.wantCode {
				t.Errorf("Term(%q) expected code %d, got %#v", tt.text, tt.wantCode, err)
			}
		})
	}
}

func TestValidator_UnresolvedNamespaceAcceptsAnyValue(t *testing.T) {
	term, err := parser.ParseTerm("a(CHEBI:anything)")
	if err != nil {
		t.Fatalf("ParseTerm returned error %v", err)
	}
	if err := New(testDocument()).Term(term); err != nil {
		t.Fatalf("expected an unresolved namespace to accept any value, got %v", err)
	}
}
