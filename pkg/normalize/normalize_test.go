package normalize

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/graphbio/bel/pkg/common"
	"github.com/graphbio/bel/pkg/lang"
	"github.com/graphbio/bel/pkg/parser"
)

func mustParseTerm(t *testing.T, text string) *common.Term {
	t.Helper()
	term, err := parser.ParseTerm(text)
	if err != nil {
		t.Fatalf("ParseTerm(%q) returned error %v", text, err)
	}
	return term
}

func codes(warnings []Warning) []lang.Code {
	var out []lang.Code
	for _, w := range warnings {
		out = append(out, w.Code)
	}
	return out
}

func TestNormalizer_LegacyRewrites(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		canonical string
		want      []lang.Code
	}{
		{
			name:      "legacy activity",
			text:      "kin(p(HGNC:AKT1))",
			canonical: "act(p(HGNC:AKT1), ma(kin))",
			want:      []lang.Code{lang.CodeLegacyActivity},
		},
		{
			name:      "legacy long activity",
			text:      "transcriptionalActivity(p(HGNC:MYC))",
			canonical: "act(p(HGNC:MYC), ma(tscript))",
			want:      []lang.Code{lang.CodeLegacyActivity},
		},
		{
			name:      "protein substitution",
			text:      "p(HGNC:AKT1, sub(G, 308, A))",
			canonical: `p(HGNC:AKT1, var("p.Gly308Ala"))`,
			want:      []lang.Code{lang.CodeLegacyProteinSub},
		},
		{
			name:      "gene substitution",
			text:      "g(HGNC:AKT1, sub(G, 308, A))",
			canonical: `g(HGNC:AKT1, var("c.308G>A"))`,
			want:      []lang.Code{lang.CodeLegacyGeneSub},
		},
		{
			name:      "truncation",
			text:      "p(HGNC:AKT1, trunc(40))",
			canonical: `p(HGNC:AKT1, var("p.40*"))`,
			want:      []lang.Code{lang.CodeLegacyTruncation},
		},
		{
			name:      "one letter pmod",
			text:      "p(HGNC:AKT1, pmod(P, S, 473))",
			canonical: "p(HGNC:AKT1, pmod(Ph, Ser, 473))",
			want:      []lang.Code{lang.CodeLegacyPmod},
		},
		{
			name:      "secretion fills endpoints silently",
			text:      "sec(p(HGNC:IL6))",
			canonical: `tloc(p(HGNC:IL6), fromLoc(GOCC:intracellular), toLoc(GOCC:"extracellular space"))`,
			want:      nil,
		},
		{
			name:      "surface expression fills endpoints silently",
			text:      "surf(p(HGNC:FAS))",
			canonical: `tloc(p(HGNC:FAS), fromLoc(GOCC:intracellular), toLoc(GOCC:"cell surface"))`,
			want:      nil,
		},
		{
			name:      "raw translocation endpoints",
			text:      `tloc(p(HGNC:EGFR), GOCC:"cell surface", GOCC:endosome)`,
			canonical: `tloc(p(HGNC:EGFR), fromLoc(GOCC:"cell surface"), toLoc(GOCC:endosome))`,
			want:      []lang.Code{lang.CodeLegacyTranslocation},
		},
		{
			name:      "rewrite inside complex member",
			text:      "complex(p(HGNC:A, sub(G, 1, A)), p(HGNC:B))",
			canonical: `complex(p(HGNC:A, var("p.Gly1Ala")), p(HGNC:B))`,
			want:      []lang.Code{lang.CodeLegacyProteinSub},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term := mustParseTerm(t, tt.text)
			warnings, err := New(Policy{}).Term(term)
			if err != nil {
				t.Fatalf("Term(%q) returned error %v", tt.text, err)
			}
			if got := codes(warnings); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Term(%q) warnings = %v, want %v", tt.text, got, tt.want)
			}
			want := mustParseTerm(t, tt.canonical)
			if !reflect.DeepEqual(term, want) {
				t.Errorf("Term(%q) = %#v, want %#v", tt.text, term, want)
			}
		})
	}
}

func TestNormalizer_CanonicalInputUntouched(t *testing.T) {
	texts := []string{
		"p(HGNC:AKT1)",
		"act(p(HGNC:MYC), ma(tscript))",
		"p(HGNC:AKT1, pmod(Ph, Ser, 473))",
		`p(HGNC:CFTR, var("p.Phe508del"))`,
		`tloc(p(HGNC:EGFR), fromLoc(GOCC:"cell surface"), toLoc(GOCC:endosome))`,
		"complex(p(HGNC:FOS), p(HGNC:JUN))",
		"rxn(reactants(a(CHEBI:superoxide)), products(a(CHEBI:oxygen)))",
	}
	for _, text := range texts {
		t.Run(text, func(t *testing.T) {
			term := mustParseTerm(t, text)
			warnings, err := New(Policy{}).Term(term)
			if err != nil {
				t.Fatalf("Term(%q) returned error %v", text, err)
			}
			if len(warnings) != 0 {
				t.Errorf("Term(%q) produced warnings %v on canonical input", text, warnings)
			}
			if want := mustParseTerm(t, text); !reflect.DeepEqual(term, want) {
				t.Errorf("Term(%q) changed canonical input to %#v", text, term)
			}
		})
	}
}

func TestNormalizer_Rejections(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "bare translocation", text: "tloc(p(HGNC:EGFR))", want: "requires fromLoc"},
		{name: "unknown modification", text: "p(HGNC:A, pmod(Foo))", want: "unknown modification type"},
		{name: "pmod on a gene", text: "g(HGNC:A, pmod(Ph))", want: "pmod() requires a protein"},
		{name: "fragment on a gene", text: "g(HGNC:A, frag(5_20))", want: "frag() requires a protein"},
		{name: "variant on a chemical", text: `a(CHEBI:water, var("p.A1G"))`, want: "var() requires"},
		{name: "substitution on rna", text: "r(HGNC:A, sub(A, 1, G))", want: "sub() requires a gene or protein"},
		{name: "truncation on a gene", text: "g(HGNC:A, trunc(40))", want: "trunc() requires a protein"},
		{name: "unknown amino acid", text: "p(HGNC:A, pmod(Ph, Xyz, 1))", want: "unknown amino acid"},
		{name: "unknown nucleotide", text: "g(HGNC:A, sub(Q, 308, A))", want: "unknown nucleotide"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term := mustParseTerm(t, tt.text)
			_, err := New(Policy{}).Term(term)
			if err == nil {
				t.Fatalf("Term(%q) expected an error containing %q, got none", tt.text, tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Term(%q) error = %q, want it to contain %q", tt.text, err.Error(), tt.want)
			}
		})
	}
}

func TestNormalizer_BareTranslocationCode(t *testing.T) {
	term := mustParseTerm(t, "tloc(p(HGNC:EGFR))")

	_, err := New(Policy{}).Term(term)

	var normErr *Error
	if !errors.As(err, &normErr) {
		t.Fatalf("expected a *normalize.Error, got %T", err)
	}
	if normErr.Code != lang.CodeMalformedTloc {
		t.Fatalf("expected code %d, got %d", lang.CodeMalformedTloc, normErr.Code)
	}
}

func TestNormalizer_StrictLegacyRejects(t *testing.T) {
	term := mustParseTerm(t, "kin(p(HGNC:AKT1))")

	warnings, err := New(Policy{StrictLegacy: true}).Term(term)

	if err == nil {
		t.Fatal("expected strict mode to reject the legacy activity")
	}
	if !strings.Contains(err.Error(), "legacy syntax rejected") {
		t.Errorf("error = %q, want it to name the strict rejection", err.Error())
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings in strict mode, got %v", warnings)
	}
}

func TestNormalizer_LenientPmodKeepsUnknown(t *testing.T) {
	term := mustParseTerm(t, "p(HGNC:A, pmod(GlcNAc))")

	warnings, err := New(Policy{LenientPmod: true}).Term(term)

	if err != nil {
		t.Fatalf("expected the unknown modification to pass, got %v", err)
	}
	if len(warnings) != 1 || warnings[0].Code != lang.CodeLegacyPmod {
		t.Fatalf("expected one modification warning, got %v", warnings)
	}
	if term.Variants[0].PmodName != "GlcNAc" {
		t.Errorf("expected the name kept as written, got %q", term.Variants[0].PmodName)
	}
}

func TestNormalizer_StatementBothSides(t *testing.T) {
	parsed, err := parser.Parse("kin(p(HGNC:AKT1)) -> p(HGNC:MDM2, sub(S, 166, A))")
	if err != nil {
		t.Fatalf("Parse returned error %v", err)
	}

	warnings, err := New(Policy{}).Statement(parsed.Statement)
	if err != nil {
		t.Fatalf("Statement returned error %v", err)
	}

	want := []lang.Code{lang.CodeLegacyActivity, lang.CodeLegacyProteinSub}
	if got := codes(warnings); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected warnings %v, got %v", want, got)
	}
	if parsed.Statement.Subject.LegacyFunc != "" {
		t.Errorf("expected the subject legacy marker cleared, got %q", parsed.Statement.Subject.LegacyFunc)
	}
	if got := parsed.Statement.Object.Variants[0].HGVS; got != "p.Ser166Ala" {
		t.Errorf("expected the object substitution upgraded to p.Ser166Ala, got %q", got)
	}
}
