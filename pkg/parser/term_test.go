package parser

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/graphbio/bel/pkg/common"
	"github.com/graphbio/bel/pkg/lang"
)

func nsv(namespace, name string) *common.NamespaceValue {
	return &common.NamespaceValue{Namespace: namespace, Name: name}
}

func simple(kind lang.Kind, namespace, name string) *common.Term {
	return &common.Term{Type: common.TermSimple, Kind: kind, Ref: nsv(namespace, name)}
}

func TestParseTerm_Abundances(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *common.Term
	}{
		{
			name: "protein short form",
			text: "p(HGNC:AKT1)",
			want: simple(lang.KindProtein, "HGNC", "AKT1"),
		},
		{
			name: "protein long form",
			text: "proteinAbundance(HGNC:AKT1)",
			want: simple(lang.KindProtein, "HGNC", "AKT1"),
		},
		{
			name: "quoted name",
			text: `a(CHEBI:"oxygen atom")`,
			want: simple(lang.KindAbundance, "CHEBI", "oxygen atom"),
		},
		{
			name: "micro rna long form",
			text: "microRNAAbundance(MGI:Mir21)",
			want: simple(lang.KindMiRNA, "MGI", "Mir21"),
		},
		{
			name: "whitespace between arguments",
			text: "r( HGNC : MYC )",
			want: simple(lang.KindRNA, "HGNC", "MYC"),
		},
		{
			name: "location on an abundance",
			text: `a(CHEBI:calcium, loc(GOCC:"endoplasmic reticulum"))`,
			want: &common.Term{
				Type: common.TermSimple, Kind: lang.KindAbundance,
				Ref:      nsv("CHEBI", "calcium"),
				Location: nsv("GOCC", "endoplasmic reticulum"),
			},
		},
		{
			name: "biological process",
			text: `bp(GO:"cell cycle arrest")`,
			want: simple(lang.KindProcess, "GO", "cell cycle arrest"),
		},
		{
			name: "pathology",
			text: "path(MESH:Neoplasms)",
			want: simple(lang.KindPathology, "MESH", "Neoplasms"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTerm(tt.text)
			if err != nil {
				t.Fatalf("ParseTerm(%q) returned error %v", tt.text, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseTerm(%q) = %#v, want %#v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseTerm_Variants(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []*common.Variant
	}{
		{
			name: "legacy one letter pmod",
			text: "p(HGNC:AKT1, pmod(P, S, 473))",
			want: []*common.Variant{{Type: common.VariantPmod, PmodName: "P", AminoAcid: "S", Position: 473}},
		},
		{
			name: "pmod without position",
			text: "p(HGNC:MAPK1, pmod(Ph, Thr))",
			want: []*common.Variant{{Type: common.VariantPmod, PmodName: "Ph", AminoAcid: "Thr"}},
		},
		{
			name: "namespaced pmod",
			text: "p(HGNC:AKT1, pmod(MOD:PhosRes, Ser, 473))",
			want: []*common.Variant{{Type: common.VariantPmod, PmodRef: nsv("MOD", "PhosRes"), AminoAcid: "Ser", Position: 473}},
		},
		{
			name: "quoted hgvs variant",
			text: `p(HGNC:CFTR, var("p.Phe508del"))`,
			want: []*common.Variant{{Type: common.VariantHGVS, HGVS: "p.Phe508del"}},
		},
		{
			name: "unquoted hgvs variant",
			text: "g(HGNC:AKT1, var(c.308G>A))",
			want: []*common.Variant{{Type: common.VariantHGVS, HGVS: "c.308G>A"}},
		},
		{
			name: "unknown variant marker",
			text: "p(HGNC:CFTR, var(?))",
			want: []*common.Variant{{Type: common.VariantHGVS, HGVS: "?"}},
		},
		{
			name: "fragment with range",
			text: "p(HGNC:YFG, frag(5_20))",
			want: []*common.Variant{{Type: common.VariantFragment, Start: "5", Stop: "20"}},
		},
		{
			name: "fragment with open end",
			text: "p(HGNC:YFG, frag(1_?))",
			want: []*common.Variant{{Type: common.VariantFragment, Start: "1", Stop: "?"}},
		},
		{
			name: "unknown fragment with description",
			text: `p(HGNC:YFG, frag(?, "55kD"))`,
			want: []*common.Variant{{Type: common.VariantFragment, Start: "?", Description: "55kD"}},
		},
		{
			name: "legacy substitution",
			text: "g(HGNC:AKT1, sub(G, 308, A))",
			want: []*common.Variant{{Type: common.VariantSub, SubFrom: "G", Position: 308, SubTo: "A"}},
		},
		{
			name: "legacy truncation",
			text: "p(HGNC:AKT1, trunc(40))",
			want: []*common.Variant{{Type: common.VariantTrunc, Position: 40}},
		},
		{
			name: "stacked variants keep order",
			text: "p(HGNC:AKT1, pmod(P, S, 473), pmod(P, T, 308))",
			want: []*common.Variant{
				{Type: common.VariantPmod, PmodName: "P", AminoAcid: "S", Position: 473},
				{Type: common.VariantPmod, PmodName: "P", AminoAcid: "T", Position: 308},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTerm(tt.text)
			if err != nil {
				t.Fatalf("ParseTerm(%q) returned error %v", tt.text, err)
			}
			if !reflect.DeepEqual(got.Variants, tt.want) {
				t.Errorf("ParseTerm(%q).Variants = %#v, want %#v", tt.text, got.Variants, tt.want)
			}
		})
	}
}

func TestParseTerm_Fusions(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *common.Term
	}{
		{
			name: "modern fusion with unquoted ranges",
			text: "p(fus(HGNC:TMPRSS2, p.1_79, HGNC:ERG, p.312_5034))",
			want: &common.Term{
				Type: common.TermSimple, Kind: lang.KindProtein,
				Fusion: &common.Fusion{
					Partner5: nsv("HGNC", "TMPRSS2"),
					Range5:   &common.FusionRange{Reference: "p", Start: "1", Stop: "79"},
					Partner3: nsv("HGNC", "ERG"),
					Range3:   &common.FusionRange{Reference: "p", Start: "312", Stop: "5034"},
				},
			},
		},
		{
			name: "modern fusion with quoted ranges",
			text: `r(fus(HGNC:TMPRSS2, "r.1_79", HGNC:ERG, "r.312_5034"))`,
			want: &common.Term{
				Type: common.TermSimple, Kind: lang.KindRNA,
				Fusion: &common.Fusion{
					Partner5: nsv("HGNC", "TMPRSS2"),
					Range5:   &common.FusionRange{Reference: "r", Start: "1", Stop: "79"},
					Partner3: nsv("HGNC", "ERG"),
					Range3:   &common.FusionRange{Reference: "r", Start: "312", Stop: "5034"},
				},
			},
		},
		{
			name: "modern fusion with missing ranges",
			text: "g(fus(HGNC:BCR, ?, HGNC:JAK2, ?))",
			want: &common.Term{
				Type: common.TermSimple, Kind: lang.KindGene,
				Fusion: &common.Fusion{
					Partner5: nsv("HGNC", "BCR"),
					Partner3: nsv("HGNC", "JAK2"),
				},
			},
		},
		{
			name: "legacy gene fusion",
			text: "g(HGNC:BCR, fus(HGNC:JAK2, 1875, 2626))",
			want: &common.Term{
				Type: common.TermSimple, Kind: lang.KindGene,
				Fusion: &common.Fusion{
					Partner5: nsv("HGNC", "BCR"),
					Range5:   &common.FusionRange{Reference: "c", Start: "?", Stop: "1875"},
					Partner3: nsv("HGNC", "JAK2"),
					Range3:   &common.FusionRange{Reference: "c", Start: "2626", Stop: "?"},
				},
			},
		},
		{
			name: "legacy protein fusion uses protein coordinates",
			text: "p(HGNC:BCR, fus(HGNC:JAK2, 1875, 2626))",
			want: &common.Term{
				Type: common.TermSimple, Kind: lang.KindProtein,
				Fusion: &common.Fusion{
					Partner5: nsv("HGNC", "BCR"),
					Range5:   &common.FusionRange{Reference: "p", Start: "?", Stop: "1875"},
					Partner3: nsv("HGNC", "JAK2"),
					Range3:   &common.FusionRange{Reference: "p", Start: "2626", Stop: "?"},
				},
			},
		},
		{
			name: "legacy fusion with unknown breakpoints",
			text: "r(HGNC:BCR, fus(HGNC:JAK2, ?, ?))",
			want: &common.Term{
				Type: common.TermSimple, Kind: lang.KindRNA,
				Fusion: &common.Fusion{
					Partner5: nsv("HGNC", "BCR"),
					Range5:   &common.FusionRange{Reference: "r", Start: "?", Stop: "?"},
					Partner3: nsv("HGNC", "JAK2"),
					Range3:   &common.FusionRange{Reference: "r", Start: "?", Stop: "?"},
				},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTerm(tt.text)
			if err != nil {
				t.Fatalf("ParseTerm(%q) returned error %v", tt.text, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseTerm(%q) = %#v, want %#v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseTerm_ListsAndReactions(t *testing.T) {
	fos := simple(lang.KindProtein, "HGNC", "FOS")
	jun := simple(lang.KindProtein, "HGNC", "JUN")

	tests := []struct {
		name string
		text string
		want *common.Term
	}{
		{
			name: "named complex",
			text: `complex(SCOMP:"AP-1 Complex")`,
			want: &common.Term{Type: common.TermComplex, Kind: lang.KindComplex, Ref: nsv("SCOMP", "AP-1 Complex")},
		},
		{
			name: "enumerated complex",
			text: "complex(p(HGNC:FOS), p(HGNC:JUN))",
			want: &common.Term{Type: common.TermComplex, Kind: lang.KindComplex, Members: []*common.Term{fos, jun}},
		},
		{
			name: "complex with location",
			text: "complex(p(HGNC:FOS), p(HGNC:JUN), loc(GOCC:nucleus))",
			want: &common.Term{
				Type: common.TermComplex, Kind: lang.KindComplex,
				Members:  []*common.Term{fos, jun},
				Location: nsv("GOCC", "nucleus"),
			},
		},
		{
			name: "composite",
			text: "composite(a(SCHEM:Lipopolysaccharide), p(MGI:Ifng))",
			want: &common.Term{
				Type: common.TermComposite, Kind: lang.KindComposite,
				Members: []*common.Term{
					simple(lang.KindAbundance, "SCHEM", "Lipopolysaccharide"),
					simple(lang.KindProtein, "MGI", "Ifng"),
				},
			},
		},
		{
			name: "reaction",
			text: `rxn(reactants(a(CHEBI:superoxide)), products(a(CHEBI:"hydrogen peroxide"), a(CHEBI:oxygen)))`,
			want: &common.Term{
				Type: common.TermReaction, Kind: lang.KindReaction,
				Reactants: []*common.Term{simple(lang.KindAbundance, "CHEBI", "superoxide")},
				Products: []*common.Term{
					simple(lang.KindAbundance, "CHEBI", "hydrogen peroxide"),
					simple(lang.KindAbundance, "CHEBI", "oxygen"),
				},
			},
		},
		{
			name: "member list",
			text: "list(p(HGNC:FOS), p(HGNC:JUN))",
			want: &common.Term{Type: common.TermList, Members: []*common.Term{fos, jun}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTerm(tt.text)
			if err != nil {
				t.Fatalf("ParseTerm(%q) returned error %v", tt.text, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseTerm(%q) = %#v, want %#v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseTerm_Wrappers(t *testing.T) {
	akt1 := simple(lang.KindProtein, "HGNC", "AKT1")
	egfr := simple(lang.KindProtein, "HGNC", "EGFR")

	tests := []struct {
		name string
		text string
		want *common.Term
	}{
		{
			name: "plain activity",
			text: "act(p(HGNC:AKT1))",
			want: &common.Term{Type: common.TermActivity, Inner: akt1},
		},
		{
			name: "activity with default namespace",
			text: "act(p(HGNC:AKT1), ma(kin))",
			want: &common.Term{Type: common.TermActivity, Inner: akt1, Activity: lang.ActivityKinase},
		},
		{
			name: "activity with long molecular activity",
			text: "activity(p(HGNC:AKT1), molecularActivity(tscript))",
			want: &common.Term{Type: common.TermActivity, Inner: akt1, Activity: lang.ActivityTranscription},
		},
		{
			name: "activity with namespaced molecular activity",
			text: `act(p(HGNC:AKT1), ma(GO:"kinase activity"))`,
			want: &common.Term{Type: common.TermActivity, Inner: akt1, ActivityRef: nsv("GO", "kinase activity")},
		},
		{
			name: "legacy kinase activity",
			text: "kin(p(HGNC:AKT1))",
			want: &common.Term{Type: common.TermActivity, Inner: akt1, Activity: lang.ActivityKinase, LegacyFunc: "kin"},
		},
		{
			name: "legacy long activity",
			text: "phosphataseActivity(p(HGNC:PTEN))",
			want: &common.Term{
				Type: common.TermActivity, Inner: simple(lang.KindProtein, "HGNC", "PTEN"),
				Activity: lang.ActivityPhosphatase, LegacyFunc: "phosphataseActivity",
			},
		},
		{
			name: "degradation",
			text: "deg(r(HGNC:MYC))",
			want: &common.Term{Type: common.TermDegradation, Inner: simple(lang.KindRNA, "HGNC", "MYC")},
		},
		{
			name: "canonical translocation",
			text: `tloc(p(HGNC:EGFR), fromLoc(GOCC:"cell surface"), toLoc(GOCC:endosome))`,
			want: &common.Term{
				Type: common.TermTranslocation, Inner: egfr,
				FromLoc: nsv("GOCC", "cell surface"),
				ToLoc:   nsv("GOCC", "endosome"),
			},
		},
		{
			name: "raw endpoint translocation",
			text: `tloc(p(HGNC:EGFR), GOCC:"cell surface", GOCC:endosome)`,
			want: &common.Term{
				Type: common.TermTranslocation, Inner: egfr,
				FromLoc:    nsv("GOCC", "cell surface"),
				ToLoc:      nsv("GOCC", "endosome"),
				LegacyFunc: "tloc",
			},
		},
		{
			name: "bare translocation",
			text: "tloc(p(HGNC:EGFR))",
			want: &common.Term{Type: common.TermTranslocation, Inner: egfr, LegacyFunc: "tloc"},
		},
		{
			name: "secretion",
			text: "sec(p(HGNC:IL6))",
			want: &common.Term{
				Type: common.TermTranslocation, Inner: simple(lang.KindProtein, "HGNC", "IL6"),
				LegacyFunc: "sec",
			},
		},
		{
			name: "surface expression long form",
			text: "cellSurfaceExpression(p(HGNC:FAS))",
			want: &common.Term{
				Type: common.TermTranslocation, Inner: simple(lang.KindProtein, "HGNC", "FAS"),
				LegacyFunc: "cellSurfaceExpression",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTerm(tt.text)
			if err != nil {
				t.Fatalf("ParseTerm(%q) returned error %v", tt.text, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseTerm(%q) = %#v, want %#v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseTerm_Rejections(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "unrecognized function", text: "foo(HGNC:A)", want: "unrecognized function"},
		{name: "unclosed term", text: "p(HGNC:AKT1", want: "expected ) to close term"},
		{name: "missing namespace separator", text: "p(AKT1)", want: "expected : after namespace"},
		{name: "process with variant", text: "bp(GO:apoptosis, pmod(P))", want: "does not take variants"},
		{name: "process with location", text: "bp(GO:apoptosis, loc(GOCC:cytoplasm))", want: "does not take a location"},
		{name: "activity of a process", text: "act(bp(GO:apoptosis))", want: "require an abundance"},
		{name: "stacked wrappers", text: "deg(act(p(HGNC:A)))", want: "cannot wrap each other"},
		{name: "process inside a complex", text: "complex(p(HGNC:FOS), bp(GO:apoptosis))", want: "not processes"},
		{name: "fusion on a chemical", text: "a(fus(CHEBI:x, ?, CHEBI:y, ?))", want: "fusions require"},
		{name: "variant after fusion", text: "p(HGNC:A, fus(HGNC:B, 1, 2), pmod(P))", want: "fusions do not take variants"},
		{name: "reaction without products", text: "rxn(reactants(p(HGNC:A)))", want: "rxn requires reactants and products"},
		{name: "bad pmod position", text: "p(HGNC:A, pmod(P, S, zero))", want: "not a positive number"},
		{name: "bad fusion range", text: `p(fus(HGNC:A, "x.1_2", HGNC:B, ?))`, want: "fusion range"},
		{name: "empty composite", text: "composite(SCHEM:Lipopolysaccharide)", want: "composite requires member terms"},
		{name: "trailing tokens", text: "p(HGNC:AKT1))", want: "unexpected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTerm(tt.text)
			if err == nil {
				t.Fatalf("ParseTerm(%q) expected an error containing %q, got none", tt.text, tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("ParseTerm(%q) error = %q, want it to contain %q", tt.text, err.Error(), tt.want)
			}
		})
	}
}

func TestParseTerm_MalformedTermCarriesOffendingText(t *testing.T) {
	_, err := ParseTerm("p(HGNC:AKT1, foo(1))")
	if err == nil {
		t.Fatal("expected an error for an unknown modifier")
	}

	var termErr *TermError
	if !errors.As(err, &termErr) {
		t.Fatalf("expected a *TermError, got %T", err)
	}
	if termErr.Offending == "" {
		t.Fatal("expected the offending substring to be recorded")
	}
	if !strings.HasPrefix(termErr.Offending, "p(HGNC:AKT1") {
		t.Errorf("expected the offending text to start at the term, got %q", termErr.Offending)
	}
}
