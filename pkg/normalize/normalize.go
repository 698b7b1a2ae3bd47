// Package normalize rewrites legacy BEL shapes into canonical form.
// The parser hands over raw term ASTs with legacy constructs preserved
// as written; this package upgrades them in place and reports a
// warning for every rewrite. A legacy-looking shape that cannot be
// rewritten unambiguously is an error, never a silent drop.
package normalize

import (
	"fmt"
	"strings"

	"github.com/graphbio/bel/pkg/common"
	"github.com/graphbio/bel/pkg/lang"
)

// Policy tunes how the normalizer treats non-canonical input.
type Policy struct {
	// StrictLegacy rejects legacy constructs outright instead of
	// rewriting them with a warning.
	StrictLegacy bool

	// LenientPmod keeps unknown modification types with a warning
	// instead of failing the term.
	LenientPmod bool
}

// Warning is one legacy rewrite the normalizer performed. The caller
// attaches line context when turning it into a diagnostic.
type Warning struct {
	Code    lang.Code
	Message string
}

// Error is a term the normalizer could not make canonical.
type Error struct {
	Code    lang.Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Normalizer applies the rewrite rules under one policy. It is
// stateless and safe for concurrent use.
type Normalizer struct {
	policy Policy
}

func New(policy Policy) *Normalizer {
	return &Normalizer{policy: policy}
}

// Statement normalizes the subject, object, and any nested statement
// in place.
func (n *Normalizer) Statement(statement *common.Statement) ([]Warning, error) {
	r := &run{policy: n.policy}
	err := r.statement(statement)
	return r.warnings, err
}

// Term normalizes a single term in place.
func (n *Normalizer) Term(term *common.Term) ([]Warning, error) {
	r := &run{policy: n.policy}
	err := r.term(term)
	return r.warnings, err
}

type run struct {
	policy   Policy
	warnings []Warning
}

// warnf records a legacy rewrite, or fails it under StrictLegacy.
func (r *run) warnf(code lang.Code, format string, args ...any) error {
	message := fmt.Sprintf(format, args...)
	if r.policy.StrictLegacy {
		return &Error{Code: lang.CodeMalformedTerm, Message: "legacy syntax rejected: " + message}
	}
	r.warnings = append(r.warnings, Warning{Code: code, Message: message})
	return nil
}

func errf(code lang.Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (r *run) statement(statement *common.Statement) error {
	if statement.Subject != nil {
		if err := r.term(statement.Subject); err != nil {
			return err
		}
	}
	if statement.Object != nil {
		if err := r.term(statement.Object); err != nil {
			return err
		}
	}
	if statement.Nested != nil {
		return r.statement(statement.Nested)
	}
	return nil
}

func (r *run) term(term *common.Term) error {
	switch term.Type {
	case common.TermSimple:
		return r.simple(term)
	case common.TermComplex, common.TermComposite, common.TermList:
		return r.each(term.Members)
	case common.TermReaction:
		if err := r.each(term.Reactants); err != nil {
			return err
		}
		return r.each(term.Products)
	case common.TermActivity:
		if term.LegacyFunc != "" {
			err := r.warnf(lang.CodeLegacyActivity,
				"legacy activity %s() upgraded to act(..., ma(%s))", term.LegacyFunc, term.Activity)
			if err != nil {
				return err
			}
			term.LegacyFunc = ""
		}
		return r.term(term.Inner)
	case common.TermDegradation:
		return r.term(term.Inner)
	case common.TermTranslocation:
		return r.translocation(term)
	default:
		return errf(lang.CodeMalformedTerm, "unknown term shape %d", term.Type)
	}
}

func (r *run) each(members []*common.Term) error {
	for _, member := range members {
		if err := r.term(member); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) simple(term *common.Term) error {
	for _, variant := range term.Variants {
		if err := r.variant(term, variant); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) variant(parent *common.Term, variant *common.Variant) error {
	switch variant.Type {
	case common.VariantPmod:
		return r.pmod(parent, variant)
	case common.VariantHGVS:
		switch parent.Kind {
		case lang.KindGene, lang.KindRNA, lang.KindMiRNA, lang.KindProtein:
			return nil
		default:
			return errf(lang.CodeMalformedTerm, "var() requires a gene, RNA, miRNA, or protein")
		}
	case common.VariantFragment:
		if parent.Kind != lang.KindProtein {
			return errf(lang.CodeMalformedTerm, "frag() requires a protein")
		}
		return nil
	case common.VariantSub:
		return r.substitution(parent, variant)
	case common.VariantTrunc:
		return r.truncation(parent, variant)
	default:
		return errf(lang.CodeMalformedTerm, "unknown variant shape %d", variant.Type)
	}
}

func (r *run) pmod(parent *common.Term, variant *common.Variant) error {
	if parent.Kind != lang.KindProtein {
		return errf(lang.CodeMalformedTerm, "pmod() requires a protein")
	}

	if variant.PmodRef == nil {
		if long, ok := lang.PmodLegacy[variant.PmodName]; ok {
			err := r.warnf(lang.CodeLegacyPmod,
				"legacy modification code %q upgraded to %q", variant.PmodName, long)
			if err != nil {
				return err
			}
			variant.PmodName = long
		} else if !lang.PmodNamespace[variant.PmodName] {
			if !r.policy.LenientPmod {
				return errf(lang.CodeMalformedTerm, "unknown modification type %q", variant.PmodName)
			}
			r.warnings = append(r.warnings, Warning{
				Code:    lang.CodeLegacyPmod,
				Message: fmt.Sprintf("non-standard modification type %q kept as written", variant.PmodName),
			})
		}
	}

	if variant.AminoAcid != "" {
		three, err := aminoAcidThree(variant.AminoAcid)
		if err != nil {
			return err
		}
		variant.AminoAcid = three
	}
	return nil
}

func (r *run) substitution(parent *common.Term, variant *common.Variant) error {
	var upgraded string
	switch parent.Kind {
	case lang.KindProtein:
		from, err := aminoAcidThree(variant.SubFrom)
		if err != nil {
			return err
		}
		to, err := aminoAcidThree(variant.SubTo)
		if err != nil {
			return err
		}
		upgraded = fmt.Sprintf("p.%s%d%s", from, variant.Position, to)
		err = r.warnf(lang.CodeLegacyProteinSub,
			"legacy protein substitution upgraded to var(%q)", upgraded)
		if err != nil {
			return err
		}
	case lang.KindGene:
		if err := checkNucleotides("ACGT", variant.SubFrom, variant.SubTo); err != nil {
			return err
		}
		upgraded = fmt.Sprintf("c.%d%s>%s", variant.Position, variant.SubFrom, variant.SubTo)
		err := r.warnf(lang.CodeLegacyGeneSub,
			"legacy gene substitution upgraded to var(%q)", upgraded)
		if err != nil {
			return err
		}
	default:
		return errf(lang.CodeMalformedTerm, "sub() requires a gene or protein")
	}

	variant.Type = common.VariantHGVS
	variant.HGVS = upgraded
	variant.SubFrom, variant.SubTo = "", ""
	variant.Position = 0
	return nil
}

func (r *run) truncation(parent *common.Term, variant *common.Variant) error {
	if parent.Kind != lang.KindProtein {
		return errf(lang.CodeMalformedTerm, "trunc() requires a protein")
	}
	upgraded := fmt.Sprintf("p.%d*", variant.Position)
	err := r.warnf(lang.CodeLegacyTruncation,
		"legacy truncation upgraded to var(%q)", upgraded)
	if err != nil {
		return err
	}
	variant.Type = common.VariantHGVS
	variant.HGVS = upgraded
	variant.Position = 0
	return nil
}

// translocation resolves the tloc family. Secretion and surface
// expression get their canonical GO cellular component endpoints; the
// raw two-location form is upgraded with a warning; the bare form has
// no recoverable endpoints and fails.
func (r *run) translocation(term *common.Term) error {
	switch term.LegacyFunc {
	case "":
	case lang.FuncSecretionShort, lang.FuncSecretionLong:
		term.FromLoc = &common.NamespaceValue{Namespace: lang.NamespaceGOCC, Name: lang.LocIntracellular}
		term.ToLoc = &common.NamespaceValue{Namespace: lang.NamespaceGOCC, Name: lang.LocExtracellularSpace}
		term.LegacyFunc = ""
	case lang.FuncSurfaceShort, lang.FuncSurfaceLong:
		term.FromLoc = &common.NamespaceValue{Namespace: lang.NamespaceGOCC, Name: lang.LocIntracellular}
		term.ToLoc = &common.NamespaceValue{Namespace: lang.NamespaceGOCC, Name: lang.LocCellSurface}
		term.LegacyFunc = ""
	default:
		if term.FromLoc == nil || term.ToLoc == nil {
			return errf(lang.CodeMalformedTloc,
				"translocation requires fromLoc(...) and toLoc(...) endpoints")
		}
		err := r.warnf(lang.CodeLegacyTranslocation,
			"legacy translocation endpoints wrapped in fromLoc()/toLoc()")
		if err != nil {
			return err
		}
		term.LegacyFunc = ""
	}
	return r.term(term.Inner)
}

func aminoAcidThree(code string) (string, error) {
	if three, ok := lang.AminoAcid[code]; ok {
		return three, nil
	}
	if lang.IsAminoAcidThree(code) {
		return code, nil
	}
	return "", errf(lang.CodeMalformedTerm, "unknown amino acid %q", code)
}

func checkNucleotides(alphabet string, bases ...string) error {
	for _, base := range bases {
		if len(base) != 1 || !strings.Contains(alphabet, base) {
			return errf(lang.CodeMalformedTerm, "unknown nucleotide %q", base)
		}
	}
	return nil
}
