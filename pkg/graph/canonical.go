package graph

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/graphbio/bel/pkg/common"
	"github.com/graphbio/bel/pkg/lang"
)

// CanonicalTerm renders the canonical BEL form of a term: short
// function names, variants and members in sorted order, quotes only
// where the value demands them. Two terms denote the same node exactly
// when their canonical forms match, so this string doubles as the
// intern key.
func CanonicalTerm(term *common.Term) string {
	var b strings.Builder
	writeTerm(&b, term)
	return b.String()
}

func writeTerm(b *strings.Builder, term *common.Term) {
	switch term.Type {
	case common.TermSimple:
		writeSimple(b, term)
	case common.TermComplex, common.TermComposite:
		b.WriteString(lang.ShortFunc[term.Kind])
		b.WriteByte('(')
		if term.Ref != nil {
			writeValue(b, term.Ref)
		} else {
			writeMembers(b, term.Members, true)
		}
		b.WriteByte(')')
	case common.TermReaction:
		b.WriteString(lang.FuncReactionShort)
		b.WriteByte('(')
		b.WriteString(lang.FuncReactants)
		b.WriteByte('(')
		writeMembers(b, term.Reactants, true)
		b.WriteString("), ")
		b.WriteString(lang.FuncProducts)
		b.WriteByte('(')
		writeMembers(b, term.Products, true)
		b.WriteString("))")
	case common.TermList:
		b.WriteString(lang.FuncList)
		b.WriteByte('(')
		writeMembers(b, term.Members, false)
		b.WriteByte(')')
	case common.TermActivity:
		b.WriteString(lang.FuncActivityShort)
		b.WriteByte('(')
		writeTerm(b, term.Inner)
		if term.ActivityRef != nil {
			b.WriteString(", ")
			b.WriteString(lang.FuncMolecularActShort)
			b.WriteByte('(')
			writeValue(b, term.ActivityRef)
			b.WriteByte(')')
		} else if term.Activity != "" {
			b.WriteString(", ")
			b.WriteString(lang.FuncMolecularActShort)
			b.WriteByte('(')
			b.WriteString(string(term.Activity))
			b.WriteByte(')')
		}
		b.WriteByte(')')
	case common.TermDegradation:
		b.WriteString(lang.FuncDegradationShort)
		b.WriteByte('(')
		writeTerm(b, term.Inner)
		b.WriteByte(')')
	case common.TermTranslocation:
		b.WriteString(lang.FuncTranslocationShort)
		b.WriteByte('(')
		writeTerm(b, term.Inner)
		if term.FromLoc != nil {
			b.WriteString(", ")
			b.WriteString(lang.FuncFromLoc)
			b.WriteByte('(')
			writeValue(b, term.FromLoc)
			b.WriteByte(')')
		}
		if term.ToLoc != nil {
			b.WriteString(", ")
			b.WriteString(lang.FuncToLoc)
			b.WriteByte('(')
			writeValue(b, term.ToLoc)
			b.WriteByte(')')
		}
		b.WriteByte(')')
	}
}

func writeSimple(b *strings.Builder, term *common.Term) {
	b.WriteString(lang.ShortFunc[term.Kind])
	b.WriteByte('(')
	if term.Fusion != nil {
		writeFusion(b, term.Fusion)
	} else if term.Ref != nil {
		writeValue(b, term.Ref)
	}
	for _, rendered := range renderVariants(term.Variants) {
		b.WriteString(", ")
		b.WriteString(rendered)
	}
	if term.Location != nil {
		b.WriteString(", ")
		b.WriteString(lang.FuncLocationShort)
		b.WriteByte('(')
		writeValue(b, term.Location)
		b.WriteByte(')')
	}
	b.WriteByte(')')
}

// writeMembers renders the terms comma-separated. List objects keep
// their written order; everywhere else the order is sorted so that
// complex(p(A), p(B)) and complex(p(B), p(A)) intern to one node, and
// likewise for reactants and products.
func writeMembers(b *strings.Builder, members []*common.Term, sorted bool) {
	rendered := make([]string, len(members))
	for i, member := range members {
		rendered[i] = CanonicalTerm(member)
	}
	if sorted {
		sort.Strings(rendered)
	}
	for i, member := range rendered {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(member)
	}
}

// renderVariants renders each variant call and sorts the results, so
// variant order never splits a node.
func renderVariants(variants []*common.Variant) []string {
	rendered := make([]string, len(variants))
	for i, variant := range variants {
		rendered[i] = renderVariant(variant)
	}
	sort.Strings(rendered)
	return rendered
}

func renderVariant(variant *common.Variant) string {
	var b strings.Builder
	switch variant.Type {
	case common.VariantPmod:
		b.WriteString(lang.FuncPmodShort)
		b.WriteByte('(')
		if variant.PmodRef != nil {
			writeValue(&b, variant.PmodRef)
		} else {
			b.WriteString(variant.PmodName)
		}
		if variant.AminoAcid != "" {
			b.WriteString(", ")
			b.WriteString(variant.AminoAcid)
		}
		if variant.Position > 0 {
			b.WriteString(", ")
			b.WriteString(strconv.Itoa(variant.Position))
		}
		b.WriteByte(')')
	case common.VariantHGVS:
		b.WriteString(lang.FuncVariantShort)
		b.WriteByte('(')
		b.WriteString(quote(variant.HGVS))
		b.WriteByte(')')
	case common.VariantFragment:
		b.WriteString(lang.FuncFragmentShort)
		b.WriteByte('(')
		if variant.Stop == "" {
			b.WriteString(variant.Start)
		} else {
			b.WriteString(variant.Start)
			b.WriteByte('_')
			b.WriteString(variant.Stop)
		}
		if variant.Description != "" {
			b.WriteString(", ")
			b.WriteString(quote(variant.Description))
		}
		b.WriteByte(')')
	case common.VariantSub:
		b.WriteString(lang.FuncSubLegacy)
		b.WriteByte('(')
		b.WriteString(variant.SubFrom)
		b.WriteString(", ")
		b.WriteString(strconv.Itoa(variant.Position))
		b.WriteString(", ")
		b.WriteString(variant.SubTo)
		b.WriteByte(')')
	case common.VariantTrunc:
		b.WriteString(lang.FuncTruncLegacy)
		b.WriteByte('(')
		b.WriteString(strconv.Itoa(variant.Position))
		b.WriteByte(')')
	}
	return b.String()
}

func writeFusion(b *strings.Builder, fusion *common.Fusion) {
	b.WriteString(lang.FuncFusionShort)
	b.WriteByte('(')
	writeValue(b, fusion.Partner5)
	b.WriteString(", ")
	writeFusionRange(b, fusion.Range5)
	b.WriteString(", ")
	writeValue(b, fusion.Partner3)
	b.WriteString(", ")
	writeFusionRange(b, fusion.Range3)
	b.WriteByte(')')
}

func writeFusionRange(b *strings.Builder, r *common.FusionRange) {
	if r.Missing() {
		b.WriteByte('?')
		return
	}
	b.WriteString(r.Reference)
	b.WriteByte('.')
	b.WriteString(r.Start)
	b.WriteByte('_')
	b.WriteString(r.Stop)
}

func writeValue(b *strings.Builder, value *common.NamespaceValue) {
	b.WriteString(value.Namespace)
	b.WriteByte(':')
	b.WriteString(ensureQuotes(value.Name))
}

// ensureQuotes returns name quoted unless every rune is a letter or a
// digit. Canonical output strips quotes the source did not need and
// adds the ones it forgot.
func ensureQuotes(name string) string {
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return quote(name)
		}
	}
	if name == "" {
		return `""`
	}
	return name
}

func quote(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 2)
	b.WriteByte('"')
	for i := 0; i < len(name); i++ {
		if name[i] == '"' || name[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(name[i])
	}
	b.WriteByte('"')
	return b.String()
}
