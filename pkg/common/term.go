package common

import (
	"github.com/graphbio/bel/pkg/lang"
)

// NamespaceValue is one NS:Name reference. Name holds the unquoted
// text; quoting is an output concern.
type NamespaceValue struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
}

// TermType discriminates the shapes a term AST node can take. The set
// is closed; every consumer switches exhaustively and treats an
// unknown value as a programming error.
type TermType int

const (
	// TermSimple is a simple or process abundance: a(), g(), m(), p(),
	// r(), bp(), path(), possibly carrying variants and a location.
	TermSimple TermType = iota + 1
	// TermComplex is complexAbundance with members, or the named form
	// with a single namespace value in Ref.
	TermComplex
	// TermComposite is compositeAbundance with members.
	TermComposite
	// TermReaction is rxn(reactants(...), products(...)).
	TermReaction
	// TermList is the list(...) object of hasMembers/hasComponents.
	TermList
	// TermActivity wraps an abundance in act()/activity() or one of
	// the legacy single-function activities.
	TermActivity
	// TermDegradation wraps an abundance in deg()/degradation().
	TermDegradation
	// TermTranslocation wraps an abundance in tloc(), sec(), or
	// surf(); after normalization FromLoc and ToLoc are always set.
	TermTranslocation
)

// Term is one node of the term AST. Exactly the fields implied by
// Type are set; the rest stay zero.
type Term struct {
	Type TermType `json:"type"`

	// Kind is the biological class for TermSimple, TermComplex,
	// TermComposite, and TermReaction.
	Kind lang.Kind `json:"kind,omitempty"`

	// Ref is the namespace value of a simple abundance or of the
	// named complex form.
	Ref *NamespaceValue `json:"ref,omitempty"`

	// Variants are the pmod/var/frag calls on a simple abundance,
	// including legacy sub and trunc until the normalizer rewrites
	// them.
	Variants []*Variant `json:"variants,omitempty"`

	// Fusion is set instead of Ref when the abundance is a fusion.
	Fusion *Fusion `json:"fusion,omitempty"`

	// Location is the loc() argument. It does not contribute to node
	// identity; the graph builder lifts it onto the edge.
	Location *NamespaceValue `json:"location,omitempty"`

	// Members holds complex, composite, and list members.
	Members []*Term `json:"members,omitempty"`

	// Reactants and Products hold reaction participants.
	Reactants []*Term `json:"reactants,omitempty"`
	Products  []*Term `json:"products,omitempty"`

	// Inner is the wrapped abundance of an activity, degradation, or
	// translocation.
	Inner *Term `json:"inner,omitempty"`

	// Activity is the molecular activity of a TermActivity, either
	// the default-namespace label (ma(kin)) or a namespaced value
	// (ma(NS:v)) in ActivityRef. Both empty means plain act(x).
	Activity    lang.Activity   `json:"activity,omitempty"`
	ActivityRef *NamespaceValue `json:"activity_ref,omitempty"`

	// FromLoc and ToLoc are the translocation endpoints.
	FromLoc *NamespaceValue `json:"from_loc,omitempty"`
	ToLoc   *NamespaceValue `json:"to_loc,omitempty"`

	// LegacyFunc records the function spelling as written for shapes
	// the normalizer rewrites: single-function activities, bare or
	// raw-endpoint translocations, sec(), and surf(). Empty on
	// canonical terms.
	LegacyFunc string `json:"-"`
}

// Wrapped reports whether the term is a process wrapper rather than
// an abundance of its own.
func (t *Term) Wrapped() bool {
	switch t.Type {
	case TermActivity, TermDegradation, TermTranslocation:
		return true
	default:
		return false
	}
}

// Unwrap returns the innermost abundance of a wrapped term, or the
// term itself.
func (t *Term) Unwrap() *Term {
	inner := t
	for inner.Wrapped() && inner.Inner != nil {
		inner = inner.Inner
	}
	return inner
}

// VariantType discriminates the modifier calls on a simple abundance.
type VariantType int

const (
	// VariantPmod is pmod()/proteinModification().
	VariantPmod VariantType = iota + 1
	// VariantHGVS is var()/variant() carrying an HGVS string.
	VariantHGVS
	// VariantFragment is frag()/fragment().
	VariantFragment
	// VariantSub is the legacy sub(ref, pos, var) call; the normalizer
	// rewrites it to VariantHGVS.
	VariantSub
	// VariantTrunc is the legacy trunc(pos) call; the normalizer
	// rewrites it to VariantHGVS.
	VariantTrunc
)

// Variant is one modifier call on a simple abundance.
type Variant struct {
	Type VariantType `json:"type"`

	// Pmod fields. PmodName is the modification name in the default
	// namespace; PmodRef is set instead for namespaced modifications.
	// Position 0 means absent.
	PmodName  string          `json:"pmod_name,omitempty"`
	PmodRef   *NamespaceValue `json:"pmod_ref,omitempty"`
	AminoAcid string          `json:"amino_acid,omitempty"`
	Position  int             `json:"position,omitempty"`

	// HGVS is the variant string of a var() call.
	HGVS string `json:"hgvs,omitempty"`

	// Fragment fields. Start and Stop hold decimal positions or "?";
	// Stop may be "*" for an open end.
	Start       string `json:"start,omitempty"`
	Stop        string `json:"stop,omitempty"`
	Description string `json:"description,omitempty"`

	// Legacy sub() fields: one-letter amino acids or nucleotides.
	SubFrom string `json:"sub_from,omitempty"`
	SubTo   string `json:"sub_to,omitempty"`
}

// FusionRange is one coordinate range of a fusion. Missing ranges
// (written as ?) leave every field empty. Start and Stop hold decimal
// positions or "?".
type FusionRange struct {
	Reference string `json:"reference,omitempty"`
	Start     string `json:"start,omitempty"`
	Stop      string `json:"stop,omitempty"`
}

// Missing reports whether the range was written as a bare ?.
func (r *FusionRange) Missing() bool {
	return r == nil || r.Reference == ""
}

// Fusion is the payload of a fusion abundance: the 5' and 3' partners
// with their breakpoint ranges.
type Fusion struct {
	Partner5 *NamespaceValue `json:"partner_5p"`
	Range5   *FusionRange    `json:"range_5p,omitempty"`
	Partner3 *NamespaceValue `json:"partner_3p"`
	Range3   *FusionRange    `json:"range_3p,omitempty"`
}
