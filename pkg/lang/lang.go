// Package lang defines the BEL vocabulary shared by the parser, the
// normalizer, the validator, and the canonical writer: function
// spellings, relation keywords and their symbol aliases, molecular
// activities, amino acid codes, protein modification names, and the
// reserved document keys.
//
// The tables are data, not behavior. Every accepted spelling maps to
// exactly one canonical form so that two documents written in
// different dialects compile to identical graphs.
package lang

// Kind identifies the biological class of a term after normalization.
type Kind string

const (
	KindAbundance Kind = "Abundance"
	KindGene      Kind = "Gene"
	KindRNA       Kind = "RNA"
	KindMiRNA     Kind = "miRNA"
	KindProtein   Kind = "Protein"
	KindProcess   Kind = "Process"
	KindPathology Kind = "Pathology"
	KindComplex   Kind = "Complex"
	KindComposite Kind = "Composite"
	KindReaction  Kind = "Reaction"
)

// KindForFunc maps every accepted spelling of a simple abundance or
// process function to the kind it produces. Both the short and the
// long spelling of each function are listed; matching is
// case-sensitive.
var KindForFunc = map[string]Kind{
	"a": KindAbundance, "abundance": KindAbundance,
	"g": KindGene, "geneAbundance": KindGene,
	"m": KindMiRNA, "microRNAAbundance": KindMiRNA,
	"p": KindProtein, "proteinAbundance": KindProtein,
	"r": KindRNA, "rnaAbundance": KindRNA,
	"bp": KindProcess, "biologicalProcess": KindProcess,
	"path": KindPathology, "pathology": KindPathology,
}

// KindForListFunc maps the spellings of the list functions to their
// kinds. Complexes may also be written with a single namespace value
// instead of members; composites always take members.
var KindForListFunc = map[string]Kind{
	"complex": KindComplex, "complexAbundance": KindComplex,
	"composite": KindComposite, "compositeAbundance": KindComposite,
}

// ShortFunc maps a kind to the short function spelling used in
// canonical BEL output.
var ShortFunc = map[Kind]string{
	KindAbundance: "a",
	KindGene:      "g",
	KindMiRNA:     "m",
	KindProtein:   "p",
	KindRNA:       "r",
	KindProcess:   "bp",
	KindPathology: "path",
	KindComplex:   "complex",
	KindComposite: "composite",
	KindReaction:  "rxn",
}

// Reaction spellings.
const (
	FuncReactionShort = "rxn"
	FuncReactionLong  = "reaction"
	FuncReactants     = "reactants"
	FuncProducts      = "products"
)

// Fusion spellings.
const (
	FuncFusionShort = "fus"
	FuncFusionLong  = "fusion"
)

// Process wrapper spellings. These never contribute to node identity;
// the graph builder lifts them onto the edge.
const (
	FuncActivityShort      = "act"
	FuncActivityLong       = "activity"
	FuncMolecularActShort  = "ma"
	FuncMolecularActLong   = "molecularActivity"
	FuncDegradationShort   = "deg"
	FuncDegradationLong    = "degradation"
	FuncTranslocationShort = "tloc"
	FuncTranslocationLong  = "translocation"
	FuncSecretionShort     = "sec"
	FuncSecretionLong      = "cellSecretion"
	FuncSurfaceShort       = "surf"
	FuncSurfaceLong        = "cellSurfaceExpression"
	FuncFromLoc            = "fromLoc"
	FuncToLoc              = "toLoc"
)

// Term modifier spellings.
const (
	FuncPmodShort     = "pmod"
	FuncPmodLong      = "proteinModification"
	FuncVariantShort  = "var"
	FuncVariantLong   = "variant"
	FuncFragmentShort = "frag"
	FuncFragmentLong  = "fragment"
	FuncLocationShort = "loc"
	FuncLocationLong  = "location"
	FuncSubLegacy     = "sub"
	FuncTruncLegacy   = "trunc"
	FuncList          = "list"
)

// Activity is the canonical short label of a molecular activity, as
// written inside ma() in canonical output.
type Activity string

const (
	ActivityCatalytic     Activity = "cat"
	ActivityChaperone     Activity = "chap"
	ActivityGTPBound      Activity = "gtp"
	ActivityKinase        Activity = "kin"
	ActivityPeptidase     Activity = "pep"
	ActivityPhosphatase   Activity = "phos"
	ActivityRibosylation  Activity = "ribo"
	ActivityTranscription Activity = "tscript"
	ActivityTransport     Activity = "tport"
)

// ActivityForFunc maps every accepted activity spelling, including the
// legacy single-function forms such as kin(...) and
// kinaseActivity(...), to its canonical label.
var ActivityForFunc = map[string]Activity{
	"cat": ActivityCatalytic, "catalyticActivity": ActivityCatalytic,
	"chap": ActivityChaperone, "chaperoneActivity": ActivityChaperone,
	"gtp": ActivityGTPBound, "gtpBoundActivity": ActivityGTPBound,
	"kin": ActivityKinase, "kinaseActivity": ActivityKinase,
	"pep": ActivityPeptidase, "peptidaseActivity": ActivityPeptidase,
	"phos": ActivityPhosphatase, "phosphataseActivity": ActivityPhosphatase,
	"ribo": ActivityRibosylation, "ribosylationActivity": ActivityRibosylation,
	"tscript": ActivityTranscription, "transcriptionalActivity": ActivityTranscription,
	"tport": ActivityTransport, "transportActivity": ActivityTransport,
}

// Relation is the canonical keyword of a BEL relation.
type Relation string

const (
	RelIncreases         Relation = "increases"
	RelDirectlyIncreases Relation = "directlyIncreases"
	RelDecreases         Relation = "decreases"
	RelDirectlyDecreases Relation = "directlyDecreases"
	RelCausesNoChange    Relation = "causesNoChange"
	RelRegulates         Relation = "regulates"
	RelNegCorrelation    Relation = "negativeCorrelation"
	RelPosCorrelation    Relation = "positiveCorrelation"
	RelAssociation       Relation = "association"
	RelOrthologous       Relation = "orthologous"
	RelAnalogous         Relation = "analogous"
	RelTranscribedTo     Relation = "transcribedTo"
	RelTranslatedTo      Relation = "translatedTo"
	RelBiomarkerFor      Relation = "biomarkerFor"
	RelPrognosticFor     Relation = "prognosticBiomarkerFor"
	RelRateLimiting      Relation = "rateLimitingStepOf"
	RelSubProcessOf      Relation = "subProcessOf"
	RelIsA               Relation = "isA"
	RelPartOf            Relation = "partOf"
	RelHasMember         Relation = "hasMember"
	RelHasMembers        Relation = "hasMembers"
	RelHasComponent      Relation = "hasComponent"
	RelHasComponents     Relation = "hasComponents"
	RelHasVariant        Relation = "hasVariant"
	RelHasReactant       Relation = "hasReactant"
	RelHasProduct        Relation = "hasProduct"
)

// Relations maps every accepted relation spelling, keyword or symbol,
// to its canonical keyword. hasReactant and hasProduct are absent:
// they only arise structurally from interning reactions.
var Relations = map[string]Relation{
	"increases": RelIncreases, "->": RelIncreases, "→": RelIncreases,
	"directlyIncreases": RelDirectlyIncreases, "=>": RelDirectlyIncreases, "⇒": RelDirectlyIncreases,
	"decreases": RelDecreases, "-|": RelDecreases,
	"directlyDecreases": RelDirectlyDecreases, "=|": RelDirectlyDecreases,
	"causesNoChange": RelCausesNoChange, "cnc": RelCausesNoChange,
	"regulates": RelRegulates, "reg": RelRegulates,
	"negativeCorrelation": RelNegCorrelation, "neg": RelNegCorrelation,
	"positiveCorrelation": RelPosCorrelation, "pos": RelPosCorrelation,
	"association": RelAssociation, "--": RelAssociation,
	"orthologous": RelOrthologous,
	"analogous":   RelAnalogous, "analogousTo": RelAnalogous,
	"transcribedTo": RelTranscribedTo, ":>": RelTranscribedTo,
	"translatedTo": RelTranslatedTo, ">>": RelTranslatedTo,
	"biomarkerFor":           RelBiomarkerFor,
	"prognosticBiomarkerFor": RelPrognosticFor,
	"rateLimitingStepOf":     RelRateLimiting,
	"subProcessOf":           RelSubProcessOf,
	"isA":          RelIsA,
	"partOf":       RelPartOf,
	"hasMember":    RelHasMember,
	"hasMembers":   RelHasMembers,
	"hasComponent": RelHasComponent, "hasComponents": RelHasComponents,
	"hasVariant": RelHasVariant,
}

// DistributedRelation maps the two list-object relations to the
// per-element relation they distribute into.
var DistributedRelation = map[Relation]Relation{
	RelHasMembers:    RelHasMember,
	RelHasComponents: RelHasComponent,
}

// AminoAcid maps a one-letter amino acid code to the three-letter code
// used in canonical output and HGVS strings. Y maps to Try, matching
// the BEL 1.0 table this vocabulary descends from.
var AminoAcid = map[string]string{
	"A": "Ala", "R": "Arg", "N": "Asn", "D": "Asp", "C": "Cys",
	"E": "Glu", "Q": "Gln", "G": "Gly", "H": "His", "I": "Ile",
	"L": "Leu", "K": "Lys", "M": "Met", "F": "Phe", "P": "Pro",
	"S": "Ser", "T": "Thr", "W": "Trp", "Y": "Try", "V": "Val",
}

// aminoAcidThree is the reverse index of AminoAcid, built once at
// package init for membership checks on three-letter codes.
var aminoAcidThree = func() map[string]bool {
	m := make(map[string]bool, len(AminoAcid))
	for _, three := range AminoAcid {
		m[three] = true
	}
	return m
}()

// IsAminoAcidThree reports whether s is a known three-letter amino
// acid code.
func IsAminoAcidThree(s string) bool {
	return aminoAcidThree[s]
}

// PmodNamespace is the set of modification names accepted without a
// namespace prefix inside pmod().
var PmodNamespace = map[string]bool{
	"Ac": true, "ADPRib": true, "Farn": true, "Gerger": true,
	"Glyco": true, "Hy": true, "ISG": true, "Me": true,
	"Me1": true, "Me2": true, "Me3": true, "Myr": true,
	"Nedd": true, "NGlyco": true, "NO": true, "OGlyco": true,
	"Palm": true, "Ph": true, "Sulf": true, "Sumo": true,
	"Ub": true, "UbK48": true, "UbK63": true, "UbMono": true,
	"UbPoly": true,
}

// PmodLegacy maps the BEL 1.0 one-letter modification codes to their
// long names. O is not part of BEL 1.0 but appears in legacy corpora
// as nitric oxide and is carried for compatibility.
var PmodLegacy = map[string]string{
	"P": "Ph", "A": "Ac", "F": "Farn", "G": "Glyco", "H": "Hy",
	"M": "Me", "R": "ADPRib", "S": "Sumo", "U": "Ub", "O": "NO",
}

// GO cellular component terms used when rewriting cellSecretion and
// cellSurfaceExpression into translocations.
const (
	NamespaceGOCC         = "GOCC"
	LocIntracellular      = "intracellular"
	LocExtracellularSpace = "extracellular space"
	LocCellSurface        = "cell surface"

	// DefaultGOCCURL is added to a document's namespace definitions
	// when canonical output introduces GOCC terms the source document
	// never declared.
	DefaultGOCCURL = "https://arty.scai.fraunhofer.de/artifactory/bel/namespace/go-cellular-component/go-cellular-component-20170511.belns"
)

// Reserved context keys.
const (
	KeyCitation       = "Citation"
	KeyEvidence       = "Evidence"
	KeySupportingText = "SupportingText"
	KeyStatementGroup = "STATEMENT_GROUP"
)

// DocumentKey maps the lowercase form of each recognized
// SET DOCUMENT key to its canonical casing.
var DocumentKey = map[string]string{
	"name":        "Name",
	"version":     "Version",
	"description": "Description",
	"authors":     "Authors",
	"contactinfo": "ContactInfo",
	"copyright":   "Copyright",
	"disclaimer":  "Disclaimer",
	"licenses":    "Licenses",
}

// RequiredDocumentKeys must all be present in the header block before
// the first relation statement.
var RequiredDocumentKeys = []string{"Name", "Version", "Description", "Authors", "ContactInfo"}
