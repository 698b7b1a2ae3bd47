// Package validate checks normalized statements for semantic
// coherence: relation and term-class compatibility, and namespace
// membership against the document's resolved definitions. It runs
// after normalization so legacy-but-correctable shapes are judged in
// canonical form.
package validate

import (
	"fmt"

	"github.com/graphbio/bel/pkg/common"
	"github.com/graphbio/bel/pkg/lang"
)

// Error is a statement the validator rejected. Code is the diagnostic
// code the session records it under.
type Error struct {
	Code    lang.Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func errf(code lang.Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Validator checks statements against one document's definitions.
type Validator struct {
	document *common.Document
}

func New(document *common.Document) *Validator {
	return &Validator{document: document}
}

// Statement validates both terms and the relation between them.
// Nested statements are validated recursively; the relation between
// the outer subject and the nested statement is checked by the
// session when it builds the compound edge.
func (v *Validator) Statement(statement *common.Statement) error {
	if err := v.Term(statement.Subject); err != nil {
		return err
	}
	if statement.Nested != nil {
		return v.Statement(statement.Nested)
	}
	if statement.Object != nil {
		if err := v.Term(statement.Object); err != nil {
			return err
		}
	}
	if statement.Relation == "" {
		return nil
	}
	return v.relation(statement)
}

// termClass groups term shapes by how relations constrain them.
type termClass int

const (
	classAbundance termClass = iota
	classProcess
	classPathology
	classActivity
	classTransformation
	classReaction
	classList
)

func (c termClass) String() string {
	switch c {
	case classAbundance:
		return "an abundance"
	case classProcess:
		return "a biological process"
	case classPathology:
		return "a pathology"
	case classActivity:
		return "an activity"
	case classTransformation:
		return "a transformation"
	case classReaction:
		return "a reaction"
	case classList:
		return "a member list"
	default:
		return "an unknown term"
	}
}

func classify(term *common.Term) termClass {
	switch term.Type {
	case common.TermActivity:
		return classActivity
	case common.TermTranslocation, common.TermDegradation:
		return classTransformation
	case common.TermReaction:
		return classReaction
	case common.TermList:
		return classList
	case common.TermComplex, common.TermComposite:
		return classAbundance
	default:
		switch term.Kind {
		case lang.KindProcess:
			return classProcess
		case lang.KindPathology:
			return classPathology
		default:
			return classAbundance
		}
	}
}

// relation applies the per-relation compatibility rules.
func (v *Validator) relation(statement *common.Statement) error {
	subject := statement.Subject
	object := statement.Object
	relation := statement.Relation

	subjectClass := classify(subject)
	objectClass := classify(object)

	if subjectClass == classList {
		return errf(lang.CodeSemanticMismatch,
			"list() can only be the object of hasMembers or hasComponents")
	}
	switch relation {
	case lang.RelHasMembers, lang.RelHasComponents:
		if objectClass != classList {
			return errf(lang.CodeSemanticMismatch,
				"%s requires a list(...) object, got %s", relation, objectClass)
		}
	default:
		if objectClass == classList {
			return errf(lang.CodeSemanticMismatch,
				"list() can only be the object of hasMembers or hasComponents")
		}
	}

	switch relation {
	case lang.RelTranscribedTo:
		if subject.Kind != lang.KindGene || subjectClass != classAbundance {
			return errf(lang.CodeSemanticMismatch,
				"transcribedTo requires a gene subject, got %s", describe(subject))
		}
		if object.Kind != lang.KindRNA && object.Kind != lang.KindMiRNA || objectClass != classAbundance {
			return errf(lang.CodeSemanticMismatch,
				"transcribedTo requires an RNA or miRNA object, got %s", describe(object))
		}
	case lang.RelTranslatedTo:
		if subject.Kind != lang.KindRNA || subjectClass != classAbundance {
			return errf(lang.CodeSemanticMismatch,
				"translatedTo requires an RNA subject, got %s", describe(subject))
		}
		if object.Kind != lang.KindProtein || objectClass != classAbundance {
			return errf(lang.CodeSemanticMismatch,
				"translatedTo requires a protein object, got %s", describe(object))
		}
	case lang.RelOrthologous:
		if subject.Kind != object.Kind || subjectClass != classAbundance || objectClass != classAbundance {
			return errf(lang.CodeSemanticMismatch,
				"orthologous requires two abundances of the same kind, got %s and %s",
				describe(subject), describe(object))
		}
	case lang.RelHasVariant:
		switch subject.Kind {
		case lang.KindGene, lang.KindRNA, lang.KindMiRNA, lang.KindProtein:
		default:
			return errf(lang.CodeSemanticMismatch,
				"hasVariant requires a gene, RNA, miRNA, or protein subject, got %s", describe(subject))
		}
		if object.Kind != subject.Kind {
			return errf(lang.CodeSemanticMismatch,
				"hasVariant requires subject and object of the same kind, got %s and %s",
				describe(subject), describe(object))
		}
	case lang.RelHasMember, lang.RelHasMembers:
		if subjectClass != classAbundance {
			return errf(lang.CodeSemanticMismatch,
				"%s requires an abundance subject, got %s", relation, subjectClass)
		}
		if relation == lang.RelHasMember && objectClass != classAbundance {
			return errf(lang.CodeSemanticMismatch,
				"%s requires an abundance object, got %s", relation, objectClass)
		}
	case lang.RelHasComponent, lang.RelHasComponents:
		if subject.Kind != lang.KindComplex && subject.Kind != lang.KindComposite {
			return errf(lang.CodeSemanticMismatch,
				"%s requires a complex or composite subject, got %s", relation, describe(subject))
		}
	case lang.RelBiomarkerFor, lang.RelPrognosticFor:
		switch objectClass {
		case classProcess, classPathology, classActivity:
		default:
			return errf(lang.CodeSemanticMismatch,
				"%s requires a process object, got %s", relation, objectClass)
		}
	case lang.RelRateLimiting:
		switch subjectClass {
		case classProcess, classActivity, classTransformation, classReaction:
		default:
			return errf(lang.CodeSemanticMismatch,
				"rateLimitingStepOf requires a process, activity, or transformation subject, got %s",
				subjectClass)
		}
		if objectClass != classProcess {
			return errf(lang.CodeSemanticMismatch,
				"rateLimitingStepOf requires a biological process object, got %s", objectClass)
		}
	case lang.RelSubProcessOf:
		switch subjectClass {
		case classProcess, classPathology, classActivity, classTransformation, classReaction:
		default:
			return errf(lang.CodeSemanticMismatch,
				"subProcessOf requires a process, activity, or transformation subject, got %s",
				subjectClass)
		}
		switch objectClass {
		case classProcess, classPathology, classActivity:
		default:
			return errf(lang.CodeSemanticMismatch,
				"subProcessOf requires a process object, got %s", objectClass)
		}
	}
	return nil
}

// describe names a term for mismatch messages.
func describe(term *common.Term) string {
	if c := classify(term); c != classAbundance {
		return c.String()
	}
	if term.Kind != "" {
		return string(term.Kind)
	}
	return "an abundance"
}

// Term checks every namespace value in the term against the
// document's definitions.
func (v *Validator) Term(term *common.Term) error {
	if term == nil {
		return nil
	}
	values := []*common.NamespaceValue{term.Ref, term.Location, term.ActivityRef, term.FromLoc, term.ToLoc}
	if term.Fusion != nil {
		values = append(values, term.Fusion.Partner5, term.Fusion.Partner3)
	}
	for _, variant := range term.Variants {
		values = append(values, variant.PmodRef)
	}
	for _, value := range values {
		if err := v.namespaceValue(value); err != nil {
			return err
		}
	}

	if err := v.Term(term.Inner); err != nil {
		return err
	}
	for _, member := range term.Members {
		if err := v.Term(member); err != nil {
			return err
		}
	}
	for _, member := range term.Reactants {
		if err := v.Term(member); err != nil {
			return err
		}
	}
	for _, member := range term.Products {
		if err := v.Term(member); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) namespaceValue(value *common.NamespaceValue) error {
	if value == nil {
		return nil
	}
	definition, ok := v.document.Namespaces[value.Namespace]
	if !ok {
		return errf(lang.CodeUndefinedNamespace, "namespace %q is not defined", value.Namespace)
	}
	if len(definition.Values) > 0 && !definition.Has(value.Name) {
		return errf(lang.CodeUnknownValue, "%q is not a member of namespace %q", value.Name, value.Namespace)
	}
	return nil
}
