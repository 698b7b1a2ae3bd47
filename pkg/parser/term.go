package parser

import (
	"regexp"
	"strconv"

	"github.com/graphbio/bel/pkg/common"
	"github.com/graphbio/bel/pkg/lang"
)

// ParseTerm parses a full term from text. Trailing tokens after the
// term are an error. Used directly by tools that validate single
// terms; statements go through Parse.
func ParseTerm(text string) (*common.Term, error) {
	c, err := newCursor(text)
	if err != nil {
		return nil, err
	}
	term, err := parseTerm(c)
	if err != nil {
		return nil, err
	}
	if !c.done() {
		return nil, c.errAt(0, "unexpected %s after term", c.describe())
	}
	return term, nil
}

// parseTerm dispatches on the function name.
func parseTerm(c *cursor) (*common.Term, error) {
	start := c.pos
	token, ok := c.accept(TokenWord)
	if !ok {
		return nil, c.errAt(start, "expected a function name, found %s", c.describe())
	}
	name := token.Text()

	switch name {
	case lang.FuncActivityShort, lang.FuncActivityLong:
		return parseActivity(c, start)
	case lang.FuncDegradationShort, lang.FuncDegradationLong:
		return parseDegradation(c, start)
	case lang.FuncTranslocationShort, lang.FuncTranslocationLong:
		return parseTranslocation(c, start)
	case lang.FuncSecretionShort, lang.FuncSecretionLong,
		lang.FuncSurfaceShort, lang.FuncSurfaceLong:
		return parseSecretionSurface(c, start, name)
	case lang.FuncReactionShort, lang.FuncReactionLong:
		return parseReaction(c, start)
	case lang.FuncList:
		return parseList(c, start)
	}
	if kind, ok := lang.KindForFunc[name]; ok {
		return parseSimple(c, start, kind)
	}
	if kind, ok := lang.KindForListFunc[name]; ok {
		return parseMembers(c, start, kind)
	}
	if activity, ok := lang.ActivityForFunc[name]; ok {
		return parseLegacyActivity(c, start, name, activity)
	}
	return nil, c.errAt(start, "unrecognized function %q", name)
}

// parseSimple parses a(), g(), m(), p(), r(), bp(), and path() bodies.
func parseSimple(c *cursor, start int, kind lang.Kind) (*common.Term, error) {
	if _, ok := c.accept(TokenLParen); !ok {
		return nil, c.errAt(start, "expected ( after function name, found %s", c.describe())
	}
	term := &common.Term{Type: common.TermSimple, Kind: kind}

	if fusionAhead(c) {
		if !fusionKind(kind) {
			return nil, c.errAt(start, "fusions require a gene, RNA, miRNA, or protein function")
		}
		c.next() // fus keyword
		fusion, err := parseFusionCall(c, start, kind)
		if err != nil {
			return nil, err
		}
		term.Fusion = fusion
	} else {
		ref, err := parseNamespaceValue(c, start)
		if err != nil {
			return nil, err
		}
		term.Ref = ref
	}

	for {
		if _, ok := c.accept(TokenComma); !ok {
			break
		}
		argStart := c.pos
		token, ok := c.accept(TokenWord)
		if !ok {
			return nil, c.errAt(start, "expected a modifier call, found %s", c.describe())
		}
		name := token.Text()
		switch name {
		case lang.FuncFusionShort, lang.FuncFusionLong:
			if term.Fusion != nil {
				return nil, c.errAt(start, "duplicate fusion")
			}
			if !fusionKind(kind) {
				return nil, c.errAt(start, "fusions require a gene, RNA, miRNA, or protein function")
			}
			fusion, err := parseLegacyFusion(c, argStart, kind, term.Ref)
			if err != nil {
				return nil, err
			}
			term.Ref = nil
			term.Fusion = fusion
		case lang.FuncLocationShort, lang.FuncLocationLong:
			if kind == lang.KindProcess || kind == lang.KindPathology {
				return nil, c.errAt(start, "%s does not take a location", lang.ShortFunc[kind])
			}
			if term.Location != nil {
				return nil, c.errAt(start, "duplicate location")
			}
			location, err := parseLocationCall(c, argStart)
			if err != nil {
				return nil, err
			}
			term.Location = location
		case lang.FuncPmodShort, lang.FuncPmodLong,
			lang.FuncVariantShort, lang.FuncVariantLong,
			lang.FuncFragmentShort, lang.FuncFragmentLong,
			lang.FuncSubLegacy, lang.FuncTruncLegacy:
			if kind == lang.KindProcess || kind == lang.KindPathology {
				return nil, c.errAt(start, "%s does not take variants", lang.ShortFunc[kind])
			}
			if term.Fusion != nil {
				return nil, c.errAt(start, "fusions do not take variants")
			}
			variant, err := parseVariant(c, argStart, name)
			if err != nil {
				return nil, err
			}
			term.Variants = append(term.Variants, variant)
		default:
			return nil, c.errAt(start, "unexpected argument %q", name)
		}
	}

	if _, ok := c.accept(TokenRParen); !ok {
		return nil, c.errAt(start, "expected ) to close term, found %s", c.describe())
	}
	return term, nil
}

// fusionAhead reports whether the next tokens open a fus(...) call.
func fusionAhead(c *cursor) bool {
	token := c.peek()
	if token == nil || token.Type() != TokenWord {
		return false
	}
	if token.Text() != lang.FuncFusionShort && token.Text() != lang.FuncFusionLong {
		return false
	}
	following := c.peekAt(1)
	return following != nil && following.Type() == TokenLParen
}

func fusionKind(kind lang.Kind) bool {
	switch kind {
	case lang.KindGene, lang.KindRNA, lang.KindMiRNA, lang.KindProtein:
		return true
	default:
		return false
	}
}

// parseNamespaceValue parses NS:Name or NS:"Quoted Name".
func parseNamespaceValue(c *cursor, start int) (*common.NamespaceValue, error) {
	namespace, ok := c.accept(TokenWord)
	if !ok {
		return nil, c.errAt(start, "expected a namespace value, found %s", c.describe())
	}
	if _, ok := c.accept(TokenColon); !ok {
		return nil, c.errAt(start, "expected : after namespace %q, found %s", namespace.Text(), c.describe())
	}
	switch c.peekType() {
	case TokenWord:
		return &common.NamespaceValue{Namespace: namespace.Text(), Name: c.next().Text()}, nil
	case TokenString:
		return &common.NamespaceValue{Namespace: namespace.Text(), Name: Unquote(c.next().Text())}, nil
	default:
		return nil, c.errAt(start, "expected a name after %s:, found %s", namespace.Text(), c.describe())
	}
}

// namespaceValueAhead reports whether the next tokens form NS:Name.
func namespaceValueAhead(c *cursor) bool {
	token := c.peek()
	if token == nil || token.Type() != TokenWord {
		return false
	}
	following := c.peekAt(1)
	return following != nil && following.Type() == TokenColon
}

// parseVariant parses one pmod/var/frag/sub/trunc call. The function
// name token is already consumed.
func parseVariant(c *cursor, start int, name string) (*common.Variant, error) {
	if _, ok := c.accept(TokenLParen); !ok {
		return nil, c.errAt(start, "expected ( after %s, found %s", name, c.describe())
	}
	var variant *common.Variant
	var err error
	switch name {
	case lang.FuncPmodShort, lang.FuncPmodLong:
		variant, err = parsePmodArgs(c, start)
	case lang.FuncVariantShort, lang.FuncVariantLong:
		variant, err = parseHGVSArgs(c, start)
	case lang.FuncFragmentShort, lang.FuncFragmentLong:
		variant, err = parseFragmentArgs(c, start)
	case lang.FuncSubLegacy:
		variant, err = parseSubArgs(c, start)
	case lang.FuncTruncLegacy:
		variant, err = parseTruncArgs(c, start)
	}
	if err != nil {
		return nil, err
	}
	if _, ok := c.accept(TokenRParen); !ok {
		return nil, c.errAt(start, "expected ) to close %s, found %s", name, c.describe())
	}
	return variant, nil
}

func parsePmodArgs(c *cursor, start int) (*common.Variant, error) {
	variant := &common.Variant{Type: common.VariantPmod}
	if namespaceValueAhead(c) {
		ref, err := parseNamespaceValue(c, start)
		if err != nil {
			return nil, err
		}
		variant.PmodRef = ref
	} else if token, ok := c.accept(TokenWord); ok {
		variant.PmodName = token.Text()
	} else {
		return nil, c.errAt(start, "expected a modification type, found %s", c.describe())
	}

	if _, ok := c.accept(TokenComma); !ok {
		return variant, nil
	}
	acid, ok := c.accept(TokenWord)
	if !ok {
		return nil, c.errAt(start, "expected an amino acid, found %s", c.describe())
	}
	variant.AminoAcid = acid.Text()

	if _, ok := c.accept(TokenComma); !ok {
		return variant, nil
	}
	position, ok := c.accept(TokenWord)
	if !ok {
		return nil, c.errAt(start, "expected a position, found %s", c.describe())
	}
	n, err := strconv.Atoi(position.Text())
	if err != nil || n <= 0 {
		return nil, c.errAt(start, "modification position %q is not a positive number", position.Text())
	}
	variant.Position = n
	return variant, nil
}

func parseHGVSArgs(c *cursor, start int) (*common.Variant, error) {
	switch c.peekType() {
	case TokenString:
		return &common.Variant{Type: common.VariantHGVS, HGVS: Unquote(c.next().Text())}, nil
	case TokenHGVS, TokenRange, TokenWord:
		return &common.Variant{Type: common.VariantHGVS, HGVS: c.next().Text()}, nil
	case TokenQMark:
		c.next()
		return &common.Variant{Type: common.VariantHGVS, HGVS: "?"}, nil
	default:
		return nil, c.errAt(start, "expected a variant string, found %s", c.describe())
	}
}

func parseFragmentArgs(c *cursor, start int) (*common.Variant, error) {
	variant := &common.Variant{Type: common.VariantFragment}
	switch c.peekType() {
	case TokenRange:
		parts := splitRange(c.next().Text())
		variant.Start, variant.Stop = parts[0], parts[1]
	case TokenQMark:
		c.next()
		variant.Start = "?"
	default:
		return nil, c.errAt(start, "expected a fragment range, found %s", c.describe())
	}
	if _, ok := c.accept(TokenComma); ok {
		description, ok := c.accept(TokenString)
		if !ok {
			return nil, c.errAt(start, "expected a fragment description, found %s", c.describe())
		}
		variant.Description = Unquote(description.Text())
	}
	return variant, nil
}

func parseSubArgs(c *cursor, start int) (*common.Variant, error) {
	variant := &common.Variant{Type: common.VariantSub}
	from, ok := c.accept(TokenWord)
	if !ok {
		return nil, c.errAt(start, "expected a reference residue, found %s", c.describe())
	}
	variant.SubFrom = from.Text()
	if _, ok := c.accept(TokenComma); !ok {
		return nil, c.errAt(start, "sub takes three arguments")
	}
	position, ok := c.accept(TokenWord)
	if !ok {
		return nil, c.errAt(start, "expected a position, found %s", c.describe())
	}
	n, err := strconv.Atoi(position.Text())
	if err != nil || n <= 0 {
		return nil, c.errAt(start, "substitution position %q is not a positive number", position.Text())
	}
	variant.Position = n
	if _, ok := c.accept(TokenComma); !ok {
		return nil, c.errAt(start, "sub takes three arguments")
	}
	to, ok := c.accept(TokenWord)
	if !ok {
		return nil, c.errAt(start, "expected a variant residue, found %s", c.describe())
	}
	variant.SubTo = to.Text()
	return variant, nil
}

func parseTruncArgs(c *cursor, start int) (*common.Variant, error) {
	position, ok := c.accept(TokenWord)
	if !ok {
		return nil, c.errAt(start, "expected a truncation position, found %s", c.describe())
	}
	n, err := strconv.Atoi(position.Text())
	if err != nil || n <= 0 {
		return nil, c.errAt(start, "truncation position %q is not a positive number", position.Text())
	}
	return &common.Variant{Type: common.VariantTrunc, Position: n}, nil
}

var fusionRangeRe = regexp.MustCompile(`^([rpc])\.(\d+|\?)_(\d+|\?)$`)

// parseFusionCall parses the four-argument fus(...) body. The fus
// keyword is already consumed.
func parseFusionCall(c *cursor, start int, kind lang.Kind) (*common.Fusion, error) {
	if _, ok := c.accept(TokenLParen); !ok {
		return nil, c.errAt(start, "expected ( after fus, found %s", c.describe())
	}
	partner5, err := parseNamespaceValue(c, start)
	if err != nil {
		return nil, err
	}
	if _, ok := c.accept(TokenComma); !ok {
		return nil, c.errAt(start, "fus takes four arguments")
	}
	range5, err := parseFusionRange(c, start)
	if err != nil {
		return nil, err
	}
	if _, ok := c.accept(TokenComma); !ok {
		return nil, c.errAt(start, "fus takes four arguments")
	}
	partner3, err := parseNamespaceValue(c, start)
	if err != nil {
		return nil, err
	}
	if _, ok := c.accept(TokenComma); !ok {
		return nil, c.errAt(start, "fus takes four arguments")
	}
	range3, err := parseFusionRange(c, start)
	if err != nil {
		return nil, err
	}
	if _, ok := c.accept(TokenRParen); !ok {
		return nil, c.errAt(start, "expected ) to close fus, found %s", c.describe())
	}
	return &common.Fusion{Partner5: partner5, Range5: range5, Partner3: partner3, Range3: range3}, nil
}

// parseFusionRange parses one breakpoint range: ?, r.1_79, or the
// quoted form "r.1_79".
func parseFusionRange(c *cursor, start int) (*common.FusionRange, error) {
	var text string
	switch c.peekType() {
	case TokenQMark:
		c.next()
		return nil, nil
	case TokenHGVS:
		text = c.next().Text()
	case TokenString:
		text = Unquote(c.next().Text())
		if text == "?" {
			return nil, nil
		}
	default:
		return nil, c.errAt(start, "expected a fusion range, found %s", c.describe())
	}
	match := fusionRangeRe.FindStringSubmatch(text)
	if match == nil {
		return nil, c.errAt(start, "fusion range %q is not of the form r.5_17", text)
	}
	return &common.FusionRange{Reference: match[1], Start: match[2], Stop: match[3]}, nil
}

// parseLegacyFusion parses the three-argument fus(partner3, start,
// stop) form, synthesizing the breakpoint ranges. The fus keyword is
// already consumed; partner5 is the abundance's own namespace value.
func parseLegacyFusion(c *cursor, start int, kind lang.Kind, partner5 *common.NamespaceValue) (*common.Fusion, error) {
	if partner5 == nil {
		return nil, c.errAt(start, "fusion partner missing before fus")
	}
	if _, ok := c.accept(TokenLParen); !ok {
		return nil, c.errAt(start, "expected ( after fus, found %s", c.describe())
	}
	partner3, err := parseNamespaceValue(c, start)
	if err != nil {
		return nil, err
	}
	if _, ok := c.accept(TokenComma); !ok {
		return nil, c.errAt(start, "fus takes a partner and two positions")
	}
	stop5, err := parseFusionCoordinate(c, start)
	if err != nil {
		return nil, err
	}
	if _, ok := c.accept(TokenComma); !ok {
		return nil, c.errAt(start, "fus takes a partner and two positions")
	}
	start3, err := parseFusionCoordinate(c, start)
	if err != nil {
		return nil, err
	}
	if _, ok := c.accept(TokenRParen); !ok {
		return nil, c.errAt(start, "expected ) to close fus, found %s", c.describe())
	}
	reference := fusionReference(kind)
	return &common.Fusion{
		Partner5: partner5,
		Range5:   &common.FusionRange{Reference: reference, Start: "?", Stop: stop5},
		Partner3: partner3,
		Range3:   &common.FusionRange{Reference: reference, Start: start3, Stop: "?"},
	}, nil
}

func parseFusionCoordinate(c *cursor, start int) (string, error) {
	switch c.peekType() {
	case TokenQMark:
		c.next()
		return "?", nil
	case TokenWord:
		token := c.next()
		if _, err := strconv.Atoi(token.Text()); err != nil {
			return "", c.errAt(start, "fusion position %q is not a number", token.Text())
		}
		return token.Text(), nil
	default:
		return "", c.errAt(start, "expected a fusion position, found %s", c.describe())
	}
}

// fusionReference returns the coordinate reference for legacy fusions
// of the given kind.
func fusionReference(kind lang.Kind) string {
	switch kind {
	case lang.KindGene:
		return "c"
	case lang.KindProtein:
		return "p"
	default:
		return "r"
	}
}

// parseLocationCall parses the body of loc(NS:v). The loc keyword is
// already consumed.
func parseLocationCall(c *cursor, start int) (*common.NamespaceValue, error) {
	if _, ok := c.accept(TokenLParen); !ok {
		return nil, c.errAt(start, "expected ( after loc, found %s", c.describe())
	}
	value, err := parseNamespaceValue(c, start)
	if err != nil {
		return nil, err
	}
	if _, ok := c.accept(TokenRParen); !ok {
		return nil, c.errAt(start, "expected ) to close loc, found %s", c.describe())
	}
	return value, nil
}

// parseMembers parses complex(...) and composite(...) bodies.
func parseMembers(c *cursor, start int, kind lang.Kind) (*common.Term, error) {
	if _, ok := c.accept(TokenLParen); !ok {
		return nil, c.errAt(start, "expected ( after function name, found %s", c.describe())
	}
	termType := common.TermComplex
	if kind == lang.KindComposite {
		termType = common.TermComposite
	}
	term := &common.Term{Type: termType, Kind: kind}

	if namespaceValueAhead(c) {
		if kind == lang.KindComposite {
			return nil, c.errAt(start, "composite requires member terms")
		}
		ref, err := parseNamespaceValue(c, start)
		if err != nil {
			return nil, err
		}
		term.Ref = ref
	} else {
		for {
			argStart := c.pos
			if locationAhead(c) {
				if term.Location != nil {
					return nil, c.errAt(start, "duplicate location")
				}
				c.next()
				location, err := parseLocationCall(c, argStart)
				if err != nil {
					return nil, err
				}
				term.Location = location
			} else {
				member, err := parseTerm(c)
				if err != nil {
					return nil, err
				}
				if err := checkMember(c, start, member); err != nil {
					return nil, err
				}
				term.Members = append(term.Members, member)
			}
			if _, ok := c.accept(TokenComma); !ok {
				break
			}
		}
		if len(term.Members) == 0 {
			return nil, c.errAt(start, "%s requires member terms", lang.ShortFunc[kind])
		}
	}

	if locationTrailing(c) {
		argStart := c.pos
		c.next()
		c.next()
		location, err := parseLocationCall(c, argStart)
		if err != nil {
			return nil, err
		}
		if term.Location != nil {
			return nil, c.errAt(start, "duplicate location")
		}
		term.Location = location
	}

	if _, ok := c.accept(TokenRParen); !ok {
		return nil, c.errAt(start, "expected ) to close term, found %s", c.describe())
	}
	return term, nil
}

func locationAhead(c *cursor) bool {
	token := c.peek()
	if token == nil || token.Type() != TokenWord {
		return false
	}
	if token.Text() != lang.FuncLocationShort && token.Text() != lang.FuncLocationLong {
		return false
	}
	following := c.peekAt(1)
	return following != nil && following.Type() == TokenLParen
}

// locationTrailing reports a ", loc(" sequence after the named complex
// form.
func locationTrailing(c *cursor) bool {
	token := c.peek()
	if token == nil || token.Type() != TokenComma {
		return false
	}
	following := c.peekAt(1)
	if following == nil || following.Type() != TokenWord {
		return false
	}
	if following.Text() != lang.FuncLocationShort && following.Text() != lang.FuncLocationLong {
		return false
	}
	after := c.peekAt(2)
	return after != nil && after.Type() == TokenLParen
}

// checkMember rejects non-abundance members inside complexes,
// composites, lists, and reactions.
func checkMember(c *cursor, start int, member *common.Term) error {
	if member.Wrapped() {
		return c.errAt(start, "members must be plain abundances")
	}
	switch member.Type {
	case common.TermReaction, common.TermList:
		return c.errAt(start, "members must be plain abundances")
	}
	switch member.Kind {
	case lang.KindProcess, lang.KindPathology:
		return c.errAt(start, "members must be abundances, not processes")
	}
	return nil
}

// parseReaction parses rxn(reactants(...), products(...)).
func parseReaction(c *cursor, start int) (*common.Term, error) {
	if _, ok := c.accept(TokenLParen); !ok {
		return nil, c.errAt(start, "expected ( after rxn, found %s", c.describe())
	}
	term := &common.Term{Type: common.TermReaction, Kind: lang.KindReaction}

	reactants, err := parseParticipants(c, start, lang.FuncReactants)
	if err != nil {
		return nil, err
	}
	term.Reactants = reactants

	if _, ok := c.accept(TokenComma); !ok {
		return nil, c.errAt(start, "rxn requires reactants and products")
	}

	products, err := parseParticipants(c, start, lang.FuncProducts)
	if err != nil {
		return nil, err
	}
	term.Products = products

	if _, ok := c.accept(TokenRParen); !ok {
		return nil, c.errAt(start, "expected ) to close rxn, found %s", c.describe())
	}
	return term, nil
}

func parseParticipants(c *cursor, start int, group string) ([]*common.Term, error) {
	if !c.acceptWord(group) {
		return nil, c.errAt(start, "expected %s(...), found %s", group, c.describe())
	}
	if _, ok := c.accept(TokenLParen); !ok {
		return nil, c.errAt(start, "expected ( after %s, found %s", group, c.describe())
	}
	var members []*common.Term
	for {
		member, err := parseTerm(c)
		if err != nil {
			return nil, err
		}
		if err := checkMember(c, start, member); err != nil {
			return nil, err
		}
		members = append(members, member)
		if _, ok := c.accept(TokenComma); !ok {
			break
		}
	}
	if _, ok := c.accept(TokenRParen); !ok {
		return nil, c.errAt(start, "expected ) to close %s, found %s", group, c.describe())
	}
	return members, nil
}

// parseList parses the list(...) object of hasMembers and
// hasComponents.
func parseList(c *cursor, start int) (*common.Term, error) {
	if _, ok := c.accept(TokenLParen); !ok {
		return nil, c.errAt(start, "expected ( after list, found %s", c.describe())
	}
	term := &common.Term{Type: common.TermList}
	for {
		member, err := parseTerm(c)
		if err != nil {
			return nil, err
		}
		if err := checkMember(c, start, member); err != nil {
			return nil, err
		}
		term.Members = append(term.Members, member)
		if _, ok := c.accept(TokenComma); !ok {
			break
		}
	}
	if _, ok := c.accept(TokenRParen); !ok {
		return nil, c.errAt(start, "expected ) to close list, found %s", c.describe())
	}
	return term, nil
}

// parseActivity parses act(term) and act(term, ma(...)).
func parseActivity(c *cursor, start int) (*common.Term, error) {
	if _, ok := c.accept(TokenLParen); !ok {
		return nil, c.errAt(start, "expected ( after act, found %s", c.describe())
	}
	inner, err := parseTerm(c)
	if err != nil {
		return nil, err
	}
	if err := checkWrapTarget(c, start, inner); err != nil {
		return nil, err
	}
	term := &common.Term{Type: common.TermActivity, Inner: inner}

	if _, ok := c.accept(TokenComma); ok {
		token, ok := c.accept(TokenWord)
		if !ok || (token.Text() != lang.FuncMolecularActShort && token.Text() != lang.FuncMolecularActLong) {
			return nil, c.errAt(start, "expected ma(...), found %s", c.describe())
		}
		if _, ok := c.accept(TokenLParen); !ok {
			return nil, c.errAt(start, "expected ( after ma, found %s", c.describe())
		}
		if namespaceValueAhead(c) {
			ref, err := parseNamespaceValue(c, start)
			if err != nil {
				return nil, err
			}
			term.ActivityRef = ref
		} else {
			name, ok := c.accept(TokenWord)
			if !ok {
				return nil, c.errAt(start, "expected a molecular activity, found %s", c.describe())
			}
			activity, ok := lang.ActivityForFunc[name.Text()]
			if !ok {
				return nil, c.errAt(start, "unknown molecular activity %q", name.Text())
			}
			term.Activity = activity
		}
		if _, ok := c.accept(TokenRParen); !ok {
			return nil, c.errAt(start, "expected ) to close ma, found %s", c.describe())
		}
	}

	if _, ok := c.accept(TokenRParen); !ok {
		return nil, c.errAt(start, "expected ) to close act, found %s", c.describe())
	}
	return term, nil
}

// parseLegacyActivity parses kin(term) and the other single-function
// activities. The normalizer rewrites these to act(term, ma(...)).
func parseLegacyActivity(c *cursor, start int, name string, activity lang.Activity) (*common.Term, error) {
	if _, ok := c.accept(TokenLParen); !ok {
		return nil, c.errAt(start, "expected ( after %s, found %s", name, c.describe())
	}
	inner, err := parseTerm(c)
	if err != nil {
		return nil, err
	}
	if err := checkWrapTarget(c, start, inner); err != nil {
		return nil, err
	}
	if _, ok := c.accept(TokenRParen); !ok {
		return nil, c.errAt(start, "expected ) to close %s, found %s", name, c.describe())
	}
	return &common.Term{Type: common.TermActivity, Inner: inner, Activity: activity, LegacyFunc: name}, nil
}

// parseDegradation parses deg(term).
func parseDegradation(c *cursor, start int) (*common.Term, error) {
	if _, ok := c.accept(TokenLParen); !ok {
		return nil, c.errAt(start, "expected ( after deg, found %s", c.describe())
	}
	inner, err := parseTerm(c)
	if err != nil {
		return nil, err
	}
	if err := checkWrapTarget(c, start, inner); err != nil {
		return nil, err
	}
	if _, ok := c.accept(TokenRParen); !ok {
		return nil, c.errAt(start, "expected ) to close deg, found %s", c.describe())
	}
	return &common.Term{Type: common.TermDegradation, Inner: inner}, nil
}

// parseTranslocation parses the canonical tloc(term, fromLoc(NS:v),
// toLoc(NS:v)) form, the raw-endpoint form tloc(term, NS:a, NS:b),
// and the bare form tloc(term). The two non-canonical forms keep
// their spelling for the normalizer.
func parseTranslocation(c *cursor, start int) (*common.Term, error) {
	if _, ok := c.accept(TokenLParen); !ok {
		return nil, c.errAt(start, "expected ( after tloc, found %s", c.describe())
	}
	inner, err := parseTerm(c)
	if err != nil {
		return nil, err
	}
	if err := checkWrapTarget(c, start, inner); err != nil {
		return nil, err
	}
	term := &common.Term{Type: common.TermTranslocation, Inner: inner}

	if _, ok := c.accept(TokenRParen); ok {
		term.LegacyFunc = lang.FuncTranslocationShort
		return term, nil
	}
	if _, ok := c.accept(TokenComma); !ok {
		return nil, c.errAt(start, "expected , or ) in tloc, found %s", c.describe())
	}

	if c.acceptWord(lang.FuncFromLoc) {
		from, err := parseLocationCall(c, start)
		if err != nil {
			return nil, err
		}
		term.FromLoc = from
		if _, ok := c.accept(TokenComma); !ok {
			return nil, c.errAt(start, "expected toLoc(...) after fromLoc, found %s", c.describe())
		}
		if !c.acceptWord(lang.FuncToLoc) {
			return nil, c.errAt(start, "expected toLoc(...), found %s", c.describe())
		}
		to, err := parseLocationCall(c, start)
		if err != nil {
			return nil, err
		}
		term.ToLoc = to
	} else {
		from, err := parseNamespaceValue(c, start)
		if err != nil {
			return nil, err
		}
		if _, ok := c.accept(TokenComma); !ok {
			return nil, c.errAt(start, "tloc takes two locations, found %s", c.describe())
		}
		to, err := parseNamespaceValue(c, start)
		if err != nil {
			return nil, err
		}
		term.FromLoc = from
		term.ToLoc = to
		term.LegacyFunc = lang.FuncTranslocationShort
	}

	if _, ok := c.accept(TokenRParen); !ok {
		return nil, c.errAt(start, "expected ) to close tloc, found %s", c.describe())
	}
	return term, nil
}

// parseSecretionSurface parses sec(term) and surf(term). The
// normalizer fills in the canonical GO cellular component endpoints.
func parseSecretionSurface(c *cursor, start int, name string) (*common.Term, error) {
	if _, ok := c.accept(TokenLParen); !ok {
		return nil, c.errAt(start, "expected ( after %s, found %s", name, c.describe())
	}
	inner, err := parseTerm(c)
	if err != nil {
		return nil, err
	}
	if err := checkWrapTarget(c, start, inner); err != nil {
		return nil, err
	}
	if _, ok := c.accept(TokenRParen); !ok {
		return nil, c.errAt(start, "expected ) to close %s, found %s", name, c.describe())
	}
	return &common.Term{Type: common.TermTranslocation, Inner: inner, LegacyFunc: name}, nil
}

// checkWrapTarget rejects process wrapper targets that are not
// abundances.
func checkWrapTarget(c *cursor, start int, inner *common.Term) error {
	if inner.Wrapped() {
		return c.errAt(start, "process modifiers cannot wrap each other")
	}
	switch inner.Type {
	case common.TermReaction, common.TermList:
		return c.errAt(start, "process modifiers require an abundance")
	}
	switch inner.Kind {
	case lang.KindProcess, lang.KindPathology:
		return c.errAt(start, "process modifiers require an abundance")
	}
	return nil
}

// splitRange splits a 5_20 style range token.
func splitRange(text string) [2]string {
	for i := 0; i < len(text); i++ {
		if text[i] == '_' {
			return [2]string{text[:i], text[i+1:]}
		}
	}
	return [2]string{text, ""}
}
