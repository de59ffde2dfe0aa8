package css

import (
	"bytes"
	"errors"
	"io"
	"maps"
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses CSS stylesheets into top level rules and @media blocks.
type Parser struct {
	log *zap.Logger
}

func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse never fails: problems end up in Stylesheet.Warnings. Optional source
// names input in debug log.
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	sheet := &Stylesheet{}

	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	parser := css.NewParser(parse.NewInput(bytes.NewReader(data)), false)
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != nil && !errors.Is(err, io.EOF) {
				p.log.Debug("CSS parse error", zap.Error(err))
				sheet.Warnings = append(sheet.Warnings, "parse error: "+err.Error())
			}
			return sheet

		case css.BeginAtRuleGrammar:
			name := strings.ToLower(string(data))
			if name != "@media" {
				p.skipAtRuleBlock(parser)
				sheet.Warnings = append(sheet.Warnings, "skipped @-rule: "+name)
				p.log.Debug("Skipping @-rule", zap.String("rule", name))
				continue
			}
			mq := parseMediaQueryFromTokens(parser.Values())
			rules := p.parseMediaBlockRules(parser, sheet)
			p.log.Debug("Parsed @media block", zap.String("query", mq.Raw), zap.Int("rules", len(rules)))
			sheet.Items = append(sheet.Items, StylesheetItem{
				MediaBlock: &MediaBlock{Query: mq, Rules: rules},
			})

		case css.AtRuleGrammar:
			// @import, @charset
			p.log.Debug("Skipping @-rule", zap.String("rule", string(data)))

		case css.BeginRulesetGrammar:
			for _, rule := range p.parseRuleset(parser, data) {
				sheet.Items = append(sheet.Items, StylesheetItem{Rule: &rule})
			}
		}
	}
}

// parseRuleset reads declarations of the ruleset which just started and
// creates a rule for every grouped selector.
func (p *Parser) parseRuleset(parser *css.Parser, data []byte) []Rule {
	selectors := parseSelectors(data, parser.Values())
	props := p.parseDeclarations(parser)

	rules := make([]Rule, 0, len(selectors))
	for _, sel := range selectors {
		rules = append(rules, Rule{Selector: sel, Properties: maps.Clone(props)})
	}
	return rules
}

// parseSelectors splits grouped selector on commas, whitespace inside each
// selector is collapsed.
func parseSelectors(data []byte, values []css.Token) []string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}

	var selectors []string
	for s := range strings.SplitSeq(sb.String(), ",") {
		s = strings.Join(strings.Fields(s), " ")
		if s != "" {
			selectors = append(selectors, s)
		}
	}
	return selectors
}

// parseDeclarations reads declarations up to the end of current ruleset.
// Property names are lower cased, custom properties are kept as written.
func (p *Parser) parseDeclarations(parser *css.Parser) map[string]Value {
	props := make(map[string]Value)

	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar, css.EndRulesetGrammar:
			return props

		case css.DeclarationGrammar:
			propName := strings.ToLower(string(data))
			values := parser.Values()
			if len(values) > 0 {
				props[propName] = parsePropertyValue(values)
			}

		case css.CustomPropertyGrammar:
			props[string(data)] = Value{Raw: strings.TrimSpace(joinTokens(parser.Values()))}
		}
	}
}

// joinTokens builds raw text collapsing whitespace runs into single space.
func joinTokens(tokens []css.Token) string {
	var (
		sb    strings.Builder
		space bool
	)
	for _, t := range tokens {
		if t.TokenType == css.WhitespaceToken {
			space = sb.Len() > 0
			continue
		}
		if space {
			sb.WriteByte(' ')
			space = false
		}
		sb.Write(t.Data)
	}
	return sb.String()
}

// parsePropertyValue interprets single token values. Anything longer
// (functions, lists) is kept as keyword equal to raw text.
func parsePropertyValue(tokens []css.Token) Value {
	val := Value{Raw: joinTokens(tokens)}

	var single []css.Token
	for _, t := range tokens {
		if t.TokenType != css.WhitespaceToken {
			single = append(single, t)
		}
	}
	if len(single) != 1 {
		val.Keyword = val.Raw
		return val
	}

	t, text := single[0], string(single[0].Data)
	switch t.TokenType {
	case css.DimensionToken:
		val.Value, val.Unit, _ = SplitDimension(text)
	case css.PercentageToken:
		val.Value, _ = strconv.ParseFloat(strings.TrimSuffix(text, "%"), 64)
		val.Unit = "%"
	case css.NumberToken:
		val.Value, _ = strconv.ParseFloat(text, 64)
	case css.IdentToken:
		val.Keyword = strings.ToLower(text)
	case css.StringToken:
		val.Keyword = unquote(text)
	case css.HashToken:
		val.Keyword = text
	}
	return val
}

// SplitDimension splits dimension token text such as "40em", "-0.5rem" or
// "1e3px" into number and lower cased unit.
func SplitDimension(s string) (float64, string, bool) {
	end := parse.Number([]byte(s))
	if end == 0 {
		return 0, "", false
	}
	num, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, "", false
	}
	return num, strings.ToLower(s[end:]), true
}

// skipAtRuleBlock consumes tokens up to the end of the block just opened.
func (p *Parser) skipAtRuleBlock(parser *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

// parseMediaQueryFromTokens parses a media query list from CSS tokens.
// Handles queries like "print, screen and (min-width: 40em)" and
// "not print and (orientation: landscape)".
func parseMediaQueryFromTokens(tokens []css.Token) MediaQuery {
	mq := MediaQuery{Raw: joinTokens(tokens)}

	var (
		cur     MediaEntry
		inParen bool
		feature []css.Token
		started bool
	)
	flushFeature := func() {
		name, value, _ := strings.Cut(joinTokens(feature), ":")
		cur.Features = append(cur.Features, MediaFeature{
			Name:  strings.ToLower(strings.TrimSpace(name)),
			Value: strings.TrimSpace(value),
		})
		feature = feature[:0]
	}

	for _, t := range tokens {
		if inParen {
			if t.TokenType == css.RightParenthesisToken {
				flushFeature()
				inParen = false
				continue
			}
			feature = append(feature, t)
			continue
		}

		switch t.TokenType {
		case css.LeftParenthesisToken:
			inParen, started = true, true
		case css.CommaToken:
			mq.Queries = append(mq.Queries, cur)
			cur, started = MediaEntry{}, false
		case css.IdentToken:
			switch ident := strings.ToLower(string(t.Data)); ident {
			case "and", "only":
			case "not":
				cur.Negated = true
			default:
				if cur.Type == "" {
					cur.Type = ident
				}
			}
			started = true
		}
	}
	if started || len(mq.Queries) > 0 {
		mq.Queries = append(mq.Queries, cur)
	}
	return mq
}

func (p *Parser) parseMediaBlockRules(parser *css.Parser, sheet *Stylesheet) []Rule {
	var rules []Rule

	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar, css.EndAtRuleGrammar:
			return rules

		case css.BeginAtRuleGrammar:
			// nested @-rules are not expected in generated output
			p.skipAtRuleBlock(parser)
			sheet.Warnings = append(sheet.Warnings, "skipped nested @-rule: "+string(data))

		case css.BeginRulesetGrammar:
			rules = append(rules, p.parseRuleset(parser, data)...)
		}
	}
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
