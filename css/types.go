package css

import (
	"strings"
)

// MediaQuery is a parsed @media prelude.
type MediaQuery struct {
	Raw     string       // prelude text, whitespace collapsed
	Queries []MediaEntry // comma separated list
}

// MediaEntry is one query of the list, e.g. "screen and (min-width: 40em)".
type MediaEntry struct {
	Type     string // "screen", "print", empty when omitted
	Negated  bool   // "not" applies to the whole entry
	Features []MediaFeature
}

// MediaFeature is a parenthesized "(name: value)" condition.
type MediaFeature struct {
	Name  string
	Value string // empty for boolean features such as "(color)"
}

// Feature returns value of the first feature with given name in any query.
func (mq MediaQuery) Feature(name string) (string, bool) {
	for _, q := range mq.Queries {
		for _, f := range q.Features {
			if strings.EqualFold(f.Name, name) {
				return f.Value, true
			}
		}
	}
	return "", false
}

// HasType reports if any query in the list targets media type.
func (mq MediaQuery) HasType(t string) bool {
	for _, q := range mq.Queries {
		if strings.EqualFold(q.Type, t) && !q.Negated {
			return true
		}
	}
	return false
}

// Value is a declaration value. Raw is always set, the rest only for single
// token values.
type Value struct {
	Raw     string
	Value   float64
	Unit    string // "em", "px", "%"...
	Keyword string // identifier or unquoted string
}

// IsNumeric reports number, dimension or percentage, "0" included.
func (v Value) IsNumeric() bool {
	switch {
	case v.Keyword != "":
		return false
	case v.Unit != "" || v.Value != 0:
		return true
	case v.Raw == "":
		return false
	}
	return strings.ContainsRune("0123456789.-+", rune(v.Raw[0]))
}

// Rule is a single selector with its declarations. Grouped selectors are
// split into separate rules by parser.
type Rule struct {
	Selector   string
	Properties map[string]Value
}

func NewRule(selector string) Rule {
	return Rule{Selector: selector, Properties: make(map[string]Value)}
}

// Set adds or replaces property with raw value text.
func (r Rule) Set(name, raw string) {
	r.Properties[name] = Value{Raw: raw}
}

func (r Rule) GetProperty(name string) (Value, bool) {
	v, ok := r.Properties[name]
	return v, ok
}

// StylesheetItem holds either Rule or MediaBlock.
type StylesheetItem struct {
	Rule       *Rule
	MediaBlock *MediaBlock
}

type MediaBlock struct {
	Query MediaQuery
	Rules []Rule
}

// Stylesheet is an ordered list of top level rules and @media blocks, parsed
// or generated.
type Stylesheet struct {
	Items    []StylesheetItem
	Warnings []string // skipped constructs
}

func (s *Stylesheet) AddRule(rule Rule) {
	s.Items = append(s.Items, StylesheetItem{Rule: &rule})
}

// AddMedia appends rules to the media block with the query. Consecutive
// blocks with the same query are merged, empty query adds plain rules.
func (s *Stylesheet) AddMedia(query string, rules ...Rule) {
	if len(rules) == 0 {
		return
	}
	if query == "" {
		for _, r := range rules {
			s.AddRule(r)
		}
		return
	}
	if n := len(s.Items); n > 0 && s.Items[n-1].MediaBlock != nil && s.Items[n-1].MediaBlock.Query.Raw == query {
		s.Items[n-1].MediaBlock.Rules = append(s.Items[n-1].MediaBlock.Rules, rules...)
		return
	}
	s.Items = append(s.Items, StylesheetItem{
		MediaBlock: &MediaBlock{Query: MediaQuery{Raw: query}, Rules: rules},
	})
}

// Rules returns top level rules in order.
func (s *Stylesheet) Rules() []Rule {
	return s.collect(func(r Rule) bool { return true })
}

// RulesBySelector returns top level rules with exactly this selector.
func (s *Stylesheet) RulesBySelector(selector string) []Rule {
	return s.collect(func(r Rule) bool { return r.Selector == selector })
}

func (s *Stylesheet) collect(match func(Rule) bool) []Rule {
	var out []Rule
	for _, item := range s.Items {
		if item.Rule != nil && match(*item.Rule) {
			out = append(out, *item.Rule)
		}
	}
	return out
}

// MediaBlocks returns @media blocks in order.
func (s *Stylesheet) MediaBlocks() []MediaBlock {
	var blocks []MediaBlock
	for _, item := range s.Items {
		if item.MediaBlock != nil {
			blocks = append(blocks, *item.MediaBlock)
		}
	}
	return blocks
}
