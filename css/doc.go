// Package css keeps generated and parsed stylesheets: plain rules and @media
// blocks in source order. Parsing is built on tdewolff/parse and understands
// just enough of the grammar to inspect compiled output, other @-rules are
// skipped with a warning.
package css
