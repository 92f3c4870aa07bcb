package diff

import (
	"regexp"
	"strconv"
)

// Signature is the machine-comparable identity of a structured failure
// message: a numeric error code and/or a symbolic code name.
type Signature struct {
	HasCode bool
	Code    int64
	Name    string
}

// SignatureParser extracts a Signature from an error message. Two
// independent server implementations rarely agree on wording, so the
// diff engine compares signatures before falling back to literal text.
//
// The grammar is pluggable: the reference server appends a trailing
// "(code=<int>[, codeName=<name>])" suffix, but other backends may
// embed codes differently.
type SignatureParser interface {
	Parse(message string) Signature
}

// suffixParser implements the reference suffix grammar.
type suffixParser struct {
	re *regexp.Regexp
}

var defaultSuffixRe = regexp.MustCompile(`\(code=(-?\d+)(?:,\s*codeName=([A-Za-z0-9_]+))?\)\s*$`)

// DefaultSignatureParser parses the trailing
// "(code=<int>[, codeName=<name>])" suffix used by the reference server.
func DefaultSignatureParser() SignatureParser {
	return &suffixParser{re: defaultSuffixRe}
}

// NewSuffixParser builds a parser from a custom regular expression.
// Group 1 must capture the numeric code, group 2 (optional) the code
// name.
func NewSuffixParser(re *regexp.Regexp) SignatureParser {
	return &suffixParser{re: re}
}

func (p *suffixParser) Parse(message string) Signature {
	m := p.re.FindStringSubmatch(message)
	if m == nil {
		return Signature{}
	}
	var sig Signature
	if code, err := strconv.ParseInt(m[1], 10, 64); err == nil {
		sig.HasCode = true
		sig.Code = code
	}
	if len(m) > 2 {
		sig.Name = m[2]
	}
	return sig
}

// equivalentFailures reports whether two failure messages denote the
// same error class. Numeric codes win when both sides expose one; code
// names are the fallback; otherwise only literal equality counts.
func equivalentFailures(parser SignatureParser, left, right string) bool {
	a := parser.Parse(left)
	b := parser.Parse(right)

	if a.HasCode && b.HasCode {
		return a.Code == b.Code
	}
	if a.Name != "" && b.Name != "" {
		return a.Name == b.Name
	}
	return left == right
}
