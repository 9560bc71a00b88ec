package domain

import "fmt"

// TokenPolicy decides whether appends are checked against the slot they land in.
type TokenPolicy string

const (
	// PolicyPermissive accepts either token kind at any position. A malformed
	// pattern is reported when the sequence is evaluated.
	PolicyPermissive TokenPolicy = "permissive"

	// PolicyPositional only accepts an operand at positions 0 and 2 and an
	// operator at position 1.
	PolicyPositional TokenPolicy = "positional"
)

// ZeroGuard decides which denominators count as zero.
type ZeroGuard string

const (
	// ZeroGuardLiteral only guards the exact literal "0". Other spellings of
	// zero reach the floating-point division and yield Infinity or NaN.
	ZeroGuardLiteral ZeroGuard = "literal"

	// ZeroGuardNumeric guards every denominator that parses to zero.
	ZeroGuardNumeric ZeroGuard = "numeric"
)

// ParseTokenPolicy validates a configured policy name. Empty selects the default.
func ParseTokenPolicy(s string) (TokenPolicy, error) {
	switch p := TokenPolicy(s); p {
	case "":
		return PolicyPermissive, nil
	case PolicyPermissive, PolicyPositional:
		return p, nil
	default:
		return "", fmt.Errorf("unknown token policy %q", s)
	}
}

// ParseZeroGuard validates a configured guard name. Empty selects the default.
func ParseZeroGuard(s string) (ZeroGuard, error) {
	switch g := ZeroGuard(s); g {
	case "":
		return ZeroGuardLiteral, nil
	case ZeroGuardLiteral, ZeroGuardNumeric:
		return g, nil
	default:
		return "", fmt.Errorf("unknown zero guard %q", s)
	}
}

// ExpectedKind returns the token kind the slot at position pos accepts.
func ExpectedKind(pos int) TokenKind {
	if pos == 1 {
		return KindOperator
	}
	return KindOperand
}
