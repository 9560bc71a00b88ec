package domain

import "fmt"

// TokenKind tags a Token as an operand or an operator.
type TokenKind string

const (
	KindOperand  TokenKind = "operand"
	KindOperator TokenKind = "operator"
)

// Operator is one of the four supported binary operators.
type Operator string

const (
	OpAdd      Operator = "+"
	OpSubtract Operator = "-"
	OpMultiply Operator = "*"
	OpDivide   Operator = "/"
)

// Operators lists the supported operators in keypad order.
var Operators = []Operator{OpDivide, OpMultiply, OpSubtract, OpAdd}

// ParseOperator validates a symbol and returns the matching Operator.
func ParseOperator(symbol string) (Operator, error) {
	switch op := Operator(symbol); op {
	case OpAdd, OpSubtract, OpMultiply, OpDivide:
		return op, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidOperation, symbol)
	}
}

// Token is a single element of the input sequence.
// Operand text is kept exactly as typed, including a trailing decimal point.
type Token struct {
	Kind TokenKind `json:"kind"`
	Text string    `json:"text"`
}

// Operand builds an operand token.
func Operand(text string) Token {
	return Token{Kind: KindOperand, Text: text}
}

// OperatorToken builds an operator token.
func OperatorToken(op Operator) Token {
	return Token{Kind: KindOperator, Text: string(op)}
}

// IsOperator reports whether the token is tagged as an operator.
func (t Token) IsOperator() bool {
	return t.Kind == KindOperator
}

func (t Token) String() string {
	return t.Text
}
