package runtime

import (
	"fmt"
	"strconv"

	"github.com/aretw0/abacus/pkg/domain"
)

// compute evaluates [a, op, b]. Checks run in the same order a user would
// hit them: operator first, then the division guard, then operand parsing.
func (e *Engine) compute(seq []domain.Token) (domain.HistoryEntry, error) {
	a, opTok, b := seq[0], seq[1], seq[2]

	if !opTok.IsOperator() {
		return domain.HistoryEntry{}, fmt.Errorf("%w: %q is not an operator", domain.ErrInvalidOperation, opTok.Text)
	}
	op, err := domain.ParseOperator(opTok.Text)
	if err != nil {
		return domain.HistoryEntry{}, err
	}

	if op == domain.OpDivide && e.guard == domain.ZeroGuardLiteral && b.Text == "0" {
		return domain.HistoryEntry{}, domain.ErrDivisionByZero
	}

	x, err := parseOperand(a)
	if err != nil {
		return domain.HistoryEntry{}, err
	}
	y, err := parseOperand(b)
	if err != nil {
		return domain.HistoryEntry{}, err
	}

	if op == domain.OpDivide && e.guard == domain.ZeroGuardNumeric && y == 0 {
		return domain.HistoryEntry{}, domain.ErrDivisionByZero
	}

	var result float64
	switch op {
	case domain.OpAdd:
		result = x + y
	case domain.OpSubtract:
		result = x - y
	case domain.OpMultiply:
		result = x * y
	case domain.OpDivide:
		result = x / y
	}

	return domain.HistoryEntry{
		OperandA: a.Text,
		Operator: op,
		OperandB: b.Text,
		Result:   result,
	}, nil
}

func parseOperand(t domain.Token) (float64, error) {
	if t.IsOperator() {
		return 0, fmt.Errorf("%w: %q is not a number", domain.ErrMalformedOperand, t.Text)
	}
	v, err := strconv.ParseFloat(t.Text, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", domain.ErrMalformedOperand, t.Text)
	}
	return v, nil
}
