package utility

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"
)

const calculatorChars = "0123456789+-*/()%. "

var (
	// ErrInvalidCharacters is returned for expressions with anything besides digits, operators and parentheses
	ErrInvalidCharacters = errors.New("invalid characters in expression")
	// ErrDivisionByZero is returned when the result is not a finite number
	ErrDivisionByZero = errors.New("division by zero")
)

// Calculate evaluates an arithmetic expression restricted to calculatorChars
func Calculate(expression string) (string, error) {
	for _, r := range expression {
		if !strings.ContainsRune(calculatorChars, r) {
			return "", ErrInvalidCharacters
		}
	}
	if strings.TrimSpace(expression) == "" {
		return "", errors.New("empty expression")
	}

	expr, err := govaluate.NewEvaluableExpression(expression)
	if err != nil {
		return "", fmt.Errorf("invalid expression: %w", err)
	}
	result, err := expr.Evaluate(nil)
	if err != nil {
		return "", err
	}

	v, ok := result.(float64)
	if !ok {
		return "", fmt.Errorf("unexpected result %v", result)
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "", ErrDivisionByZero
	}
	return formatResult(v), nil
}

func formatResult(v float64) string {
	if math.Abs(v) >= 1e15 {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
