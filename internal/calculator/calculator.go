// Package calculator provides the integer and floating-point arithmetic
// exposed under /api/calc.
//
// Every function is pure. The only failure modes are a zero divisor and a
// factorial argument outside the range int64 can represent.
package calculator

import (
	"fmt"

	"github.com/sakif/accountkit/internal/apperror"
)

// MaxFactorialArg is the largest n for which n! fits in an int64
// (20! = 2432902008176640000, 21! overflows).
const MaxFactorialArg = 20

// Sum returns a + b. Overflow wraps, as with any Go integer addition.
func Sum(a, b int64) int64 {
	return a + b
}

// Subtract returns a - b.
func Subtract(a, b int64) int64 {
	return a - b
}

// Multiply returns a * b.
func Multiply(a, b int64) int64 {
	return a * b
}

// Divide returns a / b.
//
// The divisor is compared with exact equality: 1e-300 is a valid divisor,
// 0.0 and -0.0 are not.
func Divide(a, b float64) (float64, error) {
	if b == 0 {
		return 0, apperror.DivisionByZero()
	}
	return a / b, nil
}

// Factorial returns n!.
//
// 0! and 1! are 1. Negative arguments and arguments above MaxFactorialArg
// fail with apperror.ErrValidation.
func Factorial(n int64) (int64, error) {
	if n < 0 {
		return 0, apperror.ValidationFailed("n", "factorial of negative number")
	}
	if n > MaxFactorialArg {
		return 0, apperror.ValidationFailed("n",
			fmt.Sprintf("factorial argument must be %d or less", MaxFactorialArg))
	}

	result := int64(1)
	for k := int64(2); k <= n; k++ {
		result *= k
	}
	return result, nil
}
