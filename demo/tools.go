package demo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/felixgeelhaar/mcp-demo/schema"
)

var (
	// ErrDivisionByZero is returned by divide when b is zero.
	ErrDivisionByZero = errors.New("integer division or modulo by zero")

	// ErrOverflow is returned when an integer result does not fit in int64.
	ErrOverflow = errors.New("integer overflow")
)

// maxFibonacciTerms is the longest sequence whose last term fits in int64.
const maxFibonacciTerms = 93

// Add returns a+b.
func Add(a, b int64) (int64, error) {
	s := a + b
	if (s > a) != (b > 0) {
		return 0, fmt.Errorf("%d + %d: %w", a, b, ErrOverflow)
	}
	return s, nil
}

// Multiply returns a*b.
func Multiply(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	p := a * b
	if p/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, fmt.Errorf("%d * %d: %w", a, b, ErrOverflow)
	}
	return p, nil
}

// Divide returns a/b rounded toward negative infinity.
func Divide(a, b int64) (int64, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	if a == math.MinInt64 && b == -1 {
		return 0, fmt.Errorf("%d / %d: %w", a, b, ErrOverflow)
	}
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q, nil
}

// WordCount counts whitespace-separated tokens. The file, group, record and
// unit separators (U+001C to U+001F) count as whitespace too.
func WordCount(text string) map[string]int {
	return map[string]int{"word_count": len(strings.FieldsFunc(text, isWordSeparator))}
}

func isWordSeparator(r rune) bool {
	return unicode.IsSpace(r) || (r >= '\x1c' && r <= '\x1f')
}

// Fibonacci returns the first n terms of 0, 1, 1, 2, 3, ... A non-positive n
// yields an empty, non-nil slice.
func Fibonacci(n int64) ([]int64, error) {
	if n <= 0 {
		return []int64{}, nil
	}
	if n > maxFibonacciTerms {
		return nil, fmt.Errorf("fibonacci(%d): more than %d terms: %w", n, maxFibonacciTerms, ErrOverflow)
	}

	seq := make([]int64, 0, n)
	seq = append(seq, 0)
	if n > 1 {
		seq = append(seq, 1)
	}
	for int64(len(seq)) < n {
		seq = append(seq, seq[len(seq)-1]+seq[len(seq)-2])
	}
	return seq, nil
}

func addHandler(ctx context.Context, args schema.Args) (any, error) {
	return Add(args.Int("a"), args.Int("b"))
}

func multiplyHandler(ctx context.Context, args schema.Args) (any, error) {
	return Multiply(args.Int("a"), args.Int("b"))
}

func divideHandler(ctx context.Context, args schema.Args) (any, error) {
	return Divide(args.Int("a"), args.Int("b"))
}

func wordCountHandler(ctx context.Context, args schema.Args) (any, error) {
	return WordCount(args.String("text")), nil
}

func fibonacciHandler(ctx context.Context, args schema.Args) (any, error) {
	return Fibonacci(args.Int("n"))
}

func pingHandler(ctx context.Context, args schema.Args) (any, error) {
	return "pong", nil
}
