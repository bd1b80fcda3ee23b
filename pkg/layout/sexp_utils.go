package layout

import (
	"fmt"
	"strconv"

	"github.com/OpenTraceLab/OpenTraceDie/pkg/sexp"
)

// items returns the elements of a list expression, or nil for a leaf.
func items(s sexp.Sexp) []sexp.Sexp {
	if l, ok := s.(*sexp.List); ok {
		return l.Items()
	}
	return nil
}

// keyOf returns the leading symbol of a list, e.g. "node" for (node 42 ...).
func keyOf(s sexp.Sexp) string {
	it := items(s)
	if len(it) == 0 {
		return ""
	}
	if sym, ok := it[0].(sexp.Symbol); ok {
		return string(sym)
	}
	return ""
}

// findNode returns the first child list starting with key.
func findNode(s sexp.Sexp, key string) (sexp.Sexp, bool) {
	for _, item := range items(s) {
		if keyOf(item) == key {
			return item, true
		}
	}
	return nil, false
}

// findAllNodes returns every child list starting with key.
func findAllNodes(s sexp.Sexp, key string) []sexp.Sexp {
	var results []sexp.Sexp
	for _, item := range items(s) {
		if keyOf(item) == key {
			results = append(results, item)
		}
	}
	return results
}

// getString returns the symbol at index; index 0 is the key.
func getString(s sexp.Sexp, index int) (string, error) {
	it := items(s)
	if it == nil {
		return "", fmt.Errorf("expected list, got %v", s)
	}
	if index < 0 || index >= len(it) {
		return "", fmt.Errorf("index %d out of bounds (length %d)", index, len(it))
	}
	sym, ok := it[index].(sexp.Symbol)
	if !ok {
		return "", fmt.Errorf("expected symbol at index %d, got %v", index, it[index])
	}
	return string(sym), nil
}

func getFloat(s sexp.Sexp, index int) (float64, error) {
	str, err := getString(s, index)
	if err != nil {
		return 0, err
	}
	val, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse float %q: %w", str, err)
	}
	return val, nil
}

func getInt(s sexp.Sexp, index int) (int, error) {
	str, err := getString(s, index)
	if err != nil {
		return 0, err
	}
	val, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("failed to parse int %q: %w", str, err)
	}
	return val, nil
}

// getFloats parses every element from index on as a float.
func getFloats(s sexp.Sexp, from int) ([]float64, error) {
	it := items(s)
	if from > len(it) {
		return nil, nil
	}
	vals := make([]float64, 0, len(it)-from)
	for i := from; i < len(it); i++ {
		v, err := getFloat(s, i)
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return vals, nil
}
