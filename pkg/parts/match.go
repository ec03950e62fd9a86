package parts

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidQuery is returned when a query value is not a real number.
var ErrInvalidQuery = errors.New("invalid query")

// InvalidQueryError names the offending query field.
type InvalidQueryError struct {
	Field string
	Value string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("invalid query: %s %q is not a real number", e.Field, e.Value)
}

func (e *InvalidQueryError) Unwrap() error { return ErrInvalidQuery }

// Query is an operating point: volts and degrees Celsius.
type Query struct {
	Voltage     float64 `json:"voltage"`
	Temperature float64 `json:"temperature"`
}

// ParseQuery converts caller-supplied text into a Query.
func ParseQuery(voltage, temperature string) (Query, error) {
	v, err := parseReal("voltage", voltage)
	if err != nil {
		return Query{}, err
	}
	t, err := parseReal("temperature", temperature)
	if err != nil {
		return Query{}, err
	}
	return Query{Voltage: v, Temperature: t}, nil
}

func parseReal(field, s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &InvalidQueryError{Field: field, Value: s}
	}
	return f, nil
}

// Validate rejects NaN and infinite values.
func (q Query) Validate() error {
	if math.IsNaN(q.Voltage) || math.IsInf(q.Voltage, 0) {
		return &InvalidQueryError{Field: "voltage", Value: strconv.FormatFloat(q.Voltage, 'g', -1, 64)}
	}
	if math.IsNaN(q.Temperature) || math.IsInf(q.Temperature, 0) {
		return &InvalidQueryError{Field: "temperature", Value: strconv.FormatFloat(q.Temperature, 'g', -1, 64)}
	}
	return nil
}

// FindCompatible returns, in input order, the names of components whose
// authoritative voltage and temperature ranges both contain q.
// The query is validated before any component is examined.
func FindCompatible(components []*Component, q Query) ([]string, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	names := []string{}
	for _, c := range components {
		if c != nil && c.Compatible(q) {
			names = append(names, c.name)
		}
	}
	return names, nil
}
