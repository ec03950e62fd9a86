package parts

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/hazyhaar/partmatch/pkg/ranges"
)

func component(name string, volt, temp *ranges.Range) *Component {
	vs, ts := ranges.NewSet(), ranges.NewSet()
	if volt != nil {
		vs.Add(*volt)
	}
	if temp != nil {
		ts.Add(*temp)
	}
	return NewComponent(name, vs, ts)
}

func TestFindCompatible(t *testing.T) {
	comp1 := component("Comp1", &ranges.Range{Low: 5, High: 12}, &ranges.Range{Low: -40, High: 85})
	comp2 := component("Comp2", nil, &ranges.Range{Low: -40, High: 85})
	components := []*Component{comp1, comp2}

	tests := []struct {
		name string
		q    Query
		want []string
	}{
		{"inside", Query{5, 25}, []string{"Comp1"}},
		{"lower bounds", Query{5, -40}, []string{"Comp1"}},
		{"upper bounds", Query{12, 85}, []string{"Comp1"}},
		{"below voltage", Query{4.9, 25}, []string{}},
		{"above temperature", Query{5, 85.1}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindCompatible(components, tt.q)
			if err != nil {
				t.Fatalf("FindCompatible: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FindCompatible(%v) = %v, want %v", tt.q, got, tt.want)
			}
		})
	}
}

func TestFindCompatible_KeepsInputOrder(t *testing.T) {
	v := &ranges.Range{Low: 1.8, High: 5.5}
	tr := &ranges.Range{Low: -40, High: 125}
	components := []*Component{
		component("zeta", v, tr),
		component("alpha", v, tr),
		component("conflicted", nil, tr),
		component("mid", v, tr),
	}
	got, err := FindCompatible(components, Query{3.3, 25})
	if err != nil {
		t.Fatalf("FindCompatible: %v", err)
	}
	want := []string{"zeta", "alpha", "mid"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFindCompatible_ConflictingNeverMatches(t *testing.T) {
	c := NewComponent("dual",
		ranges.NewSet(ranges.Range{Low: 3.3, High: 5}, ranges.Range{Low: 5, High: 12}),
		ranges.NewSet(ranges.Range{Low: -40, High: 85}))
	got, err := FindCompatible([]*Component{c}, Query{5, 25})
	if err != nil {
		t.Fatalf("FindCompatible: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("conflicting component matched: %v", got)
	}
}

func TestFindCompatible_InvalidQuery(t *testing.T) {
	components := []*Component{NewComponent("test", nil, nil)}
	for _, q := range []Query{
		{math.NaN(), 25},
		{5, math.NaN()},
		{math.Inf(1), 25},
		{5, math.Inf(-1)},
	} {
		_, err := FindCompatible(components, q)
		if !errors.Is(err, ErrInvalidQuery) {
			t.Errorf("FindCompatible(%v) error = %v, want ErrInvalidQuery", q, err)
		}
	}
}

func TestFindCompatible_InvalidQueryBeforeComponents(t *testing.T) {
	// A nil entry would be skipped anyway; the point is no panic and an error.
	_, err := FindCompatible([]*Component{nil}, Query{math.NaN(), 0})
	if !errors.Is(err, ErrInvalidQuery) {
		t.Fatalf("error = %v, want ErrInvalidQuery", err)
	}
}

func TestParseQuery(t *testing.T) {
	q, err := ParseQuery(" 3.3 ", "-40")
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}
	if q.Voltage != 3.3 || q.Temperature != -40 {
		t.Errorf("ParseQuery = %+v", q)
	}

	tests := []struct {
		v, t, field string
	}{
		{"invalid", "25.0", "voltage"},
		{"5.0", "invalid", "temperature"},
		{"", "25", "voltage"},
		{"nan", "25", "voltage"},
		{"5", "inf", "temperature"},
	}
	for _, tt := range tests {
		_, err := ParseQuery(tt.v, tt.t)
		var qe *InvalidQueryError
		if !errors.As(err, &qe) {
			t.Errorf("ParseQuery(%q, %q) error = %v, want *InvalidQueryError", tt.v, tt.t, err)
			continue
		}
		if qe.Field != tt.field {
			t.Errorf("ParseQuery(%q, %q) field = %q, want %q", tt.v, tt.t, qe.Field, tt.field)
		}
		if !errors.Is(err, ErrInvalidQuery) {
			t.Errorf("error should wrap ErrInvalidQuery")
		}
	}
}
