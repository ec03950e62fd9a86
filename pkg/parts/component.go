// Package parts turns datasheet documents into components with authoritative
// operating ranges and matches them against a voltage/temperature point.
package parts

import (
	"encoding/json"

	"github.com/hazyhaar/partmatch/pkg/ranges"
)

// Component is one datasheet document's extracted operating ranges.
// It is immutable once built.
type Component struct {
	name        string
	volts       *ranges.Set
	temps       *ranges.Set
	voltage     *ranges.Range
	temperature *ranges.Range
}

// NewComponent builds a component from its candidate sets and resolves the
// authoritative range of each category by consensus. Nil sets are empty.
func NewComponent(name string, volts, temps *ranges.Set) *Component {
	if volts == nil {
		volts = ranges.NewSet()
	}
	if temps == nil {
		temps = ranges.NewSet()
	}
	c := &Component{name: name, volts: volts, temps: temps}
	if r, ok := volts.Consensus(); ok {
		c.voltage = &r
	}
	if r, ok := temps.Consensus(); ok {
		c.temperature = &r
	}
	return c
}

// Name returns the source document identifier.
func (c *Component) Name() string { return c.name }

// Voltage returns the authoritative voltage range, if any.
func (c *Component) Voltage() (ranges.Range, bool) {
	if c.voltage == nil {
		return ranges.Range{}, false
	}
	return *c.voltage, true
}

// Temperature returns the authoritative temperature range, if any.
func (c *Component) Temperature() (ranges.Range, bool) {
	if c.temperature == nil {
		return ranges.Range{}, false
	}
	return *c.temperature, true
}

// Candidates returns the distinct candidate ranges of a category, sorted.
func (c *Component) Candidates(cat ranges.Category) []ranges.Range {
	return c.set(cat).Ranges()
}

// Verdict returns the consensus outcome for a category.
func (c *Component) Verdict(cat ranges.Category) ranges.Verdict {
	return c.set(cat).Verdict()
}

func (c *Component) set(cat ranges.Category) *ranges.Set {
	if cat == ranges.Temperature {
		return c.temps
	}
	return c.volts
}

// Compatible reports whether both authoritative ranges exist and contain q.
func (c *Component) Compatible(q Query) bool {
	if c.voltage == nil || c.temperature == nil {
		return false
	}
	return c.voltage.Contains(q.Voltage) && c.temperature.Contains(q.Temperature)
}

type componentJSON struct {
	Name                  string        `json:"name"`
	Voltage               *ranges.Range `json:"voltage"`
	Temperature           *ranges.Range `json:"temperature"`
	VoltageCandidates     *ranges.Set   `json:"voltage_candidates"`
	TemperatureCandidates *ranges.Set   `json:"temperature_candidates"`
	VoltageVerdict        string        `json:"voltage_verdict"`
	TemperatureVerdict    string        `json:"temperature_verdict"`
}

// MarshalJSON exposes the component's ranges; null marks a missing
// authoritative range.
func (c *Component) MarshalJSON() ([]byte, error) {
	return json.Marshal(componentJSON{
		Name:                  c.name,
		Voltage:               c.voltage,
		Temperature:           c.temperature,
		VoltageCandidates:     c.volts,
		TemperatureCandidates: c.temps,
		VoltageVerdict:        c.volts.Verdict().String(),
		TemperatureVerdict:    c.temps.Verdict().String(),
	})
}
