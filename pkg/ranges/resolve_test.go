package ranges

import (
	"io"
	"log/slog"
	"testing"
)

func newTestResolver(t *testing.T, c Category) *Resolver {
	t.Helper()
	r, err := NewResolver(c, ResolverOptions{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	if err != nil {
		t.Fatalf("NewResolver(%s): %v", c, err)
	}
	return r
}

func TestResolve_VoltageFormats(t *testing.T) {
	text := `
        VDD: 3.3V to 5V
        Input voltage: -12V to +12V
        Supply voltage, 1.8V - 3.6V
        `
	set, _ := newTestResolver(t, Voltage).Resolve(text)
	if set.Len() != 3 {
		t.Fatalf("voltage candidates = %v, want 3 distinct", set.Ranges())
	}
	for _, want := range []Range{{3.3, 5}, {-12, 12}} {
		if !set.Contains(want) {
			t.Errorf("missing %v in %v", want, set.Ranges())
		}
	}
}

func TestResolve_UnicodeDigits(t *testing.T) {
	set, _ := newTestResolver(t, Voltage).Resolve("VDD: ٣V to ٥V")
	if !set.Equal(NewSet(Range{3, 5})) {
		t.Errorf("voltage = %v, want [3, 5]", set.Ranges())
	}
}

func TestResolve_TemperatureFormats(t *testing.T) {
	text := `
        Operating temperature: -40°C to +85°C
        Ta = -20C to 70C
        Temperature Range: -50°C to 0°C
        `
	set, _ := newTestResolver(t, Temperature).Resolve(text)
	if set.Len() != 3 {
		t.Fatalf("temperature candidates = %v, want 3 distinct", set.Ranges())
	}
	for _, want := range []Range{{-40, 85}, {-20, 70}, {-50, 0}} {
		if !set.Contains(want) {
			t.Errorf("missing %v in %v", want, set.Ranges())
		}
	}
}

func TestResolve_RealComponentText(t *testing.T) {
	text := `
        Wide operating temperature: -40°C to +125°C
        Supply voltage: 1.71V to 5.5V
        `
	volts, _ := newTestResolver(t, Voltage).Resolve(text)
	temps, _ := newTestResolver(t, Temperature).Resolve(text)

	if !volts.Equal(NewSet(Range{1.71, 5.5})) {
		t.Errorf("voltage = %v, want [(1.71, 5.5)]", volts.Ranges())
	}
	if !temps.Equal(NewSet(Range{-40, 125})) {
		t.Errorf("temperature = %v, want [(-40, 125)]", temps.Ranges())
	}
}

func TestResolve_OperationSuffix(t *testing.T) {
	text := `
        3.15V to 3.45V Operation
        4.2V to 5.5V operation
        VDD = 3.3V to 5.0V
        `
	set, _ := newTestResolver(t, Voltage).Resolve(text)
	want := NewSet(Range{3.15, 3.45}, Range{4.2, 5.5}, Range{3.3, 5.0})
	if !set.Equal(want) {
		t.Errorf("voltage = %v, want %v", set.Ranges(), want.Ranges())
	}

	text = "Industrial Temperature Range: -40°C to +85°C with LOS\n        3.15V to 3.45V Operation"
	set, _ = newTestResolver(t, Voltage).Resolve(text)
	if !set.Equal(NewSet(Range{3.15, 3.45})) {
		t.Errorf("voltage = %v, want [(3.15, 3.45)]", set.Ranges())
	}
}

func TestResolve_DuplicateMentionsCollapse(t *testing.T) {
	text := "VDD: 5V to 12V\nSupply: 5V to 12V\n• 12V to 5V"
	set, rep := newTestResolver(t, Voltage).Resolve(text)
	if set.Len() != 1 || !set.Contains(Range{5, 12}) {
		t.Errorf("voltage = %v, want [(5, 12)]", set.Ranges())
	}
	if rep.LineMatches != 3 {
		t.Errorf("LineMatches = %d, want 3", rep.LineMatches)
	}
}

func TestResolve_ImplausibleVoltageDropped(t *testing.T) {
	text := "VDD: 3.3V to 5V\nSupply: 100V to 250V\nVin: 5V to 5V"
	set, rep := newTestResolver(t, Voltage).Resolve(text)
	if !set.Equal(NewSet(Range{3.3, 5})) {
		t.Errorf("voltage = %v, want [(3.3, 5)]", set.Ranges())
	}
	if rep.Implausible != 2 {
		t.Errorf("Implausible = %d, want 2", rep.Implausible)
	}
}

func TestResolve_TemperatureNotBoundsChecked(t *testing.T) {
	set, _ := newTestResolver(t, Temperature).Resolve("Tj: -55°C to 150°C")
	if !set.Contains(Range{-55, 150}) {
		t.Errorf("temperature = %v, want (-55, 150)", set.Ranges())
	}
}

func TestResolve_PerLinePairing(t *testing.T) {
	// The document-wide scan pairs numbers across the break; per-line does not.
	text := "Operating conditions\n-40°C to 85°C"
	set, rep := newTestResolver(t, Temperature).Resolve(text)
	if rep.DocumentMatches != 1 {
		t.Errorf("DocumentMatches = %d, want 1", rep.DocumentMatches)
	}
	if set.Len() != 0 {
		t.Errorf("temperature = %v, want none", set.Ranges())
	}
}

func TestResolve_Idempotent(t *testing.T) {
	text := "VDD: 3.3V to 5V\nInput voltage: -12V to +12V\nSupply voltage, 1.8V - 3.6V\nVDD: 3.3V to 5V"
	r := newTestResolver(t, Voltage)
	a, _ := r.Resolve(text)
	b, _ := r.Resolve(text)
	if !a.Equal(b) {
		t.Errorf("re-running extraction changed the set: %v vs %v", a.Ranges(), b.Ranges())
	}
}

func TestResolve_RangesOrderedAndPlausible(t *testing.T) {
	text := `
        VDD: 3.3V to 5V
        Vin -0.3V to 6.5V
        Supply voltage 0V to 150V
        power 12V-5V
        Tj: 150 to -55 C
        `
	for _, c := range []Category{Voltage, Temperature} {
		set, _ := newTestResolver(t, c).Resolve(text)
		for _, r := range set.Ranges() {
			if r.Low > r.High {
				t.Errorf("%s range %v has low > high", c, r)
			}
			if c == Voltage && !ValidVoltage(r) {
				t.Errorf("voltage range %v escaped validation", r)
			}
		}
	}
}

func TestResolve_EmptyText(t *testing.T) {
	set, rep := newTestResolver(t, Voltage).Resolve("")
	if set.Len() != 0 || rep.LineMatches != 0 {
		t.Errorf("empty text produced %v", set.Ranges())
	}
}
