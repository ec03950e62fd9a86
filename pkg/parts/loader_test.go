package parts

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/hazyhaar/partmatch/pkg/ranges"
)

// writeLibrary writes datasheet files under a temp dir and returns the dir.
func writeLibrary(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func newTestLoader(t *testing.T, opts LoaderOptions) *Loader {
	t.Helper()
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewLoader(newTestExtractor(t, Options{}), opts)
}

var library = map[string]string{
	"regulator.txt":       "Input voltage: 2.7V to 15V\nOperating temperature: -40°C to +125°C\n",
	"sensors/tmp36.txt":   "Supply voltage of 2.7V to 5.5V\nTa = -40C to 125C\n",
	"mcu.txt":             "VDD: 1.8V to 3.6V\nVDD: 3.3V to 5V\nTj: -40°C to 85°C\n",
	"passive.txt":         "Resistance 10 kOhm, tolerance 1%\n",
	"latin1.txt":          "VDD: 3.0V to 3.6V\nTa: -20\xb0C to 70\xb0C\n",
	"notes.md":            "VDD: 1V to 2V\n",
	"sensors/readme.text": "ignored",
}

func TestLoadDir(t *testing.T) {
	dir := writeLibrary(t, library)
	comps, stats, err := newTestLoader(t, LoaderOptions{Workers: 2}).LoadDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}

	if len(comps) != 5 {
		t.Fatalf("components = %d, want 5", len(comps))
	}
	// Sorted by path: latin1, mcu, passive, regulator, sensors/tmp36.
	wantOrder := []string{"latin1.txt", "mcu.txt", "passive.txt", "regulator.txt", "tmp36.txt"}
	for i, c := range comps {
		if c.Name() != wantOrder[i] {
			t.Errorf("comps[%d] = %q, want %q", i, c.Name(), wantOrder[i])
		}
	}

	want := LoadStats{TotalFiles: 5, SuccessfulParse: 3, MultipleRangesRejected: 1, InvalidRangesRejected: 1}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}

	latin1 := comps[0]
	if tr, ok := latin1.Temperature(); !ok || tr != (ranges.Range{Low: -20, High: 70}) {
		t.Errorf("latin1 temperature = %v, %v; want (-20, 70)", tr, ok)
	}
}

func TestLoadDir_Missing(t *testing.T) {
	_, _, err := newTestLoader(t, LoaderOptions{}).LoadDir(context.Background(), filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestLoadDir_Cancelled(t *testing.T) {
	dir := writeLibrary(t, library)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := newTestLoader(t, LoaderOptions{Workers: 1}).LoadDir(ctx, dir); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestLoadFile_UndecodableDegrades(t *testing.T) {
	dir := writeLibrary(t, map[string]string{"bad.txt": "VDD: 3.3V to 5V\xff"})
	l := newTestLoader(t, LoaderOptions{Encodings: []string{"utf-8"}})
	c := l.LoadFile(filepath.Join(dir, "bad.txt"))
	if c.Name() != "bad.txt" {
		t.Errorf("Name = %q", c.Name())
	}
	if len(c.Candidates(ranges.Voltage)) != 0 {
		t.Errorf("undecodable file produced candidates %v", c.Candidates(ranges.Voltage))
	}
}

func TestLoadFile_Unreadable(t *testing.T) {
	c := newTestLoader(t, LoaderOptions{}).LoadFile(filepath.Join(t.TempDir(), "ghost.txt"))
	if c.Name() != "ghost.txt" || c.Verdict(ranges.Voltage) != ranges.VerdictNone {
		t.Errorf("unreadable file should give an empty component, got %+v", c)
	}
}

func TestCatalog(t *testing.T) {
	dir := writeLibrary(t, library)
	cat := NewCatalog(newTestLoader(t, LoaderOptions{}), dir)
	if err := cat.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cat.Count() != 5 {
		t.Errorf("Count = %d, want 5", cat.Count())
	}
	if _, ok := cat.Get("REGULATOR.TXT"); !ok {
		t.Error("Get should ignore case")
	}
	if _, ok := cat.Get("missing.txt"); ok {
		t.Error("Get(missing.txt) should fail")
	}

	names, err := cat.Compatible(Query{Voltage: 3.3, Temperature: 25})
	if err != nil {
		t.Fatalf("Compatible: %v", err)
	}
	want := []string{"latin1.txt", "regulator.txt", "tmp36.txt"}
	if len(names) != len(want) {
		t.Fatalf("Compatible = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Compatible[%d] = %q, want %q", i, names[i], want[i])
		}
	}

	// Hot reload picks up a new file.
	if err := os.WriteFile(filepath.Join(dir, "new.txt"), []byte("VDD: 1V to 2V\nTa: 0C to 50C"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := cat.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if cat.Count() != 6 || cat.Stats().TotalFiles != 6 {
		t.Errorf("after reload Count = %d, stats = %+v", cat.Count(), cat.Stats())
	}
}
