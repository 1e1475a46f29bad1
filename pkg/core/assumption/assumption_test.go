package assumption

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileLayersOverDefaults(t *testing.T) {
	// HJSON: comments and trailing commas are analyst-friendly.
	content := `{
  // house view
  beta: 1.2,
  terminal_growth: 0.04,
}`
	path := filepath.Join(t.TempDir(), "assumptions.hjson")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	a, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if a.Beta != 1.2 {
		t.Errorf("Beta: expected 1.2, got %v", a.Beta)
	}
	if a.TerminalGrowth != 0.04 {
		t.Errorf("TerminalGrowth: expected 0.04, got %v", a.TerminalGrowth)
	}
	// Untouched fields keep their defaults.
	def := Defaults()
	if a.RiskFreeRate != def.RiskFreeRate || a.ForecastYears != def.ForecastYears {
		t.Errorf("Expected defaults for unset fields, got %+v", a)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.hjson")); err == nil {
		t.Errorf("Expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	a := Defaults()
	if err := a.Validate(); err != nil {
		t.Errorf("Defaults must validate, got %v", err)
	}
	a.ForecastYears = 0
	if err := a.Validate(); err == nil {
		t.Errorf("Expected error for zero forecast years")
	}
	a = Defaults()
	a.TaxRate = 1.5
	if err := a.Validate(); err == nil {
		t.Errorf("Expected error for tax rate above 1")
	}
}
