package matching

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"  Hazard Communication (HazCom) Training ": "hazard communication hazcom",
		"Crème Brûlée Course":                        "creme brulee",
		"CPR & AED":                                  "cpr aed",
		"Certification":                              "",
		"OSHA-10 Construction":                       "osha 10 construction",
	}
	for in, want := range tests {
		assert.Equal(t, want, Normalize(in), in)
	}
}

func TestTokens(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"The Forklift & Pallet Jack Course", []string{"forklift", "pallet", "jack"}},
		{"Lockout/Tagout (LOTO)", []string{"lockout", "tagout", "loto"}},
		{"Certification", nil},
		{"", nil},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, Tokens(tt.in), cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("Tokens(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "jane doe", NormalizeName("Doe, Jane A."))
	assert.Equal(t, "jane doe", NormalizeName("JANE Q DOE"))
	assert.Equal(t, "maria garcia", NormalizeName("García, María"))
	assert.Equal(t, "", NormalizeName(" , "))
}

func TestNormalizeNumber(t *testing.T) {
	assert.Equal(t, "123", NormalizeNumber("  000123 "))
	assert.Equal(t, "0", NormalizeNumber("000"))
	assert.Equal(t, "A-12", NormalizeNumber("a-12"))
	assert.Equal(t, "", NormalizeNumber("   "))
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("Forklift Operator Training", "forklift operator"), 1e-9)
	assert.InDelta(t, 1.0, Similarity("CPR/AED", "CPR & AED"), 1e-9)
	assert.InDelta(t, 1.0, Similarity("Forklift Oper", "Forklift Operator"), 1e-9)
	assert.InDelta(t, 0.9, Similarity("BBP", "Blood Borne Pathogens"), 1e-9)
	assert.InDelta(t, 0.8, Similarity("Hazard Communication Refresher", "Hazard Communication"), 1e-9)
	assert.Less(t, Similarity("Fire Safety", "First Aid"), 0.5)
	assert.Zero(t, Similarity("", "First Aid"))
	assert.Zero(t, Similarity("Training", "First Aid"))
}
