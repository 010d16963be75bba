package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		v1, v2 string
		want   int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.2", "1.2.0", 0},
		{"2.44.1", "2.44.0", 1},
		{"2.9", "2.10", -1},
		{"v18.20.1", "18.20.0", 1},
		{"1.2.3-beta", "1.2.3", 0},
	}
	for _, tt := range tests {
		t.Run(tt.v1+"_vs_"+tt.v2, func(t *testing.T) {
			got := CompareVersions(tt.v1, tt.v2)
			switch {
			case tt.want < 0:
				assert.Negative(t, got)
			case tt.want > 0:
				assert.Positive(t, got)
			default:
				assert.Zero(t, got)
			}
		})
	}
}

func TestDetermineAction(t *testing.T) {
	assert.Equal(t, ActionFreshInstall, DetermineAction("", "2.44.0"))
	assert.Equal(t, ActionUpgrade, DetermineAction("2.43.0", "2.44.0"))
	assert.Equal(t, ActionDowngrade, DetermineAction("2.45.0", "2.44.0"))
	assert.Equal(t, ActionReinstall, DetermineAction("2.44.0", "2.44"))
	assert.Equal(t, "Upgrade", ActionUpgrade.String())
}

func TestMatchesVersion(t *testing.T) {
	assert.True(t, matchesVersion("2.44.1", "2.44"))
	assert.True(t, matchesVersion("2.44", "2.44"))
	assert.False(t, matchesVersion("2.441", "2.44"))
}
