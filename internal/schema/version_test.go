package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.0", "1.0.1", -1},
		{"1.2.0", "1.0.9", 1},
		{"1.2", "1.2.0", 0},
		{"1.10.0", "1.9.0", 1},
		{"2", "1.99.99", 1},
		{"0.9", "1.0", -1},
	}
	for _, tt := range tests {
		got := CompareVersions(tt.a, tt.b)
		assert.Equal(t, tt.want, got, "CompareVersions(%q, %q)", tt.a, tt.b)
	}
}

func TestUnversionedRef(t *testing.T) {
	assert.Equal(t, "Drive.json#/definitions/Drive",
		UnversionedRef("Drive.v1_2_0.json#/definitions/Drive"))
	assert.Equal(t, "Resource.json#/definitions/Status",
		UnversionedRef("Resource.json#/definitions/Status"))
}

func TestRefVersion(t *testing.T) {
	assert.Equal(t, "1.2.0", RefVersion("Drive.v1_2_0.json#/definitions/Drive"))
	assert.Equal(t, "", RefVersion("Resource.json#/definitions/Status"))
	assert.Equal(t, "11.0.3", RefVersion("Chassis.v11_0_3.json"))
}

func TestTruncateVersion(t *testing.T) {
	tests := []struct {
		version string
		num     int
		want    string
	}{
		{"1.2.0", 2, "1.2"},
		{"1.2.3", 2, "1.2.3"},
		{"1.0.0", 2, "1.0"},
		{"1", 2, "1"},
		{"2.0.0.1", 2, "2.0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TruncateVersion(tt.version, tt.num),
			"TruncateVersion(%q, %d)", tt.version, tt.num)
	}
}
