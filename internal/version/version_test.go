// ABOUTME: Tests for version reporting
// ABOUTME: Checks String against link-time overrides of the package vars
package version

import "testing"

func TestString(t *testing.T) {
	tests := []struct {
		name    string
		product string
		version string
		want    string
	}{
		{"defaults", Product, Version, "pcmpipe 0.1.0"},
		{"release build", "pcmpipe", "1.2.3", "pcmpipe 1.2.3"},
		{"dev build", "pcmpipe-dev", "0.0.0-dirty", "pcmpipe-dev 0.0.0-dirty"},
	}

	origProduct, origVersion := Product, Version
	defer func() { Product, Version = origProduct, origVersion }()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Product, Version = tt.product, tt.version
			if got := String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
