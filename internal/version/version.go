// ABOUTME: Version information for pcmpipe binaries
// ABOUTME: Overridable at link time with -ldflags "-X"
package version

var (
	// Version is the release version
	Version = "0.1.0"

	// Product is the name reported by the binaries and written into
	// container metadata
	Product = "pcmpipe"
)

// String returns "Product Version"
func String() string {
	return Product + " " + Version
}
