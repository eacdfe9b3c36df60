package version

// Version is the current version of argo-dashboard.
// This value is set at build time using ldflags:
// -ldflags "-X github.com/rxtech-lab/argo-dashboard/internal/version.Version=1.2.3"
// The default value "main" indicates a development build.
var Version = "main"

// ConfigVersion is the configuration file format this binary reads.
// A config file declares the version it was written for and must match
// on major and minor.
const ConfigVersion = "1.0.0"

// GetVersion returns the current version of the binary.
func GetVersion() string {
	return Version
}
