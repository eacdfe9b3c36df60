package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CheckVersionCompatibility checks if the version a binary supports and the version
// a config file declares are compatible. Returns nil if compatible.
//
// Compatibility Rules:
//   - If either version is "main" (development build), compatibility check is skipped
//   - Major versions must match exactly
//   - Minor versions must match exactly
//   - Patch versions can differ (e.g., 1.2.0 is compatible with 1.2.5)
//
// Examples:
//   - Supported 1.2.0, Declared 1.2.0 -> OK (exact match)
//   - Supported 1.2.1, Declared 1.2.0 -> OK (patch differs)
//   - Supported 1.3.0, Declared 1.2.0 -> ERROR (minor differs)
//   - Supported 2.0.0, Declared 1.2.0 -> ERROR (major differs)
//   - Supported main, Declared 1.2.0 -> OK (dev build, skip check)
func CheckVersionCompatibility(supportedVersion, declaredVersion string) error {
	supportedVersion = strings.TrimPrefix(supportedVersion, "v")
	declaredVersion = strings.TrimPrefix(declaredVersion, "v")

	if supportedVersion == "main" || declaredVersion == "main" {
		return nil
	}

	supported, err := semver.NewVersion(supportedVersion)
	if err != nil {
		return fmt.Errorf("invalid supported version '%s': %w", supportedVersion, err)
	}

	declared, err := semver.NewVersion(declaredVersion)
	if err != nil {
		return fmt.Errorf("invalid declared version '%s': %w", declaredVersion, err)
	}

	if supported.Major() != declared.Major() {
		return fmt.Errorf("major version mismatch: binary reads %d.x.x but config is %d.x.x",
			supported.Major(), declared.Major())
	}

	if supported.Minor() != declared.Minor() {
		return fmt.Errorf("minor version mismatch: binary reads %d.%d.x but config is %d.%d.x",
			supported.Major(), supported.Minor(),
			declared.Major(), declared.Minor())
	}

	return nil
}
