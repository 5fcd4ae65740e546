// Package version provides the server version and helpers for comparing
// semantic version strings.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is the service current released version.
var Version = "0.2.0"

// DevVersion is the service current development version.
var DevVersion = "0.2.0"

func GetCurrentVersion(mode string) string {
	if mode == "dev" || mode == "demo" {
		return DevVersion
	}
	return Version
}

func GetMinorVersion(version string) string {
	versionList := strings.Split(version, ".")
	if len(versionList) < 3 {
		return ""
	}
	return versionList[0] + "." + versionList[1]
}

// IsVersionGreaterOrEqualThan returns true if version is greater than or equal to target.
func IsVersionGreaterOrEqualThan(version, target string) bool {
	return compareVersion(version, target) >= 0
}

// IsVersionGreaterThan returns true if version is greater than target.
func IsVersionGreaterThan(version, target string) bool {
	return compareVersion(version, target) > 0
}

func compareVersion(version, target string) int {
	vParts := strings.Split(version, ".")
	tParts := strings.Split(target, ".")
	for i := 0; i < len(vParts) || i < len(tParts); i++ {
		v, t := 0, 0
		if i < len(vParts) {
			v, _ = strconv.Atoi(vParts[i])
		}
		if i < len(tParts) {
			t, _ = strconv.Atoi(tParts[i])
		}
		if v != t {
			if v > t {
				return 1
			}
			return -1
		}
	}
	return 0
}

func String() string {
	return fmt.Sprintf("v%s", Version)
}
