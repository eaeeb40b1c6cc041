package schema

import (
	"regexp"
	"strconv"
	"strings"
)

// Version strings are dotted numeric segments ("1.2.0"). Schema file
// identifiers embed them in underscore form ("Drive.v1_2_0").
var versionSegment = regexp.MustCompile(`\.v(\d+(?:_\d+)*)`)

// CompareVersions compares two dotted version strings numerically,
// segment by segment. Missing segments compare as zero. Returns -1, 0,
// or 1 as a is lower than, equal to, or higher than b.
func CompareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		av, bv := 0, 0
		if i < len(as) {
			av, _ = strconv.Atoi(as[i])
		}
		if i < len(bs) {
			bv, _ = strconv.Atoi(bs[i])
		}
		if av < bv {
			return -1
		}
		if av > bv {
			return 1
		}
	}
	return 0
}

// UnversionedRef strips the version segment from a reference, producing
// the key under which all versions of the same definition collide.
// "Drive.v1_2_0.json#/definitions/Drive" becomes
// "Drive.json#/definitions/Drive". References without a version segment
// are returned unchanged.
func UnversionedRef(ref string) string {
	return versionSegment.ReplaceAllString(ref, "")
}

// RefVersion extracts the dotted version from a reference, or "" if the
// reference is unversioned.
func RefVersion(ref string) string {
	m := versionSegment.FindStringSubmatch(ref)
	if m == nil {
		return ""
	}
	return strings.ReplaceAll(m[1], "_", ".")
}

// TruncateVersion shortens a version string to num segments, keeping
// additional segments only while they are non-zero. "1.2.0" with num 2
// yields "1.2"; "1.2.3" stays "1.2.3".
func TruncateVersion(version string, num int) string {
	parts := strings.Split(version, ".")
	keep := make([]string, 0, len(parts))
	for _, part := range parts {
		if len(keep) < num {
			keep = append(keep, part)
		} else if part != "0" {
			keep = append(keep, part)
		} else {
			break
		}
	}
	return strings.Join(keep, ".")
}
