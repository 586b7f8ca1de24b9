package postgres

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var versionPattern = regexp.MustCompile(`^(\d+)(?:\.(\d+))?(?:\.(\d+))?`)

// VersionInfo is a parsed server_version.
type VersionInfo struct {
	Major int    // e.g. 16
	Minor int    // e.g. 4
	Patch int    // only set for 9.x and older
	Raw   string // as reported by the server
}

// String returns the numeric part of the version.
func (v VersionInfo) String() string {
	if v.Patch > 0 {
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}

	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// IsAtLeast checks if this version is at least major.minor.
func (v VersionInfo) IsAtLeast(major, minor int) bool {
	if v.Major != major {
		return v.Major > major
	}

	return v.Minor >= minor
}

// ServerVersion reads and parses the server version of the open session.
func ServerVersion(ctx context.Context, db Querier) (*VersionInfo, error) {
	rows, err := db.Query(ctx, "SHOW server_version")
	if err != nil {
		return nil, errors.Wrap(err, "failed to query server version")
	}

	if len(rows) == 0 {
		return nil, errors.New("server version not reported")
	}

	raw, _ := rows[0]["server_version"].(string)
	return ParseVersion(raw)
}

// ParseVersion parses strings like "16.4", "17beta1" or
// "15.8 (Debian 15.8-1.pgdg120+1)".
func ParseVersion(s string) (*VersionInfo, error) {
	cleaned := strings.TrimSpace(s)
	if i := strings.IndexByte(cleaned, ' '); i != -1 {
		cleaned = cleaned[:i]
	}

	m := versionPattern.FindStringSubmatch(cleaned)
	if m == nil {
		return nil, errors.Errorf("invalid version format: %s", s)
	}

	nums := make([]int, 3)
	for i, part := range m[1:] {
		if part == "" {
			continue
		}

		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid version component: %s", part)
		}
		nums[i] = n
	}

	return &VersionInfo{Major: nums[0], Minor: nums[1], Patch: nums[2], Raw: s}, nil
}
