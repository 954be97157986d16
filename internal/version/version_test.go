package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo(t *testing.T) {
	info := Info()

	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.String(), "salesclean")
	assert.Contains(t, info.String(), "Version:")
	assert.Contains(t, info.String(), "Go Version:")
}

func TestInfoPrefersLdflags(t *testing.T) {
	originalCommit := GitCommit
	defer func() { GitCommit = originalCommit }()
	GitCommit = "0123456789abcdef"

	assert.Equal(t, "0123456789abcdef", Info().GitCommit)
}

func TestBuildInfoString(t *testing.T) {
	info := BuildInfo{
		Version:   "v1.0.0",
		BuildDate: "2024-01-01T00:00:00Z",
		GitCommit: "abc123def456",
		GoVersion: "go1.24.4",
		Module:    "github.com/paveg/salesclean",
	}

	str := info.String()
	assert.Contains(t, str, "Version: v1.0.0\n")
	assert.Contains(t, str, "Build Date: 2024-01-01T00:00:00Z")
	assert.Contains(t, str, "Git Commit: abc123d")
	assert.Contains(t, str, "Go Version: go1.24.4")
	assert.Contains(t, str, "Module: github.com/paveg/salesclean")
}

func TestBuildInfoStringOmitsUnknowns(t *testing.T) {
	info := BuildInfo{
		Version:   "dev",
		BuildDate: unknownValue,
		GitCommit: unknownValue,
		GoVersion: "go1.24.4",
		Dirty:     true,
	}

	str := info.String()
	assert.Contains(t, str, "Version: dev (dirty)")
	assert.NotContains(t, str, "Build Date")
	assert.NotContains(t, str, "Git Commit")
}

func TestShort(t *testing.T) {
	assert.Equal(t, "salesclean dev", BuildInfo{Version: "dev", GitCommit: unknownValue}.Short())
	assert.Equal(t, "salesclean v1.2.0 (abc1234)", BuildInfo{Version: "v1.2.0", GitCommit: "abc1234ffff"}.Short())
}
