package excluder

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsExcluded(t *testing.T) {
	root := filepath.Join("srv", "share")
	ex, err := New([]string{"*.lock", "archive/keep-*", "inbox/**/*.tmp"}, root)
	require.NoError(t, err)

	cases := []struct {
		name     string
		path     string
		excluded bool
	}{
		{"base name match", filepath.Join(root, "inbox", "job.lock"), true},
		{"relative match", filepath.Join(root, "archive", "keep-me.csv"), true},
		{"relative pattern other folder", filepath.Join(root, "inbox", "keep-me.csv"), false},
		{"super asterisk", filepath.Join(root, "inbox", "a", "b.tmp"), true},
		{"no match", filepath.Join(root, "inbox", "report.csv"), false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.excluded, ex.IsExcluded(c.path))
		})
	}
}

func TestEmptyExcluder(t *testing.T) {
	ex, err := New(nil, "/")
	require.NoError(t, err)
	assert.False(t, ex.IsExcluded("/anything"))

	var none *Excluder
	assert.False(t, none.IsExcluded("/anything"))
}

func TestInvalidPattern(t *testing.T) {
	_, err := New([]string{"[unterminated"}, "/")
	assert.Error(t, err)
}
