package geo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gopherwall/gopherwall/pkg/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ report.CountryResolver = (*Reader)(nil)

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.mmdb"))
	assert.Error(t, err)
}

func TestOpenInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.mmdb")
	require.NoError(t, os.WriteFile(path, []byte("not a maxmind database"), 0600))
	_, err := Open(path)
	assert.Error(t, err)
}
