package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePsrcatDB(t *testing.T) string {
	t.Helper()

	db := filepath.Join(t.TempDir(), "psrcat.db")
	require.NoError(t, os.WriteFile(db, []byte(psrcatDB), 0o644))

	return db
}

func TestLookupCmd_FindsPulsar(t *testing.T) {
	db := writePsrcatDB(t)

	out := &bytes.Buffer{}

	cmd := newRootCmd()
	cmd.AddCommand(newLookupCmd())
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"lookup", "1713+0747", "--db", db})

	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "RA 17:13:49.5335615")
	assert.Contains(t, out.String(), "Dec +07:47:37.48847")
}

func TestLookupCmd_NotFound(t *testing.T) {
	db := writePsrcatDB(t)

	out := &bytes.Buffer{}

	cmd := newRootCmd()
	cmd.AddCommand(newLookupCmd())
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"lookup", "J9999+9999", "--db", db})

	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "not found in catalog")
}

func TestLookupCmd_EnvFallback(t *testing.T) {
	db := writePsrcatDB(t)
	t.Setenv("PSRCAT_FILE", db)

	out := &bytes.Buffer{}

	cmd := newRootCmd()
	cmd.AddCommand(newLookupCmd())
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"lookup", "J1713+0747"})

	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "RA 17:13:49.5335615")
}

func TestLookupCmd_NoDatabase(t *testing.T) {
	t.Setenv("PSRCAT_FILE", "")

	cmd := newRootCmd()
	cmd.AddCommand(newLookupCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"lookup", "J1713+0747"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PSRCAT_FILE")
}
