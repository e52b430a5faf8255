package takeout

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIDs(t *testing.T) {
	input := "\ufeffComment ID,Channel ID,Comment Text\n" +
		"Ugx1,UC1,hello\n" +
		"Ugx2,UC1,\"multi\nline, with comma\"\n" +
		"\n" +
		",UC1,no id\n" +
		"Ugx1,UC1,again\n" +
		"Ugx3\n"

	ids, err := parseIDs(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"Ugx1", "Ugx2", "Ugx1", "Ugx3"}, ids)
}

func TestParseIDs_NoHeader(t *testing.T) {
	ids, err := parseIDs(strings.NewReader("Ugx1,a\nUgx2,b\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Ugx1", "Ugx2"}, ids)
}

func TestReadIDs_SkipsUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "comments.csv")
	require.NoError(t, os.WriteFile(good, []byte("Comment ID\nUgx1\nUgx2\n"), 0o644))

	ids, err := ReadIDs(context.Background(), zerolog.Nop(), []string{
		filepath.Join(dir, "missing.csv"),
		good,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ugx1", "Ugx2"}, ids)
}

func TestReadIDs_AllFilesFail(t *testing.T) {
	_, err := ReadIDs(context.Background(), zerolog.Nop(), []string{
		filepath.Join(t.TempDir(), "missing.csv"),
	})
	assert.Error(t, err)
}
