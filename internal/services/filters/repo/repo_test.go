package repo

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	perr "seedsearch/internal/platform/errors"
	dom "seedsearch/internal/services/filters/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *dom.Filter {
	return &dom.Filter{
		Name:        "perkeo",
		Author:      "tester",
		DateCreated: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Deck:        "Ghost",
		Stake:       "White",
		Must:        []dom.Clause{{"seed": "A*", "type": "joker"}},
		Should:      []dom.Clause{{"seed": "*Z", "score": 3}},
	}
}

func TestWriteRead_JSONAndYAML(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	r := NewFiles()

	for _, name := range []string{"f.json", "f.yaml", "f.yml"} {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(dir, name)
			require.NoError(t, r.Write(ctx, p, sample()))

			got, st, err := r.Read(ctx, p)
			require.NoError(t, err)
			assert.Equal(t, p, got.Path)
			assert.Equal(t, "perkeo", got.Name)
			assert.Equal(t, "Ghost", got.Deck)
			assert.True(t, got.DateCreated.Equal(sample().DateCreated))
			require.Len(t, got.Must, 1)
			assert.Equal(t, "A*", got.Must[0]["seed"])
			assert.NotNil(t, st)
		})
	}
}

func TestWrite_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "sub", "x.json")
	require.NoError(t, NewFiles().Write(context.Background(), p, sample()))
	entries, err := os.ReadDir(filepath.Dir(p))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "x.json", entries[0].Name())
}

func TestRead_Errors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	r := NewFiles()

	_, _, err := r.Read(ctx, filepath.Join(dir, "missing.json"))
	assert.True(t, perr.IsCode(err, perr.ErrorCodeNotFound), "got %v", err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{nope"), 0o600))
	_, _, err = r.Read(ctx, bad)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeDecode), "got %v", err)

	badY := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badY, []byte("name: [unclosed"), 0o600))
	_, _, err = r.Read(ctx, badY)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeDecode), "got %v", err)

	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("x"), 0o600))
	_, _, err = r.Read(ctx, txt)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument), "got %v", err)

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, _, err = r.Read(cctx, bad)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	for _, n := range []string{"b.yaml", "a.json", "c.txt", ".hidden.json"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("{}"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0o755))

	got, err := NewFiles().List(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.json"), filepath.Join(dir, "b.yaml")}, got)

	none, err := NewFiles().List(ctx, filepath.Join(dir, "nope"))
	require.NoError(t, err)
	assert.Empty(t, none)
}
