package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func run(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(strings.NewReader(input), &out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSort(t *testing.T) {
	out, err := run(t, "abc\nABC\nab\nabC\nAB\n", "sort", "--case", "breaks-ties")
	require.NoError(t, err)
	require.Equal(t, "AB\nab\nABC\nabC\nabc\n", out)

	out, err = run(t, "b\na\nc\n", "sort", "--desc", "--parallel", "2")
	require.NoError(t, err)
	require.Equal(t, "c\nb\na\n", out)
}

func TestSortTopUnique(t *testing.T) {
	in := "pear\napple\nfig\napple\nkiwi\nfig\n"
	out, err := run(t, in, "sort", "--top", "2")
	require.NoError(t, err)
	require.Equal(t, "apple\napple\n", out)

	out, err = run(t, in, "sort", "--unique")
	require.NoError(t, err)
	require.Equal(t, "apple\nfig\nkiwi\npear\n", out)

	out, err = run(t, in, "sort", "-u", "-k", "3")
	require.NoError(t, err)
	require.Equal(t, "apple\nfig\nkiwi\n", out)
}

func TestSortBadCase(t *testing.T) {
	_, err := run(t, "a\n", "sort", "--case", "shouting")
	require.Error(t, err)
}

func TestSortNormChars(t *testing.T) {
	out, err := run(t, "resume\nrésumé\nRESUME\n", "sort", "--unique", "--case", "norm")
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(out, "\n"))
}

func TestRank(t *testing.T) {
	out, err := run(t, "5\n3\n3\n1\n4\n1\n", "rank")
	require.NoError(t, err)
	require.Equal(t, "3\t5\n1\t3\n1\t3\n0\t1\n2\t4\n0\t1\n", out)
}

func TestSearch(t *testing.T) {
	in := "1\n1\n3\n3\n4\n5\n"
	cases := map[string][]string{
		"2\n":  {"--target", "3", "--ge"},
		"4\n":  {"--target", "3", "--after"},
		"1\n":  {"--target", "3", "--before"},
		"3\n":  {"--target", "3", "--le", "--hint", "5"},
		"-1\n": {"--target", "2"},
	}
	for want, args := range cases {
		out, err := run(t, in, append([]string{"search"}, args...)...)
		require.NoError(t, err, args)
		require.Equal(t, want, out, args)
	}

	out, err := run(t, in, "search", "-t", "3")
	require.NoError(t, err)
	require.Contains(t, []string{"2\n", "3\n"}, out)
}

func TestSearchErrors(t *testing.T) {
	_, err := run(t, "b\na\n", "search", "--target", "a")
	require.ErrorIs(t, err, errNotSorted)

	_, err = run(t, "a\n", "search")
	require.Error(t, err, "target is required")

	_, err = run(t, "a\n", "search", "--target", "a", "--ge", "--le")
	require.Error(t, err)
}

func TestPool(t *testing.T) {
	out, err := run(t, "", "pool", "--goroutines", "4", "--rounds", "200")
	require.NoError(t, err)
	require.Contains(t, out, "allocated")
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gravel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sort:
  workers: 2
  parallel_threshold: 16
  seed: 7
pool:
  peripherals: 2
  max_bytes: 64MiB
  drain_interval: 50ms
`), 0o600))

	fc, err := loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 2, fc.Sort.Workers)
	require.Equal(t, uint64(7), fc.Sort.Seed)

	pc, err := fc.poolConfig(nil)
	require.NoError(t, err)
	require.Equal(t, int64(64<<20), pc.MaxBytes)
	require.Equal(t, "50ms", pc.DrainInterval.String())

	out, err := run(t, "b\na\n", "--config", path, "sort")
	require.NoError(t, err)
	require.Equal(t, "a\nb\n", out)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("pool:\n  max_bytes: lots\n"), 0o600))
	_, err = run(t, "", "--config", bad, "pool")
	require.Error(t, err)

	_, err = run(t, "", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "sort")
	require.Error(t, err)
}
