package store_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cc-d/open2fa/pkg/store"
	"github.com/cc-d/open2fa/pkg/totp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Unix(1700000000, 0)

func fixedClock() time.Time { return fixedNow }

func newStore(t *testing.T, opts ...store.Option) *store.Store {
	t.Helper()
	opts = append([]store.Option{store.WithClock(fixedClock)}, opts...)
	st, err := store.New(filepath.Join(t.TempDir(), ".open2fa"), opts...)
	require.NoError(t, err)
	return st
}

type fileEntry struct {
	Secret string  `json:"secret"`
	Name   *string `json:"name"`
}

func readFile(t *testing.T, path string) []fileEntry {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc struct {
		Secrets []fileEntry `json:"secrets"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	return doc.Secrets
}

func names(secs []store.Secret) []string {
	out := make([]string, len(secs))
	for i, s := range secs {
		out[i] = s.Name
	}
	return out
}

func TestNew_CreatesDirectoryAndFile(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "nested", ".open2fa")

	st, err := store.New(dir)
	require.NoError(t, err)
	assert.Equal(t, 0, st.Len())
	assert.Equal(t, filepath.Join(dir, store.FileName), st.Path())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, store.DirPerm, info.Mode().Perm())

	info, err = os.Stat(st.Path())
	require.NoError(t, err)
	assert.Equal(t, store.FilePerm, info.Mode().Perm())

	raw, err := os.ReadFile(st.Path())
	require.NoError(t, err)
	assert.JSONEq(t, `{"secrets": []}`, string(raw))
}

func TestNew_LoadsAndSorts(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	doc := `{"secrets": [
		{"secret": "JBSWY3DPEHPK3PXP", "name": "zeta"},
		{"secret": "GEZDGNBVGY3TQOJQ", "name": "Alpha"},
		{"secret": "MZXW6YTBOI", "name": null},
		{"secret": "KRSXG5A", "name": "beta"}
	]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, store.FileName), []byte(doc), 0o600))

	st, err := store.New(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "Alpha", "beta", "zeta"}, names(st.Secrets()))
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	t.Run("empty dir", func(t *testing.T) {
		t.Parallel()
		_, err := store.New("  ")
		assert.ErrorIs(t, err, store.ErrInvalidDir)
	})

	t.Run("path is a file", func(t *testing.T) {
		t.Parallel()
		file := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(file, nil, 0o600))
		_, err := store.New(file)
		assert.ErrorIs(t, err, store.ErrInvalidDir)
	})

	t.Run("corrupted json", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, store.FileName), []byte("{not json"), 0o600))
		_, err := store.New(dir)
		assert.ErrorIs(t, err, store.ErrInvalidFile)
	})
}

func TestAdd(t *testing.T) {
	t.Parallel()
	st := newStore(t)

	sec, err := st.Add("JBSWY3DPEHPK3PXP", "work")
	require.NoError(t, err)
	assert.Equal(t, "work", sec.Name)
	assert.Equal(t, "324550", sec.Code.Code, "initial code is computed eagerly")

	entries := readFile(t, st.Path())
	require.Len(t, entries, 1)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", entries[0].Secret)
	require.NotNil(t, entries[0].Name)
	assert.Equal(t, "work", *entries[0].Name)
}

func TestAdd_DuplicateRejection(t *testing.T) {
	t.Parallel()
	st := newStore(t)

	_, err := st.Add("ABCDEFGH", "x")
	require.NoError(t, err)

	_, err = st.Add("ABCDEFGH", "x")
	assert.ErrorIs(t, err, store.ErrSecretExists)
	assert.Equal(t, 1, st.Len())

	_, err = st.Add("ABCDEFGH", "y")
	require.NoError(t, err, "same secret under a different name is allowed")

	_, err = st.Add("ABCDEFGH", "X")
	require.NoError(t, err, "names are compared literally")
	assert.Equal(t, 3, st.Len())
}

func TestAdd_InvalidSecret(t *testing.T) {
	t.Parallel()
	st := newStore(t)

	_, err := st.Add("not-base32!", "bad")
	assert.ErrorIs(t, err, totp.ErrInvalidSecret)
	assert.Equal(t, 0, st.Len())
	assert.Empty(t, readFile(t, st.Path()))
}

func TestAdd_NullName(t *testing.T) {
	t.Parallel()
	st := newStore(t)

	_, err := st.Add("JBSWY3DPEHPK3PXP", "")
	require.NoError(t, err)

	entries := readFile(t, st.Path())
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].Name, "empty name is stored as null")

	raw, err := os.ReadFile(st.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"name": null`)
}

func TestAdd_KeepsSortOrder(t *testing.T) {
	t.Parallel()
	st := newStore(t)

	for _, name := range []string{"github", "AWS", "bank", "Cloud"} {
		_, err := st.Add("JBSWY3DPEHPK3PXP", name)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"AWS", "bank", "Cloud", "github"}, names(st.Secrets()))

	reopened, err := store.New(st.Dir())
	require.NoError(t, err)
	assert.Equal(t, names(st.Secrets()), names(reopened.Secrets()))
}

func TestRemove(t *testing.T) {
	t.Parallel()

	seed := func(t *testing.T, opts ...store.Option) *store.Store {
		t.Helper()
		st := newStore(t, opts...)
		_, err := st.Add("JBSWY3DPEHPK3PXP", "work")
		require.NoError(t, err)
		_, err = st.Add("GEZDGNBVGY3TQOJQ", "home")
		require.NoError(t, err)
		_, err = st.Add("JBSWY3DPEHPK3PXP", "backup")
		require.NoError(t, err)
		return st
	}

	t.Run("no selector is rejected", func(t *testing.T) {
		t.Parallel()
		st := seed(t)
		n, err := st.Remove(store.Selector{}, true)
		assert.ErrorIs(t, err, store.ErrNoSelector)
		assert.Zero(t, n)
		assert.Equal(t, 3, st.Len())
		assert.Len(t, readFile(t, st.Path()), 3)
	})

	t.Run("by name", func(t *testing.T) {
		t.Parallel()
		st := seed(t)
		n, err := st.Remove(store.Selector{Name: "work"}, true)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, []string{"backup", "home"}, names(st.Secrets()))
		assert.Len(t, readFile(t, st.Path()), 2)
	})

	t.Run("by secret removes every entry with it", func(t *testing.T) {
		t.Parallel()
		st := seed(t)
		n, err := st.Remove(store.Selector{Secret: "JBSWY3DPEHPK3PXP"}, true)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, []string{"home"}, names(st.Secrets()))
	})

	t.Run("name and secret are OR-ed", func(t *testing.T) {
		t.Parallel()
		st := seed(t)
		n, err := st.Remove(store.Selector{Name: "home", Secret: "JBSWY3DPEHPK3PXP"}, true)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.Equal(t, 0, st.Len())
	})

	t.Run("no match", func(t *testing.T) {
		t.Parallel()
		st := seed(t)
		n, err := st.Remove(store.Selector{Name: "wor"}, true)
		require.NoError(t, err)
		assert.Zero(t, n, "names match exactly")
	})

	t.Run("declined confirmation keeps the entry", func(t *testing.T) {
		t.Parallel()
		var prompts []string
		st := seed(t, store.WithConfirm(func(prompt string) bool {
			prompts = append(prompts, prompt)
			return false
		}))
		n, err := st.Remove(store.Selector{Name: "work"}, false)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Equal(t, 3, st.Len())
		require.Len(t, prompts, 1)
		assert.Equal(t, "Are you sure you want to remove work J...P? (y/n): ", prompts[0])
	})

	t.Run("confirmation per match", func(t *testing.T) {
		t.Parallel()
		calls := 0
		st := seed(t, store.WithConfirm(func(string) bool {
			calls++
			return calls == 1
		}))
		n, err := st.Remove(store.Selector{Secret: "JBSWY3DPEHPK3PXP"}, false)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, 2, calls)
		assert.Equal(t, 2, st.Len())
	})

	t.Run("without confirm func unforced removal is declined", func(t *testing.T) {
		t.Parallel()
		st := seed(t)
		n, err := st.Remove(store.Selector{Name: "work"}, false)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("force skips confirmation", func(t *testing.T) {
		t.Parallel()
		st := seed(t, store.WithConfirm(func(string) bool {
			t.Error("confirmation must not be requested")
			return false
		}))
		n, err := st.Remove(store.Selector{Name: "work"}, true)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func TestGenerate(t *testing.T) {
	t.Parallel()
	now := fixedNow
	st := newStore(t, store.WithClock(func() time.Time { return now }))

	_, err := st.Add("JBSWY3DPEHPK3PXP", "work")
	require.NoError(t, err)
	_, err = st.Add("GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ", "personal")
	require.NoError(t, err)
	_, err = st.Add("GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ", "workshop")
	require.NoError(t, err)

	t.Run("filter is a substring match", func(t *testing.T) {
		var got []string
		for sec, err := range st.Generate("work") {
			require.NoError(t, err)
			got = append(got, sec.Name)
			assert.Regexp(t, `^\d{6}$`, sec.Code.Code)
		}
		assert.Equal(t, []string{"work", "workshop"}, got)
	})

	t.Run("every secret is refreshed regardless of filter", func(t *testing.T) {
		now = time.Unix(1234567890, 0)
		for range st.Generate("nothing matches") {
			t.Fatal("no secret should be yielded")
		}
		for _, sec := range st.Secrets() {
			assert.Equal(t, now, sec.Code.GeneratedAt, sec.Name)
		}
		personal := st.Filter("personal", "")
		require.Len(t, personal, 1)
		assert.Equal(t, "005924", personal[0].Code.Code)
	})

	t.Run("restartable", func(t *testing.T) {
		now = fixedNow
		first, err := st.Codes("")
		require.NoError(t, err)
		second, err := st.Codes("")
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Len(t, first, 3)
	})

	t.Run("early break", func(t *testing.T) {
		count := 0
		for range st.Generate("") {
			count++
			break
		}
		assert.Equal(t, 1, count)
	})
}

func TestGenerate_InvalidStoredSecret(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	doc := `{"secrets": [{"secret": "!!!", "name": "broken"}, {"secret": "JBSWY3DPEHPK3PXP", "name": "ok"}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, store.FileName), []byte(doc), 0o600))

	st, err := store.New(dir, store.WithClock(fixedClock))
	require.NoError(t, err, "codes are not computed on load")

	var failed []string
	for sec, err := range st.Generate("") {
		if err != nil {
			assert.ErrorIs(t, err, totp.ErrInvalidSecret)
			failed = append(failed, sec.Name)
		}
	}
	assert.Equal(t, []string{"broken"}, failed)

	_, err = st.Codes("")
	assert.ErrorIs(t, err, totp.ErrInvalidSecret)
}

func TestFilterAndFind(t *testing.T) {
	t.Parallel()
	st := newStore(t)
	_, err := st.Add("JBSWY3DPEHPK3PXP", "work")
	require.NoError(t, err)
	_, err = st.Add("GEZDGNBVGY3TQOJQ", "Work email")
	require.NoError(t, err)

	assert.Len(t, st.Filter("", ""), 2)
	assert.Equal(t, []string{"work"}, names(st.Filter("work", "")))
	assert.Equal(t, []string{"Work email"}, names(st.Filter("", "GEZD")))
	assert.Empty(t, st.Filter("work", "GEZD"), "filters are combined")

	sec, ok := st.Find(store.Selector{Secret: "GEZDGNBVGY3TQOJQ"})
	require.True(t, ok)
	assert.Equal(t, "Work email", sec.Name)

	_, ok = st.Find(store.Selector{})
	assert.False(t, ok)
	_, ok = st.Find(store.Selector{Name: "missing"})
	assert.False(t, ok)
}

func TestMerge(t *testing.T) {
	t.Parallel()
	st := newStore(t)
	_, err := st.Add("JBSWY3DPEHPK3PXP", "work")
	require.NoError(t, err)

	added, err := st.Merge([]store.Secret{
		{Secret: "JBSWY3DPEHPK3PXP", Name: "work"},
		{Secret: "GEZDGNBVGY3TQOJQ", Name: "home"},
		{Secret: "GEZDGNBVGY3TQOJQ", Name: "home"},
		{Secret: "JBSWY3DPEHPK3PXP", Name: "Work"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"home", "Work"}, names(added))
	assert.Equal(t, 3, st.Len())
	assert.Len(t, readFile(t, st.Path()), 3)

	again, err := st.Merge([]store.Secret{{Secret: "GEZDGNBVGY3TQOJQ", Name: "home"}})
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestMerge_InvalidSecretAbortsWholeMerge(t *testing.T) {
	t.Parallel()
	st := newStore(t)

	_, err := st.Merge([]store.Secret{
		{Secret: "GEZDGNBVGY3TQOJQ", Name: "home"},
		{Secret: "###", Name: "broken"},
	})
	assert.ErrorIs(t, err, totp.ErrInvalidSecret)
	assert.Equal(t, 0, st.Len())
	assert.Empty(t, readFile(t, st.Path()))
}

func TestWithInterval(t *testing.T) {
	t.Parallel()
	st := newStore(t, store.WithInterval(60))
	assert.Equal(t, 60, st.Interval())

	sec, err := st.Add("JBSWY3DPEHPK3PXP", "slow")
	require.NoError(t, err)
	assert.Equal(t, 60, sec.Code.IntervalLength)
}

func TestTruncate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want string
	}{
		{"JBSWY3DPEHPK3PXP", "J...P"},
		{"ABC", "A...C"},
		{"AB", "**"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, store.Truncate(tt.in), tt.in)
	}
}

func TestSelector(t *testing.T) {
	t.Parallel()
	sec := store.Secret{Secret: "JBSWY3DPEHPK3PXP", Name: "work"}

	assert.True(t, store.Selector{}.IsEmpty())
	assert.False(t, store.Selector{}.Match(sec))
	assert.True(t, store.Selector{Name: "work"}.Match(sec))
	assert.True(t, store.Selector{Secret: "JBSWY3DPEHPK3PXP"}.Match(sec))
	assert.True(t, store.Selector{Name: "other", Secret: "JBSWY3DPEHPK3PXP"}.Match(sec))
	assert.False(t, store.Selector{Name: "Work"}.Match(sec))
}
