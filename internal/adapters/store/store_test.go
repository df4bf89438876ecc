package store_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"go.trai.ch/recall/internal/adapters/store"
	"go.trai.ch/recall/internal/core/domain"
)

func testEntry() *domain.CacheEntry {
	return &domain.CacheEntry{
		FormatVersion: domain.FormatVersion,
		EntryID:       uuid.New(),
		CreatedAt:     time.Now(),
		Fingerprint: domain.Fingerprint{Entries: []domain.FingerprintEntry{
			{Kind: domain.SourceEnv, Key: "HOME", Hash: 0xdeadbeef},
			{Kind: domain.SourceFile, Key: "recall.yaml", Hash: 42},
		}},
		TableSize: 3,
		Payload:   []byte("not a real payload, but the store does not care"),
		Problems:  domain.ProblemSummary{Warnings: 2},
	}
}

func TestStore_LoadAbsent(t *testing.T) {
	s := store.New(t.TempDir())
	entry, err := s.Load()
	require.NoError(t, err)
	require.Nil(t, entry)
}

func TestStore_PublishLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := store.New(dir)

	in := testEntry()
	require.NoError(t, s.Publish(in))

	out, err := s.Load()
	require.NoError(t, err)
	require.NotNil(t, out)
	require.Equal(t, in.FormatVersion, out.FormatVersion)
	require.Equal(t, in.EntryID, out.EntryID)
	require.True(t, in.CreatedAt.Equal(out.CreatedAt))
	require.Equal(t, in.Fingerprint, out.Fingerprint)
	require.Equal(t, in.TableSize, out.TableSize)
	require.Equal(t, in.Payload, out.Payload)
	require.Equal(t, in.Problems, out.Problems)

	// No temporary files left behind.
	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	require.Empty(t, matches)
}

func TestStore_PublishReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	s := store.New(dir)

	first := testEntry()
	require.NoError(t, s.Publish(first))
	second := testEntry()
	second.Payload = []byte("newer payload")
	require.NoError(t, s.Publish(second))

	out, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, second.EntryID, out.EntryID)
	require.Equal(t, []byte("newer payload"), out.Payload)
}

func TestStore_CorruptFileIsAnError(t *testing.T) {
	dir := t.TempDir()
	s := store.New(dir)
	require.NoError(t, s.Publish(testEntry()))

	path := filepath.Join(dir, "entry.cache")
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	t.Run("bad magic", func(t *testing.T) {
		bad := append([]byte{}, data...)
		bad[0] ^= 0xff
		require.NoError(t, os.WriteFile(path, bad, 0o600))
		_, err := s.Load()
		require.ErrorIs(t, err, domain.ErrCorruptEntry)
	})

	t.Run("truncated", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, data[:len(data)/2], 0o600))
		_, err := s.Load()
		require.ErrorIs(t, err, domain.ErrCorruptEntry)
	})

	t.Run("flipped payload byte", func(t *testing.T) {
		bad := append([]byte{}, data...)
		bad[len(bad)-12] ^= 0xff
		require.NoError(t, os.WriteFile(path, bad, 0o600))
		_, err := s.Load()
		require.ErrorIs(t, err, domain.ErrCorruptEntry)
	})
}

func TestStore_VersionMismatchKeepsOnlyVersion(t *testing.T) {
	dir := t.TempDir()
	s := store.New(dir)

	in := testEntry()
	in.FormatVersion = domain.FormatVersion + 1
	require.NoError(t, s.Publish(in))

	out, err := s.Load()
	require.NoError(t, err)
	require.NotNil(t, out)
	require.Equal(t, domain.FormatVersion+1, out.FormatVersion)
	// The rest of the layout is untrusted and left zero.
	require.Empty(t, out.Payload)
	require.Empty(t, out.Fingerprint.Entries)
}

func TestStore_Discard(t *testing.T) {
	s := store.New(t.TempDir())

	// Discarding an absent entry is not an error.
	require.NoError(t, s.Discard())

	require.NoError(t, s.Publish(testEntry()))
	require.NoError(t, s.Discard())

	entry, err := s.Load()
	require.NoError(t, err)
	require.Nil(t, entry)
}
