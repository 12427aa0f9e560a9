package workspace

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/ckx/pkg/types"
)

func TestMetadataMissingDocument(t *testing.T) {
	s, fs := newTestStore(t)
	initWorkspace(t, s, fs, "/ws")

	doc, err := s.Metadata("/ws", "debug", VerbConfig)
	require.NoError(t, err)
	assert.Equal(t, Document{}, doc)

	exists, err := afero.Exists(fs, ProfilePath("/ws", "debug"))
	require.NoError(t, err)
	assert.False(t, exists, "reading does not create the profile")
}

func TestUpdateMetadataMerges(t *testing.T) {
	s, fs := newTestStore(t)
	mkdirAll(t, fs, "/ws")

	_, err := s.UpdateMetadata("/ws", "debug", "x", Document{"a": 1}, UpdateOptions{})
	require.NoError(t, err)
	got, err := s.UpdateMetadata("/ws", "debug", "x", Document{"b": 2}, UpdateOptions{})
	require.NoError(t, err)
	assert.Equal(t, Document{"a": 1, "b": 2}, got)

	doc, err := s.Metadata("/ws", "debug", "x")
	require.NoError(t, err)
	assert.Equal(t, Document{"a": 1, "b": 2}, doc)
}

func TestUpdateMetadataLaterValueWins(t *testing.T) {
	s, fs := newTestStore(t)
	mkdirAll(t, fs, "/ws")

	_, err := s.UpdateMetadata("/ws", "debug", "x", Document{"a": 1, "keep": "yes"}, UpdateOptions{})
	require.NoError(t, err)
	_, err = s.UpdateMetadata("/ws", "debug", "x", Document{"a": 5}, UpdateOptions{})
	require.NoError(t, err)

	doc, err := s.Metadata("/ws", "debug", "x")
	require.NoError(t, err)
	assert.Equal(t, Document{"a": 5, "keep": "yes"}, doc)
}

func TestUpdateMetadataReplace(t *testing.T) {
	s, fs := newTestStore(t)
	mkdirAll(t, fs, "/ws")

	_, err := s.UpdateMetadata("/ws", "debug", "x", Document{"a": 1}, UpdateOptions{})
	require.NoError(t, err)
	_, err = s.UpdateMetadata("/ws", "debug", "x", Document{"b": 2}, UpdateOptions{Replace: true})
	require.NoError(t, err)

	doc, err := s.Metadata("/ws", "debug", "x")
	require.NoError(t, err)
	assert.Equal(t, Document{"b": 2}, doc)
}

func TestUpdateMetadataInitializes(t *testing.T) {
	s, fs := newTestStore(t)
	mkdirAll(t, fs, "/ws")

	_, err := s.UpdateMetadata("/ws", "arm", VerbConfig, Document{KeyPlatform: "arm/rpi"}, UpdateOptions{})
	require.NoError(t, err)

	for _, path := range []string{
		MetadataRoot("/ws") + "/" + VersionFileName,
		MetadataRoot("/ws") + "/" + ReadmeFileName,
		MetadataRoot("/ws") + "/" + IgnoreMarkerFileName,
		MetadataFile("/ws", "arm", VerbConfig),
	} {
		exists, err := afero.Exists(fs, path)
		require.NoError(t, err)
		assert.True(t, exists, path)
	}
	assert.Equal(t, "platform: arm/rpi\n", readFile(t, fs, MetadataFile("/ws", "arm", VerbConfig)))
}

func TestUpdateMetadataNoInit(t *testing.T) {
	t.Run("leaves workspace files alone", func(t *testing.T) {
		s, fs := newTestStore(t)
		mkdirAll(t, fs, ProfilePath("/ws", "debug"))

		_, err := s.UpdateMetadata("/ws", "debug", "x", Document{"a": 1}, UpdateOptions{NoInit: true})
		require.NoError(t, err)

		for _, name := range []string{ReadmeFileName, IgnoreMarkerFileName} {
			exists, err := afero.Exists(fs, MetadataRoot("/ws")+"/"+name)
			require.NoError(t, err)
			assert.False(t, exists, name)
		}
	})

	t.Run("writes into existing profile", func(t *testing.T) {
		s, fs := newTestStore(t)
		mkdirAll(t, fs, "/ws")
		require.NoError(t, s.InitProfile("/ws", "debug", false))

		got, err := s.UpdateMetadata("/ws", "debug", "x", Document{"a": 1}, UpdateOptions{NoInit: true})
		require.NoError(t, err)
		assert.Equal(t, Document{"a": 1}, got)
	})
}

func TestMetadataRejectsNonMapping(t *testing.T) {
	s, fs := newTestStore(t)
	initWorkspace(t, s, fs, "/ws")
	writeFile(t, fs, MetadataFile("/ws", "debug", VerbConfig), "- a\n- b\n")

	_, err := s.Metadata("/ws", "debug", VerbConfig)
	assert.ErrorIs(t, err, types.ErrUnexpectedShape)
	assert.ErrorIs(t, err, types.ErrNotMapping)

	_, err = s.UpdateMetadata("/ws", "debug", VerbConfig, Document{"a": 1}, UpdateOptions{})
	assert.ErrorIs(t, err, types.ErrUnexpectedShape)
	assert.Equal(t, "- a\n- b\n", readFile(t, fs, MetadataFile("/ws", "debug", VerbConfig)), "bad document left alone")
}

func TestMetadataEmptyDocument(t *testing.T) {
	s, fs := newTestStore(t)
	initWorkspace(t, s, fs, "/ws")
	writeFile(t, fs, MetadataFile("/ws", "debug", VerbBuild), "")

	doc, err := s.Metadata("/ws", "debug", VerbBuild)
	require.NoError(t, err)
	assert.Equal(t, Document{}, doc)
}

func TestMetadataInvalidNames(t *testing.T) {
	s, fs := newTestStore(t)
	initWorkspace(t, s, fs, "/ws")

	_, err := s.Metadata("/ws", "../etc", VerbConfig)
	assert.ErrorIs(t, err, types.ErrInvalidName)
	_, err = s.Metadata("/ws", "debug", "a/b")
	assert.ErrorIs(t, err, types.ErrInvalidName)
	_, err = s.UpdateMetadata("/ws", "debug", "", Document{}, UpdateOptions{})
	assert.ErrorIs(t, err, types.ErrInvalidName)
}

func TestActiveMetadata(t *testing.T) {
	s, fs := newTestStore(t)
	initWorkspace(t, s, fs, "/ws")
	require.NoError(t, s.InitProfile("/ws", "arm", false))
	require.NoError(t, s.SetActiveProfile("/ws", "arm"))

	got, err := s.UpdateActiveMetadata("/ws", VerbBuild, Document{"jobs_args": []any{"-j4"}})
	require.NoError(t, err)
	assert.Equal(t, Document{"jobs_args": []any{"-j4"}}, got)

	doc, err := s.ActiveMetadata("/ws", VerbBuild)
	require.NoError(t, err)
	assert.Equal(t, Document{"jobs_args": []any{"-j4"}}, doc)

	def, err := s.Metadata("/ws", DefaultProfileName, VerbBuild)
	require.NoError(t, err)
	assert.Equal(t, Document{}, def, "default profile untouched")
}
