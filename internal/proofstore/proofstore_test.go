package proofstore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveAndOpen(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	tests := []struct {
		name     string
		userID   string
		filename string
		data     []byte
	}{
		{
			name:     "сохранение изображения",
			userID:   "user-1",
			filename: "receipt.png",
			data:     []byte("png-bytes"),
		},
		{
			name:     "файл без расширения",
			userID:   "user-2",
			filename: "proof",
			data:     []byte("raw"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := store.Save(tt.userID, tt.filename, tt.data)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(key, tt.userID+"/"))

			got, err := store.Open(key)
			require.NoError(t, err)
			assert.Equal(t, tt.data, got)
		})
	}
}

func TestStore_KeysAreUnique(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	key1, err := store.Save("user-1", "receipt.png", []byte("a"))
	require.NoError(t, err)
	key2, err := store.Save("user-1", "receipt.png", []byte("b"))
	require.NoError(t, err)

	assert.NotEqual(t, key1, key2)
}

func TestStore_Open_RejectsTraversal(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open("../outside")
	assert.Error(t, err)

	_, err = store.Open("/etc/passwd")
	assert.Error(t, err)
}
