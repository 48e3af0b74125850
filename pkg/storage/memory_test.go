// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-biovault.
//
// go-biovault is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package storage

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBackend_PutAndGet(t *testing.T) {
	backend := NewMemory()
	defer func() { _ = backend.Close() }()

	key := "records/com.app/tok"
	value := []byte("envelope-bytes")

	err := backend.Put(key, value, nil)
	require.NoError(t, err)

	result, err := backend.Get(key)
	require.NoError(t, err)
	assert.Equal(t, value, result)
}

func TestMemoryBackend_Get_NotFound(t *testing.T) {
	backend := NewMemory()
	defer func() { _ = backend.Close() }()

	_, err := backend.Get("nonexistent-key")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryBackend_Put_EmptyKey(t *testing.T) {
	backend := NewMemory()
	defer func() { _ = backend.Close() }()

	err := backend.Put("", []byte("value"), nil)
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestMemoryBackend_Put_Overwrite(t *testing.T) {
	backend := NewMemory()
	defer func() { _ = backend.Close() }()

	key := "records/com.app/tok"
	require.NoError(t, backend.Put(key, []byte("old"), nil))
	require.NoError(t, backend.Put(key, []byte("new"), nil))

	result, err := backend.Get(key)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), result)
}

func TestMemoryBackend_Get_ReturnsCopy(t *testing.T) {
	backend := NewMemory()
	defer func() { _ = backend.Close() }()

	key := "records/com.app/tok"
	require.NoError(t, backend.Put(key, []byte("value"), nil))

	first, err := backend.Get(key)
	require.NoError(t, err)
	first[0] = 'X'

	second, err := backend.Get(key)
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), second)
}

func TestMemoryBackend_Delete(t *testing.T) {
	backend := NewMemory()
	defer func() { _ = backend.Close() }()

	key := "records/com.app/tok"
	require.NoError(t, backend.Put(key, []byte("value"), nil))
	require.NoError(t, backend.Delete(key))

	_, err := backend.Get(key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryBackend_Delete_NotFound(t *testing.T) {
	backend := NewMemory()
	defer func() { _ = backend.Close() }()

	err := backend.Delete("nonexistent-key")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryBackend_List(t *testing.T) {
	backend := NewMemory()
	defer func() { _ = backend.Close() }()

	require.NoError(t, backend.Put("records/com.app/a", []byte("1"), nil))
	require.NoError(t, backend.Put("records/com.app/b", []byte("2"), nil))
	require.NoError(t, backend.Put("keyring/com.app", []byte("3"), nil))

	keys, err := backend.List("records/")
	require.NoError(t, err)
	assert.Len(t, keys, 2)

	all, err := backend.List("")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMemoryBackend_Exists(t *testing.T) {
	backend := NewMemory()
	defer func() { _ = backend.Close() }()

	require.NoError(t, backend.Put("records/com.app/tok", []byte("value"), nil))

	exists, err := backend.Exists("records/com.app/tok")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = backend.Exists("records/com.app/missing")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryBackend_Closed(t *testing.T) {
	backend := NewMemory()
	require.NoError(t, backend.Close())

	_, err := backend.Get("key")
	assert.ErrorIs(t, err, ErrClosed)

	err = backend.Put("key", []byte("value"), nil)
	assert.ErrorIs(t, err, ErrClosed)

	err = backend.Delete("key")
	assert.ErrorIs(t, err, ErrClosed)

	// Close is idempotent
	assert.NoError(t, backend.Close())
}

func TestMemoryBackend_ConcurrentAccess(t *testing.T) {
	backend := NewMemory()
	defer func() { _ = backend.Close() }()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := "records/com.app/tok"
			_ = backend.Put(key, []byte{byte(n)}, nil)
			_, _ = backend.Get(key)
			_, _ = backend.Exists(key)
		}(i)
	}
	wg.Wait()

	value, err := backend.Get("records/com.app/tok")
	require.NoError(t, err)
	assert.Len(t, value, 1)
}
