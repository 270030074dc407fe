package local

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PutAndServe(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, "/uploads/")
	require.NoError(t, err)

	obj, err := s.Put(context.Background(), "1700000000000-42-lab_results.pdf", strings.NewReader("pdf-bytes"), 9, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "1700000000000-42-lab_results.pdf", obj.Key)
	assert.Equal(t, "/uploads/1700000000000-42-lab_results.pdf", obj.URL)

	b, err := os.ReadFile(filepath.Join(dir, obj.Key))
	require.NoError(t, err)
	assert.Equal(t, "pdf-bytes", string(b))

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + obj.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pdf-bytes", string(body))

	dirResp, err := http.Get(srv.URL + "/uploads/")
	require.NoError(t, err)
	dirResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, dirResp.StatusCode)
}

func TestStore_RejectsPathKeys(t *testing.T) {
	s, err := New(t.TempDir(), "/uploads")
	require.NoError(t, err)

	for _, key := range []string{"", "../evil", "a/b.txt", "..", "."} {
		_, err := s.Put(context.Background(), key, strings.NewReader("x"), 1, "")
		assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
	}
}

func TestStore_DoesNotOverwrite(t *testing.T) {
	s, err := New(t.TempDir(), "/uploads")
	require.NoError(t, err)

	_, err = s.Put(context.Background(), "same.txt", strings.NewReader("one"), 3, "")
	require.NoError(t, err)
	_, err = s.Put(context.Background(), "same.txt", strings.NewReader("two"), 3, "")
	assert.Error(t, err)
}
