package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileNameFromURL(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"http://x/a.exe", "a.exe", false},
		{"https://cdn.example.com/pkgs/VSCodeSetup.exe?sig=abc", "VSCodeSetup.exe", false},
		{"http://x/dir/My%20Setup.msi", "My Setup.msi", false},
		{"http://x/..%2F..%2Fevil.exe", "evil.exe", false},
		{"http://x/", "", true},
		{"http://x", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := FileNameFromURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDownloadFile_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("installer bytes"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "sub", "setup.exe")
	err := New(srv.Client()).DownloadFile(context.Background(), srv.URL+"/setup.exe", dest)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "installer bytes", string(data))

	entries, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file left behind")
	assert.Equal(t, "setup.exe", entries[0].Name())
}

func TestDownloadFile_TempNameNeverCollidesWithAnotherDestination(t *testing.T) {
	firstChunk := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/setup.exe":
			_, _ = w.Write([]byte("REAL-INSTALLER-"))
			w.(http.Flusher).Flush()
			close(firstChunk)
			<-release
			_, _ = w.Write([]byte("END"))
		case "/setup.exe.part":
			_, _ = w.Write([]byte("OTHER-FILE"))
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	d := New(srv.Client())

	slow := make(chan error, 1)
	go func() {
		slow <- d.DownloadFile(context.Background(), srv.URL+"/setup.exe", filepath.Join(dir, "setup.exe"))
	}()
	<-firstChunk

	require.NoError(t, d.DownloadFile(context.Background(), srv.URL+"/setup.exe.part", filepath.Join(dir, "setup.exe.part")))
	close(release)
	require.NoError(t, <-slow)

	got, err := os.ReadFile(filepath.Join(dir, "setup.exe"))
	require.NoError(t, err)
	assert.Equal(t, "REAL-INSTALLER-END", string(got))
	other, err := os.ReadFile(filepath.Join(dir, "setup.exe.part"))
	require.NoError(t, err)
	assert.Equal(t, "OTHER-FILE", string(other))
}

func TestDownloadFile_FailureLeavesNoTempFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100")
		_, _ = w.Write([]byte("short"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	err := New(srv.Client()).DownloadFile(context.Background(), srv.URL+"/setup.exe", filepath.Join(dir, "setup.exe"))
	assert.ErrorIs(t, err, ErrTransport)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDownloadFile_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "setup.exe")
	err := New(srv.Client()).DownloadFile(context.Background(), srv.URL+"/setup.exe", dest)
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorContains(t, err, "404")
	assert.NoFileExists(t, dest)
}

func TestFileNameFromURL_SeparatorOnlyPath(t *testing.T) {
	_, err := FileNameFromURL("http://x/%2F")
	assert.Error(t, err)
}

func TestDownloadFile_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL + "/setup.exe"
	srv.Close()

	err := New(nil).DownloadFile(context.Background(), url, filepath.Join(t.TempDir(), "setup.exe"))
	assert.ErrorIs(t, err, ErrTransport)
}

func TestDownloadFile_Canceled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := New(srv.Client()).DownloadFile(ctx, srv.URL+"/slow.exe", filepath.Join(t.TempDir(), "slow.exe"))
	assert.ErrorIs(t, err, ErrCanceled)
}

func TestDownloadFile_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := New(srv.Client()).DownloadFile(ctx, srv.URL+"/slow.exe", filepath.Join(t.TempDir(), "slow.exe"))
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestVerify(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.bin")
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0644))
	sum := sha256.Sum256([]byte("payload"))
	good := hex.EncodeToString(sum[:])

	assert.NoError(t, Verify(path, good))
	assert.ErrorIs(t, Verify(path, "00"+good[2:]), ErrChecksumMismatch)
}
