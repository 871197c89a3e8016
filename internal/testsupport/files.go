package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// mediaHeaders are the leading bytes of each fixture type, enough for
// content sniffing to recognise the format.
var mediaHeaders = map[string][]byte{
	".mp4": {0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'm', 'p', '4', '2'},
	".mp3": {'I', 'D', '3', 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
	".jpg": {0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F'},
}

// WriteMedia writes a placeholder video, audio track or frame at path,
// creating parent directories, and returns path. Unknown extensions get a
// short text body.
func WriteMedia(t testing.TB, path string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	data, ok := mediaHeaders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		data = []byte("fixture")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
