package apk

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadInfo(t *testing.T) {
	path := filepath.Join("..", "..", "testdata", "apks", "sample.apk")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skipf("test APK not found: %s", path)
	}

	info, err := ReadInfo(path)
	if err != nil {
		t.Fatalf("ReadInfo: %v", err)
	}
	if info.PackageID == "" {
		t.Error("PackageID is empty")
	}
	if len(info.SHA256) != 64 {
		t.Errorf("SHA256 has wrong length: %d", len(info.SHA256))
	}
	if info.FileSize == 0 {
		t.Error("FileSize is 0")
	}
}

func TestReadInfoRejectsNonAPK(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-an.apk")
	if err := os.WriteFile(path, []byte("plain text"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadInfo(path); err == nil {
		t.Error("ReadInfo accepted a non-zip file")
	}
}
