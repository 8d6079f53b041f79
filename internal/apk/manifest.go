package apk

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/shogo82148/androidbinary/apk"
)

// Info is supplemental package metadata attached to scan reports. It
// decorates the class list; class extraction never depends on it.
type Info struct {
	PackageID   string
	VersionName string
	VersionCode int64
	Label       string
	FilePath    string
	FileSize    int64
	SHA256      string
}

// ReadInfo extracts manifest metadata and a content hash from the APK.
func ReadInfo(path string) (*Info, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat APK: %w", err)
	}
	sum, err := hashFile(path)
	if err != nil {
		return nil, fmt.Errorf("hash APK: %w", err)
	}

	pkg, err := apk.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open APK manifest: %w", err)
	}
	defer pkg.Close()

	manifest := pkg.Manifest()
	info := &Info{
		PackageID:   manifest.Package.MustString(),
		VersionName: manifest.VersionName.MustString(),
		VersionCode: int64(manifest.VersionCode.MustInt32()),
		FilePath:    path,
		FileSize:    fi.Size(),
		SHA256:      sum,
	}
	// Label resolution can fail on resource-reference chains; the
	// report just goes out without one.
	if label, err := pkg.Label(nil); err == nil {
		info.Label = label
	}
	return info, nil
}

// hashFile computes the SHA-256 of a file, hex encoded.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
