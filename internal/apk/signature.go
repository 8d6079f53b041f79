package apk

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/avast/apkverifier"
)

// CertFingerprint verifies the APK signature and returns the SHA-256
// fingerprint of the best signing certificate (v3 preferred over v2
// over v1), hex encoded in lowercase.
func CertFingerprint(path string) (string, error) {
	res, err := apkverifier.Verify(path, nil)
	if err != nil {
		return "", fmt.Errorf("signature verification: %w", err)
	}

	_, cert := apkverifier.PickBestApkCert(res.SignerCerts)
	if cert == nil {
		return "", errors.New("no signing certificate found")
	}

	sum := sha256.Sum256(cert.Raw)
	return hex.EncodeToString(sum[:]), nil
}
