package fetch

import (
	"crypto/x509"
	"fmt"
	"os"
)

// trustedRoots builds the certificate pool used for TLS verification.
// Small hosts tend to ship stale system stores, so an operator-maintained
// bundle (a certifi-style cacert.pem) can be appended on top of whatever the
// platform provides.
func trustedRoots(bundlePath string) (*x509.CertPool, error) {
	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}
	if bundlePath == "" {
		return pool, nil
	}
	pem, err := os.ReadFile(bundlePath)
	if err != nil {
		return nil, fmt.Errorf("read ca bundle %s: %w", bundlePath, err)
	}
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("ca bundle %s contains no usable certificates", bundlePath)
	}
	return pool, nil
}
