package postgres

import (
	"crypto/tls"
	"crypto/x509"
	"os"

	"github.com/pkg/errors"
)

// TLSSettings point at PEM files used to secure the connection. CertFile and
// KeyFile go together; CAFile may be used on its own to trust a private CA.
type TLSSettings struct {
	CAFile   string `yaml:"caFile,omitempty" env:"CAFILE"`
	CertFile string `yaml:"certFile,omitempty" env:"CERTFILE"`
	KeyFile  string `yaml:"keyFile,omitempty" env:"KEYFILE"`
}

// Enabled reports whether any TLS file is configured.
func (s TLSSettings) Enabled() bool {
	return s.CAFile != "" || s.CertFile != "" || s.KeyFile != ""
}

// GetTLSConfig loads the configured files into a tls.Config.
//
// Example:
//
//	cfg, err := postgres.GetTLSConfig(postgres.TLSSettings{
//		CAFile:   "ca.crt",
//		CertFile: "tls.crt",
//		KeyFile:  "tls.key",
//	})
//	if err != nil {
//		return err
//	}
func GetTLSConfig(s TLSSettings) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}

	if s.CertFile != "" || s.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(s.CertFile, s.KeyFile)
		if err != nil {
			return nil, errors.Wrap(err, "unable to load certfile/keyfile")
		}

		cfg.Certificates = []tls.Certificate{cert}
	}

	if s.CAFile != "" {
		caCert, err := os.ReadFile(s.CAFile)
		if err != nil {
			return nil, errors.Wrap(err, "unable to load cafile")
		}

		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, errors.Errorf("no certificates found in %s", s.CAFile)
		}

		cfg.RootCAs = pool
	}

	return cfg, nil
}
