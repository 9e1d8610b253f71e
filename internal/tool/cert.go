package tool

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"os"
	"time"

	"github.com/spf13/afero"
)

const certificateValidityYears = 10

// GenerateTlsCertificate writes a self-signed ECDSA P-256 key pair valid for
// hostnames (DNS names or IP addresses).
func GenerateTlsCertificate(
	fs afero.Fs,
	organization string,
	serverCommonName string,
	serverKeyFilename, serverCertFilename string,
	hostnames []string) error {

	serverKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("unable to generate key: %w", err)
	}

	template, err := serverTemplate(organization, serverCommonName, hostnames, time.Now())
	if err != nil {
		return err
	}

	derBytes, err := x509.CreateCertificate(rand.Reader, template, template, &serverKey.PublicKey, serverKey)
	if err != nil {
		return fmt.Errorf("unable to create certificate: %w", err)
	}

	keyBytes, err := x509.MarshalECPrivateKey(serverKey)
	if err != nil {
		return fmt.Errorf("unable to marshal key: %w", err)
	}

	if err = writePem(fs, serverKeyFilename, "EC PRIVATE KEY", keyBytes, 0600); err != nil {
		return err
	}
	return writePem(fs, serverCertFilename, "CERTIFICATE", derBytes, 0644)
}

func serverTemplate(organization string, commonName string, hostnames []string, now time.Time) (*x509.Certificate, error) {
	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("unable to generate serial number: %w", err)
	}

	template := &x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			Organization: []string{organization},
			CommonName:   commonName,
		},
		NotBefore:             now,
		NotAfter:              now.AddDate(certificateValidityYears, 0, 0),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	for _, h := range hostnames {
		if ip := net.ParseIP(h); ip != nil {
			template.IPAddresses = append(template.IPAddresses, ip)
		} else {
			template.DNSNames = append(template.DNSNames, h)
		}
	}
	return template, nil
}

func writePem(fs afero.Fs, filename string, blockType string, data []byte, perm os.FileMode) error {
	encoded := pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: data})
	if err := afero.WriteFile(fs, filename, encoded, perm); err != nil {
		return fmt.Errorf("unable to write %s: %w", filename, err)
	}
	return nil
}
