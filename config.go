package linebookmark

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/pkg/errors"
)

// Configuration is the top-level shape of a linebookmarkd config file.
type Configuration struct {
	State      string                  `json:"state"`
	Network    NetworkConfiguration    `json:"network"`
	Statistics StatisticsConfiguration `json:"statistics"`
	Files      []InputConfiguration    `json:"files"`
}

type NetworkConfiguration struct {
	Servers     []ServerConfiguration `json:"servers"`
	Certificate string                `json:"certificate"`
	Key         string                `json:"key"`
	CA          string                `json:"ca"`
	Timeout     int                   `json:"timeout"`
	SpoolSize   int                   `json:"spool_size"`
}

type ServerConfiguration struct {
	Addr string `json:"addr"`
	Name string `json:"name"`
}

type StatisticsConfiguration struct {
	Addr string `json:"addr"`
}

// InputConfiguration describes one glob pattern (or set of them) of
// files to tail, and how to decode them.
type InputConfiguration struct {
	Paths  []string          `json:"paths"`
	Fields map[string]string `json:"fields"`

	// Encoding names the Encoding to decode this input with, e.g.
	// "utf-8", "utf-16le", "windows-1252". Defaults to "utf-8".
	Encoding string `json:"encoding"`

	// DetectPreamble, when true, skips a leading byte-order mark or
	// other encoding preamble found at the start of a file being read
	// from its beginning.
	DetectPreamble bool `json:"detect_preamble"`

	// BufferSize overrides the reader's byte buffer size. Zero uses
	// DefaultBufferSize.
	BufferSize int `json:"buffer_size"`
}

// ResolveEncoding looks up the Encoding this input is configured for,
// defaulting to UTF-8 when Encoding is empty.
func (c InputConfiguration) ResolveEncoding() (Encoding, error) {
	name := c.Encoding
	if name == "" {
		name = "utf-8"
	}
	return LookupEncoding(name)
}

// ReaderOptions builds the Options a BookmarkingLineReader for this
// input should use.
func (c InputConfiguration) ReaderOptions() Options {
	return Options{
		DetectPreamble: c.DetectPreamble,
		BufferSize:     c.BufferSize,
	}
}

func LoadConfiguration(configFile string) (*Configuration, error) {
	file, err := os.Open(configFile)
	if err != nil {
		return nil, errors.Wrap(err, "linebookmark: opening configuration file")
	}
	defer file.Close()

	configuration := new(Configuration)
	if err := json.NewDecoder(file).Decode(configuration); err != nil {
		return nil, errors.Wrap(err, "linebookmark: parsing configuration file")
	}
	return configuration, nil
}

func (c *Configuration) BuildTLSConfig() (*tls.Config, error) {
	if c.Network.Certificate == "" || c.Network.Key == "" {
		return nil, fmt.Errorf("certificate and key not specified")
	}

	cert, err := tls.LoadX509KeyPair(c.Network.Certificate, c.Network.Key)
	if err != nil {
		return nil, err
	}

	tlsConfig := new(tls.Config)
	tlsConfig.Certificates = []tls.Certificate{cert}

	if c.Network.CA != "" {
		tlsConfig.RootCAs = x509.NewCertPool()

		data, err := ioutil.ReadFile(c.Network.CA)
		if err != nil {
			return nil, err
		}

		block, _ := pem.Decode(data)
		if block == nil {
			return nil, fmt.Errorf("CA file %q did not contain PEM encoded data", c.Network.CA)
		}
		if block.Type != "CERTIFICATE" {
			return nil, fmt.Errorf("CA file %q did not contain certificate data", c.Network.CA)
		}

		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, err
		}

		tlsConfig.RootCAs.AddCert(cert)
	}

	return tlsConfig, nil
}
