package kafka

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/IBM/sarama"
)

// Config represents Kafka-specific configuration
type Config struct {
	Brokers      []string      `mapstructure:"brokers"`
	Version      string        `mapstructure:"version"`
	ClientID     string        `mapstructure:"clientID"`
	RequiredAcks string        `mapstructure:"requiredAcks"` // none, local, all
	Compression  string        `mapstructure:"compression"`  // none, gzip, snappy, lz4, zstd
	ConnectRetry time.Duration `mapstructure:"connectRetry"` // max time spent retrying the initial connection
	EnsureTopic  bool          `mapstructure:"ensureTopic"`
	Partitions   int32         `mapstructure:"partitions"`
	Replicas     int16         `mapstructure:"replicas"`
	RetentionMS  int64         `mapstructure:"retentionMs"`
	SASL         SASL          `mapstructure:"sasl"`
	TLS          TLS           `mapstructure:"tls"`
}

// SASL represents SASL authentication configuration
type SASL struct {
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	Algorithm string `mapstructure:"algorithm"` // plain, sha256, sha512
	Enable    bool   `mapstructure:"enable"`
}

// TLS represents TLS configuration
type TLS struct {
	CertFile   string `mapstructure:"certFile"`
	KeyFile    string `mapstructure:"keyFile"`
	CAFile     string `mapstructure:"caFile"`
	Enable     bool   `mapstructure:"enable"`
	SkipVerify bool   `mapstructure:"skipVerify"`
}

// DefaultConfig returns a Config for a local single-broker cluster.
func DefaultConfig() Config {
	return Config{
		Brokers:      []string{"localhost:9092"},
		Version:      "2.1.1",
		ClientID:     "fake-user-producer",
		RequiredAcks: "local",
		Compression:  "none",
		ConnectRetry: 30 * time.Second,
		Partitions:   1,
		Replicas:     1,
		RetentionMS:  7 * 24 * 60 * 60 * 1000, // 7 days
	}
}

// ToSaramaConfig converts the Config to a sarama.Config
func (c *Config) ToSaramaConfig() (*sarama.Config, error) {
	conf := sarama.NewConfig()

	version, err := sarama.ParseKafkaVersion(c.Version)
	if err != nil {
		return nil, fmt.Errorf("error parsing Kafka version: %w", err)
	}
	conf.Version = version

	if c.ClientID != "" {
		conf.ClientID = c.ClientID
	}

	if c.SASL.Enable {
		conf.Net.SASL.Enable = true
		conf.Net.SASL.User = c.SASL.Username
		conf.Net.SASL.Password = c.SASL.Password
		conf.Net.SASL.Handshake = true

		switch strings.ToLower(c.SASL.Algorithm) {
		case "sha512":
			conf.Net.SASL.SCRAMClientGeneratorFunc = func() sarama.SCRAMClient { return &XDGSCRAMClient{HashGeneratorFcn: SHA512} }
			conf.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA512
		case "sha256":
			conf.Net.SASL.SCRAMClientGeneratorFunc = func() sarama.SCRAMClient { return &XDGSCRAMClient{HashGeneratorFcn: SHA256} }
			conf.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA256
		case "", "plain":
			conf.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		default:
			return nil, fmt.Errorf("invalid SASL algorithm: %s", c.SASL.Algorithm)
		}
	}

	if c.TLS.Enable {
		tlsConfig, err := createTLSConfiguration(c.TLS)
		if err != nil {
			return nil, err
		}
		conf.Net.TLS.Enable = true
		conf.Net.TLS.Config = tlsConfig
	}

	switch strings.ToLower(c.RequiredAcks) {
	case "none":
		conf.Producer.RequiredAcks = sarama.NoResponse
	case "", "local":
		conf.Producer.RequiredAcks = sarama.WaitForLocal
	case "all":
		conf.Producer.RequiredAcks = sarama.WaitForAll
	default:
		return nil, fmt.Errorf("invalid required acks: %s", c.RequiredAcks)
	}

	switch strings.ToLower(c.Compression) {
	case "", "none":
		conf.Producer.Compression = sarama.CompressionNone
	case "gzip":
		conf.Producer.Compression = sarama.CompressionGZIP
	case "snappy":
		conf.Producer.Compression = sarama.CompressionSnappy
	case "lz4":
		conf.Producer.Compression = sarama.CompressionLZ4
	case "zstd":
		conf.Producer.Compression = sarama.CompressionZSTD
	default:
		return nil, fmt.Errorf("invalid compression codec: %s", c.Compression)
	}

	// delivery results are drained by Producer, never returned to callers
	conf.Producer.Return.Successes = true
	conf.Producer.Return.Errors = true

	return conf, nil
}

func createTLSConfiguration(tlsCfg TLS) (*tls.Config, error) {
	t := &tls.Config{
		InsecureSkipVerify: tlsCfg.SkipVerify,
	}

	if tlsCfg.CertFile != "" && tlsCfg.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(tlsCfg.CertFile, tlsCfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}
		t.Certificates = []tls.Certificate{cert}
	}

	if tlsCfg.CAFile != "" {
		caCert, err := os.ReadFile(tlsCfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA file: %w", err)
		}
		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("no certificates found in %s", tlsCfg.CAFile)
		}
		t.RootCAs = caCertPool
	}

	return t, nil
}
