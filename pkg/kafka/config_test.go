package kafka

import (
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToSaramaConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := DefaultConfig()
		conf, err := cfg.ToSaramaConfig()
		require.NoError(t, err)

		assert.Equal(t, "2.1.1", conf.Version.String())
		assert.Equal(t, "fake-user-producer", conf.ClientID)
		assert.Equal(t, sarama.WaitForLocal, conf.Producer.RequiredAcks)
		assert.Equal(t, sarama.CompressionNone, conf.Producer.Compression)
		assert.True(t, conf.Producer.Return.Successes)
		assert.True(t, conf.Producer.Return.Errors)
		assert.False(t, conf.Net.SASL.Enable)
		assert.False(t, conf.Net.TLS.Enable)
	})

	t.Run("scram sha512", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.SASL = SASL{Enable: true, Username: "u", Password: "p", Algorithm: "sha512"}
		conf, err := cfg.ToSaramaConfig()
		require.NoError(t, err)

		assert.True(t, conf.Net.SASL.Enable)
		assert.Equal(t, sarama.SASLMechanism(sarama.SASLTypeSCRAMSHA512), conf.Net.SASL.Mechanism)
		require.NotNil(t, conf.Net.SASL.SCRAMClientGeneratorFunc)
		assert.IsType(t, &XDGSCRAMClient{}, conf.Net.SASL.SCRAMClientGeneratorFunc())
	})

	t.Run("plain sasl", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.SASL = SASL{Enable: true, Username: "u", Password: "p"}
		conf, err := cfg.ToSaramaConfig()
		require.NoError(t, err)
		assert.Equal(t, sarama.SASLMechanism(sarama.SASLTypePlaintext), conf.Net.SASL.Mechanism)
	})

	t.Run("acks and compression", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.RequiredAcks = "all"
		cfg.Compression = "snappy"
		conf, err := cfg.ToSaramaConfig()
		require.NoError(t, err)
		assert.Equal(t, sarama.WaitForAll, conf.Producer.RequiredAcks)
		assert.Equal(t, sarama.CompressionSnappy, conf.Producer.Compression)
	})

	t.Run("invalid values", func(t *testing.T) {
		for name, mutate := range map[string]func(*Config){
			"version":     func(c *Config) { c.Version = "not-a-version" },
			"sasl":        func(c *Config) { c.SASL = SASL{Enable: true, Algorithm: "md5"} },
			"acks":        func(c *Config) { c.RequiredAcks = "some" },
			"compression": func(c *Config) { c.Compression = "brotli" },
			"tls ca":      func(c *Config) { c.TLS = TLS{Enable: true, CAFile: "/nonexistent/ca.pem"} },
		} {
			t.Run(name, func(t *testing.T) {
				cfg := DefaultConfig()
				mutate(&cfg)
				_, err := cfg.ToSaramaConfig()
				assert.Error(t, err)
			})
		}
	})

	t.Run("tls skip verify", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.TLS = TLS{Enable: true, SkipVerify: true}
		conf, err := cfg.ToSaramaConfig()
		require.NoError(t, err)
		assert.True(t, conf.Net.TLS.Enable)
		assert.True(t, conf.Net.TLS.Config.InsecureSkipVerify)
	})
}
