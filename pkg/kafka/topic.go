package kafka

import (
	"fmt"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// EnsureTopic creates topic with the partitions, replicas and retention from cfg
// unless it already exists.
func EnsureTopic(cfg *Config, topic string, logger *zap.Logger) error {
	conf, err := cfg.ToSaramaConfig()
	if err != nil {
		return fmt.Errorf("failed to create sarama config: %w", err)
	}

	admin, err := sarama.NewClusterAdmin(cfg.Brokers, conf)
	if err != nil {
		return fmt.Errorf("failed to create cluster admin: %w", err)
	}
	defer admin.Close()

	return ensureTopic(admin, cfg, topic, logger)
}

func ensureTopic(admin sarama.ClusterAdmin, cfg *Config, topic string, logger *zap.Logger) error {
	topics, err := admin.ListTopics()
	if err != nil {
		return fmt.Errorf("failed to list topics: %w", err)
	}

	if _, exists := topics[topic]; exists {
		return nil
	}

	detail := &sarama.TopicDetail{
		NumPartitions:     cfg.Partitions,
		ReplicationFactor: cfg.Replicas,
	}
	if cfg.RetentionMS > 0 {
		detail.ConfigEntries = map[string]*string{
			"retention.ms": stringPtr(fmt.Sprintf("%d", cfg.RetentionMS)),
		}
	}

	if err := admin.CreateTopic(topic, detail, false); err != nil {
		return fmt.Errorf("failed to create topic %s: %w", topic, err)
	}

	logger.Info("topic created",
		zap.String("topic", topic),
		zap.Int32("partitions", cfg.Partitions),
		zap.Int16("replicas", cfg.Replicas))
	return nil
}

func stringPtr(s string) *string {
	return &s
}
