package producer

import (
	"fmt"
	"os"

	"github.com/edgeflare/fakeuser/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var cfgFile string
var logLevel string
var cfg *config.Config
var logger *zap.Logger

var rootCmd = &cobra.Command{
	Use:   "producer",
	Short: "Publish fake users to Kafka",
	Long:  `producer generates synthetic user records and publishes them to a Kafka topic`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch cmd.Name() {
		case "producer", "help", "completion":
			return nil
		}
		return initConfig()
	},
	Run: func(cmd *cobra.Command, args []string) {
		versionFlag, _ := cmd.Flags().GetBool("version")
		if versionFlag {
			fmt.Println(config.Version)
			return
		}

		// If no subcommand is provided, print help
		cmd.Help()
	},
}

func Main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/producer.yaml)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "L", "info", "log at this level (debug, info, warn, error, none)")
	rootCmd.PersistentFlags().BoolP("version", "v", false, "Print the version number")

	f := rootCmd.PersistentFlags()
	f.StringSlice("kafka.brokers", nil, "Kafka bootstrap brokers")
	f.String("producer.topic", "", "Topic fake users are published to")
	f.Duration("producer.delay", 0, "Pause before each generated user")
	f.String("producer.format", "", "Payload format (avro, json)")
	f.String("producer.sink", "", "Where records go (kafka, debug)")
	bindFlags(f, "kafka.brokers", "producer.topic", "producer.delay", "producer.format", "producer.sink")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(produceCmd)
}

func initConfig() error {
	var err error
	logger, err = newLogger(logLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	cfg, err = config.Load(cfgFile, viper.GetViper())
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if used := viper.ConfigFileUsed(); used != "" {
		logger.Info("using config file", zap.String("path", used))
	}
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "none" {
		return zap.NewNop(), nil
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}
