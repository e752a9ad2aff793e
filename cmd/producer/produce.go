package producer

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var produceCount int

var produceCmd = &cobra.Command{
	Use:   "produce",
	Short: "Publish fake users once and exit",
	Long:  `Runs the generate-and-publish loop from the command line, without the HTTP server`,
	RunE:  runProduce,
}

func init() {
	produceCmd.Flags().IntVarP(&produceCount, "count", "n", 10, "Number of fake users to publish")
}

func runProduce(cmd *cobra.Command, args []string) error {
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pub, closer, err := newPublisher(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closer.Close()

	sent, err := pub.SendRandomUsers(ctx, produceCount)
	if err != nil {
		return fmt.Errorf("published %d of %d users: %w", sent, produceCount, err)
	}

	logger.Info("done", zap.Int("sent", sent))
	fmt.Fprintf(cmd.OutOrStdout(), "Sent %d fake users to Kafka!\n", produceCount)
	return nil
}
