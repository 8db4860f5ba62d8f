package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bbookman/mom0mind/internal/api"
	"github.com/bbookman/mom0mind/internal/database/kafka"
	"github.com/bbookman/mom0mind/internal/memory/consumer"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serves the memory and chat endpoints. When intake.kafka is enabled, a
background consumer also feeds conversation events into the pipeline.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := buildApp(ctx, cfgFile)
		if err != nil {
			return err
		}
		defer a.close()

		if a.cfg.Intake.Kafka.Enabled {
			kafkaClient, err := kafka.GetClient(a.cfg.Intake.Kafka)
			if err != nil {
				return fmt.Errorf("init kafka intake: %w", err)
			}
			defer kafkaClient.Close()
			consumer.NewKafkaConsumer(kafkaClient, a.memoryService, a.log).Start(ctx)
			a.log.Info("kafka intake consumer started")
		}

		handler := api.NewAPI(a.memoryService, a.chatService, a.log, a.health)
		router := api.NewRouter(handler, a.cfg.Server)

		a.log.Info("serving on " + a.cfg.Server.Address)
		return router.Run(a.cfg.Server.Address)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
