// Commande reminders : exécute les relances de paiement, en passe unique
// (cron) ou en démon avec un intervalle.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/facturio/facturio-api/internal/application/reminder"
	"github.com/facturio/facturio-api/internal/infrastructure/email"
	"github.com/facturio/facturio-api/internal/infrastructure/postgres"
	"github.com/facturio/facturio-api/pkg/config"
	"github.com/facturio/facturio-api/pkg/logger"
)

func main() {
	root := &cobra.Command{
		Use:   "reminders",
		Short: "Relances automatiques des factures impayées",
	}
	root.AddCommand(runCmd(), daemonCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Exécute une passe de relances puis s'arrête",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, log, cleanup, err := buildService(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			n, err := svc.Run(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			log.Info().Int("envoyees", n).Msg("passe terminée")
			return nil
		},
	}
}

func daemonCmd() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Exécute les relances en continu à intervalle fixe",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			svc, log, cleanup, err := buildService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			log.Info().Dur("interval", interval).Msg("démon de relances démarré")
			for {
				if _, err := svc.Run(ctx, time.Now()); err != nil {
					log.Error().Err(err).Msg("passe de relances")
				}
				select {
				case <-ctx.Done():
					log.Info().Msg("démon de relances arrêté")
					return nil
				case <-ticker.C:
				}
			}
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 24*time.Hour, "intervalle entre deux passes")
	return cmd
}

func buildService(ctx context.Context) (*reminder.Service, *logger.Logger, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, nil, nil, err
	}

	sender, err := email.NewGomailSender(cfg.SMTP)
	if err != nil {
		pool.Close()
		return nil, nil, nil, err
	}

	svc := reminder.NewService(
		postgres.NewFactureRepository(pool),
		postgres.NewClientRepository(pool),
		postgres.NewBusinessInfoRepository(pool),
		sender,
		log,
	)
	return svc, log, pool.Close, nil
}
