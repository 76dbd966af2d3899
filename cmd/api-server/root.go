package main

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"procurement/db"
	"procurement/internal/config"
	"procurement/internal/logger"
)

// app общее состояние команд: конфиг и логгер поднимаются один раз в PersistentPreRunE
type app struct {
	cfgFile string
	cfg     *config.Config
	log     *logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:           "api-server",
		Short:         "Procurement contract tracking service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.New(), a.cfgFile)
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
			if err != nil {
				return err
			}
			a.cfg, a.log = cfg, log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				a.log.Sync()
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "path to YAML config file")

	serve := newServeCmd(a)
	cmd.AddCommand(serve)
	cmd.AddCommand(newMigrateCmd(a))
	cmd.AddCommand(newRecomputeCmd(a))
	cmd.AddCommand(newConfigCmd(a))

	// без подкоманды запускаем сервер, как раньше
	cmd.RunE = serve.RunE
	return cmd
}

func (a *app) connect(ctx context.Context) (*sqlx.DB, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}
	return db.Connect(ctx, a.cfg.Database.URL, a.cfg.Database.ConnectAttempts)
}
