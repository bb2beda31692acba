// Rectify — запуск пакетных исправлений данных с журналом в хранилище.
//
// Использование:
//
//	rectify [--config PATH] [--store KIND] [--publish] [--metrics-addr ADDR] [--json] <command> [flags]
//
// Команды:
//
//	order-status-correction      Исправление статусов заказов (вывод в лог)
//	order-status-correction-csv  Исправление статусов заказов (вывод в CSV)
//	runs show GROUP_ID           Просмотр task group
//	events tail                  Чтение событий из RabbitMQ
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shaiso/Rectify/internal/cli"
	"github.com/shaiso/Rectify/internal/config"
	"github.com/shaiso/Rectify/internal/telemetry"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var opts options
	var jsonOutput bool
	var a *app

	rootCmd := &cobra.Command{
		Use:           "rectify",
		Short:         "Batch data correction with an audit trail",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			a, err = newApp(cmd.Context(), cfg, telemetry.SetupLogger())
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a == nil {
				return nil
			}
			return a.Close()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", config.DefaultPath(), "Path to TOML config")
	flags.StringVar(&opts.store, "store", "", "Task store: postgres, sqlite, memory")
	flags.BoolVar(&opts.publish, "publish", false, "Publish run events to RabbitMQ")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on ADDR (e.g. :9090)")
	flags.BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	envFn := func() *cli.Env { return a.env }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewOrderStatusCorrectionCmd(envFn, outputFn),
		cli.NewOrderStatusCorrectionCSVCmd(envFn, outputFn),
		cli.NewRunsCmd(envFn, outputFn),
		cli.NewEventsCmd(envFn, outputFn),
	)

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err := rootCmd.ExecuteContext(ctx)
	if a != nil && err != nil {
		a.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		cancel()
		os.Exit(1)
	}
}

// options — флаги, переопределяющие конфигурацию.
type options struct {
	configPath  string
	store       string
	publish     bool
	metricsAddr string
}

// loadConfig собирает конфигурацию: значения по умолчанию → файл → env → флаги.
func loadConfig(cmd *cobra.Command, opts options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()

	flags := cmd.Flags()
	if flags.Changed("store") {
		cfg.Store.Kind = opts.store
	}
	if flags.Changed("publish") {
		cfg.MQ.Enabled = opts.publish
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr = opts.metricsAddr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
