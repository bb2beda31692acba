package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shaiso/Rectify/internal/correction"
	"github.com/shaiso/Rectify/internal/scheduler"
)

// NewOrderStatusCorrectionCmd создаёт команду order-status-correction.
func NewOrderStatusCorrectionCmd(envFn func() *Env, outputFn func() *Output) *cobra.Command {
	return newCorrectionCmd(
		"order-status-correction",
		"Correct order status data based on delivery and payment status",
		func(env *Env) *correction.UseCase { return env.Correction },
		envFn, outputFn,
	)
}

// NewOrderStatusCorrectionCSVCmd создаёт команду order-status-correction-csv.
func NewOrderStatusCorrectionCSVCmd(envFn func() *Env, outputFn func() *Output) *cobra.Command {
	return newCorrectionCmd(
		"order-status-correction-csv",
		"Correct order status data based on delivery and payment status with CSV output",
		func(env *Env) *correction.UseCase { return env.CorrectionCSV },
		envFn, outputFn,
	)
}

func newCorrectionCmd(
	use, short string,
	pick func(*Env) *correction.UseCase,
	envFn func() *Env,
	outputFn func() *Output,
) *cobra.Command {
	var dryRun string
	var userID string
	var cronExpr string
	var timezone string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envFn()
			out := outputFn()

			uc := pick(env)
			if uc == nil {
				return fmt.Errorf("%s is not configured", use)
			}

			logger := env.Logger
			if logger == nil {
				logger = slog.Default()
			}

			params := correction.Params{
				IsDryRun: ParseDryRun(dryRun),
				UserID:   userID,
			}
			logger.Info("command started", "command", use, "is_dry_run", params.IsDryRun)

			expr, tz := cronExpr, timezone
			if expr == "" {
				expr = env.Cron
			}
			if tz == "" {
				tz = env.Timezone
			}

			if expr == "" {
				if err := runOnce(cmd.Context(), uc, params, out); err != nil {
					return err
				}
				logger.Info("command completed", "command", use)
				return nil
			}

			sched, err := scheduler.New(scheduler.Config{
				Cron:     expr,
				Timezone: tz,
				Logger:   logger,
				Job: func(ctx context.Context) error {
					return runOnce(ctx, uc, params, out)
				},
			})
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Scheduled %s, next run at %s", use, sched.NextDue().Format("2006-01-02 15:04:05 MST")))

			err = sched.Run(cmd.Context())
			if errors.Is(err, context.Canceled) {
				logger.Info("command completed", "command", use, "runs", sched.Runs())
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&dryRun, "dryrun", "false", "Whether dry run or actual run [true/false]")
	cmd.Flags().Lookup("dryrun").NoOptDefVal = "true"
	cmd.Flags().StringVar(&userID, "user-id", "", "Initiator recorded on the task group")
	cmd.Flags().StringVar(&cronExpr, "cron", "", "Repeat on a cron schedule instead of running once")
	cmd.Flags().StringVar(&timezone, "timezone", "", "Timezone of the cron expression (default UTC)")

	return cmd
}

// ParseDryRun разбирает значение --dryrun: только "true" включает dry run.
func ParseDryRun(val string) bool {
	return val == "true"
}

// runOnce запускает use case и выводит итог.
func runOnce(ctx context.Context, uc *correction.UseCase, params correction.Params, out *Output) error {
	requestID := uuid.NewString()
	resp := uc.Execute(ctx, requestID, params)

	if out.JSONMode() {
		out.JSON(resp)
	} else {
		headers, rows := summaryTable(resp)
		out.Table(headers, rows)
	}

	if !resp.OK() {
		return fmt.Errorf("%s failed (%d): %s", uc.Name(), resp.StatusCode, resp.Status)
	}
	out.Success(resp.Status)
	return nil
}
