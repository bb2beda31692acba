package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaiso/Rectify/internal/mq"
)

// NewEventsCmd создаёт группу команд для событий RabbitMQ.
func NewEventsCmd(envFn func() *Env, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Read run events from RabbitMQ",
	}

	cmd.AddCommand(newEventsTailCmd(envFn, outputFn))

	return cmd
}

func newEventsTailCmd(envFn func() *Env, outputFn func() *Output) *cobra.Command {
	var queue string

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print events as JSON lines until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envFn()
			out := outputFn()

			if env.Events == nil {
				return fmt.Errorf("mq is not enabled (use --publish or [mq] enabled = true)")
			}

			q := mq.Queue(queue)
			if q != mq.QueueOutcomesRecorded && q != mq.QueueRunsCompleted {
				return fmt.Errorf("unknown queue %q", queue)
			}

			err := env.Events.Consume(cmd.Context(), q, func(_ context.Context, msg *mq.Message) error {
				return out.Line(msg)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&queue, "queue", string(mq.QueueRunsCompleted), "Queue to read (outcomes.recorded, runs.completed)")

	return cmd
}
