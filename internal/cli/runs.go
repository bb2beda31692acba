package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaiso/Rectify/internal/domain"
	"github.com/shaiso/Rectify/internal/repo"
)

// NewRunsCmd создаёт группу команд для просмотра task groups.
func NewRunsCmd(envFn func() *Env, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect recorded runs",
	}

	cmd.AddCommand(newRunsShowCmd(envFn, outputFn))

	return cmd
}

func newRunsShowCmd(envFn func() *Env, outputFn func() *Output) *cobra.Command {
	var showItems bool

	cmd := &cobra.Command{
		Use:   "show GROUP_ID",
		Short: "Show all chunks of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envFn()
			out := outputFn()

			if env.Runs == nil {
				return fmt.Errorf("run store is not configured")
			}

			chunks, err := env.Runs.ListByGroupID(cmd.Context(), args[0])
			if errors.Is(err, repo.ErrNotFound) {
				return fmt.Errorf("run %s not found", args[0])
			}
			if err != nil {
				return err
			}

			if out.JSONMode() {
				out.JSON(chunks)
				return nil
			}

			headers, rows := chunksTable(chunks)
			out.Table(headers, rows)

			counts := domain.CountByStatus(chunks)
			out.Success(fmt.Sprintf("%d items: %d success, %d error",
				len(domain.MergeItems(chunks)),
				counts[domain.TaskItemStatusSuccess],
				counts[domain.TaskItemStatusError],
			))

			if showItems {
				headers, rows := itemsTable(chunks)
				out.Table(headers, rows)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showItems, "items", false, "List items of all chunks")

	return cmd
}
