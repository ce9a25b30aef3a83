package cli

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-translate/internal/di"
	"github.com/goliatone/go-translate/internal/ledger"
)

func newJobsCommand(container *di.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "jobs",
		Short: "List retained translation jobs, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, err := container.Translator().ListJobs(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tKIND\tMODE\tTARGET\tSTATUS\tENTITIES\tERRORS\tCREATED")
			for _, job := range jobs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
					job.ID, job.Type, job.Mode, job.TargetLanguage, job.Status,
					len(job.Entities), len(job.Errors),
					job.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			return w.Flush()
		},
	}
}

func newStatusCommand(container *di.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show one job's lifecycle state, entities, and errors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := container.Translator().GetJob(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			renderJob(cmd.OutOrStdout(), job)
			return nil
		},
	}
}

func newApplyCommand(container *di.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <job-id>",
		Short: "Write a preview job through to the content store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := container.Translator().ApplyJob(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "job %s applied\n", args[0])
			return nil
		},
	}
}

func newRollbackCommand(container *di.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "rollback <job-id>",
		Short: "Undo a job: restore backups and delete created entities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := container.Translator().RollbackJob(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "job %s rolled back\n", args[0])
			return nil
		},
	}
}

func newPreviewCommand(container *di.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <job-id>",
		Short: "Show the staged diffs for a preview job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, ok, err := container.Translator().PreviewSnapshot(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no preview snapshot for job %s (expired or never staged)", args[0])
			}
			renderJob(cmd.OutOrStdout(), job)
			return nil
		},
	}
}

func renderJob(w io.Writer, job *ledger.Job) {
	fmt.Fprintf(w, "job:     %s\n", job.ID)
	fmt.Fprintf(w, "kind:    %s\n", job.Type)
	fmt.Fprintf(w, "mode:    %s\n", job.Mode)
	fmt.Fprintf(w, "target:  %s\n", job.TargetLanguage)
	fmt.Fprintf(w, "status:  %s\n", job.Status)
	fmt.Fprintf(w, "created: %s\n", job.CreatedAt.Format("2006-01-02 15:04:05"))

	if len(job.Entities) > 0 {
		fmt.Fprintln(w, "entities:")
		for _, entity := range job.Entities {
			fmt.Fprintf(w, "  %s %s\n", entity.Type, entity.ID)
			renderDiffs(w, entity.Preview)
		}
	}
	if len(job.Errors) > 0 {
		fmt.Fprintln(w, "errors:")
		for _, msg := range job.Errors {
			fmt.Fprintf(w, "  %s\n", msg)
		}
	}
}

func renderDiffs(w io.Writer, diffs map[string]ledger.FieldDiff) {
	keys := make([]string, 0, len(diffs))
	for key := range diffs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		diff := diffs[key]
		fmt.Fprintf(w, "    %s: %q -> %q\n", key, diff.Original, diff.Translated)
	}
}
