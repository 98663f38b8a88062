package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rankforge/rankforge/internal/domain/project"
	"github.com/rankforge/rankforge/internal/domain/research"
	"github.com/rankforge/rankforge/pkg/types/common"
)

type researchOptions struct {
	domain      string
	niche       string
	seeds       []string
	competitors []string
	inline      bool
	wait        bool
}

func newResearchCommand(root *rootOptions) *cobra.Command {
	opts := &researchOptions{}

	cmd := &cobra.Command{
		Use:   "research",
		Short: "Submit a keyword research run",
		Long: "Creates a research run for the given domain. By default the run is " +
			"queued for a worker; --inline executes it in-process.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(opts.domain) == "" {
				return fmt.Errorf("--domain is required")
			}
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}

			rt, err := buildRuntime(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			run := research.NewRun(common.NewID(), opts.domain, opts.niche, opts.competitors, opts.seeds)
			if err := rt.Runs.Create(cmd.Context(), run); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created run %s\n", run.ID)

			if opts.inline {
				domainCtx := project.Raw(run.Domain, run.Niche, run.Competitors)
				rt.Orchestrator.Execute(cmd.Context(), run, domainCtx)
				printProgress(cmd, run.ProgressLog)
				return printOutcome(cmd, run)
			}
			if opts.wait {
				return waitForRun(cmd, rt, run.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.domain, "domain", "", "target domain (required)")
	cmd.Flags().StringVar(&opts.niche, "niche", "", "target niche")
	cmd.Flags().StringSliceVar(&opts.seeds, "seed", nil, "seed keyword (repeatable); generated when omitted")
	cmd.Flags().StringSliceVar(&opts.competitors, "competitor", nil, "competitor domain (repeatable)")
	cmd.Flags().BoolVar(&opts.inline, "inline", false, "execute the run in-process instead of queueing it")
	cmd.Flags().BoolVar(&opts.wait, "wait", false, "poll until the queued run reaches a terminal state")
	return cmd
}

// waitForRun polls the run until terminal, printing progress entries as
// they appear.
func waitForRun(cmd *cobra.Command, rt *Runtime, id common.ID) error {
	printed := 0
	for {
		select {
		case <-cmd.Context().Done():
			return cmd.Context().Err()
		case <-time.After(2 * time.Second):
		}

		run, err := rt.Runs.GetByID(cmd.Context(), id)
		if err != nil {
			return err
		}
		printProgress(cmd, run.ProgressLog[printed:])
		printed = len(run.ProgressLog)

		if run.Status.Terminal() {
			return printOutcome(cmd, run)
		}
	}
}

func printProgress(cmd *cobra.Command, entries []research.ProgressEntry) {
	for _, e := range entries {
		fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", strings.Repeat("  ", e.Indent), e.Message)
	}
}

func printOutcome(cmd *cobra.Command, run *research.Run) error {
	if run.Status == research.StatusFailed {
		msg := "unknown error"
		if run.ErrorMessage != nil {
			msg = *run.ErrorMessage
		}
		return fmt.Errorf("run %s failed: %s", run.ID, msg)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "run %s completed: %d keywords found\n", run.ID, run.TotalFound)
	return nil
}
