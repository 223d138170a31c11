package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"seedsearch/internal/core/seedspace"
	"seedsearch/internal/core/version"
	perr "seedsearch/internal/platform/errors"
	fdom "seedsearch/internal/services/filters/domain"
	sdom "seedsearch/internal/services/search/domain"
	ssvc "seedsearch/internal/services/search/service"
	vdom "seedsearch/internal/services/validation/domain"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// withApp opens the module graph for the duration of fn
func withApp(cmd *cobra.Command, o *rootOptions, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, o)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(ctx); cerr != nil {
			a.log.Error().Err(cerr).Msg("shutdown failed")
		}
	}()
	return fn(ctx, a)
}

func validateCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <filter>",
		Short: "Check that a filter can match, saving the first verified seed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, o, func(ctx context.Context, a *app) error {
				f, err := a.filters.Store.Load(ctx, args[0])
				if err != nil {
					return err
				}
				ctrl := a.validation.Controller
				out := cmd.OutOrStdout()
				ctrl.OnStatus(func(s string) { _, _ = fmt.Fprintln(out, s) })

				rep, err := ctrl.Validate(ctx, f)
				if rep.Outcome == vdom.OutcomeVerified && len(rep.Seeds) > 1 {
					_, _ = fmt.Fprintf(out, "Seeds: %v\n", rep.Seeds)
				}
				if rep.Warning != vdom.WarningNone {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", rep.Warning)
				}
				return err
			})
		},
	}
}

// criteriaFlags binds the search range flags shared by search and resume
type criteriaFlags struct {
	batchSize  int
	start      uint64
	end        uint64
	maxResults int
	minScore   int
	threads    int
}

func (c *criteriaFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.IntVar(&c.batchSize, "batch-size", 4, "seed symbols varied within one batch (1-8)")
	fl.Uint64Var(&c.start, "start", 0, "first batch, inclusive")
	fl.Uint64Var(&c.end, "end", 0, "last batch, exclusive (default: the whole seed space)")
	fl.IntVar(&c.maxResults, "max-results", 0, "stop after this many matches (0 = no cap)")
	fl.IntVar(&c.minScore, "min-score", 0, "minimum total score to report a match")
	fl.IntVar(&c.threads, "threads", 0, "workers (0 = one per CPU)")
}

func (c *criteriaFlags) criteria(f *fdom.Filter) sdom.Criteria {
	end := c.end
	if end == 0 {
		if n, err := seedspace.MaxBatches(c.batchSize); err == nil {
			end = n
		}
	}
	return sdom.Criteria{
		BatchSize:   c.batchSize,
		StartBatch:  c.start,
		EndBatch:    end,
		Deck:        f.Deck,
		Stake:       f.Stake,
		MinScore:    c.minScore,
		MaxResults:  c.maxResults,
		ThreadCount: c.threads,
	}
}

func searchCmd(o *rootOptions) *cobra.Command {
	var cf criteriaFlags
	cmd := &cobra.Command{
		Use:   "search <filter>",
		Short: "Search a batch range; Ctrl-C stops and remembers the search for resume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, o, func(ctx context.Context, a *app) error {
				f, err := a.filters.Store.Load(ctx, args[0])
				if err != nil {
					return err
				}
				inst, err := a.search.Manager.StartSearch(ctx, cf.criteria(f), f)
				if err != nil {
					return err
				}
				return follow(ctx, cmd, inst)
			})
		},
	}
	cf.bind(cmd)
	return cmd
}

func resumeCmd(o *rootOptions) *cobra.Command {
	var cf criteriaFlags
	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Restart the search that was running when seedsearch last stopped",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, o, func(ctx context.Context, a *app) error {
				if a.profile == nil {
					return perr.Unavailablef("profile database disabled (SERVICE_SQLITE_ENABLED)")
				}
				restored, err := a.profile.Persistence.Restore(ctx, a.search.Reserver, nil)
				if err != nil {
					return err
				}
				if restored == nil {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No resumable search")
					return nil
				}
				inst, ok := a.search.Manager.GetSearch(restored.SearchID)
				if !ok {
					return perr.NotFoundf("search %s vanished", restored.SearchID)
				}
				f, err := a.filters.Store.LoadPath(ctx, restored.State.ConfigPath)
				if err != nil {
					a.search.Manager.RemoveSearch(ctx, inst.ID())
					return err
				}
				if err := inst.Start(cf.criteria(f), f); err != nil {
					a.search.Manager.RemoveSearch(ctx, inst.ID())
					return err
				}
				if err := a.profile.State.ClearSearchState(ctx); err != nil {
					a.log.Warn().Err(err).Msg("clear resumable state failed")
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Resuming %s (last active %s)\n",
					f.Name, restored.State.LastActiveTime.Local().Format(time.DateTime))
				return follow(ctx, cmd, inst)
			})
		},
	}
	cf.bind(cmd)
	return cmd
}

// follow prints inst's events until it finishes. Cancelling ctx stops the
// search with its state saved for resume
func follow(ctx context.Context, cmd *cobra.Command, inst *ssvc.Instance) error {
	stop := context.AfterFunc(ctx, func() { inst.Stop(context.WithoutCancel(ctx), true) })
	defer stop()

	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	p := message.NewPrinter(language.English)
	var final sdom.Outcome
	err := ssvc.Dispatch(context.WithoutCancel(ctx), inst, ssvc.Handlers{
		OnStarted: func(pr sdom.Progress) {
			_, _ = p.Fprintf(errOut, "Searching %d batches of %s\n", pr.TotalBatches, inst.FilterName())
		},
		OnProgress: func(pr sdom.Progress) { printProgress(p, errOut, pr) },
		OnResult: func(r sdom.Result) {
			_, _ = fmt.Fprintf(out, "%s\t%d\n", r.Seed, r.TotalScore)
		},
		OnCompleted: func(o sdom.Outcome) { final = o },
	})
	if err != nil {
		return err
	}
	_, _ = p.Fprintf(errOut, "Search %s: %d seeds searched, %d results in %v\n",
		final.State, final.Progress.SeedsSearched, len(final.Results), final.Elapsed.Round(time.Millisecond))
	if final.State == sdom.StateCancelled {
		_, _ = fmt.Fprintln(errOut, "Run `seedsearch resume` to pick it up again")
	}
	return final.Err
}

func printProgress(p *message.Printer, w io.Writer, pr sdom.Progress) {
	_, _ = p.Fprintf(w, "%6.2f%%  %d seeds  %d results  %v\n",
		pr.PercentComplete, pr.SeedsSearched, pr.ResultsFound, pr.Elapsed.Round(time.Second))
}

func filtersCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "filters",
		Short: "List stored filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, o, func(ctx context.Context, a *app) error {
				list, err := a.filters.Store.List(ctx)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				_, _ = fmt.Fprintln(tw, "NAME\tAUTHOR\tVERIFIED\tPATH")
				for _, s := range list {
					_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Name, s.Author, s.VerifiedSeed, s.Path)
				}
				return tw.Flush()
			})
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.Info())
		},
	}
}
