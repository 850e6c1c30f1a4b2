package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"gazette/internal/articles"
	"gazette/internal/classifier"
	"gazette/internal/config"
	"gazette/internal/formatter"
	"gazette/internal/models"
	"gazette/internal/pipeline"
)

func ingestCmd(flags *globalFlags) *cobra.Command {
	var (
		from, to  string
		documents bool
		refresh   bool
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest a range of business days into the configured store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := time.Now()

			start, err := parseDate(from, now)
			if err != nil {
				return err
			}

			end := start
			if to != "" {
				if end, err = parseDate(to, now); err != nil {
					return err
				}
			}

			a, err := newApp(flags)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sink, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer sink.Close(context.WithoutCancel(ctx))

			runner := pipeline.NewRunner(a.cfg, a.fetcher, sink, a.log)

			report, runErr := runner.Run(ctx, pipeline.Options{
				From:           start,
				To:             end,
				FetchDocuments: documents,
				Refresh:        refresh,
			})
			if report != nil {
				fmt.Println(formatter.Report(report))

				if len(report.Superseded) > 0 {
					fmt.Println()
					fmt.Println(formatter.Superseded(report.Superseded))
				}
			}

			return runErr
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first date, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&to, "to", "", "last date, YYYY-MM-DD (default --from)")
	cmd.Flags().BoolVar(&documents, "documents", false, "fetch documents, refine classification and store articles")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "download cached documents again")

	return cmd
}

func indexCmd(flags *globalFlags) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Show the classified entries of one day's index",
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := parseDate(date, time.Now())
			if err != nil {
				return err
			}

			a, err := newApp(flags)
			if err != nil {
				return err
			}
			defer a.close()

			entries, err := a.fetcher.FetchDailyIndex(cmd.Context(), day)
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Printf("No entries published on %s\n", day.Format(dateLayout))

				return nil
			}

			c := classifier.New(classifier.DefaultLeadLines)
			list := make([]*models.NormalizedAnnouncement, 0, len(entries))

			for _, entry := range entries {
				list = append(list, c.Classify(entry))
			}

			fmt.Println(formatter.Announcements(list))

			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "date, YYYY-MM-DD (default today)")

	return cmd
}

func documentCmd(flags *globalFlags) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "document",
		Short: "Fetch one document and print it as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			defer a.close()

			doc, err := a.fetcher.FetchDocument(cmd.Context(), id)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode document: %w", err)
			}

			fmt.Println(string(out))

			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "published identifier")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func articlesCmd(flags *globalFlags) *cobra.Command {
	var (
		file         string
		id           string
		consolidated bool
		verbose      bool
	)

	cmd := &cobra.Command{
		Use:   "articles",
		Short: "Split a disposition into its articles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			markup, ref, err := articleSource(cmd.Context(), flags, file, id, consolidated)
			if err != nil {
				return err
			}

			result := articles.NewExtractor().Extract(ref, markup)

			fmt.Println(formatter.Articles(result.Articles))
			fmt.Printf("\n%d blocks, %d articles, %d dropped\n", result.Stats.Blocks, result.Stats.Extracted, len(result.Dropped))

			if verbose {
				for _, d := range result.Dropped {
					fmt.Printf("  - %s %q: %v\n", d.BlockID, d.Header, d.Reason)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "read markup from a local file")
	cmd.Flags().StringVar(&id, "id", "", "fetch the document with this identifier")
	cmd.Flags().BoolVar(&consolidated, "consolidated", false, "with --id, use the consolidated text instead of the published one")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "list dropped blocks")
	cmd.MarkFlagsMutuallyExclusive("file", "id")

	return cmd
}

func articleSource(ctx context.Context, flags *globalFlags, file, id string, consolidated bool) (string, string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", "", fmt.Errorf("failed to read %s: %w", file, err)
		}

		return string(data), file, nil
	}

	if id == "" {
		return "", "", errMissingInput
	}

	a, err := newApp(flags)
	if err != nil {
		return "", "", err
	}
	defer a.close()

	if consolidated {
		markup, err := a.fetcher.FetchConsolidated(ctx, id)

		return markup, id, err
	}

	doc, err := a.fetcher.FetchDocument(ctx, id)
	if err != nil {
		return "", "", err
	}

	return doc.Markup, id, nil
}

func classifyCmd(flags *globalFlags) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify one announcement from its document",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			defer a.close()

			doc, err := a.fetcher.FetchDocument(cmd.Context(), id)
			if err != nil {
				return err
			}

			entry := models.BulletinIndexEntry{
				PublishedOn:    doc.PublishedOn,
				ID:             doc.ID,
				Title:          doc.Title,
				DepartmentName: doc.DepartmentName,
				XMLURL:         a.fetcher.DocumentURL(doc.ID),
			}

			c := classifier.New(classifier.DefaultLeadLines)
			announcement := c.Refine(c.Classify(entry), entry, doc)

			out, err := json.MarshalIndent(announcement, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode announcement: %w", err)
			}

			fmt.Println(string(out))

			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "published identifier")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func scheduleCmd(flags *globalFlags) *cobra.Command {
	var runNow bool

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the daily ingestion on the configured cron schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sink, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer sink.Close(context.WithoutCancel(ctx))

			runner := pipeline.NewRunner(a.cfg, a.fetcher, sink, a.log)

			scheduler, err := pipeline.NewScheduler(a.cfg.Schedule, runner, a.log)
			if err != nil {
				return err
			}

			if runNow {
				if _, err := scheduler.RunOnce(ctx); err != nil {
					a.log.Error("initial run failed", "error", err)
				}
			}

			scheduler.Start()
			a.log.Info("scheduler started", "cron", a.cfg.Schedule.Cron, "next_run", scheduler.NextRun())

			<-ctx.Done()

			scheduler.Stop()
			a.log.Info("scheduler stopped")

			return nil
		},
	}

	cmd.Flags().BoolVar(&runNow, "now", false, "run once immediately before waiting for the schedule")

	return cmd
}

func initConfigCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write the default configuration to a YAML file",
		RunE: func(_ *cobra.Command, _ []string) error {
			if _, err := os.Stat(output); err == nil {
				return fmt.Errorf("%s already exists", output)
			}

			if err := config.Default().SaveConfig(output); err != nil {
				return err
			}

			fmt.Printf("Wrote default configuration to %s\n", output)

			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "gazette.yaml", "destination file")

	return cmd
}

func formatCmd() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "format FILE",
		Short: "Realign the markdown tables of a saved report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("failed to stat %s: %w", path, err)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			formatted := formatter.FormatMarkdown(string(data))

			if !write {
				fmt.Fprint(cmd.OutOrStdout(), formatted)

				return nil
			}

			if formatted == string(data) {
				return nil
			}

			if err := os.WriteFile(path, []byte(formatted), info.Mode().Perm()); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "rewrite the file in place instead of printing")

	return cmd
}
