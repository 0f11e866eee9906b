package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dejo1307/autodocs/internal/config"
	"github.com/dejo1307/autodocs/internal/docs"
	"github.com/dejo1307/autodocs/internal/library"
	"github.com/dejo1307/autodocs/internal/logger"
	"github.com/dejo1307/autodocs/internal/render"
	"github.com/dejo1307/autodocs/internal/server"
	"github.com/dejo1307/autodocs/internal/store"
)

// inputFlags are the generation choices shared by generate and preview.
type inputFlags struct {
	project  string
	sources  []string
	commits  []string
	docTypes []string
	tone     string
	audience string
}

func (f *inputFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.project, "project", "", "project id (default from config)")
	fl.StringSliceVar(&f.sources, "source", nil, "sources to analyze: code, commits, prs (repeatable)")
	fl.StringSliceVar(&f.commits, "commit", nil, "commit ids to include (repeatable)")
	fl.StringSliceVar(&f.docTypes, "type", nil, "doc types in generation order: architecture, api, onboarding")
	fl.StringVar(&f.tone, "tone", "", "concise, standard or detailed")
	fl.StringVar(&f.audience, "audience", "", "dev, ops or product")
}

func (f *inputFlags) input(cfg *config.Config) (docs.GenerationInput, error) {
	return cfg.BuildInput(config.Request{
		Project:   f.project,
		Sources:   f.sources,
		CommitIDs: f.commits,
		DocTypes:  f.docTypes,
		Tone:      f.tone,
		Audience:  f.audience,
	})
}

func newGenerateCommand(a *app) *cobra.Command {
	var (
		in     inputFlags
		dryRun bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate documents and save them to the library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input, err := in.input(a.cfg)
			if err != nil {
				return err
			}
			var generated []docs.GeneratedDoc
			if dryRun {
				generated, err = a.eng.Generate(cmd.Context(), input)
			} else {
				generated, err = a.eng.GenerateAndSave(cmd.Context(), input)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, generated)
			}
			if len(generated) == 0 {
				fmt.Fprintln(out, "No documents generated.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, d := range generated {
				fmt.Fprintf(w, "%s\t%s\t%s\n", d.ID, d.Title, d.VersionTag)
			}
			return w.Flush()
		},
	}
	in.bind(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "generate without saving")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the generated documents as JSON")
	return cmd
}

func newPreviewCommand(a *app) *cobra.Command {
	var in inputFlags
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the fingerprint, doc types and commits a generation would use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input, err := in.input(a.cfg)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), a.eng.Preview(input))
		},
	}
	in.bind(cmd)
	return cmd
}

func newListCommand(a *app) *cobra.Command {
	var (
		f     library.Filter
		limit int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			all, err := a.lib.List(cmd.Context(), f)
			if err != nil {
				return err
			}
			if limit > 0 && len(all) > limit {
				all = all[:limit]
			}
			out := cmd.OutOrStdout()
			if len(all) == 0 {
				fmt.Fprintln(out, "No documents found.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTYPE\tTITLE\tVERSION\tCREATED")
			for _, d := range all {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.ID, d.Type, d.Title, d.VersionTag, d.CreatedAt.UTC().Format(time.RFC3339))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&f.Type, "type", library.TypeAll, "filter by type: all, architecture, api, onboarding")
	cmd.Flags().StringVar(&f.Search, "search", "", "case-insensitive title substring")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of documents")
	return cmd
}

func newShowCommand(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a document with its changes since the previous version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.lib.View(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch format {
			case "markdown", "md":
				_, err = io.WriteString(out, render.MarkdownWithDiff(v.Doc, v.Diff))
				return err
			case "json":
				return writeJSON(out, v)
			default:
				return fmt.Errorf("unknown format %q (want markdown or json)", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "markdown", "markdown or json")
	return cmd
}

func newDiffCommand(a *app) *cobra.Command {
	var against string
	cmd := &cobra.Command{
		Use:   "diff <id>",
		Short: "Diff a document against its previous version or --against another document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if against != "" {
				res, err := a.lib.Compare(cmd.Context(), against, args[0])
				if err != nil {
					return err
				}
				_, err = io.WriteString(out, render.Diff(res))
				return err
			}
			v, err := a.lib.View(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if v.Previous != nil {
				fmt.Fprintf(out, "Compared %s against %s.\n\n", v.Doc.ID, v.Previous.ID)
			}
			_, err = io.WriteString(out, render.Diff(v.Diff))
			return err
		},
	}
	cmd.Flags().StringVar(&against, "against", "", "document id to compare against")
	return cmd
}

func newDeleteCommand(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a document, or every document with --all",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) == 1) {
				return errors.New("give either a document id or --all")
			}
			if all {
				n, err := a.lib.Clear(cmd.Context())
				if err != nil {
					return err
				}
				a.log.Info().Int("count", n).Msg("library cleared")
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d documents.\n", n)
				return nil
			}
			if err := a.lib.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s.\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "delete every document in the library")
	return cmd
}

func newExportCommand(a *app) *cobra.Command {
	var (
		format string
		out    string
		all    bool
	)
	cmd := &cobra.Command{
		Use:   "export [id]",
		Short: "Export one document as markdown or json, or the whole library as JSONL",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) == 1) {
				return errors.New("give either a document id or --all")
			}
			if all {
				docsAll, err := a.store.GetDocs(cmd.Context())
				if err != nil {
					return err
				}
				return writeOutput(cmd.OutOrStdout(), out, func(w io.Writer) error {
					return store.WriteJSONL(w, docsAll)
				})
			}

			rnd := render.NewDefaultRegistry().Get(format)
			if rnd == nil {
				return fmt.Errorf("unknown format %q (want markdown or json)", format)
			}
			d, err := a.lib.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			data, err := rnd.Render(*d)
			if err != nil {
				return err
			}
			if out != "" && isDir(out) {
				out = filepath.Join(out, d.ID+rnd.Extension())
			}
			return writeOutput(cmd.OutOrStdout(), out, func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "markdown", "markdown or json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file or directory (default stdout)")
	cmd.Flags().BoolVar(&all, "all", false, "export every document as JSONL")
	return cmd
}

func newImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.jsonl>",
		Short: "Import documents from a JSONL export, replacing documents with the same id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			imported, err := store.ReadJSONL(f)
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			for _, d := range imported {
				if err := a.store.SaveDoc(cmd.Context(), d); err != nil {
					return err
				}
			}
			a.log.Info().Int("count", len(imported)).Str("file", args[0]).Msg("documents imported")
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d documents.\n", len(imported))
			return nil
		},
	}
}

func newSourcesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the commits and pull requests available for generation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fx := a.eng.Fixtures()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)

			fmt.Fprintf(w, "Code: %s (%d files)\n\n", fx.RepoTree.Name, fx.RepoTree.CountFiles())
			fmt.Fprintln(w, "COMMIT\tAUTHOR\tMESSAGE")
			for _, c := range fx.Commits {
				fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, c.Author, c.Message)
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, "PR\tSTATUS\tTITLE")
			for _, pr := range fx.PullRequests {
				fmt.Fprintf(w, "%s\t%s\t%s\n", pr.ID, pr.Status, pr.Title)
			}
			return w.Flush()
		},
	}
}

func newStatsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count documents per type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.lib.Stats(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, t := range docs.AllTypes {
				fmt.Fprintf(w, "%s\t%d\n", t, st.ByType[t])
			}
			fmt.Fprintf(w, "total\t%d\n", st.Total)
			return w.Flush()
		},
	}
}

func newServeCommand(a *app) *cobra.Command {
	var metricsAddr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the library over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if metricsAddr == "" {
				metricsAddr = a.cfg.Metrics.Addr
			}
			if metricsAddr != "" {
				log := logger.Component(a.log, "metrics")
				srv := &http.Server{Addr: metricsAddr, Handler: a.metrics.Handler(), ReadHeaderTimeout: 5 * time.Second}
				go func() {
					log.Info().Str("addr", metricsAddr).Msg("serving metrics")
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						log.Error().Err(err).Msg("metrics server stopped")
					}
				}()
				defer srv.Close()
			}
			return server.New(a.eng, a.lib, a.cfg, a.log).Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// writeOutput writes to path, or to stdout when path is empty.
func writeOutput(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(stdout)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	if err == nil {
		return info.IsDir()
	}
	return strings.HasSuffix(path, string(os.PathSeparator))
}
