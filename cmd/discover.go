package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/moodtune/internal/formatter"
	"github.com/desertthunder/moodtune/internal/models"
	"github.com/desertthunder/moodtune/internal/shared"
	"github.com/desertthunder/moodtune/internal/tasks"
	"github.com/urfave/cli/v3"
)

// language resolves --lang, falling back to the saved preference.
func (r *Runner) language(cmd *cli.Command) (models.Language, error) {
	if v := cmd.String("lang"); v != "" {
		return models.ParseLanguage(v)
	}
	return models.ParseLanguage(r.config.Language())
}

// Discover finds tracks for a mood description, or for every line of --batch.
func (r *Runner) Discover(ctx context.Context, cmd *cli.Command) error {
	lang, err := r.language(cmd)
	if err != nil {
		return err
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	engine, err := r.discoveryEngine(!cmd.Bool("no-cache"))
	if err != nil {
		return err
	}

	if path := cmd.String("batch"); path != "" {
		return r.discoverBatch(ctx, cmd, engine, path, lang, format)
	}

	query := cmd.StringArg("query")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: mood description", shared.ErrMissingArgument)
	}

	useJSON := cmd.Bool("json")
	var progress chan tasks.ProgressUpdate
	done := make(chan struct{})
	if !useJSON {
		progress = make(chan tasks.ProgressUpdate, 10)
		go r.printProgress(progress, done)
	} else {
		close(done)
	}

	r.logger.Info("discovering", "query", shared.Truncate(query, 40), "lang", lang)
	run, err := engine.Discover(ctx, query, lang, progress)
	if progress != nil {
		close(progress)
	}
	<-done
	if err != nil {
		return err
	}

	if cmd.String("format") != "" {
		dir := cmd.String("output")
		if dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		files, err := formatter.Write(ctx, r.httpClient, run.Result, format, dir, cmd.String("name"))
		if err != nil {
			return err
		}
		if useJSON {
			return r.writeJSON(map[string]any{"files": files, "cached": run.Cached}, cmd.Bool("pretty"))
		}
		r.writePlain("\n✓ Saved %d tracks\n", len(run.Result.Tracks))
		for _, f := range files {
			r.writePlain("  %s\n", f)
		}
		return nil
	}

	if useJSON {
		return r.writeJSON(run.Result, cmd.Bool("pretty"))
	}

	r.writePlain("\n")
	if _, err := r.output.Write(formatter.ToText(run.Result)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if run.Cached {
		r.writePlain("\n(served from cache)\n")
	}
	return nil
}

func (r *Runner) discoverBatch(ctx context.Context, cmd *cli.Command, engine *tasks.DiscoveryEngine, path string, lang models.Language, format formatter.Format) error {
	queries, err := readQueries(path)
	if err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, len(queries)*2+1)
	done := make(chan struct{})
	go r.printProgress(progress, done)

	result, err := engine.Batch(ctx, progress, queries, lang, tasks.BatchOpts{
		Format:     format,
		OutputDir:  cmd.String("output"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
		Client:     r.httpClient,
	})
	close(progress)
	<-done
	if result == nil {
		return err
	}

	if cmd.Bool("json") {
		if werr := r.writeJSON(result, cmd.Bool("pretty")); werr != nil {
			return werr
		}
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Batch Complete")
	r.writePlain("Output: %s\n", result.OutputDir)
	r.writePlain("Succeeded: %d/%d\n", result.Succeeded, result.Total)
	if result.ManifestPath != "" {
		r.writePlain("Manifest: %s\n", result.ManifestPath)
	}
	if result.Failed > 0 {
		r.writePlain("\nFailed:\n")
		for _, item := range result.Items {
			if item.Reason != "" {
				r.writePlain("  %d. %s: %s\n", item.Index+1, shared.Truncate(item.Query, 40), item.Reason)
			}
		}
	}
	return err
}

// readQueries reads one description per line, skipping blanks and # comments.
func readQueries(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open batch file: %w", err)
	}
	defer f.Close()

	var queries []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		queries = append(queries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	if len(queries) == 0 {
		return nil, fmt.Errorf("%w: %s has no mood descriptions", shared.ErrMissingArgument, path)
	}
	return queries, nil
}
