package tasks

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/moodtune/internal/formatter"
	"github.com/desertthunder/moodtune/internal/models"
	"github.com/desertthunder/moodtune/internal/shared"
	"golang.org/x/time/rate"
)

// BatchOpts configures [DiscoveryEngine.Batch].
type BatchOpts struct {
	Format     formatter.Format // Output format (default: json)
	OutputDir  string           // Base output directory (default: moodtune_batch_{epoch})
	NumWorkers int              // Concurrent workers (default: 3, max: 8)
	RateLimit  float64          // Discovery requests per second (default: 2)
	Client     *http.Client     // Used for Markdown cover images; nil skips them
}

// BatchItem is the outcome of one description in a batch.
type BatchItem struct {
	Index  int      `json:"index"`
	Query  string   `json:"query"`
	Mood   string   `json:"mood,omitempty"`
	Tracks int      `json:"tracks"`
	Cached bool     `json:"cached"`
	Files  []string `json:"files,omitempty"`
	Error  error    `json:"-"`
	Reason string   `json:"error,omitempty"`
}

// BatchResult summarizes a batch run. It is also the manifest written to disk.
type BatchResult struct {
	Language     models.Language `json:"language"`
	Format       string          `json:"format"`
	OutputDir    string          `json:"output_dir"`
	Total        int             `json:"total"`
	Succeeded    int             `json:"succeeded"`
	Failed       int             `json:"failed"`
	Items        []BatchItem     `json:"items"`
	ManifestPath string          `json:"-"`
}

type batchJob struct {
	index int
	query string
}

// Batch discovers every query concurrently, writes each result in the chosen
// format and a batch_manifest.json describing the run. Individual failures are
// recorded in the manifest and do not stop the batch.
func (e *DiscoveryEngine) Batch(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	queries []string,
	lang models.Language,
	opts BatchOpts,
) (*BatchResult, error) {
	if len(queries) == 0 {
		return nil, fmt.Errorf("%w: no queries", shared.ErrMissingArgument)
	}
	if opts.Format == "" {
		opts.Format = formatter.JSON
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("moodtune_batch_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 3
	}
	opts.NumWorkers = min(opts.NumWorkers, 8, len(queries))
	if opts.RateLimit <= 0 {
		opts.RateLimit = 2
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BatchResult{
		Language:  lang,
		Format:    string(opts.Format),
		OutputDir: opts.OutputDir,
		Total:     len(queries),
		Items:     make([]BatchItem, len(queries)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan batchJob, len(queries))
	results := make(chan BatchItem, len(queries))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.batchWorker(ctx, &wg, limiter, jobs, results, lang, opts)
	}

	for i, q := range queries {
		jobs <- batchJob{index: i, query: q}
		sendProgress(progress, batchQueuedUpdate(i+1, len(queries), q))
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	reported := make([]bool, len(queries))
	completed := 0
	for item := range results {
		completed++
		reported[item.Index] = true
		if item.Error != nil {
			item.Reason = item.Error.Error()
			result.Failed++
		} else {
			result.Succeeded++
		}
		result.Items[item.Index] = item
		sendProgress(progress, batchCompletedUpdate(completed, len(queries), item))
	}

	// Jobs skipped after cancellation never report back.
	for i, ok := range reported {
		if !ok {
			result.Items[i] = BatchItem{Index: i, Query: queries[i], Error: ctx.Err(), Reason: "cancelled"}
			result.Failed++
		}
	}

	manifest := filepath.Join(opts.OutputDir, "batch_manifest.json")
	if err := formatter.WriteJSON(result, manifest); err != nil {
		return result, fmt.Errorf("batch completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifest

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

func (e *DiscoveryEngine) batchWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan batchJob,
	results chan<- BatchItem,
	lang models.Language,
	opts BatchOpts,
) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			return
		}
		results <- e.discoverOne(ctx, limiter, job, lang, opts)
	}
}

func (e *DiscoveryEngine) discoverOne(ctx context.Context, limiter *rate.Limiter, job batchJob, lang models.Language, opts BatchOpts) BatchItem {
	item := BatchItem{Index: job.index, Query: job.query}

	if err := models.ValidateQuery(job.query); err != nil {
		item.Error = err
		return item
	}
	if err := limiter.Wait(ctx); err != nil {
		item.Error = err
		return item
	}

	run, err := e.Discover(ctx, job.query, lang, nil)
	if err != nil {
		item.Error = err
		return item
	}

	item.Mood = run.Result.Playlist().Name
	item.Tracks = len(run.Result.Tracks)
	item.Cached = run.Cached

	name := fmt.Sprintf("%02d_%s", job.index+1, shared.Slugify(item.Mood))
	files, err := formatter.Write(ctx, opts.Client, run.Result, opts.Format, opts.OutputDir, name)
	if err != nil {
		item.Error = err
		return item
	}
	item.Files = files
	return item
}
