package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// batchResult is the outcome of one payload file.
type batchResult struct {
	file    string
	step    string
	elapsed time.Duration
	err     error
}

// cacheTally counts cache outcomes across a batch.
type cacheTally struct {
	hits, misses atomic.Int64
}

func (t *cacheTally) ObserveCache(hit bool) {
	if hit {
		t.hits.Add(1)
		return
	}
	t.misses.Add(1)
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run every session payload in a directory concurrently",
	Long: "Batch runs each *.json payload in --dir through the workflow dispatcher.\n" +
		"Sessions share one response cache. A failing file does not stop the others.",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		out, _ := cmd.Flags().GetString("out")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		if concurrency < 1 {
			return fmt.Errorf("--concurrency must be at least 1, got %d", concurrency)
		}

		files, err := filepath.Glob(filepath.Join(dir, "*.json"))
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no *.json payloads in %s", dir)
		}
		sort.Strings(files)
		if out != "" {
			if err := os.MkdirAll(out, 0o755); err != nil {
				return err
			}
		}

		tally := &cacheTally{}
		a, err := newApp(cmd, appOptions{cacheObserver: tally})
		if err != nil {
			return err
		}
		defer a.Close()

		var (
			mu      sync.Mutex
			results []batchResult
		)
		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(concurrency)
		for _, file := range files {
			g.Go(func() error {
				start := time.Now()
				res := batchResult{file: filepath.Base(file)}
				res.step, res.err = runPayloadFile(ctx, cmd, a, file, out)
				res.elapsed = time.Since(start)
				if res.err != nil {
					a.logger.Warn().Err(res.err).Str("file", res.file).Msg("payload failed")
				}

				mu.Lock()
				results = append(results, res)
				mu.Unlock()
				// Per-file failures are reported, not propagated, so the
				// group keeps running the remaining files.
				return nil
			})
		}
		_ = g.Wait()

		sort.Slice(results, func(i, j int) bool { return results[i].file < results[j].file })
		w := cmd.OutOrStdout()
		var failed []string
		for _, r := range results {
			status := r.step
			if r.err != nil {
				status = "error: " + r.err.Error()
				failed = append(failed, r.file)
			}
			fmt.Fprintf(w, "%-32s  %8s  %s\n", truncate(r.file, 32), r.elapsed.Round(time.Millisecond), status)
		}
		fmt.Fprintf(w, "\n%d files, %d failed, cache %d hits / %d misses\n",
			len(results), len(failed), tally.hits.Load(), tally.misses.Load())

		if len(failed) > 0 {
			return errors.New("failed payloads: " + strings.Join(failed, ", "))
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().StringP("dir", "d", ".", "Directory of session payload files")
	batchCmd.Flags().StringP("out", "o", "", "Directory to write <name>.result.json envelopes to")
	batchCmd.Flags().IntP("concurrency", "c", 4, "Sessions to run at once")
}

// runPayloadFile runs one payload and returns the step it reached. When
// out is set the envelope is written there.
func runPayloadFile(ctx context.Context, cmd *cobra.Command, a *app, file, out string) (string, error) {
	payload, err := readPayload(cmd, file)
	if err != nil {
		return "", err
	}
	env, err := a.orch.Run(ctx, payload)
	if err != nil {
		return "", err
	}
	if out != "" {
		name := strings.TrimSuffix(filepath.Base(file), ".json") + ".result.json"
		f, err := os.Create(filepath.Join(out, name))
		if err != nil {
			return "", err
		}
		defer f.Close()
		if err := printJSON(f, env); err != nil {
			return "", err
		}
	}
	return env.CurrentStep, nil
}
