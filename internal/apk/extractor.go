// Package apk extracts class metadata from Android application
// packages. It walks the archive for classes*.dex shards, decodes each
// shard, and aggregates the results for filtering.
package apk

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dexbridge/dexscan/internal/dex"
)

// maxDexSize caps a single decompressed shard. Prevents memory
// exhaustion from corrupted or hostile archives.
const maxDexSize = 650 * 1024 * 1024 // 650MB

// ErrNoDexEntries means the archive opened fine but contains no
// classes*.dex entries.
var ErrNoDexEntries = errors.New("no classes*.dex entries in archive")

// dexEntryName matches multidex shard names: classes.dex, classes2.dex
// and so on, at the archive root.
var dexEntryName = regexp.MustCompile(`^classes[0-9]*\.dex$`)

// Progress receives coarse extraction milestones. fraction is in
// [0, 1]. Callbacks are serialized; they must return promptly and must
// not assume reentrancy.
type Progress func(fraction float64, message string)

// Options control one extraction run.
type Options struct {
	// Workers bounds concurrent shard decodes. Values below 2 decode
	// serially.
	Workers int

	// Progress, when non-nil, is invoked after each shard and once
	// extraction completes.
	Progress Progress
}

// Result aggregates decoded classes across all shards, in shard order.
type Result struct {
	// Classes is the combined class list before filtering. Duplicate
	// names across shards are preserved here; Filter resolves them.
	Classes []dex.Class

	// Shards is the number of classes*.dex entries decoded.
	Shards int

	// Errors lists classes whose class_data decode failed part way.
	// Those classes are still present in Classes with the methods
	// recovered before the failure.
	Errors []dex.ClassError
}

// ExtractClasses opens the APK at path and decodes every DEX shard in
// it. A missing file surfaces as the underlying fs error; header-level
// corruption in any shard fails the whole extraction; per-class decode
// failures only land in Result.Errors. Shards decode concurrently when
// opts.Workers allows, and ctx cancellation is honored between shards.
func ExtractClasses(ctx context.Context, path string, opts Options) (*Result, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	defer zr.Close()

	var entries []*zip.File
	for _, f := range zr.File {
		if dexEntryName.MatchString(f.Name) {
			entries = append(entries, f)
		}
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoDexEntries)
	}

	var progressMu sync.Mutex
	done := 0
	report := func(frac float64, msg string) {
		if opts.Progress == nil {
			return
		}
		progressMu.Lock()
		defer progressMu.Unlock()
		opts.Progress(frac, msg)
	}
	// One extra step keeps the bar short of 100% until the final
	// completion report.
	steps := float64(len(entries) + 1)

	type shardResult struct {
		classes []dex.Class
		errs    []dex.ClassError
	}
	results := make([]shardResult, len(entries))

	g, ctx := errgroup.WithContext(ctx)
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)

	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := readEntry(entry)
			if err != nil {
				return fmt.Errorf("read %s: %w", entry.Name, err)
			}
			classes, clsErrs, err := dex.Parse(data)
			if err != nil {
				return fmt.Errorf("parse %s: %w", entry.Name, err)
			}
			results[i] = shardResult{classes: classes, errs: clsErrs}

			progressMu.Lock()
			done++
			completed := done
			progressMu.Unlock()
			report(float64(completed)/steps,
				fmt.Sprintf("parsed %s (%d classes)", entry.Name, len(classes)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Shards: len(entries)}
	for _, sr := range results {
		res.Classes = append(res.Classes, sr.classes...)
		res.Errors = append(res.Errors, sr.errs...)
	}
	report(1.0, fmt.Sprintf("extracted %d classes from %d shards", len(res.Classes), res.Shards))
	return res, nil
}

// readEntry decompresses one archive entry fully into memory, bounded
// by maxDexSize.
func readEntry(f *zip.File) ([]byte, error) {
	if f.UncompressedSize64 > maxDexSize {
		return nil, fmt.Errorf("entry too large: %d bytes (max %d)", f.UncompressedSize64, maxDexSize)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	// LimitReader guards against a lying UncompressedSize64.
	return io.ReadAll(io.LimitReader(rc, maxDexSize))
}
