package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/figsheet/figsheet/pkg/figure"
	"github.com/figsheet/figsheet/pkg/httputil"
	"github.com/figsheet/figsheet/pkg/manifest"
	"github.com/figsheet/figsheet/pkg/report"
)

// Group runs stage 1: parse the manifest, reconcile the markdown
// rendition when one is configured, and cluster the entries into
// figure groups. Returned skips are groups removed by the relevance
// filter; a manifest that cannot be read is a hard error.
func (r *Runner) Group(ctx context.Context, opts Options) ([]figure.Group, []report.Skipped, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	m, err := r.loadManifest(ctx, opts.Manifest)
	if err != nil {
		return nil, nil, err
	}

	var mdEntries []manifest.MarkdownEntry
	if opts.MarkdownDir != "" {
		mdPath := manifest.FindMarkdown(opts.MarkdownDir, documentStem(opts.Manifest))
		if mdPath == "" {
			r.logger(opts).Warn("no markdown rendition found", "dir", opts.MarkdownDir)
		} else {
			mdEntries, err = manifest.ParseMarkdownFile(mdPath)
			if err != nil {
				return nil, nil, fmt.Errorf("parse markdown %s: %w", mdPath, err)
			}
		}
	}

	entries := figure.BuildEntries(m, mdEntries)
	groups := figure.GroupEntries(entries, opts.Grouping)

	if opts.KeepAll {
		return groups, nil, nil
	}

	var kept []figure.Group
	var skipped []report.Skipped
	for _, g := range groups {
		keep, reason := opts.Filter.Keep(g)
		if keep {
			kept = append(kept, g)
			continue
		}
		skipped = append(skipped, report.Skipped{
			GroupID: g.ID,
			Reason:  string(reason),
			Detail:  firstMember(g),
		})
	}
	return kept, skipped, nil
}

// loadManifest reads the manifest from disk, or fetches it when the
// path is an http(s) URL.
func (r *Runner) loadManifest(ctx context.Context, path string) (*manifest.Manifest, error) {
	if !remoteManifest(path) {
		return manifest.Load(path)
	}
	data, err := httputil.NewFetcher(nil).FetchBytes(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("fetch manifest: %w", err)
	}
	return manifest.Parse(data)
}

func firstMember(g figure.Group) string {
	for _, m := range g.Members {
		if sp := m.SourcePath(); sp != "" {
			return filepath.Base(sp)
		}
	}
	return ""
}
