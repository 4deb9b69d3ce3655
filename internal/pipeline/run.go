package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"pyglue-generator/internal/build"
	"pyglue-generator/internal/diagnostic"
	"pyglue-generator/internal/gen"
	"pyglue-generator/internal/model"
	"pyglue-generator/internal/policy"
	"pyglue-generator/internal/replace"
)

// Options are the destinations of a run.
type Options struct {
	// GlueFile receives the binding statements. Empty skips the glue output.
	GlueFile string
	// StubFile receives the stub declarations. Empty skips the stub output.
	StubFile string
	// PreserveIndent re-indents generated lines to the start marker's indent.
	PreserveIndent bool
	// Jobs bounds concurrent file processing. Zero means GOMAXPROCS.
	Jobs int
	// DryRun renders without touching the destinations.
	DryRun bool
}

// FileResult is the outcome for one input header.
type FileResult struct {
	Path   string
	Source []byte
	Model  *model.Model
	Rules  *replace.Cache
	Output gen.Output
	Diags  diagnostic.Diagnostics
	// Err is set when the file was skipped.
	Err error
}

// Failed reports whether the file was skipped.
func (r *FileResult) Failed() bool {
	return r.Err != nil
}

// Summary describes a completed run.
type Summary struct {
	Files []*FileResult
	// Output is the concatenation of every successful file's output.
	Output gen.Output
	// Changed lists the destinations whose content was rewritten.
	Changed []string
}

// Failed returns the skipped files.
func (s *Summary) Failed() []*FileResult {
	var out []*FileResult

	for _, f := range s.Files {
		if f.Failed() {
			out = append(out, f)
		}
	}

	return out
}

// Succeeded returns the files that produced output.
func (s *Summary) Succeeded() []*FileResult {
	var out []*FileResult

	for _, f := range s.Files {
		if !f.Failed() {
			out = append(out, f)
		}
	}

	return out
}

// ProcessFile reads, parses and models one header. A fatal problem is stored
// in the result's Err rather than returned, so one bad file does not stop
// the others.
func ProcessFile(ctx context.Context, gc *GenerationContext, path string) *FileResult {
	res := &FileResult{Path: path}
	pol := gc.Policy

	raw, err := os.ReadFile(path)
	if err != nil {
		res.Err = errors.Wrapf(err, "reading %s", path)
		return res
	}

	source, markers := build.StripMarkers(raw, pol.PublishPrefixes, pol.PublishSuffixes)
	res.Source = source

	tree, err := gc.Provider.Parse(ctx, source, gc.Encoding)
	if err != nil {
		res.Err = errors.Wrapf(err, "parsing %s", path)
		return res
	}

	m, rules, diags := build.Build(ctx, build.Input{
		File:    path,
		Source:  source,
		Tree:    tree,
		Markers: markers,
	}, pol)
	diags.WithFile(path)

	res.Model = m
	res.Rules = rules
	res.Diags = diags

	if err := diags.Fatal(pol.Strict); err != nil {
		res.Err = errors.Wrapf(err, "modeling %s", path)
	}

	return res
}

// Run processes every path and splices the combined output into the
// destinations. Files are modeled concurrently; their rename rules are
// merged in input order before any rendering starts, so a default in one
// header can use an enum constant of another. The returned error is set
// only when a destination could not be written.
func Run(ctx context.Context, gc *GenerationContext, paths []string, opts Options) (*Summary, error) {
	pol := gc.Policy
	log := gc.Log

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]*FileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, path := range paths {
		g.Go(func() error {
			results[i] = ProcessFile(gctx, gc, path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "run cancelled")
	}

	rules := replace.New()

	for _, res := range results {
		if !res.Failed() {
			rules.Merge(res.Rules)
		}
	}

	gc.Rules = rules

	g = new(errgroup.Group)
	g.SetLimit(jobs)

	for _, res := range results {
		if res.Failed() {
			continue
		}

		g.Go(func() error {
			out, diags := gc.Renders.Render(res.Source, res.Model, pol, rules)
			diags.WithFile(res.Path)

			res.Output = out
			res.Diags.Merge(diags)

			if err := diags.Fatal(pol.Strict); err != nil {
				res.Err = errors.Wrapf(err, "rendering %s", res.Path)
			}

			return nil
		})
	}

	_ = g.Wait()

	summary := &Summary{Files: results}

	var outs []gen.Output

	for _, res := range results {
		res.Diags.Report(log, pol.Quiet)

		if res.Failed() {
			log.Errorw("skipping file", "file", res.Path, "kind", diagnostic.KindOf(res.Err).String(), "error", res.Err)
			continue
		}

		outs = append(outs, res.Output)
	}

	summary.Output = gen.Join(outs)

	if opts.DryRun {
		return summary, nil
	}

	changed, err := splice(gc, summary.Succeeded(), opts)
	summary.Changed = changed

	hits, misses := gc.Renders.Stats()
	log.Debugw("run finished",
		"files", len(results),
		"failed", len(summary.Failed()),
		"changed", len(changed),
		"render_hits", hits,
		"render_misses", misses)

	return summary, err
}

// destination is one output file and the regions bound for it.
type destination struct {
	path    string
	regions []gen.Region
}

// destinations lays out the glue and stub regions. Markers containing the
// file placeholder get one region per input, keyed by base name; otherwise
// all outputs share one region.
func destinations(pol *policy.Policy, files []*FileResult, opts Options) []destination {
	outs := make([]gen.Output, len(files))
	for i, f := range files {
		outs[i] = f.Output
	}

	targets := []struct {
		path    string
		markers policy.Markers
		text    func(gen.Output) string
	}{
		{opts.GlueFile, pol.GlueMarkers, func(o gen.Output) string { return o.GlueText(pol.ModuleVar) }},
		{opts.StubFile, pol.StubMarkers, gen.Output.StubText},
	}

	var dests []destination

	for _, t := range targets {
		if t.path == "" {
			continue
		}

		d := destination{path: t.path}

		if gen.HasFilePlaceholder(t.markers) {
			for i, o := range gen.ClaimBoxes(outs) {
				d.regions = append(d.regions, gen.Region{
					Markers: gen.ForFile(t.markers, filepath.Base(files[i].Path)),
					Text:    t.text(o),
				})
			}
		} else {
			d.regions = []gen.Region{{Markers: t.markers, Text: t.text(gen.Join(outs))}}
		}

		dests = append(dests, d)
	}

	return dests
}

func splice(gc *GenerationContext, files []*FileResult, opts Options) ([]string, error) {
	var (
		changed []string
		errs    error
	)

	for _, d := range destinations(gc.Policy, files, opts) {
		ok, err := gen.SpliceRegions(d.path, d.regions, opts.PreserveIndent)
		if err != nil {
			gc.Log.Errorw("splice failed", "file", d.path, "error", err)
			errs = errors.CombineErrors(errs, err)

			continue
		}

		if ok {
			changed = append(changed, d.path)
			gc.Log.Infow("updated", "file", d.path)
		}
	}

	return changed, errs
}

// Stale returns the destinations whose regions differ from what the summary
// would write. Nothing is written.
func Stale(gc *GenerationContext, summary *Summary, opts Options) ([]string, error) {
	var stale []string

	for _, d := range destinations(gc.Policy, summary.Succeeded(), opts) {
		data, err := os.ReadFile(d.path)
		if err != nil {
			return nil, diagnostic.Mark(errors.Wrapf(err, "reading %s", d.path), diagnostic.KindOutputSplice)
		}

		content := string(data)
		for _, r := range d.regions {
			if content, err = gen.SpliceText(content, r.Markers, r.Text, opts.PreserveIndent); err != nil {
				return nil, errors.Wrapf(err, "checking %s", d.path)
			}
		}

		if content != string(data) {
			stale = append(stale, d.path)
		}
	}

	return stale, nil
}
