// Package pipeline drives subjects through load, parse, segment, extract,
// and append, and reports what happened to each.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"github.com/RyanBlaney/sonido-phonon/algorithms/filters"
	"github.com/RyanBlaney/sonido-phonon/algorithms/spectral"
	"github.com/RyanBlaney/sonido-phonon/annotation"
	"github.com/RyanBlaney/sonido-phonon/config"
	"github.com/RyanBlaney/sonido-phonon/dataset"
	"github.com/RyanBlaney/sonido-phonon/errs"
	"github.com/RyanBlaney/sonido-phonon/features"
	"github.com/RyanBlaney/sonido-phonon/logging"
	"github.com/RyanBlaney/sonido-phonon/metadata"
	"github.com/RyanBlaney/sonido-phonon/segment"
	"github.com/RyanBlaney/sonido-phonon/source"
	"github.com/RyanBlaney/sonido-phonon/table"
	"github.com/RyanBlaney/sonido-phonon/transcode"
)

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithDecoder replaces the audio decoder.
func WithDecoder(d transcode.Decoder) Option {
	return func(p *Pipeline) { p.decoder = d }
}

// WithTransform replaces the cepstral transform.
func WithTransform(t features.Transform) Option {
	return func(p *Pipeline) { p.transform = t }
}

// WithLogger replaces the pipeline logger.
func WithLogger(l logging.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithProgress draws a progress bar over subjects on w.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) { p.progress = w }
}

// Pipeline turns subjects into rows of the per-label datasets.
type Pipeline struct {
	cfg       *config.Config
	decoder   transcode.Decoder
	transform features.Transform
	source    *source.Source
	extractor *features.Extractor
	writer    *dataset.Writer
	logger    logging.Logger
	progress  io.Writer
}

// New wires a pipeline from cfg. The output directory is created here.
func New(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, errs.Configurationf("nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg: cfg,
		logger: logging.WithFields(logging.Fields{
			"component": "pipeline",
		}),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.decoder == nil {
		p.decoder = transcode.NewAutoDecoder(&transcode.DecoderConfig{
			FFmpegPath:  cfg.Decoder.FFmpegPath,
			FFprobePath: cfg.Decoder.FFprobePath,
			Timeout:     time.Duration(cfg.Decoder.TimeoutSeconds) * time.Second,
		})
	}
	if p.transform == nil {
		p.transform = spectral.NewMFCC(cfg.Features.MFCC)
	}

	extractor, err := features.NewExtractor(p.transform, cfg.Features.NumCoefficients)
	if err != nil {
		return nil, err
	}

	mode, err := dataset.ParseMode(cfg.Dataset.Mode)
	if err != nil {
		return nil, err
	}
	writer, err := dataset.NewWriter(cfg.Paths.OutputDir, dataset.Options{
		Mode:  mode,
		Width: extractor.Width(),
	})
	if err != nil {
		return nil, err
	}

	p.source = source.New(p.decoder)
	p.extractor = extractor
	p.writer = writer
	return p, nil
}

// Writer exposes the dataset writer, mainly for its Stats.
func (p *Pipeline) Writer() *dataset.Writer {
	return p.writer
}

// Run processes subjects in list order. With more than one worker, subjects
// run concurrently and results are still reported in list order. Subjects
// with a missing input are skipped without touching any dataset file. Load,
// parse, metadata, and extraction errors fail only their subject. A write
// error stops the run and is returned with the partial summary, as is ctx
// cancellation.
func (p *Pipeline) Run(ctx context.Context, subjects []SubjectInputs) (*Summary, error) {
	runID := uuid.NewString()
	ctx = logging.ContextWithFields(ctx, logging.Fields{"run_id": runID})
	logger := p.logger.WithContext(ctx)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		fatalOnce sync.Once
		fatal     error
	)

	workers := max(p.cfg.Pipeline.Workers, 1)
	logger.Info("Starting run", logging.Fields{
		"subjects": len(subjects),
		"workers":  workers,
		"output":   p.cfg.Paths.OutputDir,
	})

	bar := p.newProgressBar(len(subjects))

	type outcome struct {
		result SubjectResult
		rows   map[string]int
		done   bool
	}
	outcomes := make([]outcome, len(subjects))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					continue
				}
				result, rows, err := p.runSubject(ctx, subjects[i])
				if err != nil {
					fatalOnce.Do(func() {
						fatal = err
						cancel()
					})
				}
				outcomes[i] = outcome{result: result, rows: rows, done: true}
				if bar != nil {
					_ = bar.Add(1)
				}
			}
		}()
	}

schedule:
	for i := range subjects {
		select {
		case <-ctx.Done():
			break schedule
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if bar != nil {
		_ = bar.Finish()
	}

	summary := newSummary(runID)
	for _, o := range outcomes {
		if o.done {
			summary.record(o.result, o.rows)
		}
	}
	summary.Files = p.writer.Stats()

	fields := logging.Fields{
		"processed": len(summary.Processed),
		"skipped":   len(summary.Skipped),
		"failed":    len(summary.Failed),
		"rows":      summary.TotalRows(),
	}

	if fatal != nil {
		logger.Error(fatal, "Run aborted", fields)
		return summary, fatal
	}
	if err := ctx.Err(); err != nil {
		logger.Warn("Run cancelled", fields)
		return summary, err
	}

	logger.Info("Run complete", fields)
	return summary, nil
}

// runSubject classifies one subject's outcome. The returned error is set only
// when the run must stop.
func (p *Pipeline) runSubject(ctx context.Context, in SubjectInputs) (SubjectResult, map[string]int, error) {
	logger := p.logger.WithContext(ctx).WithFields(logging.Fields{"subject": in.ID})
	result := SubjectResult{ID: in.ID}

	reason, err := checkInputs(in)
	if reason != "" {
		result.Outcome = OutcomeSkipped
		result.Reason = reason
		logger.Warn("Skipping subject", logging.Fields{"reason": reason})
		return result, nil, nil
	}

	var (
		name string
		rows map[string]int
	)
	if err == nil {
		name, rows, err = p.process(ctx, in)
	}
	result.Name = name
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		// interrupted, not failed; left out of the summary
		return result, nil, nil
	}
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Reason = err.Error()
		result.Kind = errs.Kind(err)
		if errors.Is(err, errs.ErrWrite) {
			logger.Error(err, "Dataset write failed")
			return result, nil, err
		}
		logger.Error(err, "Subject failed", logging.Fields{"kind": result.Kind})
		return result, nil, nil
	}

	result.Outcome = OutcomeProcessed
	for _, n := range rows {
		result.Rows += n
	}
	logger.Info("Processed subject", logging.Fields{
		"name": name,
		"rows": result.Rows,
	})
	return result, rows, nil
}

// checkInputs returns a skip reason when an input is absent. An input that
// exists but cannot be inspected is a load error, not a skip.
func checkInputs(in SubjectInputs) (string, error) {
	checks := []struct {
		what, path string
	}{
		{"audio", in.AudioPath},
		{"annotation", in.AnnotationPath},
		{"metadata", in.MetadataPath},
	}
	for _, c := range checks {
		if c.path == "" {
			return fmt.Sprintf("no %s file", c.what), nil
		}
		info, err := os.Stat(c.path)
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Sprintf("%s file %s not found", c.what, c.path), nil
		}
		if err != nil {
			return "", errs.Loadf("stat %s file: %w", c.what, err)
		}
		if info.IsDir() {
			return "", errs.Loadf("%s path %s is a directory", c.what, c.path)
		}
	}
	return "", nil
}

// ProcessSubject runs one subject end to end and returns the rows appended
// per label. Every table is built before the first append, so a subject that
// fails to load, parse, or extract leaves the datasets untouched.
func (p *Pipeline) ProcessSubject(ctx context.Context, in SubjectInputs) (map[string]int, error) {
	_, rows, err := p.process(ctx, in)
	return rows, err
}

func (p *Pipeline) process(ctx context.Context, in SubjectInputs) (string, map[string]int, error) {
	subject, err := metadata.Load(in.MetadataPath)
	if err != nil {
		return "", nil, err
	}

	rec, err := p.source.Load(in.AudioPath, p.cfg.Features.HopSeconds, p.cfg.Features.WindowSeconds)
	if err != nil {
		return subject.Name, nil, err
	}

	if err := p.preprocess(rec); err != nil {
		return subject.Name, nil, err
	}

	idx, err := annotation.ParseFile(in.AnnotationPath, p.cfg.Annotation.Separator, rec.SampleRate)
	if err != nil {
		return subject.Name, nil, err
	}

	labels := p.labels(idx)
	segs, err := segment.Split(rec.Waveform, idx, labels...)
	if err != nil {
		return subject.Name, nil, err
	}

	tables := make([]*table.Table, 0, len(segs))
	for _, label := range labels {
		if err := ctx.Err(); err != nil {
			return subject.Name, nil, err
		}
		instances := make([]features.Matrix, len(segs[label]))
		for i, seg := range segs[label] {
			m, err := p.extractor.Extract(seg.Samples, rec.SampleRate, rec.FrameSize, rec.HopSize)
			if err != nil {
				return subject.Name, nil, fmt.Errorf("%s: %w", table.Tag(label, i), err)
			}
			instances[i] = m
		}
		tables = append(tables, table.Build(label, p.extractor.Width(), subject, instances))
	}

	rows := make(map[string]int, len(tables))
	for _, t := range tables {
		if err := p.writer.Append(t); err != nil {
			return subject.Name, rows, err
		}
		if t.Len() > 0 {
			rows[t.Label] = t.Len()
		}
	}
	return subject.Name, rows, nil
}

// preprocess runs the configured filters over the whole waveform so that
// segment boundaries do not reset filter state.
func (p *Pipeline) preprocess(rec *source.Recording) error {
	pre := p.cfg.Features.Preprocess
	if pre.DCCutoffHz > 0 {
		dc, err := filters.NewDCRemoval(rec.SampleRate, pre.DCCutoffHz)
		if err != nil {
			return errs.Configurationf("dc removal: %w", err)
		}
		rec.Waveform = dc.ProcessBuffer(rec.Waveform)
	}
	if pre.PreEmphasis > 0 {
		pe, err := filters.NewPreEmphasis(pre.PreEmphasis)
		if err != nil {
			return errs.Configurationf("pre-emphasis: %w", err)
		}
		rec.Waveform = pe.ProcessBuffer(rec.Waveform)
	}
	return nil
}

// labels is the emission order: every standard label, then unrecognized
// names when they are enabled.
func (p *Pipeline) labels(idx *annotation.Index) []string {
	var out []string
	for _, l := range annotation.StandardLabels() {
		out = append(out, l.String())
	}
	if !p.cfg.Dataset.IncludeUnrecognized {
		return out
	}
	for _, name := range idx.Names() {
		if !annotation.ParseLabel(name).Standard() {
			out = append(out, name)
		}
	}
	return out
}

func (p *Pipeline) newProgressBar(total int) *progressbar.ProgressBar {
	if p.progress == nil || total == 0 {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.progress),
		progressbar.OptionSetDescription("subjects"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetRenderBlankState(true),
	)
}
