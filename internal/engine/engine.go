package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ivlev/killreel/internal/assemble"
	"github.com/ivlev/killreel/internal/audio"
	"github.com/ivlev/killreel/internal/clips"
	"github.com/ivlev/killreel/internal/config"
	"github.com/ivlev/killreel/internal/effects"
	"github.com/ivlev/killreel/internal/events"
	"github.com/ivlev/killreel/internal/manifest"
	"github.com/ivlev/killreel/internal/report"
	"github.com/ivlev/killreel/internal/segment"
	"github.com/ivlev/killreel/internal/source"
	"github.com/ivlev/killreel/internal/system"
	"github.com/ivlev/killreel/internal/transition"
	"github.com/ivlev/killreel/internal/video"
)

// ErrInput marks problems with the run's inputs. A run that fails with it has
// not written any output.
var ErrInput = errors.New("invalid input")

// ErrBusy is returned when another run holds the work directory.
var ErrBusy = errors.New("work directory is in use by another run")

const lockFile = ".killreel.lock"

// Project is one montage run: the settings plus the services it drives.
type Project struct {
	Config *config.Config
	Codec  video.Codec
	// Generator overrides the transition generator built from the config.
	Generator transition.Generator
	Encoder   string
	Logger    *zap.Logger

	runID   string
	workers int
	host    system.HostStats
	stages  []report.Stage
}

// Result is what a finished run produced.
type Result struct {
	RunID    string
	Output   string
	Manifest string
	Groups   []events.Group
	Segments []segment.Segment
	Tracks   []audio.MixedTrack
	Stats    report.Stats
}

func NewProject(cfg *config.Config, codec video.Codec, logger *zap.Logger) *Project {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Project{Config: cfg, Codec: codec, Logger: logger}
}

// Extraction is the output of the grouping and extraction stages.
type Extraction struct {
	Source   *source.MediaSource
	Groups   []events.Group
	Clips    []segment.Segment
	Manifest *manifest.Manifest
}

// Run executes the whole pipeline and writes the montage.
func (p *Project) Run(ctx context.Context) (*Result, error) {
	startTime := time.Now()
	if err := p.begin(ctx); err != nil {
		return nil, err
	}
	unlock, err := p.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	cfg := p.Config
	music, err := p.openMusic(ctx)
	if err != nil {
		return nil, err
	}
	palette, err := effects.ParsePalette(cfg.Transition.Styles)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInput, err)
	}
	output := cfg.OutputVideo
	if output == "" {
		output = DefaultOutputPath(cfg.SourcePath, time.Now())
	}

	ex, err := p.extract(ctx, false)
	if err != nil {
		return nil, err
	}

	scratch := filepath.Join(cfg.WorkDir, "scratch-"+p.runID)
	if !cfg.KeepWork {
		defer os.RemoveAll(scratch)
	}

	stitchStart := time.Now()
	stitcher := transition.NewStitcher(p.Codec, p.generator(), transition.Options{
		Frames:  p.transitionFrames(),
		Palette: palette,
		WorkDir: filepath.Join(scratch, "stitch"),
		Workers: p.workers,
	}, p.Logger.With(zap.String("stage", "stitch")))
	sequence, err := stitcher.Stitch(ctx, ex.Clips)
	if err != nil {
		return nil, fmt.Errorf("stitch: %w", err)
	}
	arena := segment.FromSequence(sequence)
	p.mark("stitch", stitchStart)

	mixStart := time.Now()
	sync := audio.NewSynchronizer(p.Codec, music, audio.PolicyFromConfig(cfg.Audio),
		filepath.Join(scratch, "audio"), p.Logger.With(zap.String("stage", "audio")))
	segs := arena.All()
	tracks, err := sync.Fold(ctx, segs)
	if err != nil {
		return nil, fmt.Errorf("audio: %w", err)
	}
	p.mark("audio", mixStart)

	assembleStart := time.Now()
	asm := assemble.NewAssembler(p.Codec, assemble.Canvas{
		Width:  cfg.Video.Width,
		Height: cfg.Video.Height,
		FPS:    float64(cfg.Video.FPS),
	}, filepath.Join(scratch, "mux"), p.Logger.With(zap.String("stage", "assemble")))
	if _, err := asm.Assemble(ctx, arena, tracks, output); err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	p.mark("assemble", assembleStart)

	ex.Manifest.Music = music.Path
	ex.Manifest.Output = output
	ex.Manifest.Segments = segs
	ex.Manifest.Tracks = tracks
	manifestPath := manifest.PathIn(p.clipsDir())
	if err := manifest.Write(ex.Manifest, manifestPath); err != nil {
		p.Logger.Warn("could not write manifest", zap.String("path", manifestPath), zap.Error(err))
	}

	res := &Result{
		RunID:    p.runID,
		Output:   output,
		Manifest: manifestPath,
		Groups:   ex.Groups,
		Segments: segs,
		Tracks:   tracks,
		Stats:    p.stats(startTime, output),
	}
	if cfg.ShowStats {
		if err := report.AppendLog("benchmark.log", res.Stats); err != nil {
			p.Logger.Warn("could not write benchmark.log", zap.Error(err))
		}
	}
	p.Logger.Info("montage complete",
		zap.String("output", output),
		zap.Int("segments", len(segs)),
		zap.Duration("elapsed", time.Since(startTime)))
	return res, nil
}

// Extract runs only the grouping and extraction stages, starting from an
// empty clips directory.
func (p *Project) Extract(ctx context.Context) (*Extraction, error) {
	if err := p.begin(ctx); err != nil {
		return nil, err
	}
	unlock, err := p.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	ex, err := p.extract(ctx, true)
	if err != nil {
		return nil, err
	}
	if err := manifest.Write(ex.Manifest, manifest.PathIn(p.clipsDir())); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}
	return ex, nil
}

// Groups reads the timestamps and groups them without touching any media.
func (p *Project) Groups() ([]events.Group, error) {
	ts, err := events.ReadTimestamps(p.timestampsPath())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInput, err)
	}
	groups := events.GroupByGap(ts, p.Config.Grouping.MaxGap)
	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: no events to cut", ErrInput)
	}
	return groups, nil
}

func (p *Project) begin(ctx context.Context) error {
	if err := p.Config.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInput, err)
	}
	p.runID = uuid.NewString()
	p.Logger = p.Logger.With(zap.String("run_id", p.runID))
	p.stages = nil

	p.host = system.CollectHostStats(ctx)
	p.workers = p.Config.Workers
	if p.workers <= 0 {
		p.workers = system.DefaultWorkers(p.host)
	}
	return os.MkdirAll(p.Config.WorkDir, 0755)
}

// lock takes the work directory for this run.
func (p *Project) lock() (func(), error) {
	fl := flock.New(filepath.Join(p.Config.WorkDir, lockFile))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock work dir: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBusy, p.Config.WorkDir)
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			p.Logger.Warn("could not release work dir lock", zap.Error(err))
		}
	}, nil
}

func (p *Project) extract(ctx context.Context, reset bool) (*Extraction, error) {
	cfg := p.Config
	start := time.Now()

	src, err := source.Open(ctx, p.Codec, cfg.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInput, err)
	}
	groups, err := p.Groups()
	if err != nil {
		return nil, err
	}
	p.Logger.Info("events grouped",
		zap.Int("groups", len(groups)),
		zap.Int("events", len(events.Flatten(groups))))
	p.mark("group", start)

	extractStart := time.Now()
	extractor := clips.NewExtractor(p.Codec, src, clips.Options{
		Buffer:  cfg.Clips.Buffer,
		Dir:     p.clipsDir(),
		Prefix:  cfg.Clips.Prefix,
		Workers: p.workers,
	}, p.Logger.With(zap.String("stage", "extract")))

	if reset {
		if err := extractor.ResetDir(manifest.FileName); err != nil {
			return nil, err
		}
	} else if cfg.Resume {
		prev, err := manifest.ReadOptional(manifest.PathIn(p.clipsDir()))
		if err != nil {
			p.Logger.Warn("ignoring unreadable manifest", zap.Error(err))
		} else if prev != nil && prev.Source == cfg.SourcePath {
			extractor.Reuse(prev.ClipRanges())
		}
	}

	extracted, err := extractor.ExtractAll(ctx, groups)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInput, err)
	}
	p.mark("extract", extractStart)

	m := &manifest.Manifest{
		Version:          manifest.Version,
		RunID:            p.runID,
		CreatedAt:        time.Now().UTC(),
		Source:           cfg.SourcePath,
		MaxGap:           cfg.Grouping.MaxGap,
		Buffer:           cfg.Clips.Buffer,
		TransitionFrames: p.transitionFrames(),
		Groups:           groups,
	}
	for _, g := range groups {
		m.AddClip(extractor.Plan(g))
	}
	return &Extraction{Source: src, Groups: groups, Clips: extracted, Manifest: m}, nil
}

func (p *Project) openMusic(ctx context.Context) (*source.Music, error) {
	if p.Config.MusicPath == "" {
		return nil, fmt.Errorf("%w: no music track", ErrInput)
	}
	m, err := source.OpenMusic(ctx, p.Codec, p.Config.MusicPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInput, err)
	}
	return m, nil
}

func (p *Project) generator() transition.Generator {
	if p.Generator != nil {
		return p.Generator
	}
	switch p.Config.Transition.Engine {
	case "exec":
		return &transition.ExecGenerator{Command: p.Config.Transition.Command, Prober: p.Codec}
	case "none":
		return nil
	default:
		return &transition.XfadeGenerator{Codec: p.Codec}
	}
}

func (p *Project) transitionFrames() int {
	if p.Config.Transition.Engine == "none" {
		return 0
	}
	return p.Config.Transition.Frames
}

func (p *Project) timestampsPath() string {
	if p.Config.TimestampsPath != "" {
		return p.Config.TimestampsPath
	}
	return events.DefaultTimestampsPath(p.Config.SourcePath)
}

func (p *Project) clipsDir() string {
	if filepath.IsAbs(p.Config.Clips.Dir) {
		return p.Config.Clips.Dir
	}
	return filepath.Join(p.Config.WorkDir, p.Config.Clips.Dir)
}

func (p *Project) mark(stage string, start time.Time) {
	p.stages = append(p.stages, report.Stage{Name: stage, Duration: time.Since(start)})
}

func (p *Project) stats(start time.Time, output string) report.Stats {
	s := report.Stats{
		RunID:   p.runID,
		Encoder: p.Encoder,
		Workers: p.workers,
		Stages:  p.stages,
		Total:   time.Since(start),
		Host:    p.host,
	}
	if fi, err := os.Stat(output); err == nil {
		s.OutputSize = fi.Size()
	}
	return s
}
