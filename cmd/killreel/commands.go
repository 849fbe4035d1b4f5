package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ivlev/killreel/internal/analyzer"
	"github.com/ivlev/killreel/internal/config"
	"github.com/ivlev/killreel/internal/engine"
	"github.com/ivlev/killreel/internal/events"
	"github.com/ivlev/killreel/internal/manifest"
	"github.com/ivlev/killreel/internal/report"
	"github.com/ivlev/killreel/internal/system"
	"github.com/ivlev/killreel/internal/video"
)

func newDetectCommand(ctx *commandContext) *cobra.Command {
	var flags sourceFlags
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Detect events in the source video and save their timestamps",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			flags.apply(cfg)
			if err := engine.ResolveInputs(cfg); err != nil {
				return err
			}
			out := cfg.TimestampsPath
			if out == "" {
				out = events.DefaultTimestampsPath(cfg.SourcePath)
			}

			detector, err := analyzer.NewDetector(cfg.Detector, out)
			if err != nil {
				return err
			}
			ts, err := detector.Detect(cmd.Context(), cfg.SourcePath)
			if err != nil {
				return err
			}
			if cfg.Detector.Variant == "exec" {
				if err := events.WriteTimestamps(out, ts); err != nil {
					return fmt.Errorf("save timestamps: %w", err)
				}
			}
			logger.Info("events detected", zap.Int("count", len(ts)), zap.String("timestamps", out))
			fmt.Fprintln(cmd.OutOrStdout(), report.Groups(events.GroupByGap(ts, cfg.Grouping.MaxGap)))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newGroupCommand(ctx *commandContext) *cobra.Command {
	var flags sourceFlags
	var maxGap float64
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Print how the saved timestamps group into events",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			flags.apply(cfg)
			if cmd.Flags().Changed("max-gap") {
				cfg.Grouping.MaxGap = maxGap
			}
			if err := engine.ResolveInputs(cfg); err != nil {
				return err
			}
			groups, err := engine.NewProject(cfg, nil, nil).Groups()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.Groups(groups))
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().Float64Var(&maxGap, "max-gap", 0, "Largest gap in seconds between events of one group")
	return cmd
}

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var flags sourceFlags
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Cut one clip per event group into the clips directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			flags.apply(cfg)
			if err := engine.ResolveInputs(cfg); err != nil {
				return err
			}
			codec, encoder := newCodec(cmd, cfg)
			project := engine.NewProject(cfg, codec, logger)
			project.Encoder = encoder

			ex, err := project.Extract(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.Groups(ex.Groups))
			fmt.Fprintln(cmd.OutOrStdout(), report.Segments(ex.Clips, nil))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

type buildFlags struct {
	sourceFlags
	music    string
	output   string
	preset   string
	encoder  string
	quality  int
	workers  int
	resume   bool
	keepWork bool
	stats    bool
	altIntro bool
}

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var flags buildFlags
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the full montage: extract, stitch, mix and assemble",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, cfg); err != nil {
				return err
			}

			for _, d := range []string{engine.InputVideoDir, engine.InputAudioDir, engine.OutputDir} {
				os.MkdirAll(d, 0755)
			}
			system.InitResourceLimits(logger)
			if err := engine.ResolveInputs(cfg); err != nil {
				return err
			}

			codec, encoder := newCodec(cmd, cfg)
			project := engine.NewProject(cfg, codec, logger)
			project.Encoder = encoder

			res, err := project.Run(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, report.Segments(res.Segments, res.Tracks))
			if cfg.ShowStats {
				fmt.Fprintln(out, res.Stats.Render())
			}
			fmt.Fprintf(out, "Montage written to %s\n", res.Output)
			return nil
		},
	}
	flags.register(cmd)
	f := cmd.Flags()
	f.StringVarP(&flags.music, "music", "m", "", "Music track (default: latest in input/audio)")
	f.StringVarP(&flags.output, "output", "o", "", "Output video (default: output/<source>_<timestamp>.mp4)")
	f.StringVar(&flags.preset, "preset", "", "Canvas preset: 16:9, 9:16 (Shorts/TikTok), 4:5 (Instagram)")
	f.StringVar(&flags.encoder, "encoder", "", "H.264 encoder: auto, libx264, h264_nvenc, h264_videotoolbox")
	f.IntVar(&flags.quality, "quality", 0, "Quality (0 = encoder default; x264 CRF, VideoToolbox bitrate = Q*100k)")
	f.IntVar(&flags.workers, "workers", 0, "Parallel ffmpeg jobs (0 = sized from the host)")
	f.BoolVar(&flags.resume, "resume", false, "Reuse clips recorded in the manifest of an earlier run")
	f.BoolVar(&flags.keepWork, "keep-work", false, "Keep the per-run scratch directory")
	f.BoolVar(&flags.stats, "stats", false, "Print a performance report and append it to benchmark.log")
	f.BoolVar(&flags.altIntro, "alt-intro", false, "Use the louder alternate music level under clip intros")
	return cmd
}

func (f *buildFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	f.sourceFlags.apply(cfg)
	changed := cmd.Flags().Changed
	if f.music != "" {
		cfg.MusicPath = f.music
	}
	if f.output != "" {
		cfg.OutputVideo = f.output
	}
	if f.encoder != "" {
		cfg.Video.Encoder = f.encoder
	}
	if changed("quality") {
		cfg.Video.Quality = f.quality
	}
	if changed("workers") {
		cfg.Workers = f.workers
	}
	if changed("resume") {
		cfg.Resume = f.resume
	}
	if changed("keep-work") {
		cfg.KeepWork = f.keepWork
	}
	if changed("stats") {
		cfg.ShowStats = f.stats
	}
	if changed("alt-intro") {
		cfg.Audio.AltIntro = f.altIntro
	}
	switch f.preset {
	case "":
	case "16:9":
		cfg.Video.Width, cfg.Video.Height = 1280, 720
	case "9:16":
		cfg.Video.Width, cfg.Video.Height = 720, 1280
	case "4:5":
		cfg.Video.Width, cfg.Video.Height = 1080, 1350
	default:
		return fmt.Errorf("unknown preset %q", f.preset)
	}
	return nil
}

func newCodec(cmd *cobra.Command, cfg *config.Config) (*video.FFmpegCodec, string) {
	encoder := system.ResolveEncoder(cmd.Context(), cfg.Video.Encoder)
	return video.NewFFmpegCodec(encoder, cfg.Video.Quality), encoder
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show [manifest]",
		Short: "Print the manifest of the last run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := manifest.PathIn(filepath.Join(cfg.WorkDir, cfg.Clips.Dir))
			if filepath.IsAbs(cfg.Clips.Dir) {
				path = manifest.PathIn(cfg.Clips.Dir)
			}
			if len(args) == 1 {
				path = args[0]
			}
			m, err := manifest.Read(path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s at %s\nSource: %s\n", m.RunID, m.CreatedAt.Format("2006-01-02 15:04:05"), m.Source)
			if m.Output != "" {
				fmt.Fprintf(out, "Output: %s\n", m.Output)
			}
			fmt.Fprintln(out, report.Groups(m.Groups))
			if len(m.Segments) > 0 {
				fmt.Fprintln(out, report.Segments(m.Segments, m.Tracks))
			}
			return nil
		},
	}
}

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration helpers",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "killreel.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			cfg := config.Default()
			if err := config.Write(&cfg, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	configCmd.AddCommand(initCmd)
	return configCmd
}
