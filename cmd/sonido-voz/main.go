package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/RyanBlaney/sonido-voz/analysis"
	"github.com/RyanBlaney/sonido-voz/calibration"
	"github.com/RyanBlaney/sonido-voz/config"
	"github.com/RyanBlaney/sonido-voz/internal/cli"
	"github.com/RyanBlaney/sonido-voz/logging"
	"github.com/RyanBlaney/sonido-voz/transcode"
)

var (
	version = "0.1.0"
)

// CLI defines the command-line interface
type CLI struct {
	Config     string `short:"c" type:"path" help:"Path to YAML config file (optional)"`
	LogLevel   string `name:"log-level" help:"Override the configured log level (debug, info, warn, error)"`
	SampleRate int    `name:"sample-rate" help:"Override the configured input sample rate in Hz"`

	Analyze   AnalyzeCmd   `cmd:"" help:"Analyse a WAV file frame by frame"`
	Calibrate CalibrateCmd `cmd:"" help:"Estimate microphone quality from a WAV recording of room noise"`
	Version   VersionCmd   `cmd:"" help:"Show version information"`
}

// runEnv is passed to every command's Run method
type runEnv struct {
	ctx    context.Context
	cfg    *config.Config
	stdout io.Writer
}

func main() {
	cliArgs := &CLI{}
	kctx := kong.Parse(cliArgs,
		kong.Name("sonido-voz"),
		kong.Description("Voice pitch, formant and quality analysis"),
		kong.UsageOnError(),
	)

	cfg, err := loadConfig(cliArgs.Config, cliArgs.LogLevel, cliArgs.SampleRate)
	if err != nil {
		cli.PrintError(os.Stderr, err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := &runEnv{ctx: ctx, cfg: cfg, stdout: os.Stdout}
	if err := kctx.Run(env); err != nil {
		cli.PrintError(os.Stderr, err.Error())
		stop()
		os.Exit(1)
	}
}

func loadConfig(path, levelOverride string, sampleRate int) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if levelOverride != "" {
		cfg.Log.Level = levelOverride
	}
	if sampleRate != 0 {
		cfg.SampleRate = sampleRate
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	logger := logging.NewDefaultLogger()
	logger.SetLevel(level)
	if cfg.Log.Colors != nil {
		logger.SetColors(*cfg.Log.Colors)
	}
	logging.SetGlobalLogger(logger)

	return cfg, nil
}

// checkSampleRate rejects recordings whose rate differs from the one the
// analyzers are configured for
func checkSampleRate(data *transcode.AudioData, cfg *config.Config) error {
	if data.SampleRate != cfg.SampleRate {
		return fmt.Errorf("%s is %d Hz but sample_rate is %d Hz (use --sample-rate %d): %w",
			data.Source, data.SampleRate, cfg.SampleRate, data.SampleRate, analysis.ErrSampleRateMismatch)
	}
	return nil
}

// AnalyzeCmd analyses a file frame by frame
type AnalyzeCmd struct {
	File      string `arg:"" type:"existingfile" help:"WAV file to analyse"`
	FrameSize int    `name:"frame-size" default:"2048" help:"Samples per analysis frame"`
	Hop       int    `default:"1024" help:"Samples between frame starts"`
	RemoveDC  bool   `name:"remove-dc" help:"High-pass the recording to strip a DC offset before analysis"`
	JSON      bool   `name:"json" help:"Print one JSON object per frame instead of a table"`
}

// frameRecord is the JSON line written per frame
type frameRecord struct {
	Time float64 `json:"time"`
	analysis.Metrics
}

func (c *AnalyzeCmd) Run(env *runEnv) error {
	if c.FrameSize <= 0 || c.Hop <= 0 {
		return fmt.Errorf("frame-size and hop must be positive")
	}

	logger := logging.WithContext(logging.ContextWithFields(env.ctx, logging.Fields{"file": c.File}))

	data, err := transcode.NewDecoder(&transcode.DecoderConfig{RemoveDC: c.RemoveDC}).DecodeFile(c.File)
	if err != nil {
		return err
	}
	if err := checkSampleRate(data, env.cfg); err != nil {
		return err
	}

	fa, err := analysis.NewFrameAnalyzer(env.cfg.SampleRate, env.cfg.AnalyzerOptions())
	if err != nil {
		return err
	}

	frames := analysis.SplitFrames(data.PCM, data.SampleRate, c.FrameSize, c.Hop)
	if len(frames) == 0 {
		return fmt.Errorf("%s is shorter than half a frame (%d samples)", c.File, c.FrameSize)
	}

	start := time.Now()
	results, err := fa.AnalyzeFrames(env.ctx, frames)
	if err != nil {
		return fmt.Errorf("analysing %s: %w", c.File, err)
	}
	logger.Info("analysis complete", logging.Fields{
		"frames":  len(frames),
		"elapsed": time.Since(start).Round(time.Millisecond).String(),
	})

	rows := make([]cli.FrameRow, len(results))
	for i, m := range results {
		rows[i] = cli.FrameRow{
			Time:    float64(i*c.Hop) / float64(data.SampleRate),
			Metrics: m,
		}
	}

	if c.JSON {
		enc := json.NewEncoder(env.stdout)
		for _, r := range rows {
			if err := enc.Encode(frameRecord{Time: r.Time, Metrics: r.Metrics}); err != nil {
				return err
			}
		}
		return nil
	}

	cli.RenderFrameTable(env.stdout, rows)
	fmt.Fprintln(env.stdout)
	cli.RenderSummary(env.stdout, rows)
	return nil
}

// CalibrateCmd replays a recording through a calibration session
type CalibrateCmd struct {
	File     string        `arg:"" type:"existingfile" help:"WAV recording of the room and microphone"`
	Duration time.Duration `help:"Calibration window (defaults to the configured duration)"`
	Quick    bool          `help:"Use the 1 s quick-test window"`
	Tick     time.Duration `default:"20ms" help:"Interval between capture ticks"`
	Realtime bool          `help:"Pace ticks with the wall clock instead of replaying as fast as possible"`
	RemoveDC bool          `name:"remove-dc" help:"High-pass the recording to strip a DC offset first"`
	JSON     bool          `name:"json" help:"Print the report as JSON"`
}

func (c *CalibrateCmd) Run(env *runEnv) error {
	if c.Tick <= 0 {
		return fmt.Errorf("tick must be positive")
	}

	data, err := transcode.NewDecoder(&transcode.DecoderConfig{RemoveDC: c.RemoveDC}).DecodeFile(c.File)
	if err != nil {
		return err
	}
	if err := checkSampleRate(data, env.cfg); err != nil {
		return err
	}

	params := env.cfg.Calibration
	switch {
	case c.Duration > 0:
		params.Duration = c.Duration
	case c.Quick:
		params.Duration = calibration.QuickDuration
	}

	source := newFileSource(data.PCM, data.SampleRate, c.Tick)
	session := calibration.NewSession(source, params)

	ctx, cancel := context.WithCancel(env.ctx)
	defer cancel()

	ticks := make(chan time.Time)
	go c.feedTicks(ctx, source, ticks)

	report, err := calibration.Run(ctx, session, ticks)
	if err != nil {
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(env.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	cli.RenderCalibration(env.stdout, report)
	return nil
}

// feedTicks sends one tick per full block in the file, then closes ticks so
// the session finishes with what it has
func (c *CalibrateCmd) feedTicks(ctx context.Context, source *fileSource, ticks chan<- time.Time) {
	defer close(ticks)

	var wall *time.Ticker
	if c.Realtime {
		wall = time.NewTicker(c.Tick)
		defer wall.Stop()
	}

	now := time.Now()
	for range source.Blocks() {
		if wall != nil {
			select {
			case <-ctx.Done():
				return
			case now = <-wall.C:
			}
		}

		select {
		case <-ctx.Done():
			return
		case ticks <- now:
		}

		if wall == nil {
			now = now.Add(c.Tick)
		}
	}
}

// VersionCmd prints the version
type VersionCmd struct{}

func (c *VersionCmd) Run(env *runEnv) error {
	cli.PrintVersion(env.stdout, version)
	return nil
}
