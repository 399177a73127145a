package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/studymetrics/lumen/internal/output"
	"github.com/studymetrics/lumen/internal/progress"
	"github.com/studymetrics/lumen/pkg/analyzer/batch"
	"github.com/studymetrics/lumen/pkg/analyzer/heatmap"
	"github.com/studymetrics/lumen/pkg/analyzer/predict"
	"github.com/studymetrics/lumen/pkg/analyzer/trend"
	"github.com/studymetrics/lumen/pkg/analyzer/weakness"
	"github.com/studymetrics/lumen/pkg/analyzer/weekly"
	"github.com/studymetrics/lumen/pkg/config"
	"github.com/studymetrics/lumen/pkg/models"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

func main() {
	app := &cli.App{
		Name:    "lumen",
		Usage:   "Study analytics CLI",
		Version: version,
		Description: `Lumen turns per-event study records into weekly aggregates, score
trends, proficiency heatmaps, ranked weaknesses, and score forecasts.

Records are read as a JSON array from files or stdin.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"LUMEN_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, markdown, toon",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose output",
			},
		},
		Commands: []*cli.Command{
			weeklyCmd(),
			trendsCmd(),
			heatmapCmd(),
			weaknessCmd(),
			predictCmd(),
			batchCmd(),
			serveCmd(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

// loadConfig returns the file named by --config, or the nearest discovered
// config file, or defaults.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	return config.LoadOrDefault(), nil
}

// newFormatter builds the output formatter from flags and config. The
// --format flag wins over the config file.
func newFormatter(c *cli.Context, cfg *config.Config) (*output.Formatter, error) {
	format := c.String("format")
	if format == "" {
		format = cfg.Output.Format
	}
	return output.NewFormatter(output.ParseFormat(format), c.String("output"), cfg.Output.Color)
}

// readRecords decodes study records from the positional file args, or from
// stdin when no args are given.
func readRecords(c *cli.Context) ([]models.StudyRecord, error) {
	if c.Args().Len() == 0 {
		return decodeRecords(os.Stdin, "stdin")
	}

	var records []models.StudyRecord
	for _, path := range c.Args().Slice() {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		part, err := decodeRecords(f, path)
		f.Close()
		if err != nil {
			return nil, err
		}
		records = append(records, part...)
	}
	return records, nil
}

func decodeRecords(r io.Reader, name string) ([]models.StudyRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	var records []models.StudyRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return records, nil
}

func weeklyCmd() *cli.Command {
	return &cli.Command{
		Name:      "weekly",
		Aliases:   []string{"wk"},
		Usage:     "Aggregate study activity into ISO weeks",
		ArgsUsage: "[file...]",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			records, err := readRecords(c)
			if err != nil {
				return err
			}

			buckets := weekly.New().Aggregate(records)

			formatter, err := newFormatter(c, cfg)
			if err != nil {
				return err
			}
			defer formatter.Close()

			if len(buckets) == 0 {
				formatter.Warning("No dated and scored records found")
				return nil
			}
			return formatter.Output(output.WeeklyReport(buckets))
		},
	}
}

func trendsCmd() *cli.Command {
	return &cli.Command{
		Name:      "trends",
		Aliases:   []string{"tr"},
		Usage:     "Fit per-subject score trend lines",
		ArgsUsage: "[file...]",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			records, err := readRecords(c)
			if err != nil {
				return err
			}

			analysis := trend.New(
				trend.WithStableBand(cfg.Trend.StableBand),
				trend.WithFastThreshold(cfg.Trend.FastThreshold),
			).Analyze(records)

			formatter, err := newFormatter(c, cfg)
			if err != nil {
				return err
			}
			defer formatter.Close()

			return formatter.Output(output.TrendReport(*analysis, formatter.Colored()))
		},
	}
}

func heatmapCmd() *cli.Command {
	return &cli.Command{
		Name:      "heatmap",
		Aliases:   []string{"hm"},
		Usage:     "Build the subject x unit proficiency matrix",
		ArgsUsage: "[file...]",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			records, err := readRecords(c)
			if err != nil {
				return err
			}

			h := heatmap.New(heatmap.WithTrendDelta(cfg.Heatmap.TrendDelta)).Build(records)

			formatter, err := newFormatter(c, cfg)
			if err != nil {
				return err
			}
			defer formatter.Close()

			return formatter.Output(output.HeatmapReport(*h, formatter.Colored()))
		},
	}
}

func weaknessCmd() *cli.Command {
	return &cli.Command{
		Name:      "weakness",
		Aliases:   []string{"wx"},
		Usage:     "Rank (subject, unit) pairs by weakness score",
		ArgsUsage: "[file...]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "top",
				Value: 0,
				Usage: "Limit output to the N weakest pairs (0 = all)",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			records, err := readRecords(c)
			if err != nil {
				return err
			}

			ranked := weakness.New(
				weakness.WithTopPatterns(cfg.Weakness.TopPatterns),
				weakness.WithActivityDelta(cfg.Weakness.ActivityDelta),
			).Analyze(records)

			if top := c.Int("top"); top > 0 && top < len(ranked) {
				ranked = ranked[:top]
			}

			formatter, err := newFormatter(c, cfg)
			if err != nil {
				return err
			}
			defer formatter.Close()

			if len(ranked) == 0 {
				formatter.Success("No weaknesses found")
				return nil
			}
			return formatter.Output(output.WeaknessReport(ranked))
		},
	}
}

func predictCmd() *cli.Command {
	return &cli.Command{
		Name:      "predict",
		Aliases:   []string{"pr"},
		Usage:     "Forecast scores from daily averages",
		ArgsUsage: "[file...]",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			records, err := readRecords(c)
			if err != nil {
				return err
			}

			result := predict.New(
				predict.WithMinDays(cfg.Predict.MinDays),
				predict.WithWindowDays(cfg.Predict.WindowDays),
			).Predict(records)

			formatter, err := newFormatter(c, cfg)
			if err != nil {
				return err
			}
			defer formatter.Close()

			return formatter.Output(output.PredictionReport(*result))
		},
	}
}

func batchCmd() *cli.Command {
	return &cli.Command{
		Name:      "batch",
		Aliases:   []string{"bp"},
		Usage:     "Summarize very large record sets in chunks",
		ArgsUsage: "[file...]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "chunk-size",
				Usage: "Records per chunk (overrides config)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Worker pool size (overrides config)",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			records, err := readRecords(c)
			if err != nil {
				return err
			}

			chunkSize := cfg.Batch.ChunkSize
			if c.IsSet("chunk-size") {
				chunkSize = c.Int("chunk-size")
			}
			workers := cfg.Batch.MaxWorkers
			if c.IsSet("workers") {
				workers = c.Int("workers")
			}

			processor := batch.New(
				batch.WithChunkSize(chunkSize),
				batch.WithMaxWorkers(workers),
			)

			tracker := progress.NewTracker("Processing records...", len(records))
			result, err := processor.ProcessWithProgress(c.Context, records, tracker.Add)
			if err != nil {
				tracker.FinishError(err)
				return err
			}
			tracker.FinishSuccess()

			formatter, err := newFormatter(c, cfg)
			if err != nil {
				return err
			}
			defer formatter.Close()

			return formatter.Output(output.BatchReport(*result))
		},
	}
}
