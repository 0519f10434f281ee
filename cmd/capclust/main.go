// Command capclust runs a multi-restart capacitated clustering over a CSV
// point file with a YAML run configuration.
//
// Usage:
//
//	capclust -config run.yaml -points points.csv [-format table|json]
//	         [-metrics-file capclust.prom] [-log-level info]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/katalvlaran/capclust/cluster"
	"github.com/katalvlaran/capclust/cluster/promstats"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, flag.ErrHelp):
		return exitUsage
	case errors.Is(err, errUsage):
		fmt.Fprintln(os.Stderr, "capclust:", err)
		return exitUsage
	default:
		fmt.Fprintln(os.Stderr, "capclust:", err)
		return exitFailure
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("capclust", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configPath  = fs.String("config", "", "YAML run configuration (required)")
		pointsPath  = fs.String("points", "", "CSV file with x,y,weight[,capacity_weight] rows (required)")
		format      = fs.String("format", "table", "result format: table or json")
		metricsFile = fs.String("metrics-file", "", "write Prometheus metrics in text format to this file")
		logLevel    = fs.String("log-level", "info", "log level: debug, info, warn, error")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *configPath == "" || *pointsPath == "" {
		fs.Usage()
		return fmt.Errorf("%w: -config and -points are required", errUsage)
	}
	if *format != "table" && *format != "json" {
		return fmt.Errorf("%w: unknown format %q", errUsage, *format)
	}

	logger, err := newLogger(*logLevel, stderr)
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	defer func() { _ = logger.Sync() }()

	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))

	rc, err := loadConfigFile(*configPath)
	if err != nil {
		return err
	}
	ps, err := readPointsFile(*pointsPath)
	if err != nil {
		return err
	}
	opts, err := rc.options()
	if err != nil {
		return err
	}

	seed := time.Now().UnixNano()
	if rc.Seed != nil {
		seed = *rc.Seed
	}
	logger.Info("starting run",
		zap.String("points_file", *pointsPath),
		zap.Int("points", len(ps.coords)),
		zap.Int("k", rc.K),
		zap.Int64("seed", seed),
	)

	reg := prometheus.NewRegistry()
	stats, err := promstats.New(reg, "capclust")
	if err != nil {
		return err
	}
	opts = append(opts,
		cluster.WithSeed(seed),
		cluster.WithLogger(logger),
		cluster.WithMetrics(stats),
		cluster.WithOutput(stderr),
	)
	if ps.capacity != nil {
		opts = append(opts, cluster.WithCapacityWeights(ps.capacity))
	}

	res, runErr := cluster.Run(ctx, ps.coords, ps.weights, rc.K, opts...)
	if *metricsFile != "" {
		if err = prometheus.WriteToTextfile(*metricsFile, reg); err != nil {
			logger.Error("writing metrics file", zap.String("path", *metricsFile), zap.Error(err))
		}
	}
	if runErr != nil {
		return runErr
	}

	if *format == "json" {
		return writeJSON(stdout, runID, seed, res)
	}

	return writeTable(stdout, runID, seed, res)
}

// newLogger builds a console logger on w at the given level.
func newLogger(level string, w io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), lvl)

	return zap.New(core), nil
}
