package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/lossguard/lossguard/internal/analyzer"
	"github.com/lossguard/lossguard/internal/config"
	"github.com/lossguard/lossguard/internal/logging"
	"github.com/lossguard/lossguard/internal/normalize"
	"github.com/lossguard/lossguard/internal/protect"
	"github.com/lossguard/lossguard/internal/render"
	"github.com/lossguard/lossguard/internal/size"
)

// engine bundles everything a subcommand needs to evaluate shell commands.
type engine struct {
	cfg      config.Config
	analyzer *analyzer.Analyzer
	registry *protect.Registry
	styles   *render.Styles
	log      *log.Logger
}

// newEngine builds the evaluation stack from the merged configuration and
// the guard file. An empty guardPath selects the default location.
func newEngine(guardPath string) (*engine, error) {
	overrides := map[string]any{}
	if logLevel != "" {
		overrides["log_level"] = logLevel
	}
	if noColor {
		overrides["no_color"] = true
	}

	cfg, err := config.Load(config.LoadOptions{ConfigFile: configFile, FlagOverrides: overrides})
	if err != nil {
		return nil, err
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)
	resolver := normalize.DefaultResolver()

	if guardPath == "" {
		guardPath, err = config.GuardFilePath()
		if err != nil {
			return nil, err
		}
	}
	guard, err := protect.LoadGuardFile(guardPath)
	if err != nil {
		return nil, fmt.Errorf("load guard file: %w", err)
	}

	opts := guard.Merge(protect.Options{
		HomeSubdirs: cfg.HomeSubdirs,
		ExtraPaths:  cfg.ProtectedPaths,
	})
	registry := protect.New(resolver, opts)

	styles := render.DefaultStyles()
	if cfg.NoColor {
		styles = render.PlainStyles()
	}

	return &engine{
		cfg:      cfg,
		registry: registry,
		styles:   styles,
		log:      logger,
		analyzer: analyzer.New(analyzer.Options{
			Resolver:      resolver,
			Registry:      registry,
			Oracle:        size.NewDiskUsage(cfg.SizeProbeTimeout),
			SizeThreshold: cfg.SizeThresholdBytes,
			Logger:        logger,
		}),
	}, nil
}
