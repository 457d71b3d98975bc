package commands

import (
	"fmt"
	"time"

	"github.com/farm-framework/forge/internal/core/domain"
	"github.com/spf13/cobra"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [targets...]",
		Short: "Build the requested targets (frontend, backend, ai-models, container, all)",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{string(domain.TargetAll)}
			}

			opts, err := buildOptionsFromFlags(cmd)
			if err != nil {
				return err
			}

			result := c.app.RunBuild(cmd.Context(), args, opts)
			printResult(cmd, result)
			if !result.Success {
				return domain.ErrBuildFailed
			}
			return nil
		},
	}

	cmd.Flags().StringP("env", "e", string(domain.EnvDevelopment), "Build environment (development, staging, production)")
	cmd.Flags().BoolP("force", "f", false, "Force rebuild, bypassing cache")
	cmd.Flags().StringP("output-dir", "o", "", "Output directory (default \"build\")")
	cmd.Flags().String("max-cache-size", "", "Cache size limit, e.g. 512MB or 2GB (default 1GB)")
	cmd.Flags().Duration("timeout", 0, "Abort the build after this duration (0 disables the limit)")

	return cmd
}

func buildOptionsFromFlags(cmd *cobra.Command) (domain.BuildOptions, error) {
	env, _ := cmd.Flags().GetString("env")
	force, _ := cmd.Flags().GetBool("force")
	outputDir, _ := cmd.Flags().GetString("output-dir")
	cacheDir, _ := cmd.Flags().GetString("cache-dir")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	maxCache := int64(0)
	if raw, _ := cmd.Flags().GetString("max-cache-size"); raw != "" {
		parsed, err := parseByteSize(raw)
		if err != nil {
			return domain.BuildOptions{}, err
		}
		maxCache = parsed
	}

	switch domain.Environment(env) {
	case domain.EnvDevelopment, domain.EnvStaging, domain.EnvProduction:
	default:
		return domain.BuildOptions{}, fmt.Errorf("unknown environment %q", env)
	}

	return domain.BuildOptions{
		Environment:       domain.Environment(env),
		ForceRebuild:      force,
		OutputDir:         outputDir,
		CacheDir:          cacheDir,
		MaxCacheSizeBytes: maxCache,
		Timeout:           timeout,
	}, nil
}

func printResult(cmd *cobra.Command, result *domain.BuildResult) {
	if result.Success {
		cmd.Printf("build %s succeeded in %s (%d tasks, %d cache hits, %d artifacts)\n",
			result.BuildID,
			result.Duration.Round(time.Millisecond),
			result.Metrics.TasksExecuted,
			result.Metrics.CacheHits,
			len(result.Artifacts),
		)
		for _, w := range result.Warnings {
			cmd.Printf("warning: %s\n", w)
		}
		return
	}
	cmd.PrintErrf("build failed: %s\n", result.Error)
}

// parseByteSize parses a human readable size like "512MB" or "2GB".
func parseByteSize(raw string) (int64, error) {
	units := []struct {
		suffix     string
		multiplier int64
	}{
		{"GB", 1 << 30},
		{"MB", 1 << 20},
		{"KB", 1 << 10},
		{"B", 1},
	}

	for _, unit := range units {
		var value float64
		if n, err := fmt.Sscanf(raw, "%f"+unit.suffix, &value); err == nil && n == 1 {
			if value <= 0 {
				return 0, fmt.Errorf("invalid cache size %q", raw)
			}
			return int64(value * float64(unit.multiplier)), nil
		}
	}
	return 0, fmt.Errorf("invalid cache size %q (expected a value like 512MB)", raw)
}
