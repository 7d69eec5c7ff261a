package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dungenlab/dungen/pkg/cache"
	"github.com/dungenlab/dungen/pkg/dungeon"
	"github.com/dungenlab/dungen/pkg/recipe"
)

// extensions per artifact format.
var formatExt = map[string]string{
	recipe.FormatASCII: "txt",
	recipe.FormatJSON:  "json",
	recipe.FormatDOT:   "dot",
	recipe.FormatSVG:   "svg",
	recipe.FormatPNG:   "png",
}

// newGenerateCmd creates the generate command.
func newGenerateCmd() *cobra.Command {
	var (
		seed     uint64
		formats  []string
		flat     bool
		detailed bool
		outDir   string
		refresh  bool
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "generate <recipe.toml>",
		Short: "Generate a dungeon from a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			rec, err := recipe.LoadFile(args[0])
			if err != nil {
				return err
			}

			opts := recipe.Options{
				Recipe:   rec,
				Formats:  formats,
				Flat:     flat,
				Detailed: detailed,
				Refresh:  refresh,
				Logger:   logger,
			}
			if cmd.Flags().Changed("seed") {
				opts.Seed = &seed
			}

			runner, err := newRunner(noCache, logger)
			if err != nil {
				return err
			}
			defer runner.Close()

			prog := newProgress(logger)
			res, err := runner.Execute(cmd.Context(), opts)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Generated %d maps", res.Stats.MapCount))

			var portals int
			res.Registry.Read(res.Root, func(m *dungeon.Map) { portals = m.PortalCount() })

			name := rec.Name
			if name == "" {
				name = "dungeon"
			}
			printSuccess("%s (seed %d)", name, res.Stats.Seed)
			printStats(res.Stats.MapCount, portals, res.CacheInfo.GenerateHit)

			if outDir == "" {
				// Printable formats go to stdout; binary ones need --out.
				for _, f := range opts.Formats {
					switch f {
					case recipe.FormatASCII, recipe.FormatDOT, recipe.FormatJSON:
						fmt.Print(string(res.Artifacts[f]))
					default:
						printWarning("format %s needs --out to write a file", f)
					}
				}
				return nil
			}

			if err := os.MkdirAll(outDir, 0755); err != nil {
				return fmt.Errorf("create %s: %w", outDir, err)
			}
			for _, f := range opts.Formats {
				path := filepath.Join(outDir, fmt.Sprintf("%s-%d.%s", name, res.Stats.Seed, formatExt[f]))
				if err := os.WriteFile(path, res.Artifacts[f], 0644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				printFile(path)
			}
			return nil
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", 0, "override the recipe seed")
	cmd.Flags().StringSliceVarP(&formats, "format", "f", []string{recipe.FormatASCII}, "artifact formats (ascii, json, dot, svg, png)")
	cmd.Flags().BoolVar(&flat, "flat", false, "render the composite dungeon through sub-map embeds")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include coordinates and sizes in graph labels")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "directory for rendered artifacts")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache and regenerate")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

// newRunner builds a recipe runner backed by the user cache directory,
// or by no cache at all when disabled.
func newRunner(noCache bool, logger *log.Logger) (*recipe.Runner, error) {
	if noCache {
		return recipe.NewRunner(cache.NewNullCache(), nil, logger), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return nil, fmt.Errorf("get cache dir: %w", err)
	}
	c, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return recipe.NewRunner(c, nil, logger), nil
}

// cacheDir returns the artifact cache directory.
func cacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "dungen"), nil
}
