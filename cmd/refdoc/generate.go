package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/refdoc-tools/refdoc/internal/config"
	"github.com/refdoc-tools/refdoc/internal/describe"
	"github.com/refdoc-tools/refdoc/internal/profile"
	"github.com/refdoc-tools/refdoc/internal/render"
	"github.com/refdoc-tools/refdoc/internal/resolve"
	"github.com/refdoc-tools/refdoc/internal/schema"
)

var (
	generateConfig  string
	generateOut     string
	generateProfile string
	generateMode    string
	generateVerbose bool
)

func init() {
	generateCmd.Flags().StringVarP(&generateConfig, "config", "c", "", "Path to config file (default refdoc.yml)")
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "", "Output file (overrides config)")
	generateCmd.Flags().StringVar(&generateProfile, "profile", "", "Profile file (overrides config)")
	generateCmd.Flags().StringVar(&generateMode, "profile-mode", "", "Profile mode: off, normal, terse (overrides config)")
	generateCmd.Flags().BoolVar(&generateVerbose, "verbose", false, "Show resolution warnings")
}

var generateCmd = &cobra.Command{
	Use:   "generate [schema-dir]",
	Short: "Generate reference documentation from a schema directory",
	Long:  "Resolve every documented schema in the directory and write a markdown reference document",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		startTime := time.Now()

		infoColor := color.New(color.FgCyan)
		successColor := color.New(color.FgGreen, color.Bold)

		cfg, err := config.Load(generateConfig)
		if err != nil {
			return err
		}
		if len(args) > 0 {
			cfg.SchemaDir = args[0]
		}
		if generateOut != "" {
			cfg.Output = generateOut
		}
		if generateProfile != "" {
			cfg.Profile.Path = generateProfile
			if cfg.Profile.Mode == config.ModeOff {
				cfg.Profile.Mode = config.ModeNormal
			}
		}
		if generateMode != "" {
			cfg.Profile.Mode = generateMode
		}

		log := zap.NewNop()
		if generateVerbose {
			log, err = zap.NewDevelopment()
			if err != nil {
				return fmt.Errorf("failed to set up logging: %w", err)
			}
			defer log.Sync()
		}

		doc, count, err := run(cfg, log)
		if err != nil {
			return err
		}

		if err := os.WriteFile(cfg.Output, []byte(doc), 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}

		infoColor.Printf("Documented %d schema(s) from %s\n", count, cfg.SchemaDir)
		successColor.Printf("Wrote %s in %.2fs\n", cfg.Output, time.Since(startTime).Seconds())
		return nil
	},
}

// run wires the pipeline: index, profile, overrides, resolver,
// describer, generator, renderer.
func run(cfg *config.Config, log *zap.Logger) (string, int, error) {
	index, err := schema.LoadDir(cfg.SchemaDir)
	if err != nil {
		return "", 0, fmt.Errorf("failed to load schemas: %w", err)
	}
	count := len(index.Documented())
	if count == 0 {
		return "", 0, fmt.Errorf("no documented schemas found in %s", cfg.SchemaDir)
	}

	var prof *profile.Profile
	if cfg.Profile.Mode != config.ModeOff {
		prof, err = profile.Load(cfg.Profile.Path)
		if err != nil {
			return "", 0, fmt.Errorf("failed to load profile: %w", err)
		}
	}

	supp, err := config.LoadSupplement(cfg.Supplement)
	if err != nil {
		return "", 0, err
	}
	overrides := buildOverrides(cfg, supp)

	pool := resolve.NewCommonPool()
	resolver := resolve.NewResolver(index, pool, resolve.Options{
		CommonObjects:          cfg.CommonObjects,
		Overrides:              overrides,
		ExcludedSchemas:        cfg.Excludes.Schemas,
		ExcludedSchemasByMatch: cfg.Excludes.SchemasByMatch,
	}, log)

	describer := describe.NewDescriber(index, resolver, overrides, prof, describe.Options{
		Mode:                       describeMode(cfg.Profile.Mode),
		Normative:                  cfg.Normative,
		CollapseSimpleArrays:       cfg.CombineArrays,
		ExcludedProperties:         cfg.Excludes.Properties,
		ExcludedByMatch:            cfg.Excludes.PropertiesByMatch,
		ExcludedAnnotations:        cfg.Excludes.Annotations,
		ExcludedAnnotationsByMatch: cfg.Excludes.AnnotationsByMatch,
	}, log)

	generator := describe.NewGenerator(index, describer, prof, describe.GenerateOptions{
		OmitVersionInHeaders:   cfg.OmitVersionInHeaders,
		ExcludedProperties:     cfg.Excludes.Properties,
		ExcludedByMatch:        cfg.Excludes.PropertiesByMatch,
		ExcludedSchemas:        cfg.Excludes.Schemas,
		ExcludedSchemasByMatch: cfg.Excludes.SchemasByMatch,
		Supplement:             supplementSections(supp),
	}, log)

	renderer := render.NewMarkdown(render.Options{
		ShowProfileRequirements: cfg.Profile.Mode != config.ModeOff,
	})

	doc, err := generator.Generate(renderer)
	if err != nil {
		return "", 0, err
	}
	return doc, count, nil
}

func buildOverrides(cfg *config.Config, supp *config.Supplement) *schema.Overrides {
	overrides := &schema.Overrides{
		PropertyDescriptions:     supp.DescriptionOverrides,
		PropertyFullDescriptions: supp.FullDescriptionOverrides,
		UnitsTranslation:         cfg.UnitsTranslation,
	}
	if len(supp.SchemaOverrides) > 0 {
		overrides.PerSchema = make(map[string]schema.SchemaOverrides, len(supp.SchemaOverrides))
		for name, set := range supp.SchemaOverrides {
			overrides.PerSchema[name] = schema.SchemaOverrides{
				DescriptionOverrides:     set.DescriptionOverrides,
				FullDescriptionOverrides: set.FullDescriptionOverrides,
			}
		}
	}
	return overrides
}

func supplementSections(supp *config.Supplement) map[string]describe.SchemaSupplement {
	if len(supp.Schemas) == 0 {
		return nil
	}
	out := make(map[string]describe.SchemaSupplement, len(supp.Schemas))
	for name, text := range supp.Schemas {
		out[name] = describe.SchemaSupplement{
			Description: text.Description,
			Intro:       text.Intro,
			JSONPayload: text.JSONPayload,
		}
	}
	return out
}

func describeMode(mode string) describe.Mode {
	switch mode {
	case config.ModeTerse:
		return describe.ModeTerse
	case config.ModeNormal:
		return describe.ModeNormal
	default:
		return describe.ModeOff
	}
}
