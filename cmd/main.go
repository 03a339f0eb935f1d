package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tutorialcast/internal/cli/scheme/colours"
	"tutorialcast/internal/config"
	"tutorialcast/internal/tutorial/feature"
	"tutorialcast/internal/tutorial/pipeline"
	"tutorialcast/internal/tutorial/synth"
)

func main() {
	config.SetDefaults()

	ctx, cancel := context.WithCancel(context.Background())

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		colours.Warning.Println("\ninterrupted, shutting down")
		cancel()
	}()

	rootCmd := &cobra.Command{
		Use:   "tutorialcast",
		Short: "🎬 Narrated tutorial videos from feature files",
		Long: `tutorialcast turns Gherkin-style feature files into narrated
screen-recording videos, one per feature per spoken language.`,
		SilenceUsage: true,
	}

	var featureList, languageList string

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "🎥 Generate tutorial videos",
		Long:  "Run the full pipeline: parse, synthesize, record, mux and document.",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load()
			if err != nil {
				return err
			}
			if languageList != "" {
				settings.Languages = splitList(languageList)
			}

			p, err := pipeline.New(settings)
			if err != nil {
				return err
			}

			summary, err := p.Run(ctx, splitList(featureList))
			summary.Print()
			if err != nil {
				// Only fatal conditions reach here; per-unit failures are in
				// the summary and still exit 0, the batch itself succeeded.
				return err
			}
			return nil
		},
	}
	generateCmd.Flags().StringVar(&featureList, "features", "", "Comma-separated feature base names (default: all)")
	generateCmd.Flags().StringVar(&languageList, "languages", "", "Comma-separated language codes")
	generateCmd.Flags().String("base-url", "", "Base URL the recorder visits")
	generateCmd.Flags().String("resolution", "", "Recording resolution as WIDTHxHEIGHT")
	generateCmd.Flags().BoolP("verbose", "v", false, "Verbose logging")
	_ = viper.BindPFlag("base_url", generateCmd.Flags().Lookup("base-url"))
	_ = viper.BindPFlag("resolution", generateCmd.Flags().Lookup("resolution"))
	_ = viper.BindPFlag("verbose", generateCmd.Flags().Lookup("verbose"))

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "📋 List discovered features",
		Long:  "Show every feature file and whether it is eligible for generation.",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load()
			if err != nil {
				return err
			}
			features, err := feature.Discover(settings.Features, nil)
			if err != nil {
				return err
			}
			for _, f := range features {
				switch {
				case len(f.Scenarios) == 0:
					colours.Warning.Printf("  %-24s (no scenarios)\n", f.ID)
				case !f.HasNarration():
					colours.Warning.Printf("  %-24s (no narration)\n", f.ID)
				default:
					colours.Success.Printf("  %-24s %s\n", f.ID, f.Title)
				}
			}
			return nil
		},
	}

	voicesCmd := &cobra.Command{
		Use:   "voices",
		Short: "🗣 List available synthesis voices",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load()
			if err != nil {
				return err
			}
			engine, err := synth.NewEngine(synth.Config{
				Type:      settings.Engine,
				Rate:      settings.Rate,
				Pitch:     settings.Pitch,
				Amplitude: settings.Amplitude,
			})
			if err != nil {
				return err
			}
			voices, err := engine.Voices()
			if err != nil {
				return err
			}
			colours.Title.Printf("%s voices:\n", engine.Name())
			for _, v := range voices {
				fmt.Println("  " + v)
			}
			return nil
		},
	}

	rootCmd.AddCommand(generateCmd, listCmd, voicesCmd)

	cobra.OnInitialize(func() {
		if viper.GetBool("verbose") {
			logrus.SetLevel(logrus.DebugLevel)
		}
	})

	if err := rootCmd.Execute(); err != nil {
		colours.Error.Printf("❌ Error: %v\n", err)
		os.Exit(1)
	}
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Configuration management with Viper
func init() {
	viper.SetConfigName("tutorialcast")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.tutorialcast")
	viper.AddConfigPath(".")
	viper.ReadInConfig()
}
