package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"listingguide/internal/config"
	"listingguide/internal/model"
	"listingguide/internal/repository"
	"listingguide/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *cli) extractCmd() *cobra.Command {
	var match string
	cmd := &cobra.Command{
		Use:   "extract <text...>",
		Short: "Extract property features from a free-text description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			extractor := service.NewFeatureExtractor(service.NewScorer(match), a.logger)
			features := extractor.Extract(strings.Join(args, " "))
			return writeJSON(cmd.OutOrStdout(), features)
		},
	}
	cmd.Flags().StringVar(&match, "match", "substring", "Keyword matching: substring or word")
	return cmd
}

func (a *cli) suggestCmd() *cobra.Command {
	var (
		data      string
		text      string
		locale    string
		threshold float64
		maxFields int
	)
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest the next form fields for the current form state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current := map[string]any{}
			if data != "" {
				if err := json.Unmarshal([]byte(data), &current); err != nil {
					return fmt.Errorf("invalid --data: %w", err)
				}
			}
			if locale != config.LocaleEnglish && locale != config.LocaleRomanian {
				return fmt.Errorf("unknown --locale %q (want en or ro)", locale)
			}

			orchestrator := service.NewOrchestrator(
				service.NewIntentParser(service.NewFeatureExtractor(nil, a.logger), nil, a.logger),
				nil,
				service.OrchestratorOptions{ConfidenceThreshold: threshold, MaxSuggestions: maxFields, Locale: locale},
				a.logger,
			)

			req := &model.AnalyzeStepRequest{CurrentData: current, InputType: model.InputFieldUpdate}
			if text != "" {
				req.InputType = model.InputText
				req.NewInput = &text
			}
			ctx, cancel := a.context(cmd)
			defer cancel()
			resp, err := orchestrator.AnalyzeStep(ctx, req)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "Current form state as a JSON object")
	cmd.Flags().StringVar(&text, "text", "", "Free-text description to interpret first")
	cmd.Flags().StringVar(&locale, "locale", config.LocaleEnglish, "Guidance language (en or ro)")
	cmd.Flags().Float64Var(&threshold, "threshold", service.DefaultConfidenceThreshold, "Minimum confidence for detected features")
	cmd.Flags().IntVar(&maxFields, "max", service.DefaultMaxSuggestions, "Maximum number of suggested fields")
	return cmd
}

func (a *cli) synthesizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "synthesize <analyses.json|->",
		Short: "Merge per-photo analyses into one property overview",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			var analyses []model.ImageAnalysis
			if err := json.NewDecoder(r).Decode(&analyses); err != nil {
				return fmt.Errorf("failed to read analyses: %w", err)
			}
			overview := service.NewSynthesizer(a.logger).Synthesize(analyses)
			return writeJSON(cmd.OutOrStdout(), overview)
		},
	}
}

func (a *cli) analyzeCmd() *cobra.Command {
	var provider string
	cmd := &cobra.Command{
		Use:   "analyze <image files...>",
		Short: "Analyze listing photos and synthesize the property",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			images := make([][]byte, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				images = append(images, data)
			}

			ctx, cancel := a.context(cmd)
			defer cancel()

			var (
				vision service.VisionAnalyzer
				opts   = service.ImageAnalyzerOptions{MaxImages: len(images)}
			)
			if provider == config.VisionMock {
				vision = service.NewMockVision()
			} else {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				if provider != "" {
					cfg.Vision.Provider = provider
				}
				extractor := service.NewFeatureExtractor(nil, a.logger)
				vision, err = service.NewVisionAnalyzer(ctx, cfg, service.NewOpenAIClient(&cfg.OpenAI, a.logger), extractor, a.logger)
				if err != nil {
					return err
				}
				opts.Concurrency = cfg.Vision.Concurrency
				opts.Timeout = cfg.Vision.ImageTimeout
				opts.RequestsPerSecond = cfg.Vision.RequestsPerSecond
			}

			analyzer := service.NewImageAnalyzer(vision, nil, nil, nil, opts, a.logger)
			batch, err := analyzer.AnalyzeBatch(ctx, images, func(r model.ImageAnalysis) {
				a.logger.Debug("photo analyzed", zap.Int("index", r.ImageIndex), zap.String("file", args[r.ImageIndex]))
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), batch)
		},
	}
	cmd.Flags().StringVar(&provider, "provider", config.VisionMock, "Vision provider: mock, openai or gemini (empty uses VISION_PROVIDER)")
	return cmd
}

func (a *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cfg.HasDatabase() {
				return fmt.Errorf("no database configured (set DATABASE_URL or PG_HOST)")
			}

			repo, err := repository.NewPostgresRepository(cfg.GetPostgreSQLDSN(), 1, 1, a.logger)
			if err != nil {
				return err
			}
			defer repo.Close()

			ctx, cancel := a.context(cmd)
			defer cancel()
			if err := repo.Migrate(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
