package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/voice-api/internal/brands"
	"github.com/jonathan/voice-api/internal/config"
	"github.com/jonathan/voice-api/internal/llm"
	"github.com/jonathan/voice-api/internal/observability"
	"github.com/jonathan/voice-api/internal/schemas"
	"github.com/jonathan/voice-api/internal/store"
	"github.com/jonathan/voice-api/internal/types"
	"github.com/jonathan/voice-api/internal/voice"
	"github.com/spf13/cobra"
)

var generateVoiceCmd = &cobra.Command{
	Use:   "generate-voice",
	Short: "Generate a brand voice profile without a server",
	Long:  "Fetches the given pages, combines them with any writing samples and asks the selected model for a voice profile. The profile is written as JSON and validated against the voice profile schema.",
	RunE:  runGenerateVoice,
}

var (
	generateVoiceName     string
	generateVoiceURL      string
	generateVoiceURLs     []string
	generateVoiceSamples  []string
	generateVoiceModel    string
	generateVoiceOutput   string
	generateVoiceEvaluate string
	generateVoiceVerbose  bool
)

func init() {
	generateVoiceCmd.Flags().StringVarP(&generateVoiceName, "name", "n", "", "Brand name (required)")
	generateVoiceCmd.Flags().StringVar(&generateVoiceURL, "canonical-url", "", "Brand home page recorded on the brand")
	generateVoiceCmd.Flags().StringArrayVarP(&generateVoiceURLs, "url", "u", nil, "Page to derive the voice from (repeatable)")
	generateVoiceCmd.Flags().StringArrayVarP(&generateVoiceSamples, "sample", "s", nil, "Writing sample (repeatable)")
	generateVoiceCmd.Flags().StringVarP(&generateVoiceModel, "model", "m", "", "Model name (gemini-*, gpt-*, o1/o3/o4-*, or stub-llm); defaults by configured API key")
	generateVoiceCmd.Flags().StringVarP(&generateVoiceOutput, "out", "o", "", "Path to output VoiceProfile JSON file (required)")
	generateVoiceCmd.Flags().StringVar(&generateVoiceEvaluate, "evaluate", "", "Text to score against the generated profile")
	generateVoiceCmd.Flags().BoolVarP(&generateVoiceVerbose, "verbose", "v", false, "Print a readable summary of the profile")

	if err := generateVoiceCmd.MarkFlagRequired("name"); err != nil {
		panic(fmt.Sprintf("failed to mark name flag as required: %v", err))
	}
	if err := generateVoiceCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}

	rootCmd.AddCommand(generateVoiceCmd)
}

func runGenerateVoice(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	factoryCfg := llm.FactoryConfig{
		UseStub:      cfg.UseStubLLM,
		GeminiAPIKey: cfg.GeminiAPIKey,
		OpenAIAPIKey: cfg.OpenAIAPIKey,
	}

	model := generateVoiceModel
	if model == "" {
		model = llm.DefaultModel(factoryCfg)
	}
	req := types.GenerateVoiceRequest{
		Inputs: types.VoiceInputs{
			URLs:           generateVoiceURLs,
			WritingSamples: generateVoiceSamples,
		},
		LLMModel: model,
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid inputs: %w", err)
	}

	// Ensure output directory exists (create early, before any model call)
	outputDir := filepath.Dir(generateVoiceOutput)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	fetcher, closeFetcher, err := newFetcher(cfg)
	if err != nil {
		return err
	}
	defer closeFetcher()

	gateways := llm.NewClientFactory(factoryCfg)
	defer func() { _ = gateways.Close() }()

	// A scratch store gives the profile the same ids and version numbering as the API.
	scratch := store.NewMemoryStore()
	registry := brands.NewRegistry(scratch, logger)
	voices := voice.NewService(scratch, gateways, fetcher, logger)

	ctx := cmd.Context()
	brand, err := registry.Create(ctx, generateVoiceName, generateVoiceURL)
	if err != nil {
		return fmt.Errorf("failed to create brand: %w", err)
	}

	profile, err := voices.Generate(ctx, brand.ID, req)
	if err != nil {
		return fmt.Errorf("failed to generate voice profile: %w", err)
	}

	jsonBytes, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if err := os.WriteFile(generateVoiceOutput, jsonBytes, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	if err := schemas.ValidateFile(schemas.VoiceProfile, generateVoiceOutput); err != nil {
		// Distinguish between validation errors (data doesn't match schema) and schema load errors
		var validationErr *schemas.ValidationError
		var schemaLoadErr *schemas.SchemaLoadError
		if errors.As(err, &validationErr) {
			return fmt.Errorf("generated JSON does not validate against schema: %w", err)
		} else if errors.As(err, &schemaLoadErr) {
			_, _ = fmt.Fprintf(os.Stderr, "Warning: Could not validate output against schema (schema loading failed): %v\n", err)
		} else {
			_, _ = fmt.Fprintf(os.Stderr, "Warning: Could not validate output against schema: %v\n", err)
		}
	}

	out := cmd.OutOrStdout()
	var printer *observability.Printer
	if generateVoiceVerbose {
		printer = observability.NewPrinter(out)
		printer.PrintSources(generateVoiceURLs, len(generateVoiceSamples))
		printer.PrintVoiceProfile(brand.Name, profile)
	}

	if generateVoiceEvaluate != "" {
		evaluation, err := voices.Evaluate(ctx, profile, generateVoiceEvaluate)
		if err != nil {
			return fmt.Errorf("failed to evaluate text: %w", err)
		}
		if printer == nil {
			printer = observability.NewPrinter(out)
		}
		printer.PrintEvaluation(evaluation)
	}

	_, _ = fmt.Fprintf(out, "Successfully generated brand voice\n")
	_, _ = fmt.Fprintf(out, "Output: %s\n", generateVoiceOutput)

	return nil
}
