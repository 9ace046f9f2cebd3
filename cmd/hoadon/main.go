package main

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hoadon-ai/extractor/constants"
	"github.com/hoadon-ai/extractor/internal/common"
	"github.com/hoadon-ai/extractor/internal/export"
	"github.com/hoadon-ai/extractor/internal/llm/openai"
	"github.com/hoadon-ai/extractor/internal/normalize"
	"github.com/hoadon-ai/extractor/internal/pipeline"
)

var (
	flagFormat string
	flagStrict bool
	flagOutDir string
)

var rootCmd = &cobra.Command{
	Use:   "hoadon",
	Short: "Extract structured data from Vietnamese VAT invoices",
	Long: `hoadon sends a Vietnamese VAT invoice (Hóa đơn GTGT) — PDF, PNG, or
JPEG — to a hosted multimodal model and writes the extracted record as
JSON, CSV, and XLSX artifacts.`,
}

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract one invoice and write the artifacts next to it",
	Example: `  # All three artifacts next to the input
  hoadon extract hoadon-042.pdf

  # CSV only, into a chosen directory
  hoadon extract scan.jpg --format csv --out-dir ./out`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	path := args[0]
	ext := constants.NormalizeExt(filepath.Ext(path))
	mimeType, ok := constants.AllowedExtensions[ext]
	if !ok {
		// a declared type from the OS registry may still be acceptable
		if mt := constants.MapMIMEToFormat(mime.TypeByExtension("." + ext)); mt == "" {
			return fmt.Errorf("unsupported file type %q; accepted: pdf, png, jpg, jpeg", ext)
		}
		mimeType = mime.TypeByExtension("." + ext)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return common.WrapError(err, "read "+path)
	}

	cfg := common.LoadConfig()
	cfg.LLM.StrictSchema = cfg.LLM.StrictSchema || flagStrict
	if err := cfg.Validate(); err != nil {
		return err
	}

	client := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
	}, logger)
	processor := pipeline.NewProcessor(logger, pipeline.Config{StrictSchema: cfg.LLM.StrictSchema},
		normalize.NewNormalizer(logger), client)

	doc := normalize.Document{
		Name:     filepath.Base(path),
		Content:  content,
		MIMEType: mimeType,
	}
	result, err := processor.ProcessDocument(context.Background(), doc)
	if err != nil {
		return common.WrapError(err, "extract "+path)
	}
	for _, w := range result.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}

	exporter := export.NewService(logger)
	var artifacts []export.Artifact
	if flagFormat != "" {
		a, err := exporter.ArtifactFor(doc.Name, flagFormat, result.Record)
		if err != nil {
			return common.WrapError(err, "export")
		}
		artifacts = []export.Artifact{a}
	} else {
		artifacts, err = exporter.Artifacts(doc.Name, result.Record)
		if err != nil {
			return common.WrapError(err, "export")
		}
	}

	outDir := flagOutDir
	if outDir == "" {
		outDir = filepath.Dir(path)
	}
	for _, a := range artifacts {
		dst := filepath.Join(outDir, a.Filename)
		if err := os.WriteFile(dst, a.Data, 0o644); err != nil {
			return common.WrapError(err, "write "+dst)
		}
		fmt.Println("wrote", dst)
	}
	return nil
}

func init() {
	extractCmd.Flags().StringVar(&flagFormat, "format", "", "write only one artifact: json, csv, or xlsx")
	extractCmd.Flags().BoolVar(&flagStrict, "strict-schema", false, "hard-fail when the record violates the invoice schema")
	extractCmd.Flags().StringVar(&flagOutDir, "out-dir", "", "directory for the artifacts (default: alongside the input)")
	rootCmd.AddCommand(extractCmd)
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
