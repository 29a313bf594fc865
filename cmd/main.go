package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"github.com/xhad/rescript/pkg/aggregator"
	cfgPkg "github.com/xhad/rescript/pkg/config"
	"github.com/xhad/rescript/pkg/llm"
	"github.com/xhad/rescript/pkg/pipeline"
	"github.com/xhad/rescript/pkg/transcript"
	"github.com/xhad/rescript/server"
)

func main() {
	var configPath string
	var serve bool
	var model string
	var urlsFile string

	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.BoolVar(&serve, "serve", false, "Start the HTTP server instead of a one-shot run")
	flag.StringVar(&model, "model", "", "Override the completion model")
	flag.StringVar(&urlsFile, "urls-file", "", "File with one video URL per line")
	flag.Parse()

	if err := godotenv.Load(); err == nil {
		log.Printf("loaded environment from .env")
	}

	config, err := cfgPkg.LoadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if model != "" {
		config.LLM.Model = model
	}

	if errs := config.Validate(); len(errs) > 0 {
		for _, e := range errs {
			color.Red("config error: %v", e)
		}
		os.Exit(1)
	}

	if err := run(config, serve, urlsFile, flag.Args()); err != nil {
		log.Fatal(err)
	}
}

func run(config *cfgPkg.Config, serve bool, urlsFile string, args []string) error {
	p, err := buildPipeline(config)
	if err != nil {
		return err
	}

	if serve {
		srv := server.New(server.Config{Addr: ":" + config.Server.Port}, p, pipeline.IsInputError)
		return srv.Start()
	}

	urls, err := collectURLs(urlsFile, args)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return fmt.Errorf("no urls given: pass them as arguments, via -urls-file, or on stdin")
	}

	spinner := getSpinner(fmt.Sprintf("Rewriting %d video(s)...", len(urls)))
	ticker := time.NewTicker(100 * time.Millisecond)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				spinner.Add(1)
			case <-done:
				return
			}
		}
	}()

	outcome, err := p.Run(context.Background(), urls)
	ticker.Stop()
	close(done)
	spinner.Finish()
	fmt.Print("\n")

	if err != nil {
		return err
	}

	color.Green("✓ %d of %d input(s) resolved, %d transcript characters gathered\n",
		outcome.ResolvedCount, outcome.InputCount, outcome.RawLength)
	if outcome.Truncated {
		color.Yellow("transcripts were truncated before rewriting")
	}
	if outcome.Result.Degraded {
		color.Yellow("rewrite degraded: %s", outcome.Result.Reason)
	}

	fmt.Println()
	fmt.Println(outcome.Result.Text())
	return nil
}

func buildPipeline(config *cfgPkg.Config) (*pipeline.Pipeline, error) {
	timeout := time.Duration(config.Transcript.TimeoutSeconds) * time.Second

	captions := transcript.NewCaptionClient(transcript.CaptionConfig{
		BaseURL:   config.Transcript.CaptionsURL,
		Language:  config.Transcript.Language,
		RateLimit: config.Transcript.RateLimit,
		Timeout:   timeout,
	})
	bulk := transcript.NewBulkClient(transcript.BulkConfig{
		BaseURL: config.Transcript.BulkURL,
		Token:   config.Transcript.BulkToken,
		Timeout: timeout,
	})
	watch := transcript.NewWatchPageClient(transcript.WatchPageConfig{
		Language: config.Transcript.Language,
		Timeout:  timeout,
	})

	chain := transcript.NewChain(captions, bulk, watch)
	if config.Transcript.EnableAudio {
		audio := transcript.NewAudioClient(transcript.AudioConfig{
			APIKey:  config.LLM.APIKey,
			BaseURL: config.LLM.BaseURL,
			Model:   config.Transcript.WhisperModel,
		})
		chain = transcript.NewChain(captions, bulk, watch, audio)
	}

	engine, err := llm.NewWithConfig(llm.RewriteConfig{
		Provider:        config.LLM.Provider,
		APIKey:          config.LLM.APIKey,
		BaseURL:         config.LLM.BaseURL,
		Model:           config.LLM.Model,
		Temperature:     config.LLM.Temperature,
		MaxTokens:       config.LLM.MaxTokens,
		PreviewChars:    config.Pipeline.PreviewChars,
		FallbackBaseURL: config.LLM.FallbackBaseURL,
		FallbackModel:   config.LLM.FallbackModel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize rewrite engine: %v", err)
	}

	agg := aggregator.NewWithConfig(aggregator.AggregatorConfig{
		MaxChars: config.Pipeline.MaxDocumentChars,
	})

	return pipeline.NewWithConfig(pipeline.PipelineConfig{
		MaxBatch: config.Pipeline.MaxBatch,
	}, chain, agg, engine), nil
}

func collectURLs(urlsFile string, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}

	var reader *bufio.Scanner
	if urlsFile != "" {
		f, err := os.Open(urlsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open urls file: %v", err)
		}
		defer f.Close()
		reader = bufio.NewScanner(f)
	} else {
		stat, err := os.Stdin.Stat()
		if err != nil || stat.Mode()&os.ModeCharDevice != 0 {
			return nil, nil
		}
		reader = bufio.NewScanner(os.Stdin)
	}

	var urls []string
	for reader.Scan() {
		if line := strings.TrimSpace(reader.Text()); line != "" {
			urls = append(urls, line)
		}
	}
	return urls, reader.Err()
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}
