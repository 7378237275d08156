package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/harrisonrobin/snapcal/pkg/auth"
	"github.com/harrisonrobin/snapcal/pkg/capture"
	"github.com/harrisonrobin/snapcal/pkg/config"
	"github.com/harrisonrobin/snapcal/pkg/export"
	"github.com/harrisonrobin/snapcal/pkg/google"
	"github.com/harrisonrobin/snapcal/pkg/llm"
	appLog "github.com/harrisonrobin/snapcal/pkg/log"
	"github.com/harrisonrobin/snapcal/pkg/model"
	"github.com/harrisonrobin/snapcal/pkg/pipeline"
	"github.com/harrisonrobin/snapcal/pkg/report"
)

func main() {
	// A .env next to the binary may carry OPENAI_API_KEY.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("could not read .env: %v", err)
	}

	// 1. Parse Flags
	calendarName := flag.String("calendar", "", "Google Calendar name to write events to (overrides config)")
	setCalendar := flag.String("set-calendar", "", "Set the default Google Calendar name")
	setAPIKey := flag.String("set-api-key", "", "Store the OpenAI API key in the config file")
	doAuth := flag.Bool("auth", false, "Authenticate with Google Calendar and Tasks")
	pageURL := flag.String("url", "", "Render this page in headless Chromium and capture it")
	remoteURL := flag.String("remote", "", "Capture the visible tab of the browser at this DevTools websocket URL")
	imagePath := flag.String("image", "", "Use an existing screenshot instead of a browser")
	dryRun := flag.Bool("dry-run", false, "Classify and extract, but do not write to Google")
	icsPath := flag.String("ics", "", "Also write extracted events to this .ics file")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	if *verbose {
		appLog.SetLevel(appLog.LevelDebug)
	}

	cfgPath, err := config.GetConfigPath()
	if err != nil {
		log.Fatalf("could not find path to configuration file: error %v", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// 2. Handle config updates
	if *setCalendar != "" || *setAPIKey != "" {
		if *setCalendar != "" {
			cfg.Calendar = *setCalendar
		}
		if *setAPIKey != "" {
			cfg.OpenAI.APIKey = *setAPIKey
		}
		if err := config.Save(cfgPath, cfg); err != nil {
			log.Fatalf("Error saving config: %v", err)
		}
		if *setCalendar != "" {
			fmt.Printf("Default calendar set to: %s\n", *setCalendar)
		}
		if *setAPIKey != "" {
			fmt.Println("API key saved")
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// 3. Handle Authentication
	if *doAuth {
		if err := auth.ResetToken(); err != nil {
			log.Fatalf("%v. Please delete it manually", err)
		}
		if _, err := auth.GetClient(ctx, auth.Scopes); err != nil {
			log.Fatalf("Authentication failed: %v", err)
		}
		tokenPath, _ := auth.TokenPath()
		log.Printf("Authentication successful! Token saved to %s", tokenPath)
		return
	}

	// 4. Determine Calendar (Priority: Flag > Config > Default)
	selectedCalendar := cfg.Calendar
	if *calendarName != "" {
		selectedCalendar = *calendarName
	}

	color := !*noColor && os.Getenv("NO_COLOR") == ""
	runner := &pipeline.Runner{
		Source: newSource(cfg, *imagePath, *remoteURL, *pageURL),
		Compress: capture.Options{
			MaxWidth: cfg.Capture.MaxWidth,
			Quality:  cfg.Capture.Quality,
		},
		Reporter: report.New(os.Stdout, color),
		DryRun:   *dryRun,
	}

	llmClient, err := llm.NewClient(llm.Config{
		APIKey:        cfg.APIKey(),
		BaseURL:       cfg.OpenAI.BaseURL,
		ClassifyModel: cfg.OpenAI.ClassifyModel,
		ExtractModel:  cfg.OpenAI.ExtractModel,
	})
	if err != nil {
		runner.Reporter.Error(err.Error())
		os.Exit(1)
	}
	runner.Classifier = llmClient
	runner.Extractor = llmClient

	// A dry run needs no Google login.
	if !*dryRun {
		clients, err := google.NewClients(ctx, selectedCalendar)
		if err != nil {
			runner.Reporter.Errorf("Not authorized: %v", err)
			os.Exit(1)
		}
		runner.Events = clients.Calendar
		runner.Tasks = clients.Tasks
	}

	if *icsPath != "" {
		path := *icsPath
		runner.ExportICS = func(ev *model.Event, now time.Time) error {
			return export.WriteICS(path, ev, now)
		}
	}

	// 5. Run once
	res, err := runner.Run(ctx)
	if err != nil {
		os.Exit(1)
	}
	if res.EventLink != "" {
		fmt.Println(res.EventLink)
	}
	if *dryRun {
		printExtracted(res)
	}
}

// printExtracted writes the extracted object as indented JSON.
func printExtracted(res *pipeline.Result) {
	var v any
	switch {
	case res.Event != nil:
		v = res.Event
	case res.Task != nil:
		v = res.Task
	default:
		return
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Printf("Error encoding result: %v", err)
	}
}

// newSource picks the screenshot source. Priority: image file, then a
// running browser, then a headless render.
func newSource(cfg *config.Config, imagePath, remoteURL, pageURL string) capture.Source {
	if imagePath != "" {
		return capture.FileSource{Path: imagePath}
	}
	src := &capture.ChromeSource{
		RemoteURL: cfg.Capture.RemoteURL,
		URL:       cfg.Capture.URL,
		Timeout:   time.Duration(cfg.Capture.TimeoutSec) * time.Second,
	}
	if remoteURL != "" || pageURL != "" {
		src.RemoteURL = remoteURL
		src.URL = pageURL
	}
	return src
}
