package main

import (
	"flag"
	"log"

	"xcontrol.dev/xcontrol/internal/config"
	"xcontrol.dev/xcontrol/internal/control"
	"xcontrol.dev/xcontrol/internal/database"
	"xcontrol.dev/xcontrol/internal/routine"
	"xcontrol.dev/xcontrol/pkg/templates"
)

func main() {
	configPath := flag.String("config", "", "Path to Settings.ini (defaults apply when omitted)")
	routinePath := flag.String("routine", "", "Path to routine YAML file (required)")
	displayID := flag.String("display", ":1", "Nested display to run against, e.g. :1")
	width := flag.Int("width", 1280, "Nested display width")
	height := flag.Int("height", 800, "Nested display height")
	templateDir := flag.String("templates", "", "Directory of template YAML files")
	noHistory := flag.Bool("no-history", false, "Skip recording the run to the history database")
	flag.Parse()

	if *routinePath == "" {
		log.Fatal("-routine is required")
	}

	settings := config.NewDefaultSettings()
	if *configPath != "" {
		loaded, err := config.LoadFromINI(*configPath)
		if err != nil {
			log.Fatalf("Failed to load settings: %v", err)
		}
		settings = loaded
	}

	r, err := routine.Load(*routinePath)
	if err != nil {
		log.Fatalf("Failed to load routine: %v", err)
	}

	var tplRegistry *templates.Registry
	if *templateDir != "" {
		tplRegistry = templates.NewRegistry(*templateDir)
		if err := tplRegistry.LoadFromDirectory(*templateDir); err != nil {
			log.Fatalf("Failed to load templates: %v", err)
		}
		log.Printf("Loaded %d templates from %s", tplRegistry.Count(), *templateDir)
	}

	builder, err := r.Build(tplRegistry)
	if err != nil {
		log.Fatalf("Failed to build routine: %v", err)
	}

	registry := control.NewRegistry(settings)
	defer registry.CloseAll()

	handle, err := registry.GetOrCreate(*displayID, *width, *height)
	if err != nil {
		log.Fatalf("Failed to create display handle: %v", err)
	}

	executor := routine.NewExecutor()
	if !*noHistory && settings.HistoryDBPath != "" {
		db, err := database.Open(settings.HistoryDBPath)
		if err != nil {
			log.Fatalf("Failed to open history database: %v", err)
		}
		defer db.Close()

		if err := db.RunMigrations(); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		executor = executor.WithHistory(db)
	}

	log.Printf("Running routine '%s' on display %s", r.Name, *displayID)
	if err := executor.Execute(handle, *displayID, r.Name, builder); err != nil {
		log.Fatalf("Routine failed: %v", err)
	}
	log.Println("Routine completed")
}
