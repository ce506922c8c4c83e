// Command xcontrol-history inspects and maintains the routine history
// database: version and row counts, recent sessions, per-session steps,
// and compaction.
package main

import (
	"flag"
	"fmt"
	"log"

	"xcontrol.dev/xcontrol/internal/database"
)

func main() {
	dbPath := flag.String("db", "xcontrol.db", "Path to the history database")
	limit := flag.Int("limit", 10, "Number of recent sessions to list")
	steps := flag.String("steps", "", "List step executions for the given session ID")
	vacuum := flag.Bool("vacuum", false, "Compact the database after reporting")
	flag.Parse()

	db, err := database.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open history database: %v", err)
	}
	defer db.Close()

	version, err := db.GetVersion()
	if err != nil {
		log.Fatalf("Failed to read schema version: %v", err)
	}
	fmt.Printf("Database: %s (schema version %d)\n", db.Path(), version)

	stats, err := db.GetStats()
	if err != nil {
		log.Fatalf("Failed to read table stats: %v", err)
	}
	for table, count := range stats {
		fmt.Printf("  %s: %d rows\n", table, count)
	}

	if *steps != "" {
		listSteps(db, *steps)
	} else {
		listSessions(db, *limit)
	}

	if *vacuum {
		if err := db.Vacuum(); err != nil {
			log.Fatalf("Failed to vacuum database: %v", err)
		}
		fmt.Println("Database compacted")
	}
}

func listSessions(db *database.DB, limit int) {
	sessions, err := db.ListRecentSessions(limit)
	if err != nil {
		log.Fatalf("Failed to list sessions: %v", err)
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions recorded")
		return
	}

	fmt.Printf("\nRecent sessions (%d):\n", len(sessions))
	for _, s := range sessions {
		line := fmt.Sprintf("  %s  %-9s  %s on %s  started %s",
			s.ID, s.Status, s.RoutineName, s.DisplayID,
			s.StartedAt.Format("2006-01-02 15:04:05"))
		if s.DurationSeconds != nil {
			line += fmt.Sprintf(" (%ds)", *s.DurationSeconds)
		}
		fmt.Println(line)
		if s.ErrorMessage != nil {
			fmt.Printf("    error: %s\n", *s.ErrorMessage)
		}
	}
}

func listSteps(db *database.DB, sessionID string) {
	executions, err := db.ListSessionSteps(sessionID)
	if err != nil {
		log.Fatalf("Failed to list steps: %v", err)
	}
	if len(executions) == 0 {
		fmt.Printf("No steps recorded for session %s\n", sessionID)
		return
	}

	fmt.Printf("\nSteps for session %s:\n", sessionID)
	for _, e := range executions {
		line := fmt.Sprintf("  %3d  %-20s  %-9s  %dms", e.StepIndex, e.StepType, e.Status, e.DurationMs)
		if e.Detail != nil {
			line += "  " + *e.Detail
		}
		fmt.Println(line)
	}
}
