package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"vocabdrill/internal/audio"
	"vocabdrill/internal/config"
	"vocabdrill/internal/database"
	"vocabdrill/internal/event"
	"vocabdrill/internal/models"
	"vocabdrill/internal/repository"
	"vocabdrill/internal/service"
)

func main() {
	// Define subcommands
	lessonsCmd := flag.NewFlagSet("lessons", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	practiceCmd := flag.NewFlagSet("practice", flag.ExitOnError)
	settingsCmd := flag.NewFlagSet("settings", flag.ExitOnError)
	historyCmd := flag.NewFlagSet("history", flag.ExitOnError)
	audioCmd := flag.NewFlagSet("audio", flag.ExitOnError)
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	restoreCmd := flag.NewFlagSet("restore", flag.ExitOnError)

	// Lessons flags
	lessonsDelete := lessonsCmd.Int64("delete", 0, "Delete the lesson with this ID and its history")

	// Import flags
	importFile := importCmd.String("file", "", "Workbook to import (required)")
	importSheet := importCmd.String("sheet", "", "Sheet to import (default: first sheet)")
	importName := importCmd.String("name", "", "Lesson name (default: sheet name)")
	importNoAudio := importCmd.Bool("no-audio", false, "Skip generating pronunciation audio")

	// Practice flags
	practiceLesson := practiceCmd.Int64("lesson", 0, "Lesson ID")
	practiceName := practiceCmd.String("name", "", "Lesson name")

	// Settings flags
	settingsMode := settingsCmd.String("mode", "", "Practice mode: flashcard, typed-recall, multiple-choice, listening-recall")
	settingsAutoCheck := settingsCmd.Bool("autocheck", true, "Confirm typed answers as soon as they match")

	// History flags
	historyLesson := historyCmd.Int64("lesson", 0, "Lesson ID")
	historyName := historyCmd.String("name", "", "Lesson name")
	historyLimit := historyCmd.Int("limit", 0, "Number of sessions to show (default: 10)")

	// Audio flags
	audioLesson := audioCmd.Int64("lesson", 0, "Lesson ID")
	audioName := audioCmd.String("name", "", "Lesson name")

	// Backup flags
	exportOutput := exportCmd.String("output", "", "Output file path (default: vocabdrill_YYYYMMDD_HHMMSS.json)")
	restoreInput := restoreCmd.String("input", "", "Input file path (required)")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Load configuration
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if cfg.Debug {
		log.Printf("[DEBUG] Database connection established (type: %s)", cfg.DatabaseType)
	}

	// Run migrations to ensure schema is up to date
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	vocabRepo := repository.NewVocabularyRepository(db)
	resultRepo := repository.NewResultRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	// Initialize services
	settingsService := service.NewSettingsService(settingsRepo, cfg.SettingsKey, cfg.Debug)
	tts := audio.NewTTSService(cfg.AudioDir, cfg.TTSLanguage)

	switch os.Args[1] {
	case "lessons":
		lessonsCmd.Parse(os.Args[2:])
		if *lessonsDelete > 0 {
			handleDeleteLesson(vocabRepo, *lessonsDelete)
			return
		}
		handleLessons(service.NewLessonService(vocabRepo, nil, cfg.Debug))

	case "import":
		importCmd.Parse(os.Args[2:])
		if *importFile == "" {
			fmt.Println("Error: -file flag is required")
			importCmd.PrintDefaults()
			os.Exit(1)
		}

		var prefetcher service.AudioPrefetcher
		if !*importNoAudio {
			prefetcher = tts
		}
		lessonService := service.NewLessonService(vocabRepo, prefetcher, cfg.Debug)
		handleImport(ctx, lessonService, *importFile, *importSheet, *importName)

	case "practice":
		practiceCmd.Parse(os.Args[2:])
		lessonID := resolveLesson(vocabRepo, *practiceLesson, *practiceName, practiceCmd)

		player := audio.NewPlayer(tts, cfg.AudioDir, cfg.AudioPlayer, cfg.Debug)
		publisher := newPublisher(cfg)
		defer publisher.Close()

		practiceService := service.NewPracticeService(
			vocabRepo,
			resultRepo,
			settingsService,
			player,
			publisher,
			newReporter(ctx, cfg),
			cfg.Debug,
		)
		handlePractice(ctx, practiceService, player, lessonID)

	case "settings":
		settingsCmd.Parse(os.Args[2:])
		set := make(map[string]bool)
		settingsCmd.Visit(func(f *flag.Flag) { set[f.Name] = true })
		handleSettings(settingsService, *settingsMode, set["mode"], *settingsAutoCheck, set["autocheck"])

	case "history":
		historyCmd.Parse(os.Args[2:])
		lessonID := resolveLesson(vocabRepo, *historyLesson, *historyName, historyCmd)
		practiceService := service.NewPracticeService(vocabRepo, resultRepo, settingsService, nil, nil, nil, cfg.Debug)
		handleHistory(ctx, practiceService, lessonID, *historyLimit)

	case "audio":
		audioCmd.Parse(os.Args[2:])
		lessonID := resolveLesson(vocabRepo, *audioLesson, *audioName, audioCmd)
		handleAudio(ctx, vocabRepo, tts, lessonID)

	case "export":
		exportCmd.Parse(os.Args[2:])
		handleExport(service.NewBackupService(vocabRepo, resultRepo), *exportOutput)

	case "restore":
		restoreCmd.Parse(os.Args[2:])
		if *restoreInput == "" {
			fmt.Println("Error: -input flag is required")
			restoreCmd.PrintDefaults()
			os.Exit(1)
		}
		handleRestore(service.NewBackupService(vocabRepo, resultRepo), *restoreInput)

	default:
		printUsage()
		os.Exit(1)
	}
}

// newPublisher connects to the broker when one is configured. A broker that
// cannot be reached only disables event delivery.
func newPublisher(cfg *config.Config) event.Publisher {
	if cfg.AMQPURL == "" {
		return event.NopPublisher{}
	}

	publisher, err := event.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.Debug)
	if err != nil {
		log.Printf("Warning: review events disabled: %v", err)
		return event.NopPublisher{}
	}
	return publisher
}

func newReporter(ctx context.Context, cfg *config.Config) service.SessionReporter {
	if !cfg.ReportsEnabled() {
		return nil
	}

	reporter, err := service.NewReportService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.ReportRecipient, cfg.Debug)
	if err != nil {
		log.Printf("Warning: session reports disabled: %v", err)
		return nil
	}
	return reporter
}

func resolveLesson(repo *repository.VocabularyRepository, id int64, name string, cmd *flag.FlagSet) int64 {
	if id > 0 {
		return id
	}
	if name == "" {
		fmt.Println("Error: -lesson or -name flag is required")
		cmd.PrintDefaults()
		os.Exit(1)
	}

	lesson, err := repo.GetLessonByName(name)
	if err != nil {
		log.Fatalf("Failed to look up lesson: %v", err)
	}
	if lesson == nil {
		log.Fatalf("Lesson not found: %s", name)
	}
	return lesson.ID
}

func handleLessons(lessonService *service.LessonService) {
	lessons, err := lessonService.ListLessons()
	if err != nil {
		log.Fatalf("Failed to list lessons: %v", err)
	}

	if len(lessons) == 0 {
		fmt.Println("No lessons yet. Import a workbook with: vocabdrill import -file <workbook.xlsx>")
		return
	}

	for _, lesson := range lessons {
		fmt.Printf("%4d  %-30s %3d words  %s\n", lesson.ID, lesson.Name, lesson.ItemCount, lesson.Description)
	}
}

func handleDeleteLesson(repo *repository.VocabularyRepository, lessonID int64) {
	lesson, err := repo.GetLessonByID(lessonID)
	if err != nil {
		log.Fatalf("Failed to look up lesson: %v", err)
	}
	if lesson == nil {
		log.Fatalf("Lesson not found: %d", lessonID)
	}

	if err := repo.DeleteLesson(lessonID); err != nil {
		log.Fatalf("Failed to delete lesson: %v", err)
	}
	fmt.Printf("Deleted lesson %d %q\n", lesson.ID, lesson.Name)
}

func handleImport(ctx context.Context, lessonService *service.LessonService, path, sheet, name string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Fatalf("Workbook does not exist: %s", path)
	}

	result, err := lessonService.ImportWorkbook(ctx, path, sheet, name)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	action := "Updated"
	if result.Created {
		action = "Created"
	}
	fmt.Printf("%s lesson %d %q with %d words", action, result.Lesson.ID, result.Lesson.Name, len(result.Items))
	if result.Skipped > 0 {
		fmt.Printf(" (%d incomplete rows skipped)", result.Skipped)
	}
	fmt.Println()
}

func handlePractice(ctx context.Context, practiceService *service.PracticeService, player *audio.Player, lessonID int64) {
	out := os.Stdout
	listener := newDrillListener(out)

	session, err := practiceService.StartSession(ctx, lessonID, listener)
	if errors.Is(err, service.ErrLessonNotFound) {
		log.Fatalf("Lesson not found: %d", lessonID)
	}
	if err != nil {
		log.Fatalf("Failed to start practice: %v", err)
	}

	fmt.Fprintf(out, "%s: %d words, %s mode\n", session.Lesson.Name, len(session.Items), session.Controller.Mode())

	d := newDrill(session.Controller, os.Stdin, out)
	if err := d.run(ctx); err != nil {
		log.Printf("Warning: input stopped: %v", err)
	}

	result, err := session.Controller.Complete()
	if err != nil {
		log.Fatalf("Failed to complete practice: %v", err)
	}

	fmt.Fprintf(out, "Average speed: %s\n", session.Controller.AverageSpeed())

	if _, err := practiceService.Finish(ctx, session, result); err != nil {
		log.Fatalf("Failed to save practice results: %v", err)
	}

	// Let running pronunciations finish before the process exits
	player.Wait()
}

func handleAudio(ctx context.Context, repo *repository.VocabularyRepository, tts *audio.TTSService, lessonID int64) {
	items, err := repo.GetLessonItems(lessonID)
	if err != nil {
		log.Fatalf("Failed to load lesson: %v", err)
	}

	var words []string
	for _, item := range items {
		if !item.HasAudio() {
			words = append(words, item.Word)
		}
	}

	generated, err := tts.Prefetch(ctx, words)
	if err != nil {
		log.Printf("Warning: %v", err)
	}

	cached, err := tts.CachedFiles()
	if err != nil {
		log.Fatalf("Failed to list audio cache: %v", err)
	}
	fmt.Printf("Generated audio for %d of %d words, %d files cached\n", len(generated), len(words), len(cached))
}

func handleSettings(settingsService *service.SettingsService, mode string, modeSet, autoCheck, autoCheckSet bool) {
	settings := settingsService.Load()

	if modeSet {
		parsed, err := models.ParseMode(mode)
		if err != nil {
			log.Fatalf("Invalid settings: %v", err)
		}
		settings.Mode = parsed
	}
	if autoCheckSet {
		settings.AutoCheck = autoCheck
	}

	if modeSet || autoCheckSet {
		if err := settingsService.Save(settings); err != nil {
			log.Fatalf("Failed to save settings: %v", err)
		}
	}

	fmt.Printf("mode:      %s\n", settings.Mode)
	fmt.Printf("autocheck: %t\n", settings.AutoCheck)
}

func handleHistory(ctx context.Context, practiceService *service.PracticeService, lessonID int64, limit int) {
	records, err := practiceService.History(ctx, lessonID, limit)
	if err != nil {
		log.Fatalf("Failed to load history: %v", err)
	}

	if len(records) == 0 {
		fmt.Println("No practice sessions recorded for this lesson")
		return
	}

	for _, record := range records {
		duration := record.CompletedAt.Sub(record.StartedAt).Round(time.Second)
		fmt.Printf("%s  %-16s %3d%%  %d/%d words  %s\n",
			record.CompletedAt.Local().Format("2006-01-02 15:04"),
			record.Mode, record.Score, record.CorrectWords, record.TotalWords, duration)
	}
}

func handleExport(backupService *service.BackupService, outputPath string) {
	// Generate default filename if not provided
	if outputPath == "" {
		timestamp := time.Now().Format("20060102_150405")
		outputPath = fmt.Sprintf("vocabdrill_%s.json", timestamp)
	}

	// Ensure directory exists
	dir := filepath.Dir(outputPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create output directory: %v", err)
		}
	}

	log.Printf("Exporting lessons and history to: %s", outputPath)
	if err := backupService.Export(outputPath); err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	log.Println("Export complete!")
}

func handleRestore(backupService *service.BackupService, inputPath string) {
	// Check if file exists
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		log.Fatalf("Input file does not exist: %s", inputPath)
	}

	if err := backupService.Import(inputPath); err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	log.Println("Import complete!")
}

func printUsage() {
	fmt.Println("Vocab Drill")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  vocabdrill lessons [-delete id]  List or delete lessons")
	fmt.Println("  vocabdrill import [options]      Import a workbook sheet as a lesson")
	fmt.Println("  vocabdrill practice [options]    Practice a lesson")
	fmt.Println("  vocabdrill settings [options]    Show or change practice settings")
	fmt.Println("  vocabdrill history [options]     Show recent sessions of a lesson")
	fmt.Println("  vocabdrill audio [options]       Generate pronunciation audio for a lesson")
	fmt.Println("  vocabdrill export [options]      Export lessons and history to JSON")
	fmt.Println("  vocabdrill restore [options]     Import lessons and history from JSON")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  vocabdrill import -file animals.xlsx -sheet Unit1")
	fmt.Println("  vocabdrill settings -mode typed-recall -autocheck=false")
	fmt.Println("  vocabdrill practice -name Unit1")
	fmt.Println("  vocabdrill history -lesson 1 -limit 5")
	fmt.Println()
	fmt.Println("During practice:")
	fmt.Println("  <text>      type an answer or pick an option by number")
	fmt.Println("              (autocheck confirms a matching answer at once)")
	fmt.Println("  <enter>     reveal, submit or go to the next word")
	fmt.Println("  :hint :play :reveal :know :learning :retry :skip :quit")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  DB_TYPE          Database type: sqlite, postgres, or mysql (default: sqlite)")
	fmt.Println("  DB_PATH          SQLite database path (default: ./vocabdrill.db)")
	fmt.Println("  DATABASE_URL     PostgreSQL or MySQL connection URL")
	fmt.Println("  AUDIO_DIR        Audio cache directory (default: ./audio)")
	fmt.Println("  AUDIO_PLAYER     Playback command (default: mpg123 -q)")
	fmt.Println("  AMQP_URL         Broker for review events (optional)")
	fmt.Println("  SES_FROM_EMAIL   Sender for session reports (optional)")
	fmt.Println("  REPORT_EMAIL     Recipient of session reports (optional)")
}
