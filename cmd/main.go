package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/Amoako-T/Medlink-server/cmd/api"
	"github.com/Amoako-T/Medlink-server/cmd/models"
	"github.com/Amoako-T/Medlink-server/db"
	"github.com/Amoako-T/Medlink-server/service/reminder"
	"gorm.io/gorm"
)

func main() {
    // Check for command-line arguments
    if len(os.Args) > 1 {
        switch os.Args[1] {
        case "migrate":
            runMigrations()
            return
        case "clear-db":
            runDatabaseClear()
            return
        default:
            log.Fatalf("Unknown command: %s", os.Args[1])
        }
    }

    // Start the server
    startServer()
}

func runMigrations() {
	DB, err := db.NewPSQLStorage()
	if err != nil {
		log.Fatalf("Database initialization error: %v", err)
	}
	defer func() {
		sqlDB, _ := DB.DB()
		sqlDB.Close()
		log.Println("Database connection closed")
	}()
	log.Println("Connected to the database for migrations")

	// Perform migrations
	if err := performMigrations(DB); err != nil {
		log.Fatalf("Migration error: %v", err)
	}
	log.Println("Migrations completed successfully")
}

func performMigrations(DB *gorm.DB) error {

	migrations := map[interface{}]string{
		&models.User{}:                "User",
		&models.Doctor{}:              "Doctor",
		&models.AppointmentType{}:     "AppointmentType",
		&models.Appointment{}:         "Appointment",
		&models.Device{}:              "Device",
		&models.ReminderRecord{}:      "ReminderRecord",
		&models.NotificationHistory{}: "NotificationHistory",
		&models.PasswordResetToken{}:  "PasswordResetToken",
	}

	log.Println("Starting database migrations...")
	for model, name := range migrations {
		log.Printf("Migrating %s table...", name)
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("error migrating %s table: %w", name, err)
		}
		log.Printf("%s migration successful", name)
	}

	// At most one scheduled appointment may hold a given start time per
	// doctor and date. AutoMigrate cannot express a partial index.
	if err := DB.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_doctor_slot_active
		ON appointments (doctor_id, date, start_time)
		WHERE status = 'scheduled' AND deleted_at IS NULL`).Error; err != nil {
		return fmt.Errorf("error creating appointment slot index: %w", err)
	}
	log.Println("Appointment slot index created/verified")

	directories := []string{
		"uploads/images",
	}

	for _, dir := range directories {
		if err := createDirectoryIfNotExist(dir); err != nil {
			log.Fatalf("Error creating directory %s: %v", dir, err)
		}
		log.Printf("Directory %s created/verified", dir)
	}

	log.Println("All migrations and directory setup completed successfully")
	return nil
}


func createDirectoryIfNotExist(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("could not create directory %s: %w", path, err)
		}
	}
	return nil
}


func startServer() {
	// Initialize database connection
	DB, err := db.NewPSQLStorage()
	if err != nil {
		log.Fatalf("Database initialization error: %v", err)
	}
	defer func() {
		sqlDB, _ := DB.DB()
		sqlDB.Close()
		log.Println("Database connection closed")
	}()
	log.Println("Connected to the database")

	// Graceful shutdown setup
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	sweeper := reminder.NewSweeper(
		reminder.NewGormAppointmentSource(DB),
		reminder.NewGormReminderLog(DB),
		reminder.NewNotifier(DB),
		reminderLookahead(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := reminder.NewScheduler(sweeper, sweepInterval())
	scheduler.Start(ctx)
	log.Printf("Reminder scheduler running, lookahead %s", sweeper.WindowKey())

	// Start the API server
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}
	server := api.NewApiServer(":"+port, DB, sweeper)

	go func() {
		if err := server.Run(); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()
	log.Printf("Server running on port %s", port)

	<-quit
	log.Println("Shutting down server...")
	scheduler.Stop()
}

func reminderLookahead() time.Duration {
	hours, err := strconv.Atoi(os.Getenv("REMINDER_LOOKAHEAD_HOURS"))
	if err != nil || hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

func sweepInterval() time.Duration {
	minutes, err := strconv.Atoi(os.Getenv("REMINDER_SWEEP_MINUTES"))
	if err != nil || minutes <= 0 {
		minutes = 15
	}
	return time.Duration(minutes) * time.Minute
}


func clearDatabase(DB *gorm.DB, tables []interface{}) error {
    if len(tables) == 0 {
        // Default: Drop all tables
        tables = []interface{}{
            &models.ReminderRecord{},
            &models.NotificationHistory{},
            &models.Device{},
            &models.Appointment{},
            &models.AppointmentType{},
            &models.PasswordResetToken{},
            &models.Doctor{},
            &models.User{},
        }
    }

    log.Println("Dropping tables...")

    for _, table := range tables {
        if err := DB.Migrator().DropTable(table); err != nil {
            log.Printf("Warning dropping table %T: %v", table, err)
        } else {
            log.Printf("Table %T dropped", table)
        }
    }

    return nil
}

func runDatabaseClear() {
    DB, err := db.NewPSQLStorage()
    if err != nil {
        log.Fatalf("Database initialization error: %v", err)
    }
    defer func() {
        sqlDB, _ := DB.DB()
        sqlDB.Close()
        log.Println("Database connection closed")
    }()

    log.Println("Preparing to clear database...")

    // Optional: Add a confirmation prompt
    var confirmation string
    fmt.Print("Are you sure you want to clear the database? (yes/no): ")
    fmt.Scanln(&confirmation)

    if confirmation != "yes" {
        log.Println("Database clearing cancelled.")
        return
    }

    // Ask for specific tables to clear
    var tableNames string
    fmt.Print("Enter table names to clear (comma separated) or leave blank to clear all: ")
    fmt.Scanln(&tableNames)

    var tables []interface{}
    if tableNames != "" {
        tableList := splitTableNames(tableNames)
        for _, table := range tableList {
            switch table {
            case "User":
                tables = append(tables, &models.User{})
            case "Doctor":
                tables = append(tables, &models.Doctor{})
            case "AppointmentType":
                tables = append(tables, &models.AppointmentType{})
            case "Appointment":
                tables = append(tables, &models.Appointment{})
            case "Device":
                tables = append(tables, &models.Device{})
            case "ReminderRecord":
                tables = append(tables, &models.ReminderRecord{})
            case "NotificationHistory":
                tables = append(tables, &models.NotificationHistory{})
            case "PasswordResetToken":
                tables = append(tables, &models.PasswordResetToken{})
            default:
                log.Printf("Unknown table: %s", table)
            }
        }
    }

    // Clear the specified tables (or all tables if none specified)
    if err := clearDatabase(DB, tables); err != nil {
        log.Fatalf("Error clearing database: %v", err)
    }

    log.Println("Database cleared successfully")
}

func splitTableNames(tableNames string) []string {
    return strings.Split(tableNames, ",")
}
