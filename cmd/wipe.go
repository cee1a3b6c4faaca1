package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/edalquez/facegate/internal/config"
	"github.com/edalquez/facegate/internal/store/postgres"
	"github.com/edalquez/facegate/internal/uploads"
)

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete stored attendance data",
	Long: `Delete attendance logs, registered students and captured images.
Select what to wipe with flags, or use --all. Asks for confirmation
unless --yes is given.`,
	RunE: runWipe,
}

func init() {
	rootCmd.AddCommand(wipeCmd)

	wipeCmd.Flags().Bool("attendance", false, "Delete attendance logs")
	wipeCmd.Flags().Bool("students", false, "Delete registered students")
	wipeCmd.Flags().Bool("uploads", false, "Delete captured images")
	wipeCmd.Flags().Bool("all", false, "Delete everything")
	wipeCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
}

func runWipe(cmd *cobra.Command, args []string) error {
	wipeAll := mustGetBool(cmd, "all")
	wipeAttendance := mustGetBool(cmd, "attendance") || wipeAll
	wipeStudents := mustGetBool(cmd, "students") || wipeAll
	wipeUploads := mustGetBool(cmd, "uploads") || wipeAll

	if !wipeAttendance && !wipeStudents && !wipeUploads {
		return errors.New("nothing selected: use --attendance, --students, --uploads or --all")
	}

	cfg := config.Load()
	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pool.Close()

	ctx := context.Background()
	attendance := postgres.NewAttendanceRepository(pool)
	students := postgres.NewStudentRepository(pool)

	up, err := uploads.New(cfg.Uploads.Dir)
	if err != nil {
		return fmt.Errorf("failed to open uploads directory: %w", err)
	}

	if err := printWipeStats(ctx, attendance, students, up); err != nil {
		return err
	}

	if !mustGetBool(cmd, "yes") && !confirm() {
		fmt.Println("Aborted.")
		return nil
	}

	if wipeAttendance {
		n, err := attendance.DeleteAllLogs(ctx)
		if err != nil {
			return fmt.Errorf("failed to delete attendance logs: %w", err)
		}
		fmt.Printf("Deleted %d attendance logs\n", n)
	}

	if wipeStudents {
		n, err := students.DeleteAllStudents(ctx)
		if err != nil {
			return fmt.Errorf("failed to delete students: %w", err)
		}
		fmt.Printf("Deleted %d students\n", n)
	}

	if wipeUploads {
		if err := deleteUploads(up); err != nil {
			return err
		}
	}

	fmt.Println("Done.")
	return nil
}

func printWipeStats(ctx context.Context, attendance *postgres.AttendanceRepository,
	students *postgres.StudentRepository, up *uploads.Store) error {
	stats, err := attendance.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read attendance stats: %w", err)
	}
	registered, err := students.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list students: %w", err)
	}
	images, err := up.List()
	if err != nil {
		return fmt.Errorf("failed to list uploads: %w", err)
	}

	fmt.Println("Current data:")
	fmt.Printf("  Attendance logs:     %d\n", stats.TotalLogs)
	fmt.Printf("  Registered students: %d\n", len(registered))
	fmt.Printf("  Captured images:     %d\n", len(images))
	return nil
}

func confirm() bool {
	fmt.Print("This cannot be undone. Type 'yes' to continue: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(line) == "yes"
}

func deleteUploads(up *uploads.Store) error {
	images, err := up.List()
	if err != nil {
		return fmt.Errorf("failed to list uploads: %w", err)
	}
	if len(images) == 0 {
		fmt.Println("No captured images to delete")
		return nil
	}

	bar := progressbar.NewOptions(len(images),
		progressbar.OptionSetDescription("Deleting images"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
	)
	deleted := 0
	for _, name := range images {
		if err := up.Remove(name); err != nil {
			fmt.Printf("\nWarning: failed to delete %s: %v\n", name, err)
			continue
		}
		deleted++
		bar.Add(1)
	}
	fmt.Printf("\nDeleted %d captured images\n", deleted)
	return nil
}
