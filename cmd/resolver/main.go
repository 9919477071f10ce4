package main

import (
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/muni-codes/internal/config"
	"github.com/muni-codes/internal/db"
	"github.com/muni-codes/internal/engine"
	"github.com/muni-codes/internal/importer"
	"github.com/muni-codes/internal/registry"
)

var (
	// Global database connection
	dbConn *db.Connection
)

func main() {
	config.LoadEnv()

	var err error
	dbConn, err = db.NewConnection()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbConn.Close()

	rootCmd := &cobra.Command{
		Use:   "resolver",
		Short: "Municipality code resolution engine",
		Long:  `Resolves raw municipality names from SEPE data files against the INE registry`,
	}

	rootCmd.AddCommand(createPingCmd())
	rootCmd.AddCommand(createDBCmd())
	rootCmd.AddCommand(createImportCmd())
	rootCmd.AddCommand(createValidateCmd())
	rootCmd.AddCommand(createResolveCmd())
	rootCmd.AddCommand(createStatsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// createPingCmd creates a command to test database connectivity
func createPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Test database connectivity",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Database connection successful!")

			var count int
			err := dbConn.DB.QueryRow("SELECT COUNT(*) FROM ine_municipality").Scan(&count)
			if err != nil {
				log.Printf("Error counting ine_municipality records: %v", err)
			} else {
				fmt.Printf("INE municipalities loaded: %d\n", count)
			}

			err = dbConn.DB.QueryRow("SELECT COUNT(*) FROM sepe_municipality_data").Scan(&count)
			if err != nil {
				log.Printf("Error counting sepe_municipality_data records: %v", err)
			} else {
				fmt.Printf("SEPE rows loaded: %d\n", count)
			}
		},
	}
}

// createDBCmd creates database management commands
func createDBCmd() *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database management",
	}

	dbCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Apply the database schema",
		Run: func(cmd *cobra.Command, args []string) {
			if err := dbConn.ApplySchemaFile("sql/01_schema.sql"); err != nil {
				log.Fatalf("Failed to apply schema: %v", err)
			}
			fmt.Println("Schema applied")
		},
	})

	return dbCmd
}

// createImportCmd creates the import subcommand
func createImportCmd() *cobra.Command {
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import reference and source data",
		Long:  `Import the INE municipality dictionary, the province mapping, and cleaned SEPE CSV files`,
	}

	importCmd.AddCommand(&cobra.Command{
		Use:   "registry [filename]",
		Short: "Import the INE municipality dictionary CSV",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := importer.New(dbConn.DB).ImportRegistry(args[0]); err != nil {
				log.Fatalf("Failed to import registry: %v", err)
			}
		},
	})

	importCmd.AddCommand(&cobra.Command{
		Use:   "provinces [filename]",
		Short: "Import the INE province mapping CSV",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := importer.New(dbConn.DB).ImportProvinces(args[0]); err != nil {
				log.Fatalf("Failed to import provinces: %v", err)
			}
		},
	})

	importCmd.AddCommand(&cobra.Command{
		Use:   "sepe [filename]",
		Short: "Import a cleaned SEPE municipality CSV",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := importer.New(dbConn.DB).ImportSEPE(args[0]); err != nil {
				log.Fatalf("Failed to import SEPE data: %v", err)
			}
		},
	})

	return importCmd
}

// createValidateCmd checks the loaded registry for consistency
func createValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the loaded INE registry",
		Long:  `Checks code ranges, orphaned municipalities, and province alias integrity`,
		Run: func(cmd *cobra.Command, args []string) {
			reg, err := registry.LoadFromDB(dbConn.DB)
			if err != nil {
				log.Fatalf("Failed to load registry: %v", err)
			}

			issues := reg.Validate()
			if len(issues) == 0 {
				fmt.Printf("Registry OK: %d municipalities, %d provinces\n", reg.Len(), len(reg.Provinces()))
				return
			}

			for _, issue := range issues {
				fmt.Println(issue)
			}
			fmt.Printf("\n%d issues found\n", len(issues))
			os.Exit(1)
		},
	}
}

// createResolveCmd runs the full resolution pipeline
func createResolveCmd() *cobra.Command {
	var runLabel string
	var workers int
	var minConfidence int

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Run municipality code resolution",
		Long:  `Resolves every distinct (name, province) key from the SEPE data through the method ladder and stores the results`,
		Run: func(cmd *cobra.Command, args []string) {
			resEngine := engine.NewResolutionEngine(dbConn.DB)

			summary, err := resEngine.RunResolution(runLabel, workers, minConfidence)
			if err != nil {
				log.Fatalf("Resolution failed: %v", err)
			}

			fmt.Printf("\n=== Resolution Results ===\n")
			fmt.Printf("Run ID: %d\n", summary.RunID)
			fmt.Printf("Total Processed: %d\n", summary.Processed)
			fmt.Printf("Resolved: %d\n", summary.Resolved)
			fmt.Printf("Unresolved: %d\n", summary.Unresolved)
			if summary.Processed > 0 {
				fmt.Printf("Coverage: %.2f%%\n", float64(summary.Resolved)/float64(summary.Processed)*100)
			}
			fmt.Printf("Elapsed: %s\n", summary.Elapsed.Round(10 * time.Millisecond))

			printMethodBreakdown(summary.ByMethod)
		},
	}

	cmd.Flags().StringVar(&runLabel, "label", "", "Label for this resolution run")
	cmd.Flags().IntVar(&workers, "workers", 4, "Number of parallel workers")
	cmd.Flags().IntVar(&minConfidence, "min-confidence", 70, "Minimum confidence for fuzzy matches")

	return cmd
}

// createStatsCmd reports coverage for a stored run
func createStatsCmd() *cobra.Command {
	var runID int64

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show resolution coverage by method",
		Run: func(cmd *cobra.Command, args []string) {
			resEngine := engine.NewResolutionEngine(dbConn.DB)

			coverage, err := resEngine.CoverageByMethod(runID)
			if err != nil {
				log.Fatalf("Failed to load coverage: %v", err)
			}
			if len(coverage) == 0 {
				fmt.Println("No resolution runs found")
				return
			}

			printMethodBreakdown(coverage)
		},
	}

	cmd.Flags().Int64Var(&runID, "run-id", 0, "Run to report on (default: latest)")

	return cmd
}

// printMethodBreakdown prints per-method counts, largest first.
func printMethodBreakdown(byMethod map[string]int) {
	methods := make([]string, 0, len(byMethod))
	total := 0
	for m, c := range byMethod {
		methods = append(methods, m)
		total += c
	}
	sort.Slice(methods, func(i, j int) bool {
		if byMethod[methods[i]] != byMethod[methods[j]] {
			return byMethod[methods[i]] > byMethod[methods[j]]
		}
		return methods[i] < methods[j]
	})

	fmt.Printf("\nBy method:\n")
	for _, m := range methods {
		count := byMethod[m]
		fmt.Printf("  %-20s %6d (%.2f%%)\n", m, count, float64(count)/float64(total)*100)
	}
}
