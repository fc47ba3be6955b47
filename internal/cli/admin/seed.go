package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/campushub/campushub/internal/config"
	"github.com/campushub/campushub/internal/database"
	"github.com/campushub/campushub/internal/domain"
	"github.com/campushub/campushub/internal/repository"
)

// SeedCmd returns the seed command
func SeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load reference universities",
		Long:  "Load the university catalogue from a JSON file into the database",
		RunE:  runSeed,
	}

	cmd.Flags().StringP("file", "f", "seed/universities.json", "Path to the universities JSON file")
	cmd.Flags().Bool("force", false, "Seed even when universities already exist")

	return cmd
}

type seedUniversity struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Country     string `json:"country"`
	City        string `json:"city"`
	Website     string `json:"website"`
	Description string `json:"description"`
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	repo := repository.NewUniversityRepository(pool)

	force, _ := cmd.Flags().GetBool("force")
	if !force {
		exists, err := repo.Exists(ctx)
		if err != nil {
			return fmt.Errorf("failed to check existing universities: %w", err)
		}
		if exists {
			log.Println("seed: universities already present, skipping (use --force to seed anyway)")
			return nil
		}
	}

	path, _ := cmd.Flags().GetString("file")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var entries []seedUniversity
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

	now := time.Now().UTC()
	for _, e := range entries {
		if e.Name == "" {
			return fmt.Errorf("seed entry without a name")
		}
		id := e.ID
		if id == "" {
			id = uuid.NewString()
		}
		u := &domain.University{
			ID:          id,
			Name:        e.Name,
			Country:     e.Country,
			City:        e.City,
			Website:     e.Website,
			Description: e.Description,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := repo.Create(ctx, u); err != nil {
			return fmt.Errorf("failed to insert university %q: %w", e.Name, err)
		}
	}

	log.Printf("seed: loaded %d universities", len(entries))
	return nil
}
