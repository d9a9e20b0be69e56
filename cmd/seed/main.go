// Package main provides a tool to seed the database with demo data.
//
// It creates a handful of users, projects, and text entries with timestamps
// spread over the past weeks, so the feed, category filters, and activity
// heatmap have something to show during development.
//
// Usage:
//
//	DATA_PATH=~/kakera go run ./cmd/seed
//	DATA_PATH=~/kakera go run ./cmd/seed --days 90
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/kakera-app/kakera-server/internal/auth"
	"github.com/kakera-app/kakera-server/internal/domain"
	"github.com/kakera-app/kakera-server/internal/id"
	"github.com/kakera-app/kakera-server/internal/store/sqlite"
)

var days = flag.Int("days", 60, "Spread entry timestamps over this many past days")

var demoUsers = []struct {
	email       string
	displayName string
}{
	{"aki@example.com", "Aki"},
	{"mori@example.com", "Mori"},
	{"hana@example.com", "Hana"},
}

var demoProjects = []struct {
	name        string
	description string
	categories  []string
}{
	{"Walnut Side Table", "Small table from offcuts", []string{"wood-work", "finishing"}},
	{"Gundam MG Freedom", "Master grade kit, panel lined", []string{"assembly", "painting"}},
	{"Sourdough Starter", "Day-by-day fermentation notes", []string{"feeding", "baking"}},
}

var demoNotes = []string{
	"Rough cut the main pieces today.",
	"Dry fit looks good, small gap on one joint.",
	"First coat of finish applied.",
	"Sanded everything to 220 grit.",
	"Took progress photos before glue-up.",
	"Small setback, had to redo one section.",
	"Finally past the fiddly part.",
	"Done for today, happy with the result.",
}

var demoColors = []string{"#ff8800", "#3366cc", "#22aa66", ""}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/kakera")
	}
	dbPath := filepath.Join(dataPath, "kakera.db")

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := sqlite.Open(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for _, du := range demoUsers {
		user, err := ensureUser(ctx, s, du.email, du.displayName)
		if err != nil {
			log.Fatalf("Failed to create user %s: %v", du.email, err)
		}
		fmt.Printf("\nSeeding data for user: %s (%s)\n", user.DisplayName, user.ID)

		for _, dp := range demoProjects {
			project := &domain.Project{
				Entity:      newEntity("proj"),
				Name:        dp.name,
				Description: dp.description,
				UserID:      user.ID,
				ShareID:     id.MustGenerate("share"),
			}
			if err := s.CreateProject(ctx, project); err != nil {
				log.Printf("Failed to create project %q: %v", dp.name, err)
				continue
			}

			count := 4 + rng.Intn(8)
			for range count {
				ts := time.Now().AddDate(0, 0, -rng.Intn(*days)).
					Add(-time.Duration(rng.Intn(12)) * time.Hour)

				entry := &domain.Entry{
					Entity:    newEntity("entry"),
					ProjectID: project.ID,
					UserID:    user.ID,
					Type:      domain.EntryTypeText,
					Notes:     demoNotes[rng.Intn(len(demoNotes))],
					Timestamp: ts,
					IsPublic:  rng.Intn(3) == 0,
					Category:  dp.categories[rng.Intn(len(dp.categories))],
					Color:     demoColors[rng.Intn(len(demoColors))],
				}
				if err := s.CreateEntry(ctx, entry); err != nil {
					log.Printf("Failed to create entry: %v", err)
				}
			}
			fmt.Printf("  %s: %d entries\n", project.Name, count)
		}
	}

	fmt.Println("\nDone.")
}

func ensureUser(ctx context.Context, s *sqlite.Store, email, displayName string) (*domain.User, error) {
	if existing, err := s.GetUserByEmail(ctx, email); err == nil {
		return existing, nil
	}

	hash, err := auth.HashPassword("password123")
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Entity:       newEntity("user"),
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
		Status:       domain.UserStatusActive,
	}
	if err := s.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func newEntity(prefix string) domain.Entity {
	now := time.Now()
	return domain.Entity{
		ID:        id.MustGenerate(prefix),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
