package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"shareit/internal/database"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Fixtures is the layout of the seed file.
type Fixtures struct {
	Users []UserFixture `yaml:"users"`
	Items []ItemFixture `yaml:"items"`
}

type UserFixture struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

type ItemFixture struct {
	OwnerEmail  string `yaml:"owner_email"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Available   bool   `yaml:"available"`
}

type stats struct {
	usersCreated int
	itemsCreated int
	itemsUpdated int
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		fixturesPath = flag.String("fixtures", "configs/fixtures.yaml", "path to fixtures.yaml")
		dbPath       = flag.String("db", "./data/shareit.db", "path to sqlite db")
	)
	flag.Parse()

	fixtures, err := loadFixtures(*fixturesPath)
	if err != nil {
		return err
	}

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, err := seed(ctx, db, fixtures)
	if err != nil {
		return err
	}

	logger.Info().
		Int("users_created", st.usersCreated).
		Int("items_created", st.itemsCreated).
		Int("items_updated", st.itemsUpdated).
		Msg("seed done")
	return nil
}

func loadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	if len(f.Users) == 0 && len(f.Items) == 0 {
		return nil, errors.New("no users or items in fixtures")
	}
	return &f, nil
}

// seed is idempotent: users match by email, items by name within the owner.
func seed(ctx context.Context, db *database.DB, f *Fixtures) (stats, error) {
	var st stats

	for _, u := range f.Users {
		if u.Email == "" {
			continue
		}
		_, err := db.GetUserByEmail(ctx, u.Email)
		if err == nil {
			continue
		}
		if !errors.Is(err, database.ErrNotFound) {
			return st, fmt.Errorf("get user %s: %w", u.Email, err)
		}
		if err := db.CreateUser(ctx, &models.User{Name: u.Name, Email: u.Email}); err != nil {
			return st, fmt.Errorf("create user %s: %w", u.Email, err)
		}
		st.usersCreated++
	}

	for _, it := range f.Items {
		if it.Name == "" {
			continue
		}
		owner, err := db.GetUserByEmail(ctx, it.OwnerEmail)
		if err != nil {
			return st, fmt.Errorf("owner %q of %s: %w", it.OwnerEmail, it.Name, err)
		}

		owned, err := db.GetItemsByOwner(ctx, owner.ID)
		if err != nil {
			return st, fmt.Errorf("items of %s: %w", it.OwnerEmail, err)
		}

		item := &models.Item{
			Name:        it.Name,
			Description: it.Description,
			Available:   it.Available,
			OwnerID:     owner.ID,
		}
		if existing := findByName(owned, it.Name); existing != nil {
			item.ID = existing.ID
			item.RequestID = existing.RequestID
			if err := db.UpdateItem(ctx, item); err != nil {
				return st, fmt.Errorf("update %s: %w", it.Name, err)
			}
			st.itemsUpdated++
			continue
		}
		if err := db.CreateItem(ctx, item); err != nil {
			return st, fmt.Errorf("create %s: %w", it.Name, err)
		}
		st.itemsCreated++
	}

	return st, nil
}

func findByName(items []*models.Item, name string) *models.Item {
	for _, it := range items {
		if it.Name == name {
			return it
		}
	}
	return nil
}
