package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jnitin/flask-catalog/internal/config"
	"github.com/jnitin/flask-catalog/internal/ids"
	"github.com/jnitin/flask-catalog/internal/models"
	"github.com/jnitin/flask-catalog/internal/repository"
)

// SeedRoles creates or updates the fixed roles so that their permission
// masks and default flags match models.DefaultRoles.
func SeedRoles(ctx context.Context, roles RoleStore) error {
	for _, def := range models.DefaultRoles {
		role := models.Role{Name: def.Name, Default: def.Default}
		role.ResetPermissions()
		for _, perm := range def.Permissions {
			role.AddPermission(perm)
		}
		if _, err := roles.Upsert(ctx, role); err != nil {
			return fmt.Errorf("seed role %s: %w", def.Name, err)
		}
	}
	return nil
}

// SeedAccounts creates the configured administrator, user manager and user.
// Existing emails are left alone and entries without a password are skipped.
func SeedAccounts(ctx context.Context, accounts AccountStore, roles RoleStore, cfg config.SeedConfig, log zerolog.Logger) error {
	seeds := []struct {
		role    string
		account config.SeedAccount
	}{
		{models.RoleAdministrator, cfg.Admin},
		{models.RoleUsermanager, cfg.UserManager},
		{models.RoleUser, cfg.User},
	}

	for _, seed := range seeds {
		if seed.account.Email == "" || seed.account.Password == "" {
			log.Warn().Str("role", seed.role).Msg("seed account has no email or password, skipping")
			continue
		}

		_, err := accounts.FindByEmail(ctx, seed.account.Email)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrAccountNotFound) {
			return err
		}

		role, err := roles.GetByName(ctx, seed.role)
		if err != nil {
			return fmt.Errorf("seed account role %s: %w", seed.role, err)
		}

		account := models.Account{
			ID:        ids.New(),
			Email:     seed.account.Email,
			FirstName: seed.account.FirstName,
			LastName:  seed.account.LastName,
			Confirmed: true,
			Role:      role,
		}
		if err := account.SetPassword(seed.account.Password); err != nil {
			return err
		}
		if err := accounts.Create(ctx, account); err != nil {
			return fmt.Errorf("seed account %s: %w", seed.account.Email, err)
		}
		log.Info().Str("email", account.Email).Str("role", seed.role).Msg("seeded account")
	}
	return nil
}

type seedCategory struct {
	name  string
	items []seedItem
}

type seedItem struct {
	name        string
	description string
}

var defaultCatalog = []seedCategory{
	{
		name: "American Amber / Red Ale",
		items: []seedItem{
			{"Fat Tire Amber Ale", "Made by New Belgium Brewing"},
			{"Nugget Nectar", "Made by Tröegs Brewing Company"},
			{"Hop Head Red Ale", "Made by Green Flash Brewing Co."},
			{"Flipside Red IPA", "Made by Sierra Nevada Brewing Co."},
			{"Censored", "Made by Lagunitas Brewing Company"},
		},
	},
	{
		name: "American Barleywine",
		items: []seedItem{
			{"Bigfoot Barleywine-Style Ale", "Made by Sierra Nevada Brewing Co."},
			{"Third Coast Old Ale", "Made by Bell's Brewery"},
			{"Olde School Barleywine", "Made by Dogfish Head Craft Brewery"},
			{"Old Ruffian Barley Wine", "Made by Great Divide Brewing Company"},
		},
	},
}

// SeedCatalog gives the configured ordinary user a demo catalog. Nothing is
// created when that user is missing or already owns a category.
func SeedCatalog(ctx context.Context, accounts AccountStore, categories CategoryStore, items ItemStore, cfg config.SeedConfig, log zerolog.Logger) error {
	if cfg.User.Email == "" {
		return nil
	}
	owner, err := accounts.FindByEmail(ctx, cfg.User.Email)
	if errors.Is(err, repository.ErrAccountNotFound) {
		log.Warn().Str("email", cfg.User.Email).Msg("seed user missing, skipping demo catalog")
		return nil
	}
	if err != nil {
		return err
	}

	owned, err := categories.List(ctx, repository.CategoryFilter{OwnerID: owner.ID, Page: repository.Page{Limit: 1}})
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	if len(owned) > 0 {
		return nil
	}

	created := 0
	for _, seed := range defaultCatalog {
		category := models.Category{ID: ids.New(), Name: seed.name, OwnerID: owner.ID}
		if err := categories.Create(ctx, category); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				log.Warn().Str("category", seed.name).Msg("seed category name taken, skipping")
				continue
			}
			return fmt.Errorf("seed category %q: %w", seed.name, err)
		}
		for _, it := range seed.items {
			item := models.Item{
				ID:          ids.New(),
				Name:        it.name,
				Description: it.description,
				OwnerID:     owner.ID,
				CategoryID:  category.ID,
			}
			err := items.Create(ctx, item)
			switch {
			case err == nil:
				created++
			case !errors.Is(err, repository.ErrDuplicate):
				return fmt.Errorf("seed item %q: %w", it.name, err)
			}
		}
	}
	log.Info().Str("owner", owner.Email).Int("items", created).Msg("seeded demo catalog")
	return nil
}
