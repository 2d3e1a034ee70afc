package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"fideliza/internal/config"
	"fideliza/internal/domain"
	"fideliza/internal/domain/model"
	"fideliza/internal/domain/ports/repository"
	"fideliza/internal/infra/api/apiv1"
	pg "fideliza/internal/infra/db/postgres"
	"fideliza/internal/infra/logging"
	"fideliza/internal/usecase"
)

// Fixed ids keep the seed idempotent.
const (
	ownerID      = "seed-owner"
	staffID      = "seed-staff"
	customerID   = "seed-customer"
	restaurantID = "seed-restaurant"
	placeID      = "seed-place"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("load config")
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := pg.RunMigrations(cfg.Database.URL, logger); err != nil {
		logger.Fatal().Err(err).Msg("migrations")
	}
	pool, err := pg.NewPgxPool(ctx, pg.PoolConfig{URL: cfg.Database.URL, MaxConns: 4})
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	users := pg.NewPostgresUserRepo(pool)
	places := pg.NewPlaceRepo(pool)
	planUC := usecase.NewPlanUseCase(pg.NewPlanRepo(pool), places, logger)

	owner := domain.Actor{UserID: ownerID, Email: "owner@fideliza.test", Role: domain.RoleOwner}
	staffOwner := ownerID
	staff := domain.Actor{UserID: staffID, Email: "staff@fideliza.test", Role: domain.RoleStaff, OwnerID: &staffOwner}
	customer := domain.Actor{UserID: customerID, Email: "customer@fideliza.test", Role: domain.RoleCustomer}

	for _, a := range []struct {
		actor domain.Actor
		name  string
	}{
		{owner, "Owner"},
		{staff, "Staff"},
		{customer, "Customer"},
	} {
		u, err := model.NewUser(a.actor.UserID, a.actor.Email, a.name, a.actor.Role)
		if err != nil {
			logger.Fatal().Err(err).Str("email", a.actor.Email).Msg("user")
		}
		u.OwnerID = a.actor.OwnerID
		if err := users.Save(ctx, repository.NoTX, u); err != nil {
			logger.Fatal().Err(err).Str("email", u.Email).Msg("save user")
		}
	}

	if err := places.SaveRestaurant(ctx, repository.NoTX, &model.Restaurant{ID: restaurantID, OwnerID: ownerID, Name: "Casa Fideliza"}); err != nil {
		logger.Fatal().Err(err).Msg("save restaurant")
	}
	if err := places.Save(ctx, repository.NoTX, &model.Place{
		ID:           placeID,
		RestaurantID: restaurantID,
		OwnerID:      ownerID,
		Name:         "Casa Fideliza Centro",
		Address:      "Rua Augusta 100",
	}); err != nil {
		logger.Fatal().Err(err).Msg("save place")
	}

	plans, err := planUC.ListByPlace(ctx, placeID)
	if err != nil {
		logger.Fatal().Err(err).Msg("list plans")
	}
	if len(plans) == 0 {
		seed := []usecase.PlanInput{
			{PlaceID: placeID, Name: "Coffee Club", Benefits: "One coffee per visit", Price: decimal.RequireFromString("25.00"), Visits: 4},
			{PlaceID: placeID, Name: "Lunch Pass", Benefits: "Daily menu", Price: decimal.RequireFromString("120.00"), Visits: 10},
		}
		for _, in := range seed {
			p, err := planUC.Create(ctx, owner, in)
			if err != nil {
				logger.Fatal().Err(err).Str("plan", in.Name).Msg("create plan")
			}
			plans = append(plans, p)
		}
	}

	fmt.Printf("place %s\n", placeID)
	for _, p := range plans {
		fmt.Printf("  plan %s: %s, %s, %d visits\n", p.ID, p.Name, p.Price.StringFixed(2), p.Visits)
	}

	auth := apiv1.NewAuthManager(cfg.Auth.Secret, cfg.Auth.CookieName, cfg.Auth.Issuer)
	for _, a := range []domain.Actor{owner, staff, customer} {
		tok, err := auth.Mint(a, 24*time.Hour)
		if err != nil {
			logger.Fatal().Err(err).Msg("mint token")
		}
		fmt.Printf("%-8s %s\n", a.Role, tok)
	}
}
