//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fideliza/internal/domain"
	"fideliza/internal/domain/model"
	"fideliza/internal/domain/ports/repository"
)

type fixture struct {
	owner    *model.User
	customer *model.User
	place    *model.Place
	plan     *model.SubscriptionPlan
	sub      *model.UserSubscription
}

// seedFixture inserts an owner with one place, one plan and one active
// customer subscription.
func seedFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	users := NewPostgresUserRepo(testPool)
	places := NewPlaceRepo(testPool)
	plans := NewPlanRepo(testPool)
	subs := NewSubscriptionRepo(testPool)

	owner, _ := model.NewUser("", "owner-"+uuid.NewString()[:8]+"@example.com", "Owner", domain.RoleOwner)
	customer, _ := model.NewUser("", "cust-"+uuid.NewString()[:8]+"@example.com", "Ana", domain.RoleCustomer)
	for _, u := range []*model.User{owner, customer} {
		if err := users.Save(ctx, repository.NoTX, u); err != nil {
			t.Fatalf("save user: %v", err)
		}
	}
	rest := &model.Restaurant{ID: uuid.NewString(), OwnerID: owner.ID, Name: "Casa"}
	if err := places.SaveRestaurant(ctx, repository.NoTX, rest); err != nil {
		t.Fatalf("save restaurant: %v", err)
	}
	place := &model.Place{ID: uuid.NewString(), RestaurantID: rest.ID, OwnerID: owner.ID, Name: "Casa Centro"}
	if err := places.Save(ctx, repository.NoTX, place); err != nil {
		t.Fatalf("save place: %v", err)
	}
	plan, _ := model.NewSubscriptionPlan(uuid.NewString(), place.ID, "Lunch Club", "1 lunch per visit", decimal.RequireFromString("25.00"), 4)
	if err := plans.Save(ctx, repository.NoTX, plan); err != nil {
		t.Fatalf("save plan: %v", err)
	}
	sub, _ := model.NewUserSubscription(uuid.NewString(), customer.ID, place.ID, plan, time.Now().UTC().Truncate(time.Microsecond))
	if err := subs.Save(ctx, repository.NoTX, sub); err != nil {
		t.Fatalf("save subscription: %v", err)
	}
	return fixture{owner: owner, customer: customer, place: place, plan: plan, sub: sub}
}
