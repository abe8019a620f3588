package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/cafefinder/gateway/internal/domain/entities"
	"github.com/cafefinder/gateway/internal/infrastructure/clients/cafeapi"
	"github.com/cafefinder/gateway/pkg/config"
)

// Seeds the upstream API with demo accounts, reviews and busy reports so a
// fresh local stack has something to render. The gateway itself stores only
// sessions, so all data goes through the upstream write endpoints.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	client := cafeapi.NewClient(cfg.API.BaseURL)
	ctx := context.Background()

	if err := client.Health(ctx); err != nil {
		log.Fatalf("Upstream API at %s is not reachable: %v", cfg.API.BaseURL, err)
	}

	// 1. Demo accounts. Registration conflicts are fine on reruns.
	usernames := []string{"demo-ava", "demo-ben", "demo-chloe"}
	sessions := make([]*entities.Session, 0, len(usernames))
	for _, username := range usernames {
		err := client.Register(ctx, cafeapi.RegisterRequest{
			Username: username,
			Email:    username + "@cafefinder.local",
			Password: "demo-password",
		})
		if err != nil {
			log.Printf("Register %s: %v (continuing, account may exist)", username, err)
		}

		resp, err := client.Login(ctx, username, "demo-password")
		if err != nil {
			log.Printf("Login %s failed, skipping: %v", username, err)
			continue
		}
		sessions = append(sessions, &entities.Session{
			ID:    "seed-" + username,
			Token: resp.Token,
			User: entities.User{
				ID:       resp.ID,
				Username: resp.Username,
				Email:    resp.Email,
				Roles:    resp.Roles,
			},
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		})
	}
	if len(sessions) == 0 {
		log.Fatal("No demo account could sign in, nothing to seed")
	}

	cafes, err := client.SearchCafes(ctx, entities.SearchFilter{Query: "coffee"})
	if err != nil {
		log.Fatalf("Failed to list cafes: %v", err)
	}
	if len(cafes) == 0 {
		log.Fatal("Upstream has no cafes to seed against")
	}
	log.Printf("Seeding against %d cafes with %d accounts", len(cafes), len(sessions))

	// 2. Reviews. These land in the moderation queue as PENDING.
	texts := []string{
		"Great pour over and plenty of outlets.",
		"Espresso was solid but seating fills up fast.",
		"Quiet in the mornings, good spot to work.",
	}
	reviewCount := 0
	for i, cafe := range cafes {
		session := sessions[i%len(sessions)]
		coffee := 3 + rand.Intn(3)
		review := &entities.Review{
			CafeID:        cafe.ID,
			OverallRating: 3 + rand.Intn(3),
			CoffeeRating:  &coffee,
			Text:          texts[i%len(texts)],
			Wifi:          entities.TriYes,
			Seating:       entities.TriYes,
		}
		if _, err := client.SubmitReview(ctx, session, review); err != nil {
			log.Printf("Review for %s: %v", cafe.Name, err)
			continue
		}
		reviewCount++
	}

	// 3. A burst of busy reports per cafe so the histogram has data. The
	// upstream timestamps reports itself, so reruns on different days are
	// what spreads them across the week.
	reportCount := 0
	for _, cafe := range cafes {
		for i := 0; i < 6; i++ {
			session := sessions[i%len(sessions)]
			level := 25 + rand.Intn(60)
			wait := 2 + rand.Intn(12)
			_, err := client.SubmitBusyReport(ctx, session, cafe.ID, level, &wait)
			if err != nil {
				log.Printf("Busy report for %s: %v", cafe.Name, err)
				continue
			}
			reportCount++
		}
	}

	fmt.Printf("Seeded %d reviews and %d busy reports across %d cafes\n",
		reviewCount, reportCount, len(cafes))
}
