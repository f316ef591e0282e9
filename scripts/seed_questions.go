// Seed script for a local development database.
//
// Creates an admin account, one paper with two sections, a question pool
// spread over the three difficulty tiers and a template that draws from both
// sections.
//
// Usage: go run scripts/seed_questions.go

package main

import (
	"cbt_backend/internal/config"
	"cbt_backend/internal/model"
	"cbt_backend/pkg/database"
	"cbt_backend/pkg/logger"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin12345"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	admin := model.User{
		Email:         "admin@example.com",
		Password:      string(hash),
		FirstName:     "Admin",
		Role:          model.Admin,
		IsActive:      true,
		IsWhitelisted: true,
	}
	if err := db.Where("email = ?", admin.Email).FirstOrCreate(&admin).Error; err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}

	paper := model.Paper{Name: "General Knowledge", Description: "Seed paper for local development"}
	if err := db.Where("name = ?", paper.Name).FirstOrCreate(&paper).Error; err != nil {
		log.Fatalf("Failed to create paper: %v", err)
	}

	sections := []model.Section{
		{PaperID: paper.ID, Name: "Mathematics"},
		{PaperID: paper.ID, Name: "Science"},
	}
	for i := range sections {
		if err := db.Where("paper_id = ? AND name = ?", paper.ID, sections[i].Name).FirstOrCreate(&sections[i]).Error; err != nil {
			log.Fatalf("Failed to create section: %v", err)
		}
	}

	tiers := []model.DifficultyTier{model.TierEasy, model.TierMedium, model.TierHard}
	validUntil := time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	created := 0
	for _, section := range sections {
		for _, tier := range tiers {
			for n := 1; n <= 5; n++ {
				sectionID := section.ID
				q := model.Question{
					PaperID:            paper.ID,
					SectionID:          &sectionID,
					Text:               fmt.Sprintf("%s %s question %d", section.Name, tier, n),
					Difficulty:         tier,
					CorrectOptionIndex: 0,
					ValidFrom:          time.Now(),
					ValidUntil:         validUntil,
					Options: []model.QuestionOption{
						{OptionOrder: 0, Text: "Correct answer"},
						{OptionOrder: 1, Text: "Distractor A"},
						{OptionOrder: 2, Text: "Distractor B"},
						{OptionOrder: 3, Text: "Distractor C"},
					},
				}
				if err := db.Where("paper_id = ? AND text = ?", paper.ID, q.Text).FirstOrCreate(&q).Error; err != nil {
					log.Fatalf("Failed to create question: %v", err)
				}
				created++
			}
		}
	}

	mathID := sections[0].ID
	scienceID := sections[1].ID
	tpl := model.TestTemplate{
		Name:        "Mixed Practice",
		Description: "Five questions from each seeded section",
		CreatorID:   admin.ID,
		IsActive:    true,
		Sections: []model.TestTemplateSection{
			{PaperID: paper.ID, SectionID: &mathID, QuestionCount: 5, SectionOrder: 0},
			{PaperID: paper.ID, SectionID: &scienceID, QuestionCount: 5, SectionOrder: 1},
		},
	}
	if err := db.Where("name = ?", tpl.Name).FirstOrCreate(&tpl).Error; err != nil {
		log.Fatalf("Failed to create template: %v", err)
	}

	log.Printf("Seed complete: %d questions across %d sections", created, len(sections))
}
