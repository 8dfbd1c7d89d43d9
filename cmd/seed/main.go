package main

import (
	"context"
	"errors"
	"flag"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"aloka/internal/config"
	"aloka/internal/database"
	"aloka/internal/domain"
	"aloka/internal/pkg/logger"
	"aloka/internal/repository"
)

const (
	demoEmail    = "videographer@aloka.dev"
	demoPassword = "aloka123"
)

func main() {
	reset := flag.Bool("reset", false, "delete existing studios before seeding")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		l := logger.Base()
		l.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Configure(logger.Config{Level: cfg.LogLevel, Pretty: true})
	log := logger.WithComponent("seed")

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("DB connection failed")
	}
	defer func() { _ = database.Close(db) }()

	log.Info().Msg("running migrations")
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("AutoMigrate failed")
	}

	ctx := context.Background()

	if *reset {
		log.Info().Msg("cleaning old studios")
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(&domain.Studio{}).Error; err != nil {
			log.Fatal().Err(err).Msg("cleanup failed")
		}
	}

	users := repository.NewUserRepository(db)
	if _, err := users.GetByEmail(ctx, demoEmail); errors.Is(err, gorm.ErrRecordNotFound) {
		hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal().Err(err).Msg("hash password")
		}
		if err := users.Create(ctx, &domain.User{
			Name:         "Demo Videographer",
			Email:        demoEmail,
			PasswordHash: string(hash),
			Role:         domain.RoleVideographer,
		}); err != nil {
			log.Fatal().Err(err).Msg("create demo account")
		}
		log.Info().Str("email", demoEmail).Msg("demo account created")
	} else if err != nil {
		log.Fatal().Err(err).Msg("lookup demo account")
	}

	studios := repository.NewStudioRepository(db)
	for _, s := range sampleStudios() {
		if err := studios.Create(ctx, &s); err != nil {
			log.Fatal().Err(err).Str("studio", s.StudioName).Msg("create studio")
		}
	}

	log.Info().Int("studios", len(sampleStudios())).Msg("seed completed")
}

func sampleStudios() []domain.Studio {
	return []domain.Studio{
		{
			StudioName:    "Lakeside Sound Stage",
			Description:   "Two-wall cyclorama with a full green screen kit and drive-in loading.",
			Address:       "1200 Lake Austin Blvd",
			Location:      domain.Location{City: "Austin", State: "TX", ZipCode: "78703"},
			PerHourCharge: 150,
			MaxDistance:   40,
			Rating:        4.8,
			Services:      []string{"Lighting", "Green screen", "Grip crew"},
			Equipment: []domain.Equipment{
				{Name: "ARRI SkyPanel S60", Brand: "ARRI"},
				{Name: "FX6", Brand: "Sony", Model: "ILME-FX6V"},
			},
			Images:   []domain.Image{{URL: "https://images.aloka.dev/lakeside.jpg", Caption: "Main stage"}},
			IsActive: true,
		},
		{
			StudioName:    "Brick Lane Podcast Room",
			Description:   "Acoustically treated room for podcasts and interviews, three camera angles.",
			Address:       "88 Brick Ln",
			Location:      domain.Location{City: "Brooklyn", State: "NY", ZipCode: "11211"},
			PerHourCharge: 65,
			MaxDistance:   15,
			Rating:        4.5,
			Services:      []string{"Podcast recording", "Editing"},
			Equipment:     []domain.Equipment{{Name: "SM7B", Brand: "Shure"}},
			Images:        []domain.Image{},
			IsActive:      true,
		},
		{
			StudioName:    "Sunset Loft",
			Description:   "Daylight loft with west-facing windows, ideal for portrait and product video.",
			Address:       "455 N Fairfax Ave",
			Location:      domain.Location{City: "Los Angeles", State: "CA", ZipCode: "90036"},
			PerHourCharge: 95,
			MaxDistance:   domain.DefaultMaxDistance,
			Rating:        4.1,
			Services:      []string{"Natural light", "Styling"},
			Equipment:     []domain.Equipment{},
			Images:        []domain.Image{{URL: "https://images.aloka.dev/sunset-loft.jpg"}},
			IsActive:      true,
		},
		{
			StudioName:    "Riverside Black Box",
			Description:   "Black box theatre available for music videos and multi-cam shoots.",
			Address:       "20 Riverside Dr",
			Location:      domain.Location{City: "Austin", State: "TX", ZipCode: "78704"},
			PerHourCharge: 120,
			MaxDistance:   60,
			Rating:        3.9,
			Services:      []string{"Multi-cam", "Live switching"},
			Equipment:     []domain.Equipment{{Name: "ATEM Mini Pro", Brand: "Blackmagic"}},
			Images:        []domain.Image{},
			IsActive:      false,
		},
	}
}
