package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"staybook/internal/config"
	"staybook/internal/database"
	"staybook/internal/domain"
	"staybook/internal/domain/user"
	"staybook/internal/pkg/logger"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var defaultFacilities = []struct{ name, icon string }{
	{"WiFi", "wifi"},
	{"Kitchen", "kitchen"},
	{"Parking", "local_parking"},
	{"Air conditioning", "ac_unit"},
	{"Heating", "thermostat"},
	{"Washing machine", "local_laundry_service"},
	{"TV", "tv"},
	{"Pool", "pool"},
	{"Workspace", "desk"},
	{"Pets allowed", "pets"},
}

func main() {
	demo := flag.Bool("demo", false, "also create a demo host with sample properties")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := logger.New(cfg.AppEnv, cfg.LogLevel)

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	if err := database.Migrate(db, log); err != nil {
		log.WithError(err).Fatal("migration failed")
	}

	if err := seedFacilities(db); err != nil {
		log.WithError(err).Fatal("seeding facilities failed")
	}
	log.WithField("count", len(defaultFacilities)).Info("facilities ready")

	email := strings.ToLower(getEnv("SEED_ADMIN_EMAIL", "admin@staybook.local"))
	password := getEnv("SEED_ADMIN_PASSWORD", "admin123")
	if cfg.IsProduction() && password == "admin123" {
		log.Fatal("SEED_ADMIN_PASSWORD must be set in production")
	}
	if err := seedUser(db, "Administrator", email, password, true); err != nil {
		log.WithError(err).Fatal("seeding admin failed")
	}
	log.WithField("email", email).Info("admin ready")

	if *demo {
		if err := seedDemo(db); err != nil {
			log.WithError(err).Fatal("seeding demo data failed")
		}
		log.Info("demo host ready: host@staybook.local / host123")
	}
}

func seedFacilities(db *gorm.DB) error {
	for _, f := range defaultFacilities {
		err := db.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&database.FacilityModel{Name: f.name, Icon: f.icon}).Error
		if err != nil {
			return fmt.Errorf("facility %q: %w", f.name, err)
		}
	}
	return nil
}

// seedUser creates the account or, if the email exists, leaves it alone
// apart from the admin flag.
func seedUser(db *gorm.DB, name, email, password string, isAdmin bool) error {
	var existing database.UserModel
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		if isAdmin && !existing.IsAdmin {
			return db.Model(&existing).Update("is_admin", true).Error
		}
		return nil
	}
	if !database.IsNotFound(err) {
		return err
	}

	hash, err := user.HashPassword(password)
	if err != nil {
		return err
	}
	return db.Create(&database.UserModel{Name: name, Email: email, PasswordHash: hash, IsAdmin: isAdmin}).Error
}

func seedDemo(db *gorm.DB) error {
	if err := seedUser(db, "Demo Host", "host@staybook.local", "host123", false); err != nil {
		return err
	}
	var host database.UserModel
	if err := db.Where("email = ?", "host@staybook.local").First(&host).Error; err != nil {
		return err
	}

	var n int64
	if err := db.Model(&database.PropertyModel{}).Where("host_id = ?", host.ID).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	cities := []string{"Lisbon", "Berlin", "Oslo", "Porto", "Vienna"}
	return db.Transaction(func(tx *gorm.DB) error {
		for i, pt := range []domain.PropertyType{domain.PropertyHouse, domain.PropertyFlat, domain.PropertyRoom} {
			p := database.PropertyModel{
				HostID:       host.ID,
				Title:        fmt.Sprintf("Demo %s %d", strings.ToLower(string(pt)), i+1),
				Description:  "Sample listing created by the seeder.",
				City:         cities[rand.Intn(len(cities))],
				Country:      "Europe",
				RentPerDay:   float64(40 + rand.Intn(160)),
				MaxGuests:    2 + rand.Intn(5),
				PropertyType: string(pt),
			}
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
			var details any
			switch pt {
			case domain.PropertyHouse:
				details = &database.HouseModel{PropertyID: p.ID, TotalBedrooms: 3}
			case domain.PropertyFlat:
				details = &database.FlatModel{PropertyID: p.ID, TotalRooms: 2}
			default:
				details = &database.RoomModel{PropertyID: p.ID, TotalBeds: 1}
			}
			if err := tx.Create(details).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
