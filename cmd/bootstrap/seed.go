package bootstrap

import (
	"context"
	"fmt"
	"time"

	"pulsebridge-consult/internal/domain/entity"
	"pulsebridge-consult/internal/repository"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var seedSpecialties = []string{
	"Cardiology",
	"Dermatology",
	"General Practice",
	"Neurology",
	"Pediatrics",
	"Psychiatry",
	"Endocrinology",
	"Orthopedics",
}

// seedSlotStarts are the hourly consultation starts published for each
// seeded day.
var seedSlotStarts = []string{"09:00", "10:00", "11:00", "14:00", "15:00", "16:00"}

// SeedOptions sizes the development data set.
type SeedOptions struct {
	Doctors  int
	Patients int
	Days     int
}

// Seed fills an empty development database with approved doctors, their
// availability and patient accounts.
func (app *App) Seed(ctx context.Context, opts SeedOptions) error {
	gofakeit.Seed(time.Now().UnixNano())

	db := app.DB.WithContext(ctx)
	if err := app.seedDoctors(db, opts); err != nil {
		return fmt.Errorf("seed doctors: %w", err)
	}
	if err := app.seedPatients(db, opts.Patients); err != nil {
		return fmt.Errorf("seed patients: %w", err)
	}

	app.Log.Info("Seed complete")
	return nil
}

func (app *App) seedDoctors(db *gorm.DB, opts SeedOptions) error {
	app.Log.Infof("Seeding %d doctors with %d days of slots", opts.Doctors, opts.Days)

	userRepo := repository.NewUserRepository()
	doctorRepo := repository.NewDoctorProfileRepository()
	availabilityRepo := repository.NewAvailabilityRepository()
	loc := app.Config.App.Location()
	today := time.Now().In(loc)

	tx := db.Begin()
	defer tx.Rollback()

	for i := 0; i < opts.Doctors; i++ {
		wallet := fakeWallet()
		name := "Dr. " + gofakeit.Name()

		user := &entity.User{RoleID: entity.RoleIDDoctor, WalletAddress: wallet, DisplayName: name}
		if err := userRepo.Create(tx, user); err != nil {
			return err
		}

		verifiedAt := time.Now()
		profile := &entity.DoctorProfile{
			UserID:             &user.ID,
			WalletAddress:      wallet,
			Name:               name,
			Specialization:     seedSpecialties[gofakeit.Number(0, len(seedSpecialties)-1)],
			ProfileDescription: gofakeit.Sentence(12),
			Email:              gofakeit.Email(),
			ConsultationFee:    decimal.NewFromInt(int64(gofakeit.Number(20, 120))),
			FeeCurrency:        "USD",
			VerificationStatus: entity.VerificationApproved,
			VerifiedAt:         &verifiedAt,
		}
		if err := doctorRepo.Create(tx, profile); err != nil {
			return err
		}

		if err := availabilityRepo.Upsert(tx, &entity.DoctorAvailability{DoctorID: profile.ID, WalletAddress: wallet}); err != nil {
			return err
		}

		var slots []entity.TimeSlot
		for d := 1; d <= opts.Days; d++ {
			date := today.AddDate(0, 0, d).Format(entity.SlotDateLayout)
			for _, start := range seedSlotStarts {
				if !gofakeit.Bool() {
					continue
				}
				end, _ := time.Parse(entity.SlotTimeLayout, start)
				slots = append(slots, entity.TimeSlot{
					DoctorID:  profile.ID,
					Date:      date,
					StartTime: start,
					EndTime:   end.Add(time.Hour).Format(entity.SlotTimeLayout),
				})
			}
		}
		if _, err := availabilityRepo.AddSlots(tx, slots); err != nil {
			return err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	app.Log.Info("Doctors seeded")
	return nil
}

func (app *App) seedPatients(db *gorm.DB, count int) error {
	app.Log.Infof("Seeding %d patients", count)

	const batchSize = 500

	userRepo := repository.NewUserRepository()
	patientRepo := repository.NewPatientProfileRepository()

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx := db.Begin()
		for i := offset; i < end; i++ {
			person := gofakeit.Person()
			name := person.FirstName + " " + person.LastName

			user := &entity.User{RoleID: entity.RoleIDPatient, WalletAddress: fakeWallet(), DisplayName: name}
			if err := userRepo.Create(tx, user); err != nil {
				tx.Rollback()
				return err
			}

			dob := gofakeit.DateRange(time.Now().AddDate(-80, 0, 0), time.Now().AddDate(-18, 0, 0))
			gender := "M"
			if person.Gender == "female" {
				gender = "F"
			}
			profile := &entity.PatientProfile{
				UserID:      user.ID,
				FullName:    name,
				Email:       person.Contact.Email,
				PhoneNumber: person.Contact.Phone,
				DateOfBirth: &dob,
				Gender:      gender,
			}
			if err := patientRepo.Upsert(tx, profile); err != nil {
				tx.Rollback()
				return err
			}
		}

		if err := tx.Commit().Error; err != nil {
			return err
		}
	}

	app.Log.Info("Patients seeded")
	return nil
}

// fakeWallet returns a random checksummed address. Seeded wallets have no
// keys, so they can browse but never sign.
func fakeWallet() string {
	return common.BytesToAddress([]byte(gofakeit.LetterN(20))).Hex()
}
