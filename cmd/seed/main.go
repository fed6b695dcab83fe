// Command seed loads the demo organisation into an empty database, or with
// -reset clears every request and zeroes used leave days.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/nihal711/noah/config"
	"github.com/nihal711/noah/internal/model"
	"github.com/nihal711/noah/internal/repository"
	"github.com/nihal711/noah/pkg/database"
	applogger "github.com/nihal711/noah/pkg/logger"
)

const demoPassword = "password123"

type demoUser struct {
	username, email, fullName, employeeID, department, position, gender, role string
	reportsToMike                                                             bool
}

var demoUsers = []demoUser{
	{"john_doe", "john.doe@noah.com", "John Doe", "EMP001", "Engineering", "Software Developer", "male", model.RoleEmployee, true},
	{"jane_smith", "jane.smith@noah.com", "Jane Smith", "EMP002", "Human Resources", "HR Manager", "female", model.RoleHR, false},
	{"mike_johnson", "mike.johnson@noah.com", "Mike Johnson", "EMP003", "Engineering", "Team Lead", "male", model.RoleManager, false},
	{"sarah_wilson", "sarah.wilson@noah.com", "Sarah Wilson", "EMP004", "Marketing", "Marketing Specialist", "female", model.RoleEmployee, true},
}

func (d demoUser) toModel(passwordHash string) *model.User {
	return &model.User{
		Username:     d.username,
		Email:        d.email,
		EmployeeID:   d.employeeID,
		FullName:     d.fullName,
		Department:   d.department,
		Position:     d.position,
		Gender:       d.gender,
		Religion:     "Other",
		Categories:   model.StringArray{},
		Role:         d.role,
		PasswordHash: passwordHash,
		IsActive:     true,
	}
}

var demoEntitlements = []struct {
	leaveType string
	days      int64
}{
	{"Annual", 25},
	{"Sick", 10},
	{"Personal", 5},
}

func main() {
	configPath := flag.String("config", os.Getenv("NOAH_CONFIG"), "config file")
	reset := flag.Bool("reset", false, "delete all requests and attachments and zero used leave days")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("connect database failed", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB failed", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("migrate database failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if *reset {
		if err := resetDemo(ctx, db); err != nil {
			logger.Fatal("reset failed", zap.Error(err))
		}
		logger.Info("demo data reset")
		return
	}

	created, err := seed(ctx, db)
	if err != nil {
		logger.Fatal("seed failed", zap.Error(err))
	}
	if !created {
		logger.Info("database already has users, nothing to seed")
		return
	}
	logger.Info("demo data seeded",
		zap.Int("users", len(demoUsers)),
		zap.String("password", demoPassword),
	)
}

// seed creates the demo users and their balances for the current year.
// It does nothing when any user exists.
func seed(ctx context.Context, db *gorm.DB) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&model.User{}).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := repository.NewRepository(tx)

		users := make([]*model.User, 0, len(demoUsers))
		for _, d := range demoUsers {
			u := d.toModel(string(hash))
			if err := repo.User.Create(ctx, u); err != nil {
				return fmt.Errorf("create %s: %w", d.username, err)
			}
			users = append(users, u)
		}

		mike := users[2]
		for i, d := range demoUsers {
			if !d.reportsToMike {
				continue
			}
			users[i].ManagerID = &mike.UserID
			users[i].LineManager = &mike.FullName
			if err := repo.User.Update(ctx, users[i]); err != nil {
				return fmt.Errorf("assign manager to %s: %w", d.username, err)
			}
		}

		year := time.Now().Year()
		for _, u := range users {
			for _, e := range demoEntitlements {
				bal := &model.LeaveBalance{
					UserID:    u.UserID,
					LeaveType: e.leaveType,
					Year:      year,
					TotalDays: decimal.NewFromInt(e.days),
					UsedDays:  decimal.Zero,
				}
				if err := repo.LeaveBalance.Create(ctx, bal); err != nil {
					return fmt.Errorf("create %s balance for %s: %w", e.leaveType, u.Username, err)
				}
			}
		}
		return nil
	})
	return err == nil, err
}

// resetDemo keeps users and entitlements, drops everything filed against them
func resetDemo(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"attachments", "bank_letter_requests", "visa_letter_requests", "leave_requests"} {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return tx.Model(&model.LeaveBalance{}).
			Where("1 = 1").
			Updates(map[string]interface{}{"used_days": 0, "updated_at": time.Now()}).Error
	})
}
