package main

import (
	"fmt"

	"github.com/findesk/findesk-api/internal/config"
	"github.com/findesk/findesk-api/internal/logger"
	"github.com/findesk/findesk-api/internal/models"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加馆主
	librarians := []models.Librarian{
		{
			Email:             "owner.central@findesk.dev",
			Name:              "Central Owner",
			Phone:             "+919800000001",
			RazorpayAccountID: "acc_demo_central",
		},
		{
			Email:             "owner.riverside@findesk.dev",
			Name:              "Riverside Owner",
			Phone:             "+919800000002",
			RazorpayAccountID: "acc_demo_riverside",
		},
	}

	librarianIDs := map[string]uint{}
	for _, lib := range librarians {
		hash, err := bcrypt.GenerateFromPassword([]byte("findesk123"), bcrypt.DefaultCost)
		if err != nil {
			stdLog.Fatalf("Failed to hash password: %v", err)
		}
		lib.PasswordHash = string(hash)

		var existing models.Librarian
		if err := models.DB.Where("email = ?", lib.Email).First(&existing).Error; err != nil {
			if err := models.DB.Create(&lib).Error; err != nil {
				stdLog.Printf("Failed to create librarian %s: %v", lib.Email, err)
				continue
			}
			stdLog.Printf("Created librarian: %s", lib.Email)
			librarianIDs[lib.Email] = lib.ID
		} else {
			stdLog.Printf("Librarian already exists: %s", lib.Email)
			librarianIDs[lib.Email] = existing.ID
		}
	}

	// 添加自习室
	libraries := []models.Library{
		{
			LibrarianID: librarianIDs["owner.central@findesk.dev"],
			Name:        "Central Study Hall",
			Address:     "12 MG Road, Bengaluru",
			SeatCount:   60,
		},
		{
			LibrarianID: librarianIDs["owner.riverside@findesk.dev"],
			Name:        "Riverside Reading Room",
			Address:     "3 River View Lane, Pune",
			SeatCount:   40,
		},
	}

	for _, library := range libraries {
		if library.LibrarianID == 0 {
			stdLog.Printf("Skip library %s: librarian missing", library.Name)
			continue
		}
		var existing models.Library
		if err := models.DB.Where("name = ?", library.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&library).Error; err != nil {
				stdLog.Printf("Failed to create library %s: %v", library.Name, err)
			} else {
				stdLog.Printf("Created library: %s", library.Name)
			}
		} else {
			existing.LibrarianID = library.LibrarianID
			existing.Address = library.Address
			existing.SeatCount = library.SeatCount
			if err := models.DB.Save(&existing).Error; err != nil {
				stdLog.Printf("Failed to update library %s: %v", library.Name, err)
			} else {
				stdLog.Printf("Updated library: %s", library.Name)
			}
		}
	}

	// 添加学生
	students := []models.Student{
		{Email: "asha@findesk.dev", Name: "Asha Rao", Phone: "+919900000001"},
		{Email: "vikram@findesk.dev", Name: "Vikram Shah", Phone: "+919900000002"},
		{Email: "meera@findesk.dev", Name: "Meera Iyer", Phone: "+919900000003"},
	}

	for _, stu := range students {
		hash, err := bcrypt.GenerateFromPassword([]byte("findesk123"), bcrypt.DefaultCost)
		if err != nil {
			stdLog.Fatalf("Failed to hash password: %v", err)
		}
		stu.PasswordHash = string(hash)

		var existing models.Student
		if err := models.DB.Where("email = ?", stu.Email).First(&existing).Error; err != nil {
			if err := models.DB.Create(&stu).Error; err != nil {
				stdLog.Printf("Failed to create student %s: %v", stu.Email, err)
			} else {
				stdLog.Printf("Created student: %s", stu.Email)
			}
		} else {
			stdLog.Printf("Student already exists: %s", stu.Email)
		}
	}

	fmt.Println("\n✅ Test data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 2 Librarians (password: findesk123)")
	fmt.Println("- 2 Libraries")
	fmt.Println("- 3 Students (password: findesk123)")
}
