package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"mailroom/backend/internal/config"
	"mailroom/backend/internal/domain"
	"mailroom/backend/internal/storage/postgres"
)

// staffArgs 命令行参数
type staffArgs struct {
	Name       string `validate:"required,max=255"`
	Email      string `validate:"required,email"`
	LocationID string `validate:"required,max=64"`
	Role       string `validate:"oneof=staff admin"`
}

func main() {
	if len(os.Args) < 4 {
		fmt.Println("Usage: create-staff <name> <email> <locationId> [staff|admin]")
		os.Exit(1)
	}

	args := staffArgs{
		Name:       strings.TrimSpace(os.Args[1]),
		Email:      strings.TrimSpace(os.Args[2]),
		LocationID: strings.TrimSpace(os.Args[3]),
		Role:       "staff",
	}
	if len(os.Args) >= 5 {
		args.Role = os.Args[4]
	}

	if err := validator.New().Struct(args); err != nil {
		fmt.Printf("Invalid arguments: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Database.Type == "" || cfg.Database.DSN == "" {
		fmt.Println("MAILROOM_DATABASE_TYPE and MAILROOM_DATABASE_DSN must be set")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := postgres.NewStore(ctx, &cfg.Database, nil)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	staff := newStaff(args, time.Now().UTC())
	if err := store.SaveStaff(ctx, staff); err != nil {
		fmt.Printf("Failed to create staff: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Staff member created successfully!\n")
	fmt.Printf("  ID:       %s\n", staff.StaffID)
	fmt.Printf("  Name:     %s\n", staff.Name)
	fmt.Printf("  Email:    %s\n", staff.Email)
	fmt.Printf("  Location: %s\n", staff.DefaultLocationID)
	fmt.Printf("  Role:     %s\n", staff.Role)
	fmt.Printf("  PIN:      %s\n", staff.Pin)
}

// newStaff 生成工作人员记录，ID 与 PIN 取自随机 UUID
func newStaff(args staffArgs, now time.Time) *domain.Staff {
	id := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return &domain.Staff{
		StaffID:           "STF" + id[:8],
		Name:              args.Name,
		Email:             strings.ToLower(args.Email),
		Role:              args.Role,
		DefaultLocationID: args.LocationID,
		Pin:               pinFrom(id[8:]),
		Active:            true,
		CreatedAt:         now,
	}
}

// pinFrom 把十六进制字符映射为四位数字 PIN
func pinFrom(hex string) string {
	var b strings.Builder
	for _, r := range hex {
		if b.Len() == 4 {
			break
		}
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'F':
			b.WriteRune('0' + (r-'A')%10)
		}
	}
	return b.String()
}
