package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"advanced-blog/pkg/config"
	"advanced-blog/pkg/database"
	"advanced-blog/pkg/logger"
	"advanced-blog/pkg/models"
	"advanced-blog/pkg/roles"
	"advanced-blog/pkg/slug"
	"advanced-blog/services/accounts/internal/entity"
	"advanced-blog/services/accounts/internal/repo/persistent"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type seedUser struct {
	email    string
	username string
	password string
	role     roles.Role
}

var testUsers = []seedUser{
	{"admin@example.com", "admin", "password123", roles.Admin},
	{"author@example.com", "test_author", "Testpass123", roles.Author},
	{"reader@example.com", "reader", "password123", roles.Reader},
}

var testCategories = []string{"Technology", "Travel", "Food"}

func main() {
	var list bool
	flag.BoolVar(&list, "list", false, "Print users with their role and flags instead of seeding")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.NewWithLevel(cfg.LogLevel)
	defer log.Sync()

	db, err := database.New(cfg, log)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	if err := models.AutoMigrate(db); err != nil {
		log.Error("Failed to migrate schema: %v", err)
		os.Exit(1)
	}

	ctx := context.Background()
	userRepo := persistent.NewUserRepository(db)

	if list {
		if err := listUsers(ctx, os.Stdout, userRepo); err != nil {
			log.Error("Failed to list users: %v", err)
			os.Exit(1)
		}
		return
	}

	if err := seedDatabase(ctx, db, userRepo, log); err != nil {
		log.Error("Failed to seed database: %v", err)
		os.Exit(1)
	}

	log.Info("Database seeded successfully!")
}

func listUsers(ctx context.Context, w io.Writer, userRepo persistent.UserRepository) error {
	users, err := userRepo.List(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "Users in DB:")
	for _, u := range users {
		fmt.Fprintf(w, "- %s | role=%s | is_staff=%t | is_active=%t\n", u.Username, u.Role, u.IsStaff, u.IsActive)
	}
	return nil
}

// seedDatabase is idempotent: existing users, categories and posts are kept.
func seedDatabase(ctx context.Context, db *gorm.DB, userRepo persistent.UserRepository, log *logger.Logger) error {
	var author *entity.User

	for _, data := range testUsers {
		user, err := ensureUser(ctx, userRepo, data, log)
		if err != nil {
			return err
		}
		if data.role == roles.Author {
			author = user
		}
	}

	categoryIDs := make([]string, 0, len(testCategories))
	for _, name := range testCategories {
		category := models.Category{Name: name, Slug: slug.Make(name)}
		if err := db.WithContext(ctx).Where(models.Category{Slug: category.Slug}).FirstOrCreate(&category).Error; err != nil {
			return fmt.Errorf("failed to create category %s: %w", name, err)
		}
		categoryIDs = append(categoryIDs, category.ID)
	}
	log.Info("Ensured %d categories", len(categoryIDs))

	for i, status := range []models.PostStatus{models.StatusPublished, models.StatusPublished, models.StatusDraft} {
		title := fmt.Sprintf("Sample Post #%d", i+1)
		categoryID := categoryIDs[i%len(categoryIDs)]
		post := models.Post{
			Title:      title,
			Slug:       slug.Make(title),
			AuthorID:   author.ID,
			CategoryID: &categoryID,
			Status:     status,
			Content:    fmt.Sprintf("Content of sample post #%d by %s.", i+1, author.Username),
		}

		result := db.WithContext(ctx).Where(models.Post{Slug: post.Slug}).FirstOrCreate(&post)
		if result.Error != nil {
			return fmt.Errorf("failed to create post %s: %w", title, result.Error)
		}
		if result.RowsAffected > 0 {
			log.Info("Created post: %s (%s)", post.Title, post.Status)
		}
	}

	return nil
}

func ensureUser(ctx context.Context, userRepo persistent.UserRepository, data seedUser, log *logger.Logger) (*entity.User, error) {
	existing, err := userRepo.GetByUsername(ctx, data.username)
	if err == nil {
		log.Info("User %s already exists, skipping", existing.Username)
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up user %s: %w", data.username, err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(data.password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Email:    data.email,
		Username: data.username,
		Password: string(hashedPassword),
		Role:     data.role,
		IsActive: true,
	}
	if err := userRepo.SaveWithRole(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", data.username, err)
	}

	log.Info("Created user: %s (%s, role=%s)", user.Username, user.Email, user.Role)
	return user, nil
}
