package issues

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLiteStore is a Store backed by a SQLite file via gorm.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore opens the database at cfg.Path, creating parent
// directories and migrating the schema as needed.
func NewSQLiteStore(cfg *Config) (*SQLiteStore, error) {
	path := cfg.Path
	if path == "" {
		path = defaultPath
	}

	if err := ensureDirectory(path); err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open issue database: %w", err)
	}

	if err := db.AutoMigrate(&Issue{}); err != nil {
		return nil, fmt.Errorf("migrate issue schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Create(ctx context.Context, customerName, description string) (*Issue, error) {
	customerName = strings.TrimSpace(customerName)
	description = strings.TrimSpace(description)

	if customerName == "" {
		return nil, ErrEmptyName
	}
	if description == "" {
		return nil, ErrEmptyDescription
	}

	issue := &Issue{CustomerName: customerName, Description: description}
	if err := s.db.WithContext(ctx).Create(issue).Error; err != nil {
		return nil, fmt.Errorf("create issue: %w", err)
	}
	return issue, nil
}

func (s *SQLiteStore) List(ctx context.Context, customerName string, limit int) ([]Issue, error) {
	query := s.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if name := strings.TrimSpace(customerName); name != "" {
		query = query.Where("customer_name LIKE ?", "%"+name+"%")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var found []Issue
	if err := query.Find(&found).Error; err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	return found, nil
}

func (s *SQLiteStore) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

func ensureDirectory(path string) error {
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create issue db dir: %w", err)
	}
	return nil
}
