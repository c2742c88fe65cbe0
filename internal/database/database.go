package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"secscan-go/internal/incident"
	"secscan-go/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// ErrPersistence wraps storage failures so callers can distinguish them from
// scanner-level errors.
var ErrPersistence = errors.New("persistence failure")

type Database struct {
	DB    *gorm.DB
	mutex sync.RWMutex
}

func InitializeDatabase(dbPath string) (*Database, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		file, err := os.Create(dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create database file: %w", err)
		}
		defer file.Close()
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	if err := migrate(db); err != nil {
		return nil, err
	}

	return &Database{DB: db}, nil
}

// InitializeTestDatabase opens an in-memory database for tests.
func InitializeTestDatabase() (*Database, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}

	if err := migrate(db); err != nil {
		return nil, err
	}

	return &Database{DB: db}, nil
}

func migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.ScanResult{},
		&models.Finding{},
		&models.Incident{},
		&models.IncidentEvent{},
		&models.Assessment{},
		&models.Report{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database schema: %w", err)
	}

	return nil
}

// SaveScanResult stores a completed or failed scan result with its findings.
func (db *Database) SaveScanResult(result *models.ScanResult) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(result).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: failed to save scan result %s: %v", ErrPersistence, result.ScanID, err)
	}

	return nil
}

func (db *Database) GetScanResult(scanID string) (*models.ScanResult, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	var result models.ScanResult
	err := db.DB.Preload("Findings").Where("scan_id = ?", scanID).Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load scan result %s: %v", ErrPersistence, scanID, err)
	}

	if result.ScanID == "" {
		return nil, nil
	}

	return &result, nil
}

func (db *Database) GetRecentScans(limit int) ([]models.ScanResult, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	var results []models.ScanResult
	err := db.DB.Order("started_at DESC").Limit(limit).Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load recent scans: %v", ErrPersistence, err)
	}

	return results, nil
}

func (db *Database) SaveIncident(inc *models.Incident) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Save(inc).Error
	})
	if err != nil {
		return fmt.Errorf("%w: failed to save incident %s: %v", ErrPersistence, inc.ID, err)
	}

	return nil
}

func (db *Database) GetIncident(id string) (*models.Incident, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	var inc models.Incident
	err := db.DB.
		Preload("Timeline", func(db *gorm.DB) *gorm.DB {
			return db.Order("incident_events.created_at ASC")
		}).
		Where("id = ?", id).
		Find(&inc).Error
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load incident %s: %v", ErrPersistence, id, err)
	}

	if inc.ID == "" {
		return nil, nil
	}

	return &inc, nil
}

// GetActiveIncidents returns incidents still being worked, newest first.
func (db *Database) GetActiveIncidents() ([]models.Incident, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	var incidents []models.Incident
	err := db.DB.
		Where("status IN ?", []incident.Status{incident.Open, incident.Investigating, incident.Mitigating}).
		Order("created_at DESC").
		Find(&incidents).Error
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load active incidents: %v", ErrPersistence, err)
	}

	return incidents, nil
}

func (db *Database) SaveAssessment(assessment *models.Assessment) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Save(assessment).Error
	})
	if err != nil {
		return fmt.Errorf("%w: failed to save assessment %s: %v", ErrPersistence, assessment.AssessmentID, err)
	}

	return nil
}

func (db *Database) SaveReport(report *models.Report) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Create(report).Error
	})
	if err != nil {
		return fmt.Errorf("%w: failed to save report %s: %v", ErrPersistence, report.ReportID, err)
	}

	return nil
}

func (db *Database) GetReports(limit int) ([]models.Report, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	var reports []models.Report
	err := db.DB.Order("generated_at DESC").Limit(limit).Find(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load reports: %v", ErrPersistence, err)
	}

	return reports, nil
}
