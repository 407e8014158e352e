package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"islamic-app-api/internal/model"
	"islamic-app-api/pkg/uid"

	"github.com/go-sql-driver/mysql"
)

// MySQLSurahRepository implements SurahRepository using MySQL.
type MySQLSurahRepository struct {
	db *sql.DB
}

// NewMySQLSurahRepository creates a new MySQL surah repository.
// dsn format: "user:password@tcp(host:port)/dbname?parseTime=true"
func NewMySQLSurahRepository(dsn string) (*MySQLSurahRepository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	if err := createSurahTableMySQL(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[MySQLSurahRepository] Initialized")
	return &MySQLSurahRepository{db: db}, nil
}

func createSurahTableMySQL(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS surahs (
		id VARCHAR(36) PRIMARY KEY,
		number INT NOT NULL UNIQUE,
		name_arabic VARCHAR(255) NOT NULL,
		name_urdu VARCHAR(255) NOT NULL,
		name_english VARCHAR(255) NOT NULL,
		english_meaning VARCHAR(255) NOT NULL,
		details_arabic TEXT NOT NULL,
		details_english TEXT NOT NULL,
		details_urdu TEXT NOT NULL,
		tafseer TEXT NOT NULL,
		total_verses INT NOT NULL,
		revelation_type VARCHAR(16) NOT NULL,
		chapter_number INT NOT NULL,
		juz_numbers TEXT NOT NULL,
		sajdah_verses TEXT NOT NULL,
		bismillah_pre BOOLEAN NOT NULL DEFAULT TRUE,
		place VARCHAR(64) NOT NULL,
		chronological_order INT NOT NULL,
		ruku_count INT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		seq BIGINT AUTO_INCREMENT,
		KEY (seq)
	)`
	_, err := db.Exec(query)
	return err
}

// isMySQLDuplicate reports whether err is a unique-constraint violation (1062).
func isMySQLDuplicate(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

// Create inserts a new surah, assigning its ID and timestamps.
func (r *MySQLSurahRepository) Create(ctx context.Context, surah *model.Surah) (*model.Surah, error) {
	now := time.Now().UTC()
	surah.ID = uid.New()
	surah.CreatedAt = now
	surah.UpdatedAt = now

	query := `INSERT INTO surahs (` + surahColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		surah.ID, surah.Number, surah.NameArabic, surah.NameUrdu, surah.NameEnglish,
		surah.EnglishMeaning, surah.DetailsArabic, surah.DetailsEnglish, surah.DetailsUrdu,
		surah.Tafseer, surah.TotalVerses, string(surah.RevelationType), surah.ChapterNumber,
		encodeIntSlice(surah.JuzNumbers), encodeIntSlice(surah.SajdahVerses), surah.BismillahPre,
		surah.Place, surah.ChronologicalOrder, surah.RukuCount, surah.CreatedAt, surah.UpdatedAt,
	)
	if err != nil {
		if isMySQLDuplicate(err) {
			return nil, ErrDuplicateNumber
		}
		return nil, fmt.Errorf("failed to insert surah: %w", err)
	}
	return surah, nil
}

// FindAll returns every surah in insertion order.
func (r *MySQLSurahRepository) FindAll(ctx context.Context) ([]model.Surah, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+surahColumns+` FROM surahs ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query surahs: %w", err)
	}
	defer rows.Close()

	return collectSurahs(rows)
}

// FindByID looks up a surah by its internal ID.
func (r *MySQLSurahRepository) FindByID(ctx context.Context, id string) (*model.Surah, error) {
	return r.findOne(ctx, `SELECT `+surahColumns+` FROM surahs WHERE id = ?`, id)
}

// FindByNumber looks up a surah by its chapter number.
func (r *MySQLSurahRepository) FindByNumber(ctx context.Context, number int) (*model.Surah, error) {
	return r.findOne(ctx, `SELECT `+surahColumns+` FROM surahs WHERE number = ?`, number)
}

func (r *MySQLSurahRepository) findOne(ctx context.Context, query string, arg interface{}) (*model.Surah, error) {
	s, err := scanSurah(r.db.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find surah: %w", err)
	}
	return s, nil
}

// UpdatePartial applies the provided fields and returns the updated record.
func (r *MySQLSurahRepository) UpdatePartial(ctx context.Context, id string, update *model.SurahUpdate) (*model.Surah, error) {
	set, args := buildUpdateSet(update)
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, `UPDATE surahs SET `+set+` WHERE id = ?`, args...)
	if err != nil {
		if isMySQLDuplicate(err) {
			return nil, ErrDuplicateNumber
		}
		return nil, fmt.Errorf("failed to update surah: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		// MySQL reports 0 for identical-value updates too; distinguish
		// missing rows from no-op updates with a lookup.
		existing, err := r.findOne(ctx, `SELECT `+surahColumns+` FROM surahs WHERE id = ?`, id)
		if err != nil {
			return nil, err
		}
		return existing, nil
	}

	return r.findOne(ctx, `SELECT `+surahColumns+` FROM surahs WHERE id = ?`, id)
}

// DeleteByID removes a surah. Returns false if nothing was deleted.
func (r *MySQLSurahRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM surahs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete surah: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

// SearchByName matches the query case-insensitively against the three
// localized name fields.
func (r *MySQLSurahRepository) SearchByName(ctx context.Context, query string) ([]model.Surah, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	rows, err := r.db.QueryContext(ctx, `SELECT `+surahColumns+` FROM surahs
		WHERE LOWER(name_arabic) LIKE ? OR LOWER(name_urdu) LIKE ? OR LOWER(name_english) LIKE ?
		ORDER BY seq`, pattern, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search surahs: %w", err)
	}
	defer rows.Close()

	return collectSurahs(rows)
}

// Ping verifies the database connection.
func (r *MySQLSurahRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection.
func (r *MySQLSurahRepository) Close() error {
	return r.db.Close()
}
