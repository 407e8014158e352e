package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"islamic-app-api/internal/model"
	"islamic-app-api/pkg/uid"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteSurahRepository implements SurahRepository using SQLite.
// Thread-safe with WAL mode for high-concurrency reads.
type SQLiteSurahRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteSurahRepository creates a new SQLite surah repository.
// dbPath is the path to the SQLite database file (e.g., "./data/surahs.db")
func NewSQLiteSurahRepository(dbPath string) (*SQLiteSurahRepository, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createSurahTableSQLite(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[SQLiteSurahRepository] Initialized with database: %s", dbPath)
	return &SQLiteSurahRepository{db: db}, nil
}

func createSurahTableSQLite(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS surahs (
		id TEXT PRIMARY KEY,
		number INTEGER NOT NULL UNIQUE,
		name_arabic TEXT NOT NULL,
		name_urdu TEXT NOT NULL,
		name_english TEXT NOT NULL,
		english_meaning TEXT NOT NULL,
		details_arabic TEXT NOT NULL DEFAULT '',
		details_english TEXT NOT NULL DEFAULT '',
		details_urdu TEXT NOT NULL DEFAULT '',
		tafseer TEXT NOT NULL DEFAULT '',
		total_verses INTEGER NOT NULL,
		revelation_type TEXT NOT NULL,
		chapter_number INTEGER NOT NULL,
		juz_numbers TEXT NOT NULL DEFAULT '[]',
		sajdah_verses TEXT NOT NULL DEFAULT '[]',
		bismillah_pre INTEGER NOT NULL DEFAULT 1,
		place TEXT NOT NULL,
		chronological_order INTEGER NOT NULL,
		ruku_count INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_surahs_number ON surahs(number);
	`
	_, err := db.Exec(query)
	return err
}

// surahColumns is the column list shared by every SELECT in the SQL backends.
const surahColumns = `id, number, name_arabic, name_urdu, name_english, english_meaning,
	details_arabic, details_english, details_urdu, tafseer, total_verses,
	revelation_type, chapter_number, juz_numbers, sajdah_verses, bismillah_pre,
	place, chronological_order, ruku_count, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanSurah decodes one surah row; int arrays are stored as JSON text.
func scanSurah(row rowScanner) (*model.Surah, error) {
	var s model.Surah
	var juz, sajdah string
	err := row.Scan(
		&s.ID, &s.Number, &s.NameArabic, &s.NameUrdu, &s.NameEnglish,
		&s.EnglishMeaning, &s.DetailsArabic, &s.DetailsEnglish, &s.DetailsUrdu,
		&s.Tafseer, &s.TotalVerses, &s.RevelationType, &s.ChapterNumber,
		&juz, &sajdah, &s.BismillahPre, &s.Place, &s.ChronologicalOrder,
		&s.RukuCount, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(juz), &s.JuzNumbers); err != nil {
		return nil, fmt.Errorf("failed to decode juz_numbers: %w", err)
	}
	if err := json.Unmarshal([]byte(sajdah), &s.SajdahVerses); err != nil {
		return nil, fmt.Errorf("failed to decode sajdah_verses: %w", err)
	}
	return &s, nil
}

func encodeIntSlice(v []int) string {
	if v == nil {
		v = []int{}
	}
	data, _ := json.Marshal(v)
	return string(data)
}

// buildUpdateSet turns a partial update into a SET clause and args.
// Shared by the SQLite and MySQL backends ('?' placeholders in both).
func buildUpdateSet(update *model.SurahUpdate) (string, []interface{}) {
	var sets []string
	var args []interface{}

	add := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if update.Number != nil {
		add("number", *update.Number)
	}
	if update.NameArabic != nil {
		add("name_arabic", *update.NameArabic)
	}
	if update.NameUrdu != nil {
		add("name_urdu", *update.NameUrdu)
	}
	if update.NameEnglish != nil {
		add("name_english", *update.NameEnglish)
	}
	if update.EnglishMeaning != nil {
		add("english_meaning", *update.EnglishMeaning)
	}
	if update.DetailsArabic != nil {
		add("details_arabic", *update.DetailsArabic)
	}
	if update.DetailsEnglish != nil {
		add("details_english", *update.DetailsEnglish)
	}
	if update.DetailsUrdu != nil {
		add("details_urdu", *update.DetailsUrdu)
	}
	if update.Tafseer != nil {
		add("tafseer", *update.Tafseer)
	}
	if update.TotalVerses != nil {
		add("total_verses", *update.TotalVerses)
	}
	if update.RevelationType != nil {
		add("revelation_type", string(*update.RevelationType))
	}
	if update.ChapterNumber != nil {
		add("chapter_number", *update.ChapterNumber)
	}
	if update.JuzNumbers != nil {
		add("juz_numbers", encodeIntSlice(update.JuzNumbers))
	}
	if update.SajdahVerses != nil {
		add("sajdah_verses", encodeIntSlice(update.SajdahVerses))
	}
	if update.BismillahPre != nil {
		add("bismillah_pre", *update.BismillahPre)
	}
	if update.Place != nil {
		add("place", *update.Place)
	}
	if update.ChronologicalOrder != nil {
		add("chronological_order", *update.ChronologicalOrder)
	}
	if update.RukuCount != nil {
		add("ruku_count", *update.RukuCount)
	}

	add("updated_at", time.Now().UTC())
	return strings.Join(sets, ", "), args
}

func isSQLiteDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Create inserts a new surah, assigning its ID and timestamps.
func (r *SQLiteSurahRepository) Create(ctx context.Context, surah *model.Surah) (*model.Surah, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

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
		if isSQLiteDuplicate(err) {
			return nil, ErrDuplicateNumber
		}
		return nil, fmt.Errorf("failed to insert surah: %w", err)
	}
	return surah, nil
}

// FindAll returns every surah in insertion order.
func (r *SQLiteSurahRepository) FindAll(ctx context.Context) ([]model.Surah, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, err := r.db.QueryContext(ctx, `SELECT `+surahColumns+` FROM surahs ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query surahs: %w", err)
	}
	defer rows.Close()

	return collectSurahs(rows)
}

func collectSurahs(rows *sql.Rows) ([]model.Surah, error) {
	surahs := make([]model.Surah, 0)
	for rows.Next() {
		s, err := scanSurah(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan surah: %w", err)
		}
		surahs = append(surahs, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate surahs: %w", err)
	}
	return surahs, nil
}

// FindByID looks up a surah by its internal ID.
func (r *SQLiteSurahRepository) FindByID(ctx context.Context, id string) (*model.Surah, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findOne(ctx, `SELECT `+surahColumns+` FROM surahs WHERE id = ?`, id)
}

// FindByNumber looks up a surah by its chapter number.
func (r *SQLiteSurahRepository) FindByNumber(ctx context.Context, number int) (*model.Surah, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findOne(ctx, `SELECT `+surahColumns+` FROM surahs WHERE number = ?`, number)
}

func (r *SQLiteSurahRepository) findOne(ctx context.Context, query string, arg interface{}) (*model.Surah, error) {
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
func (r *SQLiteSurahRepository) UpdatePartial(ctx context.Context, id string, update *model.SurahUpdate) (*model.Surah, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, args := buildUpdateSet(update)
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, `UPDATE surahs SET `+set+` WHERE id = ?`, args...)
	if err != nil {
		if isSQLiteDuplicate(err) {
			return nil, ErrDuplicateNumber
		}
		return nil, fmt.Errorf("failed to update surah: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}

	return r.findOne(ctx, `SELECT `+surahColumns+` FROM surahs WHERE id = ?`, id)
}

// DeleteByID removes a surah. Returns false if nothing was deleted.
func (r *SQLiteSurahRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

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
func (r *SQLiteSurahRepository) SearchByName(ctx context.Context, query string) ([]model.Surah, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pattern := "%" + strings.ToLower(query) + "%"
	rows, err := r.db.QueryContext(ctx, `SELECT `+surahColumns+` FROM surahs
		WHERE LOWER(name_arabic) LIKE ? OR LOWER(name_urdu) LIKE ? OR LOWER(name_english) LIKE ?
		ORDER BY rowid`, pattern, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search surahs: %w", err)
	}
	defer rows.Close()

	return collectSurahs(rows)
}

// Ping verifies the database connection.
func (r *SQLiteSurahRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection.
func (r *SQLiteSurahRepository) Close() error {
	return r.db.Close()
}
