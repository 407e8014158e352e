package model

import (
	"fmt"
	"time"
)

// RevelationType classifies where a surah was revealed.
type RevelationType string

const (
	RevelationMeccan  RevelationType = "Meccan"
	RevelationMedinan RevelationType = "Medinan"
)

// IsValid reports whether the value is one of the two allowed classifications.
func (r RevelationType) IsValid() bool {
	return r == RevelationMeccan || r == RevelationMedinan
}

// Surah represents a chapter of the Quran as stored in the surah collection.
// ID is assigned by the repository on creation; Number is business-unique (1..114).
type Surah struct {
	ID                 string         `json:"id" bson:"_id,omitempty"`
	Number             int            `json:"number" bson:"number"`
	NameArabic         string         `json:"nameArabic" bson:"name_arabic"`
	NameUrdu           string         `json:"nameUrdu" bson:"name_urdu"`
	NameEnglish        string         `json:"nameEnglish" bson:"name_english"`
	EnglishMeaning     string         `json:"englishMeaning" bson:"english_meaning"`
	DetailsArabic      string         `json:"detailsArabic" bson:"details_arabic"`
	DetailsEnglish     string         `json:"detailsEnglish" bson:"details_english"`
	DetailsUrdu        string         `json:"detailsUrdu" bson:"details_urdu"`
	Tafseer            string         `json:"tafseer" bson:"tafseer"`
	TotalVerses        int            `json:"totalVerses" bson:"total_verses"`
	RevelationType     RevelationType `json:"revelationType" bson:"revelation_type"`
	ChapterNumber      int            `json:"chapterNumber" bson:"chapter_number"`
	JuzNumbers         []int          `json:"juzNumbers" bson:"juz_numbers"`
	SajdahVerses       []int          `json:"sajdahVerses" bson:"sajdah_verses"`
	BismillahPre       bool           `json:"bismillahPre" bson:"bismillah_pre"`
	Place              string         `json:"place" bson:"place"`
	ChronologicalOrder int            `json:"chronologicalOrder" bson:"chronological_order"`
	RukuCount          int            `json:"rukuCount" bson:"ruku_count"`
	CreatedAt          time.Time      `json:"createdAt" bson:"created_at"`
	UpdatedAt          time.Time      `json:"updatedAt" bson:"updated_at"`
}

// Validate checks that all required fields are present and well-formed
// before creation. The uniqueness of Number is enforced by the repository.
func (s *Surah) Validate() error {
	if s.Number < 1 || s.Number > 114 {
		return fmt.Errorf("number must be between 1 and 114, got %d", s.Number)
	}
	if s.NameArabic == "" {
		return fmt.Errorf("nameArabic is required")
	}
	if s.NameUrdu == "" {
		return fmt.Errorf("nameUrdu is required")
	}
	if s.NameEnglish == "" {
		return fmt.Errorf("nameEnglish is required")
	}
	if s.EnglishMeaning == "" {
		return fmt.Errorf("englishMeaning is required")
	}
	if s.TotalVerses < 1 {
		return fmt.Errorf("totalVerses must be positive, got %d", s.TotalVerses)
	}
	if !s.RevelationType.IsValid() {
		return fmt.Errorf("revelationType must be %q or %q, got %q",
			RevelationMeccan, RevelationMedinan, s.RevelationType)
	}
	if s.Place == "" {
		return fmt.Errorf("place is required")
	}
	if s.RukuCount < 1 {
		return fmt.Errorf("rukuCount must be positive, got %d", s.RukuCount)
	}
	return nil
}

// SurahUpdate carries a partial update. Nil fields are left untouched.
type SurahUpdate struct {
	Number             *int            `json:"number,omitempty"`
	NameArabic         *string         `json:"nameArabic,omitempty"`
	NameUrdu           *string         `json:"nameUrdu,omitempty"`
	NameEnglish        *string         `json:"nameEnglish,omitempty"`
	EnglishMeaning     *string         `json:"englishMeaning,omitempty"`
	DetailsArabic      *string         `json:"detailsArabic,omitempty"`
	DetailsEnglish     *string         `json:"detailsEnglish,omitempty"`
	DetailsUrdu        *string         `json:"detailsUrdu,omitempty"`
	Tafseer            *string         `json:"tafseer,omitempty"`
	TotalVerses        *int            `json:"totalVerses,omitempty"`
	RevelationType     *RevelationType `json:"revelationType,omitempty"`
	ChapterNumber      *int            `json:"chapterNumber,omitempty"`
	JuzNumbers         []int           `json:"juzNumbers,omitempty"`
	SajdahVerses       []int           `json:"sajdahVerses,omitempty"`
	BismillahPre       *bool           `json:"bismillahPre,omitempty"`
	Place              *string         `json:"place,omitempty"`
	ChronologicalOrder *int            `json:"chronologicalOrder,omitempty"`
	RukuCount          *int            `json:"rukuCount,omitempty"`
}

// IsEmpty reports whether the update carries no fields at all.
func (u *SurahUpdate) IsEmpty() bool {
	return u.Number == nil && u.NameArabic == nil && u.NameUrdu == nil &&
		u.NameEnglish == nil && u.EnglishMeaning == nil && u.DetailsArabic == nil &&
		u.DetailsEnglish == nil && u.DetailsUrdu == nil && u.Tafseer == nil &&
		u.TotalVerses == nil && u.RevelationType == nil && u.ChapterNumber == nil &&
		u.JuzNumbers == nil && u.SajdahVerses == nil && u.BismillahPre == nil &&
		u.Place == nil && u.ChronologicalOrder == nil && u.RukuCount == nil
}

// Validate checks only the fields the update actually provides.
func (u *SurahUpdate) Validate() error {
	if u.Number != nil && (*u.Number < 1 || *u.Number > 114) {
		return fmt.Errorf("number must be between 1 and 114, got %d", *u.Number)
	}
	if u.NameArabic != nil && *u.NameArabic == "" {
		return fmt.Errorf("nameArabic cannot be empty")
	}
	if u.NameUrdu != nil && *u.NameUrdu == "" {
		return fmt.Errorf("nameUrdu cannot be empty")
	}
	if u.NameEnglish != nil && *u.NameEnglish == "" {
		return fmt.Errorf("nameEnglish cannot be empty")
	}
	if u.TotalVerses != nil && *u.TotalVerses < 1 {
		return fmt.Errorf("totalVerses must be positive, got %d", *u.TotalVerses)
	}
	if u.RevelationType != nil && !u.RevelationType.IsValid() {
		return fmt.Errorf("revelationType must be %q or %q, got %q",
			RevelationMeccan, RevelationMedinan, *u.RevelationType)
	}
	if u.Place != nil && *u.Place == "" {
		return fmt.Errorf("place cannot be empty")
	}
	if u.RukuCount != nil && *u.RukuCount < 1 {
		return fmt.Errorf("rukuCount must be positive, got %d", *u.RukuCount)
	}
	return nil
}

// Apply copies the provided fields onto the surah and bumps UpdatedAt.
func (u *SurahUpdate) Apply(s *Surah) {
	if u.Number != nil {
		s.Number = *u.Number
	}
	if u.NameArabic != nil {
		s.NameArabic = *u.NameArabic
	}
	if u.NameUrdu != nil {
		s.NameUrdu = *u.NameUrdu
	}
	if u.NameEnglish != nil {
		s.NameEnglish = *u.NameEnglish
	}
	if u.EnglishMeaning != nil {
		s.EnglishMeaning = *u.EnglishMeaning
	}
	if u.DetailsArabic != nil {
		s.DetailsArabic = *u.DetailsArabic
	}
	if u.DetailsEnglish != nil {
		s.DetailsEnglish = *u.DetailsEnglish
	}
	if u.DetailsUrdu != nil {
		s.DetailsUrdu = *u.DetailsUrdu
	}
	if u.Tafseer != nil {
		s.Tafseer = *u.Tafseer
	}
	if u.TotalVerses != nil {
		s.TotalVerses = *u.TotalVerses
	}
	if u.RevelationType != nil {
		s.RevelationType = *u.RevelationType
	}
	if u.ChapterNumber != nil {
		s.ChapterNumber = *u.ChapterNumber
	}
	if u.JuzNumbers != nil {
		s.JuzNumbers = u.JuzNumbers
	}
	if u.SajdahVerses != nil {
		s.SajdahVerses = u.SajdahVerses
	}
	if u.BismillahPre != nil {
		s.BismillahPre = *u.BismillahPre
	}
	if u.Place != nil {
		s.Place = *u.Place
	}
	if u.ChronologicalOrder != nil {
		s.ChronologicalOrder = *u.ChronologicalOrder
	}
	if u.RukuCount != nil {
		s.RukuCount = *u.RukuCount
	}
	s.UpdatedAt = time.Now().UTC()
}
