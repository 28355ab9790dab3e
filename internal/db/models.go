package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User represents a registered account. Email is stored lower-cased and
// guarded by a unique index, so duplicate registration fails at the
// storage layer regardless of casing.
type User struct {
	ID string `gorm:"primaryKey;size:36"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Email        string `gorm:"uniqueIndex;size:255;not null"`
	FullName     string `gorm:"size:255;not null"`
	PasswordHash string `gorm:"size:255;not null"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Prediction is a generic prediction record: the input forwarded to the
// external prediction API together with the verdict it returned. Both
// payloads are opaque structured data; schema lives with the oracle,
// not with us.
type Prediction struct {
	ID string `gorm:"primaryKey;size:36"`

	CreatedAt time.Time
	// UpdatedAt is set only when the prediction is re-run with new
	// input data; fresh records carry a null.
	UpdatedAt *time.Time

	UserID string `gorm:"index;size:36;not null"`

	InputData        datatypes.JSONMap `gorm:"type:json"`
	PredictionResult datatypes.JSONMap `gorm:"type:json"`
}

func (p *Prediction) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// OwnerID implements OwnedRecord.
func (p Prediction) OwnerID() string { return p.UserID }

// AudioPrediction stores an uploaded cry recording's metadata plus the
// model verdict supplied with it. The audio bytes themselves live in
// the blob store under StorageKey; the two are written blob-first and a
// record is never created for a failed blob write.
type AudioPrediction struct {
	ID string `gorm:"primaryKey;size:36"`

	CreatedAt time.Time

	UserID string `gorm:"index;size:36;not null"`

	// AudioFilename is the client's original filename, kept for
	// download responses.
	AudioFilename string `gorm:"size:512;not null"`
	// StorageKey is the opaque blob-store reference.
	StorageKey    string `gorm:"size:512;not null"`
	AudioSize     int64
	AudioDuration *float64

	PredictionResult datatypes.JSONMap `gorm:"type:json"`
}

func (a *AudioPrediction) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// OwnerID implements OwnedRecord.
func (a AudioPrediction) OwnerID() string { return a.UserID }
