package db

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a record does not exist or belongs
	// to a different owner; callers cannot tell which.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidID is returned for identifiers that are not well-formed.
	ErrInvalidID = errors.New("invalid record id")
)

// OwnedRecord is any persisted record scoped to a single owner.
type OwnedRecord interface {
	OwnerID() string
}

// Store is the owner-scoped document store shared by both prediction
// collections. Every method takes the owner id explicitly; there is no
// ambient identity. Ownership is part of each WHERE clause, so a
// mismatch and a missing record are the same ErrNotFound.
type Store[T OwnedRecord] struct {
	db *gorm.DB
}

// NewStore binds a store for record type T to db.
func NewStore[T OwnedRecord](db *gorm.DB) *Store[T] {
	return &Store[T]{db: db}
}

// Create persists rec. The id and creation timestamp are assigned by
// the model hooks; the owner must already be set on rec.
func (s *Store[T]) Create(rec *T) error {
	return s.db.Create(rec).Error
}

// List returns the owner's records newest-first. The id tiebreaker
// keeps pages contiguous when creation timestamps collide.
func (s *Store[T]) List(ownerID string, offset, limit int) ([]T, error) {
	var recs []T
	err := s.db.Where("user_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// Get loads one record by (owner, id).
func (s *Store[T]) Get(ownerID, id string) (*T, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	var rec T
	err := s.db.Where("id = ? AND user_id = ?", id, ownerID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// Update applies fields to the record owned by ownerID and returns the
// updated row. Id, owner and created_at are never part of fields.
func (s *Store[T]) Update(ownerID, id string, fields map[string]any) (*T, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	res := s.db.Model(new(T)).Where("id = ? AND user_id = ?", id, ownerID).Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ownerID, id)
}

// Delete removes the record owned by ownerID.
func (s *Store[T]) Delete(ownerID, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	res := s.db.Where("id = ? AND user_id = ?", id, ownerID).Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	return nil
}
