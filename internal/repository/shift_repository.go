package repository

import (
	"time"

	"github.com/wooglin/roster-api/internal/database"
	"github.com/wooglin/roster-api/internal/models"
	"gorm.io/gorm"
)

// GormShiftRepository is a GORM implementation of ShiftRepository
type GormShiftRepository struct {
	db *gorm.DB
}

// NewShiftRepository creates a new ShiftRepository
func NewShiftRepository(db *gorm.DB) ShiftRepository {
	return &GormShiftRepository{db: db}
}

// Create inserts the shift after checking for same-date overlap in a
// serializable transaction.
func (r *GormShiftRepository) Create(shift *models.SoberBroShift) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := checkOverlap(tx, shift); err != nil {
			return err
		}
		return tx.Create(shift).Error
	}, database.TxOptions(r.db))
}

// Update applies fields to the shift. The overlap check uses the merged
// values held in shift; a lowered capacity must still cover signed_up.
func (r *GormShiftRepository) Update(shift *models.SoberBroShift, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		var current models.SoberBroShift
		if err := tx.First(&current, shift.ID).Error; err != nil {
			return err
		}

		if capacity, ok := fields["capacity"].(int); ok && capacity < current.SignedUp {
			return ErrCapacityBelowSignedUp
		}

		if err := checkOverlap(tx, shift); err != nil {
			return err
		}

		if err := tx.Model(&models.SoberBroShift{}).Where("id = ?", shift.ID).Updates(fields).Error; err != nil {
			return err
		}

		shift.SignedUp = current.SignedUp
		return nil
	}, database.TxOptions(r.db))
}

// FindByID finds a shift by ID
func (r *GormShiftRepository) FindByID(id uint64) (*models.SoberBroShift, error) {
	var shift models.SoberBroShift
	if err := r.db.First(&shift, id).Error; err != nil {
		return nil, err
	}
	return &shift, nil
}

// ListBetween lists shifts in the inclusive date range, earliest first
func (r *GormShiftRepository) ListBetween(from, to string) ([]models.SoberBroShift, error) {
	var shifts []models.SoberBroShift
	err := r.db.Scopes(database.DateBetween(from, to)).
		Order("time_start ASC").Order("id ASC").
		Find(&shifts).Error
	return shifts, err
}

// Upcoming lists shifts starting in [now, until) that end after now, each
// with its members in sign-up order.
func (r *GormShiftRepository) Upcoming(now, until time.Time) ([]ShiftWithMembers, error) {
	var shifts []models.SoberBroShift
	if err := r.db.
		Where("time_start >= ? AND time_start < ? AND time_end > ?", now.UTC(), until.UTC(), now.UTC()).
		Order("time_start ASC").Order("id ASC").
		Find(&shifts).Error; err != nil {
		return nil, err
	}
	if len(shifts) == 0 {
		return nil, nil
	}

	ids := make([]uint64, len(shifts))
	for i, s := range shifts {
		ids[i] = s.ID
	}

	var assignments []models.SoberBro
	if err := r.db.Preload("Member").
		Where("shift_id IN ?", ids).
		Order("id ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}

	byShift := make(map[uint64][]models.Member, len(shifts))
	for _, a := range assignments {
		byShift[a.ShiftID] = append(byShift[a.ShiftID], a.Member)
	}

	result := make([]ShiftWithMembers, len(shifts))
	for i, s := range shifts {
		result[i] = ShiftWithMembers{Shift: s, Members: byShift[s.ID]}
	}
	return result, nil
}

// Delete removes the shift and its assignments
func (r *GormShiftRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("shift_id = ?", id).Delete(&models.SoberBro{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.SoberBroShift{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// checkOverlap rejects a shift whose [time_start, time_end) intersects
// another shift on the same date. Touching endpoints do not overlap.
func checkOverlap(tx *gorm.DB, shift *models.SoberBroShift) error {
	q := tx.Model(&models.SoberBroShift{}).
		Where("date = ? AND time_start < ? AND time_end > ?", shift.Date, shift.TimeEnd.UTC(), shift.TimeStart.UTC())
	if shift.ID != 0 {
		q = q.Where("id <> ?", shift.ID)
	}

	overlaps, err := exists(q)
	if err != nil {
		return err
	}
	if overlaps {
		return ErrShiftOverlap
	}
	return nil
}
