package repository

import (
	"errors"

	"github.com/wooglin/roster-api/internal/models"
	"gorm.io/gorm"
)

// GormAssignmentRepository is a GORM implementation of AssignmentRepository
type GormAssignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository creates a new AssignmentRepository
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &GormAssignmentRepository{db: db}
}

// Add claims a slot with a conditional counter update, then inserts the
// pair. A full shift is reported before a duplicate pair.
func (r *GormAssignmentRepository) Add(shiftID, memberID uint64) (*models.SoberBro, error) {
	assignment := &models.SoberBro{ShiftID: shiftID, MemberID: memberID}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.SoberBroShift{}).
			Where("id = ? AND signed_up < capacity", shiftID).
			UpdateColumn("signed_up", gorm.Expr("signed_up + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrShiftFull
		}

		taken, err := exists(tx.Model(&models.SoberBro{}).Where("shift_id = ? AND member_id = ?", shiftID, memberID))
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateAssignment
		}

		if err := tx.Omit("Shift", "Member").Create(assignment).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateAssignment
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return assignment, nil
}

// Remove deletes the pair and releases its slot
func (r *GormAssignmentRepository) Remove(shiftID, memberID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("shift_id = ? AND member_id = ?", shiftID, memberID).Delete(&models.SoberBro{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAssignmentNotFound
		}

		return tx.Model(&models.SoberBroShift{}).
			Where("id = ? AND signed_up > 0", shiftID).
			UpdateColumn("signed_up", gorm.Expr("signed_up - 1")).Error
	})
}

// ListByShift lists a shift's assignments in sign-up order
func (r *GormAssignmentRepository) ListByShift(shiftID uint64) ([]models.SoberBro, error) {
	var assignments []models.SoberBro
	err := r.db.Preload("Shift").Preload("Member").
		Where("shift_id = ?", shiftID).
		Order("id ASC").
		Find(&assignments).Error
	return assignments, err
}
