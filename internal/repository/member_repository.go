package repository

import (
	"github.com/wooglin/roster-api/internal/database"
	"github.com/wooglin/roster-api/internal/models"
	"github.com/wooglin/roster-api/internal/query"
	"github.com/wooglin/roster-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormMemberRepository is a GORM implementation of MemberRepository
type GormMemberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new MemberRepository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &GormMemberRepository{db: db}
}

// CreateWithUser creates the user, then the member pointing at it. Unique
// violations come back as gorm.ErrDuplicatedKey.
func (r *GormMemberRepository) CreateWithUser(user *models.User, member *models.Member) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		member.UserID = user.ID
		if err := tx.Omit(clause.Associations).Create(member).Error; err != nil {
			return err
		}

		member.User = *user
		return nil
	})
}

// FindByID finds a member by ID with its user loaded
func (r *GormMemberRepository) FindByID(id uint64) (*models.Member, error) {
	var member models.Member
	if err := r.db.Preload("User").First(&member, id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *GormMemberRepository) FindByUserID(userID uint64) (*models.Member, error) {
	var member models.Member
	if err := r.db.Where("user_id = ?", userID).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *GormMemberRepository) PhoneExists(phone string, excludeID uint64) (bool, error) {
	q := r.db.Model(&models.Member{}).Where("phone = ?", phone)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	return exists(q)
}

// List retrieves members with filtering, ordering and pagination
func (r *GormMemberRepository) List(spec query.Spec, params utils.PaginationParams) ([]models.Member, int64, error) {
	var members []models.Member

	filtered := spec.FilterScope(r.db.Model(&models.Member{})).Session(&gorm.Session{})

	var total int64
	if err := filtered.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := database.Paginate(params)(spec.OrderScope(filtered))
	if err := listQuery.Find(&members).Error; err != nil {
		return nil, 0, err
	}

	return members, total, nil
}

// Update writes the given columns of a member
func (r *GormMemberRepository) Update(member *models.Member, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.Model(member).Omit(clause.Associations).Updates(fields).Error
}

// Delete removes the member and everything that references it: shift
// assignments (keeping the shift counters in step), the guest link, and the
// paired user.
func (r *GormMemberRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var member models.Member
		if err := tx.First(&member, id).Error; err != nil {
			return err
		}

		var shiftIDs []uint64
		if err := tx.Model(&models.SoberBro{}).Where("member_id = ?", id).Pluck("shift_id", &shiftIDs).Error; err != nil {
			return err
		}
		if len(shiftIDs) > 0 {
			if err := tx.Model(&models.SoberBroShift{}).
				Where("id IN ? AND signed_up > 0", shiftIDs).
				UpdateColumn("signed_up", gorm.Expr("signed_up - 1")).Error; err != nil {
				return err
			}
			if err := tx.Where("member_id = ?", id).Delete(&models.SoberBro{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&models.Guest{}).Where("member_id = ?", id).Update("member_id", nil).Error; err != nil {
			return err
		}

		if err := tx.Delete(&models.Member{}, id).Error; err != nil {
			return err
		}

		return tx.Delete(&models.User{}, member.UserID).Error
	})
}
