package repository

import (
	"errors"
	"time"

	"github.com/wooglin/roster-api/internal/database"
	"github.com/wooglin/roster-api/internal/models"
	"github.com/wooglin/roster-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormEventRepository is a GORM implementation of EventRepository
type GormEventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *gorm.DB) EventRepository {
	return &GormEventRepository{db: db}
}

func (r *GormEventRepository) Create(event *models.Event) error {
	return r.db.Create(event).Error
}

func (r *GormEventRepository) FindByID(id uint64) (*models.Event, error) {
	var event models.Event
	if err := r.db.First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// List retrieves events newest first
func (r *GormEventRepository) List(params utils.PaginationParams) ([]models.Event, int64, error) {
	var events []models.Event

	var total int64
	if err := r.db.Model(&models.Event{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.Scopes(database.Paginate(params)).
		Order("time_start DESC").Order("id DESC").
		Find(&events).Error; err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

// Delete removes the event and its attendances
func (r *GormEventRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&models.EventAttendance{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.Event{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// CheckIn finds or creates the guest by phone, linking a member that has
// the same phone, stores the alias, records the attendance and bumps the
// event's guest count.
func (r *GormEventRepository) CheckIn(eventID uint64, guest models.Guest, alias string, arrival time.Time) (*models.EventAttendance, error) {
	var attendance models.EventAttendance

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.First(&event, eventID).Error; err != nil {
			return err
		}

		stored, err := findOrCreateGuest(tx, guest)
		if err != nil {
			return err
		}

		if alias != "" {
			if err := upsertAlias(tx, stored.ID, alias); err != nil {
				return err
			}
		}

		taken, err := exists(tx.Model(&models.EventAttendance{}).Where("event_id = ? AND guest_id = ?", eventID, stored.ID))
		if err != nil {
			return err
		}
		if taken {
			return ErrAlreadyCheckedIn
		}

		attendance = models.EventAttendance{EventID: eventID, GuestID: stored.ID, ArrivalTime: arrival.UTC()}
		if err := tx.Omit("Event", "Guest").Create(&attendance).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyCheckedIn
			}
			return err
		}

		if err := tx.Model(&models.Event{}).Where("id = ?", eventID).
			UpdateColumn("guest_count", gorm.Expr("guest_count + 1")).Error; err != nil {
			return err
		}

		return tx.Preload("Alias").First(&attendance.Guest, stored.ID).Error
	})
	if err != nil {
		return nil, err
	}

	return &attendance, nil
}

// ListAttendance lists an event's attendances in arrival order
func (r *GormEventRepository) ListAttendance(eventID uint64) ([]models.EventAttendance, error) {
	var attendances []models.EventAttendance
	err := r.db.Preload("Guest").Preload("Guest.Alias").
		Where("event_id = ?", eventID).
		Order("arrival_time ASC").Order("id ASC").
		Find(&attendances).Error
	return attendances, err
}

func (r *GormEventRepository) RaiseHelp(eventID, guestID uint64, at time.Time) (*models.EventAttendance, error) {
	var attendance models.EventAttendance
	if err := r.db.Where("event_id = ? AND guest_id = ?", eventID, guestID).First(&attendance).Error; err != nil {
		return nil, err
	}

	raised := at.UTC()
	if err := r.db.Model(&attendance).Omit(clause.Associations).
		Updates(map[string]any{"help_flag": true, "help_flag_raised_at": raised}).Error; err != nil {
		return nil, err
	}

	if err := r.db.Preload("Alias").First(&attendance.Guest, guestID).Error; err != nil {
		return nil, err
	}
	attendance.HelpFlag = true
	attendance.HelpFlagRaisedAt = &raised
	return &attendance, nil
}

func findOrCreateGuest(tx *gorm.DB, guest models.Guest) (*models.Guest, error) {
	var stored models.Guest
	err := tx.Where("phone = ?", guest.Phone).First(&stored).Error
	if err == nil {
		return &stored, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var member models.Member
	err = tx.Where("phone = ?", guest.Phone).First(&member).Error
	switch {
	case err == nil:
		guest.MemberID = &member.ID
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	guest.ID = 0
	if err := tx.Omit("Member", "Alias").Create(&guest).Error; err != nil {
		return nil, err
	}
	return &guest, nil
}

func upsertAlias(tx *gorm.DB, guestID uint64, alias string) error {
	found, err := exists(tx.Model(&models.Alias{}).Where("guest_id = ?", guestID))
	if err != nil {
		return err
	}
	if found {
		return tx.Model(&models.Alias{}).Where("guest_id = ?", guestID).Update("alias", alias).Error
	}
	return tx.Create(&models.Alias{GuestID: guestID, Alias: alias}).Error
}
