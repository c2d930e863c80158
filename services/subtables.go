package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/restropos/billing-app/models"
)

const subTableLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// SubTableService manages the lettered children of a physical table.
// Each child is an independent billing target; the parent stays occupied
// until the last child is released.
type SubTableService struct {
	DB *gorm.DB
}

func NewSubTableService(db *gorm.DB) *SubTableService {
	return &SubTableService{DB: db}
}

// SubTableStatus is one row of the cleanup report.
type SubTableStatus struct {
	SubTableID uint   `json:"sub_table_id"`
	Name       string `json:"name"`
	Status     int    `json:"status"`
	Settled    bool   `json:"settled"`
}

// CreateSubTable returns the parent's active sub-table when one exists
// (idempotent reuse), reactivates a requested free name, or assigns the
// first unused letter A-Z. The parent table is marked occupied.
func (s *SubTableService) CreateSubTable(parentID uint, requestedName string) (*models.SubTable, bool, error) {
	var sub models.SubTable
	reused := false

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// An active child means the waiter re-opened the split dialog;
		// hand the same sub-table back instead of minting another.
		err := tx.Where("parent_table_id = ? AND status IN ?", parentID,
			[]int{models.SubTableRunning, models.SubTableBilled}).
			Order("name ASC").
			First(&sub).Error
		if err == nil {
			reused = true
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var parent models.Table
		if err := tx.First(&parent, parentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTableNotFound
			}
			return err
		}

		name := requestedName
		if name != "" {
			var existing models.SubTable
			err := tx.Where("parent_table_id = ? AND name = ?", parentID, name).First(&existing).Error
			switch {
			case err == nil && existing.Status == models.SubTableAvailable:
				if err := tx.Model(&existing).Update("status", models.SubTableRunning).Error; err != nil {
					return err
				}
				existing.Status = models.SubTableRunning
				sub = existing
				return OccupyTable(tx, parentID)
			case err == nil:
				return ErrSubTableInUse
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}
		} else {
			letter, err := nextFreeLetter(tx, parentID, parent.Name)
			if err != nil {
				return err
			}
			name = fmt.Sprintf("%s%s", parent.Name, letter)
		}

		sub = models.SubTable{
			ParentTableID: parentID,
			Name:          name,
			OutletID:      parent.OutletID,
			DeptID:        parent.DeptID,
			HotelID:       parent.HotelID,
			Status:        models.SubTableRunning,
		}
		if err := tx.Create(&sub).Error; err != nil {
			return err
		}
		return OccupyTable(tx, parentID)
	})
	if err != nil {
		return nil, false, err
	}
	return &sub, reused, nil
}

// nextFreeLetter picks the first letter A-Z not used by an existing
// child of the parent.
func nextFreeLetter(tx *gorm.DB, parentID uint, parentName string) (string, error) {
	var existing []models.SubTable
	if err := tx.Where("parent_table_id = ?", parentID).Find(&existing).Error; err != nil {
		return "", err
	}

	used := make(map[string]bool, len(existing))
	for _, st := range existing {
		// Free-form names do not follow the <parent><letter> pattern
		// and never block a letter.
		if !strings.HasPrefix(st.Name, parentName) {
			continue
		}
		suffix := st.Name[len(parentName):]
		if suffix != "" {
			used[suffix[:1]] = true
		}
	}

	for _, l := range subTableLetters {
		if !used[string(l)] {
			return string(l), nil
		}
	}
	return "", ErrAllLettersExhausted
}

// ReleaseSubTable resets a sub-table to available, clears its KOT
// reference, and releases the parent when no sibling remains active.
func (s *SubTableService) ReleaseSubTable(id uint) (*models.SubTable, error) {
	var sub models.SubTable

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&sub, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubTableNotFound
			}
			return err
		}
		return releaseSubTableTx(tx, id)
	})
	if err != nil {
		return nil, err
	}

	if err := s.DB.First(&sub, id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// releaseSubTableTx is the transactional core, shared with settlement.
func releaseSubTableTx(tx *gorm.DB, id uint) error {
	var sub models.SubTable
	if err := tx.First(&sub, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubTableNotFound
		}
		return err
	}

	if err := tx.Model(&sub).Updates(map[string]interface{}{
		"status": models.SubTableAvailable,
		"kot_no": nil,
	}).Error; err != nil {
		return err
	}

	var siblings int64
	err := tx.Model(&models.SubTable{}).
		Where("parent_table_id = ? AND status > ? AND id <> ?",
			sub.ParentTableID, models.SubTableAvailable, id).
		Count(&siblings).Error
	if err != nil {
		return err
	}
	if siblings > 0 {
		return nil
	}

	return tx.Model(&models.Table{}).
		Where("id = ?", sub.ParentTableID).
		Update("status", models.TableStatusVacant).Error
}

// CheckAndCleanupAllSettled deletes every child of the parent and
// releases it, but only when no child carries an unsettled bill.
// Otherwise it reports per-child settlement status without mutating
// anything.
func (s *SubTableService) CheckAndCleanupAllSettled(parentID uint) (bool, []SubTableStatus, error) {
	var cleaned bool
	var report []SubTableStatus

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var children []models.SubTable
		if err := tx.Where("parent_table_id = ?", parentID).
			Order("name ASC").Find(&children).Error; err != nil {
			return err
		}

		allSettled := true
		for _, child := range children {
			var open int64
			err := tx.Model(&models.Bill{}).
				Where("sub_table_id = ? AND is_cancelled = ? AND is_settled = ?", child.ID, false, false).
				Count(&open).Error
			if err != nil {
				return err
			}

			settled := open == 0
			if !settled {
				allSettled = false
			}
			report = append(report, SubTableStatus{
				SubTableID: child.ID,
				Name:       child.Name,
				Status:     child.Status,
				Settled:    settled,
			})
		}

		if !allSettled || len(children) == 0 {
			// No children means nothing to clean.
			cleaned = len(children) == 0
			return nil
		}

		if err := tx.Where("parent_table_id = ?", parentID).
			Delete(&models.SubTable{}).Error; err != nil {
			return err
		}
		if err := ReleaseTable(tx, parentID); err != nil {
			return err
		}
		cleaned = true
		report = nil
		return nil
	})
	if err != nil {
		return false, nil, err
	}
	return cleaned, report, nil
}

// DeleteSubTable hard-deletes a single child; active children are
// protected until their bill is settled.
func (s *SubTableService) DeleteSubTable(id uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var sub models.SubTable
		if err := tx.First(&sub, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubTableNotFound
			}
			return err
		}
		if sub.Status > models.SubTableAvailable {
			return ErrSubTableActive
		}
		return tx.Delete(&models.SubTable{}, id).Error
	})
}

// InitializeSubTables pre-creates all 26 lettered children for a parent
// as available, skipping any that already exist.
func (s *SubTableService) InitializeSubTables(parentID uint) (int, error) {
	created := 0

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var parent models.Table
		if err := tx.First(&parent, parentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTableNotFound
			}
			return err
		}

		var existing []models.SubTable
		if err := tx.Where("parent_table_id = ?", parentID).Find(&existing).Error; err != nil {
			return err
		}
		have := make(map[string]bool, len(existing))
		for _, st := range existing {
			have[st.Name] = true
		}

		for _, l := range subTableLetters {
			name := fmt.Sprintf("%s%s", parent.Name, string(l))
			if have[name] {
				continue
			}
			sub := models.SubTable{
				ParentTableID: parentID,
				Name:          name,
				OutletID:      parent.OutletID,
				DeptID:        parent.DeptID,
				HotelID:       parent.HotelID,
				Status:        models.SubTableAvailable,
			}
			if err := tx.Create(&sub).Error; err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}
