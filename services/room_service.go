package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hotel-pms/models"

	"gorm.io/gorm"
)

type RoomService struct {
	DB    *gorm.DB
	Clock Clock
}

func NewRoomService(db *gorm.DB, clock Clock) *RoomService {
	return &RoomService{DB: db, Clock: clock}
}

type RoomInput struct {
	RoomNumber  string `json:"room_number" validate:"required,max=50"`
	RoomTypeID  uint   `json:"room_type_id" validate:"required"`
	Name        string `json:"name" validate:"max=120"`
	Floor       string `json:"floor" validate:"max=10"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

type RoomFilter struct {
	Status     models.RoomStatus
	RoomTypeID uint
	Floor      string
	Search     string
}

func (s *RoomService) List(ctx context.Context, actor ActorContext, f RoomFilter) ([]models.Room, error) {
	q := s.DB.WithContext(ctx).Preload("RoomType").Where("branch_id = ?", actor.BranchID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.RoomTypeID != 0 {
		q = q.Where("room_type_id = ?", f.RoomTypeID)
	}
	if f.Floor != "" {
		q = q.Where("floor = ?", f.Floor)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + term + "%"
		q = q.Where("room_number LIKE ? OR name LIKE ?", like, like)
	}
	var rooms []models.Room
	err := q.Order("floor").Order("room_number").Find(&rooms).Error
	return rooms, err
}

func (s *RoomService) Get(ctx context.Context, actor ActorContext, id uint) (*models.Room, error) {
	var room models.Room
	err := s.DB.WithContext(ctx).Preload("RoomType").
		Where("id = ? AND branch_id = ?", id, actor.BranchID).
		First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

func (s *RoomService) checkRoomType(db *gorm.DB, id uint) error {
	var rt models.RoomType
	if err := db.First(&rt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newValidationError("room_type_id", "exists")
		}
		return err
	}
	return nil
}

// Create registers a room in the actor's branch. New rooms start available.
func (s *RoomService) Create(ctx context.Context, actor ActorContext, in RoomInput) (*models.Room, error) {
	in.RoomNumber = strings.TrimSpace(in.RoomNumber)
	if fields := validateInput(in); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}
	db := s.DB.WithContext(ctx)
	if err := s.checkRoomType(db, in.RoomTypeID); err != nil {
		return nil, err
	}
	room := models.Room{
		BranchID:    actor.BranchID,
		RoomTypeID:  in.RoomTypeID,
		RoomNumber:  in.RoomNumber,
		Name:        in.Name,
		Floor:       in.Floor,
		Description: in.Description,
		Status:      models.RoomAvailable,
		IsActive:    in.IsActive == nil || *in.IsActive,
	}
	if err := db.Create(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// Update edits descriptive fields only. Status has its own endpoint.
func (s *RoomService) Update(ctx context.Context, actor ActorContext, id uint, in RoomInput) (*models.Room, error) {
	in.RoomNumber = strings.TrimSpace(in.RoomNumber)
	if fields := validateInput(in); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}
	db := s.DB.WithContext(ctx)
	room, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkRoomType(db, in.RoomTypeID); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{
		"room_number":  in.RoomNumber,
		"room_type_id": in.RoomTypeID,
		"name":         in.Name,
		"floor":        in.Floor,
		"description":  in.Description,
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if err := db.Model(room).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, actor, id)
}

// Delete soft-deletes a room that holds no active booking.
func (s *RoomService) Delete(ctx context.Context, actor ActorContext, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := lockRoom(tx, actor, id)
		if err != nil {
			return err
		}
		busy, err := hasActiveBooking(tx, room.ID)
		if err != nil {
			return err
		}
		if busy {
			return ErrRoomHasActiveBooking
		}
		return tx.Delete(room).Error
	})
}

type RoomStatusInput struct {
	Status models.RoomStatus `json:"status" validate:"required,oneof=available maintenance cleaning"`
	Reason string            `json:"reason" validate:"max=255"`
}

// ChangeStatus applies an operator transition. occupied is only entered and
// left through the booking lifecycle, and a room held by an active booking
// cannot be changed by hand.
func (s *RoomService) ChangeStatus(ctx context.Context, actor ActorContext, id uint, in RoomStatusInput) (*models.Room, error) {
	if fields := validateInput(in); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := lockRoom(tx, actor, id)
		if err != nil {
			return err
		}
		if !room.Status.ManualTransitionAllowed(in.Status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidRoomTransition, room.Status, in.Status)
		}
		busy, err := hasActiveBooking(tx, room.ID)
		if err != nil {
			return err
		}
		if busy {
			return ErrRoomHasActiveBooking
		}
		reason := strings.TrimSpace(in.Reason)
		if reason == "" {
			reason = "manual status change"
		}
		return transitionRoom(tx, room, in.Status, nil, actor, reason, s.Clock.Now(), nil)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, actor, id)
}

// Release hands a cleaned room back to the available pool.
func (s *RoomService) Release(ctx context.Context, actor ActorContext, id uint) (*models.Room, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := lockRoom(tx, actor, id)
		if err != nil {
			return err
		}
		if room.Status != models.RoomCleaning {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidRoomTransition, room.Status, models.RoomAvailable)
		}
		return transitionRoom(tx, room, models.RoomAvailable, nil, actor, "cleaning finished", s.Clock.Now(), nil)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, actor, id)
}

func (s *RoomService) StatusLogs(ctx context.Context, actor ActorContext, id uint, limit int) ([]models.RoomStatusLog, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var logs []models.RoomStatusLog
	err := s.DB.WithContext(ctx).Where("room_id = ?", id).
		Order("changed_at DESC").Order("id DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

type RoomStats struct {
	Total    int64                       `json:"total"`
	Active   int64                       `json:"active"`
	ByStatus map[models.RoomStatus]int64 `json:"by_status"`
}

func (s *RoomService) Stats(ctx context.Context, actor ActorContext) (*RoomStats, error) {
	var rows []struct {
		Status models.RoomStatus
		Total  int64
	}
	db := s.DB.WithContext(ctx)
	if err := db.Model(&models.Room{}).
		Select("status, COUNT(*) AS total").
		Where("branch_id = ?", actor.BranchID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	stats := &RoomStats{ByStatus: map[models.RoomStatus]int64{
		models.RoomAvailable:   0,
		models.RoomOccupied:    0,
		models.RoomMaintenance: 0,
		models.RoomCleaning:    0,
	}}
	for _, r := range rows {
		stats.ByStatus[r.Status] = r.Total
		stats.Total += r.Total
	}
	if err := db.Model(&models.Room{}).
		Where("branch_id = ? AND is_active = ?", actor.BranchID, true).
		Count(&stats.Active).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
