package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"notes-bot/internal/model"
)

// DestinationRepository keeps user sheets in the user_destinations table.
type DestinationRepository struct {
	db *gorm.DB
}

func NewDestinationRepository(db *gorm.DB) *DestinationRepository {
	return &DestinationRepository{db: db}
}

func (r *DestinationRepository) Load(ctx context.Context) (map[int64]string, error) {
	var rows []model.UserDestination
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list destinations: %w", err)
	}
	out := make(map[int64]string, len(rows))
	for _, row := range rows {
		out[row.UserID] = row.SheetURL
	}
	return out, nil
}

// Save upserts the snapshot in one transaction. Rows whose sheet did not
// change are left alone, so updated_at tracks the user's last /set_sheet.
func (r *DestinationRepository) Save(ctx context.Context, snapshot map[int64]string) error {
	if len(snapshot) == 0 {
		return nil
	}
	rows := make([]model.UserDestination, 0, len(snapshot))
	for id, url := range snapshot {
		rows = append(rows, model.UserDestination{UserID: id, SheetURL: url})
	}
	changed := clause.Where{Exprs: []clause.Expression{
		clause.Expr{SQL: "excluded.sheet_url <> user_destinations.sheet_url"},
	}}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"sheet_url", "updated_at"}),
			Where:     changed,
		}).Create(&rows).Error
		if err != nil {
			return fmt.Errorf("upsert destinations: %w", err)
		}
		return nil
	})
}
