// Package projectstore is the gorm-backed project store. It is whole-row:
// every upsert replaces the entire project record, so the writer that lands
// last wins, with no merging of concurrent edits.
package projectstore

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"agency-budget-go/internal/domain/project"
)

type GormRepository struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) List(ctx context.Context) ([]project.Project, error) {
	var rows []projectRow
	if err := r.db.WithContext(ctx).
		Order("created_at desc, id asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]project.Project, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toProject())
	}
	return items, nil
}

func (r *GormRepository) GetByID(ctx context.Context, id string) (*project.Project, error) {
	var row projectRow
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, project.ErrProjectNotFound
		}
		return nil, err
	}
	p := row.toProject()
	return &p, nil
}

func (r *GormRepository) Upsert(ctx context.Context, p *project.Project) error {
	row := rowFromProject(p)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&row).Error
}

func (r *GormRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&projectRow{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}
