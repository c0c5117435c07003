// Package catalog reads courses and their lesson outline.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"skillchain/apperrors"
	courseModels "skillchain/models/course"

	"gorm.io/gorm"
)

// GetCourse loads a course that has not been deleted.
func GetCourse(tx *gorm.DB, courseID string) (*courseModels.Course, error) {
	var course courseModels.Course
	err := tx.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("course %s: %w", courseID, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load course %s: %w", courseID, err)
	}
	return &course, nil
}

// LoadOutline returns the course's modules and lessons in course order.
func LoadOutline(tx *gorm.DB, courseID string) (courseModels.Outline, error) {
	var modules []courseModels.Module
	if err := tx.Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("order_index asc, id asc").
		Find(&modules).Error; err != nil {
		return courseModels.Outline{}, fmt.Errorf("load modules: %w", err)
	}

	var lessons []courseModels.Lesson
	if err := tx.Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("order_index asc, id asc").
		Find(&lessons).Error; err != nil {
		return courseModels.Outline{}, fmt.Errorf("load lessons: %w", err)
	}

	return courseModels.BuildOutline(modules, lessons), nil
}

// ListPublished pages through the courses open for enrollment, newest first.
func ListPublished(ctx context.Context, db *gorm.DB, page, limit int) ([]courseModels.Course, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	published := func() *gorm.DB {
		return db.WithContext(ctx).Model(&courseModels.Course{}).
			Where("is_published = ? AND is_deleted = ?", true, false)
	}

	var total int64
	if err := published().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}

	var courses []courseModels.Course
	if err := published().Order("created_at desc, id asc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&courses).Error; err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}
	return courses, total, nil
}

type ModuleDetail struct {
	courseModels.Module
	Lessons []courseModels.Lesson `json:"lessons"`
}

type CourseDetail struct {
	courseModels.Course
	Modules      []ModuleDetail `json:"modules"`
	TotalLessons int            `json:"total_lessons"`
}

// Detail returns a published course with its modules and lessons in course order.
func Detail(ctx context.Context, db *gorm.DB, courseID string) (*CourseDetail, error) {
	db = db.WithContext(ctx)

	course, err := GetCourse(db, courseID)
	if err != nil {
		return nil, err
	}
	if !course.IsPublished {
		return nil, fmt.Errorf("course %s: %w", courseID, apperrors.ErrNotFound)
	}

	var modules []courseModels.Module
	if err := db.Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("order_index asc, id asc").
		Find(&modules).Error; err != nil {
		return nil, fmt.Errorf("load modules: %w", err)
	}
	var lessons []courseModels.Lesson
	if err := db.Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("order_index asc, id asc").
		Find(&lessons).Error; err != nil {
		return nil, fmt.Errorf("load lessons: %w", err)
	}

	byModule := make(map[string][]courseModels.Lesson, len(modules))
	for _, l := range lessons {
		byModule[l.ModuleID] = append(byModule[l.ModuleID], l)
	}

	detail := &CourseDetail{Course: *course, Modules: make([]ModuleDetail, 0, len(modules))}
	for _, m := range modules {
		ls := byModule[m.ID]
		if ls == nil {
			ls = []courseModels.Lesson{}
		}
		detail.Modules = append(detail.Modules, ModuleDetail{Module: m, Lessons: ls})
		detail.TotalLessons += len(ls)
	}
	return detail, nil
}
