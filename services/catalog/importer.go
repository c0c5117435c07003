package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"skillchain/database"
	courseModels "skillchain/models/course"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Row is one lesson line of a catalog file. Course and module columns repeat
// on every lesson of that course or module.
type Row struct {
	CourseID     string
	CourseTitle  string
	InstructorID string
	Price        float64
	Currency     string
	Published    bool
	ModuleID     string
	ModuleTitle  string
	ModuleOrder  int
	LessonID     string
	LessonTitle  string
	LessonOrder  int
}

var requiredColumns = []string{"course_id", "instructor_id", "module_id", "lesson_id"}

// ReadCSV parses a catalog file with a header row. Rows missing an id are
// reported and skipped; the remaining rows are returned.
func ReadCSV(r io.Reader) ([]Row, []error, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, errors.New("catalog file is empty")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	headerIndex := make(map[string]int, len(header))
	for i, h := range header {
		headerIndex[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := headerIndex[col]; !ok {
			return nil, nil, fmt.Errorf("missing column %q", col)
		}
	}

	var rows []Row
	var skipped []error
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			skipped = append(skipped, fmt.Errorf("line %d: %w", line, err))
			continue
		}

		field := func(name string) string {
			if idx, ok := headerIndex[name]; ok && idx < len(record) {
				return strings.TrimSpace(record[idx])
			}
			return ""
		}

		price, err := parseFloat(field("price"))
		if err != nil {
			skipped = append(skipped, fmt.Errorf("line %d: price: %w", line, err))
			continue
		}
		moduleOrder, err := parseInt(field("module_order"))
		if err != nil {
			skipped = append(skipped, fmt.Errorf("line %d: module_order: %w", line, err))
			continue
		}
		lessonOrder, err := parseInt(field("lesson_order"))
		if err != nil {
			skipped = append(skipped, fmt.Errorf("line %d: lesson_order: %w", line, err))
			continue
		}

		row := Row{
			CourseID:     field("course_id"),
			CourseTitle:  field("course_title"),
			InstructorID: field("instructor_id"),
			Price:        price,
			Currency:     strings.ToUpper(field("currency")),
			Published:    parseBool(field("published")),
			ModuleID:     field("module_id"),
			ModuleTitle:  field("module_title"),
			ModuleOrder:  moduleOrder,
			LessonID:     field("lesson_id"),
			LessonTitle:  field("lesson_title"),
			LessonOrder:  lessonOrder,
		}
		if row.CourseID == "" || row.InstructorID == "" || row.ModuleID == "" || row.LessonID == "" {
			skipped = append(skipped, fmt.Errorf("line %d: course_id, instructor_id, module_id and lesson_id are required", line))
			continue
		}
		rows = append(rows, row)
	}
	return rows, skipped, nil
}

type ImportReport struct {
	Courses int `json:"courses"`
	Modules int `json:"modules"`
	Lessons int `json:"lessons"`
}

// Import upserts the rows by id in a single transaction. Student counts and
// soft-delete flags of existing courses are left alone.
func Import(ctx context.Context, db *gorm.DB, rows []Row) (*ImportReport, error) {
	courses := make(map[string]courseModels.Course)
	modules := make(map[string]courseModels.Module)
	var courseOrder, moduleOrder []string
	lessons := make([]courseModels.Lesson, 0, len(rows))

	for _, r := range rows {
		if _, ok := courses[r.CourseID]; !ok {
			courseOrder = append(courseOrder, r.CourseID)
		}
		status := "DRAFT"
		if r.Published {
			status = "ACTIVE"
		}
		currency := r.Currency
		if currency == "" {
			currency = "NGN"
		}
		// The last row of a course wins for course-level columns
		courses[r.CourseID] = courseModels.Course{
			ID:           r.CourseID,
			Title:        r.CourseTitle,
			InstructorID: r.InstructorID,
			Price:        r.Price,
			Currency:     currency,
			Status:       status,
			IsPublished:  r.Published,
		}

		if _, ok := modules[r.ModuleID]; !ok {
			moduleOrder = append(moduleOrder, r.ModuleID)
		}
		modules[r.ModuleID] = courseModels.Module{
			ID:         r.ModuleID,
			CourseID:   r.CourseID,
			Title:      r.ModuleTitle,
			OrderIndex: r.ModuleOrder,
		}

		lessons = append(lessons, courseModels.Lesson{
			ID:         r.LessonID,
			CourseID:   r.CourseID,
			ModuleID:   r.ModuleID,
			Title:      r.LessonTitle,
			OrderIndex: r.LessonOrder,
		})
	}

	report := &ImportReport{Courses: len(courseOrder), Modules: len(moduleOrder), Lessons: len(lessons)}
	if len(rows) == 0 {
		return report, nil
	}

	err := database.Retry(ctx, func() error {
		return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for _, id := range courseOrder {
				course := courses[id]
				if err := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "id"}},
					DoUpdates: clause.AssignmentColumns([]string{"title", "instructor_id", "price", "currency", "status", "is_published", "updated_at"}),
				}).Create(&course).Error; err != nil {
					return fmt.Errorf("upsert course %s: %w", id, err)
				}
			}
			for _, id := range moduleOrder {
				module := modules[id]
				if err := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "id"}},
					DoUpdates: clause.AssignmentColumns([]string{"course_id", "title", "order_index", "updated_at"}),
				}).Create(&module).Error; err != nil {
					return fmt.Errorf("upsert module %s: %w", id, err)
				}
			}
			for i := range lessons {
				if err := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "id"}},
					DoUpdates: clause.AssignmentColumns([]string{"course_id", "module_id", "title", "order_index", "updated_at"}),
				}).Create(&lessons[i]).Error; err != nil {
					return fmt.Errorf("upsert lesson %s: %w", lessons[i].ID, err)
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// parseInt reads an optional integer column; empty means 0.
func parseInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return val, nil
}

// parseFloat reads an optional price column; empty means free. Prices must be
// plain finite non-negative decimals.
func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	val, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, fmt.Errorf("%q is not a valid amount", s)
	}
	if val < 0 {
		return 0, fmt.Errorf("%q is negative", s)
	}
	return val, nil
}

func parseBool(s string) bool {
	val, err := strconv.ParseBool(s)
	return err == nil && val
}
