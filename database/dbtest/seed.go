package dbtest

import (
	"fmt"
	"testing"

	courseModels "skillchain/models/course"
	jobModels "skillchain/models/job"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// SeedCourse inserts a published course with one module per entry of
// lessonsPerModule. Modules are "<id>-m<i>" and lessons "<id>-m<i>-l<j>",
// both numbered from 1.
func SeedCourse(t testing.TB, db *gorm.DB, id, instructorID string, price float64, lessonsPerModule ...int) courseModels.Course {
	t.Helper()

	course := courseModels.Course{
		ID:           id,
		Title:        "Course " + id,
		InstructorID: instructorID,
		Price:        price,
		Currency:     "NGN",
		Status:       "ACTIVE",
		IsPublished:  true,
	}
	require.NoError(t, db.Create(&course).Error)

	for i, count := range lessonsPerModule {
		moduleID := fmt.Sprintf("%s-m%d", id, i+1)
		require.NoError(t, db.Create(&courseModels.Module{
			ID:         moduleID,
			CourseID:   id,
			Title:      fmt.Sprintf("Module %d", i+1),
			OrderIndex: i + 1,
		}).Error)
		for j := 0; j < count; j++ {
			require.NoError(t, db.Create(&courseModels.Lesson{
				ID:         fmt.Sprintf("%s-l%d", moduleID, j+1),
				CourseID:   id,
				ModuleID:   moduleID,
				Title:      fmt.Sprintf("Lesson %d.%d", i+1, j+1),
				OrderIndex: j + 1,
			}).Error)
		}
	}
	return course
}

// SeedJob inserts an open job owned by clientID.
func SeedJob(t testing.TB, db *gorm.DB, id, clientID string) jobModels.Job {
	t.Helper()

	job := jobModels.Job{ID: id, ClientID: clientID, Title: "Job " + id, Budget: 50000, Status: jobModels.JobOpen}
	require.NoError(t, db.Create(&job).Error)
	return job
}
