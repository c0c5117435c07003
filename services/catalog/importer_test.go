package catalog

import (
	"context"
	"strings"
	"testing"

	"skillchain/database/dbtest"
	courseModels "skillchain/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogCSV = `course_id,course_title,instructor_id,price,currency,published,module_id,module_title,module_order,lesson_id,lesson_title,lesson_order
go101,Go Basics,i1,5000,ngn,true,go101-m1,Intro,1,go101-l1,Hello,1
go101,Go Basics,i1,5000,ngn,true,go101-m1,Intro,1,go101-l2,Types,2
go101,Go Basics,i1,5000,ngn,true,go101-m2,Concurrency,2,go101-l3,Goroutines,1
,Orphan,i1,0,,true,x-m1,X,1,x-l1,X,1
free,Free Course,i2,0,,false,free-m1,Only,1,free-l1,Only,1
`

func TestReadCSV(t *testing.T) {
	rows, skipped, err := ReadCSV(strings.NewReader(catalogCSV))
	require.NoError(t, err)
	require.Len(t, rows, 4)
	require.Len(t, skipped, 1)
	assert.Contains(t, skipped[0].Error(), "line 5")

	assert.Equal(t, "NGN", rows[0].Currency)
	assert.True(t, rows[0].Published)
	assert.Equal(t, 5000.0, rows[0].Price)
	assert.Equal(t, 2, rows[2].ModuleOrder)
	assert.False(t, rows[3].Published)
}

func TestReadCSVRejectsMissingColumns(t *testing.T) {
	_, _, err := ReadCSV(strings.NewReader("course_id,lesson_id\nc1,l1\n"))
	assert.ErrorContains(t, err, "instructor_id")

	_, _, err = ReadCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestImportUpsertsCatalog(t *testing.T) {
	db := dbtest.Open(t)
	rows, _, err := ReadCSV(strings.NewReader(catalogCSV))
	require.NoError(t, err)

	report, err := Import(context.Background(), db, rows)
	require.NoError(t, err)
	assert.Equal(t, ImportReport{Courses: 2, Modules: 3, Lessons: 4}, *report)

	outline, err := LoadOutline(db, "go101")
	require.NoError(t, err)
	assert.Equal(t, []string{"go101-l1", "go101-l2", "go101-l3"}, outline.LessonIDs())

	// Re-import with a price change keeps the student count
	require.NoError(t, db.Model(&courseModels.Course{}).Where("id = ?", "go101").Update("student_count", 7).Error)
	for i := range rows {
		if rows[i].CourseID == "go101" {
			rows[i].Price = 6500
		}
	}
	_, err = Import(context.Background(), db, rows)
	require.NoError(t, err)

	course, err := GetCourse(db, "go101")
	require.NoError(t, err)
	assert.Equal(t, 6500.0, course.Price)
	assert.EqualValues(t, 7, course.StudentCount)
	assert.True(t, course.IsPublished)

	var lessons int64
	require.NoError(t, db.Model(&courseModels.Lesson{}).Count(&lessons).Error)
	assert.EqualValues(t, 4, lessons)
}

func TestReadCSVSkipsMalformedNumbers(t *testing.T) {
	input := `course_id,instructor_id,price,published,module_id,lesson_id,lesson_order
c1,i1,"5,000",true,m1,l1,1
c2,i1,NaN,true,m2,l2,1
c3,i1,Inf,true,m3,l3,1
c4,i1,-10,true,m4,l4,1
c5,i1,2500,true,m5,l5,first
c6,i1,,true,m6,l6,
c7,i1,2500.50,true,m7,l7,2
`
	rows, skipped, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, skipped, 5)
	assert.Contains(t, skipped[0].Error(), "line 2: price")
	assert.Contains(t, skipped[1].Error(), "line 3: price")
	assert.Contains(t, skipped[2].Error(), "line 4: price")
	assert.Contains(t, skipped[3].Error(), "line 5: price")
	assert.Contains(t, skipped[4].Error(), "line 6: lesson_order")

	require.Len(t, rows, 2)
	assert.Equal(t, "c6", rows[0].CourseID)
	assert.Equal(t, 0.0, rows[0].Price)
	assert.Equal(t, 2500.5, rows[1].Price)
	assert.Equal(t, 2, rows[1].LessonOrder)
}
