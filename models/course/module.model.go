package course

import "time"

// Module represents a section/module within a course
type Module struct {
	ID         string    `json:"id" gorm:"primaryKey;size:64"`
	CourseID   string    `json:"course_id" gorm:"index;size:64;not null"`
	Title      string    `json:"title"`
	OrderIndex int       `json:"order_index" gorm:"default:0"` // Module order in course
	IsDeleted  bool      `json:"-" gorm:"default:false"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Module) TableName() string {
	return "course_modules"
}

// Lesson is the unit of progress tracking
type Lesson struct {
	ID         string    `json:"id" gorm:"primaryKey;size:64"`
	CourseID   string    `json:"course_id" gorm:"index;size:64;not null"`
	ModuleID   string    `json:"module_id" gorm:"index;size:64;not null"`
	Title      string    `json:"title"`
	OrderIndex int       `json:"order_index" gorm:"default:0"` // Lesson order within module
	IsDeleted  bool      `json:"-" gorm:"default:false"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Lesson) TableName() string {
	return "course_lessons"
}

// Outline is a course's lessons grouped by module, both in course order.
type Outline struct {
	Modules []OutlineModule
}

type OutlineModule struct {
	ModuleID  string
	LessonIDs []string
}

// LessonIDs flattens the outline in course order.
func (o Outline) LessonIDs() []string {
	var ids []string
	for _, m := range o.Modules {
		ids = append(ids, m.LessonIDs...)
	}
	return ids
}

// Contains reports whether lessonID belongs to the outline.
func (o Outline) Contains(lessonID string) bool {
	for _, m := range o.Modules {
		for _, id := range m.LessonIDs {
			if id == lessonID {
				return true
			}
		}
	}
	return false
}

// BuildOutline groups lessons under their modules. Modules and lessons must already be sorted.
func BuildOutline(modules []Module, lessons []Lesson) Outline {
	byModule := make(map[string][]string, len(modules))
	for _, l := range lessons {
		byModule[l.ModuleID] = append(byModule[l.ModuleID], l.ID)
	}
	out := Outline{Modules: make([]OutlineModule, 0, len(modules))}
	for _, m := range modules {
		out.Modules = append(out.Modules, OutlineModule{ModuleID: m.ID, LessonIDs: byModule[m.ID]})
	}
	return out
}
