package progress

import (
	"math"

	courseModels "skillchain/models/course"
)

// State is the derived progress of an enrollment against a course outline
type State struct {
	Completed      []string
	Progress       int
	NextLesson     string
	TotalLessons   int
	ModuleProgress map[string]int
}

// Apply adds or removes lessonID from completed and derives the new state.
// Only lessons that are still part of the outline count towards progress.
func Apply(outline courseModels.Outline, completed []string, lessonID string, done bool) State {
	set := make(map[string]bool, len(completed)+1)
	for _, id := range completed {
		set[id] = true
	}
	if done {
		set[lessonID] = true
	} else {
		delete(set, lessonID)
	}
	return derive(outline, set)
}

func derive(outline courseModels.Outline, set map[string]bool) State {
	st := State{
		Completed:      []string{},
		ModuleProgress: make(map[string]int, len(outline.Modules)),
	}

	var done int
	for _, m := range outline.Modules {
		var moduleDone int
		for _, id := range m.LessonIDs {
			st.TotalLessons++
			if set[id] {
				done++
				moduleDone++
				st.Completed = append(st.Completed, id)
			} else if st.NextLesson == "" {
				st.NextLesson = id
			}
		}
		st.ModuleProgress[m.ModuleID] = percent(moduleDone, len(m.LessonIDs))
	}
	st.Progress = percent(done, st.TotalLessons)
	return st
}

// percent is round(100*done/total) clamped to [0, 100]; an empty total is 0.
func percent(done, total int) int {
	if total <= 0 {
		return 0
	}
	p := int(math.Round(100 * float64(done) / float64(total)))
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
