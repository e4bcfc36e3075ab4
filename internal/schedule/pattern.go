package schedule

import "github.com/Spok95/school-planner/internal/models"

// DefaultPattern — дневная сетка: 1-6 и 8-9 уроки, седьмого нет
// (большая перемена съедает слот).
func DefaultPattern() models.SchedulePattern {
	return models.SchedulePattern{
		{Period: 1, Label: "1- 08:00-08:45"},
		{Period: 2, Label: "2- 08:45-09:30"},
		{BreakMinutes: 25, Label: "Pause 25min"},
		{Period: 3, Label: "3- 09:55-10:40"},
		{Period: 4, Label: "4- 10:40-11:25"},
		{BreakMinutes: 20, Label: "Pause 20min"},
		{Period: 5, Label: "5- 11:45-12:30"},
		{Period: 6, Label: "6- 12:30-13:15"},
		{BreakMinutes: 45, Label: "Pause 45min"},
		{Period: 8, Label: "8- 14:00-14:45"},
		{Period: 9, Label: "9- 14:45-15:30"},
	}
}
