package domain

import (
	"time"
)

// referenceZone: часовой пояс, в котором LeetCode меняет задачу дня.
const referenceZone = "America/Los_Angeles"

var referenceLocation = loadReferenceLocation()

func loadReferenceLocation() *time.Location {
	loc, err := time.LoadLocation(referenceZone)
	if err != nil {
		// без tzdata в образе: фиксированный PST без перехода на летнее время
		return time.FixedZone("PST", -8*60*60)
	}
	return loc
}

// ReferenceLocation возвращает часовой пояс ротации задач.
func ReferenceLocation() *time.Location {
	return referenceLocation
}

// TaskID строит идентификатор задачи по календарной дате: 2021-02-14 -> 20210214.
func TaskID(date time.Time) int64 {
	return int64(date.Year())*10000 + int64(date.Month())*100 + int64(date.Day())
}

// TaskDate переводит момент времени в часовой пояс ротации задач.
func TaskDate(now time.Time) time.Time {
	return now.In(referenceLocation)
}

// TaskIDForNow возвращает идентификатор задачи, актуальной в момент now.
func TaskIDForNow(now time.Time) int64 {
	return TaskID(TaskDate(now))
}
