package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrInvalidCron — cron-выражение не разбирается.
var ErrInvalidCron = errors.New("invalid cron expression")

// cronParser — парсер стандартных cron-выражений из пяти полей.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseCron разбирает cron-выражение.
func ParseCron(expr string) (cron.Schedule, error) {
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidCron, expr, err)
	}
	return schedule, nil
}

// ValidateCronExpr проверяет валидность cron-выражения.
func ValidateCronExpr(expr string) error {
	_, err := ParseCron(expr)
	return err
}

// LoadLocation загружает timezone. Пустое или неизвестное имя даёт UTC.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// CalculateNext вычисляет следующее время запуска после from.
// Выражение интерпретируется в timezone loc, результат возвращается в UTC.
func CalculateNext(schedule cron.Schedule, loc *time.Location, from time.Time) time.Time {
	return schedule.Next(from.In(loc)).UTC()
}
