package dto

import (
	"time"

	"rentora/internal/domain/availability"
)

type Calendar struct {
	PropertyID   string   `json:"property_id"`
	From         string   `json:"from"`
	To           string   `json:"to"`
	BlockedDates []string `json:"blocked_dates"`
}

func NewCalendar(c *availability.Calendar, from, to time.Time) Calendar {
	blocked := c.BlockedDates(from, to)
	dates := make([]string, 0, len(blocked))
	for _, d := range blocked {
		dates = append(dates, d.Format(dateLayout))
	}
	return Calendar{
		PropertyID:   string(c.PropertyID),
		From:         from.Format(dateLayout),
		To:           to.Format(dateLayout),
		BlockedDates: dates,
	}
}
