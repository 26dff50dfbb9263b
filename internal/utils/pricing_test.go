package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"gearbook-backend/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDurationDays(t *testing.T) {
	assert.Equal(t, int32(1), DurationDays(day(2026, 3, 2), day(2026, 3, 2)))
	assert.Equal(t, int32(3), DurationDays(day(2026, 3, 2), day(2026, 3, 4)))
	// Timestamps inside the day do not change the count.
	assert.Equal(t, int32(3), DurationDays(
		time.Date(2026, 3, 2, 23, 59, 0, 0, time.UTC),
		time.Date(2026, 3, 4, 0, 1, 0, 0, time.UTC)))
}

func TestReservationCost(t *testing.T) {
	daily := &domain.Product{PricePerPeriod: 10, CreditPeriod: domain.CreditPeriodDay}
	weekly := &domain.Product{PricePerPeriod: 50, CreditPeriod: domain.CreditPeriodWeek}

	t.Run("Daily billing", func(t *testing.T) {
		cost, err := ReservationCost(daily, day(2026, 3, 2), day(2026, 3, 4))
		assert.NoError(t, err)
		assert.Equal(t, int32(30), cost)
	})

	t.Run("Partial week rounds up", func(t *testing.T) {
		cost, err := ReservationCost(weekly, day(2026, 3, 2), day(2026, 3, 4))
		assert.NoError(t, err)
		assert.Equal(t, int32(50), cost)
	})

	t.Run("Exactly two weeks", func(t *testing.T) {
		cost, err := ReservationCost(weekly, day(2026, 3, 2), day(2026, 3, 15))
		assert.NoError(t, err)
		assert.Equal(t, int32(100), cost)
	})

	t.Run("Eight days rounds to two weeks", func(t *testing.T) {
		cost, err := ReservationCost(weekly, day(2026, 3, 2), day(2026, 3, 9))
		assert.NoError(t, err)
		assert.Equal(t, int32(100), cost)
	})

	t.Run("Inverted range errors", func(t *testing.T) {
		_, err := ReservationCost(daily, day(2026, 3, 4), day(2026, 3, 2))
		assert.Error(t, err)
	})
}

func TestExtensionCost(t *testing.T) {
	daily := &domain.Product{PricePerPeriod: 10, CreditPeriod: domain.CreditPeriodDay}
	weekly := &domain.Product{PricePerPeriod: 50, CreditPeriod: domain.CreditPeriodWeek}

	t.Run("Charges only the added days", func(t *testing.T) {
		// The current end day is already paid for.
		cost, err := ExtensionCost(daily, day(2026, 3, 4), day(2026, 3, 6))
		assert.NoError(t, err)
		assert.Equal(t, int32(20), cost)
	})

	t.Run("Week period rounds up on the delta", func(t *testing.T) {
		cost, err := ExtensionCost(weekly, day(2026, 3, 4), day(2026, 3, 6))
		assert.NoError(t, err)
		assert.Equal(t, int32(50), cost)
	})

	t.Run("Same or earlier end errors", func(t *testing.T) {
		_, err := ExtensionCost(daily, day(2026, 3, 4), day(2026, 3, 4))
		assert.Error(t, err)
		_, err = ExtensionCost(daily, day(2026, 3, 4), day(2026, 3, 1))
		assert.Error(t, err)
	})
}

func TestParseDate(t *testing.T) {
	parsed, err := ParseDate("2026-03-02")
	assert.NoError(t, err)
	assert.Equal(t, day(2026, 3, 2), parsed)

	_, err = ParseDate("03/02/2026")
	assert.Error(t, err)
}
