package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/month"
)

// Detection thresholds. A transaction is flagged high-value above
// highValueFactor times the window mean, and escalated to critical above
// criticalValueFactor. Category spending is flagged when the month-to-date
// total passes categorySpikeFactor times the category's average transaction.
const (
	highValueFactor     = 2.5
	criticalValueFactor = 4.0
	categorySpikeFactor = 3.0
	frequencySpikeCount = 5

	// minHistorySize is the cold-start floor: with fewer prior transactions
	// there is no baseline worth comparing against.
	minHistorySize = 5
)

// anomalyService runs statistical checks over the user's recent expense
// history whenever a new expense is recorded.
type anomalyService struct {
	db            *gorm.DB
	users         UserServicer
	notifications NotificationServicer
	windowDays    int
}

// NewAnomalyService creates a new AnomalyServicer. windowDays bounds how far
// back the baseline history reaches.
func NewAnomalyService(db *gorm.DB, users UserServicer, notifications NotificationServicer, windowDays int) AnomalyServicer {
	return &anomalyService{db: db, users: users, notifications: notifications, windowDays: windowDays}
}

// Detect runs all checks against the transaction and returns the anomalies
// found. Income transactions are never flagged. With fewer than five prior
// expenses in the window the detector stays silent.
func (s *anomalyService) Detect(userID string, txn *models.Transaction) ([]Anomaly, error) {
	if txn.Type != models.TransactionTypeExpense {
		return nil, nil
	}

	windowStart := txn.Date.AddDate(0, 0, -s.windowDays)

	var history []models.Transaction
	err := s.db.
		Where("user_id = ? AND type = ? AND id <> ? AND date >= ? AND date <= ?",
			userID, models.TransactionTypeExpense, txn.ID, windowStart, txn.Date).
		Find(&history).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(history) < minHistorySize {
		return nil, nil
	}

	var anomalies []Anomaly
	if a := s.highValueCheck(txn, history); a != nil {
		anomalies = append(anomalies, *a)
	}

	a, err := s.categorySpikeCheck(userID, txn, history)
	if err != nil {
		return nil, err
	}
	if a != nil {
		anomalies = append(anomalies, *a)
	}

	a, err = s.frequencySpikeCheck(userID, txn)
	if err != nil {
		return nil, err
	}
	if a != nil {
		anomalies = append(anomalies, *a)
	}

	return anomalies, nil
}

// DetectAndNotify runs Detect and writes one notification per anomaly through
// the deduplicated sink. The dedupe key binds the transaction and check type,
// so re-evaluating the same transaction never duplicates an alert.
func (s *anomalyService) DetectAndNotify(userID string, txn *models.Transaction) error {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return err
	}
	if !user.Settings.Notifications.Enabled {
		return nil
	}

	anomalies, err := s.Detect(userID, txn)
	if err != nil {
		return err
	}

	for _, anomaly := range anomalies {
		notification := &models.Notification{
			UserID:    userID,
			Kind:      models.NotificationKindUnusualActivity,
			Title:     anomaly.Title,
			Message:   anomaly.Message,
			Severity:  anomaly.Severity,
			DedupeKey: fmt.Sprintf("unusual_activity:%s:%s", txn.ID, anomaly.Type),
			Meta:      anomaly.Meta,
		}
		if _, err := s.notifications.UpsertIfAbsent(notification); err != nil {
			return err
		}
	}
	return nil
}

// highValueCheck flags a transaction far above the user's mean expense in the
// window.
func (s *anomalyService) highValueCheck(txn *models.Transaction, history []models.Transaction) *Anomaly {
	amounts := make([]float64, 0, len(history))
	for _, h := range history {
		v, _ := h.Amount.Float64()
		amounts = append(amounts, v)
	}
	mean := stat.Mean(amounts, nil)
	if mean <= 0 {
		return nil
	}

	amount, _ := txn.Amount.Float64()
	ratio := amount / mean
	if ratio <= highValueFactor {
		return nil
	}

	severity := models.SeverityWarning
	if ratio > criticalValueFactor {
		severity = models.SeverityCritical
	}
	return &Anomaly{
		Type:     AnomalyHighValue,
		Title:    "Unusually large expense",
		Message:  fmt.Sprintf("This %s expense of %s is %.1fx your average of %.2f over the last %d days.", txn.Category, txn.Amount.StringFixed(2), ratio, mean, s.windowDays),
		Severity: severity,
		Meta: map[string]any{
			"transaction_id": txn.ID,
			"category":       txn.Category,
			"amount":         txn.Amount.String(),
			"mean":           mean,
			"ratio":          ratio,
		},
	}
}

// categorySpikeCheck flags a category whose month-to-date spend has blown past
// the category's average transaction amount in the window.
func (s *anomalyService) categorySpikeCheck(userID string, txn *models.Transaction, history []models.Transaction) (*Anomaly, error) {
	amounts := make([]float64, 0, len(history))
	for _, h := range history {
		if h.Category != txn.Category {
			continue
		}
		v, _ := h.Amount.Float64()
		amounts = append(amounts, v)
	}
	if len(amounts) == 0 {
		return nil, nil
	}
	catAvg := stat.Mean(amounts, nil)
	if catAvg <= 0 {
		return nil, nil
	}

	monthStart := month.StartOfMonth(txn.Date)
	mtd, err := s.sumCategory(userID, txn.Category, monthStart, txn.Date)
	if err != nil {
		return nil, err
	}
	mtdVal, _ := mtd.Float64()
	if mtdVal <= categorySpikeFactor*catAvg {
		return nil, nil
	}

	return &Anomaly{
		Type:     AnomalyCategorySpike,
		Title:    fmt.Sprintf("Spending spike in %s", txn.Category),
		Message:  fmt.Sprintf("You have spent %s on %s this month, over 3x your usual %s expense of %.2f.", mtd.StringFixed(2), txn.Category, txn.Category, catAvg),
		Severity: models.SeverityWarning,
		Meta: map[string]any{
			"transaction_id": txn.ID,
			"category":       txn.Category,
			"month_to_date":  mtd.String(),
			"category_mean":  catAvg,
		},
	}, nil
}

// frequencySpikeCheck flags a burst of expenses on a single calendar day.
func (s *anomalyService) frequencySpikeCheck(userID string, txn *models.Transaction) (*Anomaly, error) {
	dayStart := month.StartOfDay(txn.Date)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var count int64
	err := s.db.Model(&models.Transaction{}).
		Where("user_id = ? AND type = ? AND date >= ? AND date < ?",
			userID, models.TransactionTypeExpense, dayStart, dayEnd).
		Count(&count).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count < frequencySpikeCount {
		return nil, nil
	}

	return &Anomaly{
		Type:     AnomalyFrequencySpike,
		Title:    "Many expenses today",
		Message:  fmt.Sprintf("You have recorded %d expenses today.", count),
		Severity: models.SeverityInfo,
		Meta: map[string]any{
			"transaction_id": txn.ID,
			"date":           month.DateKey(txn.Date),
			"count":          count,
		},
	}, nil
}

// sumCategory totals the user's expenses for one category over [start, end].
func (s *anomalyService) sumCategory(userID, category string, start, end time.Time) (decimal.Decimal, error) {
	var rows []struct {
		Total decimal.Decimal
	}
	err := s.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ? AND type = ? AND category = ? AND date >= ? AND date <= ?",
			userID, models.TransactionTypeExpense, category, start, end).
		Scan(&rows).Error
	if err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(rows) == 0 {
		return decimal.Zero, nil
	}
	return rows[0].Total, nil
}
