package repository

import (
	"errors"
	"time"

	"pulsebridge-consult/internal/domain/entity"
	domainRepo "pulsebridge-consult/internal/domain/repository"

	"gorm.io/gorm"
)

type paymentRepository struct{}

func NewPaymentRepository() domainRepo.PaymentRepository {
	return &paymentRepository{}
}

func (r *paymentRepository) Create(db *gorm.DB, payment *entity.Payment) error {
	return db.Create(payment).Error
}

func (r *paymentRepository) FindBySessionID(db *gorm.DB, sessionID string) (*entity.Payment, error) {
	var payment entity.Payment
	err := db.Where("session_id = ?", sessionID).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// MarkReleased moves held funds to released_to_doctor. The transition is
// one-way; a second call affects no rows.
func (r *paymentRepository) MarkReleased(db *gorm.DB, sessionID, txHash string, at time.Time) (int64, error) {
	result := db.Model(&entity.Payment{}).
		Where("session_id = ? AND status = ?", sessionID, entity.PaymentHeld).
		Updates(map[string]interface{}{
			"status":          entity.PaymentReleasedToDoctor,
			"release_tx_hash": txHash,
			"released_at":     at,
		})
	return result.RowsAffected, result.Error
}
