package clinic

import (
	"context"

	"github.com/phrazzld/clinicdesk/internal/domain"
	"github.com/phrazzld/clinicdesk/internal/events"
	"github.com/shopspring/decimal"
)

// EndConsultation records a consultation with patient at the current fee.
func (s *Service) EndConsultation(ctx context.Context, patient domain.Patient) (domain.Record, error) {
	var record domain.Record
	err := s.mutate(func() error {
		var err error
		record, err = s.ledger.RecordConsultation(patient)
		return err
	})
	if err != nil {
		return domain.Record{}, err
	}

	s.emit(ctx, events.ConsultationRecorded, record)
	return record, nil
}

// SetConsultationFee changes the fee charged for future consultations.
func (s *Service) SetConsultationFee(ctx context.Context, fee decimal.Decimal) (FeeResult, error) {
	var res FeeResult
	err := s.mutate(func() error {
		res.Previous = s.ledger.ConsultationFee()
		if err := s.ledger.SetConsultationFee(fee); err != nil {
			return err
		}
		res.Current = fee
		return nil
	})
	if err != nil {
		return FeeResult{}, err
	}

	s.emit(ctx, events.FeeChanged, res)
	return res, nil
}

// ConsultationFee returns the current fee.
func (s *Service) ConsultationFee() (fee decimal.Decimal) {
	s.read(func() { fee = s.ledger.ConsultationFee() })
	return fee
}

// Statistics aggregates the records of the months [from, to].
func (s *Service) Statistics(from, to domain.Month) (stats domain.Statistics, err error) {
	s.read(func() { stats, err = s.ledger.Aggregate(from, to) })
	return stats, err
}

// Records returns every ledger record in insertion order.
func (s *Service) Records() (records []domain.Record) {
	s.read(func() { records = s.ledger.Records() })
	return records
}
