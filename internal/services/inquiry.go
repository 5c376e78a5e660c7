package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/models"
	"storefront-backend/internal/notify"
	"storefront-backend/internal/store"
)

type InquirySubmission struct {
	Firstname   string `json:"firstname"`
	Lastname    string `json:"lastname"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	TextMessage string `json:"textmessage"`
}

type InquiryService struct {
	inquiries store.Inquiries
	publisher notify.Publisher
	logger    zerolog.Logger
}

func NewInquiryService(inquiries store.Inquiries, publisher notify.Publisher, logger zerolog.Logger) *InquiryService {
	if publisher == nil {
		publisher = notify.Nop{}
	}
	return &InquiryService{inquiries: inquiries, publisher: publisher, logger: logger}
}

// Submit stores a contact message and announces it. A failed announcement is only logged.
func (s *InquiryService) Submit(ctx context.Context, in InquirySubmission) (primitive.ObjectID, error) {
	if strings.TrimSpace(in.Firstname) == "" || strings.TrimSpace(in.Email) == "" || strings.TrimSpace(in.TextMessage) == "" {
		return primitive.NilObjectID, apperr.Validation("First name, email and message are required.")
	}

	inq := &models.Inquiry{
		Firstname:   in.Firstname,
		Lastname:    in.Lastname,
		Email:       in.Email,
		Phone:       in.Phone,
		TextMessage: in.TextMessage,
	}
	if err := s.inquiries.Create(ctx, inq); err != nil {
		s.logger.Error().Err(err).Msg("inquiry insert failed")
		return primitive.NilObjectID, apperr.Internal("Failed to submit inquiry", err)
	}

	ev := notify.Event{
		Type:      notify.TypeInquirySubmitted,
		ID:        inq.ID.Hex(),
		Email:     inq.Email,
		CreatedAt: inq.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn().Err(err).Str("inquiry_id", ev.ID).Msg("inquiry notification not published")
	}
	return inq.ID, nil
}

func (s *InquiryService) List(ctx context.Context) ([]models.Inquiry, error) {
	out, err := s.inquiries.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("inquiry list failed")
		return nil, apperr.Internal("Failed to load inquiries", err)
	}
	return out, nil
}

// Get validates the id format before touching the store.
func (s *InquiryService) Get(ctx context.Context, id string) (models.Inquiry, error) {
	oid, ok := models.ParseID(id)
	if !ok {
		return models.Inquiry{}, apperr.Validation("Invalid inquiry id")
	}
	inq, err := s.inquiries.Get(ctx, oid)
	return inq, s.lookupErr(err, "Failed to load inquiry")
}

// SetReviewed changes the reviewed flag when reviewed is non-nil. Nothing else about an
// inquiry can be changed.
func (s *InquiryService) SetReviewed(ctx context.Context, id string, reviewed *bool) (models.Inquiry, error) {
	oid, ok := models.ParseID(id)
	if !ok {
		return models.Inquiry{}, apperr.Validation("Invalid inquiry id")
	}
	if reviewed == nil {
		inq, err := s.inquiries.Get(ctx, oid)
		return inq, s.lookupErr(err, "Failed to update inquiry")
	}
	inq, err := s.inquiries.SetReviewed(ctx, oid, *reviewed)
	return inq, s.lookupErr(err, "Failed to update inquiry")
}

func (s *InquiryService) lookupErr(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound("Inquiry not found")
	default:
		s.logger.Error().Err(err).Msg(msg)
		return apperr.Internal(msg, err)
	}
}
