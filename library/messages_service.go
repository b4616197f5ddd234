package library

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
)

// MessagesService carries support questions from users to admins. A
// message is open until an admin answers it, then closed for good.
type MessagesService struct {
	store Store
	log   logrus.FieldLogger
}

func NewMessagesService(store Store, log logrus.FieldLogger) *MessagesService {
	return &MessagesService{store: store, log: log}
}

// PostMessage opens a new question owned by userEmail.
func (s *MessagesService) PostMessage(ctx context.Context, req MessageRequest, userEmail string) (*Message, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Question) == "" {
		return nil, newError(KindInvalid, "Message title and question are required")
	}
	msg := &Message{
		UserEmail: userEmail,
		Title:     req.Title,
		Question:  req.Question,
	}
	id, err := s.store.InsertMessage(ctx, msg)
	if err != nil {
		return nil, err
	}
	msg.ID = id
	s.log.WithFields(logrus.Fields{"user": userEmail, "message": id}).Info("message posted")
	return msg, nil
}

// PutMessage records adminEmail's answer and closes the message.
func (s *MessagesService) PutMessage(ctx context.Context, req AdminQuestionRequest, adminEmail string) (*Message, error) {
	var msg *Message
	err := s.store.InTx(ctx, func(q Queries) error {
		var err error
		if msg, err = q.FindMessage(ctx, req.ID); err != nil {
			return err
		}
		if msg == nil {
			return newError(KindNotFound, "Message does not exist")
		}
		if msg.Closed {
			return newError(KindNotAvailable, "Message already closed")
		}

		admin, response := adminEmail, req.Response
		msg.AdminEmail = &admin
		msg.Response = &response
		msg.Closed = true
		return q.UpdateMessage(ctx, msg)
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"admin": adminEmail, "message": req.ID}).Info("message answered")
	return msg, nil
}

func (s *MessagesService) MessagesByUser(ctx context.Context, userEmail string, page PageRequest) (*Page[*Message], error) {
	return s.store.FindMessagesByUserEmail(ctx, userEmail, page)
}

func (s *MessagesService) MessagesByClosed(ctx context.Context, closed bool, page PageRequest) (*Page[*Message], error) {
	return s.store.FindMessagesByClosed(ctx, closed, page)
}
