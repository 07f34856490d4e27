package mailservice

import (
	"context"
	"encoding/json"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/sushihentaime/bloglist/internal/common"
)

func NewMailService(mb common.MessageConsumer, host, username, password, sender, recipient string, port int, logger *slog.Logger) *MailService {
	ctx, cancel := context.WithCancel(context.Background())
	return &MailService{
		mb:        mb,
		m:         NewMailer(host, port, username, password, sender, NewTemplate()),
		logger:    logger,
		recipient: recipient,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

// SendBlogCreatedEmails starts consuming blog.created messages in the background. Every message
// gets exactly one delivery attempt and is acknowledged whether or not the mail went out.
func (s *MailService) SendBlogCreatedEmails() error {
	msgs, err := s.mb.Consume(common.BlogCreatedKey, common.BlogExchange, common.BlogCreatedQueue)
	if err != nil {
		return err
	}

	s.started = true
	go s.process(msgs)

	return nil
}

func (s *MailService) process(msgs <-chan amqp.Delivery) {
	defer close(s.done)

	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			s.handle(msg)
			_ = msg.Ack(false)

		case <-s.ctx.Done():
			s.logger.Info("stopping blog.created consumer")
			return
		}
	}
}

func (s *MailService) handle(msg amqp.Delivery) {
	var data blogCreated

	err := json.Unmarshal(msg.Body, &data)
	if err != nil {
		s.logger.Error("could not unmarshal message", slog.String("error", err.Error()))
		return
	}

	err = s.m.send(s.recipient, data, blogCreatedTemplate)
	if err != nil {
		s.logger.Error("could not send blog created email", slog.String("blog", data.ID), slog.String("error", err.Error()))
		return
	}

	s.logger.Info("blog created email sent", slog.String("blog", data.ID), slog.String("recipient", s.recipient))
}

// Close stops the consumer and waits for the message in flight, if any.
func (s *MailService) Close() {
	s.cancel()
	if s.started {
		<-s.done
	}
}
