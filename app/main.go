package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/sushihentaime/bloglist/internal/blogservice"
	"github.com/sushihentaime/bloglist/internal/common"
	"github.com/sushihentaime/bloglist/internal/docstore"
	"github.com/sushihentaime/bloglist/internal/mailservice"
	"github.com/sushihentaime/bloglist/internal/userservice"
)

type application struct {
	config      *Config
	logger      *slog.Logger
	userService *userservice.UserService
	blogService *blogservice.BlogService
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	err := run(logger)
	if err != nil {
		logger.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := loadConfig(".env")
	if err != nil {
		return err
	}

	store, err := docstore.Open(cfg.StoreDriver, cfg.DatabaseURL, cfg.DatabaseName)
	if err != nil {
		return err
	}
	defer store.Close()

	userService := userservice.NewUserService(store, []byte(cfg.Secret), cfg.TokenTTL)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = userService.EnsureIndexes(ctx)
	if err != nil {
		return err
	}

	// blog.created events and their mails are only wired when a broker is configured
	var producer common.MessageProducer
	if cfg.MQHost != "" {
		broker, err := common.NewMessageBroker(common.BrokerURI(cfg.MQUser, cfg.MQPassword, cfg.MQHost, cfg.MQPort))
		if err != nil {
			return err
		}
		defer broker.Close()

		err = common.SetupBlogExchange(broker)
		if err != nil {
			return err
		}

		mailService := mailservice.NewMailService(broker, cfg.MailHost, cfg.MailUser, cfg.MailPassword, cfg.MailSender, cfg.MailRecipient, cfg.MailPort, logger)
		err = mailService.SendBlogCreatedEmails()
		if err != nil {
			return err
		}
		defer mailService.Close()

		producer = broker
	}

	app := &application{
		config:      cfg,
		logger:      logger,
		userService: userService,
		blogService: blogservice.NewBlogService(store, producer, logger),
	}

	return app.serve()
}
