package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/salucol/ips-admin-core/internal/adapters/events"
	"github.com/salucol/ips-admin-core/internal/adapters/session"
	"github.com/salucol/ips-admin-core/internal/application/services"
	"github.com/salucol/ips-admin-core/internal/domain/entities"
	"github.com/salucol/ips-admin-core/internal/domain/providers"
	"github.com/salucol/ips-admin-core/internal/domain/scheduling"
	"github.com/salucol/ips-admin-core/internal/infrastructure/clients/ipsapi"
	redisclient "github.com/salucol/ips-admin-core/internal/infrastructure/clients/redis"
	"github.com/salucol/ips-admin-core/internal/infrastructure/notifications"
	"github.com/salucol/ips-admin-core/internal/infrastructure/observability"
	"github.com/salucol/ips-admin-core/pkg/config"
	"github.com/salucol/ips-admin-core/pkg/retry"
	"github.com/salucol/ips-admin-core/pkg/secrets"
)

const usage = `usage: console <command> [args]

commands:
  login <email> <password>      authenticate and persist the session
  logout                        clear the session
  whoami                        show the current user
  patients [query]              list patients
  agenda <provider-id> <date>   provider's appointments for a day (YYYY-MM-DD)
  slots <provider-id> <date>    bookable slots for a day (YYYY-MM-DD)
  remind <patient-id> <at>      send an appointment reminder (at: 2006-01-02T15:04)
  watch                         follow session events
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Secrets first: Vault values must be in the environment before Load
	if result, err := secrets.Preload(ctx, secrets.VaultConfigFromEnv()); err != nil {
		log.Fatalf("Failed to preload Vault secrets: %v", err)
	} else if result.Enabled {
		log.Printf("Vault secrets loaded from %s (loaded=%d skipped=%d)", result.Path, result.Loaded, result.Skipped)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Environment)
	logger := observability.GetLogger()

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				if err := shutdown(shutdownCtx); err != nil {
					logger.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Redis is optional: without it the session lives in process memory and
	// session events are not broadcast
	var redisConn *redisclient.Client
	err = retry.DoWithLog(ctx, retry.DefaultConfig(), "redis", func() error {
		var connErr error
		redisConn, connErr = redisclient.NewClient(&cfg.Redis)
		return connErr
	}, func(attempt int, err error, nextDelay time.Duration) {
		logger.Warn().Err(err).Int("attempt", attempt).Dur("next_delay", nextDelay).Msg("redis connect failed")
	})

	var store providers.CredentialStore
	var bus providers.EventBus
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, session is process-local")
		store = session.NewMemoryStore()
	} else {
		defer redisConn.Close()
		store = session.NewRedisStore(redisConn, "session")
		bus = events.NewRedisEventBus(redisConn)
		defer bus.Close()
	}

	client, err := ipsapi.NewClient(ipsapi.Options{
		BaseURL:      cfg.API.BaseURL,
		RefreshPath:  cfg.Auth.RefreshPath,
		Timeout:      cfg.API.Timeout(),
		ExpiryMargin: cfg.Auth.ExpiryMargin,
		Store:        store,
		Metrics:      metrics,
		OnUnauthenticated: func() {
			logger.Warn().Msg("session ended, log in again")
		},
		OnSessionEvent: func(event entities.SessionEvent) {
			if bus == nil {
				return
			}
			if err := bus.Publish(ctx, events.SessionChannel, &event); err != nil {
				logger.Warn().Err(err).Msg("failed to broadcast session event")
			}
		},
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create backend client")
	}

	authService := services.NewAuthService(client, store, bus, events.SessionChannel,
		cfg.Auth.LoginPath, cfg.Auth.ProfilePath, cfg.Auth.ExpiryMargin)
	patientService := services.NewPatientService(client)
	appointmentService := services.NewAppointmentService(client,
		scheduling.NewSlotCalculator(cfg.Scheduling.SlotInterval(), cfg.Scheduling.LeadTime()))

	var reminderService *services.ReminderService
	if cfg.WhatsApp.Enabled {
		sender, err := notifications.NewWhatsAppSender(notifications.WhatsAppOptions{
			AccessToken:   cfg.WhatsApp.AccessToken,
			PhoneNumberID: cfg.WhatsApp.PhoneNumberID,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("whatsapp reminders disabled")
		} else {
			reminderService = services.NewReminderService(sender)
		}
	}

	if err := run(ctx, os.Args[1], os.Args[2:], consoleDeps{
		auth:         authService,
		patients:     patientService,
		appointments: appointmentService,
		reminders:    reminderService,
		bus:          bus,
	}); err != nil {
		logger.Fatal().Err(err).Str("command", os.Args[1]).Msg("command failed")
	}
}

type consoleDeps struct {
	auth         *services.AuthService
	patients     *services.PatientService
	appointments *services.AppointmentService
	reminders    *services.ReminderService
	bus          providers.EventBus
}

func run(ctx context.Context, command string, args []string, deps consoleDeps) error {
	switch command {
	case "login":
		if len(args) != 2 {
			return fmt.Errorf("login needs <email> <password>")
		}
		user, err := deps.auth.Login(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("logged in as %s (%s)\n", user.FullName, user.Role)
		return nil

	case "logout":
		if err := deps.auth.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("logged out")
		return nil

	case "whoami":
		user, err := deps.auth.CurrentUser(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s <%s> role=%s\n", user.FullName, user.Email, user.Role)
		return nil

	case "patients":
		query := strings.Join(args, " ")
		page, err := deps.patients.List(ctx, 1, 20, query)
		if err != nil {
			return err
		}
		for _, patient := range page.Patients {
			fmt.Printf("%s  %s %s  doc=%s\n", patient.ID, patient.FirstName, patient.LastName, patient.DocumentNumber)
		}
		fmt.Printf("%d of %d patients\n", len(page.Patients), page.Total)
		return nil

	case "agenda":
		providerID, day, err := providerDayArgs(args)
		if err != nil {
			return err
		}
		agenda, err := deps.appointments.DayAgenda(ctx, providerID, day)
		if err != nil {
			return err
		}
		for _, appointment := range agenda {
			fmt.Printf("%s  %s  %s\n",
				appointment.ScheduledAt.Format("15:04"),
				scheduling.Label(appointment.Status),
				appointment.PatientID)
		}
		return nil

	case "slots":
		providerID, day, err := providerDayArgs(args)
		if err != nil {
			return err
		}
		slots, err := deps.appointments.AvailableSlots(ctx, providerID, day)
		if err != nil {
			return err
		}
		for _, slot := range slots {
			marker := " "
			if !slot.Available {
				marker = "x"
			}
			fmt.Printf("[%s] %s\n", marker, slot.Label)
		}
		return nil

	case "remind":
		if deps.reminders == nil {
			return fmt.Errorf("whatsapp reminders are not configured")
		}
		if len(args) != 2 {
			return fmt.Errorf("remind needs <patient-id> <at>")
		}
		at, err := time.ParseInLocation("2006-01-02T15:04", args[1], time.Local)
		if err != nil {
			return fmt.Errorf("bad time %q: %w", args[1], err)
		}
		patient, err := deps.patients.Get(ctx, args[0])
		if err != nil {
			return err
		}
		messageID, err := deps.reminders.SendAppointmentReminder(ctx, &entities.Appointment{
			Status:      entities.AppointmentStatusScheduled,
			ScheduledAt: at,
		}, patient)
		if err != nil {
			return err
		}
		fmt.Printf("reminder sent (%s)\n", messageID)
		return nil

	case "watch":
		if deps.bus == nil {
			return fmt.Errorf("session events need redis")
		}
		eventCh, err := deps.bus.Subscribe(ctx, events.SessionChannel)
		if err != nil {
			return err
		}
		fmt.Println("watching session events (ctrl-c to stop)")
		for {
			select {
			case <-ctx.Done():
				return nil
			case event, ok := <-eventCh:
				if !ok {
					return nil
				}
				fmt.Printf("%s  %s  %s\n", event.OccurredAt.Format(time.RFC3339), event.Type, event.Reason)
			}
		}

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func providerDayArgs(args []string) (string, time.Time, error) {
	if len(args) != 2 {
		return "", time.Time{}, fmt.Errorf("need <provider-id> <date>")
	}
	day, err := time.ParseInLocation("2006-01-02", args[1], time.Local)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("bad date %q: %w", args[1], err)
	}
	return args[0], day, nil
}
