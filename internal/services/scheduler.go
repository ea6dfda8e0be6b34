package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"gbtravel/internal/models"
	"gbtravel/internal/repositories/interfaces"
	"gbtravel/pkg/logger"
)

type SchedulerConfig struct {
	OutboxPollInterval time.Duration
	ReminderInterval   time.Duration
}

// Scheduler runs the background jobs: outbox delivery and trip reminders.
type Scheduler struct {
	scheduler  gocron.Scheduler
	dispatcher *OutboxDispatcher
	reminders  *TripReminderJob
	config     SchedulerConfig
	logger     *logger.Logger
}

func NewScheduler(dispatcher *OutboxDispatcher, reminders *TripReminderJob, config SchedulerConfig, log *logger.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		scheduler:  s,
		dispatcher: dispatcher,
		reminders:  reminders,
		config:     config,
		logger:     log,
	}, nil
}

// Start registers the jobs and starts the scheduler. Jobs never overlap
// with themselves.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.config.OutboxPollInterval),
		gocron.NewTask(func() {
			sent, err := s.dispatcher.Dispatch(ctx)
			if err != nil {
				s.logger.WithError(err).Error("Outbox dispatch failed")
				return
			}
			if sent > 0 {
				s.logger.WithField("sent", sent).Debug("Outbox dispatched")
			}
		}),
		gocron.WithName("outbox-dispatcher"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule outbox dispatcher: %w", err)
	}

	_, err = s.scheduler.NewJob(
		gocron.DurationJob(s.config.ReminderInterval),
		gocron.NewTask(func() {
			queued, err := s.reminders.Run(ctx)
			if err != nil {
				s.logger.WithError(err).Error("Trip reminder job failed")
				return
			}
			if queued > 0 {
				s.logger.WithField("queued", queued).Info("Trip reminders queued")
			}
		}),
		gocron.WithName("trip-reminders"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule trip reminders: %w", err)
	}

	s.scheduler.Start()
	s.logger.WithField("jobs", len(s.scheduler.Jobs())).Info("Scheduler started")
	return nil
}

func (s *Scheduler) Shutdown() error {
	return s.scheduler.Shutdown()
}

// TripReminderJob queues a reminder for confirmed bookings departing soon.
type TripReminderJob struct {
	bookingRepo   interfaces.BookingRepository
	tripRepo      interfaces.TripRepository
	notifications NotificationService
	leadTime      time.Duration
	logger        *logger.Logger
	now           func() time.Time
}

func NewTripReminderJob(
	bookingRepo interfaces.BookingRepository,
	tripRepo interfaces.TripRepository,
	notifications NotificationService,
	leadTime time.Duration,
	log *logger.Logger,
) *TripReminderJob {
	if leadTime <= 0 {
		leadTime = 7 * 24 * time.Hour
	}
	return &TripReminderJob{
		bookingRepo:   bookingRepo,
		tripRepo:      tripRepo,
		notifications: notifications,
		leadTime:      leadTime,
		logger:        log,
		now:           time.Now,
	}
}

// Run returns the number of reminders queued.
func (j *TripReminderJob) Run(ctx context.Context) (int, error) {
	now := j.now()

	bookings, err := j.bookingRepo.DueForReminder(ctx, now, now.Add(j.leadTime), models.ReminderSevenDay)
	if err != nil {
		return 0, err
	}

	tripNames := make(map[string]string)
	queued := 0
	for _, booking := range bookings {
		key := booking.Trip.Hex()
		name, ok := tripNames[key]
		if !ok {
			trip, err := j.tripRepo.GetByID(ctx, booking.Trip)
			if err != nil {
				j.logger.WithError(err).WithBookingID(booking.ID).Warn("Skipping reminder for missing trip")
				continue
			}
			name = trip.Name
			tripNames[key] = name
		}

		data := map[string]string{
			"name":             travelerName(booking),
			"tripName":         name,
			"departureDate":    formatDate(booking.SelectedDate.DepartureDate),
			"confirmationCode": booking.ConfirmationCode,
		}
		if err := j.notifications.Email(ctx, booking.ContactInfo.Email, models.TemplateTripReminder, data); err != nil {
			return queued, err
		}
		if err := j.notifications.SMS(ctx, booking.ContactInfo.Phone, models.TemplateTripReminder, data); err != nil {
			j.logger.WithError(err).WithBookingID(booking.ID).Warn("Failed to queue reminder sms")
		}
		if err := j.bookingRepo.AddReminder(ctx, booking.ID, models.ReminderSevenDay); err != nil {
			return queued, err
		}
		queued++
	}

	return queued, nil
}

func travelerName(booking *models.Booking) string {
	if len(booking.Travelers) > 0 {
		return booking.Travelers[0].FirstName
	}
	return "traveler"
}
