package handlers

import (
	"context"
	"time"

	"github.com/Freeeeeet/tutoring_bot/internal/controller/state"
	"github.com/Freeeeeet/tutoring_bot/internal/model"
	"github.com/Freeeeeet/tutoring_bot/internal/service"
	"go.uber.org/zap"
)

// SubjectCatalog - справочник предметов
type SubjectCatalog interface {
	GetActive(ctx context.Context) ([]*model.Subject, error)
}

// Services - сервисы, которыми пользуются обработчики
type Services struct {
	Users        *service.UserService
	Availability *service.AvailabilityService
	Booking      *service.BookingService
	Reschedule   *service.RescheduleService
	Notices      *service.NotificationService
	Sessions     *service.SessionTracker
	Subjects     SubjectCatalog // nil - справочник недоступен
}

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	userService         *service.UserService
	availabilityService *service.AvailabilityService
	bookingService      *service.BookingService
	rescheduleService   *service.RescheduleService
	noticeService       *service.NotificationService
	sessions            *service.SessionTracker
	subjects            SubjectCatalog
	stateManager        *state.Manager
	loc                 *time.Location
	now                 func() time.Time
	logger              *zap.Logger
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(
	services Services,
	stateManager *state.Manager,
	loc *time.Location,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		userService:         services.Users,
		availabilityService: services.Availability,
		bookingService:      services.Booking,
		rescheduleService:   services.Reschedule,
		noticeService:       services.Notices,
		sessions:            services.Sessions,
		subjects:            services.Subjects,
		stateManager:        stateManager,
		loc:                 loc,
		now:                 time.Now,
		logger:              logger,
	}
}
