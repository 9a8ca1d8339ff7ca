package booking

import (
	"context"
	"fmt"

	catalogRepo "beautybot/database/repository/catalog"
	clientRepo "beautybot/database/repository/client"
	"beautybot/models"
	"beautybot/services/availability"

	"go.uber.org/zap"
)

// FlowService is what the conversational front-end talks to: one session per
// chat, a resolver snapshot for rendering menus, and the commit entry point.
type FlowService interface {
	// Session returns the chat's session, creating one if absent.
	Session(ctx context.Context, chatID int64) (*models.BookingSession, error)
	// SaveSession persists a mutated session.
	SaveSession(ctx context.Context, session *models.BookingSession) error
	// ResetSession discards all selections for the chat.
	ResetSession(ctx context.Context, chatID int64) error
	// Resolver builds a query layer over the current availability matrix and
	// catalog. Fails with ErrSourceUnavailable only when no matrix was ever
	// loaded.
	Resolver(ctx context.Context) (*Resolver, error)
	// ListServices returns the service catalog, optionally category-filtered.
	ListServices(ctx context.Context, category string) ([]models.Service, error)
	// ListSpecialists returns the specialist catalog.
	ListSpecialists(ctx context.Context) ([]models.Specialist, error)
	// AttachClient upserts the client record and binds it to the session.
	AttachClient(ctx context.Context, session *models.BookingSession, client *models.Client) error
	// Confirm runs the commit protocol for a ready session.
	Confirm(ctx context.Context, session *models.BookingSession) (*models.Appointment, error)
}

// DefaultFlow implements FlowService.
type DefaultFlow struct {
	Cache     *availability.Cache
	Catalog   catalogRepo.CatalogRepository
	Clients   clientRepo.ClientRepository
	Sessions  SessionStore
	Committer *Committer
	Logger    *zap.Logger
}

func (f *DefaultFlow) Session(ctx context.Context, chatID int64) (*models.BookingSession, error) {
	session, err := f.Sessions.Get(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		session = &models.BookingSession{ChatID: chatID}
		if err := f.Sessions.Save(ctx, session); err != nil {
			return nil, err
		}
	}
	return session, nil
}

func (f *DefaultFlow) SaveSession(ctx context.Context, session *models.BookingSession) error {
	return f.Sessions.Save(ctx, session)
}

func (f *DefaultFlow) ResetSession(ctx context.Context, chatID int64) error {
	return f.Sessions.Delete(ctx, chatID)
}

func (f *DefaultFlow) Resolver(ctx context.Context) (*Resolver, error) {
	matrix, err := f.Cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	services, err := f.Catalog.GetServices("")
	if err != nil {
		return nil, fmt.Errorf("failed to load services: %w", err)
	}
	specialists, err := f.Catalog.GetSpecialists()
	if err != nil {
		return nil, fmt.Errorf("failed to load specialists: %w", err)
	}
	return &Resolver{Matrix: matrix, Services: services, Specialists: specialists}, nil
}

func (f *DefaultFlow) ListServices(_ context.Context, category string) ([]models.Service, error) {
	return f.Catalog.GetServices(category)
}

func (f *DefaultFlow) ListSpecialists(_ context.Context) ([]models.Specialist, error) {
	return f.Catalog.GetSpecialists()
}

func (f *DefaultFlow) AttachClient(ctx context.Context, session *models.BookingSession, client *models.Client) error {
	stored, err := f.Clients.Upsert(client)
	if err != nil {
		return err
	}
	session.SetClient(stored)
	if err := f.Sessions.Save(ctx, session); err != nil {
		return err
	}
	f.Logger.Info("client attached to session",
		zap.Int64("chatId", session.ChatID),
		zap.String("clientId", stored.ID))
	return nil
}

func (f *DefaultFlow) Confirm(ctx context.Context, session *models.BookingSession) (*models.Appointment, error) {
	return f.Committer.Commit(ctx, session)
}
