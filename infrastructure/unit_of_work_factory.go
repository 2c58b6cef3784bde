package infrastructure

import (
	"mangaverse/application"
	"mangaverse/database"
	"mangaverse/domain/interfaces"
	"mangaverse/repository"
)

// UnitOfWorkFactory creates units of work that publish their events only
// after the database transaction commits
type UnitOfWorkFactory struct {
	repoFactory    *repository.UnitOfWorkFactory
	eventPublisher interfaces.EventPublisher
}

// NewUnitOfWorkFactory creates a new UnitOfWorkFactory
func NewUnitOfWorkFactory(db *database.DB, eventPublisher interfaces.EventPublisher) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{
		repoFactory:    repository.NewUnitOfWorkFactory(db),
		eventPublisher: eventPublisher,
	}
}

// Create creates a new UnitOfWork with its own transactional publisher
func (f *UnitOfWorkFactory) Create() application.UnitOfWork {
	return f.repoFactory.CreateWithPublisher(NewTransactionalPublisher(f.eventPublisher))
}
