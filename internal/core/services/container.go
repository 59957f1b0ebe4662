package services

import (
	portsrepo "github.com/finbooks/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/finbooks/ledger_engine/internal/core/ports/services"
	"github.com/finbooks/ledger_engine/internal/platform/config"
)

// ServiceContainer holds all service instances for dependency injection.
type ServiceContainer struct {
	ResolverSvc portssvc.ResolverSvcFacade
	LedgerSvc   portssvc.LedgerSvcFacade
}

// NewServiceContainer wires the services with their repository and provider
// dependencies.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, priceProvider portssvc.CryptoPriceProvider) *ServiceContainer {
	resolver := NewResolverService(cfg, repos.ExchangeRateRepo, repos.AccountRepo, priceProvider)
	return &ServiceContainer{
		ResolverSvc: resolver,
		LedgerSvc:   NewLedgerService(cfg, repos, resolver),
	}
}
