package ports

import "orgstage/internal/domain"

// AgendaSource executes the configured saved-view definitions over the
// canonical store. Only non-interactive, single-result definition kinds are
// returned; interactive and tree-only kinds are skipped at collection time.
type AgendaSource interface {
	Sections() ([]domain.AgendaSection, error)
}
