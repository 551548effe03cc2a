// Package memstore is the in-process persistence adapter. It keeps every
// collection in maps behind a single RWMutex and implements the port
// store interfaces. Deployments that outgrow a single process swap in a
// database adapter behind the same ports.
package memstore

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rsinghal/loan-desk-api/internal/domain"
)

// Store holds all collections. The zero value is not usable; call New.
type Store struct {
	mu sync.RWMutex

	users         map[string]domain.User
	applications  map[string]domain.LoanApplication
	loans         map[string]domain.LoanRecord
	payments      map[string]domain.Payment
	products      map[string]domain.LoanProduct
	refreshTokens map[string]domain.RefreshToken

	now func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:         make(map[string]domain.User),
		applications:  make(map[string]domain.LoanApplication),
		loans:         make(map[string]domain.LoanRecord),
		payments:      make(map[string]domain.Payment),
		products:      make(map[string]domain.LoanProduct),
		refreshTokens: make(map[string]domain.RefreshToken),
		now:           time.Now,
	}
}

func newID() string {
	return uuid.NewString()
}
