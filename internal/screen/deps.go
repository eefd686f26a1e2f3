package screen

import (
	"log/slog"

	"github.com/abhisek/lingo/internal/explain"
	"github.com/abhisek/lingo/internal/store"
)

// Deps are the collaborators screens share. Explainer is nil when no
// language model is configured.
type Deps struct {
	Store     *store.Store
	UserID    string
	Logger    *slog.Logger
	Explainer *explain.Service
}
