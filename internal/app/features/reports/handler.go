// internal/app/features/reports/handler.go
package reports

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/spendhub/internal/app/store/queries/spending"
	"github.com/dalemusser/spendhub/internal/app/system/auth"
	"github.com/dalemusser/spendhub/internal/app/system/httperr"
	"github.com/dalemusser/spendhub/internal/app/system/jsonutil"
	"github.com/dalemusser/spendhub/internal/app/system/llm"
	"github.com/dalemusser/spendhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler generates AI spending reports over the caller's full ledger
// (personal and group expenses they created).
type Handler struct {
	DB      *mongo.Database
	LLM     llm.Client
	Timeout time.Duration
	Log     *zap.Logger
}

// NewHandler creates a new reports handler. timeout bounds the whole
// model call; zero means 30 seconds.
func NewHandler(db *mongo.Database, client llm.Client, timeout time.Duration, logger *zap.Logger) *Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Handler{DB: db, LLM: client, Timeout: timeout, Log: logger}
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/reports                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequesterID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rows, err := spending.ListByCreator(ctx, h.DB, userID)
	if err != nil {
		httperr.Internal(w, h.Log, "load expenses for report", err)
		return
	}
	if len(rows) == 0 {
		httperr.NotFound(w, "no expenses to analyze")
		return
	}

	start := time.Now()
	llmCtx, cancelLLM := context.WithTimeout(r.Context(), h.Timeout)
	defer cancelLLM()

	analysis, err := h.LLM.Analyze(llmCtx, Digest(rows))
	if err != nil {
		h.Log.Error("report generation failed",
			zap.Error(err),
			zap.String("user_id", userID.Hex()),
			zap.Duration("elapsed", time.Since(start)))
		httperr.Upstream(w, "report generation failed")
		return
	}

	h.Log.Info("report generated",
		zap.String("user_id", userID.Hex()),
		zap.Int("expenses", len(rows)),
		zap.Duration("elapsed", time.Since(start)))

	jsonutil.Respond(w, http.StatusOK, map[string]string{
		"analysis": analysis,
	})
}

// Digest renders expense rows as one line per expense, the shape the
// analysis prompt expects:
//
//	Name: Milk, Type: debit, Amount: 4.5, Category: Groceries, Note: weekly run
func Digest(rows []spending.Row) string {
	var sb strings.Builder
	for i, row := range rows {
		if i > 0 {
			sb.WriteByte('\n')
		}
		note := row.Note
		if note == "" {
			note = "No note"
		}
		fmt.Fprintf(&sb, "Name: %s, Type: %s, Amount: %g, Category: %s, Note: %s",
			row.Name, row.Type, row.Amount, row.Category, note)
	}
	return sb.String()
}
