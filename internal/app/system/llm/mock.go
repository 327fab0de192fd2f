package llm

import "context"

// Mock is a test double for Client.
type Mock struct {
	Response string
	Err      error
	// LastLedger records the digest the handler sent.
	LastLedger string
}

// Analyze returns the canned response or error.
func (m *Mock) Analyze(ctx context.Context, ledger string) (string, error) {
	m.LastLedger = ledger
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}
