package postgres

import (
	"context"
	"fmt"
)

// TruncateForTest removes all rows from the memories table. Defined in
// the postgres package so the test package can reset state between
// cases without reaching into the unexported db field.
func (s *Store) TruncateForTest(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "TRUNCATE TABLE memories"); err != nil {
		return fmt.Errorf("postgres: failed to truncate memories: %w", err)
	}
	return nil
}
