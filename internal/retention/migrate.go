package retention

import "context"

// migrate transforms every source row and hands the batch to insert. Empty
// input never reaches the store.
func migrate[S any, R any](ctx context.Context, sources []S, transform func(S) R, insert func(context.Context, []R) (int64, error)) (int64, error) {
	if len(sources) == 0 {
		return 0, nil
	}

	rows := make([]R, 0, len(sources))
	for _, source := range sources {
		rows = append(rows, transform(source))
	}
	return insert(ctx, rows)
}
