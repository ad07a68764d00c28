package sim

// FieldOption is a functional option for configuring a Field. Use the With*
// functions to create options.
type FieldOption func(f *Field, count *int)

// WithAsteroidCount sets the number of asteroids in the field.
//
// Parameters:
//   - count: asteroid count, must be positive
//
// Returns:
//   - FieldOption: option function to apply
func WithAsteroidCount(count int) FieldOption {
	return func(f *Field, c *int) {
		if count > 0 {
			*c = count
		}
	}
}

// WithWorkers sets the worker pool size for multithreaded updates.
//
// Parameters:
//   - workers: worker count, must be positive
//
// Returns:
//   - FieldOption: option function to apply
func WithWorkers(workers int) FieldOption {
	return func(f *Field, _ *int) {
		if workers > 0 {
			f.workers = workers
		}
	}
}
