package toast

import "context"

type managerKey struct{}

// WithContext returns a copy of ctx that carries m.
func WithContext(ctx context.Context, m *Manager) context.Context {
	if m == nil {
		panic("toast: WithContext called with nil manager")
	}
	return context.WithValue(ctx, managerKey{}, m)
}

// FromContext returns the Manager carried by ctx, or ErrNoManager.
func FromContext(ctx context.Context) (*Manager, error) {
	if m, ok := ctx.Value(managerKey{}).(*Manager); ok {
		return m, nil
	}
	return nil, ErrNoManager
}

// MustFromContext returns the Manager carried by ctx and panics with
// ErrNoManager if there is none.
func MustFromContext(ctx context.Context) *Manager {
	m, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return m
}

// Add adds a toast to the Manager carried by ctx.
// It panics with ErrNoManager when ctx carries none; so do the other
// package-level helpers.
func Add(ctx context.Context, message string, opts ...AddOption) string {
	return MustFromContext(ctx).Add(message, opts...)
}

func Success(ctx context.Context, message string, opts ...AddOption) string {
	return MustFromContext(ctx).Success(message, opts...)
}

func Error(ctx context.Context, message string, opts ...AddOption) string {
	return MustFromContext(ctx).Error(message, opts...)
}

func Warning(ctx context.Context, message string, opts ...AddOption) string {
	return MustFromContext(ctx).Warning(message, opts...)
}

func Info(ctx context.Context, message string, opts ...AddOption) string {
	return MustFromContext(ctx).Info(message, opts...)
}

// List returns the toasts of the Manager carried by ctx.
func List(ctx context.Context) []Toast {
	return MustFromContext(ctx).List()
}

// Remove removes a toast from the Manager carried by ctx.
func Remove(ctx context.Context, id string) {
	MustFromContext(ctx).Remove(id)
}
