package labels

import (
	"context"
	"net/http"
	"strings"

	"github.com/stretchr/testify/mock"
)

// MockAPIClient is a mock implementation of APIClient
type MockAPIClient struct {
	mock.Mock
}

func (m *MockAPIClient) ListLabels(ctx context.Context, repo Repository) ([]RemoteLabel, error) {
	args := m.Called(ctx, repo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]RemoteLabel), args.Error(1)
}

func (m *MockAPIClient) CreateLabel(ctx context.Context, repo Repository, label RemoteLabel) error {
	args := m.Called(ctx, repo, label)
	return args.Error(0)
}

func (m *MockAPIClient) EditLabel(ctx context.Context, repo Repository, currentName string, label RemoteLabel) error {
	args := m.Called(ctx, repo, currentName, label)
	return args.Error(0)
}

func (m *MockAPIClient) DeleteLabel(ctx context.Context, repo Repository, name string) error {
	args := m.Called(ctx, repo, name)
	return args.Error(0)
}

func (m *MockAPIClient) GetContents(ctx context.Context, repo Repository, path, ref string) ([]byte, error) {
	args := m.Called(ctx, repo, path, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// fakeRepository is an in-memory repository that behaves like the GitHub
// labels API: names are unique ignoring case and order is preserved.
type fakeRepository struct {
	labels []RemoteLabel
	calls  int
}

func newFakeRepository(labels ...RemoteLabel) *fakeRepository {
	return &fakeRepository{labels: append([]RemoteLabel(nil), labels...)}
}

func (f *fakeRepository) index(name string) int {
	for i, l := range f.labels {
		if strings.EqualFold(l.Name, name) {
			return i
		}
	}
	return -1
}

func (f *fakeRepository) ListLabels(_ context.Context, _ Repository) ([]RemoteLabel, error) {
	return append([]RemoteLabel(nil), f.labels...), nil
}

func (f *fakeRepository) CreateLabel(_ context.Context, _ Repository, label RemoteLabel) error {
	f.calls++
	if f.index(label.Name) >= 0 {
		return &TransportError{Type: ErrorTypeConflict, Message: "already_exists"}
	}
	f.labels = append(f.labels, label)
	return nil
}

func (f *fakeRepository) EditLabel(_ context.Context, _ Repository, currentName string, label RemoteLabel) error {
	f.calls++
	i := f.index(currentName)
	if i < 0 {
		return &TransportError{Type: ErrorTypeNotFound, Message: "Label not found"}
	}
	if j := f.index(label.Name); j >= 0 && j != i {
		return &TransportError{Type: ErrorTypeConflict, Message: "already_exists"}
	}
	f.labels[i] = label
	return nil
}

func (f *fakeRepository) DeleteLabel(_ context.Context, _ Repository, name string) error {
	f.calls++
	i := f.index(name)
	if i < 0 {
		return &TransportError{Type: ErrorTypeNotFound, Message: "Label not found"}
	}
	f.labels = append(f.labels[:i], f.labels[i+1:]...)
	return nil
}

func (f *fakeRepository) GetContents(_ context.Context, _ Repository, _, _ string) ([]byte, error) {
	return nil, &TransportError{Type: ErrorTypeNotFound, Message: http.StatusText(http.StatusNotFound)}
}

var (
	_ APIClient = (*MockAPIClient)(nil)
	_ APIClient = (*fakeRepository)(nil)
)
