package async

import (
	"sync"

	"github.com/hibiken/asynq"
)

// MockClient implements Client for testing. It records every task and its options.
type MockClient struct {
	mu      sync.Mutex
	Tasks   []*asynq.Task
	Options [][]asynq.Option
	Error   error
}

func (m *MockClient) Close() error {
	return nil
}

func (m *MockClient) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Error != nil {
		return nil, m.Error
	}

	m.Tasks = append(m.Tasks, task)
	m.Options = append(m.Options, opts)

	return &asynq.TaskInfo{ID: "mock-task-id", Type: task.Type()}, nil
}

func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.Tasks)
}
