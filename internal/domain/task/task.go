package task

import "encoding/json"

// Task is a unit of crawl work carried through a Redis stream
type Task interface {
	TaskType() string
	TaskValue() ([]byte, error)
}

// StreamName is the stream that carries tasks of taskType
func StreamName(prefix, taskType string) string {
	return prefix + taskType
}

// DefaultTaskValue provides a common implementation for TaskValue
func DefaultTaskValue(task any) ([]byte, error) {
	return json.Marshal(task)
}

func UnmarshalTask[T Task](data []byte) (T, error) {
	var t T
	err := json.Unmarshal(data, &t)
	return t, err
}
