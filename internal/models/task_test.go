package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTaskCanTransitionTo(t *testing.T) {
	cases := []struct {
		from    TaskStatus
		to      TaskStatus
		allowed bool
	}{
		{TaskStatusOpen, TaskStatusInProgress, true},
		{TaskStatusOpen, TaskStatusCancelled, true},
		{TaskStatusOpen, TaskStatusCompleted, false},
		{TaskStatusInProgress, TaskStatusCompleted, true},
		{TaskStatusInProgress, TaskStatusCancelled, true},
		{TaskStatusInProgress, TaskStatusOpen, false},
		{TaskStatusCompleted, TaskStatusCancelled, false},
		{TaskStatusCompleted, TaskStatusOpen, false},
		{TaskStatusCancelled, TaskStatusOpen, false},
		{TaskStatusCancelled, TaskStatusCompleted, false},
	}

	for _, tc := range cases {
		task := Task{Status: tc.from}
		require.Equal(t, tc.allowed, task.Status.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}
