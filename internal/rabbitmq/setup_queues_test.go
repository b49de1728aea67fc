package rabbitmq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetReminderQueues(t *testing.T) {
	queues := GetReminderQueues()

	require.NotEmpty(t, queues, "queues list should not be empty")

	// Проверка первой очереди
	first := queues[0]
	assert.Equal(t, "reminders.goal_due", first.QueueName)
	assert.Equal(t, "goal.due", first.RoutingKey)

	// Проверка уникальности QueueName
	seen := map[string]bool{}
	for _, q := range queues {
		assert.Falsef(t, seen[q.QueueName], "duplicate queue name: %s", q.QueueName)
		seen[q.QueueName] = true
	}
}
