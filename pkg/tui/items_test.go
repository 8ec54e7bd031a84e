package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stefanpenner/taskbuddy/pkg/tasks"
)

func TestFlattenWithPriorityGroups(t *testing.T) {
	list := []tasks.Task{
		{ID: 1, Title: "a", Priority: tasks.PriorityLow},
		{ID: 2, Title: "b", Priority: tasks.PriorityHigh},
		{ID: 3, Title: "c", Priority: tasks.PriorityLow},
	}

	items := FlattenWithPriorityGroups(list)
	var got []string
	for _, item := range items {
		got = append(got, item.Name)
	}
	assert.Equal(t, []string{"HIGH PRIORITY", "b", "LOW PRIORITY", "a", "c"}, got)
	assert.True(t, items[0].IsSectionHeader)
	assert.Equal(t, tasks.PriorityLow, items[2].Priority)

	assert.Equal(t, 1, firstSelectable(items, 0))
	assert.Equal(t, 3, firstSelectable(items, 2))
	assert.Equal(t, 4, indexOfTask(items, 3))
	assert.Equal(t, -1, indexOfTask(items, 99))
	assert.Equal(t, 4, lastSelectable(items))
}

func TestFlattenEmpty(t *testing.T) {
	assert.Empty(t, FlattenWithPriorityGroups(nil))
	assert.Equal(t, -1, firstSelectable(nil, 0))
	assert.Equal(t, -1, lastSelectable(nil))
}
