package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanEditOnlyForOwner(t *testing.T) {
	task := Task{ID: 1, UserID: 10, IsPublic: true}

	assert.True(t, task.CanEdit(10))
	assert.False(t, task.CanEdit(11))
}

func TestCanSubscribe(t *testing.T) {
	tests := []struct {
		name   string
		task   Task
		userID int
		want   bool
	}{
		{"public task of another user", Task{UserID: 10, IsPublic: true}, 11, true},
		{"own public task", Task{UserID: 10, IsPublic: true}, 10, false},
		{"private task of another user", Task{UserID: 10, IsPublic: false}, 11, false},
		{"own private task", Task{UserID: 10, IsPublic: false}, 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.task.CanSubscribe(tt.userID))
		})
	}
}

func TestTaskFiltersParamsOmitUnsetFields(t *testing.T) {
	assert.Empty(t, TaskFilters{}.Params())

	completed := true
	params := TaskFilters{
		Search:      "milk",
		IsCompleted: &completed,
		Page:        2,
		Limit:       10,
	}.Params()

	assert.Equal(t, map[string]string{
		"search":      "milk",
		"isCompleted": "true",
		"page":        "2",
		"limit":       "10",
	}, params)
}

func TestTaskFiltersWithoutVisibility(t *testing.T) {
	public := true
	f := TaskFilters{Search: "milk", IsPublic: &public}

	stripped := f.WithoutVisibility()
	assert.Nil(t, stripped.IsPublic)
	assert.Equal(t, "milk", stripped.Search)
	assert.NotNil(t, f.IsPublic)
}
