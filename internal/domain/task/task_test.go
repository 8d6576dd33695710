package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingRetryTask_Value(t *testing.T) {
	original := &ListingRetryTask{
		Resource: "category/10/offers",
		Params:   map[string]string{"geo_id": "213"},
		Attempt:  2,
		Error:    "transport: GET failed",
	}

	value, err := original.TaskValue()
	require.NoError(t, err)
	assert.JSONEq(t, `{"resource":"category/10/offers","params":{"geo_id":"213"},"attempt":2,"error":"transport: GET failed"}`, string(value))

	decoded, err := UnmarshalTask[*ListingRetryTask](value)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
	assert.Equal(t, TypeListingRetry, decoded.TaskType())
}

func TestUnmarshalTask_Invalid(t *testing.T) {
	_, err := UnmarshalTask[*ListingTask]([]byte(`{"resource": 5}`))
	assert.Error(t, err)
}
