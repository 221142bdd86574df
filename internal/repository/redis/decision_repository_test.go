package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatFromValues(t *testing.T) {
	tests := []struct {
		name    string
		vals    []interface{}
		success int64
		failure int64
		updated bool
		wantErr bool
	}{
		{"missing hash", []interface{}{nil, nil, nil}, 0, 0, false, false},
		{"counts only", []interface{}{"3", nil, nil}, 3, 0, false, false},
		{"full", []interface{}{"3", "7", "1700000000"}, 3, 7, true, false},
		{"short reply", []interface{}{}, 0, 0, false, false},
		{"garbage", []interface{}{"x", "1", nil}, 0, 0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := statFromValues("p", tt.vals)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "p", st.ID)
			assert.Equal(t, tt.success, st.SuccessCount)
			assert.Equal(t, tt.failure, st.FailureCount)
			if tt.updated {
				assert.Equal(t, time.Unix(1700000000, 0), st.UpdatedAt)
			} else {
				assert.True(t, st.UpdatedAt.IsZero())
			}
		})
	}
}

func TestKeyPrefix(t *testing.T) {
	assert.Equal(t, "decision_stats:abc", NewDecisionRepository(nil, "").key("abc"))
	assert.Equal(t, "ff:abc", NewDecisionRepository(nil, "ff").key("abc"))
}
