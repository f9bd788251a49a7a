package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{in: "2024-03-05", want: NewDate(2024, time.March, 5)},
		{in: " 3/5/2024 ", want: NewDate(2024, time.March, 5)},
		{in: "03/05/2024", want: NewDate(2024, time.March, 5)},
		{in: "2024-03-05T23:00:00Z", want: NewDate(2024, time.March, 5)},
		{in: "March 5", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestDateJSON(t *testing.T) {
	type wrapper struct {
		On    Date  `json:"on"`
		Until *Date `json:"until,omitempty"`
	}

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"on":"2023-12-31","until":null}`), &w))
	assert.Equal(t, "2023-12-31", w.On.String())
	assert.Nil(t, w.Until)

	out, err := json.Marshal(wrapper{On: NewDate(2024, time.February, 29)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"on":"2024-02-29"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"on":20231231}`), &w))
}

func TestDateArithmetic(t *testing.T) {
	d := NewDate(2024, time.January, 15)

	assert.Equal(t, "2025-01-15", d.AddMonths(12).String())
	assert.Equal(t, "2024-01-14", d.AddDays(-1).String())
	assert.Equal(t, 31, d.DaysUntil(NewDate(2024, time.February, 15)))
	assert.Equal(t, -15, d.DaysUntil(NewDate(2023, time.December, 31)))
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.After(d.AddDays(-1)))
}
