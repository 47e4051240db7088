package iex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate(t *testing.T) {
	t.Parallel()
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2021-08-06"`), &d))
	assert.Equal(t, time.Date(2021, 8, 6, 0, 0, 0, 0, time.UTC), time.Time(d))
	assert.Equal(t, "2021-08-06", d.String())

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2021-08-06"`, string(out))
}

func TestDate_Unknown(t *testing.T) {
	t.Parallel()
	for _, in := range []string{`"0000-00-00"`, `""`, `null`} {
		d := Date(time.Now())
		require.NoError(t, json.Unmarshal([]byte(in), &d), in)
		assert.True(t, d.IsZero(), in)
		assert.Equal(t, "", d.String())
	}

	out, err := json.Marshal(Date{})
	require.NoError(t, err)
	assert.Equal(t, `null`, string(out))
}

func TestDate_Invalid(t *testing.T) {
	t.Parallel()
	var d Date
	assert.Error(t, json.Unmarshal([]byte(`"06.08.2021"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`20210806`), &d))
}

func TestMillis(t *testing.T) {
	t.Parallel()
	var m Millis
	require.NoError(t, json.Unmarshal([]byte(`1628208000000`), &m))
	assert.Equal(t, time.Date(2021, 8, 6, 0, 0, 0, 0, time.UTC), time.Time(m))
	assert.Equal(t, "2021-08-06T00:00:00Z", m.String())

	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `1628208000000`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`"foo"`), &m))
}
