package iex

import (
	"bytes"
	"strconv"
	"time"
)

const DateFormat = "2006-01-02"

// Date is encoded/decoded in the "YYYY-MM-DD" format, in the UTC location.
// An unknown date is sent by the API as "0000-00-00", it is decoded as the zero Date.
type Date time.Time

// UnmarshalJSON implements JSON decoding.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	str, err := strconv.Unquote(string(data))
	if err != nil {
		return err
	}
	if str == "" || str == "0000-00-00" {
		*d = Date{}
		return nil
	}
	v, err := time.ParseInLocation(DateFormat, str, time.UTC)
	if err != nil {
		return err
	}
	*d = Date(v)
	return nil
}

// MarshalJSON implements JSON encoding, the zero Date is encoded as null.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	b := make([]byte, 0, len(DateFormat)+2)
	b = append(b, '"')
	b = time.Time(d).AppendFormat(b, DateFormat)
	b = append(b, '"')
	return b, nil
}

func (d Date) IsZero() bool {
	return time.Time(d).IsZero()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return time.Time(d).Format(DateFormat)
}

// Millis is time encoded/decoded as number of milliseconds since the Unix epoch.
type Millis time.Time

// UnmarshalJSON implements JSON decoding.
func (m *Millis) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*m = Millis{}
		return nil
	}
	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return err
	}
	*m = Millis(time.UnixMilli(v).UTC())
	return nil
}

// MarshalJSON implements JSON encoding.
func (m Millis) MarshalJSON() ([]byte, error) {
	if time.Time(m).IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(time.Time(m).UnixMilli(), 10)), nil
}

func (m Millis) String() string {
	return time.Time(m).Format(time.RFC3339)
}
