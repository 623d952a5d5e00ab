package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

func GenerateTransactionID() string {
	return fmt.Sprintf("tx_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

// FormatAmount renders a currency amount with thousands separators.
func FormatAmount(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}

// MaskAccountID hides the middle of an account id for public announcements.
func MaskAccountID(id int64) string {
	s := strconv.FormatInt(id, 10)
	if len(s) > 6 {
		return s[:3] + "****" + s[len(s)-3:]
	}
	if len(s) > 3 {
		return s[:2] + "****" + s[len(s)-1:]
	}
	return "****"
}
